package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpadp "dealdesk/internal/adapter/http"
	mw "dealdesk/internal/adapter/middleware"
	"dealdesk/internal/adapter/repository/gormrepo"
	"dealdesk/internal/config"
	"dealdesk/internal/domain/sba"
	"dealdesk/internal/infrastructure/cache"
	"dealdesk/internal/infrastructure/db"
	"dealdesk/internal/infrastructure/logger"
	"dealdesk/internal/usecase/calculator"
	ucDeal "dealdesk/internal/usecase/deal"
	ucScenario "dealdesk/internal/usecase/scenario"
)

// setup loads and checks configuration. The returned logger is never nil:
// when config cannot be read it falls back to info-level json so every
// startup failure is reported the same way.
func setup() (*config.Config, sba.Program, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, sba.Program{}, logger.New("info", "json"), fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		return nil, sba.Program{}, log, fmt.Errorf("invalid config: %w", err)
	}
	program, err := cfg.SBAProgram()
	if err != nil {
		return nil, sba.Program{}, log, fmt.Errorf("invalid program config: %w", err)
	}
	return cfg, program, log, nil
}

func main() {
	cfg, program, log, err := setup()
	defer func() { _ = log.Sync() }()
	if err != nil {
		log.Fatal("startup", zap.Error(err))
	}

	gdb, err := db.OpenGorm(cfg.DB.Driver, cfg.DSN(), log)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal("database handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if cfg.DB.AutoMigrate {
		if err := gormrepo.Migrate(gdb); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
	}

	ctx := context.Background()
	rdb, err := cache.OpenRedis(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		log.Fatal("open redis", zap.Error(err))
	}
	defer rdb.Close()

	deals := gormrepo.NewDealRepository(gdb)
	scenarios := gormrepo.NewScenarioRepository(gdb)
	tx := gormrepo.NewGormUoW(gdb)
	calc := calculator.NewService(program, log)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}),
		middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogStatus:    true,
			LogURI:       true,
			LogMethod:    true,
			LogLatency:   true,
			LogRequestID: true,
			LogError:     true,
			HandleError:  true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				fields := []zap.Field{
					zap.String("method", v.Method),
					zap.String("uri", v.URI),
					zap.Int("status", v.Status),
					zap.Duration("latency", v.Latency),
					zap.String("request_id", v.RequestID),
				}
				if v.Error != nil {
					log.Warn("request", append(fields, zap.Error(v.Error))...)
					return nil
				}
				log.Info("request", fields...)
				return nil
			},
		}),
		middleware.Recover(),
	)

	httpadp.Router{
		Health: httpadp.NewHandler(map[string]httpadp.Check{
			"db":    func(ctx context.Context) error { return sqlDB.PingContext(ctx) },
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		Calculator:  httpadp.NewCalculatorHandler(calc, log),
		Deals:       httpadp.NewDealHandler(ucDeal.NewUsecase(deals, tx, log), log),
		Scenarios:   httpadp.NewScenarioHandler(ucScenario.NewUsecase(calc, deals, scenarios, tx, log), log),
		Idempotency: mw.IdempotencyMiddleware(rdb, cfg.Idempotency.TTL(), log),
		RateLimit:   mw.RateLimit(cache.NewWindowCounter(rdb, "rl:dealdesk", time.Minute), cfg.RateLimit.PerMinute, log),
	}.Register(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	addr := ":" + cfg.App.Port
	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	log.Info("stopped")
}
