package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"dealdesk/internal/domain/sba"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	DB          DBConfig          `mapstructure:"db"`
	MySQL       MySQLConfig       `mapstructure:"mysql"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Log         LogConfig         `mapstructure:"log"`
	Program     ProgramConfig     `mapstructure:"program"`
}

type AppConfig struct {
	Port string `mapstructure:"port"`
}

// DBConfig selects the gorm dialect. An explicit DSN wins over the MySQL
// parts.
type DBConfig struct {
	Driver      string `mapstructure:"driver"`
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type MySQLConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	DB   string `mapstructure:"db"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	DB   int    `mapstructure:"db"`
}

type IdempotencyConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

func (c IdempotencyConfig) TTL() time.Duration { return time.Duration(c.TTLSeconds) * time.Second }

type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ProgramConfig overrides lending-program parameters. Empty values keep the
// built-in defaults.
type ProgramConfig struct {
	MaxLoanAmount            string `mapstructure:"max_loan_amount"`
	EquityFloorPercent       string `mapstructure:"equity_floor_percent"`
	MinDSCR                  string `mapstructure:"min_dscr"`
	ClosingCostPercent       string `mapstructure:"closing_cost_percent"`
	PackagingFee             string `mapstructure:"packaging_fee"`
	InterestRate             string `mapstructure:"interest_rate"`
	TermYears                int    `mapstructure:"term_years"`
	MaxTermYears             int    `mapstructure:"max_term_years"`
	RecommendedStandbyMonths int    `mapstructure:"recommended_standby_months"`
}

// Apply returns base with every configured override applied.
func (pc ProgramConfig) Apply(base sba.Program) (sba.Program, error) {
	p := base
	for _, o := range []struct {
		key string
		raw string
		dst *decimal.Decimal
	}{
		{"program.max_loan_amount", pc.MaxLoanAmount, &p.MaxLoanAmount},
		{"program.equity_floor_percent", pc.EquityFloorPercent, &p.EquityFloorPercent},
		{"program.min_dscr", pc.MinDSCR, &p.MinDSCR},
		{"program.closing_cost_percent", pc.ClosingCostPercent, &p.ClosingCostPercent},
		{"program.packaging_fee", pc.PackagingFee, &p.DefaultPackagingFee},
		{"program.interest_rate", pc.InterestRate, &p.DefaultInterestRate},
	} {
		raw := strings.TrimSpace(o.raw)
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return base, fmt.Errorf("%s: %w", o.key, err)
		}
		if v.IsNegative() {
			return base, fmt.Errorf("%s: must not be negative", o.key)
		}
		*o.dst = v
	}
	if pc.TermYears > 0 {
		p.DefaultTermYears = pc.TermYears
	}
	if pc.MaxTermYears > 0 {
		p.MaxTermYears = pc.MaxTermYears
	}
	if pc.RecommendedStandbyMonths > 0 {
		p.RecommendedStandbyMonths = pc.RecommendedStandbyMonths
	}
	if p.DefaultTermYears > p.MaxTermYears {
		return base, fmt.Errorf("program.term_years %d exceeds program.max_term_years %d", p.DefaultTermYears, p.MaxTermYears)
	}
	return p, nil
}

// SBAProgram is DefaultProgram with this config's overrides.
func (c *Config) SBAProgram() (sba.Program, error) { return c.Program.Apply(sba.DefaultProgram()) }

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")

	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.auto_migrate", false)

	v.SetDefault("mysql.host", "mysql")
	v.SetDefault("mysql.port", "3306")
	v.SetDefault("mysql.db", "dealdesk")
	v.SetDefault("mysql.user", "dealdesk")
	v.SetDefault("mysql.pass", "dealdesk")

	v.SetDefault("redis.addr", "redis:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("idempotency.ttl_seconds", 300)
	v.SetDefault("rate_limit.per_minute", 120)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// registered so AutomaticEnv can see PROGRAM_* overrides
	for _, k := range []string{
		"max_loan_amount", "equity_floor_percent", "min_dscr",
		"closing_cost_percent", "packaging_fee", "interest_rate",
	} {
		v.SetDefault("program."+k, "")
	}
	v.SetDefault("program.term_years", 0)
	v.SetDefault("program.max_term_years", 0)
	v.SetDefault("program.recommended_standby_months", 0)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	// db.driver <- DB_DRIVER, rate_limit.per_minute <- RATE_LIMIT_PER_MINUTE
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads an optional .env, an optional config.yaml from ./ or ./configs,
// then environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v)
}

// LoadFile is Load with an explicit config file, which must exist.
func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	return &c, nil
}

func (c *Config) Validate() error {
	if c.App.Port == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DB.Driver {
	case "mysql":
		if c.DB.DSN == "" {
			if c.MySQL.Host == "" || c.MySQL.Port == "" || c.MySQL.DB == "" || c.MySQL.User == "" {
				return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER or DB_DSN)")
			}
			if _, err := net.LookupPort("tcp", c.MySQL.Port); err != nil {
				return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQL.Port, err)
			}
		}
	case "postgres":
		if c.DB.DSN == "" {
			return errors.New("DB_DSN is required for the postgres driver")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.Idempotency.TTLSeconds <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS must be positive")
	}
	if c.RateLimit.PerMinute < 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if _, err := c.SBAProgram(); err != nil {
		return err
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQL.Host, c.MySQL.Port) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQL.User, c.MySQL.Pass, c.mysqlAddr(), c.MySQL.DB)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DB.DSN != "" {
		return c.DB.DSN
	}
	switch c.DB.Driver {
	case "mysql":
		return c.MySQLDSN()
	case "sqlite":
		return "dealdesk.db"
	}
	return ""
}
