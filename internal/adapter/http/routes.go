package http

import (
	"github.com/labstack/echo/v4"

	"dealdesk/internal/adapter/middleware"
)

// Router wires handlers onto echo. Idempotency and RateLimit may be nil.
type Router struct {
	Health      *Handler
	Calculator  *CalculatorHandler
	Deals       *DealHandler
	Scenarios   *ScenarioHandler
	Idempotency echo.MiddlewareFunc
	RateLimit   echo.MiddlewareFunc
}

func only(ms ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := ms[:0]
	for _, m := range ms {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (r Router) Register(e *echo.Echo) {
	e.GET("/health", r.Health.Health)

	v1 := e.Group("/v1", middleware.RequireOperator())

	calc := v1.Group("/calculator", only(r.RateLimit)...)
	calc.POST("/loan-structure", r.Calculator.LoanStructure)
	calc.POST("/working-capital", r.Calculator.WorkingCapital)

	v1.POST("/deals", r.Deals.CreateDeal, only(r.Idempotency)...)
	v1.GET("/deals", r.Deals.ListDeals)
	v1.GET("/deals/:deal_id", r.Deals.GetDeal)
	v1.POST("/deals/:deal_id/stage", r.Deals.AdvanceStage, only(r.Idempotency)...)
	v1.POST("/deals/:deal_id/scenarios", r.Scenarios.RunScenario, only(r.RateLimit, r.Idempotency)...)
	v1.GET("/deals/:deal_id/scenarios", r.Scenarios.ListScenarios)
	v1.GET("/scenarios/:scenario_id", r.Scenarios.GetScenario)
}
