package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dealdesk/internal/adapter/middleware"
	"dealdesk/internal/infrastructure/logger"
	ucScenario "dealdesk/internal/usecase/scenario"
)

type ScenarioHandler struct {
	uc  *ucScenario.Usecase
	log *zap.Logger
}

func NewScenarioHandler(uc *ucScenario.Usecase, log *zap.Logger) *ScenarioHandler {
	return &ScenarioHandler{uc: uc, log: logger.OrNop(log)}
}

type runScenarioReq struct {
	Label  string           `json:"label"  validate:"max=120"`
	Inputs loanStructureReq `json:"inputs"`
}

func (h *ScenarioHandler) RunScenario(c echo.Context) error {
	dealID := c.Param("deal_id")
	if dealID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing deal_id path param"})
	}
	var req runScenarioReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Run(c.Request().Context(), middleware.OperatorID(c), dealID, ucScenario.RunInput{
		Label:  req.Label,
		Inputs: req.Inputs.toInputs(),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ScenarioHandler) ListScenarios(c echo.Context) error {
	dealID := c.Param("deal_id")
	if dealID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing deal_id path param"})
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > 200 {
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "validation failed",
				Details: []FieldError{{Field: "limit", Message: "must be an integer between 0 and 200"}},
			})
		}
		limit = n
	}
	out, err := h.uc.ListByDeal(c.Request().Context(), middleware.OperatorID(c), dealID, limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"scenarios": out})
}

func (h *ScenarioHandler) GetScenario(c echo.Context) error {
	scenarioID := c.Param("scenario_id")
	if scenarioID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing scenario_id path param"})
	}
	dto, err := h.uc.Get(c.Request().Context(), middleware.OperatorID(c), scenarioID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
