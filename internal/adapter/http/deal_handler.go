package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dealdesk/internal/adapter/middleware"
	"dealdesk/internal/infrastructure/logger"
	ucDeal "dealdesk/internal/usecase/deal"
)

type DealHandler struct {
	uc  *ucDeal.Usecase
	log *zap.Logger
}

func NewDealHandler(uc *ucDeal.Usecase, log *zap.Logger) *DealHandler {
	return &DealHandler{uc: uc, log: logger.OrNop(log)}
}

type createDealReq struct {
	Name        string  `json:"name"         validate:"required,max=200"`
	Industry    string  `json:"industry"     validate:"max=64"`
	NAICSCode   string  `json:"naics_code"   validate:"omitempty,naics"`
	AskingPrice float64 `json:"asking_price" validate:"gte=0,dec2"`
}

type listDealsReq struct {
	Stage  string `query:"stage"  validate:"omitempty,oneof=sourced screening loi diligence closed passed"`
	Limit  int    `query:"limit"  validate:"gte=0,lte=200"`
	Offset int    `query:"offset" validate:"gte=0"`
}

type advanceStageReq struct {
	Stage string `json:"stage" validate:"required,oneof=sourced screening loi diligence closed passed"`
}

func (h *DealHandler) CreateDeal(c echo.Context) error {
	var req createDealReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), middleware.OperatorID(c), ucDeal.CreateDealInput{
		Name:        req.Name,
		Industry:    req.Industry,
		NAICSCode:   req.NAICSCode,
		AskingPrice: toDec(req.AskingPrice),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *DealHandler) ListDeals(c echo.Context) error {
	var req listDealsReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.uc.List(c.Request().Context(), middleware.OperatorID(c), ucDeal.ListInput(req))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"deals": out})
}

func (h *DealHandler) GetDeal(c echo.Context) error {
	dealID := c.Param("deal_id")
	if dealID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing deal_id path param"})
	}
	dto, err := h.uc.Get(c.Request().Context(), middleware.OperatorID(c), dealID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *DealHandler) AdvanceStage(c echo.Context) error {
	dealID := c.Param("deal_id")
	if dealID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing deal_id path param"})
	}
	var req advanceStageReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.AdvanceStage(c.Request().Context(), middleware.OperatorID(c), dealID, req.Stage)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}
