package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dealdesk/internal/domain/sba"
	"dealdesk/internal/infrastructure/logger"
	"dealdesk/internal/usecase/calculator"
)

type CalculatorHandler struct {
	svc *calculator.Service
	log *zap.Logger
}

func NewCalculatorHandler(svc *calculator.Service, log *zap.Logger) *CalculatorHandler {
	return &CalculatorHandler{svc: svc, log: logger.OrNop(log)}
}

// Positivity of purchase_price and ebitda, and the cross-field rules, are
// checked by the calculator so every caller gets the same messages. Term
// tags only cap the range; the program maximum is enforced by the calculator.
type loanStructureReq struct {
	PurchasePrice float64 `json:"purchase_price" validate:"gte=0,dec2"`
	EBITDA        float64 `json:"ebitda"         validate:"dec2"`
	Revenue       float64 `json:"revenue"        validate:"gte=0,dec2"`

	WorkingCapital *float64 `json:"working_capital" validate:"omitempty,gte=0,dec2"`
	ClosingCosts   *float64 `json:"closing_costs"   validate:"omitempty,gte=0,dec2"`
	PackagingFee   *float64 `json:"packaging_fee"   validate:"omitempty,gte=0,dec2"`
	InterestRate   *float64 `json:"interest_rate"   validate:"omitempty,lte=100"`
	LoanTermYears  *int     `json:"loan_term_years" validate:"omitempty,lte=100"`

	EquityInjectionPercent *float64 `json:"equity_injection_percent" validate:"omitempty,gte=0"`

	SellerNoteAmount        float64 `json:"seller_note_amount"         validate:"gte=0,dec2"`
	SellerNoteRate          float64 `json:"seller_note_rate"           validate:"gte=0,lte=100"`
	SellerNoteTermYears     int     `json:"seller_note_term_years"     validate:"gte=0,lte=100"`
	SellerNoteStandbyMonths int     `json:"seller_note_standby_months" validate:"gte=0,lte=1200"`

	EarnoutAmount  float64 `json:"earnout_amount"  validate:"gte=0,dec2"`
	EarnoutTrigger string  `json:"earnout_trigger" validate:"max=500"`

	NAICSCode                       *string `json:"naics_code" validate:"omitempty,naics"`
	AllInvestorsAreDomesticCitizens bool    `json:"all_investors_are_domestic_citizens"`
}

func (r loanStructureReq) toInputs() sba.LoanInputs {
	return sba.LoanInputs{
		PurchasePrice:                   toDec(r.PurchasePrice),
		EBITDA:                          toDec(r.EBITDA),
		Revenue:                         toDec(r.Revenue),
		WorkingCapital:                  toDecPtr(r.WorkingCapital),
		ClosingCosts:                    toDecPtr(r.ClosingCosts),
		PackagingFee:                    toDecPtr(r.PackagingFee),
		InterestRate:                    toDecPtr(r.InterestRate),
		LoanTermYears:                   r.LoanTermYears,
		EquityInjectionPercent:          toDecPtr(r.EquityInjectionPercent),
		SellerNoteAmount:                toDec(r.SellerNoteAmount),
		SellerNoteRate:                  toDec(r.SellerNoteRate),
		SellerNoteTermYears:             r.SellerNoteTermYears,
		SellerNoteStandbyMonths:         r.SellerNoteStandbyMonths,
		EarnoutAmount:                   toDec(r.EarnoutAmount),
		EarnoutTrigger:                  r.EarnoutTrigger,
		NAICSCode:                       r.NAICSCode,
		AllInvestorsAreDomesticCitizens: r.AllInvestorsAreDomesticCitizens,
	}
}

type balanceSheetReq struct {
	Receivables     float64 `json:"receivables"      validate:"dec2"`
	Inventory       float64 `json:"inventory"        validate:"dec2"`
	PrepaidExpenses float64 `json:"prepaid_expenses" validate:"dec2"`
	Payables        float64 `json:"payables"         validate:"dec2"`
	AccruedExpenses float64 `json:"accrued_expenses" validate:"dec2"`
}

type workingCapitalReq struct {
	LineItems                *balanceSheetReq `json:"line_items"`
	AnnualRevenue            float64          `json:"annual_revenue"             validate:"dec2"`
	Industry                 string           `json:"industry"                   validate:"max=64"`
	IndustryBenchmarkPercent *float64         `json:"industry_benchmark_percent" validate:"omitempty,lte=100"`
}

func (r workingCapitalReq) toInputs() sba.WorkingCapitalInputs {
	in := sba.WorkingCapitalInputs{
		AnnualRevenue:            toDec(r.AnnualRevenue),
		Industry:                 r.Industry,
		IndustryBenchmarkPercent: toDecPtr(r.IndustryBenchmarkPercent),
	}
	if li := r.LineItems; li != nil {
		in.LineItems = &sba.BalanceSheet{
			Receivables:     toDec(li.Receivables),
			Inventory:       toDec(li.Inventory),
			PrepaidExpenses: toDec(li.PrepaidExpenses),
			Payables:        toDec(li.Payables),
			AccruedExpenses: toDec(li.AccruedExpenses),
		}
	}
	return in
}

func (h *CalculatorHandler) LoanStructure(c echo.Context) error {
	var req loanStructureReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.svc.LoanStructure(c.Request().Context(), req.toInputs())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CalculatorHandler) WorkingCapital(c echo.Context) error {
	var req workingCapitalReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	out, err := h.svc.WorkingCapital(c.Request().Context(), req.toInputs())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
