package sba

import "github.com/shopspring/decimal"

// LoanOutputs is the capital stack, debt-service schedule and eligibility
// verdict derived from one set of Terms. It is recomputed on every call.
type LoanOutputs struct {
	TotalProjectCost        decimal.Decimal `json:"total_project_cost"`
	EquityInjectionPercent  decimal.Decimal `json:"equity_injection_percent"`
	EquityInjectionRequired decimal.Decimal `json:"equity_injection_required"`
	PrimaryLoanAmount       decimal.Decimal `json:"primary_loan_amount"`
	MaxLoanAmount           decimal.Decimal `json:"max_loan_amount"`
	SellerNoteAmount        decimal.Decimal `json:"seller_note_amount"`

	GuaranteeFeeAmount decimal.Decimal     `json:"guarantee_fee_amount"`
	FeeWaiverSavings   decimal.NullDecimal `json:"fee_waiver_savings"`

	MonthlyPayment           decimal.Decimal `json:"monthly_payment"`
	SellerNoteMonthlyPayment decimal.Decimal `json:"seller_note_monthly_payment"`
	SellerNoteStandbyMonths  int             `json:"seller_note_standby_months"`

	AnnualDebtService            decimal.Decimal     `json:"annual_debt_service"`
	DebtServiceCoverageRatio     decimal.NullDecimal `json:"debt_service_coverage_ratio"`
	PostStandbyAnnualDebtService decimal.Decimal     `json:"post_standby_annual_debt_service"`
	PostStandbyDSCR              decimal.NullDecimal `json:"post_standby_dscr"`

	YearOneCashFlow     decimal.Decimal     `json:"year_one_cash_flow"`
	CashOnCashReturn    decimal.NullDecimal `json:"cash_on_cash_return"`
	PaybackPeriodYears  decimal.NullDecimal `json:"payback_period_years"`
	PurchaseMultiple    decimal.Decimal     `json:"purchase_multiple"`
	EBITDAMarginPercent decimal.NullDecimal `json:"ebitda_margin_percent"`

	EarnoutAmount  decimal.Decimal `json:"earnout_amount"`
	EarnoutTrigger string          `json:"earnout_trigger,omitempty"`

	Eligible bool      `json:"eligible"`
	Issues   []Finding `json:"eligibility_issues"`
	Warnings []Finding `json:"eligibility_warnings"`
}

// ComputeLoanStructure resolves in against the program, structures the
// loan and evaluates eligibility. The only error it returns is a
// *ValidationError; an ineligible deal is a successful result.
func ComputeLoanStructure(p Program, in LoanInputs) (*LoanOutputs, error) {
	t, err := p.Resolve(in)
	if err != nil {
		return nil, err
	}
	out := Structure(p, t)
	Evaluate(p, t, out)
	return out, nil
}

// Structure builds the capital stack and debt-service figures for resolved
// terms. Eligibility fields are left for Evaluate.
func Structure(p Program, t Terms) *LoanOutputs {
	out := &LoanOutputs{
		MaxLoanAmount:           p.MaxLoanAmount,
		SellerNoteAmount:        t.SellerNoteAmount,
		SellerNoteStandbyMonths: t.SellerNoteStandbyMonths,
		EarnoutAmount:           t.EarnoutAmount,
		EarnoutTrigger:          t.EarnoutTrigger,
		Issues:                  []Finding{},
		Warnings:                []Finding{},
	}

	out.TotalProjectCost = t.PurchasePrice.Add(t.WorkingCapital).Add(t.ClosingCosts).Add(t.PackagingFee)
	out.EquityInjectionPercent = t.EquityInjectionPercent
	out.EquityInjectionRequired = maxDec(percentOf(out.TotalProjectCost, t.EquityInjectionPercent), decimal.Zero)
	out.PrimaryLoanAmount = maxDec(out.TotalProjectCost.Sub(t.SellerNoteAmount).Sub(out.EquityInjectionRequired), decimal.Zero)

	fee := p.GuaranteeFee(out.PrimaryLoanAmount)
	out.GuaranteeFeeAmount = fee
	if p.FeeWaived(t.NAICSCode) {
		out.GuaranteeFeeAmount = decimal.Zero
		out.FeeWaiverSavings = decimal.NewNullDecimal(fee)
	}

	out.MonthlyPayment = MonthlyPayment(out.PrimaryLoanAmount, t.InterestRate, t.LoanTermYears*12)

	sellerMonthsYearOne := 0
	if t.HasSellerNote() {
		amort := t.SellerNoteAmortMonths()
		out.SellerNoteMonthlyPayment = MonthlyPayment(t.SellerNoteAmount, t.SellerNoteRate, amort)
		sellerMonthsYearOne = 12 - t.SellerNoteStandbyMonths
		if sellerMonthsYearOne < 0 {
			sellerMonthsYearOne = 0
		}
		if sellerMonthsYearOne > amort {
			sellerMonthsYearOne = amort
		}
	}

	primaryAnnual := out.MonthlyPayment.Mul(twelve)
	out.AnnualDebtService = primaryAnnual.Add(out.SellerNoteMonthlyPayment.Mul(decimal.NewFromInt(int64(sellerMonthsYearOne))))
	out.PostStandbyAnnualDebtService = primaryAnnual.Add(out.SellerNoteMonthlyPayment.Mul(twelve))
	out.DebtServiceCoverageRatio = ratio(t.EBITDA, out.AnnualDebtService)
	out.PostStandbyDSCR = ratio(t.EBITDA, out.PostStandbyAnnualDebtService)

	out.YearOneCashFlow = t.EBITDA.Sub(out.AnnualDebtService)
	if out.EquityInjectionRequired.IsPositive() {
		out.CashOnCashReturn = decimal.NewNullDecimal(div(out.YearOneCashFlow.Mul(hundred), out.EquityInjectionRequired))
	}
	if out.YearOneCashFlow.IsPositive() {
		out.PaybackPeriodYears = decimal.NewNullDecimal(div(out.EquityInjectionRequired, out.YearOneCashFlow))
	}
	out.PurchaseMultiple = div(t.PurchasePrice, t.EBITDA)
	if t.Revenue.IsPositive() {
		out.EBITDAMarginPercent = decimal.NewNullDecimal(div(t.EBITDA.Mul(hundred), t.Revenue))
	}
	return out
}

func ratio(num, den decimal.Decimal) decimal.NullDecimal {
	if !den.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(div(num, den))
}

// Rounded returns a copy for presentation: currency to cents, ratios and
// percentages to four places.
func (o LoanOutputs) Rounded() LoanOutputs {
	r := o
	r.TotalProjectCost = cents(o.TotalProjectCost)
	r.EquityInjectionPercent = o.EquityInjectionPercent.Round(4)
	r.EquityInjectionRequired = cents(o.EquityInjectionRequired)
	r.PrimaryLoanAmount = cents(o.PrimaryLoanAmount)
	r.MaxLoanAmount = cents(o.MaxLoanAmount)
	r.SellerNoteAmount = cents(o.SellerNoteAmount)
	r.GuaranteeFeeAmount = cents(o.GuaranteeFeeAmount)
	r.FeeWaiverSavings = roundNull(o.FeeWaiverSavings, 2)
	r.MonthlyPayment = cents(o.MonthlyPayment)
	r.SellerNoteMonthlyPayment = cents(o.SellerNoteMonthlyPayment)
	r.AnnualDebtService = cents(o.AnnualDebtService)
	r.DebtServiceCoverageRatio = roundNull(o.DebtServiceCoverageRatio, 4)
	r.PostStandbyAnnualDebtService = cents(o.PostStandbyAnnualDebtService)
	r.PostStandbyDSCR = roundNull(o.PostStandbyDSCR, 4)
	r.YearOneCashFlow = cents(o.YearOneCashFlow)
	r.CashOnCashReturn = roundNull(o.CashOnCashReturn, 4)
	r.PaybackPeriodYears = roundNull(o.PaybackPeriodYears, 4)
	r.PurchaseMultiple = o.PurchaseMultiple.Round(4)
	r.EBITDAMarginPercent = roundNull(o.EBITDAMarginPercent, 4)
	r.EarnoutAmount = cents(o.EarnoutAmount)
	r.Issues = append([]Finding{}, o.Issues...)
	r.Warnings = append([]Finding{}, o.Warnings...)
	return r
}
