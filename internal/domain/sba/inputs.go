package sba

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LoanInputs is the raw deal data a caller submits for structuring.
// Optional fields are pointers; Resolve fills them from the Program.
type LoanInputs struct {
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	EBITDA        decimal.Decimal `json:"ebitda"`
	Revenue       decimal.Decimal `json:"revenue"`

	WorkingCapital *decimal.Decimal `json:"working_capital,omitempty"`
	ClosingCosts   *decimal.Decimal `json:"closing_costs,omitempty"`
	PackagingFee   *decimal.Decimal `json:"packaging_fee,omitempty"`
	InterestRate   *decimal.Decimal `json:"interest_rate,omitempty"`
	LoanTermYears  *int             `json:"loan_term_years,omitempty"`

	EquityInjectionPercent *decimal.Decimal `json:"equity_injection_percent,omitempty"`

	SellerNoteAmount        decimal.Decimal `json:"seller_note_amount"`
	SellerNoteRate          decimal.Decimal `json:"seller_note_rate"`
	SellerNoteTermYears     int             `json:"seller_note_term_years"`
	SellerNoteStandbyMonths int             `json:"seller_note_standby_months"`

	EarnoutAmount  decimal.Decimal `json:"earnout_amount"`
	EarnoutTrigger string          `json:"earnout_trigger,omitempty"`

	NAICSCode                       *string `json:"naics_code,omitempty"`
	AllInvestorsAreDomesticCitizens bool    `json:"all_investors_are_domestic_citizens"`
}

// Terms is a fully resolved, validated LoanInputs. Every default has been
// applied; nothing downstream consults the Program for input values again.
type Terms struct {
	PurchasePrice  decimal.Decimal
	EBITDA         decimal.Decimal
	Revenue        decimal.Decimal
	WorkingCapital decimal.Decimal
	ClosingCosts   decimal.Decimal
	PackagingFee   decimal.Decimal
	InterestRate   decimal.Decimal
	LoanTermYears  int

	EquityInjectionPercent decimal.Decimal

	SellerNoteAmount        decimal.Decimal
	SellerNoteRate          decimal.Decimal
	SellerNoteTermYears     int
	SellerNoteStandbyMonths int

	EarnoutAmount  decimal.Decimal
	EarnoutTrigger string

	NAICSCode                       string
	AllInvestorsAreDomesticCitizens bool
}

// HasSellerNote reports whether subordinate seller financing is in the stack.
func (t Terms) HasSellerNote() bool { return t.SellerNoteAmount.IsPositive() }

// SellerNoteAmortMonths is the number of paying months after standby.
func (t Terms) SellerNoteAmortMonths() int {
	return t.SellerNoteTermYears*12 - t.SellerNoteStandbyMonths
}

func nonNegative(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return invalid(field, "must not be negative")
	}
	return nil
}

func optional(v *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if v == nil {
		return def
	}
	return *v
}

// Resolve validates in and applies the program defaults, producing the
// immutable Terms every later step works from.
func (p Program) Resolve(in LoanInputs) (Terms, error) {
	if !in.PurchasePrice.IsPositive() {
		return Terms{}, invalid("purchasePrice", "must be greater than zero")
	}
	if !in.EBITDA.IsPositive() {
		return Terms{}, invalid("ebitda", "must be greater than zero")
	}

	t := Terms{
		PurchasePrice:  in.PurchasePrice,
		EBITDA:         in.EBITDA,
		Revenue:        in.Revenue,
		WorkingCapital: optional(in.WorkingCapital, decimal.Zero),
		ClosingCosts:   optional(in.ClosingCosts, percentOf(in.PurchasePrice, p.ClosingCostPercent)),
		PackagingFee:   optional(in.PackagingFee, p.DefaultPackagingFee),
		InterestRate:   optional(in.InterestRate, p.DefaultInterestRate),
		LoanTermYears:  p.DefaultTermYears,

		EquityInjectionPercent: maxDec(optional(in.EquityInjectionPercent, p.EquityFloorPercent), p.EquityFloorPercent),

		SellerNoteAmount:        in.SellerNoteAmount,
		SellerNoteRate:          in.SellerNoteRate,
		SellerNoteTermYears:     in.SellerNoteTermYears,
		SellerNoteStandbyMonths: in.SellerNoteStandbyMonths,

		EarnoutAmount:  in.EarnoutAmount,
		EarnoutTrigger: strings.TrimSpace(in.EarnoutTrigger),

		AllInvestorsAreDomesticCitizens: in.AllInvestorsAreDomesticCitizens,
	}
	if in.LoanTermYears != nil {
		t.LoanTermYears = *in.LoanTermYears
	}
	if in.NAICSCode != nil {
		t.NAICSCode = strings.TrimSpace(*in.NAICSCode)
	}

	for _, c := range []struct {
		field string
		v     decimal.Decimal
	}{
		{"revenue", t.Revenue},
		{"workingCapital", t.WorkingCapital},
		{"closingCosts", t.ClosingCosts},
		{"packagingFee", t.PackagingFee},
		{"sellerNoteAmount", t.SellerNoteAmount},
		{"sellerNoteRate", t.SellerNoteRate},
		{"earnoutAmount", t.EarnoutAmount},
	} {
		if err := nonNegative(c.field, c.v); err != nil {
			return Terms{}, err
		}
	}

	if !t.InterestRate.IsPositive() {
		return Terms{}, invalid("interestRate", "must be greater than zero")
	}
	if t.LoanTermYears <= 0 || (p.MaxTermYears > 0 && t.LoanTermYears > p.MaxTermYears) {
		return Terms{}, invalid("loanTermYears", "must be between 1 and the program maximum term")
	}
	if t.EquityInjectionPercent.GreaterThan(hundred) {
		return Terms{}, invalid("equityInjectionPercent", "must not exceed 100")
	}

	if t.SellerNoteTermYears < 0 {
		return Terms{}, invalid("sellerNoteTermYears", "must not be negative")
	}
	if p.MaxTermYears > 0 && t.SellerNoteTermYears > p.MaxTermYears {
		return Terms{}, invalid("sellerNoteTermYears", "must not exceed the program maximum term")
	}
	if t.SellerNoteStandbyMonths < 0 {
		return Terms{}, invalid("sellerNoteStandbyPeriodMonths", "must not be negative")
	}
	if p.MaxTermYears > 0 && t.SellerNoteStandbyMonths > p.MaxTermYears*12 {
		return Terms{}, invalid("sellerNoteStandbyPeriodMonths", "must not exceed the program maximum term")
	}
	if t.SellerNoteTermYears > 0 && t.SellerNoteStandbyMonths >= t.SellerNoteTermYears*12 {
		return Terms{}, invalid("sellerNoteStandbyPeriodMonths", "must be shorter than the seller note term")
	}
	if t.HasSellerNote() {
		if t.SellerNoteTermYears == 0 {
			return Terms{}, invalid("sellerNoteTermYears", "is required when a seller note is present")
		}
		if t.SellerNoteAmortMonths() <= 0 {
			return Terms{}, invalid("sellerNoteStandbyPeriodMonths", "must be shorter than the seller note term")
		}
	}

	for _, r := range t.NAICSCode {
		if r < '0' || r > '9' {
			return Terms{}, invalid("naicsCode", "must contain digits only")
		}
	}
	return t, nil
}
