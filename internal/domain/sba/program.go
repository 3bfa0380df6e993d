// Package sba implements the SBA 7(a) acquisition-financing calculator:
// loan structuring, eligibility screening and working-capital estimation.
//
// Everything in this package is a pure function of its inputs. Amounts are
// decimal currency in a single unit; percentages are plain numbers, so 10.25
// means 10.25%.
package sba

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FeeTier is one band of the guarantee-fee schedule. A loan falls in the
// first tier whose MaxLoan it does not exceed; a zero MaxLoan is unbounded.
type FeeTier struct {
	MaxLoan decimal.Decimal
	Rate    decimal.Decimal // percent of the guaranteed portion

	// Guaranteed portion above ExcessOver is charged ExcessRate instead.
	ExcessOver decimal.Decimal
	ExcessRate decimal.Decimal
}

// Program holds the lending-program parameters the calculator applies.
// DefaultProgram returns the values in effect for standard 7(a) loans;
// callers override individual fields from configuration.
type Program struct {
	MaxLoanAmount      decimal.Decimal
	EquityFloorPercent decimal.Decimal
	MinDSCR            decimal.Decimal

	MarginalCoverageBuffer   decimal.Decimal
	EquityCushionPercent     decimal.Decimal
	RecommendedStandbyMonths int

	ClosingCostPercent  decimal.Decimal
	DefaultPackagingFee decimal.Decimal
	DefaultInterestRate decimal.Decimal
	DefaultTermYears    int
	MaxTermYears        int

	SmallLoanCeiling          decimal.Decimal
	SmallLoanGuaranteePercent decimal.Decimal
	GuaranteePercent          decimal.Decimal
	FeeTiers                  []FeeTier
	FeeWaiverNAICSPrefixes    []string

	// Keyed by normalized industry name, value is percent of annual revenue.
	IndustryBenchmarks map[string]decimal.Decimal
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// DefaultProgram returns the standard 7(a) acquisition parameters.
func DefaultProgram() Program {
	return Program{
		MaxLoanAmount:      dec("5000000"),
		EquityFloorPercent: dec("10"),
		MinDSCR:            dec("1.25"),

		MarginalCoverageBuffer:   dec("0.10"),
		EquityCushionPercent:     dec("2"),
		RecommendedStandbyMonths: 24,

		ClosingCostPercent:  dec("3"),
		DefaultPackagingFee: dec("2500"),
		DefaultInterestRate: dec("10.25"),
		DefaultTermYears:    10,
		MaxTermYears:        25,

		SmallLoanCeiling:          dec("150000"),
		SmallLoanGuaranteePercent: dec("85"),
		GuaranteePercent:          dec("75"),
		FeeTiers: []FeeTier{
			{MaxLoan: dec("150000"), Rate: dec("2")},
			{MaxLoan: dec("700000"), Rate: dec("3")},
			{Rate: dec("3.5"), ExcessOver: dec("1000000"), ExcessRate: dec("3.75")},
		},
		FeeWaiverNAICSPrefixes: []string{"31", "32", "33"},

		IndustryBenchmarks: map[string]decimal.Decimal{
			"manufacturing":         dec("15"),
			"distribution":          dec("15"),
			"wholesale":             dec("15"),
			"construction":          dec("12"),
			"retail":                dec("10"),
			"healthcare":            dec("8"),
			"business_services":     dec("6"),
			"services":              dec("5"),
			"software":              dec("5"),
			"saas":                  dec("5"),
			"home_services":         dec("5"),
			"transportation":        dec("7"),
			"restaurant":            dec("3"),
			"hospitality":           dec("3"),
			"education":             dec("4"),
			"professional_services": dec("6"),
		},
	}
}

// NormalizeIndustry maps free-form industry labels onto benchmark keys:
// lowercase, with spaces and hyphens folded to underscores.
func NormalizeIndustry(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "-", "_")
}

// BenchmarkPercent looks up the working-capital benchmark for an industry.
func (p Program) BenchmarkPercent(industry string) (decimal.Decimal, bool) {
	v, ok := p.IndustryBenchmarks[NormalizeIndustry(industry)]
	return v, ok
}

// FeeWaived reports whether a NAICS code falls in a fee-waiver category.
func (p Program) FeeWaived(naics string) bool {
	naics = strings.TrimSpace(naics)
	if naics == "" {
		return false
	}
	for _, prefix := range p.FeeWaiverNAICSPrefixes {
		if strings.HasPrefix(naics, prefix) {
			return true
		}
	}
	return false
}

// GuaranteeFee returns the upfront guarantee fee the program charges on a
// loan of the given size, before any waiver.
func (p Program) GuaranteeFee(loan decimal.Decimal) decimal.Decimal {
	if !loan.IsPositive() || len(p.FeeTiers) == 0 {
		return decimal.Zero
	}
	pct := p.GuaranteePercent
	if loan.LessThanOrEqual(p.SmallLoanCeiling) {
		pct = p.SmallLoanGuaranteePercent
	}
	guaranteed := percentOf(loan, pct)

	tier := p.FeeTiers[len(p.FeeTiers)-1]
	for _, t := range p.FeeTiers {
		if t.MaxLoan.IsZero() || loan.LessThanOrEqual(t.MaxLoan) {
			tier = t
			break
		}
	}
	if tier.ExcessOver.IsPositive() && guaranteed.GreaterThan(tier.ExcessOver) {
		base := percentOf(tier.ExcessOver, tier.Rate)
		excess := percentOf(guaranteed.Sub(tier.ExcessOver), tier.ExcessRate)
		return base.Add(excess)
	}
	return percentOf(guaranteed, tier.Rate)
}
