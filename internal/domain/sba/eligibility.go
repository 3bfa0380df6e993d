package sba

import "fmt"

// Kind separates hard eligibility failures from advisory signals.
type Kind string

const (
	KindIssue   Kind = "issue"
	KindWarning Kind = "warning"
)

// Category identifies which rule produced a Finding, so callers can branch
// without matching on message text.
type Category string

const (
	CategoryLoanCeiling         Category = "loan_ceiling"
	CategoryCoverageMinimum     Category = "coverage_minimum"
	CategoryCitizenship         Category = "citizenship"
	CategoryMarginalCoverage    Category = "marginal_coverage"
	CategoryEquityCushion       Category = "equity_cushion"
	CategorySellerStandby       Category = "seller_standby"
	CategoryPostStandbyCoverage Category = "post_standby_coverage"
	CategoryEarnout             Category = "earnout"
)

// Finding is one eligibility issue or warning.
type Finding struct {
	Kind     Kind     `json:"kind"`
	Category Category `json:"category"`
	Message  string   `json:"message"`
}

func issue(c Category, format string, args ...any) Finding {
	return Finding{Kind: KindIssue, Category: c, Message: fmt.Sprintf(format, args...)}
}

func warning(c Category, format string, args ...any) Finding {
	return Finding{Kind: KindWarning, Category: c, Message: fmt.Sprintf(format, args...)}
}

// Evaluate classifies a structured deal. Issues and warnings are appended
// in a fixed rule order, so identical inputs always yield identical lists.
func Evaluate(p Program, t Terms, out *LoanOutputs) {
	issues := []Finding{}
	warnings := []Finding{}

	if out.PrimaryLoanAmount.GreaterThan(p.MaxLoanAmount) {
		issues = append(issues, issue(CategoryLoanCeiling,
			"primary loan of %s exceeds the program maximum of %s",
			out.PrimaryLoanAmount.StringFixed(2), p.MaxLoanAmount.StringFixed(2)))
	}
	if dscr := out.DebtServiceCoverageRatio; dscr.Valid && dscr.Decimal.LessThan(p.MinDSCR) {
		issues = append(issues, issue(CategoryCoverageMinimum,
			"debt service coverage of %sx is below the %sx minimum",
			dscr.Decimal.StringFixed(2), p.MinDSCR.StringFixed(2)))
	}
	if !t.AllInvestorsAreDomesticCitizens {
		issues = append(issues, issue(CategoryCitizenship,
			"all investors must be U.S. citizens or lawful permanent residents"))
	}

	if dscr := out.DebtServiceCoverageRatio; dscr.Valid &&
		dscr.Decimal.GreaterThanOrEqual(p.MinDSCR) &&
		dscr.Decimal.LessThan(p.MinDSCR.Add(p.MarginalCoverageBuffer)) {
		warnings = append(warnings, warning(CategoryMarginalCoverage,
			"debt service coverage of %sx leaves less than %sx of headroom over the minimum",
			dscr.Decimal.StringFixed(2), p.MarginalCoverageBuffer.StringFixed(2)))
	}
	if out.EquityInjectionPercent.LessThan(p.EquityFloorPercent.Add(p.EquityCushionPercent)) {
		warnings = append(warnings, warning(CategoryEquityCushion,
			"equity injection of %s%% is at the %s%% program floor with no cushion",
			out.EquityInjectionPercent.StringFixed(2), p.EquityFloorPercent.StringFixed(2)))
	}
	if t.HasSellerNote() && t.SellerNoteStandbyMonths < p.RecommendedStandbyMonths {
		warnings = append(warnings, warning(CategorySellerStandby,
			"seller note standby of %d months is shorter than the recommended %d months",
			t.SellerNoteStandbyMonths, p.RecommendedStandbyMonths))
	}
	if t.HasSellerNote() && t.SellerNoteStandbyMonths > 0 {
		if post := out.PostStandbyDSCR; post.Valid && post.Decimal.LessThan(p.MinDSCR) {
			warnings = append(warnings, warning(CategoryPostStandbyCoverage,
				"coverage falls to %sx once seller note payments begin",
				post.Decimal.StringFixed(2)))
		}
	}
	if t.EarnoutAmount.IsPositive() {
		warnings = append(warnings, warning(CategoryEarnout,
			"earnout of %s is excluded from debt service; program rules disfavor contingent consideration",
			t.EarnoutAmount.StringFixed(2)))
	}

	out.Issues = issues
	out.Warnings = warnings
	out.Eligible = len(issues) == 0
}
