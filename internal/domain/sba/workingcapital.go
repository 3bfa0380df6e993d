package sba

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BalanceSheet carries the current-asset and current-liability lines used
// for a direct net-working-capital estimate.
type BalanceSheet struct {
	Receivables     decimal.Decimal `json:"receivables"`
	Inventory       decimal.Decimal `json:"inventory"`
	PrepaidExpenses decimal.Decimal `json:"prepaid_expenses"`
	Payables        decimal.Decimal `json:"payables"`
	AccruedExpenses decimal.Decimal `json:"accrued_expenses"`
}

// NetWorkingCapital is current assets less current liabilities.
func (b BalanceSheet) NetWorkingCapital() decimal.Decimal {
	assets := b.Receivables.Add(b.Inventory).Add(b.PrepaidExpenses)
	return assets.Sub(b.Payables.Add(b.AccruedExpenses))
}

// WorkingCapitalInputs feeds EstimateWorkingCapital. LineItems and the
// benchmark are independent sources; at least one must be usable.
type WorkingCapitalInputs struct {
	LineItems                *BalanceSheet    `json:"line_items,omitempty"`
	AnnualRevenue            decimal.Decimal  `json:"annual_revenue"`
	Industry                 string           `json:"industry,omitempty"`
	IndustryBenchmarkPercent *decimal.Decimal `json:"industry_benchmark_percent,omitempty"`
}

// WorkingCapitalSource names the estimate that won.
type WorkingCapitalSource string

const (
	SourceLineItems         WorkingCapitalSource = "line_items"
	SourceIndustryBenchmark WorkingCapitalSource = "industry_benchmark"
)

// WorkingCapitalEstimate is the recommendation plus the estimates behind it.
type WorkingCapitalEstimate struct {
	RecommendedWorkingCapital decimal.Decimal      `json:"recommended_working_capital"`
	Source                    WorkingCapitalSource `json:"source"`
	LineItemEstimate          decimal.NullDecimal  `json:"line_item_estimate"`
	BenchmarkEstimate         decimal.NullDecimal  `json:"benchmark_estimate"`
	BenchmarkPercent          decimal.NullDecimal  `json:"benchmark_percent"`
}

// Rounded returns a presentation copy with currency rounded to cents.
func (e WorkingCapitalEstimate) Rounded() WorkingCapitalEstimate {
	r := e
	r.RecommendedWorkingCapital = cents(e.RecommendedWorkingCapital)
	r.LineItemEstimate = roundNull(e.LineItemEstimate, 2)
	r.BenchmarkEstimate = roundNull(e.BenchmarkEstimate, 2)
	r.BenchmarkPercent = roundNull(e.BenchmarkPercent, 4)
	return r
}

// EstimateWorkingCapital recommends the greater of the line-item and the
// revenue-benchmark estimates, never below zero.
func EstimateWorkingCapital(p Program, in WorkingCapitalInputs) (*WorkingCapitalEstimate, error) {
	if in.AnnualRevenue.IsNegative() {
		return nil, invalid("annualRevenue", "must not be negative")
	}
	if in.LineItems == nil && strings.TrimSpace(in.Industry) == "" {
		return nil, invalid("industry", "is required when no balance-sheet line items are given")
	}

	out := &WorkingCapitalEstimate{}

	if li := in.LineItems; li != nil {
		for _, c := range []struct {
			field string
			v     decimal.Decimal
		}{
			{"receivables", li.Receivables},
			{"inventory", li.Inventory},
			{"prepaidExpenses", li.PrepaidExpenses},
			{"payables", li.Payables},
			{"accruedExpenses", li.AccruedExpenses},
		} {
			if err := nonNegative(c.field, c.v); err != nil {
				return nil, err
			}
		}
		out.LineItemEstimate = decimal.NewNullDecimal(li.NetWorkingCapital())
	}

	pct, ok := decimal.Zero, false
	if in.IndustryBenchmarkPercent != nil {
		pct, ok = *in.IndustryBenchmarkPercent, true
		if pct.IsNegative() {
			return nil, invalid("industryBenchmarkPercent", "must not be negative")
		}
	} else if in.Industry != "" {
		pct, ok = p.BenchmarkPercent(in.Industry)
	}
	if ok {
		out.BenchmarkPercent = decimal.NewNullDecimal(pct)
		out.BenchmarkEstimate = decimal.NewNullDecimal(percentOf(in.AnnualRevenue, pct))
	}

	switch {
	case out.LineItemEstimate.Valid && out.BenchmarkEstimate.Valid:
		out.RecommendedWorkingCapital, out.Source = out.LineItemEstimate.Decimal, SourceLineItems
		if out.BenchmarkEstimate.Decimal.GreaterThan(out.LineItemEstimate.Decimal) {
			out.RecommendedWorkingCapital, out.Source = out.BenchmarkEstimate.Decimal, SourceIndustryBenchmark
		}
	case out.LineItemEstimate.Valid:
		out.RecommendedWorkingCapital, out.Source = out.LineItemEstimate.Decimal, SourceLineItems
	case out.BenchmarkEstimate.Valid:
		out.RecommendedWorkingCapital, out.Source = out.BenchmarkEstimate.Decimal, SourceIndustryBenchmark
	default:
		return nil, &ValidationError{
			Field:   "industry",
			Message: "no balance-sheet line items and no benchmark for industry " + in.Industry,
			Err:     ErrNoWorkingCapitalData,
		}
	}

	out.RecommendedWorkingCapital = maxDec(out.RecommendedWorkingCapital, decimal.Zero)
	return out, nil
}
