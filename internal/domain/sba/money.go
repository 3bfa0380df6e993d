package sba

import "github.com/shopspring/decimal"

// Digits kept after the decimal point in intermediate results. Currency is
// rounded to cents only by Rounded, at presentation time.
const internalPrecision = 20

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
	one     = decimal.NewFromInt(1)
)

func div(a, b decimal.Decimal) decimal.Decimal { return a.DivRound(b, internalPrecision) }

func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return div(amount.Mul(pct), hundred)
}

func maxDec(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

func cents(v decimal.Decimal) decimal.Decimal { return v.Round(2) }

func roundNull(v decimal.NullDecimal, places int32) decimal.NullDecimal {
	if !v.Valid {
		return v
	}
	return decimal.NewNullDecimal(v.Decimal.Round(places))
}

// MonthlyPayment is the level payment that retires principal over months
// at the given annual percentage rate.
func MonthlyPayment(principal, annualRatePct decimal.Decimal, months int) decimal.Decimal {
	if !principal.IsPositive() || months <= 0 {
		return decimal.Zero
	}
	r := div(div(annualRatePct, hundred), twelve)
	if r.IsZero() {
		return div(principal, decimal.NewFromInt(int64(months)))
	}
	f, err := one.Add(r).PowWithPrecision(decimal.NewFromInt(int64(months)), internalPrecision)
	if err != nil {
		return decimal.Zero
	}
	return div(principal.Mul(r).Mul(f), f.Sub(one))
}
