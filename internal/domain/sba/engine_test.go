package sba

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decPtr(s string) *decimal.Decimal { v := dec(s); return &v }
func intPtr(n int) *int                { return &n }
func strPtr(s string) *string          { return &s }

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

// floatPayment is the textbook amortization formula in float64, used as an
// independent check on the decimal implementation.
func floatPayment(principal, annualPct float64, months int) float64 {
	r := annualPct / 100 / 12
	if r == 0 {
		return principal / float64(months)
	}
	f := math.Pow(1+r, float64(months))
	return principal * r * f / (f - 1)
}

func categories(fs []Finding) []Category {
	out := make([]Category, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Category)
	}
	return out
}

func baselineInputs() LoanInputs {
	return LoanInputs{
		PurchasePrice:                   dec("1000000"),
		EBITDA:                          dec("250000"),
		Revenue:                         dec("2000000"),
		InterestRate:                    decPtr("10.25"),
		LoanTermYears:                   intPtr(10),
		AllInvestorsAreDomesticCitizens: true,
	}
}

func TestComputeLoanStructure_BaselineDeal(t *testing.T) {
	out, err := ComputeLoanStructure(DefaultProgram(), baselineInputs())
	require.NoError(t, err)

	assertDec(t, "1032500", out.TotalProjectCost)
	assertDec(t, "103250", out.EquityInjectionRequired)
	assertDec(t, "929250", out.PrimaryLoanAmount)
	assertDec(t, "5000000", out.MaxLoanAmount)

	want := floatPayment(929250, 10.25, 120)
	assert.InDelta(t, want, out.MonthlyPayment.InexactFloat64(), 0.005)
	assert.InDelta(t, want*12, out.AnnualDebtService.InexactFloat64(), 0.05)
	assert.True(t, out.SellerNoteMonthlyPayment.IsZero())

	require.True(t, out.DebtServiceCoverageRatio.Valid)
	assert.InDelta(t, 250000/(want*12), out.DebtServiceCoverageRatio.Decimal.InexactFloat64(), 1e-6)
	assert.True(t, out.DebtServiceCoverageRatio.Decimal.GreaterThan(dec("1.25")))

	assert.True(t, out.Eligible)
	assert.Empty(t, out.Issues)
	assert.Equal(t, []Category{CategoryEquityCushion}, categories(out.Warnings))

	// 75% guaranteed portion at the 3.5% tier.
	assertDec(t, "24392.8125", out.GuaranteeFeeAmount)
	assert.False(t, out.FeeWaiverSavings.Valid)

	assert.InDelta(t, 250000-want*12, out.YearOneCashFlow.InexactFloat64(), 0.05)
	require.True(t, out.CashOnCashReturn.Valid)
	assert.InDelta(t, (250000-want*12)/103250*100, out.CashOnCashReturn.Decimal.InexactFloat64(), 1e-4)
	require.True(t, out.PaybackPeriodYears.Valid)
	assertDec(t, "4", out.PurchaseMultiple)
	require.True(t, out.EBITDAMarginPercent.Valid)
	assertDec(t, "12.5", out.EBITDAMarginPercent.Decimal)
}

func TestComputeLoanStructure_LowEBITDAIsIneligible(t *testing.T) {
	in := baselineInputs()
	in.EBITDA = dec("50000")

	out, err := ComputeLoanStructure(DefaultProgram(), in)
	require.NoError(t, err, "ineligibility must not surface as an error")

	assert.False(t, out.Eligible)
	assert.Equal(t, []Category{CategoryCoverageMinimum}, categories(out.Issues))
	assert.Equal(t, KindIssue, out.Issues[0].Kind)
	assert.False(t, out.PaybackPeriodYears.Valid, "negative cash flow has no payback")
}

func TestComputeLoanStructure_CitizenshipIssue(t *testing.T) {
	in := baselineInputs()
	in.AllInvestorsAreDomesticCitizens = false

	out, err := ComputeLoanStructure(DefaultProgram(), in)
	require.NoError(t, err)
	assert.False(t, out.Eligible)
	assert.Equal(t, []Category{CategoryCitizenship}, categories(out.Issues))
}

func TestComputeLoanStructure_ValidationRejectsRequiredFields(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*LoanInputs)
		field string
	}{
		{"zero purchase price", func(in *LoanInputs) { in.PurchasePrice = decimal.Zero }, "purchasePrice"},
		{"negative purchase price", func(in *LoanInputs) { in.PurchasePrice = dec("-1") }, "purchasePrice"},
		{"zero ebitda", func(in *LoanInputs) { in.EBITDA = decimal.Zero }, "ebitda"},
		{"negative working capital", func(in *LoanInputs) { in.WorkingCapital = decPtr("-5") }, "workingCapital"},
		{"zero interest rate", func(in *LoanInputs) { in.InterestRate = decPtr("0") }, "interestRate"},
		{"term too long", func(in *LoanInputs) { in.LoanTermYears = intPtr(30) }, "loanTermYears"},
		{"zero term", func(in *LoanInputs) { in.LoanTermYears = intPtr(0) }, "loanTermYears"},
		{"seller note without term", func(in *LoanInputs) { in.SellerNoteAmount = dec("100000") }, "sellerNoteTermYears"},
		{"standby longer than term", func(in *LoanInputs) {
			in.SellerNoteAmount = dec("100000")
			in.SellerNoteTermYears = 2
			in.SellerNoteStandbyMonths = 24
		}, "sellerNoteStandbyPeriodMonths"},
		{"seller term above program maximum", func(in *LoanInputs) {
			in.SellerNoteAmount = dec("100000")
			in.SellerNoteTermYears = 26
		}, "sellerNoteTermYears"},
		{"seller term that would overflow months", func(in *LoanInputs) {
			in.SellerNoteAmount = dec("100000")
			in.SellerNoteTermYears = math.MaxInt/12 + 10
		}, "sellerNoteTermYears"},
		{"standby beyond program maximum", func(in *LoanInputs) { in.SellerNoteStandbyMonths = math.MaxInt }, "sellerNoteStandbyPeriodMonths"},
		{"standby as long as term without a note", func(in *LoanInputs) {
			in.SellerNoteTermYears = 1
			in.SellerNoteStandbyMonths = 12
		}, "sellerNoteStandbyPeriodMonths"},
		{"non-numeric naics", func(in *LoanInputs) { in.NAICSCode = strPtr("33A") }, "naicsCode"},
		{"equity above 100%", func(in *LoanInputs) { in.EquityInjectionPercent = decPtr("101") }, "equityInjectionPercent"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := baselineInputs()
			tc.mut(&in)

			out, err := ComputeLoanStructure(DefaultProgram(), in)
			require.Error(t, err)
			assert.Nil(t, out, "no partial result on validation failure")

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestComputeLoanStructure_Deterministic(t *testing.T) {
	in := baselineInputs()
	in.SellerNoteAmount = dec("150000")
	in.SellerNoteRate = dec("6")
	in.SellerNoteTermYears = 5
	in.SellerNoteStandbyMonths = 24
	in.NAICSCode = strPtr("332710")

	first, err := ComputeLoanStructure(DefaultProgram(), in)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ComputeLoanStructure(DefaultProgram(), in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComputeLoanStructure_EquityFloorHolds(t *testing.T) {
	p := DefaultProgram()
	for _, tc := range []struct {
		seller    string
		earnout   string
		requested *decimal.Decimal
	}{
		{"0", "0", nil},
		{"250000", "0", nil},
		{"900000", "0", nil},
		{"5000000", "0", nil},
		{"0", "400000", nil},
		{"100000", "0", decPtr("5")},
		{"100000", "0", decPtr("20")},
	} {
		in := baselineInputs()
		in.SellerNoteAmount = dec(tc.seller)
		if in.SellerNoteAmount.IsPositive() {
			in.SellerNoteRate = dec("6")
			in.SellerNoteTermYears = 10
		}
		in.EarnoutAmount = dec(tc.earnout)
		in.EquityInjectionPercent = tc.requested

		out, err := ComputeLoanStructure(p, in)
		require.NoError(t, err)

		floor := out.TotalProjectCost.Mul(p.EquityFloorPercent).Div(hundred)
		assert.True(t, out.EquityInjectionRequired.GreaterThanOrEqual(floor), "seller=%s", tc.seller)
		assert.False(t, out.EquityInjectionRequired.IsNegative())
		assert.False(t, out.PrimaryLoanAmount.IsNegative())
	}

	in := baselineInputs()
	in.EquityInjectionPercent = decPtr("20")
	out, err := ComputeLoanStructure(p, in)
	require.NoError(t, err)
	assertDec(t, "206500", out.EquityInjectionRequired)
	assert.NotContains(t, categories(out.Warnings), CategoryEquityCushion)
}

func TestMonthlyPayment_Monotonic(t *testing.T) {
	principal := dec("929250")

	prev := decimal.Zero
	for _, rate := range []string{"1", "4.5", "7", "10.25", "10.5", "13", "18"} {
		got := MonthlyPayment(principal, dec(rate), 120)
		assert.True(t, got.GreaterThan(prev), "rate %s: %s <= %s", rate, got, prev)
		assert.InDelta(t, floatPayment(929250, dec(rate).InexactFloat64(), 120), got.InexactFloat64(), 0.005)
		prev = got
	}

	prev = principal
	for _, years := range []int{1, 5, 7, 10, 15, 25} {
		got := MonthlyPayment(principal, dec("10.25"), years*12)
		assert.True(t, got.LessThan(prev), "years %d: %s >= %s", years, got, prev)
		prev = got
	}
}

func TestMonthlyPayment_LongTermsMatchFloat(t *testing.T) {
	for _, months := range []int{12, 300, 1200, 6000} {
		got := MonthlyPayment(dec("100000"), dec("6"), months)
		assert.InDelta(t, floatPayment(100000, 6, months), got.InexactFloat64(), 0.005, "months %d", months)
	}
}

func TestMonthlyPayment_EdgeCases(t *testing.T) {
	assert.True(t, MonthlyPayment(decimal.Zero, dec("10"), 120).IsZero())
	assert.True(t, MonthlyPayment(dec("1000"), dec("10"), 0).IsZero())
	assertDec(t, "1000", MonthlyPayment(dec("120000"), decimal.Zero, 120))
}

func TestComputeLoanStructure_CoverageConsistency(t *testing.T) {
	p := DefaultProgram()
	for ebitda := 20000; ebitda <= 400000; ebitda += 10000 {
		in := baselineInputs()
		in.EBITDA = decimal.NewFromInt(int64(ebitda))

		out, err := ComputeLoanStructure(p, in)
		require.NoError(t, err)
		require.True(t, out.DebtServiceCoverageRatio.Valid)
		if out.DebtServiceCoverageRatio.Decimal.LessThan(p.MinDSCR) {
			assert.False(t, out.Eligible, "ebitda=%d", ebitda)
			assert.Contains(t, categories(out.Issues), CategoryCoverageMinimum)
		}
	}
}

func TestComputeLoanStructure_MarginalCoverageWarning(t *testing.T) {
	p := DefaultProgram()
	in := baselineInputs()
	base, err := ComputeLoanStructure(p, in)
	require.NoError(t, err)

	// Put coverage at 1.30x, inside the 1.25–1.35 band.
	in.EBITDA = base.AnnualDebtService.Mul(dec("1.30"))
	out, err := ComputeLoanStructure(p, in)
	require.NoError(t, err)

	assert.True(t, out.Eligible)
	assert.Equal(t, []Category{CategoryMarginalCoverage, CategoryEquityCushion}, categories(out.Warnings))
}

func TestComputeLoanStructure_OverCeilingIsFlaggedNotCapped(t *testing.T) {
	in := baselineInputs()
	in.PurchasePrice = dec("7000000")
	in.EBITDA = dec("2000000")

	out, err := ComputeLoanStructure(DefaultProgram(), in)
	require.NoError(t, err)
	assert.True(t, out.PrimaryLoanAmount.GreaterThan(dec("5000000")))
	assert.False(t, out.Eligible)
	assert.Equal(t, []Category{CategoryLoanCeiling}, categories(out.Issues))
}

func TestComputeLoanStructure_IssueOrderIsFixed(t *testing.T) {
	in := baselineInputs()
	in.PurchasePrice = dec("7000000")
	in.EBITDA = dec("100000")
	in.AllInvestorsAreDomesticCitizens = false
	in.SellerNoteAmount = dec("200000")
	in.SellerNoteRate = dec("5")
	in.SellerNoteTermYears = 10
	in.SellerNoteStandbyMonths = 6
	in.EarnoutAmount = dec("50000")
	in.EarnoutTrigger = "revenue above 3M in year two"

	out, err := ComputeLoanStructure(DefaultProgram(), in)
	require.NoError(t, err)
	assert.Equal(t, []Category{CategoryLoanCeiling, CategoryCoverageMinimum, CategoryCitizenship}, categories(out.Issues))
	assert.Equal(t, []Category{CategoryEquityCushion, CategorySellerStandby, CategoryPostStandbyCoverage, CategoryEarnout}, categories(out.Warnings))
	for _, w := range out.Warnings {
		assert.Equal(t, KindWarning, w.Kind)
		assert.NotEmpty(t, w.Message)
	}
	assert.Equal(t, "revenue above 3M in year two", out.EarnoutTrigger)
}

func TestComputeLoanStructure_SellerNoteStandby(t *testing.T) {
	p := DefaultProgram()
	in := baselineInputs()
	in.SellerNoteAmount = dec("100000")
	in.SellerNoteRate = dec("6")
	in.SellerNoteTermYears = 10

	t.Run("full standby excludes seller payments from year one", func(t *testing.T) {
		in := in
		in.SellerNoteStandbyMonths = 24
		out, err := ComputeLoanStructure(p, in)
		require.NoError(t, err)

		assertDec(t, "829250", out.PrimaryLoanAmount)
		assert.InDelta(t, floatPayment(100000, 6, 96), out.SellerNoteMonthlyPayment.InexactFloat64(), 0.005)
		assert.True(t, out.AnnualDebtService.Equal(out.MonthlyPayment.Mul(twelve)))
		assert.True(t, out.PostStandbyAnnualDebtService.Equal(out.MonthlyPayment.Add(out.SellerNoteMonthlyPayment).Mul(twelve)))
		assert.NotContains(t, categories(out.Warnings), CategorySellerStandby)
	})

	t.Run("short standby pays the remainder of year one", func(t *testing.T) {
		in := in
		in.SellerNoteStandbyMonths = 6
		out, err := ComputeLoanStructure(p, in)
		require.NoError(t, err)

		want := out.MonthlyPayment.Mul(twelve).Add(out.SellerNoteMonthlyPayment.Mul(decimal.NewFromInt(6)))
		assert.True(t, out.AnnualDebtService.Equal(want))
		assert.Contains(t, categories(out.Warnings), CategorySellerStandby)
	})

	t.Run("no standby", func(t *testing.T) {
		in := in
		out, err := ComputeLoanStructure(p, in)
		require.NoError(t, err)
		assert.True(t, out.AnnualDebtService.Equal(out.PostStandbyAnnualDebtService))
	})
}

func TestComputeLoanStructure_FeeWaiver(t *testing.T) {
	p := DefaultProgram()
	in := baselineInputs()
	in.NAICSCode = strPtr("332710")

	out, err := ComputeLoanStructure(p, in)
	require.NoError(t, err)
	assert.True(t, out.GuaranteeFeeAmount.IsZero())
	require.True(t, out.FeeWaiverSavings.Valid)
	assertDec(t, "24392.8125", out.FeeWaiverSavings.Decimal)
	assert.True(t, out.Eligible)

	in.NAICSCode = strPtr("541611")
	out, err = ComputeLoanStructure(p, in)
	require.NoError(t, err)
	assert.False(t, out.FeeWaiverSavings.Valid)
	assert.True(t, out.GuaranteeFeeAmount.IsPositive())
}

func TestComputeLoanStructure_EarnoutExcludedFromDebtService(t *testing.T) {
	p := DefaultProgram()
	plain, err := ComputeLoanStructure(p, baselineInputs())
	require.NoError(t, err)

	in := baselineInputs()
	in.EarnoutAmount = dec("300000")
	withEarnout, err := ComputeLoanStructure(p, in)
	require.NoError(t, err)

	assert.True(t, plain.AnnualDebtService.Equal(withEarnout.AnnualDebtService))
	assertDec(t, "300000", withEarnout.EarnoutAmount)
	assert.Contains(t, categories(withEarnout.Warnings), CategoryEarnout)
}

func TestResolve_AppliesDefaultsOnce(t *testing.T) {
	p := DefaultProgram()
	terms, err := p.Resolve(LoanInputs{
		PurchasePrice:                   dec("2000000"),
		EBITDA:                          dec("500000"),
		AllInvestorsAreDomesticCitizens: true,
	})
	require.NoError(t, err)

	assertDec(t, "60000", terms.ClosingCosts)
	assertDec(t, "2500", terms.PackagingFee)
	assertDec(t, "10.25", terms.InterestRate)
	assertDec(t, "0", terms.WorkingCapital)
	assertDec(t, "10", terms.EquityInjectionPercent)
	assert.Equal(t, 10, terms.LoanTermYears)

	terms, err = p.Resolve(LoanInputs{
		PurchasePrice: dec("2000000"),
		EBITDA:        dec("500000"),
		ClosingCosts:  decPtr("0"),
		PackagingFee:  decPtr("0"),
	})
	require.NoError(t, err)
	assert.True(t, terms.ClosingCosts.IsZero(), "explicit zero is not replaced by the default")
	assert.True(t, terms.PackagingFee.IsZero())
}

func TestGuaranteeFee_Tiers(t *testing.T) {
	p := DefaultProgram()
	assertDec(t, "0", p.GuaranteeFee(decimal.Zero))
	assertDec(t, "1700", p.GuaranteeFee(dec("100000")))   // 85% × 2%
	assertDec(t, "11250", p.GuaranteeFee(dec("500000")))  // 75% × 3%
	assertDec(t, "53750", p.GuaranteeFee(dec("2000000"))) // 1M × 3.5% + 0.5M × 3.75%
}

func TestLoanOutputs_Rounded(t *testing.T) {
	out, err := ComputeLoanStructure(DefaultProgram(), baselineInputs())
	require.NoError(t, err)

	r := out.Rounded()
	assert.True(t, r.MonthlyPayment.Equal(out.MonthlyPayment.Round(2)))
	assert.True(t, r.GuaranteeFeeAmount.Equal(dec("24392.81")))
	assert.True(t, r.DebtServiceCoverageRatio.Decimal.Equal(out.DebtServiceCoverageRatio.Decimal.Round(4)))
	assert.NotNil(t, r.Issues)
	assert.NotNil(t, r.Warnings)

	// The source is untouched.
	assert.False(t, out.MonthlyPayment.Equal(r.MonthlyPayment) && !out.MonthlyPayment.Equal(out.MonthlyPayment.Round(2)))
}
