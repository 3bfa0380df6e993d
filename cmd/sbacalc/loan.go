package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"dealdesk/internal/domain/sba"
)

func newLoanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Structure an acquisition loan and check eligibility",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := loanInputsFromFlags(cmd)
			if err != nil {
				return err
			}
			out, err := a.calc.LoanStructure(cmd.Context(), in)
			if err != nil {
				return err
			}
			if a.json {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			return printLoan(cmd.OutOrStdout(), out)
		},
	}
	f := cmd.Flags()
	f.String("price", "", "purchase price")
	f.String("ebitda", "", "trailing EBITDA")
	f.String("revenue", "", "annual revenue")
	f.String("working-capital", "", "working capital to finance")
	f.String("closing-costs", "", "closing costs (default: program percent of price)")
	f.String("packaging-fee", "", "packaging fee (default: program fee)")
	f.String("rate", "", "annual interest rate percent (default: program rate)")
	f.Int("term", 0, "loan term in years (default: program term)")
	f.String("equity-pct", "", "requested equity injection percent")
	f.String("seller-note", "", "seller note amount")
	f.String("seller-rate", "", "seller note annual rate percent")
	f.Int("seller-term", 0, "seller note term in years")
	f.Int("standby", 0, "seller note standby months")
	f.String("earnout", "", "earnout amount")
	f.String("earnout-trigger", "", "earnout trigger description")
	f.String("naics", "", "NAICS code of the target business")
	f.Bool("domestic", true, "all investors are US citizens or permanent residents")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("ebitda")
	return cmd
}

func loanInputsFromFlags(cmd *cobra.Command) (sba.LoanInputs, error) {
	f := cmd.Flags()
	var in sba.LoanInputs
	for name, dst := range map[string]*decimal.Decimal{
		"price":       &in.PurchasePrice,
		"ebitda":      &in.EBITDA,
		"revenue":     &in.Revenue,
		"seller-note": &in.SellerNoteAmount,
		"seller-rate": &in.SellerNoteRate,
		"earnout":     &in.EarnoutAmount,
	} {
		v, err := decFlag(f, name)
		if err != nil {
			return sba.LoanInputs{}, err
		}
		*dst = v
	}
	for name, dst := range map[string]**decimal.Decimal{
		"working-capital": &in.WorkingCapital,
		"closing-costs":   &in.ClosingCosts,
		"packaging-fee":   &in.PackagingFee,
		"rate":            &in.InterestRate,
		"equity-pct":      &in.EquityInjectionPercent,
	} {
		v, err := optDecFlag(f, name)
		if err != nil {
			return sba.LoanInputs{}, err
		}
		*dst = v
	}

	if f.Changed("term") {
		term, _ := f.GetInt("term")
		in.LoanTermYears = &term
	}
	in.SellerNoteTermYears, _ = f.GetInt("seller-term")
	in.SellerNoteStandbyMonths, _ = f.GetInt("standby")
	in.EarnoutTrigger, _ = f.GetString("earnout-trigger")
	if naics, _ := f.GetString("naics"); naics != "" {
		in.NAICSCode = &naics
	}
	in.AllInvestorsAreDomesticCitizens, _ = f.GetBool("domestic")
	return in, nil
}

func printLoan(w io.Writer, out *sba.LoanOutputs) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Total project cost", out.TotalProjectCost.StringFixed(2)},
		{"Equity injection", fmt.Sprintf("%s (%s%%)", out.EquityInjectionRequired.StringFixed(2), out.EquityInjectionPercent.StringFixed(2))},
		{"Primary loan", out.PrimaryLoanAmount.StringFixed(2)},
		{"Seller note", out.SellerNoteAmount.StringFixed(2)},
		{"Guarantee fee", out.GuaranteeFeeAmount.StringFixed(2)},
		{"Fee waiver savings", nullStr(out.FeeWaiverSavings, 2, "")},
		{"Monthly payment", out.MonthlyPayment.StringFixed(2)},
		{"Annual debt service", out.AnnualDebtService.StringFixed(2)},
		{"DSCR", nullStr(out.DebtServiceCoverageRatio, 2, "x")},
		{"Post-standby DSCR", nullStr(out.PostStandbyDSCR, 2, "x")},
		{"Year-one cash flow", out.YearOneCashFlow.StringFixed(2)},
		{"Cash-on-cash return", nullStr(out.CashOnCashReturn, 2, "%")},
		{"Payback (years)", nullStr(out.PaybackPeriodYears, 2, "")},
		{"Purchase multiple", out.PurchaseMultiple.StringFixed(2) + "x"},
		{"Eligible", fmt.Sprint(out.Eligible)},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
	}
	for _, f := range out.Issues {
		fmt.Fprintf(tw, "issue\t[%s] %s\n", f.Category, f.Message)
	}
	for _, f := range out.Warnings {
		fmt.Fprintf(tw, "warning\t[%s] %s\n", f.Category, f.Message)
	}
	return tw.Flush()
}
