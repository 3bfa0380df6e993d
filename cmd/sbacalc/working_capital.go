package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dealdesk/internal/domain/sba"
)

var lineItemFlags = []string{"receivables", "inventory", "prepaid", "payables", "accrued"}

func newWorkingCapitalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "working-capital",
		Short: "Recommend working capital from line items or an industry benchmark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := workingCapitalInputsFromFlags(cmd)
			if err != nil {
				return err
			}
			est, err := a.calc.WorkingCapital(cmd.Context(), in)
			if err != nil {
				return err
			}
			if a.json {
				return writeJSON(cmd.OutOrStdout(), est)
			}
			return printWorkingCapital(cmd.OutOrStdout(), est)
		},
	}
	f := cmd.Flags()
	f.String("revenue", "", "annual revenue")
	f.String("industry", "", "industry name for the benchmark lookup")
	f.String("benchmark-pct", "", "benchmark percent of revenue, overrides the industry table")
	f.String("receivables", "", "accounts receivable")
	f.String("inventory", "", "inventory")
	f.String("prepaid", "", "prepaid expenses")
	f.String("payables", "", "accounts payable")
	f.String("accrued", "", "accrued expenses")
	return cmd
}

func workingCapitalInputsFromFlags(cmd *cobra.Command) (sba.WorkingCapitalInputs, error) {
	f := cmd.Flags()
	var (
		in  sba.WorkingCapitalInputs
		err error
	)
	if in.AnnualRevenue, err = decFlag(f, "revenue"); err != nil {
		return in, err
	}
	if in.IndustryBenchmarkPercent, err = optDecFlag(f, "benchmark-pct"); err != nil {
		return in, err
	}
	in.Industry, _ = f.GetString("industry")

	anySet := false
	for _, name := range lineItemFlags {
		anySet = anySet || f.Changed(name)
	}
	if !anySet {
		return in, nil
	}
	var b sba.BalanceSheet
	if b.Receivables, err = decFlag(f, "receivables"); err != nil {
		return in, err
	}
	if b.Inventory, err = decFlag(f, "inventory"); err != nil {
		return in, err
	}
	if b.PrepaidExpenses, err = decFlag(f, "prepaid"); err != nil {
		return in, err
	}
	if b.Payables, err = decFlag(f, "payables"); err != nil {
		return in, err
	}
	if b.AccruedExpenses, err = decFlag(f, "accrued"); err != nil {
		return in, err
	}
	in.LineItems = &b
	return in, nil
}

func printWorkingCapital(w io.Writer, est *sba.WorkingCapitalEstimate) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Recommended\t%s\n", est.RecommendedWorkingCapital.StringFixed(2))
	fmt.Fprintf(tw, "Source\t%s\n", est.Source)
	fmt.Fprintf(tw, "Line-item estimate\t%s\n", nullStr(est.LineItemEstimate, 2, ""))
	fmt.Fprintf(tw, "Benchmark estimate\t%s\n", nullStr(est.BenchmarkEstimate, 2, ""))
	fmt.Fprintf(tw, "Benchmark percent\t%s\n", nullStr(est.BenchmarkPercent, 2, "%"))
	return tw.Flush()
}
