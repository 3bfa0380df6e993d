package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"dealdesk/internal/config"
	"dealdesk/internal/usecase/calculator"
)

type app struct {
	calc *calculator.Service
	json bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "sbacalc",
		Short:         "SBA 7(a) acquisition loan calculators",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg *config.Config
				err error
			)
			path, _ := cmd.Flags().GetString("config")
			if path != "" {
				cfg, err = config.LoadFile(path)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			program, err := cfg.SBAProgram()
			if err != nil {
				return fmt.Errorf("program config: %w", err)
			}
			a.calc = calculator.NewService(program, nil)
			return nil
		},
	}
	root.PersistentFlags().String("config", "", "config file with program overrides")
	root.PersistentFlags().BoolVar(&a.json, "json", false, "print JSON instead of a table")

	root.AddCommand(newLoanCmd(a), newWorkingCapitalCmd(a))
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// decFlag parses a decimal flag; the flag must have been registered as a
// string.
func decFlag(fs *pflag.FlagSet, name string) (decimal.Decimal, error) {
	raw, _ := fs.GetString(name)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %q is not a number", name, raw)
	}
	return d, nil
}

// optDecFlag is decFlag for optional inputs: nil unless the flag was set.
func optDecFlag(fs *pflag.FlagSet, name string) (*decimal.Decimal, error) {
	if !fs.Changed(name) {
		return nil, nil
	}
	d, err := decFlag(fs, name)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nullStr(v decimal.NullDecimal, places int32, suffix string) string {
	if !v.Valid {
		return "n/a"
	}
	return v.Decimal.StringFixed(places) + suffix
}
