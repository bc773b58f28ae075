package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"strategy-gate/internal/funding"
)

func newFundingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "funding",
		Short: "Funding-rate edge and PnL helpers",
	}
	cmd.AddCommand(newFundingEdgeCmd(a), newFundingPnLCmd(a))
	return cmd
}

func newFundingEdgeCmd(a *app) *cobra.Command {
	var rate, premium, floor, ceiling float64

	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Net funding edge in basis points after clamping the premium",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(a.out, "%.4f\n", funding.NetEdgeBps(rate, premium, floor, ceiling))
			return err
		},
	}
	cmd.Flags().Float64Var(&rate, "rate", 0, "Funding rate (decimal)")
	cmd.Flags().Float64Var(&premium, "premium", 0, "Average premium index (decimal)")
	cmd.Flags().Float64Var(&floor, "floor", -0.0005, "Premium clamp floor")
	cmd.Flags().Float64Var(&ceiling, "cap", 0.0005, "Premium clamp cap")
	_ = cmd.MarkFlagRequired("rate")
	_ = cmd.MarkFlagRequired("premium")
	return cmd
}

func newFundingPnLCmd(a *app) *cobra.Command {
	var (
		window time.Duration
		daily  bool
	)

	cmd := &cobra.Command{
		Use:   "pnl <records.csv>",
		Short: "Aggregate funding PnL over fixed windows or UTC days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := funding.LoadRecords(args[0])
			if err != nil {
				return err
			}

			if daily {
				rollup := funding.DailyRollup(records)
				days := make([]string, 0, len(rollup))
				for d := range rollup {
					days = append(days, d)
				}
				sort.Strings(days)

				fmt.Fprintln(a.out, "date,pnl")
				for _, d := range days {
					fmt.Fprintf(a.out, "%s,%.6f\n", d, rollup[d])
				}
				return nil
			}

			windows, err := funding.WindowedPnL(records, window)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "start,end,pnl")
			for _, w := range windows {
				fmt.Fprintf(a.out, "%s,%s,%.6f\n", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339), w.PnL)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&window, "window", 8*time.Hour, "Aggregation window")
	cmd.Flags().BoolVar(&daily, "daily", false, "Roll up by UTC day instead of fixed windows")
	return cmd
}
