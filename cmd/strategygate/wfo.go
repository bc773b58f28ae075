package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"strategy-gate/internal/dataset"
	"strategy-gate/internal/domain"
	"strategy-gate/internal/metrics"
	"strategy-gate/internal/reporting"
	"strategy-gate/internal/validation"
)

// Output formats.
const (
	formatTable    = "table"
	formatCSV      = "csv"
	formatJSON     = "json"
	formatText     = "text"
	formatMarkdown = "markdown"
)

type wfoFlags struct {
	splits         int
	embargo        float64
	embargoMode    string
	periodsPerYear float64
	format         string
}

// resolve fills unchanged flags from config.
func (f *wfoFlags) resolve(cmd *cobra.Command, a *app) {
	v := a.cfg.Validation
	if !cmd.Flags().Changed("splits") {
		f.splits = v.Splits
	}
	if !cmd.Flags().Changed("embargo") {
		f.embargo = v.EmbargoPct
	}
	if !cmd.Flags().Changed("embargo-mode") {
		f.embargoMode = v.EmbargoMode
	}
	if !cmd.Flags().Changed("periods-per-year") {
		f.periodsPerYear = v.PeriodsPerYear
	}
}

func (f *wfoFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.splits, "splits", 5, "Number of folds")
	cmd.Flags().Float64Var(&f.embargo, "embargo", 0.01, "Embargo fraction of the time range after each test block")
	cmd.Flags().StringVar(&f.embargoMode, "embargo-mode", "time", "Embargo sizing (time|count)")
	cmd.Flags().Float64Var(&f.periodsPerYear, "periods-per-year", 252, "Sharpe annualisation factor (0 disables)")
}

func newWFOCmd(a *app) *cobra.Command {
	var f wfoFlags

	cmd := &cobra.Command{
		Use:   "wfo <samples.csv>",
		Short: "Run purged k-fold walk-forward validation and print fold metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.resolve(cmd, a)

			samples, err := dataset.LoadSamples(args[0])
			if err != nil {
				return err
			}
			folds, err := runWFO(cmd, a, f, samples)
			if err != nil {
				return err
			}
			return writeFolds(a, f.format, folds)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.format, "format", formatTable, "Output format (table|csv|json)")
	return cmd
}

func runWFO(cmd *cobra.Command, a *app, f wfoFlags, samples []domain.Sample) ([]domain.FoldMetrics, error) {
	mode, err := validation.ParseEmbargoMode(f.embargoMode)
	if err != nil {
		return nil, err
	}
	splitter, err := validation.NewPurgedKFold(f.splits, f.embargo, validation.WithEmbargoMode(mode))
	if err != nil {
		return nil, err
	}
	runner, err := metrics.NewRunner(metrics.RunnerOptions{
		Splitter:       splitter,
		PeriodsPerYear: f.periodsPerYear,
		Workers:        a.cfg.Validation.Workers,
	})
	if err != nil {
		return nil, err
	}
	return runner.Run(cmd.Context(), samples)
}

func writeFolds(a *app, format string, folds []domain.FoldMetrics) error {
	switch format {
	case formatTable:
		_, err := fmt.Fprint(a.out, reporting.RenderFoldTable(folds))
		return err
	case formatCSV:
		_, err := fmt.Fprint(a.out, reporting.RenderFoldCSV(folds))
		return err
	case formatJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Folds   []domain.FoldMetrics `json:"folds"`
			Summary domain.FoldSummary   `json:"summary"`
		}{folds, metrics.Summarize(folds)})
	default:
		return fmt.Errorf("unknown format %q: want table, csv or json", format)
	}
}
