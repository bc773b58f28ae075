package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"strategy-gate/internal/dataset"
	"strategy-gate/internal/orchestrator"
	"strategy-gate/internal/reporting"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		f                     wfoFlags
		strategyID            string
		threshold, confidence float64
		strict                bool
	)

	cmd := &cobra.Command{
		Use:   "run <samples.csv>",
		Short: "Validate, gate and persist a strategy run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.resolve(cmd, a)
			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.Gate.Threshold
			}
			if !cmd.Flags().Changed("confidence") {
				confidence = a.cfg.Gate.Confidence
			}

			samples, err := dataset.LoadSamples(args[0])
			if err != nil {
				return err
			}

			svc, cleanup, err := a.createServices(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			run, err := svc.orch.Run(cmd.Context(), orchestrator.RunRequest{
				StrategyID:     strategyID,
				Samples:        samples,
				Splits:         f.splits,
				EmbargoPct:     f.embargo,
				EmbargoMode:    f.embargoMode,
				PeriodsPerYear: f.periodsPerYear,
				Threshold:      threshold,
				Confidence:     confidence,
			})
			if err != nil {
				return err
			}

			report, err := svc.reports.Generate(cmd.Context(), run.RunID)
			if err != nil {
				return err
			}

			switch f.format {
			case formatMarkdown:
				if _, err := fmt.Fprint(a.out, reporting.RenderRunMarkdown(report)); err != nil {
					return err
				}
			case formatJSON:
				if err := writeJSON(a, run); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q: want markdown or json", f.format)
			}

			if strict && !run.Decision.Passed {
				return errRejected
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.format, "format", formatMarkdown, "Output format (markdown|json)")
	cmd.Flags().StringVar(&strategyID, "strategy-id", "", "Strategy identifier")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum acceptable lower bound on mean fold Sharpe")
	cmd.Flags().Float64Var(&confidence, "confidence", 0.95, "One-sided confidence level")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit nonzero when the gate rejects")
	_ = cmd.MarkFlagRequired("strategy-id")
	return cmd
}
