package main

import (
	"github.com/spf13/cobra"

	"strategy-gate/internal/hcope"
)

func newHCOPECmd(a *app) *cobra.Command {
	var (
		estimator        string
		delta, threshold float64
		format           string
		strict           bool
	)

	cmd := &cobra.Command{
		Use:   "hcope <trajectory.json>",
		Short: "Evaluate a high-confidence off-policy lower bound over reward records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("estimator") {
				estimator = a.cfg.Gate.Estimator
			}
			if !cmd.Flags().Changed("delta") {
				delta = a.cfg.Gate.Delta
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.Gate.Threshold
			}

			est, err := hcope.NewEstimator(estimator, delta)
			if err != nil {
				return err
			}
			d, err := hcope.EvaluateFile(args[0], est, threshold)
			if err != nil {
				return err
			}
			return writeDecision(a, format, d, strict)
		},
	}
	cmd.Flags().StringVar(&estimator, "estimator", hcope.EstimatorNormal, "Bound estimator (normal|hoeffding)")
	cmd.Flags().Float64Var(&delta, "delta", hcope.DefaultDelta, "Failure probability of the bound")
	cmd.Flags().Float64Var(&threshold, "threshold", hcope.DefaultThreshold, "Minimum acceptable lower bound")
	cmd.Flags().StringVar(&format, "format", formatText, "Output format (text|json|markdown)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit nonzero when the gate rejects")
	return cmd
}
