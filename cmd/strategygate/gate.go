package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"strategy-gate/internal/domain"
	"strategy-gate/internal/hcope"
)

// errRejected is returned in strict mode when the gate does not pass.
var errRejected = errors.New("gate rejected deployment")

func newGateCmd(a *app) *cobra.Command {
	var (
		estimate, std         float64
		threshold, confidence float64
		format                string
		strict                bool
	)

	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Gate deployment on the lower confidence bound of an estimate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.Gate.Threshold
			}
			if !cmd.Flags().Changed("confidence") {
				confidence = a.cfg.Gate.Confidence
			}

			d, err := hcope.Gate(estimate, std, threshold, confidence)
			if err != nil {
				return err
			}
			a.logger.Debug().Float64("lcb", d.LowerConfidenceBound).Bool("passed", d.Passed).Msg("gate evaluated")
			return writeDecision(a, format, d, strict)
		},
	}
	cmd.Flags().Float64Var(&estimate, "estimate", 0, "Point estimate (e.g. Sharpe ratio)")
	cmd.Flags().Float64Var(&std, "std", 0, "Standard deviation of the estimate")
	cmd.Flags().Float64Var(&threshold, "threshold", hcope.DefaultThreshold, "Minimum acceptable lower bound")
	cmd.Flags().Float64Var(&confidence, "confidence", hcope.DefaultConfidence, "One-sided confidence level")
	cmd.Flags().StringVar(&format, "format", formatText, "Output format (text|json|markdown)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit nonzero when the gate rejects")
	_ = cmd.MarkFlagRequired("estimate")
	_ = cmd.MarkFlagRequired("std")
	return cmd
}

func writeDecision(a *app, format string, d domain.GateDecision, strict bool) error {
	var err error
	switch format {
	case formatText:
		if d.Passed {
			_, err = fmt.Fprintf(a.out, "Policy passed the gate: LCB %.6f >= threshold %.6f\n", d.LowerConfidenceBound, d.Threshold)
		} else {
			_, err = fmt.Fprintf(a.out, "Policy failed the gate: LCB %.6f is below the threshold %.6f\n", d.LowerConfidenceBound, d.Threshold)
		}
	case formatJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		err = enc.Encode(d)
	case formatMarkdown:
		_, err = fmt.Fprint(a.out, hcope.RenderMarkdown(d))
	default:
		return fmt.Errorf("unknown format %q: want text, json or markdown", format)
	}
	if err != nil {
		return err
	}
	if strict && !d.Passed {
		return errRejected
	}
	return nil
}
