package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"strategy-gate/internal/domain"
	"strategy-gate/internal/reporting"
	"strategy-gate/internal/tca"
)

func newTCACmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tca",
		Short: "Transaction cost analysis: calibrate and simulate limit-order fills",
	}
	cmd.AddCommand(newTCACalibrateCmd(a), newTCASimulateCmd(a))
	return cmd
}

func newTCACalibrateCmd(a *app) *cobra.Command {
	var (
		venue string
		store bool
	)

	cmd := &cobra.Command{
		Use:   "calibrate <executions.csv>",
		Short: "Fit simulator parameters from a historical execution log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if venue == "" {
				venue = a.cfg.TCA.Venue
			}

			if !store {
				res, err := tca.CalibrateFile(args[0])
				if err != nil {
					return err
				}
				return writeJSON(a, res)
			}

			svc, cleanup, err := a.createServices(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			cal, err := svc.orch.Calibrate(cmd.Context(), venue, args[0])
			if err != nil {
				return err
			}
			return writeJSON(a, cal)
		},
	}
	cmd.Flags().StringVar(&venue, "venue", "", "Venue the log belongs to (default from config)")
	cmd.Flags().BoolVar(&store, "store", false, "Persist the calibration to the configured storage")
	return cmd
}

func newTCASimulateCmd(a *app) *cobra.Command {
	var (
		side            string
		qty, limit, mid float64
		calibrationLog  string
		format          string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a single limit-order leg",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, ok := domain.ParseSide(side)
			if !ok {
				return fmt.Errorf("%w: side must be buy or sell, got %q", tca.ErrInvalidLeg, side)
			}

			sim, err := a.simulator(calibrationLog)
			if err != nil {
				return err
			}
			leg := domain.Leg{Side: s, Quantity: qty, LimitPrice: limit, ArrivalMid: mid}
			res, err := sim.SimulateLeg(leg)
			if err != nil {
				return err
			}

			switch format {
			case formatText:
				_, err = fmt.Fprintf(a.out, "filled_qty=%.6f avg_price=%.6f implementation_shortfall=%.6f\n",
					res.FilledQty, res.AvgPrice, res.ImplementationShortfall)
				return err
			case formatCSV:
				_, err = fmt.Fprint(a.out, reporting.RenderSimulationCSV([]domain.Leg{leg}, []domain.SimulationResult{res}))
				return err
			case formatJSON:
				return writeJSON(a, res)
			default:
				return fmt.Errorf("unknown format %q: want text, csv or json", format)
			}
		},
	}
	cmd.Flags().StringVar(&side, "side", "", "Order side (buy|sell)")
	cmd.Flags().Float64Var(&qty, "qty", 0, "Order quantity")
	cmd.Flags().Float64Var(&limit, "limit", 0, "Limit price")
	cmd.Flags().Float64Var(&mid, "mid", 0, "Arrival mid price")
	cmd.Flags().StringVar(&calibrationLog, "calibration", "", "Execution log to calibrate from (default from config)")
	cmd.Flags().StringVar(&format, "format", formatText, "Output format (text|csv|json)")
	_ = cmd.MarkFlagRequired("side")
	_ = cmd.MarkFlagRequired("qty")
	_ = cmd.MarkFlagRequired("limit")
	_ = cmd.MarkFlagRequired("mid")
	return cmd
}

// simulator calibrates from logPath or the configured log, else uses configured params.
func (a *app) simulator(logPath string) (*tca.Simulator, error) {
	if logPath == "" {
		logPath = a.cfg.TCA.CalibrationLog
	}
	if logPath != "" {
		return tca.CalibrateFromLogs(logPath)
	}
	c := a.cfg.TCA
	return tca.New(domain.TCAParams{
		FillProb:         c.FillProb,
		AdverseSelection: c.AdverseSelection,
		LatencyMs:        c.LatencyMs,
		Depth:            c.Depth,
	})
}

func writeJSON(a *app, v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
