package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"strategy-gate/internal/api"
	"strategy-gate/internal/domain"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, cleanup, err := a.createServices(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			c := a.cfg
			srv := api.NewServer(api.Options{
				Orchestrator: svc.orch,
				Reports:      svc.reports,
				Metrics:      svc.metrics,
				Gatherer:     svc.registry,
				Logger:       &a.logger,
				Defaults: api.Defaults{
					Splits:         c.Validation.Splits,
					EmbargoPct:     c.Validation.EmbargoPct,
					EmbargoMode:    c.Validation.EmbargoMode,
					PeriodsPerYear: c.Validation.PeriodsPerYear,
					Threshold:      c.Gate.Threshold,
					Confidence:     c.Gate.Confidence,
					Estimator:      c.Gate.Estimator,
					Delta:          c.Gate.Delta,
					Venue:          c.TCA.Venue,
					TCAParams: domain.TCAParams{
						FillProb:         c.TCA.FillProb,
						AdverseSelection: c.TCA.AdverseSelection,
						LatencyMs:        c.TCA.LatencyMs,
						Depth:            c.TCA.Depth,
					},
				},
				Workers:         c.Validation.Workers,
				RequestTimeout:  c.Server.RequestTimeout,
				ShutdownTimeout: c.Server.ShutdownTimeout,
				RateLimit:       c.Server.RateLimit,
				RateBurst:       c.Server.RateBurst,
				MaxBodyBytes:    c.Server.MaxBodyBytes,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
