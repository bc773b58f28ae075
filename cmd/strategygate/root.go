package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"strategy-gate/internal/config"
	"strategy-gate/internal/logging"
)

// app carries state shared by subcommands.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger zerolog.Logger
	out    io.Writer
	errOut io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "strategygate",
		Short:         "Validate trading strategies and gate their deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override log level (trace|debug|info|warn|error)")

	root.AddCommand(
		newWFOCmd(a),
		newGateCmd(a),
		newHCOPECmd(a),
		newTCACmd(a),
		newRunCmd(a),
		newServeCmd(a),
		newFundingCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	logger, err := logging.NewWithWriter(a.errOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}
