// Package main provides the strategy-gate CLI: walk-forward validation,
// deployment gating, HCOPE evaluation and TCA simulation.
//
// Usage:
//
//	strategygate wfo samples.csv --splits 5 --embargo 0.01
//	strategygate gate --estimate 1.5 --std 0.2 --threshold 1.0
//	strategygate hcope rewards.json --estimator hoeffding --delta 0.05
//	strategygate tca calibrate executions.csv
//	strategygate tca simulate --side buy --qty 100 --limit 101 --mid 100
//	strategygate run samples.csv --strategy-id momentum
//	strategygate funding pnl funding.csv --window 8h
//	strategygate serve --config config.yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
