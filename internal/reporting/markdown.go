package reporting

import (
	"fmt"
	"strings"
	"time"

	"strategy-gate/internal/domain"
)

// RenderRunMarkdown renders a validation run report as Markdown string.
func RenderRunMarkdown(r *Report) string {
	var sb strings.Builder
	run := r.Run

	// Header
	sb.WriteString("# Validation Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Run parameters
	sb.WriteString("## Run\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Run ID | %s |\n", run.RunID))
	sb.WriteString(fmt.Sprintf("| Strategy | %s |\n", run.StrategyID))
	sb.WriteString(fmt.Sprintf("| Created (ms) | %d |\n", run.CreatedAt))
	sb.WriteString(fmt.Sprintf("| Samples | %d |\n", run.SampleCount))
	sb.WriteString(fmt.Sprintf("| Splits | %d |\n", run.Splits))
	sb.WriteString(fmt.Sprintf("| Embargo | %.4f |\n", run.EmbargoPct))
	sb.WriteString(fmt.Sprintf("| Periods per year | %g |\n", run.PeriodsPerYear))
	sb.WriteString("\n")

	// Folds
	sb.WriteString("## Folds\n\n")
	if len(run.Folds) == 0 {
		sb.WriteString("No fold metrics recorded.\n\n")
	} else {
		sb.WriteString("| Fold | Sharpe | Max DD | Variance | Test | Train |\n")
		sb.WriteString("|------|--------|--------|----------|------|-------|\n")
		for _, f := range run.Folds {
			sb.WriteString(fmt.Sprintf("| %d | %.4f | %.4f | %.6f | %d | %d |\n",
				f.Fold, f.Sharpe, f.MaxDrawdown, f.Variance, f.TestSize, f.TrainSize))
		}
		sb.WriteString("\n")
	}

	// Summary
	s := run.Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Folds | %d |\n", s.Folds))
	sb.WriteString(fmt.Sprintf("| Mean Sharpe | %.4f |\n", s.MeanSharpe))
	sb.WriteString(fmt.Sprintf("| Std Sharpe | %.4f |\n", s.StdSharpe))
	sb.WriteString(fmt.Sprintf("| Worst Max DD | %.4f |\n", s.WorstMaxDrawdown))
	sb.WriteString(fmt.Sprintf("| Mean Variance | %.6f |\n", s.MeanVariance))
	sb.WriteString("\n")

	// Gate
	sb.WriteString("## Gate\n\n")
	if run.Decision != nil {
		writeDecision(&sb, *run.Decision)
	} else {
		sb.WriteString("No gate decision recorded.\n\n")
	}

	if len(r.Decisions) > 0 {
		sb.WriteString("### Decision History\n\n")
		sb.WriteString("| Decision ID | Estimator | LCB | Threshold | Result |\n")
		sb.WriteString("|-------------|-----------|-----|-----------|--------|\n")
		for _, d := range r.Decisions {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.4f | %.4f | %s |\n",
				d.DecisionID, d.Decision.Estimator, d.Decision.LowerConfidenceBound,
				d.Decision.Threshold, passText(d.Decision.Passed)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeDecision(sb *strings.Builder, d domain.GateDecision) {
	sb.WriteString(fmt.Sprintf("Decision: **%s**\n\n", passText(d.Passed)))
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| LCB | %.4f |\n", d.LowerConfidenceBound))
	sb.WriteString(fmt.Sprintf("| Threshold | %.4f |\n", d.Threshold))
	if d.Confidence > 0 {
		sb.WriteString(fmt.Sprintf("| Confidence | %.2f |\n", d.Confidence))
	}
	sb.WriteString("\n")
}

func passText(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}
