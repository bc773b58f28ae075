package hcope

import (
	"fmt"
	"strings"

	"strategy-gate/internal/domain"
)

// RenderMarkdown renders a gate decision as an audit report.
func RenderMarkdown(d domain.GateDecision) string {
	var sb strings.Builder

	sb.WriteString("# HCOPE Gate Report\n\n")
	verdict := "DEPLOY"
	if !d.Passed {
		verdict = "NO-DEPLOY"
	}
	sb.WriteString(fmt.Sprintf("## Decision: %s\n\n", verdict))

	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	if d.Estimator != "" {
		sb.WriteString(fmt.Sprintf("| Estimator | %s |\n", d.Estimator))
	}
	if d.Confidence > 0 {
		sb.WriteString(fmt.Sprintf("| Confidence | %.2f%% |\n", d.Confidence*100))
	}
	if d.SampleCount > 0 {
		sb.WriteString(fmt.Sprintf("| Samples | %d |\n", d.SampleCount))
	}
	sb.WriteString(fmt.Sprintf("| Lower confidence bound | %.6f |\n", d.LowerConfidenceBound))
	sb.WriteString(fmt.Sprintf("| Threshold | %.6f |\n", d.Threshold))
	sb.WriteString("\n")

	if d.Passed {
		sb.WriteString(fmt.Sprintf("LCB %.6f >= threshold %.6f.\n", d.LowerConfidenceBound, d.Threshold))
	} else {
		sb.WriteString(fmt.Sprintf("LCB %.6f is below threshold %.6f.\n", d.LowerConfidenceBound, d.Threshold))
	}
	return sb.String()
}
