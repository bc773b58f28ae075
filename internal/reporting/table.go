package reporting

import (
	"fmt"
	"strings"

	"strategy-gate/internal/domain"
)

// RenderFoldTable renders fold metrics as a fixed-width text table.
func RenderFoldTable(folds []domain.FoldMetrics) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-5s%10s%10s%10s\n", "fold", "sharpe", "maxdd", "variance"))
	for _, f := range folds {
		sb.WriteString(fmt.Sprintf("%-5d%10.4f%10.4f%10.4f\n", f.Fold, f.Sharpe, f.MaxDrawdown, f.Variance))
	}

	return sb.String()
}
