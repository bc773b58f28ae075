package reporting

import (
	"fmt"
	"strings"

	"strategy-gate/internal/domain"
)

// RenderFoldCSV renders fold metrics as CSV string.
func RenderFoldCSV(folds []domain.FoldMetrics) string {
	var sb strings.Builder

	sb.WriteString("fold,sharpe,maxdd,variance,test_size,train_size\n")
	for _, f := range folds {
		sb.WriteString(fmt.Sprintf("%d,%.6f,%.6f,%.6f,%d,%d\n",
			f.Fold,
			f.Sharpe,
			f.MaxDrawdown,
			f.Variance,
			f.TestSize,
			f.TrainSize,
		))
	}

	return sb.String()
}

// RenderSimulationCSV renders per-leg simulation results as CSV string.
// legs and results are matched by index.
func RenderSimulationCSV(legs []domain.Leg, results []domain.SimulationResult) string {
	var sb strings.Builder

	sb.WriteString("leg,side,quantity,limit_price,arrival_mid,filled_qty,avg_price,implementation_shortfall\n")
	for i, r := range results {
		var leg domain.Leg
		if i < len(legs) {
			leg = legs[i]
		}
		sb.WriteString(fmt.Sprintf("%d,%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			i,
			leg.Side,
			leg.Quantity,
			leg.LimitPrice,
			leg.ArrivalMid,
			r.FilledQty,
			r.AvgPrice,
			r.ImplementationShortfall,
		))
	}

	return sb.String()
}
