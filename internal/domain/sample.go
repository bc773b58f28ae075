package domain

// Sample represents one time-labeled observation of strategy performance.
// End is the label horizon: the time at which Return is fully known.
// Callers supply samples sorted by Start ASC; the core never re-sorts them.
type Sample struct {
	Start  float64 // observation start timestamp
	End    float64 // label horizon timestamp (Start <= End)
	Return float64 // realised return over [Start, End]
}

// SampleColumns splits samples into parallel start, end and return slices.
func SampleColumns(samples []Sample) (starts, ends, returns []float64) {
	starts = make([]float64, len(samples))
	ends = make([]float64, len(samples))
	returns = make([]float64, len(samples))
	for i, s := range samples {
		starts[i] = s.Start
		ends[i] = s.End
		returns[i] = s.Return
	}
	return starts, ends, returns
}
