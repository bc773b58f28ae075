package funding

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.01, Clamp(0.05, -0.01, 0.01))
	assert.Equal(t, -0.01, Clamp(-0.05, -0.01, 0.01))
	assert.Equal(t, 0.005, Clamp(0.005, -0.01, 0.01))
}

func TestNetEdgeBps(t *testing.T) {
	// premium clamped to 0.0075
	assert.InDelta(t, 25.0, NetEdgeBps(0.01, 0.02, -0.0075, 0.0075), 1e-9)
	assert.InDelta(t, -5.0, NetEdgeBps(0.0001, 0.0006, -0.0075, 0.0075), 1e-9)
}

func TestRecordPnL(t *testing.T) {
	r := Record{Rate: 0.001, Position: -2, Price: 30000}
	assert.InDelta(t, -60.0, r.PnL(), 1e-9)
}

func TestWindowedPnL(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []Record{
		{Timestamp: base.Add(9 * time.Hour), Rate: 0.001, Position: 1, Price: 100},
		{Timestamp: base, Rate: 0.001, Position: 1, Price: 100},
		{Timestamp: base.Add(30 * time.Hour), Rate: 0.002, Position: 1, Price: 100},
	}

	windows, err := WindowedPnL(records, 8*time.Hour)
	require.NoError(t, err)
	require.Len(t, windows, 4)

	assert.Equal(t, base, windows[0].Start)
	assert.InDelta(t, 0.1, windows[0].PnL, 1e-12)
	assert.InDelta(t, 0.1, windows[1].PnL, 1e-12)
	assert.Equal(t, 0.0, windows[2].PnL)
	assert.Equal(t, base.Add(24*time.Hour), windows[3].Start)
	assert.Equal(t, base.Add(32*time.Hour), windows[3].End)
	assert.InDelta(t, 0.2, windows[3].PnL, 1e-12)

	// input untouched
	assert.Equal(t, base.Add(9*time.Hour), records[0].Timestamp)
}

func TestWindowedPnL_Edges(t *testing.T) {
	windows, err := WindowedPnL(nil, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, windows)

	_, err = WindowedPnL([]Record{{}}, 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestDailyRollup(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []Record{
		{Timestamp: base, Rate: 0.001, Position: 1, Price: 100},
		{Timestamp: base.Add(16 * time.Hour), Rate: 0.001, Position: 1, Price: 100},
		{Timestamp: base.Add(48 * time.Hour), Rate: -0.001, Position: 1, Price: 100},
	}

	days := DailyRollup(records)
	require.Len(t, days, 3)
	assert.InDelta(t, 0.2, days["2024-03-01"], 1e-12)
	assert.Equal(t, 0.0, days["2024-03-02"])
	assert.InDelta(t, -0.1, days["2024-03-03"], 1e-12)
}
