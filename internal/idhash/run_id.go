package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/mr-tron/base58"

	"strategy-gate/internal/domain"
)

// SamplesDigest computes a deterministic digest of a sample series.
// Formula: SHA256 over "start|end|return\n" per sample, shortest float formatting.
// Returns hex-encoded hash (64 characters).
func SamplesDigest(samples []domain.Sample) string {
	h := sha256.New()
	buf := make([]byte, 0, 64)
	for _, s := range samples {
		buf = buf[:0]
		buf = strconv.AppendFloat(buf, s.Start, 'g', -1, 64)
		buf = append(buf, '|')
		buf = strconv.AppendFloat(buf, s.End, 'g', -1, 64)
		buf = append(buf, '|')
		buf = strconv.AppendFloat(buf, s.Return, 'g', -1, 64)
		buf = append(buf, '\n')
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// RunKey holds every input that distinguishes one validation run from another.
type RunKey struct {
	StrategyID     string
	SamplesDigest  string
	Splits         int
	EmbargoPct     float64
	EmbargoMode    string
	PeriodsPerYear float64
	Threshold      float64
	Confidence     float64
	CreatedAt      int64
}

// ComputeRunID computes a deterministic validation run ID.
// Formula: SHA256(strategy_id|samples_digest|splits|embargo_pct|embargo_mode|
// periods_per_year|threshold|confidence|created_at)
// Returns the base58-encoded hash.
func ComputeRunID(k RunKey) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	data := fmt.Sprintf("%s|%s|%d|%s|%s|%s|%s|%s|%d",
		k.StrategyID,
		k.SamplesDigest,
		k.Splits,
		f(k.EmbargoPct),
		k.EmbargoMode,
		f(k.PeriodsPerYear),
		f(k.Threshold),
		f(k.Confidence),
		k.CreatedAt,
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}

// ComputeCalibrationID computes a deterministic calibration ID.
// Formula: SHA256(venue|fill_prob|adverse_selection|latency_ms|depth|rows_used|created_at)
// Returns the base58-encoded hash.
func ComputeCalibrationID(venue string, params domain.TCAParams, rowsUsed int, createdAt int64) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%s|%d|%d",
		venue,
		strconv.FormatFloat(params.FillProb, 'g', -1, 64),
		strconv.FormatFloat(params.AdverseSelection, 'g', -1, 64),
		strconv.FormatFloat(params.LatencyMs, 'g', -1, 64),
		strconv.FormatFloat(params.Depth, 'g', -1, 64),
		rowsUsed,
		createdAt,
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}
