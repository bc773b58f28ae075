package tca

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"strategy-gate/internal/domain"
)

// Execution log column names. All five are required on every row.
const (
	ColLatencyMs   = "latency_ms"
	ColDepth       = "depth"
	ColArrivalMid  = "arrival_mid"
	ColPostFillMid = "post_fill_mid"
	ColFilled      = "filled"
)

var requiredColumns = []string{ColLatencyMs, ColDepth, ColArrivalMid, ColPostFillMid, ColFilled}

// CalibrationResult holds calibrated parameters and row accounting.
type CalibrationResult struct {
	Params      domain.TCAParams `json:"params"`
	RowsUsed    int              `json:"rows_used"`
	RowsSkipped int              `json:"rows_skipped"`
}

// CalibrateFromLogs reads an execution log CSV and builds a calibrated simulator.
// Returns an error wrapping ErrLogNotFound if path does not exist.
func CalibrateFromLogs(path string) (*Simulator, error) {
	res, err := CalibrateFile(path)
	if err != nil {
		return nil, err
	}
	return New(res.Params)
}

// CalibrateFile calibrates parameters from the execution log at path.
// The file is closed on every return path.
func CalibrateFile(path string) (*CalibrationResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrLogNotFound, path, err)
		}
		return nil, fmt.Errorf("open calibration log: %w", err)
	}
	defer f.Close()

	return CalibrateFromReader(f)
}

// CalibrateFromReader derives parameters from an execution log with a header row:
//
//	fill_prob         = filled rows / counted rows
//	latency_ms        = mean(latency_ms)
//	depth             = mean(depth)
//	adverse_selection = mean(post_fill_mid - arrival_mid)
//
// Rows with a required field absent or empty are skipped and not counted.
// Every other row is counted as logged, including zero depth. A present
// value that is not a finite number fails with ErrInvalidLog. A log with no
// counted rows yields DefaultTCAParams.
func CalibrateFromReader(r io.Reader) (*CalibrationResult, error) {
	rows, skipped, err := ReadExecutionLog(r)
	if err != nil {
		return nil, err
	}
	params := CalibrateRows(rows)
	if err := validateParams(params); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLog, err)
	}
	return &CalibrationResult{
		Params:      params,
		RowsUsed:    len(rows),
		RowsSkipped: skipped,
	}, nil
}

// CalibrateRows computes parameters from already-parsed rows.
func CalibrateRows(rows []domain.ExecutionLogRow) domain.TCAParams {
	if len(rows) == 0 {
		return domain.DefaultTCAParams
	}

	var filled int
	var latency, depth, adverse float64
	for _, row := range rows {
		if row.Filled {
			filled++
		}
		latency += row.LatencyMs
		depth += row.Depth
		adverse += row.PostFillMid - row.ArrivalMid
	}

	n := float64(len(rows))
	return domain.TCAParams{
		FillProb:         float64(filled) / n,
		AdverseSelection: adverse / n,
		LatencyMs:        latency / n,
		Depth:            depth / n,
	}
}

// ReadExecutionLog parses the strict named-column execution log schema.
// Returns the counted rows and the number of rows skipped for a missing
// field. An empty input (no header) is an empty log, not an error.
func ReadExecutionLog(r io.Reader) ([]domain.ExecutionLogRow, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read calibration header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var rows []domain.ExecutionLogRow
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read calibration row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		row, ok, err := parseLogRow(record, cols, line)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}

	return rows, skipped, nil
}

// parseLogRow reports ok=false when a required field is absent or empty,
// and an error when a present numeric field does not parse.
func parseLogRow(record []string, cols map[string]int, line int) (domain.ExecutionLogRow, bool, error) {
	fields := make(map[string]string, len(requiredColumns))
	for _, name := range requiredColumns {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return domain.ExecutionLogRow{}, false, nil
		}
		v := strings.TrimSpace(record[idx])
		if v == "" {
			return domain.ExecutionLogRow{}, false, nil
		}
		fields[name] = v
	}

	var nums [4]float64
	for i, name := range requiredColumns[:4] {
		v, err := strconv.ParseFloat(fields[name], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.ExecutionLogRow{}, false,
				fmt.Errorf("%w: line %d: %s %q is not a finite number", ErrInvalidLog, line, name, fields[name])
		}
		nums[i] = v
	}

	return domain.ExecutionLogRow{
		LatencyMs:   nums[0],
		Depth:       nums[1],
		ArrivalMid:  nums[2],
		PostFillMid: nums[3],
		Filled:      parseFilled(fields[ColFilled]),
	}, true, nil
}

// parseFilled accepts 1, true and yes (case-insensitive) as filled.
// Anything else counts as not filled.
func parseFilled(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
