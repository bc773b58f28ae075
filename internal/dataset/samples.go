// Package dataset loads timestamped return samples from CSV files.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"strategy-gate/internal/domain"
)

var (
	// ErrInvalidInput is returned for malformed rows or a missing column.
	ErrInvalidInput = errors.New("invalid sample data")

	// ErrUnsorted is returned when sample starts are not ascending.
	ErrUnsorted = errors.New("samples not sorted by start")
)

// Column names. "end" is accepted as an alias for "t1".
const (
	ColStart  = "start"
	ColEnd    = "t1"
	ColReturn = "return"
)

// LoadSamples reads samples from the CSV file at path.
func LoadSamples(path string) ([]domain.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open samples: %w", err)
	}
	defer f.Close()

	return ReadSamples(f)
}

// ReadSamples parses a CSV with a header containing start, t1 (or end) and
// return columns. Any malformed row fails the whole read.
func ReadSamples(r io.Reader) ([]domain.Sample, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	startIdx, endIdx, retIdx := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case ColStart:
			startIdx = i
		case ColEnd, "end":
			endIdx = i
		case ColReturn:
			retIdx = i
		}
	}
	if startIdx < 0 || endIdx < 0 || retIdx < 0 {
		return nil, fmt.Errorf("%w: header must contain start, t1 and return columns", ErrInvalidInput)
	}

	var samples []domain.Sample
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		line, _ := reader.FieldPos(0)

		s, err := parseSample(record, startIdx, endIdx, retIdx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if n := len(samples); n > 0 && s.Start < samples[n-1].Start {
			return nil, fmt.Errorf("line %d: %w: start %v after %v", line, ErrUnsorted, s.Start, samples[n-1].Start)
		}
		samples = append(samples, s)
	}

	return samples, nil
}

func parseSample(record []string, startIdx, endIdx, retIdx int) (domain.Sample, error) {
	start, err := parseField(record, startIdx, ColStart)
	if err != nil {
		return domain.Sample{}, err
	}
	end, err := parseField(record, endIdx, ColEnd)
	if err != nil {
		return domain.Sample{}, err
	}
	ret, err := parseField(record, retIdx, ColReturn)
	if err != nil {
		return domain.Sample{}, err
	}
	if start > end {
		return domain.Sample{}, fmt.Errorf("%w: start %v after t1 %v", ErrInvalidInput, start, end)
	}
	return domain.Sample{Start: start, End: end, Return: ret}, nil
}

func parseField(record []string, idx int, name string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: bad %s value %q", ErrInvalidInput, name, record[idx])
	}
	return v, nil
}

// CheckOrder returns ErrUnsorted unless sample starts are ascending and
// ErrInvalidInput for a sample whose start is after its end.
func CheckOrder(samples []domain.Sample) error {
	for i, s := range samples {
		if s.Start > s.End {
			return fmt.Errorf("sample %d: %w: start %v after t1 %v", i, ErrInvalidInput, s.Start, s.End)
		}
		if i > 0 && s.Start < samples[i-1].Start {
			return fmt.Errorf("sample %d: %w: start %v after %v", i, ErrUnsorted, s.Start, samples[i-1].Start)
		}
	}
	return nil
}
