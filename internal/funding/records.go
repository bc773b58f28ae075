package funding

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidRecord is returned for a malformed funding CSV.
var ErrInvalidRecord = errors.New("invalid funding record")

// Column names for funding CSVs.
const (
	ColTimestamp = "timestamp"
	ColRate      = "rate"
	ColPosition  = "position"
	ColPrice     = "price"
)

// LoadRecords reads funding records from the CSV file at path.
func LoadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open funding records: %w", err)
	}
	defer f.Close()

	return ReadRecords(f)
}

// ReadRecords parses a CSV with timestamp, rate, position and price columns.
// Timestamps are RFC 3339 or Unix milliseconds.
func ReadRecords(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range []string{ColTimestamp, ColRate, ColPosition, ColPrice} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrInvalidRecord, name)
		}
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		line, _ := reader.FieldPos(0)

		rec, err := parseRecord(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecord(row []string, cols map[string]int) (Record, error) {
	ts, err := parseTimestamp(strings.TrimSpace(row[cols[ColTimestamp]]))
	if err != nil {
		return Record{}, err
	}

	var vals [3]float64
	for i, name := range []string{ColRate, ColPosition, ColPrice} {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[cols[name]]), 64)
		if err != nil {
			return Record{}, fmt.Errorf("%w: %s: %v", ErrInvalidRecord, name, err)
		}
		vals[i] = v
	}

	return Record{Timestamp: ts, Rate: vals[0], Position: vals[1], Price: vals[2]}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrInvalidRecord, s)
	}
	return ts.UTC(), nil
}
