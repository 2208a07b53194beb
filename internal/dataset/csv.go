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
	"time"
)

// timeLayouts are the timestamp formats accepted in the first CSV column,
// tried in order. Layouts without a zone parse as UTC.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Load reads a capacity-factor table from a CSV file on disk.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return t, nil
}

// ReadCSV decodes a capacity-factor table from CSV.
//
// Layout is header-driven: the first column holds timestamps, the column
// named "Load" (any case) holds hourly load in MW, and every other column is
// a technology capacity factor. Rows must be hourly, gap-free, and strictly
// ascending; all values must be finite, capacity factors must lie in [0,1]
// and load must be non-negative. Validation failures report the offending
// CSV line.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("header needs a timestamp column, a Load column and at least one technology column, got %d columns", len(header))
	}

	// Map columns: index 0 is the timestamp, "Load" is the load series,
	// everything else is a technology.
	loadCol := -1
	techCols := make(map[int]string, len(header)-2)
	for i := 1; i < len(header); i++ {
		name := strings.TrimSpace(header[i])
		if strings.EqualFold(name, "Load") {
			if loadCol >= 0 {
				return nil, fmt.Errorf("duplicate Load column")
			}
			loadCol = i
			continue
		}
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i+1)
		}
		for _, seen := range techCols {
			if seen == name {
				return nil, fmt.Errorf("duplicate technology column %q", name)
			}
		}
		techCols[i] = name
	}
	if loadCol < 0 {
		return nil, fmt.Errorf("missing Load column")
	}
	if len(techCols) == 0 {
		return nil, fmt.Errorf("no technology columns")
	}

	var (
		times []time.Time
		load  []float64
		cf    = make(map[string][]float64, len(techCols))
	)
	for _, name := range techCols {
		cf[name] = nil
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		ts, err := parseTimestamp(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(times) > 0 {
			if d := ts.Sub(times[len(times)-1]); d != time.Hour {
				return nil, fmt.Errorf("line %d: timestamp %s is %s after the previous row, want exactly 1h",
					line, ts.Format(time.RFC3339), d)
			}
		}
		times = append(times, ts)

		v, err := parseFloat(rec[loadCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: Load: %w", line, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("line %d: negative load %.4f", line, v)
		}
		load = append(load, v)

		for col, name := range techCols {
			v, err := parseFloat(rec[col])
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, name, err)
			}
			if v < 0 || v > 1 {
				return nil, fmt.Errorf("line %d: capacity factor %.4f for %q outside [0,1]", line, v, name)
			}
			cf[name] = append(cf[name], v)
		}
	}

	if len(times) == 0 {
		return nil, fmt.Errorf("no data rows")
	}
	return New(times, load, cf)
}

// ParseTime parses a timestamp in any accepted dataset layout.
func ParseTime(s string) (time.Time, error) {
	return parseTimestamp(s)
}

// ParseEnd parses a window end bound. A date-only value is expanded to the
// last second of that day, so a day-granularity window includes its final
// day's rows.
func ParseEnd(s string) (time.Time, error) {
	if d, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err == nil {
		return d.Add(24*time.Hour - time.Second), nil
	}
	return parseTimestamp(s)
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// parseFloat parses one CSV cell. strconv accepts "NaN" and "Inf" spellings;
// neither is a valid load or capacity factor, so non-finite values fail here
// with the cell text.
func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", strings.TrimSpace(s))
	}
	return v, nil
}
