// Package dataset loads and slices the hourly capacity-factor table that
// scenario evaluations run against. A Table is immutable once built: the
// loader validates it up front and every accessor returns a read-only view,
// so concurrent evaluations can share one table without synchronization.
package dataset

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Table is an ordered sequence of hourly records: a timestamp, a load value
// in MW, and one capacity factor in [0,1] per technology column. Timestamps
// are strictly ascending with exact one-hour spacing.
type Table struct {
	times []time.Time
	load  []float64
	cf    map[string][]float64
	techs []string // sorted; fixes iteration order for reproducible sums
}

// Window is an inclusive [Start, End] time range over a table's index.
type Window struct {
	Start time.Time
	End   time.Time
}

// Hours returns the number of hourly rows the window spans, inclusive of
// both endpoints.
func (w Window) Hours() int {
	return int(w.End.Sub(w.Start)/time.Hour) + 1
}

func (w Window) String() string {
	const layout = "2006-01-02 15:04"
	return fmt.Sprintf("%s .. %s", w.Start.Format(layout), w.End.Format(layout))
}

// New builds a Table from parallel column slices. The input is copied, so
// callers may reuse their slices afterwards.
//
// Validation: at least one row, at least one technology column, equal column
// lengths, strictly ascending timestamps with exact one-hour spacing, load
// values finite and non-negative, capacity factors within [0,1].
func New(times []time.Time, load []float64, cf map[string][]float64) (*Table, error) {
	n := len(times)
	if n == 0 {
		return nil, fmt.Errorf("dataset has no rows")
	}
	if len(load) != n {
		return nil, fmt.Errorf("load column has %d values, want %d", len(load), n)
	}
	if len(cf) == 0 {
		return nil, fmt.Errorf("dataset has no technology columns")
	}

	t := &Table{
		times: append([]time.Time(nil), times...),
		load:  append([]float64(nil), load...),
		cf:    make(map[string][]float64, len(cf)),
		techs: make([]string, 0, len(cf)),
	}
	for name, col := range cf {
		if len(col) != n {
			return nil, fmt.Errorf("capacity-factor column %q has %d values, want %d", name, len(col), n)
		}
		t.cf[name] = append([]float64(nil), col...)
		t.techs = append(t.techs, name)
	}
	sort.Strings(t.techs)

	for i := 0; i < n; i++ {
		if i > 0 {
			if d := t.times[i].Sub(t.times[i-1]); d != time.Hour {
				return nil, fmt.Errorf("row %d: timestamp %s is %s after the previous row, want exactly 1h",
					i, t.times[i].Format(time.RFC3339), d)
			}
		}
		if v := t.load[i]; math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("row %d: non-finite load %v", i, v)
		} else if v < 0 {
			return nil, fmt.Errorf("row %d: negative load %.4f", i, v)
		}
		for _, name := range t.techs {
			// NaN compares false against both bounds.
			if v := t.cf[name][i]; math.IsNaN(v) || v < 0 || v > 1 {
				return nil, fmt.Errorf("row %d: capacity factor %.4f for %q outside [0,1]", i, v, name)
			}
		}
	}
	return t, nil
}

// Len returns the number of hourly rows.
func (t *Table) Len() int { return len(t.times) }

// Start returns the first timestamp in the table.
func (t *Table) Start() time.Time { return t.times[0] }

// End returns the last timestamp in the table.
func (t *Table) End() time.Time { return t.times[len(t.times)-1] }

// Bounds returns the inclusive window covering the whole table.
func (t *Table) Bounds() Window { return Window{Start: t.Start(), End: t.End()} }

// Times returns the hourly timestamps. The slice is a view; treat it as
// read-only.
func (t *Table) Times() []time.Time { return t.times }

// Load returns the hourly load series in MW. The slice is a view; treat it
// as read-only.
func (t *Table) Load() []float64 { return t.load }

// Technologies returns the technology column names in sorted order.
func (t *Table) Technologies() []string {
	return append([]string(nil), t.techs...)
}

// CapacityFactor returns the hourly capacity-factor series for a technology.
// Returns (series, true) if the column exists, (nil, false) if not. The
// slice is a view; treat it as read-only.
func (t *Table) CapacityFactor(tech string) ([]float64, bool) {
	col, ok := t.cf[tech]
	return col, ok
}

// HasTechnology reports whether the table carries a column for tech.
func (t *Table) HasTechnology(tech string) bool {
	_, ok := t.cf[tech]
	return ok
}

// Clip intersects the requested [start, end] range with the table's index
// and aligns it to actual row timestamps. Returns (window, true) when at
// least one row falls inside the range, (zero window, false) when none do.
// Callers are responsible for rejecting start > end before clipping.
func (t *Table) Clip(start, end time.Time) (Window, bool) {
	from, to, ok := t.searchRange(start, end)
	if !ok {
		return Window{}, false
	}
	return Window{Start: t.times[from], End: t.times[to]}, true
}

// Slice returns the subrange of the table covered by w as a new Table view.
// The view shares the underlying column storage with its parent; both stay
// read-only. Returns (nil, false) when w covers no rows.
func (t *Table) Slice(w Window) (*Table, bool) {
	from, to, ok := t.searchRange(w.Start, w.End)
	if !ok {
		return nil, false
	}
	sub := &Table{
		times: t.times[from : to+1],
		load:  t.load[from : to+1],
		cf:    make(map[string][]float64, len(t.cf)),
		techs: t.techs,
	}
	for name, col := range t.cf {
		sub.cf[name] = col[from : to+1]
	}
	return sub, true
}

// searchRange locates the index range [from, to] of rows with
// start <= time <= end.
func (t *Table) searchRange(start, end time.Time) (from, to int, ok bool) {
	n := len(t.times)
	from = sort.Search(n, func(i int) bool { return !t.times[i].Before(start) })
	to = sort.Search(n, func(i int) bool { return t.times[i].After(end) }) - 1
	if from > to || from == n || to < 0 {
		return 0, 0, false
	}
	return from, to, true
}
