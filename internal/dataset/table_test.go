package dataset

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tableStart = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

func hourly(start time.Time, n int) []time.Time {
	times := make([]time.Time, n)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return times
}

func buildTable(t *testing.T) *Table {
	t.Helper()
	table, err := New(hourly(tableStart, 4),
		[]float64{100, 110, 120, 130},
		map[string][]float64{
			"Wind onshore":  {0.3, 0.4, 0.5, 0.6},
			"Solar":         {0, 0.5, 1, 0.5},
			"Nuclear":       {1, 1, 1, 1},
			"Wind offshore": {0.2, 0.2, 0.2, 0.2},
		})
	require.NoError(t, err)
	return table
}

func TestNewValidation(t *testing.T) {
	times := hourly(tableStart, 3)
	load := []float64{100, 100, 100}
	cf := map[string][]float64{"Solar": {0.1, 0.2, 0.3}}

	tests := []struct {
		name    string
		times   []time.Time
		load    []float64
		cf      map[string][]float64
		wantErr string
	}{
		{
			name:    "no rows",
			wantErr: "no rows",
		},
		{
			name:    "load length mismatch",
			times:   times,
			load:    []float64{100, 100},
			cf:      cf,
			wantErr: "load column has 2 values, want 3",
		},
		{
			name:    "no technology columns",
			times:   times,
			load:    load,
			wantErr: "no technology columns",
		},
		{
			name:    "capacity factor length mismatch",
			times:   times,
			load:    load,
			cf:      map[string][]float64{"Solar": {0.1, 0.2}},
			wantErr: `column "Solar" has 2 values, want 3`,
		},
		{
			name:    "gap in timestamps",
			times:   []time.Time{tableStart, tableStart.Add(time.Hour), tableStart.Add(3 * time.Hour)},
			load:    load,
			cf:      cf,
			wantErr: "want exactly 1h",
		},
		{
			name:    "duplicate timestamp",
			times:   []time.Time{tableStart, tableStart, tableStart.Add(time.Hour)},
			load:    load,
			cf:      cf,
			wantErr: "want exactly 1h",
		},
		{
			name:    "descending timestamps",
			times:   []time.Time{tableStart.Add(2 * time.Hour), tableStart.Add(time.Hour), tableStart},
			load:    load,
			cf:      cf,
			wantErr: "want exactly 1h",
		},
		{
			name:    "negative load",
			times:   times,
			load:    []float64{100, -5, 100},
			cf:      cf,
			wantErr: "negative load",
		},
		{
			name:    "NaN load",
			times:   times,
			load:    []float64{100, math.NaN(), 100},
			cf:      cf,
			wantErr: "non-finite load",
		},
		{
			name:    "infinite load",
			times:   times,
			load:    []float64{100, math.Inf(1), 100},
			cf:      cf,
			wantErr: "non-finite load",
		},
		{
			name:    "capacity factor above one",
			times:   times,
			load:    load,
			cf:      map[string][]float64{"Solar": {0.1, 1.2, 0.3}},
			wantErr: "outside [0,1]",
		},
		{
			name:    "capacity factor below zero",
			times:   times,
			load:    load,
			cf:      map[string][]float64{"Solar": {-0.1, 0.2, 0.3}},
			wantErr: "outside [0,1]",
		},
		{
			name:    "NaN capacity factor",
			times:   times,
			load:    load,
			cf:      map[string][]float64{"Solar": {0.1, math.NaN(), 0.3}},
			wantErr: "outside [0,1]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.times, tt.load, tt.cf)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	times := hourly(tableStart, 2)
	load := []float64{100, 200}
	cf := map[string][]float64{"Solar": {0.1, 0.2}}

	table, err := New(times, load, cf)
	require.NoError(t, err)

	load[0] = -999
	cf["Solar"][0] = 42

	assert.Equal(t, []float64{100, 200}, table.Load())
	col, ok := table.CapacityFactor("Solar")
	require.True(t, ok)
	assert.Equal(t, []float64{0.1, 0.2}, col)
}

func TestTableAccessors(t *testing.T) {
	table := buildTable(t)

	assert.Equal(t, 4, table.Len())
	assert.Equal(t, tableStart, table.Start())
	assert.Equal(t, tableStart.Add(3*time.Hour), table.End())
	assert.Equal(t, Window{Start: table.Start(), End: table.End()}, table.Bounds())

	assert.Equal(t,
		[]string{"Nuclear", "Solar", "Wind offshore", "Wind onshore"},
		table.Technologies())

	col, ok := table.CapacityFactor("Solar")
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0.5, 1, 0.5}, col)

	col, ok = table.CapacityFactor("Coal")
	assert.False(t, ok)
	assert.Nil(t, col)

	assert.True(t, table.HasTechnology("Wind offshore"))
	assert.False(t, table.HasTechnology("wind offshore"))
}

func TestClip(t *testing.T) {
	table := buildTable(t)

	tests := []struct {
		name       string
		start, end time.Time
		want       Window
		wantOK     bool
	}{
		{
			name:   "exact bounds",
			start:  table.Start(),
			end:    table.End(),
			want:   table.Bounds(),
			wantOK: true,
		},
		{
			name:   "inner rows",
			start:  tableStart.Add(time.Hour),
			end:    tableStart.Add(2 * time.Hour),
			want:   Window{Start: tableStart.Add(time.Hour), End: tableStart.Add(2 * time.Hour)},
			wantOK: true,
		},
		{
			name:   "sub-hour bounds align to rows",
			start:  tableStart.Add(30 * time.Minute),
			end:    tableStart.Add(2*time.Hour + 30*time.Minute),
			want:   Window{Start: tableStart.Add(time.Hour), End: tableStart.Add(2 * time.Hour)},
			wantOK: true,
		},
		{
			name:   "range beyond both ends clips to bounds",
			start:  tableStart.Add(-48 * time.Hour),
			end:    tableStart.Add(96 * time.Hour),
			want:   table.Bounds(),
			wantOK: true,
		},
		{
			name:  "range after the data",
			start: tableStart.Add(10 * time.Hour),
			end:   tableStart.Add(20 * time.Hour),
		},
		{
			name:  "range before the data",
			start: tableStart.Add(-20 * time.Hour),
			end:   tableStart.Add(-10 * time.Hour),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Clip(tt.start, tt.end)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSlice(t *testing.T) {
	table := buildTable(t)

	sub, ok := table.Slice(Window{
		Start: tableStart.Add(time.Hour),
		End:   tableStart.Add(2 * time.Hour),
	})
	require.True(t, ok)

	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, tableStart.Add(time.Hour), sub.Start())
	assert.Equal(t, []float64{110, 120}, sub.Load())
	col, ok := sub.CapacityFactor("Solar")
	require.True(t, ok)
	assert.Equal(t, []float64{0.5, 1}, col)
	assert.Equal(t, table.Technologies(), sub.Technologies())

	full, ok := table.Slice(table.Bounds())
	require.True(t, ok)
	assert.Equal(t, table.Len(), full.Len())

	_, ok = table.Slice(Window{
		Start: tableStart.Add(10 * time.Hour),
		End:   tableStart.Add(12 * time.Hour),
	})
	assert.False(t, ok)
}

func TestWindowHours(t *testing.T) {
	assert.Equal(t, 1, Window{Start: tableStart, End: tableStart}.Hours())
	assert.Equal(t, 24, Window{Start: tableStart, End: tableStart.Add(23 * time.Hour)}.Hours())
	assert.Equal(t, 168, Window{Start: tableStart, End: tableStart.Add(167 * time.Hour)}.Hours())
}

func TestWindowString(t *testing.T) {
	w := Window{Start: tableStart, End: tableStart.Add(26 * time.Hour)}
	assert.Equal(t, "2024-03-01 00:00 .. 2024-03-02 02:00", w.String())
}
