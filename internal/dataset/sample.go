package dataset

import (
	"bytes"
	_ "embed"
	"sync"
)

// sampleCSV is a two-week synthetic capacity-factor table used when no
// dataset file is configured. Regenerate with tools/gen-sample.
//
//go:embed sample_week.csv
var sampleCSV []byte

var (
	sampleOnce  sync.Once
	sampleTable *Table
	sampleErr   error
)

// Sample returns the embedded demonstration dataset: 336 hourly rows
// spanning 2024-01-01 through 2024-01-14 UTC with Nuclear, Solar,
// Wind onshore and Wind offshore capacity factors plus a load series.
// The table is parsed once and shared; treat it as read-only.
func Sample() (*Table, error) {
	sampleOnce.Do(func() {
		sampleTable, sampleErr = ReadCSV(bytes.NewReader(sampleCSV))
	})
	return sampleTable, sampleErr
}
