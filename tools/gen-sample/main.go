// Package main regenerates the synthetic capacity-factor dataset embedded
// in internal/dataset.
//
// The profiles are deterministic closed-form curves: a daylight bell for
// solar, two overlapping sine regimes for onshore and offshore wind, a
// constant baseload with one maintenance derate, and a daily-shaped load
// series. 336 hourly rows spanning 2024-01-01 through 2024-01-14 UTC.
//
// Usage:
//
//	go run ./tools/gen-sample [--out FILE]
//
// Flags:
//
//	--out   Output file (default: ./internal/dataset/sample_week.csv)
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"
)

const (
	hours = 14 * 24

	// derateFrom/derateTo bracket the nuclear maintenance window (hour
	// indexes, half-open).
	derateFrom = 228
	derateTo   = 252
)

func main() {
	out := flag.String("out", "./internal/dataset/sample_week.csv", "Output file for the generated CSV")
	flag.Parse()

	var b strings.Builder
	b.WriteString("timestamp,Nuclear,Solar,Wind onshore,Wind offshore,Load\n")

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for h := 0; h < hours; h++ {
		ts := start.Add(time.Duration(h) * time.Hour)
		day := h / 24
		hod := h % 24

		fmt.Fprintf(&b, "%s,%.4f,%.4f,%.4f,%.4f,%.1f\n",
			ts.Format("2006-01-02 15:04:05"),
			nuclearCF(h),
			solarCF(day, hod),
			onshoreCF(h),
			offshoreCF(h),
			loadMW(day, hod),
		)
	}

	if err := os.WriteFile(*out, []byte(b.String()), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d hourly rows to %s\n", hours, *out)
}

// solarCF is a daylight bell between 07:00 and 17:00 with a slow
// day-to-day amplitude drift.
func solarCF(day, hod int) float64 {
	if hod < 7 || hod > 17 {
		return 0
	}
	amp := 0.38 + 0.07*math.Sin(0.9*float64(day))
	bell := math.Sin(math.Pi * float64(hod-7) / 10.0)
	if bell <= 0 {
		return 0
	}
	return clamp(amp*math.Pow(bell, 1.3), 0, 1)
}

func onshoreCF(h int) float64 {
	v := 0.27 + 0.17*math.Sin(2*math.Pi*float64(h)/61.0+1.7) + 0.09*math.Sin(2*math.Pi*float64(h)/13.3)
	return clamp(v, 0.02, 0.95)
}

func offshoreCF(h int) float64 {
	v := 0.40 + 0.21*math.Sin(2*math.Pi*float64(h)/83.0+0.4) + 0.10*math.Sin(2*math.Pi*float64(h)/17.9+2.1)
	return clamp(v, 0.05, 0.98)
}

func nuclearCF(h int) float64 {
	if h >= derateFrom && h < derateTo {
		return 0.82
	}
	return 0.95
}

// loadMW combines a daily cycle, a secondary morning/evening ripple and a
// weekly trend around a 38 GW base.
func loadMW(day, hod int) float64 {
	return 38000 +
		5200*math.Sin(2*math.Pi*float64(hod-9)/24.0) +
		2300*math.Sin(4*math.Pi*float64(hod-8)/24.0) +
		900*math.Sin(2*math.Pi*float64(day)/7.0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
