// Package scenario sizes hypothetical generation fleets against an hourly
// load series and derives the storage/backup capacity each mix would need.
// Evaluation is a pure function of its inputs: the capacity-factor table and
// the mix are passed in explicitly and never mutated, so any number of
// scenarios can be evaluated concurrently over the same table.
package scenario

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/gridmix/gridmix/internal/dataset"
)

// weightSumTolerance absorbs float error when checking that renewable
// shares sum to at most 1.
const weightSumTolerance = 1e-9

// Mix fixes the composition of the generation fleet being studied.
type Mix struct {
	// Baseload names the dispatchable technology column sized by the
	// baseload fraction (e.g., "Nuclear").
	Baseload string

	// Weights maps each weather-dependent technology to its relative share
	// of renewable installed capacity. Shares are non-negative and sum to
	// at most 1. Only the relative weighting matters: absolute renewable
	// capacity is solved for per scenario.
	Weights map[string]float64
}

// DefaultMix returns the solar-heavy reference mix with a Nuclear baseload.
func DefaultMix() Mix {
	return Mix{
		Baseload: "Nuclear",
		Weights: map[string]float64{
			"Solar":         0.6416666666666667,
			"Wind onshore":  0.24166666666666667,
			"Wind offshore": 0.11666666666666667,
		},
	}
}

// Validate checks the mix for structural problems: a missing baseload name,
// NaN or negative weights, a weight on the baseload technology itself, or
// shares summing past 1. An all-zero weight map is valid (a degenerate mix
// sizes zero renewable capacity rather than failing).
func (m Mix) Validate() error {
	if m.Baseload == "" {
		return fmt.Errorf("mix has no baseload technology")
	}
	var sum float64
	for _, tech := range m.renewables() {
		w := m.Weights[tech]
		if math.IsNaN(w) {
			return fmt.Errorf("weight for %q is NaN", tech)
		}
		if w < 0 {
			return fmt.Errorf("negative weight %g for %q", w, tech)
		}
		if tech == m.Baseload {
			return fmt.Errorf("baseload %q cannot carry a renewable weight", tech)
		}
		sum += w
	}
	if sum > 1+weightSumTolerance {
		return fmt.Errorf("renewable weights sum to %g, want at most 1", sum)
	}
	return nil
}

// Degenerate reports whether every renewable weight is zero.
func (m Mix) Degenerate() bool {
	for _, w := range m.Weights {
		if w != 0 {
			return false
		}
	}
	return true
}

// renewables returns the weighted technology names in sorted order. Every
// reduction over the mix iterates this fixed order so repeated evaluations
// sum in the same order and stay bit-identical.
func (m Mix) renewables() []string {
	techs := make([]string, 0, len(m.Weights))
	for tech := range m.Weights {
		techs = append(techs, tech)
	}
	sort.Strings(techs)
	return techs
}

// Params selects one scenario: how much of the window's load energy the
// baseload technology covers, and the evaluation window.
type Params struct {
	// BaseloadFraction is the share of total load energy served by the
	// baseload technology, in [0,1].
	BaseloadFraction float64

	// Start and End bound the evaluation window, inclusive. Windows
	// reaching beyond the dataset are clipped to it; a window that misses
	// the dataset entirely is invalid.
	Start time.Time
	End   time.Time
}

// Profile bundles the hourly series derived for one scenario. All series
// share the window's row order; values are MW.
type Profile struct {
	// Times holds the row timestamps of the effective window.
	Times []time.Time

	// Generation holds one hourly series per mix technology, baseload
	// included: capacity factor × installed capacity.
	Generation map[string][]float64

	// Load is the hourly load over the window.
	Load []float64

	// Net is total generation minus load per hour. Positive hours carry a
	// surplus, negative hours a deficit.
	Net []float64

	// StoragePotential is the surplus a storage asset could absorb each
	// hour: max(Net, 0).
	StoragePotential []float64

	// StorageConsumption is the deficit backup must cover each hour:
	// max(-Net, 0).
	StorageConsumption []float64
}

// Result carries everything derived for one evaluated scenario. Results are
// built fresh per evaluation and never mutated afterwards.
type Result struct {
	// BaseloadFraction echoes the evaluated fraction.
	BaseloadFraction float64

	// Window is the effective window after clipping to the dataset.
	Window dataset.Window

	// Clipped reports whether the requested window reached beyond the
	// data's hourly coverage and was cut down to fit. An end that lands
	// inside the final row's hour does not count.
	Clipped bool

	// TotalLoadEnergy is the load summed over the window, in MWh.
	TotalLoadEnergy float64

	// Installed maps every mix technology, baseload included, to its
	// solved nameplate capacity in MW.
	Installed map[string]float64

	// Profile holds the hourly series for the window.
	Profile Profile

	// PeakSurplus is the largest single-hour surplus in MW.
	PeakSurplus float64

	// PeakDeficit is the largest single-hour deficit in MW.
	PeakDeficit float64

	// BackupCapacity is the minimum power rating of one bidirectional
	// storage/backup asset that absorbs every surplus hour and covers
	// every deficit hour: max(PeakSurplus, PeakDeficit). Sizing is for
	// power only; energy capacity (duration) is not modeled.
	BackupCapacity float64
}

// Shares returns each technology's fraction of total installed capacity,
// the breakdown capacity charts are built from. Returns nil when nothing is
// installed.
func (r *Result) Shares() map[string]float64 {
	techs := sortedKeys(r.Installed)
	var total float64
	for _, tech := range techs {
		total += r.Installed[tech]
	}
	if total <= 0 {
		return nil
	}
	shares := make(map[string]float64, len(techs))
	for _, tech := range techs {
		shares[tech] = r.Installed[tech] / total
	}
	return shares
}

// Outcome pairs one scenario's result with its evaluation error. Exactly
// one of the two fields is set.
type Outcome struct {
	Result *Result
	Err    error
}

// sortedKeys returns m's keys in sorted order, fixing iteration order for
// reproducible float sums.
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
