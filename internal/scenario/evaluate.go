package scenario

import (
	"fmt"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/gridmix/gridmix/internal/dataset"
)

const windowFmt = "2006-01-02 15:04"

// Evaluate computes one scenario against the table.
//
// The calculation:
//  1. Clip [p.Start, p.End] to the dataset bounds and slice the hourly
//     rows. Reaching past the bounds clips and flags the result; missing
//     the dataset entirely is ErrInvalidWindow.
//  2. Size the baseload fleet so it delivers its share of the window's
//     load energy: installed = fraction × Σ load / Σ baseload CF.
//  3. Size total renewable capacity C so the remaining load energy is met:
//     C = (1 − fraction) × Σ load / Σ_t weights[t] × Σ CF_t, then split it
//     per technology: installed[t] = weights[t] × C.
//  4. Expand the hourly series: generation (CF × installed), net balance
//     (Σ generation − load), and the surplus/deficit storage series.
//  5. Reduce the peaks: backup capacity = max(peak surplus, peak deficit).
//
// Both capacity divisions are zero-guarded: a zero capacity-factor sum or
// an all-zero weight map yields zero installed capacity instead of failing.
// The result is a pure function of the inputs; evaluating the same inputs
// twice produces bit-identical results.
func Evaluate(table *dataset.Table, mix Mix, p Params) (*Result, error) {
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("no dataset rows: %w", ErrEmptyInput)
	}
	if err := mix.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(p.BaseloadFraction) || p.BaseloadFraction < 0 || p.BaseloadFraction > 1 {
		return nil, fmt.Errorf("baseload fraction %g outside [0,1]", p.BaseloadFraction)
	}
	if p.Start.After(p.End) {
		return nil, fmt.Errorf("start %s after end %s: %w",
			p.Start.Format(windowFmt), p.End.Format(windowFmt), ErrInvalidWindow)
	}
	if !table.HasTechnology(mix.Baseload) {
		return nil, fmt.Errorf("baseload %q: %w", mix.Baseload, ErrUnknownTechnology)
	}
	renewables := mix.renewables()
	for _, tech := range renewables {
		if !table.HasTechnology(tech) {
			return nil, fmt.Errorf("%q: %w", tech, ErrUnknownTechnology)
		}
	}

	// Step 1: clip and slice
	win, ok := table.Clip(p.Start, p.End)
	if !ok {
		return nil, fmt.Errorf("window %s .. %s misses the dataset (%s): %w",
			p.Start.Format(windowFmt), p.End.Format(windowFmt), table.Bounds(), ErrInvalidWindow)
	}
	slice, ok := table.Slice(win)
	if !ok {
		return nil, fmt.Errorf("window %s has no rows: %w", win, ErrEmptyInput)
	}
	// The last row's hour bucket runs to End()+1h; an end inside that final
	// hour is alignment, not clipping.
	coverageEnd := table.End().Add(time.Hour)
	clipped := p.Start.Before(table.Start()) || !p.End.Before(coverageEnd)

	n := slice.Len()
	load := slice.Load()

	// Step 2: baseload sizing
	totalLoad := floats.Sum(load)
	baseCF, _ := slice.CapacityFactor(mix.Baseload)
	installed := make(map[string]float64, len(renewables)+1)
	if cfSum := floats.Sum(baseCF); cfSum > 0 {
		installed[mix.Baseload] = p.BaseloadFraction * totalLoad / cfSum
	} else {
		installed[mix.Baseload] = 0
	}

	// Step 3: renewable sizing
	renewNeed := (1 - p.BaseloadFraction) * totalLoad
	var weightedCF float64
	for _, tech := range renewables {
		cf, _ := slice.CapacityFactor(tech)
		weightedCF += mix.Weights[tech] * floats.Sum(cf)
	}
	var c float64
	if weightedCF > 0 {
		c = renewNeed / weightedCF
	}
	for _, tech := range renewables {
		installed[tech] = mix.Weights[tech] * c
	}

	// Step 4: hourly series
	prof := Profile{
		Times:              slice.Times(),
		Generation:         make(map[string][]float64, len(installed)),
		Load:               load,
		Net:                make([]float64, n),
		StoragePotential:   make([]float64, n),
		StorageConsumption: make([]float64, n),
	}
	for _, tech := range append([]string{mix.Baseload}, renewables...) {
		cf, _ := slice.CapacityFactor(tech)
		gen := make([]float64, n)
		floats.ScaleTo(gen, installed[tech], cf)
		prof.Generation[tech] = gen
		floats.Add(prof.Net, gen)
	}
	floats.Sub(prof.Net, load)
	for i, v := range prof.Net {
		if v > 0 {
			prof.StoragePotential[i] = v
		} else if v < 0 {
			prof.StorageConsumption[i] = -v
		}
	}

	// Step 5: peak reduction
	peakSurplus := floats.Max(prof.StoragePotential)
	peakDeficit := floats.Max(prof.StorageConsumption)

	return &Result{
		BaseloadFraction: p.BaseloadFraction,
		Window:           win,
		Clipped:          clipped,
		TotalLoadEnergy:  totalLoad,
		Installed:        installed,
		Profile:          prof,
		PeakSurplus:      peakSurplus,
		PeakDeficit:      peakDeficit,
		BackupCapacity:   math.Max(peakSurplus, peakDeficit),
	}, nil
}

// EvaluateAll evaluates one scenario per element of params against the same
// table and mix. Evaluations are independent pure functions, so they run
// concurrently; each scenario fills only its own Outcome slot and a failed
// scenario never aborts the others. Outcomes keep the order of params.
func EvaluateAll(table *dataset.Table, mix Mix, params []Params) []Outcome {
	outcomes := make([]Outcome, len(params))

	var wg sync.WaitGroup
	for i, p := range params {
		wg.Add(1)
		go func(i int, p Params) {
			defer wg.Done()
			r, err := Evaluate(table, mix, p)
			outcomes[i] = Outcome{Result: r, Err: err}
		}(i, p)
	}
	wg.Wait()

	return outcomes
}
