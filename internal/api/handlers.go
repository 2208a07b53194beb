package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gridmix/gridmix/internal/dataset"
	"github.com/gridmix/gridmix/internal/scenario"
)

const dateFmt = "2006-01-02"

// maxFractions caps the scenarios one request may ask for. Evaluation fans
// out one goroutine per fraction and the response carries one profile per
// scenario; 101 covers a full percent-resolution sweep of [0,1].
const maxFractions = 101

type windowPayload struct {
	RequestedStart time.Time `json:"requested_start"`
	RequestedEnd   time.Time `json:"requested_end"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Hours          int       `json:"hours"`
	Clipped        bool      `json:"clipped"`
}

type axisPayload struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

type profilePayload struct {
	Times                []time.Time          `json:"times"`
	GenerationMW         map[string][]float64 `json:"generation_mw"`
	LoadMW               []float64            `json:"load_mw"`
	NetMW                []float64            `json:"net_mw"`
	StoragePotentialMW   []float64            `json:"storage_potential_mw"`
	StorageConsumptionMW []float64            `json:"storage_consumption_mw"`
}

type scenarioPayload struct {
	BaseloadFraction float64            `json:"baseload_fraction"`
	Error            string             `json:"error,omitempty"`
	InstalledMW      map[string]float64 `json:"installed_capacity_mw,omitempty"`
	CapacityShares   map[string]float64 `json:"capacity_shares,omitempty"`
	TotalLoadMWh     float64            `json:"total_load_mwh"`
	PeakSurplusMW    float64            `json:"peak_surplus_mw"`
	PeakDeficitMW    float64            `json:"peak_deficit_mw"`
	BackupCapacityMW float64            `json:"backup_capacity_mw"`
	Profile          *profilePayload    `json:"profile,omitempty"`
}

type scenariosResponse struct {
	RunID     string            `json:"run_id"`
	Window    windowPayload     `json:"window"`
	Axis      axisPayload       `json:"axis"`
	Colors    map[string]string `json:"colors"`
	Warnings  []string          `json:"warnings,omitempty"`
	Scenarios []scenarioPayload `json:"scenarios"`
}

type datasetResponse struct {
	Start             time.Time         `json:"start"`
	End               time.Time         `json:"end"`
	Hours             int               `json:"hours"`
	Technologies      []string          `json:"technologies"`
	Baseload          string            `json:"baseload"`
	DefaultFractions  []float64         `json:"default_fractions"`
	DefaultWindowDays int               `json:"default_window_days"`
	Colors            map[string]string `json:"colors"`
}

// handleScenarios evaluates one scenario per requested baseload fraction
// over a shared window and returns capacities, backup sizing, the shared
// axis range, and (unless profile=false) the hourly series.
//
// Query parameters:
//
//	start      window start, date or timestamp (default: dataset start)
//	end        window end, date or timestamp (default: start + days)
//	days       window length in days when end is absent (default: config)
//	fractions  comma-separated baseload fractions (default: config)
//	profile    include hourly series, true/false (default: true)
//
// A window reaching past the dataset clips and adds a warning; a window
// that misses the dataset entirely or runs backwards is a 400.
func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, "only GET is supported")
		return
	}
	q := r.URL.Query()

	start := s.table.Start()
	if v := q.Get("start"); v != "" {
		ts, err := dataset.ParseTime(v)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("start: %v", err))
			return
		}
		start = ts
	}

	days := s.cfg.Scenarios.WindowDays
	if v := q.Get("days"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 1 {
			s.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("days: want a positive integer, got %q", v))
			return
		}
		days = d
	}

	end := start.Add(time.Duration(days)*24*time.Hour - time.Second)
	if v := q.Get("end"); v != "" {
		ts, err := dataset.ParseEnd(v)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("end: %v", err))
			return
		}
		end = ts
	}

	fractions := s.cfg.Scenarios.BaseloadFractions
	if v := q.Get("fractions"); v != "" {
		parsed, err := parseFractions(v)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("fractions: %v", err))
			return
		}
		fractions = parsed
	}

	includeProfile := true
	if v := q.Get("profile"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("profile: want a boolean, got %q", v))
			return
		}
		includeProfile = b
	}

	params := make([]scenario.Params, len(fractions))
	for i, f := range fractions {
		params[i] = scenario.Params{BaseloadFraction: f, Start: start, End: end}
	}

	evalStart := time.Now()
	outcomes := scenario.EvaluateAll(s.table, s.mix, params)
	evaluationSeconds.Observe(time.Since(evalStart).Seconds())

	var (
		results []*scenario.Result
		first   *scenario.Result
	)
	for _, oc := range outcomes {
		if oc.Err != nil {
			evaluationsTotal.WithLabelValues("error").Inc()
			continue
		}
		evaluationsTotal.WithLabelValues("ok").Inc()
		results = append(results, oc.Result)
		if first == nil {
			first = oc.Result
		}
	}

	// Every scenario shares the window, so a window problem fails them
	// all; report it as a request error rather than N identical slots.
	if first == nil {
		err := outcomes[0].Err
		status := http.StatusInternalServerError
		if errors.Is(err, scenario.ErrInvalidWindow) || errors.Is(err, scenario.ErrEmptyInput) {
			status = http.StatusBadRequest
		}
		s.writeError(w, r, status, err.Error())
		return
	}

	low, high := scenario.AxisRange(results)
	resp := scenariosResponse{
		RunID: requestIDFrom(r.Context()),
		Window: windowPayload{
			RequestedStart: start,
			RequestedEnd:   end,
			Start:          first.Window.Start,
			End:            first.Window.End,
			Hours:          first.Window.Hours(),
			Clipped:        first.Clipped,
		},
		Axis:      axisPayload{Low: low, High: high},
		Colors:    s.cfg.Colors,
		Scenarios: make([]scenarioPayload, len(outcomes)),
	}
	if first.Clipped {
		resp.Warnings = append(resp.Warnings, fmt.Sprintf(
			"data available %s to %s only; window clipped to %s",
			s.table.Start().Format(dateFmt), s.table.End().Format(dateFmt), first.Window))
	}

	for i, oc := range outcomes {
		sp := scenarioPayload{BaseloadFraction: params[i].BaseloadFraction}
		if oc.Err != nil {
			sp.Error = oc.Err.Error()
			resp.Scenarios[i] = sp
			continue
		}
		res := oc.Result
		sp.InstalledMW = res.Installed
		sp.CapacityShares = res.Shares()
		sp.TotalLoadMWh = res.TotalLoadEnergy
		sp.PeakSurplusMW = res.PeakSurplus
		sp.PeakDeficitMW = res.PeakDeficit
		sp.BackupCapacityMW = res.BackupCapacity
		if includeProfile {
			sp.Profile = &profilePayload{
				Times:                res.Profile.Times,
				GenerationMW:         res.Profile.Generation,
				LoadMW:               res.Profile.Load,
				NetMW:                res.Profile.Net,
				StoragePotentialMW:   res.Profile.StoragePotential,
				StorageConsumptionMW: res.Profile.StorageConsumption,
			}
		}
		resp.Scenarios[i] = sp
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleDataset reports table metadata so clients can bound their date
// pickers and label their series.
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, "only GET is supported")
		return
	}
	s.writeJSON(w, http.StatusOK, datasetResponse{
		Start:             s.table.Start(),
		End:               s.table.End(),
		Hours:             s.table.Len(),
		Technologies:      s.table.Technologies(),
		Baseload:          s.cfg.Mix.Baseload,
		DefaultFractions:  s.cfg.Scenarios.BaseloadFractions,
		DefaultWindowDays: s.cfg.Scenarios.WindowDays,
		Colors:            s.cfg.Colors,
	})
}

// parseFractions splits a comma-separated fraction list, bounds-checks each
// entry and caps the count at maxFractions. ParseFloat accepts "NaN", so
// finiteness is checked along with the bounds.
func parseFractions(v string) ([]float64, error) {
	parts := strings.Split(v, ",")
	fractions := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		if math.IsNaN(f) || f < 0 || f > 1 {
			return nil, fmt.Errorf("%g outside [0,1]", f)
		}
		fractions = append(fractions, f)
	}
	if len(fractions) == 0 {
		return nil, fmt.Errorf("no fractions given")
	}
	if len(fractions) > maxFractions {
		return nil, fmt.Errorf("%d fractions, want at most %d", len(fractions), maxFractions)
	}
	return fractions, nil
}
