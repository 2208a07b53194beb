package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	json "github.com/goccy/go-json"

	"github.com/gridmix/gridmix/internal/dataset"
	"github.com/gridmix/gridmix/internal/scenario"
)

func printReport(w io.Writer, table *dataset.Table, params []scenario.Params, outcomes []scenario.Outcome) {
	var results []*scenario.Result
	for _, oc := range outcomes {
		if oc.Err == nil {
			results = append(results, oc.Result)
		}
	}

	if len(results) > 0 {
		first := results[0]
		fmt.Fprintf(w, "Energy mix scenarios: %s (%d hours)\n", first.Window, first.Window.Hours())
		if first.Clipped {
			fmt.Fprintf(w, "Note: data available %s to %s only; window clipped.\n",
				table.Start().Format("2006-01-02"), table.End().Format("2006-01-02"))
		}
		fmt.Fprintln(w)
	}

	for i, oc := range outcomes {
		fmt.Fprintf(w, "Scenario %d: %.0f%% baseload\n", i+1, params[i].BaseloadFraction*100)
		if oc.Err != nil {
			fmt.Fprintf(w, "  error: %v\n", oc.Err)
			fmt.Fprintln(w)
			continue
		}
		printScenario(w, oc.Result)
		fmt.Fprintln(w)
	}

	if len(results) > 0 {
		low, high := scenario.AxisRange(results)
		fmt.Fprintf(w, "Shared y-axis range: %.1f .. %.1f MW\n", low, high)
	}
}

func printScenario(w io.Writer, r *scenario.Result) {
	shares := r.Shares()

	fmt.Fprintln(w, "  Installed capacity:")
	var total float64
	for _, tech := range sortedTechs(r.Installed) {
		fmt.Fprintf(w, "    %-16s %14.1f MW", tech, r.Installed[tech])
		if shares != nil {
			fmt.Fprintf(w, "  (%5.1f%%)", shares[tech]*100)
		}
		fmt.Fprintln(w)
		total += r.Installed[tech]
	}
	fmt.Fprintf(w, "    %-16s %14.1f MW\n", "total", total)

	fmt.Fprintf(w, "  Load energy:     %14.1f MWh\n", r.TotalLoadEnergy)
	fmt.Fprintf(w, "  Peak surplus:    %14.1f MW\n", r.PeakSurplus)
	fmt.Fprintf(w, "  Peak deficit:    %14.1f MW\n", r.PeakDeficit)
	fmt.Fprintf(w, "  Backup capacity: %14.1f MW\n", r.BackupCapacity)
}

// reportScenario is the JSON row shape shared by evaluate --json and
// sweep --format json.
type reportScenario struct {
	BaseloadFraction float64            `json:"baseload_fraction"`
	Error            string             `json:"error,omitempty"`
	InstalledMW      map[string]float64 `json:"installed_capacity_mw,omitempty"`
	CapacityShares   map[string]float64 `json:"capacity_shares,omitempty"`
	TotalLoadMWh     float64            `json:"total_load_mwh"`
	PeakSurplusMW    float64            `json:"peak_surplus_mw"`
	PeakDeficitMW    float64            `json:"peak_deficit_mw"`
	BackupCapacityMW float64            `json:"backup_capacity_mw"`
}

func newReportScenario(r *scenario.Result) reportScenario {
	return reportScenario{
		BaseloadFraction: r.BaseloadFraction,
		InstalledMW:      r.Installed,
		CapacityShares:   r.Shares(),
		TotalLoadMWh:     r.TotalLoadEnergy,
		PeakSurplusMW:    r.PeakSurplus,
		PeakDeficitMW:    r.PeakDeficit,
		BackupCapacityMW: r.BackupCapacity,
	}
}

type evaluateReport struct {
	WindowStart time.Time        `json:"window_start"`
	WindowEnd   time.Time        `json:"window_end"`
	Hours       int              `json:"hours"`
	Clipped     bool             `json:"clipped"`
	AxisLow     float64          `json:"axis_low"`
	AxisHigh    float64          `json:"axis_high"`
	Scenarios   []reportScenario `json:"scenarios"`
}

func writeEvaluateJSON(w io.Writer, params []scenario.Params, outcomes []scenario.Outcome) error {
	var (
		report  evaluateReport
		results []*scenario.Result
	)
	report.Scenarios = make([]reportScenario, len(outcomes))
	for i, oc := range outcomes {
		if oc.Err != nil {
			report.Scenarios[i] = reportScenario{
				BaseloadFraction: params[i].BaseloadFraction,
				Error:            oc.Err.Error(),
			}
			continue
		}
		report.Scenarios[i] = newReportScenario(oc.Result)
		results = append(results, oc.Result)
	}
	if len(results) > 0 {
		first := results[0]
		report.WindowStart = first.Window.Start
		report.WindowEnd = first.Window.End
		report.Hours = first.Window.Hours()
		report.Clipped = first.Clipped
	}
	report.AxisLow, report.AxisHigh = scenario.AxisRange(results)
	return encodeJSON(w, report)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sortedTechs(installed map[string]float64) []string {
	techs := make([]string, 0, len(installed))
	for tech := range installed {
		techs = append(techs, tech)
	}
	sort.Strings(techs)
	return techs
}
