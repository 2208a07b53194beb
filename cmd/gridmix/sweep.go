package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/gridmix/gridmix/internal/scenario"
)

func sweepCmd() *cobra.Command {
	var (
		startStr string
		endStr   string
		days     int
		step     float64
		format   string
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Sweep the baseload fraction from 0 to 1 and tabulate capacity and backup sizing",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSweep(startStr, endStr, days, step, format, outPath)
		},
	}

	cmd.Flags().StringVar(&startStr, "start", "", "window start date or timestamp (default: dataset start)")
	cmd.Flags().StringVar(&endStr, "end", "", "window end date or timestamp (default: start + days)")
	cmd.Flags().IntVar(&days, "days", 0, "window length in days when --end is absent (default: config)")
	cmd.Flags().Float64Var(&step, "step", 0.05, "fraction increment per scenario")
	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv or json")
	cmd.Flags().StringVar(&outPath, "out", "-", "output file (- for stdout)")
	return cmd
}

func runSweep(startStr, endStr string, days int, step float64, format, outPath string) error {
	// A NaN step would never break the fraction loop below.
	if math.IsNaN(step) || step <= 0 || step > 1 {
		return fmt.Errorf("--step: want a value in (0,1], got %g", step)
	}
	cfg, table, err := loadInputs()
	if err != nil {
		return err
	}
	if days <= 0 {
		days = cfg.Scenarios.WindowDays
	}
	start, end, err := resolveWindow(table, startStr, endStr, days)
	if err != nil {
		return err
	}
	mix := cfg.ScenarioMix()

	var fractions []float64
	for i := 0; ; i++ {
		f := float64(i) * step
		if f > 1 {
			break
		}
		fractions = append(fractions, f)
	}

	bar := pb.New(len(fractions))
	bar.Output = os.Stderr
	bar.Start()

	results := make([]*scenario.Result, 0, len(fractions))
	var best *scenario.Result
	for _, f := range fractions {
		r, err := scenario.Evaluate(table, mix, scenario.Params{BaseloadFraction: f, Start: start, End: end})
		if err != nil {
			bar.Finish()
			return fmt.Errorf("fraction %.2f: %w", f, err)
		}
		results = append(results, r)
		if best == nil || r.BackupCapacity < best.BackupCapacity {
			best = r
		}
		bar.Increment()
	}
	bar.Finish()

	if err := writeSweepOutput(outPath, format, results); err != nil {
		return err
	}

	logger.Info().
		Float64("fraction", best.BaseloadFraction).
		Float64("backup_mw", best.BackupCapacity).
		Msg("minimum backup capacity across sweep")
	return nil
}

// writeSweepOutput renders the sweep to outPath, "-" or empty meaning
// stdout. A failed close of a created file surfaces as an error unless the
// write itself already failed.
func writeSweepOutput(outPath, format string, results []*scenario.Result) (err error) {
	out := io.Writer(os.Stdout)
	if outPath != "-" && outPath != "" {
		f, cerr := os.Create(outPath)
		if cerr != nil {
			return fmt.Errorf("create %s: %w", outPath, cerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close %s: %w", outPath, cerr)
			}
		}()
		out = f
	}

	switch format {
	case "csv":
		return writeSweepCSV(out, results)
	case "json":
		return writeSweepJSON(out, results)
	default:
		return fmt.Errorf("--format: want csv or json, got %q", format)
	}
}

// writeSweepCSV tabulates one row per fraction: installed capacity per
// technology, then the peak and backup columns.
func writeSweepCSV(w io.Writer, results []*scenario.Result) error {
	techs := sortedTechs(results[0].Installed)

	cw := csv.NewWriter(w)
	header := append([]string{"baseload_fraction"}, techs...)
	header = append(header, "peak_surplus_mw", "peak_deficit_mw", "backup_capacity_mw")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatFloat(r.BaseloadFraction, 'f', 2, 64))
		for _, tech := range techs {
			row = append(row, strconv.FormatFloat(r.Installed[tech], 'f', 3, 64))
		}
		row = append(row,
			strconv.FormatFloat(r.PeakSurplus, 'f', 3, 64),
			strconv.FormatFloat(r.PeakDeficit, 'f', 3, 64),
			strconv.FormatFloat(r.BackupCapacity, 'f', 3, 64))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeSweepJSON(w io.Writer, results []*scenario.Result) error {
	rows := make([]reportScenario, len(results))
	for i, r := range results {
		rows[i] = newReportScenario(r)
	}
	return encodeJSON(w, rows)
}
