package scenario

import "sort"

// axisPadding widens the shared axis range by this fraction of the span on
// each side so traces keep clear of the chart frame.
const axisPadding = 0.1

// AxisRange computes shared y-axis bounds for rendering several scenarios
// on one scale. The high bound clears the tallest hourly generation stack
// across all results; the low bound clears the deepest storage-absorption
// excursion below zero, the largest peak surplus negated. Deficits plot
// upward and never pull the axis down. Both bounds are padded by 10% of
// the span. Nil results are skipped; with no results at all the range is
// (0, 0).
func AxisRange(results []*Result) (low, high float64) {
	seen := false
	for _, r := range results {
		if r == nil {
			continue
		}
		seen = true
		techs := make([]string, 0, len(r.Profile.Generation))
		for tech := range r.Profile.Generation {
			techs = append(techs, tech)
		}
		sort.Strings(techs)
		for i := range r.Profile.Load {
			var stack float64
			for _, tech := range techs {
				stack += r.Profile.Generation[tech][i]
			}
			if stack > high {
				high = stack
			}
		}
		if -r.PeakSurplus < low {
			low = -r.PeakSurplus
		}
	}
	if !seen {
		return 0, 0
	}
	pad := axisPadding * (high - low)
	return low - pad, high + pad
}
