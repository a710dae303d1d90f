package stats

import "math"

// LegendEntry is one row of the map legend. From is nil for the first
// bucket and To is nil for the last one.
type LegendEntry struct {
	Color string   `json:"color"`
	From  *float64 `json:"from"`
	To    *float64 `json:"to"`
}

// Legend is what the map renderer needs to colour a layer.
type Legend struct {
	Thresholds []float64     `json:"thresholds"`
	Entries    []LegendEntry `json:"entries"`
}

// BuildLegend computes the quantile thresholds of values and the display
// bounds of every bucket, rounded to hundreds. NaN values are ignored.
func BuildLegend(values []float64) Legend {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}

	thresholds := ComputeQuantiles(clean, Buckets)
	legend := Legend{Thresholds: thresholds, Entries: []LegendEntry{}}
	if len(thresholds) == 0 {
		return legend
	}

	for i, color := range Palette {
		entry := LegendEntry{Color: color}
		if i > 0 {
			from := thresholds[i-1]
			entry.From = RoundDownHundred(&from)
		}
		if i < len(thresholds) {
			to := thresholds[i]
			entry.To = RoundUpHundred(&to)
		}
		legend.Entries = append(legend.Entries, entry)
	}
	return legend
}
