// Package stats holds the numeric primitives behind the choropleth: medians,
// quantile thresholds and colour buckets.
package stats

import (
	"math"
	"sort"
)

// Buckets is the number of colour classes of the choropleth.
const Buckets = 9

// NeutralColor is used for territories without a known value.
const NeutralColor = "#d9d9d9"

// Palette goes from the cheapest bucket (green) to the most expensive (red).
var Palette = [Buckets]string{
	"#1a9850",
	"#66bd63",
	"#a6d96a",
	"#d9ef8b",
	"#ffffbf",
	"#fee08b",
	"#fdae61",
	"#f46d43",
	"#d73027",
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// Median returns the median of values, or nil for an empty slice. For an
// even count it is the mean of the two central values. values is not
// modified.
func Median(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := sortedCopy(values)
	mid := len(sorted) / 2
	m := sorted[mid]
	if len(sorted)%2 == 0 {
		m = (sorted[mid-1] + sorted[mid]) / 2
	}
	return &m
}

// UpperMiddle returns the element at index len/2 of the sorted values, or
// nil for an empty slice. This is what the filtered statistics display as
// their median; for an even count it is the upper of the two central
// values, not their mean.
func UpperMiddle(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := sortedCopy(values)
	m := sorted[len(sorted)/2]
	return &m
}

// ComputeQuantiles returns the n-1 thresholds splitting values into n
// classes. Threshold i is the sorted value at index floor(i*len/n).
// An empty input yields an empty slice.
func ComputeQuantiles(values []float64, n int) []float64 {
	if len(values) == 0 || n < 2 {
		return []float64{}
	}
	sorted := sortedCopy(values)
	thresholds := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		thresholds = append(thresholds, sorted[i*len(sorted)/n])
	}
	return thresholds
}

// ColorForQuantile returns the palette colour of the first bucket whose
// threshold is >= value. Values above every threshold get the last colour;
// nil or NaN values get NeutralColor.
func ColorForQuantile(value *float64, thresholds []float64) string {
	if value == nil || math.IsNaN(*value) {
		return NeutralColor
	}
	for i, t := range thresholds {
		if i >= len(Palette)-1 {
			break
		}
		if *value <= t {
			return Palette[i]
		}
	}
	return Palette[len(Palette)-1]
}

// RoundDownHundred floors v to a multiple of 100.
func RoundDownHundred(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) {
		return nil
	}
	r := math.Floor(*v/100) * 100
	return &r
}

// RoundUpHundred ceils v to a multiple of 100.
func RoundUpHundred(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) {
		return nil
	}
	r := math.Ceil(*v/100) * 100
	return &r
}
