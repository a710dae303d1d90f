package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 {
	return &v
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected *float64
	}{
		{name: "Empty", values: nil, expected: nil},
		{name: "Single value", values: []float64{5}, expected: ptr(5)},
		{name: "Even count averages the central values", values: []float64{1, 3}, expected: ptr(2)},
		{name: "Odd count", values: []float64{1, 2, 3}, expected: ptr(2)},
		{name: "Unsorted input", values: []float64{10000, 8000, 9000}, expected: ptr(9000)},
		{name: "Zero is a valid price", values: []float64{0}, expected: ptr(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Median(tt.values))
		})
	}
}

func TestMedian_OrderInvariantAndNoMutation(t *testing.T) {
	values := []float64{7, 1, 9, 3, 5, 2}
	original := append([]float64(nil), values...)

	m := Median(values)
	require.NotNil(t, m)
	assert.Equal(t, 4.0, *m)
	assert.Equal(t, original, values, "Median must not reorder its input")

	reversed := []float64{2, 5, 3, 9, 1, 7}
	assert.Equal(t, m, Median(reversed))
}

func TestUpperMiddle(t *testing.T) {
	assert.Nil(t, UpperMiddle(nil))
	assert.Equal(t, ptr(5), UpperMiddle([]float64{5}))
	assert.Equal(t, ptr(3), UpperMiddle([]float64{3, 1}), "even count takes the upper central value")
	assert.Equal(t, ptr(2), UpperMiddle([]float64{3, 1, 2}))
	assert.Equal(t, ptr(30), UpperMiddle([]float64{40, 10, 30, 20}))
}

func TestComputeQuantiles(t *testing.T) {
	t.Run("Empty input", func(t *testing.T) {
		assert.Equal(t, []float64{}, ComputeQuantiles(nil, Buckets))
	})

	t.Run("Always n-1 thresholds", func(t *testing.T) {
		for _, size := range []int{1, 2, 5, 9, 10, 100} {
			values := make([]float64, size)
			for i := range values {
				values[i] = float64(size - i)
			}
			assert.Len(t, ComputeQuantiles(values, Buckets), Buckets-1, "size %d", size)
			assert.Len(t, ComputeQuantiles(values, 4), 3, "size %d", size)
		}
	})

	t.Run("Thresholds index the sorted values", func(t *testing.T) {
		values := []float64{900, 100, 800, 200, 700, 300, 600, 400, 500}
		assert.Equal(t,
			[]float64{200, 300, 400, 500, 600, 700, 800, 900},
			ComputeQuantiles(values, Buckets))
	})

	t.Run("Floor of the scaled index", func(t *testing.T) {
		values := []float64{1, 2, 3, 4}
		// indexes floor(i*4/3) for i = 1, 2 -> 1, 2
		assert.Equal(t, []float64{2, 3}, ComputeQuantiles(values, 3))
	})
}

func TestColorForQuantile(t *testing.T) {
	thresholds := []float64{200, 300, 400, 500, 600, 700, 800, 900}

	tests := []struct {
		name     string
		value    *float64
		expected string
	}{
		{name: "Nil value", value: nil, expected: NeutralColor},
		{name: "NaN value", value: ptr(math.NaN()), expected: NeutralColor},
		{name: "Below first threshold", value: ptr(50), expected: Palette[0]},
		{name: "Equal to a threshold", value: ptr(300), expected: Palette[1]},
		{name: "Between thresholds", value: ptr(450), expected: Palette[3]},
		{name: "Equal to last threshold", value: ptr(900), expected: Palette[7]},
		{name: "Above every threshold", value: ptr(5000), expected: Palette[8]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ColorForQuantile(tt.value, thresholds))
		})
	}

	assert.Equal(t, Palette[8], ColorForQuantile(ptr(1), nil), "no thresholds falls through to the last colour")
}

func TestRounding(t *testing.T) {
	assert.Equal(t, ptr(5200), RoundDownHundred(ptr(5249.5)))
	assert.Equal(t, ptr(5300), RoundUpHundred(ptr(5249.5)))
	assert.Equal(t, ptr(5200), RoundUpHundred(ptr(5200)))
	assert.Nil(t, RoundDownHundred(nil))
	assert.Nil(t, RoundUpHundred(ptr(math.NaN())))
}

func TestBuildLegend(t *testing.T) {
	legend := BuildLegend([]float64{900, 100, 800, 200, math.NaN(), 700, 300, 600, 400, 500})

	require.Len(t, legend.Thresholds, Buckets-1)
	require.Len(t, legend.Entries, Buckets)

	assert.Nil(t, legend.Entries[0].From)
	assert.Equal(t, ptr(200), legend.Entries[0].To)
	assert.Equal(t, ptr(200), legend.Entries[1].From)
	assert.Equal(t, ptr(300), legend.Entries[1].To)
	assert.Equal(t, ptr(900), legend.Entries[8].From)
	assert.Nil(t, legend.Entries[8].To)
	assert.Equal(t, Palette[8], legend.Entries[8].Color)

	empty := BuildLegend(nil)
	assert.Empty(t, empty.Thresholds)
	assert.Empty(t, empty.Entries)
}
