package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanMedian(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 3.0, Mean(x), 1e-12)
	assert.InDelta(t, 3.0, Median(x), 0.6) // interpolation convention tolerance
}

func TestPopStd(t *testing.T) {
	assert.InDelta(t, 0.0, PopStd([]float64{2, 2, 2, 2}), 1e-12)
	// Population sd of {1,3} is 1 (sample sd would be sqrt(2)).
	assert.InDelta(t, 1.0, PopStd([]float64{1, 3}), 1e-12)
}

func TestPercentileWithinRangeAndMonotone(t *testing.T) {
	x := []float64{9, 1, 4, 7, 2, 8, 3, 6, 5, 10}
	prev := Percentile(x, 5)
	for _, q := range []float64{10, 25, 50, 75, 90, 95} {
		p := Percentile(x, q)
		assert.GreaterOrEqual(t, p, prev, "q=%v", q)
		assert.GreaterOrEqual(t, p, 1.0)
		assert.LessOrEqual(t, p, 10.0)
		prev = p
	}
	// Input must not be reordered.
	assert.Equal(t, []float64{9, 1, 4, 7, 2, 8, 3, 6, 5, 10}, x)
}

func TestPercentileTableKeys(t *testing.T) {
	table := PercentileTable([]float64{1, 2, 3, 4})
	require.Len(t, table, len(PercentileQs))
	for _, q := range PercentileQs {
		assert.Contains(t, table, q)
	}
}

func TestFracCounters(t *testing.T) {
	x := []float64{0, 0, 1, 2, 10}
	assert.InDelta(t, 0.4, FracBelow(x, 1), 1e-12)
	assert.InDelta(t, 0.4, FracEqual(x, 0), 1e-12)
	assert.InDelta(t, 0.2, FracAtLeast(x, 10), 1e-12)
	assert.InDelta(t, 0.6, FracAtLeast(x, 1), 1e-12)
}

func TestCorr(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}
	assert.InDelta(t, 1.0, Corr(x, y), 1e-9)

	neg := []float64{10, 8, 6, 4, 2}
	assert.InDelta(t, -1.0, Corr(x, neg), 1e-9)

	// Constant vector degrades to 0, not NaN.
	assert.InDelta(t, 0.0, Corr([]float64{3, 3, 3, 3, 3}, y), 1e-12)
}

func TestVaRCVaROrdering(t *testing.T) {
	x := []float64{-50, -20, -5, 0, 10, 30, 60, 100, 200, 500}
	v := VaR(x, 10)
	c := CVaR(x, 10)
	// The tail mean can never exceed the tail cutoff.
	assert.LessOrEqual(t, c, v)
}

func TestCVaRDegenerate(t *testing.T) {
	x := []float64{7, 7, 7, 7}
	assert.InDelta(t, 7.0, CVaR(x, 5), 1e-12)
}
