// Package stats provides the scalar reductions shared by the simulation,
// portfolio and investor layers: means, population standard deviations,
// linearly interpolated percentiles, guarded correlation and tail-risk
// measures over Monte Carlo sample vectors.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// eps guards denominators so degenerate (constant or empty-tail) sample
// vectors reduce to well-defined values instead of NaN.
const eps = 1e-12

// Quantiles reported by every percentile table in the model.
var PercentileQs = []int{5, 10, 25, 50, 75, 90, 95}

// Mean returns the arithmetic mean of x.
func Mean(x []float64) float64 {
	return stat.Mean(x, nil)
}

// Median returns the 50th percentile of x.
func Median(x []float64) float64 {
	return Percentile(x, 50)
}

// PopStd returns the population (ddof=0) standard deviation of x.
// The scoring penalties use population moments, matching the sample
// vectors being treated as the full simulated population.
func PopStd(x []float64) float64 {
	return stat.PopStdDev(x, nil)
}

// Percentile returns the q-th percentile (q in [0,100]) of x using linear
// interpolation between order statistics. x is not modified.
func Percentile(x []float64, q float64) float64 {
	s := make([]float64, len(x))
	copy(s, x)
	sort.Float64s(s)
	return stat.Quantile(q/100.0, stat.LinInterp, s, nil)
}

// PercentileTable returns the standard percentile map over x.
func PercentileTable(x []float64) map[int]float64 {
	s := make([]float64, len(x))
	copy(s, x)
	sort.Float64s(s)
	out := make(map[int]float64, len(PercentileQs))
	for _, q := range PercentileQs {
		out[q] = stat.Quantile(float64(q)/100.0, stat.LinInterp, s, nil)
	}
	return out
}

// FracBelow returns the fraction of samples strictly below v.
func FracBelow(x []float64, v float64) float64 {
	n := 0
	for _, xi := range x {
		if xi < v {
			n++
		}
	}
	return float64(n) / float64(len(x))
}

// FracAtLeast returns the fraction of samples >= v.
func FracAtLeast(x []float64, v float64) float64 {
	n := 0
	for _, xi := range x {
		if xi >= v {
			n++
		}
	}
	return float64(n) / float64(len(x))
}

// FracEqual returns the fraction of samples exactly equal to v.
func FracEqual(x []float64, v float64) float64 {
	n := 0
	for _, xi := range x {
		if xi == v {
			n++
		}
	}
	return float64(n) / float64(len(x))
}

// Corr returns the Pearson correlation of x and y with an epsilon-guarded
// denominator: a constant input vector yields 0 rather than NaN.
func Corr(x, y []float64) float64 {
	mx := Mean(x)
	my := Mean(y)
	var sxy, sxx, syy float64
	for i := range x {
		dx := x[i] - mx
		dy := y[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	n := float64(len(x))
	denom := math.Sqrt(sxx/n)*math.Sqrt(syy/n) + eps
	return (sxy / n) / denom
}

// VaR returns the q-th percentile (q in [0,100]) of x, the value-at-risk of
// the sample at that quantile.
func VaR(x []float64, q float64) float64 {
	return Percentile(x, q)
}

// CVaR returns the mean of all samples at or below the q-th percentile.
// When no sample falls in the tail it falls back to the VaR value itself.
func CVaR(x []float64, q float64) float64 {
	v := Percentile(x, q)
	var sum float64
	var n int
	for _, xi := range x {
		if xi <= v {
			sum += xi
			n++
		}
	}
	if n == 0 {
		return v
	}
	return sum / float64(n)
}
