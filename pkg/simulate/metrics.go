package simulate

import (
	"math"
	"sort"

	"vcsim/pkg/stats"
)

// ROIToIRR annualizes a total-return multiple over the given horizon.
// Total loss (roi <= 0) maps to -1 by convention: -100% annualized, avoiding
// the undefined root of a non-positive base.
func ROIToIRR(roi, years float64) float64 {
	if roi <= 0 {
		return -1.0
	}
	return math.Pow(roi, 1.0/years) - 1.0
}

// Metrics is the scalar/percentile summary of one simulated sample set.
type Metrics struct {
	ProbROILt1    float64
	ProbTotalLoss float64
	Prob3x        float64
	Prob10x       float64

	ExpectedROI float64
	MedianROI   float64
	ExpectedIRR float64
	MedianIRR   float64

	ROIPercentiles map[int]float64
	IRRPercentiles map[int]float64

	ExpectedPayout float64
	MedianPayout   float64

	PAliveEnd       float64
	PBreakEvenByEnd float64
	// Time-to-break-even summaries are NaN when no trajectory ever crossed.
	ExpectedTimeToBreakEvenYears float64
	MedianTimeToBreakEvenYears   float64

	// PD12m is the probability of default within the first 12 months
	// (clamped to the horizon for shorter runs); RAR blends expected IRR
	// with that near-term default risk and is the default ranking key.
	PD12m float64
	RAR   float64
}

// Sensitivity is one entry of the parameter-attribution ranking: the Pearson
// correlation of a sampled latent parameter against log ROI.
type Sensitivity struct {
	Param string
	Corr  float64
}

func computeMetrics(s Samples, p Paths, months int) Metrics {
	m := Metrics{
		ProbROILt1:    stats.FracBelow(s.ROI, 1.0),
		ProbTotalLoss: stats.FracEqual(s.ROI, 0.0),
		Prob3x:        stats.FracAtLeast(s.ROI, 3.0),
		Prob10x:       stats.FracAtLeast(s.ROI, 10.0),

		ExpectedROI: stats.Mean(s.ROI),
		MedianROI:   stats.Median(s.ROI),
		ExpectedIRR: stats.Mean(s.IRR),
		MedianIRR:   stats.Median(s.IRR),

		ROIPercentiles: stats.PercentileTable(s.ROI),
		IRRPercentiles: stats.PercentileTable(s.IRR),

		ExpectedPayout: stats.Mean(s.Payout),
		MedianPayout:   stats.Median(s.Payout),

		PAliveEnd: p.AliveFracByMonth[len(p.AliveFracByMonth)-1],
	}

	hit := make([]float64, 0, len(p.FirstHitMonthBreakEven))
	for _, h := range p.FirstHitMonthBreakEven {
		if !math.IsInf(h, 1) {
			hit = append(hit, h)
		}
	}
	m.PBreakEvenByEnd = float64(len(hit)) / float64(len(p.FirstHitMonthBreakEven))
	if len(hit) > 0 {
		m.ExpectedTimeToBreakEvenYears = stats.Mean(hit) / 12.0
		m.MedianTimeToBreakEvenYears = stats.Median(hit) / 12.0
	} else {
		m.ExpectedTimeToBreakEvenYears = math.NaN()
		m.MedianTimeToBreakEvenYears = math.NaN()
	}

	pdMonth := 12
	if months < 12 {
		pdMonth = months
	}
	m.PD12m = 1.0 - p.AliveFracByMonth[pdMonth]
	m.RAR = m.ExpectedIRR * (1.0 - m.PD12m)
	return m
}

// computeSensitivity correlates each sampled latent parameter against
// log(roi+eps), a first-order attribution of which input uncertainty most
// drives outcome variance, sorted by absolute correlation descending.
func computeSensitivity(params ParameterSample, roi []float64) []Sensitivity {
	y := make([]float64, len(roi))
	for i, r := range roi {
		y[i] = math.Log(r + 1e-12)
	}
	out := []Sensitivity{
		{"mu_annual", stats.Corr(params.MuAnnual, y)},
		{"sigma_annual", stats.Corr(params.SigmaAnnual, y)},
		{"p_fail_annual", stats.Corr(params.PFailAnnual, y)},
		{"dilution_total", stats.Corr(params.DilutionTotal, y)},
		{"exit_sigma", stats.Corr(params.ExitSigma, y)},
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Corr) > math.Abs(out[j].Corr)
	})
	return out
}
