// Package investor derives deal-desk metrics from a finished simulation
// result: profit distribution, tail risk (VaR/CVaR) and path-based
// time-to-profitability. It reads only the documented Samples/Paths/Config/
// Params fields of the result and assumes nothing about sample ordering
// beyond index alignment.
package investor

import (
	"math"

	"vcsim/pkg/simulate"
	"vcsim/pkg/stats"
)

// Options tune the derived metrics. Zero values take the defaults.
type Options struct {
	VaRQuantile float64 // percentile for VaR/CVaR, default 5
	ROITarget   float64 // threshold for ProbTarget, default 2
}

func (o Options) withDefaults() Options {
	if o.VaRQuantile == 0 {
		o.VaRQuantile = 5.0
	}
	if o.ROITarget == 0 {
		o.ROITarget = 2.0
	}
	return o
}

// Metrics is the investor-facing summary of one simulated deal.
type Metrics struct {
	ExpectedMultiple float64
	MedianMultiple   float64

	ProbLoss      float64
	ProbTotalLoss float64
	ProbTarget    float64
	Prob3x        float64
	Prob10x       float64

	ROIPercentiles    map[int]float64
	PayoutPercentiles map[int]float64
	ProfitPercentiles map[int]float64

	ExpectedPayout float64
	MedianPayout   float64
	ExpectedProfit float64
	MedianProfit   float64

	VaRQuantile float64
	VaRROI      float64
	CVaRROI     float64
	VaRProfit   float64
	CVaRProfit  float64

	PSurviveToEnd float64
	HorizonYears  float64

	// RiskAdjustedProfitOverVaR is expected profit divided by the downside
	// |min(0, VaR(profit))|, epsilon-guarded.
	RiskAdjustedProfitOverVaR float64

	// Path-based time-to-profitability: first month valuation reaches
	// investment/equity. Available only when the valuation path was stored.
	ProfitabilityAvailable    bool
	PProfitableByEnd          float64
	ExpectedTimeToProfitYears float64
	MedianTimeToProfitYears   float64
}

// Compute reduces a simulation result into investor metrics.
func Compute(res *simulate.Result, opts Options) Metrics {
	opts = opts.withDefaults()

	roi := res.Samples.ROI
	payout := res.Samples.Payout
	investment := res.Config.Investment

	profit := make([]float64, len(payout))
	for i, p := range payout {
		profit[i] = p - investment
	}

	m := Metrics{
		ExpectedMultiple: stats.Mean(roi),
		MedianMultiple:   stats.Median(roi),

		ProbLoss:      stats.FracBelow(roi, 1.0),
		ProbTotalLoss: stats.FracEqual(roi, 0.0),
		ProbTarget:    stats.FracAtLeast(roi, opts.ROITarget),
		Prob3x:        stats.FracAtLeast(roi, 3.0),
		Prob10x:       stats.FracAtLeast(roi, 10.0),

		ROIPercentiles:    stats.PercentileTable(roi),
		PayoutPercentiles: stats.PercentileTable(payout),
		ProfitPercentiles: stats.PercentileTable(profit),

		ExpectedPayout: stats.Mean(payout),
		MedianPayout:   stats.Median(payout),
		ExpectedProfit: stats.Mean(profit),
		MedianProfit:   stats.Median(profit),

		VaRQuantile: opts.VaRQuantile,
		VaRROI:      stats.VaR(roi, opts.VaRQuantile),
		CVaRROI:     stats.CVaR(roi, opts.VaRQuantile),
		VaRProfit:   stats.VaR(profit, opts.VaRQuantile),
		CVaRProfit:  stats.CVaR(profit, opts.VaRQuantile),

		PSurviveToEnd: res.Paths.AliveFracByMonth[len(res.Paths.AliveFracByMonth)-1],
		HorizonYears:  res.Config.HorizonYears,

		PProfitableByEnd:          math.NaN(),
		ExpectedTimeToProfitYears: math.NaN(),
		MedianTimeToProfitYears:   math.NaN(),
	}

	downside := math.Abs(math.Min(0, m.VaRProfit)) + 1e-12
	m.RiskAdjustedProfitOverVaR = m.ExpectedProfit / downside

	if grid := res.Paths.ValuationByMonth; grid != nil && grid.NSims() == len(roi) {
		m.ProfitabilityAvailable = true
		equity0 := res.Config.Equity0()

		hitYears := make([]float64, 0, len(roi))
		for i := 0; i < grid.NSims(); i++ {
			eq := equity0 * (1.0 - res.Params.DilutionTotal[i])
			if eq < 1e-12 {
				eq = 1e-12
			}
			threshold := investment / eq
			for t := 0; t <= grid.Months(); t++ {
				if grid.At(i, t) >= threshold {
					hitYears = append(hitYears, float64(t)/12.0)
					break
				}
			}
		}
		m.PProfitableByEnd = float64(len(hitYears)) / float64(len(roi))
		if len(hitYears) > 0 {
			m.ExpectedTimeToProfitYears = stats.Mean(hitYears)
			m.MedianTimeToProfitYears = stats.Median(hitYears)
		}
	}
	return m
}
