package simulate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDeterministic(t *testing.T) {
	cfg := Config{Seed: 7, NSims: 2000, HorizonYears: 3}
	a, err := Run(cfg)
	require.NoError(t, err)
	b, err := Run(cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Samples.ROI, b.Samples.ROI)
	assert.Equal(t, a.Samples.IRR, b.Samples.IRR)
	assert.Equal(t, a.Paths.AliveFracByMonth, b.Paths.AliveFracByMonth)
	assert.Equal(t, a.Paths.FirstHitMonthBreakEven, b.Paths.FirstHitMonthBreakEven)
	assert.Equal(t, a.Metrics.ExpectedROI, b.Metrics.ExpectedROI)
}

func TestAliveFractionNonIncreasing(t *testing.T) {
	res, err := Run(Config{Seed: 1, NSims: 5000, HorizonYears: 4})
	require.NoError(t, err)

	curve := res.Paths.AliveFracByMonth
	require.Len(t, curve, 4*12+1)
	assert.Equal(t, 1.0, curve[0])
	for i := 1; i < len(curve); i++ {
		assert.LessOrEqual(t, curve[i], curve[i-1], "month %d", i)
	}
}

func TestROIZeroIffDead(t *testing.T) {
	res, err := Run(Config{Seed: 2, NSims: 5000})
	require.NoError(t, err)

	nTotalLoss := 0
	for i, roi := range res.Samples.ROI {
		assert.GreaterOrEqual(t, roi, 0.0)
		if roi == 0 {
			nTotalLoss++
			assert.Zero(t, res.Samples.ValuationExit[i])
			assert.Zero(t, res.Samples.Payout[i])
		} else {
			assert.Greater(t, res.Samples.ValuationExit[i], 0.0)
		}
	}
	// Total loss happens exactly when the trajectory is dead at exit.
	assert.InDelta(t, 1.0-res.Metrics.PAliveEnd, float64(nTotalLoss)/5000.0, 1e-12)
	assert.InDelta(t, res.Metrics.ProbTotalLoss, float64(nTotalLoss)/5000.0, 1e-12)
}

func TestIRRConvention(t *testing.T) {
	res, err := Run(Config{Seed: 3, NSims: 3000, HorizonYears: 5})
	require.NoError(t, err)

	for i, roi := range res.Samples.ROI {
		irr := res.Samples.IRR[i]
		if roi == 0 {
			assert.Equal(t, -1.0, irr)
			continue
		}
		back := math.Pow(1.0+irr, 5.0)
		assert.InEpsilon(t, roi, back, 1e-9, "sample %d", i)
	}
}

func TestFirstPassageBreakEven(t *testing.T) {
	res, err := Run(Config{
		Seed:          4,
		NSims:         1500,
		HorizonYears:  3,
		PathPrecision: PathFloat64,
	})
	require.NoError(t, err)

	grid := res.Paths.ValuationByMonth
	require.NotNil(t, grid)
	months := grid.Months()
	equity0 := res.Config.Equity0()

	for i, hit := range res.Paths.FirstHitMonthBreakEven {
		eq := equity0 * (1.0 - res.Params.DilutionTotal[i])
		threshold := res.Config.Investment / math.Max(eq, 1e-12)

		if math.IsInf(hit, 1) {
			continue
		}
		h := int(hit)
		require.GreaterOrEqual(t, h, 0)
		require.LessOrEqual(t, h, months)
		// Crossed at the recorded month and never before: first passage.
		assert.GreaterOrEqual(t, grid.At(i, h), threshold, "sample %d", i)
		for tt := 0; tt < h; tt++ {
			assert.Less(t, grid.At(i, tt), threshold, "sample %d month %d", i, tt)
		}
	}
}

func TestDefaultScenarioPlausible(t *testing.T) {
	res, err := Run(Config{Seed: 0, NSims: 20_000, HorizonYears: 5, Investment: 100_000, PreMoney: 1_000_000})
	require.NoError(t, err)

	m := res.Metrics
	assert.Greater(t, m.PAliveEnd, 0.0)
	assert.Less(t, m.PAliveEnd, 1.0)
	assert.Greater(t, m.ExpectedROI, 0.05)
	assert.Less(t, m.ExpectedROI, 50.0)
	assert.GreaterOrEqual(t, m.ProbTotalLoss, 1.0-m.PAliveEnd-1e-12)
}

func TestNearCertainFailureDrivesTotalLoss(t *testing.T) {
	p := DefaultPriors()
	p.PFailAnnualMean = 0.99
	p.PFailAnnualStrength = 1000

	res, err := Run(Config{Seed: 0, NSims: 5000, HorizonYears: 5, Priors: &p})
	require.NoError(t, err)
	assert.Greater(t, res.Metrics.ProbTotalLoss, 0.99)
}

func TestNoBreakEvenYieldsNaN(t *testing.T) {
	// Guaranteed decline: drift pinned at the lower bound, minimal volatility,
	// heavy dilution pushes break-even far above the starting valuation.
	p := DefaultPriors()
	p.MuAnnualMean = -0.30
	p.MuAnnualSD = 0
	p.MuBounds = Bounds{-0.30, -0.30}
	p.SigmaAnnualMean = 0.20
	p.SigmaAnnualSD = 0
	p.SigmaBounds = Bounds{0.20, 0.20}
	p.DilutionMean = 0.85
	p.DilutionSD = 0
	p.DilutionBounds = Bounds{0.85, 0.85}

	res, err := Run(Config{Seed: 5, NSims: 500, HorizonYears: 1, Priors: &p})
	require.NoError(t, err)

	assert.Zero(t, res.Metrics.PBreakEvenByEnd)
	assert.True(t, math.IsNaN(res.Metrics.ExpectedTimeToBreakEvenYears))
	assert.True(t, math.IsNaN(res.Metrics.MedianTimeToBreakEvenYears))
	for _, h := range res.Paths.FirstHitMonthBreakEven {
		assert.True(t, math.IsInf(h, 1))
	}
}

func TestPathStorageOptOut(t *testing.T) {
	res, err := Run(Config{Seed: 6, NSims: 200, HorizonYears: 1, DisablePathStorage: true})
	require.NoError(t, err)
	assert.Nil(t, res.Paths.ValuationByMonth)

	res, err = Run(Config{Seed: 6, NSims: 200, HorizonYears: 1})
	require.NoError(t, err)
	grid := res.Paths.ValuationByMonth
	require.NotNil(t, grid)
	assert.Equal(t, PathFloat32, grid.Precision())
	assert.Equal(t, 200, grid.NSims())
	assert.Equal(t, 12, grid.Months())
	assert.Len(t, grid.Row(0), 13)
	assert.InDelta(t, 1_000_000, grid.At(0, 0), 1.0)
}

func TestConfigNormalization(t *testing.T) {
	res, err := Run(Config{Seed: 8, NSims: 100, HorizonYears: 1})
	require.NoError(t, err)

	cfg := res.Config
	assert.Equal(t, 1_100_000.0, cfg.PostMoney)
	assert.InDelta(t, 100_000.0/1_100_000.0, cfg.Equity0(), 1e-12)
	assert.Equal(t, 10_000.0, cfg.ValuationFloor)
	require.NotNil(t, cfg.Priors)
}

func TestRunRejectsBadConfig(t *testing.T) {
	_, err := Run(Config{Seed: 1, NSims: -5})
	assert.Error(t, err)

	_, err = Run(Config{Seed: 1, HorizonYears: -1})
	assert.Error(t, err)

	p := DefaultPriors()
	p.PFailAnnualStrength = -1
	_, err = Run(Config{Seed: 1, NSims: 10, Priors: &p})
	assert.Error(t, err)
}
