// Package simulate implements the per-startup Monte Carlo valuation engine:
// latent-parameter sampling from prior distributions, monthly stochastic
// evolution of the valuation with failure absorption, and reduction of the
// simulated sample set into ROI/IRR/survival statistics.
package simulate

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

// Config holds the inputs of one startup simulation. The zero value of every
// field is replaced by the documented default, so callers set only what they
// need. A run is fully determined by (Seed, Config).
type Config struct {
	Seed         int64
	NSims        int     // number of trajectories, default 50_000
	HorizonYears float64 // default 5
	Investment   float64 // default 100_000
	PreMoney     float64 // default 1_000_000
	PostMoney    float64 // 0 means PreMoney + Investment

	// ValuationFloor keeps alive valuations strictly positive; a dead
	// trajectory is pinned to exactly 0 via the alive flag instead.
	ValuationFloor float64 // default 10_000

	// Priors overrides the latent-variable hyperparameters; nil uses
	// DefaultPriors.
	Priors *Priors

	// MacroShockSDAnnual adds a monthly market-wide shock shared across all
	// trajectories; 0 disables it.
	MacroShockSDAnnual float64

	// DisablePathStorage skips the O(NSims x months) valuation history.
	// Storage is on by default; large runs opt out.
	DisablePathStorage bool
	PathPrecision      PathPrecision
}

func (c Config) withDefaults() Config {
	if c.NSims == 0 {
		c.NSims = 50_000
	}
	if c.HorizonYears == 0 {
		c.HorizonYears = 5.0
	}
	if c.Investment == 0 {
		c.Investment = 100_000
	}
	if c.PreMoney == 0 {
		c.PreMoney = 1_000_000
	}
	if c.PostMoney == 0 {
		c.PostMoney = c.PreMoney + c.Investment
	}
	if c.ValuationFloor == 0 {
		c.ValuationFloor = 10_000
	}
	if c.Priors == nil {
		p := DefaultPriors()
		c.Priors = &p
	}
	return c
}

// Equity0 is the founders-round equity fraction implied by the deal terms.
// Valid on the normalized Config echoed in a Result.
func (c Config) Equity0() float64 { return c.Investment / c.PostMoney }

// Samples are the terminal per-trajectory outcomes, index-aligned across all
// four vectors.
type Samples struct {
	ROI           []float64
	IRR           []float64
	Payout        []float64
	ValuationExit []float64
}

// Paths are the path-level outputs of a run. FirstHitMonthBreakEven uses
// +Inf as the "never crossed break-even" sentinel. ValuationByMonth is nil
// when path storage is disabled.
type Paths struct {
	AliveFracByMonth       []float64
	FirstHitMonthBreakEven []float64
	ValuationByMonth       *PathGrid
}

// Result is the immutable bundle produced by one simulation run.
type Result struct {
	Config      Config // normalized echo of the inputs
	Params      ParameterSample
	Samples     Samples
	Paths       Paths
	Metrics     Metrics
	Sensitivity []Sensitivity
}

// Run simulates cfg.NSims independent futures of a single startup.
//
// Each trajectory starts at the pre-money valuation and evolves monthly: it
// dies with a per-month hazard derived from its annual failure probability
// (death is absorbing, valuation pinned to 0), otherwise the valuation
// follows a geometric random walk with Ito-corrected drift, an idiosyncratic
// shock and an optional shared macro shock. At the horizon an exit-multiple
// shock is applied, and payout/ROI/IRR follow from the diluted equity stake.
func Run(cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	if cfg.NSims < 1 {
		return nil, fmt.Errorf("simulate: n_sims must be >= 1, got %d", cfg.NSims)
	}
	if cfg.HorizonYears < 0 {
		return nil, fmt.Errorf("simulate: horizon_years must be >= 0, got %g", cfg.HorizonYears)
	}
	if cfg.Investment <= 0 || cfg.PostMoney <= 0 {
		return nil, fmt.Errorf("simulate: investment and post_money must be > 0")
	}

	n := cfg.NSims
	months := int(math.Round(cfg.HorizonYears * 12))
	years := float64(months) / 12.0

	src := rand.NewSource(uint64(cfg.Seed))
	rng := rand.New(src)

	params, err := SampleParameters(src, n, *cfg.Priors)
	if err != nil {
		return nil, err
	}

	equity0 := cfg.Investment / cfg.PostMoney

	// Per-trajectory constants derived from the sampled parameters.
	equity := make([]float64, n)
	pFailM := make([]float64, n)
	drift := make([]float64, n)
	sigmaM := make([]float64, n)
	breakEven := make([]float64, n)
	for i := 0; i < n; i++ {
		equity[i] = equity0 * (1.0 - params.DilutionTotal[i])
		pFailM[i] = 1.0 - math.Pow(1.0-params.PFailAnnual[i], 1.0/12.0)
		sm := params.SigmaAnnual[i] / math.Sqrt(12.0)
		mm := math.Pow(1.0+params.MuAnnual[i], 1.0/12.0) - 1.0
		sigmaM[i] = sm
		drift[i] = mm - 0.5*sm*sm
		// Valuation needed to return 1x, ignoring the exit multiple.
		eq := equity[i]
		if eq < 1e-12 {
			eq = 1e-12
		}
		breakEven[i] = cfg.Investment / eq
	}

	v := make([]float64, n)
	alive := make([]bool, n)
	firstHit := make([]float64, n)
	for i := 0; i < n; i++ {
		v[i] = cfg.PreMoney
		alive[i] = true
		if v[i] >= breakEven[i] {
			firstHit[i] = 0
		} else {
			firstHit[i] = math.Inf(1)
		}
	}

	aliveFrac := make([]float64, months+1)
	aliveFrac[0] = 1.0

	var grid *PathGrid
	if !cfg.DisablePathStorage {
		grid = newPathGrid(n, months, cfg.PathPrecision)
		for i := 0; i < n; i++ {
			grid.set(i, 0, v[i])
		}
	}

	macroSDm := 0.0
	if cfg.MacroShockSDAnnual > 0 {
		macroSDm = cfg.MacroShockSDAnnual / math.Sqrt(12.0)
	}

	for t := 0; t < months; t++ {
		// Failure hazard first: a trajectory that dies this month does not
		// evolve or cross break-even this month.
		for i := 0; i < n; i++ {
			if rng.Float64() < pFailM[i] && alive[i] {
				alive[i] = false
				v[i] = 0
			}
		}

		// One idiosyncratic draw per trajectory, then at most one shared
		// macro draw; the stream is consumed identically whether or not a
		// trajectory is alive so runs stay seed-comparable across configs.
		macro := 0.0
		eps := make([]float64, n)
		for i := 0; i < n; i++ {
			eps[i] = rng.NormFloat64()
		}
		if macroSDm > 0 {
			macro = rng.NormFloat64() * macroSDm
		}

		nAlive := 0
		for i := 0; i < n; i++ {
			if alive[i] {
				next := v[i] * math.Exp(drift[i]+sigmaM[i]*eps[i]+macro)
				if next < cfg.ValuationFloor {
					next = cfg.ValuationFloor
				}
				v[i] = next
				nAlive++
			}
		}
		aliveFrac[t+1] = float64(nAlive) / float64(n)

		if grid != nil {
			for i := 0; i < n; i++ {
				grid.set(i, t+1, v[i])
			}
		}

		for i := 0; i < n; i++ {
			if math.IsInf(firstHit[i], 1) && alive[i] && v[i] >= breakEven[i] {
				firstHit[i] = float64(t + 1)
			}
		}
	}

	// Terminal exit shock. Draws are consumed for every trajectory so the
	// stream does not depend on which ones survived.
	roi := make([]float64, n)
	payout := make([]float64, n)
	vExit := make([]float64, n)
	for i := 0; i < n; i++ {
		m := math.Exp(params.ExitMu[i] + params.ExitSigma[i]*rng.NormFloat64())
		if alive[i] {
			vExit[i] = v[i] * m
		}
		payout[i] = equity[i] * vExit[i]
		roi[i] = payout[i] / cfg.Investment
	}
	irr := make([]float64, n)
	for i := 0; i < n; i++ {
		irr[i] = ROIToIRR(roi[i], years)
	}

	cfg.HorizonYears = years
	res := &Result{
		Config: cfg,
		Params: params,
		Samples: Samples{
			ROI:           roi,
			IRR:           irr,
			Payout:        payout,
			ValuationExit: vExit,
		},
		Paths: Paths{
			AliveFracByMonth:       aliveFrac,
			FirstHitMonthBreakEven: firstHit,
			ValuationByMonth:       grid,
		},
	}
	res.Metrics = computeMetrics(res.Samples, res.Paths, months)
	res.Sensitivity = computeSensitivity(params, roi)
	return res, nil
}
