package portfolio

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"vcsim/pkg/simulate"
	"vcsim/pkg/stats"
)

// ErrNoStartups reports an empty startup list.
var ErrNoStartups = errors.New("portfolio: startups must be a non-empty list")

// ErrBudgetTooSmall reports a budget below a single minimum ticket.
var ErrBudgetTooSmall = errors.New("portfolio: budget is smaller than min_ticket")

// StartupSpec names one candidate startup and its prior overrides.
type StartupSpec struct {
	Name   string
	Priors *simulate.Priors // nil means simulate.DefaultPriors
	// PreMoney overrides the shared default valuation; 0 keeps the default.
	PreMoney float64
}

// BuildConfig holds the shared simulation settings and the portfolio
// constraints. Zero values take the documented defaults.
type BuildConfig struct {
	// Per-startup simulation settings. Startup i runs with Seed+i.
	Seed               int64
	NSims              int     // default 20_000
	HorizonYears       float64 // default 5
	Investment         float64 // default 100_000
	PreMoneyDefault    float64 // default 1_000_000
	MacroShockSDAnnual float64 // default 0.25; negative disables the shock
	StoreValuationPath bool    // off by default for portfolio runs

	// Constraints.
	Budget    float64 // default 500_000
	K         int     // default 3
	MinTicket float64 // default 100_000

	// Objective selection: a supported objective name, or "auto" (default)
	// to try every candidate objective and keep the best-scoring portfolio.
	Objective   string
	TargetROI   float64 // default 2
	RiskPenalty float64 // default 0.15
	LossPenalty float64 // default 0.80

	// Weight optimization.
	Method         string  // "equal" | "grid" | "dirichlet" (default)
	GridStep       float64 // default 0.1
	DirichletDraws int     // default 10_000
	DirichletAlpha float64 // default 1.0

	// Logger receives per-startup progress; nil disables logging.
	Logger *logrus.Logger
}

func (c BuildConfig) withDefaults() BuildConfig {
	if c.NSims == 0 {
		c.NSims = 20_000
	}
	if c.HorizonYears == 0 {
		c.HorizonYears = 5.0
	}
	if c.Investment == 0 {
		c.Investment = 100_000
	}
	if c.PreMoneyDefault == 0 {
		c.PreMoneyDefault = 1_000_000
	}
	if c.MacroShockSDAnnual == 0 {
		c.MacroShockSDAnnual = 0.25
	}
	if c.Budget == 0 {
		c.Budget = 500_000
	}
	if c.K == 0 {
		c.K = 3
	}
	if c.MinTicket == 0 {
		c.MinTicket = 100_000
	}
	if c.Objective == "" {
		c.Objective = "auto"
	}
	if c.TargetROI == 0 {
		c.TargetROI = 2.0
	}
	if c.RiskPenalty == 0 {
		c.RiskPenalty = 0.15
	}
	if c.LossPenalty == 0 {
		c.LossPenalty = 0.80
	}
	if c.Method == "" {
		c.Method = "dirichlet"
	}
	if c.GridStep == 0 {
		c.GridStep = 0.1
	}
	if c.DirichletDraws == 0 {
		c.DirichletDraws = 10_000
	}
	if c.DirichletAlpha == 0 {
		c.DirichletAlpha = 1.0
	}
	return c
}

// SelectedAsset is one constituent of the recommended portfolio.
type SelectedAsset struct {
	Name        string
	Priors      *simulate.Priors
	Weight      float64
	Ticket      float64
	SingleScore float64
	Metrics     simulate.Metrics
}

// Metrics summarizes the weighted portfolio ROI distribution.
type Metrics struct {
	ProbROILt1     float64
	ProbTotalLoss  float64
	Prob3x         float64
	Prob10x        float64
	ExpectedROI    float64
	MedianROI      float64
	ROIPercentiles map[int]float64
}

// ObjectiveTrial is one row of the objective="auto" comparison table.
type ObjectiveTrial struct {
	Objective      string
	PortfolioScore float64
	ExpectedROI    float64
	ProbLoss       float64
	Prob10x        float64
}

// Debug is the optimizer trace attached to every result.
type Debug struct {
	KEff          int
	NSimsPerAsset int
	Method        string
	WeightsRaw    []float64
	WeightsFinal  []float64
	// ObjectiveSearch holds the per-objective comparison when the builder
	// ran with objective="auto"; nil otherwise.
	ObjectiveSearch []ObjectiveTrial
}

// Result is the portfolio recommendation.
type Result struct {
	Objective string
	Score     float64
	Selected  []SelectedAsset
	Metrics   Metrics
	ROI       []float64
	Debug     Debug
}

type evaluated struct {
	spec StartupSpec
	res  *simulate.Result
}

// Build runs the end-to-end portfolio construction: simulate every startup,
// select the top-k under the objective, optimize allocation weights, enforce
// the minimum ticket, and report the weighted portfolio with a debug trace.
// All configuration errors surface before any simulation work.
func Build(startups []StartupSpec, cfg BuildConfig) (*Result, error) {
	if len(startups) == 0 {
		return nil, ErrNoStartups
	}
	cfg = cfg.withDefaults()

	if cfg.Budget <= 0 {
		return nil, fmt.Errorf("portfolio: budget must be > 0, got %g", cfg.Budget)
	}
	if cfg.MinTicket <= 0 {
		return nil, fmt.Errorf("portfolio: min_ticket must be > 0, got %g", cfg.MinTicket)
	}
	if cfg.K < 1 {
		return nil, fmt.Errorf("portfolio: k must be >= 1, got %d", cfg.K)
	}
	maxKByBudget := int(cfg.Budget / cfg.MinTicket)
	if maxKByBudget < 1 {
		return nil, fmt.Errorf("%w: budget %g, min_ticket %g", ErrBudgetTooSmall, cfg.Budget, cfg.MinTicket)
	}

	method, err := ParseMethod(cfg.Method)
	if err != nil {
		return nil, err
	}
	if method == MethodDirichlet && cfg.DirichletAlpha <= 0 {
		return nil, fmt.Errorf("portfolio: dirichlet alpha must be > 0, got %g", cfg.DirichletAlpha)
	}
	auto := cfg.Objective == "auto"
	var objective Objective
	if !auto {
		objective, err = ParseObjective(cfg.Objective)
		if err != nil {
			return nil, err
		}
	}

	kEff := cfg.K
	if kEff > maxKByBudget {
		kEff = maxKByBudget
	}
	if kEff > len(startups) {
		kEff = len(startups)
	}

	params := ObjectiveParams{
		TargetROI:    cfg.TargetROI,
		RiskPenalty:  cfg.RiskPenalty,
		LossPenalty:  cfg.LossPenalty,
		HorizonYears: cfg.HorizonYears,
	}

	macroSD := cfg.MacroShockSDAnnual
	if macroSD < 0 {
		macroSD = 0
	}

	evals := make([]evaluated, 0, len(startups))
	for i, s := range startups {
		preMoney := s.PreMoney
		if preMoney == 0 {
			preMoney = cfg.PreMoneyDefault
		}
		res, err := simulate.Run(simulate.Config{
			Seed:               cfg.Seed + int64(i),
			NSims:              cfg.NSims,
			HorizonYears:       cfg.HorizonYears,
			Investment:         cfg.Investment,
			PreMoney:           preMoney,
			Priors:             s.Priors,
			MacroShockSDAnnual: macroSD,
			DisablePathStorage: !cfg.StoreValuationPath,
		})
		if err != nil {
			return nil, fmt.Errorf("portfolio: simulating %q: %w", s.Name, err)
		}
		if cfg.Logger != nil {
			cfg.Logger.WithFields(logrus.Fields{
				"startup":      s.Name,
				"expected_roi": res.Metrics.ExpectedROI,
				"p_alive_end":  res.Metrics.PAliveEnd,
			}).Debug("evaluated startup")
		}
		evals = append(evals, evaluated{spec: s, res: res})
	}

	if auto {
		var best *Result
		trials := make([]ObjectiveTrial, 0, len(CandidateObjectives))
		for _, obj := range CandidateObjectives {
			out, err := buildUnderObjective(evals, obj, method, kEff, params, cfg)
			if err != nil {
				return nil, err
			}
			trials = append(trials, ObjectiveTrial{
				Objective:      obj.String(),
				PortfolioScore: out.Score,
				ExpectedROI:    out.Metrics.ExpectedROI,
				ProbLoss:       out.Metrics.ProbROILt1,
				Prob10x:        out.Metrics.Prob10x,
			})
			if best == nil || out.Score > best.Score {
				best = out
			}
		}
		best.Debug.ObjectiveSearch = trials
		if cfg.Logger != nil {
			cfg.Logger.WithFields(logrus.Fields{
				"objective": best.Objective,
				"score":     best.Score,
			}).Info("objective search complete")
		}
		return best, nil
	}

	return buildUnderObjective(evals, objective, method, kEff, params, cfg)
}

func buildUnderObjective(evals []evaluated, obj Objective, method Method, kEff int, params ObjectiveParams, cfg BuildConfig) (*Result, error) {
	type scored struct {
		evaluated
		asset AssetStats
		score float64
	}
	ranked := make([]scored, len(evals))
	for i, e := range evals {
		st := AssetStats{Name: e.spec.Name, PD12m: e.res.Metrics.PD12m}
		ranked[i] = scored{
			evaluated: e,
			asset:     st,
			score:     obj.scoreSingle(e.res.Samples.ROI, st, params),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	chosen := ranked[:kEff]

	// Align sample counts across the chosen assets.
	nAligned := len(chosen[0].res.Samples.ROI)
	for _, c := range chosen[1:] {
		if n := len(c.res.Samples.ROI); n < nAligned {
			nAligned = n
		}
	}
	roiMat := mat.NewDense(nAligned, kEff, nil)
	assets := make([]AssetStats, kEff)
	for j, c := range chosen {
		assets[j] = c.asset
		for i := 0; i < nAligned; i++ {
			roiMat.Set(i, j, c.res.Samples.ROI[i])
		}
	}

	var (
		wRaw  []float64
		score float64
		err   error
	)
	switch method {
	case MethodEqual:
		wRaw = equalWeights(kEff)
		score = obj.score(portfolioROI(roiMat, wRaw), assets, wRaw, params)
	case MethodGrid:
		wRaw, score, err = searchGrid(roiMat, assets, obj, params, cfg.GridStep)
		if err != nil {
			return nil, err
		}
	case MethodDirichlet:
		wRaw, score = searchDirichlet(roiMat, assets, obj, params, cfg.DirichletDraws, cfg.DirichletAlpha, cfg.Seed+12345)
	}

	tickets, wFinal := TicketsFromWeights(wRaw, cfg.Budget, cfg.MinTicket)
	portROI := portfolioROI(roiMat, wFinal)

	selected := make([]SelectedAsset, kEff)
	for i, c := range chosen {
		selected[i] = SelectedAsset{
			Name:        c.spec.Name,
			Priors:      c.spec.Priors,
			Weight:      wFinal[i],
			Ticket:      tickets[i],
			SingleScore: c.score,
			Metrics:     c.res.Metrics,
		}
	}

	return &Result{
		Objective: obj.String(),
		Score:     score,
		Selected:  selected,
		Metrics: Metrics{
			ProbROILt1:     stats.FracBelow(portROI, 1.0),
			ProbTotalLoss:  stats.FracEqual(portROI, 0.0),
			Prob3x:         stats.FracAtLeast(portROI, 3.0),
			Prob10x:        stats.FracAtLeast(portROI, 10.0),
			ExpectedROI:    stats.Mean(portROI),
			MedianROI:      stats.Median(portROI),
			ROIPercentiles: stats.PercentileTable(portROI),
		},
		ROI: portROI,
		Debug: Debug{
			KEff:          kEff,
			NSimsPerAsset: nAligned,
			Method:        method.String(),
			WeightsRaw:    wRaw,
			WeightsFinal:  wFinal,
		},
	}, nil
}
