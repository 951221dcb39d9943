// Package portfolio selects and weights a subset of simulated startups to
// maximize a risk-adjusted objective under a budget constraint: single-asset
// scoring, weight-optimization search over the allocation simplex, and the
// end-to-end builder.
package portfolio

import (
	"errors"
	"fmt"
	"math"

	"vcsim/pkg/simulate"
	"vcsim/pkg/stats"
)

// Objective is the closed set of portfolio scoring functions. Unknown names
// are rejected at parse time, never silently defaulted.
type Objective int

const (
	// ObjectiveRAR maximizes E[IRR] x (1 - blended default probability).
	ObjectiveRAR Objective = iota
	// ObjectiveExpectedROI maximizes mean ROI less loss and volatility penalties.
	ObjectiveExpectedROI
	// ObjectiveExpectedLog is the same on log ROI, approximating geometric growth.
	ObjectiveExpectedLog
	// ObjectiveProbTarget maximizes P(ROI >= target) less a loss penalty.
	ObjectiveProbTarget
	// ObjectiveProb10x maximizes P(ROI >= 10) less a loss penalty.
	ObjectiveProb10x
)

// ErrUnknownObjective reports an objective name outside the supported set.
var ErrUnknownObjective = errors.New("portfolio: unknown objective")

// CandidateObjectives is the fixed list tried by objective="auto".
var CandidateObjectives = []Objective{
	ObjectiveRAR,
	ObjectiveExpectedROI,
	ObjectiveExpectedLog,
	ObjectiveProbTarget,
	ObjectiveProb10x,
}

func (o Objective) String() string {
	switch o {
	case ObjectiveRAR:
		return "rar"
	case ObjectiveExpectedROI:
		return "expected_roi"
	case ObjectiveExpectedLog:
		return "expected_log"
	case ObjectiveProbTarget:
		return "prob_target"
	case ObjectiveProb10x:
		return "prob_10x"
	}
	return fmt.Sprintf("objective(%d)", int(o))
}

// ParseObjective maps a name to its Objective tag.
func ParseObjective(name string) (Objective, error) {
	for _, o := range CandidateObjectives {
		if o.String() == name {
			return o, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownObjective, name)
}

// ObjectiveParams are the shared scoring knobs.
type ObjectiveParams struct {
	TargetROI    float64 // prob_target threshold
	RiskPenalty  float64 // weight on the ROI (or log-ROI) standard deviation
	LossPenalty  float64 // weight on P(ROI < 1)
	HorizonYears float64 // used by rar to annualize ROI
}

// AssetStats is the per-constituent metadata an objective may consult.
type AssetStats struct {
	Name  string
	PD12m float64
}

// score evaluates one objective on a portfolio ROI sample vector. assets and
// weights describe the constituents; only rar consults them, blending the
// constituents' 12-month default probabilities linearly by weight (a modeling
// approximation of portfolio default correlation, kept deliberately).
func (o Objective) score(portROI []float64, assets []AssetStats, weights []float64, p ObjectiveParams) float64 {
	pLoss := stats.FracBelow(portROI, 1.0)

	switch o {
	case ObjectiveRAR:
		irr := make([]float64, len(portROI))
		for i, r := range portROI {
			irr[i] = simulate.ROIToIRR(r, p.HorizonYears)
		}
		pd := 0.0
		for i := range assets {
			pd += weights[i] * assets[i].PD12m
		}
		return stats.Mean(irr) * (1.0 - pd)

	case ObjectiveExpectedROI:
		return stats.Mean(portROI) - p.LossPenalty*pLoss - p.RiskPenalty*stats.PopStd(portROI)

	case ObjectiveExpectedLog:
		z := make([]float64, len(portROI))
		for i, r := range portROI {
			z[i] = math.Log(r + 1e-12)
		}
		return stats.Mean(z) - p.LossPenalty*pLoss - p.RiskPenalty*stats.PopStd(z)

	case ObjectiveProbTarget:
		return stats.FracAtLeast(portROI, p.TargetROI) - p.LossPenalty*pLoss

	case ObjectiveProb10x:
		return stats.FracAtLeast(portROI, 10.0) - p.LossPenalty*pLoss
	}
	return math.Inf(-1)
}

// scoreSingle evaluates an objective on one asset alone (weight 1).
func (o Objective) scoreSingle(roi []float64, asset AssetStats, p ObjectiveParams) float64 {
	return o.score(roi, []AssetStats{asset}, []float64{1.0}, p)
}
