package portfolio

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Method is the closed set of weight-optimization strategies.
type Method int

const (
	// MethodDirichlet random-searches the simplex with Dirichlet draws.
	// It scales to any k; the result is a Monte Carlo approximation whose
	// quality depends on the draw count, with equal weights always kept as
	// a floor candidate.
	MethodDirichlet Method = iota
	// MethodGrid exhaustively searches a step grid; feasible for k <= 3.
	MethodGrid
	// MethodEqual uses uniform 1/k weights.
	MethodEqual
)

// ErrUnknownMethod reports a weight-method name outside the supported set.
var ErrUnknownMethod = errors.New("portfolio: unknown weight method")

// ErrGridTooManyAssets reports a grid search requested for k > 3.
var ErrGridTooManyAssets = errors.New("portfolio: grid optimisation supports k<=3 only, use dirichlet")

func (m Method) String() string {
	switch m {
	case MethodDirichlet:
		return "dirichlet"
	case MethodGrid:
		return "grid"
	case MethodEqual:
		return "equal"
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// ParseMethod maps a name to its Method tag.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "dirichlet":
		return MethodDirichlet, nil
	case "grid":
		return MethodGrid, nil
	case "equal":
		return MethodEqual, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// normalizeWeights clamps negatives to zero and rescales to sum 1 with an
// epsilon-guarded denominator.
func normalizeWeights(w []float64) []float64 {
	out := make([]float64, len(w))
	sum := 0.0
	for i, wi := range w {
		if wi < 0 {
			wi = 0
		}
		out[i] = wi
		sum += wi
	}
	for i := range out {
		out[i] /= sum + 1e-12
	}
	return out
}

func equalWeights(k int) []float64 {
	w := make([]float64, k)
	for i := range w {
		w[i] = 1.0 / float64(k)
	}
	return w
}

// TicketsFromWeights converts weights to budget tickets, floors tickets at
// minTicket and rescales the rest so total spend equals the budget exactly,
// repeating until no ticket sits below the floor. When the budget is feasible
// (len(w) x minTicket <= budget) the result spends the budget exactly with
// every ticket >= minTicket; an infeasible budget falls back to a single
// bump-and-rescale pass and is the caller's validation failure. Enforcement
// can move the effective weights away from the optimized ones; that is the
// accepted price of the minimum-ticket guarantee.
func TicketsFromWeights(weights []float64, budget, minTicket float64) (tickets, finalWeights []float64) {
	w := normalizeWeights(weights)
	k := len(w)
	tickets = make([]float64, k)

	if minTicket*float64(k) > budget+1e-9 {
		// Infeasible: bump and rescale once, best effort.
		sum := 0.0
		for i, wi := range w {
			t := wi * budget
			if t < minTicket {
				t = minTicket
			}
			tickets[i] = t
			sum += t
		}
		scale := budget / (sum + 1e-12)
		for i := range tickets {
			tickets[i] *= scale
		}
	} else {
		floored := make([]bool, k)
		for iter := 0; iter < k; iter++ {
			nFloored := 0
			freeWeight := 0.0
			for i := range w {
				if floored[i] {
					nFloored++
				} else {
					freeWeight += w[i]
				}
			}
			remaining := budget - float64(nFloored)*minTicket
			for i := range w {
				if floored[i] {
					tickets[i] = minTicket
				} else {
					tickets[i] = w[i] / (freeWeight + 1e-12) * remaining
				}
			}
			bumped := false
			for i := range tickets {
				if !floored[i] && tickets[i] < minTicket {
					floored[i] = true
					bumped = true
				}
			}
			if !bumped {
				break
			}
		}
	}

	fw := make([]float64, k)
	for i, t := range tickets {
		fw[i] = t / (budget + 1e-12)
	}
	return tickets, normalizeWeights(fw)
}

// portfolioROI combines the aligned per-asset ROI samples with the given
// weights: roiMat (n x k) times w (k).
func portfolioROI(roiMat *mat.Dense, w []float64) []float64 {
	n, k := roiMat.Dims()
	wn := normalizeWeights(w)
	out := mat.NewVecDense(n, nil)
	out.MulVec(roiMat, mat.NewVecDense(k, wn))
	port := make([]float64, n)
	copy(port, out.RawVector().Data)
	return port
}

// searchGrid exhaustively enumerates step-grid weight vectors on the simplex
// for k <= 3 and returns the best-scoring one.
func searchGrid(roiMat *mat.Dense, assets []AssetStats, obj Objective, p ObjectiveParams, step float64) ([]float64, float64, error) {
	_, k := roiMat.Dims()
	if k > 3 {
		return nil, 0, fmt.Errorf("%w (k=%d)", ErrGridTooManyAssets, k)
	}
	if step <= 0 {
		return nil, 0, fmt.Errorf("portfolio: grid step must be > 0, got %g", step)
	}

	var grid []float64
	for g := 0.0; g <= 1.0+1e-9; g += step {
		grid = append(grid, g)
	}

	bestScore := math.Inf(-1)
	var bestW []float64
	try := func(w []float64) {
		wn := normalizeWeights(w)
		sc := obj.score(portfolioROI(roiMat, wn), assets, wn, p)
		if sc > bestScore {
			bestScore = sc
			bestW = wn
		}
	}

	switch k {
	case 1:
		try([]float64{1.0})
	case 2:
		for _, w0 := range grid {
			try([]float64{w0, 1.0 - w0})
		}
	case 3:
		for _, w0 := range grid {
			for _, w1 := range grid {
				w2 := 1.0 - w0 - w1
				if w2 < -1e-9 {
					continue
				}
				if w2 < 0 {
					w2 = 0
				}
				if w0+w1+w2 <= 0 {
					continue
				}
				try([]float64{w0, w1, w2})
			}
		}
	}

	if bestW == nil {
		bestW = equalWeights(k)
		bestScore = obj.score(portfolioROI(roiMat, bestW), assets, bestW, p)
	}
	return bestW, bestScore, nil
}

// searchDirichlet random-searches the simplex with draws Dirichlet(alpha,..)
// candidates. alpha < 1 biases toward concentrated allocations, alpha > 1
// toward equal-weight ones. Equal weights are always evaluated first as the
// floor candidate.
func searchDirichlet(roiMat *mat.Dense, assets []AssetStats, obj Objective, p ObjectiveParams, draws int, alpha float64, seed int64) ([]float64, float64) {
	_, k := roiMat.Dims()

	bestW := equalWeights(k)
	bestScore := obj.score(portfolioROI(roiMat, bestW), assets, bestW, p)

	alphas := make([]float64, k)
	for i := range alphas {
		alphas[i] = alpha
	}
	dir := distmv.NewDirichlet(alphas, rand.NewSource(uint64(seed)))

	w := make([]float64, k)
	for d := 0; d < draws; d++ {
		dir.Rand(w)
		sc := obj.score(portfolioROI(roiMat, w), assets, w, p)
		if sc > bestScore {
			bestScore = sc
			bestW = append([]float64(nil), w...)
		}
	}
	return bestW, bestScore
}
