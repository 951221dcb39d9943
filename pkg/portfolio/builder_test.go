package portfolio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcsim/pkg/simulate"
)

func testSpecs(n int) []StartupSpec {
	specs := make([]StartupSpec, n)
	mus := []float64{0.30, 0.55, 0.80, 1.05, 1.30}
	for i := range specs {
		p := simulate.DefaultPriors()
		p.MuAnnualMean = mus[i%len(mus)]
		p.PFailAnnualMean = 0.10 + 0.05*float64(i%len(mus))
		specs[i] = StartupSpec{Name: string(rune('A' + i)), Priors: &p}
	}
	return specs
}

func fastConfig() BuildConfig {
	return BuildConfig{
		Seed:           10,
		NSims:          1500,
		Method:         "equal",
		DirichletDraws: 300,
	}
}

func TestBuildValidatesBeforeSimulating(t *testing.T) {
	_, err := Build(nil, fastConfig())
	assert.ErrorIs(t, err, ErrNoStartups)

	cfg := fastConfig()
	cfg.Budget = 50_000
	cfg.MinTicket = 100_000
	_, err = Build(testSpecs(3), cfg)
	assert.ErrorIs(t, err, ErrBudgetTooSmall)

	cfg = fastConfig()
	cfg.Objective = "sortino"
	_, err = Build(testSpecs(3), cfg)
	assert.ErrorIs(t, err, ErrUnknownObjective)

	cfg = fastConfig()
	cfg.Method = "gradient"
	_, err = Build(testSpecs(3), cfg)
	assert.ErrorIs(t, err, ErrUnknownMethod)

	cfg = fastConfig()
	cfg.Budget = -1
	_, err = Build(testSpecs(3), cfg)
	assert.Error(t, err)

	cfg = fastConfig()
	cfg.K = -2
	_, err = Build(testSpecs(3), cfg)
	assert.Error(t, err)
}

func TestBuildGridRejectsLargeK(t *testing.T) {
	cfg := fastConfig()
	cfg.Method = "grid"
	cfg.K = 4
	cfg.Objective = "expected_roi"
	_, err := Build(testSpecs(5), cfg)
	assert.ErrorIs(t, err, ErrGridTooManyAssets)
}

func TestBuildFixedObjective(t *testing.T) {
	cfg := fastConfig()
	cfg.Objective = "expected_roi"
	res, err := Build(testSpecs(4), cfg)
	require.NoError(t, err)

	assert.Equal(t, "expected_roi", res.Objective)
	assert.Nil(t, res.Debug.ObjectiveSearch)
	assert.Equal(t, 3, res.Debug.KEff) // default k
	assert.Equal(t, 1500, res.Debug.NSimsPerAsset)
	require.Len(t, res.Selected, 3)
	require.Len(t, res.ROI, 1500)

	// Selection is ordered by single-asset score.
	for i := 1; i < len(res.Selected); i++ {
		assert.GreaterOrEqual(t, res.Selected[i-1].SingleScore, res.Selected[i].SingleScore)
	}
}

func TestBuildWeightAndTicketInvariants(t *testing.T) {
	for _, method := range []string{"equal", "grid", "dirichlet"} {
		cfg := fastConfig()
		cfg.Method = method
		cfg.Objective = "expected_roi"
		res, err := Build(testSpecs(4), cfg)
		require.NoError(t, err, method)

		sumW, sumT := 0.0, 0.0
		for _, s := range res.Selected {
			assert.GreaterOrEqual(t, s.Weight, 0.0, method)
			assert.GreaterOrEqual(t, s.Ticket, 100_000.0-1e-6, method)
			sumW += s.Weight
			sumT += s.Ticket
		}
		assert.InDelta(t, 1.0, sumW, 1e-9, method)
		assert.InDelta(t, 500_000.0, sumT, 500_000*1e-6, method)

		assert.Len(t, res.Debug.WeightsRaw, res.Debug.KEff, method)
		assert.Len(t, res.Debug.WeightsFinal, res.Debug.KEff, method)
		assert.Equal(t, method, res.Debug.Method)
	}
}

func TestBuildAutoObjectiveSearch(t *testing.T) {
	cfg := fastConfig()
	cfg.Objective = "auto"
	res, err := Build(testSpecs(4), cfg)
	require.NoError(t, err)

	trials := res.Debug.ObjectiveSearch
	require.Len(t, trials, len(CandidateObjectives))

	best := trials[0]
	seen := map[string]bool{}
	for _, tr := range trials {
		assert.False(t, seen[tr.Objective], "duplicate objective %s", tr.Objective)
		seen[tr.Objective] = true
		assert.False(t, math.IsNaN(tr.PortfolioScore), "NaN score for %s", tr.Objective)
		if tr.PortfolioScore > best.PortfolioScore {
			best = tr
		}
	}
	for _, o := range CandidateObjectives {
		assert.True(t, seen[o.String()], "missing objective %s", o.String())
	}

	// The returned portfolio is the winning trial.
	assert.Equal(t, best.Objective, res.Objective)
	assert.Equal(t, best.PortfolioScore, res.Score)
}

func TestBuildDeterministic(t *testing.T) {
	cfg := fastConfig()
	cfg.Objective = "rar"
	cfg.Method = "dirichlet"
	cfg.DirichletDraws = 200

	a, err := Build(testSpecs(3), cfg)
	require.NoError(t, err)
	b, err := Build(testSpecs(3), cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Score, b.Score)
	assert.Equal(t, a.Debug.WeightsFinal, b.Debug.WeightsFinal)
	assert.Equal(t, a.ROI, b.ROI)
}

func TestBuildClampsKToBudgetAndUniverse(t *testing.T) {
	cfg := fastConfig()
	cfg.Objective = "expected_roi"
	cfg.K = 10
	cfg.Budget = 250_000
	cfg.MinTicket = 100_000
	res, err := Build(testSpecs(4), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Debug.KEff) // floor(250k/100k)

	cfg = fastConfig()
	cfg.Objective = "expected_roi"
	cfg.K = 10
	res, err = Build(testSpecs(2), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Debug.KEff) // universe size
}
