package simulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"vcsim/pkg/stats"
)

func TestSampleParametersWithinBounds(t *testing.T) {
	p := DefaultPriors()
	s, err := SampleParameters(rand.NewSource(1), 2000, p)
	require.NoError(t, err)

	check := func(name string, x []float64, b Bounds) {
		require.Len(t, x, 2000, name)
		for i, xi := range x {
			assert.GreaterOrEqual(t, xi, b.Lo, "%s[%d]", name, i)
			assert.LessOrEqual(t, xi, b.Hi, "%s[%d]", name, i)
		}
	}
	check("dilution_total", s.DilutionTotal, p.DilutionBounds)
	check("mu_annual", s.MuAnnual, p.MuBounds)
	check("sigma_annual", s.SigmaAnnual, p.SigmaBounds)
	check("p_fail_annual", s.PFailAnnual, p.PFailBounds)
	check("exit_sigma", s.ExitSigma, p.ExitSigmaBounds)
	check("exit_mu", s.ExitMu, p.ExitMuBounds)
}

func TestSampleParametersDeterministic(t *testing.T) {
	p := DefaultPriors()
	a, err := SampleParameters(rand.NewSource(99), 500, p)
	require.NoError(t, err)
	b, err := SampleParameters(rand.NewSource(99), 500, p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBetaStrengthControlsConcentration(t *testing.T) {
	tight := DefaultPriors()
	tight.PFailAnnualStrength = 1000

	loose := DefaultPriors()
	loose.PFailAnnualStrength = 5

	st, err := SampleParameters(rand.NewSource(3), 4000, tight)
	require.NoError(t, err)
	sl, err := SampleParameters(rand.NewSource(3), 4000, loose)
	require.NoError(t, err)

	assert.Less(t, stats.PopStd(st.PFailAnnual), stats.PopStd(sl.PFailAnnual))
}

func TestPriorsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Priors)
	}{
		{"zero strength", func(p *Priors) { p.PFailAnnualStrength = 0 }},
		{"negative strength", func(p *Priors) { p.PFailAnnualStrength = -5 }},
		{"p_fail mean at 1", func(p *Priors) { p.PFailAnnualMean = 1.0 }},
		{"negative sd", func(p *Priors) { p.MuAnnualSD = -0.1 }},
		{"inverted bounds", func(p *Priors) { p.SigmaBounds = Bounds{2.0, 0.2} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultPriors()
			tc.mutate(&p)
			assert.Error(t, p.Validate())

			_, err := SampleParameters(rand.NewSource(1), 10, p)
			assert.Error(t, err)
		})
	}

	assert.NoError(t, DefaultPriors().Validate())
}
