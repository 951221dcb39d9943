package simulate

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Bounds is a closed clipping interval applied after sampling.
type Bounds struct {
	Lo float64
	Hi float64
}

func (b Bounds) clip(x float64) float64 {
	if x < b.Lo {
		return b.Lo
	}
	if x > b.Hi {
		return b.Hi
	}
	return x
}

func (b Bounds) valid() bool { return b.Lo <= b.Hi }

// Priors holds the hyperparameters of the per-simulation latent variables.
// Every Normal-distributed variable is clipped to its bounds after sampling;
// the annual failure probability uses a Beta distribution parameterised by a
// target mean and a strength (pseudo-count), which keeps its support inside
// (0,1) and lets strength control how tightly draws cluster around the mean.
type Priors struct {
	DilutionMean   float64
	DilutionSD     float64
	DilutionBounds Bounds

	MuAnnualMean float64
	MuAnnualSD   float64
	MuBounds     Bounds

	SigmaAnnualMean float64
	SigmaAnnualSD   float64
	SigmaBounds     Bounds

	PFailAnnualMean     float64
	PFailAnnualStrength float64
	PFailBounds         Bounds

	ExitSigmaMean   float64
	ExitSigmaSD     float64
	ExitSigmaBounds Bounds

	ExitMuMean   float64
	ExitMuSD     float64
	ExitMuBounds Bounds
}

// DefaultPriors returns the reference hyperparameters of the model: an
// early-stage startup with ~55% expected annual growth, high volatility,
// ~22% annual failure probability and ~40% total dilution to exit.
func DefaultPriors() Priors {
	return Priors{
		DilutionMean:   0.40,
		DilutionSD:     0.15,
		DilutionBounds: Bounds{0.05, 0.85},

		MuAnnualMean: 0.55,
		MuAnnualSD:   0.25,
		MuBounds:     Bounds{-0.30, 2.00},

		SigmaAnnualMean: 0.95,
		SigmaAnnualSD:   0.25,
		SigmaBounds:     Bounds{0.20, 2.00},

		PFailAnnualMean:     0.22,
		PFailAnnualStrength: 25.0,
		PFailBounds:         Bounds{0.01, 0.80},

		ExitSigmaMean:   0.70,
		ExitSigmaSD:     0.20,
		ExitSigmaBounds: Bounds{0.05, 1.50},

		ExitMuMean:   0.0,
		ExitMuSD:     0.15,
		ExitMuBounds: Bounds{-1.0, 1.0},
	}
}

// Validate rejects hyperparameters that would produce an undefined
// distribution or a degenerate clipping interval.
func (p Priors) Validate() error {
	if p.PFailAnnualStrength <= 0 {
		return fmt.Errorf("priors: p_fail strength must be > 0, got %g", p.PFailAnnualStrength)
	}
	if p.PFailAnnualMean <= 0 || p.PFailAnnualMean >= 1 {
		return fmt.Errorf("priors: p_fail mean must be in (0,1), got %g", p.PFailAnnualMean)
	}
	for _, sd := range []struct {
		name string
		v    float64
	}{
		{"dilution", p.DilutionSD},
		{"mu_annual", p.MuAnnualSD},
		{"sigma_annual", p.SigmaAnnualSD},
		{"exit_sigma", p.ExitSigmaSD},
		{"exit_mu", p.ExitMuSD},
	} {
		if sd.v < 0 {
			return fmt.Errorf("priors: %s sd must be >= 0, got %g", sd.name, sd.v)
		}
	}
	for _, b := range []struct {
		name string
		v    Bounds
	}{
		{"dilution", p.DilutionBounds},
		{"mu_annual", p.MuBounds},
		{"sigma_annual", p.SigmaBounds},
		{"p_fail_annual", p.PFailBounds},
		{"exit_sigma", p.ExitSigmaBounds},
		{"exit_mu", p.ExitMuBounds},
	} {
		if !b.v.valid() {
			return fmt.Errorf("priors: %s bounds inverted: [%g, %g]", b.name, b.v.Lo, b.v.Hi)
		}
	}
	return nil
}

// ParameterSample is one set of latent-parameter draws, one value per
// simulated trajectory. It is produced once and read-only afterwards.
type ParameterSample struct {
	DilutionTotal []float64
	MuAnnual      []float64
	SigmaAnnual   []float64
	PFailAnnual   []float64
	ExitSigma     []float64
	ExitMu        []float64
}

// SampleParameters draws n independent values for every latent variable from
// src. The draw order is fixed (dilution, mu, sigma, p_fail, exit_sigma,
// exit_mu) so identical seeds reproduce identical samples.
func SampleParameters(src rand.Source, n int, p Priors) (ParameterSample, error) {
	if err := p.Validate(); err != nil {
		return ParameterSample{}, err
	}

	clippedNormal := func(mean, sd float64, b Bounds) []float64 {
		d := distuv.Normal{Mu: mean, Sigma: sd, Src: src}
		out := make([]float64, n)
		for i := range out {
			out[i] = b.clip(d.Rand())
		}
		return out
	}

	s := ParameterSample{}
	s.DilutionTotal = clippedNormal(p.DilutionMean, p.DilutionSD, p.DilutionBounds)
	s.MuAnnual = clippedNormal(p.MuAnnualMean, p.MuAnnualSD, p.MuBounds)
	s.SigmaAnnual = clippedNormal(p.SigmaAnnualMean, p.SigmaAnnualSD, p.SigmaBounds)

	beta := distuv.Beta{
		Alpha: p.PFailAnnualMean * p.PFailAnnualStrength,
		Beta:  (1.0 - p.PFailAnnualMean) * p.PFailAnnualStrength,
		Src:   src,
	}
	s.PFailAnnual = make([]float64, n)
	for i := range s.PFailAnnual {
		s.PFailAnnual[i] = p.PFailBounds.clip(beta.Rand())
	}

	s.ExitSigma = clippedNormal(p.ExitSigmaMean, p.ExitSigmaSD, p.ExitSigmaBounds)
	s.ExitMu = clippedNormal(p.ExitMuMean, p.ExitMuSD, p.ExitMuBounds)
	return s, nil
}
