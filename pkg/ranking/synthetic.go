package ranking

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"vcsim/pkg/simulate"
)

// SyntheticCompanies generates n plausible early-stage companies with
// randomized prior hyperparameters, for demos and smoke tests. The same seed
// reproduces the same universe.
func SyntheticCompanies(n int, seed int64) []Company {
	src := rand.NewSource(uint64(seed))

	draw := func(mean, sd, lo, hi float64) float64 {
		x := distuv.Normal{Mu: mean, Sigma: sd, Src: src}.Rand()
		if x < lo {
			x = lo
		}
		if x > hi {
			x = hi
		}
		return x
	}

	out := make([]Company, 0, n)
	for i := 0; i < n; i++ {
		p := simulate.DefaultPriors()
		p.MuAnnualMean = draw(0.60, 0.20, -0.20, 1.50)
		p.MuAnnualSD = draw(0.25, 0.07, 0.10, 0.60)
		p.PFailAnnualMean = draw(0.22, 0.07, 0.03, 0.60)
		p.PFailAnnualStrength = draw(25, 8, 8, 60)
		p.SigmaAnnualMean = draw(0.95, 0.20, 0.30, 1.80)
		p.SigmaAnnualSD = draw(0.25, 0.07, 0.10, 0.60)
		p.DilutionMean = draw(0.40, 0.12, 0.05, 0.80)
		p.DilutionSD = draw(0.15, 0.06, 0.05, 0.35)
		p.ExitSigmaMean = draw(0.80, 0.18, 0.10, 1.50)
		p.ExitSigmaSD = draw(0.20, 0.06, 0.05, 0.50)

		out = append(out, Company{
			Name:   fmt.Sprintf("Company_%02d", i+1),
			Priors: &p,
		})
	}
	return out
}
