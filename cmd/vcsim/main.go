// Package main runs the venture-investment Monte Carlo demo: it ranks a
// universe of synthetic startups and builds a weight-optimized portfolio,
// printing an investor-ready report.
package main

import (
	"fmt"

	"github.com/leekchan/accounting"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"vcsim/pkg/investor"
	"vcsim/pkg/portfolio"
	"vcsim/pkg/ranking"
	"vcsim/pkg/simulate"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	v := viper.New()
	v.SetConfigName("vcsim")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetDefault("seed", 42)
	v.SetDefault("companies", 12)
	v.SetDefault("n_sims", 20_000)
	v.SetDefault("horizon_years", 5.0)
	v.SetDefault("investment", 100_000.0)
	v.SetDefault("budget", 500_000.0)
	v.SetDefault("k", 3)
	v.SetDefault("min_ticket", 100_000.0)
	v.SetDefault("objective", "auto")
	v.SetDefault("method", "dirichlet")
	v.SetDefault("top", 10)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.WithError(err).Fatal("reading config")
		}
		log.Debug("no vcsim.yaml found, using defaults")
	} else {
		log.WithField("file", v.ConfigFileUsed()).Info("loaded config")
	}

	if err := run(v, log); err != nil {
		log.WithError(err).Fatal("vcsim failed")
	}
}

func run(v *viper.Viper, log *logrus.Logger) error {
	ac := accounting.Accounting{Symbol: "$", Precision: 0}
	seed := v.GetInt64("seed")

	companies := ranking.SyntheticCompanies(v.GetInt("companies"), seed)
	log.WithField("companies", len(companies)).Info("simulating universe")

	rows, err := ranking.BuildRanking(companies, ranking.Options{
		Seed0:        seed,
		NSims:        v.GetInt("n_sims"),
		HorizonYears: v.GetFloat64("horizon_years"),
		Investment:   v.GetFloat64("investment"),
	})
	if err != nil {
		return err
	}

	top := v.GetInt("top")
	if top > len(rows) {
		top = len(rows)
	}
	fmt.Printf("=== Top %d companies by expected ROI ===\n", top)
	for _, r := range rows[:top] {
		fmt.Printf("%2d. %-14s | E[ROI]=%5.2fx | Med=%5.2fx | P(loss)=%.2f | P(10x)=%.2f | RAR=%+.3f\n",
			r.Rank, r.Name, r.ExpectedROI, r.MedianROI, r.PLoss, r.P10x, r.RAR)
	}

	specs := make([]portfolio.StartupSpec, len(companies))
	for i, c := range companies {
		specs[i] = portfolio.StartupSpec{Name: c.Name, Priors: c.Priors}
	}
	res, err := portfolio.Build(specs, portfolio.BuildConfig{
		Seed:         seed,
		NSims:        v.GetInt("n_sims"),
		HorizonYears: v.GetFloat64("horizon_years"),
		Investment:   v.GetFloat64("investment"),
		Budget:       v.GetFloat64("budget"),
		K:            v.GetInt("k"),
		MinTicket:    v.GetFloat64("min_ticket"),
		Objective:    v.GetString("objective"),
		Method:       v.GetString("method"),
		Logger:       log,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Recommended portfolio (objective=%s, method=%s, score=%.4f) ===\n",
		res.Objective, res.Debug.Method, res.Score)
	fmt.Printf("Budget: %s across %d startups\n", ac.FormatMoney(v.GetFloat64("budget")), res.Debug.KEff)
	for _, s := range res.Selected {
		fmt.Printf("  %-14s weight=%5.1f%%  ticket=%s  E[ROI]=%5.2fx  PD12m=%.2f\n",
			s.Name, 100*s.Weight, ac.FormatMoney(s.Ticket), s.Metrics.ExpectedROI, s.Metrics.PD12m)
	}
	pm := res.Metrics
	fmt.Printf("Portfolio: E[ROI]=%.2fx  Med=%.2fx  P(loss)=%.2f  P(3x)=%.2f  P(10x)=%.2f\n",
		pm.ExpectedROI, pm.MedianROI, pm.ProbROILt1, pm.Prob3x, pm.Prob10x)
	if res.Debug.ObjectiveSearch != nil {
		fmt.Println("Objective search:")
		for _, t := range res.Debug.ObjectiveSearch {
			fmt.Printf("  %-13s score=%+.4f  E[ROI]=%.2fx  P(loss)=%.2f\n",
				t.Objective, t.PortfolioScore, t.ExpectedROI, t.ProbLoss)
		}
	}

	// Deep-dive on the top pick, with the valuation path retained for
	// time-to-profitability.
	best := res.Selected[0]
	single, err := simulate.Run(simulate.Config{
		Seed:         seed,
		NSims:        v.GetInt("n_sims"),
		HorizonYears: v.GetFloat64("horizon_years"),
		Investment:   v.GetFloat64("investment"),
		Priors:       best.Priors,
	})
	if err != nil {
		return err
	}
	im := investor.Compute(single, investor.Options{})
	fmt.Printf("\n=== Deep dive: %s ===\n", best.Name)
	fmt.Printf("Expected payout: %s   Expected profit: %s\n",
		ac.FormatMoney(im.ExpectedPayout), ac.FormatMoney(im.ExpectedProfit))
	fmt.Printf("VaR%d profit: %s   CVaR%d profit: %s\n",
		int(im.VaRQuantile), ac.FormatMoney(im.VaRProfit), int(im.VaRQuantile), ac.FormatMoney(im.CVaRProfit))
	fmt.Printf("P(survive to end)=%.2f   P(profitable by end)=%.2f\n",
		im.PSurviveToEnd, im.PProfitableByEnd)
	for _, s := range single.Sensitivity {
		fmt.Printf("  sensitivity %-15s %+.3f\n", s.Param, s.Corr)
	}

	return nil
}
