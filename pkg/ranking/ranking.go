// Package ranking flattens per-startup simulation results into sortable
// comparison rows and generates synthetic company universes for demos.
package ranking

import (
	"fmt"
	"sort"

	"vcsim/pkg/simulate"
)

// Company is one candidate to rank.
type Company struct {
	Name   string
	Priors *simulate.Priors
}

// Options are the shared simulation and sorting settings. Zero values take
// the defaults.
type Options struct {
	Seed0              int64   // default 1000
	NSims              int     // default 15_000
	HorizonYears       float64 // default 5
	Investment         float64 // default 100_000
	PreMoney           float64 // default 1_000_000
	MacroShockSDAnnual float64 // default 0.25; negative disables
	SortBy             string  // default "expected_roi"
	Ascending          bool
}

func (o Options) withDefaults() Options {
	if o.Seed0 == 0 {
		o.Seed0 = 1000
	}
	if o.NSims == 0 {
		o.NSims = 15_000
	}
	if o.HorizonYears == 0 {
		o.HorizonYears = 5.0
	}
	if o.Investment == 0 {
		o.Investment = 100_000
	}
	if o.PreMoney == 0 {
		o.PreMoney = 1_000_000
	}
	if o.MacroShockSDAnnual == 0 {
		o.MacroShockSDAnnual = 0.25
	}
	if o.SortBy == "" {
		o.SortBy = "expected_roi"
	}
	return o
}

// Row is one flattened ranking entry. ROISamples and AliveByMonth are kept
// for drill-down views.
type Row struct {
	Rank int
	Name string

	ExpectedROI float64
	MedianROI   float64
	PLoss       float64
	PTotalLoss  float64
	P3x         float64
	P10x        float64
	ROIP10      float64
	ROIP50      float64
	ROIP90      float64
	ROIP95      float64
	RAR         float64

	// Score is the default ranking composite: E[ROI] - 2*P(ROI<1).
	Score float64

	Priors       *simulate.Priors
	ROISamples   []float64
	AliveByMonth []float64
}

func sortKey(name string) (func(r Row) float64, error) {
	switch name {
	case "expected_roi":
		return func(r Row) float64 { return r.ExpectedROI }, nil
	case "median_roi":
		return func(r Row) float64 { return r.MedianROI }, nil
	case "score":
		return func(r Row) float64 { return r.Score }, nil
	case "rar":
		return func(r Row) float64 { return r.RAR }, nil
	case "p_10x":
		return func(r Row) float64 { return r.P10x }, nil
	case "p_loss":
		return func(r Row) float64 { return r.PLoss }, nil
	}
	return nil, fmt.Errorf("ranking: unknown sort key %q", name)
}

// BuildRanking simulates every company (company i with Seed0+i), flattens the
// results into rows, sorts by the configured key and assigns ranks.
func BuildRanking(companies []Company, opts Options) ([]Row, error) {
	opts = opts.withDefaults()
	key, err := sortKey(opts.SortBy)
	if err != nil {
		return nil, err
	}
	macroSD := opts.MacroShockSDAnnual
	if macroSD < 0 {
		macroSD = 0
	}

	rows := make([]Row, 0, len(companies))
	for i, c := range companies {
		res, err := simulate.Run(simulate.Config{
			Seed:               opts.Seed0 + int64(i),
			NSims:              opts.NSims,
			HorizonYears:       opts.HorizonYears,
			Investment:         opts.Investment,
			PreMoney:           opts.PreMoney,
			Priors:             c.Priors,
			MacroShockSDAnnual: macroSD,
			DisablePathStorage: true,
		})
		if err != nil {
			return nil, fmt.Errorf("ranking: simulating %q: %w", c.Name, err)
		}
		m := res.Metrics
		rows = append(rows, Row{
			Name:         c.Name,
			ExpectedROI:  m.ExpectedROI,
			MedianROI:    m.MedianROI,
			PLoss:        m.ProbROILt1,
			PTotalLoss:   m.ProbTotalLoss,
			P3x:          m.Prob3x,
			P10x:         m.Prob10x,
			ROIP10:       m.ROIPercentiles[10],
			ROIP50:       m.ROIPercentiles[50],
			ROIP90:       m.ROIPercentiles[90],
			ROIP95:       m.ROIPercentiles[95],
			RAR:          m.RAR,
			Score:        m.ExpectedROI - 2.0*m.ProbROILt1,
			Priors:       c.Priors,
			ROISamples:   res.Samples.ROI,
			AliveByMonth: res.Paths.AliveFracByMonth,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if opts.Ascending {
			return key(rows[i]) < key(rows[j])
		}
		return key(rows[i]) > key(rows[j])
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}
