package simulate

// PathPrecision selects the storage width of the retained valuation history.
// Float32 halves memory at ~7 significant digits, which is ample for
// valuations that are only ever inspected through threshold comparisons and
// percentile summaries.
type PathPrecision int

const (
	// PathFloat32 stores the valuation history as float32 (default).
	PathFloat32 PathPrecision = iota
	// PathFloat64 stores the valuation history at full precision.
	PathFloat64
)

// PathGrid is the retained nSims x (months+1) valuation history of a run.
// Row i is trajectory i, column t is the valuation at the end of month t
// (column 0 is the initial valuation).
type PathGrid struct {
	nSims  int
	months int
	f32    []float32
	f64    []float64
}

func newPathGrid(nSims, months int, prec PathPrecision) *PathGrid {
	g := &PathGrid{nSims: nSims, months: months}
	if prec == PathFloat64 {
		g.f64 = make([]float64, nSims*(months+1))
	} else {
		g.f32 = make([]float32, nSims*(months+1))
	}
	return g
}

// NSims returns the number of trajectories in the grid.
func (g *PathGrid) NSims() int { return g.nSims }

// Months returns the number of simulated months; the grid has Months()+1
// columns including the initial one.
func (g *PathGrid) Months() int { return g.months }

// Precision reports the storage width of the grid.
func (g *PathGrid) Precision() PathPrecision {
	if g.f64 != nil {
		return PathFloat64
	}
	return PathFloat32
}

// At returns the valuation of trajectory i at month t.
func (g *PathGrid) At(i, t int) float64 {
	idx := i*(g.months+1) + t
	if g.f64 != nil {
		return g.f64[idx]
	}
	return float64(g.f32[idx])
}

func (g *PathGrid) set(i, t int, v float64) {
	idx := i*(g.months+1) + t
	if g.f64 != nil {
		g.f64[idx] = v
	} else {
		g.f32[idx] = float32(v)
	}
}

// Row copies the full valuation history of trajectory i into a new slice.
func (g *PathGrid) Row(i int) []float64 {
	out := make([]float64, g.months+1)
	for t := range out {
		out[t] = g.At(i, t)
	}
	return out
}
