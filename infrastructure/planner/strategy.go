package planner

import "github.com/felixgeelhaar/goap/domain/planning"

// strategy is the cost model of one algorithm. Lower values are better for
// every method.
type strategy interface {
	// fastRank orders the frontier of a Fast search.
	fastRank(n *node) float64
	// bestRank orders nodes within a depth layer of a Best search and is
	// the objective a Best search minimises.
	bestRank(n *node) float64
	// favoursShortTime reports whether the rank of a path to a given state
	// improves with less cumulative duration.
	favoursShortTime() bool
}

func strategyFor(req planning.Request) strategy {
	switch req.Algorithm {
	case planning.EfficiencyBased:
		return efficiency{}
	case planning.Hybrid:
		return hybrid{schedule: req.HybridSchedule(), bound: req.Bound}
	default:
		return traditional{}
	}
}

// traditional minimises discontentment. Fast searches add the cumulative
// duration so far, giving an A* ordering with discontentment as heuristic.
type traditional struct{}

func (traditional) fastRank(n *node) float64 { return n.duration + n.disc }
func (traditional) bestRank(n *node) float64 { return n.disc }
func (traditional) favoursShortTime() bool   { return false }

// efficiency maximises discontentment reduction per unit of duration.
// Fast searches commit greedily to the best single edge.
type efficiency struct{}

func (efficiency) fastRank(n *node) float64 { return -n.edgeEff }
func (efficiency) bestRank(n *node) float64 { return -n.pathEff }
func (efficiency) favoursShortTime() bool   { return true }

// hybrid blends the efficiency and traditional ranks with a weight that
// fades as the node nears the goal or the bound.
type hybrid struct {
	schedule planning.HybridSchedule
	bound    int
}

func (h hybrid) weight(n *node) float64 {
	return h.schedule.Weight(n.depth, h.bound, n.disc)
}

func (h hybrid) fastRank(n *node) float64 {
	w := h.weight(n)
	return w*efficiency{}.fastRank(n) + (1-w)*traditional{}.fastRank(n)
}

func (h hybrid) bestRank(n *node) float64 {
	w := h.weight(n)
	return w*efficiency{}.bestRank(n) + (1-w)*traditional{}.bestRank(n)
}

func (hybrid) favoursShortTime() bool { return true }

// edgeEfficiency is the discontentment removed per unit of duration by one
// action. Actions that do not reduce discontentment score zero.
func edgeEfficiency(parentDisc, childDisc, duration float64) float64 {
	eff := (parentDisc - childDisc) / duration
	if eff < 0 {
		return 0
	}
	return eff
}
