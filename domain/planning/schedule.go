package planning

import "fmt"

// HybridSchedule controls how a Hybrid search weighs efficiency against
// raw discontentment. The efficiency weight is
//
//	Alpha * (1 - depth/bound) * d / (d + Knee)
//
// where d is the node's discontentment. It shrinks as the path approaches
// the bound and as d approaches zero, and is exactly zero when d is zero.
type HybridSchedule struct {
	// Alpha is the efficiency weight at the root, in [0, 1].
	Alpha float64 `json:"alpha" yaml:"alpha"`
	// Knee is the discontentment at which the weight is halved.
	Knee float64 `json:"knee" yaml:"knee"`
}

// DefaultHybridSchedule returns the schedule used when none is configured.
func DefaultHybridSchedule() HybridSchedule {
	return HybridSchedule{Alpha: 0.75, Knee: 10}
}

// Validate checks the schedule parameters.
func (s HybridSchedule) Validate() error {
	if !finite(s.Alpha) || s.Alpha < 0 || s.Alpha > 1 {
		return fmt.Errorf("%w: alpha %g not in [0,1]", ErrInvalidSchedule, s.Alpha)
	}
	if !finite(s.Knee) || s.Knee < 0 {
		return fmt.Errorf("%w: knee %g is negative", ErrInvalidSchedule, s.Knee)
	}
	return nil
}

// Weight returns the efficiency weight for a node at depth with
// discontentment d under the given bound.
func (s HybridSchedule) Weight(depth, bound int, d float64) float64 {
	if d <= 0 || bound <= 0 || depth >= bound {
		return 0
	}
	w := s.Alpha * (1 - float64(depth)/float64(bound)) * d / (d + s.Knee)
	switch {
	case w < 0:
		return 0
	case w > 1:
		return 1
	default:
		return w
	}
}
