package planner

import (
	"slices"

	"github.com/felixgeelhaar/goap/domain/planning"
)

// assemble reconstructs the plan ending at h by walking parent handles back
// to the root. Step values are copied from the nodes, never recomputed.
func (s *search) assemble(h int) *planning.Plan {
	var handles []int
	for ; h != s.root; h = s.arena.at(h).parent {
		handles = append(handles, h)
	}
	slices.Reverse(handles)

	steps := make([]planning.Step, len(handles))
	for i, x := range handles {
		n := s.arena.at(x)
		steps[i] = planning.Step{
			Action:         s.actions[n.action].Label(),
			State:          n.state,
			Duration:       n.duration,
			Discontentment: n.disc,
		}
	}

	root := s.arena.at(s.root)
	p := &planning.Plan{
		Algorithm:             s.req.Algorithm,
		Mode:                  s.req.Mode,
		Initial:               root.state,
		InitialDiscontentment: root.disc,
		Steps:                 steps,
		Stats:                 s.stats,
	}
	p.Complete = p.Discontentment() == 0
	return p
}
