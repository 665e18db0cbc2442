// Package planner implements the search engine that turns a planning
// request into a plan.
//
// A search owns its node arena, frontier and visited set. Nothing is shared
// between calls, so Plan may run concurrently from many goroutines as long
// as each request is left unmodified while in use.
package planner

import (
	"github.com/felixgeelhaar/goap/domain/planning"
)

const initialArenaSize = 1024

// Plan searches for a sequence of actions that drives req.Initial toward
// req.Goals.
//
// Best mode explores every non-dominated path up to req.Bound and always
// returns the best node found. Fast mode stops at the first state that
// satisfies every goal and returns a *planning.Failure wrapping
// planning.ErrNoImprovement when nothing better than the initial state was
// reached. An empty catalogue fails with planning.ErrEmptyCatalogue.
func Plan(req planning.Request) (*planning.Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Actions.Len() == 0 {
		return nil, &planning.Failure{Reason: planning.ErrEmptyCatalogue}
	}

	s := newSearch(req)
	switch {
	case req.Mode == planning.Best:
		return s.exhaustive(), nil
	case req.Algorithm == planning.EfficiencyBased:
		return s.finish(s.greedy())
	default:
		return s.finish(s.bestFirst())
	}
}

type search struct {
	req      planning.Request
	actions  []planning.Action
	strategy strategy
	arena    *arena
	visited  *visited
	stats    planning.Stats
	root     int
}

func newSearch(req planning.Request) *search {
	s := &search{
		req:      req,
		actions:  req.Actions.Sorted(),
		strategy: strategyFor(req),
		arena:    newArena(initialArenaSize),
		visited:  newVisited(),
	}
	s.root = s.arena.add(node{
		state:  req.Initial,
		key:    req.Initial.Key(),
		parent: noParent,
		action: noParent,
		disc:   req.Goals.Discontentment(req.Initial),
	})
	s.visited.record(s.arena.at(s.root).key, s.root)
	return s
}

// successor builds the node reached from parent by action i. It does not
// add the node to the arena.
func (s *search) successor(parent, i int) node {
	p := s.arena.at(parent)
	a := s.actions[i]

	state := p.state.Apply(a)
	disc := s.req.Goals.Discontentment(state)
	duration := p.duration + a.Duration()

	return node{
		state:    state,
		key:      state.Key(),
		parent:   parent,
		action:   i,
		depth:    p.depth + 1,
		duration: duration,
		disc:     disc,
		edgeEff:  edgeEfficiency(p.disc, disc, a.Duration()),
		pathEff:  (s.arena.at(s.root).disc - disc) / duration,
	}
}

func (s *search) generated(h int) {
	s.stats.Generated++
	if d := s.arena.at(h).depth; d > s.stats.MaxDepth {
		s.stats.MaxDepth = d
	}
}

func (s *search) expandable(h int) bool {
	n := s.arena.at(h)
	return n.disc > 0 && n.depth < s.req.Bound
}

func (s *search) stepsExhausted() bool {
	return s.req.MaxSteps > 0 && s.stats.Expanded >= s.req.MaxSteps
}

// exhaustive expands the search space layer by layer. Within a layer the
// strategy rank decides the order. Dominance only ever favours a path of
// equal or lower depth, so a layer is settled before it is expanded.
func (s *search) exhaustive() *planning.Plan {
	fr := newFrontier(func(a, b int) bool {
		x, y := s.arena.at(a), s.arena.at(b)
		if x.depth != y.depth {
			return x.depth < y.depth
		}
		if x.rank != y.rank {
			return x.rank < y.rank
		}
		return x.seq < y.seq
	})

	s.arena.at(s.root).rank = s.strategy.bestRank(s.arena.at(s.root))
	winner := s.root
	fr.push(s.root)

	for fr.Len() > 0 && !s.stepsExhausted() {
		h := fr.pop()
		if !s.visited.current(s.arena.at(h).key, h) || !s.expandable(h) {
			continue
		}
		s.stats.Expanded++

		for i := range s.actions {
			c := s.successor(h, i)
			c.rank = s.strategy.bestRank(&c)
			ch := s.arena.add(c)
			s.generated(ch)

			if !s.visited.admit(c.key, ch, s.dominates) {
				continue
			}
			fr.push(ch)

			if s.outranks(ch, winner) {
				winner = ch
			}
		}
	}
	return s.assemble(winner)
}

// bestFirst expands the lowest ranked node until a node satisfying every
// goal is popped.
func (s *search) bestFirst() int {
	fr := newFrontier(func(a, b int) bool {
		x, y := s.arena.at(a), s.arena.at(b)
		if x.rank != y.rank {
			return x.rank < y.rank
		}
		if x.disc != y.disc {
			return x.disc < y.disc
		}
		return x.seq < y.seq
	})

	s.arena.at(s.root).rank = s.strategy.fastRank(s.arena.at(s.root))
	best := s.root
	fr.push(s.root)

	for fr.Len() > 0 && !s.stepsExhausted() {
		h := fr.pop()
		n := s.arena.at(h)
		if !s.visited.current(n.key, h) {
			continue
		}
		if n.disc == 0 {
			return h
		}
		if n.depth >= s.req.Bound {
			continue
		}
		s.stats.Expanded++

		for i := range s.actions {
			c := s.successor(h, i)
			c.rank = s.strategy.fastRank(&c)
			ch := s.arena.add(c)
			s.generated(ch)

			if old, seen := s.visited.lookup(c.key); seen && c.duration >= s.arena.at(old).duration {
				continue
			}
			s.visited.record(c.key, ch)
			fr.push(ch)

			if s.improves(ch, best) {
				best = ch
			}
		}
	}
	return best
}

// greedy commits to the most efficient unvisited successor at every step.
// The frontier only ever holds the successors of the committed node.
func (s *search) greedy() int {
	fr := newFrontier(func(a, b int) bool {
		x, y := s.arena.at(a), s.arena.at(b)
		if x.rank != y.rank {
			return x.rank < y.rank
		}
		if x.disc != y.disc {
			return x.disc < y.disc
		}
		return x.seq < y.seq
	})

	current, best := s.root, s.root
	for s.expandable(current) && !s.stepsExhausted() {
		s.stats.Expanded++
		fr.reset()

		for i := range s.actions {
			c := s.successor(current, i)
			c.rank = s.strategy.fastRank(&c)
			ch := s.arena.add(c)
			s.generated(ch)

			if _, seen := s.visited.lookup(c.key); seen {
				continue
			}
			fr.push(ch)
		}
		if fr.Len() == 0 {
			break
		}

		current = fr.pop()
		s.visited.record(s.arena.at(current).key, current)
		if s.improves(current, best) {
			best = current
		}
	}
	return best
}

// finish turns the best node of a Fast search into a plan or a failure.
func (s *search) finish(best int) (*planning.Plan, error) {
	n, root := s.arena.at(best), s.arena.at(s.root)
	if n.disc == 0 || n.disc < root.disc {
		return s.assemble(best), nil
	}
	return nil, &planning.Failure{
		Reason:   planning.ErrNoImprovement,
		Expanded: s.stats.Expanded,
		MaxDepth: s.stats.MaxDepth,
	}
}
