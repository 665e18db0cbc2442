package planner

// dominates reports whether node x makes node y, a path to the same state,
// redundant during an exhaustive search. Every continuation of y is then
// available from x at no greater depth.
//
// Traditional ranks depend on the state alone, so the shallowest path wins
// and the kept set holds one node. Efficiency and hybrid ranks improve with
// less cumulative duration as well, so x must be no deeper and no slower
// than y; paths trading depth for time are both kept.
func (s *search) dominates(x, y int) bool {
	a, b := s.arena.at(x), s.arena.at(y)
	if !s.strategy.favoursShortTime() {
		if a.depth != b.depth {
			return a.depth < b.depth
		}
		return s.arena.lexLess(x, y)
	}
	if a.depth > b.depth || a.duration > b.duration {
		return false
	}
	if a.depth < b.depth || a.duration < b.duration {
		return true
	}
	return s.arena.lexLess(x, y)
}

// outranks reports whether x is a better exhaustive-search result than y:
// lower rank, then lower discontentment, then fewer actions, then the
// lexicographically smaller label sequence.
func (s *search) outranks(x, y int) bool {
	a, b := s.arena.at(x), s.arena.at(y)
	switch {
	case a.rank != b.rank:
		return a.rank < b.rank
	case a.disc != b.disc:
		return a.disc < b.disc
	case a.depth != b.depth:
		return a.depth < b.depth
	case s.strategy.favoursShortTime() && a.duration != b.duration:
		return a.duration < b.duration
	}
	return s.arena.lexLess(x, y)
}

// improves reports whether x is a better fast-search result than y.
func (s *search) improves(x, y int) bool {
	a, b := s.arena.at(x), s.arena.at(y)
	switch {
	case a.disc != b.disc:
		return a.disc < b.disc
	case a.depth != b.depth:
		return a.depth < b.depth
	case a.duration != b.duration:
		return a.duration < b.duration
	}
	return s.arena.lexLess(x, y)
}
