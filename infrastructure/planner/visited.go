package planner

import "slices"

// visited maps a state key to the handles of the nodes reaching it that no
// other node dominates. Fast searches keep a single handle per state.
type visited struct {
	best map[string][]int
}

func newVisited() *visited {
	return &visited{best: make(map[string][]int)}
}

func (v *visited) lookup(key string) (int, bool) {
	hs := v.best[key]
	if len(hs) == 0 {
		return 0, false
	}
	return hs[0], true
}

// record makes h the only node kept for key.
func (v *visited) record(key string, h int) {
	v.best[key] = []int{h}
}

// admit keeps h for key unless a kept node dominates it, and drops the kept
// nodes h dominates. It reports whether h was kept.
func (v *visited) admit(key string, h int, dominates func(x, y int) bool) bool {
	hs := v.best[key]
	for _, o := range hs {
		if dominates(o, h) {
			return false
		}
	}
	hs = slices.DeleteFunc(hs, func(o int) bool { return dominates(h, o) })
	v.best[key] = append(hs, h)
	return true
}

// current reports whether h is still kept for its state.
// Dropped nodes stay in the frontier and are skipped when popped.
func (v *visited) current(key string, h int) bool {
	return slices.Contains(v.best[key], h)
}
