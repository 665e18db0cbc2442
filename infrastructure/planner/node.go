package planner

import (
	"slices"

	"github.com/felixgeelhaar/goap/domain/planning"
)

const noParent = -1

// node is one search node. Nodes live in an arena and refer to their parent
// by handle, so a path is recovered by walking handles back to the root.
type node struct {
	state    planning.State
	key      string
	parent   int
	action   int
	depth    int
	duration float64
	disc     float64

	// edgeEff is the clamped efficiency of the action that produced the node.
	edgeEff float64
	// pathEff is the discontentment removed since the root per unit of duration.
	pathEff float64

	rank float64
	seq  int
}

// arena owns every node created during one search.
type arena struct {
	nodes []node
}

func newArena(capacity int) *arena {
	return &arena{nodes: make([]node, 0, capacity)}
}

func (a *arena) add(n node) int {
	n.seq = len(a.nodes)
	a.nodes = append(a.nodes, n)
	return n.seq
}

func (a *arena) at(h int) *node {
	return &a.nodes[h]
}

// path returns the action indexes from the root to h.
func (a *arena) path(h int) []int {
	var p []int
	for ; a.nodes[h].parent != noParent; h = a.nodes[h].parent {
		p = append(p, a.nodes[h].action)
	}
	slices.Reverse(p)
	return p
}

// lexLess reports whether the action sequence of x sorts before that of y.
// Actions are indexed in label order, so index order is label order.
func (a *arena) lexLess(x, y int) bool {
	return slices.Compare(a.path(x), a.path(y)) < 0
}
