package planner

import "container/heap"

// frontier is a priority queue of node handles awaiting expansion.
type frontier struct {
	handles []int
	less    func(a, b int) bool
}

func newFrontier(less func(a, b int) bool) *frontier {
	f := &frontier{less: less}
	heap.Init(f)
	return f
}

func (f *frontier) Len() int           { return len(f.handles) }
func (f *frontier) Less(i, j int) bool { return f.less(f.handles[i], f.handles[j]) }
func (f *frontier) Swap(i, j int)      { f.handles[i], f.handles[j] = f.handles[j], f.handles[i] }

func (f *frontier) Push(x any) {
	f.handles = append(f.handles, x.(int))
}

func (f *frontier) Pop() any {
	old := f.handles
	n := len(old)
	h := old[n-1]
	f.handles = old[:n-1]
	return h
}

func (f *frontier) push(h int) {
	heap.Push(f, h)
}

func (f *frontier) pop() int {
	return heap.Pop(f).(int)
}

func (f *frontier) reset() {
	f.handles = f.handles[:0]
}
