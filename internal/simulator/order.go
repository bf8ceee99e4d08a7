package simulator

import "container/heap"

// idHeap is a min-heap of neuron IDs.
type idHeap []int

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *idHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}

// evaluationOrder returns a topological order of the zero-delay subgraph,
// always taking the smallest ready ID next. ok is false when the subgraph
// has a cycle.
func evaluationOrder(n int, zero [][]int) (order []int, ok bool) {
	indegree := make([]int, n)
	for _, targets := range zero {
		for _, t := range targets {
			indegree[t]++
		}
	}

	ready := &idHeap{}
	for id := 0; id < n; id++ {
		if indegree[id] == 0 {
			*ready = append(*ready, id)
		}
	}
	heap.Init(ready)

	order = make([]int, 0, n)
	for ready.Len() > 0 {
		id := heap.Pop(ready).(int)
		order = append(order, id)
		for _, t := range zero[id] {
			indegree[t]--
			if indegree[t] == 0 {
				heap.Push(ready, t)
			}
		}
	}
	return order, len(order) == n
}
