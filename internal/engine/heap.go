// Package engine implements the cooperative discrete-event kernel: a
// monotonic virtual clock, a deterministic wake-up queue, and goroutine-based
// processes that suspend at timeout/get/put boundaries.
package engine

import "container/heap"

// wakeup is a scheduled resumption of a process at a future instant.
type wakeup struct {
	time    float64
	seq     uint64 // insertion-order tiebreaker
	process *Process
}

// wakeupHeap is a priority queue ordered (time, seq) so that events scheduled
// for identical times run in FIFO order of insertion.
type wakeupHeap struct {
	items []wakeup
}

func newWakeupHeap() *wakeupHeap {
	h := &wakeupHeap{items: make([]wakeup, 0)}
	heap.Init(h)
	return h
}

func (h *wakeupHeap) Len() int { return len(h.items) }

func (h *wakeupHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.time != b.time {
		return a.time < b.time
	}
	return a.seq < b.seq
}

func (h *wakeupHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *wakeupHeap) Push(x interface{}) {
	h.items = append(h.items, x.(wakeup))
}

func (h *wakeupHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

func (h *wakeupHeap) schedule(w wakeup) {
	heap.Push(h, w)
}

func (h *wakeupHeap) popNext() (wakeup, bool) {
	if h.Len() == 0 {
		return wakeup{}, false
	}
	return heap.Pop(h).(wakeup), true
}

func (h *wakeupHeap) peek() (wakeup, bool) {
	if h.Len() == 0 {
		return wakeup{}, false
	}
	return h.items[0], true
}
