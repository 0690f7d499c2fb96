// Package resource implements the bounded FIFO resource pool shared by the
// locomotive fleet and workshop retrofit stations: a generic acquire/release
// primitive built on a FIFO wait queue plus per-item allocation tracking.
package resource

import "github.com/popupsim/popupsim/internal/engine"

// Allocation records one acquire/release interval for a single item, so
// utilisation reports can reconstruct busy time
type Allocation struct {
	Item      string
	Purpose   string
	Acquired  float64
	Released  float64 // 0 and Open==true while still held
	Open      bool
}

// queueSample records the pool's pending-acquire count at one instant, so
// utilisation reports can reconstruct a sustained-queue timeline the same
// way Allocation reconstructs busy time.
type queueSample struct {
	time    float64
	pending int
}

// Pool is a bounded store of interchangeable, named resource items (e.g.
// locomotive ids, workshop station slots). Acquire blocks (FIFO) until an
// item is free; Release returns it. Held ∪ Free = all items, |Held| <=
// capacity is maintained structurally since items are only ever in exactly
// one of the store or "checked out" state.
type Pool struct {
	kernel       *engine.Kernel
	store        *engine.Store[string]
	history      map[string][]*Allocation
	order        []string // stable item order, for deterministic reporting
	queueHistory []queueSample
}

// NewPool creates a pool pre-loaded with the given item ids, in order.
func NewPool(k *engine.Kernel, items []string) *Pool {
	p := &Pool{
		kernel:  k,
		store:   engine.NewStore[string](k, 0),
		history: make(map[string][]*Allocation),
		order:   append([]string(nil), items...),
	}
	p.store.Seed(items...)
	for _, id := range items {
		p.history[id] = nil
	}
	return p
}

// Acquire blocks the calling process until an item is available, records
// the allocation with the given purpose tag, and returns the item id.
func Acquire(p *Pool, proc *engine.Process, purpose string) string {
	if p.store.Len() == 0 {
		// this call is about to append itself as a getWaiter and suspend;
		// sample the incremented depth now, since nothing else observes
		// this process's wait until it is satisfied.
		p.recordQueueSample(p.store.PendingGetters() + 1)
	}
	item := engine.Get(proc, p.store)
	alloc := &Allocation{Item: item, Purpose: purpose, Acquired: p.kernel.Now(), Open: true}
	p.history[item] = append(p.history[item], alloc)
	p.recordQueueSample(p.store.PendingGetters())
	return item
}

// Release returns item to the pool, closing its open allocation record.
func Release(p *Pool, proc *engine.Process, item string) {
	if allocs := p.history[item]; len(allocs) > 0 {
		last := allocs[len(allocs)-1]
		if last.Open {
			last.Released = p.kernel.Now()
			last.Open = false
		}
	}
	engine.Put(proc, p.store, item)
	p.recordQueueSample(p.store.PendingGetters())
}

func (p *Pool) recordQueueSample(pending int) {
	p.queueHistory = append(p.queueHistory, queueSample{time: p.kernel.Now(), pending: pending})
}

// History returns the allocation history for item in acquire order.
func (p *Pool) History(item string) []*Allocation {
	return p.history[item]
}

// Items returns all item ids in stable construction order.
func (p *Pool) Items() []string {
	return p.order
}

// Capacity returns the total number of items in the pool.
func (p *Pool) Capacity() int {
	return len(p.order)
}

// FreeCount returns the number of items currently checked in (not held).
func (p *Pool) FreeCount() int {
	return p.store.Len()
}

// BusyDuration sums every acquire/release interval recorded for item,
// treating a still-open allocation as busy until `until` (normally the
// run's final clock time). This is the Σ busy intervals term of the
// per-item utilisation KPI.
func (p *Pool) BusyDuration(item string, until float64) float64 {
	var total float64
	for _, a := range p.history[item] {
		end := a.Released
		if a.Open {
			end = until
		}
		total += end - a.Acquired
	}
	return total
}

// TimeWithQueueAbove sums how long the pool's pending-acquire count stayed
// strictly above n, reconstructing the piecewise-constant queue-depth
// timeline from every Acquire/Release sample.
func (p *Pool) TimeWithQueueAbove(n int, until float64) float64 {
	var total float64
	for i, s := range p.queueHistory {
		end := until
		if i+1 < len(p.queueHistory) {
			end = p.queueHistory[i+1].time
		}
		if s.pending > n {
			total += end - s.time
		}
	}
	return total
}
