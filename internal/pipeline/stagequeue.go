// Package pipeline wires the simulation kernel, resource managers, router,
// and domain state into five concurrent coordinators: arrivals & selection,
// pickup-to-retrofit, station-assignment & retrofit, pickup-retrofitted, and
// terminal bookkeeping.
package pipeline

import (
	"github.com/popupsim/popupsim/internal/domain"
	"github.com/popupsim/popupsim/internal/engine"
)

// StageQueue is a per-track-keyed FIFO handoff between two coordinators
//. A signal store carries track ids in arrival order; the wagon
// payload for each signal sits in a plain buffer, safe to mutate without
// locking because only one process ever runs at a time (engine.Kernel's
// single-running invariant).
type StageQueue struct {
	signal *engine.Store[domain.TrackID]
	buffer map[domain.TrackID][]*domain.Wagon
}

// NewStageQueue creates an empty stage queue owned by k.
func NewStageQueue(k *engine.Kernel) *StageQueue {
	return &StageQueue{
		signal: engine.NewStore[domain.TrackID](k, 0),
		buffer: make(map[domain.TrackID][]*domain.Wagon),
	}
}

// Push appends w to track's buffer and wakes a waiting consumer.
func (q *StageQueue) Push(proc *engine.Process, track domain.TrackID, w *domain.Wagon) {
	q.buffer[track] = append(q.buffer[track], w)
	engine.Put(proc, q.signal, track)
}

// WaitAndDrain blocks until some track has a pending signal, then returns
// that track id and everything currently buffered for it (the buffer is
// cleared). Two signals for the same track before it is drained simply
// result in two (possibly uneven) batches — no wagon is ever lost.
func (q *StageQueue) WaitAndDrain(proc *engine.Process) (domain.TrackID, []*domain.Wagon) {
	track := engine.Get(proc, q.signal)
	batch := q.buffer[track]
	q.buffer[track] = nil
	return track, batch
}
