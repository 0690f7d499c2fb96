package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popupsim/popupsim/internal/engine"
)

func TestPool_AcquireReleaseFIFO(t *testing.T) {
	k := engine.NewKernel()
	p := NewPool(k, []string{"loco-1"})
	var order []string

	k.Spawn("first", func(proc *engine.Process) {
		item := Acquire(p, proc, "haul")
		order = append(order, "first-acquired-"+item)
		proc.Timeout(5)
		Release(p, proc, item)
		order = append(order, "first-released")
	})
	k.Spawn("second", func(proc *engine.Process) {
		proc.Timeout(1) // ensures it queues behind "first"
		item := Acquire(p, proc, "haul")
		order = append(order, "second-acquired-"+item)
	})

	k.RunToCompletion()

	require.Equal(t, []string{
		"first-acquired-loco-1",
		"first-released",
		"second-acquired-loco-1",
	}, order)
}

func TestPool_History(t *testing.T) {
	k := engine.NewKernel()
	p := NewPool(k, []string{"loco-1"})

	k.Spawn("user", func(proc *engine.Process) {
		item := Acquire(p, proc, "haul")
		proc.Timeout(3)
		Release(p, proc, item)
	})
	k.RunToCompletion()

	history := p.History("loco-1")
	require.Len(t, history, 1)
	assert.Equal(t, "haul", history[0].Purpose)
	assert.Equal(t, 0.0, history[0].Acquired)
	assert.Equal(t, 3.0, history[0].Released)
	assert.False(t, history[0].Open)
}

func TestPool_CapacityAndFreeCount(t *testing.T) {
	k := engine.NewKernel()
	p := NewPool(k, []string{"a", "b", "c"})

	assert.Equal(t, 3, p.Capacity())
	assert.Equal(t, 3, p.FreeCount())
	assert.Equal(t, []string{"a", "b", "c"}, p.Items())

	k.Spawn("user", func(proc *engine.Process) {
		Acquire(p, proc, "test")
	})
	k.RunToCompletion()

	assert.Equal(t, 2, p.FreeCount())
}

func TestPool_BusyDuration(t *testing.T) {
	k := engine.NewKernel()
	p := NewPool(k, []string{"loco-1"})

	k.Spawn("user", func(proc *engine.Process) {
		item := Acquire(p, proc, "haul")
		proc.Timeout(4)
		Release(p, proc, item)
		proc.Timeout(10) // idle gap, must not count as busy
		Acquire(p, proc, "haul")
	})
	k.RunToCompletion()

	// one closed 4-unit interval plus the still-open allocation held through
	// `until`
	assert.Equal(t, 4.0+6.0, p.BusyDuration("loco-1", 20))
}

func TestPool_TimeWithQueueAbove(t *testing.T) {
	k := engine.NewKernel()
	p := NewPool(k, []string{"loco-1"})

	k.Spawn("holder", func(proc *engine.Process) {
		Acquire(p, proc, "haul")
		proc.Timeout(10)
		Release(p, proc, "loco-1")
	})
	k.Spawn("waiter-a", func(proc *engine.Process) {
		proc.Timeout(1)
		Acquire(p, proc, "haul")
	})
	k.Spawn("waiter-b", func(proc *engine.Process) {
		proc.Timeout(2)
		Acquire(p, proc, "haul")
	})
	k.RunToCompletion()

	// between t=2 (both waiters queued) and t=10 (holder releases), pending
	// getters == 2, strictly above 1
	assert.Equal(t, 8.0, p.TimeWithQueueAbove(1, 10))
	assert.Equal(t, 0.0, p.TimeWithQueueAbove(2, 10))
}
