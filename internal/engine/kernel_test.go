package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernel_TimeoutOrdering(t *testing.T) {
	k := NewKernel()
	var order []string

	k.Spawn("a", func(p *Process) {
		p.Timeout(5)
		order = append(order, "a@5")
	})
	k.Spawn("b", func(p *Process) {
		p.Timeout(1)
		order = append(order, "b@1")
	})
	k.Spawn("c", func(p *Process) {
		p.Timeout(1)
		order = append(order, "c@1")
	})

	k.RunToCompletion()

	require.Equal(t, []string{"b@1", "c@1", "a@5"}, order)
	assert.Equal(t, 5.0, k.Now())
	assert.True(t, k.Idle())
}

func TestKernel_StoreFIFO(t *testing.T) {
	k := NewKernel()
	s := NewStore[int](k, 0)
	var got []int

	k.Spawn("getter1", func(p *Process) {
		got = append(got, Get(p, s))
	})
	k.Spawn("getter2", func(p *Process) {
		got = append(got, Get(p, s))
	})
	k.Spawn("putter", func(p *Process) {
		p.Timeout(1)
		Put(p, s, 100)
		Put(p, s, 200)
	})

	k.RunToCompletion()

	require.Equal(t, []int{100, 200}, got)
}

func TestKernel_BoundedStoreBlocksPutter(t *testing.T) {
	k := NewKernel()
	s := NewStore[int](k, 1)
	var events []string

	k.Spawn("putter", func(p *Process) {
		Put(p, s, 1)
		events = append(events, "put1")
		Put(p, s, 2) // blocks: capacity 1
		events = append(events, "put2")
	})
	k.Spawn("getter", func(p *Process) {
		p.Timeout(3)
		v := Get(p, s)
		events = append(events, "got")
		_ = v
	})

	k.RunToCompletion()

	require.Equal(t, []string{"put1", "got", "put2"}, events)
}

func TestKernel_RunUntilStopsInFlight(t *testing.T) {
	k := NewKernel()
	ran := false

	k.Spawn("late", func(p *Process) {
		p.Timeout(100)
		ran = true
	})

	k.Run(10)

	assert.False(t, ran)
	assert.False(t, k.Idle())
	assert.Equal(t, 1, k.PendingWakeups())
}
