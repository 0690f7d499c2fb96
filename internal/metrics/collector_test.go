package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popupsim/popupsim/internal/domain"
	"github.com/popupsim/popupsim/internal/engine"
)

func TestCollector_ByCategory(t *testing.T) {
	k := engine.NewKernel()
	c := NewCollector(k)

	k.Spawn("recorder", func(proc *engine.Process) {
		c.Record(domain.CategoryWagon, "selected", "w1", nil)
		c.Record(domain.CategoryLocomotive, "moving", "loco-1", nil)
		proc.Timeout(5)
		c.Record(domain.CategoryWagon, "retrofitted", "w1", nil)
	})
	k.RunToCompletion()

	wagonEvents := c.ByCategory(domain.CategoryWagon)
	require.Len(t, wagonEvents, 2)
	assert.Equal(t, "selected", wagonEvents[0].Kind)
	assert.Equal(t, "retrofitted", wagonEvents[1].Kind)
	assert.Equal(t, 0.0, wagonEvents[0].Time)
	assert.Equal(t, 5.0, wagonEvents[1].Time)

	locoEvents := c.ByCategory(domain.CategoryLocomotive)
	require.Len(t, locoEvents, 1)
	assert.Equal(t, "moving", locoEvents[0].Kind)
}

func TestCollector_BySubject(t *testing.T) {
	k := engine.NewKernel()
	c := NewCollector(k)

	k.Spawn("recorder", func(proc *engine.Process) {
		c.Record(domain.CategoryWagon, "selected", "w1", nil)
		c.Record(domain.CategoryWagon, "selected", "w2", nil)
		proc.Timeout(2)
		c.Record(domain.CategoryWagon, "on_retrofit", "w1", nil)
	})
	k.RunToCompletion()

	w1Events := c.BySubject("w1")
	require.Len(t, w1Events, 2)
	assert.True(t, Monotone(w1Events))

	w2Events := c.BySubject("w2")
	require.Len(t, w2Events, 1)
}

func TestCollector_RecordMergesPayload(t *testing.T) {
	k := engine.NewKernel()
	c := NewCollector(k)

	k.Spawn("recorder", func(proc *engine.Process) {
		c.Record(domain.CategoryTrack, "placed", "c1", map[string]any{"wagon_id": "w1"})
	})
	k.RunToCompletion()

	events := c.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "w1", events[0].Payload["wagon_id"])
}

func TestMonotone(t *testing.T) {
	increasing := []domain.Event{{Time: 0}, {Time: 1}, {Time: 1}, {Time: 5}}
	assert.True(t, Monotone(increasing))

	decreasing := []domain.Event{{Time: 5}, {Time: 1}}
	assert.False(t, Monotone(decreasing))
}

func TestDisjointIntervals(t *testing.T) {
	assert.True(t, DisjointIntervals([]float64{0, 5, 10}, []float64{4, 9, 15}))
	assert.False(t, DisjointIntervals([]float64{0, 3}, []float64{5, 9}))
}
