package workshop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popupsim/popupsim/internal/domain"
	"github.com/popupsim/popupsim/internal/engine"
)

func twoWorkshops() (*engine.Kernel, domain.TrackOrder, map[domain.WorkshopID]*domain.Workshop) {
	k := engine.NewKernel()
	workshops := map[domain.WorkshopID]*domain.Workshop{
		"w1": {ID: "w1", TrackID: "shop-track", RetrofitStations: 2},
		"w2": {ID: "w2", TrackID: "shop-track", RetrofitStations: 2},
	}
	return k, []domain.WorkshopID{"w1", "w2"}, workshops
}

func TestManager_SelectLeastBusy(t *testing.T) {
	k, order, workshops := twoWorkshops()
	m := NewManager(k, order, workshops)

	k.Spawn("occupy-w1", func(proc *engine.Process) {
		m.Acquire(proc, "w1", "retrofit")
	})
	k.RunToCompletion()

	best, ok := m.SelectLeastBusy([]domain.WorkshopID{"w1", "w2"})
	require.True(t, ok)
	assert.Equal(t, domain.WorkshopID("w2"), best)
}

func TestManager_SelectLeastBusy_TieBreaksByOrder(t *testing.T) {
	k, order, workshops := twoWorkshops()
	m := NewManager(k, order, workshops)

	best, ok := m.SelectLeastBusy([]domain.WorkshopID{"w1", "w2"})
	require.True(t, ok)
	assert.Equal(t, domain.WorkshopID("w1"), best)
}

func TestManager_AssignRoundRobin_Distribution(t *testing.T) {
	k, order, workshops := twoWorkshops()
	m := NewManager(k, order, workshops)

	got := m.AssignRoundRobin(4, []domain.WorkshopID{"w1", "w2"})
	assert.Equal(t, []domain.WorkshopID{"w1", "w2", "w1", "w2"}, got)
}

func TestManager_AssignRoundRobin_SkipsBusyWorkshops(t *testing.T) {
	k, order, workshops := twoWorkshops()
	m := NewManager(k, order, workshops)

	// Exhaust both of w1's stations.
	k.Spawn("occupy-w1-a", func(proc *engine.Process) { m.Acquire(proc, "w1", "retrofit") })
	k.Spawn("occupy-w1-b", func(proc *engine.Process) { m.Acquire(proc, "w1", "retrofit") })
	k.RunToCompletion()

	got := m.AssignRoundRobin(2, []domain.WorkshopID{"w1", "w2"})
	assert.Equal(t, []domain.WorkshopID{"w2", "w2"}, got)
}

func TestManager_ActiveRetrofitsAndCapacity(t *testing.T) {
	k, order, workshops := twoWorkshops()
	m := NewManager(k, order, workshops)

	assert.Equal(t, 2, m.Capacity("w1"))
	assert.Equal(t, 0, m.ActiveRetrofits("w1"))

	k.Spawn("occupy", func(proc *engine.Process) { m.Acquire(proc, "w1", "retrofit") })
	k.RunToCompletion()

	assert.Equal(t, 1, m.ActiveRetrofits("w1"))
	assert.True(t, m.HasFreeStation("w1"))
}
