package track

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popupsim/popupsim/internal/domain"
	"github.com/popupsim/popupsim/internal/engine"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func twoCollectionTracks() (domain.TrackOrder, map[domain.TrackID]*domain.Track) {
	tracks := map[domain.TrackID]*domain.Track{
		"c1": {ID: "c1", Role: domain.RoleCollection, Length: dec(100), FillFactor: dec(1)},
		"c2": {ID: "c2", Role: domain.RoleCollection, Length: dec(100), FillFactor: dec(1)},
	}
	return domain.TrackOrder{"c1", "c2"}, tracks
}

func TestManager_LeastOccupiedFairness(t *testing.T) {
	order, tracks := twoCollectionTracks()
	m := NewManager(engine.NewKernel(), order, tracks)

	var placements []domain.TrackID
	for i := 0; i < 4; i++ {
		id, ok := m.Select(domain.RoleCollection, dec(20), domain.StrategyLeastOccupied, nil)
		require.True(t, ok)
		m.Place(id, domain.WagonID("w"), dec(20))
		placements = append(placements, id)
	}

	assert.Equal(t, []domain.TrackID{"c1", "c2", "c1", "c2"}, placements)
	assert.Equal(t, 2, m.WagonCount("c1"))
	assert.Equal(t, 2, m.WagonCount("c2"))
}

func TestManager_RoundRobinStability(t *testing.T) {
	order, tracks := twoCollectionTracks()
	m := NewManager(engine.NewKernel(), order, tracks)

	var placements []domain.TrackID
	for i := 0; i < 6; i++ {
		id, ok := m.Select(domain.RoleCollection, dec(10), domain.StrategyRoundRobin, nil)
		require.True(t, ok)
		m.Place(id, domain.WagonID("w"), dec(10))
		placements = append(placements, id)
	}
	assert.Equal(t, 3, m.WagonCount("c1"))
	assert.Equal(t, 3, m.WagonCount("c2"))

	seventh, ok := m.Select(domain.RoleCollection, dec(10), domain.StrategyRoundRobin, nil)
	require.True(t, ok)
	assert.Equal(t, domain.TrackID("c1"), seventh) // cursor (6 mod 2) == 0 -> c1
}

func TestManager_CapacityOverflowRejection(t *testing.T) {
	tracks := map[domain.TrackID]*domain.Track{
		"c1": {ID: "c1", Role: domain.RoleCollection, Length: dec(30), FillFactor: dec(1)},
	}
	order := domain.TrackOrder{"c1"}
	m := NewManager(engine.NewKernel(), order, tracks)

	_, ok := m.Select(domain.RoleCollection, dec(20), domain.StrategyFirstAvail, nil)
	require.True(t, ok)
	m.Place("c1", "w1", dec(20))

	_, ok = m.Select(domain.RoleCollection, dec(20), domain.StrategyFirstAvail, nil)
	assert.False(t, ok)
}

func TestManager_RandomDegeneratesToSingleton(t *testing.T) {
	tracks := map[domain.TrackID]*domain.Track{
		"c1": {ID: "c1", Role: domain.RoleCollection, Length: dec(100), FillFactor: dec(1)},
	}
	order := domain.TrackOrder{"c1"}
	m := NewManager(engine.NewKernel(), order, tracks)
	rng := rand.New(rand.NewSource(1))

	id, ok := m.Select(domain.RoleCollection, dec(10), domain.StrategyRandom, rng)
	require.True(t, ok)
	assert.Equal(t, domain.TrackID("c1"), id)
}

func TestManager_FitsCapacity(t *testing.T) {
	tracks := map[domain.TrackID]*domain.Track{
		"c1": {ID: "c1", Role: domain.RoleCollection, Length: dec(30), FillFactor: dec(1)},
	}
	order := domain.TrackOrder{"c1"}
	m := NewManager(engine.NewKernel(), order, tracks)
	m.Place("c1", "w1", dec(30))

	assert.False(t, m.CanPlace("c1", dec(5))) // full right now
	assert.True(t, m.FitsCapacity(domain.RoleCollection, dec(5)))  // would fit once freed
	assert.False(t, m.FitsCapacity(domain.RoleCollection, dec(31))) // never fits, any occupancy
}

func TestManager_TimeAboveOccupancy(t *testing.T) {
	tracks := map[domain.TrackID]*domain.Track{
		"c1": {ID: "c1", Role: domain.RoleCollection, Length: dec(100), FillFactor: dec(1)},
	}
	order := domain.TrackOrder{"c1"}
	k := engine.NewKernel()
	m := NewManager(k, order, tracks)

	k.Spawn("driver", func(proc *engine.Process) {
		m.Place("c1", "w1", dec(90)) // 90% occupied, above the 80% ratio
		proc.Timeout(10)
		m.Remove("c1", "w1", dec(90)) // back to empty
		proc.Timeout(10)
	})
	k.RunToCompletion()

	assert.Equal(t, 10.0, m.TimeAboveOccupancy("c1", 0.8, k.Now()))
	assert.Equal(t, 0.0, m.TimeAboveOccupancy("c1", 0.95, k.Now()))
}

func TestManager_PlacePanicsOnOverflow(t *testing.T) {
	tracks := map[domain.TrackID]*domain.Track{
		"c1": {ID: "c1", Role: domain.RoleCollection, Length: dec(10), FillFactor: dec(1)},
	}
	m := NewManager(engine.NewKernel(), domain.TrackOrder{"c1"}, tracks)

	assert.Panics(t, func() {
		m.Place("c1", "w1", dec(20))
	})
}
