// Package track implements the track capacity manager: occupancy
// accounting per track and strategy-driven selection among tracks of a role.
package track

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/popupsim/popupsim/internal/domain"
	"github.com/popupsim/popupsim/internal/engine"
)

// occupancySample records a track's occupied_length at one instant, so
// reports can reconstruct how long a track spent above a given occupancy
// ratio the same way resource.Pool reconstructs busy time from Allocations.
type occupancySample struct {
	time     float64
	occupied decimal.Decimal
}

// Manager owns occupied_length and the wagon set for every track, plus the
// independent round-robin cursor each role needs for ROUND_ROBIN selection.
// Scenarios configure two independent strategies: one for
// COLLECTION selection, one for RETROFIT selection — both are threaded
// through Select's strategy argument by the caller (internal/pipeline),
// Manager itself is strategy-agnostic aside from holding the rolling cursor.
type Manager struct {
	kernel   *engine.Kernel
	tracks   map[domain.TrackID]*domain.Track
	order    domain.TrackOrder // stable declaration order, for deterministic ties
	occupied map[domain.TrackID]decimal.Decimal
	wagons   map[domain.TrackID][]domain.WagonID
	rrCursor map[domain.TrackRole]int
	history  map[domain.TrackID][]occupancySample
}

// NewManager builds a manager over the given tracks, iterated in order for
// a stable, deterministic default ordering.
func NewManager(k *engine.Kernel, order domain.TrackOrder, tracks map[domain.TrackID]*domain.Track) *Manager {
	m := &Manager{
		kernel:   k,
		tracks:   tracks,
		order:    order,
		occupied: make(map[domain.TrackID]decimal.Decimal, len(tracks)),
		wagons:   make(map[domain.TrackID][]domain.WagonID, len(tracks)),
		rrCursor: make(map[domain.TrackRole]int),
		history:  make(map[domain.TrackID][]occupancySample, len(tracks)),
	}
	for id := range tracks {
		m.occupied[id] = decimal.Zero
		m.history[id] = []occupancySample{{time: k.Now(), occupied: decimal.Zero}}
	}
	return m
}

// OccupiedLength returns the current occupied length of a track.
func (m *Manager) OccupiedLength(id domain.TrackID) decimal.Decimal {
	return m.occupied[id]
}

// WagonCount returns the number of wagons currently on a track.
func (m *Manager) WagonCount(id domain.TrackID) int {
	return len(m.wagons[id])
}

// Wagons returns the wagons currently on a track, in placement order.
func (m *Manager) Wagons(id domain.TrackID) []domain.WagonID {
	return m.wagons[id]
}

// CanPlace reports whether length more can fit on track id without
// violating occupied_length <= Capacity.
func (m *Manager) CanPlace(id domain.TrackID, length decimal.Decimal) bool {
	t, ok := m.tracks[id]
	if !ok {
		return false
	}
	return m.occupied[id].Add(length).LessThanOrEqual(t.Capacity())
}

// Place records wagon w (of the given length) onto track id. It panics — a
// runtime invariant violation — if CanPlace would be false;
// callers must always check CanPlace first, there is no retry.
func (m *Manager) Place(id domain.TrackID, w domain.WagonID, length decimal.Decimal) {
	if !m.CanPlace(id, length) {
		panic(fmt.Sprintf("track: Place called on %s exceeding capacity for wagon %s", id, w))
	}
	m.occupied[id] = m.occupied[id].Add(length)
	m.wagons[id] = append(m.wagons[id], w)
	m.recordSample(id)
}

// Remove takes wagon w (of the given length) off track id. It panics if w is
// not recorded as present — a programming error, not a domain failure.
func (m *Manager) Remove(id domain.TrackID, w domain.WagonID, length decimal.Decimal) {
	list := m.wagons[id]
	idx := -1
	for i, id2 := range list {
		if id2 == w {
			idx = i
			break
		}
	}
	if idx == -1 {
		panic(fmt.Sprintf("track: Remove called for wagon %s not present on %s", w, id))
	}
	m.wagons[id] = append(list[:idx], list[idx+1:]...)
	m.occupied[id] = m.occupied[id].Sub(length)
	m.recordSample(id)
}

func (m *Manager) recordSample(id domain.TrackID) {
	m.history[id] = append(m.history[id], occupancySample{time: m.kernel.Now(), occupied: m.occupied[id]})
}

// TimeAboveOccupancy sums how long track id's occupied_length/capacity
// stayed strictly above ratio, reconstructing the piecewise-constant
// occupancy timeline from every Place/Remove sample.
func (m *Manager) TimeAboveOccupancy(id domain.TrackID, ratio float64, until float64) float64 {
	t, ok := m.tracks[id]
	if !ok {
		return 0
	}
	capacity := t.Capacity()
	if capacity.IsZero() {
		return 0
	}
	samples := m.history[id]
	var total float64
	for i, s := range samples {
		end := until
		if i+1 < len(samples) {
			end = samples[i+1].time
		}
		occRatio, _ := s.occupied.Div(capacity).Float64()
		if occRatio > ratio {
			total += end - s.time
		}
	}
	return total
}

// Select chooses a track of the given role with enough free capacity for
// length, per the given strategy, returning ("", false) if none qualifies
//. rng is only consulted for StrategyRandom.
func (m *Manager) Select(role domain.TrackRole, length decimal.Decimal, strategy domain.SelectionStrategy, rng *rand.Rand) (domain.TrackID, bool) {
	candidates := m.candidates(role, length)
	if len(candidates) == 0 {
		return "", false
	}

	switch strategy {
	case domain.StrategyFirstAvail:
		return candidates[0], true

	case domain.StrategyLeastOccupied:
		best := candidates[0]
		bestRatio := m.occupancyRatio(best)
		for _, id := range candidates[1:] {
			r := m.occupancyRatio(id)
			if r.LessThan(bestRatio) {
				best, bestRatio = id, r
			}
		}
		return best, true

	case domain.StrategyRoundRobin:
		// The cursor advances over the full role-ordered track list (not
		// just the currently-qualifying candidates) so that its meaning is
		// stable across calls with different occupancy snapshots.
		all := m.order.OrderedByRole(m.tracks, role)
		n := len(all)
		start := m.rrCursor[role] % n
		for i := 0; i < n; i++ {
			idx := (start + i) % n
			if m.CanPlace(all[idx], length) {
				m.rrCursor[role] = idx + 1
				return all[idx], true
			}
		}
		return "", false

	case domain.StrategyRandom:
		// RNG state is advanced deterministically exactly once even when
		// the candidate set is a singleton.
		idx := rng.Intn(len(candidates))
		return candidates[idx], true

	default:
		panic(fmt.Sprintf("track: unknown selection strategy %q", strategy))
	}
}

// candidates returns, in stable declaration order, the tracks of role that
// currently have room for length.
func (m *Manager) candidates(role domain.TrackRole, length decimal.Decimal) []domain.TrackID {
	all := m.order.OrderedByRole(m.tracks, role)
	out := make([]domain.TrackID, 0, len(all))
	for _, id := range all {
		if m.CanPlace(id, length) {
			out = append(out, id)
		}
	}
	return out
}

// FitsCapacity reports whether length could ever fit on some track of role,
// ignoring current occupancy — distinguishes "no track of this role is ever
// long enough"
// from "every track of this role happens to be full right now" (reason
// no_capacity), which Select's ("", false) alone cannot tell apart.
func (m *Manager) FitsCapacity(role domain.TrackRole, length decimal.Decimal) bool {
	for _, id := range m.order.OrderedByRole(m.tracks, role) {
		if length.LessThanOrEqual(m.tracks[id].Capacity()) {
			return true
		}
	}
	return false
}

func (m *Manager) occupancyRatio(id domain.TrackID) decimal.Decimal {
	capacity := m.tracks[id].Capacity()
	if capacity.IsZero() {
		return decimal.Zero
	}
	return m.occupied[id].Div(capacity)
}
