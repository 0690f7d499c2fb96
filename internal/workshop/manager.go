// Package workshop implements the workshop capacity manager: a
// resource pool of retrofit stations per workshop, LEAST_BUSY selection
// among workshops, and round-robin distribution of a batch's wagons across
// workshops that currently have free stations.
package workshop

import (
	"fmt"

	"github.com/popupsim/popupsim/internal/domain"
	"github.com/popupsim/popupsim/internal/engine"
	"github.com/popupsim/popupsim/internal/resource"
)

// Manager owns one resource.Pool of station slots per workshop.
type Manager struct {
	workshops map[domain.WorkshopID]*domain.Workshop
	order     []domain.WorkshopID
	pools     map[domain.WorkshopID]*resource.Pool
	rrCursor  int
}

// NewManager builds one station pool per workshop, in the given stable
// order. Station item ids are synthetic ("<workshopID>-station-<n>") and
// never surfaced outside this package.
func NewManager(k *engine.Kernel, order []domain.WorkshopID, workshops map[domain.WorkshopID]*domain.Workshop) *Manager {
	m := &Manager{
		workshops: workshops,
		order:     order,
		pools:     make(map[domain.WorkshopID]*resource.Pool, len(workshops)),
	}
	for _, id := range order {
		ws := workshops[id]
		stations := make([]string, ws.RetrofitStations)
		for i := range stations {
			stations[i] = fmt.Sprintf("%s-station-%d", id, i)
		}
		m.pools[id] = resource.NewPool(k, stations)
	}
	return m
}

// Order returns the workshop ids in stable declaration order.
func (m *Manager) Order() []domain.WorkshopID {
	return m.order
}

// ActiveRetrofits returns the number of stations currently occupied.
func (m *Manager) ActiveRetrofits(id domain.WorkshopID) int {
	pool := m.pools[id]
	return pool.Capacity() - pool.FreeCount()
}

// Capacity returns the total retrofit_stations for a workshop.
func (m *Manager) Capacity(id domain.WorkshopID) int {
	return m.pools[id].Capacity()
}

// HasFreeStation reports whether workshop id currently has an unoccupied
// station.
func (m *Manager) HasFreeStation(id domain.WorkshopID) bool {
	return m.pools[id].FreeCount() > 0
}

// BusyDuration sums every station's busy interval at workshop id, for the
// time-weighted active_retrofits/capacity utilisation KPI.
func (m *Manager) BusyDuration(id domain.WorkshopID, until float64) float64 {
	pool := m.pools[id]
	var total float64
	for _, item := range pool.Items() {
		total += pool.BusyDuration(item, until)
	}
	return total
}

// TimeWithQueueAbove sums how long more than n wagons were waiting for a
// free station at workshop id.
func (m *Manager) TimeWithQueueAbove(id domain.WorkshopID, n int, until float64) float64 {
	return m.pools[id].TimeWithQueueAbove(n, until)
}

// SelectLeastBusy picks the workshop among candidates with the minimum
// active_retrofits/capacity ratio, ties broken by candidates' order. Returns ("", false) if candidates is empty.
func (m *Manager) SelectLeastBusy(candidates []domain.WorkshopID) (domain.WorkshopID, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	best := candidates[0]
	bestRatio := m.busyRatio(best)
	for _, id := range candidates[1:] {
		r := m.busyRatio(id)
		if r < bestRatio {
			best, bestRatio = id, r
		}
	}
	return best, true
}

func (m *Manager) busyRatio(id domain.WorkshopID) float64 {
	cap := m.Capacity(id)
	if cap == 0 {
		return 0
	}
	return float64(m.ActiveRetrofits(id)) / float64(cap)
}

// AssignRoundRobin distributes n wagon-assignments round-robin across
// candidates that have a free station at the moment each assignment is
// made. Assignments do not reserve a station, so several of them can name
// the same free station; it returns fewer than n ids (none) only when no
// candidate has a free station. Callers must still Acquire the station,
// which blocks until one is free.
func (m *Manager) AssignRoundRobin(n int, candidates []domain.WorkshopID) []domain.WorkshopID {
	if len(candidates) == 0 {
		return nil
	}
	out := make([]domain.WorkshopID, 0, n)
	attempts := 0
	maxAttempts := n * len(candidates)
	for len(out) < n && attempts < maxAttempts {
		idx := m.rrCursor % len(candidates)
		m.rrCursor++
		attempts++
		id := candidates[idx]
		if m.HasFreeStation(id) {
			out = append(out, id)
		}
	}
	return out
}

// Acquire blocks proc until a station at workshop id is free, then returns
// the station item id (opaque; used only for Release).
func (m *Manager) Acquire(proc *engine.Process, id domain.WorkshopID, purpose string) string {
	return resource.Acquire(m.pools[id], proc, purpose)
}

// Release returns a station (by the item id Acquire returned) to workshop
// id's pool.
func (m *Manager) Release(proc *engine.Process, id domain.WorkshopID, station string) {
	resource.Release(m.pools[id], proc, station)
}
