package pipeline

import (
	"sort"

	"github.com/popupsim/popupsim/internal/domain"
	"github.com/popupsim/popupsim/internal/engine"
	"github.com/popupsim/popupsim/internal/rngpool"
)

// coord1 is the arrivals & selection coordinator:
// triggered by each train's arrival timer, it decides per wagon whether a
// retrofit is needed and, if so, selects and reserves a collection track.
func (s *Simulation) coord1(proc *engine.Process) {
	trains := append([]*domain.Train(nil), s.Scenario.Trains...)
	sort.SliceStable(trains, func(i, j int) bool { return trains[i].ArrivalTime < trains[j].ArrivalTime })

	for _, t := range trains {
		if wait := t.ArrivalTime - s.Kernel.Now(); wait > 0 {
			proc.Timeout(wait)
		}
		s.Metrics.Record(domain.CategoryWagon, "train_arrived", string(t.ID), map[string]any{
			"wagon_count": len(t.Wagons),
		})
		for _, w := range t.Wagons {
			w.ArrivalTime = s.Kernel.Now()
			s.selectWagon(proc, w)
		}
	}
}

// selectWagon runs one wagon through the ARRIVING -> SELECTING -> {SELECTED,
// REJECTED} decision.
func (s *Simulation) selectWagon(proc *engine.Process, w *domain.Wagon) {
	w.Transition(domain.WagonSelecting)

	if !w.NeedsConversion() {
		w.Reject(domain.RejectNotNeeded)
		s.Metrics.Record(domain.CategoryWagon, "rejected", string(w.ID), map[string]any{
			"reason": string(w.RejectReason),
		})
		return
	}

	rng := s.RNG.Stream(rngpool.SubsystemTrackSelection)
	trackID, ok := s.Tracks.Select(domain.RoleCollection, w.Length, s.Scenario.TrackSelectionStrategy, rng)
	if !ok {
		reason := domain.RejectNoCapacity
		if !s.Tracks.FitsCapacity(domain.RoleCollection, w.Length) {
			reason = domain.RejectNoCapacityAny
		}
		w.Reject(reason)
		s.Metrics.Record(domain.CategoryWagon, "rejected", string(w.ID), map[string]any{
			"reason": string(w.RejectReason),
		})
		return
	}

	s.Tracks.Place(trackID, w.ID, w.Length)
	w.CurrentTrackID = trackID
	w.Transition(domain.WagonSelected)
	s.Metrics.Record(domain.CategoryWagon, "selected", string(w.ID), map[string]any{
		"track_id": string(trackID),
	})
	engine.Put(proc, s.qCollected, w)
}
