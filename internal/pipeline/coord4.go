package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/popupsim/popupsim/internal/domain"
	"github.com/popupsim/popupsim/internal/engine"
	"github.com/popupsim/popupsim/internal/resource"
	"github.com/popupsim/popupsim/internal/rngpool"
)

// coord4 is the pickup-retrofitted coordinator: batches
// on an exit track are regrouped by their chosen parking destination, and
// each destination group gets its own loco trip to parking.
func (s *Simulation) coord4(proc *engine.Process) {
	for {
		exitTrack, batch := s.qExit.WaitAndDrain(proc)
		if len(batch) == 0 {
			continue
		}
		s.groupAndDeliver(proc, exitTrack, batch)
	}
}

// selectParkingDest picks a PARKING track for w, reusing
// track_selection_strategy rather than inventing a dedicated parking field.
func (s *Simulation) selectParkingDest(w *domain.Wagon) (domain.TrackID, bool) {
	rng := s.RNG.Stream(rngpool.SubsystemTrackSelection)
	return s.Tracks.Select(domain.RoleParking, w.Length, s.Scenario.TrackSelectionStrategy, rng)
}

func (s *Simulation) groupAndDeliver(proc *engine.Process, exitTrack domain.TrackID, batch []*domain.Wagon) {
	groups := make(map[domain.TrackID][]*domain.Wagon)
	totals := make(map[domain.TrackID]decimal.Decimal)
	order := make([]domain.TrackID, 0, len(batch))

	for _, w := range batch {
		dest, ok := s.selectParkingDest(w)
		if !ok {
			s.Metrics.Record(domain.CategoryWagon, "blocked_no_parking_capacity", string(w.ID), nil)
			continue
		}
		if _, seen := groups[dest]; !seen {
			order = append(order, dest)
			totals[dest] = decimal.Zero
		}
		// dest's occupied_length is untouched until haulToParking places the
		// group, so selectParkingDest alone only proves w fits dest in
		// isolation; CanPlace against the running group total is what
		// actually proves the whole group still fits.
		groupTotal := totals[dest].Add(w.Length)
		if !s.Tracks.CanPlace(dest, groupTotal) {
			s.Metrics.Record(domain.CategoryWagon, "blocked_no_parking_capacity", string(w.ID), nil)
			continue
		}
		groups[dest] = append(groups[dest], w)
		totals[dest] = groupTotal
	}

	for _, dest := range order {
		if len(groups[dest]) == 0 {
			continue
		}
		s.haulToParking(proc, exitTrack, dest, groups[dest])
	}
}

// haulToParking hauls one destination group from the exit track to its
// parking track, decouples, and places every wagon — its terminal state
//.
func (s *Simulation) haulToParking(proc *engine.Process, exitTrack, parkingTrack domain.TrackID, group []*domain.Wagon) {
	locoID := resource.Acquire(s.locoPool, proc, "coord4-to-parking")
	loco := s.locomotives[domain.LocomotiveID(locoID)]
	s.moveLoco(proc, loco, exitTrack)

	loco.SetStatus(domain.LocoCoupling)
	proc.Timeout(s.Scenario.Process.CouplingTime)
	for _, w := range group {
		s.Tracks.Remove(exitTrack, w.ID, w.Length)
	}

	s.moveLoco(proc, loco, parkingTrack)

	loco.SetStatus(domain.LocoDecoupling)
	proc.Timeout(s.Scenario.Process.DecouplingTime)
	for _, w := range group {
		s.Tracks.Place(parkingTrack, w.ID, w.Length)
		w.Transition(domain.WagonOnParking)
		w.CurrentTrackID = parkingTrack
		w.TerminalTime = s.Kernel.Now()
		s.Metrics.Record(domain.CategoryWagon, "on_parking", string(w.ID), map[string]any{
			"track_id": string(parkingTrack),
		})
		engine.Put(proc, s.qTerminal, w)
	}

	s.releaseLoco(proc, locoID)
}
