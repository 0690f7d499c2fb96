package pipeline

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/popupsim/popupsim/internal/domain"
	"github.com/popupsim/popupsim/internal/engine"
	"github.com/popupsim/popupsim/internal/resource"
)

// coord3 is the station-assignment & retrofit coordinator: for each group that accumulates on a retrofit track, it picks a
// workshop, hauls the batch there, decouples wagons one at a time onto free
// stations, and — once every wagon in the batch has finished retrofitting —
// hauls the completed batch on to an exit track.
func (s *Simulation) coord3(proc *engine.Process) {
	for {
		retrofitTrack, batch := s.qOnRetrofit.WaitAndDrain(proc)
		if len(batch) == 0 {
			continue
		}
		s.assignAndRetrofit(proc, retrofitTrack, batch)
	}
}

func batchLength(batch []*domain.Wagon) decimal.Decimal {
	total := decimal.Zero
	for _, w := range batch {
		total = total.Add(w.Length)
	}
	return total
}

// selectWorkshop picks, via LEAST_BUSY, a workshop whose workshop-role track
// currently has room for totalLen.
func (s *Simulation) selectWorkshop(totalLen decimal.Decimal) (domain.WorkshopID, bool) {
	candidates := make([]domain.WorkshopID, 0, len(s.Scenario.Workshops))
	for _, id := range s.Shops.Order() {
		if s.Tracks.CanPlace(s.Scenario.Workshops[id].TrackID, totalLen) {
			candidates = append(candidates, id)
		}
	}
	return s.Shops.SelectLeastBusy(candidates)
}

// coLocatedWorkshops returns every workshop bound to track, in stable
// declaration order. Most scenarios bind one workshop per track, so this
// is usually a single-element slice; where several workshops share a
// siding, every wagon in
// the batch picks its station round-robin among them instead of all
// piling onto the single LEAST_BUSY workshop the haul itself targeted.
func (s *Simulation) coLocatedWorkshops(track domain.TrackID) []domain.WorkshopID {
	out := make([]domain.WorkshopID, 0, 1)
	for _, id := range s.Shops.Order() {
		if s.Scenario.Workshops[id].TrackID == track {
			out = append(out, id)
		}
	}
	return out
}

func (s *Simulation) assignAndRetrofit(proc *engine.Process, retrofitTrack domain.TrackID, batch []*domain.Wagon) {
	totalLen := batchLength(batch)

	workshopID, ok := s.selectWorkshop(totalLen)
	if !ok {
		// No workshop track currently has room for the whole batch. Scenario
		// validation guarantees at least one RETROFIT track and a reachable
		// workshop, but does not guarantee every batch size is servable; we
		// record the block and drop this batch rather than deadlock Coord3
		// against all future arrivals on other tracks.
		for _, w := range batch {
			s.Metrics.Record(domain.CategoryWagon, "blocked_no_workshop_capacity", string(w.ID), nil)
		}
		return
	}
	workshopTrack := s.Scenario.Workshops[workshopID].TrackID
	coLocated := s.coLocatedWorkshops(workshopTrack)

	locoID := resource.Acquire(s.locoPool, proc, "coord3-to-workshop")
	loco := s.locomotives[domain.LocomotiveID(locoID)]
	s.moveLoco(proc, loco, retrofitTrack)

	loco.SetStatus(domain.LocoCoupling)
	proc.Timeout(s.Scenario.Process.CouplingTime)
	for _, w := range batch {
		w.Transition(domain.WagonMoving)
		s.Tracks.Remove(retrofitTrack, w.ID, w.Length)
	}

	s.moveLoco(proc, loco, workshopTrack)

	remaining := len(batch)
	completed := make([]*domain.Wagon, 0, len(batch))

	loco.SetStatus(domain.LocoDecoupling)
	for _, w := range batch {
		proc.Timeout(s.Scenario.Process.DecouplingTime)

		assigned := workshopID
		if picked := s.Shops.AssignRoundRobin(1, coLocated); len(picked) == 1 {
			assigned = picked[0]
		}
		station := s.Shops.Acquire(proc, assigned, "retrofit")

		w.Transition(domain.WagonRetrofitting)
		w.RetrofitStartTime = s.Kernel.Now()
		s.Tracks.Place(workshopTrack, w.ID, w.Length)
		s.Metrics.Record(domain.CategoryWorkshop, "station_assigned", string(assigned), map[string]any{
			"wagon_id": string(w.ID),
		})

		wagon, stationWorkshop, stationID := w, assigned, station
		s.Kernel.Spawn(fmt.Sprintf("retrofit-%s", wagon.ID), func(rp *engine.Process) {
			rp.Timeout(s.Scenario.Process.RetrofitTimePerWagon)
			wagon.Transition(domain.WagonRetrofitted)
			s.Shops.Release(rp, stationWorkshop, stationID)
			s.Metrics.Record(domain.CategoryWagon, "retrofitted", string(wagon.ID), nil)

			completed = append(completed, wagon)
			remaining--
			if remaining == 0 {
				s.haulToExit(rp, workshopTrack, completed)
			}
		})
	}

	s.releaseLoco(proc, locoID)
}

// haulToExit hauls a batch of now-RETROFITTED wagons from the workshop
// track to an exit track, then hands them to Coord4 via Q_exit.
func (s *Simulation) haulToExit(proc *engine.Process, workshopTrack domain.TrackID, batch []*domain.Wagon) {
	totalLen := batchLength(batch)

	exitTrack, ok := s.Tracks.Select(domain.RoleExit, totalLen, domain.StrategyFirstAvail, nil)
	if !ok {
		for _, w := range batch {
			s.Metrics.Record(domain.CategoryWagon, "blocked_no_exit_capacity", string(w.ID), nil)
		}
		return
	}

	locoID := resource.Acquire(s.locoPool, proc, "coord3-to-exit")
	loco := s.locomotives[domain.LocomotiveID(locoID)]
	s.moveLoco(proc, loco, workshopTrack)

	loco.SetStatus(domain.LocoCoupling)
	proc.Timeout(s.Scenario.Process.CouplingTime)
	for _, w := range batch {
		w.Transition(domain.WagonMoving)
		s.Tracks.Remove(workshopTrack, w.ID, w.Length)
	}

	s.moveLoco(proc, loco, exitTrack)

	loco.SetStatus(domain.LocoDecoupling)
	proc.Timeout(s.Scenario.Process.DecouplingTime)
	for _, w := range batch {
		s.Tracks.Place(exitTrack, w.ID, w.Length)
		s.Metrics.Record(domain.CategoryWagon, "on_exit", string(w.ID), map[string]any{
			"track_id": string(exitTrack),
		})
		s.qExit.Push(proc, exitTrack, w)
	}

	s.releaseLoco(proc, locoID)
}
