package pipeline

import (
	"github.com/popupsim/popupsim/internal/domain"
	"github.com/popupsim/popupsim/internal/engine"
	"github.com/popupsim/popupsim/internal/resource"
	"github.com/popupsim/popupsim/internal/rngpool"
)

// coord2 is the pickup-to-retrofit coordinator: it drains
// Q_collected, forms same-destination same-source batches, and hauls each
// batch from its collection track to a retrofit track.
//
// Batching looks ahead only while the queue already holds a wagon (no
// blocking wait mid-batch) and stops at the first wagon that doesn't match
// the batch in progress; that wagon is held in `pending` rather than
// requeued, so wagon order is never disturbed.
func (s *Simulation) coord2(proc *engine.Process) {
	var pending *domain.Wagon

	for {
		first := pending
		pending = nil
		if first == nil {
			first = engine.Get(proc, s.qCollected)
		}

		destTrack, ok := s.selectRetrofitDest(first)
		if !ok {
			first.Reject(s.retrofitRejectReason(first))
			s.Metrics.Record(domain.CategoryWagon, "rejected", string(first.ID), map[string]any{
				"reason": string(first.RejectReason),
			})
			continue
		}

		batch := []*domain.Wagon{first}
		totalLen := first.Length
		for s.qCollected.Len() > 0 {
			next := engine.Get(proc, s.qCollected)
			nextDest, nextOK := s.selectRetrofitDest(next)
			sameSource := next.CurrentTrackID == first.CurrentTrackID
			// destTrack's occupied_length is untouched until haulToRetrofit
			// decouples, so nextOK/nextDest alone only prove next fits
			// destTrack in isolation; CanPlace against the running batch
			// total is what actually proves the whole batch still fits.
			fits := nextOK && nextDest == destTrack && sameSource &&
				s.batchFits(totalLen, next.Length) &&
				s.Tracks.CanPlace(destTrack, totalLen.Add(next.Length))
			if fits {
				batch = append(batch, next)
				totalLen = totalLen.Add(next.Length)
				continue
			}
			if !nextOK {
				next.Reject(s.retrofitRejectReason(next))
				s.Metrics.Record(domain.CategoryWagon, "rejected", string(next.ID), map[string]any{
					"reason": string(next.RejectReason),
				})
				continue
			}
			pending = next
			break
		}

		s.haulToRetrofit(proc, batch, destTrack)
	}
}

// selectRetrofitDest picks a RETROFIT track for w via the scenario's
// retrofit_selection_strategy.
func (s *Simulation) selectRetrofitDest(w *domain.Wagon) (domain.TrackID, bool) {
	rng := s.RNG.Stream(rngpool.SubsystemTrackSelection)
	return s.Tracks.Select(domain.RoleRetrofit, w.Length, s.Scenario.RetrofitSelectionStrategy, rng)
}

// retrofitRejectReason distinguishes "no RETROFIT track is ever long enough
// for w" from "every RETROFIT track happens to be full right now."
func (s *Simulation) retrofitRejectReason(w *domain.Wagon) domain.RejectReason {
	if !s.Tracks.FitsCapacity(domain.RoleRetrofit, w.Length) {
		return domain.RejectNoCapacityAny
	}
	return domain.RejectNoCapacity
}

// haulToRetrofit performs one loco trip for a batch: acquire, move to the
// shared collection track, couple, depart, move to destTrack, decouple,
// place, release.
func (s *Simulation) haulToRetrofit(proc *engine.Process, batch []*domain.Wagon, destTrack domain.TrackID) {
	sourceTrack := batch[0].CurrentTrackID

	locoID := resource.Acquire(s.locoPool, proc, "coord2-pickup")
	loco := s.locomotives[domain.LocomotiveID(locoID)]

	s.moveLoco(proc, loco, sourceTrack)

	loco.SetStatus(domain.LocoCoupling)
	proc.Timeout(s.Scenario.Process.CouplingTime)
	for _, w := range batch {
		w.Transition(domain.WagonMoving)
		s.Tracks.Remove(sourceTrack, w.ID, w.Length)
		s.Metrics.Record(domain.CategoryWagon, "coupled_for_retrofit", string(w.ID), map[string]any{
			"loco": locoID, "destination_track": string(destTrack),
		})
	}

	s.moveLoco(proc, loco, destTrack)

	loco.SetStatus(domain.LocoDecoupling)
	proc.Timeout(s.Scenario.Process.DecouplingTime)
	for _, w := range batch {
		w.Transition(domain.WagonOnRetrofit)
		s.Tracks.Place(destTrack, w.ID, w.Length)
		w.PlacedOnRetrofitTime = s.Kernel.Now()
		s.Metrics.Record(domain.CategoryWagon, "on_retrofit", string(w.ID), map[string]any{
			"track_id": string(destTrack),
		})
		s.qOnRetrofit.Push(proc, destTrack, w)
	}

	s.releaseLoco(proc, locoID)
}
