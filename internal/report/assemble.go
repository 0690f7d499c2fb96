package report

import (
	"github.com/popupsim/popupsim/internal/domain"
	"github.com/popupsim/popupsim/internal/pipeline"
)

// CollectTrackMetrics builds one TrackMetric row per track, in the given
// stable order.
func CollectTrackMetrics(sim *pipeline.Simulation, order domain.TrackOrder) []TrackMetric {
	out := make([]TrackMetric, 0, len(order))
	for _, id := range order {
		t := sim.Scenario.Tracks[id]
		occupied, _ := sim.Tracks.OccupiedLength(id).Float64()
		capacity, _ := t.Capacity().Float64()
		ratio := 0.0
		if capacity > 0 {
			ratio = occupied / capacity
		}
		out = append(out, TrackMetric{
			TrackID:          id,
			Role:             t.Role,
			OccupiedLength:   occupied,
			Capacity:         capacity,
			UtilisationRatio: ratio,
			WagonCount:       sim.Tracks.WagonCount(id),
		})
	}
	return out
}

// CollectWorkshopMetrics builds one WorkshopMetric row per workshop, in the
// given stable order. UtilisationRatio is time-weighted
// (active_retrofits/capacity integrated over the run), not the end-of-run
// snapshot — a workshop that ran hot all day and emptied out right before
// the run ended must not report near-zero utilisation.
func CollectWorkshopMetrics(sim *pipeline.Simulation, order []domain.WorkshopID) []WorkshopMetric {
	total := sim.Kernel.Now()
	out := make([]WorkshopMetric, 0, len(order))
	for _, id := range order {
		ws := sim.Scenario.Workshops[id]
		capacity := sim.Shops.Capacity(id)
		active := sim.Shops.ActiveRetrofits(id)
		ratio := 0.0
		if capacity > 0 && total > 0 {
			busy := sim.Shops.BusyDuration(id, total)
			ratio = busy / (float64(capacity) * total)
		}
		out = append(out, WorkshopMetric{
			WorkshopID:       id,
			Name:             ws.Name,
			ActiveRetrofits:  active,
			Capacity:         capacity,
			UtilisationRatio: ratio,
		})
	}
	return out
}

// CollectLocomotiveMetrics builds one LocomotiveMetric row per locomotive,
// in stable pool declaration order. UtilisationRatio is Σ busy intervals /
// total_time, a still-open allocation counting as busy through the run's
// final clock time.
func CollectLocomotiveMetrics(sim *pipeline.Simulation) []LocomotiveMetric {
	total := sim.Kernel.Now()
	ids := sim.LocomotiveIDs()
	out := make([]LocomotiveMetric, 0, len(ids))
	for _, id := range ids {
		busy := sim.LocomotiveBusyDuration(id, total)
		ratio := 0.0
		if total > 0 {
			ratio = busy / total
		}
		out = append(out, LocomotiveMetric{
			LocomotiveID:     id,
			BusyMinutes:      busy,
			TotalMinutes:     total,
			UtilisationRatio: ratio,
		})
	}
	return out
}
