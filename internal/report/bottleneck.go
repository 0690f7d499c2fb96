package report

import (
	"github.com/popupsim/popupsim/internal/domain"
	"github.com/popupsim/popupsim/internal/pipeline"
)

// Bottleneck detection thresholds. Track occupancy and queue length only
// surface once over their threshold for more than sustainedFraction of the
// run — a momentary spike is not a bottleneck. Workshop utilisation is a
// whole-run time-weighted ratio compared against workshopUtilisationThresh.
const (
	trackOccupancyRatio       = 0.8
	workshopUtilisationThresh = 0.8
	queueLengthThreshold      = 2
	sustainedFraction         = 0.2
)

// DetectBottlenecks flags tracks, workshops, and queues (workshop stations
// and the locomotive pool) that stayed over their heuristic threshold for a
// sustained share of the run. Severity ranks findings by exceedance *
// duration, so a subject barely over threshold for the whole run and one
// that spiked far past it briefly are both comparable.
func DetectBottlenecks(sim *pipeline.Simulation, trackOrder domain.TrackOrder, workshopOrder []domain.WorkshopID) []Bottleneck {
	total := sim.Kernel.Now()
	if total <= 0 {
		return nil
	}
	sustainedThreshold := sustainedFraction * total

	var out []Bottleneck

	for _, id := range trackOrder {
		d := sim.Tracks.TimeAboveOccupancy(id, trackOccupancyRatio, total)
		if d <= sustainedThreshold {
			continue
		}
		fraction := d / total
		out = append(out, Bottleneck{
			Kind:      BottleneckTrack,
			SubjectID: string(id),
			Threshold: sustainedFraction,
			Ratio:     fraction,
			Duration:  d,
			Severity:  (fraction - sustainedFraction) * d,
		})
	}

	for _, id := range workshopOrder {
		busy := sim.Shops.BusyDuration(id, total)
		capacity := sim.Shops.Capacity(id)
		if capacity == 0 {
			continue
		}
		ratio := busy / (float64(capacity) * total)
		if ratio > workshopUtilisationThresh {
			out = append(out, Bottleneck{
				Kind:      BottleneckWorkshop,
				SubjectID: string(id),
				Threshold: workshopUtilisationThresh,
				Ratio:     ratio,
				Duration:  total,
				Severity:  (ratio - workshopUtilisationThresh) * total,
			})
		}

		qd := sim.Shops.TimeWithQueueAbove(id, queueLengthThreshold, total)
		if qd <= sustainedThreshold {
			continue
		}
		qFraction := qd / total
		out = append(out, Bottleneck{
			Kind:      BottleneckQueue,
			SubjectID: string(id),
			Threshold: sustainedFraction,
			Ratio:     qFraction,
			Duration:  qd,
			Severity:  (qFraction - sustainedFraction) * qd,
		})
	}

	locoQueue := sim.LocomotiveQueueTime(queueLengthThreshold, total)
	if locoQueue > sustainedThreshold {
		fraction := locoQueue / total
		out = append(out, Bottleneck{
			Kind:      BottleneckQueue,
			SubjectID: "locomotive_pool",
			Threshold: sustainedFraction,
			Ratio:     fraction,
			Duration:  locoQueue,
			Severity:  (fraction - sustainedFraction) * locoQueue,
		})
	}

	return out
}
