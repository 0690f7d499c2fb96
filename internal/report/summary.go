// Package report assembles KPI summaries from a finished Simulation and
// writes them, plus raw event streams, to CSV — built from an
// event-sourced collector rather than a flat aggregation struct.
package report

import (
	"github.com/popupsim/popupsim/internal/domain"
)

// Summary is the KPI key/value table written to summary.csv.
type Summary struct {
	ScenarioID            string
	DurationHours         float64
	TotalWagonsProcessed  int
	Retrofitted           int
	Rejected              int
	ThroughputPerHour     float64
	ThroughputPerDay      float64
	AvgFlowTimeMinutes    float64
	AvgWaitingTimeMinutes float64
}

// BuildSummary folds every wagon the scenario introduced into a Summary.
// "Flow time" is terminal_time - arrival_time for wagons that reached
// ON_PARKING; "waiting time" is retrofit_start_time - placed_on_retrofit_time,
// the time a wagon spent queued for a free station once already staged on
// its retrofit track (the queueing delay Coord3's station contention
// produces).
func BuildSummary(scn *domain.Scenario, wagons []*domain.Wagon) Summary {
	s := Summary{ScenarioID: scn.ID, DurationHours: scn.DurationHours()}

	var flowTotal, waitTotal float64
	var flowCount, waitCount int

	for _, w := range wagons {
		s.TotalWagonsProcessed++
		switch w.Status {
		case domain.WagonOnParking:
			s.Retrofitted++
			flowTotal += w.TerminalTime - w.ArrivalTime
			flowCount++
			if w.RetrofitStartTime > 0 {
				waitTotal += w.RetrofitStartTime - w.PlacedOnRetrofitTime
				waitCount++
			}
		case domain.WagonRejected:
			s.Rejected++
		}
	}

	if flowCount > 0 {
		s.AvgFlowTimeMinutes = flowTotal / float64(flowCount)
	}
	if waitCount > 0 {
		s.AvgWaitingTimeMinutes = waitTotal / float64(waitCount)
	}
	if s.DurationHours > 0 {
		s.ThroughputPerHour = float64(s.Retrofitted) / s.DurationHours
		s.ThroughputPerDay = s.ThroughputPerHour * 24
	}

	return s
}

// TrackMetric is one row of track_metrics.csv.
type TrackMetric struct {
	TrackID          domain.TrackID
	Role             domain.TrackRole
	OccupiedLength   float64
	Capacity         float64
	UtilisationRatio float64
	WagonCount       int
}

// WorkshopMetric is one row of workshop_metrics.csv.
type WorkshopMetric struct {
	WorkshopID       domain.WorkshopID
	Name             string
	ActiveRetrofits  int
	Capacity         int
	UtilisationRatio float64
}

// LocomotiveMetric is one row of locomotive_metrics.csv.
type LocomotiveMetric struct {
	LocomotiveID     domain.LocomotiveID
	BusyMinutes      float64
	TotalMinutes     float64
	UtilisationRatio float64
}

// BottleneckKind identifies which heuristic flagged a Bottleneck.
type BottleneckKind string

const (
	BottleneckTrack    BottleneckKind = "track_occupancy"
	BottleneckWorkshop BottleneckKind = "workshop_utilisation"
	BottleneckQueue    BottleneckKind = "queue_length"
)

// Bottleneck is one row of bottlenecks.csv: a subject that exceeded its
// heuristic threshold for a sustained share of the run. Severity is
// exceedance * duration, so a subject that spent the whole run barely over
// threshold and one that briefly blew far past it can both surface, ranked
// comparably.
type Bottleneck struct {
	Kind      BottleneckKind
	SubjectID string
	Threshold float64
	Ratio     float64 // measured value driving the exceedance (occupancy/utilisation ratio, or queue time fraction)
	Duration  float64 // time spent over threshold
	Severity  float64
}
