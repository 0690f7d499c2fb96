package metrics

import "github.com/popupsim/popupsim/internal/domain"

// Monotone reports whether events (as returned by Collector.BySubject) form
// a non-decreasing timeline (events sharing a timestamp are allowed),
// required of every wagon's event history.
func Monotone(events []domain.Event) bool {
	for i := 1; i < len(events); i++ {
		if events[i].Time < events[i-1].Time {
			return false
		}
	}
	return true
}

// DisjointIntervals reports whether a sequence of (start,end) allocation
// intervals — already sorted by start — never overlap, required of a
// locomotive's allocation history.
func DisjointIntervals(starts, ends []float64) bool {
	for i := 1; i < len(starts); i++ {
		if starts[i] < ends[i-1] {
			return false
		}
	}
	return true
}
