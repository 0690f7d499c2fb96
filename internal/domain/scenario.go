package domain

import "time"

// RouteEdge is one undirected adjacency in the site topology: tracks From
// and To are directly connected, traversable in TravelTime minutes. Edge
// times are symmetric unless a scenario explicitly overrides one direction
//; Symmetric defaults to true.
type RouteEdge struct {
	From       TrackID
	To         TrackID
	TravelTime float64
	Symmetric  bool
}

// Scenario is the immutable root of a simulation run. It is validated once
// at load time (internal/scenario) and never mutated afterward — every
// field here is filled in once by the loader and then only read.
type Scenario struct {
	ID    string
	Start time.Time
	End   time.Time

	TrackSelectionStrategy    SelectionStrategy
	RetrofitSelectionStrategy SelectionStrategy
	LocoDeliveryStrategy      LocoDeliveryStrategy

	Trains      []*Train
	Tracks      map[TrackID]*Track
	Workshops   map[WorkshopID]*Workshop
	Locomotives []*Locomotive
	Edges       []RouteEdge
	Process     ProcessTimes

	Seed int64
}

// DurationHours returns End-Start in hours, used throughout KPI reporting.
func (s *Scenario) DurationHours() float64 {
	return s.End.Sub(s.Start).Hours()
}

// TrackOrder is the stable declaration order of a scenario's track ids,
// recorded by the loader (see internal/scenario) because s.Tracks is a map.
// Callers that need a deterministic iteration order over s.Tracks must use
// TrackOrder or its OrderedByRole, never range over the map directly.
type TrackOrder []TrackID

// OrderedByRole filters ids (in the given stable order) to those whose
// Track has the given role.
func (o TrackOrder) OrderedByRole(tracks map[TrackID]*Track, role TrackRole) []TrackID {
	out := make([]TrackID, 0, len(o))
	for _, id := range o {
		if t, ok := tracks[id]; ok && t.Role == role {
			out = append(out, id)
		}
	}
	return out
}
