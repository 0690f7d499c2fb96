package domain

// Route is an ordered sequence of track ids describing a path through the
// topology, plus its total traversal time in minutes. Derived by the router
// (internal/topology) and cached by (from, to); Route values themselves are
// immutable once returned.
type Route struct {
	From  TrackID
	To    TrackID
	Path  []TrackID
	Time  float64
}
