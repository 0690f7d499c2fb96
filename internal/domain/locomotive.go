package domain

// LocomotiveStatus is the activity a locomotive is currently engaged in.
// A locomotive has exactly one activity at a time.
type LocomotiveStatus string

const (
	LocoParking    LocomotiveStatus = "PARKING"
	LocoMoving     LocomotiveStatus = "MOVING"
	LocoCoupling   LocomotiveStatus = "COUPLING"
	LocoDecoupling LocomotiveStatus = "DECOUPLING"
)

// Locomotive is a haulage unit. It is acquired from and released to the
// locomotive resource pool (internal/resource) by the pipeline coordinators;
// Locomotive itself never blocks or reads the clock.
type Locomotive struct {
	ID             LocomotiveID
	Status         LocomotiveStatus
	CurrentTrackID TrackID
}

// NewLocomotive constructs a locomotive parked on the given track.
func NewLocomotive(id LocomotiveID, parkingTrack TrackID) *Locomotive {
	return &Locomotive{ID: id, Status: LocoParking, CurrentTrackID: parkingTrack}
}

// SetStatus records the locomotive's current activity. Exactly one activity
// at a time is an invariant enforced structurally — callers always overwrite
// the previous status rather than layering states.
func (l *Locomotive) SetStatus(s LocomotiveStatus) {
	l.Status = s
}
