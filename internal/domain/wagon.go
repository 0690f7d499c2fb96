package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// WagonStatus is the wagon lifecycle state
type WagonStatus string

const (
	WagonArriving     WagonStatus = "ARRIVING"
	WagonSelecting    WagonStatus = "SELECTING"
	WagonSelected     WagonStatus = "SELECTED"
	WagonRejected     WagonStatus = "REJECTED"
	WagonMoving       WagonStatus = "MOVING"
	WagonOnRetrofit   WagonStatus = "ON_RETROFIT"
	WagonRetrofitting WagonStatus = "RETROFITTING"
	WagonRetrofitted  WagonStatus = "RETROFITTED"
	WagonOnParking    WagonStatus = "ON_PARKING" // terminal
)

// legalTransitions enumerates the total lifecycle transition table. Any
// transition not listed here is a programming error (a runtime invariant
// violation), not a domain failure.
var legalTransitions = map[WagonStatus][]WagonStatus{
	WagonArriving:     {WagonSelecting},
	WagonSelecting:    {WagonRejected, WagonSelected},
	WagonSelected:     {WagonMoving},
	WagonMoving:       {WagonOnRetrofit, WagonRetrofitting, WagonOnParking},
	WagonOnRetrofit:   {WagonMoving},
	WagonRetrofitting: {WagonRetrofitted},
	WagonRetrofitted:  {WagonMoving},
}

// RejectReason explains why a wagon was dropped from the pipeline.
type RejectReason string

const (
	RejectNotNeeded      RejectReason = "not_needed"
	RejectNoCapacity     RejectReason = "no_capacity"
	RejectNoCapacityAny  RejectReason = "no_capacity_any_track"
)

// Wagon is mutable, single-owner-at-a-time domain state. Ownership is
// expressed by queue membership or track occupancy; the pipeline
// coordinators are the only callers permitted to transition it.
type Wagon struct {
	ID              WagonID
	TrainID         TrainID
	Length          decimal.Decimal // meters, > 0
	CouplerType     CouplerType
	NeedsRetrofit   bool
	Status          WagonStatus
	CurrentTrackID  TrackID // empty when not on a track
	TareWeight      float64 // optional, informational only
	RejectReason    RejectReason
	ArrivalTime     float64
	PlacedOnRetrofitTime float64
	RetrofitStartTime    float64
	TerminalTime         float64
}

// NewWagon constructs a wagon in its initial ARRIVING state.
func NewWagon(id WagonID, trainID TrainID, length decimal.Decimal, coupler CouplerType, needsRetrofit bool) *Wagon {
	return &Wagon{
		ID:            id,
		TrainID:       trainID,
		Length:        length,
		CouplerType:   coupler,
		NeedsRetrofit: needsRetrofit,
		Status:        WagonArriving,
	}
}

// Transition moves the wagon to `to`, panicking (a runtime invariant
// violation) if the transition is not in the legal table.
func (w *Wagon) Transition(to WagonStatus) {
	allowed := legalTransitions[w.Status]
	for _, s := range allowed {
		if s == to {
			w.Status = to
			return
		}
	}
	panic(fmt.Sprintf("domain: illegal wagon transition %s -> %s (wagon %s)", w.Status, to, w.ID))
}

// NeedsConversion reports whether the wagon requires a DAC retrofit.
func (w *Wagon) NeedsConversion() bool {
	return w.NeedsRetrofit && w.CouplerType == CouplerScrew
}

// Reject marks the wagon REJECTED with an explanatory reason and removes it
// from the pipeline (it is retained for reporting only).
func (w *Wagon) Reject(reason RejectReason) {
	w.Transition(WagonRejected)
	w.RejectReason = reason
}
