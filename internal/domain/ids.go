// Package domain holds the pure, scheduler-free entities of PopUpSim: Wagon,
// Train, Locomotive, Workshop, Track, Route, and ProcessTimes, along with
// their state machines. Nothing in this package blocks or touches the
// simulation clock — it is owned and mutated exclusively by the coordinators
// in internal/pipeline under the kernel's single-threaded discipline.
package domain

// WagonID, TrainID, TrackID, WorkshopID, and LocomotiveID are distinct string
// types rather than aliases so identifiers from different domains cannot be
// accidentally interchanged at compile time.
type WagonID string
type TrainID string
type TrackID string
type WorkshopID string
type LocomotiveID string
