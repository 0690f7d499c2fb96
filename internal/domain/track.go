package domain

import "github.com/shopspring/decimal"

// DefaultFillFactor is the fraction of a track's physical length usable for
// parking wagons when a scenario file omits fill_factor.
var DefaultFillFactor = decimal.NewFromFloat(0.75)

// Track is static site-topology configuration: identity, functional role,
// physical length, and fill factor. Occupancy (the mutable part) is owned
// and tracked by internal/track.Manager, never by Track itself — Track is
// pure data, consistent with the rest of this package.
type Track struct {
	ID         TrackID
	Role       TrackRole
	Length     decimal.Decimal
	FillFactor decimal.Decimal
}

// Capacity returns the effective usable length C = Length * FillFactor.
func (t *Track) Capacity() decimal.Decimal {
	return t.Length.Mul(t.FillFactor)
}
