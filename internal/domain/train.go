package domain

import "github.com/shopspring/decimal"

// Train is immutable after arrival: an ordered sequence of wagons that
// arrived together. It is dissolved (conceptually) once every wagon has been
// placed on a collection track or rejected — the pipeline does not delete
// the Train value, it simply stops referencing it.
type Train struct {
	ID          TrainID
	ArrivalTime float64
	Wagons      []*Wagon
}

// TotalLength returns the sum of all wagon lengths
func (t *Train) TotalLength() decimal.Decimal {
	total := decimal.Zero
	for _, w := range t.Wagons {
		total = total.Add(w.Length)
	}
	return total
}
