package domain

// ProcessTimes groups the fixed durations that drive every timed action in
// the pipeline. All fields are minutes and must be >= 0.
type ProcessTimes struct {
	CouplingTime           float64
	DecouplingTime         float64
	RetrofitTimePerWagon   float64
	TrainPreparationTime   float64

	// HaulLengthMax is the maximum total wagon length a single locomotive
	// trip may haul. Zero means "bound only by destination free capacity" —
	// the safe default for scenario files that predate this field.
	HaulLengthMax float64
}
