// Package scenario loads a scenario directory into a validated
// domain.Scenario: a root scenario.json plus CSV/JSON reference files.
package scenario

// root mirrors scenario.json's top-level shape.
type root struct {
	ScenarioID                string     `json:"scenario_id"`
	StartDate                 string     `json:"start_date"`
	EndDate                   string     `json:"end_date"`
	TrackSelectionStrategy    string     `json:"track_selection_strategy"`
	RetrofitSelectionStrategy string     `json:"retrofit_selection_strategy"`
	LocoDeliveryStrategy      string     `json:"loco_delivery_strategy"`
	Seed                      int64      `json:"seed"`
	References                refPaths   `json:"references"`
}

// refPaths are file paths, relative to the scenario directory, for every
// referenced file, tracks
// (JSON), workshops (JSON), locomotives (JSON), routes (JSON), topology
// (JSON), process_times (JSON)").
type refPaths struct {
	Trains       string `json:"trains"`
	Tracks       string `json:"tracks"`
	Workshops    string `json:"workshops"`
	Locomotives  string `json:"locomotives"`
	Routes       string `json:"routes"`
	Topology     string `json:"topology"`
	ProcessTimes string `json:"process_times"`
}

// trackRecord is one entry of the tracks reference file.
type trackRecord struct {
	ID         string   `json:"id"`
	Role       string   `json:"role"`
	Length     float64  `json:"length"`
	FillFactor *float64 `json:"fill_factor,omitempty"`
}

// workshopRecord is one entry of the workshops reference file.
type workshopRecord struct {
	WorkshopID       string `json:"workshop_id"`
	TrackID          string `json:"track_id"`
	RetrofitStations int    `json:"retrofit_stations"`
	Name             string `json:"name,omitempty"`
}

// locomotiveRecord is one entry of the locomotives reference file.
type locomotiveRecord struct {
	LocomotiveID string `json:"locomotive_id"`
	Status       string `json:"status,omitempty"`
}

// edgeRecord is one entry of the routes or topology reference file — both
// share this shape.
type edgeRecord struct {
	From       string `json:"from"`
	To         string `json:"to"`
	TravelTime float64 `json:"travel_time"`
	Symmetric  *bool  `json:"symmetric,omitempty"`
}

// processTimesRecord is the process_times reference file.
type processTimesRecord struct {
	CouplingTime         float64 `json:"coupling_time"`
	DecouplingTime       float64 `json:"decoupling_time"`
	RetrofitTimePerWagon float64 `json:"retrofit_time_per_wagon"`
	TrainPreparationTime float64 `json:"train_preparation_time"`
	HaulLengthMax        float64 `json:"haul_length_max,omitempty"`
}
