package scenario

import (
	"fmt"
	"regexp"

	"github.com/popupsim/popupsim/internal/domain"
	"github.com/popupsim/popupsim/internal/topology"
)

var scenarioIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)

// Check is one named validation finding: a field path, a human message, and
// a suggested fix. Modeled in the ordered-accumulation style of kat-co/vala.
type Check struct {
	FieldPath  string
	Message    string
	Suggestion string
}

// Result accumulates every failing check from a Validate call. Errors abort
// the run; Warnings are reported but not fatal.
type Result struct {
	Errors   []Check
	Warnings []Check
}

// HasErrors reports whether the scenario must abort before simulating.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

type checker struct {
	result Result
}

func (c *checker) require(ok bool, fieldPath, message, suggestion string) {
	if !ok {
		c.result.Errors = append(c.result.Errors, Check{fieldPath, message, suggestion})
	}
}

func (c *checker) warn(ok bool, fieldPath, message, suggestion string) {
	if !ok {
		c.result.Warnings = append(c.result.Warnings, Check{fieldPath, message, suggestion})
	}
}

// Validate runs every fail-before-simulation-starts rule against a loaded
// scenario, plus a demand-projection warning.
func Validate(scn *domain.Scenario, trackOrder domain.TrackOrder) Result {
	c := &checker{}

	c.require(scenarioIDPattern.MatchString(scn.ID), "scenario_id",
		"scenario_id must match ^[A-Za-z0-9_-]{1,50}$", "use only letters, digits, '_' and '-', up to 50 characters")
	c.require(scn.End.After(scn.Start), "end_date",
		"end_date must be after start_date", "check the scenario's start_date/end_date pair")

	retrofitTracks := trackOrder.OrderedByRole(scn.Tracks, domain.RoleRetrofit)
	c.require(len(retrofitTracks) > 0, "tracks",
		"at least one RETROFIT-role track is required", "add a track with role=RETROFIT to the tracks reference file")

	for _, id := range trackOrder {
		t := scn.Tracks[id]
		c.require(t.Length.IsPositive(), fmt.Sprintf("tracks[%s].length", id),
			"track length must be > 0", "set length to a positive value")
	}

	for id, ws := range scn.Workshops {
		if _, ok := scn.Tracks[ws.TrackID]; !ok {
			c.require(false, fmt.Sprintf("workshops[%s].track_id", id),
				fmt.Sprintf("track_id %q does not exist", ws.TrackID), "point track_id at a declared track")
		}
		c.require(ws.RetrofitStations > 0, fmt.Sprintf("workshops[%s].retrofit_stations", id),
			"retrofit_stations must be > 0", "set retrofit_stations to at least 1")
	}

	c.checkConnectivity(scn, trackOrder)
	c.checkDemand(scn, trackOrder)

	return c.result
}

// checkConnectivity verifies the route graph connects every stage boundary
// the pipeline needs to traverse: collection->retrofit, retrofit->workshop,
// workshop->parking pairs").
func (c *checker) checkConnectivity(scn *domain.Scenario, trackOrder domain.TrackOrder) {
	router := topology.NewRouter(topology.NewGraph(scn.Edges))

	collection := trackOrder.OrderedByRole(scn.Tracks, domain.RoleCollection)
	retrofit := trackOrder.OrderedByRole(scn.Tracks, domain.RoleRetrofit)
	parking := trackOrder.OrderedByRole(scn.Tracks, domain.RoleParking)

	workshopTracks := make([]domain.TrackID, 0, len(scn.Workshops))
	for _, ws := range scn.Workshops {
		if _, ok := scn.Tracks[ws.TrackID]; ok {
			workshopTracks = append(workshopTracks, ws.TrackID)
		}
	}

	stages := []struct {
		name        string
		from, to    []domain.TrackID
	}{
		{"collection->retrofit", collection, retrofit},
		{"retrofit->workshop", retrofit, workshopTracks},
		{"workshop->parking", workshopTracks, parking},
	}

	for _, stage := range stages {
		for _, from := range stage.from {
			for _, to := range stage.to {
				if _, err := router.Route(from, to); err != nil {
					c.require(false, "routes",
						fmt.Sprintf("no route from %s to %s (%s)", from, to, stage.name),
						"add edges connecting every track on each side of this stage boundary")
				}
			}
		}
	}
}

// checkDemand warns (non-fatal) when the total length of wagons expected to
// need retrofitting exceeds 80% of total COLLECTION track capacity").
func (c *checker) checkDemand(scn *domain.Scenario, trackOrder domain.TrackOrder) {
	totalCapacity := 0.0
	for _, id := range trackOrder.OrderedByRole(scn.Tracks, domain.RoleCollection) {
		cap64, _ := scn.Tracks[id].Capacity().Float64()
		totalCapacity += cap64
	}
	if totalCapacity == 0 {
		return
	}

	demand := 0.0
	for _, t := range scn.Trains {
		for _, w := range t.Wagons {
			if w.NeedsConversion() {
				l, _ := w.Length.Float64()
				demand += l
			}
		}
	}

	c.warn(demand <= 0.8*totalCapacity, "trains",
		"projected retrofit demand exceeds 80% of total collection-track capacity",
		"add collection-track capacity or spread train arrivals further apart")
}
