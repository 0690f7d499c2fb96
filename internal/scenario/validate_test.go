package scenario

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popupsim/popupsim/internal/domain"
)

// validScenario builds a minimal scenario that should pass every check:
// one of each required track role, a workshop pointing at a real track, and
// a connected route graph spanning collection->retrofit->workshop->parking.
func validScenario() (*domain.Scenario, domain.TrackOrder) {
	tracks := map[domain.TrackID]*domain.Track{
		"c1":  {ID: "c1", Role: domain.RoleCollection, Length: dec(100), FillFactor: dec(1)},
		"r1":  {ID: "r1", Role: domain.RoleRetrofit, Length: dec(100), FillFactor: dec(1)},
		"ws1": {ID: "ws1", Role: domain.RoleWorkshop, Length: dec(100), FillFactor: dec(1)},
		"pk1": {ID: "pk1", Role: domain.RoleParking, Length: dec(100), FillFactor: dec(1)},
	}
	order := domain.TrackOrder{"c1", "r1", "ws1", "pk1"}
	scn := &domain.Scenario{
		ID:    "valid-scenario",
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		Tracks: tracks,
		Workshops: map[domain.WorkshopID]*domain.Workshop{
			"w1": {ID: "w1", TrackID: "ws1", RetrofitStations: 1},
		},
		Edges: []domain.RouteEdge{
			{From: "c1", To: "r1", TravelTime: 2, Symmetric: true},
			{From: "r1", To: "ws1", TravelTime: 2, Symmetric: true},
			{From: "ws1", To: "pk1", TravelTime: 2, Symmetric: true},
		},
	}
	return scn, order
}

func TestValidate_AllValid(t *testing.T) {
	scn, order := validScenario()
	result := Validate(scn, order)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.HasErrors())
}

func TestValidate_BadScenarioID(t *testing.T) {
	scn, order := validScenario()
	scn.ID = "has a space"
	result := Validate(scn, order)
	require.True(t, result.HasErrors())
	assertHasError(t, result, "scenario_id")
}

func TestValidate_EndNotAfterStart(t *testing.T) {
	scn, order := validScenario()
	scn.End = scn.Start
	result := Validate(scn, order)
	assertHasError(t, result, "end_date")
}

func TestValidate_NoRetrofitTrack(t *testing.T) {
	scn, order := validScenario()
	delete(scn.Tracks, "r1")
	order = domain.TrackOrder{"c1", "ws1", "pk1"}
	delete(scn.Workshops, "w1") // drop the workshop too so connectivity doesn't also fire spuriously
	result := Validate(scn, order)
	assertHasError(t, result, "tracks")
}

func TestValidate_NonPositiveTrackLength(t *testing.T) {
	scn, order := validScenario()
	scn.Tracks["c1"].Length = dec(0)
	result := Validate(scn, order)
	assertHasError(t, result, "tracks[c1].length")
}

func TestValidate_WorkshopUnknownTrack(t *testing.T) {
	scn, order := validScenario()
	scn.Workshops["w1"].TrackID = "does-not-exist"
	result := Validate(scn, order)
	assertHasError(t, result, "workshops[w1].track_id")
}

func TestValidate_WorkshopZeroStations(t *testing.T) {
	scn, order := validScenario()
	scn.Workshops["w1"].RetrofitStations = 0
	result := Validate(scn, order)
	assertHasError(t, result, "workshops[w1].retrofit_stations")
}

func TestValidate_DisconnectedRoute(t *testing.T) {
	scn, order := validScenario()
	scn.Edges = []domain.RouteEdge{{From: "c1", To: "r1", TravelTime: 2, Symmetric: true}} // ws1/pk1 unreachable
	result := Validate(scn, order)
	assertHasError(t, result, "routes")
}

func TestValidate_DemandWarning(t *testing.T) {
	scn, order := validScenario()
	scn.Tracks["c1"].Length = dec(100) // capacity 100
	w := domain.NewWagon("w1", "t1", dec(90), domain.CouplerScrew, true)
	scn.Trains = []*domain.Train{{ID: "t1", ArrivalTime: 0, Wagons: []*domain.Wagon{w}}}

	result := Validate(scn, order)
	assert.False(t, result.HasErrors())
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "trains", result.Warnings[0].FieldPath)
}

func assertHasError(t *testing.T, result Result, fieldPathPrefix string) {
	t.Helper()
	for _, e := range result.Errors {
		if e.FieldPath == fieldPathPrefix {
			return
		}
	}
	t.Fatalf("expected an error with field path %q, got: %+v", fieldPathPrefix, result.Errors)
}
