package scenario

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/popupsim/popupsim/internal/domain"
)

// LoadError wraps an I/O or parse failure while reading a scenario file
//.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("scenario: reading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads a scenario directory into a domain.Scenario, plus
// the stable declaration order of its tracks and workshops (needed by
// internal/track and internal/workshop to stay map-iteration-free, since
// map iteration order would otherwise make the simulation nondeterministic).
// It does not validate business rules — call Validate on the result.
func Load(dir string) (*domain.Scenario, domain.TrackOrder, []domain.WorkshopID, error) {
	var r root
	if err := readJSON(filepath.Join(dir, "scenario.json"), &r); err != nil {
		return nil, nil, nil, err
	}

	start, err := time.Parse(time.RFC3339, r.StartDate)
	if err != nil {
		return nil, nil, nil, &LoadError{Path: "scenario.json#start_date", Err: err}
	}
	end, err := time.Parse(time.RFC3339, r.EndDate)
	if err != nil {
		return nil, nil, nil, &LoadError{Path: "scenario.json#end_date", Err: err}
	}

	tracks, trackOrder, err := loadTracks(filepath.Join(dir, r.References.Tracks))
	if err != nil {
		return nil, nil, nil, err
	}
	workshops, workshopOrder, err := loadWorkshops(filepath.Join(dir, r.References.Workshops))
	if err != nil {
		return nil, nil, nil, err
	}
	locomotives, err := loadLocomotives(filepath.Join(dir, r.References.Locomotives))
	if err != nil {
		return nil, nil, nil, err
	}
	edges, err := loadEdges(dir, r.References)
	if err != nil {
		return nil, nil, nil, err
	}
	process, err := loadProcessTimes(filepath.Join(dir, r.References.ProcessTimes))
	if err != nil {
		return nil, nil, nil, err
	}
	trains, err := loadTrains(filepath.Join(dir, r.References.Trains))
	if err != nil {
		return nil, nil, nil, err
	}

	scn := &domain.Scenario{
		ID:                        r.ScenarioID,
		Start:                     start,
		End:                       end,
		TrackSelectionStrategy:    domain.SelectionStrategy(r.TrackSelectionStrategy),
		RetrofitSelectionStrategy: domain.SelectionStrategy(r.RetrofitSelectionStrategy),
		LocoDeliveryStrategy:      domain.LocoDeliveryStrategy(r.LocoDeliveryStrategy),
		Trains:                    trains,
		Tracks:                    tracks,
		Workshops:                 workshops,
		Locomotives:               locomotives,
		Edges:                     edges,
		Process:                   process,
		Seed:                      r.Seed,
	}
	return scn, trackOrder, workshopOrder, nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return &LoadError{Path: path, Err: err}
	}
	return nil
}

func loadTracks(path string) (map[domain.TrackID]*domain.Track, domain.TrackOrder, error) {
	var records []trackRecord
	if err := readJSON(path, &records); err != nil {
		return nil, nil, err
	}
	tracks := make(map[domain.TrackID]*domain.Track, len(records))
	order := make(domain.TrackOrder, 0, len(records))
	for _, rec := range records {
		fillFactor := domain.DefaultFillFactor
		if rec.FillFactor != nil {
			fillFactor = decimal.NewFromFloat(*rec.FillFactor)
		}
		id := domain.TrackID(rec.ID)
		tracks[id] = &domain.Track{
			ID:         id,
			Role:       domain.TrackRole(rec.Role),
			Length:     decimal.NewFromFloat(rec.Length),
			FillFactor: fillFactor,
		}
		order = append(order, id)
	}
	return tracks, order, nil
}

func loadWorkshops(path string) (map[domain.WorkshopID]*domain.Workshop, []domain.WorkshopID, error) {
	var records []workshopRecord
	if err := readJSON(path, &records); err != nil {
		return nil, nil, err
	}
	workshops := make(map[domain.WorkshopID]*domain.Workshop, len(records))
	order := make([]domain.WorkshopID, 0, len(records))
	for _, rec := range records {
		id := domain.WorkshopID(rec.WorkshopID)
		workshops[id] = &domain.Workshop{
			ID:               id,
			TrackID:          domain.TrackID(rec.TrackID),
			RetrofitStations: rec.RetrofitStations,
			Name:             rec.Name,
		}
		order = append(order, id)
	}
	return workshops, order, nil
}

func loadLocomotives(path string) ([]*domain.Locomotive, error) {
	var records []locomotiveRecord
	if err := readJSON(path, &records); err != nil {
		return nil, err
	}
	out := make([]*domain.Locomotive, 0, len(records))
	for _, rec := range records {
		loco := domain.NewLocomotive(domain.LocomotiveID(rec.LocomotiveID), "")
		if rec.Status != "" {
			loco.SetStatus(domain.LocomotiveStatus(rec.Status))
		}
		out = append(out, loco)
	}
	return out, nil
}

// loadEdges concatenates the routes and topology reference files, both of
// which share edgeRecord's shape (see types.go doc comment).
func loadEdges(dir string, refs refPaths) ([]domain.RouteEdge, error) {
	var out []domain.RouteEdge
	for _, rel := range []string{refs.Routes, refs.Topology} {
		if rel == "" {
			continue
		}
		var records []edgeRecord
		if err := readJSON(filepath.Join(dir, rel), &records); err != nil {
			return nil, err
		}
		for _, rec := range records {
			symmetric := true
			if rec.Symmetric != nil {
				symmetric = *rec.Symmetric
			}
			out = append(out, domain.RouteEdge{
				From:       domain.TrackID(rec.From),
				To:         domain.TrackID(rec.To),
				TravelTime: rec.TravelTime,
				Symmetric:  symmetric,
			})
		}
	}
	return out, nil
}

func loadProcessTimes(path string) (domain.ProcessTimes, error) {
	var rec processTimesRecord
	if err := readJSON(path, &rec); err != nil {
		return domain.ProcessTimes{}, err
	}
	return domain.ProcessTimes{
		CouplingTime:         rec.CouplingTime,
		DecouplingTime:       rec.DecouplingTime,
		RetrofitTimePerWagon: rec.RetrofitTimePerWagon,
		TrainPreparationTime: rec.TrainPreparationTime,
		HaulLengthMax:        rec.HaulLengthMax,
	}, nil
}

// loadTrains parses the train manifest CSV (header:
// train_id,arrival_time,wagon_id,length,needs_retrofit), grouping rows by
// train_id in first-seen order; rows sharing a train_id share its
// arrival_time. The CSV carries no coupler_type column, so a
// wagon's coupler is inferred from needs_retrofit: true means it currently
// carries a screw coupler (the only kind this workshop retrofits), false
// means it is already DAC-equipped.
func loadTrains(path string) ([]*domain.Train, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}

	trainsByID := make(map[domain.TrainID]*domain.Train)
	var order []*domain.Train

	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &LoadError{Path: path, Err: err}
		}

		trainID := domain.TrainID(rec[col["train_id"]])
		arrival, err := strconv.ParseFloat(rec[col["arrival_time"]], 64)
		if err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("arrival_time: %w", err)}
		}
		length, err := strconv.ParseFloat(rec[col["length"]], 64)
		if err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("length: %w", err)}
		}
		needsRetrofit, err := strconv.ParseBool(rec[col["needs_retrofit"]])
		if err != nil {
			return nil, &LoadError{Path: path, Err: fmt.Errorf("needs_retrofit: %w", err)}
		}

		t, ok := trainsByID[trainID]
		if !ok {
			t = &domain.Train{ID: trainID, ArrivalTime: arrival}
			trainsByID[trainID] = t
			order = append(order, t)
		}

		coupler := domain.CouplerDAC
		if needsRetrofit {
			coupler = domain.CouplerScrew
		}
		wagonID := domain.WagonID(rec[col["wagon_id"]])
		wagon := domain.NewWagon(wagonID, trainID, decimal.NewFromFloat(length), coupler, needsRetrofit)
		wagon.ArrivalTime = arrival
		t.Wagons = append(t.Wagons, wagon)
	}

	return order, nil
}
