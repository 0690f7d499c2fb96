package pipeline

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/popupsim/popupsim/internal/domain"
	"github.com/popupsim/popupsim/internal/engine"
	"github.com/popupsim/popupsim/internal/metrics"
	"github.com/popupsim/popupsim/internal/resource"
	"github.com/popupsim/popupsim/internal/rngpool"
	"github.com/popupsim/popupsim/internal/topology"
	"github.com/popupsim/popupsim/internal/track"
	"github.com/popupsim/popupsim/internal/workshop"
)

// Simulation owns every component a run needs and wires the five
// coordinators into its kernel. Construct one per run with New,
// then call Run.
type Simulation struct {
	Kernel   *engine.Kernel
	Scenario *domain.Scenario
	Tracks   *track.Manager
	Shops    *workshop.Manager
	Router   *topology.Router
	RNG      *rngpool.Pool
	Metrics  *metrics.Collector

	locoPool    *resource.Pool
	locomotives map[domain.LocomotiveID]*domain.Locomotive
	wagons      map[domain.WagonID]*domain.Wagon
	homeTrack   domain.TrackID

	qCollected  *engine.Store[*domain.Wagon]
	qOnRetrofit *StageQueue // Coord2 -> Coord3, keyed by retrofit track
	qExit       *StageQueue // Coord3 -> Coord4, keyed by exit track
	qTerminal   *engine.Store[*domain.Wagon]
}

// New builds a Simulation over scn. trackOrder and workshopOrder must be the
// stable declaration order the scenario loader observed.
func New(scn *domain.Scenario, trackOrder domain.TrackOrder, workshopOrder []domain.WorkshopID) *Simulation {
	k := engine.NewKernel()

	s := &Simulation{
		Kernel:      k,
		Scenario:    scn,
		Tracks:      track.NewManager(k, trackOrder, scn.Tracks),
		Shops:       workshop.NewManager(k, workshopOrder, scn.Workshops),
		Router:      topology.NewRouter(topology.NewGraph(scn.Edges)),
		RNG:         rngpool.New(scn.Seed),
		Metrics:     metrics.NewCollector(k),
		locomotives: make(map[domain.LocomotiveID]*domain.Locomotive, len(scn.Locomotives)),
		wagons:      make(map[domain.WagonID]*domain.Wagon),
		qCollected:  engine.NewStore[*domain.Wagon](k, 0),
		qOnRetrofit: NewStageQueue(k),
		qExit:       NewStageQueue(k),
		qTerminal:   engine.NewStore[*domain.Wagon](k, 0),
	}

	s.homeTrack = homeTrackOf(trackOrder, scn.Tracks)

	locoIDs := make([]string, 0, len(scn.Locomotives))
	for _, l := range scn.Locomotives {
		l.CurrentTrackID = s.homeTrack
		s.locomotives[l.ID] = l
		locoIDs = append(locoIDs, string(l.ID))
	}
	s.locoPool = resource.NewPool(k, locoIDs)

	for _, t := range scn.Trains {
		for _, w := range t.Wagons {
			s.wagons[w.ID] = w
		}
	}

	return s
}

// homeTrackOf picks the locomotive fleet's resting track: the first
// HEAD-role track in declaration order, falling back to the first PARKING
// track, falling back to the first track of any role. The Locomotive type
// carries no per-unit home-track field, so one shared home track for the
// whole fleet is the simplest reading that still lets LocoReturnToParking
// mean something concrete.
func homeTrackOf(order domain.TrackOrder, tracks map[domain.TrackID]*domain.Track) domain.TrackID {
	if heads := order.OrderedByRole(tracks, domain.RoleHead); len(heads) > 0 {
		return heads[0]
	}
	if parks := order.OrderedByRole(tracks, domain.RoleParking); len(parks) > 0 {
		return parks[0]
	}
	if len(order) > 0 {
		return order[0]
	}
	panic("pipeline: scenario has no tracks")
}

// Run spawns the five coordinators and advances the kernel to completion.
func (s *Simulation) Run() {
	s.Kernel.Spawn("coord1-arrivals", s.coord1)
	s.Kernel.Spawn("coord2-pickup-to-retrofit", s.coord2)
	s.Kernel.Spawn("coord3-station-and-retrofit", s.coord3)
	s.Kernel.Spawn("coord4-pickup-retrofitted", s.coord4)
	s.Kernel.Spawn("coord5-terminal", s.coord5)
	s.Kernel.RunToCompletion()
}

// Wagon looks up a wagon by id, for report assembly.
func (s *Simulation) Wagon(id domain.WagonID) (*domain.Wagon, bool) {
	w, ok := s.wagons[id]
	return w, ok
}

// Wagons returns every wagon the scenario ever introduced, selected or
// rejected, in no particular order; callers that need determinism should
// sort by ID.
func (s *Simulation) Wagons() []*domain.Wagon {
	out := make([]*domain.Wagon, 0, len(s.wagons))
	for _, w := range s.wagons {
		out = append(out, w)
	}
	return out
}

// LocomotiveIDs returns the fleet's locomotive ids in stable pool
// declaration order, for report assembly.
func (s *Simulation) LocomotiveIDs() []domain.LocomotiveID {
	items := s.locoPool.Items()
	out := make([]domain.LocomotiveID, len(items))
	for i, id := range items {
		out[i] = domain.LocomotiveID(id)
	}
	return out
}

// LocomotiveBusyDuration sums locoID's acquire/release intervals, treating
// a still-open allocation as busy until `until` — the Σ busy intervals term
// of per-locomotive utilisation.
func (s *Simulation) LocomotiveBusyDuration(locoID domain.LocomotiveID, until float64) float64 {
	return s.locoPool.BusyDuration(string(locoID), until)
}

// LocomotiveQueueTime sums how long more than n wagons' hauls were stalled
// waiting for a free locomotive.
func (s *Simulation) LocomotiveQueueTime(n int, until float64) float64 {
	return s.locoPool.TimeWithQueueAbove(n, until)
}

// batchFits reports whether adding candidateLen to a batch already totalling
// totalLen stays within ProcessTimes.HaulLengthMax (Decision D1; 0 means
// unbounded).
func (s *Simulation) batchFits(totalLen, candidateLen decimal.Decimal) bool {
	max := s.Scenario.Process.HaulLengthMax
	if max <= 0 {
		return true
	}
	return totalLen.Add(candidateLen).LessThanOrEqual(decimal.NewFromFloat(max))
}

// moveLoco hauls a locomotive from its current track to dst, recording a
// movement event and updating its current track at each track along the
// route. Used for every empty or loaded repositioning move in the pipeline.
func (s *Simulation) moveLoco(proc *engine.Process, loco *domain.Locomotive, dst domain.TrackID) {
	if loco.CurrentTrackID == dst {
		return
	}
	route, err := s.Router.Route(loco.CurrentTrackID, dst)
	if err != nil {
		panic(fmt.Sprintf("pipeline: %s has no route from %s to %s: %v", loco.ID, loco.CurrentTrackID, dst, err))
	}
	loco.SetStatus(domain.LocoMoving)
	s.Metrics.Record(domain.CategoryLocomotive, "moving", string(loco.ID), map[string]any{
		"from": string(loco.CurrentTrackID), "to": string(dst), "path": route.Path,
	})
	for i := 1; i < len(route.Path); i++ {
		hop, err := s.Router.Route(route.Path[i-1], route.Path[i])
		if err != nil {
			panic(fmt.Sprintf("pipeline: %s has no route from %s to %s: %v", loco.ID, route.Path[i-1], route.Path[i], err))
		}
		proc.Timeout(hop.Time)
		loco.CurrentTrackID = route.Path[i]
	}
}

// releaseLoco returns locoID to the pool per the scenario's delivery
// strategy: STAY_AT_WORKSHOP releases it in place immediately;
// RETURN_TO_PARKING spawns a background trip back to the fleet's home track
// before releasing it, so it cannot be double-booked while still in
// transit.
func (s *Simulation) releaseLoco(proc *engine.Process, locoID string) {
	loco := s.locomotives[domain.LocomotiveID(locoID)]
	if s.Scenario.LocoDeliveryStrategy == domain.LocoStayAtWorkshop {
		loco.SetStatus(domain.LocoParking)
		resource.Release(s.locoPool, proc, locoID)
		return
	}
	s.Kernel.Spawn(fmt.Sprintf("loco-return-%s", locoID), func(rp *engine.Process) {
		s.moveLoco(rp, loco, s.homeTrack)
		loco.SetStatus(domain.LocoParking)
		resource.Release(s.locoPool, rp, locoID)
	})
}
