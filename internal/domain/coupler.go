package domain

// CouplerType is the wagon's coupling hardware.
type CouplerType string

const (
	CouplerScrew CouplerType = "SCREW"
	CouplerDAC   CouplerType = "DAC"
)

// TrackRole is the functional role a Track plays in the site topology.
type TrackRole string

const (
	RoleCollection TrackRole = "COLLECTION"
	RoleRetrofit   TrackRole = "RETROFIT"
	RoleWorkshop   TrackRole = "WORKSHOP"
	RoleParking    TrackRole = "PARKING"
	RoleFeeder     TrackRole = "FEEDER"
	RoleExit       TrackRole = "EXIT"
	RoleHead       TrackRole = "HEAD"
)

// SelectionStrategy names a policy for choosing among candidate tracks or
// workshops. Modeled as a closed tagged sum, not an open plugin interface.
type SelectionStrategy string

const (
	StrategyLeastOccupied SelectionStrategy = "LEAST_OCCUPIED"
	StrategyRoundRobin    SelectionStrategy = "ROUND_ROBIN"
	StrategyFirstAvail    SelectionStrategy = "FIRST_AVAILABLE"
	StrategyRandom        SelectionStrategy = "RANDOM"
)

// WorkshopSelectionStrategy names a policy for choosing among workshops.
// LEAST_BUSY is the only strategy currently defined.
type WorkshopSelectionStrategy string

const (
	WorkshopStrategyLeastBusy WorkshopSelectionStrategy = "LEAST_BUSY"
)

// LocoDeliveryStrategy governs what a locomotive does once it has delivered
// a batch to a workshop track.
type LocoDeliveryStrategy string

const (
	LocoReturnToParking  LocoDeliveryStrategy = "RETURN_TO_PARKING"
	LocoStayAtWorkshop   LocoDeliveryStrategy = "STAY_AT_WORKSHOP"
)
