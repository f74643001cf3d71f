package models

// EventKind enumerates simulator timeline events.
type EventKind string

const (
	EventFreeze      EventKind = "freeze"
	EventUnfreeze    EventKind = "unfreeze"
	EventRescue      EventKind = "rescue"
	EventChangePrice EventKind = "change_price"
)

// SimulationEvent is a discrete event applied at the start of a simulated month.
type SimulationEvent struct {
	// Month is 1..horizon.
	Month int
	Kind  EventKind

	// MemberIndex is the 0-based roster index for freeze/unfreeze.
	MemberIndex int

	// Amount is the injected rescue amount, or the new monthly amount for change_price.
	Amount float64
}

// PriorityPolicy selects which undelivered member is awarded next.
type PriorityPolicy string

const (
	// PolicyFIFO awards the lowest position first.
	PolicyFIFO PriorityPolicy = "fifo"
	// PolicyCompliance awards the highest cumulative contributor first.
	PolicyCompliance PriorityPolicy = "compliance"
	// PolicyRescue awards the member with the largest contribution deficit first.
	PolicyRescue PriorityPolicy = "rescue"
)

// ScenarioParams names one what-if variant.
type ScenarioParams struct {
	Name string
	// ContributionDelta scales the monthly amount, e.g. -0.10, 0, +0.10.
	ContributionDelta float64
	Policy            PriorityPolicy
}

// Caps are the policy guardrails applied during a simulation.
type Caps struct {
	// ActiveThreshold is the minimum active share needed to award in a month.
	ActiveThreshold float64
	// FreezeMaxPct caps the fraction of members frozen at the same time.
	FreezeMaxPct float64
	// FreezeMaxMonths caps the months a single member may spend frozen.
	FreezeMaxMonths int
	// RescueCapPerMonth caps rescue injections per month, as a fraction of the
	// group's nominal monthly total.
	RescueCapPerMonth float64
}

// DefaultCaps returns the stock guardrails.
func DefaultCaps() Caps {
	return Caps{
		ActiveThreshold:   0.8,
		FreezeMaxPct:      0.2,
		FreezeMaxMonths:   2,
		RescueCapPerMonth: 1.0,
	}
}

// GroupSnapshot is the read-only input a simulation runs against.
type GroupSnapshot struct {
	// TotalMembers is floored if fractional.
	TotalMembers  float64
	MonthlyAmount float64
}

// Award is one simulated delivery.
type Award struct {
	// Position is the 1-based roster position of the awarded member.
	Position int
	Month    int
}

// ScenarioMetrics summarizes a simulation run.
type ScenarioMetrics struct {
	DeficitMonths   int
	RescuesUsed     int
	ActiveShareAvg  float64
	AwardsMade      int
	FirstAwardMonth int // 0 when nothing was awarded
	LastAwardMonth  int
}

// ScenarioResult is the outcome of one scenario run.
type ScenarioResult struct {
	Params ScenarioParams

	// CashFlows is indexed by month; index 0 is the initial outflow.
	CashFlows []float64

	IRRAnnual   float64
	MeetsTarget bool
	Target      float64

	Metrics ScenarioMetrics

	// Awards lists deliveries in the order they happened.
	Awards []Award
}
