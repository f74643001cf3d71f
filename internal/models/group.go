package models

import "time"

// GroupStatus is the lifecycle status of a tanda group.
// Transitions only move forward: forming -> active -> completed.
type GroupStatus string

const (
	GroupForming   GroupStatus = "forming"
	GroupActive    GroupStatus = "active"
	GroupCompleted GroupStatus = "completed"
)

var groupStatusRank = map[GroupStatus]int{
	GroupForming:   0,
	GroupActive:    1,
	GroupCompleted: 2,
}

// CanTransitionTo reports whether moving from s to next keeps the lifecycle monotonic.
func (s GroupStatus) CanTransitionTo(next GroupStatus) bool {
	cur, ok := groupStatusRank[s]
	if !ok {
		return false
	}
	n, ok := groupStatusRank[next]
	return ok && n >= cur
}

// Group represents a tanda: a fixed-capacity roster saving toward a shared package.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Ruta Centro EdoMex").
	Name string

	// Capacity is the number of member slots (positions 1..Capacity).
	Capacity int

	// MonthlyAmount is the contribution each member pays per month.
	MonthlyAmount float64

	// TotalAmount is the package value required for one delivery.
	TotalAmount float64

	// StartDate anchors the delivery calendar; month N is StartDate + (N-1) months.
	StartDate time.Time

	// CurrentMonth is the 1-based month index. It only moves forward.
	CurrentMonth int

	Status GroupStatus

	// Market selects the rate policy (e.g., "aguascalientes", "edomex").
	Market string

	// EcosystemID identifies the route/ecosystem for risk premiums.
	EcosystemID string

	// Leader is the client ID of the group organizer.
	Leader string

	// Members is ordered by Position.
	Members []Member

	// Schedule holds one entry per member, sorted by month.
	Schedule []ScheduleEntry

	Transfers []TransferEvent
	Consensus []ConsensusRequest

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// DeliveryStatus tracks a member's award state.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryScheduled DeliveryStatus = "scheduled"
	DeliveryDelivered DeliveryStatus = "delivered"
)

// Member is one participant of a group.
type Member struct {
	// ClientID identifies the member's client record.
	ClientID string

	Name string

	// Position is unique within the group, 1..Capacity.
	Position int

	MonthlyContribution float64

	// TotalContributed only grows, except when a simulation resets its own working copy.
	TotalContributed float64

	DeliveryMonth  int
	DeliveryStatus DeliveryStatus

	// Active is false while the member is frozen.
	Active bool

	// FrozenMonths counts months spent frozen so far.
	FrozenMonths int

	JoinedAt    time.Time
	LastPayment time.Time

	// Payments is append-only.
	Payments []Payment
}

// PaymentStatus is the settlement state of a recorded payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment is one contribution in a member's history.
type Payment struct {
	ID       string
	MemberID string
	Amount   float64
	// Month is the group month the payment was recorded in.
	Month  int
	Status PaymentStatus
	// Method is free-form ("efectivo", "spei", "transferencia", "tarjeta").
	Method string
	PaidAt time.Time
}

// FindMember returns the member with the given client ID, or nil.
func (g *Group) FindMember(clientID string) *Member {
	for i := range g.Members {
		if g.Members[i].ClientID == clientID {
			return &g.Members[i]
		}
	}
	return nil
}

// FindScheduleEntry returns the schedule entry for a member, or nil.
func (g *Group) FindScheduleEntry(clientID string) *ScheduleEntry {
	for i := range g.Schedule {
		if g.Schedule[i].MemberID == clientID {
			return &g.Schedule[i]
		}
	}
	return nil
}

// FindTransfer returns the transfer event with the given ID, or nil.
func (g *Group) FindTransfer(id string) *TransferEvent {
	for i := range g.Transfers {
		if g.Transfers[i].ID == id {
			return &g.Transfers[i]
		}
	}
	return nil
}

// FindConsensus returns the consensus request with the given ID, or nil.
func (g *Group) FindConsensus(id string) *ConsensusRequest {
	for i := range g.Consensus {
		if g.Consensus[i].ID == id {
			return &g.Consensus[i]
		}
	}
	return nil
}

// MonthDate returns the calendar date of the given 1-based group month.
func (g *Group) MonthDate(month int) time.Time {
	return g.StartDate.AddDate(0, month-1, 0)
}

// Clone returns a deep copy of the group. Stores hand out clones so a
// rejected operation never leaks partial mutations.
func (g *Group) Clone() *Group {
	c := *g
	c.Members = make([]Member, len(g.Members))
	for i, m := range g.Members {
		m.Payments = append([]Payment(nil), m.Payments...)
		c.Members[i] = m
	}
	c.Schedule = append([]ScheduleEntry(nil), g.Schedule...)
	c.Transfers = append([]TransferEvent(nil), g.Transfers...)
	c.Consensus = make([]ConsensusRequest, len(g.Consensus))
	for i, cr := range g.Consensus {
		cr.Votes = append([]ConsensusVote(nil), cr.Votes...)
		if cr.CompanyApproval != nil {
			ca := *cr.CompanyApproval
			cr.CompanyApproval = &ca
		}
		c.Consensus[i] = cr
	}
	return &c
}
