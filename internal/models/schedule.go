package models

import "time"

// EntryStatus is the state of a delivery schedule entry.
type EntryStatus string

const (
	EntryPending   EntryStatus = "pending"
	EntryReady     EntryStatus = "ready"
	EntryDelivered EntryStatus = "delivered"
)

// ScheduleEntry is one member's slot in the delivery timetable.
type ScheduleEntry struct {
	// Month is the target award month (1-based).
	Month int

	MemberID       string
	MemberName     string
	MemberPosition int

	// ScheduledDate is derived from the group start date plus (Month-1) months.
	ScheduledDate time.Time

	Status EntryStatus

	// RequiredAmount is the package value needed for the delivery.
	RequiredAmount float64

	// ContributedAmount is what this member has contributed so far.
	ContributedAmount float64

	// RemainingAmount is max(0, RequiredAmount - ContributedAmount).
	RemainingAmount float64

	Notes string
}
