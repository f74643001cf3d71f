// Package delivery maintains a group's delivery timetable: one schedule entry
// per member with its target month, status and funding progress.
package delivery

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tandas/internal/models"
)

var (
	// ErrEntryNotFound is returned when a member has no schedule entry.
	ErrEntryNotFound = errors.New("schedule entry not found")

	// ErrNotReady is returned when delivering an entry that is not ready.
	ErrNotReady = errors.New("member not ready for delivery")
)

// Generate rebuilds the schedule from the roster. Each member is scheduled
// at their delivery month; entries at or before the current month start ready.
func Generate(g *models.Group) {
	schedule := make([]models.ScheduleEntry, 0, len(g.Members))
	for i := range g.Members {
		m := &g.Members[i]
		month := m.DeliveryMonth
		if month == 0 {
			month = m.Position
			m.DeliveryMonth = month
		}

		status := models.EntryPending
		if month <= g.CurrentMonth {
			status = models.EntryReady
			if m.DeliveryStatus == models.DeliveryPending {
				m.DeliveryStatus = models.DeliveryScheduled
			}
		}
		if m.DeliveryStatus == models.DeliveryDelivered {
			status = models.EntryDelivered
		}

		schedule = append(schedule, models.ScheduleEntry{
			Month:             month,
			MemberID:          m.ClientID,
			MemberName:        m.Name,
			MemberPosition:    m.Position,
			ScheduledDate:     g.MonthDate(month),
			Status:            status,
			RequiredAmount:    g.TotalAmount,
			ContributedAmount: m.TotalContributed,
			RemainingAmount:   remaining(g.TotalAmount, m.TotalContributed),
		})
	}
	g.Schedule = schedule
	Sort(g.Schedule)
}

// Sort orders entries by month, keeping the existing order for equal months.
func Sort(schedule []models.ScheduleEntry) {
	sort.SliceStable(schedule, func(i, j int) bool {
		return schedule[i].Month < schedule[j].Month
	})
}

// ApplyPayment refreshes the member's entry after their cumulative
// contribution changed. A pending entry that is fully funded becomes ready.
func ApplyPayment(g *models.Group, m *models.Member) {
	entry := g.FindScheduleEntry(m.ClientID)
	if entry == nil {
		return
	}
	entry.ContributedAmount = m.TotalContributed
	entry.RemainingAmount = remaining(g.TotalAmount, m.TotalContributed)
	if entry.RemainingAmount == 0 && entry.Status == models.EntryPending {
		entry.Status = models.EntryReady
		m.DeliveryStatus = models.DeliveryScheduled
	}
}

// Deliver marks a ready entry delivered. When the member was the one due this
// month the group advances; it completes once every month has passed.
// It reports whether the current month advanced.
func Deliver(g *models.Group, clientID string) (bool, error) {
	m := g.FindMember(clientID)
	entry := g.FindScheduleEntry(clientID)
	if m == nil || entry == nil {
		return false, fmt.Errorf("%w: member %s", ErrEntryNotFound, clientID)
	}
	if entry.Status != models.EntryReady {
		return false, fmt.Errorf("%w: entry is %s", ErrNotReady, entry.Status)
	}

	m.DeliveryStatus = models.DeliveryDelivered
	entry.Status = models.EntryDelivered

	if m.DeliveryMonth != g.CurrentMonth {
		return false, nil
	}
	g.CurrentMonth++
	if g.CurrentMonth > g.Capacity && g.Status.CanTransitionTo(models.GroupCompleted) {
		g.Status = models.GroupCompleted
	}
	return true, nil
}

// Reassign hands the next delivery turn to receiver and pushes the ceding
// member one month behind it. Both entries move and the schedule is re-sorted.
func Reassign(g *models.Group, receiverID, cederID string) error {
	receiver := g.FindMember(receiverID)
	ceder := g.FindMember(cederID)
	if receiver == nil || ceder == nil {
		return fmt.Errorf("%w: transfer members %s -> %s", ErrEntryNotFound, cederID, receiverID)
	}
	receiverEntry := g.FindScheduleEntry(receiverID)
	cederEntry := g.FindScheduleEntry(cederID)
	if receiverEntry == nil || cederEntry == nil {
		return fmt.Errorf("%w: transfer members %s -> %s", ErrEntryNotFound, cederID, receiverID)
	}

	receiver.DeliveryMonth = g.CurrentMonth + 1
	receiver.DeliveryStatus = models.DeliveryScheduled
	receiverEntry.Month = receiver.DeliveryMonth
	receiverEntry.ScheduledDate = g.MonthDate(receiverEntry.Month)
	receiverEntry.Status = models.EntryReady

	ceder.DeliveryMonth = g.CurrentMonth + 2
	ceder.DeliveryStatus = models.DeliveryPending
	cederEntry.Month = ceder.DeliveryMonth
	cederEntry.ScheduledDate = g.MonthDate(cederEntry.Month)
	cederEntry.Status = models.EntryPending

	Sort(g.Schedule)
	return nil
}

// Project turns simulated awards into a what-if schedule without touching g.
// Members awarded in the simulation take their award month; the rest are
// queued after the last award in position order.
func Project(g *models.Group, awards []models.Award) []models.ScheduleEntry {
	awardMonth := make(map[int]int, len(awards))
	last := 0
	for _, a := range awards {
		awardMonth[a.Position] = a.Month
		if a.Month > last {
			last = a.Month
		}
	}

	projected := make([]models.ScheduleEntry, 0, len(g.Members))
	next := last
	for _, m := range g.Members {
		month, ok := awardMonth[m.Position]
		if !ok {
			next++
			month = next
		}
		projected = append(projected, models.ScheduleEntry{
			Month:             month,
			MemberID:          m.ClientID,
			MemberName:        m.Name,
			MemberPosition:    m.Position,
			ScheduledDate:     g.MonthDate(month),
			Status:            models.EntryPending,
			RequiredAmount:    g.TotalAmount,
			ContributedAmount: m.TotalContributed,
			RemainingAmount:   remaining(g.TotalAmount, m.TotalContributed),
			Notes:             "projected",
		})
	}
	Sort(projected)
	return projected
}

// Fund is the group's pooled money: every member's cumulative contribution.
func Fund(g *models.Group) decimal.Decimal {
	total := decimal.Zero
	for _, m := range g.Members {
		total = total.Add(decimal.NewFromFloat(m.TotalContributed))
	}
	return total
}

// Upcoming returns entries that are ready, or pending and due by next month.
func Upcoming(g *models.Group) []models.ScheduleEntry {
	var out []models.ScheduleEntry
	for _, e := range g.Schedule {
		if e.Status == models.EntryReady || (e.Status == models.EntryPending && e.Month <= g.CurrentMonth+1) {
			out = append(out, e)
		}
	}
	return out
}

func remaining(required, contributed float64) float64 {
	r := decimal.NewFromFloat(required).Sub(decimal.NewFromFloat(contributed))
	if r.IsNegative() {
		return 0
	}
	return r.InexactFloat64()
}
