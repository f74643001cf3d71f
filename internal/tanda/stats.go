package tanda

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tandas/internal/delivery"
	"github.com/mmynk/tandas/internal/models"
)

// Stats summarizes every stored group.
type Stats struct {
	ActiveGroups        int
	TotalMembers        int
	CompletedDeliveries int
	PendingDeliveries   int
	// TotalValue is the package value committed across all rosters.
	TotalValue float64
	// FundsCollected is the sum of every member's contributions.
	FundsCollected float64
}

func (m *Manager) Stats(ctx context.Context) (*Stats, error) {
	groups, err := m.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	value, collected := decimal.Zero, decimal.Zero
	for _, g := range groups {
		if g.Status == models.GroupActive {
			stats.ActiveGroups++
		}
		stats.TotalMembers += len(g.Members)
		for _, mem := range g.Members {
			if mem.DeliveryStatus == models.DeliveryDelivered {
				stats.CompletedDeliveries++
			} else {
				stats.PendingDeliveries++
			}
		}
		value = value.Add(decimal.NewFromFloat(g.TotalAmount).Mul(decimal.NewFromInt(int64(len(g.Members)))))
		collected = collected.Add(delivery.Fund(g))
	}
	stats.TotalValue = value.InexactFloat64()
	stats.FundsCollected = collected.InexactFloat64()
	return stats, nil
}

// UpcomingDelivery is a schedule entry that is ready or due by next month.
type UpcomingDelivery struct {
	GroupID          string
	GroupName        string
	MemberID         string
	MemberName       string
	Month            int
	ScheduledDate    time.Time
	ReadyForDelivery bool
}

// UpcomingDeliveries lists upcoming entries across groups, earliest first.
func (m *Manager) UpcomingDeliveries(ctx context.Context) ([]UpcomingDelivery, error) {
	groups, err := m.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []UpcomingDelivery
	for _, g := range groups {
		for _, e := range delivery.Upcoming(g) {
			out = append(out, UpcomingDelivery{
				GroupID:          g.ID,
				GroupName:        g.Name,
				MemberID:         e.MemberID,
				MemberName:       e.MemberName,
				Month:            e.Month,
				ScheduledDate:    e.ScheduledDate,
				ReadyForDelivery: e.Status == models.EntryReady,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledDate.Before(out[j].ScheduledDate)
	})
	return out, nil
}
