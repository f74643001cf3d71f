// Package tanda manages the group lifecycle: creating groups, filling the
// roster, recording payments, and executing deliveries.
package tanda

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tandas/internal/delivery"
	"github.com/mmynk/tandas/internal/metrics"
	"github.com/mmynk/tandas/internal/models"
	"github.com/mmynk/tandas/internal/ratepolicy"
	"github.com/mmynk/tandas/internal/storage"
)

var (
	ErrInvalidInput   = errors.New("invalid group input")
	ErrGroupFull      = errors.New("group is full")
	ErrMemberNotFound = errors.New("member not found")
)

// DefaultPaymentMethod is recorded when a payment names no method.
const DefaultPaymentMethod = "efectivo"

// Manager runs lifecycle operations against a repository.
type Manager struct {
	repo   *storage.Repository
	policy *ratepolicy.Policy
	now    func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager. The policy validates group markets.
func NewManager(repo *storage.Repository, policy *ratepolicy.Policy, opts ...Option) *Manager {
	m := &Manager{repo: repo, policy: policy, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type CreateGroupParams struct {
	Name         string
	Capacity     int
	PackageValue float64
	StartDate    time.Time
	Market       string
	EcosystemID  string
	Leader       string
}

// CreateGroup creates a forming group. The monthly amount is the package
// value split evenly across the roster, rounded to a whole unit.
func (m *Manager) CreateGroup(ctx context.Context, p CreateGroupParams) (*models.Group, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if p.Capacity < 2 {
		return nil, fmt.Errorf("%w: capacity must be at least 2", ErrInvalidInput)
	}
	if p.PackageValue <= 0 {
		return nil, fmt.Errorf("%w: package value must be positive", ErrInvalidInput)
	}
	market := strings.ToLower(p.Market)
	if market == "" {
		market = m.policy.DefaultMarket
	}
	if _, err := m.policy.Target(market, p.EcosystemID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	start := p.StartDate
	if start.IsZero() {
		start = m.now()
	}

	g := &models.Group{
		Name:          p.Name,
		Capacity:      p.Capacity,
		MonthlyAmount: math.Round(p.PackageValue / float64(p.Capacity)),
		TotalAmount:   p.PackageValue,
		StartDate:     start,
		CurrentMonth:  1,
		Status:        models.GroupForming,
		Market:        market,
		EcosystemID:   p.EcosystemID,
		Leader:        p.Leader,
	}
	err := m.repo.Create(ctx, g)
	record("create_group", err)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (m *Manager) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return m.repo.Get(ctx, groupID)
}

func (m *Manager) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return m.repo.List(ctx)
}

func (m *Manager) DeleteGroup(ctx context.Context, groupID string) error {
	err := m.repo.Delete(ctx, groupID)
	record("delete_group", err)
	return err
}

type AddMemberParams struct {
	GroupID  string
	ClientID string
	Name     string
	// PreferredPosition is used when free; otherwise the first free position is assigned.
	PreferredPosition int
}

// AddMember places a client in the roster. Filling the last slot activates
// the group and generates its delivery schedule.
func (m *Manager) AddMember(ctx context.Context, p AddMemberParams) (*models.Group, int, error) {
	if p.ClientID == "" || strings.TrimSpace(p.Name) == "" {
		return nil, 0, fmt.Errorf("%w: client id and name are required", ErrInvalidInput)
	}

	var position int
	g, err := m.repo.Mutate(ctx, p.GroupID, "member_added", func(g *models.Group) (bool, error) {
		if len(g.Members) >= g.Capacity || g.Status != models.GroupForming {
			return false, fmt.Errorf("%w: %d of %d positions taken", ErrGroupFull, len(g.Members), g.Capacity)
		}
		if g.FindMember(p.ClientID) != nil {
			return false, fmt.Errorf("%w: client %s already in group", ErrInvalidInput, p.ClientID)
		}

		taken := make(map[int]bool, len(g.Members))
		for _, mem := range g.Members {
			taken[mem.Position] = true
		}
		position = p.PreferredPosition
		if position < 1 || position > g.Capacity || taken[position] {
			for i := 1; i <= g.Capacity; i++ {
				if !taken[i] {
					position = i
					break
				}
			}
		}

		g.Members = append(g.Members, models.Member{
			ClientID:            p.ClientID,
			Name:                p.Name,
			Position:            position,
			MonthlyContribution: g.MonthlyAmount,
			DeliveryMonth:       position,
			DeliveryStatus:      models.DeliveryPending,
			Active:              true,
			JoinedAt:            m.now(),
		})
		sortMembers(g.Members)

		if len(g.Members) == g.Capacity {
			g.Status = models.GroupActive
			delivery.Generate(g)
		}
		return true, nil
	})
	record("add_member", err)
	if err != nil {
		return nil, 0, err
	}

	slog.InfoContext(ctx, "member added",
		"group_id", p.GroupID,
		"client_id", p.ClientID,
		"position", position,
		"status", g.Status,
	)
	return g, position, nil
}

type PaymentParams struct {
	GroupID  string
	ClientID string
	Amount   float64
	Method   string
}

type PaymentResult struct {
	Payment  models.Payment
	NewTotal float64
	// EntryStatus is the member's schedule entry status after the payment.
	EntryStatus models.EntryStatus
}

// RecordPayment appends a confirmed payment for the current month and
// refreshes the member's schedule entry.
func (m *Manager) RecordPayment(ctx context.Context, p PaymentParams) (*PaymentResult, error) {
	if p.Amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidInput)
	}
	method := p.Method
	if method == "" {
		method = DefaultPaymentMethod
	}

	result := &PaymentResult{}
	_, err := m.repo.Mutate(ctx, p.GroupID, "payment_recorded", func(g *models.Group) (bool, error) {
		member := g.FindMember(p.ClientID)
		if member == nil {
			return false, fmt.Errorf("%w: %s", ErrMemberNotFound, p.ClientID)
		}

		now := m.now()
		payment := models.Payment{
			ID:       uuid.NewString(),
			MemberID: member.ClientID,
			Amount:   p.Amount,
			Month:    g.CurrentMonth,
			Status:   models.PaymentConfirmed,
			Method:   method,
			PaidAt:   now,
		}
		member.Payments = append(member.Payments, payment)
		member.TotalContributed = decimal.NewFromFloat(member.TotalContributed).
			Add(decimal.NewFromFloat(p.Amount)).InexactFloat64()
		member.LastPayment = now
		delivery.ApplyPayment(g, member)

		result.Payment = payment
		result.NewTotal = member.TotalContributed
		if entry := g.FindScheduleEntry(member.ClientID); entry != nil {
			result.EntryStatus = entry.Status
		}
		return true, nil
	})
	record("record_payment", err)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "payment recorded",
		"group_id", p.GroupID,
		"client_id", p.ClientID,
		"amount", p.Amount,
		"new_total", result.NewTotal,
	)
	return result, nil
}

type DeliveryResult struct {
	DeliveryID      string
	ClientID        string
	Month           int
	DeliveredAmount float64
	DeliveredAt     time.Time
	// Advanced is true when the delivered member was the one due this month.
	Advanced     bool
	CurrentMonth int
	GroupStatus  models.GroupStatus
	Rejection    *models.Rejection
}

// ExecuteDelivery hands the package to a member whose entry is ready.
func (m *Manager) ExecuteDelivery(ctx context.Context, groupID, clientID string) (*DeliveryResult, error) {
	result := &DeliveryResult{ClientID: clientID}
	_, err := m.repo.Mutate(ctx, groupID, "delivery_executed", func(g *models.Group) (bool, error) {
		defer func() {
			result.CurrentMonth = g.CurrentMonth
			result.GroupStatus = g.Status
		}()
		if entry := g.FindScheduleEntry(clientID); entry != nil {
			result.Month = entry.Month
		}

		advanced, err := delivery.Deliver(g, clientID)
		switch {
		case errors.Is(err, delivery.ErrNotReady):
			result.Rejection = &models.Rejection{Code: models.RejectNotReady, Message: err.Error()}
			return false, nil
		case errors.Is(err, delivery.ErrEntryNotFound):
			return false, fmt.Errorf("%w: %s", ErrMemberNotFound, clientID)
		case err != nil:
			return false, err
		}

		result.DeliveryID = uuid.NewString()
		result.DeliveredAmount = g.TotalAmount
		result.DeliveredAt = m.now()
		result.Advanced = advanced
		return true, nil
	})
	record("execute_delivery", err)
	if err != nil {
		return nil, err
	}

	if result.Rejection == nil {
		slog.InfoContext(ctx, "delivery executed",
			"group_id", groupID,
			"client_id", clientID,
			"month", result.Month,
			"current_month", result.CurrentMonth,
		)
	}
	return result, nil
}

func sortMembers(members []models.Member) {
	sort.Slice(members, func(i, j int) bool { return members[i].Position < members[j].Position })
}

func record(operation string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.GroupOperations.WithLabelValues(operation, outcome).Inc()
}
