package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/mmynk/tandas/internal/models"
)

// ErrInvalidInput is returned for malformed simulation input.
var ErrInvalidInput = errors.New("invalid simulation input")

// DefaultTargetIRR is the annual minimum used when no target is supplied
// (the Aguascalientes market rate).
const DefaultTargetIRR = 0.255

// ScenarioInput bundles everything a single scenario run needs.
type ScenarioInput struct {
	Snapshot models.GroupSnapshot
	Horizon  int
	Params   models.ScenarioParams
	// Target is the annual IRR to compare against; nil uses DefaultTargetIRR.
	Target *float64
	Events []models.SimulationEvent
	Caps   models.Caps
}

// simMember is the ephemeral per-run member state.
type simMember struct {
	position     int
	active       bool
	frozenMonths int
	contributed  float64
	delivered    bool
}

// SimulateScenario runs one scenario month by month and computes its IRR.
//
// Cash flow 0 is the notional principal advanced to the group:
// -floor(members * base * horizon/2). Each month applies that month's events,
// adds active contributions, and awards at most one member when the active
// share meets the threshold. The caller's data is never mutated.
func SimulateScenario(in ScenarioInput) (*models.ScenarioResult, error) {
	n := int(math.Floor(in.Snapshot.TotalMembers))
	if err := validateScenario(in, n); err != nil {
		return nil, err
	}
	caps := in.Caps
	if err := validateCaps(caps); err != nil {
		return nil, err
	}

	members := make([]simMember, n)
	for i := range members {
		members[i] = simMember{position: i + 1, active: true}
	}

	eventsByMonth := make(map[int][]models.SimulationEvent)
	for _, e := range in.Events {
		eventsByMonth[e.Month] = append(eventsByMonth[e.Month], e)
	}

	base := in.Snapshot.MonthlyAmount
	monthly := base * (1 + in.Params.ContributionDelta)
	rescueCap := caps.RescueCapPerMonth * float64(n) * base

	cashFlows := make([]float64, in.Horizon+1)
	cashFlows[0] = -math.Floor(float64(n) * base * float64(in.Horizon) / 2)

	var (
		metrics        models.ScenarioMetrics
		awards         []models.Award
		activeShares   float64
		expectedToDate float64
	)

	for t := 1; t <= in.Horizon; t++ {
		var rescuedThisMonth float64

		for _, e := range eventsByMonth[t] {
			switch e.Kind {
			case models.EventFreeze:
				tryFreeze(members, e.MemberIndex, caps)
			case models.EventUnfreeze:
				members[e.MemberIndex].active = true
			case models.EventChangePrice:
				monthly = e.Amount * (1 + in.Params.ContributionDelta)
			case models.EventRescue:
				if rescuedThisMonth+e.Amount <= rescueCap {
					rescuedThisMonth += e.Amount
					cashFlows[t] += e.Amount
					metrics.RescuesUsed++
				}
			}
		}

		active := 0
		for i := range members {
			if members[i].active {
				active++
				members[i].contributed += monthly
			}
		}
		expectedToDate += monthly
		cashFlows[t] += float64(active) * monthly

		if active < n {
			metrics.DeficitMonths++
		}

		share := float64(active) / float64(n)
		activeShares += share

		if share >= caps.ActiveThreshold {
			if idx := selectAwardee(members, in.Params.Policy, expectedToDate); idx >= 0 {
				members[idx].delivered = true
				awards = append(awards, models.Award{Position: members[idx].position, Month: t})
				metrics.AwardsMade++
				if metrics.FirstAwardMonth == 0 {
					metrics.FirstAwardMonth = t
				}
				metrics.LastAwardMonth = t
			}
		}

		// Frozen time accrues per month; a member who hits the cap is thawed.
		for i := range members {
			if members[i].active {
				continue
			}
			members[i].frozenMonths++
			if members[i].frozenMonths >= caps.FreezeMaxMonths {
				members[i].active = true
			}
		}
	}
	metrics.ActiveShareAvg = activeShares / float64(in.Horizon)

	periodic, err := IRR(cashFlows)
	if err != nil {
		return nil, fmt.Errorf("failed to compute irr: %w", err)
	}

	target := DefaultTargetIRR
	if in.Target != nil {
		target = *in.Target
	}
	irrAnnual := periodic * 12

	return &models.ScenarioResult{
		Params:      in.Params,
		CashFlows:   cashFlows,
		IRRAnnual:   irrAnnual,
		MeetsTarget: irrAnnual >= target,
		Target:      target,
		Metrics:     metrics,
		Awards:      awards,
	}, nil
}

func validateScenario(in ScenarioInput, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: group size must be at least 1", ErrInvalidInput)
	}
	if in.Horizon < 1 {
		return fmt.Errorf("%w: horizon must be at least 1 month", ErrInvalidInput)
	}
	if in.Snapshot.MonthlyAmount <= 0 {
		return fmt.Errorf("%w: monthly amount must be positive", ErrInvalidInput)
	}
	switch in.Params.Policy {
	case models.PolicyFIFO, models.PolicyCompliance, models.PolicyRescue:
	default:
		return fmt.Errorf("%w: unknown priority policy %q", ErrInvalidInput, in.Params.Policy)
	}
	for i, e := range in.Events {
		if e.Month < 1 || e.Month > in.Horizon {
			return fmt.Errorf("%w: event %d month %d outside 1..%d", ErrInvalidInput, i, e.Month, in.Horizon)
		}
		switch e.Kind {
		case models.EventFreeze, models.EventUnfreeze:
			if e.MemberIndex < 0 || e.MemberIndex >= n {
				return fmt.Errorf("%w: event %d member index %d out of range", ErrInvalidInput, i, e.MemberIndex)
			}
		case models.EventRescue:
			if e.Amount <= 0 {
				return fmt.Errorf("%w: event %d rescue amount must be positive", ErrInvalidInput, i)
			}
		case models.EventChangePrice:
			if e.Amount <= 0 {
				return fmt.Errorf("%w: event %d new monthly amount must be positive", ErrInvalidInput, i)
			}
		default:
			return fmt.Errorf("%w: event %d has unknown kind %q", ErrInvalidInput, i, e.Kind)
		}
	}
	return nil
}

func validateCaps(caps models.Caps) error {
	if caps.ActiveThreshold < 0 || caps.ActiveThreshold > 1 {
		return fmt.Errorf("%w: active threshold %v outside 0..1", ErrInvalidInput, caps.ActiveThreshold)
	}
	if caps.FreezeMaxPct < 0 || caps.FreezeMaxPct > 1 {
		return fmt.Errorf("%w: freeze max pct %v outside 0..1", ErrInvalidInput, caps.FreezeMaxPct)
	}
	if caps.FreezeMaxMonths < 0 {
		return fmt.Errorf("%w: freeze max months must be non-negative", ErrInvalidInput)
	}
	if caps.RescueCapPerMonth < 0 {
		return fmt.Errorf("%w: rescue cap must be non-negative", ErrInvalidInput)
	}
	return nil
}

// tryFreeze freezes a member unless that would break a cap. Rejection is silent.
func tryFreeze(members []simMember, idx int, caps models.Caps) {
	m := &members[idx]
	if !m.active || m.frozenMonths >= caps.FreezeMaxMonths {
		return
	}
	frozen := 0
	for i := range members {
		if !members[i].active {
			frozen++
		}
	}
	if float64(frozen+1)/float64(len(members)) > caps.FreezeMaxPct {
		return
	}
	m.active = false
}
