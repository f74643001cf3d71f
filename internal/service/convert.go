package service

import (
	"github.com/mmynk/tandas/internal/consensus"
	"github.com/mmynk/tandas/internal/models"
	"github.com/mmynk/tandas/pkg/api"
)

func groupToAPI(g *models.Group) *api.Group {
	out := &api.Group{
		ID:            g.ID,
		Name:          g.Name,
		Capacity:      g.Capacity,
		MonthlyAmount: g.MonthlyAmount,
		TotalAmount:   g.TotalAmount,
		StartDate:     g.StartDate,
		CurrentMonth:  g.CurrentMonth,
		Status:        string(g.Status),
		Market:        g.Market,
		EcosystemID:   g.EcosystemID,
		Leader:        g.Leader,
		Members:       make([]api.Member, len(g.Members)),
		Schedule:      scheduleToAPI(g.Schedule),
		CreatedAt:     g.CreatedAt,
	}
	for i, m := range g.Members {
		out.Members[i] = memberToAPI(m)
	}
	for _, t := range g.Transfers {
		out.Transfers = append(out.Transfers, transferToAPI(t))
	}
	for _, c := range g.Consensus {
		out.Consensus = append(out.Consensus, consensusToAPI(c))
	}
	return out
}

func memberToAPI(m models.Member) api.Member {
	out := api.Member{
		ClientID:            m.ClientID,
		Name:                m.Name,
		Position:            m.Position,
		MonthlyContribution: m.MonthlyContribution,
		TotalContributed:    m.TotalContributed,
		DeliveryMonth:       m.DeliveryMonth,
		DeliveryStatus:      string(m.DeliveryStatus),
		Active:              m.Active,
		JoinedAt:            m.JoinedAt,
	}
	for _, p := range m.Payments {
		out.Payments = append(out.Payments, paymentToAPI(p))
	}
	return out
}

func paymentToAPI(p models.Payment) api.Payment {
	return api.Payment{
		ID:     p.ID,
		Amount: p.Amount,
		Month:  p.Month,
		Status: string(p.Status),
		Method: p.Method,
		PaidAt: p.PaidAt,
	}
}

func scheduleToAPI(entries []models.ScheduleEntry) []api.ScheduleEntry {
	out := make([]api.ScheduleEntry, len(entries))
	for i, e := range entries {
		out[i] = api.ScheduleEntry{
			Month:             e.Month,
			MemberID:          e.MemberID,
			MemberName:        e.MemberName,
			MemberPosition:    e.MemberPosition,
			ScheduledDate:     e.ScheduledDate,
			Status:            string(e.Status),
			RequiredAmount:    e.RequiredAmount,
			ContributedAmount: e.ContributedAmount,
			RemainingAmount:   e.RemainingAmount,
			Notes:             e.Notes,
		}
	}
	return out
}

func transferToAPI(t models.TransferEvent) api.Transfer {
	return api.Transfer{
		ID:           t.ID,
		FromMemberID: t.FromMemberID,
		ToMemberID:   t.ToMemberID,
		FromPosition: t.FromPosition,
		ToPosition:   t.ToPosition,
		Reason:       t.Reason,
		RequestedBy:  t.RequestedBy,
		Status:       string(t.Status),
		ConsensusID:  t.ConsensusID,
		CreatedAt:    t.CreatedAt,
		ExecutedAt:   t.ExecutedAt,
	}
}

func consensusToAPI(c models.ConsensusRequest) api.Consensus {
	out := api.Consensus{
		ID:                c.ID,
		TransferEventID:   c.TransferEventID,
		RequestedAt:       c.RequestedAt,
		ExpiresAt:         c.ExpiresAt,
		RequiredApprovals: c.RequiredApprovals,
		CurrentApprovals:  c.CurrentApprovals,
		Status:            string(c.Status),
		ClosedReason:      c.ClosedReason,
	}
	for _, v := range c.Votes {
		out.Votes = append(out.Votes, api.Vote{
			MemberID:   v.MemberID,
			MemberName: v.MemberName,
			Vote:       string(v.Vote),
			VotedAt:    v.VotedAt,
			Reason:     v.Reason,
		})
	}
	if ca := c.CompanyApproval; ca != nil {
		out.CompanyApproval = &api.CompanyApproval{
			ApprovedBy:        ca.ApprovedBy,
			ApprovedAt:        ca.ApprovedAt,
			OperationalReason: ca.OperationalReason,
			Approved:          ca.Approved,
			Notes:             ca.Notes,
		}
	}
	return out
}

func pendingToAPI(p consensus.PendingVote) api.PendingVote {
	return api.PendingVote{
		GroupID:   p.GroupID,
		GroupName: p.GroupName,
		Consensus: consensusToAPI(p.Consensus),
		Transfer:  transferToAPI(p.Transfer),
	}
}

// capsFromAPI overlays the supplied fields of c onto fallback.
func capsFromAPI(c *api.Caps, fallback models.Caps) models.Caps {
	caps := fallback
	if c == nil {
		return caps
	}
	if c.ActiveThreshold != nil {
		caps.ActiveThreshold = *c.ActiveThreshold
	}
	if c.FreezeMaxPct != nil {
		caps.FreezeMaxPct = *c.FreezeMaxPct
	}
	if c.FreezeMaxMonths != nil {
		caps.FreezeMaxMonths = *c.FreezeMaxMonths
	}
	if c.RescueCapPerMonth != nil {
		caps.RescueCapPerMonth = *c.RescueCapPerMonth
	}
	return caps
}

func eventsFromAPI(events []api.SimulationEvent) []models.SimulationEvent {
	out := make([]models.SimulationEvent, len(events))
	for i, e := range events {
		out[i] = models.SimulationEvent{
			Month:       e.Month,
			Kind:        models.EventKind(e.Kind),
			MemberIndex: e.MemberIndex,
			Amount:      e.Amount,
		}
	}
	return out
}

func scenarioToAPI(r models.ScenarioResult) api.ScenarioResult {
	out := api.ScenarioResult{
		Name:              r.Params.Name,
		ContributionDelta: r.Params.ContributionDelta,
		Policy:            string(r.Params.Policy),
		CashFlows:         r.CashFlows,
		IRRAnnual:         r.IRRAnnual,
		MeetsTarget:       r.MeetsTarget,
		Target:            r.Target,
		Metrics: api.ScenarioMetrics{
			DeficitMonths:   r.Metrics.DeficitMonths,
			RescuesUsed:     r.Metrics.RescuesUsed,
			ActiveShareAvg:  r.Metrics.ActiveShareAvg,
			AwardsMade:      r.Metrics.AwardsMade,
			FirstAwardMonth: r.Metrics.FirstAwardMonth,
			LastAwardMonth:  r.Metrics.LastAwardMonth,
		},
		Awards: make([]api.Award, len(r.Awards)),
	}
	for i, a := range r.Awards {
		out.Awards[i] = api.Award{Position: a.Position, Month: a.Month}
	}
	return out
}
