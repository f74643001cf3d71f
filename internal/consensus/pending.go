package consensus

import (
	"context"
	"fmt"

	"github.com/mmynk/tandas/internal/models"
)

// PendingVote is an open consensus request a member has not voted on yet.
type PendingVote struct {
	GroupID   string
	GroupName string
	Consensus models.ConsensusRequest
	Transfer  models.TransferEvent
}

// PendingVotes lists, across all groups, the open and unexpired consensus
// requests where memberID belongs to the group and has not voted.
func (e *Engine) PendingVotes(ctx context.Context, memberID string) ([]PendingVote, error) {
	groups, err := e.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	now := e.now()
	var pending []PendingVote
	for _, g := range groups {
		if g.FindMember(memberID) == nil {
			continue
		}
		for _, c := range g.Consensus {
			if c.Status != models.ConsensusOpen || now.After(c.ExpiresAt) || c.HasVoted(memberID) {
				continue
			}
			pv := PendingVote{GroupID: g.ID, GroupName: g.Name, Consensus: c}
			if t := g.FindTransfer(c.TransferEventID); t != nil {
				pv.Transfer = *t
			}
			pending = append(pending, pv)
		}
	}
	return pending, nil
}
