// Package consensus runs the turn-transfer workflow: a member asks to hand
// their delivery turn to another member, peers vote, an operator approves,
// and the transfer is executed against the delivery schedule.
//
// Every operation is applied atomically per group through storage.Repository.
// Policy refusals (duplicate vote, expired consensus, out-of-sequence approval,
// insufficient funds) are reported as a *Rejection on the result, not as an
// error, and leave the group unchanged.
package consensus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tandas/internal/metrics"
	"github.com/mmynk/tandas/internal/models"
	"github.com/mmynk/tandas/internal/storage"
)

var (
	ErrMemberNotFound    = errors.New("member not found")
	ErrConsensusNotFound = errors.New("consensus request not found")
	ErrTransferNotFound  = errors.New("transfer event not found")
	ErrInvalidInput      = errors.New("invalid transfer input")
)

// Rejection describes why an operation was refused.
type Rejection = models.Rejection

// VotingWindow is how long a consensus request stays open.
const VotingWindow = 7 * 24 * time.Hour

// ClosedReason values recorded on rejected consensus requests.
const (
	ReasonExpired  = "expired"
	ReasonNoQuorum = "no quorum"
)

// RequiredApprovals is ceil(0.8 * members), computed in integers.
func RequiredApprovals(members int) int {
	return (4*members + 4) / 5
}

// Engine executes consensus operations against a repository.
type Engine struct {
	repo  *storage.Repository
	now   func() time.Time
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine over repo.
func NewEngine(repo *storage.Repository, opts ...Option) *Engine {
	e := &Engine{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TransferRequest opens a turn transfer from FromMemberID to ToMemberID.
type TransferRequest struct {
	GroupID      string
	FromMemberID string
	ToMemberID   string
	Reason       string
	RequestedBy  string
}

type RequestResult struct {
	TransferEventID   string
	ConsensusID       string
	RequiredApprovals int
	VotingDeadline    time.Time
}

// RequestTransfer creates the transfer event and its open consensus request.
// No financial validation happens here; funds are checked at execution.
func (e *Engine) RequestTransfer(ctx context.Context, req TransferRequest) (*RequestResult, error) {
	if req.FromMemberID == "" || req.ToMemberID == "" {
		return nil, fmt.Errorf("%w: both members are required", ErrInvalidInput)
	}
	if req.FromMemberID == req.ToMemberID {
		return nil, fmt.Errorf("%w: a member cannot transfer a turn to themselves", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}

	var result *RequestResult
	_, err := e.repo.Mutate(ctx, req.GroupID, "transfer_requested", func(g *models.Group) (bool, error) {
		from := g.FindMember(req.FromMemberID)
		if from == nil {
			return false, fmt.Errorf("%w: %s", ErrMemberNotFound, req.FromMemberID)
		}
		to := g.FindMember(req.ToMemberID)
		if to == nil {
			return false, fmt.Errorf("%w: %s", ErrMemberNotFound, req.ToMemberID)
		}

		now := e.now()
		transferID, consensusID := e.newID(), e.newID()
		required := RequiredApprovals(len(g.Members))

		g.Transfers = append(g.Transfers, models.TransferEvent{
			ID:           transferID,
			Type:         models.TransferTurn,
			FromMemberID: from.ClientID,
			ToMemberID:   to.ClientID,
			FromPosition: from.Position,
			ToPosition:   to.Position,
			Reason:       req.Reason,
			RequestedBy:  req.RequestedBy,
			Status:       models.TransferPendingConsensus,
			ConsensusID:  consensusID,
			CreatedAt:    now,
		})
		g.Consensus = append(g.Consensus, models.ConsensusRequest{
			ID:                consensusID,
			TransferEventID:   transferID,
			RequestedAt:       now,
			ExpiresAt:         now.Add(VotingWindow),
			RequiredApprovals: required,
			Status:            models.ConsensusOpen,
		})

		result = &RequestResult{
			TransferEventID:   transferID,
			ConsensusID:       consensusID,
			RequiredApprovals: required,
			VotingDeadline:    now.Add(VotingWindow),
		}
		return true, nil
	})
	record("request", nil, err)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "transfer requested",
		"group_id", req.GroupID,
		"transfer_id", result.TransferEventID,
		"consensus_id", result.ConsensusID,
		"required_approvals", result.RequiredApprovals,
	)
	return result, nil
}

// VoteRequest is one member's ballot on a consensus request.
type VoteRequest struct {
	GroupID     string
	ConsensusID string
	MemberID    string
	Vote        models.VoteChoice
	Reason      string
}

type VoteResult struct {
	CurrentApprovals  int
	RequiredApprovals int
	// ConsensusReached is true only for the vote that moved the request to approved.
	ConsensusReached bool
	Status           models.ConsensusStatus
	Rejection        *Rejection
}

// Vote records a ballot and updates the tally in one step.
func (e *Engine) Vote(ctx context.Context, req VoteRequest) (*VoteResult, error) {
	if !req.Vote.Valid() {
		return nil, fmt.Errorf("%w: unknown vote %q", ErrInvalidInput, req.Vote)
	}

	result := &VoteResult{}
	_, err := e.repo.Mutate(ctx, req.GroupID, "consensus_vote", func(g *models.Group) (bool, error) {
		c := g.FindConsensus(req.ConsensusID)
		if c == nil {
			return false, fmt.Errorf("%w: %s", ErrConsensusNotFound, req.ConsensusID)
		}
		member := g.FindMember(req.MemberID)
		if member == nil {
			return false, fmt.Errorf("%w: %s", ErrMemberNotFound, req.MemberID)
		}
		transfer := g.FindTransfer(c.TransferEventID)
		if transfer == nil {
			return false, fmt.Errorf("%w: %s", ErrTransferNotFound, c.TransferEventID)
		}
		defer func() {
			result.CurrentApprovals = c.CurrentApprovals
			result.RequiredApprovals = c.RequiredApprovals
			result.Status = c.Status
		}()

		now := e.now()
		if e.expireIfDue(c, transfer, now) {
			result.Rejection = &Rejection{
				Code:    models.RejectConsensusExpired,
				Message: fmt.Sprintf("voting closed at %s", c.ExpiresAt.Format(time.RFC3339)),
			}
			return true, nil
		}
		if c.Status != models.ConsensusOpen {
			result.Rejection = &Rejection{
				Code:    models.RejectConsensusClosed,
				Message: fmt.Sprintf("consensus is already %s", c.Status),
			}
			return false, nil
		}
		if c.HasVoted(member.ClientID) {
			result.Rejection = &Rejection{
				Code:    models.RejectDuplicateVote,
				Message: fmt.Sprintf("%s has already voted", member.Name),
			}
			return false, nil
		}

		c.Votes = append(c.Votes, models.ConsensusVote{
			MemberID:   member.ClientID,
			MemberName: member.Name,
			Vote:       req.Vote,
			VotedAt:    now,
			Reason:     req.Reason,
		})
		if req.Vote == models.VoteApprove {
			c.CurrentApprovals++
		}

		switch {
		case c.CurrentApprovals >= c.RequiredApprovals:
			c.Status = models.ConsensusApproved
			result.ConsensusReached = true
		case len(c.Votes) >= len(g.Members):
			c.Status = models.ConsensusRejected
			c.ClosedReason = ReasonNoQuorum
			transfer.Status = models.TransferRejected
		}
		return true, nil
	})
	record("vote", result.Rejection, err)
	if err != nil {
		return nil, err
	}

	if result.ConsensusReached {
		slog.InfoContext(ctx, "consensus reached, awaiting operator approval",
			"group_id", req.GroupID,
			"consensus_id", req.ConsensusID,
			"approvals", result.CurrentApprovals,
		)
	}
	return result, nil
}

// ApprovalRequest is the operator decision on a peer-approved consensus.
type ApprovalRequest struct {
	GroupID           string
	ConsensusID       string
	ApproverID        string
	OperationalReason string
	Approved          bool
	Notes             string
}

type ApprovalResult struct {
	FinalApproval  bool
	CanExecute     bool
	TransferStatus models.TransferStatus
	Rejection      *Rejection
}

// CompanyApproval records the operator decision. Only a peer-approved
// consensus can be decided, and only once.
func (e *Engine) CompanyApproval(ctx context.Context, req ApprovalRequest) (*ApprovalResult, error) {
	if req.ApproverID == "" {
		return nil, fmt.Errorf("%w: approver is required", ErrInvalidInput)
	}

	result := &ApprovalResult{}
	_, err := e.repo.Mutate(ctx, req.GroupID, "company_decision", func(g *models.Group) (bool, error) {
		c := g.FindConsensus(req.ConsensusID)
		if c == nil {
			return false, fmt.Errorf("%w: %s", ErrConsensusNotFound, req.ConsensusID)
		}
		transfer := g.FindTransfer(c.TransferEventID)
		if transfer == nil {
			return false, fmt.Errorf("%w: %s", ErrTransferNotFound, c.TransferEventID)
		}
		defer func() { result.TransferStatus = transfer.Status }()

		now := e.now()
		if e.expireIfDue(c, transfer, now) {
			result.Rejection = &Rejection{
				Code:    models.RejectConsensusExpired,
				Message: "peer vote expired before reaching quorum",
			}
			return true, nil
		}
		if c.CompanyApproval != nil {
			result.Rejection = &Rejection{
				Code:    models.RejectDecisionRecorded,
				Message: fmt.Sprintf("decision already recorded by %s", c.CompanyApproval.ApprovedBy),
			}
			return false, nil
		}
		if c.Status != models.ConsensusApproved {
			result.Rejection = &Rejection{
				Code:    models.RejectConsensusNotApproved,
				Message: fmt.Sprintf("peer consensus is %s", c.Status),
			}
			return false, nil
		}

		c.CompanyApproval = &models.CompanyApproval{
			ApprovedBy:        req.ApproverID,
			ApprovedAt:        now,
			OperationalReason: req.OperationalReason,
			Approved:          req.Approved,
			Notes:             req.Notes,
		}
		if req.Approved {
			transfer.Status = models.TransferApproved
			result.FinalApproval = true
			result.CanExecute = true
			return true, nil
		}

		c.Status = models.ConsensusRejected
		c.ClosedReason = "operator: " + req.OperationalReason
		transfer.Status = models.TransferRejected
		return true, nil
	})
	record("company_approval", result.Rejection, err)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "operator decision processed",
		"group_id", req.GroupID,
		"consensus_id", req.ConsensusID,
		"approver", req.ApproverID,
		"approved", result.FinalApproval,
		"transfer_status", result.TransferStatus,
	)
	return result, nil
}

// expireIfDue closes an open consensus whose window has passed and rejects
// its transfer. It reports whether it changed anything.
func (e *Engine) expireIfDue(c *models.ConsensusRequest, t *models.TransferEvent, now time.Time) bool {
	if c.Status != models.ConsensusOpen || !now.After(c.ExpiresAt) {
		return false
	}
	c.Status = models.ConsensusRejected
	c.ClosedReason = ReasonExpired
	t.Status = models.TransferRejected
	return true
}

func record(operation string, rejection *Rejection, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
	case rejection != nil:
		outcome = metrics.OutcomeRejected
	}
	metrics.ConsensusOperations.WithLabelValues(operation, outcome).Inc()
}
