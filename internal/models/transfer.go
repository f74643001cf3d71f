package models

import "time"

// TransferType is the kind of transfer event. Only turn transfers exist today.
type TransferType string

const TransferTurn TransferType = "turn_transfer"

// TransferStatus moves pending_consensus -> approved -> executed.
// Rejected is terminal and reachable from pending_consensus or approved.
type TransferStatus string

const (
	TransferPendingConsensus TransferStatus = "pending_consensus"
	TransferApproved         TransferStatus = "approved"
	TransferRejected         TransferStatus = "rejected"
	TransferExecuted         TransferStatus = "executed"
)

// TransferEvent records a request to hand one member's delivery turn to another.
type TransferEvent struct {
	ID   string
	Type TransferType

	FromMemberID string
	ToMemberID   string
	FromPosition int
	ToPosition   int

	// Reason is mandatory free text kept for audit.
	Reason string

	// RequestedBy is the actor (advisor or member) that opened the request.
	RequestedBy string

	Status      TransferStatus
	ConsensusID string

	CreatedAt  time.Time
	ExecutedAt time.Time
}

// ConsensusStatus of a peer vote.
type ConsensusStatus string

const (
	ConsensusOpen     ConsensusStatus = "open"
	ConsensusApproved ConsensusStatus = "approved"
	ConsensusRejected ConsensusStatus = "rejected"
)

// VoteChoice is a member's ballot.
type VoteChoice string

const (
	VoteApprove VoteChoice = "approve"
	VoteReject  VoteChoice = "reject"
	VoteAbstain VoteChoice = "abstain"
)

// Valid reports whether v is a known ballot.
func (v VoteChoice) Valid() bool {
	switch v {
	case VoteApprove, VoteReject, VoteAbstain:
		return true
	}
	return false
}

// ConsensusRequest is the time-boxed peer vote gating a transfer.
type ConsensusRequest struct {
	ID              string
	TransferEventID string

	RequestedAt time.Time
	ExpiresAt   time.Time

	RequiredApprovals int
	CurrentApprovals  int

	// Votes holds at most one vote per member.
	Votes []ConsensusVote

	Status ConsensusStatus

	// ClosedReason explains a rejection (no quorum, expired, operator).
	ClosedReason string

	CompanyApproval *CompanyApproval
}

// HasVoted reports whether memberID already has a vote recorded.
func (c *ConsensusRequest) HasVoted(memberID string) bool {
	for _, v := range c.Votes {
		if v.MemberID == memberID {
			return true
		}
	}
	return false
}

// ConsensusVote is one member's recorded ballot.
type ConsensusVote struct {
	MemberID   string
	MemberName string
	Vote       VoteChoice
	VotedAt    time.Time
	Reason     string
}

// CompanyApproval is the operator decision recorded after peer consensus.
type CompanyApproval struct {
	ApprovedBy        string
	ApprovedAt        time.Time
	OperationalReason string
	Approved          bool
	Notes             string
}
