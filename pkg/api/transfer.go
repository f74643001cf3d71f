package api

import "time"

type Transfer struct {
	ID           string    `json:"id"`
	FromMemberID string    `json:"from_member_id"`
	ToMemberID   string    `json:"to_member_id"`
	FromPosition int       `json:"from_position"`
	ToPosition   int       `json:"to_position"`
	Reason       string    `json:"reason"`
	RequestedBy  string    `json:"requested_by"`
	Status       string    `json:"status"`
	ConsensusID  string    `json:"consensus_id"`
	CreatedAt    time.Time `json:"created_at"`
	ExecutedAt   time.Time `json:"executed_at"`
}

type Vote struct {
	MemberID   string    `json:"member_id"`
	MemberName string    `json:"member_name"`
	Vote       string    `json:"vote"`
	VotedAt    time.Time `json:"voted_at"`
	Reason     string    `json:"reason,omitempty"`
}

type CompanyApproval struct {
	ApprovedBy        string    `json:"approved_by"`
	ApprovedAt        time.Time `json:"approved_at"`
	OperationalReason string    `json:"operational_reason"`
	Approved          bool      `json:"approved"`
	Notes             string    `json:"notes,omitempty"`
}

type Consensus struct {
	ID                string           `json:"id"`
	TransferEventID   string           `json:"transfer_event_id"`
	RequestedAt       time.Time        `json:"requested_at"`
	ExpiresAt         time.Time        `json:"expires_at"`
	RequiredApprovals int              `json:"required_approvals"`
	CurrentApprovals  int              `json:"current_approvals"`
	Votes             []Vote           `json:"votes,omitempty"`
	Status            string           `json:"status"`
	ClosedReason      string           `json:"closed_reason,omitempty"`
	CompanyApproval   *CompanyApproval `json:"company_approval,omitempty"`
}

type RequestTransferRequest struct {
	GroupID      string `json:"group_id"`
	FromMemberID string `json:"from_member_id"`
	ToMemberID   string `json:"to_member_id"`
	Reason       string `json:"reason"`
	// RequestedBy defaults to the authenticated actor.
	RequestedBy string `json:"requested_by,omitempty"`
}

type RequestTransferResponse struct {
	TransferEventID   string    `json:"transfer_event_id"`
	ConsensusID       string    `json:"consensus_id"`
	RequiredApprovals int       `json:"required_approvals"`
	VotingDeadline    time.Time `json:"voting_deadline"`
}

type VoteOnTransferRequest struct {
	GroupID     string `json:"group_id"`
	ConsensusID string `json:"consensus_id"`
	// MemberID defaults to the authenticated actor.
	MemberID string `json:"member_id,omitempty"`
	Vote     string `json:"vote"`
	Reason   string `json:"reason,omitempty"`
}

type VoteOnTransferResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message,omitempty"`
	RejectionCode     string `json:"rejection_code,omitempty"`
	CurrentApprovals  int    `json:"current_approvals"`
	RequiredApprovals int    `json:"required_approvals"`
	ConsensusReached  bool   `json:"consensus_reached"`
	Status            string `json:"status"`
}

type ApproveTransferRequest struct {
	GroupID     string `json:"group_id"`
	ConsensusID string `json:"consensus_id"`
	// ApproverID defaults to the authenticated operator.
	ApproverID        string `json:"approver_id,omitempty"`
	OperationalReason string `json:"operational_reason"`
	Approved          bool   `json:"approved"`
	Notes             string `json:"notes,omitempty"`
}

type ApproveTransferResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	RejectionCode  string `json:"rejection_code,omitempty"`
	FinalApproval  bool   `json:"final_approval"`
	CanExecute     bool   `json:"can_execute"`
	TransferStatus string `json:"transfer_status"`
}

type ExecuteTransferRequest struct {
	GroupID         string `json:"group_id"`
	TransferEventID string `json:"transfer_event_id"`
}

type ExecuteTransferResponse struct {
	Success       bool            `json:"success"`
	Message       string          `json:"message,omitempty"`
	RejectionCode string          `json:"rejection_code,omitempty"`
	Fund          float64         `json:"fund"`
	Required      float64         `json:"required"`
	Shortfall     float64         `json:"shortfall,omitempty"`
	Schedule      []ScheduleEntry `json:"schedule,omitempty"`
}

type ListPendingVotesRequest struct {
	// MemberID defaults to the authenticated actor.
	MemberID string `json:"member_id,omitempty"`
}

type PendingVote struct {
	GroupID   string    `json:"group_id"`
	GroupName string    `json:"group_name"`
	Consensus Consensus `json:"consensus"`
	Transfer  Transfer  `json:"transfer"`
}

type ListPendingVotesResponse struct {
	Pending []PendingVote `json:"pending"`
}
