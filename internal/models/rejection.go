package models

// RejectionCode classifies an expected, side-effect free refusal of an operation.
type RejectionCode string

const (
	RejectDuplicateVote        RejectionCode = "duplicate_vote"
	RejectConsensusClosed      RejectionCode = "consensus_closed"
	RejectConsensusExpired     RejectionCode = "consensus_expired"
	RejectConsensusNotApproved RejectionCode = "consensus_not_approved"
	RejectDecisionRecorded     RejectionCode = "decision_recorded"
	RejectTransferNotApproved  RejectionCode = "transfer_not_approved"
	RejectInsufficientFunds    RejectionCode = "insufficient_funds"
	RejectNoSchedule           RejectionCode = "no_schedule"
	RejectNotReady             RejectionCode = "not_ready"
)

// Rejection is returned alongside a result (never as an error) when an
// operation is refused by policy. The group is left unchanged.
type Rejection struct {
	Code    RejectionCode
	Message string
}

func (r *Rejection) String() string {
	return string(r.Code) + ": " + r.Message
}
