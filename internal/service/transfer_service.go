package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/tandas/internal/auth"
	"github.com/mmynk/tandas/internal/consensus"
	"github.com/mmynk/tandas/internal/middleware"
	"github.com/mmynk/tandas/internal/models"
	"github.com/mmynk/tandas/pkg/api"
	"github.com/mmynk/tandas/pkg/api/apiconnect"
)

var _ apiconnect.TransferServiceHandler = (*TransferService)(nil)

var (
	errOperatorRequired = errors.New("only operators may record company decisions")
	errVoteOnBehalf     = errors.New("members may only vote for themselves")
	errMemberRequired   = errors.New("member id is required")
)

// TransferService implements the Connect TransferService over the consensus engine.
type TransferService struct {
	engine *consensus.Engine
}

// NewTransferService creates a TransferService.
func NewTransferService(engine *consensus.Engine) *TransferService {
	return &TransferService{engine: engine}
}

// RequestTransfer opens a turn transfer and its peer vote.
func (s *TransferService) RequestTransfer(ctx context.Context, req *connect.Request[api.RequestTransferRequest]) (*connect.Response[api.RequestTransferResponse], error) {
	requestedBy := req.Msg.RequestedBy
	if requestedBy == "" {
		requestedBy = middleware.GetActorID(ctx)
	}
	slog.InfoContext(ctx, "RequestTransfer request received",
		"group_id", req.Msg.GroupID,
		"from", req.Msg.FromMemberID,
		"to", req.Msg.ToMemberID,
		"requested_by", requestedBy,
	)

	res, err := s.engine.RequestTransfer(ctx, consensus.TransferRequest{
		GroupID:      req.Msg.GroupID,
		FromMemberID: req.Msg.FromMemberID,
		ToMemberID:   req.Msg.ToMemberID,
		Reason:       req.Msg.Reason,
		RequestedBy:  requestedBy,
	})
	if err != nil {
		slog.ErrorContext(ctx, "RequestTransfer failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.RequestTransferResponse{
		TransferEventID:   res.TransferEventID,
		ConsensusID:       res.ConsensusID,
		RequiredApprovals: res.RequiredApprovals,
		VotingDeadline:    res.VotingDeadline,
	}), nil
}

// VoteOnTransfer records one member's ballot.
func (s *TransferService) VoteOnTransfer(ctx context.Context, req *connect.Request[api.VoteOnTransferRequest]) (*connect.Response[api.VoteOnTransferResponse], error) {
	memberID, err := voterID(ctx, req.Msg.MemberID)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "VoteOnTransfer request received",
		"group_id", req.Msg.GroupID,
		"consensus_id", req.Msg.ConsensusID,
		"member_id", memberID,
		"vote", req.Msg.Vote,
	)

	res, err := s.engine.Vote(ctx, consensus.VoteRequest{
		GroupID:     req.Msg.GroupID,
		ConsensusID: req.Msg.ConsensusID,
		MemberID:    memberID,
		Vote:        models.VoteChoice(req.Msg.Vote),
		Reason:      req.Msg.Reason,
	})
	if err != nil {
		slog.ErrorContext(ctx, "VoteOnTransfer failed", "consensus_id", req.Msg.ConsensusID, "error", err)
		return nil, toConnectError(err)
	}

	success, message, code := rejectionFields(res.Rejection)
	if !success {
		slog.WarnContext(ctx, "Vote rejected", "consensus_id", req.Msg.ConsensusID, "member_id", memberID, "code", code)
	}
	return connect.NewResponse(&api.VoteOnTransferResponse{
		Success:           success,
		Message:           message,
		RejectionCode:     code,
		CurrentApprovals:  res.CurrentApprovals,
		RequiredApprovals: res.RequiredApprovals,
		ConsensusReached:  res.ConsensusReached,
		Status:            string(res.Status),
	}), nil
}

// ApproveTransfer records the operator decision on a peer-approved request.
func (s *TransferService) ApproveTransfer(ctx context.Context, req *connect.Request[api.ApproveTransferRequest]) (*connect.Response[api.ApproveTransferResponse], error) {
	approverID := req.Msg.ApproverID
	if actor := middleware.ActorFrom(ctx); actor != nil {
		if actor.Role != auth.RoleOperator {
			return nil, connect.NewError(connect.CodePermissionDenied, errOperatorRequired)
		}
		if approverID == "" {
			approverID = actor.ID
		}
	}
	slog.InfoContext(ctx, "ApproveTransfer request received",
		"group_id", req.Msg.GroupID,
		"consensus_id", req.Msg.ConsensusID,
		"approver_id", approverID,
		"approved", req.Msg.Approved,
	)

	res, err := s.engine.CompanyApproval(ctx, consensus.ApprovalRequest{
		GroupID:           req.Msg.GroupID,
		ConsensusID:       req.Msg.ConsensusID,
		ApproverID:        approverID,
		OperationalReason: req.Msg.OperationalReason,
		Approved:          req.Msg.Approved,
		Notes:             req.Msg.Notes,
	})
	if err != nil {
		slog.ErrorContext(ctx, "ApproveTransfer failed", "consensus_id", req.Msg.ConsensusID, "error", err)
		return nil, toConnectError(err)
	}

	success, message, code := rejectionFields(res.Rejection)
	return connect.NewResponse(&api.ApproveTransferResponse{
		Success:        success,
		Message:        message,
		RejectionCode:  code,
		FinalApproval:  res.FinalApproval,
		CanExecute:     res.CanExecute,
		TransferStatus: string(res.TransferStatus),
	}), nil
}

// ExecuteTransfer applies an approved transfer to the delivery schedule.
func (s *TransferService) ExecuteTransfer(ctx context.Context, req *connect.Request[api.ExecuteTransferRequest]) (*connect.Response[api.ExecuteTransferResponse], error) {
	slog.InfoContext(ctx, "ExecuteTransfer request received",
		"group_id", req.Msg.GroupID,
		"transfer_event_id", req.Msg.TransferEventID,
	)

	res, err := s.engine.ExecuteTransfer(ctx, req.Msg.GroupID, req.Msg.TransferEventID)
	if err != nil {
		slog.ErrorContext(ctx, "ExecuteTransfer failed", "transfer_event_id", req.Msg.TransferEventID, "error", err)
		return nil, toConnectError(err)
	}

	success, message, code := rejectionFields(res.Rejection)
	resp := &api.ExecuteTransferResponse{
		Success:       success,
		Message:       message,
		RejectionCode: code,
		Fund:          res.Fund,
		Required:      res.Required,
		Shortfall:     res.Shortfall,
	}
	if success {
		resp.Schedule = scheduleToAPI(res.Schedule)
	}
	return connect.NewResponse(resp), nil
}

// ListPendingVotes lists open requests the member has not voted on.
func (s *TransferService) ListPendingVotes(ctx context.Context, req *connect.Request[api.ListPendingVotesRequest]) (*connect.Response[api.ListPendingVotesResponse], error) {
	memberID, err := voterID(ctx, req.Msg.MemberID)
	if err != nil {
		return nil, err
	}

	pending, err := s.engine.PendingVotes(ctx, memberID)
	if err != nil {
		slog.ErrorContext(ctx, "ListPendingVotes failed", "member_id", memberID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.PendingVote, len(pending))
	for i, p := range pending {
		out[i] = pendingToAPI(p)
	}
	return connect.NewResponse(&api.ListPendingVotesResponse{Pending: out}), nil
}

// voterID resolves the member a request acts for. An authenticated member can
// only act for themselves.
func voterID(ctx context.Context, requested string) (string, error) {
	actor := middleware.ActorFrom(ctx)
	switch {
	case actor == nil && requested == "":
		return "", connect.NewError(connect.CodeInvalidArgument, errMemberRequired)
	case actor == nil:
		return requested, nil
	case requested == "":
		return actor.ID, nil
	case actor.Role == auth.RoleMember && requested != actor.ID:
		return "", connect.NewError(connect.CodePermissionDenied, errVoteOnBehalf)
	default:
		return requested, nil
	}
}
