package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/tandas/internal/tanda"
	"github.com/mmynk/tandas/pkg/api"
	"github.com/mmynk/tandas/pkg/api/apiconnect"
)

var _ apiconnect.TandaServiceHandler = (*TandaService)(nil)

// TandaService implements the Connect TandaService.
type TandaService struct {
	manager *tanda.Manager
}

// NewTandaService creates a TandaService over the lifecycle manager.
func NewTandaService(manager *tanda.Manager) *TandaService {
	return &TandaService{manager: manager}
}

// CreateGroup creates a new forming group.
func (s *TandaService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.InfoContext(ctx, "CreateGroup request received",
		"name", req.Msg.Name,
		"capacity", req.Msg.Capacity,
		"package_value", req.Msg.PackageValue,
	)

	group, err := s.manager.CreateGroup(ctx, tanda.CreateGroupParams{
		Name:         req.Msg.Name,
		Capacity:     req.Msg.Capacity,
		PackageValue: req.Msg.PackageValue,
		StartDate:    req.Msg.StartDate,
		Market:       req.Msg.Market,
		EcosystemID:  req.Msg.EcosystemID,
		Leader:       req.Msg.Leader,
	})
	if err != nil {
		slog.ErrorContext(ctx, "CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.InfoContext(ctx, "Group created", "group_id", group.ID, "monthly_amount", group.MonthlyAmount)
	return connect.NewResponse(&api.CreateGroupResponse{Group: groupToAPI(group)}), nil
}

// GetGroup retrieves a group with its roster, schedule and transfer log.
func (s *TandaService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	group, err := s.manager.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.ErrorContext(ctx, "GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: groupToAPI(group)}), nil
}

// ListGroups retrieves all groups.
func (s *TandaService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	groups, err := s.manager.ListGroups(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = groupToAPI(g)
	}
	slog.DebugContext(ctx, "ListGroups successful", "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// DeleteGroup removes a group and everything it owns.
func (s *TandaService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	slog.InfoContext(ctx, "DeleteGroup request received", "group_id", req.Msg.GroupID)

	if err := s.manager.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		slog.ErrorContext(ctx, "DeleteGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// AddMember places a client in the roster.
func (s *TandaService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	slog.InfoContext(ctx, "AddMember request received",
		"group_id", req.Msg.GroupID,
		"client_id", req.Msg.ClientID,
		"preferred_position", req.Msg.PreferredPosition,
	)

	group, position, err := s.manager.AddMember(ctx, tanda.AddMemberParams{
		GroupID:           req.Msg.GroupID,
		ClientID:          req.Msg.ClientID,
		Name:              req.Msg.Name,
		PreferredPosition: req.Msg.PreferredPosition,
	})
	if err != nil {
		slog.ErrorContext(ctx, "AddMember failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.AddMemberResponse{Position: position, Group: groupToAPI(group)}), nil
}

// RecordPayment appends a confirmed payment to a member's history.
func (s *TandaService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	slog.InfoContext(ctx, "RecordPayment request received",
		"group_id", req.Msg.GroupID,
		"client_id", req.Msg.ClientID,
		"amount", req.Msg.Amount,
	)

	res, err := s.manager.RecordPayment(ctx, tanda.PaymentParams{
		GroupID:  req.Msg.GroupID,
		ClientID: req.Msg.ClientID,
		Amount:   req.Msg.Amount,
		Method:   req.Msg.Method,
	})
	if err != nil {
		slog.ErrorContext(ctx, "RecordPayment failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RecordPaymentResponse{
		Payment:     paymentToAPI(res.Payment),
		NewTotal:    res.NewTotal,
		EntryStatus: string(res.EntryStatus),
	}), nil
}

// ExecuteDelivery hands the package to a member whose entry is ready.
func (s *TandaService) ExecuteDelivery(ctx context.Context, req *connect.Request[api.ExecuteDeliveryRequest]) (*connect.Response[api.ExecuteDeliveryResponse], error) {
	slog.InfoContext(ctx, "ExecuteDelivery request received",
		"group_id", req.Msg.GroupID,
		"client_id", req.Msg.ClientID,
	)

	res, err := s.manager.ExecuteDelivery(ctx, req.Msg.GroupID, req.Msg.ClientID)
	if err != nil {
		slog.ErrorContext(ctx, "ExecuteDelivery failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	success, message, code := rejectionFields(res.Rejection)
	return connect.NewResponse(&api.ExecuteDeliveryResponse{
		Success:         success,
		Message:         message,
		RejectionCode:   code,
		DeliveryID:      res.DeliveryID,
		Month:           res.Month,
		DeliveredAmount: res.DeliveredAmount,
		DeliveredAt:     res.DeliveredAt,
		CurrentMonth:    res.CurrentMonth,
		GroupStatus:     string(res.GroupStatus),
	}), nil
}

// GetStats summarizes every stored group.
func (s *TandaService) GetStats(ctx context.Context, req *connect.Request[api.GetStatsRequest]) (*connect.Response[api.GetStatsResponse], error) {
	stats, err := s.manager.Stats(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "GetStats failed", "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetStatsResponse{
		ActiveGroups:        stats.ActiveGroups,
		TotalMembers:        stats.TotalMembers,
		CompletedDeliveries: stats.CompletedDeliveries,
		PendingDeliveries:   stats.PendingDeliveries,
		TotalValue:          stats.TotalValue,
		FundsCollected:      stats.FundsCollected,
	}), nil
}

// ListUpcomingDeliveries lists entries that are ready or due by next month.
func (s *TandaService) ListUpcomingDeliveries(ctx context.Context, req *connect.Request[api.ListUpcomingDeliveriesRequest]) (*connect.Response[api.ListUpcomingDeliveriesResponse], error) {
	upcoming, err := s.manager.UpcomingDeliveries(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "ListUpcomingDeliveries failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.UpcomingDelivery, len(upcoming))
	for i, u := range upcoming {
		out[i] = api.UpcomingDelivery{
			GroupID:          u.GroupID,
			GroupName:        u.GroupName,
			MemberID:         u.MemberID,
			MemberName:       u.MemberName,
			Month:            u.Month,
			ScheduledDate:    u.ScheduledDate,
			ReadyForDelivery: u.ReadyForDelivery,
		}
	}
	return connect.NewResponse(&api.ListUpcomingDeliveriesResponse{Deliveries: out}), nil
}
