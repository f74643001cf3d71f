package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/tandas/pkg/api"
)

// TandaServiceName is the fully-qualified name of the TandaService service.
const TandaServiceName = "tanda.v1.TandaService"

const (
	TandaServiceCreateGroupProcedure            = "/tanda.v1.TandaService/CreateGroup"
	TandaServiceGetGroupProcedure               = "/tanda.v1.TandaService/GetGroup"
	TandaServiceListGroupsProcedure             = "/tanda.v1.TandaService/ListGroups"
	TandaServiceDeleteGroupProcedure            = "/tanda.v1.TandaService/DeleteGroup"
	TandaServiceAddMemberProcedure              = "/tanda.v1.TandaService/AddMember"
	TandaServiceRecordPaymentProcedure          = "/tanda.v1.TandaService/RecordPayment"
	TandaServiceExecuteDeliveryProcedure        = "/tanda.v1.TandaService/ExecuteDelivery"
	TandaServiceGetStatsProcedure               = "/tanda.v1.TandaService/GetStats"
	TandaServiceListUpcomingDeliveriesProcedure = "/tanda.v1.TandaService/ListUpcomingDeliveries"
)

// TandaServiceHandler is implemented by the group lifecycle service.
type TandaServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	ExecuteDelivery(context.Context, *connect.Request[api.ExecuteDeliveryRequest]) (*connect.Response[api.ExecuteDeliveryResponse], error)
	GetStats(context.Context, *connect.Request[api.GetStatsRequest]) (*connect.Response[api.GetStatsResponse], error)
	ListUpcomingDeliveries(context.Context, *connect.Request[api.ListUpcomingDeliveriesRequest]) (*connect.Response[api.ListUpcomingDeliveriesResponse], error)
}

// NewTandaServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewTandaServiceHandler(svc TandaServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(TandaServiceCreateGroupProcedure, connect.NewUnaryHandler(TandaServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(TandaServiceGetGroupProcedure, connect.NewUnaryHandler(TandaServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(TandaServiceListGroupsProcedure, connect.NewUnaryHandler(TandaServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(TandaServiceDeleteGroupProcedure, connect.NewUnaryHandler(TandaServiceDeleteGroupProcedure, svc.DeleteGroup, opts...))
	mux.Handle(TandaServiceAddMemberProcedure, connect.NewUnaryHandler(TandaServiceAddMemberProcedure, svc.AddMember, opts...))
	mux.Handle(TandaServiceRecordPaymentProcedure, connect.NewUnaryHandler(TandaServiceRecordPaymentProcedure, svc.RecordPayment, opts...))
	mux.Handle(TandaServiceExecuteDeliveryProcedure, connect.NewUnaryHandler(TandaServiceExecuteDeliveryProcedure, svc.ExecuteDelivery, opts...))
	mux.Handle(TandaServiceGetStatsProcedure, connect.NewUnaryHandler(TandaServiceGetStatsProcedure, svc.GetStats, opts...))
	mux.Handle(TandaServiceListUpcomingDeliveriesProcedure, connect.NewUnaryHandler(TandaServiceListUpcomingDeliveriesProcedure, svc.ListUpcomingDeliveries, opts...))
	return "/" + TandaServiceName + "/", mux
}

// TandaServiceClient is a client for the tanda.v1.TandaService service.
type TandaServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	ExecuteDelivery(context.Context, *connect.Request[api.ExecuteDeliveryRequest]) (*connect.Response[api.ExecuteDeliveryResponse], error)
	GetStats(context.Context, *connect.Request[api.GetStatsRequest]) (*connect.Response[api.GetStatsResponse], error)
	ListUpcomingDeliveries(context.Context, *connect.Request[api.ListUpcomingDeliveriesRequest]) (*connect.Response[api.ListUpcomingDeliveriesResponse], error)
}

// NewTandaServiceClient constructs a client for the tanda.v1.TandaService service.
func NewTandaServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) TandaServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &tandaServiceClient{
		createGroup:            connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+TandaServiceCreateGroupProcedure, opts...),
		getGroup:               connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+TandaServiceGetGroupProcedure, opts...),
		listGroups:             connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+TandaServiceListGroupsProcedure, opts...),
		deleteGroup:            connect.NewClient[api.DeleteGroupRequest, api.DeleteGroupResponse](httpClient, baseURL+TandaServiceDeleteGroupProcedure, opts...),
		addMember:              connect.NewClient[api.AddMemberRequest, api.AddMemberResponse](httpClient, baseURL+TandaServiceAddMemberProcedure, opts...),
		recordPayment:          connect.NewClient[api.RecordPaymentRequest, api.RecordPaymentResponse](httpClient, baseURL+TandaServiceRecordPaymentProcedure, opts...),
		executeDelivery:        connect.NewClient[api.ExecuteDeliveryRequest, api.ExecuteDeliveryResponse](httpClient, baseURL+TandaServiceExecuteDeliveryProcedure, opts...),
		getStats:               connect.NewClient[api.GetStatsRequest, api.GetStatsResponse](httpClient, baseURL+TandaServiceGetStatsProcedure, opts...),
		listUpcomingDeliveries: connect.NewClient[api.ListUpcomingDeliveriesRequest, api.ListUpcomingDeliveriesResponse](httpClient, baseURL+TandaServiceListUpcomingDeliveriesProcedure, opts...),
	}
}

type tandaServiceClient struct {
	createGroup            *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup               *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups             *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	deleteGroup            *connect.Client[api.DeleteGroupRequest, api.DeleteGroupResponse]
	addMember              *connect.Client[api.AddMemberRequest, api.AddMemberResponse]
	recordPayment          *connect.Client[api.RecordPaymentRequest, api.RecordPaymentResponse]
	executeDelivery        *connect.Client[api.ExecuteDeliveryRequest, api.ExecuteDeliveryResponse]
	getStats               *connect.Client[api.GetStatsRequest, api.GetStatsResponse]
	listUpcomingDeliveries *connect.Client[api.ListUpcomingDeliveriesRequest, api.ListUpcomingDeliveriesResponse]
}

func (c *tandaServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *tandaServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *tandaServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *tandaServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

func (c *tandaServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *tandaServiceClient) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return c.recordPayment.CallUnary(ctx, req)
}

func (c *tandaServiceClient) ExecuteDelivery(ctx context.Context, req *connect.Request[api.ExecuteDeliveryRequest]) (*connect.Response[api.ExecuteDeliveryResponse], error) {
	return c.executeDelivery.CallUnary(ctx, req)
}

func (c *tandaServiceClient) GetStats(ctx context.Context, req *connect.Request[api.GetStatsRequest]) (*connect.Response[api.GetStatsResponse], error) {
	return c.getStats.CallUnary(ctx, req)
}

func (c *tandaServiceClient) ListUpcomingDeliveries(ctx context.Context, req *connect.Request[api.ListUpcomingDeliveriesRequest]) (*connect.Response[api.ListUpcomingDeliveriesResponse], error) {
	return c.listUpcomingDeliveries.CallUnary(ctx, req)
}
