package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/tandas/pkg/api"
)

// TransferServiceName is the fully-qualified name of the TransferService service.
const TransferServiceName = "tanda.v1.TransferService"

const (
	TransferServiceRequestTransferProcedure  = "/tanda.v1.TransferService/RequestTransfer"
	TransferServiceVoteOnTransferProcedure   = "/tanda.v1.TransferService/VoteOnTransfer"
	TransferServiceApproveTransferProcedure  = "/tanda.v1.TransferService/ApproveTransfer"
	TransferServiceExecuteTransferProcedure  = "/tanda.v1.TransferService/ExecuteTransfer"
	TransferServiceListPendingVotesProcedure = "/tanda.v1.TransferService/ListPendingVotes"
)

// TransferServiceHandler is implemented by the turn transfer service.
type TransferServiceHandler interface {
	RequestTransfer(context.Context, *connect.Request[api.RequestTransferRequest]) (*connect.Response[api.RequestTransferResponse], error)
	VoteOnTransfer(context.Context, *connect.Request[api.VoteOnTransferRequest]) (*connect.Response[api.VoteOnTransferResponse], error)
	ApproveTransfer(context.Context, *connect.Request[api.ApproveTransferRequest]) (*connect.Response[api.ApproveTransferResponse], error)
	ExecuteTransfer(context.Context, *connect.Request[api.ExecuteTransferRequest]) (*connect.Response[api.ExecuteTransferResponse], error)
	ListPendingVotes(context.Context, *connect.Request[api.ListPendingVotesRequest]) (*connect.Response[api.ListPendingVotesResponse], error)
}

// NewTransferServiceHandler builds an HTTP handler from the service implementation.
func NewTransferServiceHandler(svc TransferServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(TransferServiceRequestTransferProcedure, connect.NewUnaryHandler(TransferServiceRequestTransferProcedure, svc.RequestTransfer, opts...))
	mux.Handle(TransferServiceVoteOnTransferProcedure, connect.NewUnaryHandler(TransferServiceVoteOnTransferProcedure, svc.VoteOnTransfer, opts...))
	mux.Handle(TransferServiceApproveTransferProcedure, connect.NewUnaryHandler(TransferServiceApproveTransferProcedure, svc.ApproveTransfer, opts...))
	mux.Handle(TransferServiceExecuteTransferProcedure, connect.NewUnaryHandler(TransferServiceExecuteTransferProcedure, svc.ExecuteTransfer, opts...))
	mux.Handle(TransferServiceListPendingVotesProcedure, connect.NewUnaryHandler(TransferServiceListPendingVotesProcedure, svc.ListPendingVotes, opts...))
	return "/" + TransferServiceName + "/", mux
}

// TransferServiceClient is a client for the tanda.v1.TransferService service.
type TransferServiceClient interface {
	RequestTransfer(context.Context, *connect.Request[api.RequestTransferRequest]) (*connect.Response[api.RequestTransferResponse], error)
	VoteOnTransfer(context.Context, *connect.Request[api.VoteOnTransferRequest]) (*connect.Response[api.VoteOnTransferResponse], error)
	ApproveTransfer(context.Context, *connect.Request[api.ApproveTransferRequest]) (*connect.Response[api.ApproveTransferResponse], error)
	ExecuteTransfer(context.Context, *connect.Request[api.ExecuteTransferRequest]) (*connect.Response[api.ExecuteTransferResponse], error)
	ListPendingVotes(context.Context, *connect.Request[api.ListPendingVotesRequest]) (*connect.Response[api.ListPendingVotesResponse], error)
}

// NewTransferServiceClient constructs a client for the tanda.v1.TransferService service.
func NewTransferServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) TransferServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &transferServiceClient{
		requestTransfer:  connect.NewClient[api.RequestTransferRequest, api.RequestTransferResponse](httpClient, baseURL+TransferServiceRequestTransferProcedure, opts...),
		voteOnTransfer:   connect.NewClient[api.VoteOnTransferRequest, api.VoteOnTransferResponse](httpClient, baseURL+TransferServiceVoteOnTransferProcedure, opts...),
		approveTransfer:  connect.NewClient[api.ApproveTransferRequest, api.ApproveTransferResponse](httpClient, baseURL+TransferServiceApproveTransferProcedure, opts...),
		executeTransfer:  connect.NewClient[api.ExecuteTransferRequest, api.ExecuteTransferResponse](httpClient, baseURL+TransferServiceExecuteTransferProcedure, opts...),
		listPendingVotes: connect.NewClient[api.ListPendingVotesRequest, api.ListPendingVotesResponse](httpClient, baseURL+TransferServiceListPendingVotesProcedure, opts...),
	}
}

type transferServiceClient struct {
	requestTransfer  *connect.Client[api.RequestTransferRequest, api.RequestTransferResponse]
	voteOnTransfer   *connect.Client[api.VoteOnTransferRequest, api.VoteOnTransferResponse]
	approveTransfer  *connect.Client[api.ApproveTransferRequest, api.ApproveTransferResponse]
	executeTransfer  *connect.Client[api.ExecuteTransferRequest, api.ExecuteTransferResponse]
	listPendingVotes *connect.Client[api.ListPendingVotesRequest, api.ListPendingVotesResponse]
}

func (c *transferServiceClient) RequestTransfer(ctx context.Context, req *connect.Request[api.RequestTransferRequest]) (*connect.Response[api.RequestTransferResponse], error) {
	return c.requestTransfer.CallUnary(ctx, req)
}

func (c *transferServiceClient) VoteOnTransfer(ctx context.Context, req *connect.Request[api.VoteOnTransferRequest]) (*connect.Response[api.VoteOnTransferResponse], error) {
	return c.voteOnTransfer.CallUnary(ctx, req)
}

func (c *transferServiceClient) ApproveTransfer(ctx context.Context, req *connect.Request[api.ApproveTransferRequest]) (*connect.Response[api.ApproveTransferResponse], error) {
	return c.approveTransfer.CallUnary(ctx, req)
}

func (c *transferServiceClient) ExecuteTransfer(ctx context.Context, req *connect.Request[api.ExecuteTransferRequest]) (*connect.Response[api.ExecuteTransferResponse], error) {
	return c.executeTransfer.CallUnary(ctx, req)
}

func (c *transferServiceClient) ListPendingVotes(ctx context.Context, req *connect.Request[api.ListPendingVotesRequest]) (*connect.Response[api.ListPendingVotesResponse], error) {
	return c.listPendingVotes.CallUnary(ctx, req)
}
