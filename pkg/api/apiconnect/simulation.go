package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/tandas/pkg/api"
)

// SimulationServiceName is the fully-qualified name of the SimulationService service.
const SimulationServiceName = "tanda.v1.SimulationService"

const (
	SimulationServiceSimulateScenarioProcedure = "/tanda.v1.SimulationService/SimulateScenario"
	SimulationServiceSimulateGridProcedure     = "/tanda.v1.SimulationService/SimulateGrid"
)

// SimulationServiceHandler is implemented by the what-if simulation service.
type SimulationServiceHandler interface {
	SimulateScenario(context.Context, *connect.Request[api.SimulateScenarioRequest]) (*connect.Response[api.SimulateScenarioResponse], error)
	SimulateGrid(context.Context, *connect.Request[api.SimulateGridRequest]) (*connect.Response[api.SimulateGridResponse], error)
}

// NewSimulationServiceHandler builds an HTTP handler from the service implementation.
func NewSimulationServiceHandler(svc SimulationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(SimulationServiceSimulateScenarioProcedure, connect.NewUnaryHandler(SimulationServiceSimulateScenarioProcedure, svc.SimulateScenario, opts...))
	mux.Handle(SimulationServiceSimulateGridProcedure, connect.NewUnaryHandler(SimulationServiceSimulateGridProcedure, svc.SimulateGrid, opts...))
	return "/" + SimulationServiceName + "/", mux
}

// SimulationServiceClient is a client for the tanda.v1.SimulationService service.
type SimulationServiceClient interface {
	SimulateScenario(context.Context, *connect.Request[api.SimulateScenarioRequest]) (*connect.Response[api.SimulateScenarioResponse], error)
	SimulateGrid(context.Context, *connect.Request[api.SimulateGridRequest]) (*connect.Response[api.SimulateGridResponse], error)
}

// NewSimulationServiceClient constructs a client for the tanda.v1.SimulationService service.
func NewSimulationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SimulationServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &simulationServiceClient{
		simulateScenario: connect.NewClient[api.SimulateScenarioRequest, api.SimulateScenarioResponse](httpClient, baseURL+SimulationServiceSimulateScenarioProcedure, opts...),
		simulateGrid:     connect.NewClient[api.SimulateGridRequest, api.SimulateGridResponse](httpClient, baseURL+SimulationServiceSimulateGridProcedure, opts...),
	}
}

type simulationServiceClient struct {
	simulateScenario *connect.Client[api.SimulateScenarioRequest, api.SimulateScenarioResponse]
	simulateGrid     *connect.Client[api.SimulateGridRequest, api.SimulateGridResponse]
}

func (c *simulationServiceClient) SimulateScenario(ctx context.Context, req *connect.Request[api.SimulateScenarioRequest]) (*connect.Response[api.SimulateScenarioResponse], error) {
	return c.simulateScenario.CallUnary(ctx, req)
}

func (c *simulationServiceClient) SimulateGrid(ctx context.Context, req *connect.Request[api.SimulateGridRequest]) (*connect.Response[api.SimulateGridResponse], error) {
	return c.simulateGrid.CallUnary(ctx, req)
}
