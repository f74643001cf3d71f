package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	lru "github.com/hashicorp/golang-lru"

	"github.com/mmynk/tandas/internal/calculator"
	"github.com/mmynk/tandas/internal/delivery"
	"github.com/mmynk/tandas/internal/metrics"
	"github.com/mmynk/tandas/internal/models"
	"github.com/mmynk/tandas/internal/ratepolicy"
	"github.com/mmynk/tandas/internal/storage"
	"github.com/mmynk/tandas/pkg/api"
	"github.com/mmynk/tandas/pkg/api/apiconnect"
)

var _ apiconnect.SimulationServiceHandler = (*SimulationService)(nil)

// DefaultGridCacheSize bounds the grid cache when no size is configured.
const DefaultGridCacheSize = 128

// SimulationService implements the Connect SimulationService.
type SimulationService struct {
	repo   *storage.Repository
	policy *ratepolicy.Policy
	caps   models.Caps
	cache  *lru.Cache
}

// gridKey identifies a grid run. Simulations are pure, so equal keys give
// equal results.
type gridKey struct {
	members  float64
	amount   float64
	horizon  int
	target   float64
	extended bool
	caps     models.Caps
}

// NewSimulationService creates a SimulationService. Stored groups are read
// through repo; caps apply when a request does not override them.
func NewSimulationService(repo *storage.Repository, policy *ratepolicy.Policy, caps models.Caps, cacheSize int) (*SimulationService, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultGridCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create grid cache: %w", err)
	}
	return &SimulationService{repo: repo, policy: policy, caps: caps, cache: cache}, nil
}

// SimulateScenario runs one what-if scenario.
func (s *SimulationService) SimulateScenario(ctx context.Context, req *connect.Request[api.SimulateScenarioRequest]) (*connect.Response[api.SimulateScenarioResponse], error) {
	slog.InfoContext(ctx, "SimulateScenario request received",
		"group_id", req.Msg.Snapshot.GroupID,
		"horizon", req.Msg.Horizon,
		"policy", req.Msg.Policy,
		"events", len(req.Msg.Events),
	)

	snapshot, group, err := s.resolveSnapshot(ctx, req.Msg.Snapshot)
	if err != nil {
		return nil, toConnectError(err)
	}
	target, err := s.resolveTarget(req.Msg.Target, group)
	if err != nil {
		return nil, toConnectError(err)
	}

	name := req.Msg.Name
	if name == "" {
		name = "custom"
	}
	start := time.Now()
	res, err := calculator.SimulateScenario(calculator.ScenarioInput{
		Snapshot: snapshot,
		Horizon:  req.Msg.Horizon,
		Params: models.ScenarioParams{
			Name:              name,
			ContributionDelta: req.Msg.ContributionDelta,
			Policy:            models.PriorityPolicy(req.Msg.Policy),
		},
		Target: &target,
		Events: eventsFromAPI(req.Msg.Events),
		Caps:   capsFromAPI(req.Msg.Caps, s.caps),
	})
	metrics.SimulationDuration.WithLabelValues("scenario").Observe(time.Since(start).Seconds())
	if err != nil {
		slog.ErrorContext(ctx, "SimulateScenario failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.InfoContext(ctx, "SimulateScenario successful",
		"irr_annual", res.IRRAnnual,
		"target", res.Target,
		"meets_target", res.MeetsTarget,
	)
	return connect.NewResponse(&api.SimulateScenarioResponse{Result: s.resultToAPI(*res, group)}), nil
}

// SimulateGrid runs the standard scenario battery, ranked best first.
func (s *SimulationService) SimulateGrid(ctx context.Context, req *connect.Request[api.SimulateGridRequest]) (*connect.Response[api.SimulateGridResponse], error) {
	slog.InfoContext(ctx, "SimulateGrid request received",
		"group_id", req.Msg.Snapshot.GroupID,
		"horizon", req.Msg.Horizon,
		"extended", req.Msg.Extended,
	)

	snapshot, group, err := s.resolveSnapshot(ctx, req.Msg.Snapshot)
	if err != nil {
		return nil, toConnectError(err)
	}
	target, err := s.resolveTarget(req.Msg.Target, group)
	if err != nil {
		return nil, toConnectError(err)
	}
	caps := capsFromAPI(req.Msg.Caps, s.caps)

	key := gridKey{
		members:  snapshot.TotalMembers,
		amount:   snapshot.MonthlyAmount,
		horizon:  req.Msg.Horizon,
		target:   target,
		extended: req.Msg.Extended,
		caps:     caps,
	}

	var results []models.ScenarioResult
	cached := false
	if v, ok := s.cache.Get(key); ok {
		results = v.([]models.ScenarioResult)
		cached = true
		metrics.GridCacheLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.GridCacheLookups.WithLabelValues("miss").Inc()
		start := time.Now()
		results, err = calculator.SimulateGrid(ctx, snapshot, req.Msg.Horizon, calculator.GridOptions{
			Target:   &target,
			Caps:     caps,
			Extended: req.Msg.Extended,
		})
		metrics.SimulationDuration.WithLabelValues("grid").Observe(time.Since(start).Seconds())
		if err != nil {
			slog.ErrorContext(ctx, "SimulateGrid failed", "error", err)
			return nil, toConnectError(err)
		}
		s.cache.Add(key, results)
	}

	out := make([]api.ScenarioResult, len(results))
	for i, r := range results {
		out[i] = s.resultToAPI(r, group)
	}
	slog.InfoContext(ctx, "SimulateGrid successful", "scenarios", len(out), "best", out[0].Name, "cached", cached)
	return connect.NewResponse(&api.SimulateGridResponse{Results: out, Cached: cached}), nil
}

// resolveSnapshot returns the explicit snapshot, or one taken from a stored
// group together with that group.
func (s *SimulationService) resolveSnapshot(ctx context.Context, snap api.Snapshot) (models.GroupSnapshot, *models.Group, error) {
	if snap.GroupID == "" {
		return models.GroupSnapshot{
			TotalMembers:  snap.TotalMembers,
			MonthlyAmount: snap.MonthlyAmount,
		}, nil, nil
	}
	g, err := s.repo.Get(ctx, snap.GroupID)
	if err != nil {
		return models.GroupSnapshot{}, nil, err
	}
	return models.GroupSnapshot{
		TotalMembers:  float64(len(g.Members)),
		MonthlyAmount: g.MonthlyAmount,
	}, g, nil
}

// resolveTarget picks the explicit target, else the rate policy target for
// the requested market, falling back to the stored group's market.
func (s *SimulationService) resolveTarget(spec api.TargetSpec, g *models.Group) (float64, error) {
	if spec.Target != nil {
		return *spec.Target, nil
	}
	market, ecosystem := spec.Market, spec.EcosystemID
	if g != nil {
		if market == "" {
			market = g.Market
		}
		if ecosystem == "" {
			ecosystem = g.EcosystemID
		}
	}
	return s.policy.Target(market, ecosystem)
}

func (s *SimulationService) resultToAPI(r models.ScenarioResult, g *models.Group) api.ScenarioResult {
	out := scenarioToAPI(r)
	out.WithinTolerance = s.policy.WithinTolerance(r.IRRAnnual, r.Target)
	if g != nil {
		out.Schedule = scheduleToAPI(delivery.Project(g, r.Awards))
	}
	return out
}
