package calculator

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/tandas/internal/models"
)

// GridOptions configures the scenario battery.
type GridOptions struct {
	// Target is the annual IRR to compare against; nil uses DefaultTargetIRR.
	Target *float64
	Caps   models.Caps
	// Extended adds the same-delta variants of the base scenario under every
	// policy, growing the grid from 3 to 5 scenarios.
	Extended bool
}

// GridScenarios returns the named scenarios run by SimulateGrid.
func GridScenarios(extended bool) []models.ScenarioParams {
	scenarios := []models.ScenarioParams{
		{Name: "base-fifo", ContributionDelta: 0, Policy: models.PolicyFIFO},
		{Name: "minus10-compliance", ContributionDelta: -0.10, Policy: models.PolicyCompliance},
		{Name: "plus10-rescue", ContributionDelta: 0.10, Policy: models.PolicyRescue},
	}
	if extended {
		scenarios = append(scenarios,
			models.ScenarioParams{Name: "base-compliance", ContributionDelta: 0, Policy: models.PolicyCompliance},
			models.ScenarioParams{Name: "base-rescue", ContributionDelta: 0, Policy: models.PolicyRescue},
		)
	}
	return scenarios
}

// SimulateGrid runs every grid scenario concurrently and returns them ranked by
// annual IRR (desc), deficit months (asc), then average active share (desc).
func SimulateGrid(ctx context.Context, snapshot models.GroupSnapshot, horizon int, opts GridOptions) ([]models.ScenarioResult, error) {
	scenarios := GridScenarios(opts.Extended)
	results := make([]models.ScenarioResult, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	for i, params := range scenarios {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := SimulateScenario(ScenarioInput{
				Snapshot: snapshot,
				Horizon:  horizon,
				Params:   params,
				Target:   opts.Target,
				Caps:     opts.Caps,
			})
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	RankResults(results)
	return results, nil
}

// RankResults sorts results in place using the grid ordering.
func RankResults(results []models.ScenarioResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.IRRAnnual != b.IRRAnnual {
			return a.IRRAnnual > b.IRRAnnual
		}
		if a.Metrics.DeficitMonths != b.Metrics.DeficitMonths {
			return a.Metrics.DeficitMonths < b.Metrics.DeficitMonths
		}
		return a.Metrics.ActiveShareAvg > b.Metrics.ActiveShareAvg
	})
}
