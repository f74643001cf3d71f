// Command tandasim runs the scenario grid offline and writes the ranked
// results as CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/mmynk/tandas/internal/calculator"
	"github.com/mmynk/tandas/internal/config"
	"github.com/mmynk/tandas/internal/models"
	"github.com/mmynk/tandas/pkg/logging"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	members := flag.Float64("members", 12, "group size (floored)")
	amount := flag.Float64("amount", 1000, "monthly contribution per member")
	horizon := flag.Int("horizon", 24, "months to simulate")
	market := flag.String("market", "", "market whose target IRR applies (default from config)")
	ecosystem := flag.String("ecosystem", "", "ecosystem id for the risk premium")
	target := flag.Float64("target", 0, "explicit annual target IRR; overrides market")
	extended := flag.Bool("extended", false, "run the extended five-scenario grid")
	out := flag.String("out", "-", "CSV output file, - for stdout")
	flag.Parse()

	if err := run(*path, runOptions{
		snapshot:  models.GroupSnapshot{TotalMembers: *members, MonthlyAmount: *amount},
		horizon:   *horizon,
		market:    *market,
		ecosystem: *ecosystem,
		target:    *target,
		extended:  *extended,
		out:       *out,
	}); err != nil {
		slog.Error("Simulation failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	snapshot  models.GroupSnapshot
	horizon   int
	market    string
	ecosystem string
	target    float64
	extended  bool
	out       string
}

func run(configPath string, opts runOptions) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logging.SetupWithOptions(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	policy := cfg.RatePolicy()
	target := opts.target
	if target == 0 {
		target, err = policy.Target(opts.market, opts.ecosystem)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results, err := calculator.SimulateGrid(ctx, opts.snapshot, opts.horizon, calculator.GridOptions{
		Target:   &target,
		Caps:     cfg.SimulationCaps(),
		Extended: opts.extended,
	})
	if err != nil {
		return err
	}
	best := results[0]
	slog.Info("Grid simulated",
		"scenarios", len(results),
		"best", best.Params.Name,
		"irr_annual", best.IRRAnnual,
		"target", target,
		"within_tolerance", policy.WithinTolerance(best.IRRAnnual, target),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	var w io.Writer = os.Stdout
	if opts.out != "-" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	return calculator.WriteResultsCSV(w, results)
}
