package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/tandas/internal/auth"
	"github.com/mmynk/tandas/internal/config"
	"github.com/mmynk/tandas/internal/consensus"
	"github.com/mmynk/tandas/internal/middleware"
	"github.com/mmynk/tandas/internal/service"
	"github.com/mmynk/tandas/internal/storage"
	"github.com/mmynk/tandas/internal/storage/sqlite"
	"github.com/mmynk/tandas/internal/tanda"
	"github.com/mmynk/tandas/pkg/api/apiconnect"
	"github.com/mmynk/tandas/pkg/logging"
)

const tokenDuration = 24 * time.Hour

func main() {
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := config.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.SetupWithOptions(logging.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})

	store, err := sqlite.New(cfg.Server.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Server.DBPath)

	repo := storage.NewRepository(store, storage.LogNotifier{})
	policy := cfg.RatePolicy()

	simulationSvc, err := service.NewSimulationService(repo, policy, cfg.SimulationCaps(), cfg.Cache.GridSize)
	if err != nil {
		slog.Error("Failed to initialize simulation service", "error", err)
		os.Exit(1)
	}

	var jwtManager *auth.JWTManager
	if cfg.Auth.Secret != "" {
		jwtManager = auth.NewJWTManager(cfg.Auth.Secret, tokenDuration)
	} else {
		slog.Warn("No auth secret configured, all RPCs accept anonymous callers")
	}
	// Simulations are read-only what-ifs and stay open to anonymous callers.
	protected := connect.WithInterceptors(
		middleware.RequireActor(jwtManager),
		middleware.LoggingInterceptor(),
	)
	public := connect.WithInterceptors(
		middleware.OptionalActor(jwtManager),
		middleware.LoggingInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewTandaServiceHandler(service.NewTandaService(tanda.NewManager(repo, policy)), protected))
	mux.Handle(apiconnect.NewSimulationServiceHandler(simulationSvc, public))
	mux.Handle(apiconnect.NewTransferServiceHandler(service.NewTransferService(consensus.NewEngine(repo)), protected))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Connect server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
