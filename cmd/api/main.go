// Command api serves the quality service HTTP API: triggering quality runs,
// inspecting run status, fetching anomaly reports and business metrics.
// Runs are executed by an embedded in-memory queue worker.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/acarvalho/p2p-quality/internal/api/handlers"
	"github.com/acarvalho/p2p-quality/internal/api/middleware"
	bqstore "github.com/acarvalho/p2p-quality/internal/infra/bigquery"
	"github.com/acarvalho/p2p-quality/internal/logger"
	"github.com/acarvalho/p2p-quality/internal/runs"
	"github.com/acarvalho/p2p-quality/internal/runs/inmemory"
)

func main() {
	port := flag.String("port", "8080", "HTTP server port")
	flag.Parse()

	log := logger.New()
	ctx := context.Background()

	repo, err := bqstore.NewRepository(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create warehouse repository")
	}
	defer repo.Close()

	runStore := inmemory.NewStore()
	runQueue := inmemory.NewQueue(100, runStore)

	workerCtx, cancelWorker := context.WithCancel(logger.WithContext(ctx, log))
	defer cancelWorker()

	executor := &runs.Executor{Source: repo, Sink: repo}
	go func() {
		log.Info().Msg("Starting embedded run worker")
		if err := runQueue.Start(workerCtx, executor.Handler()); err != nil {
			log.Error().Err(err).Msg("Run worker stopped with error")
		}
	}()

	runsHandler := handlers.NewRunsHandler(runStore, runQueue, log)
	reportsHandler := handlers.NewReportsHandler(repo, log)
	metricsHandler := handlers.NewMetricsHandler(repo, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/runs", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			runsHandler.ListRuns(w, r)
		case http.MethodPost:
			runsHandler.TriggerRun(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/runs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/api/runs/")
		if rest == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Run ID is required")
			return
		}
		if runID, found := strings.CutSuffix(rest, "/report"); found {
			reportsHandler.GetReport(w, r, runID)
			return
		}
		runsHandler.GetRun(w, r, rest)
	})

	mux.HandleFunc("/api/metrics", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			metricsHandler.GetMetrics(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := runQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping run queue")
	}

	log.Info().Msg("Server exited")
}
