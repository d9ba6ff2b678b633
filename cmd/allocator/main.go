package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casepool/allocator/internal/api"
	"github.com/casepool/allocator/internal/config"
	"github.com/casepool/allocator/internal/notify"
	"github.com/casepool/allocator/internal/plan"
	"github.com/casepool/allocator/internal/registry"
	"github.com/casepool/allocator/internal/scoring"
	"github.com/casepool/allocator/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	// Notifications (optional)
	var notifier notify.Client
	if cfg.Notify.URL != "" {
		nc, err := notify.NewNATSClient(cfg.Notify.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to nats, running without notifications", "error", err)
		} else {
			notifier = nc
			defer nc.Close()
			logger.Info("connected to nats")
		}
	}

	// Case-package registry
	reg := registry.NewHTTPClient(cfg.Registry.URL, cfg.Registry.Token)

	// Scoring engine
	evaluator := scoring.FixedEvaluator{
		Experience: cfg.Scoring.Evaluator.Experience,
		Proposal:   cfg.Scoring.Evaluator.Proposal,
	}
	bidScorer := scoring.NewBidScorer(evaluator, logger)
	matchScorer := scoring.NewMatchScorer(cfg.Allocation.RegionBaseScore, logger)

	// Planner + workflow
	planner := plan.NewPlanner(matchScorer, logger)
	workflow := plan.NewWorkflow(planner, db, notifier, cfg.PlanRetention(), logger)
	workflow.StartRetentionLoop(ctx)
	defer workflow.Stop()
	logger.Info("workflow started", "plan_retention", cfg.PlanRetention())

	// API server
	router := api.NewRouter(db, workflow, bidScorer, reg, notifier, cfg, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsRouter := api.NewMetricsRouter()
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsRouter,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}
