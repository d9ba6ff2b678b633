package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/casepool/allocator/internal/config"
	"github.com/casepool/allocator/internal/notify"
	"github.com/casepool/allocator/internal/plan"
	"github.com/casepool/allocator/internal/registry"
	"github.com/casepool/allocator/internal/scoring"
	"github.com/casepool/allocator/internal/store"
)

func NewRouter(s store.Store, wf *plan.Workflow, scorer *scoring.BidScorer, reg registry.Client, n notify.Client, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(120))

	bidWeights := scoring.DefaultBidWeights()
	if ws, err := scoring.WeightSetFromMap(cfg.Scoring.BidWeights.Map()); err == nil {
		bidWeights = ws
	}
	matchWeights := scoring.DefaultMatchWeights()
	if ws, err := scoring.WeightSetFromMap(cfg.Scoring.MatchWeights.Map()); err == nil {
		matchWeights = ws
	}

	bids := NewBidsHandler(scorer, n, bidWeights)
	allocation := NewAllocationHandler(wf, reg, cfg.Allocation, matchWeights, logger)
	weights := NewWeightsHandler()
	admin := NewAdminHandler(s)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/bids/score", bids.Score)

		r.Post("/allocation/preview", allocation.Preview)
		r.Post("/allocation/confirm", allocation.Confirm)
		r.Get("/allocation/plans/{id}", allocation.Get)

		r.Put("/weights/{criterion}", weights.Update)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Get("/stats", admin.Stats)
			r.Get("/organizations", admin.ListOrganizations)
			r.Post("/organizations", admin.UpsertOrganization)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
