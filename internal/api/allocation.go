package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/casepool/allocator/internal/config"
	"github.com/casepool/allocator/internal/plan"
	"github.com/casepool/allocator/internal/registry"
	"github.com/casepool/allocator/internal/scoring"
)

type AllocationHandler struct {
	workflow       *plan.Workflow
	registry       registry.Client
	defaults       config.AllocationConfig
	defaultWeights scoring.WeightSet
	logger         *slog.Logger
}

func NewAllocationHandler(wf *plan.Workflow, reg registry.Client, defaults config.AllocationConfig, defaultWeights scoring.WeightSet, logger *slog.Logger) *AllocationHandler {
	return &AllocationHandler{
		workflow:       wf,
		registry:       reg,
		defaults:       defaults,
		defaultWeights: defaultWeights,
		logger:         logger,
	}
}

type PreviewRequest struct {
	PackageID              string                        `json:"package_id,omitempty"`
	Cases                  []scoring.CaseItem            `json:"cases,omitempty"`
	Organizations          []scoring.OrganizationProfile `json:"organizations,omitempty"`
	Weights                map[string]int                `json:"weights,omitempty"`
	MinMatchScore          *float64                      `json:"min_match_score,omitempty"`
	MaxCasesPerOrg         *int                          `json:"max_cases_per_org,omitempty"`
	AllowPartialAssignment bool                          `json:"allow_partial_assignment"`
}

// Preview stages an allocation plan without touching organization load.
// POST /api/v1/allocation/preview
func (h *AllocationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	// Inline inputs win; a package ID alone is resolved through the
	// case-package service.
	if len(req.Cases) == 0 && req.PackageID != "" && h.registry != nil {
		pkg, err := h.registry.GetCasePackage(r.Context(), req.PackageID)
		if err != nil {
			writeError(w, http.StatusBadGateway, "REGISTRY_UNAVAILABLE", err.Error())
			return
		}
		req.Cases = pkg.Cases
		if len(req.Organizations) == 0 {
			req.Organizations = pkg.Organizations
		}
	}

	weights := h.defaultWeights
	if len(req.Weights) > 0 {
		var err error
		weights, err = scoring.WeightSetFromMap(req.Weights)
		if err != nil {
			writeEngineError(w, err)
			return
		}
	}

	minScore := h.defaults.MinMatchScore
	if req.MinMatchScore != nil {
		minScore = *req.MinMatchScore
	}
	maxPerOrg := h.defaults.MaxCasesPerOrg
	if req.MaxCasesPerOrg != nil {
		maxPerOrg = *req.MaxCasesPerOrg
	}

	p, err := h.workflow.Preview(r.Context(), plan.Request{
		PackageID:              req.PackageID,
		Cases:                  req.Cases,
		Organizations:          req.Organizations,
		Weights:                weights,
		MinMatchScore:          minScore,
		MaxCasesPerOrg:         maxPerOrg,
		AllowPartialAssignment: req.AllowPartialAssignment,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type ConfirmRequest struct {
	PlanID string `json:"plan_id"`
}

// Confirm commits a previewed plan, at most once.
// POST /api/v1/allocation/confirm
func (h *AllocationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid plan_id")
		return
	}

	p, err := h.workflow.Confirm(r.Context(), planID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	// Write the committed assignment back to the case-package service.
	// Best-effort: the commit already happened.
	if h.registry != nil && p.PackageID != "" {
		if err := h.registry.SaveAssignment(r.Context(), p.PackageID, p); err != nil {
			h.logger.Warn("failed to save assignment to registry",
				"plan_id", p.ID, "package_id", p.PackageID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, p)
}

// Get returns a stored plan so a preview survives a page reload.
// GET /api/v1/allocation/plans/{id}
func (h *AllocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	planID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid plan id")
		return
	}
	p, err := h.workflow.Get(r.Context(), planID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "PLAN_NOT_FOUND", "plan not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
