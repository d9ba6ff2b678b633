package api

import (
	"encoding/json"
	"net/http"

	"github.com/casepool/allocator/internal/scoring"
	"github.com/casepool/allocator/internal/store"
)

type AdminHandler struct {
	store store.Store
}

func NewAdminHandler(s store.Store) *AdminHandler {
	return &AdminHandler{store: s}
}

// Stats returns plan counts by status.
// GET /api/v1/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetPlanStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListOrganizations returns every registered organization profile.
// GET /api/v1/organizations
func (h *AdminHandler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.store.ListOrganizations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	if orgs == nil {
		orgs = []scoring.OrganizationProfile{}
	}
	writeJSON(w, http.StatusOK, orgs)
}

// UpsertOrganization registers or updates an organization profile.
// POST /api/v1/organizations
func (h *AdminHandler) UpsertOrganization(w http.ResponseWriter, r *http.Request) {
	var org scoring.OrganizationProfile
	if err := json.NewDecoder(r.Body).Decode(&org); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if org.OrgID == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "org_id required")
		return
	}
	if err := h.store.UpsertOrganization(r.Context(), &org); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, org)
}
