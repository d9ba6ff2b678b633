package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/casepool/allocator/internal/scoring"
)

type WeightsHandler struct{}

func NewWeightsHandler() *WeightsHandler {
	return &WeightsHandler{}
}

type UpdateWeightRequest struct {
	Value   int            `json:"value"`
	Weights map[string]int `json:"weights"`
}

type UpdateWeightResponse struct {
	Criteria []string       `json:"criteria"`
	Weights  map[string]int `json:"weights"`
}

// Update renormalizes a caller-held weight distribution after one criterion
// changes, keeping the sum at exactly 100.
// PUT /api/v1/weights/{criterion}
func (h *WeightsHandler) Update(w http.ResponseWriter, r *http.Request) {
	criterion := chi.URLParam(r, "criterion")

	var req UpdateWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Value < 0 || req.Value > 100 {
		writeError(w, http.StatusBadRequest, "INVALID_WEIGHT", "value must be in [0,100]")
		return
	}

	ws, err := scoring.WeightSetFromMap(req.Weights)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	updated, err := ws.SetWeight(criterion, req.Value)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UpdateWeightResponse{
		Criteria: updated.Criteria(),
		Weights:  updated.Map(),
	})
}
