package api

import (
	"encoding/json"
	"net/http"

	"github.com/casepool/allocator/internal/notify"
	"github.com/casepool/allocator/internal/scoring"
)

type BidsHandler struct {
	scorer   *scoring.BidScorer
	notifier notify.Client
	defaults scoring.WeightSet
}

func NewBidsHandler(scorer *scoring.BidScorer, notifier notify.Client, defaults scoring.WeightSet) *BidsHandler {
	return &BidsHandler{scorer: scorer, notifier: notifier, defaults: defaults}
}

type ScoreBidsRequest struct {
	PackageID string                  `json:"package_id,omitempty"`
	Bids      []scoring.BidSubmission `json:"bids"`
	Weights   map[string]int          `json:"weights,omitempty"`
}

type ScoreBidsResponse struct {
	ScoredBids []scoring.ScoredBid `json:"scored_bids"`
}

// Score ranks competing bids for a case package.
// POST /api/v1/bids/score
func (h *BidsHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreBidsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	weights := h.defaults
	if len(req.Weights) > 0 {
		var err error
		weights, err = scoring.WeightSetFromMap(req.Weights)
		if err != nil {
			writeEngineError(w, err)
			return
		}
	}

	scored, err := h.scorer.ScoreBids(req.Bids, weights)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	// No package ID means no valid subject to publish on.
	if h.notifier != nil && req.PackageID != "" {
		_ = h.notifier.Publish(notify.SubjectBidsScored(req.PackageID), notify.BidsScoredEvent{
			PackageID:    req.PackageID,
			BidCount:     len(scored),
			WinningBidID: scored[0].BidID,
			WinningScore: scored[0].ComprehensiveScore,
		})
	}

	writeJSON(w, http.StatusOK, ScoreBidsResponse{ScoredBids: scored})
}
