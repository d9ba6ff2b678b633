package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/casepool/allocator/internal/plan"
	"github.com/casepool/allocator/internal/scoring"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "code": code})
}

// writeEngineError maps engine sentinels to their HTTP status and stable code.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scoring.ErrEmptyBidList):
		writeError(w, http.StatusBadRequest, "EMPTY_BID_LIST", err.Error())
	case errors.Is(err, scoring.ErrInvalidWeight), errors.Is(err, scoring.ErrUnknownCriterion):
		writeError(w, http.StatusBadRequest, "INVALID_WEIGHT", err.Error())
	case errors.Is(err, plan.ErrEmptyCaseList), errors.Is(err, plan.ErrNoOrganizations):
		writeError(w, http.StatusBadRequest, "EMPTY_INPUT", err.Error())
	case errors.Is(err, plan.ErrPlanNotFound):
		writeError(w, http.StatusNotFound, "PLAN_NOT_FOUND", err.Error())
	case errors.Is(err, plan.ErrPlanAlreadyCommitted):
		writeError(w, http.StatusConflict, "PLAN_ALREADY_COMMITTED", err.Error())
	case errors.Is(err, plan.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, "CAPACITY_EXCEEDED", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}
