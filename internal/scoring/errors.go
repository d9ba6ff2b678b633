package scoring

import "errors"

var (
	// ErrEmptyBidList is returned when scoring is requested for zero bids.
	ErrEmptyBidList = errors.New("empty bid list")

	// ErrInvalidWeight covers out-of-range weights and sum drift.
	ErrInvalidWeight = errors.New("invalid weight")

	// ErrUnknownCriterion is returned for a criterion outside the distribution.
	ErrUnknownCriterion = errors.New("unknown criterion")
)
