package plan

import "errors"

var (
	// ErrEmptyCaseList is returned when a preview carries no cases.
	ErrEmptyCaseList = errors.New("empty case list")

	// ErrNoOrganizations is returned when a preview carries no candidates.
	ErrNoOrganizations = errors.New("no candidate organizations")

	// ErrPlanNotFound is returned for an unknown plan ID.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrPlanAlreadyCommitted is returned on a second confirm for the same
	// plan. Commit is at-most-once; callers needing a retry re-run preview.
	ErrPlanAlreadyCommitted = errors.New("plan already committed")

	// ErrCapacityExceeded is returned when a commit would push an
	// organization past its capacity, e.g. after a competing plan committed
	// first.
	ErrCapacityExceeded = errors.New("organization capacity exceeded")
)
