package notify

import "time"

type PlanPreviewedEvent struct {
	PlanID          string    `json:"plan_id"`
	TotalCases      int       `json:"total_cases"`
	AssignedCases   int       `json:"assigned_cases"`
	UnassignedCases int       `json:"unassigned_cases"`
	CreatedAt       time.Time `json:"created_at"`
}

type PlanExpiredEvent struct {
	PlanID    string    `json:"plan_id"`
	ExpiredAt time.Time `json:"expired_at"`
}

type PlanCommittedEvent struct {
	PlanID        string    `json:"plan_id"`
	AssignedCases int       `json:"assigned_cases"`
	CommittedAt   time.Time `json:"committed_at"`
}

type OrgAssignedEvent struct {
	PlanID        string  `json:"plan_id"`
	OrgID         string  `json:"org_id"`
	AssignedCount int     `json:"assigned_count"`
	TotalAmount   float64 `json:"total_amount"`
}

type BidsScoredEvent struct {
	PackageID    string  `json:"package_id,omitempty"`
	BidCount     int     `json:"bid_count"`
	WinningBidID string  `json:"winning_bid_id"`
	WinningScore float64 `json:"winning_score"`
}
