package plan

import (
	"time"

	"github.com/google/uuid"
)

// Status of an allocation plan. PlanCommitted is terminal.
type Status string

const (
	StatusPreviewed Status = "previewed"
	StatusCommitted Status = "committed"
)

// Unassignment reasons.
const (
	ReasonNoEligibleOrg        = "NO_ELIGIBLE_ORG"
	ReasonOrgCapacityExhausted = "ORG_CAPACITY_EXHAUSTED"
)

// Assignment maps one case to the organization that will handle it.
type Assignment struct {
	CaseID     string  `json:"case_id"`
	OrgID      string  `json:"org_id"`
	CaseAmount float64 `json:"case_amount"`
	MatchScore float64 `json:"match_score"`
	Reason     string  `json:"reason"`
}

// UnassignedCase is a case the plan could not place, with the reason why.
type UnassignedCase struct {
	CaseID string `json:"case_id"`
	Reason string `json:"reason"`
}

// OrgStats aggregates a plan's effect on one organization.
type OrgStats struct {
	AssignedCount        int     `json:"assigned_count"`
	TotalAmount          float64 `json:"total_amount"`
	AvgMatchScore        float64 `json:"avg_match_score"`
	ResultingUtilization float64 `json:"resulting_utilization"` // percent, 0 when capacity unlimited
}

// AllocationPlan is a staged case→organization assignment. It is created
// only by Preview and becomes permanent only through Confirm.
type AllocationPlan struct {
	ID                     uuid.UUID           `json:"plan_id"`
	PackageID              string              `json:"package_id,omitempty"`
	TotalCases             int                 `json:"total_cases"`
	Assigned               []Assignment        `json:"assigned"`
	Unassigned             []UnassignedCase    `json:"unassigned"`
	PerOrgStats            map[string]OrgStats `json:"per_org_stats"`
	FullAssignmentAchieved bool                `json:"full_assignment_achieved"`
	AllowPartialAssignment bool                `json:"allow_partial_assignment"`
	Status                 Status              `json:"status"`
	CreatedAt              time.Time           `json:"created_at"`
	CommittedAt            *time.Time          `json:"committed_at,omitempty"`
}

// AssignedCount returns the number of placed cases.
func (p *AllocationPlan) AssignedCount() int {
	return len(p.Assigned)
}
