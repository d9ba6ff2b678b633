package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/casepool/allocator/internal/plan"
	"github.com/casepool/allocator/internal/scoring"
)

// PlanStats counts stored plans by status.
type PlanStats struct {
	TotalPreviewed int `json:"total_previewed"`
	TotalCommitted int `json:"total_committed"`
}

// Store persists allocation plans and organization profiles.
type Store interface {
	CreatePlan(ctx context.Context, p *plan.AllocationPlan) error
	GetPlan(ctx context.Context, id uuid.UUID) (*plan.AllocationPlan, error)
	CommitPlan(ctx context.Context, id uuid.UUID, committedAt time.Time, orgLoads map[string]int) error
	PruneExpiredPreviews(ctx context.Context, before time.Time) ([]uuid.UUID, error)
	GetPlanStats(ctx context.Context) (*PlanStats, error)

	GetOrganization(ctx context.Context, orgID string) (*scoring.OrganizationProfile, error)
	ListOrganizations(ctx context.Context) ([]scoring.OrganizationProfile, error)
	UpsertOrganization(ctx context.Context, org *scoring.OrganizationProfile) error

	Close() error
}
