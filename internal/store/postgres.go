package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casepool/allocator/internal/plan"
	"github.com/casepool/allocator/internal/scoring"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

var (
	_ Store      = (*PostgresStore)(nil)
	_ plan.Store = (*PostgresStore)(nil)
)

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// planPayload is the JSON body stored alongside the indexed plan columns.
type planPayload struct {
	Assigned    []plan.Assignment        `json:"assigned"`
	Unassigned  []plan.UnassignedCase    `json:"unassigned"`
	PerOrgStats map[string]plan.OrgStats `json:"per_org_stats"`
}

func (s *PostgresStore) CreatePlan(ctx context.Context, p *plan.AllocationPlan) error {
	payload, err := json.Marshal(planPayload{
		Assigned:    p.Assigned,
		Unassigned:  p.Unassigned,
		PerOrgStats: p.PerOrgStats,
	})
	if err != nil {
		return fmt.Errorf("marshal plan payload: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO allocation_plans (plan_id, package_id, status, total_cases,
			full_assignment_achieved, allow_partial_assignment, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.PackageID, p.Status, p.TotalCases,
		p.FullAssignmentAchieved, p.AllowPartialAssignment, payload, p.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetPlan(ctx context.Context, id uuid.UUID) (*plan.AllocationPlan, error) {
	p := &plan.AllocationPlan{}
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT plan_id, package_id, status, total_cases, full_assignment_achieved,
			allow_partial_assignment, payload, created_at, committed_at
		FROM allocation_plans WHERE plan_id = $1`, id,
	).Scan(
		&p.ID, &p.PackageID, &p.Status, &p.TotalCases, &p.FullAssignmentAchieved,
		&p.AllowPartialAssignment, &payload, &p.CreatedAt, &p.CommittedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var body planPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("unmarshal plan payload: %w", err)
	}
	p.Assigned = body.Assigned
	p.Unassigned = body.Unassigned
	p.PerOrgStats = body.PerOrgStats
	return p, nil
}

// CommitPlan flips one previewed plan to committed and applies each
// organization's assigned count to its load counter, all inside a single
// transaction. A failure on either side rolls back both, so a plan is never
// half-committed and capacity is never booked without a committed plan.
func (s *PostgresStore) CommitPlan(ctx context.Context, id uuid.UUID, committedAt time.Time, orgLoads map[string]int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE allocation_plans
		SET status = $2, committed_at = $3
		WHERE plan_id = $1 AND status = $4`,
		id, plan.StatusCommitted, committedAt, plan.StatusPreviewed,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return plan.ErrPlanAlreadyCommitted
	}

	orgIDs := make([]string, 0, len(orgLoads))
	for orgID := range orgLoads {
		orgIDs = append(orgIDs, orgID)
	}
	sort.Strings(orgIDs)

	for _, orgID := range orgIDs {
		tag, err := tx.Exec(ctx, `
			UPDATE organizations
			SET current_load = current_load + $2
			WHERE org_id = $1
			  AND (max_capacity IS NULL OR current_load + $2 <= max_capacity)`,
			orgID, orgLoads[orgID],
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			// Unknown org (inline preview input) is fine; a capacity clamp is not.
			var exists bool
			if err := tx.QueryRow(ctx, `
				SELECT EXISTS (SELECT 1 FROM organizations WHERE org_id = $1)`, orgID,
			).Scan(&exists); err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: %s", plan.ErrCapacityExceeded, orgID)
			}
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) PruneExpiredPreviews(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, `
		DELETE FROM allocation_plans
		WHERE status = $1 AND created_at < $2
		RETURNING plan_id`,
		plan.StatusPreviewed, before,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) GetPlanStats(ctx context.Context) (*PlanStats, error) {
	stats := &PlanStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'previewed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'committed' THEN 1 ELSE 0 END), 0)
		FROM allocation_plans`,
	).Scan(&stats.TotalPreviewed, &stats.TotalCommitted)
	return stats, err
}

const orgColumns = `org_id, org_name, region, specialties, current_load,
	max_capacity, historical_recovery_rate, historical_success_rate`

func (s *PostgresStore) GetOrganization(ctx context.Context, orgID string) (*scoring.OrganizationProfile, error) {
	org := &scoring.OrganizationProfile{}
	err := s.pool.QueryRow(ctx, `
		SELECT `+orgColumns+`
		FROM organizations WHERE org_id = $1`, orgID,
	).Scan(
		&org.OrgID, &org.OrgName, &org.Region, &org.Specialties, &org.CurrentLoad,
		&org.MaxCapacity, &org.HistoricalRecoveryRate, &org.HistoricalSuccessRate,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return org, nil
}

func (s *PostgresStore) ListOrganizations(ctx context.Context) ([]scoring.OrganizationProfile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+orgColumns+`
		FROM organizations ORDER BY org_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []scoring.OrganizationProfile
	for rows.Next() {
		var org scoring.OrganizationProfile
		if err := rows.Scan(
			&org.OrgID, &org.OrgName, &org.Region, &org.Specialties, &org.CurrentLoad,
			&org.MaxCapacity, &org.HistoricalRecoveryRate, &org.HistoricalSuccessRate,
		); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

func (s *PostgresStore) UpsertOrganization(ctx context.Context, org *scoring.OrganizationProfile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO organizations (`+orgColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (org_id) DO UPDATE SET
			org_name = EXCLUDED.org_name,
			region = EXCLUDED.region,
			specialties = EXCLUDED.specialties,
			current_load = EXCLUDED.current_load,
			max_capacity = EXCLUDED.max_capacity,
			historical_recovery_rate = EXCLUDED.historical_recovery_rate,
			historical_success_rate = EXCLUDED.historical_success_rate`,
		org.OrgID, org.OrgName, org.Region, org.Specialties, org.CurrentLoad,
		org.MaxCapacity, org.HistoricalRecoveryRate, org.HistoricalSuccessRate,
	)
	return err
}

