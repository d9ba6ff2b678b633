package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/casepool/allocator/internal/notify"
	"github.com/casepool/allocator/internal/scoring"
)

// Store is the persistence the workflow needs: plan records plus the
// organization load counters a commit mutates. CommitPlan must apply the
// status flip and the load increments atomically, so a failed commit leaves
// no capacity booked.
type Store interface {
	CreatePlan(ctx context.Context, p *AllocationPlan) error
	GetPlan(ctx context.Context, id uuid.UUID) (*AllocationPlan, error)
	CommitPlan(ctx context.Context, id uuid.UUID, committedAt time.Time, orgLoads map[string]int) error
	PruneExpiredPreviews(ctx context.Context, before time.Time) ([]uuid.UUID, error)

	GetOrganization(ctx context.Context, orgID string) (*scoring.OrganizationProfile, error)
}

// Workflow drives the preview→confirm protocol around the planner.
// Previews are side-effect-free and safely re-runnable; organization load
// changes exactly once, at confirm time.
type Workflow struct {
	planner  *Planner
	store    Store
	notifier notify.Client
	logger   *slog.Logger

	retention     time.Duration
	pruneInterval time.Duration

	// Serializes load updates so two plans touching the same organizations
	// cannot double-book capacity.
	commitMu sync.Mutex

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewWorkflow creates a Workflow. notifier may be nil. Previewed plans older
// than retention are pruned by the retention loop.
func NewWorkflow(planner *Planner, store Store, notifier notify.Client, retention time.Duration, logger *slog.Logger) *Workflow {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &Workflow{
		planner:       planner,
		store:         store,
		notifier:      notifier,
		logger:        logger,
		retention:     retention,
		pruneInterval: time.Minute,
		stopCh:        make(chan struct{}),
	}
}

// Preview builds a fresh plan with a new plan ID and persists it with
// status PREVIEWED. It never mutates organization load or a previous plan.
func (wf *Workflow) Preview(ctx context.Context, req Request) (*AllocationPlan, error) {
	p, err := wf.planner.Build(req)
	if err != nil {
		return nil, err
	}
	if err := wf.store.CreatePlan(ctx, p); err != nil {
		return nil, fmt.Errorf("save plan: %w", err)
	}
	previewsTotal.Inc()

	if wf.notifier != nil {
		_ = wf.notifier.Publish(notify.SubjectPlanPreviewed(p.ID.String()), notify.PlanPreviewedEvent{
			PlanID:          p.ID.String(),
			TotalCases:      p.TotalCases,
			AssignedCases:   len(p.Assigned),
			UnassignedCases: len(p.Unassigned),
			CreatedAt:       p.CreatedAt,
		})
	}
	return p, nil
}

// Confirm transitions exactly one PREVIEWED plan to COMMITTED and applies
// currentLoad += assignedCount for each affected organization. Commit is
// at-most-once: a second call for the same plan fails with
// ErrPlanAlreadyCommitted.
func (wf *Workflow) Confirm(ctx context.Context, planID uuid.UUID) (*AllocationPlan, error) {
	wf.commitMu.Lock()
	defer wf.commitMu.Unlock()

	p, err := wf.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	if p == nil {
		commitConflictsTotal.WithLabelValues("not_found").Inc()
		return nil, ErrPlanNotFound
	}
	if p.Status == StatusCommitted {
		commitConflictsTotal.WithLabelValues("already_committed").Inc()
		return nil, ErrPlanAlreadyCommitted
	}

	orgIDs := make([]string, 0, len(p.PerOrgStats))
	for orgID := range p.PerOrgStats {
		orgIDs = append(orgIDs, orgID)
	}
	sort.Strings(orgIDs)

	// Re-check capacity against current load: a competing plan may have
	// committed since this one was previewed.
	for _, orgID := range orgIDs {
		org, err := wf.store.GetOrganization(ctx, orgID)
		if err != nil {
			return nil, fmt.Errorf("load organization %s: %w", orgID, err)
		}
		if org == nil || org.MaxCapacity == nil {
			continue
		}
		if org.CurrentLoad+p.PerOrgStats[orgID].AssignedCount > *org.MaxCapacity {
			commitConflictsTotal.WithLabelValues("capacity").Inc()
			return nil, fmt.Errorf("%w: %s", ErrCapacityExceeded, orgID)
		}
	}

	orgLoads := make(map[string]int, len(orgIDs))
	for _, orgID := range orgIDs {
		orgLoads[orgID] = p.PerOrgStats[orgID].AssignedCount
	}

	// Status flip and load increments land in one store transaction, so a
	// failure here books no capacity.
	now := time.Now().UTC()
	if err := wf.store.CommitPlan(ctx, planID, now, orgLoads); err != nil {
		return nil, fmt.Errorf("commit plan: %w", err)
	}
	p.Status = StatusCommitted
	p.CommittedAt = &now
	commitsTotal.Inc()

	wf.publishCommitted(p)

	if wf.logger != nil {
		wf.logger.Info("committed plan", "plan_id", p.ID, "assigned", len(p.Assigned))
	}
	return p, nil
}

// Get returns a stored plan, nil when unknown.
func (wf *Workflow) Get(ctx context.Context, planID uuid.UUID) (*AllocationPlan, error) {
	return wf.store.GetPlan(ctx, planID)
}

func (wf *Workflow) publishCommitted(p *AllocationPlan) {
	if wf.notifier == nil {
		return
	}
	_ = wf.notifier.Publish(notify.SubjectPlanCommitted(p.ID.String()), notify.PlanCommittedEvent{
		PlanID:        p.ID.String(),
		AssignedCases: len(p.Assigned),
		CommittedAt:   *p.CommittedAt,
	})
	for orgID, st := range p.PerOrgStats {
		_ = wf.notifier.Publish(notify.SubjectOrgAssigned(orgID), notify.OrgAssignedEvent{
			PlanID:        p.ID.String(),
			OrgID:         orgID,
			AssignedCount: st.AssignedCount,
			TotalAmount:   st.TotalAmount,
		})
	}
}

// StartRetentionLoop prunes abandoned previews in the background until
// Stop is called or ctx is cancelled.
func (wf *Workflow) StartRetentionLoop(ctx context.Context) {
	wf.wg.Add(1)
	go wf.retentionLoop(ctx)
}

// Stop halts the retention loop and waits for it to finish.
func (wf *Workflow) Stop() {
	wf.stopOnce.Do(func() { close(wf.stopCh) })
	wf.wg.Wait()
}

func (wf *Workflow) retentionLoop(ctx context.Context) {
	defer wf.wg.Done()
	ticker := time.NewTicker(wf.pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-wf.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			wf.pruneExpired(ctx)
		}
	}
}

func (wf *Workflow) pruneExpired(ctx context.Context) {
	// Serialized with Confirm so a prune cannot delete a plan mid-commit.
	wf.commitMu.Lock()
	defer wf.commitMu.Unlock()

	ids, err := wf.store.PruneExpiredPreviews(ctx, time.Now().UTC().Add(-wf.retention))
	if err != nil {
		if wf.logger != nil && !errors.Is(err, context.Canceled) {
			wf.logger.Error("failed to prune expired previews", "error", err)
		}
		return
	}
	if len(ids) == 0 {
		return
	}
	prunedPreviewsTotal.Add(float64(len(ids)))

	if wf.notifier != nil {
		now := time.Now().UTC()
		for _, id := range ids {
			_ = wf.notifier.Publish(notify.SubjectPlanExpired(id.String()), notify.PlanExpiredEvent{
				PlanID:    id.String(),
				ExpiredAt: now,
			})
		}
	}
	if wf.logger != nil {
		wf.logger.Info("pruned expired previews", "count", len(ids))
	}
}
