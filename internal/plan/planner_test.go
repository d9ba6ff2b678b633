package plan

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/casepool/allocator/internal/scoring"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func newTestPlanner() *Planner {
	return NewPlanner(scoring.NewMatchScorer(0, discardLogger()), discardLogger())
}

func TestBuildValidation(t *testing.T) {
	p := newTestPlanner()
	orgs := []scoring.OrganizationProfile{{OrgID: "org-1"}}
	cases := []scoring.CaseItem{{CaseID: "case-1"}}

	if _, err := p.Build(Request{Organizations: orgs, Weights: scoring.DefaultMatchWeights()}); !errors.Is(err, ErrEmptyCaseList) {
		t.Errorf("expected ErrEmptyCaseList, got %v", err)
	}
	if _, err := p.Build(Request{Cases: cases, Weights: scoring.DefaultMatchWeights()}); !errors.Is(err, ErrNoOrganizations) {
		t.Errorf("expected ErrNoOrganizations, got %v", err)
	}
}

func TestBuildAssignsBestOrg(t *testing.T) {
	p := newTestPlanner()
	plan, err := p.Build(Request{
		PackageID: "pkg-1",
		Cases: []scoring.CaseItem{
			{CaseID: "case-1", CaseAmount: 50000, Region: "Beijing", DebtType: "credit_card"},
		},
		Organizations: []scoring.OrganizationProfile{
			{OrgID: "org-local", Region: "Beijing", Specialties: []string{"credit_card"}, HistoricalRecoveryRate: 80},
			{OrgID: "org-remote", Region: "Shanghai", HistoricalRecoveryRate: 90},
		},
		Weights:       scoring.DefaultMatchWeights(),
		MinMatchScore: 60,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(plan.Assigned) != 1 || plan.Assigned[0].OrgID != "org-local" {
		t.Fatalf("expected case-1 on org-local, got %+v", plan.Assigned)
	}
	if !plan.FullAssignmentAchieved {
		t.Error("expected full assignment")
	}
	if plan.Status != StatusPreviewed {
		t.Errorf("fresh plan should be previewed, got %s", plan.Status)
	}
	if plan.TotalCases != 1 {
		t.Errorf("expected total 1, got %d", plan.TotalCases)
	}
}

func TestBuildFallsBackWhenOrgCapped(t *testing.T) {
	p := newTestPlanner()
	plan, err := p.Build(Request{
		Cases: []scoring.CaseItem{
			{CaseID: "case-1", Region: "Beijing", DebtType: "credit_card"},
			{CaseID: "case-2", Region: "Beijing", DebtType: "credit_card"},
			{CaseID: "case-3", Region: "Beijing", DebtType: "credit_card"},
		},
		Organizations: []scoring.OrganizationProfile{
			{OrgID: "org-best", Region: "Beijing", Specialties: []string{"credit_card"}, HistoricalRecoveryRate: 90},
			{OrgID: "org-next", Region: "Beijing", Specialties: []string{"credit_card"}, HistoricalRecoveryRate: 60},
		},
		Weights:        scoring.DefaultMatchWeights(),
		MinMatchScore:  60,
		MaxCasesPerOrg: 2,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(plan.Assigned) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(plan.Assigned))
	}
	counts := make(map[string]int)
	for _, a := range plan.Assigned {
		counts[a.OrgID]++
	}
	if counts["org-best"] != 2 || counts["org-next"] != 1 {
		t.Errorf("expected 2 on org-best and the overflow on org-next, got %v", counts)
	}
}

func TestBuildRespectsRemainingCapacity(t *testing.T) {
	p := newTestPlanner()
	plan, err := p.Build(Request{
		Cases: []scoring.CaseItem{
			{CaseID: "case-1", Region: "Beijing", DebtType: "credit_card"},
			{CaseID: "case-2", Region: "Beijing", DebtType: "credit_card"},
		},
		Organizations: []scoring.OrganizationProfile{
			// One slot left: load 9 of 10.
			{OrgID: "org-1", Region: "Beijing", Specialties: []string{"credit_card"}, HistoricalRecoveryRate: 90, CurrentLoad: 9, MaxCapacity: intPtr(10)},
		},
		Weights:       scoring.DefaultMatchWeights(),
		MinMatchScore: 60,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(plan.Assigned) != 1 {
		t.Fatalf("expected exactly one assignment, got %d", len(plan.Assigned))
	}
	if len(plan.Unassigned) != 1 || plan.Unassigned[0].Reason != ReasonOrgCapacityExhausted {
		t.Fatalf("expected one ORG_CAPACITY_EXHAUSTED case, got %+v", plan.Unassigned)
	}
	if plan.FullAssignmentAchieved {
		t.Error("expected partial assignment")
	}
}

func TestBuildReportsNoEligibleOrg(t *testing.T) {
	p := newTestPlanner()
	plan, err := p.Build(Request{
		Cases: []scoring.CaseItem{{CaseID: "case-1", Region: "Beijing", DebtType: "credit_card"}},
		Organizations: []scoring.OrganizationProfile{
			{OrgID: "org-1", Region: "Shanghai", Specialties: []string{"auto_loan"}},
		},
		Weights:       scoring.DefaultMatchWeights(),
		MinMatchScore: 60,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(plan.Unassigned) != 1 || plan.Unassigned[0].Reason != ReasonNoEligibleOrg {
		t.Fatalf("expected NO_ELIGIBLE_ORG, got %+v", plan.Unassigned)
	}
}

func TestBuildOrgStats(t *testing.T) {
	p := newTestPlanner()
	plan, err := p.Build(Request{
		Cases: []scoring.CaseItem{
			{CaseID: "case-1", CaseAmount: 10000, Region: "Beijing", DebtType: "credit_card"},
			{CaseID: "case-2", CaseAmount: 30000, Region: "Beijing", DebtType: "credit_card"},
		},
		Organizations: []scoring.OrganizationProfile{
			{OrgID: "org-1", Region: "Beijing", Specialties: []string{"credit_card"}, HistoricalRecoveryRate: 80, CurrentLoad: 3, MaxCapacity: intPtr(10)},
		},
		Weights:       scoring.DefaultMatchWeights(),
		MinMatchScore: 60,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	st, ok := plan.PerOrgStats["org-1"]
	if !ok {
		t.Fatal("missing org-1 stats")
	}
	if st.AssignedCount != 2 {
		t.Errorf("expected 2 assigned, got %d", st.AssignedCount)
	}
	if st.TotalAmount != 40000 {
		t.Errorf("expected total amount 40000, got %.0f", st.TotalAmount)
	}
	// (3 + 2) / 10
	if math.Abs(st.ResultingUtilization-50) > 1e-9 {
		t.Errorf("expected resulting utilization 50, got %.2f", st.ResultingUtilization)
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	p := newTestPlanner()
	orgs := []scoring.OrganizationProfile{
		{OrgID: "org-1", Region: "Beijing", Specialties: []string{"credit_card"}, HistoricalRecoveryRate: 80, CurrentLoad: 2, MaxCapacity: intPtr(10)},
	}
	_, err := p.Build(Request{
		Cases:         []scoring.CaseItem{{CaseID: "case-1", Region: "Beijing", DebtType: "credit_card"}},
		Organizations: orgs,
		Weights:       scoring.DefaultMatchWeights(),
		MinMatchScore: 60,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if orgs[0].CurrentLoad != 2 {
		t.Errorf("planner mutated organization load: %d", orgs[0].CurrentLoad)
	}
}

func TestBuildFreshPlanIDs(t *testing.T) {
	p := newTestPlanner()
	req := Request{
		Cases:         []scoring.CaseItem{{CaseID: "case-1", Region: "Beijing", DebtType: "credit_card"}},
		Organizations: []scoring.OrganizationProfile{{OrgID: "org-1", Region: "Beijing", Specialties: []string{"credit_card"}, HistoricalRecoveryRate: 80}},
		Weights:       scoring.DefaultMatchWeights(),
		MinMatchScore: 60,
	}
	first, err := p.Build(req)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	second, err := p.Build(req)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if first.ID == second.ID {
		t.Error("two previews should carry distinct plan IDs")
	}
	if len(first.Assigned) != len(second.Assigned) || first.Assigned[0].OrgID != second.Assigned[0].OrgID {
		t.Error("identical inputs should produce identical assignments")
	}
}
