package plan

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/casepool/allocator/internal/scoring"
)

// Request carries the inputs for building one allocation plan.
type Request struct {
	PackageID              string
	Cases                  []scoring.CaseItem
	Organizations          []scoring.OrganizationProfile
	Weights                scoring.WeightSet
	MinMatchScore          float64
	MaxCasesPerOrg         int // 0 = no per-plan cap
	AllowPartialAssignment bool
}

// Planner turns match scores into an assignment plan.
type Planner struct {
	scorer *scoring.MatchScorer
	logger *slog.Logger
}

// NewPlanner creates a Planner using the given match scorer.
func NewPlanner(scorer *scoring.MatchScorer, logger *slog.Logger) *Planner {
	return &Planner{scorer: scorer, logger: logger}
}

// Build assigns cases greedily to their best-matching organization in
// descending match-score order. An organization is skipped once its
// per-plan assignment count reaches MaxCasesPerOrg or its real remaining
// capacity is used up; the case then falls back to its next-best candidate.
// Inputs are never mutated.
func (p *Planner) Build(req Request) (*AllocationPlan, error) {
	if len(req.Cases) == 0 {
		return nil, ErrEmptyCaseList
	}
	if len(req.Organizations) == 0 {
		return nil, ErrNoOrganizations
	}
	if err := req.Weights.Validate(); err != nil {
		return nil, err
	}

	orgByID := make(map[string]scoring.OrganizationProfile, len(req.Organizations))
	for _, org := range req.Organizations {
		orgByID[org.OrgID] = org
	}

	type caseCandidates struct {
		c          scoring.CaseItem
		candidates []scoring.MatchResult
	}
	ranked := make([]caseCandidates, 0, len(req.Cases))
	for _, c := range req.Cases {
		ranked = append(ranked, caseCandidates{
			c:          c,
			candidates: p.scorer.Candidates(c, req.Organizations, req.Weights, req.MinMatchScore),
		})
	}

	// Cases with the strongest best match are placed first; ties go to the
	// lower case ID so plans are reproducible.
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		as, bs := bestScore(a.candidates), bestScore(b.candidates)
		if as != bs {
			return as > bs
		}
		return a.c.CaseID < b.c.CaseID
	})

	out := &AllocationPlan{
		ID:                     uuid.New(),
		PackageID:              req.PackageID,
		TotalCases:             len(req.Cases),
		PerOrgStats:            make(map[string]OrgStats),
		AllowPartialAssignment: req.AllowPartialAssignment,
		Status:                 StatusPreviewed,
		CreatedAt:              time.Now().UTC(),
	}

	planCounts := make(map[string]int)
	for _, rc := range ranked {
		if len(rc.candidates) == 0 {
			out.Unassigned = append(out.Unassigned, UnassignedCase{CaseID: rc.c.CaseID, Reason: ReasonNoEligibleOrg})
			continue
		}
		placed := false
		for _, cand := range rc.candidates {
			if req.MaxCasesPerOrg > 0 && planCounts[cand.OrgID] >= req.MaxCasesPerOrg {
				continue
			}
			org := orgByID[cand.OrgID]
			if org.MaxCapacity != nil && org.CurrentLoad+planCounts[cand.OrgID] >= *org.MaxCapacity {
				continue
			}
			planCounts[cand.OrgID]++
			out.Assigned = append(out.Assigned, Assignment{
				CaseID:     rc.c.CaseID,
				OrgID:      cand.OrgID,
				CaseAmount: rc.c.CaseAmount,
				MatchScore: cand.MatchScore,
				Reason:     cand.MatchReason,
			})
			placed = true
			break
		}
		if !placed {
			out.Unassigned = append(out.Unassigned, UnassignedCase{CaseID: rc.c.CaseID, Reason: ReasonOrgCapacityExhausted})
		}
	}

	out.FullAssignmentAchieved = len(out.Unassigned) == 0
	p.aggregateOrgStats(out, orgByID)

	if p.logger != nil {
		p.logger.Info("built allocation plan",
			"plan_id", out.ID,
			"total", out.TotalCases,
			"assigned", len(out.Assigned),
			"unassigned", len(out.Unassigned),
		)
	}
	return out, nil
}

func (p *Planner) aggregateOrgStats(out *AllocationPlan, orgByID map[string]scoring.OrganizationProfile) {
	for _, a := range out.Assigned {
		st := out.PerOrgStats[a.OrgID]
		st.AssignedCount++
		st.TotalAmount += a.CaseAmount
		st.AvgMatchScore += a.MatchScore
		out.PerOrgStats[a.OrgID] = st
	}
	for orgID, st := range out.PerOrgStats {
		st.AvgMatchScore /= float64(st.AssignedCount)
		if org, ok := orgByID[orgID]; ok && org.MaxCapacity != nil && *org.MaxCapacity > 0 {
			st.ResultingUtilization = float64(org.CurrentLoad+st.AssignedCount) / float64(*org.MaxCapacity) * 100
		}
		out.PerOrgStats[orgID] = st
	}
}

func bestScore(candidates []scoring.MatchResult) float64 {
	if len(candidates) == 0 {
		return -1
	}
	return candidates[0].MatchScore
}
