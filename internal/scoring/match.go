package scoring

import (
	"fmt"
	"log/slog"
	"sort"
)

// ReasonNoEligibleOrg marks a case for which no organization cleared the
// minimum match score.
const ReasonNoEligibleOrg = "NO_ELIGIBLE_ORG"

// CaseItem is one unassigned debt case. Read-only input to matching.
type CaseItem struct {
	CaseID      string  `json:"case_id"`
	CaseAmount  float64 `json:"case_amount"`
	Region      string  `json:"region"`
	DebtType    string  `json:"debt_type"`
	OverdueDays int     `json:"overdue_days"`
}

// OrganizationProfile describes a candidate handling organization.
// CurrentLoad is only ever incremented by a committed allocation plan,
// never by a preview. A nil MaxCapacity means unlimited capacity.
type OrganizationProfile struct {
	OrgID                  string   `json:"org_id"`
	OrgName                string   `json:"org_name"`
	Region                 string   `json:"region"`
	Specialties            []string `json:"specialties"`
	CurrentLoad            int      `json:"current_load"`
	MaxCapacity            *int     `json:"max_capacity,omitempty"`
	HistoricalRecoveryRate float64  `json:"historical_recovery_rate"` // percent, 0–100
	HistoricalSuccessRate  float64  `json:"historical_success_rate"`  // percent, 0–100
}

// HasCapacity reports whether the organization can take at least one more case.
func (o OrganizationProfile) HasCapacity() bool {
	return o.MaxCapacity == nil || o.CurrentLoad < *o.MaxCapacity
}

// Utilization returns currentLoad/maxCapacity as a percentage, 0 when
// capacity is unlimited.
func (o OrganizationProfile) Utilization() float64 {
	if o.MaxCapacity == nil || *o.MaxCapacity <= 0 {
		return 0
	}
	return float64(o.CurrentLoad) / float64(*o.MaxCapacity) * 100
}

// MatchResult is one case–organization match score with its explanation.
type MatchResult struct {
	CaseID      string  `json:"case_id"`
	OrgID       string  `json:"org_id"`
	MatchScore  float64 `json:"match_score"`
	MatchReason string  `json:"match_reason"`
}

// UnmatchedCase reports a case no organization was eligible for.
type UnmatchedCase struct {
	CaseID string `json:"case_id"`
	Reason string `json:"reason"`
}

// MatchScorer computes weighted case–organization match scores.
type MatchScorer struct {
	regionBaseScore float64
	logger          *slog.Logger
}

// NewMatchScorer creates a MatchScorer. regionBaseScore is the region score
// granted when the organization is outside the case's region (0 by default).
func NewMatchScorer(regionBaseScore float64, logger *slog.Logger) *MatchScorer {
	return &MatchScorer{regionBaseScore: regionBaseScore, logger: logger}
}

// MatchCases retains, for each case, the single highest-scoring eligible
// organization. Cases for which no organization clears minMatchScore are
// returned in the unmatched list with reason NO_ELIGIBLE_ORG.
func (s *MatchScorer) MatchCases(cases []CaseItem, orgs []OrganizationProfile, weights WeightSet, minMatchScore float64) ([]MatchResult, []UnmatchedCase, error) {
	if err := weights.Validate(); err != nil {
		return nil, nil, err
	}

	var matched []MatchResult
	var unmatched []UnmatchedCase
	for _, c := range cases {
		candidates := s.Candidates(c, orgs, weights, minMatchScore)
		if len(candidates) == 0 {
			unmatched = append(unmatched, UnmatchedCase{CaseID: c.CaseID, Reason: ReasonNoEligibleOrg})
			continue
		}
		matched = append(matched, candidates[0])
	}

	if s.logger != nil {
		s.logger.Debug("matched cases", "matched", len(matched), "unmatched", len(unmatched))
	}
	return matched, unmatched, nil
}

// Candidates returns every eligible organization for a case, best first.
// Eligibility requires available capacity and a score >= minMatchScore.
// Ties break on lower current load, then lower org ID.
func (s *MatchScorer) Candidates(c CaseItem, orgs []OrganizationProfile, weights WeightSet, minMatchScore float64) []MatchResult {
	loads := make(map[string]int, len(orgs))
	var out []MatchResult
	for _, org := range orgs {
		if !org.HasCapacity() {
			continue
		}
		score, reason := s.Score(c, org, weights)
		if score < minMatchScore {
			continue
		}
		loads[org.OrgID] = org.CurrentLoad
		out = append(out, MatchResult{
			CaseID:      c.CaseID,
			OrgID:       org.OrgID,
			MatchScore:  score,
			MatchReason: reason,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if loads[a.OrgID] != loads[b.OrgID] {
			return loads[a.OrgID] < loads[b.OrgID]
		}
		return a.OrgID < b.OrgID
	})
	return out
}

// Score computes the weighted match score for one case–organization pair.
func (s *MatchScorer) Score(c CaseItem, org OrganizationProfile, weights WeightSet) (float64, string) {
	regionScore := s.regionBaseScore
	if org.Region == c.Region {
		regionScore = 100
	}

	performanceScore := clamp(org.HistoricalRecoveryRate, 0, 100)

	// Unknown capacity gets a neutral load score.
	loadScore := 100.0
	if org.MaxCapacity != nil {
		loadScore = clamp(100-org.Utilization(), 0, 100)
	}

	specialtyScore := 0.0
	for _, sp := range org.Specialties {
		if sp == c.DebtType {
			specialtyScore = 100
			break
		}
	}

	score := (regionScore*float64(weights.Get(CriterionRegion)) +
		performanceScore*float64(weights.Get(CriterionPerformance)) +
		loadScore*float64(weights.Get(CriterionLoad)) +
		specialtyScore*float64(weights.Get(CriterionSpecialty))) / 100

	reason := fmt.Sprintf("region %s, performance %.0f, load %.0f, specialty %s",
		matchWord(regionScore == 100), performanceScore, loadScore, matchWord(specialtyScore == 100))
	return score, reason
}

func matchWord(matched bool) string {
	if matched {
		return "match"
	}
	return "miss"
}
