package scoring

import (
	"log/slog"
	"sort"
	"time"
)

// BidSubmission is one organization's competing proposal for a case package.
// Inputs are never mutated by scoring; ScoredBid is a derived view.
type BidSubmission struct {
	BidID                string    `json:"bid_id"`
	OrganizationID       string    `json:"organization_id"`
	OrganizationName     string    `json:"organization_name"`
	BidAmount            float64   `json:"bid_amount"`
	ProposedRecoveryRate float64   `json:"proposed_recovery_rate"` // percent, 0–100
	ProposedDisposalDays int       `json:"proposed_disposal_days"`
	SubmittedAt          time.Time `json:"submitted_at"`
}

// ScoredBid is a BidSubmission plus its per-criterion and comprehensive
// scores and 1-based rank.
type ScoredBid struct {
	BidSubmission
	PriceScore         float64 `json:"price_score"`
	TechnicalScore     float64 `json:"technical_score"`
	RecoveryScore      float64 `json:"recovery_score"`
	ExperienceScore    float64 `json:"experience_score"`
	ProposalScore      float64 `json:"proposal_score"`
	ComprehensiveScore float64 `json:"comprehensive_score"`
	Rank               int     `json:"rank"`
}

// Evaluator supplies the experience and proposal scores for a bid. These two
// criteria have no computed inputs in the bid itself; production deployments
// plug in an evaluator backed by historical-performance data.
type Evaluator interface {
	Evaluate(bid BidSubmission) (experience, proposal float64)
}

// FixedEvaluator returns the same experience/proposal scores for every bid.
type FixedEvaluator struct {
	Experience float64
	Proposal   float64
}

func (e FixedEvaluator) Evaluate(BidSubmission) (float64, float64) {
	return e.Experience, e.Proposal
}

// DefaultEvaluator carries the legacy placeholder scores used until a real
// historical-performance evaluator is wired in.
func DefaultEvaluator() Evaluator {
	return FixedEvaluator{Experience: 80, Proposal: 75}
}

// BidScorer turns competing bid submissions into ranked ScoredBids.
type BidScorer struct {
	evaluator Evaluator
	logger    *slog.Logger
}

// NewBidScorer creates a BidScorer with the given evaluator.
func NewBidScorer(evaluator Evaluator, logger *slog.Logger) *BidScorer {
	if evaluator == nil {
		evaluator = DefaultEvaluator()
	}
	return &BidScorer{evaluator: evaluator, logger: logger}
}

// ScoreBids computes per-criterion and comprehensive scores for every bid
// and assigns ranks 1..N. Min–max statistics are recomputed on every call
// since the bid set changes between calls. Either every bid gets a score or
// the call fails outright.
func (s *BidScorer) ScoreBids(bids []BidSubmission, weights WeightSet) ([]ScoredBid, error) {
	if len(bids) == 0 {
		return nil, ErrEmptyBidList
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	minAmount, maxAmount := bids[0].BidAmount, bids[0].BidAmount
	minDays := bids[0].ProposedDisposalDays
	maxRecovery := bids[0].ProposedRecoveryRate
	for _, b := range bids[1:] {
		if b.BidAmount < minAmount {
			minAmount = b.BidAmount
		}
		if b.BidAmount > maxAmount {
			maxAmount = b.BidAmount
		}
		if b.ProposedDisposalDays < minDays {
			minDays = b.ProposedDisposalDays
		}
		if b.ProposedRecoveryRate > maxRecovery {
			maxRecovery = b.ProposedRecoveryRate
		}
	}

	scored := make([]ScoredBid, len(bids))
	for i, b := range bids {
		sb := ScoredBid{BidSubmission: b}

		// Higher bid amount is better: the seller wants the highest payer.
		if maxAmount == minAmount {
			sb.PriceScore = 100
		} else {
			sb.PriceScore = (b.BidAmount - minAmount) / (maxAmount - minAmount) * 100
		}

		if b.ProposedDisposalDays == minDays {
			sb.TechnicalScore = 100
		} else {
			over := float64(b.ProposedDisposalDays-minDays) / float64(minDays)
			sb.TechnicalScore = clamp(100-over*50, 0, 100)
		}

		if maxRecovery > 0 {
			sb.RecoveryScore = b.ProposedRecoveryRate / maxRecovery * 100
		}

		sb.ExperienceScore, sb.ProposalScore = s.evaluator.Evaluate(b)

		sb.ComprehensiveScore = (sb.PriceScore*float64(weights.Get(CriterionPrice)) +
			sb.TechnicalScore*float64(weights.Get(CriterionTechnical)) +
			sb.RecoveryScore*float64(weights.Get(CriterionRecoveryRate)) +
			sb.ExperienceScore*float64(weights.Get(CriterionExperience)) +
			sb.ProposalScore*float64(weights.Get(CriterionProposal))) / 100

		scored[i] = sb
	}

	rankBids(scored)

	if s.logger != nil {
		s.logger.Debug("scored bids", "count", len(scored), "winner", scored[0].BidID)
	}
	return scored, nil
}

// rankBids sorts descending by comprehensive score with a total-order
// tie-break: higher proposed recovery rate, earlier submission, then
// lexicographic bid ID.
func rankBids(scored []ScoredBid) {
	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.ComprehensiveScore != b.ComprehensiveScore {
			return a.ComprehensiveScore > b.ComprehensiveScore
		}
		if a.ProposedRecoveryRate != b.ProposedRecoveryRate {
			return a.ProposedRecoveryRate > b.ProposedRecoveryRate
		}
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
		return a.BidID < b.BidID
	})
	for i := range scored {
		scored[i].Rank = i + 1
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
