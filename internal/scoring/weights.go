package scoring

import (
	"fmt"
	"math"
	"sort"
)

// Criterion names for the bid scoring weight distribution.
const (
	CriterionPrice        = "price"
	CriterionTechnical    = "technical"
	CriterionExperience   = "experience"
	CriterionProposal     = "proposal"
	CriterionRecoveryRate = "recovery_rate"
)

// Criterion names for the case–organization match weight distribution.
const (
	CriterionRegion      = "region"
	CriterionPerformance = "performance"
	CriterionLoad        = "load"
	CriterionSpecialty   = "specialty"
)

// WeightSet is an ordered distribution of integer percentage weights over
// named criteria. The sum of all weights is exactly 100 after construction
// and after every SetWeight call.
type WeightSet struct {
	criteria []string
	weights  map[string]int
}

// NewWeightSet builds a WeightSet from ordered criteria and their weights.
func NewWeightSet(criteria []string, weights map[string]int) (WeightSet, error) {
	ws := WeightSet{
		criteria: append([]string(nil), criteria...),
		weights:  make(map[string]int, len(criteria)),
	}
	for _, c := range criteria {
		w, ok := weights[c]
		if !ok {
			return WeightSet{}, fmt.Errorf("%w: %s", ErrUnknownCriterion, c)
		}
		ws.weights[c] = w
	}
	if err := ws.Validate(); err != nil {
		return WeightSet{}, err
	}
	return ws, nil
}

// DefaultBidWeights returns the default distribution for bid scoring.
func DefaultBidWeights() WeightSet {
	return WeightSet{
		criteria: []string{
			CriterionPrice, CriterionTechnical, CriterionExperience,
			CriterionProposal, CriterionRecoveryRate,
		},
		weights: map[string]int{
			CriterionPrice:        30,
			CriterionTechnical:    25,
			CriterionExperience:   20,
			CriterionProposal:     15,
			CriterionRecoveryRate: 10,
		},
	}
}

// DefaultMatchWeights returns the default distribution for case matching.
func DefaultMatchWeights() WeightSet {
	return WeightSet{
		criteria: []string{
			CriterionRegion, CriterionPerformance, CriterionLoad, CriterionSpecialty,
		},
		weights: map[string]int{
			CriterionRegion:      30,
			CriterionPerformance: 30,
			CriterionLoad:        20,
			CriterionSpecialty:   20,
		},
	}
}

// WeightSetFromMap builds a WeightSet from a plain map, using the default
// criterion order when the keys match a known distribution and sorted order
// otherwise.
func WeightSetFromMap(m map[string]int) (WeightSet, error) {
	for _, known := range []WeightSet{DefaultBidWeights(), DefaultMatchWeights()} {
		if sameCriteria(m, known.criteria) {
			return NewWeightSet(known.criteria, m)
		}
	}
	criteria := make([]string, 0, len(m))
	for c := range m {
		criteria = append(criteria, c)
	}
	sort.Strings(criteria)
	return NewWeightSet(criteria, m)
}

func sameCriteria(m map[string]int, criteria []string) bool {
	if len(m) != len(criteria) {
		return false
	}
	for _, c := range criteria {
		if _, ok := m[c]; !ok {
			return false
		}
	}
	return true
}

// Criteria returns the criterion names in their defined order.
func (w WeightSet) Criteria() []string {
	return append([]string(nil), w.criteria...)
}

// Get returns the weight for a criterion, 0 if unknown.
func (w WeightSet) Get(criterion string) int {
	return w.weights[criterion]
}

// Has reports whether the criterion is part of this distribution.
func (w WeightSet) Has(criterion string) bool {
	_, ok := w.weights[criterion]
	return ok
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() int {
	total := 0
	for _, c := range w.criteria {
		total += w.weights[c]
	}
	return total
}

// Map returns the distribution as a plain criterion→weight map.
func (w WeightSet) Map() map[string]int {
	out := make(map[string]int, len(w.criteria))
	for _, c := range w.criteria {
		out[c] = w.weights[c]
	}
	return out
}

// Validate checks that every weight is in [0,100] and the sum is exactly 100.
func (w WeightSet) Validate() error {
	if len(w.criteria) == 0 {
		return fmt.Errorf("%w: no criteria", ErrInvalidWeight)
	}
	for _, c := range w.criteria {
		v := w.weights[c]
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: %s=%d outside [0,100]", ErrInvalidWeight, c, v)
		}
	}
	if s := w.Sum(); s != 100 {
		return fmt.Errorf("%w: weights sum to %d, must sum to 100", ErrInvalidWeight, s)
	}
	return nil
}

// SetWeight returns a new WeightSet where criterion takes value (clamped to
// [0,100]) and every other weight is rescaled so the total stays exactly 100.
// Pure function of the receiver: repeated calls with the same inputs produce
// the same result.
func (w WeightSet) SetWeight(criterion string, value int) (WeightSet, error) {
	if !w.Has(criterion) {
		return WeightSet{}, fmt.Errorf("%w: %s", ErrUnknownCriterion, criterion)
	}
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}

	out := WeightSet{
		criteria: append([]string(nil), w.criteria...),
		weights:  make(map[string]int, len(w.criteria)),
	}
	out.weights[criterion] = value

	others := make([]string, 0, len(w.criteria)-1)
	otherSum := 0
	for _, c := range w.criteria {
		if c == criterion {
			continue
		}
		others = append(others, c)
		otherSum += w.weights[c]
	}
	if len(others) == 0 {
		// Single-criterion distribution: the sum invariant forces 100.
		out.weights[criterion] = 100
		return out, nil
	}

	remaining := 100 - value

	if otherSum == 0 {
		// Even split; the lexicographically-first criterion absorbs the
		// integer-division remainder.
		even := remaining / len(others)
		rem := remaining - even*len(others)
		for _, c := range others {
			out.weights[c] = even
		}
		out.weights[lexFirst(others)] += rem
		return out, nil
	}

	// Proportional rescale with round-to-nearest, then push the rounding
	// drift onto the largest rescaled weight so the sum lands on 100.
	scaled := 0
	for _, c := range others {
		v := int(math.Round(float64(w.weights[c]) * float64(remaining) / float64(otherSum)))
		out.weights[c] = v
		scaled += v
	}
	if drift := remaining - scaled; drift != 0 {
		out.weights[largestOf(others, out.weights)] += drift
	}
	return out, nil
}

func lexFirst(names []string) string {
	first := names[0]
	for _, n := range names[1:] {
		if n < first {
			first = n
		}
	}
	return first
}

// largestOf picks the criterion with the largest weight, lexicographically
// first on ties.
func largestOf(names []string, weights map[string]int) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	best := sorted[0]
	for _, n := range sorted[1:] {
		if weights[n] > weights[best] {
			best = n
		}
	}
	return best
}
