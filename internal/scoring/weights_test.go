package scoring

import (
	"testing"
)

func TestDefaultWeightsSumToHundred(t *testing.T) {
	for name, ws := range map[string]WeightSet{
		"bid":   DefaultBidWeights(),
		"match": DefaultMatchWeights(),
	} {
		if err := ws.Validate(); err != nil {
			t.Errorf("%s weights invalid: %v", name, err)
		}
		if ws.Sum() != 100 {
			t.Errorf("%s weights sum to %d, expected 100", name, ws.Sum())
		}
	}
}

func TestSetWeightProportionalRescale(t *testing.T) {
	ws := DefaultBidWeights()
	updated, err := ws.SetWeight(CriterionPrice, 50)
	if err != nil {
		t.Fatalf("SetWeight failed: %v", err)
	}
	if got := updated.Get(CriterionPrice); got != 50 {
		t.Errorf("expected price=50, got %d", got)
	}
	// 25/20/15/10 rescaled by 50/70
	expected := map[string]int{
		CriterionTechnical:    18,
		CriterionExperience:   14,
		CriterionProposal:     11,
		CriterionRecoveryRate: 7,
	}
	for c, want := range expected {
		if got := updated.Get(c); got != want {
			t.Errorf("%s: expected %d, got %d", c, want, got)
		}
	}
	if updated.Sum() != 100 {
		t.Errorf("sum drifted to %d", updated.Sum())
	}
}

func TestSetWeightDriftCorrection(t *testing.T) {
	ws, err := NewWeightSet([]string{"a", "b", "c", "d"}, map[string]int{"a": 20, "b": 20, "c": 20, "d": 40})
	if err != nil {
		t.Fatalf("NewWeightSet failed: %v", err)
	}
	updated, err := ws.SetWeight("d", 35)
	if err != nil {
		t.Fatalf("SetWeight failed: %v", err)
	}
	// 20*65/60 rounds to 22 each, overshooting by 1; "a" absorbs the drift.
	if got := updated.Get("a"); got != 21 {
		t.Errorf("expected a=21, got %d", got)
	}
	if got := updated.Get("b"); got != 22 {
		t.Errorf("expected b=22, got %d", got)
	}
	if updated.Sum() != 100 {
		t.Errorf("sum drifted to %d", updated.Sum())
	}
}

func TestSetWeightZeroOthers(t *testing.T) {
	ws, err := NewWeightSet([]string{"a", "b", "c"}, map[string]int{"a": 100, "b": 0, "c": 0})
	if err != nil {
		t.Fatalf("NewWeightSet failed: %v", err)
	}
	updated, err := ws.SetWeight("a", 85)
	if err != nil {
		t.Fatalf("SetWeight failed: %v", err)
	}
	// Even split of 15 over two criteria; lexicographically-first "b" takes
	// the remainder.
	if got := updated.Get("b"); got != 8 {
		t.Errorf("expected b=8, got %d", got)
	}
	if got := updated.Get("c"); got != 7 {
		t.Errorf("expected c=7, got %d", got)
	}
	if updated.Sum() != 100 {
		t.Errorf("sum drifted to %d", updated.Sum())
	}
}

func TestSetWeightClampsValue(t *testing.T) {
	ws := DefaultBidWeights()
	updated, err := ws.SetWeight(CriterionPrice, 150)
	if err != nil {
		t.Fatalf("SetWeight failed: %v", err)
	}
	if got := updated.Get(CriterionPrice); got != 100 {
		t.Errorf("expected clamp to 100, got %d", got)
	}
	if updated.Sum() != 100 {
		t.Errorf("sum drifted to %d", updated.Sum())
	}

	updated, err = ws.SetWeight(CriterionPrice, -10)
	if err != nil {
		t.Fatalf("SetWeight failed: %v", err)
	}
	if got := updated.Get(CriterionPrice); got != 0 {
		t.Errorf("expected clamp to 0, got %d", got)
	}
	if updated.Sum() != 100 {
		t.Errorf("sum drifted to %d", updated.Sum())
	}
}

func TestSetWeightUnknownCriterion(t *testing.T) {
	ws := DefaultBidWeights()
	if _, err := ws.SetWeight("nonsense", 50); err == nil {
		t.Error("expected error for unknown criterion")
	}
}

func TestSetWeightSequenceKeepsInvariant(t *testing.T) {
	ws := DefaultBidWeights()
	steps := []struct {
		criterion string
		value     int
	}{
		{CriterionPrice, 80},
		{CriterionTechnical, 0},
		{CriterionExperience, 100},
		{CriterionRecoveryRate, 33},
		{CriterionProposal, 1},
		{CriterionPrice, 50},
	}
	for _, step := range steps {
		var err error
		ws, err = ws.SetWeight(step.criterion, step.value)
		if err != nil {
			t.Fatalf("SetWeight(%s, %d) failed: %v", step.criterion, step.value, err)
		}
		if ws.Sum() != 100 {
			t.Fatalf("after SetWeight(%s, %d): sum=%d", step.criterion, step.value, ws.Sum())
		}
	}
}

func TestSetWeightIsPure(t *testing.T) {
	ws := DefaultBidWeights()
	first, err := ws.SetWeight(CriterionPrice, 42)
	if err != nil {
		t.Fatalf("SetWeight failed: %v", err)
	}
	second, err := ws.SetWeight(CriterionPrice, 42)
	if err != nil {
		t.Fatalf("SetWeight failed: %v", err)
	}
	for _, c := range ws.Criteria() {
		if first.Get(c) != second.Get(c) {
			t.Errorf("%s differs between identical calls: %d vs %d", c, first.Get(c), second.Get(c))
		}
	}
	// Receiver untouched
	if ws.Get(CriterionPrice) != 30 {
		t.Errorf("receiver mutated: price=%d", ws.Get(CriterionPrice))
	}
}

func TestWeightSetFromMap(t *testing.T) {
	ws, err := WeightSetFromMap(map[string]int{
		CriterionPrice:        30,
		CriterionTechnical:    25,
		CriterionExperience:   20,
		CriterionProposal:     15,
		CriterionRecoveryRate: 10,
	})
	if err != nil {
		t.Fatalf("WeightSetFromMap failed: %v", err)
	}
	if got := ws.Criteria()[0]; got != CriterionPrice {
		t.Errorf("expected default criterion order, got %s first", got)
	}

	if _, err := WeightSetFromMap(map[string]int{"a": 60, "b": 60}); err == nil {
		t.Error("expected error for sum != 100")
	}
}

func TestValidateRejectsDrift(t *testing.T) {
	if _, err := NewWeightSet([]string{"a", "b"}, map[string]int{"a": 50, "b": 49}); err == nil {
		t.Error("expected error for sum 99")
	}
	if _, err := NewWeightSet([]string{"a", "b"}, map[string]int{"a": 150, "b": -50}); err == nil {
		t.Error("expected error for out-of-range weights")
	}
}
