package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8700 {
		t.Errorf("expected default port 8700, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected default metrics port 8701, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Allocation.MinMatchScore != 60 {
		t.Errorf("expected default min match score 60, got %.1f", cfg.Allocation.MinMatchScore)
	}
	if cfg.PlanRetention() != 24*time.Hour {
		t.Errorf("expected default retention 24h, got %s", cfg.PlanRetention())
	}
	bw := cfg.Scoring.BidWeights
	if bw.Price+bw.Technical+bw.Experience+bw.Proposal+bw.RecoveryRate != 100 {
		t.Errorf("default bid weights do not sum to 100: %+v", bw)
	}
	mw := cfg.Scoring.MatchWeights
	if mw.Region+mw.Performance+mw.Load+mw.Specialty != 100 {
		t.Errorf("default match weights do not sum to 100: %+v", mw)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9100
  admin_token: hunter2
allocation:
  min_match_score: 75
  plan_retention_minutes: 120
scoring:
  evaluator:
    experience: 90
    proposal: 85
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("expected port 9100, got %d", cfg.Server.Port)
	}
	if cfg.Server.AdminToken != "hunter2" {
		t.Errorf("expected admin token from file, got %q", cfg.Server.AdminToken)
	}
	if cfg.Allocation.MinMatchScore != 75 {
		t.Errorf("expected min match score 75, got %.1f", cfg.Allocation.MinMatchScore)
	}
	if cfg.PlanRetention() != 2*time.Hour {
		t.Errorf("expected retention 2h, got %s", cfg.PlanRetention())
	}
	if cfg.Scoring.Evaluator.Experience != 90 {
		t.Errorf("expected evaluator experience 90, got %.1f", cfg.Scoring.Evaluator.Experience)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected default metrics port, got %d", cfg.Server.MetricsPort)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ALLOCATOR_PORT", "9200")
	t.Setenv("ALLOCATOR_ADMIN_TOKEN", "from-env")
	t.Setenv("ALLOCATOR_MIN_MATCH_SCORE", "80.5")
	t.Setenv("ALLOCATOR_PLAN_RETENTION_MINUTES", "30")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("expected env port 9200, got %d", cfg.Server.Port)
	}
	if cfg.Server.AdminToken != "from-env" {
		t.Errorf("expected env admin token, got %q", cfg.Server.AdminToken)
	}
	if cfg.Allocation.MinMatchScore != 80.5 {
		t.Errorf("expected env min match score 80.5, got %.1f", cfg.Allocation.MinMatchScore)
	}
	if cfg.PlanRetention() != 30*time.Minute {
		t.Errorf("expected env retention 30m, got %s", cfg.PlanRetention())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
