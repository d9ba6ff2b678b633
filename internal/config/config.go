package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Notify     NotifyConfig     `yaml:"notify"`
	Registry   RegistryConfig   `yaml:"registry"`
	Allocation AllocationConfig `yaml:"allocation"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type NotifyConfig struct {
	URL string `yaml:"url"`
}

type RegistryConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type AllocationConfig struct {
	MinMatchScore        float64 `yaml:"min_match_score"`
	MaxCasesPerOrg       int     `yaml:"max_cases_per_org"`
	RegionBaseScore      float64 `yaml:"region_base_score"`
	PlanRetentionMinutes int     `yaml:"plan_retention_minutes"`
}

type ScoringConfig struct {
	BidWeights   BidWeights   `yaml:"bid_weights"`
	MatchWeights MatchWeights `yaml:"match_weights"`
	Evaluator    Evaluator    `yaml:"evaluator"`
}

type BidWeights struct {
	Price        int `yaml:"price"`
	Technical    int `yaml:"technical"`
	Experience   int `yaml:"experience"`
	Proposal     int `yaml:"proposal"`
	RecoveryRate int `yaml:"recovery_rate"`
}

type MatchWeights struct {
	Region      int `yaml:"region"`
	Performance int `yaml:"performance"`
	Load        int `yaml:"load"`
	Specialty   int `yaml:"specialty"`
}

// Map returns the bid weight distribution keyed by criterion name.
func (b BidWeights) Map() map[string]int {
	return map[string]int{
		"price":         b.Price,
		"technical":     b.Technical,
		"experience":    b.Experience,
		"proposal":      b.Proposal,
		"recovery_rate": b.RecoveryRate,
	}
}

// Map returns the match weight distribution keyed by criterion name.
func (m MatchWeights) Map() map[string]int {
	return map[string]int{
		"region":      m.Region,
		"performance": m.Performance,
		"load":        m.Load,
		"specialty":   m.Specialty,
	}
}

// Evaluator holds the fixed experience/proposal scores used until a real
// historical-performance evaluator replaces them.
type Evaluator struct {
	Experience float64 `yaml:"experience"`
	Proposal   float64 `yaml:"proposal"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) PlanRetention() time.Duration {
	return time.Duration(c.Allocation.PlanRetentionMinutes) * time.Minute
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Notify: NotifyConfig{
			URL: "nats://localhost:4222",
		},
		Registry: RegistryConfig{
			URL: "http://localhost:8080",
		},
		Allocation: AllocationConfig{
			MinMatchScore:        60,
			MaxCasesPerOrg:       0,
			RegionBaseScore:      0,
			PlanRetentionMinutes: 1440,
		},
		Scoring: ScoringConfig{
			BidWeights: BidWeights{
				Price:        30,
				Technical:    25,
				Experience:   20,
				Proposal:     15,
				RecoveryRate: 10,
			},
			MatchWeights: MatchWeights{
				Region:      30,
				Performance: 30,
				Load:        20,
				Specialty:   20,
			},
			Evaluator: Evaluator{
				Experience: 80,
				Proposal:   75,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ALLOCATOR_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("ALLOCATOR_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("ALLOCATOR_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("ALLOCATOR_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("ALLOCATOR_NOTIFY_URL"); v != "" {
		cfg.Notify.URL = v
	}
	if v := os.Getenv("ALLOCATOR_REGISTRY_URL"); v != "" {
		cfg.Registry.URL = v
	}
	if v := os.Getenv("ALLOCATOR_REGISTRY_TOKEN"); v != "" {
		cfg.Registry.Token = v
	}
	if v := os.Getenv("ALLOCATOR_MIN_MATCH_SCORE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Allocation.MinMatchScore = f
		}
	}
	if v := os.Getenv("ALLOCATOR_MAX_CASES_PER_ORG"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Allocation.MaxCasesPerOrg = n
		}
	}
	if v := os.Getenv("ALLOCATOR_PLAN_RETENTION_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Allocation.PlanRetentionMinutes = n
		}
	}
	if v := os.Getenv("ALLOCATOR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
