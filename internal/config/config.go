// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAgents is the full roster of evaluated agents.
// Mirrors the set of decision-making agents running elsewhere in the platform.
var DefaultAgents = []string{
	"ForecastAgent", "MomentumAgent", "VolatilityAgent", "SentimentAgent",
	"RiskAgent", "CorrelationAgent", "StrategyAgent", "RLStrategyAgent",
	"EventImpactAgent", "DayForecastAgent",
}

// DefaultActiveAgents is the set of agents currently driving live decisions.
// Rotation decisions recommend replacing a member of this set; applying a
// decision is a manual operation, so the default set is static configuration.
var DefaultActiveAgents = []string{"ForecastAgent", "MomentumAgent", "VolatilityAgent"}

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for the meta store (always absolute)
	Port            int
	LogLevel        string
	DevMode         bool
	KRXBaseURL      string // Korean-exchange market data endpoint
	BenchmarkSymbol string // Index used for regime detection (default: KOSPI composite)

	Agents       []string // Full evaluated roster
	ActiveAgents []string // Currently deployed subset

	// Evaluation cycle intervals
	PerformanceInterval time.Duration
	RankingInterval     time.Duration
	RotationInterval    time.Duration
	RegimeInterval      time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("ARBITER_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		Port:            getEnvAsInt("ARBITER_PORT", 8010),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		KRXBaseURL:      getEnv("KRX_BASE_URL", "https://api.krxquote.dev/v1"),
		BenchmarkSymbol: getEnv("BENCHMARK_SYMBOL", "KS11"),

		Agents:       getEnvAsList("AGENT_ROSTER", DefaultAgents),
		ActiveAgents: getEnvAsList("ACTIVE_AGENTS", DefaultActiveAgents),

		PerformanceInterval: getEnvAsDuration("PERFORMANCE_INTERVAL", 60*time.Second),
		RankingInterval:     getEnvAsDuration("RANKING_INTERVAL", 300*time.Second),
		RotationInterval:    getEnvAsDuration("ROTATION_INTERVAL", 600*time.Second),
		RegimeInterval:      getEnvAsDuration("REGIME_INTERVAL", 120*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if len(c.Agents) == 0 {
		return fmt.Errorf("agent roster must not be empty")
	}
	for _, active := range c.ActiveAgents {
		if !contains(c.Agents, active) {
			return fmt.Errorf("active agent %q is not in the evaluated roster", active)
		}
	}
	return nil
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
