package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// EdgeConfig holds credentials for the edge firewall API. Empty credentials
// mean edge sync is disabled, which is a valid configuration.
type EdgeConfig struct {
	APIToken string
	ZoneID   string
	APIBase  string
	Timeout  time.Duration
}

// SecurityConfig captures the tunables of the request-defense pipeline.
type SecurityConfig struct {
	// Suspicion thresholds evaluated per admission check.
	ShortTermThreshold  int // requests per minute
	MediumTermThreshold int // requests per 5 minutes
	LongTermThreshold   int // requests per hour

	// HardCeiling is the per-minute count that escalates a suspicious
	// identifier into a persisted block.
	HardCeiling int

	// SpamThreshold is the per-minute count treated as spam on the
	// submission path.
	SpamThreshold int

	// Submission gate for apology creation.
	SubmissionLimit     int
	SubmissionWindow    time.Duration
	OverLimitBlockAfter int
}

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment     string
	HTTPPort        string
	DatabasePath    string
	JWTSecret       string
	TurnstileSecret string
	AlertURLs       []string
	Edge            EdgeConfig
	Security        SecurityConfig
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:     getEnv("APP_ENV", "development"),
		HTTPPort:        getEnv("APP_HTTP_PORT", "8080"),
		DatabasePath:    getEnv("APP_DB_PATH", filepath.Join("data", "apologyhub.db")),
		JWTSecret:       getEnv("APP_JWT_SECRET", "change-me-in-production"),
		TurnstileSecret: getEnv("TURNSTILE_SECRET_KEY", ""),
		AlertURLs:       splitList(getEnv("ALERT_URLS", "")),
		Edge: EdgeConfig{
			APIToken: getEnv("EDGE_API_TOKEN", ""),
			ZoneID:   getEnv("EDGE_ZONE_ID", ""),
			APIBase:  getEnv("EDGE_API_BASE", "https://api.cloudflare.com/client/v4"),
			Timeout:  10 * time.Second,
		},
		Security: SecurityConfig{
			ShortTermThreshold:  getEnvInt("SEC_SHORT_TERM_THRESHOLD", 30),
			MediumTermThreshold: getEnvInt("SEC_MEDIUM_TERM_THRESHOLD", 80),
			LongTermThreshold:   getEnvInt("SEC_LONG_TERM_THRESHOLD", 150),
			HardCeiling:         getEnvInt("SEC_HARD_CEILING", 100),
			SpamThreshold:       getEnvInt("REQUEST_LIMIT", 20),
			SubmissionLimit:     getEnvInt("SEC_SUBMISSION_LIMIT", 5),
			SubmissionWindow:    time.Hour,
			OverLimitBlockAfter: getEnvInt("SEC_OVER_LIMIT_BLOCK_AFTER", 50),
		},
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return fallback
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
