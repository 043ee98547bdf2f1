// Package config loads configuration from the environment and sets up logging.
package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBaseURL is the Perplexity chat completions endpoint.
const DefaultBaseURL = "https://api.perplexity.ai/chat/completions"

// ErrMissingAPIKey is returned by Validate when PERPLEXITY_API_KEY is unset.
// Startup is the only place this is fatal; main decides to exit.
var ErrMissingAPIKey = errors.New("PERPLEXITY_API_KEY environment variable is required")

// Config holds all configuration values.
type Config struct {
	// Perplexity API
	APIKey      string
	BaseURL     string
	HTTPTimeout time.Duration

	// Research journal
	ResearchDir string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		APIKey:      os.Getenv("PERPLEXITY_API_KEY"),
		BaseURL:     getEnv("PERPLEXITY_BASE_URL", DefaultBaseURL),
		HTTPTimeout: parseDuration(getEnv("PLEXMCP_HTTP_TIMEOUT", "5m")),

		// Empty means: fall back to $HOME/Documents/research at store creation.
		ResearchDir: os.Getenv("RESEARCH_DIR"),

		LogFile:  getEnv("PLEXMCP_LOG_FILE", "/tmp/plexmcp.log"),
		LogLevel: parseLogLevel(getEnv("PLEXMCP_LOG_LEVEL", "INFO")),
	}
}

// Validate checks that required values are present.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// DefaultResearchDir returns the fallback journal directory under the
// user's document area.
func DefaultResearchDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Last resort: relative to the working directory.
		return "research"
	}
	return filepath.Join(home, "Documents", "research")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		// Deep research calls run 30-120s per step; leave ample headroom.
		return 5 * time.Minute
	}
	return d
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
