// Package config loads runtime configuration from environment variables and
// the triage policy from a YAML file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the runtime configuration loaded from environment variables.
// The triage policy itself lives in a separate YAML file (see LoadPolicy);
// env vars cover only deployment concerns.
type Config struct {
	GitHubToken         string
	RepoFullName        string
	PolicyPath          string
	ListenAddr          string
	DBPath              string
	ReleasePollInterval time.Duration
}

// Load reads configuration from environment variables and returns a validated
// Config. STALEKEEPER_GITHUB_TOKEN and STALEKEEPER_REPO are required.
// Optional variables with defaults: STALEKEEPER_POLICY_PATH (stalekeeper.yaml),
// STALEKEEPER_LISTEN_ADDR (127.0.0.1:8080), STALEKEEPER_DB_PATH
// (stalekeeper.db), STALEKEEPER_RELEASE_POLL_INTERVAL (5m).
func Load() (*Config, error) {
	token := os.Getenv("STALEKEEPER_GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("STALEKEEPER_GITHUB_TOKEN is required")
	}

	repo := os.Getenv("STALEKEEPER_REPO")
	if repo == "" {
		return nil, fmt.Errorf("STALEKEEPER_REPO is required")
	}
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("STALEKEEPER_REPO has invalid value %q: expected owner/repo", repo)
	}

	policyPath := "stalekeeper.yaml"
	if v, ok := os.LookupEnv("STALEKEEPER_POLICY_PATH"); ok {
		policyPath = v
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("STALEKEEPER_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "stalekeeper.db"
	if v, ok := os.LookupEnv("STALEKEEPER_DB_PATH"); ok {
		dbPath = v
	}

	releasePoll := 5 * time.Minute
	if v, ok := os.LookupEnv("STALEKEEPER_RELEASE_POLL_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("STALEKEEPER_RELEASE_POLL_INTERVAL has invalid duration %q: %w", v, err)
		}
		releasePoll = parsed
	}

	return &Config{
		GitHubToken:         token,
		RepoFullName:        repo,
		PolicyPath:          policyPath,
		ListenAddr:          listenAddr,
		DBPath:              dbPath,
		ReleasePollInterval: releasePoll,
	}, nil
}
