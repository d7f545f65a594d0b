package internal

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// SanitizeRule is one ordered replacement applied by the sanitizer. Rules are
// passed in at construction; there is no package-level pattern table.
type SanitizeRule struct {
	Pattern     string // regular expression
	Placeholder string
}

// Config holds all runtime settings. Defaults mirror the layout Claude Code
// writes on disk (~/.claude/projects) and can be overridden per field by
// flags or CCANALYSIS_* environment variables.
type Config struct {
	ProjectsDir  string
	CacheDir     string
	CacheTTL     time.Duration
	CacheEnabled bool

	// SanitizeRules are applied in order: the project-scoped pattern must
	// come before the looser home-directory pattern, see Sanitizer.
	SanitizeRules []SanitizeRule
}

// DefaultConfig returns the default configuration.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, &SourceError{Path: "~", Op: "stat", Err: err}
	}

	cfg := Config{
		ProjectsDir:  filepath.Join(home, ".claude", "projects"),
		CacheDir:     filepath.Join(home, ".claude-conversation-cache"),
		CacheTTL:     time.Hour,
		CacheEnabled: true,
		SanitizeRules: []SanitizeRule{
			{Pattern: `/Users/[^/]+/dev/[^/\s"'\)\]\}]+`, Placeholder: "/Users/<USER>/dev/<PROJECT>"},
			{Pattern: `/Users/[^/]+`, Placeholder: "/Users/<USER>"},
		},
	}

	if v := os.Getenv("CCANALYSIS_PROJECTS_DIR"); v != "" {
		cfg.ProjectsDir = v
	}
	if v := os.Getenv("CCANALYSIS_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("CCANALYSIS_CACHE_TTL_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.CacheTTL = time.Duration(secs) * time.Second
		} else {
			LogWarn("Ignoring invalid CCANALYSIS_CACHE_TTL_SECONDS: %q", v)
		}
	}
	if v := os.Getenv("CCANALYSIS_CACHE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.CacheEnabled = enabled
		}
	}

	return cfg, nil
}
