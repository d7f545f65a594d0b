package cmd

import (
	"fmt"
	"os"

	"github.com/Looking4OffSwitch/claude-conversation-analysis/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	projectsDir string
	cacheDir    string
	noCache     bool
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ccanalysis",
	Short: "Browse and analyze Claude Code conversation histories",
	Long: `A CLI tool to parse, browse, and analyze Claude Code conversation logs.

Conversation logs are read from ~/.claude/projects (one directory per
project, one JSONL file per session), reconstructed into a navigable
message tree, and cached so repeated reads are near-instant.

Features:
  • List projects with conversation logs
  • Show a project's conversation as an indented tree
  • Per-session summaries with time ranges and message counts
  • Export as JSON, JSONL, YAML, or Markdown
  • Full-text search over an SQLite message index
  • JSON API server exposing the same pipeline

Quick Start:
  ccanalysis list                  # List projects
  ccanalysis show <project-id>     # View a conversation tree
  ccanalysis export <project-id> --format md`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&projectsDir, "projects", "", "Conversations directory (default ~/.claude/projects)")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Cache directory (default ~/.claude-conversation-cache)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Bypass the parse cache")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig resolves the effective configuration from defaults, environment,
// and flags, in that order.
func loadConfig() (internal.Config, error) {
	cfg, err := internal.DefaultConfig()
	if err != nil {
		return internal.Config{}, err
	}
	if projectsDir != "" {
		cfg.ProjectsDir = projectsDir
	}
	if cacheDir != "" {
		cfg.CacheDir = cacheDir
	}
	if noCache {
		cfg.CacheEnabled = false
	}
	return cfg, nil
}
