package cmd

import (
	"fmt"

	"github.com/Looking4OffSwitch/claude-conversation-analysis/internal"
	"github.com/spf13/cobra"
)

// cacheCmd groups the cache maintenance subcommands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the parse cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		cm := internal.NewCacheManager(cfg.CacheDir, cfg.CacheTTL)
		stats, err := cm.Stats()
		if err != nil {
			return err
		}

		fmt.Printf("Cache directory: %s\n", stats.CacheDir)
		fmt.Printf("Entries:         %d\n", stats.EntryCount)
		fmt.Printf("Total size:      %.2f MB\n", float64(stats.TotalSizeBytes)/(1024*1024))
		fmt.Printf("TTL:             %s\n", stats.TTL)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [project-id]",
	Short: "Clear cache entries",
	Long:  `Clear the cache entry for one project, or every entry when no project is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		sourcePath := ""
		if len(args) == 1 {
			project, err := internal.FindProject(cfg.ProjectsDir, args[0])
			if err != nil {
				return fmt.Errorf("project not found: %s", args[0])
			}
			sourcePath = project.Path
		}

		cm := internal.NewCacheManager(cfg.CacheDir, cfg.CacheTTL)
		count, err := cm.Clear(sourcePath)
		if err != nil {
			return err
		}

		fmt.Printf("Cleared %d cache entries\n", count)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
