package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/Looking4OffSwitch/claude-conversation-analysis/internal"
	"github.com/Looking4OffSwitch/claude-conversation-analysis/internal/index"
	"github.com/spf13/cobra"
)

var searchLimit int

func indexPath(cfg internal.Config) string {
	return filepath.Join(cfg.CacheDir, "messages.db")
}

// indexCmd rebuilds the search index from parsed conversations.
var indexCmd = &cobra.Command{
	Use:   "index [project-id]",
	Short: "Build the message search index",
	Long:  `Parse one project (or all projects) and rebuild its rows in the SQLite search index.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var projects []internal.Project
		if len(args) == 1 {
			project, err := internal.FindProject(cfg.ProjectsDir, args[0])
			if err != nil {
				return fmt.Errorf("project not found: %s", args[0])
			}
			projects = []internal.Project{project}
		} else {
			projects, err = internal.ListProjects(cfg.ProjectsDir)
			if err != nil {
				return err
			}
		}

		service := internal.NewConversationService(cfg)
		indexer := index.NewIndexer(indexPath(cfg))

		total := 0
		for _, project := range projects {
			messages, err := service.GetOrParse(project.Path, true)
			if err != nil {
				internal.LogError("Skipping %s: %v", project.ID, err)
				continue
			}
			count, err := indexer.Rebuild(project.ID, messages)
			if err != nil {
				internal.LogError("Failed to index %s: %v", project.ID, err)
				continue
			}
			total += count
		}

		fmt.Printf("Indexed %d messages across %d projects\n", total, len(projects))
		return nil
	},
}

// searchCmd queries the search index.
var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search indexed message content",
	Long:  `Search the SQLite message index built by 'ccanalysis index'.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		indexer := index.NewIndexer(indexPath(cfg))
		hits, err := indexer.Search(args[0], searchLimit)
		if err != nil {
			return err
		}

		if len(hits) == 0 {
			fmt.Println("No matches")
			return nil
		}

		for _, hit := range hits {
			fmt.Printf("%s %s %s\n",
				titleStyle.Render(hit.Project),
				idStyle.Render(shortID(hit.UUID)),
				timestampStyle.Render(hit.Timestamp),
			)
			fmt.Printf("  %s\n", hit.Snippet)
		}
		fmt.Printf("\n%d matches\n", len(hits))
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "Maximum results")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(searchCmd)
}
