package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/Looking4OffSwitch/claude-conversation-analysis/internal"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects with conversation logs",
	Long:  `List every project directory under the conversations root that holds at least one JSONL log file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		projects, err := internal.ListProjects(cfg.ProjectsDir)
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		if len(projects) == 0 {
			fmt.Printf("No projects found in %s\n", cfg.ProjectsDir)
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Projects (%d)", len(projects))))
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tID\tFILES")
		for _, project := range projects {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				titleStyle.Render(project.Name),
				idStyle.Render(project.ID),
				countStyle.Render(fmt.Sprintf("%d", project.FileCount)),
			)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
