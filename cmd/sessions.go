package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Looking4OffSwitch/claude-conversation-analysis/internal"
	"github.com/spf13/cobra"
)

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions <project-id>",
	Short: "Summarize a project's sessions",
	Long:  `Group a project's messages by session id and print per-session counts and time ranges.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		project, err := internal.FindProject(cfg.ProjectsDir, args[0])
		if err != nil {
			return fmt.Errorf("project not found: %s", args[0])
		}

		service := internal.NewConversationService(cfg)
		conv, err := service.Load(project.Path, true)
		if err != nil {
			return err
		}

		if len(conv.Sessions) == 0 {
			fmt.Println("No sessions found")
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Sessions in %s (%d)", project.Name, len(conv.Sessions))))
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION\tMESSAGES\tSTARTED\tDURATION\tAGENTS")
		for _, session := range conv.Sessions {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\n",
				idStyle.Render(shortID(session.SessionID)),
				session.MessageCount,
				session.FirstTimestamp,
				formatDuration(session.DurationMillis),
				len(session.AgentsUsed),
			)
		}
		return w.Flush()
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(millis int64) string {
	return time.Duration(millis * int64(time.Millisecond)).Round(time.Second).String()
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
