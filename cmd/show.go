package cmd

import (
	"fmt"
	"strings"

	"github.com/Looking4OffSwitch/claude-conversation-analysis/internal"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	showLimit    int
	showSanitize bool
	showRefresh  bool
)

var (
	// Styles for show command
	projectHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			MarginBottom(1)

	userKindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	assistantKindStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true)

	toolKindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")).
			Bold(true)

	otherKindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Bold(true)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a project's conversation tree",
	Long: `Display a project's conversation as an indented tree.

Messages are linked parent to child, sorted by timestamp, and printed in
pre-order with their depth as indentation.`,
	Args: cobra.ExactArgs(1),
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
		conv, err := service.Load(project.Path, !showRefresh)
		if err != nil {
			return err
		}

		messages := conv.Messages
		if showSanitize {
			sanitizer := internal.NewSanitizer(true, cfg.SanitizeRules)
			messages = sanitizer.SanitizeMessages(messages)
			builder := internal.NewTreeBuilder(messages)
			conv.Tree = builder.Build()
		}

		fmt.Println(projectHeaderStyle.Render(project.Name))
		fmt.Println(statsStyle.Render(fmt.Sprintf(
			"%d messages · %d roots · depth %d · %d sessions · %d sidechains",
			conv.Stats.TotalMessages, conv.Stats.RootMessages, conv.Stats.MaxDepth,
			conv.Stats.Sessions, conv.Stats.Sidechains,
		)))

		flattened := internal.FlattenTree(conv.Tree)
		shown := 0
		for _, item := range flattened {
			if showLimit > 0 && shown >= showLimit {
				fmt.Printf("… %d more messages (use --limit 0 for all)\n", len(flattened)-shown)
				break
			}
			printFlattened(item)
			shown++
		}

		return nil
	},
}

func printFlattened(item internal.FlattenedMessage) {
	msg := item.Message
	indent := strings.Repeat("  ", item.Depth)

	label := kindStyleFor(msg.Kind).Render(string(msg.Kind))
	if msg.ToolName != "" {
		label += " " + toolKindStyle.Render("["+msg.ToolName+"]")
	}
	if msg.IsSidechain {
		label += " " + otherKindStyle.Render("(sidechain)")
	}

	timestamp := ""
	if msg.Timestamp != "" {
		timestamp = " " + timestampStyle.Render(msg.Timestamp)
	}

	fmt.Printf("%s%s%s\n", indent, label, timestamp)

	if text := msg.ContentText(); text != "" {
		fmt.Printf("%s  %s\n", indent, firstLine(text, 120))
	}
}

func kindStyleFor(kind internal.MessageKind) lipgloss.Style {
	switch kind {
	case internal.KindUser:
		return userKindStyle
	case internal.KindAssistant:
		return assistantKindStyle
	case internal.KindToolUse, internal.KindToolResult:
		return toolKindStyle
	default:
		return otherKindStyle
	}
}

// firstLine truncates text to its first line, capped at max runes.
func firstLine(text string, max int) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	runes := []rune(text)
	if len(runes) > max {
		return string(runes[:max]) + "…"
	}
	return text
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 0, "Maximum messages to display (0 = all)")
	showCmd.Flags().BoolVar(&showSanitize, "sanitize", false, "Redact user and project paths")
	showCmd.Flags().BoolVar(&showRefresh, "refresh", false, "Force a fresh parse, bypassing the cache")
	rootCmd.AddCommand(showCmd)
}
