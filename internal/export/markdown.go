package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/Looking4OffSwitch/claude-conversation-analysis/internal"
)

// MarkdownExporter exports documents in Markdown format
type MarkdownExporter struct{}

// Export renders the conversation tree as an indented Markdown transcript,
// following the depth-annotated pre-order traversal.
func (e *MarkdownExporter) Export(doc *Document, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# %s\n\n", doc.Project.Name)
	_, _ = fmt.Fprintf(w, "**Project:** %s  \n", doc.Project.ID)
	_, _ = fmt.Fprintf(w, "**Messages:** %d  \n", doc.Stats.TotalMessages)
	_, _ = fmt.Fprintf(w, "**Sessions:** %d  \n", doc.Stats.Sessions)
	_, _ = fmt.Fprintf(w, "**Max depth:** %d  \n", doc.Stats.MaxDepth)
	_, _ = fmt.Fprintf(w, "**Exported:** %s\n\n", doc.ExportedAt.Format("2006-01-02 15:04:05"))

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Conversation\n\n")

	flattened := internal.FlattenTree(doc.Tree)
	for i, item := range flattened {
		msg := item.Message

		label := string(msg.Kind)
		if msg.ToolName != "" {
			label = fmt.Sprintf("%s (%s)", label, msg.ToolName)
		}

		indent := strings.Repeat(">", item.Depth)
		if indent != "" {
			indent += " "
		}

		timestamp := ""
		if msg.Timestamp != "" {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp)
		}

		_, _ = fmt.Fprintf(w, "%s**%s:**%s\n\n", indent, label, timestamp)

		content := messageBody(msg)
		if content != "" {
			for _, line := range strings.Split(escapeMarkdown(content), "\n") {
				_, _ = fmt.Fprintf(w, "%s%s\n", indent, line)
			}
			_, _ = fmt.Fprintf(w, "\n")
		}

		// Rule between top-level threads, not between a root and its replies.
		if i < len(flattened)-1 && flattened[i+1].Depth == 0 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// messageBody renders a message's content for the transcript. Structured
// content is summarized rather than dumped.
func messageBody(msg *internal.Message) string {
	if text := msg.ContentText(); text != "" {
		return text
	}
	switch msg.Kind {
	case internal.KindSnapshot:
		return "[file history snapshot]"
	case internal.KindToolResult:
		return fmt.Sprintf("[tool result %s]", msg.ToolUseID)
	default:
		return "[structured content]"
	}
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			// Escape markdown syntax outside code blocks
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
