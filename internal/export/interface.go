package export

import (
	"fmt"
	"io"
	"time"

	"github.com/Looking4OffSwitch/claude-conversation-analysis/internal"
)

// Document is the unit of export: one project's parsed conversation plus the
// metadata a standalone file needs.
type Document struct {
	Project    internal.Project          `json:"project"`
	ExportedAt time.Time                 `json:"exported_at"`
	Messages   []*internal.Message       `json:"messages"`
	Tree       []*internal.Message       `json:"-"`
	Stats      internal.TreeStatistics   `json:"stats"`
	Sessions   []internal.SessionSummary `json:"sessions"`
}

// NewDocument assembles a Document from a loaded conversation.
func NewDocument(project internal.Project, conv *internal.Conversation) *Document {
	return &Document{
		Project:    project,
		ExportedAt: time.Now(),
		Messages:   conv.Messages,
		Tree:       conv.Tree,
		Stats:      conv.Stats,
		Sessions:   conv.Sessions,
	}
}

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(doc *Document, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
}
