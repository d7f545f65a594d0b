package export

import (
	"io"

	"github.com/Looking4OffSwitch/claude-conversation-analysis/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports documents in YAML format
type YAMLExporter struct{}

// yamlDocument is the YAML-facing shape: summaries only, since raw record
// bytes do not translate usefully to YAML.
type yamlDocument struct {
	Project    yamlProject   `yaml:"project"`
	ExportedAt string        `yaml:"exported_at"`
	Stats      yamlStats     `yaml:"stats"`
	Sessions   []yamlSession `yaml:"sessions"`
}

type yamlProject struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Path      string `yaml:"path"`
	FileCount int    `yaml:"file_count"`
}

type yamlStats struct {
	TotalMessages int            `yaml:"total_messages"`
	RootMessages  int            `yaml:"root_messages"`
	MaxDepth      int            `yaml:"max_depth"`
	MessageKinds  map[string]int `yaml:"message_types"`
	Sidechains    int            `yaml:"sidechains"`
	Sessions      int            `yaml:"sessions"`
	Agents        int            `yaml:"agents"`
}

type yamlSession struct {
	SessionID      string   `yaml:"session_id"`
	MessageCount   int      `yaml:"message_count"`
	FirstTimestamp string   `yaml:"first_timestamp,omitempty"`
	LastTimestamp  string   `yaml:"last_timestamp,omitempty"`
	DurationMillis int64    `yaml:"duration_ms"`
	AgentsUsed     []string `yaml:"agents_used,omitempty"`
}

// Export exports a document summary to YAML format
func (e *YAMLExporter) Export(doc *Document, w io.Writer) error {
	out := yamlDocument{
		Project: yamlProject{
			ID:        doc.Project.ID,
			Name:      doc.Project.Name,
			Path:      doc.Project.Path,
			FileCount: doc.Project.FileCount,
		},
		ExportedAt: doc.ExportedAt.Format("2006-01-02T15:04:05Z07:00"),
		Stats: yamlStats{
			TotalMessages: doc.Stats.TotalMessages,
			RootMessages:  doc.Stats.RootMessages,
			MaxDepth:      doc.Stats.MaxDepth,
			MessageKinds:  kindCounts(doc.Stats.MessageKinds),
			Sidechains:    doc.Stats.Sidechains,
			Sessions:      doc.Stats.Sessions,
			Agents:        doc.Stats.Agents,
		},
	}

	for _, session := range doc.Sessions {
		out.Sessions = append(out.Sessions, yamlSession{
			SessionID:      session.SessionID,
			MessageCount:   session.MessageCount,
			FirstTimestamp: session.FirstTimestamp,
			LastTimestamp:  session.LastTimestamp,
			DurationMillis: session.DurationMillis,
			AgentsUsed:     session.AgentsUsed,
		})
	}

	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(&out)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}

func kindCounts(kinds map[internal.MessageKind]int) map[string]int {
	out := make(map[string]int, len(kinds))
	for kind, count := range kinds {
		out[string(kind)] = count
	}
	return out
}
