package export

import (
	"bytes"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestYAMLExporter(t *testing.T) {
	doc := sampleDocument()

	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(doc, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded yamlDocument
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}

	if decoded.Project.ID != "-Users-reed-dev-demo" || decoded.Project.Name != "demo" {
		t.Errorf("project = %+v", decoded.Project)
	}
	if decoded.Stats.TotalMessages != 3 || decoded.Stats.MaxDepth != 1 {
		t.Errorf("stats = %+v", decoded.Stats)
	}
	if decoded.Stats.MessageKinds["user"] != 2 || decoded.Stats.MessageKinds["assistant"] != 1 {
		t.Errorf("message kinds = %v", decoded.Stats.MessageKinds)
	}
	if len(decoded.Sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(decoded.Sessions))
	}
	if decoded.Sessions[0].SessionID != "s1" || decoded.Sessions[0].DurationMillis != 1000 {
		t.Errorf("sessions[0] = %+v", decoded.Sessions[0])
	}
}
