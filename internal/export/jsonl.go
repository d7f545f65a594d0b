package export

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONLExporter exports documents in JSONL format (one message per line)
type JSONLExporter struct{}

// Export writes the flat time-ordered message list, one record per line.
// Children are omitted per message serialization rules, so the output is
// itself a valid conversation source.
func (e *JSONLExporter) Export(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range doc.Messages {
		if err := enc.Encode(msg); err != nil {
			return fmt.Errorf("failed to encode message %s: %w", msg.UUID, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
