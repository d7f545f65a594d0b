package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// MessageID returns a fresh record identifier.
func MessageID() string {
	return uuid.NewString()
}

// Record is one raw log record under construction.
type Record map[string]interface{}

// UserRecord builds a user-turn record with string content.
func UserRecord(id, parent, timestamp, sessionID, text string) Record {
	rec := Record{
		"uuid":      id,
		"type":      "user",
		"timestamp": timestamp,
		"sessionId": sessionID,
		"message": map[string]interface{}{
			"role":    "user",
			"content": text,
		},
	}
	if parent != "" {
		rec["parentUuid"] = parent
	}
	return rec
}

// AssistantRecord builds an assistant-turn record with one text block.
func AssistantRecord(id, parent, timestamp, sessionID, text string) Record {
	rec := Record{
		"uuid":      id,
		"type":      "assistant",
		"timestamp": timestamp,
		"sessionId": sessionID,
		"message": map[string]interface{}{
			"role":  "assistant",
			"model": "claude-sonnet-4",
			"content": []interface{}{
				map[string]interface{}{"type": "text", "text": text},
			},
		},
	}
	if parent != "" {
		rec["parentUuid"] = parent
	}
	return rec
}

// ToolUseRecord builds a tool invocation record.
func ToolUseRecord(id, parent, timestamp, sessionID, toolName, toolUseID string) Record {
	rec := Record{
		"uuid":      id,
		"type":      "tool_use",
		"timestamp": timestamp,
		"sessionId": sessionID,
		"message": map[string]interface{}{
			"role": "tool",
			"content": []interface{}{
				map[string]interface{}{"type": "tool_use", "name": toolName, "id": toolUseID},
			},
		},
	}
	if parent != "" {
		rec["parentUuid"] = parent
	}
	return rec
}

// ToolResultRecord builds a tool result record.
func ToolResultRecord(id, parent, timestamp, sessionID, toolUseID, output string) Record {
	rec := Record{
		"uuid":      id,
		"type":      "tool_result",
		"timestamp": timestamp,
		"sessionId": sessionID,
		"message": map[string]interface{}{
			"role": "tool",
			"content": []interface{}{
				map[string]interface{}{"type": "tool_result", "tool_use_id": toolUseID, "content": output},
			},
		},
	}
	if parent != "" {
		rec["parentUuid"] = parent
	}
	return rec
}

// WriteLogFile writes records as one JSONL file inside dir and returns its
// path.
func WriteLogFile(t *testing.T, dir, name string, records ...Record) string {
	t.Helper()

	var lines []string
	for _, rec := range records {
		lines = append(lines, string(JSONMarshal(t, rec)))
	}
	return WriteRawLogFile(t, dir, name, lines...)
}

// WriteRawLogFile writes pre-encoded lines as a JSONL file, for fixtures
// that need malformed records.
func WriteRawLogFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write log file %s: %v", path, err)
	}
	return path
}

// CreateSourceDir creates a conversation source directory with one log file
// holding the given records.
func CreateSourceDir(t *testing.T, records ...Record) string {
	t.Helper()
	dir := CreateTempDir(t)
	WriteLogFile(t, dir, "conversation.jsonl", records...)
	return dir
}
