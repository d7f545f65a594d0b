package internal

import (
	"encoding/json"
)

// MessageKind is the closed set of record discriminators. Anything the
// decoder does not recognize is normalized to KindUnknown rather than
// carried around as a free-form string.
type MessageKind string

const (
	KindUser       MessageKind = "user"
	KindAssistant  MessageKind = "assistant"
	KindToolUse    MessageKind = "tool_use"
	KindToolResult MessageKind = "tool_result"
	KindSystem     MessageKind = "system"
	KindSnapshot   MessageKind = "file-history-snapshot"
	KindUnknown    MessageKind = "unknown"
)

// ParseKind maps a raw record type string onto the closed kind set.
func ParseKind(s string) MessageKind {
	switch MessageKind(s) {
	case KindUser, KindAssistant, KindToolUse, KindToolResult, KindSystem, KindSnapshot:
		return MessageKind(s)
	default:
		return KindUnknown
	}
}

// Metadata holds auxiliary record fields. Absent values are omitted when
// serialized so cache entries stay small.
type Metadata struct {
	CWD       string `json:"cwd,omitempty"`
	Version   string `json:"version,omitempty"`
	GitBranch string `json:"git_branch,omitempty"`
	UserType  string `json:"user_type,omitempty"`
	Model     string `json:"model,omitempty"`
}

// IsZero reports whether no metadata field is populated.
func (m Metadata) IsZero() bool {
	return m == Metadata{}
}

// Message is the normalized unit of conversation history, produced by the
// record decoder from one JSONL line.
//
// Children is populated only by the tree builder; the decoder and the cache
// never touch it, and it is deliberately excluded from serialization so a
// cached message always comes back as a root.
type Message struct {
	UUID            string      `json:"uuid"`
	Timestamp       string      `json:"timestamp"`
	TimestampMillis int64       `json:"timestamp_ms"`
	Kind            MessageKind `json:"type"`
	Content         interface{} `json:"content"`
	ParentUUID      string      `json:"parent_uuid,omitempty"`
	SessionID       string      `json:"session_id,omitempty"`
	AgentID         string      `json:"agent_id,omitempty"`
	IsSidechain     bool        `json:"is_sidechain,omitempty"`
	ToolName        string      `json:"tool_name,omitempty"`
	ToolUseID       string      `json:"tool_use_id,omitempty"`
	Metadata        Metadata    `json:"metadata,omitempty"`

	Children []*Message `json:"-"`

	// Raw is the original record, kept verbatim for lossless re-serialization.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// ContentText returns the message content as a string when the decoder
// collapsed it to one, or "" for structured content.
func (m *Message) ContentText() string {
	if s, ok := m.Content.(string); ok {
		return s
	}
	return ""
}
