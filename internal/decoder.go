package internal

import (
	"encoding/json"
	"strings"
	"time"
)

// logRecord is the wire shape of one JSONL log line. Fields that can hold
// more than one JSON type stay raw and are interpreted by the decoder.
type logRecord struct {
	UUID        string          `json:"uuid"`
	ParentUUID  string          `json:"parentUuid"`
	Type        string          `json:"type"`
	Timestamp   json.RawMessage `json:"timestamp"`
	SessionID   string          `json:"sessionId"`
	AgentID     string          `json:"agentId"`
	IsSidechain bool            `json:"isSidechain"`
	CWD         string          `json:"cwd"`
	Version     string          `json:"version"`
	GitBranch   string          `json:"gitBranch"`
	UserType    string          `json:"userType"`
	Message     json.RawMessage `json:"message"`
	Content     json.RawMessage `json:"content"`
	Snapshot    json.RawMessage `json:"snapshot"`
}

// chatPayload is the nested message container carrying the API role and the
// typed content blocks.
type chatPayload struct {
	Role    string          `json:"role"`
	Model   string          `json:"model"`
	Content json.RawMessage `json:"content"`
}

// contentBlock is one typed item of a content list. Only the fields needed
// for extraction are decoded; the raw block is kept for verbatim passthrough.
type contentBlock struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Name      string `json:"name"`
	ID        string `json:"id"`
	ToolUseID string `json:"tool_use_id"`
}

// DecodeRecord turns one raw JSONL line into a Message.
//
// Records without a uuid are discarded: the returned message and error are
// both nil. Malformed JSON is the only error condition; bad timestamps and
// unexpected content shapes degrade instead of failing, so counts across a
// file stay correct.
func DecodeRecord(line []byte) (*Message, error) {
	var rec logRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, err
	}

	if rec.UUID == "" {
		return nil, nil
	}

	kind := ParseKind(rec.Type)
	timestamp, millis := decodeTimestamp(rec.Timestamp)

	msg := &Message{
		UUID:            rec.UUID,
		Timestamp:       timestamp,
		TimestampMillis: millis,
		Kind:            kind,
		Content:         extractContent(&rec, kind, line),
		ParentUUID:      rec.ParentUUID,
		SessionID:       rec.SessionID,
		AgentID:         rec.AgentID,
		IsSidechain:     rec.IsSidechain,
		Metadata: Metadata{
			CWD:       rec.CWD,
			Version:   rec.Version,
			GitBranch: rec.GitBranch,
			UserType:  rec.UserType,
			Model:     payloadModel(rec.Message),
		},
		Raw: json.RawMessage(append([]byte(nil), line...)),
	}

	if kind == KindToolUse || kind == KindToolResult {
		msg.ToolName, msg.ToolUseID = extractToolInfo(rec.Message, kind)
	}

	return msg, nil
}

// decodeTimestamp interprets the source timestamp field. Strings are parsed
// as ISO-8601 (a trailing Z means UTC); numbers are epoch milliseconds and
// get a derived display string. Anything else yields the zero epoch so the
// message still sorts, just first.
func decodeTimestamp(raw json.RawMessage) (string, int64) {
	if len(raw) == 0 {
		return "", 0
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return s, 0
		}
		return s, t.UnixMilli()
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		millis := int64(n)
		return time.UnixMilli(millis).UTC().Format(time.RFC3339), millis
	}

	return "", 0
}

// extractContent pulls the display content out of a record. The shape depends
// on the embedded role: assistant content collapses to its text segments,
// user content passes strings through or surfaces the first tool_result block
// verbatim, and records without role information fall back to the top-level
// content field, the snapshot field, or the entire record.
func extractContent(rec *logRecord, kind MessageKind, line []byte) interface{} {
	if len(rec.Message) > 0 {
		var payload chatPayload
		if err := json.Unmarshal(rec.Message, &payload); err == nil {
			switch payload.Role {
			case "assistant":
				return extractAssistantContent(payload.Content)
			case "user":
				return extractUserContent(payload.Content)
			}
		}
	}

	if len(rec.Content) > 0 {
		var s string
		if err := json.Unmarshal(rec.Content, &s); err == nil {
			return s
		}
		return rec.Content
	}

	if kind == KindSnapshot {
		if len(rec.Snapshot) > 0 {
			return rec.Snapshot
		}
		return json.RawMessage("{}")
	}

	return json.RawMessage(append([]byte(nil), line...))
}

// extractAssistantContent joins the text segments of a structured content
// list. A list with no text segments is returned as-is rather than dropped.
func extractAssistantContent(content json.RawMessage) interface{} {
	blocks, ok := decodeBlocks(content)
	if !ok {
		// Plain string or some other shape: pass through.
		var s string
		if err := json.Unmarshal(content, &s); err == nil {
			return s
		}
		return content
	}

	text, found := joinTextBlocks(blocks)
	if !found {
		return content
	}
	return text
}

// extractUserContent passes string content through unchanged. For list
// content the first tool_result block wins verbatim; otherwise the text
// segments are joined.
func extractUserContent(content json.RawMessage) interface{} {
	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s
	}

	raws, blocks, ok := decodeBlocksRaw(content)
	if !ok {
		return content
	}

	for i, block := range blocks {
		if block.Type == "tool_result" {
			return raws[i]
		}
	}

	text, found := joinTextBlocks(blocks)
	if !found {
		return content
	}
	return text
}

// extractToolInfo scans the structured content for the first block carrying
// tool metadata for the given kind. First match wins.
func extractToolInfo(message json.RawMessage, kind MessageKind) (name, toolUseID string) {
	if len(message) == 0 {
		return "", ""
	}
	var payload chatPayload
	if err := json.Unmarshal(message, &payload); err != nil {
		return "", ""
	}
	blocks, ok := decodeBlocks(payload.Content)
	if !ok {
		return "", ""
	}

	for _, block := range blocks {
		switch {
		case kind == KindToolUse && block.Type == "tool_use":
			return block.Name, block.ID
		case kind == KindToolResult && block.Type == "tool_result":
			return "", block.ToolUseID
		}
	}
	return "", ""
}

func payloadModel(message json.RawMessage) string {
	if len(message) == 0 {
		return ""
	}
	var payload chatPayload
	if err := json.Unmarshal(message, &payload); err != nil {
		return ""
	}
	return payload.Model
}

func decodeBlocks(content json.RawMessage) ([]contentBlock, bool) {
	var blocks []contentBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return nil, false
	}
	return blocks, true
}

// decodeBlocksRaw decodes a content list while keeping each block's raw
// bytes, so a matched block can be returned without re-serialization.
func decodeBlocksRaw(content json.RawMessage) ([]json.RawMessage, []contentBlock, bool) {
	var raws []json.RawMessage
	if err := json.Unmarshal(content, &raws); err != nil {
		return nil, nil, false
	}
	blocks := make([]contentBlock, len(raws))
	for i, raw := range raws {
		// Non-object items decode to the zero block and are skipped by type.
		_ = json.Unmarshal(raw, &blocks[i])
	}
	return raws, blocks, true
}

func joinTextBlocks(blocks []contentBlock) (string, bool) {
	var parts []string
	for _, block := range blocks {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "\n"), true
}
