package internal

import (
	"sort"
)

// UnknownSession is the bucket for messages carrying no session id.
const UnknownSession = "unknown"

// SessionSummary describes one logical session within a source.
type SessionSummary struct {
	SessionID      string              `json:"session_id"`
	MessageCount   int                 `json:"message_count"`
	FirstTimestamp string              `json:"first_timestamp"`
	LastTimestamp  string              `json:"last_timestamp"`
	DurationMillis int64               `json:"duration_ms"`
	AgentsUsed     []string            `json:"agents_used"`
	MessageKinds   map[MessageKind]int `json:"message_types"`
}

// SessionGrouper partitions a flat message list by session id. It works on
// the flat list, not the tree.
type SessionGrouper struct {
	messages []*Message
}

// NewSessionGrouper creates a grouper over a flat message list.
func NewSessionGrouper(messages []*Message) *SessionGrouper {
	return &SessionGrouper{messages: messages}
}

// GroupBySession groups messages by session id, time-sorted within each
// group. Messages without a session id land in the unknown bucket.
func (sg *SessionGrouper) GroupBySession() map[string][]*Message {
	sessions := make(map[string][]*Message)
	for _, msg := range sg.messages {
		id := msg.SessionID
		if id == "" {
			id = UnknownSession
		}
		sessions[id] = append(sessions[id], msg)
	}

	for _, group := range sessions {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].TimestampMillis < group[j].TimestampMillis
		})
	}
	return sessions
}

// SessionInfo computes per-session summaries, sorted ascending by first
// timestamp across sessions.
func (sg *SessionGrouper) SessionInfo() []SessionSummary {
	sessions := sg.GroupBySession()

	summaries := make([]SessionSummary, 0, len(sessions))
	for id, group := range sessions {
		if len(group) == 0 {
			continue
		}

		first := group[0]
		last := group[len(group)-1]

		summary := SessionSummary{
			SessionID:      id,
			MessageCount:   len(group),
			FirstTimestamp: first.Timestamp,
			LastTimestamp:  last.Timestamp,
			DurationMillis: last.TimestampMillis - first.TimestampMillis,
			MessageKinds:   make(map[MessageKind]int),
		}

		agents := make(map[string]struct{})
		for _, msg := range group {
			summary.MessageKinds[msg.Kind]++
			if msg.AgentID != "" {
				agents[msg.AgentID] = struct{}{}
			}
		}
		summary.AgentsUsed = make([]string, 0, len(agents))
		for agent := range agents {
			summary.AgentsUsed = append(summary.AgentsUsed, agent)
		}
		sort.Strings(summary.AgentsUsed)

		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].FirstTimestamp < summaries[j].FirstTimestamp
	})
	return summaries
}
