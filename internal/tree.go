package internal

import (
	"sort"
)

// TreeStatistics summarizes a built message tree.
type TreeStatistics struct {
	TotalMessages int                 `json:"total_messages"`
	RootMessages  int                 `json:"root_messages"`
	MaxDepth      int                 `json:"max_depth"`
	MessageKinds  map[MessageKind]int `json:"message_types"`
	Sidechains    int                 `json:"sidechains"`
	Sessions      int                 `json:"sessions"`
	Agents        int                 `json:"agents"`
}

// FlattenedMessage pairs a message with its depth in the tree, for linear
// display of the pre-order traversal.
type FlattenedMessage struct {
	Message *Message
	Depth   int
}

// TreeBuilder converts a flat message list into a forest keyed by the
// parent/child references embedded in the records.
type TreeBuilder struct {
	messages   []*Message
	messageMap map[string]*Message
	roots      []*Message
}

// NewTreeBuilder creates a tree builder over a flat message list.
func NewTreeBuilder(messages []*Message) *TreeBuilder {
	return &TreeBuilder{
		messages:   messages,
		messageMap: make(map[string]*Message, len(messages)),
	}
}

// Build links every message into its parent's children and returns the roots
// sorted by timestamp. A message whose parent uuid is absent, points at a
// uuid not present in this source, or points at the message itself becomes a
// root: dangling references are never dropped, so nothing silently disappears
// from the tree.
func (tb *TreeBuilder) Build() []*Message {
	LogDebug("Building tree from %d messages", len(tb.messages))

	for _, msg := range tb.messages {
		// Rebuilding over a shared message list must not duplicate links.
		msg.Children = nil
		tb.messageMap[msg.UUID] = msg
	}

	for _, msg := range tb.messages {
		if parent, ok := tb.messageMap[msg.ParentUUID]; ok && msg.ParentUUID != "" && msg.ParentUUID != msg.UUID {
			parent.Children = append(parent.Children, msg)
		} else {
			tb.roots = append(tb.roots, msg)
		}
	}

	sort.SliceStable(tb.roots, func(i, j int) bool {
		return tb.roots[i].TimestampMillis < tb.roots[j].TimestampMillis
	})
	sortChildrenRecursive(tb.roots)

	LogDebug("Built tree with %d root messages", len(tb.roots))
	return tb.roots
}

func sortChildrenRecursive(messages []*Message) {
	for _, msg := range messages {
		if len(msg.Children) == 0 {
			continue
		}
		sort.SliceStable(msg.Children, func(i, j int) bool {
			return msg.Children[i].TimestampMillis < msg.Children[j].TimestampMillis
		})
		sortChildrenRecursive(msg.Children)
	}
}

// Statistics computes summary statistics for the built tree.
func (tb *TreeBuilder) Statistics() TreeStatistics {
	stats := TreeStatistics{
		TotalMessages: len(tb.messages),
		RootMessages:  len(tb.roots),
		MaxDepth:      tb.maxDepth(),
		MessageKinds:  make(map[MessageKind]int),
	}

	sessions := make(map[string]struct{})
	agents := make(map[string]struct{})
	for _, msg := range tb.messages {
		stats.MessageKinds[msg.Kind]++
		if msg.IsSidechain {
			stats.Sidechains++
		}
		if msg.SessionID != "" {
			sessions[msg.SessionID] = struct{}{}
		}
		if msg.AgentID != "" {
			agents[msg.AgentID] = struct{}{}
		}
	}
	stats.Sessions = len(sessions)
	stats.Agents = len(agents)

	return stats
}

// maxDepth is the longest root-to-leaf path, 0 when no message has children.
func (tb *TreeBuilder) maxDepth() int {
	max := 0
	for _, root := range tb.roots {
		if d := depthOf(root, 0); d > max {
			max = d
		}
	}
	return max
}

func depthOf(msg *Message, current int) int {
	deepest := current
	for _, child := range msg.Children {
		if d := depthOf(child, current+1); d > deepest {
			deepest = d
		}
	}
	return deepest
}

// FlattenWithDepth produces the depth-annotated pre-order traversal of the
// built tree. Deterministic for a given tree.
func (tb *TreeBuilder) FlattenWithDepth() []FlattenedMessage {
	return FlattenTree(tb.roots)
}

// FlattenTree is the pre-order traversal of an already built forest.
func FlattenTree(roots []*Message) []FlattenedMessage {
	var flattened []FlattenedMessage
	var traverse func(msg *Message, depth int)
	traverse = func(msg *Message, depth int) {
		flattened = append(flattened, FlattenedMessage{Message: msg, Depth: depth})
		for _, child := range msg.Children {
			traverse(child, depth+1)
		}
	}
	for _, root := range roots {
		traverse(root, 0)
	}
	return flattened
}
