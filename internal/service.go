package internal

import (
	"strconv"

	"golang.org/x/sync/singleflight"
)

// Conversation is the combined response for one source: the flat time-ordered
// messages, the tree built over them, its statistics, and the per-session
// summaries.
type Conversation struct {
	Messages []*Message       `json:"messages"`
	Tree     []*Message       `json:"-"`
	Stats    TreeStatistics   `json:"stats"`
	Sessions []SessionSummary `json:"sessions"`
}

// ConversationService wires the parser and the cache together. Concurrent
// requests for the same source are coalesced per cache key, so at most one
// parse runs per source at a time and late callers share its result.
type ConversationService struct {
	cfg   Config
	cache *CacheManager
	group singleflight.Group
}

// NewConversationService creates a service using cfg's cache settings.
func NewConversationService(cfg Config) *ConversationService {
	return &ConversationService{
		cfg:   cfg,
		cache: NewCacheManager(cfg.CacheDir, cfg.CacheTTL),
	}
}

// Cache exposes the underlying cache manager for stats and clearing.
func (s *ConversationService) Cache() *CacheManager {
	return s.cache
}

// GetOrParse returns the time-ordered message list for a source. With
// useCache, a fresh cache entry under the source's current key is served
// directly; otherwise the source is parsed and the entry overwritten. Cache
// write failures are logged and never fail the request.
//
// Coalesced callers share one flight but each receives its own copies of the
// messages. The tree builder links Children in place, so handing the same
// structs to concurrent callers would race.
func (s *ConversationService) GetOrParse(sourcePath string, useCache bool) ([]*Message, error) {
	useCache = useCache && s.cfg.CacheEnabled

	// Refresh callers must never join a flight that may answer from cache.
	key := s.cache.CacheKey(sourcePath) + ":" + strconv.FormatBool(useCache)
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		if useCache {
			if messages, ok := s.cache.Get(sourcePath); ok {
				return messages, nil
			}
		}

		parser, err := NewConversationParser(sourcePath)
		if err != nil {
			return nil, err
		}
		messages, err := parser.ParseAll()
		if err != nil {
			return nil, err
		}

		if s.cfg.CacheEnabled {
			if err := s.cache.Set(sourcePath, messages); err != nil {
				LogWarn("%v", err)
			}
		}
		return messages, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneMessages(result.([]*Message)), nil
}

func cloneMessages(messages []*Message) []*Message {
	out := make([]*Message, len(messages))
	for i, msg := range messages {
		clone := *msg
		clone.Children = nil
		out[i] = &clone
	}
	return out
}

// Load runs the whole pipeline for a source: messages (cached or parsed),
// tree, statistics, and session summaries.
func (s *ConversationService) Load(sourcePath string, useCache bool) (*Conversation, error) {
	messages, err := s.GetOrParse(sourcePath, useCache)
	if err != nil {
		return nil, err
	}

	builder := NewTreeBuilder(messages)
	tree := builder.Build()

	grouper := NewSessionGrouper(messages)

	return &Conversation{
		Messages: messages,
		Tree:     tree,
		Stats:    builder.Statistics(),
		Sessions: grouper.SessionInfo(),
	}, nil
}
