package internal

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Sanitizer redacts sensitive filesystem paths from conversation data. It is
// constructed from an explicit rule list; there is no shared mutable pattern
// table, so two sanitizers never influence each other.
//
// Rules are applied as a documented two-pass replacement: the more specific
// project-scoped rule runs first, then the looser home-directory rule.
// Before the looser rule rewrites a match, the match is checked for a
// placeholder introduced by an earlier pass and left alone if one is found.
// Reordering the rules breaks this guarantee; keep specific-first.
type Sanitizer struct {
	enabled      bool
	patterns     []*regexp.Regexp
	placeholders []string
}

// NewSanitizer compiles the rules in their given order. Invalid patterns are
// logged and skipped so a bad rule disables itself, not the whole sanitizer.
func NewSanitizer(enabled bool, rules []SanitizeRule) *Sanitizer {
	s := &Sanitizer{enabled: enabled}
	for _, rule := range rules {
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			LogWarn("Skipping invalid sanitize pattern %q: %v", rule.Pattern, err)
			continue
		}
		s.patterns = append(s.patterns, re)
		s.placeholders = append(s.placeholders, rule.Placeholder)
	}
	return s
}

// Enabled reports whether sanitization is active.
func (s *Sanitizer) Enabled() bool {
	return s.enabled
}

// Sanitize redacts a data structure, recursing through maps and lists. When
// disabled it returns the input untouched.
func (s *Sanitizer) Sanitize(data interface{}) interface{} {
	if !s.enabled {
		return data
	}
	return s.sanitizeValue(data)
}

func (s *Sanitizer) sanitizeValue(data interface{}) interface{} {
	switch v := data.(type) {
	case string:
		return s.SanitizeString(v)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			out[key] = s.sanitizeValue(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = s.sanitizeValue(item)
		}
		return out
	case json.RawMessage:
		return s.sanitizeRaw(v)
	default:
		return data
	}
}

// sanitizeRaw redacts inside a raw JSON value by round-tripping it. If the
// value does not decode it is returned unchanged.
func (s *Sanitizer) sanitizeRaw(raw json.RawMessage) json.RawMessage {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return raw
	}
	out, err := json.Marshal(s.sanitizeValue(decoded))
	if err != nil {
		return raw
	}
	return out
}

// SanitizeString applies the rule passes in order to one string.
func (s *Sanitizer) SanitizeString(text string) string {
	if !s.enabled {
		return text
	}
	for i, re := range s.patterns {
		placeholder := s.placeholders[i]
		prior := s.placeholders[:i]
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			for _, p := range prior {
				// A match that contains, or is a prefix of, an earlier
				// placeholder was already rewritten by a more specific rule.
				if strings.Contains(match, p) || strings.HasPrefix(p, match) {
					return match
				}
			}
			return placeholder
		})
	}
	return text
}

// SanitizeMessages returns a copy of each message with its content, working
// directory, and raw record redacted. Only rewritten fields are replaced.
func (s *Sanitizer) SanitizeMessages(messages []*Message) []*Message {
	if !s.enabled {
		return messages
	}
	out := make([]*Message, len(messages))
	for i, msg := range messages {
		clone := *msg
		clone.Content = s.sanitizeValue(msg.Content)
		clone.Metadata.CWD = s.SanitizeString(msg.Metadata.CWD)
		if len(msg.Raw) > 0 {
			clone.Raw = s.sanitizeRaw(msg.Raw)
		}
		out[i] = &clone
	}
	return out
}
