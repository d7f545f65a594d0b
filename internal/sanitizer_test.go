package internal

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func defaultRules(t *testing.T) []SanitizeRule {
	t.Helper()
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	return cfg.SanitizeRules
}

func defaultSanitizer(t *testing.T) *Sanitizer {
	t.Helper()
	return NewSanitizer(true, defaultRules(t))
}

func TestSanitizeString_ProjectPath(t *testing.T) {
	s := defaultSanitizer(t)

	got := s.SanitizeString("see /Users/alice/dev/myproj/file.go for details")
	want := "see /Users/<USER>/dev/<PROJECT>/file.go for details"
	if got != want {
		t.Errorf("SanitizeString() = %q, want %q", got, want)
	}
}

func TestSanitizeString_HomePath(t *testing.T) {
	s := defaultSanitizer(t)

	got := s.SanitizeString("wrote /Users/bob/notes.txt")
	want := "wrote /Users/<USER>/notes.txt"
	if got != want {
		t.Errorf("SanitizeString() = %q, want %q", got, want)
	}
}

func TestSanitizeString_UsernameWithSpace(t *testing.T) {
	s := defaultSanitizer(t)

	// The home-directory rule stops only at path separators, so usernames
	// containing spaces are still redacted.
	got := s.SanitizeString("open /Users/alice smith/notes.txt please")
	want := "open /Users/<USER>/notes.txt please"
	if got != want {
		t.Errorf("SanitizeString() = %q, want %q", got, want)
	}
}

func TestSanitizeString_SpecificRuleNotClobberedByLooser(t *testing.T) {
	s := defaultSanitizer(t)

	// The home-directory rule matches the placeholder left by the project
	// rule; the guard must leave it alone.
	got := s.SanitizeString("/Users/alice/dev/myproj and /Users/carol/other")
	if !strings.Contains(got, "/Users/<USER>/dev/<PROJECT>") {
		t.Errorf("project placeholder destroyed: %q", got)
	}
	if !strings.Contains(got, "/Users/<USER>/other") {
		t.Errorf("home path not redacted: %q", got)
	}
}

func TestSanitizeString_Idempotent(t *testing.T) {
	s := defaultSanitizer(t)

	once := s.SanitizeString("/Users/alice/dev/myproj/main.go")
	twice := s.SanitizeString(once)
	if once != twice {
		t.Errorf("second pass changed output: %q -> %q", once, twice)
	}
}

func TestSanitizeString_CaseInsensitive(t *testing.T) {
	s := defaultSanitizer(t)

	got := s.SanitizeString("/users/Alice/dev/MyProj")
	if strings.Contains(got, "Alice") || strings.Contains(got, "MyProj") {
		t.Errorf("case-varied path not redacted: %q", got)
	}
}

func TestSanitize_Disabled(t *testing.T) {
	s := NewSanitizer(false, defaultRules(t))

	in := "/Users/alice/dev/myproj"
	if got := s.SanitizeString(in); got != in {
		t.Errorf("disabled sanitizer changed input: %q", got)
	}
	if got := s.Sanitize(in); got != in {
		t.Errorf("disabled Sanitize() changed input: %v", got)
	}
}

func TestSanitize_NestedStructures(t *testing.T) {
	s := defaultSanitizer(t)

	in := map[string]interface{}{
		"cwd":   "/Users/alice/dev/myproj",
		"count": 3,
		"items": []interface{}{
			"/Users/bob/file",
			map[string]interface{}{"path": "/Users/carol/dev/app"},
		},
	}

	got, ok := s.Sanitize(in).(map[string]interface{})
	if !ok {
		t.Fatalf("Sanitize() returned %T, want map", s.Sanitize(in))
	}

	want := map[string]interface{}{
		"cwd":   "/Users/<USER>/dev/<PROJECT>",
		"count": 3,
		"items": []interface{}{
			"/Users/<USER>/file",
			map[string]interface{}{"path": "/Users/<USER>/dev/<PROJECT>"},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sanitize() = %v, want %v", got, want)
	}
}

func TestSanitize_RawJSON(t *testing.T) {
	s := defaultSanitizer(t)

	raw := json.RawMessage(`{"path":"/Users/alice/dev/myproj"}`)
	out, ok := s.Sanitize(raw).(json.RawMessage)
	if !ok {
		t.Fatalf("Sanitize() returned %T, want json.RawMessage", s.Sanitize(raw))
	}
	if !strings.Contains(string(out), "/Users/<USER>/dev/<PROJECT>") {
		t.Errorf("raw JSON not redacted: %s", out)
	}

	broken := json.RawMessage(`{broken`)
	if got := s.Sanitize(broken); !reflect.DeepEqual(got, broken) {
		t.Errorf("undecodable raw JSON should pass through, got %v", got)
	}
}

func TestSanitizeMessages_ClonesInput(t *testing.T) {
	s := defaultSanitizer(t)

	original := &Message{
		UUID:     "a",
		Content:  "working in /Users/alice/dev/myproj",
		Metadata: Metadata{CWD: "/Users/alice/dev/myproj"},
		Raw:      json.RawMessage(`{"cwd":"/Users/alice/dev/myproj"}`),
	}

	out := s.SanitizeMessages([]*Message{original})

	if out[0] == original {
		t.Fatal("SanitizeMessages() returned the input message unchanged")
	}
	if got := out[0].ContentText(); !strings.Contains(got, "<PROJECT>") {
		t.Errorf("content not redacted: %q", got)
	}
	if out[0].Metadata.CWD != "/Users/<USER>/dev/<PROJECT>" {
		t.Errorf("cwd not redacted: %q", out[0].Metadata.CWD)
	}
	if !strings.Contains(string(out[0].Raw), "<PROJECT>") {
		t.Errorf("raw record not redacted: %s", out[0].Raw)
	}
	if original.ContentText() != "working in /Users/alice/dev/myproj" {
		t.Errorf("input message was mutated: %q", original.ContentText())
	}
}

func TestNewSanitizer_SkipsInvalidPattern(t *testing.T) {
	rules := []SanitizeRule{
		{Pattern: "([unbalanced", Placeholder: "<X>"},
		{Pattern: `/Users/[^/]+`, Placeholder: "/Users/<USER>"},
	}
	s := NewSanitizer(true, rules)

	got := s.SanitizeString("/Users/alice/file")
	if got != "/Users/<USER>/file" {
		t.Errorf("valid rule not applied after invalid one was skipped: %q", got)
	}
}
