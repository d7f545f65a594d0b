package cmd

import (
	"strings"
	"testing"

	"github.com/Looking4OffSwitch/claude-conversation-analysis/internal"
)

func TestFirstLine(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"short text", "hello", 120, "hello"},
		{"multi-line keeps first", "first\nsecond\nthird", 120, "first"},
		{"truncated with ellipsis", strings.Repeat("a", 130), 120, strings.Repeat("a", 120) + "…"},
		{"exact length", strings.Repeat("b", 120), 120, strings.Repeat("b", 120)},
		{"empty", "", 120, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstLine(tt.text, tt.max); got != tt.want {
				t.Errorf("firstLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindStyleFor(t *testing.T) {
	// Every kind must resolve to some style without panicking.
	kinds := []internal.MessageKind{
		internal.KindUser,
		internal.KindAssistant,
		internal.KindToolUse,
		internal.KindToolResult,
		internal.KindSystem,
		internal.KindSnapshot,
		internal.KindUnknown,
	}
	for _, kind := range kinds {
		style := kindStyleFor(kind)
		if out := style.Render(string(kind)); out == "" {
			t.Errorf("kindStyleFor(%s) rendered empty", kind)
		}
	}
}
