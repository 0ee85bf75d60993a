package widgets

import (
	"strings"
	"testing"

	"bata-studio/theme"
	"bata-studio/toque"

	"github.com/charmbracelet/bubbles/key"
)

func TestSectionSkipsDisabled(t *testing.T) {
	play := key.NewBinding(key.WithKeys("space"), key.WithHelp("space", "play/pause"))
	hidden := key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hidden"))
	hidden.SetEnabled(false)

	sec := Section("Transport", play, hidden)
	if len(sec.Keys) != 1 || sec.Keys[0].Key != "space" {
		t.Fatalf("unexpected section: %+v", sec)
	}
	out := RenderKeyHelp([]KeySection{sec})
	if !strings.HasPrefix(out, "Transport\n  space") || !strings.Contains(out, "play/pause") {
		t.Fatalf("unexpected help:\n%s", out)
	}
}

func TestRenderHeads(t *testing.T) {
	th := theme.New(theme.Plasma())
	open := RenderHeads(toque.Mute{}, th)
	if strings.Count(open, "●") != 2 {
		t.Fatalf("both heads should be audible: %q", open)
	}
	left := RenderHeads(toque.Mute{Left: true}, th)
	if strings.Count(left, "●") != 1 || strings.Count(left, "○") != 1 {
		t.Fatalf("left head should be muted: %q", left)
	}
	full := RenderHeads(toque.Mute{Full: true}, th)
	if strings.Count(full, "○") != 2 || !strings.Contains(full, "M") {
		t.Fatalf("full mute should dim both heads: %q", full)
	}
}
