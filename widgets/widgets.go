package widgets

import (
	"fmt"
	"strings"

	"bata-studio/theme"
	"bata-studio/toque"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// RenderCell renders a single coloured grid cell
func RenderCell(ch rune, color lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(color).Render(string(ch))
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

// Section builds a KeySection from bubbles bindings, skipping disabled ones
func Section(title string, bindings ...key.Binding) KeySection {
	sec := KeySection{Title: title}
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		sec.Keys = append(sec.Keys, KeyBinding{Key: h.Key, Desc: h.Desc})
	}
	return sec
}

// RenderHeads draws the two heads of a drum, open (left) then slap
// (right), filled when audible. A fully muted drum is drawn dim.
func RenderHeads(m toque.Mute, th *theme.Theme) string {
	head := func(muted bool) string {
		if muted || m.Full {
			return RenderCell(th.Symbols.HeadOff, th.Muted())
		}
		return RenderCell(th.Symbols.HeadOn, th.Success())
	}
	label := "  "
	if m.Full {
		label = lipgloss.NewStyle().Foreground(th.Warning()).Render(" M")
	}
	return head(m.Left) + head(m.Right) + label
}
