package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"bata-studio/sequencer"
	"bata-studio/theme"
	"bata-studio/toque"
	"bata-studio/widgets"
)

// Longest run of cells drawn on one line before the grid wraps
const maxRowCells = 64

func headerStyle(th *theme.Theme) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(th.Accent())
}

func dimStyle(th *theme.Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(th.Muted())
}

func noticeStyle(th *theme.Theme) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(th.Warning())
}

// render draws the header, section list and the grid of the section
// under the cursor
func render(v sequencer.View, c cursor, th *theme.Theme, width int) string {
	var b strings.Builder

	name := v.Toque.Name
	if name == "" {
		name = "(untitled)"
	}
	b.WriteString(headerStyle(th).Render("BATA STUDIO"))
	b.WriteString("  ")
	b.WriteString(name)
	b.WriteString(dimStyle(th).Render(fmt.Sprintf("  %d bpm  ", v.Toque.Tempo)))
	b.WriteString(stateLabel(v.State, th))
	b.WriteString("\n\n")

	for i, s := range v.Toque.Sections {
		b.WriteString(sectionLine(v, i, s, i == c.section, th))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if s := v.Toque.SectionAt(c.section); s != nil {
		b.WriteString(renderGrid(v, s, c, th, width))
	}
	return b.String()
}

func stateLabel(s sequencer.State, th *theme.Theme) string {
	switch s {
	case sequencer.Playing:
		return lipgloss.NewStyle().Foreground(th.Success()).Render("▶ PLAYING")
	case sequencer.Paused:
		return lipgloss.NewStyle().Foreground(th.Warning()).Render("‖ PAUSED")
	}
	return dimStyle(th).Render("■ STOPPED")
}

func playingIn(v sequencer.View, s *toque.Section) bool {
	return v.State != sequencer.Stopped && s.Matches(v.Position.Section)
}

func sectionLine(v sequencer.View, i int, s *toque.Section, selected bool, th *theme.Theme) string {
	marker := ' '
	if i == v.Toque.StartSection {
		marker = th.Symbols.Start
	}
	play := ' '
	if playingIn(v, s) {
		play = th.Symbols.Playhead
	}

	line := fmt.Sprintf("%c%c %-16s x%-3d %-5s sub %-2d", play, marker, s.Name, s.Repetitions, s.TimeSignature, s.Subdivision)
	if s.NextSection != "" {
		line += "  → " + s.NextSection
	}
	if s.LoopExitSection != "" {
		line += fmt.Sprintf("  (after %d loops → %s)", s.MaxLoops, s.LoopExitSection)
	}
	if playingIn(v, s) {
		line += dimStyle(th).Render(fmt.Sprintf("  rep %d/%d", v.Position.Repeat+1, s.Repetitions))
	}

	style := lipgloss.NewStyle().Foreground(th.FG())
	if selected {
		style = style.Bold(true).Foreground(th.Cursor())
	}
	return style.Render(line)
}

// groupSize is the number of cells per beat of the time signature, or
// 0 when that does not come out whole
func groupSize(s *toque.Section) int {
	if s.TimeSignature.Denominator <= 0 {
		return 0
	}
	g := s.Subdivision * 4 / s.TimeSignature.Denominator
	if g*s.TimeSignature.Denominator != s.Subdivision*4 {
		return 0
	}
	return g
}

func renderGrid(v sequencer.View, s *toque.Section, c cursor, th *theme.Theme, width int) string {
	n := s.Beats.Len()
	group := groupSize(s)

	chunk := min(n, maxRowCells)
	if avail := width - 16; avail >= 8 && chunk > avail {
		chunk = avail
	}
	if chunk < n && group > 0 && chunk > group {
		chunk -= chunk % group
	}
	if chunk == 0 {
		return dimStyle(th).Render("(empty section)") + "\n"
	}

	sounding := -1
	if v.HasSounding && s.Matches(v.Sounding.Section) {
		sounding = v.Sounding.Beat
	}

	var b strings.Builder
	for from := 0; from < n; from += chunk {
		to := min(from+chunk, n)

		// playhead row
		b.WriteString(strings.Repeat(" ", 14))
		for i := from; i < to; i++ {
			if group > 0 && i > from && i%group == 0 {
				b.WriteString(" ")
			}
			if i == sounding {
				b.WriteString(widgets.RenderCell(th.Symbols.Playhead, th.Active()))
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")

		for d := toque.Drum(0); d < toque.NumDrums; d++ {
			label := fmt.Sprintf("%-8s", d.Title())
			if d == c.drum {
				label = lipgloss.NewStyle().Bold(true).Foreground(th.Cursor()).Render(label)
			}
			b.WriteString(label)
			b.WriteString(widgets.RenderHeads(v.Toque.Mutes[d], th))
			b.WriteString("  ")
			for i := from; i < to; i++ {
				if group > 0 && i > from && i%group == 0 {
					b.WriteString(dimStyle(th).Render(string(th.Symbols.BarLine)))
				}
				b.WriteString(renderSymbol(s.Beats[d][i], d == c.drum && i == c.beat, i == sounding, th))
			}
			b.WriteString("\n")
		}

		// cursor row
		b.WriteString(strings.Repeat(" ", 14))
		for i := from; i < to; i++ {
			if group > 0 && i > from && i%group == 0 {
				b.WriteString(" ")
			}
			if i == c.beat {
				b.WriteString(widgets.RenderCell(th.Symbols.Cursor, th.Cursor()))
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderSymbol(sym toque.Symbol, underCursor, sounding bool, th *theme.Theme) string {
	style := lipgloss.NewStyle().Foreground(th.SymbolColor(sym))
	if sounding {
		style = style.Bold(true)
	}
	if underCursor {
		style = style.Reverse(true)
	}
	return style.Render(sym.String())
}

func (m Model) helpView() string {
	k := m.keys
	if !m.showHelp {
		return dimStyle(m.Theme).Render(widgets.RenderKeyHelp([]widgets.KeySection{
			widgets.Section("", k.Play, k.PaintSlap, k.PaintOpen, k.PaintRest, k.Save, k.Help, k.Quit),
		}))
	}
	return widgets.RenderKeyHelp([]widgets.KeySection{
		widgets.Section("Move", k.Left, k.Right, k.Up, k.Down, k.PrevSection, k.NextSection),
		widgets.Section("Paint", k.PaintRest, k.PaintSlap, k.PaintOpen, k.PaintPress, k.PaintBoth, k.PaintGhost),
		widgets.Section("Transport", k.Play, k.Stop, k.TempoUp, k.TempoDown),
		widgets.Section("Mute", k.MuteFull, k.MuteLeft, k.MuteRight),
		widgets.Section("Sections", k.AddSection, k.DeleteSection, k.MoveSectionUp, k.MoveSectionDown,
			k.SetStart, k.Rename, k.Repetitions, k.MaxLoops, k.NextTarget, k.LoopExit,
			k.TimeSignature, k.Subdivision, k.Copy, k.Paste),
		widgets.Section("File", k.RenameToque, k.Save, k.Load, k.Help, k.Quit),
	})
}
