package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"bata-studio/clock"
	"bata-studio/sequencer"
	"bata-studio/store"
	"bata-studio/theme"
	"bata-studio/toque"
)

type nullSink struct{ events int }

func (s *nullSink) Ready() error                  { return nil }
func (s *nullSink) Trigger(evs []toque.NoteEvent) { s.events += len(evs) }

func newTestModel(t *testing.T) Model {
	t.Helper()
	clk := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	mgr := sequencer.NewManager(toque.New(), &nullSink{}, clk)
	return NewModel(mgr, store.Library{Dir: t.TempDir()}, theme.New(theme.Plasma()))
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

// answer types into an open prompt, replacing its current value
func answer(t *testing.T, m Model, value string) Model {
	t.Helper()
	if m.prompt == promptNone {
		t.Fatalf("no prompt open")
	}
	m.input.SetValue(value)
	return press(t, m, "enter")
}

func TestPaintAdvancesCursor(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "s", "o", "j", "b")

	s := m.Manager.Toque().Sections[0]
	if got := s.Beats.Row(toque.Okonkolo)[:2]; got != "SO" {
		t.Fatalf("okonkolo row starts %q, want SO", got)
	}
	if got := s.Beats[toque.Itotele][2]; got != toque.Both {
		t.Fatalf("itotele beat 2 = %q, want B", got)
	}
	if m.cur.beat != 3 || m.cur.drum != toque.Itotele {
		t.Fatalf("cursor = %+v", m.cur)
	}
}

func TestCursorClamped(t *testing.T) {
	m := newTestModel(t)
	for i := 0; i < 40; i++ {
		m = press(t, m, "l")
	}
	if m.cur.beat != 15 {
		t.Fatalf("beat = %d, want 15", m.cur.beat)
	}
	m = press(t, m, "j", "j", "j", "j")
	if m.cur.drum != toque.Iya {
		t.Fatalf("drum = %v, want iya", m.cur.drum)
	}
	m = press(t, m, "tab", "tab")
	if m.cur.section != 0 {
		t.Fatalf("section = %d with one section", m.cur.section)
	}
}

func TestSectionPrompts(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "a")
	if m.cur.section != 1 || len(m.Manager.Toque().Sections) != 2 {
		t.Fatalf("add section: cursor %d", m.cur.section)
	}

	m = answer(t, press(t, m, "n"), "Llamada")
	m = answer(t, press(t, m, "r"), "3")
	m = answer(t, press(t, m, "N"), "Section 1")
	m = answer(t, press(t, m, "T"), "6/8")

	s := m.Manager.Toque().Sections[1]
	if s.Name != "Llamada" || s.Repetitions != 3 || s.NextSection != "Section 1" {
		t.Fatalf("unexpected section: %+v", s)
	}
	if s.TimeSignature != (toque.TimeSignature{Numerator: 6, Denominator: 8}) || s.Beats.Len() != 12 {
		t.Fatalf("meter not applied: %v with %d cells", s.TimeSignature, s.Beats.Len())
	}

	m = answer(t, press(t, m, "r"), "many")
	if m.notice == "" {
		t.Fatalf("non-numeric repetitions should leave a notice")
	}
	m = answer(t, press(t, m, "N"), "nowhere")
	if !strings.Contains(m.notice, "nowhere") {
		t.Fatalf("dangling target should be flagged, notice %q", m.notice)
	}
	if got := m.Manager.Toque().Sections[1].NextSection; got != "nowhere" {
		t.Fatalf("dangling target is still stored, got %q", got)
	}
}

func TestPromptEscapeCancels(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "n")
	m.input.SetValue("Ignored")
	m = press(t, m, "esc")
	if m.prompt != promptNone || m.Manager.Toque().Sections[0].Name == "Ignored" {
		t.Fatalf("escape should cancel the prompt")
	}
}

func TestCopyPaste(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "P")
	if m.notice == "" {
		t.Fatalf("paste with empty clipboard should warn")
	}
	m = press(t, m, "s", "y", "P")
	tq := m.Manager.Toque()
	if len(tq.Sections) != 2 || m.cur.section != 1 {
		t.Fatalf("paste: %d sections, cursor %d", len(tq.Sections), m.cur.section)
	}
	if tq.Sections[1].Beats[toque.Okonkolo][0] != toque.Slap {
		t.Fatalf("pasted section lost its beats")
	}
	if tq.Sections[0].Name == tq.Sections[1].Name {
		t.Fatalf("pasted section should get a unique name")
	}
}

func TestPlayAndStop(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "space")
	if got := m.Manager.Snapshot().State; got != sequencer.Playing {
		t.Fatalf("state = %v, want playing", got)
	}
	m = press(t, m, "space")
	if got := m.Manager.Snapshot().State; got != sequencer.Paused {
		t.Fatalf("state = %v, want paused", got)
	}
	m = press(t, m, "esc")
	if got := m.Manager.Snapshot().State; got != sequencer.Stopped {
		t.Fatalf("state = %v, want stopped", got)
	}
}

func TestSaveAndLoad(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "s")

	// unnamed toques ask for a name first
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(Model)
	if m.prompt != promptSaveName {
		t.Fatalf("expected save-name prompt, got %v", m.prompt)
	}
	m = answer(t, m, "Chachalokafun")
	path := filepath.Join(m.Library.Dir, "Chachalokafun.tubs")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("saved file missing: %v (status %q notice %q)", err, m.status, m.notice)
	}

	m = press(t, m, "a", "s")
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = answer(t, next.(Model), "Chachalokafun")
	tq := m.Manager.Toque()
	if len(tq.Sections) != 1 || tq.Name != "Chachalokafun" || m.cur != (cursor{}) {
		t.Fatalf("load did not replace the toque: %d sections, cursor %+v", len(tq.Sections), m.cur)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = answer(t, next.(Model), "missing")
	if m.notice == "" {
		t.Fatalf("loading a missing file should leave a notice")
	}
}

func TestRender(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "s", "a")
	m = answer(t, press(t, m, "n"), "Llamada")

	out := m.View()
	for _, want := range []string{"BATA STUDIO", "(untitled)", "120 bpm", "STOPPED", "Section 1", "Llamada", "★", "Okonkolo", "Itotele", "Iya"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}

	m = press(t, m, "space")
	v := m.Manager.Snapshot()
	out = render(v, cursor{section: 0}, m.Theme, 100)
	if !strings.Contains(out, "PLAYING") || !strings.Contains(out, "rep 1/1") {
		t.Errorf("playing view missing state:\n%s", out)
	}
}

func TestNoticeMsg(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(NoticeMsg{Err: &toque.DanglingReferenceError{Section: "A", Target: "B"}})
	m = next.(Model)
	if !strings.Contains(m.notice, "B") || cmd == nil {
		t.Fatalf("notice not shown or listener not rearmed: %q", m.notice)
	}
}

func TestNextSubdivision(t *testing.T) {
	tests := []struct {
		cur, next int
		cycled    bool
	}{
		{4, 8, true},
		{32, 4, true},
		{1, 4, false},
		{6, 8, false},
		{20, 16, false},
		{64, 32, false},
	}
	for _, tt := range tests {
		next, cycled := nextSubdivision(tt.cur)
		if next != tt.next || cycled != tt.cycled {
			t.Errorf("nextSubdivision(%d) = %d, %v; want %d, %v", tt.cur, next, cycled, tt.next, tt.cycled)
		}
	}
}

func TestSubdivisionFromFileSnapsWithNotice(t *testing.T) {
	tq := toque.New()
	s := tq.Sections[0]
	s.Subdivision = 1
	s.Resize(4)

	clk := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	mgr := sequencer.NewManager(tq, &nullSink{}, clk)
	m := NewModel(mgr, store.Library{Dir: t.TempDir()}, theme.New(theme.Plasma()))

	m = press(t, m, "u")
	got := m.Manager.Toque().Sections[0]
	if got.Subdivision != 4 || got.Beats.Len() != 16 {
		t.Fatalf("subdivision %d with %d cells, want 4 with 16", got.Subdivision, got.Beats.Len())
	}
	if !strings.Contains(m.notice, "snapped to 4") {
		t.Fatalf("snap should be announced, notice %q", m.notice)
	}

	m = press(t, m, "u")
	if m.notice != "" || m.Manager.Toque().Sections[0].Subdivision != 8 {
		t.Fatalf("on-list values cycle quietly, notice %q", m.notice)
	}
}
