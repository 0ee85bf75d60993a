package tui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"bata-studio/debug"
	"bata-studio/sequencer"
	"bata-studio/store"
	"bata-studio/theme"
	"bata-studio/toque"
)

// cursor is the edit position: a section index, drum and beat
type cursor struct {
	section int
	drum    toque.Drum
	beat    int
}

type promptKind int

const (
	promptNone promptKind = iota
	promptRename
	promptRepetitions
	promptMaxLoops
	promptNext
	promptLoopExit
	promptTime
	promptToqueName
	promptSaveName
	promptLoad
)

var promptLabels = map[promptKind]string{
	promptRename:      "Section name",
	promptRepetitions: "Repetitions",
	promptMaxLoops:    "Max loops",
	promptNext:        "Next section (empty for none)",
	promptLoopExit:    "Loop exit section (empty for none)",
	promptTime:        "Time signature (e.g. 6/8)",
	promptToqueName:   "Toque name",
	promptSaveName:    "Toque name to save as",
	promptLoad:        "Load file",
}

type Model struct {
	Manager *sequencer.Manager
	Library store.Library
	Theme   *theme.Theme

	keys      KeyMap
	cur       cursor
	prompt    promptKind
	input     textinput.Model
	clipboard []byte
	status    string
	notice    string
	showHelp  bool
	width     int
	quitting  bool
}

type UpdateMsg struct{}

// NoticeMsg carries a non-fatal playback problem
type NoticeMsg struct{ Err error }

func NewModel(manager *sequencer.Manager, lib store.Library, th *theme.Theme) Model {
	in := textinput.New()
	in.CharLimit = 64
	return Model{
		Manager: manager,
		Library: lib,
		Theme:   th,
		keys:    DefaultKeyMap,
		input:   in,
		width:   100,
	}
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForNotices(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		return NoticeMsg{Err: <-manager.Notices}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Manager),
		ListenForNotices(m.Manager),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case UpdateMsg:
		m.clampCursor()
		return m, ListenForUpdates(m.Manager)

	case NoticeMsg:
		m.notice = msg.Err.Error()
		return m, ListenForNotices(m.Manager)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status, m.notice = "", ""
	k := m.keys
	v := m.Manager.Snapshot()
	sec := v.Toque.SectionAt(m.cur.section)

	switch {
	case key.Matches(msg, k.Quit):
		m.quitting = true
		m.Manager.Stop()
		return m, tea.Quit

	case key.Matches(msg, k.Left):
		m.cur.beat = max(m.cur.beat-1, 0)
	case key.Matches(msg, k.Right):
		m.cur.beat++
	case key.Matches(msg, k.Up):
		m.cur.drum = max(m.cur.drum-1, 0)
	case key.Matches(msg, k.Down):
		m.cur.drum = min(m.cur.drum+1, toque.NumDrums-1)
	case key.Matches(msg, k.PrevSection):
		m.cur.section = max(m.cur.section-1, 0)
	case key.Matches(msg, k.NextSection):
		m.cur.section++

	case key.Matches(msg, k.PaintRest):
		m.paint(toque.Rest)
	case key.Matches(msg, k.PaintSlap):
		m.paint(toque.Slap)
	case key.Matches(msg, k.PaintOpen):
		m.paint(toque.Open)
	case key.Matches(msg, k.PaintPress):
		m.paint(toque.Press)
	case key.Matches(msg, k.PaintBoth):
		m.paint(toque.Both)
	case key.Matches(msg, k.PaintGhost):
		m.paint(toque.Ghost)

	case key.Matches(msg, k.Play):
		m.report(m.Manager.TogglePlay())
	case key.Matches(msg, k.Stop):
		m.Manager.Stop()
	case key.Matches(msg, k.TempoUp):
		m.Manager.SetTempo(v.Toque.Tempo + 5)
	case key.Matches(msg, k.TempoDown):
		m.Manager.SetTempo(v.Toque.Tempo - 5)

	case key.Matches(msg, k.MuteFull):
		m.apply(toque.Command{Op: toque.OpToggleMute, Drum: m.cur.drum, Side: toque.MuteFull})
	case key.Matches(msg, k.MuteLeft):
		m.apply(toque.Command{Op: toque.OpToggleMute, Drum: m.cur.drum, Side: toque.MuteLeft})
	case key.Matches(msg, k.MuteRight):
		m.apply(toque.Command{Op: toque.OpToggleMute, Drum: m.cur.drum, Side: toque.MuteRight})

	case key.Matches(msg, k.AddSection):
		if m.apply(toque.Command{Op: toque.OpAddSection, Section: m.cur.section + 1}) {
			m.cur.section++
		}
	case key.Matches(msg, k.DeleteSection):
		m.apply(toque.Command{Op: toque.OpDeleteSection, Section: m.cur.section})
	case key.Matches(msg, k.MoveSectionUp):
		if m.apply(toque.Command{Op: toque.OpMoveSection, Section: m.cur.section, Value: -1}) {
			m.cur.section--
		}
	case key.Matches(msg, k.MoveSectionDown):
		if m.apply(toque.Command{Op: toque.OpMoveSection, Section: m.cur.section, Value: 1}) {
			m.cur.section++
		}
	case key.Matches(msg, k.SetStart):
		m.apply(toque.Command{Op: toque.OpSetStartSection, Section: m.cur.section})
	case key.Matches(msg, k.Subdivision):
		if sec != nil {
			next, cycled := nextSubdivision(sec.Subdivision)
			if m.apply(toque.Command{Op: toque.OpSetSubdivision, Section: m.cur.section, Value: next}) && !cycled {
				m.notice = fmt.Sprintf("subdivision %d is not one of %v; snapped to %d and resized", sec.Subdivision, toque.Subdivisions, next)
			}
		}

	case key.Matches(msg, k.Copy):
		if sec != nil {
			data, err := toque.MarshalSection(sec)
			if m.report(err) {
				m.clipboard = data
				m.status = fmt.Sprintf("copied %q", sec.Name)
			}
		}
	case key.Matches(msg, k.Paste):
		if m.clipboard == nil {
			m.notice = "clipboard is empty"
		} else if m.apply(toque.Command{Op: toque.OpPasteSection, Section: m.cur.section + 1, Text: string(m.clipboard)}) {
			m.cur.section++
		}

	case key.Matches(msg, k.Rename):
		return m.openPrompt(promptRename, sectionField(sec, func(s *toque.Section) string { return s.Name }))
	case key.Matches(msg, k.Repetitions):
		return m.openPrompt(promptRepetitions, sectionField(sec, func(s *toque.Section) string { return strconv.Itoa(s.Repetitions) }))
	case key.Matches(msg, k.MaxLoops):
		return m.openPrompt(promptMaxLoops, sectionField(sec, func(s *toque.Section) string { return strconv.Itoa(s.MaxLoops) }))
	case key.Matches(msg, k.NextTarget):
		return m.openPrompt(promptNext, sectionField(sec, func(s *toque.Section) string { return s.NextSection }))
	case key.Matches(msg, k.LoopExit):
		return m.openPrompt(promptLoopExit, sectionField(sec, func(s *toque.Section) string { return s.LoopExitSection }))
	case key.Matches(msg, k.TimeSignature):
		return m.openPrompt(promptTime, sectionField(sec, func(s *toque.Section) string { return s.TimeSignature.String() }))
	case key.Matches(msg, k.RenameToque):
		return m.openPrompt(promptToqueName, v.Toque.Name)
	case key.Matches(msg, k.Save):
		if strings.TrimSpace(v.Toque.Name) == "" {
			return m.openPrompt(promptSaveName, "")
		}
		m.save()
	case key.Matches(msg, k.Load):
		return m.openPrompt(promptLoad, "")
	case key.Matches(msg, k.Help):
		m.showHelp = !m.showHelp
	}

	m.clampCursor()
	return m, nil
}

func sectionField(s *toque.Section, get func(*toque.Section) string) string {
	if s == nil {
		return ""
	}
	return get(s)
}

// nextSubdivision cycles through the editable subdivisions. A value read
// from a file that is not on the list snaps to the nearest one instead,
// and cycled is false.
func nextSubdivision(cur int) (next int, cycled bool) {
	if i := slices.Index(toque.Subdivisions, cur); i >= 0 {
		return toque.Subdivisions[(i+1)%len(toque.Subdivisions)], true
	}
	next = toque.Subdivisions[0]
	for _, v := range toque.Subdivisions {
		if abs(v-cur) < abs(next-cur) || (abs(v-cur) == abs(next-cur) && v > next) {
			next = v
		}
	}
	return next, false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (m *Model) paint(sym toque.Symbol) {
	m.apply(toque.Command{Op: toque.OpPaintBeat, Section: m.cur.section, Drum: m.cur.drum, Beat: m.cur.beat, Symbol: sym})
	m.cur.beat++
}

// apply sends a command to the manager and reports failures in the
// notice line
func (m *Model) apply(c toque.Command) bool {
	return m.report(m.Manager.Apply(c))
}

func (m *Model) report(err error) bool {
	if err != nil {
		m.notice = err.Error()
		return false
	}
	return true
}

func (m Model) openPrompt(kind promptKind, value string) (tea.Model, tea.Cmd) {
	m.prompt = kind
	m.input.Prompt = promptLabels[kind] + ": "
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = promptNone
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		kind, value := m.prompt, strings.TrimSpace(m.input.Value())
		m.prompt = promptNone
		m.input.Blur()
		m.submit(kind, value)
		m.clampCursor()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit(kind promptKind, value string) {
	idx := m.cur.section
	switch kind {
	case promptRename:
		m.apply(toque.Command{Op: toque.OpRenameSection, Section: idx, Text: value})
	case promptRepetitions, promptMaxLoops:
		n, err := strconv.Atoi(value)
		if err != nil {
			m.notice = fmt.Sprintf("%q is not a number", value)
			return
		}
		op := toque.OpSetRepetitions
		if kind == promptMaxLoops {
			op = toque.OpSetMaxLoops
		}
		m.apply(toque.Command{Op: op, Section: idx, Value: n})
	case promptNext, promptLoopExit:
		op := toque.OpSetNextSection
		if kind == promptLoopExit {
			op = toque.OpSetLoopExitSection
		}
		if m.apply(toque.Command{Op: op, Section: idx, Text: value}) && value != "" && m.Manager.Toque().IndexOf(value) < 0 {
			m.notice = fmt.Sprintf("warning: no section named %q yet", value)
		}
	case promptTime:
		var ts toque.TimeSignature
		if _, err := fmt.Sscanf(value, "%d/%d", &ts.Numerator, &ts.Denominator); err != nil {
			m.notice = fmt.Sprintf("%q is not a time signature", value)
			return
		}
		m.apply(toque.Command{Op: toque.OpSetTimeSignature, Section: idx, Time: ts})
	case promptToqueName:
		m.apply(toque.Command{Op: toque.OpRenameToque, Text: value})
	case promptSaveName:
		if m.apply(toque.Command{Op: toque.OpRenameToque, Text: value}) {
			m.save()
		}
	case promptLoad:
		t, err := m.Library.Load(value)
		if !m.report(err) {
			return
		}
		m.Manager.Replace(t)
		m.cur = cursor{}
		m.status = fmt.Sprintf("loaded %q", t.Name)
	}
}

func (m *Model) save() {
	path, err := m.Library.Save(m.Manager.Toque())
	if err != nil {
		var verr *toque.ValidationError
		if errors.As(err, &verr) {
			m.notice = "not saved: " + err.Error()
		} else {
			m.notice = "save failed: " + err.Error()
		}
		debug.Log("tui", "save: %v", err)
		return
	}
	m.status = "saved " + path
}

// clampCursor keeps the cursor inside the current toque
func (m *Model) clampCursor() {
	v := m.Manager.Snapshot()
	m.cur.section = max(0, min(m.cur.section, len(v.Toque.Sections)-1))
	if s := v.Toque.SectionAt(m.cur.section); s != nil {
		m.cur.beat = max(0, min(m.cur.beat, s.Beats.Len()-1))
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	v := m.Manager.Snapshot()

	var out strings.Builder
	out.WriteString(render(v, m.cur, m.Theme, m.width))
	out.WriteString("\n")
	switch {
	case m.prompt != promptNone:
		out.WriteString(m.input.View())
	case m.notice != "":
		out.WriteString(noticeStyle(m.Theme).Render(m.notice))
	case m.status != "":
		out.WriteString(dimStyle(m.Theme).Render(m.status))
	}
	out.WriteString("\n\n")
	out.WriteString(m.helpView())
	return out.String()
}
