package toque

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestMuteFilter(t *testing.T) {
	var m MuteMatrix
	m.Toggle(Okonkolo, MuteLeft)

	got := m.Filter(Okonkolo, Both, nil)
	if len(got) != 1 || got[0].Articulation != ArticulationSlap {
		t.Fatalf("expected slap only with left muted, got %v", got)
	}

	m.Toggle(Okonkolo, MuteFull)
	for _, sym := range Symbols {
		if got := m.Filter(Okonkolo, sym, nil); len(got) != 0 {
			t.Fatalf("full mute: %s produced %v", sym, got)
		}
	}

	// full mute ignores sides even if set directly
	m[Itotele] = Mute{Full: true, Left: false, Right: false}
	if got := m.Filter(Itotele, Slap, nil); len(got) != 0 {
		t.Fatalf("expected no events from fully muted drum, got %v", got)
	}
}

func TestMuteFilterSymbols(t *testing.T) {
	var m MuteMatrix
	cases := []struct {
		sym  Symbol
		want []Articulation
	}{
		{Rest, nil},
		{Slap, []Articulation{ArticulationSlap}},
		{Open, []Articulation{ArticulationOpen}},
		{Press, []Articulation{ArticulationOpen}},
		{Both, []Articulation{ArticulationOpen, ArticulationSlap}},
		{Ghost, nil},
	}
	for _, c := range cases {
		got := m.Filter(Iya, c.sym, nil)
		if len(got) != len(c.want) {
			t.Fatalf("%s: got %v, want %v", c.sym, got, c.want)
		}
		for i, ev := range got {
			if ev.Drum != Iya || ev.Articulation != c.want[i] {
				t.Fatalf("%s: event %d = %v, want %s", c.sym, i, ev, c.want[i])
			}
		}
	}

	m.Toggle(Iya, MuteRight)
	if got := m.Filter(Iya, Slap, nil); len(got) != 0 {
		t.Fatalf("right mute should silence slap, got %v", got)
	}
	if got := m.Filter(Iya, Press, nil); len(got) != 1 {
		t.Fatalf("right mute should not silence press, got %v", got)
	}
}

func TestMuteToggleExclusivity(t *testing.T) {
	var m MuteMatrix
	m.Toggle(Iya, MuteLeft)
	m.Toggle(Iya, MuteRight)
	m.Toggle(Iya, MuteFull)
	if m[Iya] != (Mute{Full: true}) {
		t.Fatalf("full toggle should clear sides, got %+v", m[Iya])
	}
	m.Toggle(Iya, MuteLeft)
	if m[Iya] != (Mute{Left: true}) {
		t.Fatalf("side toggle should clear full, got %+v", m[Iya])
	}
	m.Set(Iya, MuteFull, true)
	m.Set(Iya, MuteFull, false)
	if m[Iya] != (Mute{}) {
		t.Fatalf("expected all clear, got %+v", m[Iya])
	}
}

func TestValidate(t *testing.T) {
	tq := New()
	if err := tq.Validate(); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	tq.Name = "Elegua"
	tq.Sections[0].Name = "Intro"
	tq.AddSection(1).Name = "INTRO"

	var verr *ValidationError
	err := tq.Validate()
	if !errors.As(err, &verr) || verr.Kind != DuplicateSectionName {
		t.Fatalf("expected duplicate name error, got %v", err)
	}

	tq.Sections[1].Name = "Llamada"
	tq.Sections[0].NextSection = "llamada"
	tq.Sections[1].NextSection = ""
	if err := tq.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tq.Sections[1].LoopExitSection = "Salida"
	err = tq.Validate()
	if !errors.As(err, &verr) || verr.Kind != DanglingLoopExitSection || verr.Target != "Salida" {
		t.Fatalf("expected dangling loop exit error, got %v", err)
	}

	tq.Sections[1].LoopExitSection = ""
	tq.Sections[0].NextSection = "gone"
	err = tq.Validate()
	if !errors.As(err, &verr) || verr.Kind != DanglingNextSection {
		t.Fatalf("expected dangling next error, got %v", err)
	}
}

func TestSectionGraphEditing(t *testing.T) {
	tq := New()
	a := tq.Sections[0]
	b := tq.AddSection(1)
	c := tq.AddSection(0)
	if len(tq.Sections) != 3 || tq.Sections[0] != c || tq.Sections[1] != a || tq.Sections[2] != b {
		t.Fatalf("unexpected order after inserts")
	}
	if tq.StartSection != 1 {
		t.Fatalf("start section should follow the original section, got %d", tq.StartSection)
	}
	if a.Name == b.Name || b.Name == c.Name || a.Name == c.Name {
		t.Fatalf("default names must be unique: %q %q %q", a.Name, b.Name, c.Name)
	}

	if !tq.MoveSection(1, 1) {
		t.Fatalf("MoveSection failed")
	}
	if tq.Sections[2] != a || tq.StartSection != 2 {
		t.Fatalf("move did not carry start section: start=%d", tq.StartSection)
	}
	if tq.MoveSection(2, 1) {
		t.Fatalf("moving past the end should fail")
	}

	if err := tq.DeleteSection(0); err != nil {
		t.Fatalf("DeleteSection: %v", err)
	}
	if tq.StartSection != 1 || tq.Start() != a {
		t.Fatalf("start section lost after delete")
	}
	if err := tq.DeleteSection(1); err != nil {
		t.Fatalf("DeleteSection: %v", err)
	}
	if tq.StartSection != 0 {
		t.Fatalf("start should clamp to 0, got %d", tq.StartSection)
	}
	if err := tq.DeleteSection(0); !errors.Is(err, ErrLastSection) {
		t.Fatalf("expected ErrLastSection, got %v", err)
	}
}

func TestSectionLookupIgnoresCase(t *testing.T) {
	tq := New()
	tq.Sections[0].Name = "Llamada"
	if tq.Section("LLAMADA") != tq.Sections[0] {
		t.Fatalf("lookup should ignore case")
	}
	if tq.Section("") != nil {
		t.Fatalf("empty name should not resolve")
	}
}

func TestApplyCommands(t *testing.T) {
	tq := New()
	cmds := []Command{
		{Op: OpRenameToque, Text: "Chachalokafun"},
		{Op: OpSetTempo, Value: 1000},
		{Op: OpAddSection, Section: 1},
		{Op: OpRenameSection, Section: 1, Text: "Vuelta"},
		{Op: OpSetNextSection, Section: 0, Text: "vuelta"},
		{Op: OpSetRepetitions, Section: 1, Value: 3},
		{Op: OpSetMaxLoops, Section: 1, Value: 2},
		{Op: OpSetTimeSignature, Section: 1, Time: TimeSignature{12, 8}},
		{Op: OpSetSubdivision, Section: 1, Value: 8},
		{Op: OpPaintBeat, Section: 1, Drum: Iya, Beat: 3, Symbol: Open},
		{Op: OpToggleMute, Drum: Itotele, Side: MuteRight},
		{Op: OpSetStartSection, Section: 1},
	}
	for _, c := range cmds {
		if err := tq.Apply(c); err != nil {
			t.Fatalf("%s: %v", c.Op, err)
		}
	}
	if tq.Name != "Chachalokafun" || tq.Tempo != MaxTempo {
		t.Fatalf("toque fields not applied: %q %d", tq.Name, tq.Tempo)
	}
	v := tq.Section("vuelta")
	if v == nil || v.Repetitions != 3 || v.MaxLoops != 2 || v.Subdivision != 8 || v.Beats.Len() != 48 {
		t.Fatalf("section fields not applied: %+v", v)
	}
	if v.Beats[Iya][3] != Open || !tq.Mutes[Itotele].Right || tq.StartSection != 1 {
		t.Fatalf("paint/mute/start not applied")
	}

	bad := []Command{
		{Op: OpSetRepetitions, Section: 0, Value: 0},
		{Op: OpRenameSection, Section: 9, Text: "x"},
		{Op: OpPaintBeat, Section: 0, Drum: Iya, Beat: 99, Symbol: Slap},
		{Op: OpMoveSection, Section: 0, Value: -1},
	}
	for _, c := range bad {
		if err := tq.Apply(c); err == nil {
			t.Fatalf("%s: expected error", c.Op)
		}
	}
}

func TestClipboardRoundTrip(t *testing.T) {
	tq := New()
	s := tq.Sections[0]
	s.Name = "Intro"
	s.NextSection = "intro"
	s.Repetitions = 2
	if err := s.SetTimeSignature(TimeSignature{3, 4}); err != nil {
		t.Fatalf("SetTimeSignature: %v", err)
	}
	s.Beats[Okonkolo][0] = Slap
	s.Beats[Iya][11] = Both

	data, err := MarshalSection(s)
	if err != nil {
		t.Fatalf("MarshalSection: %v", err)
	}
	if !strings.Contains(string(data), "okonkolo: S") {
		t.Fatalf("unexpected clipboard text:\n%s", data)
	}
	if err := tq.Apply(Command{Op: OpPasteSection, Section: 1, Text: string(data)}); err != nil {
		t.Fatalf("paste: %v", err)
	}
	pasted := tq.Sections[1]
	if pasted.Name == "Intro" {
		t.Fatalf("pasted section must not duplicate an existing name")
	}
	if pasted.Beats.Row(Iya) != s.Beats.Row(Iya) || pasted.Repetitions != 2 || pasted.TimeSignature != s.TimeSignature {
		t.Fatalf("pasted section differs: %+v", pasted)
	}
	if _, err := UnmarshalSection([]byte("name: X\ntime: 4/4\nsubdivision: 16\nokonkolo: S\nitotele: S\niya: S\n")); err == nil {
		t.Fatalf("expected meter/grid mismatch to fail")
	}
}

func TestToqueJSONSnapshotShape(t *testing.T) {
	tq := New()
	tq.Name = "Ñongo"
	tq.Mutes.Toggle(Iya, MuteFull)
	data, err := json.Marshal(tq)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"toqueName"`, `"sections"`, `"tempo"`, `"startSection"`, `"drumMutes"`, `"iya":{"full":true`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("snapshot missing %s: %s", key, data)
		}
	}
	var back Toque
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Name != tq.Name || !back.Mutes[Iya].Full || back.Sections[0].Beats.Len() != 16 {
		t.Fatalf("snapshot did not survive: %+v", back)
	}
}
