package toque

import "fmt"

// Op names an editing intent.
type Op int

const (
	OpNone Op = iota
	OpRenameToque
	OpSetTempo
	OpSetStartSection
	OpAddSection
	OpMoveSection
	OpDeleteSection
	OpRenameSection
	OpSetRepetitions
	OpSetMaxLoops
	OpSetNextSection
	OpSetLoopExitSection
	OpSetTimeSignature
	OpSetSubdivision
	OpPaintBeat
	OpToggleMute
	OpPasteSection
)

var opNames = map[Op]string{
	OpNone:               "none",
	OpRenameToque:        "rename-toque",
	OpSetTempo:           "set-tempo",
	OpSetStartSection:    "set-start-section",
	OpAddSection:         "add-section",
	OpMoveSection:        "move-section",
	OpDeleteSection:      "delete-section",
	OpRenameSection:      "rename-section",
	OpSetRepetitions:     "set-repetitions",
	OpSetMaxLoops:        "set-max-loops",
	OpSetNextSection:     "set-next-section",
	OpSetLoopExitSection: "set-loop-exit-section",
	OpSetTimeSignature:   "set-time-signature",
	OpSetSubdivision:     "set-subdivision",
	OpPaintBeat:          "paint-beat",
	OpToggleMute:         "toggle-mute",
	OpPasteSection:       "paste-section",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Command is one editing intent. Which fields are read depends on Op:
//
//	Section   target section index (most ops; insert index for add/paste)
//	Value     tempo, repetitions, max loops, subdivision, move delta
//	Time      time signature
//	Text      names and references; YAML for paste
//	Drum, Beat, Symbol  paint target
//	Drum, Side          mute toggle
type Command struct {
	Op      Op
	Section int
	Value   int
	Time    TimeSignature
	Text    string
	Drum    Drum
	Beat    int
	Symbol  Symbol
	Side    MuteSide
}

// Apply performs c on t. Invalid commands leave t unchanged.
func (t *Toque) Apply(c Command) error {
	switch c.Op {
	case OpNone:
		return nil
	case OpRenameToque:
		t.Name = c.Text
		return nil
	case OpSetTempo:
		t.SetTempo(c.Value)
		return nil
	case OpAddSection:
		t.AddSection(c.Section)
		return nil
	case OpToggleMute:
		if c.Drum < 0 || int(c.Drum) >= NumDrums {
			return fmt.Errorf("invalid drum %d", int(c.Drum))
		}
		t.Mutes.Toggle(c.Drum, c.Side)
		return nil
	case OpPasteSection:
		s, err := UnmarshalSection([]byte(c.Text))
		if err != nil {
			return err
		}
		if t.IndexOf(s.Name) >= 0 {
			s.Name = t.nextSectionName()
		}
		t.InsertSection(c.Section, s)
		return nil
	case OpMoveSection:
		if !t.MoveSection(c.Section, c.Value) {
			return fmt.Errorf("cannot move section %d by %d", c.Section, c.Value)
		}
		return nil
	case OpDeleteSection:
		return t.DeleteSection(c.Section)
	}

	s := t.SectionAt(c.Section)
	if s == nil {
		return fmt.Errorf("%s: section index %d out of range", c.Op, c.Section)
	}
	switch c.Op {
	case OpSetStartSection:
		t.StartSection = c.Section
	case OpRenameSection:
		if c.Text == "" {
			return fmt.Errorf("section name cannot be empty")
		}
		s.Name = c.Text
	case OpSetRepetitions:
		if c.Value < 1 {
			return fmt.Errorf("repetitions must be at least 1")
		}
		s.Repetitions = c.Value
	case OpSetMaxLoops:
		if c.Value < 1 {
			return fmt.Errorf("max loops must be at least 1")
		}
		s.MaxLoops = c.Value
	case OpSetNextSection:
		s.NextSection = c.Text
	case OpSetLoopExitSection:
		s.LoopExitSection = c.Text
	case OpSetTimeSignature:
		return s.SetTimeSignature(c.Time)
	case OpSetSubdivision:
		return s.SetSubdivision(c.Value)
	case OpPaintBeat:
		return s.SetBeat(c.Drum, c.Beat, c.Symbol)
	default:
		return fmt.Errorf("unknown command %s", c.Op)
	}
	return nil
}
