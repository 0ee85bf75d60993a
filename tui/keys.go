package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding of the editor
type KeyMap struct {
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding

	PrevSection key.Binding
	NextSection key.Binding

	// Paint the cell under the cursor
	PaintRest  key.Binding
	PaintSlap  key.Binding
	PaintOpen  key.Binding
	PaintPress key.Binding
	PaintBoth  key.Binding
	PaintGhost key.Binding

	Play      key.Binding // play/pause
	Stop      key.Binding
	TempoUp   key.Binding
	TempoDown key.Binding

	MuteFull  key.Binding
	MuteLeft  key.Binding
	MuteRight key.Binding

	AddSection      key.Binding
	DeleteSection   key.Binding
	MoveSectionUp   key.Binding
	MoveSectionDown key.Binding
	SetStart        key.Binding
	Rename          key.Binding
	Repetitions     key.Binding
	MaxLoops        key.Binding
	NextTarget      key.Binding
	LoopExit        key.Binding
	TimeSignature   key.Binding
	Subdivision     key.Binding
	Copy            key.Binding
	Paste           key.Binding

	RenameToque key.Binding
	Save        key.Binding
	Load        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap is the built-in key binding set
var DefaultKeyMap = KeyMap{
	Left:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "previous beat")),
	Right: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next beat")),
	Up:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "previous drum")),
	Down:  key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "next drum")),

	PrevSection: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous section")),
	NextSection: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next section")),

	PaintRest:  key.NewBinding(key.WithKeys("-", "backspace"), key.WithHelp("-", "rest")),
	PaintSlap:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "slap")),
	PaintOpen:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
	PaintPress: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "press")),
	PaintBoth:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "both heads")),
	PaintGhost: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "ghost")),

	Play:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
	Stop:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop")),
	TempoUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "tempo +5")),
	TempoDown: key.NewBinding(key.WithKeys("_"), key.WithHelp("_", "tempo -5")),

	MuteFull:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute drum")),
	MuteLeft:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "mute open head")),
	MuteRight: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "mute slap head")),

	AddSection:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add section after")),
	DeleteSection:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete section")),
	MoveSectionUp:   key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move section up")),
	MoveSectionDown: key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move section down")),
	SetStart:        key.NewBinding(key.WithKeys("*"), key.WithHelp("*", "start here")),
	Rename:          key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "rename section")),
	Repetitions:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repetitions")),
	MaxLoops:        key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "max loops")),
	NextTarget:      key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "next section")),
	LoopExit:        key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "loop exit section")),
	TimeSignature:   key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "time signature")),
	Subdivision:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "cycle subdivision")),
	Copy:            key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy section")),
	Paste:           key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "paste section after")),

	RenameToque: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "rename toque")),
	Save:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save .tubs")),
	Load:        key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "load .tubs")),
	Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
