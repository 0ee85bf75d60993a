package toque

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Drum identifies one of the three batá drums.
type Drum int

const (
	Okonkolo Drum = iota
	Itotele
	Iya
)

// NumDrums is the number of drums in the ensemble
const NumDrums = 3

// Drums lists the drums in file and playback order
var Drums = [NumDrums]Drum{Okonkolo, Itotele, Iya}

var drumNames = [NumDrums]string{"okonkolo", "itotele", "iya"}

func (d Drum) String() string {
	if d < 0 || int(d) >= NumDrums {
		return fmt.Sprintf("drum(%d)", int(d))
	}
	return drumNames[d]
}

// Title returns the capitalized name used in .tubs files ("Okonkolo")
func (d Drum) Title() string {
	s := d.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseDrum looks up a drum by name, ignoring case
func ParseDrum(name string) (Drum, error) {
	for i, n := range drumNames {
		if strings.EqualFold(n, name) {
			return Drum(i), nil
		}
	}
	return 0, fmt.Errorf("unknown drum %q", name)
}

// Symbol is one cell of a beat grid.
type Symbol byte

const (
	Rest  Symbol = '-'
	Slap  Symbol = 'S'
	Open  Symbol = 'O'
	Press Symbol = 'P' // sounds as open
	Both  Symbol = 'B' // slap + open
	Ghost Symbol = 'T' // silent
)

// Symbols lists the alphabet in palette order
var Symbols = []Symbol{Rest, Slap, Open, Press, Both, Ghost}

// ParseSymbol accepts any case.
func ParseSymbol(r rune) (Symbol, error) {
	if r < utf8.RuneSelf {
		if s := Symbol(unicode.ToUpper(r)); s.Valid() {
			return s, nil
		}
	}
	return 0, fmt.Errorf("invalid symbol %q", r)
}

// Valid reports whether s is in the alphabet
func (s Symbol) Valid() bool {
	switch s {
	case Rest, Slap, Open, Press, Both, Ghost:
		return true
	}
	return false
}

func (s Symbol) String() string {
	return string(rune(s))
}

// Articulation is the audible gesture a symbol maps to.
type Articulation int

const (
	ArticulationSlap Articulation = iota
	ArticulationOpen
)

func (a Articulation) String() string {
	switch a {
	case ArticulationSlap:
		return "slap"
	case ArticulationOpen:
		return "open"
	}
	return fmt.Sprintf("articulation(%d)", int(a))
}

// NoteEvent is a single trigger sent to the audio sink.
type NoteEvent struct {
	Drum         Drum
	Articulation Articulation
}

func (e NoteEvent) String() string {
	return e.Drum.String() + "_" + e.Articulation.String()
}
