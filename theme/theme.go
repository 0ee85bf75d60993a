package theme

import (
	"fmt"

	"bata-studio/toque"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Key help widget
	Solid rune // ■ active/has function
	Empty rune // □ inactive/no function

	// Grid markers
	Playhead rune // ▶ sounding beat
	Cursor   rune // ▷ edit cursor
	Start    rune // ★ start section
	BarLine  rune // │ between subdivisions

	// Drum heads in the mute row
	HeadOn  rune // ● audible
	HeadOff rune // ○ muted
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Solid: '■',
			Empty: '□',

			Playhead: '▶',
			Cursor:   '▷',
			Start:    '★',
			BarLine:  '│',

			HeadOn:  '●',
			HeadOff: '○',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleSurface = 0.1 // dark purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleCursor  = 0.6 // rose pink
	RoleActive  = 0.7 // soft red
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// symbolRoles spreads the stroke symbols over the palette; rests sit in
// the muted range
var symbolRoles = map[toque.Symbol]float64{
	toque.Rest:  RoleMuted,
	toque.Ghost: 0.3,
	toque.Press: 0.55,
	toque.Open:  0.65,
	toque.Slap:  0.85,
	toque.Both:  RoleSuccess,
}

// SymbolColor returns the colour a grid cell is drawn in
func (t *Theme) SymbolColor(s toque.Symbol) lipgloss.Color {
	role, ok := symbolRoles[s]
	if !ok {
		role = RoleFG
	}
	return rgbToLipgloss(t.Palette.Lookup(role))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
