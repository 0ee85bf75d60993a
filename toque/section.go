package toque

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Defaults for a freshly created section
const (
	DefaultRepetitions = 1
	DefaultMaxLoops    = 4
	DefaultSubdivision = 4
)

// Subdivisions are the values an editor may pick for a section
var Subdivisions = []int{4, 8, 16, 32}

// TimeSignature is the meter of a section
type TimeSignature struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator)
}

// Grid holds one symbol sequence per drum. All three rows always have the
// same length.
type Grid [NumDrums][]Symbol

// Len returns the common row length
func (g Grid) Len() int {
	return len(g[Okonkolo])
}

// Row returns the symbols of one drum as a string ("S--O")
func (g Grid) Row(d Drum) string {
	var b strings.Builder
	for _, s := range g[d] {
		b.WriteByte(byte(s))
	}
	return b.String()
}

// ParseRow converts a string of symbols, any case, into a row.
func ParseRow(text string) ([]Symbol, error) {
	row := make([]Symbol, 0, len(text))
	for _, r := range text {
		s, err := ParseSymbol(r)
		if err != nil {
			return nil, err
		}
		row = append(row, s)
	}
	return row, nil
}

func restRow(n int) []Symbol {
	row := make([]Symbol, n)
	for i := range row {
		row[i] = Rest
	}
	return row
}

// MarshalJSON writes the grid as {"okonkolo": "S--O", ...}
func (g Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.rows())
}

func (g *Grid) UnmarshalJSON(data []byte) error {
	var rows map[string]string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	return g.setRows(rows)
}

func (g Grid) rows() map[string]string {
	rows := make(map[string]string, NumDrums)
	for _, d := range Drums {
		rows[d.String()] = g.Row(d)
	}
	return rows
}

func (g *Grid) setRows(rows map[string]string) error {
	var out Grid
	for _, d := range Drums {
		row, err := ParseRow(rows[d.String()])
		if err != nil {
			return fmt.Errorf("%s: %w", d, err)
		}
		out[d] = row
	}
	if len(out[Itotele]) != out.Len() || len(out[Iya]) != out.Len() {
		return fmt.Errorf("drum rows differ in length")
	}
	*g = out
	return nil
}

// Section is a fixed-meter block of beats with repeat and transition
// metadata. NextSection and LoopExitSection are names compared without
// regard to case; empty means unset.
type Section struct {
	Name            string        `json:"name"`
	Repetitions     int           `json:"repetitions"`
	TimeSignature   TimeSignature `json:"timeSignature"`
	Subdivision     int           `json:"subdivision"`
	NextSection     string        `json:"nextSection"`
	MaxLoops        int           `json:"maxLoops"`
	LoopExitSection string        `json:"loopExitSection"`
	Beats           Grid          `json:"beats"`
}

// NewSection returns a 4/4 section of sixteen rests per drum.
func NewSection(name string) *Section {
	total, _ := TotalBeats(TimeSignature{Numerator: 4, Denominator: 4}, DefaultSubdivision)
	s := &Section{
		Name:          name,
		Repetitions:   DefaultRepetitions,
		TimeSignature: TimeSignature{Numerator: 4, Denominator: 4},
		Subdivision:   DefaultSubdivision,
		MaxLoops:      DefaultMaxLoops,
	}
	for _, d := range Drums {
		s.Beats[d] = restRow(total)
	}
	return s
}

// TotalBeats computes numerator * subdivision / (denominator / 4).
// Meters that do not divide evenly are rejected.
func TotalBeats(ts TimeSignature, subdivision int) (int, error) {
	if ts.Numerator <= 0 || ts.Denominator <= 0 || subdivision <= 0 {
		return 0, fmt.Errorf("invalid meter %s with subdivision %d", ts, subdivision)
	}
	n := ts.Numerator * subdivision * 4
	if n%ts.Denominator != 0 {
		return 0, fmt.Errorf("meter %s with subdivision %d gives a fractional beat count", ts, subdivision)
	}
	return n / ts.Denominator, nil
}

// TotalBeats is derived from the section's meter
func (s *Section) TotalBeats() (int, error) {
	return TotalBeats(s.TimeSignature, s.Subdivision)
}

// Matches reports whether name refers to this section
func (s *Section) Matches(name string) bool {
	return strings.EqualFold(s.Name, name)
}

// SetTimeSignature changes the meter and resizes the grid. Nothing changes
// if the new meter is invalid.
func (s *Section) SetTimeSignature(ts TimeSignature) error {
	total, err := TotalBeats(ts, s.Subdivision)
	if err != nil {
		return err
	}
	s.TimeSignature = ts
	s.Resize(total)
	return nil
}

// SetSubdivision changes the subdivision and resizes the grid.
func (s *Section) SetSubdivision(subdivision int) error {
	valid := false
	for _, v := range Subdivisions {
		if v == subdivision {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("subdivision must be one of %v, got %d", Subdivisions, subdivision)
	}
	total, err := TotalBeats(s.TimeSignature, subdivision)
	if err != nil {
		return err
	}
	s.Subdivision = subdivision
	s.Resize(total)
	return nil
}

// Resize pads every row with rests or truncates it to n. New rows are
// built before any is swapped in so the grid never has unequal rows.
func (s *Section) Resize(n int) {
	var next Grid
	for _, d := range Drums {
		cur := s.Beats[d]
		if len(cur) >= n {
			next[d] = append([]Symbol(nil), cur[:n]...)
			continue
		}
		row := make([]Symbol, n)
		copy(row, cur)
		for i := len(cur); i < n; i++ {
			row[i] = Rest
		}
		next[d] = row
	}
	s.Beats = next
}

// SetBeat paints a single cell
func (s *Section) SetBeat(d Drum, beat int, sym Symbol) error {
	if d < 0 || int(d) >= NumDrums {
		return fmt.Errorf("invalid drum %d", int(d))
	}
	if !sym.Valid() {
		return fmt.Errorf("invalid symbol %q", byte(sym))
	}
	if beat < 0 || beat >= len(s.Beats[d]) {
		return fmt.Errorf("beat %d out of range [0,%d)", beat, len(s.Beats[d]))
	}
	s.Beats[d][beat] = sym
	return nil
}

// Clone returns a deep copy
func (s *Section) Clone() *Section {
	c := *s
	for _, d := range Drums {
		c.Beats[d] = append([]Symbol(nil), s.Beats[d]...)
	}
	return &c
}
