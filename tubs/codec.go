// Package tubs reads and writes the line-oriented .tubs toque format:
//
//	Toque Name: "<name>"
//
//	Section: "<name>"
//	Repetitions: <int>
//	Time: <numerator>/<denominator>
//	Next Section: "<name-or-empty>"
//	Max Loops: <int>
//	Loop Exit Section: "<name-or-empty>"
//	Okonkolo: <symbols>
//	Itotele: <symbols>
//	Iya: <symbols>
//
// The file carries no subdivision; it is derived from the grid length and
// the time signature when parsing.
package tubs

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bata-studio/toque"
)

// Property prefixes
const (
	prefixToqueName   = "Toque Name:"
	prefixSection     = "Section:"
	prefixRepetitions = "Repetitions:"
	prefixTime        = "Time:"
	prefixNext        = "Next Section:"
	prefixMaxLoops    = "Max Loops:"
	prefixLoopExit    = "Loop Exit Section:"
)

// ErrNoSections is returned by Parse, together with the parsed toque, when
// the input contains no sections. Load substitutes a default section.
var ErrNoSections = errors.New("tubs: no sections in input")

// Serialize writes t in .tubs format. Fields are always written, optional
// names as "".
func Serialize(t *toque.Toque) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s %s\n\n", prefixToqueName, quote(t.Name))
	for _, s := range t.Sections {
		fmt.Fprintf(&b, "%s %s\n", prefixSection, quote(s.Name))
		fmt.Fprintf(&b, "%s %d\n", prefixRepetitions, s.Repetitions)
		fmt.Fprintf(&b, "%s %d/%d\n", prefixTime, s.TimeSignature.Numerator, s.TimeSignature.Denominator)
		fmt.Fprintf(&b, "%s %s\n", prefixNext, quote(s.NextSection))
		fmt.Fprintf(&b, "%s %d\n", prefixMaxLoops, s.MaxLoops)
		fmt.Fprintf(&b, "%s %s\n", prefixLoopExit, quote(s.LoopExitSection))
		for _, d := range toque.Drums {
			fmt.Fprintf(&b, "%s: %s\n", d.Title(), s.Beats.Row(d))
		}
		b.WriteByte('\n')
	}
	return b.Bytes()
}

func quote(s string) string {
	return `"` + s + `"`
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}

type line struct {
	num  int
	text string
}

// Parse reads a toque. Tempo, start section and mutes are not part of the
// format and get their defaults. Reference fields are lower-cased.
func Parse(data []byte) (*toque.Toque, error) {
	var lines []line
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; sc.Scan(); n++ {
		text := strings.TrimSpace(sc.Text())
		if text != "" {
			lines = append(lines, line{num: n, text: text})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("tubs: reading input: %w", err)
	}

	t := &toque.Toque{Tempo: toque.DefaultTempo}
	i := 0
	if i < len(lines) && strings.HasPrefix(lines[i].text, prefixToqueName) {
		t.Name = unquote(strings.TrimPrefix(lines[i].text, prefixToqueName))
		i++
	}
	for i < len(lines) {
		if !strings.HasPrefix(lines[i].text, prefixSection) {
			i++
			continue
		}
		s, next, err := parseSection(lines, i)
		if err != nil {
			return nil, err
		}
		t.Sections = append(t.Sections, s)
		i = next
	}
	if len(t.Sections) == 0 {
		return t, ErrNoSections
	}
	return t, nil
}

// Load is Parse with a default section substituted for empty input.
func Load(data []byte) (*toque.Toque, error) {
	t, err := Parse(data)
	if errors.Is(err, ErrNoSections) {
		t.EnsureSection()
		return t, nil
	}
	return t, err
}

func isDrumLine(text string, d toque.Drum) bool {
	prefix := d.String() + ":"
	return len(text) >= len(prefix) && strings.EqualFold(text[:len(prefix)], prefix)
}

func parseSection(lines []line, start int) (*toque.Section, int, error) {
	s := toque.NewSection(unquote(strings.TrimPrefix(lines[start].text, prefixSection)))
	i := start + 1

	for ; i < len(lines) && !isDrumLine(lines[i].text, toque.Okonkolo); i++ {
		text := lines[i].text
		switch {
		case strings.HasPrefix(text, prefixSection):
			return nil, 0, &toque.FormatError{Section: s.Name, Line: lines[i].num, Msg: "section has no drum lines"}
		case strings.HasPrefix(text, prefixRepetitions):
			s.Repetitions = parsePositive(strings.TrimPrefix(text, prefixRepetitions), toque.DefaultRepetitions)
		case strings.HasPrefix(text, prefixTime):
			if ts, ok := parseTime(strings.TrimPrefix(text, prefixTime)); ok {
				s.TimeSignature = ts
			}
		case strings.HasPrefix(text, prefixNext):
			s.NextSection = strings.ToLower(unquote(strings.TrimPrefix(text, prefixNext)))
		case strings.HasPrefix(text, prefixMaxLoops):
			s.MaxLoops = parsePositive(strings.TrimPrefix(text, prefixMaxLoops), toque.DefaultMaxLoops)
		case strings.HasPrefix(text, prefixLoopExit):
			s.LoopExitSection = strings.ToLower(unquote(strings.TrimPrefix(text, prefixLoopExit)))
		}
		// anything else is an unknown property, skipped
	}

	var grid toque.Grid
	for _, d := range toque.Drums {
		if i >= len(lines) || !isDrumLine(lines[i].text, d) {
			ln := 0
			if i < len(lines) {
				ln = lines[i].num
			}
			return nil, 0, &toque.FormatError{Section: s.Name, Line: ln, Msg: "missing " + d.Title() + " line"}
		}
		row, err := toque.ParseRow(strings.TrimSpace(lines[i].text[len(d.String())+1:]))
		if err != nil {
			return nil, 0, &toque.FormatError{Section: s.Name, Line: lines[i].num, Msg: err.Error()}
		}
		grid[d] = row
		i++
	}
	n := len(grid[toque.Okonkolo])
	if len(grid[toque.Itotele]) != n || len(grid[toque.Iya]) != n {
		return nil, 0, &toque.FormatError{Section: s.Name, Msg: "all drum sequences must have the same length"}
	}
	s.Beats = grid

	// subdivision = beats / numerator * (denominator / 4)
	ts := s.TimeSignature
	if n == 0 || (n*ts.Denominator)%(ts.Numerator*4) != 0 {
		return nil, 0, &toque.FormatError{Section: s.Name,
			Msg: fmt.Sprintf("%d beats do not fit time %s", n, ts)}
	}
	s.Subdivision = n * ts.Denominator / (ts.Numerator * 4)
	return s, i, nil
}

func parsePositive(text string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || v < 1 {
		return def
	}
	return v
}

func parseTime(text string) (toque.TimeSignature, bool) {
	num, den, ok := strings.Cut(strings.TrimSpace(text), "/")
	if !ok {
		return toque.TimeSignature{}, false
	}
	n, err1 := strconv.Atoi(strings.TrimSpace(num))
	d, err2 := strconv.Atoi(strings.TrimSpace(den))
	if err1 != nil || err2 != nil || n < 1 || d < 1 {
		return toque.TimeSignature{}, false
	}
	return toque.TimeSignature{Numerator: n, Denominator: d}, true
}
