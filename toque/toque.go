// Package toque holds the data model of a batá composition: an ordered
// graph of named sections, each a per-drum beat grid, together with tempo,
// start point and the drum mute matrix.
package toque

import (
	"errors"
	"fmt"
	"strings"
)

// Tempo limits
const (
	DefaultTempo = 120
	MinTempo     = 20
	MaxTempo     = 300
)

// Toque is the single mutable root of a composition. Sections are ordered
// for display only; playback follows NextSection/LoopExitSection.
type Toque struct {
	Name         string     `json:"toqueName"`
	Sections     []*Section `json:"sections"`
	Tempo        int        `json:"tempo"`
	StartSection int        `json:"startSection"`
	Mutes        MuteMatrix `json:"drumMutes"`
}

// New creates a toque with one default section
func New() *Toque {
	t := &Toque{Tempo: DefaultTempo}
	t.EnsureSection()
	return t
}

// EnsureSection adds a default section if the graph is empty
func (t *Toque) EnsureSection() {
	if len(t.Sections) == 0 {
		t.Sections = append(t.Sections, NewSection(t.nextSectionName()))
	}
	t.clampStart()
}

// Section finds a section by name, ignoring case. Returns nil if not found.
func (t *Toque) Section(name string) *Section {
	if i := t.IndexOf(name); i >= 0 {
		return t.Sections[i]
	}
	return nil
}

// IndexOf returns the index of the named section or -1
func (t *Toque) IndexOf(name string) int {
	if name == "" {
		return -1
	}
	for i, s := range t.Sections {
		if s.Matches(name) {
			return i
		}
	}
	return -1
}

// SectionAt returns the section at index i or nil
func (t *Toque) SectionAt(i int) *Section {
	if i < 0 || i >= len(t.Sections) {
		return nil
	}
	return t.Sections[i]
}

// Start returns the section playback begins at
func (t *Toque) Start() *Section {
	return t.SectionAt(t.StartSection)
}

func (t *Toque) nextSectionName() string {
	for n := len(t.Sections) + 1; ; n++ {
		name := fmt.Sprintf("Section %d", n)
		if t.IndexOf(name) < 0 {
			return name
		}
	}
}

// AddSection inserts a default section at index at (clamped) and returns it.
func (t *Toque) AddSection(at int) *Section {
	at = max(0, min(at, len(t.Sections)))
	s := NewSection(t.nextSectionName())
	t.InsertSection(at, s)
	return s
}

// InsertSection inserts s at index at (clamped), keeping StartSection on
// the same section.
func (t *Toque) InsertSection(at int, s *Section) {
	at = max(0, min(at, len(t.Sections)))
	t.Sections = append(t.Sections, nil)
	copy(t.Sections[at+1:], t.Sections[at:])
	t.Sections[at] = s
	if len(t.Sections) > 1 && at <= t.StartSection {
		t.StartSection++
	}
	t.clampStart()
}

// MoveSection swaps section i with its neighbour at i+delta (delta ±1).
func (t *Toque) MoveSection(i, delta int) bool {
	j := i + delta
	if i < 0 || i >= len(t.Sections) || j < 0 || j >= len(t.Sections) {
		return false
	}
	t.Sections[i], t.Sections[j] = t.Sections[j], t.Sections[i]
	switch t.StartSection {
	case i:
		t.StartSection = j
	case j:
		t.StartSection = i
	}
	return true
}

// ErrLastSection is returned when deleting the only section
var ErrLastSection = errors.New("cannot delete the last section, at least one section is required")

// DeleteSection removes section i. References to it from other sections
// are left in place and caught by Validate or at playback.
func (t *Toque) DeleteSection(i int) error {
	if i < 0 || i >= len(t.Sections) {
		return fmt.Errorf("section index %d out of range", i)
	}
	if len(t.Sections) == 1 {
		return ErrLastSection
	}
	t.Sections = append(t.Sections[:i], t.Sections[i+1:]...)
	if t.StartSection > i {
		t.StartSection--
	}
	t.clampStart()
	return nil
}

func (t *Toque) clampStart() {
	if t.StartSection >= len(t.Sections) {
		t.StartSection = len(t.Sections) - 1
	}
	if t.StartSection < 0 {
		t.StartSection = 0
	}
}

// SetTempo clamps bpm into [MinTempo, MaxTempo]
func (t *Toque) SetTempo(bpm int) {
	t.Tempo = max(MinTempo, min(bpm, MaxTempo))
}

// Validate runs the pre-save checks: a non-empty name, unique section
// names and resolvable references. Empty references are not checked.
func (t *Toque) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return &ValidationError{Kind: EmptyToqueName}
	}
	seen := make(map[string]bool, len(t.Sections))
	for _, s := range t.Sections {
		key := strings.ToLower(s.Name)
		if seen[key] {
			return &ValidationError{Kind: DuplicateSectionName, Section: s.Name}
		}
		seen[key] = true
	}
	for _, s := range t.Sections {
		if s.NextSection != "" && !seen[strings.ToLower(s.NextSection)] {
			return &ValidationError{Kind: DanglingNextSection, Section: s.Name, Target: s.NextSection}
		}
		if s.LoopExitSection != "" && !seen[strings.ToLower(s.LoopExitSection)] {
			return &ValidationError{Kind: DanglingLoopExitSection, Section: s.Name, Target: s.LoopExitSection}
		}
	}
	return nil
}

// Clone returns a deep copy, used for rendering snapshots and autosave
func (t *Toque) Clone() *Toque {
	c := *t
	c.Sections = make([]*Section, len(t.Sections))
	for i, s := range t.Sections {
		c.Sections[i] = s.Clone()
	}
	return &c
}
