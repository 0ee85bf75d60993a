package toque

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// clipSection is the YAML shape of a copied section. Rows are strings so
// the clipboard stays readable and hand-editable.
type clipSection struct {
	Name            string `yaml:"name"`
	Repetitions     int    `yaml:"repetitions"`
	Time            string `yaml:"time"`
	Subdivision     int    `yaml:"subdivision"`
	NextSection     string `yaml:"nextSection,omitempty"`
	MaxLoops        int    `yaml:"maxLoops"`
	LoopExitSection string `yaml:"loopExitSection,omitempty"`
	Okonkolo        string `yaml:"okonkolo"`
	Itotele         string `yaml:"itotele"`
	Iya             string `yaml:"iya"`
}

// MarshalSection encodes a section for the clipboard
func MarshalSection(s *Section) ([]byte, error) {
	return yaml.Marshal(clipSection{
		Name:            s.Name,
		Repetitions:     s.Repetitions,
		Time:            s.TimeSignature.String(),
		Subdivision:     s.Subdivision,
		NextSection:     s.NextSection,
		MaxLoops:        s.MaxLoops,
		LoopExitSection: s.LoopExitSection,
		Okonkolo:        s.Beats.Row(Okonkolo),
		Itotele:         s.Beats.Row(Itotele),
		Iya:             s.Beats.Row(Iya),
	})
}

// UnmarshalSection decodes clipboard data. The meter must agree with the
// grid length.
func UnmarshalSection(data []byte) (*Section, error) {
	var c clipSection
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding section: %w", err)
	}
	s := NewSection(c.Name)
	if c.Repetitions >= 1 {
		s.Repetitions = c.Repetitions
	}
	if c.MaxLoops >= 1 {
		s.MaxLoops = c.MaxLoops
	}
	if c.Subdivision > 0 {
		s.Subdivision = c.Subdivision
	}
	if _, err := fmt.Sscanf(c.Time, "%d/%d", &s.TimeSignature.Numerator, &s.TimeSignature.Denominator); err != nil {
		return nil, fmt.Errorf("decoding section time %q: %w", c.Time, err)
	}
	s.NextSection = c.NextSection
	s.LoopExitSection = c.LoopExitSection
	if err := s.Beats.setRows(map[string]string{
		Okonkolo.String(): c.Okonkolo,
		Itotele.String():  c.Itotele,
		Iya.String():      c.Iya,
	}); err != nil {
		return nil, err
	}
	total, err := s.TotalBeats()
	if err != nil {
		return nil, err
	}
	if total != s.Beats.Len() {
		return nil, fmt.Errorf("section %q: meter %s/%d needs %d beats, grid has %d",
			s.Name, s.TimeSignature, s.Subdivision, total, s.Beats.Len())
	}
	if s.Name == "" {
		return nil, fmt.Errorf("section name cannot be empty")
	}
	return s, nil
}
