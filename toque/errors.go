package toque

import "fmt"

// FormatError reports malformed .tubs input. Section is the section being
// parsed when the problem was found (empty before the first section).
type FormatError struct {
	Section string
	Line    int
	Msg     string
}

func (e *FormatError) Error() string {
	switch {
	case e.Section != "" && e.Line > 0:
		return fmt.Sprintf("section %q (line %d): %s", e.Section, e.Line, e.Msg)
	case e.Section != "":
		return fmt.Sprintf("section %q: %s", e.Section, e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

// ValidationKind identifies which pre-save check failed
type ValidationKind int

const (
	EmptyToqueName ValidationKind = iota
	DuplicateSectionName
	DanglingNextSection
	DanglingLoopExitSection
)

// ValidationError is raised by Validate before a save.
type ValidationError struct {
	Kind    ValidationKind
	Section string // offending section, if any
	Target  string // referenced name for dangling references
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case EmptyToqueName:
		return "toque name is required before saving"
	case DuplicateSectionName:
		return fmt.Sprintf("section names must be unique: %q appears more than once", e.Section)
	case DanglingNextSection:
		return fmt.Sprintf("section %q references non-existent next section %q", e.Section, e.Target)
	case DanglingLoopExitSection:
		return fmt.Sprintf("section %q references non-existent loop exit section %q", e.Section, e.Target)
	}
	return "invalid toque"
}

// DanglingReferenceError means a section needed during playback no longer
// exists. Section is empty when the playing section itself vanished.
type DanglingReferenceError struct {
	Section string
	Target  string
}

func (e *DanglingReferenceError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("section %q was removed during playback", e.Target)
	}
	return fmt.Sprintf("section %q transitions to missing section %q", e.Section, e.Target)
}

// AudioUnavailableError is returned when the sink cannot accept events.
type AudioUnavailableError struct {
	Reason string
	Err    error
}

func (e *AudioUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("audio unavailable: %s: %v", e.Reason, e.Err)
	}
	return "audio unavailable: " + e.Reason
}

func (e *AudioUnavailableError) Unwrap() error { return e.Err }
