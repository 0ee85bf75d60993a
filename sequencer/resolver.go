package sequencer

import (
	"strings"

	"bata-studio/toque"
)

// Resolver picks the section that follows a finished visit. It counts
// visits per section for the lifetime of one playback session.
type Resolver struct {
	visits map[string]int
}

// Reset forgets all visit counts
func (r *Resolver) Reset() {
	r.visits = make(map[string]int)
}

// Visits returns how many completed visits name has, ignoring case
func (r *Resolver) Visits(name string) int {
	return r.visits[strings.ToLower(name)]
}

// Resolve records a completed visit of s and returns the next section.
// A visit past MaxLoops takes the loop exit, if one is set, and resets
// the count so s can be entered fresh later. A nil section with a nil
// error means the toque has ended.
func (r *Resolver) Resolve(t *toque.Toque, s *toque.Section) (*toque.Section, error) {
	if r.visits == nil {
		r.Reset()
	}
	key := strings.ToLower(s.Name)
	r.visits[key]++

	var target string
	switch {
	case r.visits[key] > s.MaxLoops && s.LoopExitSection != "":
		target = s.LoopExitSection
		r.visits[key] = 0
	case s.NextSection != "":
		target = s.NextSection
	default:
		return nil, nil
	}

	next := t.Section(target)
	if next == nil {
		return nil, &toque.DanglingReferenceError{Section: s.Name, Target: target}
	}
	return next, nil
}
