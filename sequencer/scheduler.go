package sequencer

import (
	"errors"
	"time"

	"bata-studio/debug"
	"bata-studio/toque"
)

// State is the transport state of a Scheduler
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "stopped"
}

// Sink receives the note events of each tick. Trigger is fire-and-forget.
type Sink interface {
	// Ready reports whether the sink can accept events; a non-nil error
	// keeps playback from starting.
	Ready() error
	Trigger(events []toque.NoteEvent)
}

// Position is a place in the toque: a section by name, the beat within
// it and how many passes of it have completed.
type Position struct {
	Section string
	Beat    int
	Repeat  int
}

// Scheduler walks the section graph one beat per Tick. It reads the toque
// live on every tick and never copies it, so edits show up on the next
// tick. It does no timing of its own: a Manager or a test calls Tick.
type Scheduler struct {
	toque    *toque.Toque
	sink     Sink
	resolver Resolver

	state    State
	pos      Position
	sounding Position
	hasSound bool

	events []toque.NoteEvent
}

// NewScheduler creates a stopped scheduler reading t
func NewScheduler(t *toque.Toque, sink Sink) *Scheduler {
	return &Scheduler{toque: t, sink: sink}
}

// SetToque points the scheduler at a different toque. Playback stops.
func (s *Scheduler) SetToque(t *toque.Toque) {
	s.Stop()
	s.toque = t
}

// State returns the transport state
func (s *Scheduler) State() State { return s.state }

// Position returns the next beat to play. ok is false when stopped.
func (s *Scheduler) Position() (pos Position, ok bool) {
	return s.pos, s.state != Stopped
}

// Sounding returns the beat emitted by the last tick. ok is false when
// stopped or before the first tick.
func (s *Scheduler) Sounding() (pos Position, ok bool) {
	return s.sounding, s.hasSound
}

// Visits exposes the resolver's visit count for a section
func (s *Scheduler) Visits(name string) int {
	return s.resolver.Visits(name)
}

// Play starts from the start section when stopped or resumes when paused.
// Nothing changes if the sink is not ready.
func (s *Scheduler) Play() error {
	if s.state == Playing {
		return nil
	}
	if err := s.sink.Ready(); err != nil {
		var aerr *toque.AudioUnavailableError
		if !errors.As(err, &aerr) {
			err = &toque.AudioUnavailableError{Reason: "sink not ready", Err: err}
		}
		return err
	}
	if s.state == Stopped {
		start := s.toque.Start()
		if start == nil {
			return errors.New("toque has no sections")
		}
		s.pos = Position{Section: start.Name}
		s.resolver.Reset()
		debug.Log("engine", "play from %q", start.Name)
	} else {
		debug.Log("engine", "resume at %q beat %d", s.pos.Section, s.pos.Beat)
	}
	s.state = Playing
	return nil
}

// Pause holds the position. Only valid while playing.
func (s *Scheduler) Pause() bool {
	if s.state != Playing {
		return false
	}
	s.state = Paused
	return true
}

// Stop discards the position and clears the sounding beat
func (s *Scheduler) Stop() {
	s.state = Stopped
	s.pos = Position{}
	s.sounding = Position{}
	s.hasSound = false
}

// Tick plays one beat of the current section and advances. It does
// nothing unless playing. Playback stops when the toque ends, and with
// a *toque.DanglingReferenceError when the current section or a
// transition target no longer exists.
func (s *Scheduler) Tick() error {
	if s.state != Playing {
		return nil
	}
	sec := s.toque.Section(s.pos.Section)
	if sec == nil {
		name := s.pos.Section
		s.Stop()
		return &toque.DanglingReferenceError{Target: name}
	}

	total := sec.Beats.Len()
	if total == 0 {
		s.Stop()
		return nil
	}
	// the grid shrank under us; finish the pass and sound the beat that
	// follows it on this tick
	if s.pos.Beat >= total {
		s.pos.Beat = 0
		s.pos.Repeat++
		if s.pos.Repeat >= sec.Repetitions {
			if err := s.transition(sec); err != nil || s.state != Playing {
				return err
			}
			sec = s.toque.Section(s.pos.Section)
			if total = sec.Beats.Len(); total == 0 {
				s.Stop()
				return nil
			}
		}
	}

	s.events = s.events[:0]
	for _, d := range toque.Drums {
		s.events = s.toque.Mutes.Filter(d, sec.Beats[d][s.pos.Beat], s.events)
	}
	if len(s.events) > 0 {
		s.sink.Trigger(s.events)
	}
	s.sounding = s.pos
	s.hasSound = true
	debug.LogEvery(16, "tick", "%s beat %d pass %d events %d", sec.Name, s.pos.Beat, s.pos.Repeat, len(s.events))

	s.pos.Beat++
	if s.pos.Beat == total {
		s.pos.Beat = 0
		s.pos.Repeat++
	}
	if s.pos.Repeat >= sec.Repetitions {
		return s.transition(sec)
	}
	return nil
}

func (s *Scheduler) transition(sec *toque.Section) error {
	next, err := s.resolver.Resolve(s.toque, sec)
	if err != nil {
		s.Stop()
		return err
	}
	if next == nil {
		debug.Log("engine", "end of toque after %q", sec.Name)
		s.Stop()
		return nil
	}
	debug.Log("engine", "%q -> %q (visit %d)", sec.Name, next.Name, s.resolver.Visits(sec.Name))
	s.pos = Position{Section: next.Name}
	return nil
}

// Period is the time until the next tick: 60/tempo * 4/subdivision
// seconds, from the live tempo and the current section's subdivision.
func (s *Scheduler) Period() time.Duration {
	sub := toque.DefaultSubdivision
	if sec := s.toque.Section(s.pos.Section); sec != nil && sec.Subdivision > 0 {
		sub = sec.Subdivision
	}
	tempo := max(s.toque.Tempo, 1)
	return 4 * time.Minute / time.Duration(tempo*sub)
}
