package sequencer

import (
	"errors"
	"testing"
	"time"

	"bata-studio/toque"
)

// recordingSink keeps every triggered batch
type recordingSink struct {
	notReady error
	batches  [][]toque.NoteEvent
}

func (r *recordingSink) Ready() error { return r.notReady }

func (r *recordingSink) Trigger(events []toque.NoteEvent) {
	r.batches = append(r.batches, append([]toque.NoteEvent(nil), events...))
}

// loopToque builds sections A and B of n beats with a slap on beat 0 of
// the okonkolo.
func loopToque(t *testing.T, n int) *toque.Toque {
	t.Helper()
	tq := toque.New()
	tq.Name = "Test"
	a := tq.Sections[0]
	a.Name = "A"
	a.Resize(n)
	b := tq.AddSection(1)
	b.Name = "B"
	b.Resize(n)
	for _, s := range tq.Sections {
		if err := s.SetBeat(toque.Okonkolo, 0, toque.Slap); err != nil {
			t.Fatalf("SetBeat: %v", err)
		}
	}
	return tq
}

func ticks(t *testing.T, s *Scheduler, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := s.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
}

func TestResolverLoopExit(t *testing.T) {
	tq := loopToque(t, 4)
	a := tq.Section("A")
	a.Repetitions = 2
	a.MaxLoops = 1
	a.NextSection = "a"
	a.LoopExitSection = "b"

	var r Resolver
	r.Reset()
	next, err := r.Resolve(tq, a)
	if err != nil || next != a || r.Visits("A") != 1 {
		t.Fatalf("first visit: next=%v err=%v visits=%d", next, err, r.Visits("A"))
	}
	next, err = r.Resolve(tq, a)
	if err != nil || next != tq.Section("B") {
		t.Fatalf("second visit should exit to B: next=%v err=%v", next, err)
	}
	if r.Visits("A") != 0 {
		t.Fatalf("exit should reset visits, got %d", r.Visits("A"))
	}
}

func TestResolverEndAndDangling(t *testing.T) {
	tq := loopToque(t, 4)
	var r Resolver
	next, err := r.Resolve(tq, tq.Section("B"))
	if next != nil || err != nil {
		t.Fatalf("no next section should end: %v %v", next, err)
	}

	a := tq.Section("A")
	a.NextSection = "gone"
	_, err = r.Resolve(tq, a)
	var derr *toque.DanglingReferenceError
	if !errors.As(err, &derr) || derr.Section != "A" || derr.Target != "gone" {
		t.Fatalf("expected dangling reference, got %v", err)
	}
}

func TestSchedulerWalksGraph(t *testing.T) {
	tq := loopToque(t, 4)
	a := tq.Section("A")
	a.Repetitions = 2
	a.MaxLoops = 1
	a.NextSection = "a"
	a.LoopExitSection = "b"

	sink := &recordingSink{}
	s := NewScheduler(tq, sink)
	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}

	// visit 1 of A: two passes of four beats
	ticks(t, s, 8)
	if pos, _ := s.Position(); pos.Section != "A" || pos.Beat != 0 || pos.Repeat != 0 {
		t.Fatalf("after first visit: %+v", pos)
	}
	// visit 2 of A exits to B
	ticks(t, s, 8)
	if pos, _ := s.Position(); pos.Section != "B" {
		t.Fatalf("after second visit: %+v", pos)
	}
	// B has no next section: one pass then stop
	ticks(t, s, 4)
	if s.State() != Stopped {
		t.Fatalf("expected stop at end of toque, got %s", s.State())
	}
	if len(sink.batches) != 5 {
		t.Fatalf("expected one slap per pass (5), got %d", len(sink.batches))
	}
	if _, ok := s.Sounding(); ok {
		t.Fatalf("stop should clear the sounding beat")
	}
}

func TestSchedulerMutes(t *testing.T) {
	tq := loopToque(t, 2)
	tq.Sections[0].Beats[toque.Iya][1] = toque.Both
	tq.Mutes.Toggle(toque.Iya, toque.MuteLeft)
	tq.Mutes.Toggle(toque.Okonkolo, toque.MuteFull)

	sink := &recordingSink{}
	s := NewScheduler(tq, sink)
	s.Play()
	ticks(t, s, 2)
	if len(sink.batches) != 1 || len(sink.batches[0]) != 1 {
		t.Fatalf("expected a single event, got %v", sink.batches)
	}
	if ev := sink.batches[0][0]; ev.Drum != toque.Iya || ev.Articulation != toque.ArticulationSlap {
		t.Fatalf("expected iya slap, got %v", ev)
	}
}

func TestSchedulerPauseResume(t *testing.T) {
	tq := loopToque(t, 4)
	tq.Sections[0].Repetitions = 3
	s := NewScheduler(tq, &recordingSink{})
	s.Play()
	ticks(t, s, 6)
	if !s.Pause() {
		t.Fatalf("Pause while playing should succeed")
	}
	if err := s.Tick(); err != nil {
		t.Fatalf("Tick while paused: %v", err)
	}
	if pos, ok := s.Position(); !ok || pos.Beat != 2 || pos.Repeat != 1 {
		t.Fatalf("pause lost position: %+v", pos)
	}
	s.Play()
	if pos, _ := s.Position(); pos.Beat != 2 || pos.Repeat != 1 {
		t.Fatalf("resume reset position: %+v", pos)
	}
	if s.Pause(); s.Pause() {
		t.Fatalf("Pause while paused should fail")
	}
	s.Stop()
	if _, ok := s.Position(); ok {
		t.Fatalf("stop should discard position")
	}
}

func TestSchedulerDanglingNextSection(t *testing.T) {
	tq := loopToque(t, 4)
	tq.Section("A").NextSection = "b"
	s := NewScheduler(tq, &recordingSink{})
	s.Play()
	ticks(t, s, 2)

	if err := tq.DeleteSection(tq.IndexOf("B")); err != nil {
		t.Fatalf("DeleteSection: %v", err)
	}
	ticks(t, s, 1)
	err := s.Tick()
	var derr *toque.DanglingReferenceError
	if !errors.As(err, &derr) || derr.Target != "b" {
		t.Fatalf("expected dangling reference to b, got %v", err)
	}
	if s.State() != Stopped {
		t.Fatalf("expected stop, got %s", s.State())
	}
}

func TestSchedulerCurrentSectionDeleted(t *testing.T) {
	tq := loopToque(t, 4)
	s := NewScheduler(tq, &recordingSink{})
	s.Play()
	ticks(t, s, 1)
	tq.DeleteSection(0)

	err := s.Tick()
	var derr *toque.DanglingReferenceError
	if !errors.As(err, &derr) || derr.Section != "" || derr.Target != "A" {
		t.Fatalf("expected vanished section error, got %v", err)
	}
	if s.State() != Stopped {
		t.Fatalf("expected stop, got %s", s.State())
	}
}

func TestSchedulerLiveEdits(t *testing.T) {
	tq := loopToque(t, 4)
	sink := &recordingSink{}
	s := NewScheduler(tq, sink)
	s.Play()
	ticks(t, s, 1)

	// painted ahead of the playhead: heard on the next tick
	tq.Sections[0].Beats[toque.Iya][1] = toque.Open
	ticks(t, s, 1)
	if len(sink.batches) != 2 || sink.batches[1][0].Drum != toque.Iya {
		t.Fatalf("live edit not heard: %v", sink.batches)
	}

	// shrinking behind the playhead finishes the pass
	ticks(t, s, 1)
	tq.Sections[0].Resize(2)
	if err := s.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if s.State() != Stopped {
		t.Fatalf("single pass with no next section should end, got %s", s.State())
	}
}

func TestSchedulerShrunkGridSoundsNextSectionSameTick(t *testing.T) {
	tq := loopToque(t, 4)
	tq.Sections[0].NextSection = "B"
	sink := &recordingSink{}
	s := NewScheduler(tq, sink)
	s.Play()
	ticks(t, s, 3)
	tq.Sections[0].Resize(2)

	if err := s.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	pos, ok := s.Sounding()
	if !ok || pos.Section != "B" || pos.Beat != 0 {
		t.Fatalf("sounding = %+v (%v), want B beat 0", pos, ok)
	}
	if n := len(sink.batches); n != 2 || sink.batches[1][0].Drum != toque.Okonkolo {
		t.Fatalf("beat 0 of B not heard on the same tick: %v", sink.batches)
	}
}

func TestSchedulerAudioUnavailable(t *testing.T) {
	sink := &recordingSink{notReady: errors.New("no port")}
	s := NewScheduler(loopToque(t, 4), sink)
	err := s.Play()
	var aerr *toque.AudioUnavailableError
	if !errors.As(err, &aerr) {
		t.Fatalf("expected AudioUnavailableError, got %v", err)
	}
	if s.State() != Stopped {
		t.Fatalf("state should remain stopped, got %s", s.State())
	}
}

func TestSchedulerPeriod(t *testing.T) {
	tq := loopToque(t, 4)
	s := NewScheduler(tq, &recordingSink{})
	s.Play()
	if got := s.Period(); got != 500*time.Millisecond {
		t.Fatalf("120 bpm subdivision 4: got %v", got)
	}
	tq.SetTempo(90)
	if err := tq.Sections[0].SetSubdivision(16); err != nil {
		t.Fatalf("SetSubdivision: %v", err)
	}
	// 60/90 * 4/16 s
	if got, want := s.Period(), 4*time.Minute/time.Duration(90*16); got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}
