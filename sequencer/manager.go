package sequencer

import (
	"sync"

	"bata-studio/clock"
	"bata-studio/debug"
	"bata-studio/toque"
)

// Manager owns the toque being edited and drives its Scheduler from a
// clock. Every method takes the same lock, so ticks and edits never
// overlap: an edit lands between two ticks and is heard on the next one.
type Manager struct {
	mu    sync.Mutex
	toque *toque.Toque
	sched *Scheduler
	clock clock.Clock

	timer *clock.Timer
	gen   int // bumped on every stop/pause so a late timer callback is ignored
	dirty bool

	// Notify TUI of updates
	UpdateChan chan struct{}

	// Non-fatal playback problems, e.g. a section deleted while playing
	Notices chan error
}

// View is a read-only copy of everything a renderer needs
type View struct {
	Toque       *toque.Toque
	State       State
	Position    Position
	Sounding    Position
	HasSounding bool
}

// NewManager creates a stopped manager owning t
func NewManager(t *toque.Toque, sink Sink, clk clock.Clock) *Manager {
	if clk == nil {
		clk = clock.Real()
	}
	t.EnsureSection()
	return &Manager{
		toque:      t,
		sched:      NewScheduler(t, sink),
		clock:      clk,
		UpdateChan: make(chan struct{}, 1),
		Notices:    make(chan error, 8),
	}
}

// Play starts or resumes playback. The first beat sounds immediately.
func (m *Manager) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sched.State() == Playing {
		return nil
	}
	if err := m.sched.Play(); err != nil {
		debug.Log("engine", "play refused: %v", err)
		return err
	}
	m.gen++
	m.tickLocked(m.gen)
	return nil
}

// Pause holds the playback position
func (m *Manager) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sched.Pause() {
		m.cancelLocked()
		debug.Log("engine", "paused")
		m.notifyUpdate()
	}
}

// Stop ends playback and cancels any pending tick
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

// TogglePlay plays when stopped or paused and pauses when playing
func (m *Manager) TogglePlay() error {
	m.mu.Lock()
	playing := m.sched.State() == Playing
	m.mu.Unlock()
	if playing {
		m.Pause()
		return nil
	}
	return m.Play()
}

func (m *Manager) stopLocked() {
	m.cancelLocked()
	if m.sched.State() != Stopped {
		m.sched.Stop()
		debug.Log("engine", "stopped")
	}
	m.notifyUpdate()
}

func (m *Manager) cancelLocked() {
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) tickLocked(gen int) {
	if gen != m.gen || m.sched.State() != Playing {
		return
	}
	if err := m.sched.Tick(); err != nil {
		m.notice(err)
	}
	if m.sched.State() == Playing {
		m.timer = m.clock.AfterFunc(m.sched.Period(), func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.tickLocked(gen)
		})
	} else {
		m.timer = nil
	}
	m.notifyUpdate()
}

func (m *Manager) notice(err error) {
	debug.Log("engine", "notice: %v", err)
	select {
	case m.Notices <- err:
	default:
		debug.Log("engine", "notice queue full, dropped: %v", err)
	}
}

// Apply performs an editing command on the owned toque
func (m *Manager) Apply(c toque.Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.toque.Apply(c); err != nil {
		debug.Log("engine", "%s rejected: %v", c.Op, err)
		return err
	}
	m.dirty = true
	m.notifyUpdate()
	return nil
}

// SetTempo sets the BPM, clamped to the supported range
func (m *Manager) SetTempo(bpm int) {
	m.Apply(toque.Command{Op: toque.OpSetTempo, Value: bpm})
}

// Replace swaps in a loaded toque. Playback stops, the current tempo is
// kept and playback will begin at the first section.
func (m *Manager) Replace(t *toque.Toque) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	t.EnsureSection()
	t.Tempo = m.toque.Tempo
	t.StartSection = 0
	m.toque = t
	m.sched.SetToque(t)
	m.dirty = true
	debug.Log("engine", "loaded %q with %d sections", t.Name, len(t.Sections))
	m.notifyUpdate()
}

// Snapshot copies the toque and playback position for rendering
func (m *Manager) Snapshot() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := View{Toque: m.toque.Clone(), State: m.sched.State()}
	v.Position, _ = m.sched.Position()
	v.Sounding, v.HasSounding = m.sched.Sounding()
	return v
}

// Toque returns a copy of the toque
func (m *Manager) Toque() *toque.Toque {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toque.Clone()
}

// TakeDirty returns a copy of the toque if it changed since the last call
func (m *Manager) TakeDirty() (*toque.Toque, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirty {
		return nil, false
	}
	m.dirty = false
	return m.toque.Clone(), true
}

// notifyUpdate nudges the TUI without blocking
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
