// Package midi is the audio boundary of the sequencer: it turns note
// events into MIDI note messages on an output port, using a kit to pick
// the note for each drum head.
package midi

import (
	"fmt"
	"sync"
	"time"

	"bata-studio/debug"
	"bata-studio/toque"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// PortScanTimeout bounds how long Open waits for the driver
const PortScanTimeout = 3 * time.Second

// Sink sends note events to a MIDI output. Each event is a note on
// followed straight away by a note off, like a drum machine trigger.
type Sink struct {
	mu      sync.Mutex
	send    func(gomidi.Message) error
	out     drivers.Out
	port    string
	channel uint8 // 0-based
	kit     Kit
	failed  error
}

// NewSink wraps any message sender. channel is 1-16.
func NewSink(send func(gomidi.Message) error, channel int, kit string) *Sink {
	return &Sink{
		send:    send,
		channel: uint8(max(1, min(channel, 16)) - 1),
		kit:     GetKit(kit),
	}
}

// Open connects to the named output port (first port when empty). The
// error is a *toque.AudioUnavailableError when no port can be used.
func Open(port string, channel int, kit string) (*Sink, error) {
	outs, err := outPorts(PortScanTimeout)
	if err != nil {
		return nil, &toque.AudioUnavailableError{Reason: "listing MIDI ports", Err: err}
	}
	out := findOutPort(outs, port)
	if out == nil {
		if port == "" {
			return nil, &toque.AudioUnavailableError{Reason: "no MIDI output ports"}
		}
		return nil, &toque.AudioUnavailableError{Reason: fmt.Sprintf("MIDI output %q not found", port)}
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, &toque.AudioUnavailableError{Reason: "opening " + out.String(), Err: err}
	}
	s := NewSink(send, channel, kit)
	s.out = out
	s.port = out.String()
	debug.Log("midi", "opened %q ch=%d kit=%s", s.port, s.channel+1, s.kit.Name)
	return s, nil
}

// Port returns the connected port name, empty for custom senders
func (s *Sink) Port() string { return s.port }

// Kit returns the kit in use
func (s *Sink) Kit() Kit { return s.kit }

// Ready reports a *toque.AudioUnavailableError once a send has failed or
// when there is nothing to send to.
func (s *Sink) Ready() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.send == nil {
		return &toque.AudioUnavailableError{Reason: "no MIDI output"}
	}
	if s.failed != nil {
		return &toque.AudioUnavailableError{Reason: "MIDI output failed", Err: s.failed}
	}
	return nil
}

// Trigger sends one note per event. Failures are logged and make Ready
// fail; the caller is never blocked on them.
func (s *Sink) Trigger(events []toque.NoteEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.send == nil {
		return
	}
	for _, ev := range events {
		note, vel := s.kit.Note(ev)
		if err := s.send(gomidi.NoteOn(s.channel, note, vel)); err != nil {
			s.fail(err)
			return
		}
		if err := s.send(gomidi.NoteOff(s.channel, note)); err != nil {
			s.fail(err)
			return
		}
		debug.Log("midi", "%s ch=%d note=%d vel=%d", ev, s.channel+1, note, vel)
	}
}

func (s *Sink) fail(err error) {
	if s.failed == nil {
		debug.Log("midi", "send failed: %v", err)
	}
	s.failed = err
}

// Close closes the output port
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send = nil
	if s.out != nil && s.out.IsOpen() {
		return s.out.Close()
	}
	return nil
}
