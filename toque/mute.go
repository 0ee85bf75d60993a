package toque

import (
	"encoding/json"
	"fmt"
)

// MuteSide selects which part of a drum a mute toggle applies to. Left is
// the open (boca) head, Right the slap (culatta) head.
type MuteSide int

const (
	MuteFull MuteSide = iota
	MuteLeft
	MuteRight
)

func (s MuteSide) String() string {
	switch s {
	case MuteFull:
		return "full"
	case MuteLeft:
		return "left"
	case MuteRight:
		return "right"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// Mute is the mute state of one drum. Full overrides Left and Right.
type Mute struct {
	Full  bool `json:"full"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// MuteMatrix holds a Mute per drum
type MuteMatrix [NumDrums]Mute

// Toggle flips one mute. Toggling Full clears both sides; toggling a side
// clears Full.
func (m *MuteMatrix) Toggle(d Drum, side MuteSide) {
	mute := &m[d]
	switch side {
	case MuteFull:
		mute.Full = !mute.Full
		mute.Left = false
		mute.Right = false
	case MuteLeft:
		mute.Full = false
		mute.Left = !mute.Left
	case MuteRight:
		mute.Full = false
		mute.Right = !mute.Right
	}
}

// Set forces one mute on or off with the same exclusivity as Toggle
func (m *MuteMatrix) Set(d Drum, side MuteSide, on bool) {
	mute := &m[d]
	switch side {
	case MuteFull:
		mute.Full = on
		if on {
			mute.Left = false
			mute.Right = false
		}
	case MuteLeft:
		mute.Left = on
		if on {
			mute.Full = false
		}
	case MuteRight:
		mute.Right = on
		if on {
			mute.Full = false
		}
	}
}

// Filter appends the events sym on drum d produces under the current mutes.
func (m MuteMatrix) Filter(d Drum, sym Symbol, dst []NoteEvent) []NoteEvent {
	mute := m[d]
	if mute.Full {
		return dst
	}
	slap := !mute.Right
	open := !mute.Left
	switch sym {
	case Slap:
		if slap {
			dst = append(dst, NoteEvent{Drum: d, Articulation: ArticulationSlap})
		}
	case Open, Press:
		if open {
			dst = append(dst, NoteEvent{Drum: d, Articulation: ArticulationOpen})
		}
	case Both:
		if open {
			dst = append(dst, NoteEvent{Drum: d, Articulation: ArticulationOpen})
		}
		if slap {
			dst = append(dst, NoteEvent{Drum: d, Articulation: ArticulationSlap})
		}
	}
	return dst
}

// MarshalJSON writes {"okonkolo": {...}, ...}
func (m MuteMatrix) MarshalJSON() ([]byte, error) {
	out := make(map[string]Mute, NumDrums)
	for _, d := range Drums {
		out[d.String()] = m[d]
	}
	return json.Marshal(out)
}

func (m *MuteMatrix) UnmarshalJSON(data []byte) error {
	var in map[string]Mute
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var out MuteMatrix
	for name, mute := range in {
		d, err := ParseDrum(name)
		if err != nil {
			return err
		}
		out[d] = mute
	}
	*m = out
	return nil
}
