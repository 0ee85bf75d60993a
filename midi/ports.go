package midi

import (
	"errors"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ErrPortScanTimeout means the MIDI driver did not answer in time.
// CoreMIDI is known to hang; `sudo killall coreaudiod midiserver` helps.
var ErrPortScanTimeout = errors.New("midi: timed out listing ports")

// outPorts lists output ports with a timeout
func outPorts(timeout time.Duration) ([]drivers.Out, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case outs := <-ch:
		return outs, nil
	case <-time.After(timeout):
		return nil, ErrPortScanTimeout
	}
}

// ListOutPorts returns the names of all MIDI output ports
func ListOutPorts(timeout time.Duration) ([]string, error) {
	outs, err := outPorts(timeout)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(outs))
	for i, p := range outs {
		names[i] = p.String()
	}
	return names, nil
}

// findOutPort picks the port whose name contains name (any case), or the
// first port when name is empty.
func findOutPort(outs []drivers.Out, name string) drivers.Out {
	if name == "" {
		if len(outs) > 0 {
			return outs[0]
		}
		return nil
	}
	for _, p := range outs {
		if p.String() == name {
			return p
		}
	}
	want := strings.ToLower(name)
	for _, p := range outs {
		if strings.Contains(strings.ToLower(p.String()), want) {
			return p
		}
	}
	return nil
}

// CloseDriver releases the MIDI driver; call once at exit
func CloseDriver() {
	gomidi.CloseDriver()
}
