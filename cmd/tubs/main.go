// tubs works with .tubs toque files from the command line: list MIDI
// outputs, check and reformat files, and play a toque without the editor.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"
	gomidi "gitlab.com/gomidi/midi/v2"

	"bata-studio/clock"
	"bata-studio/config"
	"bata-studio/debug"
	"bata-studio/midi"
	"bata-studio/sequencer"
	"bata-studio/store"
	"bata-studio/tubs"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		usage()
		return nil
	}

	switch args[0] {
	case "ports":
		return listPorts(stdout)
	case "check":
		return check(args[1:], stdout)
	case "fmt":
		return format(args[1:], stdout)
	case "play":
		return play(args[1:], stdout)
	case "help", "-h", "--help":
		usage()
		return nil
	}
	usage()
	return fmt.Errorf("unknown command %q", args[0])
}

func usage() {
	fmt.Fprintln(os.Stderr, `tubs: .tubs toque file tool

Commands:
  ports            list MIDI output ports
  check FILE...    parse and validate toque files
  fmt FILE         print FILE in canonical form
  play FILE        play FILE until it ends or Ctrl-C (see play --help)`)
}

func listPorts(stdout io.Writer) error {
	names, err := midi.ListOutPorts(midi.PortScanTimeout)
	defer midi.CloseDriver()
	if errors.Is(err, midi.ErrPortScanTimeout) {
		return fmt.Errorf("%w (on macOS: sudo killall coreaudiod midiserver)", err)
	}
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(stdout, "no MIDI output ports")
		return nil
	}
	for i, n := range names {
		fmt.Fprintf(stdout, "  %d: %s\n", i, n)
	}
	return nil
}

func check(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New("check: no files given")
	}
	failed := 0
	for _, path := range args {
		t, err := store.LoadFile(path)
		if err == nil {
			err = t.Validate()
		}
		if err != nil {
			fmt.Fprintf(stdout, "%s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Fprintf(stdout, "%s: ok, %q with %d sections\n", path, t.Name, len(t.Sections))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func format(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("fmt: expected one file")
	}
	t, err := store.LoadFile(args[0])
	if err != nil {
		return err
	}
	_, err = stdout.Write(tubs.Serialize(t))
	return err
}

// printer returns a sender that writes note-on messages as text
func printer(w io.Writer) func(gomidi.Message) error {
	start := time.Now()
	return func(msg gomidi.Message) error {
		var ch, key, vel uint8
		if msg.GetNoteOn(&ch, &key, &vel) {
			_, err := fmt.Fprintf(w, "%8.3fs  %s\n", time.Since(start).Seconds(), msg)
			return err
		}
		return nil
	}
}

func play(args []string, stdout io.Writer) error {
	var (
		port     string
		kit      string
		channel  int
		tempo    int
		dryRun   bool
		debugLog bool
	)
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	flagSet := pflag.NewFlagSet("tubs play", pflag.ContinueOnError)
	flagSet.StringVarP(&port, "port", "p", cfg.MIDI.PortName, "MIDI output port name or part of it")
	flagSet.StringVar(&kit, "kit", cfg.MIDI.Kit, "note mapping: gm or sampler")
	flagSet.IntVar(&channel, "channel", cfg.MIDI.Channel, "MIDI channel 1-16")
	flagSet.IntVarP(&tempo, "tempo", "t", 0, "override the file's tempo")
	flagSet.BoolVarP(&dryRun, "dry-run", "n", false, "print notes instead of sending MIDI")
	flagSet.BoolVar(&debugLog, "debug", false, "write a debug log")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			fmt.Fprintln(os.Stderr, "Usage: tubs play [flags] FILE")
			flagSet.PrintDefaults()
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		return errors.New("play: expected one file")
	}
	if debugLog {
		if err := debug.Enable(""); err != nil {
			return err
		}
		defer debug.Disable()
	}

	t, err := store.LoadFile(flagSet.Arg(0))
	if err != nil {
		return err
	}
	if tempo > 0 {
		t.SetTempo(tempo)
	}

	var sink sequencer.Sink
	if dryRun {
		sink = midi.NewSink(printer(stdout), channel, kit)
	} else {
		out, err := midi.Open(port, channel, kit)
		if err != nil {
			return err
		}
		defer midi.CloseDriver()
		defer out.Close()
		fmt.Fprintf(stdout, "playing %q on %s (%s kit)\n", t.Name, out.Port(), out.Kit().Name)
		sink = out
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return playUntilDone(ctx, sequencer.NewManager(t, sink, clock.Real()), stdout)
}

// playUntilDone plays until the section graph ends, a notice stops
// playback, or ctx is cancelled
func playUntilDone(ctx context.Context, mgr *sequencer.Manager, stdout io.Writer) error {
	if err := mgr.Play(); err != nil {
		return err
	}
	defer mgr.Stop()

	last := ""
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-mgr.Notices:
			return err
		case <-mgr.UpdateChan:
			v := mgr.Snapshot()
			if v.State == sequencer.Stopped {
				// a stop caused by a notice is queued before this update
				select {
				case err := <-mgr.Notices:
					return err
				default:
				}
				fmt.Fprintln(stdout, "end of toque")
				return nil
			}
			if v.Position.Section != last {
				last = v.Position.Section
				fmt.Fprintf(stdout, "section %s\n", last)
			}
		}
	}
}
