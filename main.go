// bata-studio is a terminal sequencer for batá drum toques. It edits a
// graph of sections, plays it through a MIDI output and keeps the work
// in an autosaved snapshot between sessions.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"bata-studio/clock"
	"bata-studio/config"
	"bata-studio/debug"
	"bata-studio/midi"
	"bata-studio/sequencer"
	"bata-studio/store"
	"bata-studio/theme"
	"bata-studio/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		file       string
		configPath string
		port       string
		kit        string
		channel    int
		tempo      int
		debugLog   bool
	)

	flagSet := pflag.NewFlagSet("bata-studio", pflag.ContinueOnError)
	flagSet.StringVarP(&file, "file", "f", "", "open a .tubs file instead of the last session")
	flagSet.StringVar(&configPath, "config", "", "config file (default ~/.config/bata-studio/config.json)")
	flagSet.StringVarP(&port, "port", "p", "", "MIDI output port name or part of it")
	flagSet.StringVar(&kit, "kit", "", "note mapping: gm or sampler")
	flagSet.IntVar(&channel, "channel", 0, "MIDI channel 1-16")
	flagSet.IntVarP(&tempo, "tempo", "t", 0, "starting tempo in BPM")
	flagSet.BoolVar(&debugLog, "debug", false, "write a debug log to ~/.config/bata-studio/debug.log")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
		cfg = config.DefaultConfig()
	}
	if flagSet.Changed("port") {
		cfg.MIDI.PortName = port
	}
	if flagSet.Changed("kit") {
		cfg.MIDI.Kit = kit
	}
	if flagSet.Changed("channel") {
		cfg.MIDI.Channel = channel
	}
	cfg.Normalize()

	if debugLog || cfg.Debug {
		if err := debug.Enable(""); err != nil {
			fmt.Fprintf(os.Stderr, "warning: debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	libDir := cfg.Library.Dir
	if libDir == "" {
		if libDir, err = store.DefaultLibraryDir(); err != nil {
			return err
		}
	}
	library := store.Library{Dir: libDir}

	snapPath, err := store.SnapshotPath()
	if err != nil {
		debug.Log("main", "no snapshot path: %v", err)
	}
	t := store.LoadSnapshot(snapPath)
	if file != "" {
		if t, err = store.LoadFile(file); err != nil {
			return err
		}
	}
	switch {
	case flagSet.Changed("tempo"):
		t.SetTempo(tempo)
	case file == "" && !fileExists(snapPath):
		t.SetTempo(cfg.UI.LastTempo)
	}

	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		debug.Log("main", "palette: %v", err)
	}
	th := theme.New(palette)

	sink, err := midi.Open(cfg.MIDI.PortName, cfg.MIDI.Channel, cfg.MIDI.Kit)
	if err != nil {
		// editing still works; Play reports the problem
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		sink = midi.NewSink(nil, cfg.MIDI.Channel, cfg.MIDI.Kit)
	}
	defer midi.CloseDriver()
	defer sink.Close()

	manager := sequencer.NewManager(t, sink, clock.Real())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var saver *store.AutoSaver
	if cfg.Autosave.IntervalSeconds > 0 && snapPath != "" {
		interval := time.Duration(cfg.Autosave.IntervalSeconds) * time.Second
		saver = store.StartAutoSave(ctx, clock.Real(), interval, snapPath, manager.TakeDirty)
	}

	debug.Log("main", "starting: %d sections, port %q, library %s", len(t.Sections), sink.Port(), libDir)

	m := tui.NewModel(manager, library, th)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := p.Run()

	manager.Stop()
	cancel()
	if saver != nil {
		if err := saver.Wait(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: saving session: %v\n", err)
		}
	}

	cfg.UI.LastTempo = manager.Toque().Tempo
	if configPath != "" {
		err = cfg.SaveTo(configPath)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		debug.Log("main", "saving config: %v", err)
	}
	return runErr
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `bata-studio: edit and play batá drum toques.

Without --file the last session is restored from
%s.

Usage:
  bata-studio [flags]

Flags:
`, filepath.Join("~", ".config", "bata-studio", "snapshot.json"))
	flagSet.PrintDefaults()
}
