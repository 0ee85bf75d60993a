// Package store persists toques: the auto-saved working snapshot that is
// restored on startup, and the library of .tubs files the user saves and
// loads by name.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bata-studio/clock"
	"bata-studio/debug"
	"bata-studio/toque"
)

// SnapshotPath returns ~/.config/bata-studio/snapshot.json
func SnapshotPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "bata-studio", "snapshot.json"), nil
}

// LoadSnapshot restores the working toque. A missing, unreadable or
// inconsistent snapshot yields a fresh toque; the reason is only logged.
func LoadSnapshot(path string) *toque.Toque {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			debug.Log("store", "snapshot unreadable, using defaults: %v", err)
		}
		return toque.New()
	}
	var t toque.Toque
	if err := json.Unmarshal(data, &t); err != nil {
		debug.Log("store", "snapshot corrupt, using defaults: %v", err)
		return toque.New()
	}
	if err := checkSnapshot(&t); err != nil {
		debug.Log("store", "snapshot inconsistent, using defaults: %v", err)
		return toque.New()
	}
	debug.Log("store", "restored %q (%d sections)", t.Name, len(t.Sections))
	return &t
}

// checkSnapshot repairs what can be repaired and rejects grids that do
// not fit their meter.
func checkSnapshot(t *toque.Toque) error {
	for i, s := range t.Sections {
		if s == nil {
			return fmt.Errorf("section %d is null", i)
		}
		total, err := s.TotalBeats()
		if err != nil {
			return fmt.Errorf("section %q: %w", s.Name, err)
		}
		if total != s.Beats.Len() {
			return fmt.Errorf("section %q: %d beats, meter needs %d", s.Name, s.Beats.Len(), total)
		}
		s.Repetitions = max(s.Repetitions, 1)
		s.MaxLoops = max(s.MaxLoops, 1)
	}
	if t.Tempo == 0 {
		t.Tempo = toque.DefaultTempo
	}
	t.SetTempo(t.Tempo)
	t.EnsureSection()
	return nil
}

// SaveSnapshot writes t as JSON, replacing the previous snapshot atomically
func SaveSnapshot(path string, t *toque.Toque) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// AutoSaver writes the snapshot periodically while the toque changes
type AutoSaver struct {
	done chan struct{}
	err  error
}

// StartAutoSave checks source every interval and saves what it returns.
// source reports false when nothing changed since the last call (see
// sequencer.Manager.TakeDirty). Pending changes are flushed when ctx
// ends.
func StartAutoSave(ctx context.Context, clk clock.Clock, interval time.Duration, path string, source func() (*toque.Toque, bool)) *AutoSaver {
	a := &AutoSaver{done: make(chan struct{})}
	ticker := clk.NewTicker(interval)
	go func() {
		defer close(a.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				a.err = saveIfDirty(path, source)
				return
			case <-ticker.C:
				if err := saveIfDirty(path, source); err != nil {
					debug.Log("store", "autosave failed: %v", err)
				}
			}
		}
	}()
	return a
}

// Wait blocks until the final flush is done and returns its error
func (a *AutoSaver) Wait() error {
	<-a.done
	return a.err
}

func saveIfDirty(path string, source func() (*toque.Toque, bool)) error {
	t, dirty := source()
	if !dirty {
		return nil
	}
	if err := SaveSnapshot(path, t); err != nil {
		return err
	}
	debug.Log("store", "autosaved %q", t.Name)
	return nil
}
