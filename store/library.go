package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bata-studio/debug"
	"bata-studio/toque"
	"bata-studio/tubs"
)

// Ext is the toque file extension
const Ext = ".tubs"

// Entry is a saved toque file (for listing)
type Entry struct {
	Filename string
	Name     string // filename without extension
	Modified time.Time
}

// Library is a directory of .tubs files
type Library struct {
	Dir string
}

// DefaultLibraryDir returns ~/.config/bata-studio/toques
func DefaultLibraryDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "bata-studio", "toques"), nil
}

// List returns all toque files, newest first
func (l Library) List() ([]Entry, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}

	var out []Entry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{
			Filename: e.Name(),
			Name:     strings.TrimSuffix(e.Name(), Ext),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Modified.Equal(out[j].Modified) {
			return out[i].Filename < out[j].Filename
		}
		return out[i].Modified.After(out[j].Modified)
	})
	return out, nil
}

// Save validates t and writes it as <toque name>.tubs. Returns the path.
func (l Library) Save(t *toque.Toque) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	path := filepath.Join(l.Dir, Filename(t.Name))
	if err := writeFileAtomic(path, tubs.Serialize(t)); err != nil {
		return "", err
	}
	debug.Log("store", "saved %s", path)
	return path, nil
}

// Load reads a toque by file name (with or without extension) or by path
func (l Library) Load(name string) (*toque.Toque, error) {
	path := name
	if !strings.ContainsRune(name, os.PathSeparator) {
		if !strings.HasSuffix(name, Ext) {
			name += Ext
		}
		path = filepath.Join(l.Dir, name)
	}
	return LoadFile(path)
}

// LoadFile reads and parses a .tubs file
func LoadFile(path string) (*toque.Toque, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := tubs.Load(data)
	if err != nil {
		return nil, err
	}
	debug.Log("store", "loaded %s", path)
	return t, nil
}

// Filename turns a toque name into a file name
func Filename(name string) string {
	name = sanitizeFilename(strings.TrimSpace(name))
	if name == "" {
		name = "untitled"
	}
	return name + Ext
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	r := strings.NewReplacer(
		" ", "-", "/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
	)
	return r.Replace(name)
}
