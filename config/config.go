package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"bata-studio/toque"

	"github.com/tidwall/jsonc"
)

// MIDIConfig selects the output the sequencer plays to
type MIDIConfig struct {
	PortName string `json:"portName,omitempty"` // empty means first port
	Channel  int    `json:"channel,omitempty"`  // 1-16
	Kit      string `json:"kit,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastTempo int    `json:"lastTempo,omitempty"`
	Palette   string `json:"palette,omitempty"` // optional .gpl file
}

// AutosaveConfig controls snapshot writing
type AutosaveConfig struct {
	IntervalSeconds int `json:"intervalSeconds"` // 0 disables
}

// LibraryConfig locates saved .tubs files
type LibraryConfig struct {
	Dir string `json:"dir,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	MIDI     MIDIConfig     `json:"midi"`
	UI       UIConfig       `json:"ui,omitempty"`
	Autosave AutosaveConfig `json:"autosave"`
	Library  LibraryConfig  `json:"library,omitempty"`
	Debug    bool           `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MIDI: MIDIConfig{
			Channel: 10,
			Kit:     "gm",
		},
		UI: UIConfig{
			LastTempo: toque.DefaultTempo,
		},
		Autosave: AutosaveConfig{
			IntervalSeconds: 5,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "bata-studio"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file. Comments and trailing commas are allowed.
// Fields absent from the file keep their defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize clamps out-of-range values
func (c *Config) Normalize() {
	if c.MIDI.Channel < 1 || c.MIDI.Channel > 16 {
		c.MIDI.Channel = 10
	}
	if c.MIDI.Kit == "" {
		c.MIDI.Kit = "gm"
	}
	if c.UI.LastTempo == 0 {
		c.UI.LastTempo = toque.DefaultTempo
	}
	c.UI.LastTempo = max(toque.MinTempo, min(c.UI.LastTempo, toque.MaxTempo))
	c.Autosave.IntervalSeconds = max(c.Autosave.IntervalSeconds, 0)
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
