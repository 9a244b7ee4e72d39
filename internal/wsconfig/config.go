// Package wsconfig holds the global UI configuration document (banner
// visibility, pane ratios) and watches it for external edits, generalizing
// the teacher's config.go load/save path conventions onto a second,
// UI-only JSON file (spec.md §6 "Global UI config in
// <config>/workbench/config.json").
package wsconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// FileName is the global UI config document name.
const FileName = "config.json"

// LegacyFileName is the pre-JSON config format, grounded on the teacher's
// per-party YAML documents (config.go's PartyFile). A workspace directory
// carried over from that era has no config.json yet; Load imports its
// show_banner setting on every call while config.json is absent, and never
// writes config.json itself.
const LegacyFileName = "party.yaml"

// legacyPartyFile is the subset of the teacher's PartyFile this app still
// understands: just the UI setting that survived the party-to-workspace
// rename. Slots/Bench/agent roster have no equivalent here.
type legacyPartyFile struct {
	ShowBanner *bool `yaml:"show_banner"`
}

// Config holds settings outside the core's scope that the UI layer reads
// (spec.md §1 "Explicitly out of scope ... colour theming").
type Config struct {
	ShowBanner    bool    `json:"show_banner"`
	PaneSplitFrac float64 `json:"pane_split_frac"`
}

// Default returns the factory configuration.
func Default() Config {
	return Config{ShowBanner: true, PaneSplitFrac: 0.5}
}

func path(configDir string) string {
	return filepath.Join(configDir, FileName)
}

func legacyPath(configDir string) string {
	return filepath.Join(configDir, LegacyFileName)
}

// Load reads config.json, falling back to a legacy party.yaml import and
// then to Default when neither is present.
func Load(configDir string) (Config, error) {
	data, err := os.ReadFile(path(configDir))
	if os.IsNotExist(err) {
		if cfg, ok := loadLegacy(configDir); ok {
			return cfg, nil
		}
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read ui config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal ui config: %w", err)
	}
	return cfg, nil
}

// loadLegacy reads a pre-JSON party.yaml, if one exists, folding its
// show_banner setting onto the factory default. It never errors: a missing
// or malformed legacy file just means there was nothing to import.
func loadLegacy(configDir string) (Config, bool) {
	data, err := os.ReadFile(legacyPath(configDir))
	if err != nil {
		return Config{}, false
	}
	var legacy legacyPartyFile
	if err := yaml.Unmarshal(data, &legacy); err != nil {
		return Config{}, false
	}
	cfg := Default()
	if legacy.ShowBanner != nil {
		cfg.ShowBanner = *legacy.ShowBanner
	}
	return cfg, true
}

// Save writes config.json.
func Save(configDir string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ui config: %w", err)
	}
	return os.WriteFile(path(configDir), data, 0o644)
}

// Watcher notifies on external edits to config.json, so a hand-edited
// file takes effect without restarting the application.
type Watcher struct {
	fsw *fsnotify.Watcher
}

// NewWatcher starts watching configDir for changes to config.json.
func NewWatcher(configDir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(configDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}
	return &Watcher{fsw: fsw}, nil
}

// Events returns a channel of reloaded configs, one per external write to
// config.json. Errors from individual reloads are dropped; the caller
// keeps its last-known-good config.
func (w *Watcher) Events(configDir string) <-chan Config {
	out := make(chan Config)
	go func() {
		defer close(out)
		target := path(configDir)
		for {
			select {
			case ev, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				if ev.Name != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(configDir)
				if err != nil {
					continue
				}
				out <- cfg
			case _, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return out
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
