// Package keymap provides user-configurable key bindings for the bundle page,
// loaded from .notif/keymap.json.
package keymap

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Config is the on-disk keymap override file.
type Config struct {
	// Bindings maps "context:key" to a command id, e.g. {"main:E": "edit-notification"}.
	// A key without a context is global. The command "none" unbinds the key.
	Bindings map[string]string `json:"bindings"`
}

// ConfigPath returns the path to the keymap config file
func ConfigPath(baseDir string) string {
	return filepath.Join(baseDir, ".notif", "keymap.json")
}

// LoadConfig reads overrides from path. A missing file is an empty config.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{Bindings: make(map[string]string)}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if cfg.Bindings == nil {
		cfg.Bindings = make(map[string]string)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path via a temp file and rename.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// ApplyConfig installs the overrides in cfg. Entries naming an unknown
// context or command are skipped and reported together in the error.
func ApplyConfig(r *Registry, cfg *Config) error {
	known := append(AllCommands(), CmdNone)

	keys := make([]string, 0, len(cfg.Bindings))
	for k := range cfg.Bindings {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var errs []error
	for _, binding := range keys {
		cmd := Command(cfg.Bindings[binding])
		ctx, key := parseBinding(binding)
		switch {
		case key == "":
			errs = append(errs, fmt.Errorf("%q: missing key", binding))
		case !slices.Contains(Contexts, ctx):
			errs = append(errs, fmt.Errorf("%q: unknown context %q", binding, ctx))
		case !slices.Contains(known, cmd):
			errs = append(errs, fmt.Errorf("%q: unknown command %q", binding, cmd))
		default:
			r.SetUserOverride(ctx, key, cmd)
		}
	}
	return errors.Join(errs...)
}

// parseBinding splits "context:key". Without a colon the key is global.
// A lone ":" is a key, not a separator.
func parseBinding(s string) (Context, string) {
	if ctx, key, ok := strings.Cut(s, ":"); ok && ctx != "" {
		return Context(ctx), key
	}
	return ContextGlobal, s
}

// ExampleConfig returns the file written by monitor --init-keymap
func ExampleConfig() *Config {
	return &Config{
		Bindings: map[string]string{
			"main:E":        string(CmdEditNotification),
			"modal:w":       string(CmdSave),
			"main:q":        string(CmdNone),
			"global:ctrl+q": string(CmdQuit),
		},
	}
}
