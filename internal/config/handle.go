package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/HendryAvila/agentrc/internal/logging"
)

var (
	// ErrNoConfig is returned by Update when there is nothing loaded to mutate.
	ErrNoConfig = errors.New("no configuration loaded")
	// ErrIndexOutOfRange is returned by RemoveRule for an index outside Rules.
	ErrIndexOutOfRange = errors.New("rule index out of range")
)

// Handle owns the effective configuration of one session.
//
// It is created once at startup and passed by pointer to everything that
// needs the config. Reload replaces the config wholesale; Update mutates a
// copy, persists it, and only then swaps it in.
//
// The first LegacyRules() entries of Rules come from legacy instruction
// files. They are never written to the primary file.
type Handle struct {
	root      string
	globalDir string
	home      string

	mu     sync.RWMutex
	cfg    *Config
	source string // file the primary config came from; "" if none
	legacy int    // leading entries of cfg.Rules that came from legacy files
}

// Option customizes a Handle.
type Option func(*Handle)

// WithGlobalDir overrides the user-global config directory.
func WithGlobalDir(dir string) Option {
	return func(h *Handle) { h.globalDir = dir }
}

// WithHome overrides the home directory used for the host-tool location.
func WithHome(home string) Option {
	return func(h *Handle) { h.home = home }
}

// NewHandle creates an unloaded handle for the project at root.
func NewHandle(root string, opts ...Option) *Handle {
	h := &Handle{root: root}
	for _, opt := range opts {
		opt(h)
	}
	if h.home == "" {
		h.home, _ = os.UserHomeDir()
	}
	if h.globalDir == "" {
		h.globalDir = DefaultGlobalDir(h.home)
	}
	return h
}

// Root returns the project root.
func (h *Handle) Root() string { return h.root }

// Load runs the cascade: locate, extract legacy, merge. An invalid primary
// config is returned as an error and leaves the handle unchanged.
func (h *Handle) Load() error {
	primary, source, err := Locate(h.root, h.globalDir, h.home)
	if err != nil {
		return err
	}
	legacy := ExtractLegacy(h.root)
	merged := Merge(primary, legacy)

	h.mu.Lock()
	h.cfg = merged
	h.source = source
	h.legacy = legacyCount(legacy)
	h.mu.Unlock()

	switch {
	case merged == nil:
		logging.Info("Config", "No configuration found for %s", h.root)
	case source == "":
		logging.Info("Config", "Using legacy configuration only (%d rules)", len(merged.Rules))
	}
	return nil
}

// Reload is Load under the name used by file-change handlers.
func (h *Handle) Reload() error {
	if err := h.Load(); err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	return nil
}

// Config returns the current effective config, or nil. Callers must not
// mutate it; use Update.
func (h *Handle) Config() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// Source returns the file the primary config was loaded from, or "".
func (h *Handle) Source() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.source
}

// Path returns where changes are persisted: the file the config was
// loaded from, or the project-root location.
func (h *Handle) Path() string {
	if src := h.Source(); src != "" {
		return src
	}
	return ProjectPath(h.root)
}

// LegacyRules returns how many leading rules came from legacy files.
func (h *Handle) LegacyRules() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.legacy
}

// HasPrimary reports whether a primary config file exists on disk.
func (h *Handle) HasPrimary() bool {
	if src := h.Source(); src != "" {
		if _, err := os.Stat(src); err == nil {
			return true
		}
	}
	_, err := os.Stat(ProjectPath(h.root))
	return err == nil
}

// Update applies fn to a copy of the current config, persists the copy's
// primary rules to Path and swaps it in. If fn or the write fails, the
// current config is left untouched. fn may append to Rules or edit the
// entries after the legacy prefix; use RemoveRule to delete one.
func (h *Handle) Update(fn func(*Config) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cfg == nil {
		return ErrNoConfig
	}
	next := h.cfg.Clone()
	if err := fn(next); err != nil {
		return err
	}
	return h.persistLocked(next, min(h.legacy, len(next.Rules)))
}

// RemoveRule deletes the rule at idx and returns it. A legacy rule is
// only dropped from memory; it comes back on the next Load unless the
// legacy file is edited.
func (h *Handle) RemoveRule(idx int) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cfg == nil {
		return "", ErrNoConfig
	}
	if idx < 0 || idx >= len(h.cfg.Rules) {
		return "", fmt.Errorf("%w: %d (have %d rules)", ErrIndexOutOfRange, idx, len(h.cfg.Rules))
	}

	next := h.cfg.Clone()
	removed := next.Rules[idx]
	next.Rules = slices.Delete(next.Rules, idx, idx+1)

	if idx < h.legacy {
		h.cfg = next
		h.legacy--
		logging.Info("Config", "Dropped legacy rule %d for this session", idx)
		return removed, nil
	}
	if err := h.persistLocked(next, h.legacy); err != nil {
		return "", err
	}
	return removed, nil
}

// persistLocked writes next.Rules[legacy:] and makes next current.
func (h *Handle) persistLocked(next *Config, legacy int) error {
	path := h.source
	if path == "" {
		path = ProjectPath(h.root)
	}
	if err := PatchRules(path, next.Rules[legacy:]); err != nil {
		return fmt.Errorf("persisting rules: %w", err)
	}

	h.cfg = next
	h.source = path
	h.legacy = legacy
	return nil
}

// Create writes cfg as a new project-root config and makes it current.
func (h *Handle) Create(cfg *Config) (string, error) {
	path := ProjectPath(h.root)
	if err := WriteFile(path, cfg); err != nil {
		return "", err
	}

	legacy := ExtractLegacy(h.root)

	h.mu.Lock()
	h.cfg = Merge(cfg, legacy)
	h.source = path
	h.legacy = legacyCount(legacy)
	h.mu.Unlock()

	logging.Info("Config", "Created %s", path)
	return path, nil
}

func legacyCount(legacy *Config) int {
	if legacy == nil {
		return 0
	}
	return len(legacy.Rules)
}
