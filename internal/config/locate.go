package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/HendryAvila/agentrc/internal/logging"
)

// Locate returns the first config in CandidatePaths order that reads and
// parses, together with the path it came from. Missing files and files
// that are not JSON are skipped. A file that is JSON but not an object
// (or whose fields have the wrong types) stops the search with an
// *InvalidConfigError. When nothing is found both results are empty.
func Locate(root, globalDir, home string) (*Config, string, error) {
	for _, path := range CandidatePaths(root, globalDir, home) {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logging.Debug("Locator", "Skipping %s: %v", path, err)
			}
			continue
		}

		cfg, err := Parse(data, path)
		if errors.Is(err, errMalformed) {
			logging.Debug("Locator", "Skipping %s: not valid JSON", path)
			continue
		}
		if err != nil {
			return nil, "", err
		}

		logging.Info("Locator", "Loaded configuration from %s", path)
		return cfg, path, nil
	}
	return nil, "", nil
}

// Parse decodes and validates one config document. path is only used in
// error messages.
func Parse(data []byte, path string) (*Config, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, errMalformed)
	}
	if _, ok := raw.(map[string]any); !ok {
		return nil, &InvalidConfigError{Path: path, Reason: "top-level value must be an object"}
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil {
		return nil, &InvalidConfigError{Path: path, Reason: err.Error()}
	}
	if err := Validate(&cfg); err != nil {
		return nil, &InvalidConfigError{Path: path, Reason: err.Error()}
	}
	return &cfg, nil
}

// Validate checks the enumerated fields. Unknown command keys are
// allowed and only logged.
func Validate(cfg *Config) error {
	if n := cfg.Notifications; n != nil {
		switch n.Level {
		case "", LevelAll, LevelImportant, LevelErrorsOnly, LevelNone:
		default:
			return fmt.Errorf("notifications.level %q is not one of all, important, errors-only, none", n.Level)
		}
		switch n.Mode {
		case "", ModeOS, ModeConsole, ModeBoth, ModeNone:
		default:
			return fmt.Errorf("notifications.mode %q is not one of os, console, both, none", n.Mode)
		}
	}
	for key := range cfg.Commands {
		if !isRecognizedCommand(key) {
			logging.Debug("Locator", "Command key %q is not used by the dispatcher", key)
		}
	}
	return nil
}

func isRecognizedCommand(key string) bool {
	for _, k := range RecognizedCommands {
		if k == key {
			return true
		}
	}
	return false
}
