package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// WriteFile writes the whole config to path as indented JSON, creating
// parent directories as needed.
func WriteFile(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')
	return writeBytes(path, data)
}

// PatchRules replaces the "rules" array in the file at path, leaving
// every other key (including ones this package does not model) as it
// was. If the file does not exist it is created with just the rules.
func PatchRules(path string, rules []string) error {
	if rules == nil {
		rules = []string{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		data = []byte("{}")
	}

	patched, err := sjson.SetBytes(data, "rules", rules)
	if err != nil {
		return fmt.Errorf("patching rules in %s: %w", path, err)
	}
	return writeBytes(path, pretty.Pretty(patched))
}

func writeBytes(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
