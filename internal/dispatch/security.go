package dispatch

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/agentrc/internal/config"
)

// CheckRead returns ErrSecurityDenied when path is an env file and the
// configuration marks env files sensitive, either through a
// security.sensitiveFiles pattern or a rule mentioning "protect .env".
func CheckRead(path string, cfg *config.Config) error {
	if cfg == nil || !strings.Contains(path, ".env") {
		return nil
	}
	if cfg.Security != nil {
		for _, pattern := range cfg.Security.SensitiveFiles {
			if matchPattern(pattern, path) {
				return fmt.Errorf("%w: %s matches %q", ErrSecurityDenied, path, pattern)
			}
		}
	}
	for _, rule := range cfg.Rules {
		if strings.Contains(strings.ToLower(rule), "protect .env") {
			return fmt.Errorf("%w: %s is protected by rule %q", ErrSecurityDenied, path, rule)
		}
	}
	return nil
}

// RestrictedWrite returns the first restricted-path pattern path falls
// under, or "". Matching is a substring test after removing '*'.
func RestrictedWrite(path string, cfg *config.Config) string {
	if cfg == nil || cfg.Security == nil {
		return ""
	}
	for _, pattern := range cfg.Security.RestrictedPaths {
		if needle := strings.ReplaceAll(pattern, "*", ""); needle != "" && strings.Contains(path, needle) {
			return pattern
		}
	}
	return ""
}

// matchPattern accepts a glob match on the base name or the full path,
// or a substring match once '*' is removed.
func matchPattern(pattern, path string) bool {
	if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
		return true
	}
	if ok, _ := filepath.Match(pattern, path); ok {
		return true
	}
	needle := strings.ReplaceAll(pattern, "*", "")
	return needle != "" && strings.Contains(path, needle)
}
