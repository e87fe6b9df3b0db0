// Package config implements the .agentrc configuration cascade.
//
// The effective configuration for a session is built in three steps:
// Locate finds the first parseable .agentrc in a fixed list of locations,
// ExtractLegacy scrapes rules and commands out of older instruction files
// (AGENTS.md, CLAUDE.md, ...), and Merge combines the two. A Handle owns
// the result for the rest of the session and writes rule changes back.
package config

import (
	"os"
	"path/filepath"
	"slices"
)

const (
	// FileName is the name of the configuration file in every location.
	FileName = ".agentrc"

	// HostName is the host tool whose global config directory is searched last.
	HostName = "opencode"
)

// Recognized command keys.
const (
	CommandBuild     = "build"
	CommandTest      = "test"
	CommandDev       = "dev"
	CommandLint      = "lint"
	CommandTypecheck = "typecheck"
	CommandStart     = "start"
)

// RecognizedCommands lists the command keys the dispatcher and the
// scaffolder know about, in display order.
var RecognizedCommands = []string{
	CommandBuild, CommandTest, CommandDev, CommandLint, CommandTypecheck, CommandStart,
}

// NotifyLevel filters which notifications reach the user.
type NotifyLevel string

const (
	LevelAll        NotifyLevel = "all"
	LevelImportant  NotifyLevel = "important"
	LevelErrorsOnly NotifyLevel = "errors-only"
	LevelNone       NotifyLevel = "none"
)

// NotifyMode selects where notifications are delivered.
type NotifyMode string

const (
	ModeOS      NotifyMode = "os"
	ModeConsole NotifyMode = "console"
	ModeBoth    NotifyMode = "both"
	ModeNone    NotifyMode = "none"
)

// Project describes the project. Every field is optional.
type Project struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Language    string `json:"language,omitempty" yaml:"language,omitempty"`
	Framework   string `json:"framework,omitempty" yaml:"framework,omitempty"`
}

// Security lists glob-like patterns for files that must not be read
// (SensitiveFiles) and paths whose modification triggers a warning
// (RestrictedPaths).
type Security struct {
	SensitiveFiles  []string `json:"sensitiveFiles,omitempty" yaml:"sensitiveFiles,omitempty"`
	RestrictedPaths []string `json:"restrictedPaths,omitempty" yaml:"restrictedPaths,omitempty"`
}

// Notifications controls the notifier. A nil Enabled means enabled.
type Notifications struct {
	Enabled *bool       `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Level   NotifyLevel `json:"level,omitempty" yaml:"level,omitempty"`
	Silent  bool        `json:"silent,omitempty" yaml:"silent,omitempty"`
	Mode    NotifyMode  `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// IsEnabled reports whether notifications are switched on.
func (n *Notifications) IsEnabled() bool {
	if n == nil || n.Enabled == nil {
		return true
	}
	return *n.Enabled
}

// Config is the effective configuration for a session.
//
// Rules is ordered and index-addressable; a nil Rules means the key is
// absent, which is different from an empty list.
type Config struct {
	Project       *Project          `json:"project,omitempty" yaml:"project,omitempty"`
	Commands      map[string]string `json:"commands,omitempty" yaml:"commands,omitempty"`
	Rules         []string          `json:"rules,omitempty" yaml:"rules,omitempty"`
	Security      *Security         `json:"security,omitempty" yaml:"security,omitempty"`
	Notifications *Notifications    `json:"notifications,omitempty" yaml:"notifications,omitempty"`
	Tools         map[string]any    `json:"tools,omitempty" yaml:"tools,omitempty"`
	Metadata      map[string]any    `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Conventions   map[string]any    `json:"conventions,omitempty" yaml:"conventions,omitempty"`
}

// ProjectName returns the configured project name or "".
func (c *Config) ProjectName() string {
	if c == nil || c.Project == nil {
		return ""
	}
	return c.Project.Name
}

// NotificationSettings returns the notifications block, or nil.
func (c *Config) NotificationSettings() *Notifications {
	if c == nil {
		return nil
	}
	return c.Notifications
}

// Command returns the configured command for key, if any.
func (c *Config) Command(key string) (string, bool) {
	if c == nil || c.Commands == nil {
		return "", false
	}
	cmd, ok := c.Commands[key]
	return cmd, ok && cmd != ""
}

// Clone returns a copy that shares nothing mutable with c, except the
// values nested inside the pass-through maps.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := &Config{
		Rules:       slices.Clone(c.Rules),
		Commands:    cloneMap(c.Commands),
		Tools:       cloneMap(c.Tools),
		Metadata:    cloneMap(c.Metadata),
		Conventions: cloneMap(c.Conventions),
	}
	if c.Project != nil {
		p := *c.Project
		out.Project = &p
	}
	if c.Security != nil {
		out.Security = &Security{
			SensitiveFiles:  slices.Clone(c.Security.SensitiveFiles),
			RestrictedPaths: slices.Clone(c.Security.RestrictedPaths),
		}
	}
	if c.Notifications != nil {
		n := *c.Notifications
		if n.Enabled != nil {
			v := *n.Enabled
			n.Enabled = &v
		}
		out.Notifications = &n
	}
	return out
}

func cloneMap[V any](m map[string]V) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// --- Paths ---

// ProjectPath returns the project-root config location.
func ProjectPath(root string) string {
	return filepath.Join(root, FileName)
}

// DefaultGlobalDir returns $XDG_CONFIG_HOME, falling back to ~/.config.
func DefaultGlobalDir(home string) string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(home, ".config")
}

// CandidatePaths returns the config locations in priority order:
// project root, user global, host-tool global.
func CandidatePaths(root, globalDir, home string) []string {
	return []string{
		ProjectPath(root),
		filepath.Join(globalDir, FileName),
		filepath.Join(home, ".config", HostName, FileName),
	}
}
