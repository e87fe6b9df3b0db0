package installer

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/agentrc/internal/config"
)

type scriptedReader struct {
	lines []string
	err   error
}

func (s *scriptedReader) Readline() (string, error) {
	if len(s.lines) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func fakeBinary(t *testing.T) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "agentrc-build")
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\necho agentrc\n"), 0o755))
	return src
}

func TestParseScope(t *testing.T) {
	for _, s := range []string{"global", "project", "both", " BOTH "} {
		_, err := ParseScope(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseScope("everywhere")
	assert.ErrorIs(t, err, ErrInvalidScope)
}

func TestDestinations(t *testing.T) {
	assert.Len(t, Destinations(ScopeBoth, "/p", "/h"), 2)
	assert.Equal(t, []string{filepath.Join("/h", ".config", "opencode", "plugin")}, Destinations(ScopeGlobal, "/p", "/h"))
	assert.Equal(t, []string{filepath.Join("/p", ".opencode", "plugin")}, Destinations(ScopeProject, "/p", "/h"))
	assert.Nil(t, Destinations("nowhere", "/p", "/h"))
}

func TestInstall_Both(t *testing.T) {
	root, home := t.TempDir(), t.TempDir()
	src := fakeBinary(t)

	res, err := Install(Options{Scope: ScopeBoth, Root: root, Home: home, Source: src, Scaffold: true})
	require.NoError(t, err)
	require.Len(t, res.Installed, 2)

	want, _ := os.ReadFile(src)
	for _, dst := range res.Installed {
		got, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NoFileExists(t, dst+".new")
	}

	assert.Equal(t, config.ProjectPath(root), res.Config)
	cfg, err := config.Parse(mustRead(t, res.Config), res.Config)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(root), cfg.ProjectName())
}

func TestInstall_ReinstallOverwrites(t *testing.T) {
	root, home := t.TempDir(), t.TempDir()
	src := fakeBinary(t)

	_, err := Install(Options{Scope: ScopeProject, Root: root, Home: home, Source: src})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(src, []byte("v2"), 0o755))
	res, err := Install(Options{Scope: ScopeProject, Root: root, Home: home, Source: src})
	require.NoError(t, err)

	assert.Equal(t, []byte("v2"), mustRead(t, res.Installed[0]))
	assert.Empty(t, res.Config, "scaffold not requested")
}

func TestInstall_ScaffoldKeepsExistingConfig(t *testing.T) {
	root, home := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(config.ProjectPath(root), []byte(`{"rules":["mine"]}`), 0o644))

	res, err := Install(Options{Scope: ScopeProject, Root: root, Home: home, Source: fakeBinary(t), Scaffold: true})
	require.NoError(t, err)
	assert.Empty(t, res.Config)
	assert.JSONEq(t, `{"rules":["mine"]}`, string(mustRead(t, config.ProjectPath(root))))
}

func TestInstall_GlobalDoesNotScaffold(t *testing.T) {
	root, home := t.TempDir(), t.TempDir()
	res, err := Install(Options{Scope: ScopeGlobal, Root: root, Home: home, Source: fakeBinary(t), Scaffold: true})
	require.NoError(t, err)
	assert.Empty(t, res.Config)
	assert.NoFileExists(t, config.ProjectPath(root))
}

func TestInstall_Errors(t *testing.T) {
	_, err := Install(Options{Scope: "bogus", Source: "x"})
	assert.ErrorIs(t, err, ErrInvalidScope)

	_, err = Install(Options{Scope: ScopeGlobal, Home: t.TempDir(), Source: filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, err)
}

func TestPromptScope(t *testing.T) {
	var out bytes.Buffer
	scope, err := PromptScope(&scriptedReader{lines: []string{"nope", "project"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, ScopeProject, scope)
	assert.Contains(t, out.String(), "invalid install scope")

	_, err = PromptScope(&scriptedReader{lines: []string{""}}, &out)
	assert.ErrorIs(t, err, ErrCancelled)

	_, err = PromptScope(&scriptedReader{}, &out)
	assert.ErrorIs(t, err, ErrCancelled)

	_, err = PromptScope(&scriptedReader{err: readline.ErrInterrupt}, &out)
	assert.ErrorIs(t, err, ErrCancelled)
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
