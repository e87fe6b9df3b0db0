package config

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []Fragment
	}{
		{"plain text", "Just some prose.", nil},
		{"bullet without colon", "- keep it simple", nil},
		{"rule", "- Follow style: be consistent",
			[]Fragment{{Kind: FragmentRule, Text: "Follow style: be consistent"}}},
		{"indented rule", "   - Naming: camelCase  ",
			[]Fragment{{Kind: FragmentRule, Text: "Naming: camelCase"}}},
		{"test command", "Run `npm test` before pushing",
			[]Fragment{{Kind: FragmentCommand, Category: "test", Text: "npm test"}}},
		{"build command", "`go build ./...`",
			[]Fragment{{Kind: FragmentCommand, Category: "build", Text: "go build ./..."}}},
		{"lint command", "Use `golangci-lint run`",
			[]Fragment{{Kind: FragmentCommand, Category: "lint", Text: "golangci-lint run"}}},
		{"unrelated backticks", "The `config` dir", nil},
		{"rule with command", "- Tests: run `make test`",
			[]Fragment{
				{Kind: FragmentRule, Text: "Tests: run `make test`"},
				{Kind: FragmentCommand, Category: "test", Text: "make test"},
			}},
		{"only first span counts", "`echo hi` then `npm test`", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyLine(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ClassifyLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestExtractLegacy_NoFiles(t *testing.T) {
	if got := ExtractLegacy(t.TempDir()); got != nil {
		t.Errorf("ExtractLegacy = %+v, want nil", got)
	}
}

func TestExtractLegacy_NothingUseful(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "AGENTS.md"), "# Title\n\nNo bullets here.\n")
	if got := ExtractLegacy(root); got != nil {
		t.Errorf("ExtractLegacy = %+v, want nil", got)
	}
}

func TestExtractLegacy_AgentsMD(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "AGENTS.md"),
		"# Agents\n- Follow style: be consistent\nRun `npm test` to verify.\n")

	got := ExtractLegacy(root)
	if got == nil {
		t.Fatal("ExtractLegacy returned nil")
	}
	if !reflect.DeepEqual(got.Rules, []string{"Follow style: be consistent"}) {
		t.Errorf("rules = %v", got.Rules)
	}
	if got.Commands["test"] != "npm test" {
		t.Errorf("commands.test = %q", got.Commands["test"])
	}
}

func TestExtractLegacy_FirstCommandWinsAcrossFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "AGENTS.md"), "`npm test`\n`npm run test:e2e`\n- A: a\n")
	writeFile(t, filepath.Join(root, "CLAUDE.md"), "`pnpm test`\n`pnpm build`\n- B: b\n")

	got := ExtractLegacy(root)
	if got.Commands["test"] != "npm test" {
		t.Errorf("commands.test = %q, want first match", got.Commands["test"])
	}
	if got.Commands["build"] != "pnpm build" {
		t.Errorf("commands.build = %q", got.Commands["build"])
	}
	if !reflect.DeepEqual(got.Rules, []string{"A: a", "B: b"}) {
		t.Errorf("rules = %v, want file order", got.Rules)
	}
}

func TestExtractLegacy_CursorRulesNotParsed(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".cursorrules"), "- Style: tabs\n`npm test`\n")
	if got := ExtractLegacy(root); got != nil {
		t.Errorf("non-markdown file should not contribute: %+v", got)
	}
}

func TestExtractLegacy_CopilotInstructions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".github", "copilot-instructions.md"), "- Docs: keep README current\n")
	got := ExtractLegacy(root)
	if got == nil || len(got.Rules) != 1 {
		t.Fatalf("ExtractLegacy = %+v", got)
	}
	if got.Commands != nil {
		t.Errorf("commands should be absent, got %v", got.Commands)
	}
}
