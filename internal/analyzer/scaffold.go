package analyzer

import (
	"github.com/HendryAvila/agentrc/internal/config"
)

var defaultRules = []string{
	"Code style: follow the conventions already used in the surrounding code",
	"Testing: run the test command before declaring a change complete",
}

// languageCommands are used when the project has no manifest scripts.
var languageCommands = map[string]map[string]string{
	"go": {
		config.CommandBuild: "go build ./...",
		config.CommandTest:  "go test ./...",
		config.CommandLint:  "go vet ./...",
	},
	"rust": {
		config.CommandBuild: "cargo build",
		config.CommandTest:  "cargo test",
		config.CommandLint:  "cargo clippy",
	},
	"python": {
		config.CommandTest: "pytest",
	},
}

// fileNaming holds the file-naming convention for languages that have one.
var fileNaming = map[string]string{
	"go":     "snake_case",
	"rust":   "snake_case",
	"python": "snake_case",
}

// DefaultConfig builds the starter .agentrc for an analyzed project.
func DefaultConfig(a Analysis, name string) *config.Config {
	enabled := true
	cfg := &config.Config{
		Project: &config.Project{
			Name:      name,
			Type:      a.Type,
			Language:  a.Language,
			Framework: a.Framework,
		},
		Commands: commandsFor(a),
		Rules:    append([]string(nil), defaultRules...),
		Security: &config.Security{
			SensitiveFiles:  []string{".env", "*.env", ".env.*"},
			RestrictedPaths: []string{"node_modules/*", ".git/*"},
		},
		Notifications: &config.Notifications{
			Enabled: &enabled,
			Level:   config.LevelImportant,
			Mode:    config.ModeBoth,
		},
		Tools: map[string]any{"typescript": a.TypeScript},
	}

	if a.PackageManager != "" {
		cfg.Tools["packageManager"] = a.PackageManager
	}
	if a.TestFramework != "" {
		cfg.Tools["testFramework"] = a.TestFramework
	}
	if a.BuildTool != "" {
		cfg.Tools["buildTool"] = a.BuildTool
	}
	if naming, ok := fileNaming[a.Language]; ok {
		cfg.Conventions = map[string]any{"fileNaming": naming}
	}
	return cfg
}

func commandsFor(a Analysis) map[string]string {
	cmds := map[string]string{}

	if len(a.Scripts) > 0 {
		pm := a.PackageManager
		if pm == "" {
			pm = fallbackPackageManager
		}
		for _, key := range config.RecognizedCommands {
			if _, ok := a.Scripts[key]; !ok {
				continue
			}
			if key == config.CommandTest && pm != "bun" {
				cmds[key] = pm + " test"
			} else {
				cmds[key] = pm + " run " + key
			}
		}
	} else {
		for k, v := range languageCommands[a.Language] {
			cmds[k] = v
		}
	}

	if len(cmds) == 0 {
		return nil
	}
	return cmds
}
