// Package analyzer infers a project's language, package manager, framework,
// test framework and build tool from the files in its root. The result is
// only used to scaffold a default .agentrc; Analyze never fails.
package analyzer

import (
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/HendryAvila/agentrc/internal/logging"
)

// manifestFile is the manifest Analyze reads scripts and dependencies from.
const manifestFile = "package.json"

// fallbackPackageManager is used when a manifest exists but no lockfile does.
const fallbackPackageManager = "npm"

// Analysis is what Analyze learned about a project. Unknown labels are "".
type Analysis struct {
	Type            string            `json:"type" yaml:"type"`
	Language        string            `json:"language" yaml:"language"`
	PackageManager  string            `json:"packageManager,omitempty" yaml:"packageManager,omitempty"`
	Framework       string            `json:"framework,omitempty" yaml:"framework,omitempty"`
	TestFramework   string            `json:"testFramework,omitempty" yaml:"testFramework,omitempty"`
	BuildTool       string            `json:"buildTool,omitempty" yaml:"buildTool,omitempty"`
	TypeScript      bool              `json:"typescript" yaml:"typescript"`
	Scripts         map[string]string `json:"scripts,omitempty" yaml:"scripts,omitempty"`
	Dependencies    []string          `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	DevDependencies []string          `json:"devDependencies,omitempty" yaml:"devDependencies,omitempty"`
}

// label pairs a marker (dependency or file name) with the value it implies.
type label struct {
	marker string
	value  string
}

// lockfiles are checked in order; the first present one names the manager.
var lockfiles = []label{
	{"bun.lockb", "bun"},
	{"pnpm-lock.yaml", "pnpm"},
	{"yarn.lock", "yarn"},
	{"package-lock.json", "npm"},
}

var frameworks = []label{
	{"next", "nextjs"},
	{"nuxt", "nuxt"},
	{"@angular/core", "angular"},
	{"svelte", "svelte"},
	{"vue", "vue"},
	{"react", "react"},
	{"express", "express"},
	{"fastify", "fastify"},
}

var testFrameworks = []label{
	{"vitest", "vitest"},
	{"jest", "jest"},
	{"mocha", "mocha"},
	{"@playwright/test", "playwright"},
	{"cypress", "cypress"},
}

var buildTools = []label{
	{"vite", "vite"},
	{"webpack", "webpack"},
	{"rollup", "rollup"},
	{"esbuild", "esbuild"},
	{"tsup", "tsup"},
	{"parcel", "parcel"},
}

// projectMarkers are consulted when there is no readable manifest.
var projectMarkers = []struct {
	file           string
	language       string
	packageManager string
}{
	{"go.mod", "go", "go"},
	{"Cargo.toml", "rust", "cargo"},
	{"requirements.txt", "python", "pip"},
}

// Generic is the analysis returned when nothing is recognized.
func Generic() Analysis {
	return Analysis{Type: "generic", Language: "unknown"}
}

// Analyze inspects the project at path.
func Analyze(path string) Analysis {
	data, err := os.ReadFile(filepath.Join(path, manifestFile))
	if err != nil || !gjson.ValidBytes(data) {
		return analyzeMarkers(path)
	}

	a := Analysis{
		Type:            "node",
		Language:        "javascript",
		PackageManager:  detectPackageManager(path),
		Scripts:         stringMap(gjson.GetBytes(data, "scripts")),
		Dependencies:    keys(gjson.GetBytes(data, "dependencies")),
		DevDependencies: keys(gjson.GetBytes(data, "devDependencies")),
	}

	deps := make(map[string]bool, len(a.Dependencies)+len(a.DevDependencies))
	for _, d := range a.Dependencies {
		deps[d] = true
	}
	for _, d := range a.DevDependencies {
		deps[d] = true
	}

	if deps["typescript"] || fileExists(filepath.Join(path, "tsconfig.json")) {
		a.TypeScript = true
		a.Language = "typescript"
	}
	a.Framework = firstMatch(frameworks, deps)
	a.TestFramework = firstMatch(testFrameworks, deps)
	a.BuildTool = firstMatch(buildTools, deps)

	logging.Debug("Analyzer", "%s: %s/%s framework=%q", path, a.Language, a.PackageManager, a.Framework)
	return a
}

func analyzeMarkers(path string) Analysis {
	for _, m := range projectMarkers {
		if fileExists(filepath.Join(path, m.file)) {
			return Analysis{Type: m.language, Language: m.language, PackageManager: m.packageManager}
		}
	}
	return Generic()
}

func detectPackageManager(path string) string {
	for _, l := range lockfiles {
		if fileExists(filepath.Join(path, l.marker)) {
			return l.value
		}
	}
	return fallbackPackageManager
}

func firstMatch(labels []label, deps map[string]bool) string {
	for _, l := range labels {
		if deps[l.marker] {
			return l.value
		}
	}
	return ""
}

func keys(obj gjson.Result) []string {
	var out []string
	obj.ForEach(func(k, _ gjson.Result) bool {
		out = append(out, k.String())
		return true
	})
	return out
}

func stringMap(obj gjson.Result) map[string]string {
	if !obj.IsObject() {
		return nil
	}
	out := map[string]string{}
	obj.ForEach(func(k, v gjson.Result) bool {
		out[k.String()] = v.String()
		return true
	})
	return out
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
