package server

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/agentrc/internal/config"
	"github.com/HendryAvila/agentrc/internal/journal"
	"github.com/HendryAvila/agentrc/internal/notify"
)

type nopSender struct{}

func (nopSender) Send(context.Context, string, string, notify.Severity) error { return nil }

// newTestRuntime builds a runtime over a temp project whose .agentrc
// holds rc ("" for none), with the journal in a temp dir.
func newTestRuntime(t *testing.T, rc string) (*Runtime, string) {
	t.Helper()
	root := t.TempDir()
	if rc != "" {
		if err := os.WriteFile(filepath.Join(root, config.FileName), []byte(rc), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return newTestRuntimeAt(t, root), root
}

// newTestRuntimeAt builds a runtime over an already prepared root.
func newTestRuntimeAt(t *testing.T, root string) *Runtime {
	t.Helper()
	home := t.TempDir()
	rt, cleanup, err := NewRuntime(Options{
		Root:          root,
		HandleOptions: []config.Option{config.WithHome(home), config.WithGlobalDir(filepath.Join(home, "g"))},
		Journal:       journal.Config{DataDir: t.TempDir()},
		Sender:        nopSender{},
	})
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	t.Cleanup(cleanup)
	return rt
}

func call(t *testing.T, handle func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	return res
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestNewRuntime_InvalidConfig(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, config.FileName), []byte(`[1,2]`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, cleanup, err := NewRuntime(Options{Root: root, NoJournal: true, Sender: nopSender{}})
	defer cleanup()
	if err == nil {
		t.Fatal("expected InvalidConfig error")
	}
}

func TestNew_RegistersServer(t *testing.T) {
	rt, _ := newTestRuntime(t, `{"rules":["A"]}`)
	if s := New(rt); s == nil {
		t.Fatal("New returned nil")
	}
	if rt.Journal == nil {
		t.Error("journal should be open")
	}
}

func TestMemoryTool(t *testing.T) {
	rt, _ := newTestRuntime(t, `{"rules":["A"]}`)
	tool := NewMemoryTool(rt.Dispatcher)

	res := call(t, tool.Handle, map[string]any{"action": "add", "rule": "B"})
	if res.IsError {
		t.Fatalf("add failed: %s", getResultText(res))
	}

	res = call(t, tool.Handle, map[string]any{"action": "list"})
	if text := getResultText(res); !strings.Contains(text, "[1] B") {
		t.Errorf("list = %s", text)
	}

	res = call(t, tool.Handle, map[string]any{"action": "remove", "ruleId": float64(5)})
	if !res.IsError || !strings.Contains(getResultText(res), "IndexOutOfRange") {
		t.Errorf("remove out of range = %s", getResultText(res))
	}

	res = call(t, tool.Handle, map[string]any{"action": "add"})
	if !res.IsError || !strings.Contains(getResultText(res), "MissingArgument") {
		t.Errorf("add without rule = %s", getResultText(res))
	}
}

func TestInitTool(t *testing.T) {
	rt, root := newTestRuntime(t, "")
	tool := NewInitTool(rt.Dispatcher)

	res := call(t, tool.Handle, nil)
	if res.IsError || !strings.Contains(getResultText(res), "Initialized") {
		t.Fatalf("init = %s", getResultText(res))
	}
	if _, err := os.Stat(filepath.Join(root, config.FileName)); err != nil {
		t.Errorf(".agentrc not created: %v", err)
	}

	res = call(t, tool.Handle, nil)
	if !strings.Contains(getResultText(res), "already initialized") {
		t.Errorf("second init = %s", getResultText(res))
	}
}

func TestConfigTool(t *testing.T) {
	rt, root := newTestRuntime(t, `{"project":{"name":"web"},"rules":["A"]}`)
	tool := NewConfigTool(rt.Handle)

	text := getResultText(call(t, tool.Handle, nil))
	if !strings.Contains(text, `"name": "web"`) || !strings.Contains(text, filepath.Join(root, config.FileName)) {
		t.Errorf("json output = %s", text)
	}

	text = getResultText(call(t, tool.Handle, map[string]any{"format": "yaml"}))
	if !strings.Contains(text, "name: web") {
		t.Errorf("yaml output = %s", text)
	}

	res := call(t, tool.Handle, map[string]any{"format": "toml"})
	if !res.IsError {
		t.Error("unknown format should be an error result")
	}

	if err := os.WriteFile(filepath.Join(root, config.FileName), []byte(`{"project":{"name":"api"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	text = getResultText(call(t, tool.Handle, map[string]any{"reload": true}))
	if !strings.Contains(text, `"name": "api"`) {
		t.Errorf("reload output = %s", text)
	}
}

func TestConfigTool_NoConfig(t *testing.T) {
	rt, _ := newTestRuntime(t, "")
	text := getResultText(call(t, NewConfigTool(rt.Handle).Handle, nil))
	if !strings.Contains(text, "agentrc_init") {
		t.Errorf("output = %s", text)
	}
}

func TestAnalyzeTool(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	text := getResultText(call(t, NewAnalyzeTool(root).Handle, nil))
	if !strings.Contains(text, `"go"`) {
		t.Errorf("analysis = %s", text)
	}
}

func TestJournalTool(t *testing.T) {
	rt, _ := newTestRuntime(t, `{"rules":[]}`)
	tool := NewJournalTool(rt.Journal)

	if text := getResultText(call(t, tool.Handle, nil)); !strings.Contains(text, "No journal entries") {
		t.Errorf("empty journal = %s", text)
	}

	call(t, NewMemoryTool(rt.Dispatcher).Handle, map[string]any{"action": "add", "rule": "Keep it small"})

	text := getResultText(call(t, tool.Handle, map[string]any{"limit": float64(5), "session": "mcp"}))
	if !strings.Contains(text, "add: Keep it small") || !strings.Contains(text, "memory") {
		t.Errorf("journal = %s", text)
	}
}

func TestConfigResource(t *testing.T) {
	rt, _ := newTestRuntime(t, `{"rules":["A"]}`)
	h := NewResourceHandler(rt.Handle)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = ConfigURI
	contents, err := h.HandleConfig(context.Background(), req)
	if err != nil {
		t.Fatalf("HandleConfig: %v", err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || !strings.Contains(tc.Text, `"A"`) {
		t.Errorf("contents = %+v", contents)
	}
}

func TestConventionsPrompt(t *testing.T) {
	rt, _ := newTestRuntime(t, `{"rules":["Use tabs"],"commands":{"test":"make test"}}`)

	res, err := NewConventionsPrompt(rt.Handle).Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	tc, ok := res.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T", res.Messages[0].Content)
	}
	for _, want := range []string{"[0] Use tabs", "test: make test"} {
		if !strings.Contains(tc.Text, want) {
			t.Errorf("prompt missing %q:\n%s", want, tc.Text)
		}
	}
}

func TestConventionsPrompt_NoConfig(t *testing.T) {
	rt, _ := newTestRuntime(t, "")

	res, err := NewConventionsPrompt(rt.Handle).Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if tc, _ := res.Messages[0].Content.(mcp.TextContent); !strings.Contains(tc.Text, "agentrc_init") {
		t.Errorf("prompt = %+v", res.Messages[0].Content)
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	rt, root := newTestRuntime(t, `{"rules":["A"]}`)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := Watch(ctx, rt.Dispatcher, 20*time.Millisecond); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, config.FileName), []byte(`{"rules":["A","B"]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(rt.Handle.Config().Rules) == 2 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("config not reloaded, rules = %v", rt.Handle.Config().Rules)
}

func TestWatch_MemoryAddKeepsLegacyRulesOnce(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		config.FileName: `{"rules":["P"]}`,
		"AGENTS.md":     "- Style: be consistent\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	rt := newTestRuntimeAt(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := Watch(ctx, rt.Dispatcher, 20*time.Millisecond); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	res := call(t, NewMemoryTool(rt.Dispatcher).Handle, map[string]any{"action": "add", "rule": "X"})
	if res.IsError {
		t.Fatalf("add failed: %s", getResultText(res))
	}

	// The watcher sees agentrc's own write and reloads once the debounce fires.
	deadline := time.Now().Add(5 * time.Second)
	for {
		entries, err := rt.Journal.Recent("unknown", 10)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		if len(entries) > 0 && entries[0].Kind == journal.KindReload {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("config was not reloaded after the memory add")
		}
		time.Sleep(20 * time.Millisecond)
	}

	want := []string{"Style: be consistent", "P", "X"}
	if got := rt.Handle.Config().Rules; !reflect.DeepEqual(got, want) {
		t.Errorf("rules after reload = %v, want %v", got, want)
	}
	data, err := os.ReadFile(filepath.Join(root, config.FileName))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "Style: be consistent"); n != 0 {
		t.Errorf(".agentrc holds the legacy rule %d time(s):\n%s", n, data)
	}
}
