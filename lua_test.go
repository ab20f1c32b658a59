package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"keytray/shortcut"
)

// newTestEngine points HOME at a temp dir and returns an engine writing
// scripts there
func newTestEngine(t *testing.T) *LuaEngine {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	engine := &LuaEngine{timeout: 5 * time.Second}
	if err := engine.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return engine
}

func runLua(t *testing.T, engine *LuaEngine, source string, vars map[string]string) (string, error) {
	t.Helper()
	name := fmt.Sprintf("%s.lua", strings.ReplaceAll(t.Name(), "/", "_"))
	writeFile(t, ScriptPath(name), source)
	return engine.RunScript(name, vars)
}

// saveLuaVars restores the app hooks scripts call into
func saveLuaVars(t *testing.T) {
	t.Helper()
	origSend := sendDesktopEvent
	origOS := currentOS
	origStatus := setStatusText
	origPrompt := promptDialog
	origConfirm := confirmDialog
	origClipboard := clipboardWrite
	t.Cleanup(func() {
		sendDesktopEvent = origSend
		currentOS = origOS
		setStatusText = origStatus
		promptDialog = origPrompt
		confirmDialog = origConfirm
		clipboardWrite = origClipboard
	})
}

func TestRunScriptContextAndResult(t *testing.T) {
	engine := newTestEngine(t)

	got, err := runLua(t, engine, `result = ctx.name .. "@" .. ctx.os`, map[string]string{"name": "save", "os": "Linux"})
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if got != "save@Linux" {
		t.Fatalf("result = %q", got)
	}

	got, err = runLua(t, engine, `local x = 1`, nil)
	if err != nil || got != "" {
		t.Fatalf("script without result = %q, %v", got, err)
	}
}

func TestRunScriptErrors(t *testing.T) {
	engine := newTestEngine(t)

	if _, err := engine.RunScript("missing.lua", nil); err == nil || !strings.Contains(err.Error(), "script not found") {
		t.Errorf("missing script err = %v", err)
	}
	if _, err := runLua(t, engine, `this is not lua`, nil); err == nil || !strings.Contains(err.Error(), "script error") {
		t.Errorf("syntax error err = %v", err)
	}
}

func TestRunScriptTimeout(t *testing.T) {
	engine := newTestEngine(t)
	engine.timeout = 100 * time.Millisecond

	start := time.Now()
	if _, err := runLua(t, engine, `while true do end`, nil); err == nil {
		t.Fatal("endless script returned no error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("timeout took %v", elapsed)
	}
}

func TestLuaJQ(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"number", `result = tostring(keytray.jq('{"a":{"b":[1,2,3]}}', '.a.b[1]'))`, "2"},
		{"table", `local t = keytray.jq('{"x":{"y":"z"}}', '.x'); result = t.y`, "z"},
		{"array", `local t = keytray.jq('[{"n":"a"},{"n":"b"}]', '[.[].n]'); result = t[1] .. t[2]`, "ab"},
		{"first of many", `result = keytray.jq('[1,2]', '.[]')`, "1"},
		{"no result", `result = tostring(keytray.jq('[]', '.[]'))`, "nil"},
		{"bad json", `local v, err = keytray.jq('not json', '.'); result = err`, "invalid json"},
		{"bad query", `local v, err = keytray.jq('{}', '.[['); result = err`, "jq:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runLua(t, engine, tt.script, nil)
			if err != nil {
				t.Fatalf("RunScript: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Fatalf("result = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLuaKeyEvents(t *testing.T) {
	saveLuaVars(t)
	engine := newTestEngine(t)

	var sent []*shortcut.Event
	sendDesktopEvent = func(ev *shortcut.Event) bool {
		sent = append(sent, ev)
		return true
	}

	_, err := runLua(t, engine, `
assert(keytray.keydown("k", {ctrl = true, shift = true}))
assert(keytray.keyup("k"))
assert(keytray.blur())
`, nil)
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}

	if len(sent) != 3 {
		t.Fatalf("sent %d events, want 3", len(sent))
	}
	if ev := sent[0]; ev.Type != shortcut.KeyDown || ev.Key != "k" || !ev.CtrlKey || !ev.ShiftKey || ev.AltKey {
		t.Errorf("keydown = %+v", ev)
	}
	if ev := sent[1]; ev.Type != shortcut.KeyUp || ev.CtrlKey {
		t.Errorf("keyup = %+v", ev)
	}
	if sent[2].Type != shortcut.Blur {
		t.Errorf("third event = %+v, want blur", sent[2])
	}
}

func TestLuaKeyEventsDriveWindow(t *testing.T) {
	saveLuaVars(t)
	engine := newTestEngine(t)

	w := shortcut.NewWindow(shortcut.Navigator{})
	fired := 0
	reg := shortcut.UseShortcutExtended(w, []string{"g", "h"}, func() { fired++ }, shortcut.Options{})
	sendDesktopEvent = func(ev *shortcut.Event) bool {
		w.Dispatch(ev)
		return true
	}

	if _, err := runLua(t, engine, `keytray.keydown("g"); keytray.keydown("h"); keytray.blur()`, nil); err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
	if reg.State().Len() != 0 {
		t.Errorf("blur left keys held: %v", reg.State().Keys())
	}
}

func TestLuaEnvironmentHooks(t *testing.T) {
	saveLuaVars(t)
	engine := newTestEngine(t)

	currentOS = func() shortcut.OS { return shortcut.Windows }
	var status string
	setStatusText = func(text string) { status = text }
	promptDialog = func(title, message, defaultValue string) (string, bool) {
		return "typed " + defaultValue, true
	}
	confirmDialog = func(title, message string) bool { return message == "sure?" }

	got, err := runLua(t, engine, `
keytray.set_status("working")
local answer = keytray.prompt("keytray", "name?", "x")
result = keytray.os() .. "|" .. answer .. "|" .. tostring(keytray.confirm("keytray", "sure?"))
`, nil)
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if got != "Windows|typed x|true" {
		t.Errorf("result = %q", got)
	}
	if status != "working" {
		t.Errorf("status = %q", status)
	}

	promptDialog = func(string, string, string) (string, bool) { return "", false }
	got, err = runLua(t, engine, `result = tostring(keytray.prompt("t", "m"))`, nil)
	if err != nil || got != "nil" {
		t.Errorf("cancelled prompt = %q, %v", got, err)
	}
}

func TestLuaCopy(t *testing.T) {
	saveLuaVars(t)
	engine := newTestEngine(t)

	var copied string
	clipboardWrite = func(text string) error {
		copied = text
		return nil
	}
	got, err := runLua(t, engine, `result = tostring(keytray.copy("snippet"))`, nil)
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if got != "true" || copied != "snippet" {
		t.Errorf("result = %q, copied = %q", got, copied)
	}
}

func TestLuaLastFired(t *testing.T) {
	engine := newTestEngine(t)
	InitCache()
	GetCache().RecordTrigger("save", SourceDesktop)
	GetCache().RecordTrigger("save", SourceMenu)

	got, err := runLua(t, engine, `
local n, ts, src = keytray.last_fired("save")
assert(ts > 0)
local none = keytray.last_fired("never")
result = n .. ":" .. src .. ":" .. none
`, nil)
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if got != "2:menu:0" {
		t.Errorf("result = %q", got)
	}
}

func TestLuaHTTP(t *testing.T) {
	engine := newTestEngine(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = fmt.Fprintf(w, `{"token":%q}`, r.Header.Get("X-Test"))
		case http.MethodPost:
			w.Header().Set("Content-Type", "text/plain")
			_, _ = fmt.Fprintf(w, "%s %s", r.Header.Get("Content-Type"), r.URL.Path)
		}
	}))
	defer srv.Close()

	got, err := runLua(t, engine, `
local body, err = keytray.http_get(ctx.url, {["X-Test"] = "abc"}, {timeout = 2000})
assert(err == nil, err)
local posted = keytray.http_post(ctx.url .. "/hook", "{}")
result = keytray.jq(body, ".token") .. "|" .. posted
`, map[string]string{"url": srv.URL})
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if got != "abc|application/json /hook" {
		t.Errorf("result = %q", got)
	}
}

func TestLuaShell(t *testing.T) {
	engine := newTestEngine(t)

	got, err := runLua(t, engine, `result = keytray.shell("echo hello")`, nil)
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if strings.TrimSpace(got) != "hello" {
		t.Errorf("result = %q", got)
	}
}
