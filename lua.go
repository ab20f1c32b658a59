package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/itchyny/gojq"
	lua "github.com/yuin/gopher-lua"

	"keytray/shortcut"
)

// DefaultScriptTimeout bounds a single script run
const DefaultScriptTimeout = 60 * time.Second

// LuaEngine runs shortcut scripts from the scripts directory
type LuaEngine struct {
	timeout time.Duration
}

// Global Lua engine instance
var luaEngine *LuaEngine

// Hooks into the running app, overridden in tests
var (
	sendDesktopEvent = postDesktopEvent
	currentOS        = desktopOS
	setStatusText    = setStatus
)

// InitLuaEngine initializes the global Lua engine
func InitLuaEngine() error {
	luaEngine = &LuaEngine{timeout: DefaultScriptTimeout}
	return luaEngine.Init()
}

// GetLuaEngine returns the global Lua engine
func GetLuaEngine() *LuaEngine {
	return luaEngine
}

// Init creates the scripts directory
func (e *LuaEngine) Init() error {
	if err := os.MkdirAll(ScriptsDir(), 0755); err != nil {
		return fmt.Errorf("failed to create scripts directory: %w", err)
	}
	return nil
}

// RunScript executes a Lua script file with the given ctx table and returns
// the value of the global "result", if the script set one
func (e *LuaEngine) RunScript(scriptName string, vars map[string]string) (string, error) {
	scriptPath := ScriptPath(scriptName)
	if _, err := os.Stat(scriptPath); os.IsNotExist(err) {
		return "", fmt.Errorf("script not found: %s", scriptPath)
	}

	// Each run gets its own state
	L := lua.NewState()
	defer L.Close()

	timeout := e.timeout
	if timeout <= 0 {
		timeout = DefaultScriptTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	L.SetContext(ctx)

	registerKeytrayModule(L)

	ctxTable := L.NewTable()
	for k, v := range vars {
		L.SetField(ctxTable, k, lua.LString(v))
	}
	L.SetGlobal("ctx", ctxTable)
	L.SetGlobal("result", lua.LNil)

	if err := L.DoFile(scriptPath); err != nil {
		return "", fmt.Errorf("script error: %w", err)
	}

	if result := L.GetGlobal("result"); result != lua.LNil {
		return result.String(), nil
	}
	return "", nil
}

// registerKeytrayModule installs the keytray table into L
func registerKeytrayModule(L *lua.LState) {
	mod := L.NewTable()
	L.SetFuncs(mod, map[string]lua.LGFunction{
		// Clipboard and browser
		"copy":     luaCopy,
		"open_url": luaOpenURL,

		// HTTP and JSON
		"http_get":  luaHTTPGet,
		"http_post": luaHTTPPost,
		"jq":        luaJQ,

		// Shell execution
		"exec":  luaExec,
		"shell": luaShell,

		// Status and utilities
		"set_status": luaSetStatus,
		"sleep":      luaSleep,
		"env":        luaEnv,
		"log":        luaLog,
		"prompt":     luaPrompt,
		"confirm":    luaConfirm,

		// Shortcut environment
		"os":         luaOS,
		"keydown":    luaKeyDown,
		"keyup":      luaKeyUp,
		"blur":       luaBlur,
		"last_fired": luaLastFired,
	})
	L.SetGlobal("keytray", mod)
}

func pushResult(L *lua.LState, err error) int {
	if err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

func pushOutput(L *lua.LState, out string, err error) int {
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LString(out))
	return 1
}

// luaCopy copies text to clipboard: keytray.copy(text) -> ok, err
func luaCopy(L *lua.LState) int {
	return pushResult(L, clipboardWrite(L.CheckString(1)))
}

// luaOpenURL opens a URL in the browser: keytray.open_url(url) -> ok, err
func luaOpenURL(L *lua.LState) int {
	return pushResult(L, browserOpen(L.CheckString(1)))
}

// httpOptions reads the optional {timeout = ms, skip_verify = bool} table
func httpOptions(L *lua.LState, n int) (time.Duration, bool) {
	opts := L.OptTable(n, nil)
	if opts == nil {
		return DefaultHTTPTimeout, false
	}
	timeout := DefaultHTTPTimeout
	if ms, ok := opts.RawGetString("timeout").(lua.LNumber); ok && ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}
	return timeout, lua.LVAsBool(opts.RawGetString("skip_verify"))
}

func headersTable(L *lua.LState, n int) map[string]string {
	headers := make(map[string]string)
	if t := L.OptTable(n, nil); t != nil {
		t.ForEach(func(k, v lua.LValue) {
			headers[k.String()] = v.String()
		})
	}
	return headers
}

// luaHTTPGet performs an HTTP GET: keytray.http_get(url, headers, opts) -> body, err
func luaHTTPGet(L *lua.LState) int {
	url := L.CheckString(1)
	headers := headersTable(L, 2)
	timeout, skipVerify := httpOptions(L, 3)

	ctx, cancel := context.WithTimeout(L.Context(), timeout)
	defer cancel()
	body, err := httpGet(ctx, url, headers, skipVerify)
	return pushOutput(L, body, err)
}

// luaHTTPPost performs an HTTP POST: keytray.http_post(url, body, headers, opts) -> body, err
func luaHTTPPost(L *lua.LState) int {
	url := L.CheckString(1)
	body := L.CheckString(2)
	headers := headersTable(L, 3)
	timeout, skipVerify := httpOptions(L, 4)

	ctx, cancel := context.WithTimeout(L.Context(), timeout)
	defer cancel()
	response, err := httpPost(ctx, url, body, headers, skipVerify)
	return pushOutput(L, response, err)
}

// luaJQ runs a jq query over a JSON document: keytray.jq(json, query) -> value, err
// Only the first result is returned.
func luaJQ(L *lua.LState) int {
	input := L.CheckString(1)
	query, err := gojq.Parse(L.CheckString(2))
	if err != nil {
		return pushOutput(L, "", fmt.Errorf("jq: %w", err))
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(input), &doc); err != nil {
		return pushOutput(L, "", fmt.Errorf("jq: invalid json: %w", err))
	}

	iter := query.RunWithContext(L.Context(), doc)
	v, ok := iter.Next()
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	if err, isErr := v.(error); isErr {
		return pushOutput(L, "", fmt.Errorf("jq: %w", err))
	}
	L.Push(toLuaValue(L, v))
	return 1
}

// toLuaValue converts a decoded JSON value
func toLuaValue(L *lua.LState, v interface{}) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case float64:
		return lua.LNumber(val)
	case int:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []interface{}:
		t := L.NewTable()
		for _, item := range val {
			t.Append(toLuaValue(L, item))
		}
		return t
	case map[string]interface{}:
		t := L.NewTable()
		for k, item := range val {
			t.RawSetString(k, toLuaValue(L, item))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(val))
	}
}

// luaExec executes a command and returns output: keytray.exec(cmd, args...) -> output, err
func luaExec(L *lua.LState) int {
	cmdName := L.CheckString(1)
	var args []string
	for i := 2; i <= L.GetTop(); i++ {
		args = append(args, L.CheckString(i))
	}

	output, err := exec.CommandContext(L.Context(), cmdName, args...).CombinedOutput()
	return pushCommandOutput(L, output, err)
}

// luaShell executes a shell command: keytray.shell(command) -> output, err
func luaShell(L *lua.LState) int {
	command := L.CheckString(1)

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(L.Context(), "cmd", "/c", command)
	} else {
		cmd = exec.CommandContext(L.Context(), "sh", "-c", command)
	}

	output, err := cmd.CombinedOutput()
	return pushCommandOutput(L, output, err)
}

func pushCommandOutput(L *lua.LState, output []byte, err error) int {
	L.Push(lua.LString(string(output)))
	if err != nil {
		L.Push(lua.LString(err.Error()))
		return 2
	}
	return 1
}

// luaSetStatus sets the status line: keytray.set_status(text)
func luaSetStatus(L *lua.LState) int {
	setStatusText(L.CheckString(1))
	return 0
}

// luaSleep pauses execution: keytray.sleep(milliseconds)
func luaSleep(L *lua.LState) int {
	ms := L.CheckInt(1)
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
	case <-L.Context().Done():
	}
	return 0
}

// luaEnv gets an environment variable: keytray.env(name) -> value
func luaEnv(L *lua.LState) int {
	L.Push(lua.LString(os.Getenv(L.CheckString(1))))
	return 1
}

// luaLog writes to the application log: keytray.log(message)
func luaLog(L *lua.LState) int {
	LogInfo("[Lua] %s", L.CheckString(1))
	return 0
}

// luaPrompt asks the user for text: keytray.prompt(title, message, default) -> text or nil
func luaPrompt(L *lua.LState) int {
	text, ok := promptDialog(L.CheckString(1), L.CheckString(2), L.OptString(3, ""))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(text))
	return 1
}

// luaConfirm asks a yes/no question: keytray.confirm(title, message) -> bool
func luaConfirm(L *lua.LState) int {
	L.Push(lua.LBool(confirmDialog(L.CheckString(1), L.CheckString(2))))
	return 1
}

// luaOS returns the detected desktop OS label: keytray.os() -> label
func luaOS(L *lua.LState) int {
	L.Push(lua.LString(string(currentOS())))
	return 1
}

// modifierFlags reads the optional {ctrl=, shift=, alt=, meta=} table into ev
func modifierFlags(L *lua.LState, n int, ev *shortcut.Event) {
	t := L.OptTable(n, nil)
	if t == nil {
		return
	}
	ev.CtrlKey = lua.LVAsBool(t.RawGetString("ctrl"))
	ev.ShiftKey = lua.LVAsBool(t.RawGetString("shift"))
	ev.AltKey = lua.LVAsBool(t.RawGetString("alt"))
	ev.MetaKey = lua.LVAsBool(t.RawGetString("meta"))
}

// luaKeyDown sends a key-down to the desktop window: keytray.keydown(key, mods) -> ok
func luaKeyDown(L *lua.LState) int {
	ev := shortcut.NewKeyDown(L.CheckString(1))
	modifierFlags(L, 2, ev)
	L.Push(lua.LBool(sendDesktopEvent(ev)))
	return 1
}

// luaKeyUp sends a key-up to the desktop window: keytray.keyup(key, mods) -> ok
func luaKeyUp(L *lua.LState) int {
	ev := shortcut.NewKeyUp(L.CheckString(1))
	modifierFlags(L, 2, ev)
	L.Push(lua.LBool(sendDesktopEvent(ev)))
	return 1
}

// luaBlur sends a focus loss to the desktop window: keytray.blur() -> ok
func luaBlur(L *lua.LState) int {
	L.Push(lua.LBool(sendDesktopEvent(shortcut.NewBlur())))
	return 1
}

// luaLastFired reports a shortcut's history: keytray.last_fired(name) -> count, unix_time, source
func luaLastFired(L *lua.LState) int {
	rec, ok := GetCache().LastTrigger(L.CheckString(1))
	if !ok {
		L.Push(lua.LNumber(0))
		return 1
	}
	L.Push(lua.LNumber(rec.Count))
	L.Push(lua.LNumber(rec.LastFired.Unix()))
	L.Push(lua.LString(rec.Source))
	return 3
}
