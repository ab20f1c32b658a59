package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"keytray/shortcut"
)

const (
	// bridgeWriteDeadline bounds a single write to a browser client
	bridgeWriteDeadline = 5 * time.Second
	// bridgeReadDeadline is extended on every pong; 3 missed pings drop the client
	bridgeReadDeadline = 90 * time.Second
	bridgePingInterval = 30 * time.Second
	// bridgeMaxMessageSize limits incoming JSON messages
	bridgeMaxMessageSize = 8 * 1024
)

// Bridge message types
const (
	msgHello   = "hello"
	msgKeyDown = "keydown"
	msgKeyUp   = "keyup"
	msgBlur    = "blur"
	msgReady   = "ready"
	msgResult  = "result"
	msgError   = "error"
)

// bridgeMessage is sent by browser clients. A connection starts with a hello
// carrying the page's navigator strings, then forwards its key and blur events.
type bridgeMessage struct {
	Type      string `json:"type"`
	Seq       uint64 `json:"seq,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Key       string `json:"key,omitempty"`
	CtrlKey   bool   `json:"ctrlKey,omitempty"`
	ShiftKey  bool   `json:"shiftKey,omitempty"`
	AltKey    bool   `json:"altKey,omitempty"`
	MetaKey   bool   `json:"metaKey,omitempty"`
}

// bridgeReply is sent to browser clients
type bridgeReply struct {
	Type             string   `json:"type"`
	Seq              uint64   `json:"seq,omitempty"`
	OS               string   `json:"os,omitempty"`
	Shortcuts        []string `json:"shortcuts,omitempty"`
	Event            string   `json:"event,omitempty"`
	DefaultPrevented bool     `json:"defaultPrevented,omitempty"`
	Triggered        []string `json:"triggered,omitempty"`
	Message          string   `json:"message,omitempty"`
}

// TriggerFunc is called when a shortcut matches in some environment
type TriggerFunc func(entry ShortcutEntry, source string, detected shortcut.OS)

// Bridge serves the browser WebSocket endpoint. Every connection is its own
// environment: a shortcut.Window with the page's navigator, its detected OS
// and its own shortcut bindings.
type Bridge struct {
	cfg  BridgeConfig
	fire TriggerFunc

	upgrader websocket.Upgrader

	// bindMu is held from reading entries until the connection's binder
	// holds them, so a hello and a Reload cannot interleave
	bindMu sync.Mutex
	// helloBound runs in hello after the entries are bound, for tests
	helloBound func()

	mu      sync.Mutex
	entries []ShortcutEntry
	conns   map[*bridgeConn]struct{}

	listener  net.Listener
	server    *http.Server
	closeOnce sync.Once
}

// NewBridge creates a bridge for entries. The bridge is not listening until
// Start is called; Handler can be mounted on any server instead.
func NewBridge(cfg BridgeConfig, entries []ShortcutEntry, fire TriggerFunc) *Bridge {
	b := &Bridge{
		cfg:     cfg,
		fire:    fire,
		entries: entries,
		conns:   make(map[*bridgeConn]struct{}),
	}
	b.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     b.checkOrigin,
	}
	return b
}

// checkOrigin accepts requests without an Origin header, browser extensions,
// local pages and the configured origins
func (b *Bridge) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range b.cfg.AllowOrigins {
		if strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "chrome-extension", "moz-extension", "safari-web-extension", "file":
		return true
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// Handler returns the HTTP handler serving /ws
func (b *Bridge) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", b.handleWS)
	return mux
}

// Start listens on the configured address
func (b *Bridge) Start(ctx context.Context) error {
	if b.server != nil {
		return errors.New("bridge: already started")
	}

	ln, err := net.Listen("tcp", b.cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("bridge: listen: %w", err)
	}
	b.listener = ln
	b.server = &http.Server{
		Handler:           b.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := b.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			LogError("Bridge server error: %v", err)
		}
	}()

	LogInfo("Bridge listening on ws://%s/ws", ln.Addr())
	return nil
}

// Addr returns the listen address, or "" before Start
func (b *Bridge) Addr() string {
	if b.listener == nil {
		return ""
	}
	return b.listener.Addr().String()
}

// Stop shuts the server down and drops every client. Safe to call more than once.
func (b *Bridge) Stop() error {
	var stopErr error
	b.closeOnce.Do(func() {
		b.mu.Lock()
		conns := make([]*bridgeConn, 0, len(b.conns))
		for c := range b.conns {
			conns = append(conns, c)
		}
		b.mu.Unlock()

		for _, c := range conns {
			c.close()
		}

		if b.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := b.server.Shutdown(ctx); err != nil {
				stopErr = fmt.Errorf("bridge: shutdown: %w", err)
			}
		}
	})
	return stopErr
}

// ClientCount returns the number of connected clients
func (b *Bridge) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.conns)
}

// Reload rebinds every connected client to entries and tells them the new
// shortcut list
func (b *Bridge) Reload(entries []ShortcutEntry) {
	b.bindMu.Lock()
	defer b.bindMu.Unlock()

	b.mu.Lock()
	b.entries = entries
	conns := make([]*bridgeConn, 0, len(b.conns))
	for c := range b.conns {
		conns = append(conns, c)
	}
	b.mu.Unlock()

	for _, c := range conns {
		c.rebind(entries)
	}
}

func (b *Bridge) currentEntries() []ShortcutEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entries
}

func (b *Bridge) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		LogWarn("Bridge upgrade failed: %v", err)
		return
	}

	ws.SetReadLimit(bridgeMaxMessageSize)
	if err := ws.SetReadDeadline(time.Now().Add(bridgeReadDeadline)); err != nil {
		_ = ws.Close()
		return
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(bridgeReadDeadline))
	})

	c := &bridgeConn{bridge: b, ws: ws, remote: ws.RemoteAddr().String()}
	b.mu.Lock()
	b.conns[c] = struct{}{}
	b.mu.Unlock()

	pingDone := make(chan struct{})
	go c.pingLoop(pingDone)

	defer func() {
		if rec := recover(); rec != nil {
			LogError("Bridge handler panic: %v\n%s", rec, debug.Stack())
		}
		close(pingDone)

		b.mu.Lock()
		delete(b.conns, c)
		b.mu.Unlock()

		c.close()
		GetCache().DeleteDetectedOS(c.cacheSource())
		LogBridgeClient(c.remote, false, c.detectedOS())
	}()

	c.readLoop()
}

// bridgeConn is one browser client
type bridgeConn struct {
	bridge *Bridge
	ws     *websocket.Conn
	remote string

	writeMu sync.Mutex

	// mu guards the environment, which is replaced by a new hello
	mu     sync.Mutex
	window *shortcut.Window
	binder *Binder
	os     shortcut.OS

	// triggered collects the shortcuts fired by the event being dispatched;
	// only the read goroutine touches it
	triggered []string
}

func (c *bridgeConn) readLoop() {
	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				LogDebug("Bridge read error from %s: %v", c.remote, err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var msg bridgeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.send(bridgeReply{Type: msgError, Message: fmt.Sprintf("invalid JSON: %s", err)})
			continue
		}
		c.handle(msg)
	}
}

func (c *bridgeConn) handle(msg bridgeMessage) {
	switch msg.Type {
	case msgHello:
		c.hello(msg)
		return
	case msgKeyDown, msgKeyUp, msgBlur:
	default:
		c.send(bridgeReply{Type: msgError, Seq: msg.Seq, Message: fmt.Sprintf("unknown message type %q", msg.Type)})
		return
	}

	c.mu.Lock()
	window := c.window
	c.mu.Unlock()
	if window == nil {
		c.send(bridgeReply{Type: msgError, Seq: msg.Seq, Message: "hello required before events"})
		return
	}

	ev := msg.event()
	c.triggered = nil
	window.Dispatch(ev)

	c.send(bridgeReply{
		Type:             msgResult,
		Seq:              msg.Seq,
		Event:            msg.Type,
		DefaultPrevented: ev.DefaultPrevented(),
		Triggered:        c.triggered,
	})
}

func (m bridgeMessage) event() *shortcut.Event {
	var ev *shortcut.Event
	switch m.Type {
	case msgKeyDown:
		ev = shortcut.NewKeyDown(m.Key)
	case msgKeyUp:
		ev = shortcut.NewKeyUp(m.Key)
	default:
		return shortcut.NewBlur()
	}
	ev.CtrlKey, ev.ShiftKey, ev.AltKey, ev.MetaKey = m.CtrlKey, m.ShiftKey, m.AltKey, m.MetaKey
	return ev
}

// hello creates the connection's environment, replacing any previous one
func (c *bridgeConn) hello(msg bridgeMessage) {
	nav := shortcut.Navigator{UserAgent: msg.UserAgent, Platform: msg.Platform}
	window := shortcut.NewWindow(nav)
	detected := shortcut.DetectOS(window)

	binder := NewBinder(window, func(entry ShortcutEntry) {
		c.triggered = append(c.triggered, entry.Name)
		if c.bridge.fire != nil {
			c.bridge.fire(entry, SourceBridge, detected)
		}
	})

	c.bridge.bindMu.Lock()
	defer c.bridge.bindMu.Unlock()

	names := binder.Apply(c.bridge.currentEntries())
	if c.bridge.helloBound != nil {
		c.bridge.helloBound()
	}

	c.mu.Lock()
	old := c.binder
	c.window, c.binder, c.os = window, binder, detected
	c.mu.Unlock()
	if old != nil {
		old.Close()
	}

	GetCache().SetDetectedOS(c.cacheSource(), detected)
	LogBridgeClient(c.remote, true, detected)
	LogOSDetected(SourceBridge, detected, nav)
	LogShortcutsBound(SourceBridge, names)

	c.send(bridgeReply{Type: msgReady, Seq: msg.Seq, OS: string(detected), Shortcuts: names})
}

func (c *bridgeConn) rebind(entries []ShortcutEntry) {
	c.mu.Lock()
	binder, detected := c.binder, c.os
	c.mu.Unlock()
	if binder == nil {
		return
	}
	names := binder.Apply(entries)
	c.send(bridgeReply{Type: msgReady, OS: string(detected), Shortcuts: names})
}

// cacheSource is the key the connection's detected OS is cached under
func (c *bridgeConn) cacheSource() string {
	return SourceBridge + ":" + c.remote
}

func (c *bridgeConn) detectedOS() shortcut.OS {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.window == nil {
		return shortcut.Unknown
	}
	return c.os
}

func (c *bridgeConn) send(reply bridgeReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		LogError("Bridge encode failed: %v", err)
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(bridgeWriteDeadline)); err != nil {
		_ = c.ws.Close()
		return
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		LogDebug("Bridge write to %s failed: %v", c.remote, err)
		_ = c.ws.Close()
	}
}

func (c *bridgeConn) pingLoop(done <-chan struct{}) {
	ticker := time.NewTicker(bridgePingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(bridgeWriteDeadline)
			if err := c.ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				LogDebug("Bridge ping to %s failed: %v", c.remote, err)
				_ = c.ws.Close()
				return
			}
		}
	}
}

// close tears down the environment and the socket
func (c *bridgeConn) close() {
	c.mu.Lock()
	binder := c.binder
	c.binder = nil
	c.mu.Unlock()
	if binder != nil {
		binder.Close()
	}
	_ = c.ws.Close()
}
