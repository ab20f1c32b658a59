package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"keytray/shortcut"
)

var (
	// Global state
	appConfig  *Config
	configPath string
	stateMutex sync.RWMutex

	// Desktop environment
	desktopEvents     chan *shortcut.Event
	detectedDesktopOS = shortcut.Unknown
	desktopBinder     *Binder
	hotkeys           *HotkeySource
	bridge            *Bridge

	appCtx    context.Context
	appCancel context.CancelFunc

	// Menu items
	mStatus        *systray.MenuItem
	mOS            *systray.MenuItem
	mShortcutsMenu *systray.MenuItem
	mRelease       *systray.MenuItem
	mStats         *systray.MenuItem
	mDebug         *systray.MenuItem
	mReloadCfg     *systray.MenuItem
	mBridge        *systray.MenuItem
	mAbout         *systray.MenuItem
	mQuit          *systray.MenuItem

	// Shortcut submenu items and the entries bound to them
	shortcutMenuItems []*systray.MenuItem
	shortcutEntries   []ShortcutEntry
)

const maxMenuItems = 50 // Maximum items in the shortcuts menu

// desktopEventTimeout bounds how long an injected event waits for the event loop
const desktopEventTimeout = time.Second

func main() {
	if err := Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runTray starts the tray application and blocks until it quits
func runTray(path string, debug bool) error {
	// Ensure only one instance is running
	if err := EnsureSingleInstance(); err != nil {
		return err
	}

	configPath = path
	cfg, cfgErr := loadOrCreateConfig(path)

	// Initialize logger with config, falling back to defaults
	if err := InitLoggerWithConfig(cfg.GetLogConfigWithDefaults()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: Failed to initialize logger: %v\n", err)
	}
	LogStartup()
	if cfgErr != nil {
		LogError("Config error: %v", cfgErr)
	}
	LogConfigLoaded(cfg)

	if debug {
		SetDebugMode(true)
		SetLogLevel(true)
	}

	appConfig = cfg
	appCtx, appCancel = context.WithCancel(context.Background())

	InitCache()

	if err := InitLuaEngine(); err != nil {
		LogWarn("Failed to initialize Lua engine: %v", err)
	}

	systray.Run(onReady, onExit)
	return nil
}

// loadOrCreateConfig loads and validates the config, writing the default one
// on first start. On error an empty config is returned along with it.
func loadOrCreateConfig(path string) (*Config, error) {
	cfg, err := loadConfigFile(path)
	if err == nil {
		return cfg, nil
	}
	if path == "" && errors.Is(err, fs.ErrNotExist) {
		if createErr := CreateDefaultConfig(); createErr != nil {
			return &Config{}, fmt.Errorf("create default config: %w", createErr)
		}
		if cfg, err = loadConfigFile(""); err == nil {
			return cfg, nil
		}
	}
	return &Config{}, err
}

// loadConfigFile loads a config and rejects it when it does not validate
func loadConfigFile(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func onReady() {
	systray.SetIcon(defaultIcon)
	systray.SetTitle("")
	systray.SetTooltip("keytray - keyboard shortcuts")

	// Status display as submenu (kept enabled for better contrast)
	mStatusMenu := systray.AddMenuItem("Status", "Current status")
	mStatus = mStatusMenu.AddSubMenuItem("Ready", "")

	mOS = systray.AddMenuItem("OS: detecting...", "Operating system detected for the desktop")
	mOS.Disable()

	systray.AddSeparator()

	mShortcutsMenu = systray.AddMenuItem("Shortcuts", "Configured shortcuts (click to run)")
	buildShortcutsMenu()

	mRelease = systray.AddMenuItem("Release Held Keys", "Forget keys held by chord shortcuts")
	mStats = systray.AddMenuItem("Statistics", "Trigger history and detected environments")

	systray.AddSeparator()

	// Settings
	mDebug = systray.AddMenuItemCheckbox("Debug Mode", "Enable debug logging", debugMode)
	mReloadCfg = systray.AddMenuItem("Reload Config", "Reload configuration from file")
	mBridge = systray.AddMenuItem("Bridge: off", "Browser WebSocket bridge")
	mBridge.Disable()

	systray.AddSeparator()

	// About submenu with version info (kept enabled for better contrast)
	mAbout = systray.AddMenuItem("About", "About keytray")
	_ = mAbout.AddSubMenuItem(fmt.Sprintf("Version: %s", Version), "")
	_ = mAbout.AddSubMenuItem(fmt.Sprintf("Commit: %s", getShortCommit()), "")
	_ = mAbout.AddSubMenuItem(fmt.Sprintf("Build: %s", buildDate), "")
	_ = mAbout.AddSubMenuItem(fmt.Sprintf("Config: %s", displayConfigPath()), "Configuration file location")

	systray.AddSeparator()

	mQuit = systray.AddMenuItem("Quit", "Quit the application")

	go handleMenuClicks()

	startDesktop(appConfig)
	startBridge(appConfig)
	InitHotkeys()
}

func displayConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return DefaultConfigPath()
}

// startDesktop creates the desktop window, binds the shortcuts to it and
// starts its event loop
func startDesktop(cfg *Config) {
	window := newDesktopWindow(cfg.Environment)
	detected := shortcut.DetectOS(environmentOf(window))

	GetCache().SetDetectedOS(SourceDesktop, detected)
	LogOSDetected(SourceDesktop, detected, window.Navigator())

	stateMutex.Lock()
	detectedDesktopOS = detected
	stateMutex.Unlock()

	if window == nil {
		mOS.SetTitle("OS: Unknown (headless)")
		setStatus("Headless: shortcuts disabled")
		mRelease.Disable()
		return
	}
	mOS.SetTitle(fmt.Sprintf("OS: %s", detected))

	events := make(chan *shortcut.Event, 64)
	binder := NewBinder(window, func(entry ShortcutEntry) {
		handleTrigger(entry, SourceDesktop, detected)
	})
	names := binder.Apply(cfg.Shortcuts)
	LogShortcutsBound(SourceDesktop, names)

	stateMutex.Lock()
	desktopEvents = events
	desktopBinder = binder
	hotkeys = NewHotkeySource(events)
	stateMutex.Unlock()

	go func() {
		if err := window.Run(appCtx, events); err != nil && !errors.Is(err, context.Canceled) {
			LogError("Desktop event loop stopped: %v", err)
		}
	}()
}

// InitHotkeys registers the global shortcuts as OS hotkeys
// Called from onReady after systray is initialized
func InitHotkeys() {
	go func() {
		// Small delay to ensure systray is fully initialized
		time.Sleep(500 * time.Millisecond)
		applyHotkeys(currentConfig())
	}()
}

func applyHotkeys(cfg *Config) {
	stateMutex.RLock()
	source := hotkeys
	stateMutex.RUnlock()
	if source == nil {
		return
	}

	live, err := source.Apply(cfg.Shortcuts)
	switch {
	case err != nil:
		setStatus(fmt.Sprintf("Hotkey error: %s", truncateError(err)))
	case len(live) > 0:
		setStatus(fmt.Sprintf("Hotkeys ready: %d global", len(live)))
	}
}

func startBridge(cfg *Config) {
	if !cfg.Bridge.Enabled {
		return
	}

	b := NewBridge(cfg.Bridge, cfg.Shortcuts, handleTrigger)
	if err := b.Start(appCtx); err != nil {
		LogError("Bridge failed to start: %v", err)
		mBridge.SetTitle("Bridge: error")
		mBridge.SetTooltip(err.Error())
		return
	}

	stateMutex.Lock()
	bridge = b
	stateMutex.Unlock()
	mBridge.SetTitle(fmt.Sprintf("Bridge: ws://%s/ws", b.Addr()))
}

// postDesktopEvent queues an event for the desktop window. It reports false
// when there is no window or the event loop is not keeping up.
func postDesktopEvent(ev *shortcut.Event) bool {
	stateMutex.RLock()
	events := desktopEvents
	stateMutex.RUnlock()
	if events == nil {
		return false
	}

	timer := time.NewTimer(desktopEventTimeout)
	defer timer.Stop()
	select {
	case events <- ev:
		return true
	case <-timer.C:
		LogWarn("Desktop event dropped: %s %q", ev.Type, ev.Key)
		return false
	}
}

// desktopOS returns the OS detected for the desktop window
func desktopOS() shortcut.OS {
	stateMutex.RLock()
	defer stateMutex.RUnlock()
	return detectedDesktopOS
}

func currentConfig() *Config {
	stateMutex.RLock()
	defer stateMutex.RUnlock()
	if appConfig == nil {
		return &Config{}
	}
	return appConfig
}

// setStatus updates the status line when the tray is up
func setStatus(text string) {
	if mStatus != nil {
		mStatus.SetTitle(text)
	}
}

func buildShortcutsMenu() {
	// Pre-allocate menu items pool
	shortcutMenuItems = make([]*systray.MenuItem, maxMenuItems)
	shortcutEntries = make([]ShortcutEntry, maxMenuItems)

	for i := 0; i < maxMenuItems; i++ {
		item := mShortcutsMenu.AddSubMenuItem("", "")
		item.Hide()
		shortcutMenuItems[i] = item
		go handleShortcutClickByIndex(item, i)
	}

	updateShortcutsMenu()
}

func updateShortcutsMenu() {
	// Hide all items first
	for i := 0; i < maxMenuItems; i++ {
		shortcutMenuItems[i].Hide()
	}

	cfg := currentConfig()
	if len(cfg.Shortcuts) == 0 {
		shortcutMenuItems[0].SetTitle("No shortcuts configured")
		shortcutMenuItems[0].SetTooltip("Edit config file to add shortcuts")
		shortcutMenuItems[0].Disable()
		shortcutMenuItems[0].Show()
		return
	}

	stateMutex.Lock()
	defer stateMutex.Unlock()
	for i, entry := range cfg.Shortcuts {
		if i >= maxMenuItems {
			break
		}
		shortcutEntries[i] = entry
		title := fmt.Sprintf("%s  [%s]", entry.Name, entry.Keys)
		if entry.Global {
			title += " *"
		}
		shortcutMenuItems[i].SetTitle(title)
		shortcutMenuItems[i].SetTooltip(describeEntry(entry))
		shortcutMenuItems[i].Enable()
		shortcutMenuItems[i].Show()
	}
}

func handleShortcutClickByIndex(item *systray.MenuItem, index int) {
	for range item.ClickedCh {
		stateMutex.RLock()
		entry := shortcutEntries[index]
		stateMutex.RUnlock()
		if entry.Name != "" {
			handleTrigger(entry, SourceMenu, desktopOS())
		}
	}
}

func handleMenuClicks() {
	for {
		select {
		case <-mRelease.ClickedCh:
			releaseHeldKeys()

		case <-mStats.ClickedCh:
			summary := statsSummary()
			LogInfo("Statistics: %s", summary)
			setStatus(summary)

		case <-mDebug.ClickedCh:
			toggleDebug()

		case <-mReloadCfg.ClickedCh:
			reloadConfig()

		case <-mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

// releaseHeldKeys sends a focus loss so chord shortcuts forget held keys
func releaseHeldKeys() {
	if postDesktopEvent(shortcut.NewBlur()) {
		LogAction("keys_released", "Released held keys")
		setStatus("Held keys released")
	}
}

// statsSummary describes the trigger history and the detected environments
func statsSummary() string {
	c := GetCache()
	desktop, ok := c.DetectedOS(SourceDesktop)
	if !ok {
		desktop = desktopOS()
	}

	stateMutex.RLock()
	b := bridge
	stateMutex.RUnlock()
	clients := 0
	if b != nil {
		clients = b.ClientCount()
	}
	return fmt.Sprintf("%s; desktop %s; %d browser clients", c.Stats(), desktop, clients)
}

func reloadConfig() {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		LogError("Config reload failed: %v", err)
		setStatus(fmt.Sprintf("Config error: %v", truncateError(err)))
		return
	}

	stateMutex.Lock()
	appConfig = cfg
	binder := desktopBinder
	b := bridge
	stateMutex.Unlock()

	if binder != nil {
		LogShortcutsBound(SourceDesktop, binder.Apply(cfg.Shortcuts))
	}
	applyHotkeys(cfg)
	if b != nil {
		b.Reload(cfg.Shortcuts)
	}
	updateShortcutsMenu()

	LogConfigLoaded(cfg)
	setStatus(fmt.Sprintf("Config reloaded (%d shortcuts)", len(cfg.Shortcuts)))
}

func toggleDebug() {
	SetDebugMode(!debugMode)
	if debugMode {
		mDebug.Check()
	} else {
		mDebug.Uncheck()
	}
	SetLogLevel(debugMode)
}

func onExit() {
	LogShutdown()

	if appCancel != nil {
		appCancel()
	}

	stateMutex.Lock()
	source, b, binder := hotkeys, bridge, desktopBinder
	desktopEvents = nil
	stateMutex.Unlock()

	if source != nil {
		source.Stop()
	}
	if b != nil {
		if err := b.Stop(); err != nil {
			LogWarn("Bridge stop: %v", err)
		}
	}
	if binder != nil {
		binder.Close()
	}

	ReleaseSingleInstance()
}
