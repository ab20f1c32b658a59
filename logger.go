package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"keytray/shortcut"
)

var log *logrus.Logger

// InitLoggerWithConfig initializes the logger with the provided configuration
func InitLoggerWithConfig(cfg LogConfig) error {
	log = logrus.New()

	// Create log directory if needed
	logDir := ConfigDir()
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	// Configure lumberjack for log rotation
	lj := &lumberjack.Logger{
		Filename:   GetLogPath(),
		MaxSize:    cfg.MaxSizeMB,  // MB - rotate when file reaches this size
		MaxBackups: cfg.MaxBackups, // Number of backup files to keep
		MaxAge:     cfg.MaxAgeDays, // Days to keep old files
		Compress:   cfg.Compress,   // Compress rotated files
		LocalTime:  true,           // Use local time for rotation
	}

	// Write to file, and optionally to stdout
	if cfg.ToStdout {
		log.SetOutput(io.MultiWriter(lj, os.Stdout))
	} else {
		log.SetOutput(lj)
	}

	// Set formatter - use text format with timestamps
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true, // No colors in log file
	})

	// Default to Info level, Debug mode will change this
	log.SetLevel(logrus.InfoLevel)

	// The shortcut library only logs at debug level
	shortcut.SetLogger(log.WithField("component", "shortcut"))

	log.WithFields(logrus.Fields{
		"max_size_mb":  cfg.MaxSizeMB,
		"max_backups":  cfg.MaxBackups,
		"max_age_days": cfg.MaxAgeDays,
		"compress":     cfg.Compress,
		"to_stdout":    cfg.ToStdout,
	}).Info("Logger initialized")
	return nil
}

// SetLogLevel sets the logging level based on debug mode
func SetLogLevel(debug bool) {
	if log == nil {
		return
	}
	if debug {
		log.SetLevel(logrus.DebugLevel)
		log.Debug("Debug logging enabled")
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.Info("Debug logging disabled")
	}
}

// LogInfo logs an info level message (always logged)
func LogInfo(format string, args ...interface{}) {
	if log != nil {
		log.Infof(format, args...)
	}
}

// LogDebug logs a debug level message (only when debug mode is on)
func LogDebug(format string, args ...interface{}) {
	if log != nil {
		log.Debugf(format, args...)
	}
}

// LogWarn logs a warning level message
func LogWarn(format string, args ...interface{}) {
	if log != nil {
		log.Warnf(format, args...)
	}
}

// LogError logs an error level message
func LogError(format string, args ...interface{}) {
	if log != nil {
		log.Errorf(format, args...)
	}
}

// LogAction logs a business action (always logged at info level)
func LogAction(action string, details string) {
	LogActionWithFields(action, details, nil)
}

// LogActionWithFields logs a business action with additional fields
func LogActionWithFields(action string, details string, fields map[string]interface{}) {
	if log != nil {
		f := logrus.Fields{"action": action}
		for k, v := range fields {
			f[k] = v
		}
		log.WithFields(f).Info(details)
	}
}

// LogStartup logs application startup information
func LogStartup() {
	if log == nil {
		return
	}
	log.WithFields(logrus.Fields{
		"version":    Version,
		"commit":     getShortCommit(),
		"build_date": buildDate,
		"pid":        os.Getpid(),
	}).Info("keytray starting")
}

// LogShutdown logs application shutdown
func LogShutdown() {
	if log != nil {
		log.Info("keytray shutting down")
	}
}

// LogConfigLoaded logs when configuration is loaded
func LogConfigLoaded(cfg *Config) {
	if log == nil || cfg == nil {
		return
	}
	global, extended := 0, 0
	for _, entry := range cfg.Shortcuts {
		if entry.Global {
			global++
		}
		if entry.Variant() == shortcut.Extended {
			extended++
		}
	}
	log.WithFields(logrus.Fields{
		"shortcuts": len(cfg.Shortcuts),
		"global":    global,
		"extended":  extended,
		"bridge":    cfg.Bridge.Enabled,
	}).Info("Configuration loaded")
}

// LogOSDetected logs the OS label derived for an environment
func LogOSDetected(source string, detected shortcut.OS, nav shortcut.Navigator) {
	LogActionWithFields("os_detected", fmt.Sprintf("Detected OS: %s", detected), map[string]interface{}{
		"source":   source,
		"platform": nav.Platform,
	})
}

// LogShortcutsBound logs the result of applying shortcuts to an environment
func LogShortcutsBound(source string, names []string) {
	LogActionWithFields("shortcuts_bound", fmt.Sprintf("Bound %d shortcuts", len(names)), map[string]interface{}{
		"source":    source,
		"shortcuts": strings.Join(names, ","),
	})
}

// LogShortcutTriggered logs when a shortcut fires
func LogShortcutTriggered(name string, source string, count int) {
	LogActionWithFields("shortcut_triggered", fmt.Sprintf("Triggered: %s", name), map[string]interface{}{
		"source": source,
		"count":  count,
	})
}

// LogHotkeyRegistered logs an OS global hotkey registration attempt
func LogHotkeyRegistered(name string, combo string, err error) {
	if log == nil {
		return
	}
	fields := logrus.Fields{
		"action":   "hotkey_registered",
		"shortcut": name,
		"combo":    combo,
	}
	if err != nil {
		fields["error"] = err.Error()
		log.WithFields(fields).Warn("Global hotkey not registered")
		return
	}
	log.WithFields(fields).Info("Global hotkey registered")
}

// LogBridgeClient logs browser bridge connects and disconnects
func LogBridgeClient(remote string, connected bool, detected shortcut.OS) {
	state := "disconnected"
	if connected {
		state = "connected"
	}
	LogActionWithFields("bridge_client", fmt.Sprintf("Bridge client %s", state), map[string]interface{}{
		"remote": remote,
		"os":     string(detected),
	})
}

// LogClipboardCopy logs clipboard operations (without exposing content)
func LogClipboardCopy(itemType string, itemName string) {
	LogAction("clipboard_copy", fmt.Sprintf("Copied %s: %s", itemType, itemName))
}

// LogURLOpened logs when a URL is opened
func LogURLOpened(name string) {
	LogAction("url_opened", fmt.Sprintf("Opened URL: %s", name))
}

// LogCommandStarted logs when a terminal command is launched
func LogCommandStarted(name string) {
	LogAction("command_started", fmt.Sprintf("Started command: %s", name))
}

// LogWebhookSent logs webhook deliveries
func LogWebhookSent(name string, err error) {
	fields := map[string]interface{}{"status": "success"}
	if err != nil {
		fields["status"] = "failed"
		fields["error"] = err.Error()
	}
	LogActionWithFields("webhook_sent", fmt.Sprintf("Webhook: %s", name), fields)
}

// LogScriptExecuted logs when a Lua script is executed
func LogScriptExecuted(scriptName string, shortcutName string, err error) {
	if log == nil {
		return
	}
	status := "success"
	fields := logrus.Fields{
		"action":   "script_executed",
		"script":   scriptName,
		"shortcut": shortcutName,
	}
	if err != nil {
		status = "failed"
		fields["error"] = err.Error()
	}
	fields["status"] = status
	log.WithFields(fields).Info(fmt.Sprintf("Script executed: %s", scriptName))
}

// GetLogPath returns the path to the log file
func GetLogPath() string {
	return filepath.Join(ConfigDir(), "keytray.log")
}
