package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"keytray/shortcut"
)

// Trigger sources
const (
	SourceDesktop = "desktop"
	SourceBridge  = "bridge"
	SourceMenu    = "menu"
)

// triggerContext describes one firing of a shortcut
type triggerContext struct {
	Entry  ShortcutEntry
	Source string
	OS     shortcut.OS
	Time   time.Time
}

// scriptContext returns the ctx table handed to Lua scripts
func (tc triggerContext) scriptContext() map[string]string {
	return map[string]string{
		"name":     tc.Entry.Name,
		"keys":     tc.Entry.Keys.String(),
		"mode":     tc.Entry.Variant().String(),
		"os":       string(tc.OS),
		"source":   tc.Source,
		"snippet":  tc.Entry.Snippet,
		"url":      tc.Entry.URL,
		"command":  tc.Entry.Command,
		"terminal": tc.Entry.Terminal,
		"webhook":  tc.Entry.Webhook,
		"time":     tc.Time.UTC().Format(time.RFC3339),
	}
}

// Package-level function variables for testability.
// Tests override these to avoid touching the clipboard, browser or network.
var (
	clipboardWrite = copyToClipboard
	browserOpen    = openBrowser
	terminalOpen   = openTerminal
	webhookSend    = sendWebhook
	scriptRun      = func(name string, ctx map[string]string) (string, error) {
		engine := GetLuaEngine()
		if engine == nil {
			return "", errors.New("lua engine not initialized")
		}
		return engine.RunScript(name, ctx)
	}
	runAction = runShortcutAction
)

// handleTrigger records a shortcut firing and runs its action off the
// dispatching goroutine
func handleTrigger(entry ShortcutEntry, source string, detected shortcut.OS) {
	rec := GetCache().RecordTrigger(entry.Name, source)
	LogShortcutTriggered(entry.Name, source, rec.Count)

	tc := triggerContext{Entry: entry, Source: source, OS: detected, Time: rec.LastFired}
	go func() {
		if err := runAction(tc); err != nil {
			LogError("Shortcut %s failed: %v", entry.Name, err)
			setStatus(fmt.Sprintf("Failed: %s (%s)", entry.Name, truncateError(err)))
		}
	}()
}

// runShortcutAction runs the first configured action of the entry in the
// order script, snippet, url, command, webhook
func runShortcutAction(tc triggerContext) error {
	entry := tc.Entry

	if entry.Confirm && !confirmDialog("keytray", fmt.Sprintf("Run %q (%s)?", entry.Name, entry.ActionKind())) {
		LogAction("trigger_cancelled", entry.Name)
		setStatus(fmt.Sprintf("Cancelled: %s", entry.Name))
		return nil
	}

	switch entry.ActionKind() {
	case "script":
		result, err := scriptRun(entry.Script, tc.scriptContext())
		LogScriptExecuted(entry.Script, entry.Name, err)
		if err != nil {
			return fmt.Errorf("script %s: %w", entry.Script, err)
		}
		// A script attached to a snippet may return the text to copy
		if result != "" && entry.Snippet != "" {
			if err := clipboardWrite(result); err != nil {
				return fmt.Errorf("copy script result: %w", err)
			}
			LogClipboardCopy("script", entry.Name)
			setStatus(fmt.Sprintf("Copied: %s", entry.Name))
			return nil
		}
		setStatus(fmt.Sprintf("Script: %s", entry.Name))

	case "snippet":
		if err := clipboardWrite(entry.Snippet); err != nil {
			return fmt.Errorf("copy snippet: %w", err)
		}
		LogClipboardCopy("snippet", entry.Name)
		setStatus(fmt.Sprintf("Copied: %s", entry.Name))

	case "url":
		if err := browserOpen(entry.URL); err != nil {
			return fmt.Errorf("open url: %w", err)
		}
		LogURLOpened(entry.Name)
		setStatus(fmt.Sprintf("Opened: %s", entry.Name))

	case "command":
		if err := terminalOpen(entry); err != nil {
			return fmt.Errorf("start command: %w", err)
		}
		LogCommandStarted(entry.Name)
		setStatus(fmt.Sprintf("Started: %s", entry.Name))

	case "webhook":
		ctx, cancel := context.WithTimeout(context.Background(), DefaultHTTPTimeout)
		defer cancel()
		err := webhookSend(ctx, entry.Webhook, newWebhookPayload(tc))
		LogWebhookSent(entry.Name, err)
		if err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
		setStatus(fmt.Sprintf("Sent: %s", entry.Name))

	default:
		return fmt.Errorf("no action configured for %q", entry.Name)
	}
	return nil
}

// webhookPayload is the JSON body POSTed by webhook actions
type webhookPayload struct {
	Shortcut string   `json:"shortcut"`
	Keys     []string `json:"keys"`
	Mode     string   `json:"mode"`
	Source   string   `json:"source"`
	OS       string   `json:"os"`
	Time     string   `json:"time"`
}

func newWebhookPayload(tc triggerContext) webhookPayload {
	return webhookPayload{
		Shortcut: tc.Entry.Name,
		Keys:     shortcut.NormalizeCombo(tc.Entry.Keys),
		Mode:     tc.Entry.Variant().String(),
		Source:   tc.Source,
		OS:       string(tc.OS),
		Time:     tc.Time.UTC().Format(time.RFC3339),
	}
}

func truncateError(err error) string {
	s := err.Error()
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}

// describeEntry returns the menu tooltip of a shortcut
func describeEntry(entry ShortcutEntry) string {
	var b strings.Builder
	b.WriteString(entry.Keys.String())
	if entry.Variant() == shortcut.Extended {
		b.WriteString(" (held together)")
	}
	if kind := entry.ActionKind(); kind != "" {
		b.WriteString(" -> ")
		b.WriteString(kind)
	}
	return b.String()
}
