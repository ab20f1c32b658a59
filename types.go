// Package main is keytray, a system tray app that binds keyboard shortcuts
// to snippets, URLs, commands, webhooks and Lua scripts.
package main

// Global debug flag
var debugMode bool

// SetDebugMode enables or disables debug output
func SetDebugMode(debug bool) {
	debugMode = debug
}
