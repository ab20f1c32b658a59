package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"keytray/shortcut"
)

var (
	configFlag    string
	debugFlag     bool
	userAgentFlag string
	platformFlag  string
)

// Package-level function variables for testability.
var (
	startTray           = runTray
	ioOut     io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:   "keytray",
	Short: "Bind keyboard shortcuts to snippets, URLs, commands and scripts",
	Long: `keytray sits in the system tray and runs an action when a configured
key combination is pressed on the desktop or in a browser connected over the
WebSocket bridge.

Examples:
  keytray                     run the tray application
  keytray os                  print the operating system detected here
  keytray check               validate the config and list its shortcuts`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startTray(configFlag, debugFlag)
	},
}

var osCmd = &cobra.Command{
	Use:   "os",
	Short: "Print the operating system detected from navigator strings",
	Args:  cobra.NoArgs,
	RunE:  runOS,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config and list its shortcuts",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(ioOut, "keytray %s (commit %s, built %s)\n", Version, getShortCommit(), buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (.json or .toml)")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	osCmd.Flags().StringVar(&userAgentFlag, "user-agent", "", "classify this user agent instead of the desktop")
	osCmd.Flags().StringVar(&platformFlag, "platform", "", "classify this platform instead of the desktop")

	rootCmd.AddCommand(osCmd, checkCmd, versionCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func runOS(cmd *cobra.Command, args []string) error {
	if userAgentFlag != "" || platformFlag != "" {
		nav := shortcut.Navigator{UserAgent: userAgentFlag, Platform: platformFlag}
		_, _ = fmt.Fprintf(ioOut, "OS: %s\n", shortcut.DetectOSFromNavigator(nav))
		return nil
	}

	// A missing or broken config still leaves the desktop defaults
	var envCfg EnvironmentConfig
	if cfg, err := LoadConfig(configFlag); err == nil {
		envCfg = cfg.Environment
	}

	window := newDesktopWindow(envCfg)
	if window == nil {
		_, _ = fmt.Fprintf(ioOut, "OS: %s (headless)\n", shortcut.DetectOS(nil))
		return nil
	}

	nav := window.Navigator()
	_, _ = fmt.Fprintf(ioOut, "OS: %s\n", shortcut.DetectOS(window))
	_, _ = fmt.Fprintf(ioOut, "Platform: %s\n", nav.Platform)
	_, _ = fmt.Fprintf(ioOut, "User-Agent: %s\n", nav.UserAgent)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(configFlag)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	for _, entry := range cfg.Shortcuts {
		_, _ = fmt.Fprintf(ioOut, "%-20s %-20s %-8s %s%s\n",
			entry.Name, entry.Keys, entry.Variant(), actionLabel(entry), globalLabel(entry))
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	_, _ = fmt.Fprintf(ioOut, "%d shortcuts OK\n", len(cfg.Shortcuts))
	return nil
}

func actionLabel(entry ShortcutEntry) string {
	kind := entry.ActionKind()
	if kind == "" {
		return "(no action)"
	}
	return kind
}

// globalLabel reports whether a global entry can become an OS hotkey here
func globalLabel(entry ShortcutEntry) string {
	if !entry.Global {
		return ""
	}
	g, err := parseGlobalCombo(entry.Keys)
	if err == nil {
		_, _, err = resolveHotkey(g)
	}
	if err != nil {
		return fmt.Sprintf("  global: %v", err)
	}
	return fmt.Sprintf("  global: %s", describeHotkey(g))
}
