package main

import (
	"os"
	"runtime"

	"keytray/shortcut"
)

// lookupEnv is overridden in tests
var lookupEnv = os.LookupEnv

// hasDisplay reports whether a graphical session is available.
// X11 and Wayland sessions advertise themselves through the environment;
// macOS and Windows always have a window server.
func hasDisplay(goos string) bool {
	switch goos {
	case "darwin", "windows":
		return true
	}
	for _, name := range []string{"WAYLAND_DISPLAY", "DISPLAY"} {
		if v, ok := lookupEnv(name); ok && v != "" {
			return true
		}
	}
	return false
}

// defaultNavigator synthesizes the navigator strings a browser on this host
// would report
func defaultNavigator(goos, goarch string) shortcut.Navigator {
	switch goos {
	case "darwin":
		return shortcut.Navigator{
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) keytray/" + Version,
			Platform:  "MacIntel",
		}
	case "windows":
		return shortcut.Navigator{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) keytray/" + Version,
			Platform:  "Win32",
		}
	case "linux":
		return shortcut.Navigator{
			UserAgent: "Mozilla/5.0 (X11; Linux " + linuxArch(goarch) + ") keytray/" + Version,
			Platform:  "Linux " + linuxArch(goarch),
		}
	case "android":
		return shortcut.Navigator{
			UserAgent: "Mozilla/5.0 (Linux; Android) keytray/" + Version,
			Platform:  "Linux " + linuxArch(goarch),
		}
	case "ios":
		return shortcut.Navigator{
			UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS like Mac OS X) keytray/" + Version,
			Platform:  "iPhone",
		}
	default:
		return shortcut.Navigator{
			UserAgent: "Mozilla/5.0 (" + goos + ") keytray/" + Version,
			Platform:  goos,
		}
	}
}

func linuxArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "386":
		return "i686"
	case "arm64":
		return "aarch64"
	default:
		return goarch
	}
}

// desktopNavigator applies the configured overrides to the synthesized navigator
func desktopNavigator(cfg EnvironmentConfig) shortcut.Navigator {
	nav := defaultNavigator(runtime.GOOS, runtime.GOARCH)
	if cfg.UserAgent != "" {
		nav.UserAgent = cfg.UserAgent
	}
	if cfg.Platform != "" {
		nav.Platform = cfg.Platform
	}
	return nav
}

// newDesktopWindow returns the window shortcuts bind to on this host, or nil
// when running headless
func newDesktopWindow(cfg EnvironmentConfig) *shortcut.Window {
	if cfg.Headless || !hasDisplay(runtime.GOOS) {
		return nil
	}
	return shortcut.NewWindow(desktopNavigator(cfg))
}

// environmentOf converts a possibly nil window into an Environment. A nil
// window yields a nil interface, which the shortcut package treats as headless.
func environmentOf(w *shortcut.Window) shortcut.Environment {
	if w == nil {
		return nil
	}
	return w
}
