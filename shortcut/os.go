package shortcut

import (
	"regexp"
	"strings"
)

// OS is an operating system label.
type OS string

const (
	MacOS   OS = "MacOS"
	Windows OS = "Windows"
	Linux   OS = "Linux"
	Android OS = "Android"
	IOS     OS = "iOS"
	Unknown OS = "Unknown"
)

var appleMobileAgent = regexp.MustCompile(`iphone|ipad|ipod`)

// DetectOS classifies the environment's navigator strings. A nil environment
// means there is no windowing environment and yields Unknown.
//
// Platform checks take priority over the user agent; the first match wins.
func DetectOS(env Environment) OS {
	if isNilEnvironment(env) {
		return Unknown
	}
	return DetectOSFromNavigator(env.Navigator())
}

// DetectOSFromNavigator classifies nav without requiring an Environment.
func DetectOSFromNavigator(nav Navigator) OS {
	userAgent := strings.ToLower(nav.UserAgent)
	platform := strings.ToLower(nav.Platform)

	switch {
	case strings.Contains(platform, "mac"):
		return MacOS
	case strings.Contains(platform, "win"):
		return Windows
	case strings.Contains(platform, "linux"):
		return Linux
	case strings.Contains(userAgent, "android"):
		return Android
	case appleMobileAgent.MatchString(userAgent):
		return IOS
	}
	return Unknown
}

func isNilEnvironment(env Environment) bool {
	if env == nil {
		return true
	}
	w, ok := env.(*Window)
	return ok && w == nil
}
