package main

import (
	"fmt"
	"net/url"
	"strings"
)

// openBrowser opens an http(s), mailto or file URL in the default browser
func openBrowser(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto", "file":
	default:
		return fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	return browserCommand(u.String()).Start()
}
