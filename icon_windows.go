//go:build windows

package main

import _ "embed"

// The Windows tray needs ICO data
//
//go:embed icon.ico
var defaultIcon []byte
