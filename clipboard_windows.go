//go:build windows

package main

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	// Clipboard functions
	openClipboard    = user32.NewProc("OpenClipboard")
	closeClipboard   = user32.NewProc("CloseClipboard")
	emptyClipboard   = user32.NewProc("EmptyClipboard")
	setClipboardData = user32.NewProc("SetClipboardData")

	// Memory functions
	globalAlloc  = kernel32.NewProc("GlobalAlloc")
	globalFree   = kernel32.NewProc("GlobalFree")
	globalLock   = kernel32.NewProc("GlobalLock")
	globalUnlock = kernel32.NewProc("GlobalUnlock")
)

const (
	cfUnicodeText = 13
	gmemMoveable  = 0x0002
)

func copyToClipboardPlatform(text string) error {
	utf16, err := windows.UTF16FromString(text)
	if err != nil {
		return err
	}

	// The clipboard is owned by the thread that opened it
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if ret, _, err := openClipboard.Call(0); ret == 0 {
		return fmt.Errorf("OpenClipboard: %w", err)
	}
	defer closeClipboard.Call()

	if ret, _, err := emptyClipboard.Call(); ret == 0 {
		return fmt.Errorf("EmptyClipboard: %w", err)
	}

	size := len(utf16) * 2
	hMem, _, err := globalAlloc.Call(gmemMoveable, uintptr(size))
	if hMem == 0 {
		return fmt.Errorf("GlobalAlloc: %w", err)
	}

	ptr, _, err := globalLock.Call(hMem)
	if ptr == 0 {
		globalFree.Call(hMem)
		return fmt.Errorf("GlobalLock: %w", err)
	}
	dst := unsafe.Slice((*uint16)(unsafe.Pointer(ptr)), len(utf16))
	copy(dst, utf16)
	globalUnlock.Call(hMem)

	// On success the system owns hMem
	if ret, _, err := setClipboardData.Call(cfUnicodeText, hMem); ret == 0 {
		globalFree.Call(hMem)
		return fmt.Errorf("SetClipboardData: %w", err)
	}
	return nil
}
