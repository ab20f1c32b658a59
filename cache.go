package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"keytray/shortcut"
)

// Cache prefixes for different types of cached items
const (
	PrefixTrigger = "trigger:"
	PrefixOS      = "os:"
)

// Default expiration times
const (
	DefaultTriggerExpiration = 24 * time.Hour
	DefaultOSExpiration      = 1 * time.Hour
	CleanupInterval          = 1 * time.Minute
)

// AppCache wraps go-cache with trigger history and detected-OS lookups
type AppCache struct {
	c  *cache.Cache
	mu sync.Mutex // serializes read-modify-write of trigger records
}

// TriggerRecord is the history of one shortcut
type TriggerRecord struct {
	Name       string
	Source     string // Source of the most recent trigger (desktop, bridge, menu, lua)
	Count      int
	LastFired  time.Time
	FirstFired time.Time
}

var appCache *AppCache

// InitCache initializes the application cache
func InitCache() {
	appCache = NewAppCache()
}

// NewAppCache creates an empty cache with the default expirations
func NewAppCache() *AppCache {
	return &AppCache{
		c: cache.New(DefaultTriggerExpiration, CleanupInterval),
	}
}

// GetCache returns the application cache instance
func GetCache() *AppCache {
	if appCache == nil {
		InitCache()
	}
	return appCache
}

// RecordTrigger bumps the trigger count of a shortcut and returns the updated record
func (ac *AppCache) RecordTrigger(name string, source string) TriggerRecord {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	now := time.Now()
	rec := TriggerRecord{Name: name, FirstFired: now}
	if val, found := ac.c.Get(PrefixTrigger + name); found {
		if prev, ok := val.(*TriggerRecord); ok {
			rec = *prev
		}
	}
	rec.Source = source
	rec.Count++
	rec.LastFired = now

	ac.c.Set(PrefixTrigger+name, &rec, DefaultTriggerExpiration)
	return rec
}

// LastTrigger retrieves the trigger record of a shortcut
func (ac *AppCache) LastTrigger(name string) (TriggerRecord, bool) {
	if val, found := ac.c.Get(PrefixTrigger + name); found {
		if rec, ok := val.(*TriggerRecord); ok {
			return *rec, true
		}
	}
	return TriggerRecord{}, false
}

// SetDetectedOS remembers the OS detected for an event source
func (ac *AppCache) SetDetectedOS(source string, detected shortcut.OS) {
	ac.c.Set(PrefixOS+source, detected, DefaultOSExpiration)
}

// DetectedOS returns the OS last detected for an event source
func (ac *AppCache) DetectedOS(source string) (shortcut.OS, bool) {
	if val, found := ac.c.Get(PrefixOS + source); found {
		if detected, ok := val.(shortcut.OS); ok {
			return detected, true
		}
	}
	return shortcut.Unknown, false
}

// Delete removes an item from the cache
func (ac *AppCache) Delete(key string) {
	ac.c.Delete(key)
}

// DeleteTrigger forgets the history of a shortcut
func (ac *AppCache) DeleteTrigger(name string) {
	ac.c.Delete(PrefixTrigger + name)
}

// DeleteDetectedOS forgets the OS of an event source
func (ac *AppCache) DeleteDetectedOS(source string) {
	ac.c.Delete(PrefixOS + source)
}

// Clear removes all items from the cache
func (ac *AppCache) Clear() {
	ac.c.Flush()
}

// ItemCount returns the number of items in the cache
func (ac *AppCache) ItemCount() int {
	return ac.c.ItemCount()
}

// Stats returns cache statistics as a formatted string
func (ac *AppCache) Stats() string {
	triggers := 0
	for key := range ac.c.Items() {
		if strings.HasPrefix(key, PrefixTrigger) {
			triggers++
		}
	}
	return fmt.Sprintf("Cache items: %d (%d shortcuts fired)", ac.c.ItemCount(), triggers)
}
