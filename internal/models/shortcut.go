// Package models defines core data structures for shortcuts, queries, and search results.
package models

import (
	"strings"
	"time"
)

// Platform identifies the operating system a key combination applies to.
type Platform string

const (
	PlatformMac     Platform = "mac"
	PlatformWindows Platform = "windows"
	PlatformLinux   Platform = "linux"
)

// Platforms lists every platform in resolution order (mac, windows, linux).
var Platforms = []Platform{PlatformMac, PlatformWindows, PlatformLinux}

// ParsePlatform maps user input to a Platform. Unknown or empty input yields ("", false).
func ParsePlatform(s string) (Platform, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mac", "macos", "darwin", "osx":
		return PlatformMac, true
	case "windows", "win":
		return PlatformWindows, true
	case "linux":
		return PlatformLinux, true
	default:
		return "", false
	}
}

// Keys holds the per-platform key combination strings of a shortcut.
type Keys struct {
	Mac     string `json:"mac,omitempty" yaml:"mac,omitempty"`
	Windows string `json:"windows,omitempty" yaml:"windows,omitempty"`
	Linux   string `json:"linux,omitempty" yaml:"linux,omitempty"`
}

// For returns the raw key combination for platform p, or "" when unset.
func (k Keys) For(p Platform) string {
	switch p {
	case PlatformMac:
		return k.Mac
	case PlatformWindows:
		return k.Windows
	case PlatformLinux:
		return k.Linux
	default:
		return ""
	}
}

// Preferred returns the first non-empty combination in mac, windows, linux order.
func (k Keys) Preferred() string {
	for _, p := range Platforms {
		if v := k.For(p); v != "" {
			return v
		}
	}
	return ""
}

// Resolve returns the combination for p when p is set, otherwise Preferred.
func (k Keys) Resolve(p Platform) string {
	if p != "" {
		return k.For(p)
	}
	return k.Preferred()
}

// Source records where a shortcut came from.
type Source struct {
	Kind       string     `json:"kind,omitempty" yaml:"kind,omitempty"`
	URL        string     `json:"url,omitempty" yaml:"url,omitempty"`
	CapturedAt *time.Time `json:"captured_at,omitempty" yaml:"captured_at,omitempty"`
	// Confidence is in [0, 1].
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// Shortcut is a single keyboard-shortcut record. The search core treats it as read-only.
type Shortcut struct {
	ID       string   `json:"id" yaml:"id,omitempty"`
	App      string   `json:"app" yaml:"app,omitempty"`
	Action   string   `json:"action" yaml:"action"`
	Keys     Keys     `json:"keys" yaml:"keys"`
	Context  string   `json:"context,omitempty" yaml:"context,omitempty"`
	Category string   `json:"category,omitempty" yaml:"category,omitempty"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Source   *Source  `json:"source,omitempty" yaml:"source,omitempty"`
}

// HasTag reports whether the shortcut carries tag, ignoring case.
func (s *Shortcut) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
