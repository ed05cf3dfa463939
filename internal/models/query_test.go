package models

import "testing"

func TestSearchFilters_WithDefaultLimit(t *testing.T) {
	tests := []struct {
		name         string
		in           SearchFilters
		def          int
		wantLimit    int
		wantPlatform Platform
	}{
		{"zero limit uses default", SearchFilters{}, 50, 50, ""},
		{"negative limit uses default", SearchFilters{Limit: -3}, 10, 10, ""},
		{"explicit limit kept", SearchFilters{Limit: 7}, 50, 7, ""},
		{"platform alias normalized", SearchFilters{Platform: "macOS"}, 50, 50, PlatformMac},
		{"unknown platform dropped", SearchFilters{Platform: "beos"}, 50, 50, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.WithDefaultLimit(tt.def)
			if got.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", got.Limit, tt.wantLimit)
			}
			if got.Platform != tt.wantPlatform {
				t.Errorf("Platform = %q, want %q", got.Platform, tt.wantPlatform)
			}
		})
	}
}

func TestKeys_Resolve(t *testing.T) {
	k := Keys{Windows: "Ctrl+C", Linux: "Ctrl+Shift+C"}
	if got := k.Preferred(); got != "Ctrl+C" {
		t.Errorf("Preferred() = %q, want windows value", got)
	}
	if got := k.Resolve(PlatformLinux); got != "Ctrl+Shift+C" {
		t.Errorf("Resolve(linux) = %q", got)
	}
	if got := k.Resolve(PlatformMac); got != "" {
		t.Errorf("Resolve(mac) = %q, want empty", got)
	}
	if got := k.Resolve(""); got != "Ctrl+C" {
		t.Errorf("Resolve(\"\") = %q, want preferred", got)
	}
}

func TestShortcut_HasTag(t *testing.T) {
	s := &Shortcut{Tags: []string{"Editing", "clipboard"}}
	if !s.HasTag("editing") {
		t.Error("expected case-insensitive tag match")
	}
	if s.HasTag("navigation") {
		t.Error("unexpected tag match")
	}
}
