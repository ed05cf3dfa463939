package fileid

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestSourceURL(t *testing.T) {
	if got := SourceURL("/catalogs/vim.yaml"); got != "file:///catalogs/vim.yaml" {
		t.Errorf("SourceURL = %q", got)
	}
	if SourceURL("/catalogs/./vim.yaml") != SourceURL("/catalogs/vim.yaml") {
		t.Error("cleaned paths should give the same URL")
	}
	if got := SourceURL("/catalogs/my apps.yaml"); !strings.HasPrefix(got, "file:///catalogs/my%20apps") {
		t.Errorf("spaces should be escaped: %q", got)
	}
}

func TestShortcutID(t *testing.T) {
	id1 := ShortcutID("vim", "normal mode", "Split window vertically")
	id2 := ShortcutID(" VIM ", "Normal Mode", "split window vertically")
	if id1 != id2 {
		t.Errorf("case and spacing should not change the ID: %q vs %q", id1, id2)
	}
	u, err := uuid.Parse(id1)
	if err != nil {
		t.Fatalf("ID is not a UUID: %v", err)
	}
	if u.Version() != 5 {
		t.Errorf("version = %d, want 5", u.Version())
	}
	if ShortcutID("vim", "insert mode", "Split window vertically") == id1 {
		t.Error("different contexts should give different IDs")
	}
	if ShortcutID("vimx", "", "a") == ShortcutID("vim", "x", "a") {
		t.Error("fields must not run together")
	}
}
