package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMeasureFootprint(t *testing.T) {
	dir := t.TempDir()
	write := func(path, content string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	db := filepath.Join(dir, "kagi.db")
	write(db, "hello")
	write(db+"-wal", "abc")

	catalogs := filepath.Join(dir, "catalogs")
	write(filepath.Join(catalogs, "vim.yaml"), "app: vim\n")
	write(filepath.Join(catalogs, "nested", "chrome.json"), "[]")
	write(filepath.Join(catalogs, "README.md"), "notes")

	got, err := MeasureFootprint(db, []string{catalogs}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.DatabaseBytes != 8 {
		t.Errorf("DatabaseBytes = %d, want 8 (file + wal)", got.DatabaseBytes)
	}
	if got.CatalogFiles != 3 || got.CatalogBytes != 16 {
		t.Errorf("catalog = %d files / %d bytes, want 3 / 16", got.CatalogFiles, got.CatalogBytes)
	}

	onlyCatalogs := func(path string) bool { return !strings.HasSuffix(path, ".md") }
	got, err = MeasureFootprint(db, []string{catalogs}, onlyCatalogs)
	if err != nil {
		t.Fatal(err)
	}
	if got.CatalogFiles != 2 || got.CatalogBytes != 11 {
		t.Errorf("filtered catalog = %d files / %d bytes, want 2 / 11", got.CatalogFiles, got.CatalogBytes)
	}
}

func TestMeasureFootprint_MissingAndMemory(t *testing.T) {
	dir := t.TempDir()
	got, err := MeasureFootprint(":memory:", []string{filepath.Join(dir, "missing"), ""}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != (Footprint{}) {
		t.Errorf("Footprint = %+v, want zero", got)
	}

	got, err = MeasureFootprint(filepath.Join(dir, "absent.db"), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.DatabaseBytes != 0 {
		t.Errorf("DatabaseBytes = %d, want 0", got.DatabaseBytes)
	}
}
