package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/kagi/internal/fileid"
	"github.com/hyperjump/kagi/internal/keyword"
	"github.com/hyperjump/kagi/internal/models"
	"github.com/hyperjump/kagi/internal/storage"
)

const vimCatalog = `app: vim
shortcuts:
  - action: "Split   window vertically"
    keys: {linux: "Ctrl+w v"}
  - action: Close window
    keys: {linux: "Ctrl+w c"}
`

const chromeCatalog = `app: chrome
shortcuts:
  - action: Reopen closed tab
    keys: {mac: "Cmd+Shift+T"}
`

func testIndexer(t *testing.T) (*Indexer, storage.Storage, *keyword.BleveCatalogIndex) {
	t.Helper()
	store := storage.NewMemoryStore()
	cat, err := keyword.NewBleveCatalogIndex()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = cat.Close() })
	return NewIndexer(store, WithCatalogIndex(cat), WithSpellChecker(keyword.NewSpellChecker(cat))), store, cat
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func hasTerm(cat *keyword.BleveCatalogIndex, term string) bool {
	freq, err := cat.GetTermFrequency(term)
	return err == nil && freq > 0
}

func count(t *testing.T, s storage.Storage) int64 {
	t.Helper()
	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestImportFile_createAndUpdate(t *testing.T) {
	dir := t.TempDir()
	idx, store, cat := testIndexer(t)
	ctx := context.Background()

	path := filepath.Join(dir, "vim.yaml")
	writeFile(t, path, vimCatalog)
	if err := idx.ImportFile(ctx, path, []string{".yaml"}); err != nil {
		t.Fatal(err)
	}
	if n := count(t, store); n != 2 {
		t.Fatalf("Count = %d, want 2", n)
	}
	recs, _ := store.ByApp(ctx, "vim")
	if recs[0].Action != "Split window vertically" {
		t.Errorf("whitespace not collapsed: %q", recs[0].Action)
	}
	if !hasTerm(cat, "vertically") {
		t.Error("catalog index not rebuilt after import")
	}

	writeFile(t, path, "app: vim\nshortcuts:\n  - action: Write file\n")
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	if err := idx.ImportFile(ctx, path, nil); err != nil {
		t.Fatal(err)
	}
	recs, _ = store.ByApp(ctx, "vim")
	if len(recs) != 1 || recs[0].Action != "Write file" {
		t.Errorf("records after update = %+v", recs)
	}
	if hasTerm(cat, "vertically") {
		t.Error("stale terms left in catalog index")
	}
}

func TestImportFile_skipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	idx, store, _ := testIndexer(t)
	ctx := context.Background()

	path := filepath.Join(dir, "vim.yaml")
	writeFile(t, path, vimCatalog)
	if err := idx.ImportFile(ctx, path, nil); err != nil {
		t.Fatal(err)
	}
	recs, _ := store.ByApp(ctx, "vim")
	if err := store.Delete(ctx, recs[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := idx.ImportFile(ctx, path, nil); err != nil {
		t.Fatal(err)
	}
	if n := count(t, store); n != 1 {
		t.Errorf("unchanged file should not be re-imported; Count = %d", n)
	}
}

func TestImportFile_errors(t *testing.T) {
	dir := t.TempDir()
	idx, _, _ := testIndexer(t)
	ctx := context.Background()

	script := filepath.Join(dir, "script.sh")
	writeFile(t, script, "#!/bin/sh")
	if err := idx.ImportFile(ctx, script, nil); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if err := idx.ImportFile(ctx, filepath.Join(dir, "missing.yaml"), nil); err == nil {
		t.Error("expected error for missing file")
	}
	sub := filepath.Join(dir, "dir.yaml")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := idx.ImportFile(ctx, sub, nil); err == nil {
		t.Error("expected error for directory")
	}
	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, "{broken")
	if err := idx.ImportFile(ctx, bad, nil); err == nil {
		t.Error("expected parse error")
	}
}

func TestImportDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "vim.yaml"), vimCatalog)
	writeFile(t, filepath.Join(dir, "nested", "chrome.yml"), chromeCatalog)
	writeFile(t, filepath.Join(dir, "README.md"), "# catalogs")
	writeFile(t, filepath.Join(dir, "broken.json"), "{")

	t.Run("recursive", func(t *testing.T) {
		idx, store, _ := testIndexer(t)
		n, err := idx.ImportDirectory(context.Background(), dir, nil, true)
		if err != nil {
			t.Fatal(err)
		}
		if n != 2 {
			t.Errorf("imported %d files, want 2", n)
		}
		if c := count(t, store); c != 3 {
			t.Errorf("Count = %d, want 3", c)
		}
	})

	t.Run("top level only", func(t *testing.T) {
		idx, store, _ := testIndexer(t)
		n, err := idx.ImportDirectory(context.Background(), dir, []string{".yaml", ".yml"}, false)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 || count(t, store) != 2 {
			t.Errorf("n = %d, count = %d", n, count(t, store))
		}
	})

	t.Run("not a directory", func(t *testing.T) {
		idx, _, _ := testIndexer(t)
		if _, err := idx.ImportDirectory(context.Background(), filepath.Join(dir, "vim.yaml"), nil, true); err == nil {
			t.Error("expected error")
		}
	})
}

func TestRemoveFile(t *testing.T) {
	dir := t.TempDir()
	idx, store, cat := testIndexer(t)
	ctx := context.Background()

	vim := filepath.Join(dir, "vim.yaml")
	chrome := filepath.Join(dir, "chrome.yaml")
	writeFile(t, vim, vimCatalog)
	writeFile(t, chrome, chromeCatalog)
	if _, err := idx.ImportDirectory(ctx, dir, nil, true); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(vim); err != nil {
		t.Fatal(err)
	}
	if err := idx.RemoveFile(ctx, vim); err != nil {
		t.Fatal(err)
	}
	if c := count(t, store); c != 1 {
		t.Errorf("Count = %d, want 1", c)
	}
	all, _ := store.Search(ctx, storage.StoreQuery{})
	if all[0].Source.URL != fileid.SourceURL(chrome) {
		t.Errorf("wrong record kept: %+v", all[0])
	}
	if hasTerm(cat, "split") {
		t.Error("removed catalog terms still indexed")
	}

	// Re-creating the file after removal imports it again.
	writeFile(t, vim, vimCatalog)
	if err := idx.ImportFile(ctx, vim, nil); err != nil {
		t.Fatal(err)
	}
	if c := count(t, store); c != 3 {
		t.Errorf("Count after re-import = %d, want 3", c)
	}
}

func TestNormalize(t *testing.T) {
	s := &models.Shortcut{
		App:      " vim ",
		Action:   "  Copy\t line\n down ",
		Context:  "normal   mode",
		Category: "",
		Keys:     models.Keys{Mac: " Cmd+C ", Linux: "Ctrl+c\n"},
		Tags:     []string{" Clipboard", "clipboard", "", "  ", "Text  Edit"},
	}
	Normalize(s)

	if s.App != "vim" || s.Action != "Copy line down" || s.Context != "normal mode" || s.Category != "" {
		t.Errorf("text fields = %q %q %q %q", s.App, s.Action, s.Context, s.Category)
	}
	if s.Keys.Mac != "Cmd+C" || s.Keys.Linux != "Ctrl+c" || s.Keys.Windows != "" {
		t.Errorf("keys = %+v", s.Keys)
	}
	want := []string{"clipboard", "text edit"}
	if len(s.Tags) != len(want) || s.Tags[0] != want[0] || s.Tags[1] != want[1] {
		t.Errorf("Tags = %q, want %q", s.Tags, want)
	}
}
