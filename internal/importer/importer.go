// Package importer reads shortcut catalogs from YAML, JSON and XLSX files.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/kagi/internal/fileid"
	"github.com/hyperjump/kagi/internal/models"
)

// SourceKind marks records created by the importer.
const SourceKind = "import"

// DefaultConfidence is assigned to imported records that carry no confidence.
const DefaultConfidence = 1.0

// catalog is the on-disk layout of a YAML or JSON catalog. A file may also be
// a bare list of shortcuts.
type catalog struct {
	App       string             `json:"app" yaml:"app"`
	Category  string             `json:"category" yaml:"category"`
	Shortcuts []*models.Shortcut `json:"shortcuts" yaml:"shortcuts"`
}

// Importer parses catalog files into shortcut records.
type Importer struct {
	now func() time.Time
}

// New returns an Importer.
func New() *Importer {
	return &Importer{now: time.Now}
}

// Supported reports whether ext (with or without the dot) is a catalog format.
func Supported(ext string) bool {
	switch normExt(ext) {
	case "yaml", "yml", "json", "xlsx":
		return true
	default:
		return false
	}
}

// ExtensionAllowed reports whether ext is in allowed. An empty list allows every supported format.
func ExtensionAllowed(ext string, allowed []string) bool {
	if len(allowed) == 0 {
		return Supported(ext)
	}
	e := normExt(ext)
	for _, a := range allowed {
		if normExt(a) == e {
			return true
		}
	}
	return false
}

func normExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ImportFile reads the catalog at path. Records are stamped with the file's
// source URL and modification time.
func (im *Importer) ImportFile(path string) ([]*models.Shortcut, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", absPath)
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	recs, err := im.Parse(content, filepath.Ext(absPath), fileid.SourceURL(absPath))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(absPath), err)
	}
	mtime := info.ModTime().UTC()
	for _, r := range recs {
		if r.Source.Kind == SourceKind && r.Source.CapturedAt == nil {
			r.Source.CapturedAt = &mtime
		}
	}
	return recs, nil
}

// Parse decodes content of the given extension. sourceURL is recorded as the
// provenance of every record that does not declare its own.
func (im *Importer) Parse(content []byte, ext, sourceURL string) ([]*models.Shortcut, error) {
	var (
		cat *catalog
		err error
	)
	switch normExt(ext) {
	case "yaml", "yml":
		cat, err = parseYAML(content)
	case "json":
		cat, err = parseJSON(content)
	case "xlsx":
		cat, err = parseXLSX(content)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return im.finalize(cat, sourceURL), nil
}

// finalize fills inherited fields, IDs and provenance, and drops records
// without an action or owning application.
func (im *Importer) finalize(cat *catalog, sourceURL string) []*models.Shortcut {
	out := make([]*models.Shortcut, 0, len(cat.Shortcuts))
	seen := make(map[string]struct{}, len(cat.Shortcuts))
	for _, r := range cat.Shortcuts {
		if r == nil {
			continue
		}
		r.Action = strings.TrimSpace(r.Action)
		r.App = strings.TrimSpace(r.App)
		if r.App == "" {
			r.App = cat.App
		}
		if r.Category == "" {
			r.Category = cat.Category
		}
		if r.Action == "" || r.App == "" {
			continue
		}
		if r.ID == "" {
			r.ID = fileid.ShortcutID(r.App, r.Context, r.Action)
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		if r.Source == nil {
			r.Source = &models.Source{Kind: SourceKind, URL: sourceURL}
		}
		if r.Source.URL == "" {
			r.Source.URL = sourceURL
		}
		if r.Source.Confidence == 0 {
			r.Source.Confidence = DefaultConfidence
		}
		out = append(out, r)
	}
	return out
}
