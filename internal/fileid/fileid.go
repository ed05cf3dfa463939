// Package fileid derives stable identifiers for imported catalog files and
// the shortcut records they contain.
package fileid

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// namespace is the UUID v5 namespace for shortcut record IDs.
var namespace = uuid.MustParse("6f0c2b8e-3c1a-5d7e-9f42-8a1b7c3d9e10")

// SourceURL returns the file:// URL recorded as the provenance of records
// imported from absolutePath. Equivalent spellings of a path yield the same URL.
func SourceURL(absolutePath string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Clean(absolutePath))}
	return u.String()
}

// ShortcutID returns a deterministic ID for a record without one. The same
// app, context and action always yield the same ID, ignoring case and
// surrounding whitespace, so re-importing a catalog replaces its records.
func ShortcutID(app, context, action string) string {
	key := strings.Join([]string{norm(app), norm(context), norm(action)}, "\x00")
	return uuid.NewSHA1(namespace, []byte(key)).String()
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
