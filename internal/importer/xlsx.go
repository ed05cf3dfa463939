package importer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/kagi/internal/models"
)

// parseXLSX reads every sheet. The first row of a sheet is a header naming
// the columns (id, app, action, mac, windows, linux, context, category, tags,
// confidence); a sheet without an app column uses the sheet name as the app.
func parseXLSX(content []byte) (*catalog, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	cat := &catalog{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}
		cols := make(map[string]int, len(rows[0]))
		for i, h := range rows[0] {
			cols[strings.ToLower(strings.TrimSpace(h))] = i
		}
		if _, ok := cols["action"]; !ok {
			continue
		}
		for _, row := range rows[1:] {
			cell := func(name string) string {
				i, ok := cols[name]
				if !ok || i >= len(row) {
					return ""
				}
				return strings.TrimSpace(row[i])
			}
			rec := &models.Shortcut{
				ID:       cell("id"),
				App:      cell("app"),
				Action:   cell("action"),
				Keys:     models.Keys{Mac: cell("mac"), Windows: cell("windows"), Linux: cell("linux")},
				Context:  cell("context"),
				Category: cell("category"),
				Tags:     splitTags(cell("tags")),
			}
			if rec.App == "" {
				rec.App = sheet
			}
			if c, err := strconv.ParseFloat(cell("confidence"), 64); err == nil && c > 0 && c <= 1 {
				rec.Source = &models.Source{Kind: SourceKind, Confidence: c}
			}
			cat.Shortcuts = append(cat.Shortcuts, rec)
		}
	}
	return cat, nil
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
