package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Footprint is the disk space held by a shortcut database and the catalog
// files it is imported from.
type Footprint struct {
	// DatabaseBytes includes the SQLite -wal and -shm files.
	DatabaseBytes int64 `json:"database_bytes"`
	CatalogFiles  int   `json:"catalog_files"`
	CatalogBytes  int64 `json:"catalog_bytes"`
}

// MeasureFootprint sizes the database at dbPath and the catalog files under
// dirs. match selects catalog files by path; nil counts every regular file.
// In-memory databases and missing paths count as zero.
func MeasureFootprint(dbPath string, dirs []string, match func(path string) bool) (Footprint, error) {
	var fp Footprint
	if dbPath != "" && dbPath != ":memory:" {
		for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
			info, err := os.Stat(p)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return Footprint{}, err
			}
			fp.DatabaseBytes += info.Size()
		}
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if !d.Type().IsRegular() || (match != nil && !match(path)) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			fp.CatalogFiles++
			fp.CatalogBytes += info.Size()
			return nil
		})
		if err != nil {
			return Footprint{}, err
		}
	}
	return fp, nil
}
