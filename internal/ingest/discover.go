package ingest

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Discover walks root and returns every regular file whose extension matches ext,
// case-insensitively, sorted by path. ext may be given with or without the dot.
func Discover(root, ext string) ([]string, error) {
	ext = "." + strings.TrimPrefix(strings.ToLower(ext), ".")

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) == ext {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}
