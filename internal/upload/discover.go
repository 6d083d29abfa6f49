package upload

import (
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
)

// Discover walks root depth-first in lexical order and returns the
// slash-separated paths, relative to root, of every file whose name ends
// with ext (case-insensitive; empty ext keeps all files). Unreadable
// subdirectories are logged and skipped; only an unreadable root fails.
func Discover(root, ext string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			log.Printf("[upload] skip %s: %v", p, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if ext != "" && !strings.HasSuffix(strings.ToLower(d.Name()), strings.ToLower(ext)) {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}
