package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// GrammarExt is the extension of grammar documents inside directories.
const GrammarExt = ".gtg"

// ErrNoGrammarFiles is returned when the grammar paths hold no documents.
var ErrNoGrammarFiles = errors.New("no grammar files found")

// ListGrammarFiles expands paths: a file is taken as is, a directory
// contributes every *.gtg below it in sorted order. Duplicates are dropped.
func ListGrammarFiles(paths []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		var batch []string
		if info.IsDir() {
			batch, err = walkFiles(p, "", func(path string) bool { return strings.HasSuffix(path, GrammarExt) })
			if err != nil {
				return nil, err
			}
		} else {
			batch = []string{p}
		}
		for _, f := range batch {
			clean := filepath.Clean(f)
			if !seen[clean] {
				seen[clean] = true
				out = append(out, clean)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoGrammarFiles, strings.Join(paths, ", "))
	}
	return out, nil
}

// ListSourceFiles returns the regular files below root whose extension is in
// exts (all files when exts is empty), skipping the skip directory.
func ListSourceFiles(root string, exts []string, skip string) ([]string, error) {
	return walkFiles(root, skip, func(path string) bool {
		return len(exts) == 0 || slices.Contains(exts, filepath.Ext(path))
	})
}

// walkFiles возвращает отсортированный список файлов, прошедших фильтр
func walkFiles(root, skip string, keep func(string) bool) ([]string, error) {
	skipAbs := ""
	if skip != "" {
		if abs, err := filepath.Abs(skip); err == nil {
			skipAbs = abs
		}
	}
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipAbs != "" {
				if abs, err := filepath.Abs(path); err == nil && abs == skipAbs {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if d.Type().IsRegular() && keep(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	slices.Sort(files)
	return files, nil
}
