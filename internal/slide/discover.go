package slide

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindSlides walks the data root and collects every slide it can serve:
// document files matching one of exts, and pyramid directories (any
// directory holding a level_0 image). Results come back sorted so runs
// process slides in a stable order.
func FindSlides(root string, exts []string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root {
				if _, ok := levelPath(path, 0); ok {
					found = append(found, path)
					return filepath.SkipDir
				}
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		for _, e := range exts {
			if ext == strings.ToLower(e) {
				found = append(found, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}

// Open picks the Source implementation for a discovered slide path:
// directories become PyramidSources, files go through fitz.
func Open(path string, baseDPI float64) (Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return NewPyramidSource(path)
	}
	return NewFitzSource(path, baseDPI)
}
