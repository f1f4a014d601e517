// Package archive walks stylesheets stored in zip archives.
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/maruel/natural"
)

// WalkFunc is called for every stylesheet Walk visits. archive is the path
// passed to Walk. Returning an error stops the walk.
type WalkFunc func(archive string, file *zip.File) error

// IsStylesheet reports whether name looks like a CSS file.
func IsStylesheet(name string) bool {
	return strings.EqualFold(path.Ext(name), ".css")
}

// Walk visits stylesheets under prefix in natural name order, so that
// "site2.css" comes before "site10.css". Archives with entries escaping
// extraction directory are rejected as a whole.
func Walk(archive, prefix string, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	files := make([]*zip.File, 0, len(r.File))
	for _, f := range r.File {
		if !isSafePath(f.Name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}
		if f.FileInfo().IsDir() || !underPrefix(f.Name, prefix) || !IsStylesheet(f.Name) {
			continue
		}
		files = append(files, f)
	}
	slices.SortFunc(files, func(a, b *zip.File) int {
		switch {
		case natural.Less(a.Name, b.Name):
			return -1
		case natural.Less(b.Name, a.Name):
			return 1
		}
		return 0
	})

	for _, f := range files {
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

// underPrefix reports whether name is prefix itself or lies in prefix
// directory. Prefix is matched on path segment boundary.
func underPrefix(name, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	return prefix == "" || name == prefix || strings.HasPrefix(name, prefix+"/")
}

func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	return !slices.Contains(strings.Split(name, "/"), "..")
}
