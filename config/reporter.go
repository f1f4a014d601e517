package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"cssplit/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty report.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	r := &Report{entries: make(map[string]entry)}

	if f, err := os.Create(conf.Destination); err == nil {
		r.file = f
	} else if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err == nil {
		r.file = f
	} else {
		return nil, fmt.Errorf("unable to create report: %w", err)
	}
	return r, nil
}

type entry struct {
	original string
	actual   string
	stamp    time.Time
	data     []byte
	scratch  bool // actual is our own copy and should be removed afterwards
}

// Report accumulates everything necessary to prepare debug report archive.
// Parts are produced concurrently, so all methods are safe to call from
// several goroutines. All methods could be called on nil report, which
// means no report was requested.
type Report struct {
	mu      sync.Mutex
	entries map[string]entry
	file    *os.File
}

// Close writes report archive and removes temporary copies.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	defer r.file.Close()
	defer r.cleanup()
	return r.finalize()
}

// Name returns absolute name of the report archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store remembers path to file or directory to be put in the archive on
// Close. Content is read at that time.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, exists := r.entries[name]; exists && old.original != path {
		panic(fmt.Sprintf("Attempt to overwrite file in the report for [%s]: was %s, now %s", name, old.original, path))
	}

	e := entry{original: path, actual: path}
	if p, err := filepath.Abs(path); err == nil {
		e.actual = p
	}
	r.entries[name] = e
}

// StoreData puts data into archive under requested name. Repeated names
// are versioned.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e := entry{data: slices.Clone(data), stamp: time.Now()}
	r.entries[r.uniqueName(name, e.stamp)] = e
}

// StoreCopy copies file or directory at the moment of the call, so later
// changes to the original do not affect the report.
func (r *Report) StoreCopy(name, path string) error {
	if r == nil {
		return nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", misc.GetAppName()+"-r-")
	if err != nil {
		return err
	}

	e := entry{original: path, stamp: time.Now(), scratch: true}
	switch {
	case info.Mode().IsRegular():
		where, err := copyFile(dir, absPath, info.ModTime())
		if err != nil {
			os.RemoveAll(dir)
			return err
		}
		e.actual = where
	case info.Mode().IsDir():
		if err := copyDir(dir, absPath); err != nil {
			os.RemoveAll(dir)
			return err
		}
		e.actual = dir
	default:
		os.RemoveAll(dir)
		return fmt.Errorf("unable to copy %s into report: not a regular file or directory", path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.uniqueName(name, e.stamp)] = e
	return nil
}

// uniqueName must be called with lock held.
func (r *Report) uniqueName(name string, stamp time.Time) string {
	if _, exists := r.entries[name]; exists {
		return fmt.Sprintf("%s-%d", name, stamp.UnixNano())
	}
	return name
}

func (r *Report) cleanup() {
	for _, e := range r.entries {
		if !e.scratch {
			continue
		}
		if info, err := os.Stat(e.actual); err == nil && !info.IsDir() {
			os.RemoveAll(filepath.Dir(e.actual))
			continue
		}
		os.RemoveAll(e.actual)
	}
}

func copyFile(dir, src string, modTime time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, filepath.Base(src))

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dst, os.Chtimes(dst, modTime, modTime)
}

func copyDir(dir, src string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		_, err = copyFile(filepath.Dir(filepath.Join(dir, rel)), path, info.ModTime())
		return err
	})
}

// finalize must be called with lock held.
func (r *Report) finalize() error {
	arc := zip.NewWriter(r.file)
	defer arc.Close()

	names := slices.Sorted(maps.Keys(r.entries))
	if err := saveFile(arc, "MANIFEST", time.Now(), manifest(names, r.entries)); err != nil {
		return err
	}

	for _, name := range names {
		e := r.entries[name]
		if e.data != nil {
			if err := saveFile(arc, name, e.stamp, bytes.NewReader(e.data)); err != nil {
				return err
			}
			continue
		}

		// absent files are ignored
		info, err := os.Stat(e.actual)
		if err != nil {
			continue
		}
		switch {
		case info.Mode().IsRegular():
			if err := savePath(arc, name, e.actual, info.ModTime()); err != nil {
				return err
			}
		case info.Mode().IsDir():
			if err := saveDir(arc, name, e.actual); err != nil {
				return err
			}
		}
	}
	return nil
}

func manifest(names []string, entries map[string]entry) *bytes.Buffer {
	now := time.Now()
	buf := new(bytes.Buffer)
	for _, k := range names {
		e := entries[k]
		if e.stamp.IsZero() {
			e.stamp = now
		}
		fmt.Fprintf(buf, "%s\t%s\t%s : %s\n", e.stamp.UTC().Format(time.UnixDate), k, e.original, e.actual)
	}
	return buf
}

func saveFile(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func savePath(dst *zip.Writer, name, path string, t time.Time) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return saveFile(dst, name, t, f)
}

func saveDir(dst *zip.Writer, name, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return savePath(dst, filepath.ToSlash(filepath.Join(name, rel)), path, info.ModTime())
	})
}
