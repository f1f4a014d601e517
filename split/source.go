package split

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"cssplit/archive"
	"cssplit/state"
)

// stylesheetFunc is called for every discovered stylesheet. data is UTF-8
// without BOM, src is path relative to processed input (always including
// file name).
type stylesheetFunc func(ctx context.Context, data []byte, src string) error

// failures counts stylesheets which could not be handled, processing of the
// rest continues.
type failures struct {
	seen, failed int
}

func (f *failures) err() error {
	if f.failed == 0 {
		return nil
	}
	return fmt.Errorf("unable to process %d of %d stylesheet(s)", f.failed, f.seen)
}

// walk determines what src is (stylesheet, directory, archive or path inside
// archive) and calls fn for every stylesheet found.
func walk(ctx context.Context, src string, fn stylesheetFunc, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exist - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			return walkDir(ctx, head, fn, log)
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			pathIn := filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			return walkArchive(ctx, head, pathIn, "", fn, log)
		}

		if len(tail) != 0 {
			return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}
		isCSS, enc, err := isStylesheetFile(head)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if !isCSS {
			return fmt.Errorf("input was not recognized as CSS stylesheet (%s)", head)
		}
		data, err := readFile(head, enc)
		if err != nil {
			return fmt.Errorf("unable to read stylesheet: %w", err)
		}
		return fn(ctx, data, filepath.Base(head))
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

// walkDir processes stylesheets and archives found under dir in natural
// order. Symbolic links are not followed.
func walkDir(ctx context.Context, dir string, fn stylesheetFunc, log *zap.Logger) error {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Sort(natural.StringSlice(paths))

	var stat failures
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		isArchive, err := isArchiveFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if isArchive {
			if err := walkArchive(ctx, path, "", filepath.Dir(rel), fn, log); err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
				stat.failed++
			}
			stat.seen++
			continue
		}

		isCSS, enc, err := isStylesheetFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if !isCSS {
			log.Debug("Skipping file, not recognized as stylesheet or archive", zap.String("file", path))
			continue
		}

		stat.seen++
		data, err := readFile(path, enc)
		if err == nil {
			err = fn(ctx, data, rel)
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			stat.failed++
		}
	}
	if stat.seen == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return stat.err()
}

// walkArchive processes stylesheets inside archive under pathIn. pathOut is
// prepended to names of stylesheets found.
func walkArchive(ctx context.Context, path, pathIn, pathOut string, fn stylesheetFunc, log *zap.Logger) error {
	cp := state.EnvFromContext(ctx).CodePage

	var stat failures
	err := archive.Walk(path, pathIn, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		isCSS, enc, err := isStylesheetInArchive(f)
		if err != nil {
			log.Warn("Skipping file in archive", zap.String("archive", arc), zap.String("path", f.Name), zap.Error(err))
			return nil
		}
		if !isCSS {
			log.Debug("Skipping file, not recognized as stylesheet", zap.String("archive", arc), zap.String("file", f.Name))
			return nil
		}

		stat.seen++
		name := f.Name
		if cp != nil && f.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(name); err == nil {
				name = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", name), zap.Error(err))
			}
		}

		data, err := readArchived(f, enc)
		if err == nil {
			err = fn(ctx, data, filepath.Join(pathOut, filepath.FromSlash(name)))
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Error("Unable to process file in archive", zap.String("archive", arc), zap.String("file", f.Name), zap.Error(err))
			stat.failed++
		}
		return nil
	})
	if err != nil {
		return err
	}
	if stat.seen == 0 {
		log.Debug("Nothing to process", zap.String("archive", path), zap.String("path", pathIn))
	}
	return stat.err()
}

func readFile(path string, enc srcEncoding) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(selectReader(f, enc))
}

func readArchived(f *zip.File, enc srcEncoding) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(selectReader(r, enc))
}
