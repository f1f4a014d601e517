package split

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"cssplit/config"
	"cssplit/state"
)

const outputExt = ".css"

// buildOutputPath returns path of the part file. src is source path relative
// to the processed input (always including file name), dst is destination
// directory. Name comes from the configured template, falling back to
// default naming when the template cannot be expanded. Template may produce
// subdirectories.
func buildOutputPath(src, dst string, part, parts int, env *state.LocalEnv) string {
	outDir := determineOutputDir(src, dst, env)

	values := Values{
		Name:   strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		Source: filepath.ToSlash(src),
		Part:   part,
		Parts:  parts,
	}

	expanded, err := expandTemplate(config.OutputNameTemplateFieldName, env.Cfg.Splitter.OutputNameTemplate, values)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename, using default", zap.Error(err))
		expanded = ""
	}

	segments := splitPath(filepath.FromSlash(strings.TrimSpace(expanded)))
	if len(segments) == 0 {
		return filepath.Join(outDir, defaultFileName(values, env))
	}

	dirParts := make([]string, 0, len(segments)+1)
	dirParts = append(dirParts, outDir)
	for _, segment := range segments[:len(segments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, env))
	}
	dirParts = append(dirParts, cleanPathSegment(segments[len(segments)-1], env)+outputExt)
	return filepath.Join(dirParts...)
}

func determineOutputDir(src, dst string, env *state.LocalEnv) string {
	if env.NoDirs {
		return dst
	}
	return filepath.Join(dst, filepath.Dir(src))
}

// defaultFileName mirrors default template: "<name>_split<part>.css"
func defaultFileName(values Values, env *state.LocalEnv) string {
	return cleanPathSegment(fmt.Sprintf("%s_split%d", values.Name, values.Part), env) + outputExt
}

func splitPath(path string) []string {
	segments := make([]string, 0, 8)
	for _, s := range strings.Split(path, string(os.PathSeparator)) {
		if s == "" || s == "." {
			continue
		}
		segments = append(segments, s)
	}
	return slices.Clip(segments)
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Splitter.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
