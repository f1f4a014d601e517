package split

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cssplit/css"
	"cssplit/state"
)

// Part is a single produced stylesheet.
type Part struct {
	Number int
	Path   string
	Data   []byte
	Report css.Report // zero when verification is off
}

// splitStylesheet writes parts of a single stylesheet to dst. When parts is
// 0 number of parts is calculated. Parts are produced concurrently, every
// one of them walks the rules from the beginning.
func splitStylesheet(ctx context.Context, data []byte, src, dst string, parts int, env *state.LocalEnv, log *zap.Logger) ([]Part, error) {
	log = log.With(zap.String("source", src))

	rules := css.SplitIntoRules(string(data))
	if len(rules) == 0 {
		log.Warn("No rules found, nothing to split")
		return nil, nil
	}

	limit := env.MaxSelectors()
	stats := css.Measure(rules, limit)
	if parts <= 0 {
		parts = stats.Parts
	} else if parts < stats.Parts {
		log.Warn("Requested number of parts is not enough to hold all selectors",
			zap.Int("requested", parts), zap.Int("needed", stats.Parts))
	}

	log.Info("Splitting stylesheet", zap.Int("rules", stats.Rules), zap.Int("selectors", stats.Selectors),
		zap.Int("limit", limit), zap.Int("parts", parts))
	defer func(start time.Time) {
		log.Debug("Splitting completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	paths := make([]string, parts)
	seen := make(map[string]int, parts)
	for i := range parts {
		paths[i] = buildOutputPath(src, dst, i+1, parts, env)
		if prev, ok := seen[paths[i]]; ok {
			return nil, fmt.Errorf("output name template produces the same name for parts %d and %d: %s", prev, i+1, paths[i])
		}
		seen[paths[i]] = i + 1
	}

	splitter := css.NewSplitter(log)
	verifier := css.NewVerifier(log)

	results := make([]*Part, parts)
	errs := make([]error, parts)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(env.Jobs())
	for i := range parts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = producePart(rules, src, paths[i], i+1, splitter, verifier, env, log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	produced := make([]Part, 0, parts)
	for _, p := range results {
		if p != nil {
			produced = append(produced, *p)
		}
	}
	return produced, multierr.Combine(errs...)
}

// producePart returns nil part when it was empty and skipped.
func producePart(rules []string, src, path string, n int, splitter *css.Splitter, verifier *css.Verifier, env *state.LocalEnv, log *zap.Logger) (*Part, error) {
	out, ok := splitter.ExtractPart(rules, n, env.MaxSelectors())
	if !ok {
		return nil, fmt.Errorf("unable to extract part %d", n)
	}
	if len(strings.TrimSpace(out)) == 0 && !env.Cfg.Splitter.KeepEmptyParts {
		log.Warn("Part is empty, rule has more selectors than allowed in a part", zap.Int("part", n))
		return nil, nil
	}

	p := &Part{
		Number: n,
		Path:   path,
		Data:   []byte(out),
	}
	if err := writePart(p.Path, p.Data, env.Overwrite, log); err != nil {
		return nil, fmt.Errorf("unable to write part %d: %w", n, err)
	}

	if env.Cfg.Splitter.Verify {
		p.Report = verifier.Verify(p.Data)
		if p.Report.Selectors > env.MaxSelectors() {
			log.Warn("Part exceeds selector limit", zap.Int("part", n), zap.String("file", p.Path),
				zap.Int("selectors", p.Report.Selectors), zap.Int("limit", env.MaxSelectors()))
		}
		if !p.Report.Balanced {
			log.Warn("Part has unbalanced braces", zap.Int("part", n), zap.String("file", p.Path))
		}
	}

	env.Rpt.StoreData(filepath.ToSlash(filepath.Join("parts", src, filepath.Base(p.Path))), p.Data)
	log.Debug("Part written", zap.Int("part", n), zap.String("file", p.Path), zap.Int("size", len(p.Data)))
	return p, nil
}

func writePart(name string, data []byte, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(name); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Warn("Overwriting existing file", zap.String("file", name))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return os.WriteFile(name, data, 0644)
}
