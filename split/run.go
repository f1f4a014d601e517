// Package split implements "split" and "count" commands.
package split

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"cssplit/state"
)

// Run is "split" command action.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("split")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	if err := applyOverrides(cmd, env); err != nil {
		return err
	}
	parts := cmd.Int("parts")
	if parts < 0 {
		return fmt.Errorf("number of parts must not be negative: %d", parts)
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")
	selectCodePage(cmd.String("force-zip-cp"), env, log)

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst),
		zap.Int("max_selectors", env.MaxSelectors()), zap.Int("jobs", env.Jobs()))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return walk(ctx, src, func(ctx context.Context, data []byte, name string) error {
		produced, err := splitStylesheet(ctx, data, name, dst, parts, env, log)
		if len(produced) > 0 {
			log.Info("Stylesheet split", zap.String("source", name), zap.Int("files", len(produced)))
		}
		return err
	}, log)
}

// applyOverrides puts command line values over configuration.
func applyOverrides(cmd *cli.Command, env *state.LocalEnv) error {
	if cmd.IsSet("max-selectors") {
		n := cmd.Int("max-selectors")
		if n < 1 {
			return fmt.Errorf("maximum number of selectors must be positive: %d", n)
		}
		env.Cfg.Splitter.MaxSelectors = n
	}
	if cmd.IsSet("jobs") {
		n := cmd.Int("jobs")
		if n < 0 {
			return fmt.Errorf("number of jobs must not be negative: %d", n)
		}
		env.Cfg.Splitter.Jobs = n
	}
	return nil
}

// Since zip "standard" does not define file name encoding we may need to
// force archaic code page for old archives.
func selectCodePage(cp string, env *state.LocalEnv, log *zap.Logger) {
	if len(cp) == 0 {
		return
	}
	enc, err := ianaindex.IANA.Encoding(cp)
	if err != nil || enc == nil {
		log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
		env.CodePage = nil
		return
	}
	env.CodePage = enc
	n, _ := ianaindex.IANA.Name(enc)
	log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
}
