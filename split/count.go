package split

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"cssplit/css"
	"cssplit/state"
)

// Count is "count" command action. It prints selector totals for every
// stylesheet found. In strict mode stylesheets are recounted with the CSS
// parser as well and the command fails when any of them exceeds the limit.
func Count(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("count")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	if err := applyOverrides(cmd, env); err != nil {
		return err
	}
	selectCodePage(cmd.String("force-zip-cp"), env, log)

	tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
	c := &counter{
		out:      tw,
		strict:   cmd.Bool("strict"),
		limit:    env.MaxSelectors(),
		verifier: css.NewVerifier(log),
	}
	c.header()

	err = walk(ctx, src, c.count, log)
	if ferr := tw.Flush(); err == nil && ferr != nil {
		err = fmt.Errorf("unable to write results: %w", ferr)
	}
	if err != nil {
		return err
	}
	if c.strict && c.over > 0 {
		return fmt.Errorf("%d stylesheet(s) exceed limit of %d selectors", c.over, c.limit)
	}
	return nil
}

type counter struct {
	out      io.Writer
	strict   bool
	limit    int
	verifier *css.Verifier
	over     int
}

func (c *counter) header() {
	if c.strict {
		fmt.Fprintln(c.out, "SOURCE\tRULES\tSELECTORS\tVERIFIED\tPARTS")
		return
	}
	fmt.Fprintln(c.out, "SOURCE\tRULES\tSELECTORS\tPARTS")
}

func (c *counter) count(_ context.Context, data []byte, src string) error {
	rules := css.SplitIntoRules(string(data))
	total, ok := css.CountAll(rules)
	if !ok {
		fmt.Fprintf(c.out, "%s\t0\t-\t", src)
		if c.strict {
			fmt.Fprint(c.out, "-\t")
		}
		fmt.Fprintln(c.out, "0")
		return nil
	}
	stats := css.Measure(rules, c.limit)

	if !c.strict {
		fmt.Fprintf(c.out, "%s\t%d\t%d\t%d\n", src, stats.Rules, total, stats.Parts)
		return nil
	}

	rpt := c.verifier.Verify(data)
	if max(stats.Selectors, rpt.Selectors) > c.limit {
		c.over++
	}
	fmt.Fprintf(c.out, "%s\t%d\t%d\t%d\t%d\n", src, stats.Rules, total, rpt.Selectors, stats.Parts)
	return nil
}
