// Package script drives the order service from a line-oriented command
// stream, such as an input file, writing one output line per result line.
package script

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"gator/command"
)

// Executor runs one parsed command.
type Executor interface {
	Execute(ctx context.Context, cmd command.Command) ([]string, error)
}

type Runner struct {
	exec Executor
	log  logr.Logger
}

func NewRunner(exec Executor, logger logr.Logger) *Runner {
	return &Runner{exec: exec, log: logger}
}

// Run reads commands from r until EOF or Quit and writes their output to
// w. Blank lines are ignored; lines that do not parse are logged and
// skipped.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	bw := bufio.NewWriter(out)
	lineNo := 0

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		cmd, err := command.Parse(line)
		if err != nil {
			r.log.Error(err, "skipping unparsable line", "line", lineNo)
			continue
		}

		lines, err := r.exec.Execute(ctx, cmd)
		if err != nil {
			return errors.Wrapf(err, "line %d", lineNo)
		}
		for _, l := range lines {
			if _, err := fmt.Fprintln(bw, l); err != nil {
				return errors.Wrap(err, "write output")
			}
		}

		if cmd.Kind == command.Quit {
			r.log.V(1).Info("quit received", "line", lineNo)
			break
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "read input")
	}
	return bw.Flush()
}
