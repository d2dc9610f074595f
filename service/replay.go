package service

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"gator/command"
	entrywal "gator/infra/wal/entry"
)

// ReplayJournal re-runs every journaled command in dir against a fresh
// scheduler with no side effects and returns the resulting transcript.
// Queries are not journaled, so only mutation output and the final Quit
// lines are reproduced.
func ReplayJournal(ctx context.Context, dir string, logger logr.Logger) ([]string, error) {
	svc, err := NewOrderService(Options{Logger: logger})
	if err != nil {
		return nil, err
	}

	var out []string
	lastSeq, err := entrywal.Replay(dir, func(rec *entrywal.Record) error {
		cmd, err := command.Parse(string(rec.Data))
		if err != nil {
			return errors.Wrapf(err, "journal seq %d", rec.Seq)
		}
		if !cmd.Kind.Journaled() || recordType(cmd.Kind) != rec.Type {
			return errors.Newf("journal seq %d: %s record holds %s", rec.Seq, rec.Type, cmd.Kind)
		}

		lines, err := svc.Execute(ctx, cmd)
		if err != nil {
			return errors.Wrapf(err, "journal seq %d", rec.Seq)
		}
		out = append(out, lines...)
		return nil
	})
	if err != nil {
		return out, err
	}

	logger.Info("journal replay completed", "dir", dir, "lastSeq", lastSeq, "lines", len(out))
	return out, nil
}
