// Command gatordelivery runs a command file through the scheduler and
// writes the transcript next to it as <base>_output_file.txt.
//
//	gatordelivery [flags] <input.txt>
//	gatordelivery replay --journal-dir <dir>
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"gator/api/script"
	"gator/infra/config"
	"gator/infra/events"
	"gator/infra/kafka"
	"gator/infra/logging"
	entrywal "gator/infra/wal/entry"
	exitwal "gator/infra/wal/exit"
	"gator/service"
	"gator/snapshot"
)

func main() {
	args := os.Args[1:]
	replay := len(args) > 0 && args[0] == "replay"
	if replay {
		args = args[1:]
	}

	cfg, err := config.Load("gatordelivery", args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx := context.Background()
	if replay {
		err = runReplay(ctx, cfg, logger)
	} else {
		err = runFile(ctx, cfg, logger)
	}
	if err != nil {
		logger.Error(err, "gatordelivery failed")
		logging.Sync(logger)
		os.Exit(1)
	}
	logging.Sync(logger)
}

// OutputPath names the transcript for input: everything before the first
// dot of the file name, plus _output_file.txt.
func OutputPath(input string) string {
	dir, base := filepath.Split(input)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return filepath.Join(dir, base+"_output_file.txt")
}

func runFile(ctx context.Context, cfg *config.Config, logger logr.Logger) error {
	if len(cfg.Args) != 1 {
		return errors.New("usage: gatordelivery [flags] <input.txt>")
	}
	input := cfg.Args[0]

	in, err := os.Open(input)
	if err != nil {
		return errors.Wrap(err, "open input")
	}
	defer in.Close()

	svc, cleanup, err := newService(cfg, logger)
	defer cleanup()
	if err != nil {
		return err
	}

	outPath := OutputPath(input)
	out, err := os.Create(outPath)
	if err != nil {
		return errors.Wrap(err, "create output")
	}

	if err := script.NewRunner(svc, logger.WithName("script")).Run(ctx, in, out); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return errors.Wrap(err, "close output")
	}

	logger.Info("transcript written", "output", outPath)
	return nil
}

func runReplay(ctx context.Context, cfg *config.Config, logger logr.Logger) error {
	if cfg.JournalDir == "" {
		return errors.New("usage: gatordelivery replay --journal-dir <dir>")
	}
	lines, err := service.ReplayJournal(ctx, cfg.JournalDir, logger.WithName("replay"))
	for _, l := range lines {
		fmt.Println(l)
	}
	return err
}

func newService(cfg *config.Config, logger logr.Logger) (*service.OrderService, func(), error) {
	var closers []func() error
	var journal *entrywal.WAL
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Error(err, "cleanup failed")
			}
		}
	}

	opts := service.Options{Logger: logger.WithName("service")}

	var err error
	if opts.Encoder, err = events.NewEncoder(cfg.EventFormat); err != nil {
		return nil, cleanup, err
	}

	if cfg.JournalDir != "" {
		opts.Journal, err = entrywal.Open(entrywal.Config{
			Dir:         cfg.JournalDir,
			SegmentSize: cfg.JournalSegmentSize,
			Overwrite:   cfg.JournalOverwrite,
		})
		if err != nil {
			return nil, cleanup, err
		}
		journal = opts.Journal
	}
	if cfg.OutboxDir != "" {
		if opts.Outbox, err = exitwal.Open(cfg.OutboxDir); err != nil {
			closeJournal(journal)
			return nil, cleanup, err
		}
		closers = append(closers, opts.Outbox.Close)
	}
	if cfg.SnapshotDir != "" {
		opts.Snapshots = &snapshot.Writer{Dir: cfg.SnapshotDir}
	}
	if len(cfg.KafkaBrokers) > 0 {
		p := kafka.NewProducer(cfg.KafkaBrokers, cfg.ETATopic)
		closers = append(closers, p.Close)
		opts.Notifier = p
	}

	svc, err := service.NewOrderService(opts)
	if err != nil {
		closeJournal(journal)
		return nil, cleanup, err
	}
	closers = append(closers, svc.Close)
	return svc, cleanup, nil
}

// closeJournal releases a journal the service never took ownership of.
func closeJournal(j *entrywal.WAL) {
	if j != nil {
		_ = j.Close()
	}
}
