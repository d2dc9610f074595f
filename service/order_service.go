package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"gator/command"
	"gator/domain/schedule"
	"gator/infra/events"
	"gator/infra/metrics"
	"gator/infra/sequence"
	entrywal "gator/infra/wal/entry"
	exitwal "gator/infra/wal/exit"
	"gator/snapshot"
)

// ErrClosed is returned for every call made after Quit or Close.
var ErrClosed = errors.New("order service closed")

// Notifier publishes ETA-update events.
type Notifier interface {
	Send(ctx context.Context, key, value []byte) error
}

// Options wires optional collaborators. Nil fields are disabled.
type Options struct {
	Journal   *entrywal.WAL
	Outbox    *exitwal.Outbox
	Notifier  Notifier
	Encoder   events.Encoder
	Metrics   *metrics.Metrics
	Snapshots *snapshot.Writer
	Logger    logr.Logger
}

type OrderService struct {
	mu     sync.Mutex
	sched  *schedule.Scheduler
	closed bool

	journal    *entrywal.WAL
	journalSeq *sequence.Sequencer
	outbox     *exitwal.Outbox
	outboxSeq  *sequence.Sequencer
	notifier   Notifier
	encoder    events.Encoder
	metrics    *metrics.Metrics
	snapshots  *snapshot.Writer
	log        logr.Logger
}

// NewOrderService wires a fresh scheduler to opts. The outbox sequence
// resumes after the highest key already stored.
func NewOrderService(opts Options) (*OrderService, error) {
	s := &OrderService{
		sched:      schedule.New(),
		journal:    opts.Journal,
		journalSeq: sequence.New(0),
		outbox:     opts.Outbox,
		outboxSeq:  sequence.New(0),
		notifier:   opts.Notifier,
		encoder:    opts.Encoder,
		metrics:    opts.Metrics,
		snapshots:  opts.Snapshots,
		log:        opts.Logger,
	}
	if s.encoder == nil {
		s.encoder = events.ProtoEncoder{}
	}
	if s.metrics == nil {
		s.metrics = metrics.New(nil)
	}
	if s.log.GetSink() == nil {
		s.log = logr.Discard()
	}

	if s.outbox != nil {
		last, err := s.outbox.LastSeq()
		if err != nil {
			return nil, errors.Wrap(err, "resume outbox sequence")
		}
		s.outboxSeq.Resume(last)
	}
	return s, nil
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// effects collects what a command produced besides its output lines.
type effects struct {
	updated   []schedule.ETAUpdate
	delivered []schedule.Delivery
	rejected  bool
}

// Execute runs one command and returns its output lines. Scheduler
// rejections are reported as lines, not errors.
func (s *OrderService) Execute(ctx context.Context, cmd command.Command) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	start := time.Now()
	if cmd.Kind.Journaled() {
		s.journalCommand(cmd)
	}

	lines, fx := s.dispatch(cmd)

	s.metrics.RecordCommand(cmd.Kind.String(), time.Since(start).Seconds())
	if fx.rejected {
		s.metrics.RecordRejected(cmd.Kind.String())
	}
	if len(fx.updated) > 0 {
		s.metrics.RecordETAUpdates(len(fx.updated))
		s.notify(ctx, cmd, fx.updated)
	}
	if len(fx.delivered) > 0 {
		s.metrics.RecordDelivered(len(fx.delivered))
		s.publish(fx.delivered)
	}
	s.metrics.SetActiveOrders(s.sched.Len())

	s.log.V(1).Info("command executed", "cmd", cmd.String(), "lines", len(lines), "rejected", fx.rejected)

	if cmd.Kind == command.Quit {
		s.shutdown()
	}
	return lines, nil
}

func (s *OrderService) dispatch(cmd command.Command) ([]string, effects) {
	var fx effects

	switch cmd.Kind {
	case command.CreateOrder:
		res, err := s.sched.Create(cmd.Arg(0), cmd.Arg(1), cmd.Arg(2), cmd.Arg(3))
		fx.updated, fx.delivered, fx.rejected = res.Updated, res.Delivered, err != nil
		return command.Created(res, err), fx

	case command.CancelOrder:
		res, err := s.sched.Cancel(cmd.Arg(0), cmd.Arg(1))
		fx.updated, fx.rejected = res.Updated, err != nil
		return command.Canceled(res, err), fx

	case command.UpdateTime:
		res, err := s.sched.UpdateDuration(cmd.Arg(0), cmd.Arg(1), cmd.Arg(2))
		fx.updated, fx.rejected = res.Updated, err != nil
		return command.Rescheduled(res, err), fx

	case command.PrintRange:
		return command.Range(s.sched.RangeByETA(cmd.Arg(0), cmd.Arg(1))), fx

	case command.PrintOrder:
		o, err := s.sched.Lookup(cmd.Arg(0))
		return command.Order(cmd.Arg(0), o, err), fx

	case command.GetRankOfOrder:
		rank, err := s.sched.RankByETA(cmd.Arg(0))
		return command.Rank(cmd.Arg(0), rank, err), fx

	case command.Quit:
		fx.delivered = s.sched.DrainAll()
		return command.Delivered(fx.delivered), fx
	}

	s.log.Error(nil, "unhandled command kind", "kind", cmd.Kind)
	return nil, fx
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

// Lookup returns a copy of an active order.
func (s *OrderService) Lookup(id int64) (schedule.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return schedule.Order{}, ErrClosed
	}
	return s.sched.Lookup(id)
}

// Closed reports whether Quit or Close has run.
func (s *OrderService) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops accepting commands and closes the journal. It does not
// write a snapshot; only Quit does.
func (s *OrderService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.closeJournal()
}

//
// ──────────────────────────────────────────────────────────
// Side effects
// ──────────────────────────────────────────────────────────
//

func (s *OrderService) journalCommand(cmd command.Command) {
	if s.journal == nil {
		return
	}
	rec := entrywal.NewRecord(recordType(cmd.Kind), s.journalSeq.Next(), []byte(cmd.String()))
	if err := s.journal.Append(rec); err != nil {
		s.log.Error(err, "journal append failed", "cmd", cmd.String(), "seq", rec.Seq)
	}
}

// publish records each delivery in the outbox for the broadcaster.
func (s *OrderService) publish(ds []schedule.Delivery) {
	if s.outbox == nil {
		return
	}
	for _, d := range ds {
		seq := s.outboxSeq.Next()
		payload, err := s.encoder.Encode(events.Delivered(seq, d))
		if err == nil {
			err = s.outbox.Put(seq, payload)
		}
		if err != nil {
			s.log.Error(err, "outbox put failed", "order", d.ID, "seq", seq)
		}
	}
}

func (s *OrderService) notify(ctx context.Context, cmd command.Command, updates []schedule.ETAUpdate) {
	if s.notifier == nil {
		return
	}
	payload, err := s.encoder.Encode(events.ETAUpdated(cmd.String(), cmd.Arg(1), updates))
	if err == nil {
		key := []byte(strconv.FormatInt(cmd.Arg(0), 10))
		err = s.notifier.Send(ctx, key, payload)
	}
	if err != nil {
		s.log.Error(err, "eta notification failed", "cmd", cmd.String())
	}
}

// shutdown runs after Quit: snapshot the final schedule, then close.
func (s *OrderService) shutdown() {
	if s.snapshots != nil {
		if err := s.snapshots.Write(s.journalSeq.Current(), s.sched.Active()); err != nil {
			s.log.Error(err, "snapshot write failed", "dir", s.snapshots.Dir)
		} else {
			s.log.Info("snapshot written", "path", s.snapshots.Path(), "orders", s.sched.Len())
		}
	}
	s.closed = true
	if err := s.closeJournal(); err != nil {
		s.log.Error(err, "journal close failed")
	}
}

func (s *OrderService) closeJournal() error {
	if s.journal == nil {
		return nil
	}
	j := s.journal
	s.journal = nil
	return j.Close()
}

func recordType(k command.Kind) entrywal.RecordType {
	switch k {
	case command.CreateOrder:
		return entrywal.RecordCreate
	case command.CancelOrder:
		return entrywal.RecordCancel
	case command.UpdateTime:
		return entrywal.RecordUpdate
	default:
		return entrywal.RecordQuit
	}
}
