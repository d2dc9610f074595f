package service

import (
	"context"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr/testr"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gator/command"
	"gator/infra/events"
	"gator/infra/metrics"
	entrywal "gator/infra/wal/entry"
	exitwal "gator/infra/wal/exit"
	"gator/snapshot"
)

type sentMessage struct {
	key, value []byte
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, key, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{key: key, value: value})
	return f.err
}

var session = []struct {
	line string
	want []string
}{
	{"createOrder(1, 0, 50, 10)", []string{"Order 1 has been created - ETA: 10"}},
	{"createOrder(2, 0, 25, 5)", []string{"Order 2 has been created - ETA: 25"}},
	{"createOrder(3, 0, 40, 4)", []string{"Order 3 has been created - ETA: 24", "Updated ETAs: [2: 33]"}},
	{"print(10, 24)", []string{"Orders to be delivered: [1, 3]"}},
	{"getRankOfOrder(2)", []string{"Order 2 will be delivered after 2 orders."}},
	{"print(3)", []string{"[3, 0, 40, 4, 24]"}},
	{"cancelOrder(3, 1)", []string{"Order 3 has been canceled", "Updated ETAs: [2: 25]"}},
	{"updateTime(2, 2, 7)", []string{"Updated ETAs: [2: 27]"}},
	{"cancelOrder(1, 5)", []string{"Cannot cancel. Order 1 has already been delivered or is out for delivery."}},
	{"print(9)", []string{"Order 9 does not exist."}},
	{"createOrder(4, 12, 100, 3)", []string{"Order 4 has been created - ETA: 37", "Order 1 has been delivered at time 10"}},
	{"Quit()", []string{"Order 2 has been delivered at time 27", "Order 4 has been delivered at time 37"}},
}

type harness struct {
	svc      *OrderService
	outbox   *exitwal.Outbox
	notifier *fakeNotifier
	metrics  *metrics.Metrics
	snaps    *snapshot.Writer
	journal  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		notifier: &fakeNotifier{},
		metrics:  metrics.New(prometheus.NewRegistry()),
		snaps:    &snapshot.Writer{Dir: t.TempDir()},
		journal:  t.TempDir(),
	}

	journal, err := entrywal.Open(entrywal.Config{Dir: h.journal, SegmentSize: 1 << 20})
	require.NoError(t, err)

	h.outbox, err = exitwal.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.outbox.Close() })

	h.svc, err = NewOrderService(Options{
		Journal:   journal,
		Outbox:    h.outbox,
		Notifier:  h.notifier,
		Encoder:   events.JSONEncoder{},
		Metrics:   h.metrics,
		Snapshots: h.snaps,
		Logger:    testr.New(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.svc.Close() })
	return h
}

func (h *harness) run(t *testing.T, line string) []string {
	t.Helper()
	cmd, err := command.Parse(line)
	require.NoError(t, err)
	lines, err := h.svc.Execute(context.Background(), cmd)
	require.NoError(t, err)
	return lines
}

func TestExecuteSession(t *testing.T) {
	h := newHarness(t)

	for _, step := range session {
		got := h.run(t, step.line)
		if diff := cmp.Diff(step.want, got); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", step.line, diff)
		}
	}

	assert.True(t, h.svc.Closed())
	_, err := h.svc.Execute(context.Background(), command.Command{Kind: command.PrintOrder, Args: []int64{2}})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = h.svc.Lookup(2)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSideEffects(t *testing.T) {
	h := newHarness(t)
	for _, step := range session {
		h.run(t, step.line)
	}

	// Deliveries of orders 1, 2 and 4 reach the outbox in order.
	var delivered []float64
	err := h.outbox.ScanByState(exitwal.StateNew, func(_ uint64, rec exitwal.Record) error {
		ev, err := events.JSONEncoder{}.Decode(rec.Payload)
		require.NoError(t, err)
		delivered = append(delivered, ev.AsMap()["id"].(float64))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 4}, delivered)

	// One notification per command that moved an ETA.
	require.Len(t, h.notifier.sent, 3)
	assert.Equal(t, "3", string(h.notifier.sent[0].key))
	assert.Equal(t, "2", string(h.notifier.sent[2].key))

	assert.Equal(t, 3.0, testutil.ToFloat64(h.metrics.Delivered()))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Rejected("cancelOrder")))

	snap, err := snapshot.Read(h.snaps.Path())
	require.NoError(t, err)
	require.Len(t, snap.Orders, 2)
	assert.Equal(t, int64(2), snap.Orders[0].ID)
	assert.Equal(t, int64(27), snap.Orders[0].ETA)
	assert.Equal(t, uint64(8), snap.Seq)
}

func TestSideEffectFailuresDoNotFailCommands(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = errors.New("broker down")

	got := h.run(t, "createOrder(1, 0, 50, 10)")
	assert.Equal(t, []string{"Order 1 has been created - ETA: 10"}, got)
	got = h.run(t, "createOrder(2, 0, 60, 10)")
	assert.Len(t, got, 2)
	assert.Len(t, h.notifier.sent, 1)
}

func TestDuplicateCreate(t *testing.T) {
	h := newHarness(t)
	h.run(t, "createOrder(1, 0, 50, 10)")
	got := h.run(t, "createOrder(1, 3, 50, 10)")
	assert.Equal(t, []string{"Cannot create. Order 1 already exists."}, got)

	o, err := h.svc.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), o.CreatedAt)
}

func TestReplayJournalReproducesMutations(t *testing.T) {
	h := newHarness(t)
	var want []string
	for _, step := range session {
		got := h.run(t, step.line)
		cmd, _ := command.Parse(step.line)
		if cmd.Kind.Journaled() {
			want = append(want, got...)
		}
	}

	got, err := ReplayJournal(context.Background(), h.journal, testr.New(t))
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("replay mismatch (-want +got):\n%s", diff)
	}
}

func TestOutboxSequenceResumes(t *testing.T) {
	dir := t.TempDir()
	outbox, err := exitwal.Open(dir)
	require.NoError(t, err)
	defer outbox.Close()
	require.NoError(t, outbox.Put(41, []byte("old")))

	svc, err := NewOrderService(Options{Outbox: outbox, Logger: testr.New(t)})
	require.NoError(t, err)

	for _, line := range []string{"createOrder(1, 0, 50, 1)", "createOrder(2, 5, 50, 1)"} {
		cmd, err := command.Parse(line)
		require.NoError(t, err)
		_, err = svc.Execute(context.Background(), cmd)
		require.NoError(t, err)
	}

	last, err := outbox.LastSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), last)
}

func TestCloseIsIdempotent(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.svc.Close())
	require.NoError(t, h.svc.Close())
	_, err := h.svc.Execute(context.Background(), command.Command{Kind: command.Quit})
	assert.ErrorIs(t, err, ErrClosed)
}
