package exit

import (
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestOutbox(t *testing.T) *Outbox {
	t.Helper()
	o, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = o.Close() })
	return o
}

func TestPutGet(t *testing.T) {
	o := openTestOutbox(t)
	require.NoError(t, o.Put(7, []byte("payload")))

	rec, err := o.Get(7)
	require.NoError(t, err)
	assert.Equal(t, StateNew, rec.State)
	assert.Equal(t, []byte("payload"), rec.Payload)

	_, err = o.Get(8)
	assert.ErrorIs(t, err, pebble.ErrNotFound)
}

func TestUpdateStateKeepsPayload(t *testing.T) {
	o := openTestOutbox(t)
	require.NoError(t, o.Put(1, []byte("p")))
	require.NoError(t, o.UpdateState(1, StateFailed, 2))

	rec, err := o.Get(1)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, rec.State)
	assert.Equal(t, uint32(2), rec.Retries)
	assert.NotZero(t, rec.LastAttempt)
	assert.Equal(t, []byte("p"), rec.Payload)
}

func TestScanByStateInSeqOrder(t *testing.T) {
	o := openTestOutbox(t)
	for _, seq := range []uint64{10, 2, 100, 9} {
		require.NoError(t, o.Put(seq, nil))
	}
	require.NoError(t, o.UpdateState(9, StateAcked, 0))

	var seen []uint64
	err := o.ScanByState(StateNew, func(seq uint64, _ Record) error {
		seen = append(seen, seq)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 10, 100}, seen)
}

func TestTruncateAckedAndLastSeq(t *testing.T) {
	o := openTestOutbox(t)

	last, err := o.LastSeq()
	require.NoError(t, err)
	assert.Zero(t, last)

	for seq := uint64(1); seq <= 5; seq++ {
		require.NoError(t, o.Put(seq, nil))
	}
	require.NoError(t, o.UpdateState(2, StateAcked, 0))
	require.NoError(t, o.UpdateState(5, StateAcked, 0))

	n, err := o.TruncateAcked()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = o.Get(2)
	assert.ErrorIs(t, err, pebble.ErrNotFound)

	last, err = o.LastSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), last)
}
