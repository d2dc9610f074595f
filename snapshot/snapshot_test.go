package snapshot

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gator/domain/schedule"
)

func TestWriteRead(t *testing.T) {
	w := &Writer{Dir: t.TempDir()}
	orders := []schedule.Order{
		{ID: 1, CreatedAt: 0, Value: 50, Duration: 10, Priority: 0.3, ETA: 10},
		{ID: 3, CreatedAt: 0, Value: 40, Duration: 4, Priority: 0.24, ETA: 24},
	}

	require.NoError(t, w.Write(7, orders))
	// A second write replaces the first.
	require.NoError(t, w.Write(8, orders[:1]))

	s, err := Read(w.Path())
	require.NoError(t, err)
	assert.Equal(t, uint64(8), s.Seq)
	assert.False(t, s.Created.IsZero())
	assert.Equal(t, []OrderEntry{{ID: 1, Value: 50, Duration: 10, Priority: 0.3, ETA: 10}}, s.Orders)

	entries, err := os.ReadDir(w.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files left behind")
}

func TestReadMissing(t *testing.T) {
	_, err := Read(t.TempDir() + "/nope.bin")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
