package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"gator/domain/schedule"
)

type Writer struct {
	Dir string
}

// Path returns the snapshot file location.
func (w *Writer) Path() string {
	return filepath.Join(w.Dir, fileName)
}

// Write stores orders, tagged with the journal seq they reflect. The file
// is replaced atomically.
func (w *Writer) Write(seq uint64, orders []schedule.Order) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return errors.Wrapf(err, "create snapshot dir %s", w.Dir)
	}

	tmp, err := os.CreateTemp(w.Dir, fileName+".*")
	if err != nil {
		return errors.Wrap(err, "create snapshot")
	}
	defer os.Remove(tmp.Name())

	s := Snapshot{
		Seq:     seq,
		Created: time.Now(),
		Orders:  make([]OrderEntry, 0, len(orders)),
	}
	for _, o := range orders {
		s.Orders = append(s.Orders, OrderEntry{
			ID:        o.ID,
			CreatedAt: o.CreatedAt,
			Value:     o.Value,
			Duration:  o.Duration,
			Priority:  o.Priority,
			ETA:       o.ETA,
		})
	}

	if err := gob.NewEncoder(tmp).Encode(&s); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "encode snapshot")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "sync snapshot")
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), w.Path())
}
