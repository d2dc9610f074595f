package entry

import (
	"encoding/binary"
	"os"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	// Frame: [type:1][seq:8][time:8][len:4][payload][crc:4]
	headerSize = 1 + 8 + 8 + 4
	crcSize    = 4
)

// ErrJournalExists is returned by Open when the directory already holds a
// journal and Config.Overwrite is not set.
var ErrJournalExists = errors.New("journal directory is not empty")

type Config struct {
	Dir             string
	SegmentSize     int64
	SegmentDuration time.Duration
	// Sync fsyncs every append.
	Sync bool
	// Overwrite discards segments left by a previous run.
	Overwrite bool
}

// WAL is the append-only command journal of a single simulation run.
// It is not safe for concurrent use; the service serializes appends.
type WAL struct {
	cfg        Config
	current    *segment
	segIndex   int
	lastRotate time.Time
	lastSeq    uint64
}

// Open starts a new journal in cfg.Dir.
func Open(cfg Config) (*WAL, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create journal dir %s", cfg.Dir)
	}

	existing, err := listSegments(cfg.Dir)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		if !cfg.Overwrite {
			return nil, errors.Wrapf(ErrJournalExists, "%s", cfg.Dir)
		}
		if err := truncateBefore(cfg.Dir, ^uint64(0)); err != nil {
			return nil, err
		}
	}

	seg, err := openSegment(cfg.Dir, 0)
	if err != nil {
		return nil, err
	}

	return &WAL{
		cfg:        cfg,
		current:    seg,
		lastRotate: time.Now(),
	}, nil
}

// Append writes r. Sequence numbers must be strictly increasing.
func (w *WAL) Append(r *Record) error {
	if r.Seq <= w.lastSeq {
		return errors.Newf("non-monotonic seq %d after %d", r.Seq, w.lastSeq)
	}

	payloadLen := uint32(len(r.Data))
	buf := make([]byte, headerSize+payloadLen+crcSize)

	buf[0] = byte(r.Type)
	binary.BigEndian.PutUint64(buf[1:9], r.Seq)
	binary.BigEndian.PutUint64(buf[9:17], uint64(r.Time))
	binary.BigEndian.PutUint32(buf[17:21], payloadLen)
	copy(buf[headerSize:], r.Data)

	crc := CRC32(buf[:headerSize+payloadLen])
	binary.BigEndian.PutUint32(buf[headerSize+payloadLen:], crc)

	if err := w.current.append(buf); err != nil {
		return errors.Wrapf(err, "append seq %d", r.Seq)
	}
	if w.cfg.Sync {
		if err := w.current.sync(); err != nil {
			return errors.Wrapf(err, "sync seq %d", r.Seq)
		}
	}
	w.lastSeq = r.Seq

	if w.shouldRotate() {
		return w.rotate()
	}
	return nil
}

// LastSeq returns the sequence number of the last appended record.
func (w *WAL) LastSeq() uint64 {
	return w.lastSeq
}

func (w *WAL) Close() error {
	if err := w.current.sync(); err != nil {
		_ = w.current.close()
		return err
	}
	return w.current.close()
}

func (w *WAL) shouldRotate() bool {
	if w.cfg.SegmentSize > 0 && w.current.offset >= w.cfg.SegmentSize {
		return true
	}
	return w.cfg.SegmentDuration > 0 && time.Since(w.lastRotate) >= w.cfg.SegmentDuration
}

func (w *WAL) rotate() error {
	if err := w.current.close(); err != nil {
		return errors.Wrap(err, "close segment")
	}
	w.segIndex++

	seg, err := openSegment(w.cfg.Dir, w.segIndex)
	if err != nil {
		return err
	}

	w.current = seg
	w.lastRotate = time.Now()
	return nil
}

// truncateBefore removes every segment whose records all have seq <= seq.
func truncateBefore(dir string, seq uint64) error {
	files, err := listSegments(dir)
	if err != nil {
		return err
	}

	for _, path := range files {
		maxSeq, err := maxSeqInSegment(path)
		if err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}
		if maxSeq <= seq {
			if err := os.Remove(path); err != nil {
				return errors.Wrapf(err, "remove %s", path)
			}
		}
	}
	return nil
}
