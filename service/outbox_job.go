package service

import (
	"context"
	"time"
)

// StartOutboxCompaction periodically removes acknowledged outbox entries
// until ctx is done.
func (s *OrderService) StartOutboxCompaction(ctx context.Context, interval time.Duration) {
	if s.outbox == nil {
		return
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.compactOutbox()
			}
		}
	}()
}

func (s *OrderService) compactOutbox() {
	n, err := s.outbox.TruncateAcked()
	if err != nil {
		s.log.Error(err, "outbox compaction failed")
		return
	}
	if n > 0 {
		s.log.V(1).Info("outbox compacted", "removed", n)
	}
}
