package snapshot

import "time"

const fileName = "snapshot.bin"

type Snapshot struct {
	Seq     uint64
	Created time.Time
	Orders  []OrderEntry
}

type OrderEntry struct {
	ID        int64
	CreatedAt int64
	Value     int64
	Duration  int64
	Priority  float64
	ETA       int64
}
