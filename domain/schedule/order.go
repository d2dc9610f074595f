package schedule

import (
	"cmp"
	"math"
)

const (
	valueWeight = 0.3
	timeWeight  = 0.7
	valueScale  = 50
)

// Order is the scheduled entity. Priority and CreatedAt never change once
// the order is created; ETA and Duration are rewritten in place.
type Order struct {
	ID        int64
	CreatedAt int64
	Value     int64
	Duration  int64
	Priority  float64
	ETA       int64
}

// ComputePriority weighs the order value against its creation time.
// Higher is scheduled earlier.
func ComputePriority(value, now int64) float64 {
	return valueWeight*(float64(value)/valueScale) - timeWeight*float64(now)
}

// PickupAt is the start of the delivery window.
func (o *Order) PickupAt() int64 {
	return o.ETA - o.Duration
}

// OutForDelivery reports whether the delivery window has started at now.
func (o *Order) OutForDelivery(now int64) bool {
	return now > o.PickupAt()
}

// DeliveredBy reports whether the ETA has been reached at now.
func (o *Order) DeliveredBy(now int64) bool {
	return o.ETA <= now
}

func (o *Order) priorityKey() priorityKey {
	return priorityKey{priority: o.Priority, id: o.ID}
}

func (o *Order) etaKey() etaKey {
	return etaKey{eta: o.ETA, id: o.ID}
}

// ---- tree keys ----

// priorityKey orders by priority; among equal priorities the smaller id
// ranks higher.
type priorityKey struct {
	priority float64
	id       int64
}

func comparePriority(a, b priorityKey) int {
	if c := cmp.Compare(a.priority, b.priority); c != 0 {
		return c
	}
	return cmp.Compare(b.id, a.id)
}

// etaKey orders by ETA, then by id.
type etaKey struct {
	eta int64
	id  int64
}

func compareETA(a, b etaKey) int {
	if c := cmp.Compare(a.eta, b.eta); c != 0 {
		return c
	}
	return cmp.Compare(a.id, b.id)
}

// etaFloor sorts before every order with the given ETA.
func etaFloor(eta int64) etaKey {
	return etaKey{eta: eta, id: math.MinInt64}
}

// etaCeil sorts after every order with the given ETA.
func etaCeil(eta int64) etaKey {
	return etaKey{eta: eta, id: math.MaxInt64}
}
