package schedule

import (
	"math"

	"gator/infra/memory"
)

// Scheduler assigns ETAs to orders and keeps them consistent across
// creations, cancellations and duration updates.
//
// Scheduler is single-writer and not safe for concurrent use.
type Scheduler struct {
	byPriority *AVLTree[priorityKey, memory.Handle]
	byETA      *AVLTree[etaKey, memory.Handle]
	registry   *Registry
	buffer     *DeliveryBuffer

	history   []Delivery
	latest    Delivery
	hasLatest bool
}

func New() *Scheduler {
	return &Scheduler{
		byPriority: NewAVLTree[priorityKey, memory.Handle](comparePriority),
		byETA:      NewAVLTree[etaKey, memory.Handle](compareETA),
		registry:   NewRegistry(),
		buffer:     NewDeliveryBuffer(),
	}
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// Create schedules a new order at time now. Orders due at now are flushed
// first; they are reported in Created.Delivered even when the creation
// itself fails with ErrDuplicateOrder.
func (s *Scheduler) Create(id, now, value, duration int64) (Created, error) {
	res := Created{ID: id}
	priority := ComputePriority(value, now)

	s.flush(now)

	if _, ok := s.registry.Lookup(id); ok {
		res.Delivered = s.drain()
		return res, ErrDuplicateOrder
	}

	o := Order{
		ID:        id,
		CreatedAt: now,
		Value:     value,
		Duration:  duration,
		Priority:  priority,
	}
	o.ETA = s.initialETA(&o, now)

	h, _ := s.registry.Add(o)
	s.byPriority.Insert(o.priorityKey(), h)
	s.byETA.Insert(o.etaKey(), h)

	res.ETA = o.ETA
	res.Updated = s.cascade(h, now)
	res.Delivered = s.drain()
	return res, nil
}

// Cancel removes an order that has not started its delivery window and
// pulls every lower-priority order forward by twice its duration.
func (s *Scheduler) Cancel(id, now int64) (Canceled, error) {
	res := Canceled{ID: id}

	h, ok := s.registry.Lookup(id)
	if !ok {
		return res, ErrUnknownOrder
	}
	o := s.registry.Order(h)
	if o.DeliveredBy(now) {
		return res, ErrAlreadyDelivered
	}
	if o.OutForDelivery(now) {
		return res, ErrOutForDelivery
	}

	lower := s.byPriority.Below(o.priorityKey())
	canceled := s.remove(h)
	shift := 2 * canceled.Duration

	res.Updated = make([]ETAUpdate, 0, len(lower))
	for _, lh := range lower {
		lo := s.registry.Order(lh)
		s.rekey(lh, lo.ETA-shift)
		res.Updated = append(res.Updated, ETAUpdate{ID: lo.ID, ETA: lo.ETA})
	}
	return res, nil
}

// UpdateDuration changes an order's delivery duration, shifting its ETA by
// the difference and re-chaining every lower-priority order behind it.
func (s *Scheduler) UpdateDuration(id, now, duration int64) (Rescheduled, error) {
	res := Rescheduled{ID: id}

	h, ok := s.registry.Lookup(id)
	if !ok {
		return res, ErrUnknownOrder
	}
	o := s.registry.Order(h)
	if o.DeliveredBy(now) {
		return res, ErrAlreadyDelivered
	}

	s.rekey(h, o.ETA+duration-o.Duration)
	o.Duration = duration

	res.ETA = o.ETA
	res.Updated = append(s.cascade(h, now), ETAUpdate{ID: o.ID, ETA: o.ETA})
	return res, nil
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

// RangeByETA returns the ids of active orders with t1 <= ETA <= t2, in
// ETA order.
func (s *Scheduler) RangeByETA(t1, t2 int64) []int64 {
	if t1 > t2 {
		return nil
	}
	var ids []int64
	s.byETA.AscendRange(etaFloor(t1), etaCeil(t2), func(_ etaKey, h memory.Handle) bool {
		ids = append(ids, s.registry.Order(h).ID)
		return true
	})
	return ids
}

// RankByETA returns how many active orders have an ETA strictly before
// the given order's.
func (s *Scheduler) RankByETA(id int64) (int, error) {
	h, ok := s.registry.Lookup(id)
	if !ok {
		return 0, ErrUnknownOrder
	}
	return s.byETA.Rank(etaFloor(s.registry.Order(h).ETA)), nil
}

func (s *Scheduler) Lookup(id int64) (Order, error) {
	h, ok := s.registry.Lookup(id)
	if !ok {
		return Order{}, ErrUnknownOrder
	}
	return *s.registry.Order(h), nil
}

// DrainAll reports every active order as delivered at its current ETA,
// in ETA order. The schedule itself is left untouched.
func (s *Scheduler) DrainAll() []Delivery {
	out := make([]Delivery, 0, s.byETA.Len())
	s.byETA.Ascend(func(_ etaKey, h memory.Handle) bool {
		o := s.registry.Order(h)
		out = append(out, Delivery{ID: o.ID, ETA: o.ETA, Duration: o.Duration})
		return true
	})
	return out
}

// Active returns a copy of every active order in ETA order.
func (s *Scheduler) Active() []Order {
	out := make([]Order, 0, s.byETA.Len())
	s.byETA.Ascend(func(_ etaKey, h memory.Handle) bool {
		out = append(out, *s.registry.Order(h))
		return true
	})
	return out
}

// History returns the delivery log in the order deliveries were recorded.
func (s *Scheduler) History() []Delivery {
	return append([]Delivery(nil), s.history...)
}

// Len returns the number of active orders.
func (s *Scheduler) Len() int {
	return s.registry.Len()
}

//
// ──────────────────────────────────────────────────────────
// Internals
// ──────────────────────────────────────────────────────────
//

// initialETA chains a new order behind, in order of preference: its
// priority successor, the order out for delivery, or the latest delivery.
func (s *Scheduler) initialETA(o *Order, now int64) int64 {
	if _, h, ok := s.byPriority.Successor(o.priorityKey()); ok {
		succ := s.registry.Order(h)
		return succ.ETA + succ.Duration + o.Duration
	}

	if h, ok := s.outForDelivery(now); ok {
		out := s.registry.Order(h)
		if out.ETA+out.Duration > now+o.Duration {
			return out.ETA + out.Duration + o.Duration
		}
	}

	if last, ok := s.lastDelivered(); ok && last.ETA+last.Duration > now {
		return last.ETA + last.Duration + o.Duration
	}

	return now + o.Duration
}

// cascade re-chains every order with lower priority than the order behind
// h, lowest priority first. The order out for delivery keeps its ETA.
func (s *Scheduler) cascade(h memory.Handle, now int64) []ETAUpdate {
	base := s.registry.Order(h)
	baseETA, baseDuration := base.ETA, base.Duration

	out, hasOut := s.outForDelivery(now)
	lower := s.byPriority.Below(base.priorityKey())

	updates := make([]ETAUpdate, 0, len(lower))
	for _, lh := range lower {
		if hasOut && lh == out {
			continue
		}
		o := s.registry.Order(lh)
		s.rekey(lh, baseETA+baseDuration+o.Duration)
		baseETA, baseDuration = o.ETA, o.Duration
		updates = append(updates, ETAUpdate{ID: o.ID, ETA: o.ETA})
	}
	return updates
}

// outForDelivery returns the earliest-ETA order if its delivery window has
// started at now.
func (s *Scheduler) outForDelivery(now int64) (memory.Handle, bool) {
	_, h, ok := s.byETA.Min()
	if !ok || !s.registry.Order(h).OutForDelivery(now) {
		return memory.Nil, false
	}
	return h, true
}

// lastDelivered returns the delivered order with the greatest ETA, looking
// at both the pending buffer and the history.
func (s *Scheduler) lastDelivered() (Delivery, bool) {
	best, ok := s.latest, s.hasLatest
	if d, pending := s.buffer.Peek(); pending && (!ok || d.ETA > best.ETA) {
		best, ok = d, true
	}
	return best, ok
}

// rekey moves the order behind h to a new ETA.
func (s *Scheduler) rekey(h memory.Handle, eta int64) {
	o := s.registry.Order(h)
	s.byETA.Delete(o.etaKey())
	o.ETA = eta
	s.byETA.Insert(o.etaKey(), h)
}

func (s *Scheduler) remove(h memory.Handle) Order {
	o := s.registry.Order(h)
	s.byPriority.Delete(o.priorityKey())
	s.byETA.Delete(o.etaKey())
	return s.registry.Remove(h)
}

// flush moves every order with ETA <= now from the trees into the buffer.
func (s *Scheduler) flush(now int64) {
	var due []memory.Handle
	s.byETA.AscendRange(etaFloor(math.MinInt64), etaCeil(now), func(_ etaKey, h memory.Handle) bool {
		due = append(due, h)
		return true
	})
	for _, h := range due {
		o := s.remove(h)
		s.buffer.Push(Delivery{ID: o.ID, ETA: o.ETA, Duration: o.Duration})
	}
}

// drain empties the buffer into the history, largest ETA first.
func (s *Scheduler) drain() []Delivery {
	if s.buffer.IsEmpty() {
		return nil
	}
	out := make([]Delivery, 0, s.buffer.Len())
	for {
		d, ok := s.buffer.Pop()
		if !ok {
			return out
		}
		s.history = append(s.history, d)
		if !s.hasLatest || d.ETA > s.latest.ETA {
			s.latest, s.hasLatest = d, true
		}
		out = append(out, d)
	}
}
