package schedule

import "gator/infra/memory"

// Registry owns the active orders. Orders are stored once in a slab; the
// priority and ETA trees only hold handles into it.
type Registry struct {
	orders *memory.Slab[Order]
	byID   map[int64]memory.Handle
}

func NewRegistry() *Registry {
	return &Registry{
		orders: memory.NewSlab[Order](64),
		byID:   make(map[int64]memory.Handle),
	}
}

// Add stores o. It returns false if an order with the same id is active.
func (r *Registry) Add(o Order) (memory.Handle, bool) {
	if _, ok := r.byID[o.ID]; ok {
		return memory.Nil, false
	}
	h := r.orders.Alloc(o)
	r.byID[o.ID] = h
	return h, true
}

func (r *Registry) Lookup(id int64) (memory.Handle, bool) {
	h, ok := r.byID[id]
	return h, ok
}

// Order returns the live order behind h. The pointer is invalidated by
// the next Add.
func (r *Registry) Order(h memory.Handle) *Order {
	return r.orders.At(h)
}

// Remove drops the order behind h and returns a copy of it.
func (r *Registry) Remove(h memory.Handle) Order {
	o := *r.orders.At(h)
	delete(r.byID, o.ID)
	r.orders.Free(h)
	return o
}

func (r *Registry) Len() int {
	return len(r.byID)
}
