package memory

// Handle is a stable index into a Slab. The zero Handle is never issued.
type Handle int32

// Nil is the handle returned for absent entries.
const Nil Handle = 0

// Slab is a typed slot arena. Values are stored once and addressed by a
// Handle that stays valid until Free; freed slots are reused.
//
// Slab is not safe for concurrent use.
type Slab[T any] struct {
	slots []T
	live  []bool
	free  []Handle
	n     int
}

func NewSlab[T any](capacity int) *Slab[T] {
	s := &Slab[T]{
		slots: make([]T, 1, capacity+1),
		live:  make([]bool, 1, capacity+1),
	}
	return s
}

// Alloc stores v and returns its handle.
func (s *Slab[T]) Alloc(v T) Handle {
	s.n++
	if n := len(s.free); n > 0 {
		h := s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[h] = v
		s.live[h] = true
		return h
	}
	s.slots = append(s.slots, v)
	s.live = append(s.live, true)
	return Handle(len(s.slots) - 1)
}

// At returns a pointer to the value behind h. The pointer is only valid
// until the next Alloc.
func (s *Slab[T]) At(h Handle) *T {
	if !s.Live(h) {
		panic("memory.Slab: access to freed handle")
	}
	return &s.slots[h]
}

func (s *Slab[T]) Live(h Handle) bool {
	return h > Nil && int(h) < len(s.slots) && s.live[h]
}

// Free releases h. Freeing a dead handle is a no-op.
func (s *Slab[T]) Free(h Handle) {
	if !s.Live(h) {
		return
	}
	var zero T
	s.slots[h] = zero
	s.live[h] = false
	s.free = append(s.free, h)
	s.n--
}

// Len returns the number of live values.
func (s *Slab[T]) Len() int {
	return s.n
}
