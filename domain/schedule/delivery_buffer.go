package schedule

import "container/heap"

// Delivery is an order that reached its ETA.
type Delivery struct {
	ID       int64
	ETA      int64
	Duration int64
}

// deliveryHeap keeps the largest ETA at index 0.
type deliveryHeap []Delivery

func (h deliveryHeap) Len() int { return len(h) }

func (h deliveryHeap) Less(i, j int) bool {
	if h[i].ETA != h[j].ETA {
		return h[i].ETA > h[j].ETA
	}
	return h[i].ID > h[j].ID
}

func (h deliveryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *deliveryHeap) Push(x any) {
	*h = append(*h, x.(Delivery))
}

func (h *deliveryHeap) Pop() any {
	old := *h
	n := len(old)
	d := old[n-1]
	*h = old[:n-1]
	return d
}

// DeliveryBuffer holds orders whose ETA has passed until they are written
// to the delivery history. It is a max-priority queue on ETA.
type DeliveryBuffer struct {
	h deliveryHeap
}

func NewDeliveryBuffer() *DeliveryBuffer {
	return &DeliveryBuffer{}
}

func (b *DeliveryBuffer) Push(d Delivery) {
	heap.Push(&b.h, d)
}

// Pop removes the entry with the largest ETA.
func (b *DeliveryBuffer) Pop() (Delivery, bool) {
	if len(b.h) == 0 {
		return Delivery{}, false
	}
	return heap.Pop(&b.h).(Delivery), true
}

func (b *DeliveryBuffer) Peek() (Delivery, bool) {
	if len(b.h) == 0 {
		return Delivery{}, false
	}
	return b.h[0], true
}

func (b *DeliveryBuffer) Len() int {
	return len(b.h)
}

func (b *DeliveryBuffer) IsEmpty() bool {
	return len(b.h) == 0
}
