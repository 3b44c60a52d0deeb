// Package queue provides the growable ring-buffer deque that holds reference
// samples waiting for their hardware counterpart.
package queue

// Deque is a FIFO queue backed by a growable power-of-two ring buffer.
// The zero value is an empty deque ready to use.
type Deque[T any] struct {
	buf  []T
	head int
	n    int
}

// New returns a deque with room for at least capacity elements.
func New[T any](capacity int) *Deque[T] {
	size := 1
	for size < capacity {
		size <<= 1
	}

	return &Deque[T]{buf: make([]T, size)}
}

// Len returns the number of queued elements.
func (d *Deque[T]) Len() int { return d.n }

// PushBack appends v at the tail.
func (d *Deque[T]) PushBack(v T) {
	d.grow()
	d.buf[(d.head+d.n)&(len(d.buf)-1)] = v
	d.n++
}

// PopFront removes and returns the oldest element.
// ok is false when the deque is empty.
func (d *Deque[T]) PopFront() (v T, ok bool) {
	if d.n == 0 {
		return v, false
	}

	var zero T

	v = d.buf[d.head]
	d.buf[d.head] = zero
	d.head = (d.head + 1) & (len(d.buf) - 1)
	d.n--

	return v, true
}

// Front returns the oldest element without removing it.
func (d *Deque[T]) Front() (v T, ok bool) {
	if d.n == 0 {
		return v, false
	}

	return d.buf[d.head], true
}

// Clear drops all elements but keeps the allocated buffer.
func (d *Deque[T]) Clear() {
	clear(d.buf)
	d.head = 0
	d.n = 0
}

func (d *Deque[T]) grow() {
	if d.n < len(d.buf) {
		return
	}

	size := 2 * len(d.buf)
	if size == 0 {
		size = 16
	}

	buf := make([]T, size)
	for i := range d.n {
		buf[i] = d.buf[(d.head+i)&(len(d.buf)-1)]
	}

	d.buf = buf
	d.head = 0
}
