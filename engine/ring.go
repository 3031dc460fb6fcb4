// SPDX-License-Identifier: EPL-2.0

package engine

import "sync/atomic"

// ring is a fixed-capacity single-producer/single-consumer queue. One
// goroutine pushes, one pops; neither ever blocks or allocates, which
// is what lets it sit on the real-time audio callback path. A full ring
// rejects the push rather than overwriting.
type ring[T any] struct {
	buf  []T
	mask int64

	head atomic.Int64 // next slot to pop
	tail atomic.Int64 // next slot to push
}

// newRing returns a ring holding at least capacity elements, rounded up
// to a power of two.
func newRing[T any](capacity int) *ring[T] {
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &ring[T]{
		buf:  make([]T, size),
		mask: int64(size - 1),
	}
}

// push appends v. Returns false when the ring is full.
func (r *ring[T]) push(v T) bool {
	tail := r.tail.Load()
	if tail-r.head.Load() > r.mask {
		return false
	}
	r.buf[tail&r.mask] = v
	r.tail.Store(tail + 1)
	return true
}

// pushSlice appends as much of vs as fits and returns how many elements
// made it in.
func (r *ring[T]) pushSlice(vs []T) int {
	tail := r.tail.Load()
	free := int(r.mask + 1 - (tail - r.head.Load()))
	if free <= 0 {
		return 0
	}
	if free < len(vs) {
		vs = vs[:free]
	}

	at := int(tail & r.mask)
	n := copy(r.buf[at:], vs)
	if n < len(vs) {
		n += copy(r.buf, vs[n:])
	}
	r.tail.Store(tail + int64(n))
	return n
}

// pop removes and returns the oldest element.
func (r *ring[T]) pop() (v T, ok bool) {
	head := r.head.Load()
	if head == r.tail.Load() {
		return v, false
	}
	at := head & r.mask

	v = r.buf[at]
	// Drop the reference so popped payloads can be collected.
	var zero T
	r.buf[at] = zero

	r.head.Store(head + 1)
	return v, true
}

// popSlice fills dst with up to len(dst) oldest elements and returns
// how many were copied.
func (r *ring[T]) popSlice(dst []T) int {
	head := r.head.Load()
	avail := int(r.tail.Load() - head)
	if avail == 0 {
		return 0
	}
	if avail < len(dst) {
		dst = dst[:avail]
	}

	at := int(head & r.mask)
	n := copy(dst, r.buf[at:])
	if n < len(dst) {
		n += copy(dst[n:], r.buf)
	}
	r.head.Store(head + int64(n))
	return n
}

// len reports the number of queued elements.
func (r *ring[T]) len() int {
	return int(r.tail.Load() - r.head.Load())
}

// cap reports the total capacity.
func (r *ring[T]) cap() int {
	return len(r.buf)
}

// reset discards all queued elements. Only safe while neither side is
// active.
func (r *ring[T]) reset() {
	clear(r.buf)
	r.head.Store(0)
	r.tail.Store(0)
}
