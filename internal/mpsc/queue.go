// SPDX-License-Identifier: EPL-2.0

// Package mpsc implements a bounded, lock-free multi-producer single-consumer
// queue. It is the hand-off point between control goroutines and the
// real-time render goroutine: producers never block and the consumer never
// waits on a producer.
//
// The ring follows the classic bounded MPMC design with per-cell sequence
// numbers, restricted to a single consumer so the read side needs no CAS.
package mpsc

import "sync/atomic"

type cell[T any] struct {
	seq atomic.Uint64
	val T
}

// Queue is a fixed capacity FIFO. The zero value is not usable, use New.
type Queue[T any] struct {
	head  atomic.Uint64 // next ticket handed to a producer
	_     [56]byte
	tail  atomic.Uint64 // next ticket read by the consumer
	_     [56]byte
	mask  uint64
	cells []cell[T]
}

// New creates a queue holding at least capacity elements. The capacity is
// rounded up to the next power of two, with a minimum of 2.
func New[T any](capacity int) *Queue[T] {
	size := uint64(2)
	for size < uint64(max(capacity, 0)) {
		size <<= 1
	}

	q := &Queue[T]{
		mask:  size - 1,
		cells: make([]cell[T], size),
	}
	for i := range q.cells {
		q.cells[i].seq.Store(uint64(i))
	}

	return q
}

// Cap returns the number of elements the queue can hold.
func (q *Queue[T]) Cap() int { return len(q.cells) }

// Len returns an approximation of the number of queued elements.
func (q *Queue[T]) Len() int {
	head := q.head.Load()
	tail := q.tail.Load()
	if head < tail {
		return 0
	}
	return int(head - tail)
}

// TryPush appends v and reports whether there was room for it.
// It is safe for concurrent use by any number of producers and never blocks.
func (q *Queue[T]) TryPush(v T) bool {
	pos := q.head.Load()
	for {
		c := &q.cells[pos&q.mask]
		seq := c.seq.Load()
		diff := int64(seq) - int64(pos)

		switch {
		case diff == 0:
			if q.head.CompareAndSwap(pos, pos+1) {
				c.val = v
				c.seq.Store(pos + 1)
				return true
			}
			pos = q.head.Load()
		case diff < 0:
			// the cell still holds an element from the previous lap
			return false
		default:
			pos = q.head.Load()
		}
	}
}

// TryPop removes the oldest published element. Only one goroutine may pop.
func (q *Queue[T]) TryPop() (T, bool) {
	var zero T

	pos := q.tail.Load()
	c := &q.cells[pos&q.mask]
	if c.seq.Load() != pos+1 {
		return zero, false
	}

	v := c.val
	c.val = zero
	c.seq.Store(pos + q.mask + 1)
	q.tail.Store(pos + 1)

	return v, true
}

// Drain appends every published element to dst, oldest first, and returns
// the extended slice. It stops early at a ticket whose producer has not
// finished writing yet; that element and anything after it are returned by
// the next call. At most Cap elements are moved per call, so the work is
// bounded even while producers keep pushing.
//
// Drain does not allocate when cap(dst)-len(dst) >= Cap().
func (q *Queue[T]) Drain(dst []T) []T {
	for range len(q.cells) {
		v, ok := q.TryPop()
		if !ok {
			break
		}
		dst = append(dst, v)
	}
	return dst
}
