package event

import "sync/atomic"

// Queue is a bounded single-producer single-consumer ring of notes.
//
// Push and Pop never block or allocate. A full queue drops the newest event
// and counts it; older events already queued keep their order.
type Queue struct {
	buf  []Note
	mask uint64

	head    atomic.Uint64 // next slot to read, written by the consumer
	tail    atomic.Uint64 // next slot to write, written by the producer
	dropped atomic.Uint64
}

// NewQueue returns a queue holding at least capacity events, rounded up to a
// power of two.
func NewQueue(capacity int) *Queue {
	size := nextPowerOf2(uint64(max(capacity, 2)))
	return &Queue{
		buf:  make([]Note, size),
		mask: size - 1,
	}
}

// Push enqueues n. It returns false when the queue is full.
func (q *Queue) Push(n Note) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() >= uint64(len(q.buf)) {
		q.dropped.Add(1)
		return false
	}
	q.buf[tail&q.mask] = n
	q.tail.Store(tail + 1)
	return true
}

// Pop dequeues the oldest event.
func (q *Queue) Pop() (Note, bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		return Note{}, false
	}
	n := q.buf[head&q.mask]
	q.head.Store(head + 1)
	return n, true
}

// Len returns the number of queued events. It is safe to call from any
// goroutine and stays within [0, Cap].
func (q *Queue) Len() int {
	head := q.head.Load()
	tail := q.tail.Load()
	if tail < head {
		return 0
	}
	return min(int(tail-head), len(q.buf))
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return len(q.buf) }

// Dropped returns how many pushes were refused because the queue was full.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }

func nextPowerOf2(n uint64) uint64 {
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}
