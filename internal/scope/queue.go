// Package scope bridges rendered audio to a visualization consumer.
//
// The audio goroutine pushes every rendered block; a UI goroutine pulls the
// most recent window whenever it redraws. The producer never waits on the
// consumer: when the consumer falls behind, old samples are overwritten.
package scope

import (
	"math"
	"sync/atomic"
)

// Queue is a single-producer single-consumer sample ring that keeps the most
// recent Cap samples.
//
// Each sample lives in its own atomic cell. The producer advances claimed
// before writing cells and written after, so a consumer can tell which of
// the samples it copied may have been overwritten mid-read.
type Queue struct {
	cells []atomic.Uint32
	mask  uint64

	claimed atomic.Uint64
	written atomic.Uint64
}

// NewQueue returns a queue keeping at least capacity samples, rounded up to
// a power of two.
func NewQueue(capacity int) *Queue {
	size := uint64(1)
	for size < uint64(max(capacity, 1)) {
		size <<= 1
	}
	return &Queue{
		cells: make([]atomic.Uint32, size),
		mask:  size - 1,
	}
}

// Cap returns the number of samples retained.
func (q *Queue) Cap() int { return len(q.cells) }

// Written returns the total number of samples ever pushed.
func (q *Queue) Written() uint64 { return q.written.Load() }

// Push appends samples, overwriting the oldest ones once the ring is full.
// It never blocks or allocates.
func (q *Queue) Push(samples []float32) {
	if len(samples) > len(q.cells) {
		samples = samples[len(samples)-len(q.cells):]
	}
	w := q.written.Load()
	end := w + uint64(len(samples))
	q.claimed.Store(end)
	for i, s := range samples {
		q.cells[(w+uint64(i))&q.mask].Store(math.Float32bits(s))
	}
	q.written.Store(end)
}

// Pop copies the most recent samples into dst, oldest first, and returns how
// many were copied: len(dst), or fewer if not enough have been pushed yet.
// Samples overwritten while copying are dropped from the front of the
// window.
func (q *Queue) Pop(dst []float32) int {
	w := q.written.Load()
	n := min(uint64(len(dst)), w, uint64(len(q.cells)))
	start := w - n
	for i := uint64(0); i < n; i++ {
		dst[i] = math.Float32frombits(q.cells[(start+i)&q.mask].Load())
	}

	size := uint64(len(q.cells))
	if c := q.claimed.Load(); c > size && c-size > start {
		lost := min(c-size-start, n)
		copy(dst, dst[lost:n])
		n -= lost
	}
	return int(n)
}
