package scope

import (
	"sync"
	"testing"
)

func ramp(from, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(from + i)
	}
	return out
}

func TestQueuePartialWindow(t *testing.T) {
	q := NewQueue(16)
	q.Push(ramp(0, 5))

	dst := make([]float32, 8)
	n := q.Pop(dst)
	if n != 5 {
		t.Fatalf("Pop() = %d, want 5", n)
	}
	for i := 0; i < n; i++ {
		if dst[i] != float32(i) {
			t.Errorf("dst[%d] = %v, want %d", i, dst[i], i)
		}
	}
}

func TestQueueReturnsMostRecent(t *testing.T) {
	q := NewQueue(64)
	for block := 0; block < 10; block++ {
		q.Push(ramp(block*32, 32))
	}

	dst := make([]float32, 100)
	n := q.Pop(dst)
	if n != 64 {
		t.Fatalf("Pop() = %d, want capacity 64", n)
	}
	for i := 0; i < n; i++ {
		if want := float32(320 - 64 + i); dst[i] != want {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want)
		}
	}
}

func TestQueueOversizedPush(t *testing.T) {
	q := NewQueue(8)
	q.Push(ramp(0, 20))
	dst := make([]float32, 8)
	if n := q.Pop(dst); n != 8 || dst[0] != 12 || dst[7] != 19 {
		t.Fatalf("Pop() = %d %v", n, dst)
	}
}

func TestQueueEmpty(t *testing.T) {
	q := NewQueue(8)
	if n := q.Pop(make([]float32, 4)); n != 0 {
		t.Fatalf("Pop() on empty queue = %d", n)
	}
}

func TestQueueConcurrentWindowsAreContiguous(t *testing.T) {
	q := NewQueue(256)
	stop := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		block := make([]float32, 64)
		next := 0
		for {
			select {
			case <-stop:
				return
			default:
			}
			for i := range block {
				block[i] = float32(next)
				next++
				if next == 1<<20 {
					next = 0
				}
			}
			q.Push(block)
		}
	}()

	dst := make([]float32, 200)
	for iter := 0; iter < 2000; iter++ {
		n := q.Pop(dst)
		for i := 1; i < n; i++ {
			if dst[i] != dst[i-1]+1 && dst[i] != 0 {
				close(stop)
				wg.Wait()
				t.Fatalf("iteration %d: window broken at %d: %v then %v", iter, i, dst[i-1], dst[i])
			}
		}
	}
	close(stop)
	wg.Wait()
}

func TestTriggerIndex(t *testing.T) {
	window := []float32{0.5, 0.2, -0.3, -0.1, 0.1, 0.4, -0.2, 0.3}
	if got := TriggerIndex(window, 0); got != 4 {
		t.Errorf("TriggerIndex() = %d, want 4", got)
	}
	if got := TriggerIndex([]float32{1, 1, 1, 1}, 0); got != 0 {
		t.Errorf("TriggerIndex(flat) = %d, want 0", got)
	}
	if got := Peak(window); got != 0.5 {
		t.Errorf("Peak() = %v, want 0.5", got)
	}
}
