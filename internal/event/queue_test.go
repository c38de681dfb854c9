package event

import (
	"sync"
	"testing"
)

func TestQueueOrder(t *testing.T) {
	q := NewQueue(4)
	for i := 0; i < 3; i++ {
		if !q.Push(On(uint8(60+i), 100, int64(i))) {
			t.Fatalf("Push(%d) = false, want true", i)
		}
	}
	for i := 0; i < 3; i++ {
		n, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop() #%d empty", i)
		}
		if n.Key != uint8(60+i) || n.Time != int64(i) {
			t.Errorf("Pop() #%d = %v", i, n)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Error("Pop() on empty queue returned an event")
	}
}

func TestQueueDropsWhenFull(t *testing.T) {
	q := NewQueue(3)
	if q.Cap() != 4 {
		t.Fatalf("Cap() = %d, want 4", q.Cap())
	}
	for i := 0; i < 6; i++ {
		q.Push(On(uint8(i), 1, Immediate))
	}
	if q.Dropped() != 2 {
		t.Errorf("Dropped() = %d, want 2", q.Dropped())
	}
	if q.Len() != 4 {
		t.Errorf("Len() = %d, want 4", q.Len())
	}
	n, _ := q.Pop()
	if n.Key != 0 {
		t.Errorf("first event key = %d, want 0 (oldest kept)", n.Key)
	}
}

func TestQueueWraps(t *testing.T) {
	q := NewQueue(4)
	for round := 0; round < 100; round++ {
		q.Push(Off(uint8(round%128), int64(round)))
		n, ok := q.Pop()
		if !ok || n.Time != int64(round) {
			t.Fatalf("round %d: Pop() = %v, %v", round, n, ok)
		}
	}
}

func TestQueueConcurrent(t *testing.T) {
	const total = 100000
	q := NewQueue(64)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; {
			if q.Push(Note{Kind: NoteOn, Time: int64(i)}) {
				i++
			}
		}
	}()

	next := int64(0)
	for next < total {
		n, ok := q.Pop()
		if !ok {
			continue
		}
		if n.Time != next {
			t.Fatalf("got event %d, want %d", n.Time, next)
		}
		next++
	}
	wg.Wait()
}

func TestQueueLenFromObserver(t *testing.T) {
	const total = 50000
	q := NewQueue(8)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < total; {
			if q.Push(Note{Kind: NoteOn, Time: int64(i)}) {
				i++
			}
		}
	}()
	go func() {
		defer wg.Done()
		for popped := 0; popped < total; {
			if _, ok := q.Pop(); ok {
				popped++
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		select {
		case <-done:
			if q.Len() != 0 {
				t.Errorf("Len() = %d after draining, want 0", q.Len())
			}
			return
		default:
		}
		if n := q.Len(); n < 0 || n > q.Cap() {
			t.Fatalf("Len() = %d, want within [0, %d]", n, q.Cap())
		}
	}
}

func TestNoteString(t *testing.T) {
	if got := On(60, 100, 5).String(); got != "note-on key=60 vel=100 t=5" {
		t.Errorf("String() = %q", got)
	}
	if got := AllOff(Immediate).String(); got != "all-notes-off t=-1" {
		t.Errorf("String() = %q", got)
	}
}
