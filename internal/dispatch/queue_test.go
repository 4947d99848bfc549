package dispatch_test

import (
	"sync"
	"testing"

	"jobwatch/internal/dispatch"
)

func TestQueue_DeliversInOrder(t *testing.T) {
	var got []int
	q := dispatch.New(func(v int) { got = append(got, v) })

	q.Enqueue(1)
	q.Enqueue(2)
	q.Flush()
	q.Enqueue(3)
	q.Flush()

	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestQueue_ListenerMayReenter(t *testing.T) {
	var (
		q   *dispatch.Queue[int]
		got []int
	)
	q = dispatch.New(func(v int) {
		got = append(got, v)
		if v == 1 {
			q.Enqueue(2)
			q.Flush()
			if len(got) != 1 {
				t.Error("nested event delivered before the current listener returned")
			}
		}
	})

	q.Enqueue(1)
	q.Flush()

	if len(got) != 2 || got[1] != 2 {
		t.Errorf("got %v, want [1 2]", got)
	}
}

func TestQueue_ListenerRunsWithoutProducerLock(t *testing.T) {
	var producer sync.Mutex
	state := 0

	q := dispatch.New(func(int) {
		// the listener reads producer state
		producer.Lock()
		_ = state
		producer.Unlock()
	})

	producer.Lock()
	state = 1
	q.Enqueue(state)
	producer.Unlock()
	q.Flush()
}

func TestQueue_NilListener(t *testing.T) {
	q := dispatch.New[int](nil)
	q.Enqueue(1)
	q.Flush()
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	var (
		mu  sync.Mutex
		got int
	)
	q := dispatch.New(func(int) {
		mu.Lock()
		got++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q.Enqueue(i)
			q.Flush()
		}(i)
	}
	wg.Wait()
	q.Flush()

	mu.Lock()
	defer mu.Unlock()
	if got != 50 {
		t.Errorf("delivered %d events, want 50", got)
	}
}
