package workerpool

import (
	"sync/atomic"
	"testing"
)

func TestProcessCallsEveryIndexExactlyOnce(t *testing.T) {
	const n = 1000
	var counts [n]int32
	p := New(4)
	p.Process(n, func(i int) {
		atomic.AddInt32(&counts[i], 1)
	})
	for i, c := range counts {
		if c != 1 {
			t.Fatalf("index %d called %d times, want 1", i, c)
		}
	}
}

func TestProcessZeroItems(t *testing.T) {
	p := New(4)
	called := false
	p.Process(0, func(i int) { called = true })
	if called {
		t.Fatal("fn should not be called for n=0")
	}
}

func TestNewDefaultsNonPositiveWorkers(t *testing.T) {
	p := New(0)
	if p.workers <= 0 {
		t.Fatalf("workers = %d, want positive", p.workers)
	}
}
