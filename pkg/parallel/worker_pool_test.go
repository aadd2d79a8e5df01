package parallel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dd0wney/capsl/pkg/logging"
)

// TestWorkerPoolBasicOperations tests basic worker pool functionality
func TestWorkerPoolBasicOperations(t *testing.T) {
	pool := NewWorkerPool(4, nil)

	executed := false
	if !pool.Submit(func() { executed = true }) {
		t.Error("Task submission failed")
	}
	pool.Close()

	if !executed {
		t.Error("Task was not executed")
	}
}

// TestWorkerPoolConcurrentSubmissions tests concurrent task submissions
func TestWorkerPoolConcurrentSubmissions(t *testing.T) {
	pool := NewWorkerPool(10, nil)

	numTasks := 100
	var counter int64

	var wg sync.WaitGroup
	for i := 0; i < numTasks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Submit(func() {
				atomic.AddInt64(&counter, 1)
			})
		}()
	}

	wg.Wait()
	pool.Close()

	if counter != int64(numTasks) {
		t.Errorf("Expected counter %d, got %d", numTasks, counter)
	}
}

// TestWorkerPoolCloseRace closes the pool while tasks are being submitted
func TestWorkerPoolCloseRace(t *testing.T) {
	for iteration := 0; iteration < 50; iteration++ {
		pool := NewWorkerPool(4, nil)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					pool.Submit(func() {
						time.Sleep(time.Millisecond)
					})
				}
			}()
		}

		time.Sleep(time.Millisecond)
		pool.Close()
		wg.Wait()
	}
}

func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	pool := NewWorkerPool(2, nil)
	pool.Close()
	pool.Close()

	if pool.Submit(func() {}) {
		t.Error("Expected Submit to fail on a closed pool")
	}
}

func TestWorkerPoolRecoversPanics(t *testing.T) {
	logger := logging.NewMemoryLogger(logging.DebugLevel)
	pool := NewWorkerPool(1, logger)

	var ran atomic.Bool
	pool.Submit(func() { panic("boom") })
	pool.Submit(func() { ran.Store(true) })
	pool.Close()

	if !ran.Load() {
		t.Error("Worker did not survive the panic")
	}
	if logger.Count(logging.ErrorLevel) != 1 {
		t.Errorf("Expected 1 error log, got %d", logger.Count(logging.ErrorLevel))
	}
}

func TestMapPreservesOrder(t *testing.T) {
	items := []int{5, 1, 4, 2, 3}
	out, err := Map(context.Background(), 3, items, func(_ context.Context, n int) (int, error) {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * n, nil
	}, nil)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}

	want := []int{25, 1, 16, 4, 9}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}

func TestMapReturnsFirstError(t *testing.T) {
	errBad := errors.New("bad item")
	_, err := Map(context.Background(), 2, []string{"a", "bad", "c", "d"}, func(ctx context.Context, s string) (string, error) {
		if s == "bad" {
			return "", errBad
		}
		return s, nil
	}, nil)
	if !errors.Is(err, errBad) {
		t.Errorf("Expected errBad, got %v", err)
	}
}

func TestMapPanic(t *testing.T) {
	_, err := Map(context.Background(), 1, []int{1}, func(context.Context, int) (int, error) {
		panic("boom")
	}, nil)
	if !errors.Is(err, ErrTaskPanic) {
		t.Errorf("Expected ErrTaskPanic, got %v", err)
	}
}

func TestMapCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	_, err := Map(ctx, 2, []int{1, 2, 3}, func(context.Context, int) (int, error) {
		calls.Add(1)
		return 0, nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("Expected no calls, got %d", calls.Load())
	}
}

func TestMapEmpty(t *testing.T) {
	out, err := Map(context.Background(), 4, nil, func(context.Context, int) (int, error) {
		return 0, nil
	}, nil)
	if err != nil || len(out) != 0 {
		t.Errorf("Map(nil) = %v, %v", out, err)
	}
}
