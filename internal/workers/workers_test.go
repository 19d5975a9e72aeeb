package workers

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCount(t *testing.T) {
	t.Setenv(EnvOverride, "")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{"CPU-bound task", 1.0, 0, 1, availableCPU},
		{"I/O-bound task", 2.0, 0, 1, availableCPU * 2},
		{"Mixed task", 1.5, 0, 1, int(float64(availableCPU) * 1.5)},
		{"With limit lower than calculated", 2.0, 2, 1, 2},
		{"Very low multiplier", 0.1, 0, 1, max(1, int(float64(availableCPU)*0.1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)
			if got < tt.minExpect || got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, expected in [%d, %d]",
					tt.multiplier, tt.limit, got, tt.minExpect, tt.maxExpect)
			}
		})
	}
}

func TestCountWithEnvOverride(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		limit    int
		expected int // -1 means fall back to the computed value
	}{
		{"Valid override", "8", 0, 8},
		{"Override with limit", "20", 10, 10},
		{"Override below limit", "5", 10, 5},
		{"Invalid override (non-numeric)", "invalid", 0, -1},
		{"Invalid override (zero)", "0", 0, -1},
		{"Invalid override (negative)", "-5", 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvOverride, tt.envValue)

			got := Count(1.0, tt.limit)
			if tt.expected < 0 {
				if got < 1 {
					t.Errorf("Count with invalid override should return at least 1, got %d", got)
				}
				return
			}
			if got != tt.expected {
				t.Errorf("Count(1.0, %d) with %s=%s = %d, want %d", tt.limit, EnvOverride, tt.envValue, got, tt.expected)
			}
		})
	}
}

func TestPoolRunsJobs(t *testing.T) {
	p := NewPool(2, 4)
	p.Start()
	defer p.Stop()

	ctx := context.Background()
	var wg sync.WaitGroup
	var total atomic.Int64
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			v, err := Run(ctx, p, func() (int, error) { return n, nil })
			if err != nil {
				t.Errorf("Run() error = %v", err)
				return
			}
			total.Add(int64(v))
		}(i)
	}
	wg.Wait()

	if total.Load() != 55 {
		t.Errorf("sum of results = %d, want 55", total.Load())
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	p := NewPool(2, 0)
	p.Start()
	defer p.Stop()

	var running, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = Run(context.Background(), p, func() (struct{}, error) {
				n := running.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				running.Add(-1)
				return struct{}{}, nil
			})
		}()
	}
	wg.Wait()

	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak.Load())
	}
}

func TestRunPropagatesError(t *testing.T) {
	p := NewPool(1, 1)
	p.Start()
	defer p.Stop()

	boom := errors.New("boom")
	_, err := Run(context.Background(), p, func() (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want boom", err)
	}
}

func TestSubmitAfterStop(t *testing.T) {
	p := NewPool(1, 1)
	p.Start()
	p.Stop()
	p.Stop() // second Stop is a no-op

	_, err := Run(context.Background(), p, func() (int, error) { return 1, nil })
	if !errors.Is(err, ErrPoolStopped) {
		t.Errorf("Run() after Stop error = %v, want ErrPoolStopped", err)
	}
}

func TestSubmitBeforeStart(t *testing.T) {
	p := NewPool(1, 4)

	_, err := Run(context.Background(), p, func() (int, error) { return 1, nil })
	if !errors.Is(err, ErrPoolNotStarted) {
		t.Errorf("Run() before Start error = %v, want ErrPoolNotStarted", err)
	}

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop() on a pool that never started did not return")
	}

	p.Start() // no effect after Stop
	if _, err := Run(context.Background(), p, func() (int, error) { return 1, nil }); !errors.Is(err, ErrPoolStopped) {
		t.Errorf("Run() after Stop error = %v, want ErrPoolStopped", err)
	}
}

func TestSubmitHonoursContextWhileQueueFull(t *testing.T) {
	p := NewPool(1, 0)
	p.Start()
	defer p.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = Run(context.Background(), p, func() (int, error) {
			close(started)
			<-release
			return 0, nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Submit(ctx, func() {})
	close(release)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Submit() error = %v, want deadline exceeded", err)
	}
}

func TestStopDrainsQueuedJobs(t *testing.T) {
	p := NewPool(1, 8)
	p.Start()

	var done atomic.Int32
	for i := 0; i < 5; i++ {
		if err := p.Submit(context.Background(), func() {
			time.Sleep(time.Millisecond)
			done.Add(1)
		}); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	p.Stop()

	if done.Load() != 5 {
		t.Errorf("completed jobs = %d, want 5", done.Load())
	}
}
