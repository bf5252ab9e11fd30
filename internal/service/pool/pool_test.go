package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func BenchmarkDoParallel(b *testing.B) {
	for _, size := range []int{1, 4, 32, Max} {
		b.Run(fmt.Sprintf("max-concurrent=%d", size), func(b *testing.B) {
			p := New(size)
			ctx := context.Background()
			noop := func(context.Context) error { return nil }
			b.ReportAllocs()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					if err := p.Do(ctx, noop); err != nil {
						b.Fatal(err)
					}
				}
			})
		})
	}
}

func TestNewClampsMaxConcurrent(t *testing.T) {
	tests := []struct {
		configured int
		want       int
	}{
		{configured: -5, want: 1},
		{configured: 0, want: 1},
		{configured: 1, want: 1},
		{configured: 4, want: 4},
		{configured: Max, want: Max},
		{configured: Max + 1, want: Max},
		{configured: 10000, want: Max},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("max-concurrent=%d", tt.configured), func(t *testing.T) {
			if got := New(tt.configured).Cap(); got != tt.want {
				t.Errorf("New(%d).Cap() = %d, want %d", tt.configured, got, tt.want)
			}
		})
	}
}

// saturate starts size calls that hold their slot until the returned
// release func is called.
func saturate(t *testing.T, p *Pool) (release func()) {
	t.Helper()

	hold := make(chan struct{})
	var entered, done sync.WaitGroup
	for i := 0; i < p.Cap(); i++ {
		entered.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			_ = p.Do(context.Background(), func(context.Context) error {
				entered.Done()
				<-hold
				return nil
			})
		}()
	}
	entered.Wait()

	var once sync.Once
	release = func() {
		once.Do(func() {
			close(hold)
			done.Wait()
		})
	}
	t.Cleanup(release)
	return release
}

// TestDoWaitsForFreeSlot checks that a call beyond the limit runs once the
// in-flight calls finish.
func TestDoWaitsForFreeSlot(t *testing.T) {
	for _, size := range []int{1, 3, 16} {
		t.Run(fmt.Sprintf("max-concurrent=%d", size), func(t *testing.T) {
			p := New(size)
			release := saturate(t, p)

			if got := p.InUse(); got != size {
				t.Fatalf("expected %d calls in flight, got %d", size, got)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			ran := make(chan struct{})
			done := make(chan error, 1)
			go func() {
				done <- p.Do(ctx, func(context.Context) error {
					close(ran)
					return nil
				})
			}()

			select {
			case <-ran:
				t.Fatal("call ran while every slot was held")
			case <-time.After(50 * time.Millisecond):
			}

			release()

			select {
			case err := <-done:
				if err != nil {
					t.Fatalf("unexpected error after release: %v", err)
				}
			case <-time.After(time.Second):
				t.Fatal("waiting call did not run after release")
			}
			if got := p.InUse(); got != 0 {
				t.Fatalf("expected no calls in flight, got %d", got)
			}
		})
	}
}

// TestDoGivesUpAtReplyDeadline checks that a saturated pool fails the call
// with the context's error and never runs it.
func TestDoGivesUpAtReplyDeadline(t *testing.T) {
	p := New(2)
	saturate(t, p)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	called := false
	err := p.Do(ctx, func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected %v, got %v", context.DeadlineExceeded, err)
	}
	if called {
		t.Fatal("call must not run without a slot")
	}
}

func TestDoReleasesSlot(t *testing.T) {
	t.Parallel()

	p := New(1)

	var inside int
	err := p.Do(context.Background(), func(context.Context) error {
		inside = p.InUse()
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inside != 1 {
		t.Fatalf("expected 1 slot in use inside Do, got %d", inside)
	}
	if got := p.InUse(); got != 0 {
		t.Fatalf("expected slot released, got %d in use", got)
	}

	want := errors.New("generator down")
	if err := p.Do(context.Background(), func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
	if got := p.InUse(); got != 0 {
		t.Fatalf("expected slot released after error, got %d in use", got)
	}
}

func TestAcquireCanceled(t *testing.T) {
	t.Parallel()

	p := New(1)
	if err := p.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer p.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected %v, got %v", context.Canceled, err)
	}
	if got := p.InUse(); got != 1 {
		t.Fatalf("canceled acquire must not take a slot, got %d in use", got)
	}
}
