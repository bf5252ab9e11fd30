package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliamunaev/coffee-sms/internal/apperr"
	"github.com/iliamunaev/coffee-sms/internal/cart"
	"github.com/iliamunaev/coffee-sms/internal/menu"
	"github.com/iliamunaev/coffee-sms/internal/payment"
)

type testKindErr struct {
	kind string
}

func (e testKindErr) Error() string { return e.kind }
func (e testKindErr) Kind() string  { return e.kind }

var t0 = time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC)

func sampleCart() *cart.Cart {
	c := cart.New()
	c.Add(menu.Item{ID: 1, Name: "Espresso", Price: 350, Category: menu.Hot}, nil, 1)
	c.Add(menu.Item{ID: 7, Name: "Muffin", Price: 300, Category: menu.Food}, nil, 1)
	return c
}

func TestNewSnapshotsCart(t *testing.T) {
	t.Parallel()

	c := sampleCart()
	o := New("+1555", c, payment.MethodCash, t0, 15*time.Minute)
	c.Clear()

	assert.Len(t, o.ID, 8)
	assert.Equal(t, Pending, o.Status)
	assert.Equal(t, menu.Money(650), o.Total)
	assert.Equal(t, payment.MethodCash, o.Method)
	assert.Equal(t, t0.Add(15*time.Minute), o.EstimatedReadyAt)
	require.Len(t, o.Lines, 2, "order must not share the cart's lines")
}

func TestNewIDUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		require.Len(t, id, 8)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to Status
		ok       bool
	}{
		{Pending, Preparing, true},
		{Preparing, Ready, true},
		{Ready, Completed, true},
		{Pending, Cancelled, true},
		{Preparing, Cancelled, true},
		{Ready, Cancelled, true},
		{Pending, Ready, false},
		{Pending, Completed, false},
		{Ready, Preparing, false},
		{Completed, Cancelled, false},
		{Cancelled, Pending, false},
		{Pending, Pending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"_"+string(tt.to), func(t *testing.T) {
			t.Parallel()

			if got := tt.from.CanTransition(tt.to); got != tt.ok {
				t.Fatalf("expected %v, got %v", tt.ok, got)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	st, ok := ParseStatus(" ready ")
	assert.True(t, ok)
	assert.Equal(t, Ready, st)

	_, ok = ParseStatus("shipped")
	assert.False(t, ok)
}

func TestBook(t *testing.T) {
	t.Parallel()

	b := NewBook()
	_, ok := b.Latest("a")
	assert.False(t, ok)

	first := New("a", sampleCart(), payment.MethodCash, t0, 15*time.Minute)
	second := New("a", sampleCart(), payment.MethodCard, t0.Add(time.Hour), 15*time.Minute)
	b.Append(first)
	b.Append(second)
	b.Append(New("b", sampleCart(), payment.MethodCash, t0, 15*time.Minute))

	assert.Equal(t, 3, b.Count())

	list := b.Orders("a")
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	latest, ok := b.Latest("a")
	require.True(t, ok)
	assert.Equal(t, second.ID, latest.ID)

	list[0].Lines[0].Quantity = 99
	again, err := b.Get("a", first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Lines[0].Quantity)

	_, err = b.Get("a", "missing")
	assert.ErrorIs(t, err, apperr.ErrOrderNotFound)
	_, err = b.Get("b", first.ID)
	assert.ErrorIs(t, err, apperr.ErrOrderNotFound)
}

func TestBookUpdateStatus(t *testing.T) {
	t.Parallel()

	b := NewBook()
	o := New("a", sampleCart(), payment.MethodCash, t0, 15*time.Minute)
	b.Append(o)

	for _, next := range []Status{Preparing, Ready, Completed} {
		got, err := b.UpdateStatus("a", o.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, got.Status)
	}

	_, err := b.UpdateStatus("a", o.ID, Cancelled)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	assert.Equal(t, "invalid_transition", apperr.Kind(err))

	_, err = b.UpdateStatus("a", "nope", Preparing)
	assert.ErrorIs(t, err, apperr.ErrOrderNotFound)

	latest, _ := b.Latest("a")
	assert.Equal(t, Completed, latest.Status)
}

func TestBookConcurrentAppend(t *testing.T) {
	t.Parallel()

	b := NewBook()
	const workers = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Go(func() {
			b.Append(New("a", sampleCart(), payment.MethodCash, t0, time.Minute))
			_ = b.Orders("a")
		})
	}
	wg.Wait()

	assert.Len(t, b.Orders("a"), workers)
}

func TestNewFulfiller_EmptyStepsPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for empty steps")
		}
	}()
	NewFulfiller(time.Second)
}

func TestFulfill_AllSuccess(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	seen := make(map[string]string)
	record := func(name string) Step {
		return Step{Name: name, Run: func(_ context.Context, o Order) error {
			mu.Lock()
			seen[name] = o.ID
			mu.Unlock()
			return nil
		}}
	}

	f := NewFulfiller(time.Second, record("kitchen"), record("receipt"))
	o := New("a", sampleCart(), payment.MethodCash, t0, time.Minute)

	results, err := f.Run(context.Background(), o)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Status != "ok" {
			t.Errorf("step %s: expected status ok, got %q", r.Name, r.Status)
		}
	}
	assert.Equal(t, map[string]string{"kitchen": o.ID, "receipt": o.ID}, seen)
}

// Errgroup cancels the shared context when one step returns an error.
// Sibling steps must observe ctx.Done() and report "canceled".
func TestFulfill_ErrorCancelsSiblings(t *testing.T) {
	t.Parallel()

	domainErr := testKindErr{kind: "kitchen_unavailable"}

	f := NewFulfiller(0,
		Step{Name: "fast_fail", Run: func(context.Context, Order) error { return domainErr }},
		Step{Name: "slow", Run: func(ctx context.Context, _ Order) error {
			select {
			case <-time.After(5 * time.Second):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}},
	)

	results, err := f.Run(context.Background(), Order{ID: "o-2"})
	if !errors.Is(err, domainErr) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if results[0].Status != "error" || results[0].Detail != "kitchen_unavailable" {
		t.Fatalf("expected fast_fail: error/kitchen_unavailable, got %+v", results[0])
	}
	if results[1].Status != "canceled" {
		t.Fatalf("expected slow: canceled, got %+v", results[1])
	}
}

func TestFulfill_Timeout(t *testing.T) {
	t.Parallel()

	f := NewFulfiller(5*time.Millisecond, Step{Name: "slow", Run: func(ctx context.Context, _ Order) error {
		<-ctx.Done()
		return ctx.Err()
	}})

	results, err := f.Run(context.Background(), Order{ID: "o-4"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if results[0].Status != "canceled" {
		t.Fatalf("expected canceled, got %q", results[0].Status)
	}
}

func TestFulfill_ErrorWithoutKind(t *testing.T) {
	t.Parallel()

	plainErr := errors.New("boom")
	f := NewFulfiller(time.Second, Step{Name: "fail", Run: func(context.Context, Order) error { return plainErr }})

	results, err := f.Run(context.Background(), Order{ID: "o-5"})
	if !errors.Is(err, plainErr) {
		t.Fatalf("expected plainErr, got %v", err)
	}
	if results[0].Status != "error" {
		t.Fatalf("expected error, got %q", results[0].Status)
	}
	if results[0].Detail != "" {
		t.Fatalf("expected empty detail, got %q", results[0].Detail)
	}
}

// Results are indexed by registration order, not completion order.
func TestFulfill_ResultOrder(t *testing.T) {
	t.Parallel()

	f := NewFulfiller(time.Second,
		Step{Name: "slow", Run: func(ctx context.Context, _ Order) error {
			select {
			case <-time.After(20 * time.Millisecond):
			case <-ctx.Done():
			}
			return nil
		}},
		Step{Name: "fast", Run: func(context.Context, Order) error { return nil }},
	)

	results, err := f.Run(context.Background(), Order{ID: "o-6"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Name != "slow" || results[1].Name != "fast" {
		t.Fatalf("expected [slow, fast], got [%s, %s]", results[0].Name, results[1].Name)
	}
}
