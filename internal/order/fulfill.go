package order

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliamunaev/coffee-sms/internal/apperr"
	"github.com/iliamunaev/coffee-sms/internal/model"
)

// Step is one named fulfillment action run after an order is recorded.
type Step struct {
	Name string
	Run  func(ctx context.Context, o Order) error
}

// Fulfiller runs steps concurrently for a recorded order.
type Fulfiller struct {
	steps   []Step
	timeout time.Duration
}

// NewFulfiller panics if steps is empty. A non-positive timeout means the
// caller's context alone bounds the run.
func NewFulfiller(timeout time.Duration, steps ...Step) *Fulfiller {
	if len(steps) == 0 {
		panic("order.NewFulfiller: no steps")
	}
	return &Fulfiller{steps: steps, timeout: timeout}
}

// Run executes every step concurrently. The first failure cancels the
// others. Results are returned in registration order regardless of which
// goroutine finished first.
func (f *Fulfiller) Run(ctx context.Context, o Order) ([]model.StepResult, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	g, ctx := errgroup.WithContext(ctx)

	// Each goroutine writes only its own index.
	results := make([]model.StepResult, len(f.steps))

	for i, step := range f.steps {
		g.Go(func() error {
			start := time.Now()
			err := step.Run(ctx, o)

			st := "ok"
			detail := ""
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					st = "canceled"
				} else {
					st = "error"
					if k := apperr.Kind(err); k != "internal" {
						detail = k
					}
				}
			}

			results[i] = model.StepResult{
				Name:       step.Name,
				Status:     st,
				DurationMS: time.Since(start).Milliseconds(),
				Detail:     detail,
			}
			return err
		})
	}

	err := g.Wait()
	for _, r := range results {
		if r.Status != "ok" {
			log.Warningf("fulfillment step %s for order %s: %s %s", r.Name, o.ID, r.Status, r.Detail)
		}
	}
	return results, err
}
