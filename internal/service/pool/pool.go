// Package pool bounds how many calls to the text-generation service are in
// flight at once. The app builds one Pool sized by llm.max-concurrent for the
// llm.Client, so a slow model backs up into Acquire instead of piling up open
// requests.
package pool

import "context"

// Max caps llm.max-concurrent.
const Max = 128

// Pool is a counting semaphore. The zero value is not usable; call New.
type Pool struct {
	sem chan struct{}
}

// New returns a Pool with size slots, clamped to [1, Max].
func New(size int) *Pool {
	switch {
	case size < 1:
		size = 1
	case size > Max:
		size = Max
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Acquire takes a slot, waiting while every slot is held. A reply cannot
// wait past its own deadline, so Acquire gives up with ctx.Err() and the
// caller falls back to the template text.
func (p *Pool) Acquire(ctx context.Context) error {
	select {
	case p.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot taken by Acquire.
func (p *Pool) Release() {
	<-p.sem
}

// Do runs fn while holding a slot. fn is not called when no slot frees up
// before ctx ends.
func (p *Pool) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := p.Acquire(ctx); err != nil {
		return err
	}
	defer p.Release()
	return fn(ctx)
}

// Cap reports the configured limit.
func (p *Pool) Cap() int { return cap(p.sem) }

// InUse reports how many calls hold a slot right now.
func (p *Pool) InUse() int { return len(p.sem) }
