// Package closer releases the application's resources on shutdown, last
// registered first.
package closer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const defaultForcedTimeout = 2 * time.Second

// Func releases one resource.
type Func func(ctx context.Context) error

type entry struct {
	name string
	fn   Func
}

// start runs the func in its own goroutine and reports on the returned channel.
func (e entry) start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		if err := e.fn(ctx); err != nil {
			done <- fmt.Errorf("%s: %w", e.name, err)
			return
		}
		done <- nil
	}()
	return done
}

// Closer holds named shutdown funcs and runs each of them at most once.
type Closer struct {
	mu            sync.Mutex
	entries       []entry
	once          sync.Once
	err           error
	forcedTimeout time.Duration
}

// New returns a Closer. forcedTimeout is the extra budget granted once the
// Close context expires; zero selects two seconds.
func New(forcedTimeout time.Duration) *Closer {
	if forcedTimeout <= 0 {
		forcedTimeout = defaultForcedTimeout
	}
	return &Closer{forcedTimeout: forcedTimeout}
}

// Add registers fn under name, which prefixes any error it returns.
func (c *Closer) Add(name string, fn Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry{name: name, fn: fn})
}

// Close runs the funcs one by one in LIFO order. When ctx expires, the func in
// flight keeps running and the ones not started yet are launched together
// with a fresh forcedTimeout context; Close then waits for all of them within
// that budget. Later calls return the first call's result.
func (c *Closer) Close(ctx context.Context) error {
	c.once.Do(func() {
		c.mu.Lock()
		entries := c.entries
		c.mu.Unlock()

		c.err = c.close(ctx, entries)
	})
	return c.err
}

func (c *Closer) close(ctx context.Context, entries []entry) error {
	var errs []error
	for i := len(entries) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			return c.interrupted(ctx, errs, nil, entries[:i+1])
		}

		done := entries[i].start(ctx)
		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, err)
			}
		case <-ctx.Done():
			inFlight := []running{{name: entries[i].name, done: done}}
			return c.interrupted(ctx, errs, inFlight, entries[:i])
		}
	}
	return errors.Join(errs...)
}

type running struct {
	name string
	done <-chan error
}

// interrupted waits for the funcs in flight and starts the rest concurrently,
// all bounded by forcedTimeout. Funcs still running when it ends are reported.
func (c *Closer) interrupted(ctx context.Context, errs []error, inFlight []running, rest []entry) error {
	errs = append(errs, fmt.Errorf("shutdown interrupted with %d func(s) left: %w", len(inFlight)+len(rest), ctx.Err()))

	forcedCtx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	pending := inFlight
	for i := len(rest) - 1; i >= 0; i-- {
		pending = append(pending, running{name: rest[i].name, done: rest[i].start(forcedCtx)})
	}

	for _, p := range pending {
		select {
		case err := <-p.done:
			if err != nil {
				errs = append(errs, err)
			}
		case <-forcedCtx.Done():
			errs = append(errs, fmt.Errorf("%s: still running after forced timeout", p.name))
		}
	}
	return errors.Join(errs...)
}
