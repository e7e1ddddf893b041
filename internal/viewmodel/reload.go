package viewmodel

import (
	"context"
	"sync"

	"rezepte/internal/logging"
	"rezepte/internal/recipe"
)

// reloader serializes store reloads. At most one fetch is in flight; requests
// arriving meanwhile coalesce into a single follow-up fetch, and the result of
// a fetch that has a follow-up queued behind it is discarded. Every waiter is
// released by the first fetch that completes with nothing queued, which
// necessarily started after the waiter asked.
type reloader struct {
	fetch   func(context.Context) ([]recipe.Recipe, error)
	apply   func([]recipe.Recipe)
	onError func(error)

	mu      sync.Mutex
	running bool
	pending bool
	waiters []chan error
	flights int
}

func newReloader(fetch func(context.Context) ([]recipe.Recipe, error), apply func([]recipe.Recipe), onError func(error)) *reloader {
	return &reloader{fetch: fetch, apply: apply, onError: onError}
}

// Reload requests a fresh fetch and waits for it. The fetch itself is not
// bound to ctx: abandoning the wait leaves the reload running so other
// waiters still get a result.
func (r *reloader) Reload(ctx context.Context) error {
	done := make(chan error, 1)

	r.mu.Lock()
	r.waiters = append(r.waiters, done)
	if r.running {
		r.pending = true
		r.mu.Unlock()
	} else {
		r.running = true
		r.mu.Unlock()
		go r.loop()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InFlight reports whether a fetch is running.
func (r *reloader) InFlight() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Flights returns the number of fetches started so far.
func (r *reloader) Flights() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flights
}

func (r *reloader) loop() {
	for {
		r.mu.Lock()
		r.flights++
		flight := r.flights
		r.mu.Unlock()

		recipes, err := r.fetch(context.Background())

		r.mu.Lock()
		if r.pending {
			r.pending = false
			r.mu.Unlock()
			logging.StoreDebug("reload %d superseded, fetching again", flight)
			continue
		}

		// Apply before releasing waiters so they observe the new store.
		if err != nil {
			r.onError(err)
		} else {
			r.apply(recipes)
		}
		waiters := r.waiters
		r.waiters = nil
		r.running = false
		r.mu.Unlock()

		for _, w := range waiters {
			w <- err
		}
		return
	}
}
