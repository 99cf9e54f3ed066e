package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

var ErrDispatcherStopped = errors.New("dispatcher stopped")

// Dispatcher runs every state mutation on one goroutine, in submission order.
// A job runs to completion before the next starts, so rooms and registries need no locks.
type Dispatcher struct {
	jobs chan func()
	done chan struct{}
}

func NewDispatcher(queue int) *Dispatcher {
	if queue <= 0 {
		queue = 256
	}
	return &Dispatcher{
		jobs: make(chan func(), queue),
		done: make(chan struct{}),
	}
}

// Run drains the queue until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	log.Info().Str("module", "app.dispatcher").Msg("dispatcher started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.dispatcher").Msg("dispatcher stopped")
			return
		case job := <-d.jobs:
			_ = d.exec(job)
		}
	}
}

func (d *Dispatcher) exec(job func()) error {
	var pc panics.Catcher
	pc.Try(job)
	if r := pc.Recovered(); r != nil {
		log.Error().Str("module", "app.dispatcher").Interface("panic", r.Value).Bytes("stack", r.Stack).Msg("job panicked")
		return fmt.Errorf("job panicked: %w", r.AsError())
	}
	return nil
}

// Do submits fn and waits for it to finish. A panic inside fn is returned as an error.
// Calling Do from inside a job deadlocks.
func (d *Dispatcher) Do(ctx context.Context, fn func()) error {
	errc := make(chan error, 1)
	job := func() { errc <- d.exec(fn) }
	select {
	case d.jobs <- job:
	case <-d.done:
		return ErrDispatcherStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errc:
		return err
	case <-d.done:
		return ErrDispatcherStopped
	}
}

// Post enqueues fn without waiting for it. Used by timers and other callbacks
// that fire outside the dispatcher goroutine; never call it from inside a job.
func (d *Dispatcher) Post(fn func()) bool {
	select {
	case d.jobs <- fn:
		return true
	case <-d.done:
		return false
	}
}
