package workpool

import (
	"context"
	"errors"
	"sync"
)

// TaskError accumulates multiple errors produced by a bulk run.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Pool bounds how many tasks of one fan-out run at the same time.
type Pool struct {
	workers int
}

// New creates a Pool with the provided concurrency.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = 4
	}
	return &Pool{workers: workers}
}

// Workers returns the concurrency limit.
func (p *Pool) Workers() int {
	return p.workers
}

// Outcome is the per-item result of Map.
type Outcome[R any] struct {
	Value R
	Err   error
}

// OK reports whether the item completed without error.
func (o Outcome[R]) OK() bool {
	return o.Err == nil
}

// Map runs fn over every item with at most p.Workers() in flight and returns
// one Outcome per item, in input order. A failing item never cancels its
// siblings; items not started before ctx is done report ctx.Err().
func Map[T, R any](ctx context.Context, p *Pool, items []T, fn func(context.Context, T) (R, error)) []Outcome[R] {
	out := make([]Outcome[R], len(items))
	started := make([]bool, len(items))
	p.dispatch(ctx, len(items), func(idx int) {
		started[idx] = true
		if err := ctx.Err(); err != nil {
			out[idx].Err = err
			return
		}
		v, err := fn(ctx, items[idx])
		out[idx] = Outcome[R]{Value: v, Err: err}
	})
	if err := ctx.Err(); err != nil {
		for i := range out {
			if !started[i] {
				out[i].Err = err
			}
		}
	}
	return out
}

// Run processes total indices concurrently and aggregates failures into a
// TaskError. Context cancellation is returned directly.
func (p *Pool) Run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	errCh := make(chan error, total)
	p.dispatch(ctx, total, func(idx int) {
		if err := workerFn(idx); err != nil {
			errCh <- err
		}
	})
	close(errCh)

	var taskErr TaskError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return taskErr.asError()
}

func (p *Pool) dispatch(ctx context.Context, total int, workerFn func(idx int)) {
	if total == 0 {
		return
	}
	indexCh := make(chan int)
	var wg sync.WaitGroup

	workers := p.workers
	if workers > total {
		workers = total
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				workerFn(idx)
			}
		}()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
}
