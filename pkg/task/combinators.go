package task

import (
	"context"
	"sync"
)

// Outcome is one task's result within an AllSettled call.
type Outcome[T any] struct {
	Value T
	Err   error
}

// All runs every task concurrently under ctx and waits for all of them.
// If any task fails, All aborts the rest (by cancelling a derived
// context shared across the run) and returns the first error observed;
// partial results are discarded.
func All[T any](ctx context.Context, tasks []*Task[T]) ([]T, error) {
	if len(tasks) == 0 {
		return nil, nil
	}
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	results := make([]T, len(tasks))
	errs := make([]error, len(tasks))
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, tk := range tasks {
		go func(i int, tk *Task[T]) {
			defer wg.Done()
			v, err := tk.Run(runCtx)
			results[i] = v
			errs[i] = err
			if err != nil {
				cancel(err)
			}
		}(i, tk)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// AllSettled runs every task concurrently under ctx and waits for all of
// them, regardless of individual failures. It never aborts siblings.
func AllSettled[T any](ctx context.Context, tasks []*Task[T]) []Outcome[T] {
	out := make([]Outcome[T], len(tasks))
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, tk := range tasks {
		go func(i int, tk *Task[T]) {
			defer wg.Done()
			v, err := tk.Run(ctx)
			out[i] = Outcome[T]{Value: v, Err: err}
		}(i, tk)
	}
	wg.Wait()
	return out
}

// Race runs every task concurrently and returns as soon as one completes
// (success or failure), aborting the rest.
func Race[T any](ctx context.Context, tasks []*Task[T]) (T, error) {
	var zero T
	if len(tasks) == 0 {
		return zero, ErrNoTasks
	}
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	type outcome struct {
		val T
		err error
	}
	results := make(chan outcome, len(tasks))
	for _, tk := range tasks {
		go func(tk *Task[T]) {
			v, err := tk.Run(runCtx)
			select {
			case results <- outcome{v, err}:
			default:
			}
		}(tk)
	}
	first := <-results
	cancel(nil)
	return first.val, first.err
}

// Any runs every task concurrently and returns the value of the first
// one to succeed, aborting the rest. If every task fails, Any returns an
// AggregateError listing every failure.
func Any[T any](ctx context.Context, tasks []*Task[T]) (T, error) {
	var zero T
	if len(tasks) == 0 {
		return zero, ErrNoTasks
	}
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	type outcome struct {
		val T
		err error
	}
	results := make(chan outcome, len(tasks))
	for _, tk := range tasks {
		go func(tk *Task[T]) {
			v, err := tk.Run(runCtx)
			results <- outcome{v, err}
		}(tk)
	}

	errs := make([]error, 0, len(tasks))
	for i := 0; i < len(tasks); i++ {
		o := <-results
		if o.err == nil {
			cancel(nil)
			return o.val, nil
		}
		errs = append(errs, o.err)
	}
	return zero, &AggregateError{Errs: errs}
}
