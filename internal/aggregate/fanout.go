package aggregate

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Task is one unit of the fan-out: a named function producing a value
// or an error.
type Task[T any] struct {
	// Name identifies the task in results and failure records.
	Name string

	// Run produces the task's value. It must honor ctx.
	Run func(ctx context.Context) (T, error)
}

// Result is the outcome of one task. Exactly one of Value and Err is
// meaningful, discriminated by Err.
type Result[T any] struct {
	Name  string
	Value T
	Err   error
}

// runAll executes every task concurrently and waits for all of them.
// Each task gets its own timeout-bounded context, and a panicking task
// is converted into a failed result instead of tearing the process
// down. Results come back in task order.
//
// Design decision: errgroup is used for structured waiting only; task
// errors are captured in results, never returned to the group, so one
// failing task cannot cancel its siblings.
func runAll[T any](ctx context.Context, timeout time.Duration, tasks []Task[T]) []Result[T] {
	results := make([]Result[T], len(tasks))

	g, ctx := errgroup.WithContext(ctx)
	for i, task := range tasks {
		g.Go(func() error {
			results[i] = Result[T]{Name: task.Name}
			results[i].Value, results[i].Err = runOne(ctx, timeout, task)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// runOne executes a single task with its own timeout and panic guard.
func runOne[T any](ctx context.Context, timeout time.Duration, task Task[T]) (value T, err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return task.Run(ctx)
}
