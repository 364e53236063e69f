package grid

import "context"

// Task is a handle on background work started by LoadAsync or SaveAsync.
type Task[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc
	val    T
	err    error
}

func startTask[T any](ctx context.Context, fn func(context.Context) (T, error)) *Task[T] {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task[T]{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer close(t.done)
		defer cancel()
		t.val, t.err = fn(ctx)
	}()
	return t
}

func finishedTask[T any](val T, err error) *Task[T] {
	t := &Task[T]{done: make(chan struct{}), cancel: func() {}, val: val, err: err}
	close(t.done)
	return t
}

// Done is closed once the work has finished.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Cancel aborts the work. It is safe to call more than once and after the
// task finished.
func (t *Task[T]) Cancel() {
	t.cancel()
}

// Wait blocks until the task finishes or ctx is done. Giving up on the wait
// does not cancel the task.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.val, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
