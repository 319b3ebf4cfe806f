package listing

import "context"

// Task completes once its continuation has run on the loop.
type Task struct {
	done chan struct{}
	err  error
}

func newTask() *Task { return &Task{done: make(chan struct{})} }

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}

func (t *Task) Done() <-chan struct{} { return t.done }

// Err is nil until Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
