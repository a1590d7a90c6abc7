package soft

import (
	"context"
	"sync"
)

type fence struct {
	mutex    sync.Mutex
	signaled bool
	done     chan struct{}
}

func newFence() *fence {
	return &fence{done: make(chan struct{})}
}

func (f *fence) Wait(ctx context.Context) error {
	f.mutex.Lock()
	done := f.done
	f.mutex.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fence) Signaled() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	return f.signaled
}

func (f *fence) Reset() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.signaled {
		f.signaled = false
		f.done = make(chan struct{})
	}

	return nil
}

func (f *fence) signal() {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if !f.signaled {
		f.signaled = true
		close(f.done)
	}
}

func (f *fence) Destroy() {}
