package controller

import (
	"context"
	"sync"
)

// worker runs formatting passes one at a time. Every Go call is its own
// one-shot goroutine; each waits for the previously scheduled pass, so
// results reach the loop in trigger order.
type worker struct {
	mu   sync.Mutex
	tail chan struct{}
	wg   sync.WaitGroup
}

func newWorker() *worker { return &worker{} }

// Go schedules fn. It is skipped if ctx ends before its turn.
func (w *worker) Go(ctx context.Context, fn func(context.Context)) {
	w.mu.Lock()
	prev := w.tail
	done := make(chan struct{})
	w.tail = done
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer close(done)
		if prev != nil {
			select {
			case <-prev:
			case <-ctx.Done():
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		fn(ctx)
	}()
}

// Wait blocks until every scheduled pass has returned.
func (w *worker) Wait() { w.wg.Wait() }
