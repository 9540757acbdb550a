package register

import (
	"fmt"
	"sync"
)

// WriteOnce is a value that can be written at most once. Read blocks until
// some other goroutine has written the value.
type WriteOnce[T any] struct {
	mu      sync.Mutex
	c       sync.Cond
	written bool
	val     T
}

func (w *WriteOnce[T]) Write(val T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.init()

	if w.written {
		panic(fmt.Sprintf("WriteOnce written more than once %v, new %v", w.val, val))
	}

	w.val = val
	w.written = true
	w.c.Broadcast()

}

func (w *WriteOnce[T]) TryWrite(val T) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.init()

	if w.written {
		return false
	}
	w.val = val
	w.written = true
	w.c.Broadcast()
	return true
}

func (w *WriteOnce[T]) Read() T {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.init()

	for !w.written {
		w.c.Wait()
	}

	return w.val
}

func (w *WriteOnce[T]) init() {
	if w.c.L == nil {
		w.c.L = &w.mu
	}
}
