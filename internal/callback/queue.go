package callback

import "sync"

// Queue delivers callbacks in FIFO order on a single goroutine.
//
// Post never blocks and never runs user code, so producers may post while
// holding their own locks; delivery order then matches mutation order.
// Callbacks run without any Queue lock held and may post further work.
type Queue struct {
	mu     sync.Mutex
	items  []func()
	wake   chan struct{}
	closed bool
	done   chan struct{}
}

// NewQueue starts the delivery goroutine.
func NewQueue() *Queue {
	q := &Queue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

// Post appends fn. It returns false if the queue is closed.
func (q *Queue) Post(fn func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Flush blocks until everything posted before the call has been delivered.
// It must not be called from a callback running on the queue.
func (q *Queue) Flush() {
	ch := make(chan struct{})
	if !q.Post(func() { close(ch) }) {
		<-q.done
		return
	}
	<-ch
}

// Close stops accepting work. Pending callbacks are still delivered, then
// the goroutine exits. Close does not wait and is safe to call from a callback.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Done is closed once the queue is closed and drained.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		items := q.items
		q.items = nil
		closed := q.closed
		q.mu.Unlock()

		for _, fn := range items {
			fn()
		}
		if len(items) > 0 {
			continue
		}
		if closed {
			return
		}
		<-q.wake
	}
}
