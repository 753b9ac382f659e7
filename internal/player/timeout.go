package player

import (
	"context"
	"time"
)

// TimeoutFunc is consulted each time an operation exceeds its timeout.
// Returning true aborts the operation, false keeps waiting another period.
type TimeoutFunc func(elapsed time.Duration) bool

type timeoutPolicy struct {
	timeout time.Duration // negative waits forever
	fn      TimeoutFunc
}

// SetTimeout sets the timeout of load, prepare, seek and bitrate switch
// operations. A negative d never times out. With a nil fn an operation
// aborts as soon as d elapses. Zero restores the 10s default.
func (p *Player) SetTimeout(d time.Duration, fn TimeoutFunc) {
	if d == 0 {
		d = defaultTimeout
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeout = timeoutPolicy{timeout: d, fn: fn}
}

type result[T any] struct {
	v   T
	err error
}

// awaitResult runs fn on its own goroutine and waits for its result, the end
// of ctx or an aborting timeout. When the wait is abandoned fn's context is
// canceled and release receives any late successful result.
func awaitResult[T any](ctx context.Context, pol timeoutPolicy, fn func(context.Context) (T, error), release func(T)) (T, error) {
	opCtx, cancel := context.WithCancel(ctx)
	ch := make(chan result[T], 1)
	go func() {
		v, err := fn(opCtx)
		ch <- result[T]{v: v, err: err}
	}()

	abandon := func() {
		cancel()
		if release == nil {
			return
		}
		go func() {
			if r := <-ch; r.err == nil {
				release(r.v)
			}
		}()
	}

	var zero T
	start := time.Now()
	for {
		var expired <-chan time.Time
		var timer *time.Timer
		if pol.timeout >= 0 {
			timer = time.NewTimer(pol.timeout)
			expired = timer.C
		}
		select {
		case r := <-ch:
			stopTimer(timer)
			cancel()
			return r.v, r.err
		case <-ctx.Done():
			stopTimer(timer)
			abandon()
			return zero, ErrCanceled
		case <-expired:
			if pol.fn == nil || pol.fn(time.Since(start)) {
				abandon()
				return zero, ErrTimeout
			}
		}
	}
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
