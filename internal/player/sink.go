package player

import (
	"github.com/llehouerou/playcore/internal/engine"
	"github.com/llehouerou/playcore/internal/errmsg"
	"github.com/llehouerou/playcore/internal/media"
	"github.com/llehouerou/playcore/internal/render"
	"github.com/llehouerou/playcore/internal/status"
)

// sessionSink receives the reports of one session's pipeline. Reports are
// dropped unless the session is the current, opened one.
type sessionSink struct {
	p *Player
	s *session
}

var _ engine.Sink = (*sessionSink)(nil)

// lock takes the player lock and reports whether the session is current.
// The lock is released when it is not.
func (k *sessionSink) lock() bool {
	k.p.mu.Lock()
	if k.s != k.p.cur || !k.s.ready {
		k.p.mu.Unlock()
		return false
	}
	return true
}

func (k *sessionSink) Frame(f render.Frame) {
	if !k.lock() {
		return
	}
	defer k.p.mu.Unlock()
	k.p.hub.Push(f)
}

func (k *sessionSink) Position(ms int64) {
	if !k.lock() {
		return
	}
	defer k.p.mu.Unlock()
	k.p.applyLoopLocked(k.s, k.p.loop.Advance(ms))
}

func (k *sessionSink) Buffering(progress int) {
	if !k.lock() {
		return
	}
	defer k.p.mu.Unlock()
	p := k.p
	p.updateStatusLocked(func(m status.MediaStatus) status.MediaStatus {
		if progress < 100 {
			return m.Without(status.Buffered).With(status.Buffering)
		}
		return m.Without(status.Buffering).With(status.Buffered)
	})
	p.postEventLocked(media.MediaEvent{
		Error:    int64(progress),
		Category: media.CategoryReaderBuffering,
		Stream:   -1,
	})
}

func (k *sessionSink) Stalled(stalled bool) {
	if !k.lock() {
		return
	}
	defer k.p.mu.Unlock()
	k.p.updateStatusLocked(func(m status.MediaStatus) status.MediaStatus {
		if stalled {
			return m.With(status.Stalled)
		}
		return m.Without(status.Stalled)
	})
}

func (k *sessionSink) Event(e media.MediaEvent) {
	if !k.lock() {
		return
	}
	defer k.p.mu.Unlock()
	k.p.postEventLocked(e)
}

func (k *sessionSink) EndOfStream() {
	if !k.lock() {
		return
	}
	defer k.p.mu.Unlock()
	k.p.applyLoopLocked(k.s, k.p.loop.AtEnd())
}

func (k *sessionSink) Failed(err error) {
	if !k.lock() {
		return
	}
	defer k.p.mu.Unlock()
	k.p.failMediaLocked(k.s, errmsg.OpPlayback, err)
}
