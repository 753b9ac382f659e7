package player

import (
	"context"
	"errors"

	"github.com/llehouerou/playcore/internal/callback"
	"github.com/llehouerou/playcore/internal/engine"
	"github.com/llehouerou/playcore/internal/errmsg"
	"github.com/llehouerou/playcore/internal/media"
	"github.com/llehouerou/playcore/internal/status"
)

type prepareReq struct {
	start int64
	flags media.SeekFlag
	cb    *callback.OneShot[PrepareFunc]
}

// Prepare loads the media when needed and seeks to startMs, clamped into the
// playback range. cb receives the position prepared at, after the status
// gained Prepared, or -1 when the request fails or is superseded. A false
// return from cb unloads the media and keeps its MediaInfo.
func (p *Player) Prepare(startMs int64, cb PrepareFunc, flags media.SeekFlag) {
	p.mu.Lock()
	defer p.mu.Unlock()

	req := &prepareReq{start: startMs, flags: flags, cb: callback.NewOneShot(cb)}
	if p.closed || p.url == "" || p.status.Status().Has(status.Invalid) {
		p.failPrepareLocked(req)
		return
	}

	s := p.cur
	if s == nil {
		s = p.loadLocked()
	}
	if old := s.prepare; old != nil {
		p.failPrepareLocked(old)
	}
	s.prepare = req
	if s.ready {
		p.runPrepareLocked(s, req)
	}
}

func (p *Player) failPrepareLocked(req *prepareReq) {
	if fn, ok := req.cb.Take(); ok {
		p.post(func() {
			boost := false
			fn(-1, &boost)
		})
	}
}

// implicitPrepareLocked prepares from the start of the range for a state
// request that found the media loaded but not prepared.
func (p *Player) implicitPrepareLocked(s *session) {
	req := &prepareReq{flags: media.Default, cb: callback.NewOneShot[PrepareFunc](nil)}
	s.prepare = req
	p.runPrepareLocked(s, req)
}

func (p *Player) runPrepareLocked(s *session, req *prepareReq) {
	pos := p.loop.Start(req.start)
	s.prepared = false
	p.updateStatusLocked(func(m status.MediaStatus) status.MediaStatus {
		return m.Without(status.Prepared | status.End)
	})
	go p.runPrepare(s, req, s.pipeline, pos, p.timeout)
}

func (p *Player) runPrepare(s *session, req *prepareReq, pl engine.Pipeline, pos int64, pol timeoutPolicy) {
	got, err := awaitResult(s.ctx, pol, func(ctx context.Context) (int64, error) {
		return pl.Seek(ctx, pos, req.flags)
	}, nil)

	p.mu.Lock()
	if s != p.cur || s.prepare != req {
		p.mu.Unlock()
		return
	}
	if err != nil {
		s.prepare = nil
		p.failPrepareLocked(req)
		if isTimeout(err) || errors.Is(err, ErrCanceled) {
			op := errmsg.OpMediaPrepare
			if p.settling {
				op = errmsg.OpPlaybackStart
			}
			p.log.WithError(err).Warn(errmsg.Format(op, err))
			p.postEventLocked(media.MediaEvent{
				Error:    media.CodeOf(err),
				Category: media.CategoryReader,
				Detail:   errmsg.FormatWith(op, s.url, err),
				Stream:   -1,
			})
			p.settling = false
			p.target = p.state
		} else {
			p.failMediaLocked(s, errmsg.OpMediaPrepare, err)
		}
		p.mu.Unlock()
		return
	}
	p.updateStatusLocked(func(m status.MediaStatus) status.MediaStatus {
		return m.With(status.Prepared)
	})
	fn, ok := req.cb.Take()
	p.mu.Unlock()

	keep, boost := true, true
	if ok {
		done := make(chan struct{})
		if p.post(func() {
			defer close(done)
			keep = fn(got, &boost)
		}) {
			<-done
		} else {
			keep = false
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if s != p.cur || s.prepare != req {
		return
	}
	s.prepare = nil
	if !keep {
		p.unloadLocked(s)
		return
	}
	pl.SetBoost(boost)
	s.prepared = true
	if p.settling {
		p.startPlaybackLocked(s)
	}
}

// unloadLocked releases the current session and keeps MediaInfo.
func (p *Player) unloadLocked(s *session) {
	p.log.WithField("url", s.url).Debug("media unloaded")
	p.cancelSessionLocked(s, true)
	p.cur = nil
	p.updateStatusLocked(func(m status.MediaStatus) status.MediaStatus {
		return m.Without(activeFlags | status.Loaded | status.Prepared | status.End).With(status.Unloaded)
	})
	p.settling = false
	p.target = status.Stopped
	p.setStateLocked(status.Stopped)
}
