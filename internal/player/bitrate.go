package player

import (
	"context"
	"time"

	"github.com/llehouerou/playcore/internal/callback"
	"github.com/llehouerou/playcore/internal/engine"
	"github.com/llehouerou/playcore/internal/errmsg"
	"github.com/llehouerou/playcore/internal/media"
	"github.com/llehouerou/playcore/internal/mediainfo"
	"github.com/llehouerou/playcore/internal/status"
)

// switchOp is one bitrate switch in progress.
type switchOp struct {
	session *session
	delay   time.Duration
	cb      *callback.OneShot[SwitchFunc]
}

// SwitchBitrate replaces the current media with url, another rendition of the
// same content, without interrupting playback. url is opened alongside the
// current media, then after delay it is sought to the current position and
// takes over. cb reports the outcome exactly once. A new switch, SetMedia or
// a stop cancels a pending one.
func (p *Player) SwitchBitrate(url string, delay time.Duration, cb SwitchFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()

	op := &switchOp{delay: delay, cb: callback.NewOneShot(cb)}
	cur := p.cur
	if p.closed || url == "" || cur == nil || !cur.ready {
		p.finishSwitchLocked(op, false)
		return
	}
	p.cancelSwitchLocked()
	op.session = p.newSessionLocked(url)
	p.switching = op
	p.log.WithField("url", url).Debug("switching bitrate")
	p.openSession(op.session, p.openRequestLocked(url), p.switchOpenedLocked)
}

func (p *Player) switchOpenedLocked(s *session, pl engine.Pipeline, err error) bool {
	op := p.switching
	if op == nil || op.session != s {
		return false
	}
	if err != nil {
		p.switching = nil
		p.failSwitchLocked(op, err)
		return false
	}
	s.pipeline, s.ready = pl, true
	p.applySettingsLocked(pl)
	go p.completeSwitch(op, p.timeout)
	return true
}

func (p *Player) completeSwitch(op *switchOp, pol timeoutPolicy) {
	s := op.session
	if op.delay > 0 {
		t := time.NewTimer(op.delay)
		select {
		case <-t.C:
		case <-s.ctx.Done():
			t.Stop()
			return
		}
	}

	p.mu.Lock()
	cur := p.cur
	if p.switching != op || cur == nil || cur.pipeline == nil {
		p.mu.Unlock()
		return
	}
	pos := cur.pipeline.Position()
	pl := s.pipeline
	p.mu.Unlock()

	_, err := awaitResult(s.ctx, pol, func(ctx context.Context) (int64, error) {
		return pl.Seek(ctx, pos, media.From0)
	}, nil)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.switching != op {
		return
	}
	p.switching = nil
	if err != nil {
		p.failSwitchLocked(op, err)
		return
	}

	old := p.cur
	p.cancelSessionLocked(old, true)
	s.prepared = old != nil && old.prepared
	p.cur = s
	p.url = s.url
	p.info = mediainfo.New(pl.MediaInfo())
	pl.SetPaused(p.state != status.Playing)
	p.applyRecordingLocked(pl)
	p.log.WithField("url", s.url).Info("bitrate switched")
	p.finishSwitchLocked(op, true)
}

// SwitchBitrateSingleConnection switches to url by closing the current media
// first, for sources that allow a single connection. It reports false, and
// never calls cb, when preloading is on or nothing is loaded.
func (p *Player) SwitchBitrateSingleConnection(url string, cb SwitchFunc) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := p.cur
	if p.closed || p.preload || url == "" || cur == nil || !cur.ready {
		return false
	}
	pos := cur.pipeline.Position()
	prepared := cur.prepared

	p.cancelSwitchLocked()
	p.cancelSessionLocked(cur, true)
	s := p.newSessionLocked(url)
	op := &switchOp{session: s, cb: callback.NewOneShot(cb)}
	p.cur = s
	p.url = url
	p.switching = op
	p.updateStatusLocked(func(m status.MediaStatus) status.MediaStatus {
		return m.Without(activeFlags | status.Loaded | status.Prepared).With(status.Loading)
	})
	p.log.WithField("url", url).Debug("switching bitrate on a single connection")

	p.openSession(s, p.openRequestLocked(url), func(s *session, pl engine.Pipeline, err error) bool {
		if p.switching != op || p.cur != s {
			return false
		}
		if err != nil {
			p.switching = nil
			p.finishSwitchLocked(op, false)
			p.failMediaLocked(s, errmsg.OpBitrateSwitch, err)
			return false
		}
		s.pipeline, s.ready = pl, true
		p.applySettingsLocked(pl)
		p.info = mediainfo.New(pl.MediaInfo())
		p.updateStatusLocked(func(m status.MediaStatus) status.MediaStatus {
			return m.Without(status.Loading).With(status.Loaded)
		})
		p.applyRecordingLocked(pl)
		go p.resumeSingleSwitch(op, pl, pos, prepared, p.timeout)
		return true
	})
	return true
}

func (p *Player) resumeSingleSwitch(op *switchOp, pl engine.Pipeline, pos int64, prepared bool, pol timeoutPolicy) {
	s := op.session
	_, err := awaitResult(s.ctx, pol, func(ctx context.Context) (int64, error) {
		return pl.Seek(ctx, pos, media.From0)
	}, nil)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.switching != op || p.cur != s {
		return
	}
	p.switching = nil
	if err != nil {
		p.finishSwitchLocked(op, false)
		p.failMediaLocked(s, errmsg.OpBitrateSwitch, err)
		return
	}
	s.prepared = prepared
	if prepared {
		p.updateStatusLocked(func(m status.MediaStatus) status.MediaStatus {
			return m.With(status.Prepared)
		})
	}
	pl.SetPaused(p.state != status.Playing)
	p.log.WithField("url", s.url).Info("bitrate switched")
	p.finishSwitchLocked(op, true)
}

func (p *Player) finishSwitchLocked(op *switchOp, ok bool) {
	if fn, taken := op.cb.Take(); taken {
		p.post(func() { fn(ok) })
	}
}

func (p *Player) failSwitchLocked(op *switchOp, err error) {
	p.log.WithError(err).Warn(errmsg.FormatWith(errmsg.OpBitrateSwitch, op.session.url, err))
	p.cancelSessionLocked(op.session, true)
	p.postEventLocked(media.MediaEvent{
		Error:    media.CodeOf(err),
		Category: media.CategoryBitrate,
		Detail:   errmsg.FormatWith(errmsg.OpBitrateSwitch, op.session.url, err),
		Stream:   -1,
	})
	p.finishSwitchLocked(op, false)
}

// cancelSwitchLocked fails the pending switch. A single connection switch
// owns the current session, which the caller releases.
func (p *Player) cancelSwitchLocked() {
	op := p.switching
	if op == nil {
		return
	}
	p.switching = nil
	if op.session != p.cur {
		p.cancelSessionLocked(op.session, true)
	}
	p.finishSwitchLocked(op, false)
}
