package player

import (
	"time"

	"github.com/llehouerou/playcore/internal/status"
)

// SetState requests a playback state.
//
// Stopped is honored at once: in-flight operations fail, the pipeline and
// MediaInfo are released and the renderers cleared. Leaving Stopped loads and
// prepares the media as needed and settles asynchronously; Playing or Paused
// requests issued meanwhile are dropped. Playing and Paused switch at once
// between each other.
func (p *Player) SetState(st status.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	if st == status.Stopped {
		p.stopLocked()
		return
	}
	if p.settling {
		p.log.WithField("state", st.String()).Debug("state request dropped while settling")
		return
	}
	if p.state.IsActive() {
		if pl := p.curPipelineLocked(); pl != nil {
			pl.SetPaused(st == status.Paused)
		}
		p.target = st
		p.setStateLocked(st)
		return
	}

	if p.url == "" || p.status.Status().Has(status.Invalid) {
		p.log.WithField("state", st.String()).Debug("no playable media")
		return
	}
	p.target, p.settling = st, true

	s := p.cur
	switch {
	case s == nil:
		p.loadLocked()
	case !s.ready, s.prepare != nil:
		// The pending open or prepare starts playback when it completes.
	case s.prepared:
		p.startPlaybackLocked(s)
	default:
		p.implicitPrepareLocked(s)
	}
}

// State returns the current playback state.
func (p *Player) State() status.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// WaitFor blocks until the state is st or timeout elapses, and reports whether
// st was reached. A negative timeout waits forever. It must not be called
// from a callback.
func (p *Player) WaitFor(st status.State, timeout time.Duration) bool {
	var expired <-chan time.Time
	if timeout >= 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}
	for {
		p.mu.Lock()
		cur, closed, changed := p.state, p.closed, p.stateCh
		p.mu.Unlock()

		if cur == st {
			return true
		}
		if closed {
			return false
		}
		select {
		case <-changed:
		case <-expired:
			return false
		}
	}
}

func (p *Player) startPlaybackLocked(s *session) {
	s.pipeline.SetPaused(p.target == status.Paused)
	p.updateStatusLocked(func(m status.MediaStatus) status.MediaStatus {
		return m.Without(status.End)
	})
	p.settling = false
	p.log.WithField("url", s.url).Info("playback started")
	p.setStateLocked(p.target)
}

// stopLocked is an explicit stop.
func (p *Player) stopLocked() {
	p.settling = false
	p.target = status.Stopped
	p.cancelSwitchLocked()
	p.cancelSessionLocked(p.cur, true)
	p.cur = nil
	p.cancelNextSessionLocked()
	p.info = nil
	p.recording = recordTarget{}

	p.updateStatusLocked(func(m status.MediaStatus) status.MediaStatus {
		if p.url == "" {
			return status.NoMedia
		}
		return status.Unloaded | m&status.Invalid
	})
	p.setStateLocked(status.Stopped)
	p.hub.Clear()
}

// naturalEndLocked handles the end of the range or media: the next media
// starts when one is set, otherwise playback stops and keeps the renderers,
// the pipeline and MediaInfo.
func (p *Player) naturalEndLocked(s *session) {
	if p.next.url != "" {
		p.switchToNextLocked(s)
		return
	}
	s.prepared = false
	s.pipeline.SetPaused(true)
	p.updateStatusLocked(func(m status.MediaStatus) status.MediaStatus {
		return m.Without(status.Buffering | status.Stalled | status.Seeking | status.Prepared).With(status.End)
	})
	p.settling = false
	p.target = status.Stopped
	p.log.WithField("url", s.url).Info("playback ended")
	p.setStateLocked(status.Stopped)
}
