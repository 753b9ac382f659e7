package player

import (
	"github.com/llehouerou/playcore/internal/callback"
	"github.com/llehouerou/playcore/internal/engine"
	"github.com/llehouerou/playcore/internal/errmsg"
	"github.com/llehouerou/playcore/internal/media"
	"github.com/llehouerou/playcore/internal/mediainfo"
	"github.com/llehouerou/playcore/internal/status"
)

// nextMedia is the media played after the current one ends.
type nextMedia struct {
	url   string
	start int64
	flags media.SeekFlag
	// session preloads url once the current media is loaded.
	session *session
}

// SetNextMedia sets the media that continues playback without a gap when the
// current one ends naturally, prepared at startMs. An empty url disables it.
// It has no effect on an ending that was already reached.
func (p *Player) SetNextMedia(url string, startMs int64, flags media.SeekFlag) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelNextSessionLocked()
	if url == "" {
		p.next = nextMedia{}
		return
	}
	p.next = nextMedia{url: url, start: max(startMs, 0), flags: flags}
	p.preloadNextLocked()
}

// preloadNextLocked opens the next media once the current one is loaded.
func (p *Player) preloadNextLocked() {
	n := &p.next
	if n.url == "" || n.session != nil || p.cur == nil || !p.cur.ready {
		return
	}
	s := p.newSessionLocked(n.url)
	n.session = s
	req := p.openRequestLocked(n.url)
	// External sources belong to the current media.
	req.Sources = nil
	p.log.WithField("url", n.url).Debug("preloading next media")
	p.openSession(s, req, p.nextOpenedLocked)
}

func (p *Player) nextOpenedLocked(s *session, pl engine.Pipeline, err error) bool {
	if s != p.next.session {
		return false
	}
	if err != nil {
		// The switch loads it again and reports the failure then.
		p.log.WithError(err).Warn(errmsg.FormatWith(errmsg.OpNextMedia, s.url, err))
		p.next.session = nil
		return false
	}
	s.pipeline, s.ready = pl, true
	p.applySettingsLocked(pl)
	return true
}

func (p *Player) cancelNextSessionLocked() {
	if s := p.next.session; s != nil {
		p.next.session = nil
		p.cancelSessionLocked(s, true)
	}
}

// switchToNextLocked makes the next media current when old ends. The state
// is kept and renderer content is not cleared.
func (p *Player) switchToNextLocked(old *session) {
	n := p.next
	p.next = nextMedia{}
	p.cancelSwitchLocked()
	p.cancelSessionLocked(old, true)
	p.url = n.url
	p.sources = nil
	p.recording = recordTarget{}
	p.target, p.settling = p.state, p.state.IsActive()
	p.log.WithField("url", n.url).Info("switching to next media")

	req := &prepareReq{start: n.start, flags: n.flags, cb: callback.NewOneShot[PrepareFunc](nil)}
	if s := n.session; s != nil && s.ready {
		p.cur = s
		p.info = mediainfo.New(s.pipeline.MediaInfo())
		p.resetStatusLocked(status.Loaded)
		s.prepare = req
		p.runPrepareLocked(s, req)
	} else {
		if s != nil {
			p.cancelSessionLocked(s, true)
		}
		p.info = nil
		p.resetStatusLocked(status.Unloaded)
		p.loadLocked().prepare = req
	}
	p.postMediaChangedLocked()
}
