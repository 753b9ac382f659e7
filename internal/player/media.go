package player

import (
	"context"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/playcore/internal/engine"
	"github.com/llehouerou/playcore/internal/errmsg"
	"github.com/llehouerou/playcore/internal/media"
	"github.com/llehouerou/playcore/internal/mediainfo"
	"github.com/llehouerou/playcore/internal/status"
)

// SetMedia makes url the current media. Playback stops, in-flight operations
// fail and the renderers are cleared. With preloading on the media starts
// loading at once, otherwise its status stays Unloaded until Prepare or
// SetState. An empty url unloads everything.
//
// External sources set with SetMediaForType are reset. The next media set with
// SetNextMedia is kept.
func (p *Player) SetMedia(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	p.cancelSwitchLocked()
	p.cancelSessionLocked(p.cur, true)
	p.cur = nil
	p.cancelNextSessionLocked()
	p.info = nil
	p.url = url
	p.sources = nil
	p.recording = recordTarget{}

	p.settling = false
	p.target = status.Stopped
	p.setStateLocked(status.Stopped)
	p.hub.Clear()

	if url == "" {
		p.resetStatusLocked(status.NoMedia)
	} else {
		p.resetStatusLocked(status.Unloaded)
		if p.preload {
			p.loadLocked()
		}
	}
	p.log.WithField("url", url).Info("media set")
	p.postMediaChangedLocked()
}

// SetMediaForType sets an external source for the tracks of type t, such as
// a separate audio file. An empty url removes it; Unknown sets the main
// media like SetMedia. Sources apply the next time the media is opened.
func (p *Player) SetMediaForType(url string, t media.MediaType) {
	if t == media.Unknown {
		p.SetMedia(url)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if url == "" {
		delete(p.sources, t)
		return
	}
	if p.sources == nil {
		p.sources = make(map[media.MediaType]string)
	}
	p.sources[t] = url
}

// URL returns the current media.
func (p *Player) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

// SetActiveTracks selects the tracks of type t to decode. No index disables
// the type.
func (p *Player) SetActiveTracks(t media.MediaType, tracks ...int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tracks == nil {
		p.tracks = make(map[media.MediaType][]int)
	}
	tracks = slices.Clone(tracks)
	if tracks == nil {
		tracks = []int{}
	}
	p.tracks[t] = tracks
	if pl := p.curPipelineLocked(); pl != nil {
		pl.SetActiveTracks(t, tracks)
	}
}

// SetPreloadImmediately sets whether SetMedia opens the media at once.
func (p *Player) SetPreloadImmediately(preload bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.preload = preload
}

// SetAudioBackends sets the audio output backends in priority order.
func (p *Player) SetAudioBackends(names ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.audioBackends = slices.Clone(names)
}

// SetAudioDecoders sets the audio decoders in priority order.
func (p *Player) SetAudioDecoders(names ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.audioDecoders = slices.Clone(names)
}

// SetVideoDecoders sets the video decoders in priority order.
func (p *Player) SetVideoDecoders(names ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.videoDecoders = slices.Clone(names)
}

// loadLocked opens the current url in a new current session.
func (p *Player) loadLocked() *session {
	s := p.newSessionLocked(p.url)
	p.cur = s
	p.updateStatusLocked(func(m status.MediaStatus) status.MediaStatus {
		return m.Without(status.Unloaded | status.End).With(status.Loading)
	})
	p.log.WithField("url", s.url).Debug("loading media")
	p.openSession(s, p.openRequestLocked(s.url), p.openedLocked)
	return s
}

// openSession opens s on its own goroutine and hands the result to done
// under the player lock. A pipeline done does not adopt is closed.
func (p *Player) openSession(s *session, req engine.OpenRequest, done func(*session, engine.Pipeline, error) bool) {
	pol := p.timeout
	sink := &sessionSink{p: p, s: s}
	go func() {
		pl, err := awaitResult(s.ctx, pol, func(ctx context.Context) (engine.Pipeline, error) {
			return p.engine.Open(ctx, req, sink)
		}, p.closePipeline)

		p.mu.Lock()
		defer p.mu.Unlock()
		if !done(s, pl, err) && err == nil && pl != nil {
			go p.closePipeline(pl)
		}
	}()
}

func (p *Player) openedLocked(s *session, pl engine.Pipeline, err error) bool {
	if s != p.cur {
		return false
	}
	if err != nil {
		p.failMediaLocked(s, errmsg.OpMediaLoad, err)
		return false
	}

	s.pipeline, s.ready = pl, true
	p.applySettingsLocked(pl)
	p.info = mediainfo.New(pl.MediaInfo())
	p.log.WithFields(logrus.Fields{
		"url":   s.url,
		"media": p.info.String(),
	}).Info("media loaded")
	p.updateStatusLocked(func(m status.MediaStatus) status.MediaStatus {
		return m.Without(status.Loading | status.Unloaded).With(status.Loaded)
	})
	p.applyRecordingLocked(pl)
	p.preloadNextLocked()

	switch {
	case s.prepare != nil:
		p.runPrepareLocked(s, s.prepare)
	case p.settling:
		p.implicitPrepareLocked(s)
	}
	return true
}
