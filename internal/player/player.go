// Package player implements the playback control core: the state machine, the
// media status mask, asynchronous prepare, seek and bitrate switch with
// one-shot completions, gapless next media, A-B looping, recording and the
// per-surface render surface.
//
// Every method is safe for concurrent use and, except WaitFor, never blocks.
// Notifications are delivered in mutation order on a single goroutine with no
// player lock held, so callbacks may call back into the Player.
package player

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/playcore/internal/callback"
	"github.com/llehouerou/playcore/internal/config"
	"github.com/llehouerou/playcore/internal/engine"
	"github.com/llehouerou/playcore/internal/errmsg"
	"github.com/llehouerou/playcore/internal/logging"
	"github.com/llehouerou/playcore/internal/loop"
	"github.com/llehouerou/playcore/internal/media"
	"github.com/llehouerou/playcore/internal/mediainfo"
	"github.com/llehouerou/playcore/internal/render"
	"github.com/llehouerou/playcore/internal/status"
)

var (
	ErrTimeout  = &media.Error{Code: media.CodeTimeout, Detail: "operation timed out"}
	ErrCanceled = &media.Error{Code: media.CodeCanceled, Detail: "operation canceled"}
)

// Options configures a Player.
type Options struct {
	Engine  engine.Engine
	Backend render.Backend // nil selects render.SoftwareBackend
	Config  config.PlayerConfig
	Logger  logrus.FieldLogger // nil discards
}

// Player controls the playback of one media at a time.
type Player struct {
	id     string
	log    logrus.FieldLogger
	engine engine.Engine
	hub    *render.Hub
	loop   *loop.Controller
	queue  *callback.Queue
	status *status.Tracker

	stateCbs  *callback.Registry[StateChangedFunc]
	statusCbs *callback.Registry[MediaStatusFunc]
	eventCbs  *callback.Registry[EventFunc]
	loopCbs   *callback.Registry[LoopFunc]
	mediaCb   callback.Slot[func()]
	renderCb  callback.Slot[RenderFunc]

	mu       sync.Mutex
	closed   bool
	state    status.State
	target   status.State
	settling bool // a Stopped -> Playing/Paused request is in progress
	stateCh  chan struct{}
	seq      uint64

	url     string
	sources map[media.MediaType]string
	tracks  map[media.MediaType][]int
	preload bool
	info    *mediainfo.Info
	cur     *session

	next      nextMedia
	switching *switchOp
	recording recordTarget
	timeout   timeoutPolicy

	volume        float32
	muted         bool
	rate          float32
	buffer        engine.BufferRange
	audioDecoders []string
	videoDecoders []string
	audioBackends []string
}

// session is one opened (or opening) media. Pipeline reports are only
// honored while their session is the current one.
type session struct {
	id       uint64
	url      string
	ctx      context.Context
	cancel   context.CancelFunc
	pipeline engine.Pipeline
	ready    bool // Open succeeded
	prepared bool
	prepare  *prepareReq
	seeks    []*seekOp
}

// New creates a player.
func New(opts Options) (*Player, error) {
	if opts.Engine == nil {
		return nil, errors.New("player: engine is required")
	}
	cfg := opts.Config
	aspect, err := render.ParseAspectRatio(cfg.AspectRatio)
	if err != nil {
		return nil, err
	}
	var background color.NRGBA
	if cfg.Background != "" && cfg.Background != "none" {
		if background, _, err = render.ParseBackground(cfg.Background); err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	minBuf, maxBuf := cfg.BufferRange()
	volume := float32(1)
	if cfg.Volume != nil {
		volume = clampVolume(float32(*cfg.Volume))
	}

	p := &Player{
		id:        id,
		log:       log.WithField("player", id),
		engine:    opts.Engine,
		loop:      loop.New(),
		queue:     callback.NewQueue(),
		status:    status.NewTracker(),
		stateCbs:  callback.NewRegistry[StateChangedFunc](),
		statusCbs: callback.NewRegistry[MediaStatusFunc](),
		eventCbs:  callback.NewRegistry[EventFunc](),
		loopCbs:   callback.NewRegistry[LoopFunc](),
		stateCh:   make(chan struct{}),
		preload:   cfg.Preload(),
		timeout:   timeoutPolicy{timeout: cfg.Timeout()},
		volume:    volume,
		rate:      1,
		buffer:    engine.BufferRange{Min: minBuf, Max: maxBuf, Drop: cfg.BufferDrop},

		audioDecoders: cfg.AudioDecoders,
		videoDecoders: cfg.VideoDecoders,
		audioBackends: cfg.AudioBackends,
	}
	if p.timeout.timeout == 0 {
		p.timeout.timeout = defaultTimeout
	}
	backend := opts.Backend
	if backend == nil {
		backend = render.SoftwareBackend{}
	}
	p.hub = render.NewHub(reportingBackend{Backend: backend, p: p})
	// The configured look applies to the default surface.
	p.hub.SetAspectRatio(aspect, nil)
	switch cfg.Background {
	case "":
	case "none":
		p.hub.SetBackgroundColor(-1, -1, -1, -1, nil)
	default:
		c := background
		p.hub.SetBackgroundColor(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, 1, nil)
	}
	p.hub.SetUpdateFunc(p.contentUpdated)
	p.hub.SetFirstFrameFunc(p.firstFrameRendered)
	return p, nil
}

// ID returns the instance id used in log entries.
func (p *Player) ID() string { return p.id }

// Close stops playback and releases every resource. Pending notifications
// are still delivered. Close may be called from a callback.
func (p *Player) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.stopLocked()
	p.next = nextMedia{}
	p.closed = true
	// Wake WaitFor callers.
	close(p.stateCh)
	p.stateCh = make(chan struct{})
	p.mu.Unlock()

	p.queue.Close()
	p.log.Debug("player closed")
}

// Done is closed once the player is closed and every notification delivered.
func (p *Player) Done() <-chan struct{} {
	return p.queue.Done()
}

func (p *Player) post(fn func()) bool {
	return p.queue.Post(fn)
}

func (p *Player) newSessionLocked(url string) *session {
	p.seq++
	ctx, cancel := context.WithCancel(context.Background())
	return &session{id: p.seq, url: url, ctx: ctx, cancel: cancel}
}

func (p *Player) openRequestLocked(url string) engine.OpenRequest {
	req := engine.OpenRequest{
		URL:           url,
		AudioDecoders: append([]string(nil), p.audioDecoders...),
		VideoDecoders: append([]string(nil), p.videoDecoders...),
		AudioBackends: append([]string(nil), p.audioBackends...),
		Buffer:        p.buffer,
	}
	if len(p.sources) > 0 {
		req.Sources = make(map[media.MediaType]string, len(p.sources))
		for t, u := range p.sources {
			req.Sources[t] = u
		}
	}
	if len(p.tracks) > 0 {
		req.Tracks = make(map[media.MediaType][]int, len(p.tracks))
		for t, idx := range p.tracks {
			req.Tracks[t] = append([]int(nil), idx...)
		}
	}
	return req
}

// applySettingsLocked pushes the player-wide settings to a new pipeline.
func (p *Player) applySettingsLocked(pl engine.Pipeline) {
	pl.SetVolume(p.volume)
	pl.SetMute(p.muted)
	pl.SetPlaybackRate(p.rate)
	pl.SetBufferRange(p.buffer)
	for t, idx := range p.tracks {
		pl.SetActiveTracks(t, idx)
	}
}

// cancelSessionLocked aborts everything in flight on s. Pending one-shots are
// failed before any later notification. With release, the pipeline is closed.
func (p *Player) cancelSessionLocked(s *session, release bool) {
	if s == nil {
		return
	}
	s.cancel()
	if req := s.prepare; req != nil {
		s.prepare = nil
		p.failPrepareLocked(req)
	}
	for _, op := range s.seeks {
		p.postSeekResult(op, -1)
	}
	s.seeks = nil
	if release && s.pipeline != nil {
		pl := s.pipeline
		s.pipeline = nil
		s.ready, s.prepared = false, false
		go p.closePipeline(pl)
	}
}

func (p *Player) closePipeline(pl engine.Pipeline) {
	if err := pl.Close(); err != nil {
		p.log.WithError(err).Warn("closing pipeline")
	}
}

func (p *Player) curPipelineLocked() engine.Pipeline {
	if p.cur == nil {
		return nil
	}
	return p.cur.pipeline
}

// failMediaLocked handles a failure of the current media: a negative media
// event and a stop that keeps renderer content. Timeouts leave the media
// Unloaded, any other error latches Invalid until the next SetMedia.
func (p *Player) failMediaLocked(s *session, op errmsg.Op, err error) {
	code := media.CodeOf(err)
	category := media.CategoryReader
	var me *media.Error
	if errors.As(err, &me) && me.Category != "" {
		category = me.Category
	}
	detail := errmsg.FormatWith(op, s.url, err)
	p.log.WithError(err).WithField("url", s.url).Warn(errmsg.Format(op, err))

	p.cancelSessionLocked(s, true)
	if p.cur == s {
		p.cur = nil
	}
	p.postEventLocked(media.MediaEvent{Error: code, Category: category, Detail: detail, Stream: -1})

	if isTimeout(err) {
		p.updateStatusLocked(func(m status.MediaStatus) status.MediaStatus {
			return m.Without(activeFlags | status.Loaded | status.Prepared).With(status.Unloaded)
		})
	} else {
		p.updateStatusLocked(func(m status.MediaStatus) status.MediaStatus {
			return m.Without(activeFlags | status.Loaded | status.Prepared).With(status.Invalid)
		})
	}
	p.settling = false
	p.target = status.Stopped
	p.setStateLocked(status.Stopped)
}

// activeFlags are the transient io bits of an opened media.
const activeFlags = status.Loading | status.Stalled | status.Buffering | status.Buffered | status.Seeking

func isTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || media.CodeOf(err) == media.CodeTimeout
}

func (p *Player) updateStatusLocked(fn func(status.MediaStatus) status.MediaStatus) {
	p.postStatusLocked(p.status.Update(fn))
}

func (p *Player) resetStatusLocked(s status.MediaStatus) {
	p.postStatusLocked(p.status.Reset(s))
}

// MediaStatus returns the current status mask.
func (p *Player) MediaStatus() status.MediaStatus {
	return p.status.Status()
}

// MediaInfo returns the snapshot of the current media, or nil before it is loaded.
func (p *Player) MediaInfo() *mediainfo.Info {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.info
}

const defaultTimeout = 10 * time.Second
