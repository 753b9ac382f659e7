package player

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/playcore/internal/callback"
	"github.com/llehouerou/playcore/internal/engine"
	"github.com/llehouerou/playcore/internal/errmsg"
	"github.com/llehouerou/playcore/internal/media"
	"github.com/llehouerou/playcore/internal/status"
)

type seekOp struct {
	cb *callback.OneShot[SeekFunc]
}

// Seek seeks to posMs with the default flags.
func (p *Player) Seek(posMs int64, cb SeekFunc) bool {
	return p.SeekWithFlags(posMs, media.Default, cb)
}

// SeekWithFlags seeks the loaded media and reports false when there is none.
// cb receives the position sought to, or -1 on failure, exactly once.
func (p *Player) SeekWithFlags(posMs int64, flags media.SeekFlag, cb SeekFunc) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	op := &seekOp{cb: callback.NewOneShot(cb)}
	s := p.cur
	if p.closed || s == nil || !s.ready {
		p.postSeekResult(op, -1)
		return false
	}

	target := posMs
	switch {
	case flags.Has(media.FromNow):
		target += s.pipeline.Position()
	case flags.Has(media.FromStart) && p.info != nil:
		target += p.info.StartTime()
	}
	p.seekLocked(s, op, max(target, 0), flags)
	return true
}

func (p *Player) seekLocked(s *session, op *seekOp, target int64, flags media.SeekFlag) {
	s.seeks = append(s.seeks, op)
	p.updateStatusLocked(func(m status.MediaStatus) status.MediaStatus {
		return m.Without(status.End).With(status.Seeking)
	})
	go p.runSeek(s, op, s.pipeline, target, flags, p.timeout)
}

func (p *Player) runSeek(s *session, op *seekOp, pl engine.Pipeline, target int64, flags media.SeekFlag, pol timeoutPolicy) {
	got, err := awaitResult(s.ctx, pol, func(ctx context.Context) (int64, error) {
		return pl.Seek(ctx, target, flags)
	}, nil)

	p.mu.Lock()
	defer p.mu.Unlock()
	i := slices.Index(s.seeks, op)
	if i < 0 {
		// Failed by a cancellation.
		return
	}
	s.seeks = slices.Delete(s.seeks, i, i+1)
	if err != nil {
		got = -1
		p.log.WithError(err).WithFields(logrus.Fields{
			"url":    s.url,
			"target": time.Duration(target) * time.Millisecond,
		}).Warn(errmsg.Format(errmsg.OpPlaybackSeek, err))
		if !errors.Is(err, ErrCanceled) {
			p.postEventLocked(media.MediaEvent{
				Error:    media.CodeOf(err),
				Category: media.CategoryReader,
				Detail:   errmsg.Format(errmsg.OpPlaybackSeek, err),
				Stream:   -1,
			})
		}
	}
	p.postSeekResult(op, got)
	if len(s.seeks) == 0 && s == p.cur {
		p.updateStatusLocked(func(m status.MediaStatus) status.MediaStatus {
			return m.Without(status.Seeking)
		})
	}
}

func (p *Player) postSeekResult(op *seekOp, pos int64) {
	if fn, ok := op.cb.Take(); ok {
		p.post(func() { fn(pos) })
	}
}

// Position returns the playback position in milliseconds.
func (p *Player) Position() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pl := p.curPipelineLocked(); pl != nil {
		return pl.Position()
	}
	return 0
}

// SetPlaybackRate sets the playback speed, 1 being normal.
func (p *Player) SetPlaybackRate(rate float32) {
	if rate <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rate = rate
	if pl := p.curPipelineLocked(); pl != nil {
		pl.SetPlaybackRate(rate)
	}
}

// PlaybackRate returns the playback speed.
func (p *Player) PlaybackRate() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// Buffered returns the buffered duration in milliseconds and bytes.
func (p *Player) Buffered() (ms int64, bytes int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pl := p.curPipelineLocked(); pl != nil {
		return pl.Buffered()
	}
	return 0, 0
}

// SetBufferRange bounds the demuxer buffer. A max below min is raised to min.
// With drop the oldest data is dropped when the buffer is full.
func (p *Player) SetBufferRange(minDur, maxDur time.Duration, drop bool) {
	minDur = max(minDur, 0)
	maxDur = max(maxDur, minDur)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffer = engine.BufferRange{Min: minDur, Max: maxDur, Drop: drop}
	if pl := p.curPipelineLocked(); pl != nil {
		pl.SetBufferRange(p.buffer)
	}
}
