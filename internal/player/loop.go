package player

import (
	"github.com/llehouerou/playcore/internal/callback"
	"github.com/llehouerou/playcore/internal/loop"
	"github.com/llehouerou/playcore/internal/media"
)

// SetRange sets the playback range [a, b) in milliseconds. b of -1 or
// math.MaxInt64 plays to the end of the media.
func (p *Player) SetRange(a, b int64) {
	p.loop.SetRange(a, b)
}

// SetLoop sets how many times playback re-enters the range after reaching its
// end. 0 stops at the end, a negative count loops forever.
func (p *Player) SetLoop(count int) {
	p.loop.SetLoop(count)
}

// SetLoopRange sets the loop count and the range together. It is the same as
// calling SetLoop and SetRange.
func (p *Player) SetLoopRange(count int, a, b int64) {
	p.loop.SetLoopRange(count, a, b)
}

// applyLoopLocked acts on a decision of the loop controller for s.
func (p *Player) applyLoopLocked(s *session, d loop.Decision) {
	switch d.Action {
	case loop.Loop:
		p.log.WithField("remaining", d.Remaining).Debug("looping")
		p.postLoopLocked(d.Remaining)
		op := &seekOp{cb: callback.NewOneShot[SeekFunc](nil)}
		p.seekLocked(s, op, d.SeekTo, media.From0)
	case loop.Stop:
		p.naturalEndLocked(s)
	case loop.None:
	}
}
