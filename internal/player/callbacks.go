package player

import (
	"github.com/llehouerou/playcore/internal/callback"
	"github.com/llehouerou/playcore/internal/media"
	"github.com/llehouerou/playcore/internal/status"
)

// OnStateChanged registers fn for state changes. A nil fn removes the
// subscriber of *tok, or every subscriber when tok is nil or zero.
func (p *Player) OnStateChanged(fn StateChangedFunc, tok *callback.Token) {
	p.stateCbs.Register(fn, tok)
}

// OnMediaStatusChanged registers fn for media status changes.
func (p *Player) OnMediaStatusChanged(fn MediaStatusFunc, tok *callback.Token) {
	p.statusCbs.Register(fn, tok)
}

// OnEvent registers fn for media events. Subscribers are called in
// registration order until one consumes the event.
func (p *Player) OnEvent(fn EventFunc, tok *callback.Token) {
	p.eventCbs.Register(fn, tok)
}

// OnLoop registers fn for A-B loop re-entries.
func (p *Player) OnLoop(fn LoopFunc, tok *callback.Token) {
	p.loopCbs.Register(fn, tok)
}

// OnCurrentMediaChanged sets the function called whenever the current media
// changes, by SetMedia or by a gapless switch. nil clears it.
func (p *Player) OnCurrentMediaChanged(fn func()) {
	p.mediaCb.Set(fn)
}

// SetRenderCallback sets the function asking a surface to redraw. nil clears it.
func (p *Player) SetRenderCallback(fn RenderFunc) {
	p.renderCb.Set(fn)
}

// Subscribers are resolved at delivery time so a removal made before delivery
// is honored.

func (p *Player) setStateLocked(st status.State) {
	if p.state == st {
		return
	}
	old := p.state
	p.state = st
	close(p.stateCh)
	p.stateCh = make(chan struct{})
	p.log.WithField("from", old.String()).WithField("to", st.String()).Debug("state changed")
	p.post(func() {
		for _, fn := range p.stateCbs.Snapshot() {
			fn(st)
		}
	})
}

func (p *Player) postStatusLocked(c status.Change) {
	if !c.Changed() {
		return
	}
	p.log.WithField("status", c.New.String()).Debug("media status changed")
	p.post(func() {
		for _, fn := range p.statusCbs.Snapshot() {
			fn(c)
		}
	})
}

func (p *Player) postEventLocked(e media.MediaEvent) {
	p.post(func() { p.dispatchEvent(e) })
}

// dispatchEvent runs on the queue. It is also used by notifiers that must
// not take the player lock.
func (p *Player) dispatchEvent(e media.MediaEvent) {
	for _, fn := range p.eventCbs.Snapshot() {
		if fn(e) {
			return
		}
	}
}

func (p *Player) postLoopLocked(remaining int) {
	p.post(func() {
		for _, fn := range p.loopCbs.Snapshot() {
			fn(remaining)
		}
	})
}

func (p *Player) postMediaChangedLocked() {
	p.post(func() {
		if fn, ok := p.mediaCb.Get(); ok {
			fn()
		}
	})
}
