package player

import "github.com/samber/lo"

// SetVolume sets the volume level (0.0 to 1.0).
// The level is kept while muted and applies to every media loaded later.
func (p *Player) SetVolume(level float32) {
	level = clampVolume(level)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = level
	if pl := p.curPipelineLocked(); pl != nil {
		pl.SetVolume(level)
	}
}

// Volume returns the current volume level (0.0 to 1.0).
func (p *Player) Volume() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetMute sets the muted state.
// When unmuted, the previous volume level is restored.
func (p *Player) SetMute(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
	if pl := p.curPipelineLocked(); pl != nil {
		pl.SetMute(muted)
	}
}

// Muted returns true if audio is muted.
func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

func clampVolume(level float32) float32 {
	return lo.Clamp(level, 0, 1)
}
