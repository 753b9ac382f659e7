// Package loop implements the A-B loop controller.
//
// The controller does not seek by itself. The player feeds it positions and
// end-of-stream notifications and carries out the returned Decision.
package loop

import (
	"math"
	"sync"
)

// End marks an open range: playback runs to the end of the media.
const End int64 = -1

// Infinite is the loop count that never runs out.
const Infinite = -1

// Action is what the player must do after a position update.
type Action int

const (
	None Action = iota
	Loop        // notify loop subscribers, then seek to Decision.SeekTo
	Stop        // playback reached b with no loops left
)

func (a Action) String() string {
	switch a {
	case None:
		return "None"
	case Loop:
		return "Loop"
	case Stop:
		return "Stop"
	default:
		return "Unknown"
	}
}

// Decision is the outcome of Advance or AtEnd.
type Decision struct {
	Action Action
	SeekTo int64
	// Remaining is the loop count before this re-entry is consumed,
	// or Infinite.
	Remaining int
}

// Controller tracks the loop range and the remaining loop count.
type Controller struct {
	mu        sync.Mutex
	a, b      int64
	count     int
	remaining int
	armed     bool
}

// New returns a controller with the full media as range and looping off.
func New() *Controller {
	return &Controller{b: End, armed: true}
}

// SetRange sets the loop bounds in ms. b of -1 or math.MaxInt64 means the end
// of the media, as does a b not after a.
func (c *Controller) SetRange(a, b int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.a, c.b = normalize(a, b)
}

func normalize(a, b int64) (int64, int64) {
	a = max(a, 0)
	if b < 0 || b == math.MaxInt64 || b <= a {
		b = End
	}
	return a, b
}

// SetLoop sets how many times playback re-enters the range. 0 disables
// looping, a negative count loops forever.
func (c *Controller) SetLoop(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if count < 0 {
		count = Infinite
	}
	c.count = count
	c.remaining = count
}

// SetLoopRange is SetRange(a, b) followed by SetLoop(count).
func (c *Controller) SetLoopRange(count int, a, b int64) {
	c.SetRange(a, b)
	c.SetLoop(count)
}

// Range returns the current bounds. b is End for an open range.
func (c *Controller) Range() (a, b int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a, c.b
}

// Count returns the configured loop count.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Remaining returns the loops left before playback stops at b.
func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Start rearms the controller for a new playback starting at startMs and
// returns the position to start from, clamped into the range.
func (c *Controller) Start(startMs int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remaining = c.count
	c.armed = true
	if startMs < c.a || (c.b != End && startMs >= c.b) {
		return c.a
	}
	return startMs
}

// Advance reports a playback position. After a Loop decision the controller
// stays disarmed until a position before b is observed, so stale positions
// reported while the seek back is pending never fire twice.
func (c *Controller) Advance(posMs int64) Decision {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.b == End {
		return Decision{Action: None}
	}
	if posMs < c.b {
		c.armed = true
		return Decision{Action: None}
	}
	if !c.armed {
		return Decision{Action: None}
	}
	c.armed = false
	return c.decideLocked()
}

// AtEnd reports that the media reached its natural end.
func (c *Controller) AtEnd() Decision {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.b != End && !c.armed {
		// b was already handled by Advance.
		return Decision{Action: None}
	}
	c.armed = false
	return c.decideLocked()
}

func (c *Controller) decideLocked() Decision {
	if c.remaining == 0 {
		return Decision{Action: Stop}
	}
	d := Decision{Action: Loop, SeekTo: c.a, Remaining: c.remaining}
	if c.remaining > 0 {
		c.remaining--
	}
	return d
}
