// Package status tracks the media status bitmask and the playback state.
package status

import (
	"strings"
	"sync"
)

// MediaStatus describes the io condition of the current media.
// Bits are not mutually exclusive: treat a value as a set and test it with
// Has/HasAny, never with ==. For example a seek moves Loaded|Prepared|Buffering
// to Loaded|Prepared|Buffered once the buffer refills.
type MediaStatus uint32

const (
	NoMedia   MediaStatus = 0
	Unloaded  MediaStatus = 1
	Loading   MediaStatus = 1 << 1 // opening and parsing the media
	Loaded    MediaStatus = 1 << 2 // media parsed, MediaInfo available
	Stalled   MediaStatus = 1 << 3 // insufficient buffering or other interruption
	Buffering MediaStatus = 1 << 4
	Buffered  MediaStatus = 1 << 5
	End       MediaStatus = 1 << 6 // no more data to read
	Seeking   MediaStatus = 1 << 7
	Prepared  MediaStatus = 1 << 8 // tracks buffered and ready to decode
	Invalid   MediaStatus = 1 << 31
)

// loadProgress are the bits a latched Invalid status blocks.
const loadProgress = Loading | Loaded | Prepared

var statusNames = []struct {
	bit  MediaStatus
	name string
}{
	{Unloaded, "Unloaded"},
	{Loading, "Loading"},
	{Loaded, "Loaded"},
	{Stalled, "Stalled"},
	{Buffering, "Buffering"},
	{Buffered, "Buffered"},
	{End, "End"},
	{Seeking, "Seeking"},
	{Prepared, "Prepared"},
	{Invalid, "Invalid"},
}

// Has reports whether every bit of f is set.
func (s MediaStatus) Has(f MediaStatus) bool {
	return s&f == f
}

// HasAny reports whether at least one bit of f is set.
func (s MediaStatus) HasAny(f MediaStatus) bool {
	return s&f != 0
}

// With returns s with the bits of f set.
func (s MediaStatus) With(f MediaStatus) MediaStatus {
	return s | f
}

// Without returns s with the bits of f cleared.
func (s MediaStatus) Without(f MediaStatus) MediaStatus {
	return s &^ f
}

// String joins the set bit names with '|', e.g. "Loaded|Prepared".
func (s MediaStatus) String() string {
	if s == NoMedia {
		return "NoMedia"
	}
	var parts []string
	for _, n := range statusNames {
		if s.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Change is an edge between two consecutive status values.
type Change struct {
	Old MediaStatus
	New MediaStatus
}

// Added returns the bits set by this change.
func (c Change) Added() MediaStatus {
	return c.New &^ c.Old
}

// Removed returns the bits cleared by this change.
func (c Change) Removed() MediaStatus {
	return c.Old &^ c.New
}

// Changed reports whether any bit differs.
func (c Change) Changed() bool {
	return c.Old != c.New
}

// FlagsAdded reports whether f was absent before and fully present now.
func (c Change) FlagsAdded(f MediaStatus) bool {
	return c.New.Has(f) && !c.Old.HasAny(f)
}

// FlagsRemoved reports whether f was present before and fully absent now.
func (c Change) FlagsRemoved(f MediaStatus) bool {
	return !c.New.HasAny(f) && c.Old.Has(f)
}

// Tracker holds the current status mask and computes edges on update.
//
// Invalid is terminal for the current load attempt: once set, Loading,
// Loaded and Prepared are never added again until Reset.
type Tracker struct {
	mu     sync.Mutex
	status MediaStatus
}

// NewTracker returns a tracker in the NoMedia status.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Status returns the current mask.
func (t *Tracker) Status() MediaStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Apply replaces the mask and returns the resulting change.
func (t *Tracker) Apply(s MediaStatus) Change {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.applyLocked(s)
}

// Update applies fn to the current mask atomically.
func (t *Tracker) Update(fn func(MediaStatus) MediaStatus) Change {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.applyLocked(fn(t.status))
}

// Reset replaces the mask and clears a latched Invalid status.
func (t *Tracker) Reset(s MediaStatus) Change {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := Change{Old: t.status, New: s}
	t.status = s
	return c
}

func (t *Tracker) applyLocked(s MediaStatus) Change {
	if t.status.Has(Invalid) {
		s = s.With(Invalid).Without(loadProgress &^ t.status)
	}
	c := Change{Old: t.status, New: s}
	t.status = s
	return c
}
