// Package playback turns the callbacks of a player into event channels for
// consumers that prefer select loops, such as UIs and daemons.
package playback

import (
	"github.com/llehouerou/playcore/internal/media"
	"github.com/llehouerou/playcore/internal/status"
)

// StateChange is emitted when the playback state changes.
type StateChange struct {
	Previous status.State
	Current  status.State
}

// StatusChange is emitted when the media status changes.
type StatusChange = status.Change

// LoopEvent is emitted each time playback re-enters the A-B range.
//
// Remaining is the loop count before the re-entry is counted, or -1 for an
// infinite loop.
type LoopEvent struct {
	Remaining int
}

// ErrorEvent is an event of the player that carries an error code.
type ErrorEvent struct {
	Event media.MediaEvent
}

// Category returns the category of the failing component, e.g. "reader".
func (e ErrorEvent) Category() string { return e.Event.Category }
