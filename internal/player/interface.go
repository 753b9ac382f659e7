package player

import (
	"time"

	"github.com/llehouerou/playcore/internal/callback"
	"github.com/llehouerou/playcore/internal/media"
	"github.com/llehouerou/playcore/internal/mediainfo"
	"github.com/llehouerou/playcore/internal/render"
	"github.com/llehouerou/playcore/internal/status"
)

// Callback signatures.
type (
	StateChangedFunc func(state status.State)
	MediaStatusFunc  func(change status.Change)
	// EventFunc returns true when it consumed the event, which stops the
	// dispatch to later subscribers.
	EventFunc func(e media.MediaEvent) bool
	// LoopFunc receives the loops remaining before the re-entry it announces.
	LoopFunc func(remaining int)
	// PrepareFunc receives the position prepared at, or -1 on failure. It may
	// clear *boost to skip first-frame priority. Returning false unloads the media.
	PrepareFunc func(position int64, boost *bool) bool
	// SeekFunc receives the position sought to, or -1 on failure.
	SeekFunc   func(position int64)
	SwitchFunc func(ok bool)
	// RenderFunc asks the surface vo to call RenderVideo.
	RenderFunc func(vo any)
)

// Interface defines the player contract for dependency injection and testing.
type Interface interface {
	SetMedia(url string)
	SetMediaForType(url string, t media.MediaType)
	URL() string
	Prepare(startMs int64, cb PrepareFunc, flags media.SeekFlag)
	MediaInfo() *mediainfo.Info

	SetState(st status.State)
	State() status.State
	WaitFor(st status.State, timeout time.Duration) bool
	MediaStatus() status.MediaStatus

	Seek(posMs int64, cb SeekFunc) bool
	SeekWithFlags(posMs int64, flags media.SeekFlag, cb SeekFunc) bool
	Position() int64

	SetNextMedia(url string, startMs int64, flags media.SeekFlag)
	SwitchBitrate(url string, delay time.Duration, cb SwitchFunc)
	SwitchBitrateSingleConnection(url string, cb SwitchFunc) bool
	Record(url, format string)

	SetRange(a, b int64)
	SetLoop(count int)

	OnStateChanged(fn StateChangedFunc, tok *callback.Token)
	OnMediaStatusChanged(fn MediaStatusFunc, tok *callback.Token)
	OnEvent(fn EventFunc, tok *callback.Token)
	OnLoop(fn LoopFunc, tok *callback.Token)
	OnCurrentMediaChanged(fn func())

	SetRenderCallback(fn RenderFunc)
	RenderVideo(vo any) float64
	Snapshot(req render.SnapshotRequest, cb render.SnapshotFunc, vo any)

	Close()
	Done() <-chan struct{}
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
