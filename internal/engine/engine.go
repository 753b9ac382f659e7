// Package engine defines the contracts of the demux/decode engine the player
// drives. Decoding, demuxing and I/O live behind these interfaces.
package engine

import (
	"context"
	"time"

	"github.com/llehouerou/playcore/internal/media"
	"github.com/llehouerou/playcore/internal/mediainfo"
	"github.com/llehouerou/playcore/internal/render"
)

// BufferRange bounds the demuxer buffer.
type BufferRange struct {
	Min  time.Duration
	Max  time.Duration
	Drop bool // drop old data instead of pausing the reader when full
}

// OpenRequest describes a media to open.
type OpenRequest struct {
	URL string
	// Sources holds external sources per track type, e.g. a separate audio file.
	Sources map[media.MediaType]string
	// Tracks holds the active track indices per type. A missing type selects its first track.
	Tracks map[media.MediaType][]int

	AudioDecoders []string
	VideoDecoders []string
	AudioBackends []string
	Buffer        BufferRange
}

// Engine opens pipelines.
type Engine interface {
	// Open opens req and returns a paused pipeline whose stream metadata is
	// known. It honors ctx cancellation. sink receives the pipeline's
	// reports from the pipeline's own goroutines.
	Open(ctx context.Context, req OpenRequest, sink Sink) (Pipeline, error)
}

// Pipeline is one opened media.
//
// Methods other than Seek and Close must not block and must not call the
// Sink synchronously: the player calls them while holding its state lock.
type Pipeline interface {
	MediaInfo() mediainfo.Description

	// Seek moves to posMs and returns the key-frame position actually sought to.
	Seek(ctx context.Context, posMs int64, flags media.SeekFlag) (int64, error)

	SetPaused(paused bool)
	Position() int64 // ms

	// SetBoost requests first-frame priority scheduling.
	SetBoost(boost bool)
	SetPlaybackRate(rate float32)
	SetVolume(volume float32)
	SetMute(muted bool)
	SetActiveTracks(t media.MediaType, tracks []int)
	SetBufferRange(r BufferRange)
	// Buffered returns the buffered duration in ms and bytes.
	Buffered() (ms int64, bytes int64)

	// Record remuxes the decode input to url in format. An empty url stops recording.
	Record(url, format string) error

	Close() error
}

// Sink receives the reports of a pipeline. Implementations must be safe for
// concurrent use.
type Sink interface {
	Frame(f render.Frame)
	Position(ms int64)
	// Buffering reports buffer fill progress, 0 to 100.
	Buffering(progress int)
	Stalled(stalled bool)
	Event(e media.MediaEvent)
	EndOfStream()
	// Failed reports a terminal media error.
	Failed(err error)
}
