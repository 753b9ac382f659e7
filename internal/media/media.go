// Package media holds the vocabulary shared by the player core and its
// collaborators: media types, seek flags, media events and coded errors.
package media

import (
	"errors"
	"fmt"
	"strings"
)

// MediaType identifies a track type.
type MediaType int8

const (
	Unknown  MediaType = -1
	Video    MediaType = 0
	Audio    MediaType = 1
	Subtitle MediaType = 3
)

// String returns the lowercase type name used in event categories.
func (t MediaType) String() string {
	switch t {
	case Video:
		return "video"
	case Audio:
		return "audio"
	case Subtitle:
		return "subtitle"
	default:
		return "unknown"
	}
}

// SeekFlag controls how a seek target is interpreted and reached.
// Combine one of the From* values with KeyFrame for a fast seek.
type SeekFlag int

const (
	From0     SeekFlag = 1      // relative to time 0
	FromStart SeekFlag = 1 << 1 // relative to MediaInfo start time
	FromNow   SeekFlag = 1 << 2 // relative to current position, may be negative

	// KeyFrame lands on the first key frame at or after the target.
	// Without it the seek is accurate.
	KeyFrame SeekFlag = 1 << 8
	Fast              = KeyFrame

	Default = KeyFrame | FromStart
)

// Has reports whether all bits of f are set.
func (s SeekFlag) Has(f SeekFlag) bool {
	return s&f == f
}

// IsFast reports whether the seek may land on a key frame instead of the exact target.
func (s SeekFlag) IsFast() bool {
	return s.Has(KeyFrame)
}

func (s SeekFlag) String() string {
	var parts []string
	if s.Has(From0) {
		parts = append(parts, "From0")
	}
	if s.Has(FromStart) {
		parts = append(parts, "FromStart")
	}
	if s.Has(FromNow) {
		parts = append(parts, "FromNow")
	}
	if s.Has(KeyFrame) {
		parts = append(parts, "KeyFrame")
	}
	if len(parts) == 0 {
		return "Accurate"
	}
	return strings.Join(parts, "|")
}

// Event categories.
const (
	CategoryReaderBuffering = "reader.buffering"
	CategoryReader          = "reader"
	CategoryRenderVideo     = "render.video"
	CategorySnapshot        = "snapshot"
	CategoryBitrate         = "bitrate"
	CategoryRecord          = "record"
)

// DecoderCategory returns the decoder category for a track type, e.g. "decoder.video".
func DecoderCategory(t MediaType) string {
	return "decoder." + t.String()
}

// ThreadCategory returns the decoder thread category for a track type, e.g. "thread.audio".
func ThreadCategory(t MediaType) string {
	return "thread." + t.String()
}

// Event details.
const (
	DetailFirstFrame = "1st_frame"
	DetailOpen       = "open"
)

// MediaEvent is a one-shot notification from the engine or the core.
//
// Error >= 0 carries an informational value that depends on the category
// (buffering progress, timestamp, thread running flag). Error < 0 is an error code.
type MediaEvent struct {
	Error    int64
	Category string
	Detail   string

	// Stream is the stream index for decoder events, -1 otherwise.
	Stream int
}

// IsError reports whether the event carries an error code.
func (e MediaEvent) IsError() bool {
	return e.Error < 0
}

func (e MediaEvent) String() string {
	if e.Stream >= 0 {
		return fmt.Sprintf("{%d, %q, %q, stream=%d}", e.Error, e.Category, e.Detail, e.Stream)
	}
	return fmt.Sprintf("{%d, %q, %q}", e.Error, e.Category, e.Detail)
}

// Error codes reported in MediaEvent.Error and Error.Code.
const (
	CodeUnknown     int64 = -1
	CodeInvalid     int64 = -2 // unsupported format or invalid source
	CodeIO          int64 = -3
	CodeDecoder     int64 = -4
	CodeTimeout     int64 = -5
	CodeCanceled    int64 = -6
	CodeUnsupported int64 = -7
)

// Error is a coded failure reported by a collaborator.
type Error struct {
	Code     int64
	Category string
	Detail   string
}

func (e *Error) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("%s (code %d)", e.Detail, e.Code)
	}
	return fmt.Sprintf("%s: %s (code %d)", e.Category, e.Detail, e.Code)
}

// CodeOf extracts the signed error code carried by err.
// Errors without a code map to CodeUnknown; nil maps to 0.
func CodeOf(err error) int64 {
	if err == nil {
		return 0
	}
	var me *Error
	if errors.As(err, &me) && me.Code < 0 {
		return me.Code
	}
	return CodeUnknown
}
