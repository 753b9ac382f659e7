// Package errmsg provides consistent error formatting for event details and logs.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Media operations
	OpMediaLoad    Op = "load media"
	OpMediaPrepare Op = "prepare media"
	OpNextMedia    Op = "preload next media"

	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"
	OpPlayback      Op = "play media"

	// Stream operations
	OpBitrateSwitch Op = "switch bitrate"
	OpRecord        Op = "record"

	// Render operations
	OpSnapshot     Op = "capture snapshot"
	OpSnapshotSave Op = "save snapshot"
	OpRender       Op = "render video"

	// Initialization
	OpConfigLoad Op = "load configuration"
	OpLogOpen    Op = "open log file"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
