// Package mediainfo provides the immutable description of a loaded media.
//
// The engine reports a mutable Description; New deep-copies it into an Info
// snapshot. Buffers reachable from an Info (codec extra data) belong to it and
// are never shared with the Description they came from.
package mediainfo

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// CodecTag is a four-byte codec tag, e.g. "avc1".
type CodecTag uint32

// String renders printable tags as four characters, others as hex.
func (t CodecTag) String() string {
	b := []byte{byte(t), byte(t >> 8), byte(t >> 16), byte(t >> 24)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(t))
		}
	}
	return string(b)
}

// MakeCodecTag builds a tag from its four-character form.
func MakeCodecTag(s string) CodecTag {
	var t CodecTag
	for i := 0; i < 4 && i < len(s); i++ {
		t |= CodecTag(s[i]) << (8 * i)
	}
	return t
}

// VideoCodecParameters describes a video decoder configuration.
type VideoCodecParameters struct {
	Codec      string
	CodecTag   CodecTag
	ExtraData  []byte
	BitRate    int64
	Profile    int
	Level      int
	FrameRate  float32
	Format     int // pixel format id
	FormatName string
	Width      int
	Height     int
	BFrames    int // max consecutive B-frames
}

// AudioCodecParameters describes an audio decoder configuration.
type AudioCodecParameters struct {
	Codec         string
	CodecTag      CodecTag
	ExtraData     []byte
	BitRate       int64
	Profile       int
	Level         int
	FrameRate     float32
	IsFloat       bool
	IsUnsigned    bool
	IsPlanar      bool
	RawSampleSize int
	Channels      int
	SampleRate    int
	BlockAlign    int
	FrameSize     int // samples per channel
}

// VideoStreamInfo describes one video stream.
type VideoStreamInfo struct {
	Index     int
	StartTime int64 // ms
	Duration  int64 // ms
	Frames    int64
	Rotation  int
	Codec     VideoCodecParameters
	Metadata  []Tag
}

// AudioStreamInfo describes one audio stream.
type AudioStreamInfo struct {
	Index     int
	StartTime int64 // ms
	Duration  int64 // ms
	Frames    int64
	Codec     AudioCodecParameters
	Metadata  []Tag
}

// Tag is one metadata key-value pair.
type Tag struct {
	Key   string
	Value string
}

// Description is what an engine reports after opening a media.
// Metadata keeps the engine's storage order; duplicate keys keep the first position
// and the last value.
type Description struct {
	StartTime int64 // ms
	Duration  int64 // ms
	BitRate   int64
	Format    string
	Streams   int
	Audio     []AudioStreamInfo
	Video     []VideoStreamInfo
	Metadata  []Tag
}

// Info is an immutable snapshot of a loaded media.
type Info struct {
	startTime int64
	duration  int64
	bitRate   int64
	format    string
	streams   int
	audio     []AudioStreamInfo
	video     []VideoStreamInfo
	metadata  *orderedmap.OrderedMap[string, string]
}

// New snapshots d.
func New(d Description) *Info {
	info := &Info{
		startTime: d.StartTime,
		duration:  d.Duration,
		bitRate:   d.BitRate,
		format:    d.Format,
		streams:   d.Streams,
		audio:     make([]AudioStreamInfo, len(d.Audio)),
		video:     make([]VideoStreamInfo, len(d.Video)),
		metadata:  orderedmap.New[string, string](),
	}
	for i, a := range d.Audio {
		a.Codec.ExtraData = cloneBytes(a.Codec.ExtraData)
		a.Metadata = cloneTags(a.Metadata)
		info.audio[i] = a
	}
	for i, v := range d.Video {
		v.Codec.ExtraData = cloneBytes(v.Codec.ExtraData)
		if v.Codec.FormatName == "" {
			v.Codec.FormatName = PixelFormatName(v.Codec.Format)
		}
		v.Metadata = cloneTags(v.Metadata)
		info.video[i] = v
	}
	if min := len(d.Audio) + len(d.Video); info.streams < min {
		info.streams = min
	}
	for _, t := range d.Metadata {
		info.metadata.Set(t.Key, t.Value)
	}
	return info
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func cloneTags(tags []Tag) []Tag {
	if tags == nil {
		return nil
	}
	out := make([]Tag, len(tags))
	copy(out, tags)
	return out
}

// StartTime is the media start time in ms.
func (i *Info) StartTime() int64 { return i.startTime }

// Duration is the media duration in ms.
func (i *Info) Duration() int64 { return i.duration }

// BitRate is the overall bit rate in bits per second.
func (i *Info) BitRate() int64 { return i.bitRate }

// Format is the container name.
func (i *Info) Format() string { return i.format }

// Streams is the total number of streams, including types not described here.
func (i *Info) Streams() int { return i.streams }

// NumAudio returns the number of audio streams.
func (i *Info) NumAudio() int { return len(i.audio) }

// NumVideo returns the number of video streams.
func (i *Info) NumVideo() int { return len(i.video) }

// Audio returns a copy of the audio stream descriptors in stream order.
func (i *Info) Audio() []AudioStreamInfo {
	out := make([]AudioStreamInfo, len(i.audio))
	for n, a := range i.audio {
		a.Codec.ExtraData = cloneBytes(a.Codec.ExtraData)
		a.Metadata = cloneTags(a.Metadata)
		out[n] = a
	}
	return out
}

// Video returns a copy of the video stream descriptors in stream order.
func (i *Info) Video() []VideoStreamInfo {
	out := make([]VideoStreamInfo, len(i.video))
	for n, v := range i.video {
		v.Codec.ExtraData = cloneBytes(v.Codec.ExtraData)
		v.Metadata = cloneTags(v.Metadata)
		out[n] = v
	}
	return out
}

// VideoCodec returns the codec parameters of the n-th video stream.
func (i *Info) VideoCodec(n int) (VideoCodecParameters, bool) {
	if n < 0 || n >= len(i.video) {
		return VideoCodecParameters{}, false
	}
	p := i.video[n].Codec
	p.ExtraData = cloneBytes(p.ExtraData)
	return p, true
}

// Metadata looks up a metadata value by key.
func (i *Info) Metadata(key string) (string, bool) {
	return i.metadata.Get(key)
}

// MetadataLen returns the number of metadata entries.
func (i *Info) MetadataLen() int {
	return i.metadata.Len()
}

// Entry is a cursor over the metadata of one Info.
// The cursor state lives in the Entry, so concurrent iterations never interfere.
type Entry struct {
	Key   string
	Value string

	info *Info
	pair *orderedmap.Pair[string, string]
}

// MetadataEntry advances e and reports whether it holds an entry:
//   - e continues a previous iteration on this Info: move to the next entry
//   - e.Key is set: position on that key
//   - otherwise: position on the first entry
func (i *Info) MetadataEntry(e *Entry) bool {
	var p *orderedmap.Pair[string, string]
	switch {
	case e.pair != nil && e.info == i:
		p = e.pair.Next()
	case e.Key != "":
		p = i.metadata.GetPair(e.Key)
	default:
		p = i.metadata.Oldest()
	}
	if p == nil {
		e.pair = nil
		return false
	}
	e.Key, e.Value = p.Key, p.Value
	e.info, e.pair = i, p
	return true
}

// All iterates metadata in storage order.
func (i *Info) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for p := i.metadata.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// String summarizes the media, e.g. "mp4, 1m30s, 2.5 Mbps, 1 video, 2 audio".
func (i *Info) String() string {
	parts := []string{i.format}
	if i.duration > 0 {
		parts = append(parts, (time.Duration(i.duration) * time.Millisecond).String())
	}
	if i.bitRate > 0 {
		parts = append(parts, humanize.SI(float64(i.bitRate), "bps"))
	}
	parts = append(parts,
		fmt.Sprintf("%d video", len(i.video)),
		fmt.Sprintf("%d audio", len(i.audio)))
	return strings.Join(parts, ", ")
}
