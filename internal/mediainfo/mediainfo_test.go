package mediainfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDescription() Description {
	return Description{
		StartTime: 0,
		Duration:  90_000,
		BitRate:   2_500_000,
		Format:    "mov,mp4,m4a,3gp,3g2,mj2",
		Audio: []AudioStreamInfo{
			{Index: 1, Duration: 90_000, Codec: AudioCodecParameters{Codec: "aac", Channels: 2, SampleRate: 48000}},
			{Index: 2, Duration: 90_000, Codec: AudioCodecParameters{Codec: "opus", Channels: 6, SampleRate: 48000}},
		},
		Video: []VideoStreamInfo{
			{
				Index:    0,
				Duration: 90_000,
				Frames:   2700,
				Codec: VideoCodecParameters{
					Codec:     "h264",
					CodecTag:  MakeCodecTag("avc1"),
					ExtraData: []byte{1, 2, 3},
					Format:    PixelFormatYUV420P,
					Width:     1920,
					Height:    1080,
					FrameRate: 30,
				},
			},
		},
		Metadata: []Tag{
			{Key: "title", Value: "Clip"},
			{Key: "artist", Value: "Someone"},
			{Key: "encoder", Value: "Lavf60"},
		},
	}
}

func TestNew_DeepCopiesDescription(t *testing.T) {
	d := sampleDescription()
	info := New(d)

	d.Video[0].Codec.ExtraData[0] = 99
	d.Video[0].Codec.Width = 1
	d.Metadata[0].Value = "changed"

	codec, ok := info.VideoCodec(0)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, codec.ExtraData)
	assert.Equal(t, 1920, codec.Width)
	title, _ := info.Metadata("title")
	assert.Equal(t, "Clip", title)
}

func TestInfo_AccessorsReturnCopies(t *testing.T) {
	info := New(sampleDescription())

	v := info.Video()
	v[0].Codec.ExtraData[0] = 42
	v[0].Codec.Codec = "hevc"

	again := info.Video()
	assert.Equal(t, byte(1), again[0].Codec.ExtraData[0])
	assert.Equal(t, "h264", again[0].Codec.Codec)
}

func TestInfo_Counts(t *testing.T) {
	info := New(sampleDescription())

	assert.Equal(t, 1, info.NumVideo())
	assert.Equal(t, 2, info.NumAudio())
	assert.Equal(t, 3, info.Streams(), "stream total covers described streams")
	assert.Equal(t, int64(90_000), info.Duration())
	assert.Equal(t, int64(2_500_000), info.BitRate())
}

func TestInfo_PixelFormatNameFallback(t *testing.T) {
	d := sampleDescription()
	d.Video = append(d.Video, VideoStreamInfo{Index: 3, Codec: VideoCodecParameters{Format: 1234}})
	d.Video = append(d.Video, VideoStreamInfo{Index: 4, Codec: VideoCodecParameters{Format: PixelFormatNV12, FormatName: "nv12_custom"}})
	info := New(d)

	v := info.Video()
	assert.Equal(t, "yuv420p", v[0].Codec.FormatName)
	assert.Equal(t, "unknown", v[1].Codec.FormatName)
	assert.Equal(t, "nv12_custom", v[2].Codec.FormatName)
}

func TestCodecTag_String(t *testing.T) {
	tests := []struct {
		name string
		tag  CodecTag
		want string
	}{
		{"printable", MakeCodecTag("avc1"), "avc1"},
		{"short tag padded with zero", MakeCodecTag("mp"), "0x0000706d"},
		{"zero", 0, "0x00000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tag.String())
		})
	}
}

func TestMetadataEntry_FromBeginning(t *testing.T) {
	info := New(sampleDescription())

	var keys []string
	var e Entry
	for info.MetadataEntry(&e) {
		keys = append(keys, e.Key)
	}

	assert.Equal(t, []string{"title", "artist", "encoder"}, keys)
}

func TestMetadataEntry_ByKeyThenContinue(t *testing.T) {
	info := New(sampleDescription())

	e := Entry{Key: "artist"}
	require.True(t, info.MetadataEntry(&e))
	assert.Equal(t, "Someone", e.Value)

	require.True(t, info.MetadataEntry(&e))
	assert.Equal(t, "encoder", e.Key)

	assert.False(t, info.MetadataEntry(&e))
}

func TestMetadataEntry_UnknownKey(t *testing.T) {
	info := New(sampleDescription())

	e := Entry{Key: "missing"}
	assert.False(t, info.MetadataEntry(&e))
}

func TestMetadataEntry_IndependentCursors(t *testing.T) {
	info := New(sampleDescription())

	var a, b Entry
	require.True(t, info.MetadataEntry(&a))
	require.True(t, info.MetadataEntry(&a))
	require.True(t, info.MetadataEntry(&b))

	assert.Equal(t, "artist", a.Key)
	assert.Equal(t, "title", b.Key)
}

func TestMetadata_DuplicateKeysKeepFirstPosition(t *testing.T) {
	d := sampleDescription()
	d.Metadata = append(d.Metadata, Tag{Key: "title", Value: "Renamed"})
	info := New(d)

	var keys []string
	for k := range info.All() {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"title", "artist", "encoder"}, keys)
	v, _ := info.Metadata("title")
	assert.Equal(t, "Renamed", v)
	assert.Equal(t, 3, info.MetadataLen())
}

func TestInfo_String(t *testing.T) {
	d := sampleDescription()
	d.Format = "mp4"
	info := New(d)

	assert.Equal(t, "mp4, 1m30s, 2.5 Mbps, 1 video, 2 audio", info.String())
}
