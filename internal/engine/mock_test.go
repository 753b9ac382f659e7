package engine

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/playcore/internal/media"
	"github.com/llehouerou/playcore/internal/mediainfo"
	"github.com/llehouerou/playcore/internal/render"
)

type recordingSink struct {
	frames    []render.Frame
	positions []int64
	events    []media.MediaEvent
	ended     bool
	failure   error
}

func (s *recordingSink) Frame(f render.Frame) { s.frames = append(s.frames, f) }
func (s *recordingSink) Position(ms int64) { s.positions = append(s.positions, ms) }
func (s *recordingSink) Buffering(int) {}
func (s *recordingSink) Stalled(bool) {}
func (s *recordingSink) Event(e media.MediaEvent) { s.events = append(s.events, e) }
func (s *recordingSink) EndOfStream() { s.ended = true }
func (s *recordingSink) Failed(err error) { s.failure = err }

func TestKeyFrameAt(t *testing.T) {
	tests := []struct {
		name     string
		pos      int64
		interval int64
		fast     bool
		want     int64
	}{
		{"every frame is key", 1234, 0, true, 1234},
		{"fast rounds up", 1234, 1000, true, 2000},
		{"accurate rounds down", 1234, 1000, false, 1000},
		{"on key frame", 2000, 1000, true, 2000},
		{"negative clamps", -10, 1000, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keyFrameAt(tt.pos, tt.interval, tt.fast))
		})
	}
}

func TestMock_OpenScriptedAndDefault(t *testing.T) {
	m := NewMock()
	m.AddMedia("a.mkv", mediainfo.Description{Format: "matroska", Duration: 5000})

	pl, err := m.Open(context.Background(), OpenRequest{URL: "a.mkv"}, &recordingSink{})
	require.NoError(t, err)
	assert.Equal(t, "matroska", pl.MediaInfo().Format)

	pl, err = m.Open(context.Background(), OpenRequest{URL: "other"}, &recordingSink{})
	require.NoError(t, err)
	assert.Equal(t, DefaultDescription().Format, pl.MediaInfo().Format)
	assert.Len(t, m.Opens(), 2)
	assert.Len(t, m.Pipelines(), 2)
}

func TestMock_OpenError(t *testing.T) {
	m := NewMock()
	want := &media.Error{Code: media.CodeInvalid, Detail: "unsupported"}
	m.SetOpenError("bad", want)

	_, err := m.Open(context.Background(), OpenRequest{URL: "bad"}, &recordingSink{})
	assert.ErrorIs(t, err, want)
	assert.Nil(t, m.Last())
}

func TestMock_BlockOpenHonorsContext(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := NewMock()
		release := m.BlockOpen()
		defer release()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_, err := m.Open(ctx, OpenRequest{URL: "x"}, &recordingSink{})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestMock_BlockSeekRelease(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := NewMock()
		m.SetKeyFrameInterval(500)
		pl, err := m.Open(context.Background(), OpenRequest{URL: "x"}, &recordingSink{})
		require.NoError(t, err)

		release := m.BlockSeek()
		var got int64
		done := make(chan struct{})
		go func() {
			got, _ = pl.Seek(context.Background(), 1200, media.Default)
			close(done)
		}()
		synctest.Wait()
		select {
		case <-done:
			t.Fatal("seek should block")
		default:
		}
		release()
		<-done

		assert.Equal(t, int64(1500), got)
		assert.Equal(t, int64(1500), pl.Position())
	})
}

func TestMockPipeline_Emitters(t *testing.T) {
	m := NewMock()
	sink := &recordingSink{}
	p, err := m.Open(context.Background(), OpenRequest{URL: "x"}, sink)
	require.NoError(t, err)
	pl := p.(*MockPipeline)

	pl.EmitFrame(0.5, nil)
	pl.EmitPosition(250)
	pl.EmitEvent(media.MediaEvent{Category: media.CategoryReader})
	pl.EmitEnd()
	pl.EmitFailure(errors.New("boom"))

	require.Len(t, sink.frames, 1)
	assert.InDelta(t, 0.5, sink.frames[0].Timestamp, 1e-9)
	assert.Equal(t, []int64{250}, sink.positions)
	assert.Equal(t, int64(250), pl.Position())
	assert.Len(t, sink.events, 1)
	assert.True(t, sink.ended)
	assert.EqualError(t, sink.failure, "boom")
}

func TestMockPipeline_RecordError(t *testing.T) {
	m := NewMock()
	p, err := m.Open(context.Background(), OpenRequest{URL: "x"}, &recordingSink{})
	require.NoError(t, err)
	pl := p.(*MockPipeline)
	pl.SetRecordError(errors.New("no muxer"))

	assert.Error(t, pl.Record("out.mp4", "mp4"))
	assert.NoError(t, pl.Record("", ""), "stopping never fails")
	assert.Equal(t, []RecordCall{{}}, pl.Recordings())
}
