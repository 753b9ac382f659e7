package player

import (
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/playcore/internal/config"
	"github.com/llehouerou/playcore/internal/engine"
	"github.com/llehouerou/playcore/internal/media"
	"github.com/llehouerou/playcore/internal/render"
	"github.com/llehouerou/playcore/internal/status"
)

type snapshotResult struct {
	mu  sync.Mutex
	img *image.RGBA
	ts  float64
	n   int
}

func (s *snapshotResult) fn(file string) render.SnapshotFunc {
	return func(img *image.RGBA, ts float64) string {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.img, s.ts = img, ts
		s.n++
		return file
	}
}

func TestRender_FirstFrameEvent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, m := newTestPlayer(t, config.PlayerConfig{})
		defer p.Close()

		play(t, p, "a.mp4")
		r := newRecorder(p)
		pl := m.Last()
		pl.EmitFrame(1.5, nil)
		assert.InDelta(t, 1.5, p.RenderVideo(nil), 1e-9)
		pl.EmitFrame(1.54, nil)
		assert.InDelta(t, 1.54, p.RenderVideo(nil), 1e-9)
		synctest.Wait()

		events := r.Events()
		require.Len(t, events, 1)
		assert.Equal(t, media.MediaEvent{
			Error:    1500,
			Category: media.CategoryRenderVideo,
			Detail:   media.DetailFirstFrame,
			Stream:   -1,
		}, events[0])
	})
}

func TestRender_CallbackOnNewFrame(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, m := newTestPlayer(t, config.PlayerConfig{})
		defer p.Close()

		var mu sync.Mutex
		var calls []any
		p.SetRenderCallback(func(vo any) {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, vo)
		})

		play(t, p, "a.mp4")
		m.Last().EmitFrame(0.04, nil)
		synctest.Wait()

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []any{nil}, calls)
	})
}

func TestRender_StaleFramesAreDropped(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, m := newTestPlayer(t, config.PlayerConfig{})
		defer p.Close()

		play(t, p, "a.mp4")
		old := m.Last()
		p.SetMedia("b.mp4")
		synctest.Wait()

		old.EmitFrame(3, nil)
		assert.Negative(t, p.RenderVideo(nil))
	})
}

func TestRender_NaturalEndKeepsFrame(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, m := newTestPlayer(t, config.PlayerConfig{})
		defer p.Close()

		play(t, p, "a.mp4")
		pl := m.Last()
		pl.EmitFrame(59.96, nil)
		pl.EmitEnd()
		synctest.Wait()

		require.Equal(t, status.Stopped, p.State())
		assert.InDelta(t, 59.96, p.RenderVideo(nil), 1e-9)
	})
}

func TestRender_StopClearsFrame(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, m := newTestPlayer(t, config.PlayerConfig{})
		defer p.Close()

		play(t, p, "a.mp4")
		m.Last().EmitFrame(10, nil)
		p.SetState(status.Stopped)

		assert.Negative(t, p.RenderVideo(nil))
	})
}

func TestSnapshot_NativeSize(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, m := newTestPlayer(t, config.PlayerConfig{})
		defer p.Close()

		p.Rotate(90, nil)
		p.Scale(2, 2, nil)
		play(t, p, "a.mp4")
		m.Last().EmitFrame(1.5, nil)

		var res snapshotResult
		p.Snapshot(render.SnapshotRequest{Width: -1, Height: -1}, res.fn(""), nil)
		p.RenderVideo(nil)
		synctest.Wait()

		res.mu.Lock()
		defer res.mu.Unlock()
		require.Equal(t, 1, res.n)
		require.NotNil(t, res.img)
		assert.Equal(t, image.Rect(0, 0, 16, 9), res.img.Bounds(), "transforms are not applied")
		assert.InDelta(t, 1.5, res.ts, 1e-9)
	})
}

func TestSnapshot_FailsOnStop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, config.PlayerConfig{})
		defer p.Close()

		play(t, p, "a.mp4")
		var res snapshotResult
		p.Snapshot(render.SnapshotRequest{Width: -1, Height: -1}, res.fn(""), nil)
		p.SetState(status.Stopped)
		synctest.Wait()

		res.mu.Lock()
		defer res.mu.Unlock()
		assert.Equal(t, 1, res.n)
		assert.Nil(t, res.img)
		assert.Negative(t, res.ts)
	})
}

func TestSnapshot_SavesReturnedPath(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, m := newTestPlayer(t, config.PlayerConfig{})
		defer p.Close()

		play(t, p, "a.mp4")
		m.Last().EmitFrame(2, nil)
		file := filepath.Join(t.TempDir(), "shot.png")

		var res snapshotResult
		p.Snapshot(render.SnapshotRequest{}, res.fn(file), nil)
		p.RenderVideo(nil)
		synctest.Wait()

		info, err := os.Stat(file)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})
}

func TestSnapshot_SaveErrorIsReported(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, m := newTestPlayer(t, config.PlayerConfig{})
		defer p.Close()

		play(t, p, "a.mp4")
		m.Last().EmitFrame(2, nil)
		p.RenderVideo(nil)
		synctest.Wait()
		r := newRecorder(p)

		file := filepath.Join(t.TempDir(), "missing", "shot.jpg")
		var res snapshotResult
		p.Snapshot(render.SnapshotRequest{}, res.fn(file), nil)
		p.RenderVideo(nil)
		synctest.Wait()

		events := r.Events()
		require.Len(t, events, 1)
		assert.Equal(t, media.CategorySnapshot, events[0].Category)
		assert.Equal(t, media.CodeIO, events[0].Error)
	})
}

type failingBackend struct{}

func (failingBackend) Render(*render.API, render.Frame, render.Params) error {
	return &media.Error{Code: media.CodeInvalid, Category: media.CategoryRenderVideo, Detail: "context lost"}
}

func (failingBackend) Clear(*render.API, render.Params) {}

func TestRender_BackendErrorIsReported(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := engine.NewMock()
		p, err := New(Options{Engine: m, Backend: failingBackend{}})
		require.NoError(t, err)
		defer p.Close()

		play(t, p, "a.mp4")
		r := newRecorder(p)
		m.Last().EmitFrame(1, nil)
		assert.Negative(t, p.RenderVideo(nil))
		synctest.Wait()

		events := r.Events()
		require.Len(t, events, 1)
		assert.Equal(t, media.CategoryRenderVideo, events[0].Category)
		assert.Equal(t, media.CodeInvalid, events[0].Error)
		assert.Contains(t, events[0].Detail, "context lost")
	})
}
