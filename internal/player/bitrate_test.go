package player

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/playcore/internal/config"
	"github.com/llehouerou/playcore/internal/engine"
	"github.com/llehouerou/playcore/internal/media"
	"github.com/llehouerou/playcore/internal/status"
)

func TestSwitchBitrate_TakesOverAfterDelay(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, m := newTestPlayer(t, config.PlayerConfig{})
		defer p.Close()

		play(t, p, "stream-480.m3u8")
		old := m.Last()
		old.EmitPosition(12_000)
		r := newRecorder(p)

		p.SwitchBitrate("stream-720.m3u8", time.Second, r.switched())
		synctest.Wait()
		alt := m.Last()
		require.NotSame(t, old, alt)
		assert.Equal(t, "stream-480.m3u8", p.URL(), "the current media plays until the delay elapses")
		assert.Empty(t, alt.Seeks())

		time.Sleep(time.Second)
		synctest.Wait()

		assert.Equal(t, []string{"switch:true"}, r.Entries())
		assert.Equal(t, "stream-720.m3u8", p.URL())
		assert.Equal(t, []engine.SeekCall{{Pos: 12_000, Flags: media.From0}}, alt.Seeks())
		assert.True(t, old.Closed())
		assert.False(t, alt.Paused())
		assert.Equal(t, status.Playing, p.State())
	})
}

func TestSwitchBitrate_OpenFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, m := newTestPlayer(t, config.PlayerConfig{})
		defer p.Close()

		play(t, p, "stream-480.m3u8")
		r := newRecorder(p)
		m.SetOpenError("stream-1080.m3u8", &media.Error{Code: media.CodeIO, Detail: "404"})
		p.SwitchBitrate("stream-1080.m3u8", 0, r.switched())
		synctest.Wait()

		assert.Equal(t, 1, r.count("switch:false"))
		events := r.Events()
		require.Len(t, events, 1)
		assert.Equal(t, media.CategoryBitrate, events[0].Category)
		assert.Equal(t, media.CodeIO, events[0].Error)
		assert.Equal(t, "stream-480.m3u8", p.URL())
		assert.Equal(t, status.Playing, p.State())
		assert.False(t, p.MediaStatus().Has(status.Invalid))
	})
}

func TestSwitchBitrate_CanceledByStop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, m := newTestPlayer(t, config.PlayerConfig{})
		defer p.Close()

		play(t, p, "stream-480.m3u8")
		r := newRecorder(p)
		p.SwitchBitrate("stream-720.m3u8", time.Minute, r.switched())
		synctest.Wait()
		alt := m.Last()

		p.SetState(status.Stopped)
		time.Sleep(time.Minute)
		synctest.Wait()

		assert.Equal(t, 1, r.count("switch:false"))
		assert.Zero(t, r.count("switch:true"))
		assert.True(t, alt.Closed())
		assert.Equal(t, "stream-480.m3u8", p.URL())
	})
}

func TestSwitchBitrate_SupersededSwitchFails(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, config.PlayerConfig{})
		defer p.Close()

		play(t, p, "stream-480.m3u8")
		r := newRecorder(p)
		p.SwitchBitrate("stream-720.m3u8", time.Second, r.switched())
		p.SwitchBitrate("stream-1080.m3u8", time.Second, r.switched())
		time.Sleep(time.Second)
		synctest.Wait()

		assert.Equal(t, []string{"switch:false", "switch:true"}, r.Entries())
		assert.Equal(t, "stream-1080.m3u8", p.URL())
	})
}

func TestSwitchBitrate_WithoutMedia(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, config.PlayerConfig{})
		defer p.Close()
		r := newRecorder(p)

		p.SwitchBitrate("stream-720.m3u8", 0, r.switched())
		synctest.Wait()
		assert.Equal(t, []string{"switch:false"}, r.Entries())
	})
}

func TestSwitchBitrateSingleConnection_RejectedWithPreload(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _ := newTestPlayer(t, config.PlayerConfig{})
		defer p.Close()

		play(t, p, "stream-480.m3u8")
		r := newRecorder(p)
		assert.False(t, p.SwitchBitrateSingleConnection("stream-720.m3u8", r.switched()))
		synctest.Wait()
		assert.Empty(t, r.Entries())
		assert.Equal(t, "stream-480.m3u8", p.URL())
	})
}

func TestSwitchBitrateSingleConnection(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		preload := false
		p, m := newTestPlayer(t, config.PlayerConfig{PreloadImmediately: &preload})
		defer p.Close()

		play(t, p, "stream-480.m3u8")
		old := m.Last()
		old.EmitPosition(30_000)
		r := newRecorder(p)

		require.True(t, p.SwitchBitrateSingleConnection("stream-720.m3u8", r.switched()))
		assert.True(t, p.MediaStatus().Has(status.Loading))
		synctest.Wait()

		alt := m.Last()
		assert.True(t, old.Closed())
		assert.Equal(t, 1, r.count("switch:true"))
		assert.Equal(t, []engine.SeekCall{{Pos: 30_000, Flags: media.From0}}, alt.Seeks())
		assert.Equal(t, "stream-720.m3u8", p.URL())
		assert.True(t, p.MediaStatus().Has(status.Loaded|status.Prepared))
		assert.False(t, alt.Paused())
		assert.Equal(t, status.Playing, p.State())
	})
}
