package player

import (
	"errors"
	"image"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/playcore/internal/errmsg"
	"github.com/llehouerou/playcore/internal/media"
	"github.com/llehouerou/playcore/internal/render"
)

var errSnapshotDropped = errors.New("no frame was rendered")

// The render surface methods take a vo identifying the surface; nil is the
// default one. They never take the player lock, so RenderVideo can run on a
// render goroutine while commands are issued.

// SetRenderAPI binds api to vo, replacing any previous API. It must be called
// before other calls for vo and must not race with RenderVideo for vo.
func (p *Player) SetRenderAPI(api *render.API, vo any) {
	p.hub.SetAPI(api, vo)
}

// RenderAPI returns the API bound to vo, or nil.
func (p *Player) RenderAPI(vo any) *render.API {
	return p.hub.API(vo)
}

// SetVideoSurfaceSize sets the surface size of vo. A negative size removes
// the surface and fails its pending snapshots.
func (p *Player) SetVideoSurfaceSize(width, height int, vo any) {
	p.hub.SetSurfaceSize(width, height, vo)
}

// SetVideoViewport sets the area of the surface vo draws in, relative to the
// surface size.
func (p *Player) SetVideoViewport(x, y, w, h float32, vo any) {
	p.hub.SetViewport(render.Rect{X: x, Y: y, W: w, H: h}, vo)
}

func (p *Player) SetAspectRatio(value float32, vo any) {
	p.hub.SetAspectRatio(value, vo)
}

func (p *Player) Rotate(degree int, vo any) {
	p.hub.Rotate(degree, vo)
}

func (p *Player) Scale(x, y float32, vo any) {
	p.hub.Scale(x, y, vo)
}

// SetBackgroundColor sets the background of vo. Any component outside
// [0, 1] disables the background fill.
func (p *Player) SetBackgroundColor(r, g, b, a float32, vo any) {
	p.hub.SetBackgroundColor(r, g, b, a, vo)
}

// RenderVideo draws the current frame for vo and returns its timestamp in
// seconds, or a negative value when nothing was drawn.
func (p *Player) RenderVideo(vo any) float64 {
	return p.hub.Render(vo)
}

// Snapshot captures the next frame rendered for vo. cb runs once on the
// callback goroutine, with a nil image and -1 when the capture fails. A path
// returned by cb saves the image there, as JPEG for .jpg/.jpeg, PNG otherwise.
func (p *Player) Snapshot(req render.SnapshotRequest, cb render.SnapshotFunc, vo any) {
	if cb == nil {
		return
	}
	p.hub.Snapshot(req, func(img *image.RGBA, ts float64) string {
		p.post(func() { p.deliverSnapshot(cb, img, ts) })
		return ""
	}, vo)
}

func (p *Player) deliverSnapshot(cb render.SnapshotFunc, img *image.RGBA, ts float64) {
	if img == nil {
		p.log.Debug(errmsg.Format(errmsg.OpSnapshot, errSnapshotDropped))
	}
	file := cb(img, ts)
	if file == "" || img == nil {
		return
	}
	if err := render.SaveImage(file, img); err != nil {
		p.log.WithError(err).WithField("file", file).Warn(errmsg.Format(errmsg.OpSnapshotSave, err))
		p.dispatchEvent(media.MediaEvent{
			Error:    media.CodeIO,
			Category: media.CategorySnapshot,
			Detail:   errmsg.FormatWith(errmsg.OpSnapshotSave, file, err),
			Stream:   -1,
		})
		return
	}
	p.log.WithField("file", file).Debug("snapshot saved")
}

// contentUpdated is the hub's update notifier. Like the other hub notifiers
// it only posts, so the hub may be driven under the player lock.
func (p *Player) contentUpdated(vo any) {
	p.post(func() {
		if fn, ok := p.renderCb.Get(); ok {
			fn(vo)
		}
	})
}

func (p *Player) firstFrameRendered(vo any, ts float64) {
	e := media.MediaEvent{
		Error:    int64(ts * 1000),
		Category: media.CategoryRenderVideo,
		Detail:   media.DetailFirstFrame,
		Stream:   -1,
	}
	p.post(func() { p.dispatchEvent(e) })
}

// reportingBackend logs and reports the render errors of a backend.
type reportingBackend struct {
	render.Backend
	p *Player
}

func (b reportingBackend) Render(api *render.API, frame render.Frame, params render.Params) error {
	err := b.Backend.Render(api, frame, params)
	if err != nil {
		b.p.log.WithError(err).WithFields(logrus.Fields{
			"timestamp": frame.Timestamp,
		}).Warn(errmsg.Format(errmsg.OpRender, err))
		e := media.MediaEvent{
			Error:    media.CodeOf(err),
			Category: media.CategoryRenderVideo,
			Detail:   errmsg.Format(errmsg.OpRender, err),
			Stream:   -1,
		}
		b.p.post(func() { b.p.dispatchEvent(e) })
	}
	return err
}
