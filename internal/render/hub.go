package render

import (
	"image"
	"sync"
)

type binding struct {
	// render serializes Render calls for one vo.
	render sync.Mutex

	api    *API
	params Params
	// rendered is set once the binding presented a frame of the current media.
	rendered bool
}

// Hub holds the render bindings of one player, keyed by vo. The nil vo is the
// default renderer. vo values must be comparable.
//
// Render may be called concurrently for different vo values. Every other
// method may be called from any goroutine. Notifications run outside locks.
type Hub struct {
	mu       sync.Mutex
	backend  Backend
	bindings map[any]*binding
	frame    *Frame
	pending  []pendingSnapshot

	update     func(vo any)
	firstFrame func(vo any, timestamp float64)
}

// NewHub returns a hub drawing with backend, or with SoftwareBackend when nil.
func NewHub(backend Backend) *Hub {
	if backend == nil {
		backend = SoftwareBackend{}
	}
	return &Hub{
		backend:  backend,
		bindings: make(map[any]*binding),
	}
}

// SetUpdateFunc sets the notifier called when the content of vo needs a
// redraw. It receives nil for the default renderer, or when a frame arrives
// and no binding exists yet.
func (h *Hub) SetUpdateFunc(fn func(vo any)) {
	h.mu.Lock()
	h.update = fn
	h.mu.Unlock()
}

// SetFirstFrameFunc sets the function called after a binding renders its
// first frame since the last Clear.
func (h *Hub) SetFirstFrameFunc(fn func(vo any, timestamp float64)) {
	h.mu.Lock()
	h.firstFrame = fn
	h.mu.Unlock()
}

func (h *Hub) bindingLocked(vo any) *binding {
	b, ok := h.bindings[vo]
	if !ok {
		b = &binding{params: DefaultParams()}
		h.bindings[vo] = b
	}
	return b
}

// SetAPI binds api to vo, replacing any previous one. It must not race with
// Render for the same vo.
func (h *Hub) SetAPI(api *API, vo any) {
	h.mu.Lock()
	b := h.bindingLocked(vo)
	if api != nil {
		cp := *api
		api = &cp
	}
	b.api = api
	h.mu.Unlock()
}

// API returns the render API bound to vo, or nil.
func (h *Hub) API(vo any) *API {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.bindings[vo]
	if !ok || b.api == nil {
		return nil
	}
	cp := *b.api
	return &cp
}

// Params returns the parameters of vo.
func (h *Hub) Params(vo any) Params {
	h.mu.Lock()
	defer h.mu.Unlock()
	if b, ok := h.bindings[vo]; ok {
		return b.params
	}
	return DefaultParams()
}

func (h *Hub) modify(vo any, fn func(p *Params)) {
	h.mu.Lock()
	fn(&h.bindingLocked(vo).params)
	update := h.update
	h.mu.Unlock()
	if update != nil {
		update(vo)
	}
}

// SetSurfaceSize sets the size of the surface vo draws to. A negative width
// or height removes the binding.
func (h *Hub) SetSurfaceSize(width, height int, vo any) {
	if width < 0 || height < 0 {
		h.Remove(vo)
		return
	}
	h.modify(vo, func(p *Params) {
		p.SurfaceWidth, p.SurfaceHeight = width, height
	})
}

// SetViewport sets the surface-relative area vo draws in.
func (h *Hub) SetViewport(r Rect, vo any) {
	h.modify(vo, func(p *Params) { p.Viewport = r })
}

// SetAspectRatio sets the aspect ratio mode of vo.
func (h *Hub) SetAspectRatio(value float32, vo any) {
	h.modify(vo, func(p *Params) { p.AspectRatio = value })
}

// Rotate sets the clockwise rotation of vo.
func (h *Hub) Rotate(degree int, vo any) {
	h.modify(vo, func(p *Params) { p.Rotation = NormalizeRotation(degree) })
}

// Scale sets the scale factors of vo.
func (h *Hub) Scale(x, y float32, vo any) {
	h.modify(vo, func(p *Params) { p.ScaleX, p.ScaleY = x, y })
}

// SetBackgroundColor sets the background of vo. Components outside [0, 1]
// disable background fill.
func (h *Hub) SetBackgroundColor(r, g, b, a float32, vo any) {
	c, ok := BackgroundColor(r, g, b, a)
	h.modify(vo, func(p *Params) { p.Background, p.HasBackground = c, ok })
}

// Remove drops the binding of vo. Snapshots pending on it fail.
func (h *Hub) Remove(vo any) {
	h.mu.Lock()
	delete(h.bindings, vo)
	var failed []pendingSnapshot
	kept := h.pending[:0]
	for _, s := range h.pending {
		if s.vo == vo {
			failed = append(failed, s)
		} else {
			kept = append(kept, s)
		}
	}
	h.pending = kept
	h.mu.Unlock()
	for _, s := range failed {
		s.cb(nil, -1)
	}
}

// Push makes f the current frame and notifies every binding.
func (h *Hub) Push(f Frame) {
	h.mu.Lock()
	h.frame = &f
	vos := make([]any, 0, len(h.bindings))
	for vo := range h.bindings {
		vos = append(vos, vo)
	}
	update := h.update
	h.mu.Unlock()

	if update == nil {
		return
	}
	if len(vos) == 0 {
		update(nil)
		return
	}
	for _, vo := range vos {
		update(vo)
	}
}

// Frame returns the current frame.
func (h *Hub) Frame() (Frame, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.frame == nil {
		return Frame{}, false
	}
	return *h.frame, true
}

// Render draws the current frame for vo and returns its timestamp in seconds,
// or a negative value when nothing was rendered.
func (h *Hub) Render(vo any) float64 {
	h.mu.Lock()
	b := h.bindingLocked(vo)
	frame := h.frame
	h.mu.Unlock()

	b.render.Lock()
	defer b.render.Unlock()

	h.mu.Lock()
	api, params := b.api, b.params
	h.mu.Unlock()

	if frame == nil {
		return -1
	}
	if err := h.backend.Render(api, *frame, params); err != nil {
		return -1
	}

	h.mu.Lock()
	first := !b.rendered && h.frame == frame
	if first {
		b.rendered = true
	}
	firstFrame := h.firstFrame
	var snaps []pendingSnapshot
	kept := h.pending[:0]
	for _, s := range h.pending {
		if s.vo == vo {
			snaps = append(snaps, s)
		} else {
			kept = append(kept, s)
		}
	}
	h.pending = kept
	h.mu.Unlock()

	if first && firstFrame != nil {
		firstFrame(vo, frame.Timestamp)
	}
	var surface image.Rectangle
	if params.SurfaceWidth > 0 && params.SurfaceHeight > 0 {
		surface = image.Rect(0, 0, params.SurfaceWidth, params.SurfaceHeight)
	} else if api != nil && api.Target != nil {
		surface = api.Target.Bounds()
	}
	for _, s := range snaps {
		img, err := capture(*frame, params, surface, s.req)
		if err != nil {
			s.cb(nil, -1)
			continue
		}
		s.cb(img, frame.Timestamp)
	}
	return frame.Timestamp
}

// Snapshot captures the next frame rendered for vo. cb runs exactly once, on
// the goroutine that renders it, or with a failure on Clear or Remove.
func (h *Hub) Snapshot(req SnapshotRequest, cb SnapshotFunc, vo any) {
	if cb == nil {
		return
	}
	h.mu.Lock()
	h.pending = append(h.pending, pendingSnapshot{vo: vo, req: req, cb: cb})
	update := h.update
	h.mu.Unlock()
	if update != nil {
		update(vo)
	}
}

// Clear drops the current frame and the rendered content of every binding.
// Bindings and their parameters are kept. Pending snapshots fail.
func (h *Hub) Clear() {
	h.mu.Lock()
	h.frame = nil
	type target struct {
		vo     any
		b      *binding
		api    *API
		params Params
	}
	targets := make([]target, 0, len(h.bindings))
	for vo, b := range h.bindings {
		b.rendered = false
		targets = append(targets, target{vo, b, b.api, b.params})
	}
	failed := h.pending
	h.pending = nil
	update := h.update
	h.mu.Unlock()

	for _, t := range targets {
		t.b.render.Lock()
		h.backend.Clear(t.api, t.params)
		t.b.render.Unlock()
	}
	for _, s := range failed {
		s.cb(nil, -1)
	}
	if update != nil {
		for _, t := range targets {
			update(t.vo)
		}
	}
}
