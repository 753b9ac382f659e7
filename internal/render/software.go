package render

import "image"

// SoftwareBackend composes frames into API.Target on the CPU. Bindings of
// other API types, or without a target, only present the timestamp.
type SoftwareBackend struct{}

var _ Backend = SoftwareBackend{}

// Render implements Backend.
func (SoftwareBackend) Render(api *API, frame Frame, p Params) error {
	if api == nil || api.Type != APISoftware || api.Target == nil {
		return nil
	}
	compose(api.Target, frame.Image, p)
	return nil
}

// Clear implements Backend. The viewport is filled with the background, or
// made transparent when background fill is disabled.
func (SoftwareBackend) Clear(api *API, p Params) {
	if api == nil || api.Type != APISoftware || api.Target == nil {
		return
	}
	if !p.HasBackground {
		p.HasBackground = true
		p.Background.A = 0
		p.Background.R, p.Background.G, p.Background.B = 0, 0, 0
	}
	compose(api.Target, image.Image(nil), p)
}
