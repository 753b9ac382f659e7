// Package render owns the render bindings of a player: one set of rendering
// parameters per caller-chosen surface identity (vo), the most recent decoded
// frame, and snapshot capture.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Aspect ratio sentinels. Any other positive value is an explicit ratio fit
// inside the viewport, any other negative value an explicit ratio fit outside.
const (
	IgnoreAspectRatio   float32 = 0
	KeepAspectRatio     float32 = 1.1920929e-07 // FLT_EPSILON: frame ratio, fit inside
	KeepAspectRatioCrop         = -KeepAspectRatio
)

// APIType names the graphics API a binding renders with.
type APIType int

const (
	APISoftware APIType = iota
	APIOpenGL
	APIVulkan
	APIMetal
	APID3D11
)

func (t APIType) String() string {
	switch t {
	case APISoftware:
		return "software"
	case APIOpenGL:
		return "opengl"
	case APIVulkan:
		return "vulkan"
	case APIMetal:
		return "metal"
	case APID3D11:
		return "d3d11"
	default:
		return "unknown"
	}
}

// API describes the render target of one binding.
// Context carries API specific handles and is passed through to the backend.
// Target is the destination of software composition.
type API struct {
	Type    APIType
	Context any
	Target  draw.Image
}

// Frame is a decoded video frame.
type Frame struct {
	Timestamp float64 // seconds
	Image     image.Image
}

// Rect is a viewport in surface-relative coordinates, each in [0, 1].
type Rect struct {
	X, Y, W, H float32
}

// FullViewport covers the whole surface.
var FullViewport = Rect{W: 1, H: 1}

// Params are the rendering parameters of one binding.
type Params struct {
	SurfaceWidth  int
	SurfaceHeight int
	Viewport      Rect
	AspectRatio   float32
	Rotation      int // 0, 90, 180 or 270, clockwise
	ScaleX        float32
	ScaleY        float32
	Background    color.NRGBA
	HasBackground bool
}

// DefaultParams returns the parameters of a fresh binding.
func DefaultParams() Params {
	return Params{
		Viewport:      FullViewport,
		AspectRatio:   KeepAspectRatio,
		ScaleX:        1,
		ScaleY:        1,
		Background:    color.NRGBA{A: 0xff},
		HasBackground: true,
	}
}

// Backend draws frames for a binding.
type Backend interface {
	Render(api *API, frame Frame, p Params) error
	// Clear drops the rendered content of a binding.
	Clear(api *API, p Params)
}

// BackgroundColor converts a color given as floats in [0, 1]. It reports false
// when any component is out of range, which disables background fill.
func BackgroundColor(r, g, b, a float32) (color.NRGBA, bool) {
	c := colorful.Color{R: float64(r), G: float64(g), B: float64(b)}
	if !c.IsValid() || a < 0 || a > 1 {
		return color.NRGBA{}, false
	}
	r8, g8, b8 := c.RGB255()
	return color.NRGBA{R: r8, G: g8, B: b8, A: uint8(a*255 + 0.5)}, true
}

// ParseBackground parses a hex color such as "#202020". An empty string
// disables background fill.
func ParseBackground(hex string) (color.NRGBA, bool, error) {
	if hex == "" {
		return color.NRGBA{}, false, nil
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, false, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, true, nil
}

// NormalizeRotation maps any angle to 0, 90, 180 or 270.
func NormalizeRotation(degree int) int {
	d := ((degree % 360) + 360) % 360
	return (d + 45) / 90 * 90 % 360
}

// ParseAspectRatio parses "keep", "crop", "stretch", "W:H" or a decimal
// ratio. A leading '-' on a ratio fits it outside the viewport.
func ParseAspectRatio(s string) (float32, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "keep":
		return KeepAspectRatio, nil
	case "crop":
		return KeepAspectRatioCrop, nil
	case "stretch":
		return IgnoreAspectRatio, nil
	}
	sign := float32(1)
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		sign, s = -1, rest
	}
	var ratio float64
	if w, h, ok := strings.Cut(s, ":"); ok {
		wv, err1 := strconv.ParseFloat(w, 32)
		hv, err2 := strconv.ParseFloat(h, 32)
		if err1 != nil || err2 != nil || hv <= 0 {
			return 0, fmt.Errorf("invalid aspect ratio %q", s)
		}
		ratio = wv / hv
	} else {
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid aspect ratio %q", s)
		}
		ratio = v
	}
	if ratio <= 0 {
		return 0, fmt.Errorf("invalid aspect ratio %q", s)
	}
	return sign * float32(ratio), nil
}
