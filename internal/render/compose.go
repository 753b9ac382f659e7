package render

import (
	"image"
	"image/draw"
	"math"

	"github.com/nfnt/resize"
)

// fitSize returns the size of a frame of fw x fh drawn into a viewport of
// vw x vh under the given aspect ratio mode.
func fitSize(fw, fh, vw, vh int, aspect float32) (int, int) {
	if aspect == IgnoreAspectRatio || fw <= 0 || fh <= 0 || vw <= 0 || vh <= 0 {
		return vw, vh
	}
	ratio := math.Abs(float64(aspect))
	if aspect == KeepAspectRatio || aspect == KeepAspectRatioCrop {
		ratio = float64(fw) / float64(fh)
	}
	inside := aspect > 0
	vr := float64(vw) / float64(vh)
	if (vr > ratio) == inside {
		return round(float64(vh) * ratio), vh
	}
	return vw, round(float64(vw) / ratio)
}

func round(v float64) int {
	return int(math.Round(v))
}

// viewportRect maps the relative viewport onto bounds. A zero surface size
// means the surface is bounds itself.
func (p Params) viewportRect(bounds image.Rectangle) image.Rectangle {
	sw, sh := p.SurfaceWidth, p.SurfaceHeight
	if sw <= 0 || sh <= 0 {
		sw, sh = bounds.Dx(), bounds.Dy()
	}
	vp := p.Viewport
	if vp.W <= 0 || vp.H <= 0 {
		vp = FullViewport
	}
	x0 := bounds.Min.X + round(float64(vp.X)*float64(sw))
	y0 := bounds.Min.Y + round(float64(vp.Y)*float64(sh))
	r := image.Rect(x0, y0, x0+round(float64(vp.W)*float64(sw)), y0+round(float64(vp.H)*float64(sh)))
	return r.Intersect(bounds)
}

// compose draws src into dst with every transform of p applied: viewport,
// background, rotation, aspect ratio and scale.
func compose(dst draw.Image, src image.Image, p Params) {
	vr := p.viewportRect(dst.Bounds())
	if vr.Empty() {
		return
	}
	if p.HasBackground {
		draw.Draw(dst, vr, image.NewUniform(p.Background), image.Point{}, draw.Src)
	}
	if src == nil {
		return
	}

	img := rotate(src, p.Rotation)
	b := img.Bounds()
	w, h := fitSize(b.Dx(), b.Dy(), vr.Dx(), vr.Dy(), p.AspectRatio)
	w = round(float64(w) * scaleOr1(p.ScaleX))
	h = round(float64(h) * scaleOr1(p.ScaleY))
	if w <= 0 || h <= 0 {
		return
	}

	scaled := scaleTo(img, w, h)
	x := vr.Min.X + (vr.Dx()-w)/2
	y := vr.Min.Y + (vr.Dy()-h)/2
	target := image.Rect(x, y, x+w, y+h)
	clip := target.Intersect(vr)
	if clip.Empty() {
		return
	}
	sp := scaled.Bounds().Min.Add(clip.Min.Sub(target.Min))
	draw.Draw(dst, clip, scaled, sp, draw.Over)
}

func scaleOr1(s float32) float64 {
	if s <= 0 {
		return 1
	}
	return float64(s)
}

func scaleTo(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	return resize.Resize(uint(w), uint(h), img, resize.Bilinear) //nolint:gosec // w, h checked positive
}

// rotate turns img clockwise by a multiple of 90 degrees.
func rotate(img image.Image, degree int) image.Image {
	degree = NormalizeRotation(degree)
	if degree == 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	var out *image.RGBA
	if degree == 180 {
		out = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		out = image.NewRGBA(image.Rect(0, 0, h, w))
	}
	for y := range h {
		for x := range w {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			switch degree {
			case 90:
				out.Set(h-1-y, x, c)
			case 180:
				out.Set(w-1-x, h-1-y, c)
			case 270:
				out.Set(y, w-1-x, c)
			}
		}
	}
	return out
}
