package render

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotRequest describes the image a snapshot produces.
//
// Width and Height select the output size:
//   - both negative: the frame's own aspect, scaled by |Width|/|Height|, no transforms
//     (-1, -1 is the native frame size)
//   - exactly one negative: the viewport size with every renderer transform applied
//   - otherwise: 0 takes the frame dimension, a positive value is used as is,
//     and no renderer transform is applied
//
// Data receives the RGBA pixels when it is large enough, otherwise a buffer
// is allocated. Stride defaults to 4*width.
type SnapshotRequest struct {
	Data   []byte
	Width  int
	Height int
	Stride int
}

// SnapshotFunc receives the captured image and the frame time in seconds.
// On failure img is nil and frameTime is negative. A non-empty return value
// is a file path the image is saved to.
type SnapshotFunc func(img *image.RGBA, frameTime float64) string

type pendingSnapshot struct {
	vo  any
	req SnapshotRequest
	cb  SnapshotFunc
}

// capture renders frame according to req. p and surface are the parameters
// and surface bounds of the binding the snapshot was requested for.
func capture(frame Frame, p Params, surface image.Rectangle, req SnapshotRequest) (*image.RGBA, error) {
	if frame.Image == nil {
		return nil, errors.New("no frame")
	}
	fb := frame.Image.Bounds()
	fw, fh := fb.Dx(), fb.Dy()

	switch {
	case req.Width < 0 && req.Height < 0:
		scale := float64(-req.Width) / float64(-req.Height)
		w, h := round(float64(fw)*scale), round(float64(fh)*scale)
		out, err := output(req, w, h)
		if err != nil {
			return nil, err
		}
		draw.Draw(out, out.Bounds(), scaleTo(frame.Image, w, h), image.Point{}, draw.Src)
		return out, nil

	case req.Width < 0 || req.Height < 0:
		if surface.Empty() {
			surface = image.Rect(0, 0, fw, fh)
		}
		vr := p.viewportRect(surface)
		out, err := output(req, vr.Dx(), vr.Dy())
		if err != nil {
			return nil, err
		}
		p.SurfaceWidth, p.SurfaceHeight = 0, 0
		p.Viewport = FullViewport
		compose(out, frame.Image, p)
		return out, nil

	default:
		w, h := req.Width, req.Height
		if w == 0 {
			w = fw
		}
		if h == 0 {
			h = fh
		}
		out, err := output(req, w, h)
		if err != nil {
			return nil, err
		}
		draw.Draw(out, out.Bounds(), scaleTo(frame.Image, w, h), image.Point{}, draw.Src)
		return out, nil
	}
}

// output returns the destination image, backed by req.Data when it fits.
func output(req SnapshotRequest, w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid snapshot size %dx%d", w, h)
	}
	stride := req.Stride
	if stride < 4*w {
		stride = 4 * w
	}
	n := stride*(h-1) + 4*w
	if len(req.Data) >= n {
		return &image.RGBA{Pix: req.Data[:n], Stride: stride, Rect: image.Rect(0, 0, w, h)}, nil
	}
	if stride == 4*w {
		return image.NewRGBA(image.Rect(0, 0, w, h)), nil
	}
	return &image.RGBA{Pix: make([]byte, n), Stride: stride, Rect: image.Rect(0, 0, w, h)}, nil
}

// SaveImage writes img to path. The format follows the extension: JPEG for
// .jpg and .jpeg, PNG otherwise.
func SaveImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
