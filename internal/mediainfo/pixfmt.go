package mediainfo

// Pixel format ids reported by engines that do not provide a name.
const (
	PixelFormatUnknown = -1
	PixelFormatYUV420P = 0
	PixelFormatNV12    = 1
	PixelFormatRGB24   = 2
	PixelFormatRGBA    = 3
	PixelFormatBGRA    = 4
	PixelFormatYUV422P = 5
	PixelFormatYUV444P = 6
	PixelFormatP010LE  = 7
)

var pixelFormatNames = map[int]string{
	PixelFormatYUV420P: "yuv420p",
	PixelFormatNV12:    "nv12",
	PixelFormatRGB24:   "rgb24",
	PixelFormatRGBA:    "rgba",
	PixelFormatBGRA:    "bgra",
	PixelFormatYUV422P: "yuv422p",
	PixelFormatYUV444P: "yuv444p",
	PixelFormatP010LE:  "p010le",
}

// PixelFormatName returns the name of a known pixel format id, or "unknown".
func PixelFormatName(id int) string {
	if name, ok := pixelFormatNames[id]; ok {
		return name
	}
	return "unknown"
}
