package imaging

import (
	"fmt"
	"image"
	"image/color"
)

// Mode identifies the channel layout of a decoded pixel buffer.
type Mode int

const (
	Gray8 Mode = iota
	RGB24
	RGBA32
	CMYK32
)

// Channels returns the number of bytes per pixel for the mode.
func (m Mode) Channels() int {
	switch m {
	case Gray8:
		return 1
	case RGB24:
		return 3
	case RGBA32, CMYK32:
		return 4
	}
	return 0
}

func (m Mode) String() string {
	switch m {
	case Gray8:
		return "Gray8"
	case RGB24:
		return "RGB24"
	case RGBA32:
		return "RGBA32"
	case CMYK32:
		return "CMYK32"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ColorSpace is the colorspace tag an image object declares for its samples.
type ColorSpace int

const (
	ColorSpaceOther ColorSpace = iota
	DeviceGray
	DeviceRGB
	DeviceCMYK
)

func (cs ColorSpace) String() string {
	switch cs {
	case DeviceGray:
		return "DeviceGray"
	case DeviceRGB:
		return "DeviceRGB"
	case DeviceCMYK:
		return "DeviceCMYK"
	}
	return "Other"
}

// Image is a decoded, tightly packed pixel buffer with a definite mode.
// len(Pix) == Width*Height*Mode.Channels() always holds.
type Image struct {
	Pix    []byte
	Mode   Mode
	Width  int
	Height int
}

// New wraps pix as an Image, enforcing the buffer-length invariant.
func New(mode Mode, width, height int, pix []byte) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("imaging: invalid dimensions %dx%d", width, height)
	}
	want := width * height * mode.Channels()
	if len(pix) != want {
		return nil, fmt.Errorf("imaging: buffer length %d does not match %dx%d %s (want %d)",
			len(pix), width, height, mode, want)
	}
	return &Image{Pix: pix, Mode: mode, Width: width, Height: height}, nil
}

// Std exposes the buffer as a standard library image for encoding and resampling.
func (img *Image) Std() image.Image {
	rect := image.Rect(0, 0, img.Width, img.Height)
	switch img.Mode {
	case Gray8:
		return &image.Gray{Pix: img.Pix, Stride: img.Width, Rect: rect}
	case RGBA32:
		return &image.NRGBA{Pix: img.Pix, Stride: img.Width * 4, Rect: rect}
	case CMYK32:
		return &image.CMYK{Pix: img.Pix, Stride: img.Width * 4, Rect: rect}
	default:
		return &rgbImage{Pix: img.Pix, Stride: img.Width * 3, Rect: rect}
	}
}

// rgbImage adapts a packed 3-byte-per-pixel buffer to image.Image.
type rgbImage struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

func (p *rgbImage) ColorModel() color.Model { return color.RGBAModel }
func (p *rgbImage) Bounds() image.Rectangle { return p.Rect }
func (p *rgbImage) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
	return color.RGBA{R: p.Pix[i], G: p.Pix[i+1], B: p.Pix[i+2], A: 255}
}
