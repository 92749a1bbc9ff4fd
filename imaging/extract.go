package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Source is the read side of an image object handle. MaterializedImage is the
// host document model's own image reconstruction; it handles indexed
// colorspaces, ICC profiles, and predictors that the raw sample bytes do not
// reveal.
type Source interface {
	Width() int
	Height() int
	ColorSpace() ColorSpace
	ReadBytes() ([]byte, error)
	MaterializedImage() (image.Image, error)
}

// ErrExtraction marks the failure of every extraction strategy.
var ErrExtraction = errors.New("imaging: no extraction strategy produced a valid pixel buffer")

// ExtractionError reports what each strategy saw before giving up.
type ExtractionError struct {
	Width  int
	Height int
	Trail  []string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("imaging: extraction failed for %dx%d image: %s",
		e.Width, e.Height, strings.Join(e.Trail, "; "))
}

func (e *ExtractionError) Unwrap() error { return ErrExtraction }

// Extract decodes the source into a pixel buffer, trying successive
// strategies: the host model's materialization first, then a tightly packed
// reinterpretation of the raw samples under the declared colorspace, then an
// RGB reinterpretation as a last resort.
func Extract(src Source) (*Image, error) {
	w, h := src.Width(), src.Height()
	fail := &ExtractionError{Width: w, Height: h}
	if w <= 0 || h <= 0 {
		fail.Trail = append(fail.Trail, "non-positive dimensions")
		return nil, fail
	}

	if std, err := src.MaterializedImage(); err != nil {
		fail.Trail = append(fail.Trail, fmt.Sprintf("materialized: %v", err))
	} else if img, err := FromStdImage(std); err != nil {
		fail.Trail = append(fail.Trail, fmt.Sprintf("materialized: %v", err))
	} else {
		return img, nil
	}

	raw, err := src.ReadBytes()
	if err != nil {
		fail.Trail = append(fail.Trail, fmt.Sprintf("read bytes: %v", err))
		return nil, fail
	}

	mode := modeForColorSpace(src.ColorSpace())
	need := w * h * mode.Channels()
	if len(raw) >= need {
		return New(mode, w, h, raw[:need])
	}
	fail.Trail = append(fail.Trail, fmt.Sprintf("raw: %d bytes, %s needs %d", len(raw), mode, need))

	if mode != RGB24 {
		need = w * h * RGB24.Channels()
		if len(raw) >= need {
			return New(RGB24, w, h, raw[:need])
		}
		fail.Trail = append(fail.Trail, fmt.Sprintf("rgb fallback needs %d", need))
	}

	return nil, fail
}

// modeForColorSpace maps the declared colorspace tag onto a packed sample
// layout. An unknown tag is assumed to be 3-channel.
func modeForColorSpace(cs ColorSpace) Mode {
	switch cs {
	case DeviceGray:
		return Gray8
	case DeviceCMYK:
		return CMYK32
	default:
		return RGB24
	}
}

// FromStdImage repacks a standard library image into a tight buffer with a
// definite mode. Grayscale and CMYK inputs keep their mode; images carrying
// alpha become RGBA32 so the encoding policy can flatten them; everything else
// collapses to RGB24.
func FromStdImage(std image.Image) (*Image, error) {
	if std == nil {
		return nil, errors.New("nil image")
	}
	b := std.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty bounds %v", b)
	}

	switch v := std.(type) {
	case *image.Gray:
		pix := make([]byte, w*h)
		for y := 0; y < h; y++ {
			copy(pix[y*w:(y+1)*w], v.Pix[y*v.Stride:y*v.Stride+w])
		}
		return New(Gray8, w, h, pix)
	case *image.Gray16:
		pix := make([]byte, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				pix[y*w+x] = v.Pix[y*v.Stride+x*2]
			}
		}
		return New(Gray8, w, h, pix)
	case *image.CMYK:
		pix := make([]byte, w*h*4)
		for y := 0; y < h; y++ {
			copy(pix[y*w*4:(y+1)*w*4], v.Pix[y*v.Stride:y*v.Stride+w*4])
		}
		return New(CMYK32, w, h, pix)
	case *image.NRGBA:
		pix := make([]byte, w*h*4)
		for y := 0; y < h; y++ {
			copy(pix[y*w*4:(y+1)*w*4], v.Pix[y*v.Stride:y*v.Stride+w*4])
		}
		return New(RGBA32, w, h, pix)
	}

	// Generic path: sample through the color model, keeping alpha when any
	// pixel is not fully opaque.
	pix := make([]byte, w*h*4)
	opaque := true
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(std.At(x, y)).(color.NRGBA)
			pix[i] = c.R
			pix[i+1] = c.G
			pix[i+2] = c.B
			pix[i+3] = c.A
			if c.A != 0xff {
				opaque = false
			}
			i += 4
		}
	}
	if !opaque {
		return New(RGBA32, w, h, pix)
	}
	rgb := make([]byte, w*h*3)
	for p := 0; p < w*h; p++ {
		rgb[p*3] = pix[p*4]
		rgb[p*3+1] = pix[p*4+1]
		rgb[p*3+2] = pix[p*4+2]
	}
	return New(RGB24, w, h, rgb)
}
