// Package recompress re-encodes raster images embedded in a PDF document with
// a lossy codec, replacing an object's stream only when the size gain is worth
// the quality cost.
package recompress

import (
	"fmt"

	"github.com/pdfslim/pdfslim/codec"
	"github.com/pdfslim/pdfslim/imaging"
)

// maxDimension is the hard cap on either output dimension. Larger images are
// downscaled before encoding.
const maxDimension = 1500

// Encoded is a committed-candidate replacement stream. Data length is always
// the measured post-encode length. Mode is Gray8 or RGB24, nothing else.
type Encoded struct {
	Data   []byte
	Width  int
	Height int
	Mode   imaging.Mode
}

// Recompress applies the encoding policy to a decoded image: cap dimensions at
// 1500, collapse the mode to grayscale or RGB, then encode. Grayscale keeps
// the higher grayscale quality because it tolerates it without a size penalty;
// everything else encodes at the color quality.
func Recompress(img *imaging.Image, colorQuality, grayQuality int) (*Encoded, error) {
	img = imaging.Resize(img, maxDimension)

	quality := colorQuality
	switch img.Mode {
	case imaging.Gray8:
		quality = grayQuality
	case imaging.CMYK32:
		img = imaging.CMYKToRGB(img)
	case imaging.RGBA32:
		img = imaging.FlattenAlpha(img)
	case imaging.RGB24:
	default:
		img = imaging.ToRGB(img)
	}

	data, err := codec.EncodeJPEG(img.Std(), quality, true)
	if err != nil {
		return nil, fmt.Errorf("recompress %dx%d %s: %w", img.Width, img.Height, img.Mode, err)
	}
	return &Encoded{Data: data, Width: img.Width, Height: img.Height, Mode: img.Mode}, nil
}
