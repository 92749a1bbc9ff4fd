// Package codec is the module's boundary to the lossy image codec. Encoding
// goes through jpegli, which produces smaller streams than the standard
// library encoder at equal quality.
package codec

import (
	"bytes"
	"fmt"
	"image"

	"github.com/gen2brain/jpegli"
)

// DefaultQuality mirrors the codec's own default.
const DefaultQuality = jpegli.DefaultQuality

// EncodeJPEG encodes img as baseline JPEG at the given quality (1-100).
// optimize enables entropy-coding optimization: no effect on pixels, strictly
// fewer output bytes. Grayscale input stays a one-component stream.
func EncodeJPEG(img image.Image, quality int, optimize bool) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("codec: nil image")
	}
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("codec: quality %d out of range 1-100", quality)
	}
	var buf bytes.Buffer
	err := jpegli.Encode(&buf, img, &jpegli.EncodingOptions{
		Quality:        quality,
		OptimizeCoding: optimize,
	})
	if err != nil {
		return nil, fmt.Errorf("codec: jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}
