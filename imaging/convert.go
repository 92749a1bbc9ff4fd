package imaging

import "image/color"

// CMYKToRGB converts a CMYK32 buffer to RGB24 using the standard library's
// subtractive-to-additive conversion. Other modes are returned unchanged.
func CMYKToRGB(img *Image) *Image {
	if img.Mode != CMYK32 {
		return img
	}
	n := img.Width * img.Height
	pix := make([]byte, n*3)
	for p := 0; p < n; p++ {
		r, g, b := color.CMYKToRGB(img.Pix[p*4], img.Pix[p*4+1], img.Pix[p*4+2], img.Pix[p*4+3])
		pix[p*3] = r
		pix[p*3+1] = g
		pix[p*3+2] = b
	}
	return &Image{Pix: pix, Mode: RGB24, Width: img.Width, Height: img.Height}
}

// FlattenAlpha composites an RGBA32 buffer onto an opaque white background,
// producing RGB24. Other modes are returned unchanged.
func FlattenAlpha(img *Image) *Image {
	if img.Mode != RGBA32 {
		return img
	}
	n := img.Width * img.Height
	pix := make([]byte, n*3)
	for p := 0; p < n; p++ {
		a := uint32(img.Pix[p*4+3])
		for c := 0; c < 3; c++ {
			v := uint32(img.Pix[p*4+c])
			pix[p*3+c] = uint8((v*a + 255*(255-a) + 127) / 255)
		}
	}
	return &Image{Pix: pix, Mode: RGB24, Width: img.Width, Height: img.Height}
}

// ToRGB converts any mode to RGB24.
func ToRGB(img *Image) *Image {
	switch img.Mode {
	case RGB24:
		return img
	case CMYK32:
		return CMYKToRGB(img)
	case RGBA32:
		return FlattenAlpha(img)
	}
	n := img.Width * img.Height
	pix := make([]byte, n*3)
	for p := 0; p < n; p++ {
		v := img.Pix[p]
		pix[p*3] = v
		pix[p*3+1] = v
		pix[p*3+2] = v
	}
	return &Image{Pix: pix, Mode: RGB24, Width: img.Width, Height: img.Height}
}
