package imaging

import (
	"image"

	"golang.org/x/image/draw"
)

// Resize shrinks the image so that both dimensions are at most maxDim,
// preserving aspect ratio, using Catmull-Rom resampling. Images already within
// the bound are returned unchanged; Resize never enlarges.
func Resize(img *Image, maxDim int) *Image {
	if maxDim <= 0 || (img.Width <= maxDim && img.Height <= maxDim) {
		return img
	}
	scale := float64(maxDim) / float64(img.Width)
	if s := float64(maxDim) / float64(img.Height); s < scale {
		scale = s
	}
	nw := int(float64(img.Width)*scale + 0.5)
	nh := int(float64(img.Height)*scale + 0.5)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	if nw > maxDim {
		nw = maxDim
	}
	if nh > maxDim {
		nh = maxDim
	}

	rect := image.Rect(0, 0, nw, nh)
	src := img.Std()
	switch img.Mode {
	case Gray8:
		dst := image.NewGray(rect)
		draw.CatmullRom.Scale(dst, rect, src, src.Bounds(), draw.Src, nil)
		out, _ := FromStdImage(dst)
		return out
	case CMYK32:
		dst := image.NewCMYK(rect)
		draw.CatmullRom.Scale(dst, rect, src, src.Bounds(), draw.Src, nil)
		out, _ := FromStdImage(dst)
		return out
	case RGBA32:
		dst := image.NewNRGBA(rect)
		draw.CatmullRom.Scale(dst, rect, src, src.Bounds(), draw.Src, nil)
		pix := make([]byte, nw*nh*4)
		for y := 0; y < nh; y++ {
			copy(pix[y*nw*4:(y+1)*nw*4], dst.Pix[y*dst.Stride:y*dst.Stride+nw*4])
		}
		return &Image{Pix: pix, Mode: RGBA32, Width: nw, Height: nh}
	default:
		dst := image.NewNRGBA(rect)
		draw.CatmullRom.Scale(dst, rect, src, src.Bounds(), draw.Src, nil)
		pix := make([]byte, nw*nh*3)
		i := 0
		for y := 0; y < nh; y++ {
			row := dst.Pix[y*dst.Stride:]
			for x := 0; x < nw; x++ {
				pix[i] = row[x*4]
				pix[i+1] = row[x*4+1]
				pix[i+2] = row[x*4+2]
				i += 3
			}
		}
		return &Image{Pix: pix, Mode: RGB24, Width: nw, Height: nh}
	}
}
