package codec

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*img.Stride + x*4
			img.Pix[i] = byte(x * 4)
			img.Pix[i+1] = byte(y * 4)
			img.Pix[i+2] = byte((x + y) * 2)
			img.Pix[i+3] = 255
		}
	}
	return img
}

func TestEncodeJPEG(t *testing.T) {
	data, err := EncodeJPEG(testImage(64, 48), 60, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Fatalf("missing JPEG SOI marker: % x", data[:2])
	}
	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("dimensions: %v", b)
	}
}

func TestEncodeJPEGGrayscale(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range gray.Pix {
		gray.Pix[i] = byte(i)
	}
	data, err := EncodeJPEG(gray, 70, true)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if _, ok := decoded.(*image.Gray); !ok {
		t.Errorf("grayscale input produced %T", decoded)
	}
}

func TestEncodeJPEGQualityOrdering(t *testing.T) {
	img := testImage(128, 128)
	low, err := EncodeJPEG(img, 20, true)
	if err != nil {
		t.Fatal(err)
	}
	high, err := EncodeJPEG(img, 95, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(low) >= len(high) {
		t.Errorf("quality 20 (%d bytes) not smaller than quality 95 (%d bytes)", len(low), len(high))
	}
}

func TestEncodeJPEGRejectsBadInput(t *testing.T) {
	if _, err := EncodeJPEG(nil, 50, true); err == nil {
		t.Error("nil image accepted")
	}
	if _, err := EncodeJPEG(testImage(4, 4), 0, true); err == nil {
		t.Error("quality 0 accepted")
	}
	if _, err := EncodeJPEG(testImage(4, 4), 101, true); err == nil {
		t.Error("quality 101 accepted")
	}
}
