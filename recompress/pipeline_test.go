package recompress

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/pdfslim/pdfslim/imaging"
)

type stubHandle struct {
	width, height int
	colorSpace    imaging.ColorSpace
	filter        Filter
	data          []byte

	applied  int
	lastEnc  *Encoded
	applyErr error
}

func (h *stubHandle) Width() int                   { return h.width }
func (h *stubHandle) Height() int                  { return h.height }
func (h *stubHandle) ColorSpace() imaging.ColorSpace { return h.colorSpace }
func (h *stubHandle) Filter() Filter               { return h.filter }
func (h *stubHandle) ReadBytes() ([]byte, error)   { return h.data, nil }
func (h *stubHandle) MaterializedImage() (image.Image, error) {
	return nil, errors.New("no materialization in stub")
}
func (h *stubHandle) Apply(enc *Encoded) error {
	if h.applyErr != nil {
		return h.applyErr
	}
	h.applied++
	h.lastEnc = enc
	h.data = enc.Data
	h.width, h.height = enc.Width, enc.Height
	h.filter = FilterDCT
	if enc.Mode == imaging.Gray8 {
		h.colorSpace = imaging.DeviceGray
	} else {
		h.colorSpace = imaging.DeviceRGB
	}
	return nil
}

type sliceWalker struct {
	handles []Handle
	pos     int
}

func (w *sliceWalker) Next() (Handle, bool) {
	if w.pos >= len(w.handles) {
		return nil, false
	}
	h := w.handles[w.pos]
	w.pos++
	return h, true
}

func smoothRGB(w, h int) []byte {
	pix := make([]byte, w*h*3)
	for i := range pix {
		pix[i] = byte(i / 256)
	}
	return pix
}

func TestPipelineCommitsEligibleRGBImage(t *testing.T) {
	h := &stubHandle{
		width:      1200,
		height:     800,
		colorSpace: imaging.DeviceRGB,
		filter:     FilterFlate,
		data:       smoothRGB(1200, 800),
	}
	p := New(Config{ColorQuality: 45, GrayscaleQuality: 55})
	stats, err := p.Run(context.Background(), &sliceWalker{handles: []Handle{h}})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Committed != 1 {
		t.Fatalf("committed: %d, stats %+v", stats.Committed, stats)
	}
	if h.filter != FilterDCT {
		t.Errorf("filter after commit: %s", h.filter)
	}
	if h.colorSpace != imaging.DeviceRGB {
		t.Errorf("colorspace after commit: %s", h.colorSpace)
	}
	if h.width != 1200 || h.height != 800 {
		t.Errorf("dimensions changed: %dx%d", h.width, h.height)
	}
	if stats.BytesSaved <= 0 {
		t.Errorf("bytes saved: %d", stats.BytesSaved)
	}
}

func TestPipelineGrayscaleCap(t *testing.T) {
	h := &stubHandle{
		width:      2000,
		height:     2000,
		colorSpace: imaging.DeviceGray,
		filter:     FilterFlate,
		data:       make([]byte, 2000*2000),
	}
	p := New(Config{})
	if _, err := p.Run(context.Background(), &sliceWalker{handles: []Handle{h}}); err != nil {
		t.Fatal(err)
	}
	if h.applied != 1 {
		t.Fatalf("applied %d times", h.applied)
	}
	if h.width != 1500 || h.height != 1500 {
		t.Errorf("dimensions: %dx%d, want 1500x1500", h.width, h.height)
	}
	if h.colorSpace != imaging.DeviceGray {
		t.Errorf("grayscale committed as %s", h.colorSpace)
	}
	if h.lastEnc.Mode != imaging.Gray8 {
		t.Errorf("encoded mode: %s", h.lastEnc.Mode)
	}
}

func TestPipelineSkipsIneligibleFilters(t *testing.T) {
	handles := []Handle{
		&stubHandle{width: 10, height: 10, filter: FilterDCT, data: make([]byte, 300)},
		&stubHandle{width: 10, height: 10, filter: FilterNone, data: make([]byte, 300)},
		&stubHandle{width: 10, height: 10, filter: FilterOther, data: make([]byte, 300)},
	}
	p := New(Config{})
	stats, err := p.Run(context.Background(), &sliceWalker{handles: handles})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Skipped[SkipAlreadyTargetFilter] != 3 {
		t.Fatalf("stats: %+v", stats)
	}
	for i, h := range handles {
		if h.(*stubHandle).applied != 0 {
			t.Errorf("handle %d was mutated", i)
		}
	}
}

func TestPipelineExtractionFailureLeavesHandleUntouched(t *testing.T) {
	h := &stubHandle{
		width:      10,
		height:     10,
		colorSpace: imaging.DeviceRGB,
		filter:     FilterFlate,
		data:       make([]byte, 10), // short under every channel assumption
	}
	before := append([]byte(nil), h.data...)
	p := New(Config{})
	stats, err := p.Run(context.Background(), &sliceWalker{handles: []Handle{h}})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Skipped[SkipExtractionFailed] != 1 {
		t.Fatalf("stats: %+v", stats)
	}
	if h.applied != 0 || string(h.data) != string(before) {
		t.Error("handle mutated on extraction failure")
	}
}

func TestPipelineSkipsMarginalGain(t *testing.T) {
	// 8x8 grayscale: 64 raw bytes. Any JPEG stream carries more header than
	// that, so the evaluator must refuse the swap.
	h := &stubHandle{
		width:      8,
		height:     8,
		colorSpace: imaging.DeviceGray,
		filter:     FilterFlate,
		data:       make([]byte, 64),
	}
	p := New(Config{})
	stats, err := p.Run(context.Background(), &sliceWalker{handles: []Handle{h}})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Skipped[SkipBelowThreshold] != 1 {
		t.Fatalf("stats: %+v", stats)
	}
	if h.applied != 0 {
		t.Error("marginal gain was committed")
	}
}

func TestPipelineSecondPassIsNoop(t *testing.T) {
	h := &stubHandle{
		width:      300,
		height:     200,
		colorSpace: imaging.DeviceRGB,
		filter:     FilterFlate,
		data:       smoothRGB(300, 200),
	}
	p := New(Config{})
	if _, err := p.Run(context.Background(), &sliceWalker{handles: []Handle{h}}); err != nil {
		t.Fatal(err)
	}
	if h.applied != 1 {
		t.Fatalf("first pass applied %d times", h.applied)
	}

	stats, err := p.Run(context.Background(), &sliceWalker{handles: []Handle{h}})
	if err != nil {
		t.Fatal(err)
	}
	if h.applied != 1 {
		t.Errorf("second pass re-applied, total %d", h.applied)
	}
	if stats.Skipped[SkipAlreadyTargetFilter] != 1 {
		t.Errorf("second pass stats: %+v", stats)
	}
}

func TestPipelineHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := New(Config{})
	h := &stubHandle{width: 10, height: 10, filter: FilterFlate, data: make([]byte, 300)}
	stats, err := p.Run(ctx, &sliceWalker{handles: []Handle{h}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err: %v", err)
	}
	if stats.Seen != 0 || h.applied != 0 {
		t.Error("work performed after cancellation")
	}
}
