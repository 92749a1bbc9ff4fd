package document

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/klauspost/compress/zlib"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	_ "golang.org/x/image/tiff"

	"github.com/pdfslim/pdfslim/imaging"
	"github.com/pdfslim/pdfslim/recompress"
)

// ImageHandle is one image XObject in the document's object graph. All reads
// go through the model's dictionaries; the only mutation path is Apply.
type ImageHandle struct {
	session *Session
	pageNr  int
	name    string
	objNr   int
	genNr   int
	sd      types.StreamDict
	decoded []byte
}

// Page is the 1-based page the handle was discovered on.
func (h *ImageHandle) Page() int { return h.pageNr }

// Name is the resource name under the page's XObject dictionary.
func (h *ImageHandle) Name() string { return h.name }

// ObjectNumber identifies the underlying indirect object.
func (h *ImageHandle) ObjectNumber() int { return h.objNr }

func (h *ImageHandle) Width() int {
	if n := h.sd.IntEntry("Width"); n != nil {
		return *n
	}
	return 0
}

func (h *ImageHandle) Height() int {
	if n := h.sd.IntEntry("Height"); n != nil {
		return *n
	}
	return 0
}

// StreamBytes is the stored (still encoded) stream length.
func (h *ImageHandle) StreamBytes() int { return len(h.sd.Raw) }

func (h *ImageHandle) ColorSpace() imaging.ColorSpace {
	obj, found := h.sd.Find("ColorSpace")
	if !found {
		return imaging.ColorSpaceOther
	}
	resolved, err := h.session.ctx.Dereference(obj)
	if err != nil {
		return imaging.ColorSpaceOther
	}
	name, ok := resolved.(types.Name)
	if !ok {
		// Array forms (ICCBased, Indexed, Separation, ...) are out of the
		// enumerated tags; the extractor treats them as unknown.
		return imaging.ColorSpaceOther
	}
	switch string(name) {
	case "DeviceGray":
		return imaging.DeviceGray
	case "DeviceRGB":
		return imaging.DeviceRGB
	case "DeviceCMYK":
		return imaging.DeviceCMYK
	}
	return imaging.ColorSpaceOther
}

func (h *ImageHandle) Filter() recompress.Filter {
	obj, found := h.sd.Find("Filter")
	if !found {
		return recompress.FilterNone
	}
	resolved, err := h.session.ctx.Dereference(obj)
	if err != nil {
		return recompress.FilterOther
	}
	switch v := resolved.(type) {
	case types.Name:
		return filterForName(string(v))
	case types.Array:
		if len(v) == 1 {
			if n, ok := v[0].(types.Name); ok {
				return filterForName(string(n))
			}
		}
	}
	return recompress.FilterOther
}

func filterForName(name string) recompress.Filter {
	switch name {
	case "FlateDecode":
		return recompress.FilterFlate
	case "DCTDecode":
		return recompress.FilterDCT
	}
	return recompress.FilterOther
}

// FilterNames reports the declared filter chain verbatim, for inspection.
func (h *ImageHandle) FilterNames() string {
	obj, found := h.sd.Find("Filter")
	if !found {
		return ""
	}
	resolved, err := h.session.ctx.Dereference(obj)
	if err != nil {
		return ""
	}
	switch v := resolved.(type) {
	case types.Name:
		return string(v)
	case types.Array:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if n, ok := item.(types.Name); ok {
				parts = append(parts, string(n))
			}
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// ReadBytes returns the decoded stream content. If the model cannot decode
// the stream itself, a FlateDecode stream is inflated directly from the raw
// bytes.
func (h *ImageHandle) ReadBytes() ([]byte, error) {
	if h.decoded != nil {
		return h.decoded, nil
	}
	sd := h.sd
	if err := sd.Decode(); err == nil && len(sd.Content) > 0 {
		h.decoded = sd.Content
		return h.decoded, nil
	}
	if h.Filter() == recompress.FilterFlate {
		zr, err := zlib.NewReader(bytes.NewReader(h.sd.Raw))
		if err != nil {
			return nil, fmt.Errorf("document: inflate object %d: %w", h.objNr, err)
		}
		defer zr.Close()
		data, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("document: inflate object %d: %w", h.objNr, err)
		}
		h.decoded = data
		return h.decoded, nil
	}
	return h.sd.Raw, nil
}

// MaterializedImage asks the model to reconstruct the image, which covers
// indexed colorspaces, ICC profiles, and predictors the raw samples hide.
func (h *ImageHandle) MaterializedImage() (image.Image, error) {
	imgs, err := h.session.materializedPage(h.pageNr)
	if err != nil {
		return nil, fmt.Errorf("document: materialize page %d: %w", h.pageNr, err)
	}
	im, ok := imgs[h.objNr]
	if !ok {
		return nil, fmt.Errorf("document: object %d not materialized", h.objNr)
	}
	data, err := io.ReadAll(im)
	if err != nil {
		return nil, fmt.Errorf("document: materialize object %d: %w", h.objNr, err)
	}
	if len(data) == 0 {
		return nil, errors.New("document: empty materialization")
	}
	std, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("document: decode materialized object %d: %w", h.objNr, err)
	}
	return std, nil
}

// Apply installs the replacement stream onto the underlying object: bytes,
// filter tag, dimensions, bit depth, and colorspace tag together. Dimensions
// must never be left mismatched against the actual pixel data, so nothing is
// written until the xref entry is in hand.
func (h *ImageHandle) Apply(enc *recompress.Encoded) error {
	if enc == nil || len(enc.Data) == 0 {
		return errors.New("document: empty replacement stream")
	}
	entry, ok := h.session.ctx.FindTableEntry(h.objNr, h.genNr)
	if !ok {
		return fmt.Errorf("document: object %d %d not in xref", h.objNr, h.genNr)
	}

	sd := h.sd
	sd.Raw = append([]byte(nil), enc.Data...)
	sd.Content = nil
	length := int64(len(enc.Data))
	sd.StreamLength = &length
	sd.FilterPipeline = []types.PDFFilter{{Name: "DCTDecode"}}

	d := sd.Dict
	d["Filter"] = types.Name("DCTDecode")
	delete(d, "DecodeParms")
	d["Length"] = types.Integer(len(enc.Data))
	d["Width"] = types.Integer(enc.Width)
	d["Height"] = types.Integer(enc.Height)
	d["BitsPerComponent"] = types.Integer(8)
	if enc.Mode == imaging.Gray8 {
		d["ColorSpace"] = types.Name("DeviceGray")
	} else {
		d["ColorSpace"] = types.Name("DeviceRGB")
	}

	h.sd = sd
	h.decoded = nil
	entry.Object = sd
	return nil
}
