package document

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"testing"
)

type fixtureImage struct {
	name       string
	width      int
	height     int
	colorSpace string
	filter     string // "", "FlateDecode", "DCTDecode"
	data       []byte // stream bytes as stored
}

func deflate(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// buildPDF assembles a single-page document with the given image XObjects,
// tracking byte offsets so the xref table is correct by construction.
func buildPDF(t *testing.T, withInfo bool, images ...fixtureImage) []byte {
	t.Helper()

	var buf bytes.Buffer
	offsets := make(map[int]int)

	writeObj := func(nr int, body string) {
		offsets[nr] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", nr, body)
	}
	writeStream := func(nr int, dict string, data []byte) {
		offsets[nr] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nstream\n", nr, dict)
		buf.Write(data)
		buf.WriteString("\nendstream\nendobj\n")
	}

	buf.WriteString("%PDF-1.4\n")

	const (
		objCatalog    = 1
		objPages      = 2
		objPage       = 3
		objContents   = 4
		objFirstImage = 5
	)

	var xobj bytes.Buffer
	for i, img := range images {
		fmt.Fprintf(&xobj, "/%s %d 0 R ", img.name, objFirstImage+i)
	}

	writeObj(objCatalog, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(objPages, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(objPage, fmt.Sprintf(
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /XObject << %s>> >> /Contents 4 0 R >>",
		xobj.String()))

	content := []byte("q Q")
	writeStream(objContents, fmt.Sprintf("<< /Length %d >>", len(content)), content)

	for i, img := range images {
		filter := ""
		if img.filter != "" {
			filter = fmt.Sprintf(" /Filter /%s", img.filter)
		}
		dict := fmt.Sprintf(
			"<< /Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /%s /BitsPerComponent 8%s /Length %d >>",
			img.width, img.height, img.colorSpace, filter, len(img.data))
		writeStream(objFirstImage+i, dict, img.data)
	}

	maxObj := objFirstImage + len(images) - 1
	trailerExtra := ""
	if withInfo {
		infoNr := maxObj + 1
		writeObj(infoNr, "<< /Title (fixture) /Producer (pdfslim test) >>")
		trailerExtra = fmt.Sprintf(" /Info %d 0 R", infoNr)
		maxObj = infoNr
	}

	xrefOff := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxObj+1)
	buf.WriteString("0000000000 65535 f \n")
	for nr := 1; nr <= maxObj; nr++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[nr])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R%s >>\nstartxref\n%d\n%%%%EOF\n",
		maxObj+1, trailerExtra, xrefOff)
	return buf.Bytes()
}

func gradientRGB(w, h int) []byte {
	pix := make([]byte, w*h*3)
	for i := range pix {
		pix[i] = byte(i / 192)
	}
	return pix
}

func openFixture(t *testing.T, pdf []byte) *Session {
	t.Helper()
	s, err := OpenReader(bytes.NewReader(pdf))
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	return s
}
