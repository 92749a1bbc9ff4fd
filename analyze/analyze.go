// Package analyze inspects a document and explains its compression potential:
// which images it carries, how they are stored, and whether the recompression
// pipeline is likely to help.
package analyze

import (
	"fmt"

	"github.com/pdfslim/pdfslim/document"
	"github.com/pdfslim/pdfslim/recompress"
)

// ImageInfo describes one embedded image as found on a page.
type ImageInfo struct {
	Page        int
	Name        string
	Width       int
	Height      int
	Filter      string
	StreamBytes int
	Eligible    bool
}

// Report is the full inspection result for one document.
type Report struct {
	Pages           int
	MetadataEntries int
	HasXMP          bool

	Images     []ImageInfo
	ImageBytes int64
	AlreadyDCT int
	Eligible   int

	Notes []string
}

// Analyze walks every page and builds an image inventory plus a plain-language
// diagnosis. Pages that cannot be read are skipped, matching the pipeline's
// walker behavior.
func Analyze(s *document.Session) (*Report, error) {
	if s == nil {
		return nil, fmt.Errorf("analyze: nil session")
	}

	r := &Report{
		Pages:           s.PageCount(),
		MetadataEntries: s.MetadataEntries(),
		HasXMP:          s.HasXMP(),
	}

	for pageNr := 1; pageNr <= r.Pages; pageNr++ {
		handles, err := s.ImageHandles(pageNr)
		if err != nil {
			continue
		}
		for _, h := range handles {
			eligible := h.Filter() == recompress.FilterFlate
			if eligible {
				r.Eligible++
			}
			if h.Filter() == recompress.FilterDCT {
				r.AlreadyDCT++
			}
			r.ImageBytes += int64(h.StreamBytes())
			r.Images = append(r.Images, ImageInfo{
				Page:        pageNr,
				Name:        h.Name(),
				Width:       h.Width(),
				Height:      h.Height(),
				Filter:      h.FilterNames(),
				StreamBytes: h.StreamBytes(),
				Eligible:    eligible,
			})
		}
	}

	r.Notes = diagnose(r)
	return r, nil
}

func diagnose(r *Report) []string {
	var notes []string

	total := len(r.Images)
	if total == 0 {
		notes = append(notes, "no embedded images found; this looks like a text-only document with little to recompress")
		if r.MetadataEntries > 0 || r.HasXMP {
			notes = append(notes, "stripping metadata is the only remaining saving")
		}
		return notes
	}

	if r.AlreadyDCT == total {
		notes = append(notes, "every image is already JPEG compressed; minimal gains are possible")
	} else if float64(r.AlreadyDCT) > 0.8*float64(total) {
		notes = append(notes, fmt.Sprintf("most images (%d of %d) are already JPEG compressed", r.AlreadyDCT, total))
	}

	if r.Eligible > 0 {
		notes = append(notes, fmt.Sprintf("%d of %d images are stored as raw deflate streams and are candidates for recompression", r.Eligible, total))
	} else {
		notes = append(notes, "no images are stored as raw deflate streams; the recompression pipeline will not change this document")
	}

	if r.MetadataEntries > 0 {
		notes = append(notes, fmt.Sprintf("document carries %d metadata entries that can be stripped", r.MetadataEntries))
	}
	if r.HasXMP {
		notes = append(notes, "XMP metadata stream present")
	}

	return notes
}
