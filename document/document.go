// Package document wraps the host PDF document model (pdfcpu) behind the
// narrow session and image-handle surface the recompression pipeline depends
// on. Parsing PDF bytes is entirely the model's job.
package document

import (
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// OpenError is fatal: the input could not be parsed as a PDF document.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string { return fmt.Sprintf("document: open %s: %v", e.Path, e.Err) }
func (e *OpenError) Unwrap() error { return e.Err }

// SaveError is fatal: mutations could not be persisted. No partial output is
// left behind by the model.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string { return fmt.Sprintf("document: save %s: %v", e.Path, e.Err) }
func (e *SaveError) Unwrap() error { return e.Err }

// Session is one open document. It is not safe for concurrent use; the
// pipeline processes handles strictly one at a time.
type Session struct {
	ctx          *model.Context
	materialized map[int]map[int]model.Image
}

// Open reads and validates the document at path.
func Open(path string) (*Session, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	return newSession(ctx, path)
}

// OpenReader reads a document from an in-memory or file-backed reader.
func OpenReader(rs io.ReadSeeker) (*Session, error) {
	ctx, err := api.ReadContext(rs, model.NewDefaultConfiguration())
	if err != nil {
		return nil, &OpenError{Path: "(reader)", Err: err}
	}
	return newSession(ctx, "(reader)")
}

func newSession(ctx *model.Context, path string) (*Session, error) {
	// Optimize consolidates the xref table so every object, including ones
	// packed into object streams, is addressable before we start mutating.
	if err := api.OptimizeContext(ctx); err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	return &Session{ctx: ctx, materialized: make(map[int]map[int]model.Image)}, nil
}

// Save persists all mutations to path in one step.
func (s *Session) Save(path string) error {
	if err := api.WriteContextFile(s.ctx, path); err != nil {
		return &SaveError{Path: path, Err: err}
	}
	return nil
}

// SaveTo writes the document to w.
func (s *Session) SaveTo(w io.Writer) error {
	if err := api.WriteContext(s.ctx, w); err != nil {
		return &SaveError{Path: "(writer)", Err: err}
	}
	return nil
}

// PageCount reports the number of pages in the document.
func (s *Session) PageCount() int { return s.ctx.PageCount }

// MetadataEntries counts the entries of the document's Info dictionary.
func (s *Session) MetadataEntries() int {
	if s.ctx.Info == nil {
		return 0
	}
	d, err := s.ctx.DereferenceDict(*s.ctx.Info)
	if err != nil {
		return 0
	}
	return len(d)
}

// HasXMP reports whether the catalog references an XMP metadata stream.
func (s *Session) HasXMP() bool {
	rootDict, err := s.ctx.Catalog()
	if err != nil {
		return false
	}
	_, found := rootDict.Find("Metadata")
	return found
}

// StripMetadata deletes the Info dictionary entries and the catalog's XMP
// stream reference.
func (s *Session) StripMetadata() {
	if s.ctx.Info != nil {
		if d, err := s.ctx.DereferenceDict(*s.ctx.Info); err == nil {
			for k := range d {
				delete(d, k)
			}
		}
		s.ctx.Info = nil
	}
	if rootDict, err := s.ctx.Catalog(); err == nil {
		delete(rootDict, "Metadata")
	}
}

// materializedPage runs the model's own image extraction for a page, once,
// and caches the result keyed by object number.
func (s *Session) materializedPage(pageNr int) (map[int]model.Image, error) {
	if m, ok := s.materialized[pageNr]; ok {
		return m, nil
	}
	m, err := pdfcpu.ExtractPageImages(s.ctx, pageNr, false)
	if err != nil {
		return nil, err
	}
	s.materialized[pageNr] = m
	return m, nil
}
