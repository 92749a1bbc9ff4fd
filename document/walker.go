package document

import (
	"fmt"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/pdfslim/pdfslim/recompress"
)

// ImageHandles collects the image XObjects reachable from one page's resource
// dictionary, in resource-name order.
func (s *Session) ImageHandles(pageNr int) ([]*ImageHandle, error) {
	pageDict, _, inhAttrs, err := s.ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, fmt.Errorf("document: page %d: %w", pageNr, err)
	}

	var res types.Dict
	if obj, found := pageDict.Find("Resources"); found {
		res, err = s.ctx.DereferenceDict(obj)
		if err != nil {
			return nil, fmt.Errorf("document: page %d resources: %w", pageNr, err)
		}
	} else if inhAttrs != nil {
		res = inhAttrs.Resources
	}
	if res == nil {
		return nil, nil
	}

	xObjObj, found := res.Find("XObject")
	if !found {
		return nil, nil
	}
	xObjs, err := s.ctx.DereferenceDict(xObjObj)
	if err != nil || xObjs == nil {
		return nil, nil
	}

	names := make([]string, 0, len(xObjs))
	for name := range xObjs {
		names = append(names, name)
	}
	sort.Strings(names)

	var handles []*ImageHandle
	for _, name := range names {
		indRef, ok := xObjs[name].(types.IndirectRef)
		if !ok {
			continue
		}
		resolved, err := s.ctx.Dereference(indRef)
		if err != nil {
			continue
		}
		sd, ok := resolved.(types.StreamDict)
		if !ok {
			continue
		}
		if st := sd.Subtype(); st == nil || *st != "Image" {
			continue
		}
		handles = append(handles, &ImageHandle{
			session: s,
			pageNr:  pageNr,
			name:    name,
			objNr:   indRef.ObjectNumber.Value(),
			genNr:   indRef.GenerationNumber.Value(),
			sd:      sd,
		})
	}
	return handles, nil
}

// Walker yields the document's image handles lazily, page by page in page
// order. A resource shared across pages is yielded once per referencing page;
// no cross-page deduplication happens here. The sequence is finite and
// non-restartable.
type Walker struct {
	session *Session
	pageNr  int
	queue   []*ImageHandle
}

// Walk starts a fresh traversal over the session's pages.
func (s *Session) Walk() *Walker {
	return &Walker{session: s}
}

func (w *Walker) Next() (recompress.Handle, bool) {
	for len(w.queue) == 0 {
		if w.pageNr >= w.session.PageCount() {
			return nil, false
		}
		w.pageNr++
		handles, err := w.session.ImageHandles(w.pageNr)
		if err != nil {
			// An unreadable page never aborts the walk.
			continue
		}
		w.queue = handles
	}
	h := w.queue[0]
	w.queue = w.queue[1:]
	return h, true
}
