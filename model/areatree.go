package model

import (
	"fmt"

	"github.com/npillmayer/areatree/area"
)

// Model is the interface through which pages and off-document items enter
// an area tree.
type Model interface {
	StartPageSequence(ps *area.PageSequence) error
	AddPage(pv *area.PageViewport) error
	HandleOffDocumentItem(item area.OffDocumentItem) error
	EndDocument() error
}

// AreaTreeModel stores page sequences and their pages.
type AreaTreeModel struct {
	sequences []*area.PageSequence
	pageCount int
	items     []area.OffDocumentItem
}

var _ Model = (*AreaTreeModel)(nil)

// NewAreaTreeModel creates an empty model.
func NewAreaTreeModel() *AreaTreeModel {
	return &AreaTreeModel{}
}

// StartPageSequence opens a new page sequence, which becomes the current
// one.
func (m *AreaTreeModel) StartPageSequence(ps *area.PageSequence) error {
	assertThat(ps != nil, "page sequence may not be nil")
	m.sequences = append(m.sequences, ps)
	tracer().P("seq", len(m.sequences)).Debugf("page sequence started")
	return nil
}

// AddPage appends a page to the current page sequence and assigns its
// absolute index.
func (m *AreaTreeModel) AddPage(pv *area.PageViewport) error {
	ps := m.CurrentPageSequence()
	if ps == nil {
		return ErrNoPageSequence
	}
	pv.SetPageIndex(m.pageCount)
	ps.AddPage(pv)
	m.pageCount++
	pv.SetState(area.PageAdded)
	return nil
}

// HandleOffDocumentItem stores an off-document item.
func (m *AreaTreeModel) HandleOffDocumentItem(item area.OffDocumentItem) error {
	m.items = append(m.items, item)
	return nil
}

// OffDocumentItems returns the off-document items received.
func (m *AreaTreeModel) OffDocumentItems() []area.OffDocumentItem {
	return append([]area.OffDocumentItem(nil), m.items...)
}

// EndDocument finishes the document.
func (m *AreaTreeModel) EndDocument() error {
	return nil
}

// CurrentPageSequence returns the page sequence last started, or nil.
func (m *AreaTreeModel) CurrentPageSequence() *area.PageSequence {
	if len(m.sequences) == 0 {
		return nil
	}
	return m.sequences[len(m.sequences)-1]
}

// PageSequenceCount returns the number of page sequences.
func (m *AreaTreeModel) PageSequenceCount() int {
	return len(m.sequences)
}

// PageSequence returns page sequence seq, counted from 1, or nil.
func (m *AreaTreeModel) PageSequence(seq int) *area.PageSequence {
	if seq < 1 || seq > len(m.sequences) {
		return nil
	}
	return m.sequences[seq-1]
}

// TotalPageCount returns the number of pages of all sequences.
func (m *AreaTreeModel) TotalPageCount() int {
	return m.pageCount
}

// PageCount returns the number of pages of sequence seq, counted from 1.
func (m *AreaTreeModel) PageCount(seq int) int {
	if ps := m.PageSequence(seq); ps != nil {
		return ps.PageCount()
	}
	return 0
}

// Page returns page idx (counted from 0) of sequence seq (counted from 1),
// or nil.
func (m *AreaTreeModel) Page(seq, idx int) *area.PageViewport {
	if ps := m.PageSequence(seq); ps != nil {
		return ps.Page(idx)
	}
	return nil
}

// RetrieveMarkerByName is RetrieveMarker with retrieve position and
// boundary given by their property values, e.g. "last-ending-within-page"
// and "page-sequence".
func (m *AreaTreeModel) RetrieveMarkerByName(current *area.PageViewport, name, position, boundary string) (any, error) {
	pos, ok := area.ParseMarkerPosition(position)
	if !ok {
		return nil, fmt.Errorf("%w: retrieve-position=%q", ErrRetrieveProperty, position)
	}
	bound, ok := area.ParseMarkerBoundary(boundary)
	if !ok {
		return nil, fmt.Errorf("%w: retrieve-boundary=%q", ErrRetrieveProperty, boundary)
	}
	return m.RetrieveMarker(current, name, pos, bound), nil
}

// RetrieveMarker looks for a marker of class name. It first asks the
// current page for the marker at position pos. If the page has none and
// boundary permits, earlier pages of the current page sequence (or of the
// whole document) are searched backwards for the last marker ending on
// them.
func (m *AreaTreeModel) RetrieveMarker(current *area.PageViewport, name string,
	pos area.MarkerPosition, boundary area.MarkerBoundary) any {
	//
	if current != nil {
		if mark := current.Marker(name, pos); mark != nil {
			return mark
		}
	}
	if boundary == area.BoundaryPage {
		return nil
	}
	seq := len(m.sequences)
	for seq >= 1 {
		ps := m.sequences[seq-1]
		for i := ps.PageCount() - 1; i >= 0; i-- {
			pv := ps.Page(i)
			if pv == current {
				continue
			}
			if mark := pv.Marker(name, area.LastEndingWithinPage); mark != nil {
				return mark
			}
		}
		if boundary != area.BoundaryDocument {
			break
		}
		seq--
	}
	return nil
}
