package area

import (
	"fmt"
	"slices"

	"github.com/npillmayer/areatree/geom"
)

// PageState is the rendering state of a page viewport.
type PageState uint8

// Page states. Whether the content of a page is still in memory is
// orthogonal to its state, see PageViewport.IsCleared.
const (
	PageCreated  PageState = iota // built by layout, not yet added to the model
	PageAdded                     // added to the model, not yet decided upon
	PagePrepared                  // waiting for resolution (or for earlier pages)
	PageRendered                  // handed to the renderer
	PageSkipped                   // content lost, e.g. by a cache failure
)

var pageStateNames = [...]string{"created", "added", "prepared", "rendered", "skipped"}

func (s PageState) String() string {
	if int(s) < len(pageStateNames) {
		return pageStateNames[s]
	}
	return "?"
}

// PageViewport is the stable handle of a page for the life of an area
// tree. Its content (Page) may be cleared after rendering, or swapped out
// to a page cache, while the viewport keeps the id and marker bookkeeping.
//
// A page viewport is a Resolvable: it collects the unresolved id
// references of the areas on its page and hands resolutions down to them.
// Resolutions arriving while the content is swapped out are kept pending
// and applied when the content is attached again.
type PageViewport struct {
	key        string
	viewArea   geom.Rect
	clip       bool
	number     int
	formatted  string
	masterName string
	blank      bool
	index      int
	sequence   *PageSequence
	state      PageState
	page       *Page

	idFirsts   []string // ids whose first area is on this page
	unresolved map[string][]Resolvable
	idrefs     []string // keys of unresolved, in order of registration
	pending    map[string][]*PageViewport
	pendingIDs []string

	markers    markerMaps
	extensions []*ExtensionAttachment
}

// NewPageViewport creates a page viewport without content. key has to be
// unique within the area tree.
func NewPageViewport(key string, viewArea geom.Rect, number int, formatted string) *PageViewport {
	return &PageViewport{
		key:       key,
		viewArea:  viewArea,
		number:    number,
		formatted: formatted,
		index:     -1,
	}
}

func (pv *PageViewport) String() string {
	return fmt.Sprintf("PageViewport(%s #%s)", pv.key, pv.formatted)
}

// Key returns the unique key of the page viewport.
func (pv *PageViewport) Key() string { return pv.key }

// ViewArea returns the bounds of the page.
func (pv *PageViewport) ViewArea() geom.Rect { return pv.viewArea }

// Clip tells if content is clipped to the view area.
func (pv *PageViewport) Clip() bool { return pv.clip }

// SetClip sets the clipping flag.
func (pv *PageViewport) SetClip(clip bool) { pv.clip = clip }

// PageNumber returns the page number.
func (pv *PageViewport) PageNumber() int { return pv.number }

// PageNumberString returns the formatted page number.
func (pv *PageViewport) PageNumberString() string { return pv.formatted }

// MasterName returns the name of the page master the page was created from.
func (pv *PageViewport) MasterName() string { return pv.masterName }

// SetMasterName sets the name of the page master.
func (pv *PageViewport) SetMasterName(name string) { pv.masterName = name }

// IsBlank tells if the page has been inserted as a blank page.
func (pv *PageViewport) IsBlank() bool { return pv.blank }

// SetBlank sets the blank flag.
func (pv *PageViewport) SetBlank(blank bool) { pv.blank = blank }

// PageIndex returns the zero-based index of the page in the document, or
// -1 if the page has not been added to an area tree model.
func (pv *PageViewport) PageIndex() int { return pv.index }

// SetPageIndex sets the index of the page within the document. Once set,
// the index may not change.
func (pv *PageViewport) SetPageIndex(index int) {
	assertThat(pv.index < 0 || pv.index == index,
		"page %s already has index %d, cannot change to %d", pv.key, pv.index, index)
	pv.index = index
}

// PageSequence returns the page sequence the page belongs to, or nil.
func (pv *PageViewport) PageSequence() *PageSequence { return pv.sequence }

// State returns the rendering state of the page.
func (pv *PageViewport) State() PageState { return pv.state }

// SetState sets the rendering state of the page.
func (pv *PageViewport) SetState(s PageState) {
	tracer().P("page", pv.key).Debugf("state %s -> %s", pv.state, s)
	pv.state = s
}

// HasBeenRendered is true once the page has been handed to a renderer.
func (pv *PageViewport) HasBeenRendered() bool { return pv.state == PageRendered }

// --- Content ---------------------------------------------------------------

// Page returns the content of the page, or nil if cleared.
func (pv *PageViewport) Page() *Page { return pv.page }

// SetPage sets the content of the page.
func (pv *PageViewport) SetPage(p *Page) { pv.page = p }

// IsCleared is true if the content of the page is not in memory.
func (pv *PageViewport) IsCleared() bool { return pv.page == nil }

// Clear drops the content of the page. The viewport keeps its bookkeeping.
func (pv *PageViewport) Clear() {
	pv.page = nil
}

// DetachPage removes the content from the page viewport and returns it,
// e.g. to store it in a page cache.
func (pv *PageViewport) DetachPage() *Page {
	p := pv.page
	pv.page = nil
	return p
}

// AttachPage puts content (back) into the page viewport. The index of
// unresolved areas is rebuilt from the areas of p, then resolutions which
// arrived while the content was detached are applied.
func (pv *PageViewport) AttachPage(p *Page) {
	pv.page = p
	if p == nil {
		return
	}
	pv.rebuildUnresolvedIndex()
	pending, ids := pv.pending, pv.pendingIDs
	pv.pending, pv.pendingIDs = nil, nil
	for _, id := range ids {
		pv.resolveAreas(id, pending[id])
		delete(pv.unresolved, id)
	}
}

// --- IDs and resolution ----------------------------------------------------

// SetFirstWithID records that the first area with id is on this page.
func (pv *PageViewport) SetFirstWithID(id string) {
	if !slices.Contains(pv.idFirsts, id) {
		pv.idFirsts = append(pv.idFirsts, id)
	}
}

// IsFirstWithID is true if the first area with id is on this page.
func (pv *PageViewport) IsFirstWithID(id string) bool {
	return slices.Contains(pv.idFirsts, id)
}

// IDFirsts returns the ids whose first area is on this page.
func (pv *PageViewport) IDFirsts() []string {
	return slices.Clone(pv.idFirsts)
}

// AddUnresolvedIDRef registers an area (or other object) on this page
// waiting for id to be resolved. Registering the same object twice for an
// id has no effect.
func (pv *PageViewport) AddUnresolvedIDRef(id string, res Resolvable) {
	if pv.unresolved == nil {
		pv.unresolved = make(map[string][]Resolvable)
	}
	waiters, ok := pv.unresolved[id]
	if !ok {
		pv.idrefs = append(pv.idrefs, id)
	}
	if res != nil && !slices.Contains(waiters, res) {
		waiters = append(waiters, res)
	}
	pv.unresolved[id] = waiters
}

// RegisterResolvables walks the content of the page and registers every
// area which still has unresolved id references. It returns the ids newly
// referenced by the page.
func (pv *PageViewport) RegisterResolvables() []string {
	if pv.page == nil {
		return nil
	}
	var ids []string
	pv.page.Walk(func(a Area, depth int) error {
		res, ok := a.(Resolvable)
		if !ok || res.IsResolved() {
			return nil
		}
		for _, id := range res.IDRefs() {
			if _, known := pv.unresolved[id]; !known {
				ids = append(ids, id)
			}
			pv.AddUnresolvedIDRef(id, res)
		}
		return nil
	})
	return ids
}

// IDRefs returns the ids still referenced by unresolved areas of this page,
// in order of registration.
func (pv *PageViewport) IDRefs() []string {
	return slices.Clone(pv.idrefs)
}

// IsResolved is true if no area of the page waits for an id.
func (pv *PageViewport) IsResolved() bool {
	return len(pv.idrefs) == 0
}

// ResolveIDRef resolves id for all areas of this page waiting for it. If
// the content of the page is detached, the resolution is kept pending until
// the content is attached again. In both cases the id no longer counts as
// unresolved for the page. pages may be nil if id has not been found.
func (pv *PageViewport) ResolveIDRef(id string, pages []*PageViewport) {
	if pv.page == nil {
		if pv.pending == nil {
			pv.pending = make(map[string][]*PageViewport)
		}
		if _, ok := pv.pending[id]; !ok {
			pv.pendingIDs = append(pv.pendingIDs, id)
		}
		pv.pending[id] = pages
	} else {
		pv.resolveAreas(id, pages)
	}
	if _, ok := pv.unresolved[id]; ok {
		delete(pv.unresolved, id)
		pv.idrefs = slices.DeleteFunc(pv.idrefs, func(s string) bool { return s == id })
	}
}

func (pv *PageViewport) resolveAreas(id string, pages []*PageViewport) {
	for _, res := range pv.unresolved[id] {
		res.ResolveIDRef(id, pages)
	}
}

// HasPendingResolutions is true if resolutions wait for the content of the
// page to be attached.
func (pv *PageViewport) HasPendingResolutions() bool {
	return len(pv.pendingIDs) > 0
}

// rebuildUnresolvedIndex replaces the waiters of every unresolved id by the
// unresolved areas found in the current content.
func (pv *PageViewport) rebuildUnresolvedIndex() {
	ids := pv.idrefs
	pv.unresolved = make(map[string][]Resolvable, len(ids)+len(pv.pendingIDs))
	for _, id := range ids {
		pv.unresolved[id] = nil
	}
	// ids resolved while detached still have waiters in the new content
	for _, id := range pv.pendingIDs {
		pv.unresolved[id] = nil
	}
	pv.page.Walk(func(a Area, depth int) error {
		res, ok := a.(Resolvable)
		if !ok || res.IsResolved() {
			return nil
		}
		for _, id := range res.IDRefs() {
			if waiters, ok := pv.unresolved[id]; ok {
				pv.unresolved[id] = append(waiters, res)
			}
		}
		return nil
	})
}

// --- Markers ---------------------------------------------------------------

// MarkerPosition selects which marker of a class is retrieved from a page.
type MarkerPosition uint8

// Retrieve positions for markers.
const (
	FirstStartingWithinPage MarkerPosition = iota
	FirstIncludingCarryover
	LastStartingWithinPage
	LastEndingWithinPage
)

var markerPositionNames = [...]string{
	"first-starting-within-page",
	"first-including-carryover",
	"last-starting-within-page",
	"last-ending-within-page",
}

func (mp MarkerPosition) String() string {
	if int(mp) < len(markerPositionNames) {
		return markerPositionNames[mp]
	}
	return "?"
}

// ParseMarkerPosition finds a retrieve position from its name.
func ParseMarkerPosition(s string) (MarkerPosition, bool) {
	for i, n := range markerPositionNames {
		if n == s {
			return MarkerPosition(i), true
		}
	}
	return FirstStartingWithinPage, false
}

// MarkerBoundary restricts the pages searched for a marker.
type MarkerBoundary uint8

// Retrieve boundaries for markers.
const (
	BoundaryPage MarkerBoundary = iota
	BoundaryPageSequence
	BoundaryDocument
)

var markerBoundaryNames = [...]string{"page", "page-sequence", "document"}

func (mb MarkerBoundary) String() string {
	if int(mb) < len(markerBoundaryNames) {
		return markerBoundaryNames[mb]
	}
	return "?"
}

// ParseMarkerBoundary finds a retrieve boundary from its name.
func ParseMarkerBoundary(s string) (MarkerBoundary, bool) {
	for i, n := range markerBoundaryNames {
		if n == s {
			return MarkerBoundary(i), true
		}
	}
	return BoundaryPage, false
}

type markerMaps struct {
	firstStart map[string]any
	lastStart  map[string]any
	firstAny   map[string]any
	lastEnd    map[string]any
	lastAny    map[string]any
}

func putAll(m *map[string]any, marks map[string]any, replace bool) {
	if *m == nil {
		*m = make(map[string]any, len(marks))
	}
	for k, v := range marks {
		if _, ok := (*m)[k]; replace || !ok {
			(*m)[k] = v
		}
	}
}

// AddMarkers adds the markers of an area to the page. starting tells if
// the area starts on this page (or ends on it); isFirst tells if the area
// is the first (when starting) or the last (when ending) area generated by
// its formatting object. Only the markers needed for the retrieve positions
// are kept.
func (pv *PageViewport) AddMarkers(marks map[string]any, starting, isFirst bool) {
	m := &pv.markers
	if starting {
		if isFirst {
			putAll(&m.firstStart, marks, false)
			putAll(&m.firstAny, marks, false)
			putAll(&m.lastStart, marks, true)
		} else {
			putAll(&m.firstAny, marks, false)
		}
		return
	}
	if !isFirst {
		putAll(&m.lastEnd, marks, true)
	}
	putAll(&m.lastAny, marks, true)
}

// Marker retrieves a marker of a class from the page, or nil.
func (pv *PageViewport) Marker(name string, pos MarkerPosition) any {
	m := &pv.markers
	var mark any
	var ok bool
	switch pos {
	case FirstStartingWithinPage:
		if mark, ok = m.firstStart[name]; !ok {
			mark = m.firstAny[name]
		}
	case FirstIncludingCarryover:
		mark = m.firstAny[name]
	case LastStartingWithinPage:
		if mark, ok = m.lastStart[name]; !ok {
			mark = m.lastAny[name]
		}
	case LastEndingWithinPage:
		if mark, ok = m.lastEnd[name]; !ok {
			mark = m.lastAny[name]
		}
	}
	return mark
}

// --- Extension attachments -------------------------------------------------

// AddExtensionAttachment attaches foreign content to the page.
func (pv *PageViewport) AddExtensionAttachment(ext *ExtensionAttachment) {
	pv.extensions = append(pv.extensions, ext)
}

// ExtensionAttachments returns the foreign content attached to the page.
func (pv *PageViewport) ExtensionAttachments() []*ExtensionAttachment {
	return slices.Clone(pv.extensions)
}
