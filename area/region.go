package area

import (
	"sync"

	"github.com/npillmayer/areatree/geom"
)

// RegionClass identifies one of the five regions of a page.
type RegionClass uint8

// Region classes.
const (
	RegionBefore RegionClass = iota
	RegionStart
	RegionBody
	RegionEnd
	RegionAfter
	regionCount
)

var regionNames = [regionCount]string{"before", "start", "body", "end", "after"}

// RegionClasses lists all region classes, in the order regions are
// externalized.
var RegionClasses = []RegionClass{RegionBefore, RegionStart, RegionBody, RegionEnd, RegionAfter}

func (rc RegionClass) String() string {
	if rc < regionCount {
		return regionNames[rc]
	}
	return "?"
}

// ParseRegionClass finds a region class from its name.
func ParseRegionClass(s string) (RegionClass, bool) {
	for i, n := range regionNames {
		if n == s {
			return RegionClass(i), true
		}
	}
	return RegionBody, false
}

// Region is implemented by region reference areas.
type Region interface {
	Area
	RegionClass() RegionClass
	RegionName() string
	CTM() geom.CTM
	SetCTM(geom.CTM)
}

// --- Region viewport -------------------------------------------------------

// RegionViewport is the clipping viewport of a page region.
type RegionViewport struct {
	*Base
	viewArea geom.Rect
	clip     bool
	mx       *sync.RWMutex // page-wide, set when added to a page
}

// NewRegionViewport creates a region viewport for a view area of the page.
func NewRegionViewport(viewArea geom.Rect) *RegionViewport {
	rv := &RegionViewport{Base: newBase(KindRegionViewport), viewArea: viewArea}
	rv.setSelf(rv)
	return rv
}

// ViewArea returns the area of the page covered by the viewport.
func (rv *RegionViewport) ViewArea() geom.Rect {
	if rv.mx != nil {
		rv.mx.RLock()
		defer rv.mx.RUnlock()
	}
	return rv.viewArea
}

// SetViewArea changes the area of the page covered by the viewport.
func (rv *RegionViewport) SetViewArea(r geom.Rect) {
	if rv.mx != nil {
		rv.mx.Lock()
		defer rv.mx.Unlock()
	}
	rv.viewArea = r
}

// Clip tells if content is clipped to the view area.
func (rv *RegionViewport) Clip() bool {
	if rv.mx != nil {
		rv.mx.RLock()
		defer rv.mx.RUnlock()
	}
	return rv.clip
}

// SetClip sets the clipping flag.
func (rv *RegionViewport) SetClip(clip bool) {
	if rv.mx != nil {
		rv.mx.Lock()
		defer rv.mx.Unlock()
	}
	rv.clip = clip
}

// RegionReference returns the region reference area, or nil.
func (rv *RegionViewport) RegionReference() Region {
	for _, ch := range rv.ChildAreas() {
		if r, ok := ch.(Region); ok {
			return r
		}
	}
	return nil
}

// SetRegionReference sets the region reference of this viewport. A region
// viewport holds exactly one region reference; setting a second one panics.
func (rv *RegionViewport) SetRegionReference(r Region) {
	rv.AddChildArea(r)
}

// --- Region references -----------------------------------------------------

// RegionReference is the reference area of the before, start, end and after
// regions. BodyRegion extends it for the body region.
type RegionReference struct {
	*Base
	regionClass RegionClass
	name        string
	ctm         geom.CTM
}

// NewRegionReference creates a region reference area for a region class
// and the name of the region.
func NewRegionReference(rc RegionClass, name string) *RegionReference {
	assertThat(rc != RegionBody, "use NewBodyRegion for the body region")
	r := &RegionReference{Base: newBase(KindRegionReference), regionClass: rc, name: name, ctm: geom.Identity}
	r.setSelf(r)
	return r
}

// RegionClass returns the class of the region.
func (r *RegionReference) RegionClass() RegionClass { return r.regionClass }

// RegionName returns the name of the region.
func (r *RegionReference) RegionName() string { return r.name }

// CTM returns the transformation from region to page coordinates.
func (r *RegionReference) CTM() geom.CTM { return r.ctm }

// SetCTM sets the transformation from region to page coordinates.
func (r *RegionReference) SetCTM(ctm geom.CTM) { r.ctm = ctm }

// AddBlock appends a block or block viewport.
func (r *RegionReference) AddBlock(b Area) {
	r.AddChildArea(b)
}

// IsEmpty is true if the region has no content.
func (r *RegionReference) IsEmpty() bool {
	return len(r.ChildAreas()) == 0
}

// --- Body region -----------------------------------------------------------

// Slots for the children of a body region.
const (
	slotBeforeFloat = iota
	slotMainReference
	slotFootnote
)

// BodyRegion is the region reference of the body region. It owns a main
// reference area and optional before-float and footnote areas.
type BodyRegion struct {
	*RegionReference
	columnCount int
	columnGap   int
}

// NewBodyRegion creates a body region with a number of columns, separated
// by a gap.
func NewBodyRegion(name string, columnCount, columnGap int) *BodyRegion {
	if columnCount < 1 {
		columnCount = 1
	}
	base := newBase(KindBodyRegion)
	r := &RegionReference{Base: base, regionClass: RegionBody, name: name, ctm: geom.Identity}
	br := &BodyRegion{RegionReference: r, columnCount: columnCount, columnGap: columnGap}
	base.setSelf(br)
	return br
}

// ColumnCount returns the number of columns.
func (br *BodyRegion) ColumnCount() int { return br.columnCount }

// ColumnGap returns the gap between columns, in millipoints.
func (br *BodyRegion) ColumnGap() int { return br.columnGap }

// AddChildArea places before-float, main reference and footnote areas in
// their slots. Each slot may be filled only once.
func (br *BodyRegion) AddChildArea(child Area) {
	if child == nil {
		return
	}
	var slot int
	switch child.Kind() {
	case KindBeforeFloat:
		slot = slotBeforeFloat
	case KindMainReference:
		slot = slotMainReference
	case KindFootnote:
		slot = slotFootnote
	default:
		assertThat(false, "%s may not contain %s", br.Kind(), child.Kind())
	}
	ch, ok := br.Node().Child(slot)
	assertThat(!ok || ch == nil, "%s already holds a %s", br.Kind(), child.Kind())
	assertThat(child.Parent() == nil, "%s is already attached to a parent", child.Kind())
	br.Node().SetChildAt(slot, child.Node())
}

func (br *BodyRegion) slot(i int) Area {
	if ch, ok := br.Node().Child(i); ok {
		return ch.Payload
	}
	return nil
}

// MainReference returns the main reference area, creating it if necessary.
func (br *BodyRegion) MainReference() *MainReference {
	if a := br.slot(slotMainReference); a != nil {
		return a.(*MainReference)
	}
	mr := NewMainReference(br.columnCount, br.columnGap, br.IPD())
	br.AddChildArea(mr)
	return mr
}

// BeforeFloat returns the before-float area, creating it if necessary.
func (br *BodyRegion) BeforeFloat() *BeforeFloat {
	if a := br.slot(slotBeforeFloat); a != nil {
		return a.(*BeforeFloat)
	}
	bf := NewBeforeFloat()
	br.AddChildArea(bf)
	return bf
}

// Footnote returns the footnote area, creating it if necessary.
func (br *BodyRegion) Footnote() *Footnote {
	if a := br.slot(slotFootnote); a != nil {
		return a.(*Footnote)
	}
	fn := NewFootnote()
	br.AddChildArea(fn)
	return fn
}

// HasBeforeFloat is true if a before-float area has been created.
func (br *BodyRegion) HasBeforeFloat() bool { return br.slot(slotBeforeFloat) != nil }

// HasFootnote is true if a footnote area has been created.
func (br *BodyRegion) HasFootnote() bool { return br.slot(slotFootnote) != nil }

// HasMainReference is true if a main reference area has been created.
func (br *BodyRegion) HasMainReference() bool { return br.slot(slotMainReference) != nil }

// IsEmpty is true if neither the main reference, before-floats nor
// footnotes carry content.
func (br *BodyRegion) IsEmpty() bool {
	for _, a := range br.ChildAreas() {
		switch x := a.(type) {
		case *MainReference:
			if !x.IsEmpty() {
				return false
			}
		default:
			if len(x.ChildAreas()) > 0 {
				return false
			}
		}
	}
	return true
}

// --- Main reference, spans, flows -------------------------------------------

// MainReference holds the spans of the body region.
type MainReference struct {
	*Base
	columnCount int
	columnGap   int
}

// NewMainReference creates a main reference for a body region with a given
// column setup and inline progression dimension.
func NewMainReference(columnCount, columnGap, ipd int) *MainReference {
	mr := &MainReference{Base: newBase(KindMainReference), columnCount: columnCount, columnGap: columnGap}
	mr.SetIPD(ipd)
	mr.setSelf(mr)
	return mr
}

// CreateSpan appends a new span. A span either spans all columns (and then
// has a single flow) or has a flow per column of the body region.
func (mr *MainReference) CreateSpan(spanAll bool) *Span {
	cols := mr.columnCount
	if spanAll || cols < 1 {
		cols = 1
	}
	sp := NewSpan(cols, mr.columnGap, mr.IPD())
	mr.AddChildArea(sp)
	return sp
}

// Spans returns the spans of the main reference.
func (mr *MainReference) Spans() []*Span {
	var spans []*Span
	for _, a := range mr.ChildAreas() {
		spans = append(spans, a.(*Span))
	}
	return spans
}

// CurrentSpan returns the last span, or nil.
func (mr *MainReference) CurrentSpan() *Span {
	spans := mr.Spans()
	if len(spans) == 0 {
		return nil
	}
	return spans[len(spans)-1]
}

// IsEmpty is true if no span carries content.
func (mr *MainReference) IsEmpty() bool {
	for _, sp := range mr.Spans() {
		if !sp.IsEmpty() {
			return false
		}
	}
	return true
}

// Span is a set of columns with a normal flow per column.
type Span struct {
	*Base
	columnCount int
	columnGap   int
	current     int
}

// NewSpan creates a span with a flow per column. The flows share the ipd
// of the span, minus the column gaps.
func NewSpan(columnCount, columnGap, ipd int) *Span {
	sp := &Span{Base: newBase(KindSpan), columnCount: columnCount, columnGap: columnGap}
	sp.SetIPD(ipd)
	sp.setSelf(sp)
	flowWidth := ipd
	if columnCount > 1 {
		flowWidth = (ipd - (columnCount-1)*columnGap) / columnCount
	}
	for i := 0; i < columnCount; i++ {
		f := NewNormalFlow()
		f.SetIPD(flowWidth)
		sp.AddChildArea(f)
	}
	return sp
}

// ColumnCount returns the number of columns of the span.
func (sp *Span) ColumnCount() int { return sp.columnCount }

// ColumnGap returns the gap between columns.
func (sp *Span) ColumnGap() int { return sp.columnGap }

// Flow returns the flow of column i, or nil.
func (sp *Span) Flow(i int) *NormalFlow {
	if n, ok := sp.Node().Child(i); ok {
		return n.Payload.(*NormalFlow)
	}
	return nil
}

// CurrentFlow returns the flow currently filled by layout.
func (sp *Span) CurrentFlow() *NormalFlow {
	return sp.Flow(sp.current)
}

// CurrentFlowIndex returns the column index of the current flow.
func (sp *Span) CurrentFlowIndex() int { return sp.current }

// HasMoreFlows is true if the current flow is not the last one.
func (sp *Span) HasMoreFlows() bool {
	return sp.current+1 < len(sp.ChildAreas())
}

// MoveToNextFlow advances to the next column and returns its flow.
func (sp *Span) MoveToNextFlow() *NormalFlow {
	assertThat(sp.HasMoreFlows(), "no more flows in span")
	sp.current++
	return sp.CurrentFlow()
}

// IsEmpty is true if no flow carries content.
func (sp *Span) IsEmpty() bool {
	for _, f := range sp.ChildAreas() {
		if len(f.ChildAreas()) > 0 {
			return false
		}
	}
	return true
}

// NormalFlow is the content of one column of a span.
type NormalFlow struct {
	*Base
}

// NewNormalFlow creates an empty normal flow.
func NewNormalFlow() *NormalFlow {
	f := &NormalFlow{Base: newBase(KindNormalFlow)}
	f.setSelf(f)
	return f
}

// AddBlock appends a block or block viewport.
func (f *NormalFlow) AddBlock(b Area) {
	f.AddChildArea(b)
	f.SetBPD(f.BPD() + b.AllocBPD())
}

// BeforeFloat holds before-floats of the body region.
type BeforeFloat struct {
	*Base
}

// NewBeforeFloat creates an empty before-float area.
func NewBeforeFloat() *BeforeFloat {
	bf := &BeforeFloat{Base: newBase(KindBeforeFloat)}
	bf.SetAreaClass(ClassBeforeFloat)
	bf.setSelf(bf)
	return bf
}

// Footnote holds the footnotes of the body region.
type Footnote struct {
	*Base
	separator Area
}

// NewFootnote creates an empty footnote area.
func NewFootnote() *Footnote {
	fn := &Footnote{Base: newBase(KindFootnote)}
	fn.SetAreaClass(ClassFootnote)
	fn.setSelf(fn)
	return fn
}

// SetSeparator sets the footnote separator block. It is not part of the
// children of the footnote area.
func (fn *Footnote) SetSeparator(sep Area) { fn.separator = sep }

// Separator returns the footnote separator block, or nil.
func (fn *Footnote) Separator() Area { return fn.separator }
