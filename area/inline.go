package area

import (
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/npillmayer/areatree/geom"
	"github.com/npillmayer/areatree/maybe"
	"github.com/npillmayer/areatree/trait"
)

// Inline is implemented by areas which may be children of line areas.
type Inline interface {
	Area
	Offset() int
	SetOffset(int)
	SetInlineAdjustment(stretch, shrink, adjustment int)
	InlineAdjustment() maybe.Maybe[InlineAdjustingInfo]
	// ApplyVariationFactor scales the adjustment of an inline area by the
	// variation factor of its line. It returns true if the area (or one of
	// its descendants) still has unresolved width.
	ApplyVariationFactor(factor float64, lineStretch, lineShrink int) bool
	// HandleIPDVariation changes the ipd of an inline area and propagates
	// the change to the enclosing inline areas and the line.
	HandleIPDVariation(delta int)
	inline() *InlineBase
}

// InlineAdjustingInfo holds the elasticity of an inline area.
type InlineAdjustingInfo struct {
	Stretch    int
	Shrink     int
	Adjustment int // current adjustment of the ipd
}

// applyVariationFactor scales the adjustment and returns the change of ipd.
// factor may include a balancing factor.
func (ai *InlineAdjustingInfo) applyVariationFactor(factor float64) int {
	old := ai.Adjustment
	ai.Adjustment = int(float64(ai.Adjustment) * factor)
	return ai.Adjustment - old
}

// InlineBase holds the properties common to inline areas.
type InlineBase struct {
	*Base
	offset          int // block progression offset from the before edge of the line
	adj             *InlineAdjustingInfo
	storedVariation int // variation reported while not attached to a parent
}

func newInlineBase(kind Kind) *InlineBase {
	return &InlineBase{Base: newBase(kind)}
}

func (ib *InlineBase) inline() *InlineBase { return ib }

// Offset returns the block progression offset of the area.
func (ib *InlineBase) Offset() int { return ib.offset }

// SetOffset sets the block progression offset of the area.
func (ib *InlineBase) SetOffset(o int) { ib.offset = o }

// SetInlineAdjustment sets the elasticity of the area.
func (ib *InlineBase) SetInlineAdjustment(stretch, shrink, adjustment int) {
	ib.adj = &InlineAdjustingInfo{Stretch: stretch, Shrink: shrink, Adjustment: adjustment}
}

// InlineAdjustment returns the elasticity of the area, if set.
func (ib *InlineBase) InlineAdjustment() maybe.Maybe[InlineAdjustingInfo] {
	if ib.adj == nil {
		return maybe.Nothing[InlineAdjustingInfo]()
	}
	return maybe.Just(*ib.adj)
}

// ApplyVariationFactor updates the ipd by the change of adjustment.
func (ib *InlineBase) ApplyVariationFactor(factor float64, lineStretch, lineShrink int) bool {
	if ib.adj != nil {
		ib.SetIPD(ib.IPD() + ib.adj.applyVariationFactor(factor))
	}
	return false
}

// HandleIPDVariation grows the ipd by delta and notifies the parent.
func (ib *InlineBase) HandleIPDVariation(delta int) {
	ib.SetIPD(ib.IPD() + delta)
	ib.notifyIPDVariation(delta)
}

func (ib *InlineBase) notifyIPDVariation(delta int) {
	switch p := ib.Parent().(type) {
	case *LineArea:
		p.HandleIPDVariation(delta)
	case Inline:
		p.HandleIPDVariation(delta)
	case nil:
		ib.storedVariation += delta
	}
}

func (ib *InlineBase) flushStoredVariation() {
	if v := ib.storedVariation; v != 0 {
		ib.storedVariation = 0
		ib.notifyIPDVariation(v)
	}
}

func inlineChildren(b *Base) []Inline {
	var inl []Inline
	for _, a := range b.ChildAreas() {
		if x, ok := a.(Inline); ok {
			inl = append(inl, x)
		}
	}
	return inl
}

// --- Inline parent ---------------------------------------------------------

// InlineParent is an inline area containing other inline areas. An inline
// parent may represent a basic link to an internal destination, which is
// resolved as soon as the page carrying the destination id is known.
type InlineParent struct {
	*InlineBase
	linkIDRef    string
	linkResolved bool
}

// NewInlineParent creates an empty inline parent.
func NewInlineParent() *InlineParent {
	ip := &InlineParent{InlineBase: newInlineBase(KindInlineParent)}
	ip.setSelf(ip)
	return ip
}

// NewBasicLink creates an inline parent linking to the area with id idref.
// The link is unresolved until ResolveIDRef is called for idref.
func NewBasicLink(idref string) *InlineParent {
	ip := NewInlineParent()
	ip.linkIDRef = idref
	return ip
}

// LinkIDRef returns the id the inline parent links to, if any.
func (ip *InlineParent) LinkIDRef() string { return ip.linkIDRef }

// AddInlineArea appends an inline child, growing the ipd by its allocation
// ipd and the bpd to fit the child.
func (ip *InlineParent) AddInlineArea(a Inline) {
	ip.AddChildArea(a)
	ip.SetIPD(ip.IPD() + a.AllocIPD())
	ip.SetBPD(max(ip.BPD(), a.AllocBPD()+a.Offset()))
}

// InlineAreas returns the inline children.
func (ip *InlineParent) InlineAreas() []Inline {
	return inlineChildren(ip.Base)
}

// ApplyVariationFactor applies the factor to all children and sets the ipd
// to the sum of the children's ipds.
func (ip *InlineParent) ApplyVariationFactor(factor float64, lineStretch, lineShrink int) bool {
	unresolved := false
	ipd := 0
	for _, a := range ip.InlineAreas() {
		if a.ApplyVariationFactor(factor, lineStretch, lineShrink) {
			unresolved = true
		}
		ipd += a.IPD()
	}
	ip.SetIPD(ipd)
	return unresolved
}

// IDRefs returns the link target id while the link is unresolved.
func (ip *InlineParent) IDRefs() []string {
	if ip.linkIDRef == "" || ip.linkResolved {
		return nil
	}
	return []string{ip.linkIDRef}
}

// ResolveIDRef sets the internal-link trait to the first page carrying id.
// Without pages the link is left dangling.
func (ip *InlineParent) ResolveIDRef(id string, pages []*PageViewport) {
	if ip.linkResolved || id != ip.linkIDRef {
		return
	}
	ip.linkResolved = true
	if len(pages) == 0 {
		tracer().P("id", id).Infof("link target not found")
		return
	}
	ip.AddTrait(trait.InternalLink, trait.InternalLinkValue{PageKey: pages[0].Key(), IDRef: id})
}

// IsResolved is true if the inline parent is not a link, or the link has
// been resolved.
func (ip *InlineParent) IsResolved() bool {
	return ip.linkIDRef == "" || ip.linkResolved
}

// MarkLinkResolved marks a link as resolved without changing its traits,
// e.g. when reading a resolved link from its external form.
func (ip *InlineParent) MarkLinkResolved() {
	ip.linkResolved = true
}

// InlineBlockParent is an inline area containing a single block.
type InlineBlockParent struct {
	*InlineBase
}

// NewInlineBlockParent creates an empty inline block parent.
func NewInlineBlockParent() *InlineBlockParent {
	ibp := &InlineBlockParent{InlineBase: newInlineBase(KindInlineBlockParent)}
	ibp.setSelf(ibp)
	return ibp
}

// SetBlock sets the child block and takes over its allocation extents.
func (ibp *InlineBlockParent) SetBlock(b Area) {
	ibp.AddChildArea(b)
	ibp.SetIPD(b.AllocIPD())
	ibp.SetBPD(b.AllocBPD())
}

// Block returns the child block, or nil.
func (ibp *InlineBlockParent) Block() Area {
	if ch := ibp.ChildAreas(); len(ch) > 0 {
		return ch[0]
	}
	return nil
}

// --- Text ------------------------------------------------------------------

// TextArea is a run of text, made of words and spaces.
type TextArea struct {
	*InlineBase
	baseline          int
	letterSpaceAdjust int
	wordSpaceAdjust   int
	spaceDifference   int // part of the word space adjustment not subject to variation
}

// NewTextArea creates an empty text area.
func NewTextArea() *TextArea {
	t := &TextArea{InlineBase: newInlineBase(KindText)}
	t.setSelf(t)
	return t
}

// Baseline returns the baseline offset of the text.
func (t *TextArea) Baseline() int { return t.baseline }

// SetBaseline sets the baseline offset of the text.
func (t *TextArea) SetBaseline(b int) { t.baseline = b }

// LetterSpaceAdjust returns the letter space adjustment.
func (t *TextArea) LetterSpaceAdjust() int { return t.letterSpaceAdjust }

// WordSpaceAdjust returns the word space adjustment.
func (t *TextArea) WordSpaceAdjust() int { return t.wordSpaceAdjust }

// SetSpaceAdjust sets letter and word space adjustments.
func (t *TextArea) SetSpaceAdjust(letter, word int) {
	t.letterSpaceAdjust, t.wordSpaceAdjust = letter, word
}

// SetSpaceDifference sets the part of the word space adjustment which
// stays fixed when the line is re-justified.
func (t *TextArea) SetSpaceDifference(d int) { t.spaceDifference = d }

// AddWord appends a word of a given width.
func (t *TextArea) AddWord(word string, ipd, offset int) *WordArea {
	w := NewWordArea(word)
	w.SetIPD(ipd)
	w.SetOffset(offset)
	t.AddChildArea(w)
	return w
}

// AddSpace appends a space of a given width.
func (t *TextArea) AddSpace(space string, ipd, offset int, adjustable bool) *SpaceArea {
	s := NewSpaceArea(space, adjustable)
	s.SetIPD(ipd)
	s.SetOffset(offset)
	t.AddChildArea(s)
	return s
}

// RemoveText removes all words and spaces.
func (t *TextArea) RemoveText() {
	for _, n := range t.Node().Children(true) {
		n.Isolate()
	}
}

// Text returns the concatenated text of words and spaces.
func (t *TextArea) Text() string {
	var b strings.Builder
	for _, a := range t.ChildAreas() {
		switch x := a.(type) {
		case *WordArea:
			b.WriteString(x.Word())
		case *SpaceArea:
			b.WriteString(x.Space())
		}
	}
	return b.String()
}

// ApplyVariationFactor scales word and letter space adjustments and the
// adjustment of the ipd by factor. A negative factor means the line
// switched between stretching and shrinking; the word space adjustment is
// then rebalanced by the ratio of the elasticity of the text to that of the
// line.
func (t *TextArea) ApplyVariationFactor(factor float64, lineStretch, lineShrink int) bool {
	if t.adj == nil {
		return false
	}
	balancing := 1.0
	if factor < 0 {
		balancing = balancingFactor(t.wordSpaceAdjust < 0, t.adj, lineStretch, lineShrink)
	}
	t.wordSpaceAdjust = int(float64(t.wordSpaceAdjust-t.spaceDifference)*factor*balancing) + t.spaceDifference
	t.letterSpaceAdjust = int(float64(t.letterSpaceAdjust) * factor)
	t.SetIPD(t.IPD() + t.adj.applyVariationFactor(factor*balancing))
	return false
}

// balancingFactor relates the elasticity of a text to the elasticity of its
// line when the line switches from shrinking to stretching (or back).
func balancingFactor(wasShrinking bool, adj *InlineAdjustingInfo, lineStretch, lineShrink int) float64 {
	if adj.Stretch == 0 || adj.Shrink == 0 || lineStretch == 0 || lineShrink == 0 {
		return 1.0
	}
	if wasShrinking {
		return float64(adj.Stretch) / float64(adj.Shrink) * float64(lineShrink) / float64(lineStretch)
	}
	return float64(adj.Shrink) / float64(adj.Stretch) * float64(lineStretch) / float64(lineShrink)
}

// WordArea is a word within a text area.
type WordArea struct {
	*InlineBase
	word string
}

// NewWordArea creates a word area.
func NewWordArea(word string) *WordArea {
	w := &WordArea{InlineBase: newInlineBase(KindWord), word: word}
	w.setSelf(w)
	return w
}

// Word returns the text of the word.
func (w *WordArea) Word() string { return w.word }

// SpaceArea is a space, either between words of a text area or as an inline
// area on its own.
type SpaceArea struct {
	*InlineBase
	space      string
	adjustable bool
}

// NewSpaceArea creates a space area.
func NewSpaceArea(space string, adjustable bool) *SpaceArea {
	s := &SpaceArea{InlineBase: newInlineBase(KindSpace), space: space, adjustable: adjustable}
	s.setSelf(s)
	return s
}

// Space returns the space characters.
func (s *SpaceArea) Space() string { return s.space }

// IsAdjustable tells if the space takes part in justification.
func (s *SpaceArea) IsAdjustable() bool { return s.adjustable }

// --- Page number citations -------------------------------------------------

// PageNumberCitation is a text area standing in for the page number of the
// first or last page carrying an id. Until resolved it shows a placeholder.
type PageNumberCitation struct {
	*TextArea
	idref    string
	last     bool
	resolved bool
	measure  func(string) int
}

// PlaceholderText is shown by unresolved page number citations.
const PlaceholderText = "?"

// NewPageNumberCitation creates a citation of the first (or, if last is set,
// the last) page carrying idref. placeholderIPD is the width of the
// placeholder text. measure, if non-nil, returns the width of a text in the
// font of the citation; otherwise widths are estimated from the placeholder.
func NewPageNumberCitation(idref string, last bool, placeholderIPD int, measure func(string) int) *PageNumberCitation {
	t := &TextArea{InlineBase: newInlineBase(KindPageNumberCitation)}
	c := &PageNumberCitation{TextArea: t, idref: idref, last: last, measure: measure}
	c.setSelf(c)
	c.AddWord(PlaceholderText, placeholderIPD, 0)
	c.SetIPD(placeholderIPD)
	return c
}

// IDRef returns the cited id.
func (c *PageNumberCitation) IDRef() string { return c.idref }

// CitesLastPage is true for citations of the last page carrying the id.
func (c *PageNumberCitation) CitesLastPage() bool { return c.last }

// IDRefs returns the cited id while the citation is unresolved.
func (c *PageNumberCitation) IDRefs() []string {
	if c.resolved {
		return nil
	}
	return []string{c.idref}
}

// IsResolved is true once ResolveIDRef has been called for the cited id.
func (c *PageNumberCitation) IsResolved() bool { return c.resolved }

// MarkResolved marks the citation as resolved, keeping its current text.
func (c *PageNumberCitation) MarkResolved() { c.resolved = true }

// ResolveIDRef replaces the placeholder by the formatted page number and
// reports the change of width to the line. Without pages the placeholder
// stays in place.
func (c *PageNumberCitation) ResolveIDRef(id string, pages []*PageViewport) {
	if c.resolved || id != c.idref {
		return
	}
	c.resolved = true
	if len(pages) == 0 {
		tracer().P("id", id).Infof("page number citation cannot be resolved")
		return
	}
	pv := pages[0]
	if c.last {
		pv = pages[len(pages)-1]
	}
	text := pv.PageNumberString()
	width := c.width(text)
	c.RemoveText()
	c.AddWord(text, width, 0)
	c.HandleIPDVariation(width - c.IPD())
}

func (c *PageNumberCitation) width(text string) int {
	if c.measure != nil {
		return c.measure(text)
	}
	n := utf8.RuneCountInString(PlaceholderText)
	return c.IPD() / n * utf8.RuneCountInString(text)
}

// ApplyVariationFactor reports unresolved width while the citation is
// unresolved.
func (c *PageNumberCitation) ApplyVariationFactor(factor float64, lineStretch, lineShrink int) bool {
	if !c.resolved {
		return true
	}
	return c.TextArea.ApplyVariationFactor(factor, lineStretch, lineShrink)
}

// --- Leaders and viewports -------------------------------------------------

// Leader is a rule or space filling inline area.
type Leader struct {
	*InlineBase
	ruleStyle     string
	ruleThickness int
}

// NewLeader creates a leader with a rule style ("solid", "dotted", …, or
// "none") and thickness.
func NewLeader(ruleStyle string, ruleThickness int) *Leader {
	l := &Leader{InlineBase: newInlineBase(KindLeader), ruleStyle: ruleStyle, ruleThickness: ruleThickness}
	l.setSelf(l)
	return l
}

// RuleStyle returns the rule style.
func (l *Leader) RuleStyle() string { return l.ruleStyle }

// RuleThickness returns the thickness of the rule.
func (l *Leader) RuleThickness() int { return l.ruleThickness }

// Viewport is an inline viewport for an image or a foreign object.
type Viewport struct {
	*InlineBase
	contentPosition geom.FRect
	clip            bool
}

// NewViewport creates a viewport for a content area (an Image or a
// ForeignObject).
func NewViewport(content Area) *Viewport {
	v := &Viewport{InlineBase: newInlineBase(KindViewport)}
	v.setSelf(v)
	v.AddChildArea(content)
	return v
}

// Content returns the image or foreign object shown by the viewport.
func (v *Viewport) Content() Area {
	if ch := v.ChildAreas(); len(ch) > 0 {
		return ch[0]
	}
	return nil
}

// ContentPosition returns the position and size of the content.
func (v *Viewport) ContentPosition() geom.FRect { return v.contentPosition }

// SetContentPosition sets the position and size of the content.
func (v *Viewport) SetContentPosition(r geom.FRect) { v.contentPosition = r }

// Clip tells if the content is clipped to the viewport.
func (v *Viewport) Clip() bool { return v.clip }

// SetClip sets the clipping flag.
func (v *Viewport) SetClip(clip bool) { v.clip = clip }

// Image is an external graphic, referenced by URL.
type Image struct {
	*Base
	url string
}

// NewImage creates an image area.
func NewImage(url string) *Image {
	img := &Image{Base: newBase(KindImage), url: url}
	img.setSelf(img)
	return img
}

// URL returns the location of the image.
func (img *Image) URL() string { return img.url }

// ForeignObject is an instream object of a foreign XML vocabulary, such as
// SVG or MathML.
type ForeignObject struct {
	*Base
	namespace string
	doc       *etree.Element
}

// NewForeignObject creates a foreign object from the root element of the
// foreign document. The element is copied.
func NewForeignObject(namespace string, root *etree.Element) *ForeignObject {
	fo := &ForeignObject{Base: newBase(KindForeignObject), namespace: namespace}
	if root != nil {
		fo.doc = root.Copy()
	}
	fo.setSelf(fo)
	return fo
}

// Namespace returns the namespace URI of the foreign vocabulary.
func (fo *ForeignObject) Namespace() string { return fo.namespace }

// Element returns the root element of the foreign document.
func (fo *ForeignObject) Element() *etree.Element { return fo.doc }
