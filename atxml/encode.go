package atxml

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/npillmayer/areatree/area"
	"github.com/npillmayer/areatree/trait"
	"golang.org/x/text/language"
)

// Element names other than area kinds.
const (
	elAreaTree     = "areaTree"
	elPageSequence = "pageSequence"
	elTitle        = "title"
	elPageViewport = "pageViewport"
	elPage         = "page"
	elSeparator    = "separator"
	elBookmarkTree = "bookmarkTree"
	elBookmark     = "bookmark"
	elDestination  = "destination"
	elExtension    = "extensionAttachment"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// regionElement returns the element name of region references of class rc.
func regionElement(rc area.RegionClass) string {
	s := rc.String()
	return "region" + strings.ToUpper(s[:1]) + s[1:]
}

func elementName(a area.Area) string {
	if r, ok := a.(area.Region); ok {
		return regionElement(r.RegionClass())
	}
	return a.Kind().String()
}

var (
	boxTraits    = trait.SubsetCommon.Union(trait.SubsetBox).Union(trait.SubsetColor)
	inlineTraits = boxTraits.Union(trait.SubsetFont)
)

// traitSubsets holds the traits written and read per kind of area. Traits
// of an area outside its subset are not part of the intermediate format.
var traitSubsets = map[area.Kind]trait.Set{
	area.KindRegionViewport:     boxTraits,
	area.KindRegionReference:    boxTraits,
	area.KindBodyRegion:         boxTraits,
	area.KindMainReference:      trait.SubsetCommon,
	area.KindSpan:               trait.SubsetCommon,
	area.KindNormalFlow:         trait.SubsetCommon,
	area.KindBeforeFloat:        trait.SubsetCommon,
	area.KindFootnote:           trait.SubsetCommon,
	area.KindBlock:              boxTraits,
	area.KindBlockViewport:      boxTraits,
	area.KindLineArea:           boxTraits,
	area.KindInlineParent:       inlineTraits.Union(trait.SubsetLink),
	area.KindInlineBlockParent:  trait.SubsetCommon.Union(trait.SubsetBox),
	area.KindText:               inlineTraits,
	area.KindWord:               trait.SubsetCommon,
	area.KindSpace:              trait.SubsetCommon,
	area.KindLeader:             inlineTraits,
	area.KindPageNumberCitation: inlineTraits,
	area.KindViewport:           boxTraits,
	area.KindImage:              trait.SubsetCommon,
	area.KindForeignObject:      trait.SubsetCommon,
}

// EncodePage writes the content of a page viewport as a document with root
// element "page". The bookkeeping of the page viewport (key, number,
// unresolved ids) is not written.
func EncodePage(w io.Writer, pv *area.PageViewport) error {
	p := pv.Page()
	if p == nil {
		return fmt.Errorf("%w: %s", ErrNoContent, pv.Key())
	}
	doc := etree.NewDocument()
	doc.SetRoot(pageElement(p))
	_, err := doc.WriteTo(w)
	return err
}

func pageViewportElement(pv *area.PageViewport) *etree.Element {
	el := etree.NewElement(elPageViewport)
	el.CreateAttr("key", pv.Key())
	el.CreateAttr("bounds", pv.ViewArea().String())
	el.CreateAttr("nr", strconv.Itoa(pv.PageNumber()))
	el.CreateAttr("formatted-nr", pv.PageNumberString())
	if name := pv.MasterName(); name != "" {
		el.CreateAttr("simple-page-master-name", name)
	}
	setBool(el, "blank", pv.IsBlank())
	setBool(el, "clip", pv.Clip())
	if p := pv.Page(); p != nil {
		el.AddChild(pageElement(p))
	}
	for _, ext := range pv.ExtensionAttachments() {
		el.AddChild(extensionElement(ext))
	}
	return el
}

func pageElement(p *area.Page) *etree.Element {
	el := etree.NewElement(elPage)
	for _, rc := range area.RegionClasses {
		if rv := p.RegionViewport(rc); rv != nil {
			writeArea(el, rv)
		}
	}
	return el
}

func pageSequenceElement(ps *area.PageSequence) *etree.Element {
	el := etree.NewElement(elPageSequence)
	if lang := ps.Language(); lang != language.Und {
		el.CreateAttr("xml:lang", lang.String())
	}
	if title := ps.Title(); title != nil {
		writeArea(el.CreateElement(elTitle), title)
	}
	return el
}

// writeArea appends the element for a and its descendants to parent.
func writeArea(parent *etree.Element, a area.Area) {
	el := parent.CreateElement(elementName(a))
	el.CreateAttr("ipd", strconv.Itoa(a.IPD()))
	el.CreateAttr("bpd", strconv.Itoa(a.BPD()))
	if c := a.AreaClass(); c != area.ClassNormal {
		el.CreateAttr("area-class", c.String())
	}
	if level, ok := a.BidiLevel().Value(); ok {
		el.CreateAttr("bidi-level", strconv.Itoa(level))
	}
	if in, ok := a.(area.Inline); ok {
		setInt(el, "offset", in.Offset())
		if adj, ok := in.InlineAdjustment().Value(); ok {
			el.CreateAttr("adj-stretch", strconv.Itoa(adj.Stretch))
			el.CreateAttr("adj-shrink", strconv.Itoa(adj.Shrink))
			el.CreateAttr("adj-amount", strconv.Itoa(adj.Adjustment))
		}
	}
	writeKindAttrs(el, a)
	subset := traitSubsets[a.Kind()]
	for _, c := range a.Traits().Codes() {
		if !subset.Contains(c) {
			tracer().Infof("trait %s not written for %s", c, a.Kind())
			continue
		}
		v, _ := a.Trait(c)
		el.CreateAttr(c.Name(), trait.Format(c, v))
	}
	writeForeignAttrs(el, a.ForeignAttributes())
	if fn, ok := a.(*area.Footnote); ok && fn.Separator() != nil {
		writeArea(el.CreateElement(elSeparator), fn.Separator())
	}
	for _, ch := range a.ChildAreas() {
		writeArea(el, ch)
	}
}

func writeKindAttrs(el *etree.Element, a area.Area) {
	switch x := a.(type) {
	case *area.RegionViewport:
		el.CreateAttr("rect", x.ViewArea().String())
		setBool(el, "clip", x.Clip())
	case *area.RegionReference:
		writeRegionAttrs(el, x)
	case *area.BodyRegion:
		writeRegionAttrs(el, x.RegionReference)
		el.CreateAttr("columnCount", strconv.Itoa(x.ColumnCount()))
		el.CreateAttr("columnGap", strconv.Itoa(x.ColumnGap()))
	case *area.Span:
		el.CreateAttr("columnCount", strconv.Itoa(x.ColumnCount()))
		el.CreateAttr("columnGap", strconv.Itoa(x.ColumnGap()))
	case *area.Block:
		writeBlockAttrs(el, x)
	case *area.BlockViewport:
		writeBlockAttrs(el, x.Block)
		el.CreateAttr("ctm", x.CTM().String())
		setBool(el, "clip", x.Clip())
	case *area.LineArea:
		if adj, ok := x.Adjusting().Value(); ok {
			el.CreateAttr("align", adj.Alignment.String())
			el.CreateAttr("adj-diff", strconv.Itoa(adj.Difference))
			el.CreateAttr("adj-stretch", strconv.Itoa(adj.Stretch))
			el.CreateAttr("adj-shrink", strconv.Itoa(adj.Shrink))
			el.CreateAttr("adj-factor", strconv.FormatFloat(adj.VariationFactor, 'g', -1, 64))
			setBool(el, "adj-finished", adj.AddedToAreaTree)
		}
	case *area.InlineParent:
		if id := x.LinkIDRef(); id != "" {
			el.CreateAttr("idref", id)
			setBool(el, "unresolved", !x.IsResolved())
		}
	case *area.TextArea:
		writeTextAttrs(el, x)
	case *area.PageNumberCitation:
		writeTextAttrs(el, x.TextArea)
		el.CreateAttr("idref", x.IDRef())
		setBool(el, "last", x.CitesLastPage())
		setBool(el, "unresolved", !x.IsResolved())
	case *area.WordArea:
		el.SetText(x.Word())
	case *area.SpaceArea:
		// whitespace-only text would not survive indentation
		el.CreateAttr("value", x.Space())
		setBool(el, "adjustable", x.IsAdjustable())
	case *area.Leader:
		el.CreateAttr("ruleStyle", x.RuleStyle())
		el.CreateAttr("ruleThickness", strconv.Itoa(x.RuleThickness()))
	case *area.Viewport:
		el.CreateAttr("pos", x.ContentPosition().String())
		setBool(el, "clip", x.Clip())
	case *area.Image:
		el.CreateAttr("url", x.URL())
	case *area.ForeignObject:
		el.CreateAttr("ns", x.Namespace())
		if root := x.Element(); root != nil {
			el.AddChild(foreignCopy(root, x.Namespace()))
		}
	}
}

func writeRegionAttrs(el *etree.Element, r *area.RegionReference) {
	if name := r.RegionName(); name != "" {
		el.CreateAttr("name", name)
	}
	el.CreateAttr("ctm", r.CTM().String())
}

func writeBlockAttrs(el *etree.Element, b *area.Block) {
	if p := b.Positioning(); p != area.Stack {
		el.CreateAttr("positioning", p.String())
		el.CreateAttr("left", strconv.Itoa(b.XOffset()))
		el.CreateAttr("top", strconv.Itoa(b.YOffset()))
	}
}

func writeTextAttrs(el *etree.Element, t *area.TextArea) {
	setInt(el, "baseline", t.Baseline())
	setInt(el, "tlsadjust", t.LetterSpaceAdjust())
	setInt(el, "twsadjust", t.WordSpaceAdjust())
}

// writeForeignAttrs writes attributes of foreign namespaces, declaring a
// prefix per namespace on the element itself.
func writeForeignAttrs(el *etree.Element, attrs []area.ForeignAttr) {
	prefixes := make(map[string]string)
	for _, fa := range attrs {
		if fa.Name.Space == "" {
			tracer().Infof("foreign attribute %q without namespace dropped", fa.Name.Local)
			continue
		}
		prefix, ok := prefixes[fa.Name.Space]
		if !ok {
			if fa.Name.Space == xmlNamespace {
				prefix = "xml"
			} else {
				prefix = fmt.Sprintf("ns%d", len(prefixes)+1)
				el.CreateAttr("xmlns:"+prefix, fa.Name.Space)
			}
			prefixes[fa.Name.Space] = prefix
		}
		el.CreateAttr(prefix+":"+fa.Name.Local, fa.Value)
	}
}

// foreignCopy copies a foreign element and makes sure it declares its
// namespace, which may have been declared by an ancestor of the original.
func foreignCopy(root *etree.Element, ns string) *etree.Element {
	c := root.Copy()
	if ns != "" && c.NamespaceURI() != ns {
		if c.Space == "" {
			c.CreateAttr("xmlns", ns)
		} else {
			c.CreateAttr("xmlns:"+c.Space, ns)
		}
	}
	return c
}

// --- Off-document items ----------------------------------------------------

// offDocumentElement returns the element for an off-document item, or nil
// for items without an external form.
func offDocumentElement(item area.OffDocumentItem) *etree.Element {
	switch x := item.(type) {
	case *area.BookmarkTree:
		el := etree.NewElement(elBookmarkTree)
		for _, b := range x.Bookmarks() {
			writeBookmark(el, b)
		}
		return el
	case *area.Destination:
		el := etree.NewElement(elDestination)
		el.CreateAttr("idref", x.IDRef())
		if x.IsResolved() {
			el.CreateAttr("page-key", x.PageKey())
		}
		return el
	case *area.ExtensionAttachment:
		return extensionElement(x)
	}
	tracer().Infof("off-document item %q has no external form", item.Name())
	return nil
}

func writeBookmark(parent *etree.Element, b *area.Bookmark) {
	el := parent.CreateElement(elBookmark)
	el.CreateAttr("title", b.Title())
	el.CreateAttr("show-children", strconv.FormatBool(b.ShowChildren()))
	el.CreateAttr("idref", b.IDRef())
	if b.TargetResolved() {
		el.CreateAttr("page-key", b.PageKey())
	}
	for _, c := range b.Children() {
		writeBookmark(el, c)
	}
}

func extensionElement(ext *area.ExtensionAttachment) *etree.Element {
	el := etree.NewElement(elExtension)
	el.CreateAttr("ns", ext.Namespace())
	el.CreateAttr("timing", ext.WhenToProcess().String())
	if root := ext.Element(); root != nil {
		el.AddChild(foreignCopy(root, ext.Namespace()))
	}
	return el
}

// --- Attribute helpers -----------------------------------------------------

func setBool(el *etree.Element, name string, b bool) {
	if b {
		el.CreateAttr(name, "true")
	}
}

func setInt(el *etree.Element, name string, n int) {
	if n != 0 {
		el.CreateAttr(name, strconv.Itoa(n))
	}
}
