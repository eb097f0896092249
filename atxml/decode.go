package atxml

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/beevik/etree"
	"github.com/npillmayer/areatree/area"
	"github.com/npillmayer/areatree/geom"
	"github.com/npillmayer/areatree/trait"
)

// DecodePage reads a document written by EncodePage and attaches the page
// content to pv. Resolutions which arrived while the content was away are
// applied to the reattached areas.
func DecodePage(r io.Reader, pv *area.PageViewport) error {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return fmt.Errorf("area tree xml: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != elPage {
		return &ParseError{Path: "/", Err: fmt.Errorf("%w: expected %s", ErrUnknownElement, elPage)}
	}
	p, err := decodePage(root)
	if err != nil {
		return err
	}
	pv.AttachPage(p)
	return nil
}

// --- Area elements ---------------------------------------------------------

type areaHandler struct {
	build    func(e *etree.Element) (area.Area, error)
	children bool // build decodes the child elements itself
}

// areaHandlers maps element names to the builders of areas.
var areaHandlers map[string]areaHandler

func init() {
	areaHandlers = map[string]areaHandler{
		"regionViewport":                     {build: buildRegionViewport},
		regionElement(area.RegionBefore):     {build: buildRegionReference(area.RegionBefore)},
		regionElement(area.RegionStart):      {build: buildRegionReference(area.RegionStart)},
		regionElement(area.RegionEnd):        {build: buildRegionReference(area.RegionEnd)},
		regionElement(area.RegionAfter):      {build: buildRegionReference(area.RegionAfter)},
		regionElement(area.RegionBody):       {build: buildBodyRegion, children: true},
		area.KindMainReference.String():      {build: buildMainReference},
		area.KindSpan.String():               {build: buildSpan, children: true},
		area.KindNormalFlow.String():         {build: build(area.NewNormalFlow)},
		area.KindBeforeFloat.String():        {build: build(area.NewBeforeFloat)},
		area.KindFootnote.String():           {build: buildFootnote, children: true},
		area.KindBlock.String():              {build: buildBlock},
		area.KindBlockViewport.String():      {build: buildBlockViewport},
		area.KindLineArea.String():           {build: buildLineArea},
		area.KindInlineParent.String():       {build: buildInlineParent},
		area.KindInlineBlockParent.String():  {build: build(area.NewInlineBlockParent)},
		area.KindText.String():               {build: buildText},
		area.KindWord.String():               {build: buildWord},
		area.KindSpace.String():              {build: buildSpace},
		area.KindLeader.String():             {build: buildLeader},
		area.KindPageNumberCitation.String(): {build: buildPageNumberCitation, children: true},
		area.KindViewport.String():           {build: buildViewport, children: true},
		area.KindImage.String():              {build: buildImage},
		area.KindForeignObject.String():      {build: buildForeignObject, children: true},
	}
}

// decodeArea builds the area for element e and its descendants. Elements
// of foreign namespaces are skipped and yield a nil area.
func decodeArea(e *etree.Element) (a area.Area, err error) {
	if ns := e.NamespaceURI(); ns != "" {
		tracer().Debugf("skipping foreign element {%s}%s", ns, e.Tag)
		return nil, nil
	}
	h, ok := areaHandlers[e.Tag]
	if !ok {
		return nil, parseError(e, fmt.Errorf("%w: %s", ErrUnknownElement, e.Tag))
	}
	defer catch(e, &err)
	if a, err = h.build(e); err != nil {
		return nil, parseError(e, err)
	}
	if err = decodeCommon(e, a); err != nil {
		return nil, parseError(e, err)
	}
	if !h.children {
		if err = decodeChildren(e, a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// decodeInto decodes attributes and children of e into an existing area.
func decodeInto(e *etree.Element, a area.Area) (err error) {
	defer catch(e, &err)
	if err = decodeCommon(e, a); err != nil {
		return parseError(e, err)
	}
	return decodeChildren(e, a)
}

func decodeChildren(e *etree.Element, a area.Area) error {
	for _, ch := range e.ChildElements() {
		c, err := decodeArea(ch)
		if err != nil {
			return err
		}
		if c != nil {
			a.AddChildArea(c)
		}
	}
	return nil
}

// decodeCommon reads the properties every area has: extents, class, bidi
// level, traits and foreign attributes.
func decodeCommon(e *etree.Element, a area.Area) error {
	r := attrReader{e: e}
	a.SetIPD(r.int("ipd"))
	a.SetBPD(r.int("bpd"))
	if s := r.str("area-class"); s != "" {
		c, ok := area.ParseClass(s)
		if !ok {
			return fmt.Errorf("%w: area-class=%q", ErrMalformed, s)
		}
		a.SetAreaClass(c)
	}
	if r.has("bidi-level") {
		a.SetBidiLevel(r.int("bidi-level"))
	}
	if in, ok := a.(area.Inline); ok {
		in.SetOffset(r.int("offset"))
		if r.has("adj-amount") {
			in.SetInlineAdjustment(r.int("adj-stretch"), r.int("adj-shrink"), r.int("adj-amount"))
		}
	}
	if r.err != nil {
		return r.err
	}
	for _, at := range e.Attr {
		switch {
		case at.Space == "xmlns" || (at.Space == "" && at.Key == "xmlns"):
		case at.Space != "":
			ns := xmlNamespace
			if at.Space != "xml" {
				ns = at.NamespaceURI()
			}
			if ns == "" {
				return fmt.Errorf("%w: undeclared prefix %q", ErrMalformed, at.Space)
			}
			a.SetForeignAttribute(area.QName{Space: ns, Local: at.Key}, at.Value)
		default:
			c, ok := trait.CodeByName(at.Key)
			if !ok {
				continue
			}
			if !traitSubsets[a.Kind()].Contains(c) {
				tracer().Infof("trait %s ignored for %s", c, a.Kind())
				continue
			}
			v, err := trait.Parse(c, at.Value)
			if err != nil {
				return err
			}
			a.AddTrait(c, v)
		}
	}
	return nil
}

func build[A area.Area](create func() A) func(*etree.Element) (area.Area, error) {
	return func(*etree.Element) (area.Area, error) {
		return create(), nil
	}
}

func buildRegionViewport(e *etree.Element) (area.Area, error) {
	r := attrReader{e: e}
	rv := area.NewRegionViewport(r.rect("rect"))
	rv.SetClip(r.bool("clip"))
	return rv, r.err
}

func buildRegionReference(rc area.RegionClass) func(*etree.Element) (area.Area, error) {
	return func(e *etree.Element) (area.Area, error) {
		r := attrReader{e: e}
		rr := area.NewRegionReference(rc, r.str("name"))
		rr.SetCTM(r.ctm("ctm"))
		return rr, r.err
	}
}

func buildBodyRegion(e *etree.Element) (area.Area, error) {
	r := attrReader{e: e}
	br := area.NewBodyRegion(r.str("name"), r.int("columnCount"), r.int("columnGap"))
	br.SetCTM(r.ctm("ctm"))
	if r.err != nil {
		return nil, r.err
	}
	for _, ch := range e.ChildElements() {
		if ch.Tag == area.KindMainReference.String() && ch.Space == "" {
			mr := area.NewMainReference(br.ColumnCount(), br.ColumnGap(), 0)
			if err := decodeInto(ch, mr); err != nil {
				return nil, err
			}
			br.AddChildArea(mr)
			continue
		}
		c, err := decodeArea(ch)
		if err != nil {
			return nil, err
		}
		if c != nil {
			br.AddChildArea(c)
		}
	}
	return br, nil
}

func buildMainReference(e *etree.Element) (area.Area, error) {
	return area.NewMainReference(1, 0, 0), nil
}

// buildSpan creates a span with its flows and decodes the flow elements
// into them, column by column.
func buildSpan(e *etree.Element) (area.Area, error) {
	r := attrReader{e: e}
	sp := area.NewSpan(max(1, r.int("columnCount")), r.int("columnGap"), r.int("ipd"))
	if r.err != nil {
		return nil, r.err
	}
	for i, ch := range e.ChildElements() {
		f := sp.Flow(i)
		if ch.Tag != area.KindNormalFlow.String() || f == nil {
			return nil, parseError(ch, fmt.Errorf("%w: span with %d column(s) may not contain %s #%d",
				ErrStructure, sp.ColumnCount(), ch.Tag, i+1))
		}
		if err := decodeInto(ch, f); err != nil {
			return nil, err
		}
	}
	return sp, nil
}

func buildFootnote(e *etree.Element) (area.Area, error) {
	fn := area.NewFootnote()
	for _, ch := range e.ChildElements() {
		if ch.Tag == elSeparator && ch.Space == "" {
			for _, s := range ch.ChildElements() {
				sep, err := decodeArea(s)
				if err != nil {
					return nil, err
				}
				fn.SetSeparator(sep)
			}
			continue
		}
		c, err := decodeArea(ch)
		if err != nil {
			return nil, err
		}
		if c != nil {
			fn.AddChildArea(c)
		}
	}
	return fn, nil
}

func readBlockAttrs(r *attrReader, b *area.Block) {
	if s := r.str("positioning"); s != "" {
		p, ok := area.ParsePositioning(s)
		if !ok && r.err == nil {
			r.err = fmt.Errorf("%w: positioning=%q", ErrMalformed, s)
		}
		b.SetPositioning(p)
		b.SetOffsets(r.int("left"), r.int("top"))
	}
}

func buildBlock(e *etree.Element) (area.Area, error) {
	r := attrReader{e: e}
	b := area.NewBlock()
	readBlockAttrs(&r, b)
	return b, r.err
}

func buildBlockViewport(e *etree.Element) (area.Area, error) {
	r := attrReader{e: e}
	bv := area.NewBlockViewport(r.ctm("ctm"))
	readBlockAttrs(&r, bv.Block)
	bv.SetClip(r.bool("clip"))
	return bv, r.err
}

func buildLineArea(e *etree.Element) (area.Area, error) {
	r := attrReader{e: e}
	l := area.NewLineArea()
	if s := r.str("align"); s != "" {
		al, ok := area.ParseAlignment(s)
		if !ok {
			return nil, fmt.Errorf("%w: align=%q", ErrMalformed, s)
		}
		l.RestoreAdjusting(area.AdjustingInfo{
			Alignment:       al,
			Difference:      r.int("adj-diff"),
			Stretch:         r.int("adj-stretch"),
			Shrink:          r.int("adj-shrink"),
			VariationFactor: r.float("adj-factor", 1.0),
			AddedToAreaTree: r.bool("adj-finished"),
		})
	}
	return l, r.err
}

func buildInlineParent(e *etree.Element) (area.Area, error) {
	r := attrReader{e: e}
	id := r.str("idref")
	if id == "" {
		return area.NewInlineParent(), nil
	}
	ip := area.NewBasicLink(id)
	if !r.bool("unresolved") {
		ip.MarkLinkResolved()
	}
	return ip, r.err
}

func readTextAttrs(r *attrReader, t *area.TextArea) {
	t.SetBaseline(r.int("baseline"))
	t.SetSpaceAdjust(r.int("tlsadjust"), r.int("twsadjust"))
}

func buildText(e *etree.Element) (area.Area, error) {
	r := attrReader{e: e}
	t := area.NewTextArea()
	readTextAttrs(&r, t)
	return t, r.err
}

func buildWord(e *etree.Element) (area.Area, error) {
	return area.NewWordArea(e.Text()), nil
}

func buildSpace(e *etree.Element) (area.Area, error) {
	r := attrReader{e: e}
	return area.NewSpaceArea(r.str("value"), r.bool("adjustable")), r.err
}

func buildLeader(e *etree.Element) (area.Area, error) {
	r := attrReader{e: e}
	return area.NewLeader(r.str("ruleStyle"), r.int("ruleThickness")), r.err
}

// buildPageNumberCitation replaces the placeholder of a new citation by
// the words and spaces of the element.
func buildPageNumberCitation(e *etree.Element) (area.Area, error) {
	r := attrReader{e: e}
	c := area.NewPageNumberCitation(r.str("idref"), r.bool("last"), 0, nil)
	c.RemoveText()
	readTextAttrs(&r, c.TextArea)
	if r.err != nil {
		return nil, r.err
	}
	if err := decodeChildren(e, c); err != nil {
		return nil, err
	}
	if !r.bool("unresolved") {
		c.MarkResolved()
	}
	return c, nil
}

func buildViewport(e *etree.Element) (area.Area, error) {
	r := attrReader{e: e}
	var content area.Area
	for _, ch := range e.ChildElements() {
		c, err := decodeArea(ch)
		if err != nil {
			return nil, err
		}
		if c != nil {
			content = c
			break
		}
	}
	v := area.NewViewport(content)
	v.SetContentPosition(r.frect("pos"))
	v.SetClip(r.bool("clip"))
	return v, r.err
}

func buildImage(e *etree.Element) (area.Area, error) {
	r := attrReader{e: e}
	return area.NewImage(r.str("url")), r.err
}

func buildForeignObject(e *etree.Element) (area.Area, error) {
	r := attrReader{e: e}
	ns := r.str("ns")
	var root *etree.Element
	if ch := e.ChildElements(); len(ch) > 0 {
		root = ch[0]
		if ns == "" {
			ns = root.NamespaceURI()
		}
	}
	return area.NewForeignObject(ns, root), r.err
}

// --- Pages -----------------------------------------------------------------

func decodePage(e *etree.Element) (p *area.Page, err error) {
	defer catch(e, &err)
	p = area.NewPage()
	for _, ch := range e.ChildElements() {
		a, err := decodeArea(ch)
		if err != nil {
			return nil, err
		}
		if a == nil {
			continue
		}
		rv, ok := a.(*area.RegionViewport)
		if !ok {
			return nil, parseError(ch, fmt.Errorf("%w: page may not contain %s", ErrStructure, ch.Tag))
		}
		region := rv.RegionReference()
		if region == nil {
			return nil, parseError(ch, fmt.Errorf("%w: region viewport without region", ErrStructure))
		}
		p.SetRegionViewport(region.RegionClass(), rv)
	}
	return p, nil
}

// --- Helpers ---------------------------------------------------------------

func parseError(e *etree.Element, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	return &ParseError{Path: e.GetPath(), Err: err}
}

// catch turns a panic caused by an illegal area structure into a parse
// error for element e.
func catch(e *etree.Element, err *error) {
	if r := recover(); r != nil {
		*err = parseError(e, fmt.Errorf("%w: %v", ErrStructure, r))
	}
}

// attrReader reads typed attributes of an element. The first malformed
// attribute is kept in err; missing attributes yield zero values.
type attrReader struct {
	e   *etree.Element
	err error
}

func (r *attrReader) has(name string) bool {
	return r.e.SelectAttr(name) != nil
}

func (r *attrReader) str(name string) string {
	return r.e.SelectAttrValue(name, "")
}

func (r *attrReader) fail(name, value string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s=%q", ErrMalformed, name, value)
	}
}

func (r *attrReader) int(name string) int {
	s := r.str(name)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		r.fail(name, s)
	}
	return n
}

func (r *attrReader) float(name string, dflt float64) float64 {
	s := r.str(name)
	if s == "" {
		return dflt
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(name, s)
		return dflt
	}
	return f
}

func (r *attrReader) bool(name string) bool {
	s := r.str(name)
	if s == "" {
		return false
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		r.fail(name, s)
	}
	return b
}

func (r *attrReader) rect(name string) geom.Rect {
	s := r.str(name)
	if s == "" {
		return geom.Rect{}
	}
	rect, err := geom.ParseRect(s)
	if err != nil {
		r.fail(name, s)
	}
	return rect
}

func (r *attrReader) frect(name string) geom.FRect {
	s := r.str(name)
	if s == "" {
		return geom.FRect{}
	}
	rect, err := geom.ParseFRect(s)
	if err != nil {
		r.fail(name, s)
	}
	return rect
}

func (r *attrReader) ctm(name string) geom.CTM {
	s := r.str(name)
	if s == "" {
		return geom.Identity
	}
	m, err := geom.ParseCTM(s)
	if err != nil {
		r.fail(name, s)
		return geom.Identity
	}
	return m
}
