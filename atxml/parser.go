package atxml

import (
	"fmt"
	"io"

	"github.com/beevik/etree"
	"github.com/npillmayer/areatree/area"
	"golang.org/x/text/language"
)

// Sink receives the page sequences, pages and off-document items of a
// parsed area tree, in document order. Area tree models implement it.
type Sink interface {
	StartPageSequence(ps *area.PageSequence) error
	AddPage(pv *area.PageViewport) error
	HandleOffDocumentItem(item area.OffDocumentItem) error
}

// Parse reads an area tree in the intermediate format and feeds it to sink.
// Finishing the document is left to the caller. Unresolved references of
// the pages read are registered with their page viewports.
func Parse(r io.Reader, sink Sink) error {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return fmt.Errorf("area tree xml: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != elAreaTree {
		return &ParseError{Path: "/", Err: fmt.Errorf("%w: expected %s", ErrUnknownElement, elAreaTree)}
	}
	p := parser{sink: sink}
	if err := p.elements(root, docHandlers); err != nil {
		return err
	}
	tracer().Debugf("%d page(s) read", p.pages)
	return nil
}

type parser struct {
	sink  Sink
	pages int
}

type docHandler func(p *parser, e *etree.Element) error

var docHandlers, sequenceHandlers map[string]docHandler

func init() {
	docHandlers = map[string]docHandler{
		elPageSequence: (*parser).pageSequence,
		elBookmarkTree: (*parser).offDocumentItem,
		elDestination:  (*parser).offDocumentItem,
		elExtension:    (*parser).offDocumentItem,
	}
	sequenceHandlers = map[string]docHandler{
		elTitle:        func(*parser, *etree.Element) error { return nil },
		elPageViewport: (*parser).pageViewport,
		elBookmarkTree: (*parser).offDocumentItem,
		elDestination:  (*parser).offDocumentItem,
		elExtension:    (*parser).offDocumentItem,
	}
}

// elements dispatches the child elements of e by name.
func (p *parser) elements(e *etree.Element, handlers map[string]docHandler) error {
	for _, ch := range e.ChildElements() {
		if ns := ch.NamespaceURI(); ns != "" {
			tracer().Debugf("skipping foreign element {%s}%s", ns, ch.Tag)
			continue
		}
		h, ok := handlers[ch.Tag]
		if !ok {
			return parseError(ch, fmt.Errorf("%w: %s", ErrUnknownElement, ch.Tag))
		}
		if err := h(p, ch); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) pageSequence(e *etree.Element) error {
	lang := language.Und
	if s := e.SelectAttrValue("xml:lang", ""); s != "" {
		tag, err := language.Parse(s)
		if err != nil {
			return parseError(e, fmt.Errorf("%w: xml:lang=%q", ErrMalformed, s))
		}
		lang = tag
	}
	var title *area.LineArea
	if t := e.SelectElement(elTitle); t != nil {
		for _, ch := range t.ChildElements() {
			a, err := decodeArea(ch)
			if err != nil {
				return err
			}
			l, ok := a.(*area.LineArea)
			if !ok {
				return parseError(ch, fmt.Errorf("%w: title has to be a line area", ErrStructure))
			}
			title = l
		}
	}
	if err := p.sink.StartPageSequence(area.NewPageSequence(title, lang)); err != nil {
		return err
	}
	return p.elements(e, sequenceHandlers)
}

func (p *parser) pageViewport(e *etree.Element) (err error) {
	defer catch(e, &err)
	r := attrReader{e: e}
	pv := area.NewPageViewport(r.str("key"), r.rect("bounds"), r.int("nr"), r.str("formatted-nr"))
	pv.SetMasterName(r.str("simple-page-master-name"))
	pv.SetBlank(r.bool("blank"))
	pv.SetClip(r.bool("clip"))
	if r.err != nil {
		return parseError(e, r.err)
	}
	for _, ch := range e.ChildElements() {
		switch {
		case ch.NamespaceURI() != "":
			tracer().Debugf("skipping foreign element {%s}%s", ch.NamespaceURI(), ch.Tag)
		case ch.Tag == elPage:
			page, err := decodePage(ch)
			if err != nil {
				return err
			}
			pv.SetPage(page)
		case ch.Tag == elExtension:
			ext, err := decodeExtension(ch)
			if err != nil {
				return err
			}
			pv.AddExtensionAttachment(ext)
		default:
			return parseError(ch, fmt.Errorf("%w: %s", ErrUnknownElement, ch.Tag))
		}
	}
	if ids := pv.RegisterResolvables(); len(ids) > 0 {
		tracer().P("page", pv.Key()).Debugf("page has unresolved references %v", ids)
	}
	p.pages++
	return p.sink.AddPage(pv)
}

func (p *parser) offDocumentItem(e *etree.Element) error {
	var item area.OffDocumentItem
	switch e.Tag {
	case elBookmarkTree:
		bt := area.NewBookmarkTree()
		for _, ch := range e.ChildElements() {
			b, err := decodeBookmark(ch)
			if err != nil {
				return err
			}
			bt.AddBookmark(b)
		}
		item = bt
	case elDestination:
		d := area.NewDestination(e.SelectAttrValue("idref", ""))
		if at := e.SelectAttr("page-key"); at != nil {
			d.SetPageKey(at.Value)
		}
		item = d
	case elExtension:
		ext, err := decodeExtension(e)
		if err != nil {
			return err
		}
		item = ext
	}
	return p.sink.HandleOffDocumentItem(item)
}

func decodeBookmark(e *etree.Element) (*area.Bookmark, error) {
	if e.Tag != elBookmark {
		return nil, parseError(e, fmt.Errorf("%w: %s", ErrUnknownElement, e.Tag))
	}
	r := attrReader{e: e}
	b := area.NewBookmark(r.str("title"), r.bool("show-children"), r.str("idref"))
	if r.err != nil {
		return nil, parseError(e, r.err)
	}
	if at := e.SelectAttr("page-key"); at != nil {
		b.SetPageKey(at.Value)
	}
	for _, ch := range e.ChildElements() {
		c, err := decodeBookmark(ch)
		if err != nil {
			return nil, err
		}
		b.AddChild(c)
	}
	return b, nil
}

func decodeExtension(e *etree.Element) (*area.ExtensionAttachment, error) {
	timing := area.Immediately
	if s := e.SelectAttrValue("timing", ""); s != "" {
		t, ok := parseTiming(s)
		if !ok {
			return nil, parseError(e, fmt.Errorf("%w: timing=%q", ErrMalformed, s))
		}
		timing = t
	}
	var root *etree.Element
	if ch := e.ChildElements(); len(ch) > 0 {
		root = ch[0]
	}
	return area.NewExtensionAttachment(e.SelectAttrValue("ns", ""), root, timing), nil
}

func parseTiming(s string) (area.Timing, bool) {
	for _, t := range []area.Timing{area.Immediately, area.AfterPage, area.EndOfDocument} {
		if t.String() == s {
			return t, true
		}
	}
	return area.Immediately, false
}
