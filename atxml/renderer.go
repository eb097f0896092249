package atxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/npillmayer/areatree/area"
	"github.com/npillmayer/areatree/render"
)

// Name is the name under which Register registers the renderer.
const Name = "xml"

// Register registers the XML renderer with a renderer registry.
func Register(reg *render.Registry) {
	reg.Register(Name, func(opts render.Options) (render.Renderer, error) {
		return NewRenderer(opts)
	})
}

// Renderer writes an area tree in the intermediate format. Pages are
// written as they are rendered; the document is complete after
// StopRenderer. Write errors abort the document.
type Renderer struct {
	w          io.Writer
	indent     int
	consistent bool
	inSequence bool
	pages      int
}

var _ render.Renderer = (*Renderer)(nil)

// NewRenderer creates an XML renderer writing to opts.Writer.
func NewRenderer(opts render.Options) (*Renderer, error) {
	if opts.Writer == nil {
		return nil, errors.New("xml renderer needs a writer")
	}
	return &Renderer{w: opts.Writer, indent: max(0, opts.Indent), consistent: opts.ConsistentOutput}, nil
}

// SupportsOutOfOrder returns false: pages are written in document order.
func (r *Renderer) SupportsOutOfOrder() bool {
	return false
}

// StartRenderer writes the XML declaration and opens the root element.
func (r *Renderer) StartRenderer() error {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	if !r.consistent {
		fmt.Fprintf(&b, "<!-- produced by areatree at %s -->\n", time.Now().Format(time.RFC3339))
	}
	b.WriteString("<" + elAreaTree + ">\n")
	return r.write(b.String())
}

// StartPageSequence closes the current page sequence, if any, and opens a
// new one.
func (r *Renderer) StartPageSequence(ps *area.PageSequence) error {
	if err := r.endSequence(); err != nil {
		return err
	}
	el := pageSequenceElement(ps)
	if err := r.write(r.prefix(1) + startTag(el) + "\n"); err != nil {
		return err
	}
	r.inSequence = true
	for _, ch := range el.ChildElements() {
		if err := r.writeElement(ch, 2); err != nil {
			return err
		}
	}
	return nil
}

// PreparePage does nothing; the renderer does not render out of order.
func (r *Renderer) PreparePage(pv *area.PageViewport) error {
	return nil
}

// RenderPage writes a page viewport with its content.
func (r *Renderer) RenderPage(pv *area.PageViewport) error {
	tracer().P("page", pv.Key()).Debugf("writing page")
	r.pages++
	return r.writeElement(pageViewportElement(pv), r.depth())
}

// RenderExtension writes an off-document item.
func (r *Renderer) RenderExtension(item area.OffDocumentItem) error {
	el := offDocumentElement(item)
	if el == nil {
		return nil
	}
	return r.writeElement(el, r.depth())
}

// StopRenderer closes all open elements.
func (r *Renderer) StopRenderer() error {
	if err := r.endSequence(); err != nil {
		return err
	}
	tracer().Infof("%d page(s) written", r.pages)
	return r.write("</" + elAreaTree + ">\n")
}

func (r *Renderer) endSequence() error {
	if !r.inSequence {
		return nil
	}
	r.inSequence = false
	return r.write(r.prefix(1) + "</" + elPageSequence + ">\n")
}

func (r *Renderer) depth() int {
	if r.inSequence {
		return 2
	}
	return 1
}

func (r *Renderer) prefix(depth int) string {
	return strings.Repeat(" ", depth*r.indent)
}

// writeElement writes e as a fragment at a nesting depth.
func (r *Renderer) writeElement(e *etree.Element, depth int) error {
	doc := etree.NewDocument()
	doc.SetRoot(e)
	if r.indent > 0 {
		doc.Indent(r.indent)
	}
	s, err := doc.WriteToString()
	if err != nil {
		return fmt.Errorf("%w: %w", render.ErrAbort, err)
	}
	var b strings.Builder
	prefix := r.prefix(depth)
	for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		b.WriteString(prefix)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return r.write(b.String())
}

func (r *Renderer) write(s string) error {
	if _, err := io.WriteString(r.w, s); err != nil {
		return fmt.Errorf("%w: %w", render.ErrAbort, err)
	}
	return nil
}

// startTag returns the start tag of e, without its children.
func startTag(e *etree.Element) string {
	var b bytes.Buffer
	b.WriteString("<" + e.FullTag())
	for _, at := range e.Attr {
		b.WriteString(" " + at.FullKey() + `="`)
		xml.EscapeText(&b, []byte(at.Value))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	return b.String()
}
