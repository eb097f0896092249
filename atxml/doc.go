/*
Package atxml reads and writes the intermediate format of area trees, an
XML rendition of pages, their areas and the off-document items of a
document.

Every area kind is written as an element named after its kind
(area.Kind.String), with the exception of region references, which are
written as regionBefore, regionStart, regionBody, regionEnd and
regionAfter. Dimensions are given in millipoints, transformations as
"[a b c d e f]" and rectangles as "x y w h". Traits are attributes named
after their trait codes. Attributes of foreign namespaces are kept;
elements of foreign namespaces are kept where they are content (foreign
objects, extension attachments) and skipped elsewhere.

	<areaTree>
	  <pageSequence xml:lang="en">
	    <pageViewport key="P1" bounds="0 0 595000 842000" nr="1" formatted-nr="1">
	      <page>
	        <regionViewport rect="…">
	          <regionBody columnCount="1" columnGap="0" ctm="[1 0 0 1 0 0]">
	            <mainReference> <span> <flow> <block> <lineArea> …

The Renderer writes this format as a renderer of the area tree. It
requires pages in document order. Parse reads it back and feeds a Sink,
usually an area tree model. EncodePage and DecodePage write and read the
content of a single page; page caches use them to swap pages out of
memory.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package atxml

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'areatree.xml'.
func tracer() tracing.Trace {
	return tracing.Select("areatree.xml")
}

// Errors wrapped by parse errors.
var (
	ErrUnknownElement = errors.New("unknown element")
	ErrMalformed      = errors.New("malformed attribute")
	ErrStructure      = errors.New("illegal area structure")
)

// ErrNoContent is returned when encoding a page viewport without content.
var ErrNoContent = errors.New("page viewport has no content")

// ParseError is an error found while reading the intermediate format. Path
// is the path of the offending element.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("area tree xml: %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
