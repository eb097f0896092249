/*
Package area implements the area tree of a paginated document.

An area tree represents a laid-out document as a tree of geometric areas.
Pages are represented by page viewports, which are the stable handles of
pages for the life of a document. The content of a page (Page) holds up to
five region viewports, each with one region reference. The body region
owns a main reference with spans of normal flows, plus optional
before-float and footnote areas. Below these, blocks stack line areas,
and line areas hold sequences of inline areas.

	PageViewport
	 └─ Page
	     └─ RegionViewport (before | start | body | end | after)
	         └─ RegionReference / BodyRegion
	             ├─ BeforeFloat ── Block…
	             ├─ MainReference ── Span… ── NormalFlow… ── Block…
	             └─ Footnote ── Block…
	                              └─ LineArea ── InlineParent | TextArea | Leader | Viewport …

Every area variant is a distinct Go type embedding *Base, which carries
the properties common to all areas: inline and block progression
dimension (in millipoints), area class, optional bidi level, traits and
foreign attributes. The set of variants is closed; Kind enumerates them,
and which kinds may be nested in which is checked whenever an area is
added to a parent. Violations of the tree structure are programming errors
and panic.

Forward references to ids not yet laid out are represented by Resolvable
objects. They are registered with the page viewport they appear on, and the
page viewport in turn with the id tracker (package resolve).

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package area

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'areatree.area'.
func tracer() tracing.Trace {
	return tracing.Select("areatree.area")
}

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		panic(fmt.Sprintf("area: "+msg, msgargs...))
	}
}
