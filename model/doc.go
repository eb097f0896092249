/*
Package model holds the pages of an area tree and decides when they are
rendered.

AreaTreeModel keeps page sequences and their pages and gives random access
to them. RenderPagesModel extends it with the rendering-order controller:
every page added is either rendered immediately, or prepared and queued
until it (and, for renderers requiring document order, every page before
it) is fully resolved. Prepared pages may be swapped out to a PageStore to
bound memory.

Failures while caching or rendering a single page do not abort the
document. They are decided upon at a single point: the page is marked as
skipped and an event is emitted. Only renderer errors wrapping
render.ErrAbort stop the document.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package model

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'areatree.model'.
func tracer() tracing.Trace {
	return tracing.Select("areatree.model")
}

// ErrCache is wrapped by errors of the page store.
var ErrCache = errors.New("page cache failure")

// ErrNoPageSequence is returned when pages are added before a page
// sequence has been started.
var ErrNoPageSequence = errors.New("no page sequence started")

// ErrRetrieveProperty is returned for unknown retrieve positions or
// boundaries of markers.
var ErrRetrieveProperty = errors.New("unknown marker retrieve property")

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		panic(fmt.Sprintf("model: "+msg, msgargs...))
	}
}
