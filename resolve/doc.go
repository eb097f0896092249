/*
Package resolve implements the registry of ids and id references of an area
tree.

Areas carrying an id are located on one or more pages. Areas referencing an
id (links, page number citations, bookmarks) may be created before the pages
carrying the id are known. The Tracker records, for every id, the pages it
appears on in document order, and, for every unresolved id, the objects
waiting for it. Waiters are called back as soon as the id is located.

Some ids are located on pages before the formatting object generating them
has finished, e.g. for citations of the last page of a long block. For these,
SignalPendingID and SignalIDProcessed bracket the generation; no waiter is
called back in between.

The tracker is used from the single formatting goroutine. It is not safe for
concurrent use.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package resolve

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'areatree.resolve'.
func tracer() tracing.Trace {
	return tracing.Select("areatree.resolve")
}
