/*
Package areatree is the producer side of an area tree. Layout hands
finished pages, id locations, unresolved references and off-document items
to a Handler; the handler resolves references across pages and feeds an
area tree model, which renders pages as soon as their references are
resolved.

A typical setup uses a configuration:

	reg := render.NewRegistry()
	atxml.Register(reg)
	h, err := areatree.NewFromConfig(config.Default(), reg, w)
	…
	h.StartPageSequence(nil, language.English)
	pv := h.NewPage(master, 1, "1", false)
	// lay out content into pv.Page(), locate ids
	h.AssociateIDWithPage("intro", pv)
	h.FinishPage(pv)
	…
	err = h.EndDocument()

Page viewports are the waiters for the ids referenced by their areas. When
an id is located, the pages waiting for it resolve their areas, even while
their content is swapped out to a page cache.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package areatree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'areatree'.
func tracer() tracing.Trace {
	return tracing.Select("areatree")
}
