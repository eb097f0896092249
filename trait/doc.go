/*
Package trait implements the side-table of rendering attributes attached
to every area.

Traits are rendering-relevant properties which are not part of the core
geometry of an area: borders, padding, fonts, colors, links and the like.
Each trait is identified by a Code from a small, dense enumeration, and
each code admits values of exactly one Class. A Store holds at most one
value per code; storage is a fixed array indexed by code together with a
presence bitmask, so lookups never allocate.

Requesting a trait through a typed getter which does not match the class
of the code is a programming error and will panic.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package trait

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'areatree.trait'.
func tracer() tracing.Trace {
	return tracing.Select("areatree.trait")
}
