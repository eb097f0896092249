/*
Package render defines the interface between an area tree and the renderers
consuming its pages.

Renderers are created by name from a Registry. The registry is populated
explicitly by the packages providing renderers (e.g. atxml.Register), and
the name of the renderer to create usually comes from configuration.

A renderer either supports out-of-order rendering, in which case pages are
handed to it as soon as they are fully resolved, or requires pages in
document order.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package render

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'areatree.render'.
func tracer() tracing.Trace {
	return tracing.Select("areatree.render")
}

// ErrUnknownRenderer is returned by Registry.Create for names without a
// registered factory.
var ErrUnknownRenderer = errors.New("unknown renderer")

// ErrAbort may be wrapped by errors returned from a renderer to abort the
// document. Other renderer errors only skip the page in question.
var ErrAbort = errors.New("rendering aborted")
