/*
Package tree implements the node type area trees are built of.

Nodes carry a payload of type parameter T and maintain a slice of
children, guarded by a read/write mutex. Areas embed a node and set
its payload to themselves, which gives every area access to its parent
and children without the area types knowing about each other.

Traversals are synchronous: formatting builds the area tree from a single
goroutine, and renderers walk finished pages only.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package tree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'areatree.tree'.
func tracer() tracing.Trace {
	return tracing.Select("areatree.tree")
}
