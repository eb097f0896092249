/*
Package pagecache swaps the content of prepared pages out of memory while
they wait for unresolved references.

DiskStore writes page content in the intermediate format to files of a
private temporary directory. MemStore keeps detached content in memory and
is useful for tests and small documents. Both satisfy model.PageStore.

A stored page is loaded at most once: loading frees the storage, whether
it succeeds or not.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package pagecache

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'areatree.cache'.
func tracer() tracing.Trace {
	return tracing.Select("areatree.cache")
}

// ErrNotStored is returned when loading a page which has not been saved,
// or which has been loaded already.
var ErrNotStored = errors.New("page is not in cache")

// ErrClosed is returned by stores which have been closed.
var ErrClosed = errors.New("page cache is closed")
