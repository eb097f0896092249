/*
Package event delivers diagnostics of the area tree machinery to interested
listeners.

Conditions which do not abort formatting, such as dangling id references or
pages lost during caching, are traced and additionally reported as
structured events. Applications may count or display them; tests use a
Recorder to check that every dangling reference is reported exactly once.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package event

import (
	"fmt"
	"sync"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'areatree'.
func tracer() tracing.Trace {
	return tracing.Select("areatree")
}

// Kind classifies events.
type Kind uint8

// Kinds of events.
const (
	UnresolvedIDReference       Kind = iota // id never found, waiters resolved to nothing
	UnresolvedIDReferenceOnPage             // page rendered with unresolved references
	PageSkipped                             // page content lost, not rendered
	CacheFailure                            // page cache I/O failed
	RenderFailure                           // renderer failed on a page or extension
)

func (k Kind) String() string {
	switch k {
	case UnresolvedIDReference:
		return "unresolved-id-reference"
	case UnresolvedIDReferenceOnPage:
		return "unresolved-id-reference-on-page"
	case PageSkipped:
		return "page-skipped"
	case CacheFailure:
		return "cache-failure"
	case RenderFailure:
		return "render-failure"
	}
	return "?"
}

// Event is a single diagnostic.
type Event struct {
	Kind    Kind
	ID      string // id reference, if applicable
	PageKey string // page viewport key, if applicable
	Err     error  // cause, if applicable
}

func (e Event) String() string {
	s := fmt.Sprintf("[%s", e.Kind)
	if e.ID != "" {
		s += " id=" + e.ID
	}
	if e.PageKey != "" {
		s += " page=" + e.PageKey
	}
	if e.Err != nil {
		s += " err=" + e.Err.Error()
	}
	return s + "]"
}

// Listener receives events.
type Listener interface {
	Notify(Event)
}

// Func adapts a function to the Listener interface.
type Func func(Event)

// Notify calls f(e).
func (f Func) Notify(e Event) {
	f(e)
}

// Nop is a listener which discards all events.
var Nop Listener = Func(func(Event) {})

// Emit traces an event and forwards it to l, which may be nil.
func Emit(l Listener, e Event) {
	switch e.Kind {
	case UnresolvedIDReference, UnresolvedIDReferenceOnPage:
		tracer().P("id", e.ID).Infof("%s", e)
	default:
		tracer().P("page", e.PageKey).Errorf("%s", e)
	}
	if l != nil {
		l.Notify(e)
	}
}

// Recorder is a listener which keeps all events it receives. It is safe for
// concurrent use.
type Recorder struct {
	mx     sync.Mutex
	events []Event
}

// Notify appends e to the recorded events.
func (r *Recorder) Notify(e Event) {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mx.Lock()
	defer r.mx.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns the number of recorded events of a kind.
func (r *Recorder) Count(k Kind) int {
	r.mx.Lock()
	defer r.mx.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == k {
			n++
		}
	}
	return n
}
