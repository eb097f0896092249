package resolve

import (
	"slices"
	"sort"

	"github.com/npillmayer/areatree/area"
	"github.com/npillmayer/areatree/event"
	"github.com/npillmayer/areatree/maybe"
)

// Tracker keeps track of ids, the pages they are located on, and the
// objects waiting for them.
type Tracker struct {
	idLocations     map[string][]*area.PageViewport
	unresolved      map[string][]area.Resolvable
	unresolvedOrder []string // ids of unresolved, in order of first registration
	unfinished      map[string]bool
	alreadyResolved map[string]bool
	listener        event.Listener
}

// NewTracker creates an empty tracker. Warnings about ids which are never
// located are sent to l, which may be nil.
func NewTracker(l event.Listener) *Tracker {
	return &Tracker{
		idLocations:     make(map[string][]*area.PageViewport),
		unresolved:      make(map[string][]area.Resolvable),
		unfinished:      make(map[string]bool),
		alreadyResolved: make(map[string]bool),
		listener:        l,
	}
}

// AssociateIDWithPageViewport records that an area with id is located on
// page pv. The first time id is located, waiters for id are resolved,
// unless id is pending.
func (t *Tracker) AssociateIDWithPageViewport(id string, pv *area.PageViewport) {
	pages, known := t.idLocations[id]
	if slices.Contains(pages, pv) {
		return
	}
	t.idLocations[id] = append(pages, pv)
	tracer().P("id", id).P("page", pv.Key()).Debugf("id located")
	if known {
		return
	}
	pv.SetFirstWithID(id)
	if !t.unfinished[id] {
		t.resolveWaiters(id)
	}
}

// SignalPendingID marks id as being generated. Until SignalIDProcessed is
// called for id, waiters for id will not be resolved.
func (t *Tracker) SignalPendingID(id string) {
	tracer().P("id", id).Debugf("id pending")
	t.unfinished[id] = true
}

// SignalIDProcessed marks the generation of id as finished and resolves
// the waiters for id with all pages id has been located on.
func (t *Tracker) SignalIDProcessed(id string) {
	if !t.unfinished[id] {
		return
	}
	delete(t.unfinished, id)
	tracer().P("id", id).Debugf("id processed")
	if len(t.idLocations[id]) > 0 {
		t.resolveWaiters(id)
	}
}

// IsPending is true between SignalPendingID and SignalIDProcessed for id.
func (t *Tracker) IsPending(id string) bool {
	return t.unfinished[id]
}

// AlreadyResolvedID is true if waiters for id have been resolved.
func (t *Tracker) AlreadyResolvedID(id string) bool {
	return t.alreadyResolved[id]
}

// AddUnresolvedIDRef registers res as waiting for id. Registering the same
// waiter twice for an id has no effect.
func (t *Tracker) AddUnresolvedIDRef(id string, res area.Resolvable) {
	waiters, ok := t.unresolved[id]
	if !ok {
		t.unresolvedOrder = append(t.unresolvedOrder, id)
	}
	if !slices.Contains(waiters, res) {
		t.unresolved[id] = append(waiters, res)
	}
}

// TryIDResolution resolves those ids referenced by res which are already
// located and not pending. res stays registered as a waiter for the
// remaining ids.
func (t *Tracker) TryIDResolution(res area.Resolvable) {
	for _, id := range res.IDRefs() {
		pages := t.idLocations[id]
		if len(pages) == 0 || t.unfinished[id] {
			continue
		}
		res.ResolveIDRef(id, slices.Clone(pages))
		t.removeWaiter(id, res)
	}
}

// PageViewportsContainingID returns the pages id has been located on, in
// document order.
func (t *Tracker) PageViewportsContainingID(id string) []*area.PageViewport {
	return slices.Clone(t.idLocations[id])
}

// FirstPageWithID returns the first page id has been located on.
func (t *Tracker) FirstPageWithID(id string) maybe.Maybe[*area.PageViewport] {
	pages := t.idLocations[id]
	if len(pages) == 0 {
		return maybe.Nothing[*area.PageViewport]()
	}
	return maybe.Just(pages[0])
}

// LastPageWithID returns the last page id has been located on.
func (t *Tracker) LastPageWithID(id string) maybe.Maybe[*area.PageViewport] {
	pages := t.idLocations[id]
	if len(pages) == 0 {
		return maybe.Nothing[*area.PageViewport]()
	}
	return maybe.Just(pages[len(pages)-1])
}

// UnresolvedIDs returns the ids with waiters, sorted.
func (t *Tracker) UnresolvedIDs() []string {
	ids := make([]string, 0, len(t.unresolved))
	for id := range t.unresolved {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResolveRemaining is called at the end of a document. Waiters for ids
// which have been located, but are still pending, are resolved with the
// pages known. Every id which has never been located is reported once, and
// its waiters are resolved with nil. Ids are processed in the order they
// were first referenced.
func (t *Tracker) ResolveRemaining() {
	order := t.unresolvedOrder
	t.unresolvedOrder = nil
	for _, id := range order {
		if _, ok := t.unresolved[id]; !ok {
			continue
		}
		delete(t.unfinished, id)
		if len(t.idLocations[id]) > 0 {
			t.resolveWaiters(id)
			continue
		}
		event.Emit(t.listener, event.Event{Kind: event.UnresolvedIDReference, ID: id})
		waiters := t.unresolved[id]
		delete(t.unresolved, id)
		t.alreadyResolved[id] = true
		for _, res := range waiters {
			res.ResolveIDRef(id, nil)
		}
	}
}

// resolveWaiters hands the pages of id to every waiter for id.
func (t *Tracker) resolveWaiters(id string) {
	t.alreadyResolved[id] = true
	waiters, ok := t.unresolved[id]
	if !ok {
		return
	}
	delete(t.unresolved, id)
	t.unresolvedOrder = slices.DeleteFunc(t.unresolvedOrder, func(s string) bool { return s == id })
	pages := t.idLocations[id]
	tracer().P("id", id).Debugf("resolving %d waiter(s) with %d page(s)", len(waiters), len(pages))
	for _, res := range waiters {
		res.ResolveIDRef(id, slices.Clone(pages))
	}
}

func (t *Tracker) removeWaiter(id string, res area.Resolvable) {
	waiters, ok := t.unresolved[id]
	if !ok {
		return
	}
	waiters = slices.DeleteFunc(waiters, func(r area.Resolvable) bool { return r == res })
	if len(waiters) > 0 {
		t.unresolved[id] = waiters
		return
	}
	delete(t.unresolved, id)
	t.unresolvedOrder = slices.DeleteFunc(t.unresolvedOrder, func(s string) bool { return s == id })
}
