package model

import (
	"errors"
	"fmt"

	"github.com/npillmayer/areatree/area"
	"github.com/npillmayer/areatree/event"
	"github.com/npillmayer/areatree/render"
	"github.com/npillmayer/areatree/result"
)

// PageStore swaps the content of page viewports out of memory and back in.
// Save stores the content of a page and clears it from the viewport. Load
// attaches the stored content to the viewport again and frees the storage,
// whether loading succeeds or not.
type PageStore interface {
	Save(pv *area.PageViewport) error
	Load(pv *area.PageViewport) error
}

// RenderPagesModel is an area tree model which hands pages to a renderer
// as soon as possible.
type RenderPagesModel struct {
	*AreaTreeModel
	renderer render.Renderer
	store    PageStore
	listener event.Listener
	prepared []*area.PageViewport
	swapped  map[*area.PageViewport]bool
	started  map[*area.PageSequence]bool
	afterODI []area.OffDocumentItem // processed after the next page
	endODI   []area.OffDocumentItem // processed at the end of the document
}

var _ Model = (*RenderPagesModel)(nil)

// Option configures a RenderPagesModel.
type Option func(*RenderPagesModel)

// WithPageStore lets the model swap prepared pages out to a store.
func WithPageStore(s PageStore) Option {
	return func(m *RenderPagesModel) {
		m.store = s
	}
}

// WithListener sets the receiver of warnings about skipped pages and
// unresolved references.
func WithListener(l event.Listener) Option {
	return func(m *RenderPagesModel) {
		m.listener = l
	}
}

// NewRenderPagesModel creates a model rendering to r, and starts r.
func NewRenderPagesModel(r render.Renderer, opts ...Option) (*RenderPagesModel, error) {
	m := &RenderPagesModel{
		AreaTreeModel: NewAreaTreeModel(),
		renderer:      r,
		swapped:       make(map[*area.PageViewport]bool),
		started:       make(map[*area.PageSequence]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := r.StartRenderer(); err != nil {
		return nil, fmt.Errorf("cannot start renderer: %w", err)
	}
	return m, nil
}

// Renderer returns the renderer of the model.
func (m *RenderPagesModel) Renderer() render.Renderer {
	return m.renderer
}

// StartPageSequence opens a new page sequence. Renderers supporting
// out-of-order rendering are told about the sequence right away; other
// renderers when its first page is rendered.
func (m *RenderPagesModel) StartPageSequence(ps *area.PageSequence) error {
	if err := m.AreaTreeModel.StartPageSequence(ps); err != nil {
		return err
	}
	if m.renderer.SupportsOutOfOrder() {
		return m.startSequence(ps)
	}
	return nil
}

func (m *RenderPagesModel) startSequence(ps *area.PageSequence) error {
	if ps == nil || m.started[ps] {
		return nil
	}
	m.started[ps] = true
	return m.renderer.StartPageSequence(ps)
}

// AddPage adds a page to the current page sequence. The page is rendered
// at once if the renderer supports out-of-order rendering and the page is
// resolved; otherwise it is prepared. Then all prepared pages which have
// become renderable are rendered. An error is returned only if the
// document has to be aborted.
func (m *RenderPagesModel) AddPage(pv *area.PageViewport) error {
	if err := m.AreaTreeModel.AddPage(pv); err != nil {
		return err
	}
	if m.renderer.SupportsOutOfOrder() && pv.IsResolved() {
		if err := m.renderPage(pv); err != nil {
			return err
		}
	} else {
		m.preparePage(pv)
	}
	cont, err := m.checkPreparedPages(false)
	if err != nil {
		return err
	}
	if cont {
		items := m.afterODI
		m.afterODI = nil
		return m.processOffDocumentItems(items)
	}
	return nil
}

// HandleOffDocumentItem processes an item immediately, after the next
// page, or at the end of the document, as the item requests.
func (m *RenderPagesModel) HandleOffDocumentItem(item area.OffDocumentItem) error {
	m.AreaTreeModel.HandleOffDocumentItem(item)
	switch item.WhenToProcess() {
	case area.Immediately:
		return m.processOffDocumentItems([]area.OffDocumentItem{item})
	case area.AfterPage:
		m.afterODI = append(m.afterODI, item)
	case area.EndOfDocument:
		m.endODI = append(m.endODI, item)
	}
	return nil
}

// EndDocument renders all pages still prepared, whether resolved or not,
// processes the remaining off-document items, and stops the renderer.
func (m *RenderPagesModel) EndDocument() error {
	if _, err := m.checkPreparedPages(true); err != nil {
		return err
	}
	items := append(m.afterODI, m.endODI...)
	m.afterODI, m.endODI = nil, nil
	if err := m.processOffDocumentItems(items); err != nil {
		return err
	}
	return m.renderer.StopRenderer()
}

// PreparedPages returns the pages waiting to be rendered.
func (m *RenderPagesModel) PreparedPages() []*area.PageViewport {
	return append([]*area.PageViewport(nil), m.prepared...)
}

// preparePage queues a page. If a page store is present, the content of
// the page is swapped out. A failing store leaves the page in memory.
func (m *RenderPagesModel) preparePage(pv *area.PageViewport) {
	if m.renderer.SupportsOutOfOrder() {
		if err := m.renderer.PreparePage(pv); err != nil {
			event.Emit(m.listener, event.Event{Kind: event.RenderFailure, PageKey: pv.Key(), Err: err})
		}
	}
	pv.SetState(area.PagePrepared)
	m.prepared = append(m.prepared, pv)
	if m.store == nil || pv.IsCleared() {
		return
	}
	if err := m.store.Save(pv); err != nil {
		event.Emit(m.listener, event.Event{Kind: event.CacheFailure, PageKey: pv.Key(), Err: err})
		return
	}
	m.swapped[pv] = true
	tracer().P("page", pv.Key()).Debugf("page swapped out")
}

// checkPreparedPages renders the prepared pages which may be rendered now.
// For renderers requiring document order, the scan stops at the first
// unresolved page; pages after it are not touched in this pass. If
// renderUnresolved is set, all pages are rendered. It returns true if
// pages after the last page added may follow.
func (m *RenderPagesModel) checkPreparedPages(renderUnresolved bool) (bool, error) {
	i := 0
	for ; i < len(m.prepared); i++ {
		pv := m.prepared[i]
		if !pv.IsResolved() && !renderUnresolved {
			if !m.renderer.SupportsOutOfOrder() {
				break
			}
			continue
		}
		if err := m.renderPage(pv); err != nil {
			m.prepared = append(m.prepared[:i], m.prepared[i+1:]...)
			return false, err
		}
		m.prepared = append(m.prepared[:i], m.prepared[i+1:]...)
		i--
	}
	return m.renderer.SupportsOutOfOrder() || len(m.prepared) == 0, nil
}

// renderPage loads, renders and clears a page.
func (m *RenderPagesModel) renderPage(pv *area.PageViewport) error {
	loaded := m.loadPage(pv)
	return m.decide(pv, result.AndThen(m.render, loaded))
}

func (m *RenderPagesModel) loadPage(pv *area.PageViewport) result.Result[*area.PageViewport] {
	if !m.swapped[pv] {
		return result.Ok(pv)
	}
	delete(m.swapped, pv)
	if err := m.store.Load(pv); err != nil {
		return result.Err[*area.PageViewport](fmt.Errorf("%w: %w", ErrCache, err))
	}
	tracer().P("page", pv.Key()).Debugf("page swapped in")
	return result.Ok(pv)
}

func (m *RenderPagesModel) render(pv *area.PageViewport) result.Result[area.PageState] {
	for _, id := range pv.IDRefs() {
		event.Emit(m.listener, event.Event{Kind: event.UnresolvedIDReferenceOnPage, ID: id, PageKey: pv.Key()})
	}
	if !m.renderer.SupportsOutOfOrder() {
		if err := m.startSequence(pv.PageSequence()); err != nil {
			return result.Err[area.PageState](err)
		}
	}
	err := m.renderer.RenderPage(pv)
	pv.Clear()
	if err != nil {
		return result.Err[area.PageState](err)
	}
	return result.Ok(area.PageRendered)
}

// decide is the single point deciding about the outcome of rendering a
// page. Errors wrapping render.ErrAbort are returned; all other errors
// mark the page as skipped.
func (m *RenderPagesModel) decide(pv *area.PageViewport, r result.Result[area.PageState]) error {
	var state area.PageState
	var err error
	switch res := r.Match(); res {
	case res.Ok(&state):
		pv.SetState(state)
		return nil
	case res.Err(&err):
		pv.SetState(area.PageSkipped)
		pv.Clear()
		if errors.Is(err, render.ErrAbort) {
			tracer().P("page", pv.Key()).Errorf("aborting document: %v", err)
			return err
		}
		kind := event.RenderFailure
		if errors.Is(err, ErrCache) {
			kind = event.CacheFailure
		}
		event.Emit(m.listener, event.Event{Kind: kind, PageKey: pv.Key(), Err: err})
		event.Emit(m.listener, event.Event{Kind: event.PageSkipped, PageKey: pv.Key()})
	}
	return nil
}

func (m *RenderPagesModel) processOffDocumentItems(items []area.OffDocumentItem) error {
	for _, item := range items {
		err := m.renderer.RenderExtension(item)
		if err == nil {
			continue
		}
		if errors.Is(err, render.ErrAbort) {
			return err
		}
		event.Emit(m.listener, event.Event{Kind: event.RenderFailure, ID: item.Name(), Err: err})
	}
	return nil
}
