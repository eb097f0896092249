package areatree

import (
	"errors"
	"fmt"
	"io"

	"github.com/npillmayer/areatree/area"
	"github.com/npillmayer/areatree/config"
	"github.com/npillmayer/areatree/event"
	"github.com/npillmayer/areatree/model"
	"github.com/npillmayer/areatree/pagecache"
	"github.com/npillmayer/areatree/render"
	"github.com/npillmayer/areatree/resolve"
	"golang.org/x/text/language"
)

// Handler receives the output of layout and builds the area tree.
type Handler struct {
	model     model.Model
	tracker   *resolve.Tracker
	listener  event.Listener
	store     pagecache.Store // closed at the end of the document, may be nil
	pageCount int
	waiting   []area.OffDocumentItem // off-document items waiting for ids
	ended     bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithListener sets the receiver of warnings about unresolved references
// and failing pages.
func WithListener(l event.Listener) Option {
	return func(h *Handler) {
		h.listener = l
	}
}

// WithTracker lets the handler use an existing id tracker.
func WithTracker(t *resolve.Tracker) Option {
	return func(h *Handler) {
		h.tracker = t
	}
}

// New creates a handler feeding model m.
func New(m model.Model, opts ...Option) *Handler {
	h := &Handler{model: m}
	for _, opt := range opts {
		opt(h)
	}
	if h.tracker == nil {
		h.tracker = resolve.NewTracker(h.listener)
	}
	return h
}

// NewFromConfig creates a handler rendering to w. The renderer is created
// from reg by the configured name. If the configuration enables the page
// cache, prepared pages are swapped out to disk.
func NewFromConfig(cfg *config.Config, reg *render.Registry, w io.Writer, opts ...Option) (*Handler, error) {
	r, err := reg.Create(cfg.Renderer.Name, cfg.RenderOptions(w))
	if err != nil {
		return nil, err
	}
	h := New(nil, opts...)
	var mopts []model.Option
	if h.listener != nil {
		mopts = append(mopts, model.WithListener(h.listener))
	}
	if cfg.Cache.Enabled {
		store, err := pagecache.NewDiskStore(cfg.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("creating page cache: %w", err)
		}
		h.store = store
		mopts = append(mopts, model.WithPageStore(store))
	}
	m, err := model.NewRenderPagesModel(r, mopts...)
	if err != nil {
		if h.store != nil {
			h.store.Close()
		}
		return nil, err
	}
	h.model = m
	tracer().Debugf("area tree handler rendering with %q", cfg.Renderer.Name)
	return h, nil
}

// Model returns the model the handler feeds.
func (h *Handler) Model() model.Model {
	return h.model
}

// Tracker returns the id tracker of the handler.
func (h *Handler) Tracker() *resolve.Tracker {
	return h.tracker
}

// StartPageSequence starts a new page sequence with an optional title.
func (h *Handler) StartPageSequence(title *area.LineArea, lang language.Tag) (*area.PageSequence, error) {
	ps := area.NewPageSequence(title, lang)
	if err := h.model.StartPageSequence(ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// NewPage creates a page viewport from a page master. Page viewports are
// keyed "P1", "P2", … in order of creation.
func (h *Handler) NewPage(master *area.PageMaster, number int, formatted string, blank bool) *area.PageViewport {
	h.pageCount++
	return master.NewPage(fmt.Sprintf("P%d", h.pageCount), number, formatted, blank)
}

// AssociateIDWithPage records that an area with id is on page pv. Pages and
// items waiting for id are resolved, unless id is pending.
func (h *Handler) AssociateIDWithPage(id string, pv *area.PageViewport) {
	h.tracker.AssociateIDWithPageViewport(id, pv)
}

// SignalPendingID tells that areas with id are still being generated, e.g.
// for citations of the last page of id.
func (h *Handler) SignalPendingID(id string) {
	h.tracker.SignalPendingID(id)
}

// SignalIDProcessed tells that all areas with id have been generated.
func (h *Handler) SignalIDProcessed(id string) {
	h.tracker.SignalIDProcessed(id)
}

// AddUnresolvedArea registers an area of page pv waiting for id. Areas
// found unresolved by FinishPage need not be registered explicitly.
func (h *Handler) AddUnresolvedArea(id string, res area.Resolvable, pv *area.PageViewport) {
	pv.AddUnresolvedIDRef(id, res)
	h.tracker.AddUnresolvedIDRef(id, pv)
}

// FinishPage hands a laid out page to the model. Unresolved areas of the
// page are registered, and resolved with the ids already located.
func (h *Handler) FinishPage(pv *area.PageViewport) error {
	if ids := pv.RegisterResolvables(); len(ids) > 0 {
		tracer().P("page", pv.Key()).Debugf("page references %v", ids)
	}
	for _, id := range pv.IDRefs() {
		h.tracker.AddUnresolvedIDRef(id, pv)
	}
	h.tracker.TryIDResolution(pv)
	if err := h.model.AddPage(pv); err != nil {
		return err
	}
	return h.submitResolved()
}

// HandleOffDocumentItem hands an item to the model. Items referencing ids
// not yet located are held back until they are resolved.
func (h *Handler) HandleOffDocumentItem(item area.OffDocumentItem) error {
	res, ok := item.(area.Resolvable)
	if !ok || res.IsResolved() {
		return h.model.HandleOffDocumentItem(item)
	}
	for _, id := range res.IDRefs() {
		h.tracker.AddUnresolvedIDRef(id, res)
	}
	h.tracker.TryIDResolution(res)
	if res.IsResolved() {
		return h.model.HandleOffDocumentItem(item)
	}
	tracer().Debugf("%s waits for %v", item.Name(), res.IDRefs())
	h.waiting = append(h.waiting, item)
	return nil
}

// submitResolved hands the waiting items which have been resolved to the
// model, in the order they were received.
func (h *Handler) submitResolved() error {
	rest := h.waiting[:0]
	var err error
	for _, item := range h.waiting {
		if err != nil || !item.(area.Resolvable).IsResolved() {
			rest = append(rest, item)
			continue
		}
		err = h.model.HandleOffDocumentItem(item)
	}
	h.waiting = rest
	return err
}

// EndDocument resolves all remaining references, reporting ids which have
// never been located, and finishes the model. A page cache created by
// NewFromConfig is removed.
func (h *Handler) EndDocument() error {
	if h.ended {
		return nil
	}
	h.ended = true
	if ids := h.tracker.UnresolvedIDs(); len(ids) > 0 {
		tracer().Infof("resolving %d remaining id(s) at end of document", len(ids))
	}
	h.tracker.ResolveRemaining()
	err := h.submitResolved()
	if err == nil {
		err = h.model.EndDocument()
	}
	if h.store != nil {
		err = errors.Join(err, h.store.Close())
	}
	return err
}
