package render

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/npillmayer/areatree/area"
)

// Renderer consumes the pages and off-document items of an area tree.
type Renderer interface {
	// SupportsOutOfOrder tells if pages may be rendered as soon as they are
	// resolved, ahead of earlier unresolved pages.
	SupportsOutOfOrder() bool
	StartRenderer() error
	StartPageSequence(ps *area.PageSequence) error
	// PreparePage is called for pages which cannot be rendered yet.
	PreparePage(pv *area.PageViewport) error
	RenderPage(pv *area.PageViewport) error
	RenderExtension(item area.OffDocumentItem) error
	StopRenderer() error
}

// Options configure a renderer.
type Options struct {
	Writer           io.Writer
	Indent           int  // indentation of structured output, 0 for none
	ConsistentOutput bool // leave out volatile data such as time stamps
}

// Factory creates a renderer.
type Factory func(Options) (Renderer, error)

// Registry maps renderer names to factories.
type Registry struct {
	mx        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under a name, replacing a previous registration.
func (reg *Registry) Register(name string, f Factory) {
	reg.mx.Lock()
	defer reg.mx.Unlock()
	tracer().Debugf("registering renderer %q", name)
	reg.factories[name] = f
}

// Create creates a renderer by name.
func (reg *Registry) Create(name string, opts Options) (Renderer, error) {
	reg.mx.RLock()
	f, ok := reg.factories[name]
	reg.mx.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRenderer, name)
	}
	return f(opts)
}

// Names returns the registered names, sorted.
func (reg *Registry) Names() []string {
	reg.mx.RLock()
	defer reg.mx.RUnlock()
	names := make([]string, 0, len(reg.factories))
	for n := range reg.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
