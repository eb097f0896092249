package render

import (
	"fmt"
	"slices"

	"github.com/npillmayer/areatree/area"
)

// Recorder is a renderer which records the calls it receives, e.g. to
// trace the order in which pages are rendered.
type Recorder struct {
	OutOfOrder bool
	// Fail maps page keys (or extension names) to errors returned when
	// rendering them.
	Fail  map[string]error
	calls []string
}

var _ Renderer = (*Recorder)(nil)

// Calls returns the recorded calls, e.g. "render P3".
func (r *Recorder) Calls() []string {
	return slices.Clone(r.calls)
}

// RenderedPages returns the keys of rendered pages in rendering order.
func (r *Recorder) RenderedPages() []string {
	var keys []string
	for _, c := range r.calls {
		var key string
		if n, _ := fmt.Sscanf(c, "render %s", &key); n == 1 {
			keys = append(keys, key)
		}
	}
	return keys
}

func (r *Recorder) record(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

// SupportsOutOfOrder returns r.OutOfOrder.
func (r *Recorder) SupportsOutOfOrder() bool { return r.OutOfOrder }

// StartRenderer records "start".
func (r *Recorder) StartRenderer() error {
	r.record("start")
	return nil
}

// StartPageSequence records "sequence <n>", n being the page count of the
// sequence at the time of the call.
func (r *Recorder) StartPageSequence(ps *area.PageSequence) error {
	r.record("sequence %d", ps.PageCount())
	return nil
}

// PreparePage records "prepare <key>".
func (r *Recorder) PreparePage(pv *area.PageViewport) error {
	r.record("prepare %s", pv.Key())
	return nil
}

// RenderPage records "render <key>", or fails as configured.
func (r *Recorder) RenderPage(pv *area.PageViewport) error {
	if err := r.Fail[pv.Key()]; err != nil {
		r.record("fail %s", pv.Key())
		return err
	}
	r.record("render %s", pv.Key())
	return nil
}

// RenderExtension records "extension <name>", or fails as configured.
func (r *Recorder) RenderExtension(item area.OffDocumentItem) error {
	if err := r.Fail[item.Name()]; err != nil {
		return err
	}
	r.record("extension %s", item.Name())
	return nil
}

// StopRenderer records "stop".
func (r *Recorder) StopRenderer() error {
	r.record("stop")
	return nil
}
