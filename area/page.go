package area

import (
	"sync"

	"github.com/npillmayer/areatree/geom"
)

// Page is the content of a page viewport: up to five region viewports, one
// per region class. All region viewports of a page share the page's lock.
type Page struct {
	mx      *sync.RWMutex
	regions [regionCount]*RegionViewport
}

// NewPage creates an empty page.
func NewPage() *Page {
	return &Page{mx: &sync.RWMutex{}}
}

// SetRegionViewport places a region viewport for a region class. It panics
// if the page already holds a viewport for rc.
func (p *Page) SetRegionViewport(rc RegionClass, rv *RegionViewport) {
	assertThat(rc < regionCount, "illegal region class %d", rc)
	assertThat(p.regions[rc] == nil, "page already holds a region viewport for %s", rc)
	assertThat(rv.Parent() == nil, "region viewport is already attached to a parent")
	rv.mx = p.mx
	p.regions[rc] = rv
}

// RegionViewport returns the region viewport for a region class, or nil.
func (p *Page) RegionViewport(rc RegionClass) *RegionViewport {
	if rc >= regionCount {
		return nil
	}
	return p.regions[rc]
}

// BodyRegion returns the body region of the page, or nil.
func (p *Page) BodyRegion() *BodyRegion {
	rv := p.regions[RegionBody]
	if rv == nil {
		return nil
	}
	br, _ := rv.RegionReference().(*BodyRegion)
	return br
}

// IsEmpty is true if no region of the page carries content.
func (p *Page) IsEmpty() bool {
	for _, rv := range p.regions {
		if rv == nil {
			continue
		}
		switch r := rv.RegionReference().(type) {
		case *BodyRegion:
			if !r.IsEmpty() {
				return false
			}
		case *RegionReference:
			if !r.IsEmpty() {
				return false
			}
		}
	}
	return true
}

// Clone creates a copy of the page with fresh region trees, as used by page
// masters to stamp out new pages.
func (p *Page) Clone() *Page {
	c := NewPage()
	for rc, rv := range p.regions {
		if rv != nil {
			c.SetRegionViewport(RegionClass(rc), rv.Clone().(*RegionViewport))
		}
	}
	return c
}

// Walk calls action for every area of the page, region by region in
// before, start, body, end, after order.
func (p *Page) Walk(action func(a Area, depth int) error) error {
	for _, rv := range p.regions {
		if rv == nil {
			continue
		}
		if err := Walk(rv, action); err != nil {
			return err
		}
	}
	return nil
}

// PageMaster stamps out pages of a common layout.
type PageMaster struct {
	name     string
	viewArea geom.Rect
	template *Page
}

// NewPageMaster creates a page master. template holds the (empty) region
// structure every page of the master starts with. If template is nil, pages
// start without regions.
func NewPageMaster(name string, viewArea geom.Rect, template *Page) *PageMaster {
	if template == nil {
		template = NewPage()
	}
	return &PageMaster{name: name, viewArea: viewArea, template: template}
}

// Name returns the name of the page master.
func (pm *PageMaster) Name() string { return pm.name }

// ViewArea returns the bounds of pages of this master.
func (pm *PageMaster) ViewArea() geom.Rect { return pm.viewArea }

// NewPage creates a page viewport with a fresh copy of the template page.
func (pm *PageMaster) NewPage(key string, number int, formatted string, blank bool) *PageViewport {
	pv := NewPageViewport(key, pm.viewArea, number, formatted)
	pv.masterName = pm.name
	pv.blank = blank
	pv.SetPage(pm.template.Clone())
	return pv
}
