package area

import (
	"slices"

	"github.com/beevik/etree"
)

// Resolvable is implemented by objects referencing ids which may not be
// known at the time the object is created.
type Resolvable interface {
	// IDRefs returns the ids still unresolved.
	IDRefs() []string
	// ResolveIDRef delivers the pages carrying id, in document order. pages
	// is nil if id could not be found anywhere in the document.
	ResolveIDRef(id string, pages []*PageViewport)
	// IsResolved is true if all ids referenced have been resolved.
	IsResolved() bool
}

// Timing tells when an off-document item is to be processed.
type Timing uint8

// Timings for off-document items.
const (
	Immediately Timing = iota
	AfterPage
	EndOfDocument
)

var timingNames = [...]string{"immediately", "after-page", "end-of-document"}

func (t Timing) String() string {
	if int(t) < len(timingNames) {
		return timingNames[t]
	}
	return "?"
}

// OffDocumentItem is content of the area tree which is not part of any page,
// such as bookmarks and named destinations.
type OffDocumentItem interface {
	Name() string
	WhenToProcess() Timing
}

// --- Bookmarks -------------------------------------------------------------

// BookmarkTree is the outline of a document.
type BookmarkTree struct {
	bookmarks []*Bookmark
}

var _ Resolvable = (*BookmarkTree)(nil)

// NewBookmarkTree creates an empty bookmark tree.
func NewBookmarkTree() *BookmarkTree {
	return &BookmarkTree{}
}

// Name returns "bookmarks".
func (bt *BookmarkTree) Name() string { return "bookmarks" }

// WhenToProcess returns EndOfDocument.
func (bt *BookmarkTree) WhenToProcess() Timing { return EndOfDocument }

// AddBookmark appends a top-level bookmark.
func (bt *BookmarkTree) AddBookmark(b *Bookmark) {
	bt.bookmarks = append(bt.bookmarks, b)
}

// Bookmarks returns the top-level bookmarks.
func (bt *BookmarkTree) Bookmarks() []*Bookmark {
	return slices.Clone(bt.bookmarks)
}

// IDRefs returns the unresolved ids of all bookmarks of the tree, each id
// once, in document order of the bookmarks.
func (bt *BookmarkTree) IDRefs() []string {
	var ids []string
	for _, b := range bt.bookmarks {
		ids = b.collectIDRefs(ids)
	}
	return ids
}

// ResolveIDRef resolves all bookmarks of the tree referencing id.
func (bt *BookmarkTree) ResolveIDRef(id string, pages []*PageViewport) {
	for _, b := range bt.bookmarks {
		b.ResolveIDRef(id, pages)
	}
}

// IsResolved is true if all bookmarks of the tree are resolved.
func (bt *BookmarkTree) IsResolved() bool {
	return len(bt.IDRefs()) == 0
}

// Bookmark is an entry of the bookmark tree, pointing to the page carrying
// an id.
type Bookmark struct {
	title        string
	showChildren bool
	idref        string
	pageKey      string
	resolved     bool
	children     []*Bookmark
}

// NewBookmark creates an unresolved bookmark to id idref.
func NewBookmark(title string, showChildren bool, idref string) *Bookmark {
	return &Bookmark{title: title, showChildren: showChildren, idref: idref}
}

// Title returns the title of the bookmark.
func (b *Bookmark) Title() string { return b.title }

// ShowChildren tells if the children of the bookmark are initially shown.
func (b *Bookmark) ShowChildren() bool { return b.showChildren }

// IDRef returns the id the bookmark points to.
func (b *Bookmark) IDRef() string { return b.idref }

// PageKey returns the key of the target page, or "" if unresolved or
// dangling.
func (b *Bookmark) PageKey() string { return b.pageKey }

// SetPageKey resolves the bookmark to a known page.
func (b *Bookmark) SetPageKey(key string) {
	b.pageKey = key
	b.resolved = true
}

// TargetResolved is true once the bookmark itself has been resolved,
// regardless of its children. A resolved bookmark with an empty page key
// points to an id which does not exist.
func (b *Bookmark) TargetResolved() bool { return b.resolved }

// AddChild appends a child bookmark.
func (b *Bookmark) AddChild(c *Bookmark) {
	b.children = append(b.children, c)
}

// Children returns the child bookmarks.
func (b *Bookmark) Children() []*Bookmark {
	return slices.Clone(b.children)
}

func (b *Bookmark) collectIDRefs(ids []string) []string {
	if !b.resolved && !slices.Contains(ids, b.idref) {
		ids = append(ids, b.idref)
	}
	for _, c := range b.children {
		ids = c.collectIDRefs(ids)
	}
	return ids
}

// IDRefs returns the unresolved ids of the bookmark and its children.
func (b *Bookmark) IDRefs() []string {
	return b.collectIDRefs(nil)
}

// ResolveIDRef resolves the bookmark and all of its children referencing id.
func (b *Bookmark) ResolveIDRef(id string, pages []*PageViewport) {
	if !b.resolved && b.idref == id {
		b.resolved = true
		if len(pages) > 0 {
			b.pageKey = pages[0].Key()
		} else {
			tracer().P("id", id).Infof("bookmark %q points to unknown id", b.title)
		}
	}
	for _, c := range b.children {
		c.ResolveIDRef(id, pages)
	}
}

// IsResolved is true if the bookmark and all of its children are resolved.
func (b *Bookmark) IsResolved() bool {
	return len(b.IDRefs()) == 0
}

// --- Destinations ----------------------------------------------------------

// Destination is a named destination pointing to the page carrying an id.
type Destination struct {
	idref    string
	pageKey  string
	resolved bool
}

// NewDestination creates an unresolved destination for id idref.
func NewDestination(idref string) *Destination {
	return &Destination{idref: idref}
}

// Name returns "destination".
func (d *Destination) Name() string { return "destination" }

// WhenToProcess returns Immediately.
func (d *Destination) WhenToProcess() Timing { return Immediately }

// IDRef returns the id of the destination.
func (d *Destination) IDRef() string { return d.idref }

// PageKey returns the key of the target page, or "".
func (d *Destination) PageKey() string { return d.pageKey }

// SetPageKey resolves the destination to a known page.
func (d *Destination) SetPageKey(key string) {
	d.pageKey = key
	d.resolved = true
}

// IDRefs returns the id of the destination while unresolved.
func (d *Destination) IDRefs() []string {
	if d.resolved {
		return nil
	}
	return []string{d.idref}
}

// ResolveIDRef resolves the destination to the first page carrying id.
func (d *Destination) ResolveIDRef(id string, pages []*PageViewport) {
	if d.resolved || id != d.idref {
		return
	}
	d.resolved = true
	if len(pages) > 0 {
		d.pageKey = pages[0].Key()
	}
}

// IsResolved is true once the destination has been resolved.
func (d *Destination) IsResolved() bool { return d.resolved }

// --- Extension attachments -------------------------------------------------

// ExtensionAttachment is foreign XML content, attached to a page or to the
// document.
type ExtensionAttachment struct {
	namespace string
	element   *etree.Element
	timing    Timing
}

// NewExtensionAttachment creates an extension attachment from an element of
// a foreign namespace. The element is copied.
func NewExtensionAttachment(namespace string, element *etree.Element, timing Timing) *ExtensionAttachment {
	ext := &ExtensionAttachment{namespace: namespace, timing: timing}
	if element != nil {
		ext.element = element.Copy()
	}
	return ext
}

// Name returns the local name of the attached element.
func (ext *ExtensionAttachment) Name() string {
	if ext.element == nil {
		return ""
	}
	return ext.element.Tag
}

// WhenToProcess returns the timing set at creation.
func (ext *ExtensionAttachment) WhenToProcess() Timing { return ext.timing }

// Namespace returns the namespace URI of the attachment.
func (ext *ExtensionAttachment) Namespace() string { return ext.namespace }

// Element returns the attached element.
func (ext *ExtensionAttachment) Element() *etree.Element { return ext.element }
