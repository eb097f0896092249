package area

import (
	"fmt"
	"sort"

	"github.com/npillmayer/areatree/maybe"
	"github.com/npillmayer/areatree/trait"
	"github.com/npillmayer/areatree/tree"
)

// Area is the interface implemented by all area variants. The set of
// variants is closed; every implementation embeds *Base.
type Area interface {
	Kind() Kind
	Node() *tree.Node[Area]
	Parent() Area
	ChildAreas() []Area
	AddChildArea(Area)
	IPD() int
	SetIPD(int)
	BPD() int
	SetBPD(int)
	AllocIPD() int
	AllocBPD() int
	AreaClass() Class
	SetAreaClass(Class)
	BidiLevel() maybe.Maybe[int]
	SetBidiLevel(int)
	ResetBidiLevel()
	Traits() *trait.Store
	AddTrait(trait.Code, any)
	Trait(trait.Code) (any, bool)
	HasTrait(trait.Code) bool
	TraitInt(trait.Code) int
	TraitBool(trait.Code) bool
	ForeignAttributes() []ForeignAttr
	ForeignAttribute(QName) (string, bool)
	SetForeignAttribute(QName, string)
	Clone() Area
	base() *Base
}

// QName is a namespace-qualified name of a foreign attribute.
type QName struct {
	Space string // namespace URI
	Local string
}

func (q QName) String() string {
	if q.Space == "" {
		return q.Local
	}
	return "{" + q.Space + "}" + q.Local
}

// ForeignAttr is an attribute from a namespace other than the area tree's.
type ForeignAttr struct {
	Name  QName
	Value string
}

// Base holds the properties common to all areas. Area variants embed *Base.
type Base struct {
	node    tree.Node[Area]
	kind    Kind
	ipd     int
	bpd     int
	class   Class
	bidi    maybe.Maybe[int]
	traits  trait.Store
	foreign map[QName]string
}

func newBase(kind Kind) *Base {
	return &Base{kind: kind, bidi: maybe.Nothing[int]()}
}

// setSelf links the tree node of b to the area variant embedding b.
// Every constructor of an area variant has to call it.
func (b *Base) setSelf(a Area) {
	b.node.Payload = a
}

func (b *Base) base() *Base {
	return b
}

func (b *Base) self() Area {
	return b.node.Payload
}

// Kind returns the variant of an area.
func (b *Base) Kind() Kind {
	return b.kind
}

// Node returns the tree node of an area.
func (b *Base) Node() *tree.Node[Area] {
	return &b.node
}

// Parent returns the parent area, or nil.
func (b *Base) Parent() Area {
	if p := b.node.Parent(); p != nil {
		return p.Payload
	}
	return nil
}

// ChildAreas returns the children of an area, in order.
func (b *Base) ChildAreas() []Area {
	nodes := b.node.Children(true)
	children := make([]Area, len(nodes))
	for i, n := range nodes {
		children[i] = n.Payload
	}
	return children
}

// AddChildArea appends a child area. It panics if the kind of child may
// not be nested into this area, or if child already has a parent.
// Extents of the parent are left unchanged.
func (b *Base) AddChildArea(child Area) {
	if child == nil {
		return
	}
	assertChildAllowed(b.self(), child)
	b.node.AddChild(child.Node())
	if in, ok := child.(Inline); ok {
		in.inline().flushStoredVariation()
	}
}

// IPD returns the inline progression dimension in millipoints.
func (b *Base) IPD() int { return b.ipd }

// SetIPD sets the inline progression dimension.
func (b *Base) SetIPD(ipd int) { b.ipd = ipd }

// BPD returns the block progression dimension in millipoints.
func (b *Base) BPD() int { return b.bpd }

// SetBPD sets the block progression dimension.
func (b *Base) SetBPD(bpd int) { b.bpd = bpd }

// AllocIPD returns the allocation inline progression dimension: the
// content ipd plus start and end border and padding.
func (b *Base) AllocIPD() int {
	return b.BorderAndPaddingStart() + b.ipd + b.BorderAndPaddingEnd()
}

// AllocBPD returns the allocation block progression dimension: the content
// bpd plus before and after space, border and padding.
func (b *Base) AllocBPD() int {
	return b.SpaceBefore() + b.BorderAndPaddingBefore() + b.bpd +
		b.BorderAndPaddingAfter() + b.SpaceAfter()
}

// BorderAndPaddingStart returns the width of border and padding at the
// start edge.
func (b *Base) BorderAndPaddingStart() int {
	return b.borderWidth(trait.BorderStart) + b.traits.Int(trait.PaddingStart)
}

// BorderAndPaddingEnd returns the width of border and padding at the
// end edge.
func (b *Base) BorderAndPaddingEnd() int {
	return b.borderWidth(trait.BorderEnd) + b.traits.Int(trait.PaddingEnd)
}

// BorderAndPaddingBefore returns the width of border and padding at the
// before edge.
func (b *Base) BorderAndPaddingBefore() int {
	return b.borderWidth(trait.BorderBefore) + b.traits.Int(trait.PaddingBefore)
}

// BorderAndPaddingAfter returns the width of border and padding at the
// after edge.
func (b *Base) BorderAndPaddingAfter() int {
	return b.borderWidth(trait.BorderAfter) + b.traits.Int(trait.PaddingAfter)
}

func (b *Base) borderWidth(c trait.Code) int {
	if !b.traits.Has(c) {
		return 0
	}
	return b.traits.Border(c).Width
}

// SpaceBefore returns the space-before trait.
func (b *Base) SpaceBefore() int { return b.traits.Int(trait.SpaceBefore) }

// SpaceAfter returns the space-after trait.
func (b *Base) SpaceAfter() int { return b.traits.Int(trait.SpaceAfter) }

// StartIndent returns the start-indent trait.
func (b *Base) StartIndent() int { return b.traits.Int(trait.StartIndent) }

// EndIndent returns the end-indent trait.
func (b *Base) EndIndent() int { return b.traits.Int(trait.EndIndent) }

// AreaClass returns the area class.
func (b *Base) AreaClass() Class { return b.class }

// SetAreaClass sets the area class.
func (b *Base) SetAreaClass(c Class) { b.class = c }

// BidiLevel returns the bidi embedding level, if set.
func (b *Base) BidiLevel() maybe.Maybe[int] {
	if b.bidi == nil {
		return maybe.Nothing[int]()
	}
	return b.bidi
}

// SetBidiLevel sets the bidi embedding level.
func (b *Base) SetBidiLevel(level int) {
	b.bidi = maybe.Just(level)
}

// ResetBidiLevel unsets the bidi embedding level.
func (b *Base) ResetBidiLevel() {
	b.bidi = maybe.Nothing[int]()
}

// Traits returns the trait store of an area.
func (b *Base) Traits() *trait.Store {
	return &b.traits
}

// AddTrait sets a trait. It panics if value is not of the class of code.
func (b *Base) AddTrait(code trait.Code, value any) {
	b.traits.Set(code, value)
}

// Trait returns a trait, if present.
func (b *Base) Trait(code trait.Code) (any, bool) {
	return b.traits.Get(code)
}

// HasTrait is true if a trait is present.
func (b *Base) HasTrait(code trait.Code) bool {
	return b.traits.Has(code)
}

// TraitInt returns an integer trait, or 0 if absent.
func (b *Base) TraitInt(code trait.Code) int {
	return b.traits.Int(code)
}

// TraitBool returns a boolean trait, or false if absent.
func (b *Base) TraitBool(code trait.Code) bool {
	return b.traits.Bool(code)
}

// SetForeignAttribute sets an attribute of a foreign namespace.
func (b *Base) SetForeignAttribute(name QName, value string) {
	if b.foreign == nil {
		b.foreign = make(map[QName]string)
	}
	b.foreign[name] = value
}

// ForeignAttribute returns an attribute of a foreign namespace, if set.
func (b *Base) ForeignAttribute(name QName) (string, bool) {
	v, ok := b.foreign[name]
	return v, ok
}

// ForeignAttributes returns all foreign attributes, ordered by namespace
// and local name.
func (b *Base) ForeignAttributes() []ForeignAttr {
	if len(b.foreign) == 0 {
		return nil
	}
	attrs := make([]ForeignAttr, 0, len(b.foreign))
	for k, v := range b.foreign {
		attrs = append(attrs, ForeignAttr{Name: k, Value: v})
	}
	sort.Slice(attrs, func(i, j int) bool {
		if attrs[i].Name.Space != attrs[j].Name.Space {
			return attrs[i].Name.Space < attrs[j].Name.Space
		}
		return attrs[i].Name.Local < attrs[j].Name.Local
	})
	return attrs
}

// Clone returns a deep copy of an area and its descendants. The copy is
// not attached to a parent.
func (b *Base) Clone() Area {
	return cloneTree(b.self())
}

func (b *Base) String() string {
	return fmt.Sprintf("%s[ipd=%d bpd=%d]", b.kind, b.ipd, b.bpd)
}

// copyBase creates a detached copy of the properties of b, without
// children.
func (b *Base) copyBase() *Base {
	c := newBase(b.kind)
	c.ipd, c.bpd = b.ipd, b.bpd
	c.class = b.class
	c.bidi = b.BidiLevel()
	c.traits = b.traits.Clone()
	if len(b.foreign) > 0 {
		c.foreign = make(map[QName]string, len(b.foreign))
		for k, v := range b.foreign {
			c.foreign[k] = v
		}
	}
	return c
}

// Walk calls action for a and all of its descendants, parents first.
func Walk(a Area, action func(a Area, depth int) error) error {
	if a == nil {
		return nil
	}
	return tree.TopDown(a.Node(), func(n *tree.Node[Area], depth int) error {
		return action(n.Payload, depth)
	})
}
