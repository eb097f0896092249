package area

// Kind enumerates the area variants.
type Kind uint8

// Area kinds. Kind.String() returns the element name of the kind in the
// intermediate format.
const (
	KindRegionViewport Kind = iota
	KindRegionReference
	KindBodyRegion
	KindMainReference
	KindSpan
	KindNormalFlow
	KindBeforeFloat
	KindFootnote
	KindBlock
	KindBlockViewport
	KindLineArea
	KindInlineParent
	KindInlineBlockParent
	KindText
	KindWord
	KindSpace
	KindLeader
	KindPageNumberCitation
	KindViewport
	KindImage
	KindForeignObject
	kindCount
)

var kindNames = [kindCount]string{
	KindRegionViewport:     "regionViewport",
	KindRegionReference:    "regionReference",
	KindBodyRegion:         "regionBody",
	KindMainReference:      "mainReference",
	KindSpan:               "span",
	KindNormalFlow:         "flow",
	KindBeforeFloat:        "beforeFloat",
	KindFootnote:           "footnote",
	KindBlock:              "block",
	KindBlockViewport:      "blockViewport",
	KindLineArea:           "lineArea",
	KindInlineParent:       "inline",
	KindInlineBlockParent:  "inlineblock",
	KindText:               "text",
	KindWord:               "word",
	KindSpace:              "space",
	KindLeader:             "leader",
	KindPageNumberCitation: "pageNumberCitation",
	KindViewport:           "viewport",
	KindImage:              "image",
	KindForeignObject:      "foreignObject",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "?"
}

// IsInline is true for kinds which may be children of line areas.
func (k Kind) IsInline() bool {
	return inlineKinds.has(k)
}

type kindSet uint32

func kinds(ks ...Kind) kindSet {
	var s kindSet
	for _, k := range ks {
		s |= 1 << k
	}
	return s
}

func (s kindSet) has(k Kind) bool {
	return s&(1<<k) != 0
}

var (
	blockKinds  = kinds(KindBlock, KindBlockViewport)
	inlineKinds = kinds(KindInlineParent, KindInlineBlockParent, KindText, KindSpace, KindLeader,
		KindPageNumberCitation, KindViewport)
)

type childRule struct {
	allowed kindSet
	max     int // 0 for unlimited
}

// childRules tells which kinds of areas may be nested within an area of a
// given kind.
var childRules = [kindCount]childRule{
	KindRegionViewport:     {kinds(KindRegionReference, KindBodyRegion), 1},
	KindRegionReference:    {blockKinds, 0},
	KindBodyRegion:         {kinds(KindBeforeFloat, KindMainReference, KindFootnote), 3},
	KindMainReference:      {kinds(KindSpan), 0},
	KindSpan:               {kinds(KindNormalFlow), 0},
	KindNormalFlow:         {blockKinds, 0},
	KindBeforeFloat:        {blockKinds, 0},
	KindFootnote:           {blockKinds, 0},
	KindBlock:              {blockKinds | kinds(KindLineArea), 0},
	KindBlockViewport:      {blockKinds | kinds(KindLineArea), 0},
	KindLineArea:           {inlineKinds, 0},
	KindInlineParent:       {inlineKinds, 0},
	KindInlineBlockParent:  {blockKinds, 1},
	KindText:               {kinds(KindWord, KindSpace), 0},
	KindPageNumberCitation: {kinds(KindWord, KindSpace), 0},
	KindViewport:           {kinds(KindImage, KindForeignObject), 1},
}

func assertChildAllowed(parent Area, child Area) {
	rule := childRules[parent.Kind()]
	assertThat(rule.allowed.has(child.Kind()), "%s may not contain %s", parent.Kind(), child.Kind())
	assertThat(rule.max == 0 || len(parent.ChildAreas()) < rule.max,
		"%s may not contain more than %d child area(s)", parent.Kind(), rule.max)
	assertThat(child.Parent() == nil, "%s is already attached to a parent", child.Kind())
}

// Class is the area class of an area.
type Class uint8

// Area classes.
const (
	ClassNormal Class = iota
	ClassFixed
	ClassAbsolute
	ClassBeforeFloat
	ClassFootnote
	ClassSideFloat
)

var classNames = [...]string{"normal", "fixed", "absolute", "before-float", "footnote", "side-float"}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "?"
}

// ParseClass finds an area class from its name.
func ParseClass(s string) (Class, bool) {
	for i, n := range classNames {
		if n == s {
			return Class(i), true
		}
	}
	return ClassNormal, false
}
