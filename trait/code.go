package trait

import "fmt"

// Code identifies a trait.
type Code uint8

// Trait codes. The numeric values are dense and below 64, so that a set of
// codes fits into a single machine word.
const (
	ProdID Code = iota
	InternalLink
	ExternalLink
	Font
	FontSize
	Color
	Background
	Underline
	UnderlineColor
	Overline
	OverlineColor
	Linethrough
	LinethroughColor
	Blink
	BorderBefore
	BorderAfter
	BorderStart
	BorderEnd
	PaddingBefore
	PaddingAfter
	PaddingStart
	PaddingEnd
	SpaceBefore
	SpaceAfter
	SpaceStart
	SpaceEnd
	StartIndent
	EndIndent
	BreakBefore
	BreakAfter
	IsReferenceArea
	IsViewportArea
	AltText
	Direction
	Role
	codeCount
)

// Class is the value class a trait code admits.
type Class uint8

// Value classes. Each class maps to exactly one Go type:
// ClassInt → int, ClassBool → bool, ClassString → string, ClassColor → ColorValue,
// ClassBorder → BorderProps, ClassInternalLink → InternalLinkValue,
// ClassExternalLink → ExternalLinkValue, ClassFont → FontTriplet,
// ClassBackground → BackgroundValue.
const (
	ClassInt Class = iota
	ClassBool
	ClassString
	ClassColor
	ClassBorder
	ClassInternalLink
	ClassExternalLink
	ClassFont
	ClassBackground
)

var classNames = [...]string{"int", "bool", "string", "color", "border", "internal-link",
	"external-link", "font", "background"}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "?"
}

type descriptor struct {
	name  string
	class Class
}

var descriptors = [codeCount]descriptor{
	ProdID:           {"prod-id", ClassString},
	InternalLink:     {"internal-link", ClassInternalLink},
	ExternalLink:     {"external-link", ClassExternalLink},
	Font:             {"font", ClassFont},
	FontSize:         {"font-size", ClassInt},
	Color:            {"color", ClassColor},
	Background:       {"background", ClassBackground},
	Underline:        {"underline-score", ClassBool},
	UnderlineColor:   {"underline-score-color", ClassColor},
	Overline:         {"overline-score", ClassBool},
	OverlineColor:    {"overline-score-color", ClassColor},
	Linethrough:      {"through-score", ClassBool},
	LinethroughColor: {"through-score-color", ClassColor},
	Blink:            {"blink", ClassBool},
	BorderBefore:     {"border-before", ClassBorder},
	BorderAfter:      {"border-after", ClassBorder},
	BorderStart:      {"border-start", ClassBorder},
	BorderEnd:        {"border-end", ClassBorder},
	PaddingBefore:    {"padding-before", ClassInt},
	PaddingAfter:     {"padding-after", ClassInt},
	PaddingStart:     {"padding-start", ClassInt},
	PaddingEnd:       {"padding-end", ClassInt},
	SpaceBefore:      {"space-before", ClassInt},
	SpaceAfter:       {"space-after", ClassInt},
	SpaceStart:       {"space-start", ClassInt},
	SpaceEnd:         {"space-end", ClassInt},
	StartIndent:      {"start-indent", ClassInt},
	EndIndent:        {"end-indent", ClassInt},
	BreakBefore:      {"break-before", ClassInt},
	BreakAfter:       {"break-after", ClassInt},
	IsReferenceArea:  {"is-reference-area", ClassBool},
	IsViewportArea:   {"is-viewport-area", ClassBool},
	AltText:          {"alt-text", ClassString},
	Direction:        {"direction", ClassString},
	Role:             {"role", ClassString},
}

var codesByName map[string]Code

func init() {
	codesByName = make(map[string]Code, codeCount)
	for c, d := range descriptors {
		codesByName[d.name] = Code(c)
	}
}

// Valid is true for codes of the enumeration.
func (c Code) Valid() bool {
	return c < codeCount
}

// Name returns the external name of a trait, as used for attributes in
// the intermediate format.
func (c Code) Name() string {
	if !c.Valid() {
		return fmt.Sprintf("unknown-trait-%d", c)
	}
	return descriptors[c].name
}

func (c Code) String() string {
	return c.Name()
}

// Class returns the value class of a trait code.
func (c Code) Class() Class {
	assertValid(c)
	return descriptors[c].class
}

// CodeByName finds a trait code from its external name.
func CodeByName(name string) (Code, bool) {
	c, ok := codesByName[name]
	return c, ok
}

// AllCodes returns every trait code in ascending order.
func AllCodes() []Code {
	codes := make([]Code, codeCount)
	for i := range codes {
		codes[i] = Code(i)
	}
	return codes
}

func assertValid(c Code) {
	if !c.Valid() {
		panic(fmt.Sprintf("trait: invalid trait code %d", c))
	}
}

// --- Subsets ---------------------------------------------------------------

// Set is a set of trait codes.
type Set uint64

// SetOf creates a set from a list of codes.
func SetOf(codes ...Code) Set {
	var s Set
	for _, c := range codes {
		assertValid(c)
		s |= 1 << c
	}
	return s
}

// Contains is true if c is an element of s.
func (s Set) Contains(c Code) bool {
	return c.Valid() && s&(1<<c) != 0
}

// Union returns s ∪ t.
func (s Set) Union(t Set) Set {
	return s | t
}

// Trait subsets, used for deciding which traits are externalized for an area.
var (
	SubsetCommon = SetOf(ProdID, IsReferenceArea, IsViewportArea, AltText, Direction, Role)
	SubsetBox    = SetOf(Background, BorderBefore, BorderAfter, BorderStart, BorderEnd,
		PaddingBefore, PaddingAfter, PaddingStart, PaddingEnd,
		SpaceBefore, SpaceAfter, SpaceStart, SpaceEnd,
		StartIndent, EndIndent, BreakBefore, BreakAfter)
	SubsetColor = SetOf(Color)
	SubsetFont  = SetOf(Font, FontSize, Blink, Underline, UnderlineColor, Overline, OverlineColor,
		Linethrough, LinethroughColor)
	SubsetLink = SetOf(InternalLink, ExternalLink)
)
