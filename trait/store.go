package trait

import (
	"fmt"
	"math/bits"
	"strings"
)

// TypeError is raised (as a panic) when a trait value does not match the
// class of its code.
type TypeError struct {
	Code  Code
	Want  Class
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("trait %s expects a value of class %s, have %T", e.Code, e.Want, e.Value)
}

// Store is a sparse map from trait codes to values. The zero value is an
// empty store, ready to use. A Store is a value type: copying it copies all
// traits, which are immutable values themselves.
type Store struct {
	present uint64
	values  [codeCount]any
}

// Set stores a value for c, replacing an existing one. Set panics with a
// *TypeError if v is not of the class of c.
func (s *Store) Set(c Code, v any) {
	assertValid(c)
	if !classMatches(c.Class(), v) {
		panic(&TypeError{Code: c, Want: c.Class(), Value: v})
	}
	s.values[c] = v
	s.present |= 1 << c
}

// Get returns the value for c, if present.
func (s *Store) Get(c Code) (any, bool) {
	if !s.Has(c) {
		return nil, false
	}
	return s.values[c], true
}

// Has is true if a value for c is present.
func (s *Store) Has(c Code) bool {
	return c.Valid() && s.present&(1<<c) != 0
}

// Delete removes the value for c.
func (s *Store) Delete(c Code) {
	if c.Valid() {
		s.values[c] = nil
		s.present &^= 1 << c
	}
}

// Len returns the number of traits present.
func (s *Store) Len() int {
	return bits.OnesCount64(s.present)
}

// Codes returns the codes present, in ascending order.
func (s *Store) Codes() []Code {
	codes := make([]Code, 0, s.Len())
	for p := s.present; p != 0; p &= p - 1 {
		codes = append(codes, Code(bits.TrailingZeros64(p)))
	}
	return codes
}

// Each calls f for every trait present, in ascending order of codes.
func (s *Store) Each(f func(Code, any)) {
	for _, c := range s.Codes() {
		f(c, s.values[c])
	}
}

// Clone returns a copy of s.
func (s *Store) Clone() Store {
	return *s
}

// Equal is true if s and t hold the same codes with equal values.
func (s *Store) Equal(t *Store) bool {
	if s.present != t.present {
		return false
	}
	for _, c := range s.Codes() {
		if s.values[c] != t.values[c] {
			return false
		}
	}
	return true
}

func (s *Store) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range s.Codes() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.Name())
		b.WriteByte('=')
		b.WriteString(Format(c, s.values[c]))
	}
	b.WriteByte('}')
	return b.String()
}

// --- Typed getters ---------------------------------------------------------

// Typed getters return the zero value for absent traits and panic with a
// *TypeError if the class of c does not match the requested type.

func getAs[T any](s *Store, c Code, class Class) T {
	var zero T
	assertValid(c)
	if c.Class() != class {
		panic(&TypeError{Code: c, Want: c.Class(), Value: zero})
	}
	if !s.Has(c) {
		return zero
	}
	return s.values[c].(T)
}

// Int returns an integer trait.
func (s *Store) Int(c Code) int { return getAs[int](s, c, ClassInt) }

// IntOr returns an integer trait or a default value, if absent.
func (s *Store) IntOr(c Code, dflt int) int {
	if !s.Has(c) {
		return dflt
	}
	return s.Int(c)
}

// Bool returns a boolean trait.
func (s *Store) Bool(c Code) bool { return getAs[bool](s, c, ClassBool) }

// Str returns a string trait.
func (s *Store) Str(c Code) string { return getAs[string](s, c, ClassString) }

// Color returns a color trait.
func (s *Store) Color(c Code) ColorValue { return getAs[ColorValue](s, c, ClassColor) }

// Border returns a border trait.
func (s *Store) Border(c Code) BorderProps { return getAs[BorderProps](s, c, ClassBorder) }

// InternalLink returns the internal link trait.
func (s *Store) InternalLink() InternalLinkValue {
	return getAs[InternalLinkValue](s, InternalLink, ClassInternalLink)
}

// ExternalLink returns the external link trait.
func (s *Store) ExternalLink() ExternalLinkValue {
	return getAs[ExternalLinkValue](s, ExternalLink, ClassExternalLink)
}

// Font returns the font trait.
func (s *Store) Font() FontTriplet { return getAs[FontTriplet](s, Font, ClassFont) }

// Background returns the background trait.
func (s *Store) Background() BackgroundValue {
	return getAs[BackgroundValue](s, Background, ClassBackground)
}

func classMatches(class Class, v any) bool {
	switch v.(type) {
	case int:
		return class == ClassInt
	case bool:
		return class == ClassBool
	case string:
		return class == ClassString
	case ColorValue:
		return class == ClassColor
	case BorderProps:
		return class == ClassBorder
	case InternalLinkValue:
		return class == ClassInternalLink
	case ExternalLinkValue:
		return class == ClassExternalLink
	case FontTriplet:
		return class == ClassFont
	case BackgroundValue:
		return class == ClassBackground
	}
	return false
}
