package geom

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedCTM is returned if a CTM cannot be parsed from its string form.
var ErrMalformedCTM = errors.New("malformed transformation matrix")

// CTM is a coordinate transformation matrix [a b c d e f], mapping a point
// (x, y) to (a·x + c·y + e, b·x + d·y + f).
type CTM [6]float64

// Identity is the identity transformation.
var Identity = CTM{1, 0, 0, 1, 0, 0}

// Matrices for the writing-mode dependent orientations of reference areas.
var (
	ctmLRTB = CTM{1, 0, 0, 1, 0, 0}
	ctmRLTB = CTM{-1, 0, 0, 1, 0, 0}
	ctmTBRL = CTM{0, 1, -1, 0, 0, 0}
	ctmTBLR = CTM{0, 1, 1, 0, 0, 0}
)

// NewCTM creates a matrix from its six components.
func NewCTM(a, b, c, d, e, f float64) CTM {
	return CTM{a, b, c, d, e, f}
}

// Translation returns a matrix translating by (x, y).
func Translation(x, y float64) CTM {
	return CTM{1, 0, 0, 1, x, y}
}

// IsIdentity is true if m leaves all points unchanged.
func (m CTM) IsIdentity() bool {
	return m == Identity
}

// Multiply returns the transformation which first applies n, then m.
func (m CTM) Multiply(n CTM) CTM {
	return CTM{
		m[0]*n[0] + m[2]*n[1],
		m[1]*n[0] + m[3]*n[1],
		m[0]*n[2] + m[2]*n[3],
		m[1]*n[2] + m[3]*n[3],
		m[0]*n[4] + m[2]*n[5] + m[4],
		m[1]*n[4] + m[3]*n[5] + m[5],
	}
}

// Translate returns m, preceded by a translation of (x, y).
func (m CTM) Translate(x, y float64) CTM {
	return m.Multiply(Translation(x, y))
}

// Scale returns m, preceded by a scaling of (sx, sy).
func (m CTM) Scale(sx, sy float64) CTM {
	return m.Multiply(CTM{sx, 0, 0, sy, 0, 0})
}

// Rotate returns m, preceded by a rotation of angle degrees. Multiples of
// 90 degrees result in exact matrix components.
func (m CTM) Rotate(angle float64) CTM {
	var cos, sin float64
	switch normalizeAngle(angle) {
	case 0:
		cos, sin = 1, 0
	case 90:
		cos, sin = 0, 1
	case 180:
		cos, sin = -1, 0
	case 270:
		cos, sin = 0, -1
	default:
		rad := angle * math.Pi / 180
		cos, sin = math.Cos(rad), math.Sin(rad)
	}
	return m.Multiply(CTM{cos, -sin, sin, cos, 0, 0})
}

func normalizeAngle(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// Transform maps a point.
func (m CTM) Transform(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// TransformRect maps a rectangle and returns the bounding box of the result,
// normalized to non-negative width and height.
func (m CTM) TransformRect(r Rect) Rect {
	x1, y1 := m.Transform(float64(r.X), float64(r.Y))
	x2, y2 := m.Transform(float64(r.X+r.W), float64(r.Y+r.H))
	minx, maxx := math.Min(x1, x2), math.Max(x1, x2)
	miny, maxy := math.Min(y1, y2), math.Max(y1, y2)
	return Rect{
		X: int(math.Round(minx)),
		Y: int(math.Round(miny)),
		W: int(math.Round(maxx - minx)),
		H: int(math.Round(maxy - miny)),
	}
}

// String returns m as six space-separated numbers in square brackets.
func (m CTM) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range m {
		if i > 0 {
			b.WriteByte(' ')
		}
		if v == 0 {
			v = 0 // no negative zero
		}
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	b.WriteByte(']')
	return b.String()
}

// ParseCTM reads a matrix in the format produced by CTM.String.
func ParseCTM(s string) (CTM, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return Identity, fmt.Errorf("%w: %q", ErrMalformedCTM, s)
	}
	fields := strings.Fields(s[1 : len(s)-1])
	if len(fields) != 6 {
		return Identity, fmt.Errorf("%w: expected 6 components, have %d", ErrMalformedCTM, len(fields))
	}
	var m CTM
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Identity, fmt.Errorf("%w: %v", ErrMalformedCTM, err)
		}
		m[i] = v
	}
	return m, nil
}

// WritingMode is the writing mode of a reference area.
type WritingMode uint8

// Writing modes, named by inline progression direction and block progression
// direction.
const (
	LRTB WritingMode = iota
	RLTB
	TBRL
	TBLR
)

func (wm WritingMode) String() string {
	switch wm {
	case LRTB:
		return "lr-tb"
	case RLTB:
		return "rl-tb"
	case TBRL:
		return "tb-rl"
	case TBLR:
		return "tb-lr"
	}
	return "?"
}

// IsVertical is true for writing modes with vertical inline progression.
func (wm WritingMode) IsVertical() bool {
	return wm == TBRL || wm == TBLR
}

// ParseWritingMode recognizes the names produced by WritingMode.String.
func ParseWritingMode(s string) (WritingMode, bool) {
	switch strings.ToLower(s) {
	case "lr-tb", "lr":
		return LRTB, true
	case "rl-tb", "rl":
		return RLTB, true
	case "tb-rl", "tb":
		return TBRL, true
	case "tb-lr":
		return TBLR, true
	}
	return LRTB, false
}

// CTMForWritingMode returns the matrix which maps coordinates relative to
// the inline and block progression directions of a writing mode to
// absolute coordinates, for a reference area of extent ipd × bpd.
func CTMForWritingMode(wm WritingMode, ipd, bpd int) CTM {
	switch wm {
	case RLTB:
		m := ctmRLTB
		m[4] = float64(ipd)
		return m
	case TBRL:
		m := ctmTBRL
		m[4] = float64(bpd)
		return m
	case TBLR:
		return ctmTBLR
	}
	return ctmLRTB
}

// CTMForReferenceOrientation returns the matrix for a reference area rotated
// by a multiple of 90 degrees, with w × h being the extent of the enclosing
// viewport. The rotated content is translated back into the viewport.
func CTMForReferenceOrientation(deg int, w, h int) CTM {
	m := Identity
	switch normalizeAngle(float64(deg)) {
	case 0:
		return m
	case 90:
		m = m.Translate(0, float64(h))
	case 180:
		m = m.Translate(float64(w), float64(h))
	case 270:
		m = m.Translate(float64(w), 0)
	default:
		tracer().Errorf("reference orientation %d is not a multiple of 90 degrees", deg)
		return m
	}
	return m.Rotate(float64(deg))
}
