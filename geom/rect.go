package geom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedRect is returned if a rectangle cannot be parsed from its string form.
var ErrMalformedRect = errors.New("malformed rectangle")

// Rect is a rectangle in millipoints.
type Rect struct {
	X, Y, W, H int
}

// R is a shortcut to create a rectangle.
func R(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// IsEmpty is true for rectangles without extent.
func (r Rect) IsEmpty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains is true if the point (x, y) lies within r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// String returns r as "x y w h".
func (r Rect) String() string {
	return fmt.Sprintf("%d %d %d %d", r.X, r.Y, r.W, r.H)
}

// ParseRect reads a rectangle in the format produced by Rect.String.
func ParseRect(s string) (Rect, error) {
	f, err := parseFields(s, 4, ErrMalformedRect)
	if err != nil {
		return Rect{}, err
	}
	var n [4]int
	for i := range f {
		if n[i], err = strconv.Atoi(f[i]); err != nil {
			return Rect{}, fmt.Errorf("%w: %v", ErrMalformedRect, err)
		}
	}
	return Rect{X: n[0], Y: n[1], W: n[2], H: n[3]}, nil
}

// FRect is a rectangle with fractional components, used for the position
// of viewport content, which may be scaled.
type FRect struct {
	X, Y, W, H float64
}

// String returns r as "x y w h".
func (r FRect) String() string {
	return strings.Join([]string{ftoa(r.X), ftoa(r.Y), ftoa(r.W), ftoa(r.H)}, " ")
}

// ParseFRect reads a rectangle in the format produced by FRect.String.
func ParseFRect(s string) (FRect, error) {
	f, err := parseFields(s, 4, ErrMalformedRect)
	if err != nil {
		return FRect{}, err
	}
	var n [4]float64
	for i := range f {
		if n[i], err = strconv.ParseFloat(f[i], 64); err != nil {
			return FRect{}, fmt.Errorf("%w: %v", ErrMalformedRect, err)
		}
	}
	return FRect{X: n[0], Y: n[1], W: n[2], H: n[3]}, nil
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFields(s string, n int, e error) ([]string, error) {
	f := strings.Fields(s)
	if len(f) != n {
		return nil, fmt.Errorf("%w: expected %d components in %q", e, n, s)
	}
	return f, nil
}
