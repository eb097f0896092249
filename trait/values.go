package trait

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ErrMalformedValue is returned if a trait value cannot be parsed.
var ErrMalformedValue = errors.New("malformed trait value")

// --- Colors ----------------------------------------------------------------

// ColorValue is a non-premultiplied RGBA color.
type ColorValue struct {
	R, G, B, A uint8
}

// Black and White are the colors most frequently used for borders and text.
var (
	Black       = ColorValue{0, 0, 0, 0xff}
	White       = ColorValue{0xff, 0xff, 0xff, 0xff}
	Transparent = ColorValue{}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) ColorValue {
	return ColorValue{r, g, b, 0xff}
}

// FromColor converts a color of the standard library.
func FromColor(c color.Color) ColorValue {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return ColorValue{n.R, n.G, n.B, n.A}
}

// RGBA implements color.Color.
func (c ColorValue) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// String returns "#rrggbb" for opaque colors and "#rrggbbaa" otherwise.
func (c ColorValue) String() string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseColor reads a color given as "#rgb", "#rrggbb", "#rrggbbaa" or as a
// CSS color keyword.
func ParseColor(s string) (ColorValue, error) {
	s = strings.TrimSpace(s)
	if s == "transparent" {
		return Transparent, nil
	}
	if !strings.HasPrefix(s, "#") {
		if c, ok := colornames.Map[strings.ToLower(s)]; ok {
			return FromColor(c), nil
		}
		return Black, fmt.Errorf("%w: unknown color %q", ErrMalformedValue, s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Black, fmt.Errorf("%w: color %q", ErrMalformedValue, s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Black, fmt.Errorf("%w: color %q", ErrMalformedValue, s)
	}
	if len(hex) == 6 {
		return RGB(uint8(n>>16), uint8(n>>8), uint8(n)), nil
	}
	return ColorValue{uint8(n >> 24), uint8(n >> 16), uint8(n >> 8), uint8(n)}, nil
}

// --- Borders ---------------------------------------------------------------

// BorderMode tells how a border takes part in border collapsing.
type BorderMode uint8

// Border modes.
const (
	Separate BorderMode = iota
	CollapseInner
	CollapseOuter
)

func (m BorderMode) String() string {
	switch m {
	case CollapseInner:
		return "collapse-inner"
	case CollapseOuter:
		return "collapse-outer"
	}
	return "separate"
}

// BorderProps describes one side of a border.
type BorderProps struct {
	Style string // e.g. "solid", "dotted"
	Color ColorValue
	Width int // millipoints
	Mode  BorderMode
}

// String returns "(style,color,width)", with the mode appended for
// collapsing borders.
func (b BorderProps) String() string {
	if b.Mode == Separate {
		return fmt.Sprintf("(%s,%s,%d)", b.Style, b.Color, b.Width)
	}
	return fmt.Sprintf("(%s,%s,%d,%s)", b.Style, b.Color, b.Width, b.Mode)
}

// ParseBorderProps reads a border in the format of BorderProps.String.
func ParseBorderProps(s string) (BorderProps, error) {
	inner, err := unparen(s)
	if err != nil {
		return BorderProps{}, err
	}
	f := strings.Split(inner, ",")
	if len(f) < 3 || len(f) > 4 {
		return BorderProps{}, fmt.Errorf("%w: border %q", ErrMalformedValue, s)
	}
	b := BorderProps{Style: f[0]}
	if b.Color, err = ParseColor(f[1]); err != nil {
		return BorderProps{}, err
	}
	if b.Width, err = strconv.Atoi(f[2]); err != nil {
		return BorderProps{}, fmt.Errorf("%w: border width %q", ErrMalformedValue, f[2])
	}
	if len(f) == 4 {
		switch f[3] {
		case "collapse-inner":
			b.Mode = CollapseInner
		case "collapse-outer":
			b.Mode = CollapseOuter
		case "separate":
		default:
			return BorderProps{}, fmt.Errorf("%w: border mode %q", ErrMalformedValue, f[3])
		}
	}
	return b, nil
}

// --- Links -----------------------------------------------------------------

// InternalLinkValue is the target of a resolved internal link: the key of
// the page viewport carrying the target id, and the id itself.
type InternalLinkValue struct {
	PageKey string
	IDRef   string
}

// IsResolved is true if the link target page is known.
func (l InternalLinkValue) IsResolved() bool {
	return l.PageKey != ""
}

func (l InternalLinkValue) String() string {
	return "(" + l.PageKey + "," + l.IDRef + ")"
}

// ParseInternalLink reads a link in the format of InternalLinkValue.String.
func ParseInternalLink(s string) (InternalLinkValue, error) {
	inner, err := unparen(s)
	if err != nil {
		return InternalLinkValue{}, err
	}
	key, id, ok := strings.Cut(inner, ",")
	if !ok {
		return InternalLinkValue{}, fmt.Errorf("%w: internal link %q", ErrMalformedValue, s)
	}
	return InternalLinkValue{PageKey: key, IDRef: id}, nil
}

// ExternalLinkValue is a link to an external destination.
type ExternalLinkValue struct {
	Dest      string
	NewWindow bool
}

func (l ExternalLinkValue) String() string {
	return fmt.Sprintf("(newWindow=%t,dest=%s)", l.NewWindow, l.Dest)
}

// ParseExternalLink reads a link in the format of ExternalLinkValue.String.
func ParseExternalLink(s string) (ExternalLinkValue, error) {
	inner, err := unparen(s)
	if err != nil {
		return ExternalLinkValue{}, err
	}
	nw, dest, ok := strings.Cut(inner, ",dest=")
	if !ok || !strings.HasPrefix(nw, "newWindow=") {
		return ExternalLinkValue{}, fmt.Errorf("%w: external link %q", ErrMalformedValue, s)
	}
	b, err := strconv.ParseBool(strings.TrimPrefix(nw, "newWindow="))
	if err != nil {
		return ExternalLinkValue{}, fmt.Errorf("%w: external link %q", ErrMalformedValue, s)
	}
	return ExternalLinkValue{Dest: dest, NewWindow: b}, nil
}

// --- Fonts -----------------------------------------------------------------

// FontTriplet is the key of a font: family name, style and weight.
type FontTriplet struct {
	Name   string
	Style  string
	Weight int
}

func (f FontTriplet) String() string {
	return fmt.Sprintf("%s,%s,%d", f.Name, f.Style, f.Weight)
}

// ParseFontTriplet reads a font key in the format of FontTriplet.String.
func ParseFontTriplet(s string) (FontTriplet, error) {
	f := strings.Split(s, ",")
	if len(f) != 3 {
		return FontTriplet{}, fmt.Errorf("%w: font %q", ErrMalformedValue, s)
	}
	w, err := strconv.Atoi(f[2])
	if err != nil {
		return FontTriplet{}, fmt.Errorf("%w: font weight %q", ErrMalformedValue, f[2])
	}
	return FontTriplet{Name: f[0], Style: f[1], Weight: w}, nil
}

// --- Backgrounds -----------------------------------------------------------

// BackgroundValue describes the background of an area.
type BackgroundValue struct {
	Color    ColorValue
	URL      string // background image, optional
	Repeat   string // e.g. "repeat", "no-repeat"
	Horiz    int    // horizontal image offset in millipoints
	Vertical int    // vertical image offset in millipoints
}

func (b BackgroundValue) String() string {
	var sb strings.Builder
	sb.WriteString("color=" + b.Color.String())
	if b.URL != "" {
		sb.WriteString(",url=" + b.URL)
	}
	if b.Repeat != "" {
		sb.WriteString(",repeat=" + b.Repeat)
	}
	sb.WriteString(",horiz=" + strconv.Itoa(b.Horiz))
	sb.WriteString(",vertical=" + strconv.Itoa(b.Vertical))
	return sb.String()
}

var backgroundKeys = []string{"color=", "url=", "repeat=", "horiz=", "vertical="}

// ParseBackground reads a background in the format of BackgroundValue.String.
// Commas within a URL are kept.
func ParseBackground(s string) (BackgroundValue, error) {
	var bg BackgroundValue
	fields := map[string]string{}
	var last string
	for _, part := range strings.Split(s, ",") {
		key := ""
		for _, k := range backgroundKeys {
			if strings.HasPrefix(part, k) {
				key = k
				break
			}
		}
		if key == "" {
			if last == "" {
				return bg, fmt.Errorf("%w: background %q", ErrMalformedValue, s)
			}
			fields[last] += "," + part
			continue
		}
		fields[key] = strings.TrimPrefix(part, key)
		last = key
	}
	var err error
	if v, ok := fields["color="]; ok {
		if bg.Color, err = ParseColor(v); err != nil {
			return bg, err
		}
	}
	bg.URL = fields["url="]
	bg.Repeat = fields["repeat="]
	if v, ok := fields["horiz="]; ok {
		if bg.Horiz, err = strconv.Atoi(v); err != nil {
			return bg, fmt.Errorf("%w: background %q", ErrMalformedValue, s)
		}
	}
	if v, ok := fields["vertical="]; ok {
		if bg.Vertical, err = strconv.Atoi(v); err != nil {
			return bg, fmt.Errorf("%w: background %q", ErrMalformedValue, s)
		}
	}
	return bg, nil
}

func unparen(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return "", fmt.Errorf("%w: expected parenthesized value, have %q", ErrMalformedValue, s)
	}
	return s[1 : len(s)-1], nil
}

// --- Generic formatting ----------------------------------------------------

// Format returns the external representation of a trait value.
func Format(c Code, v any) string {
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	tracer().Errorf("cannot format value %v for trait %s", v, c)
	return fmt.Sprint(v)
}

// Parse converts the external representation of a trait value into a value
// of the class of c.
func Parse(c Code, s string) (any, error) {
	switch c.Class() {
	case ClassInt:
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrMalformedValue, c, s)
		}
		return n, nil
	case ClassBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrMalformedValue, c, s)
		}
		return b, nil
	case ClassString:
		return s, nil
	case ClassColor:
		return ParseColor(s)
	case ClassBorder:
		return ParseBorderProps(s)
	case ClassInternalLink:
		return ParseInternalLink(s)
	case ClassExternalLink:
		return ParseExternalLink(s)
	case ClassFont:
		return ParseFontTriplet(s)
	case ClassBackground:
		return ParseBackground(s)
	}
	return nil, fmt.Errorf("%w: no parser for trait %s", ErrMalformedValue, c)
}
