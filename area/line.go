package area

import (
	"github.com/npillmayer/areatree/maybe"
	"github.com/npillmayer/areatree/trait"
)

// Alignment is the text alignment of a line.
type Alignment uint8

// Line alignments.
const (
	AlignStart Alignment = iota
	AlignCenter
	AlignEnd
	AlignJustify
)

var alignmentNames = [...]string{"start", "center", "end", "justify"}

func (a Alignment) String() string {
	if int(a) < len(alignmentNames) {
		return alignmentNames[a]
	}
	return "?"
}

// ParseAlignment finds an alignment from its name.
func ParseAlignment(s string) (Alignment, bool) {
	for i, n := range alignmentNames {
		if n == s {
			return Alignment(i), true
		}
	}
	return AlignStart, false
}

// AdjustingInfo is the state of a line whose inline progression dimension
// may still change, because it contains content of unknown width (such as
// unresolved page number citations).
type AdjustingInfo struct {
	Alignment       Alignment
	Difference      int     // available width minus natural width of the content
	Stretch         int     // total available stretch of the line
	Shrink          int     // total available shrink of the line
	VariationFactor float64 // pending factor for stretch/shrink of descendants
	AddedToAreaTree bool    // Finish has been called at least once
}

// LineArea is a line of inline areas.
type LineArea struct {
	*Base
	adj *AdjustingInfo
}

// NewLineArea creates an empty line area.
func NewLineArea() *LineArea {
	l := &LineArea{Base: newBase(KindLineArea)}
	l.setSelf(l)
	return l
}

// NewAdjustedLineArea creates an empty line area with adjusting information.
func NewAdjustedLineArea(alignment Alignment, diff, stretch, shrink int) *LineArea {
	l := NewLineArea()
	l.SetAdjustingInfo(alignment, diff, stretch, shrink)
	return l
}

// SetAdjustingInfo prepares the line for later changes of the width of its
// content.
func (l *LineArea) SetAdjustingInfo(alignment Alignment, diff, stretch, shrink int) {
	l.adj = &AdjustingInfo{
		Alignment:       alignment,
		Difference:      diff,
		Stretch:         stretch,
		Shrink:          shrink,
		VariationFactor: 1.0,
	}
}

// RestoreAdjusting sets the adjusting information including its pending
// variation factor, e.g. when reading a line from its external form.
func (l *LineArea) RestoreAdjusting(info AdjustingInfo) {
	l.adj = &info
}

// Adjusting returns a copy of the adjusting information, if present.
func (l *LineArea) Adjusting() maybe.Maybe[AdjustingInfo] {
	if l.adj == nil {
		return maybe.Nothing[AdjustingInfo]()
	}
	return maybe.Just(*l.adj)
}

// AddInlineArea appends an inline area and updates the extents of the line.
func (l *LineArea) AddInlineArea(a Inline) {
	l.AddChildArea(a)
	l.UpdateExtentsFromChildren()
}

// InlineAreas returns the inline children of the line.
func (l *LineArea) InlineAreas() []Inline {
	return inlineChildren(l.Base)
}

// UpdateExtentsFromChildren sets the ipd of the line to the maximum
// allocation ipd of its children, and the bpd to the sum of their allocation
// bpds.
func (l *LineArea) UpdateExtentsFromChildren() {
	ipd, bpd := 0, 0
	for _, a := range l.InlineAreas() {
		ipd = max(ipd, a.AllocIPD())
		bpd += a.AllocBPD()
	}
	l.SetIPD(ipd)
	l.SetBPD(bpd)
}

// HandleIPDVariation reacts to a change of width of the content of the line.
// For start, end and centered lines the indents are adjusted immediately.
// For justified lines the change is folded into a variation factor, which
// is applied to the descendants by Finish. Once the line has been added to
// the area tree, every variation finishes the line again.
func (l *LineArea) HandleIPDVariation(delta int) {
	if l.adj == nil {
		tracer().Debugf("line without adjusting info, treating ipd variation of %d as start-aligned", delta)
		l.AddTrait(trait.EndIndent, l.EndIndent()-delta)
		return
	}
	switch l.adj.Alignment {
	case AlignStart:
		l.AddTrait(trait.EndIndent, l.EndIndent()-delta)
	case AlignCenter:
		l.AddTrait(trait.StartIndent, l.StartIndent()-delta/2)
		l.AddTrait(trait.EndIndent, l.EndIndent()-delta/2)
	case AlignEnd:
		l.AddTrait(trait.StartIndent, l.StartIndent()-delta)
	case AlignJustify:
		if l.adj.Difference != 0 {
			l.adj.VariationFactor *= float64(l.adj.Difference-delta) / float64(l.adj.Difference)
		}
		l.adj.Difference -= delta
		if l.adj.AddedToAreaTree {
			l.Finish()
		}
	}
}

// Finish applies pending adjustments to the descendants of a justified
// line. If no descendant is left with unresolved width, the adjusting
// information is dropped.
func (l *LineArea) Finish() {
	if l.adj == nil {
		return
	}
	if l.adj.Alignment != AlignJustify {
		l.adj.AddedToAreaTree = true
		return
	}
	unresolved := false
	for _, a := range l.InlineAreas() {
		if a.ApplyVariationFactor(l.adj.VariationFactor, l.adj.Stretch, l.adj.Shrink) {
			unresolved = true
		}
	}
	if !unresolved {
		l.adj = nil
		return
	}
	l.adj.AddedToAreaTree = true
	l.adj.VariationFactor = 1.0
}
