package area

import (
	"sync"

	"github.com/npillmayer/areatree/geom"
)

// Positioning is the positioning scheme of a block.
type Positioning uint8

// Positioning schemes.
const (
	Stack Positioning = iota
	Relative
	Absolute
	Fixed
)

var positioningNames = [...]string{"stack", "relative", "absolute", "fixed"}

func (p Positioning) String() string {
	if int(p) < len(positioningNames) {
		return positioningNames[p]
	}
	return "?"
}

// ParsePositioning finds a positioning scheme from its name.
func ParsePositioning(s string) (Positioning, bool) {
	for i, n := range positioningNames {
		if n == s {
			return Positioning(i), true
		}
	}
	return Stack, false
}

// Block is a block area, stacking blocks and line areas.
type Block struct {
	*Base
	positioning Positioning
	xOffset     int
	yOffset     int
}

// NewBlock creates a stacked block.
func NewBlock() *Block {
	b := &Block{Base: newBase(KindBlock)}
	b.setSelf(b)
	return b
}

// Positioning returns the positioning scheme of the block.
func (b *Block) Positioning() Positioning { return b.positioning }

// SetPositioning sets the positioning scheme of the block.
func (b *Block) SetPositioning(p Positioning) { b.positioning = p }

// XOffset returns the horizontal offset of a positioned block.
func (b *Block) XOffset() int { return b.xOffset }

// YOffset returns the vertical offset of a positioned block.
func (b *Block) YOffset() int { return b.yOffset }

// SetOffsets sets the offsets of a positioned block.
func (b *Block) SetOffsets(x, y int) { b.xOffset, b.yOffset = x, y }

// AddBlock appends a child block. If autoHeight is set and the child takes
// part in stacking, the bpd of b grows by the allocation bpd of the child.
func (b *Block) AddBlock(child Area, autoHeight bool) {
	b.AddChildArea(child)
	if autoHeight && positioningOf(child) != Absolute {
		b.SetBPD(b.BPD() + child.AllocBPD())
	}
}

// AddLineArea appends a line area and grows the bpd of b by the
// allocation bpd of the line.
func (b *Block) AddLineArea(line *LineArea) {
	b.AddChildArea(line)
	b.SetBPD(b.BPD() + line.AllocBPD())
}

// LineAreas returns the line areas among the children of b.
func (b *Block) LineAreas() []*LineArea {
	var lines []*LineArea
	for _, a := range b.ChildAreas() {
		if l, ok := a.(*LineArea); ok {
			lines = append(lines, l)
		}
	}
	return lines
}

func positioningOf(a Area) Positioning {
	switch x := a.(type) {
	case *Block:
		return x.positioning
	case *BlockViewport:
		return x.positioning
	}
	return Stack
}

// BlockViewport is a block which establishes a new coordinate system and
// optionally clips its content, e.g. for absolutely positioned containers
// and reference orientation changes.
type BlockViewport struct {
	*Block
	ctm  geom.CTM
	clip bool
	mx   sync.RWMutex
}

// NewBlockViewport creates a block viewport with a given transformation.
func NewBlockViewport(ctm geom.CTM) *BlockViewport {
	base := newBase(KindBlockViewport)
	bv := &BlockViewport{Block: &Block{Base: base}, ctm: ctm}
	base.setSelf(bv)
	return bv
}

// CTM returns the transformation of the viewport content.
func (bv *BlockViewport) CTM() geom.CTM {
	bv.mx.RLock()
	defer bv.mx.RUnlock()
	return bv.ctm
}

// SetCTM sets the transformation of the viewport content.
func (bv *BlockViewport) SetCTM(ctm geom.CTM) {
	bv.mx.Lock()
	defer bv.mx.Unlock()
	bv.ctm = ctm
}

// Clip tells if the content is clipped.
func (bv *BlockViewport) Clip() bool {
	bv.mx.RLock()
	defer bv.mx.RUnlock()
	return bv.clip
}

// SetClip sets the clipping flag.
func (bv *BlockViewport) SetClip(clip bool) {
	bv.mx.Lock()
	defer bv.mx.Unlock()
	bv.clip = clip
}
