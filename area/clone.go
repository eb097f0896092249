package area

// cloneTree creates a detached deep copy of a and its descendants. Traits
// and foreign attributes are copied; resolution state travels with the
// areas which carry it.
func cloneTree(a Area) Area {
	c := cloneArea(a)
	for _, ch := range a.ChildAreas() {
		c.AddChildArea(cloneTree(ch))
	}
	return c
}

func (ib *InlineBase) copyInline() *InlineBase {
	c := &InlineBase{Base: ib.copyBase(), offset: ib.offset}
	if ib.adj != nil {
		adj := *ib.adj
		c.adj = &adj
	}
	return c
}

// cloneArea copies a single area without its children.
func cloneArea(a Area) Area {
	switch x := a.(type) {
	case *RegionViewport:
		c := &RegionViewport{Base: x.copyBase(), viewArea: x.ViewArea(), clip: x.Clip()}
		c.setSelf(c)
		return c
	case *BodyRegion:
		r := *x.RegionReference
		r.Base = x.copyBase()
		c := &BodyRegion{RegionReference: &r, columnCount: x.columnCount, columnGap: x.columnGap}
		r.Base.setSelf(c)
		return c
	case *RegionReference:
		c := &RegionReference{Base: x.copyBase(), regionClass: x.regionClass, name: x.name, ctm: x.ctm}
		c.setSelf(c)
		return c
	case *MainReference:
		c := &MainReference{Base: x.copyBase(), columnCount: x.columnCount, columnGap: x.columnGap}
		c.setSelf(c)
		return c
	case *Span:
		c := &Span{Base: x.copyBase(), columnCount: x.columnCount, columnGap: x.columnGap, current: x.current}
		c.setSelf(c)
		return c
	case *NormalFlow:
		c := &NormalFlow{Base: x.copyBase()}
		c.setSelf(c)
		return c
	case *BeforeFloat:
		c := &BeforeFloat{Base: x.copyBase()}
		c.setSelf(c)
		return c
	case *Footnote:
		c := &Footnote{Base: x.copyBase()}
		if x.separator != nil {
			c.separator = cloneTree(x.separator)
		}
		c.setSelf(c)
		return c
	case *BlockViewport:
		blk := &Block{Base: x.copyBase(), positioning: x.positioning, xOffset: x.xOffset, yOffset: x.yOffset}
		c := &BlockViewport{Block: blk, ctm: x.CTM(), clip: x.Clip()}
		blk.setSelf(c)
		return c
	case *Block:
		c := &Block{Base: x.copyBase(), positioning: x.positioning, xOffset: x.xOffset, yOffset: x.yOffset}
		c.setSelf(c)
		return c
	case *LineArea:
		c := &LineArea{Base: x.copyBase()}
		if x.adj != nil {
			adj := *x.adj
			c.adj = &adj
		}
		c.setSelf(c)
		return c
	case *InlineParent:
		c := &InlineParent{InlineBase: x.copyInline(), linkIDRef: x.linkIDRef, linkResolved: x.linkResolved}
		c.setSelf(c)
		return c
	case *InlineBlockParent:
		c := &InlineBlockParent{InlineBase: x.copyInline()}
		c.setSelf(c)
		return c
	case *PageNumberCitation:
		t := &TextArea{InlineBase: x.copyInline(), baseline: x.baseline,
			letterSpaceAdjust: x.letterSpaceAdjust, wordSpaceAdjust: x.wordSpaceAdjust,
			spaceDifference: x.spaceDifference}
		c := &PageNumberCitation{TextArea: t, idref: x.idref, last: x.last, resolved: x.resolved, measure: x.measure}
		c.setSelf(c)
		return c
	case *TextArea:
		c := &TextArea{InlineBase: x.copyInline(), baseline: x.baseline,
			letterSpaceAdjust: x.letterSpaceAdjust, wordSpaceAdjust: x.wordSpaceAdjust,
			spaceDifference: x.spaceDifference}
		c.setSelf(c)
		return c
	case *WordArea:
		c := &WordArea{InlineBase: x.copyInline(), word: x.word}
		c.setSelf(c)
		return c
	case *SpaceArea:
		c := &SpaceArea{InlineBase: x.copyInline(), space: x.space, adjustable: x.adjustable}
		c.setSelf(c)
		return c
	case *Leader:
		c := &Leader{InlineBase: x.copyInline(), ruleStyle: x.ruleStyle, ruleThickness: x.ruleThickness}
		c.setSelf(c)
		return c
	case *Viewport:
		c := &Viewport{InlineBase: x.copyInline(), contentPosition: x.contentPosition, clip: x.clip}
		c.setSelf(c)
		return c
	case *Image:
		c := &Image{Base: x.copyBase(), url: x.url}
		c.setSelf(c)
		return c
	case *ForeignObject:
		c := &ForeignObject{Base: x.copyBase(), namespace: x.namespace}
		if x.doc != nil {
			c.doc = x.doc.Copy()
		}
		c.setSelf(c)
		return c
	}
	panic("area: cannot clone area of kind " + a.Kind().String())
}
