package area

import (
	"testing"

	"github.com/npillmayer/areatree/geom"
	"github.com/npillmayer/areatree/trait"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestAllocationDimensions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	b := NewBlock()
	b.SetIPD(100000)
	b.SetBPD(20000)
	b.AddTrait(trait.PaddingStart, 1000)
	b.AddTrait(trait.BorderEnd, trait.BorderProps{Style: "solid", Color: trait.Black, Width: 500})
	b.AddTrait(trait.SpaceBefore, 3000)
	b.AddTrait(trait.PaddingAfter, 2000)
	if b.AllocIPD() != 101500 {
		t.Errorf("expected allocation ipd to be 101500, is %d", b.AllocIPD())
	}
	if b.AllocBPD() != 25000 {
		t.Errorf("expected allocation bpd to be 25000, is %d", b.AllocBPD())
	}
}

func TestChildRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	line := NewLineArea()
	assert.Panics(t, func() { line.AddChildArea(NewBlock()) }, "lines may not contain blocks")
	b := NewBlock()
	assert.NotPanics(t, func() { b.AddChildArea(line) })
	assert.Panics(t, func() { NewBlock().AddChildArea(line) }, "line already has a parent")
	rv := NewRegionViewport(geom.R(0, 0, 1000, 1000))
	rv.SetRegionReference(NewRegionReference(RegionBefore, "xsl-region-before"))
	assert.Panics(t, func() {
		rv.SetRegionReference(NewRegionReference(RegionAfter, "xsl-region-after"))
	}, "second region reference")
	br := NewBodyRegion("xsl-region-body", 1, 0)
	br.MainReference()
	assert.Panics(t, func() { br.AddChildArea(NewMainReference(1, 0, 0)) }, "main reference slot taken")
}

func TestBidiLevel(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	w := NewWordArea("abc")
	assert.True(t, w.BidiLevel().IsNothing())
	w.SetBidiLevel(1)
	assert.Equal(t, 1, w.BidiLevel().WithDefault(-1))
	w.ResetBidiLevel()
	assert.True(t, w.BidiLevel().IsNothing())
}

func TestBodyRegionStructure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	br := NewBodyRegion("xsl-region-body", 3, 6000)
	br.SetIPD(300000)
	require.True(t, br.IsEmpty())
	fn := br.Footnote()
	mr := br.MainReference()
	bf := br.BeforeFloat()
	children := br.ChildAreas()
	require.Len(t, children, 3)
	assert.Equal(t, Area(bf), children[0])
	assert.Equal(t, Area(mr), children[1])
	assert.Equal(t, Area(fn), children[2])
	sp := mr.CreateSpan(false)
	assert.Equal(t, 3, len(sp.ChildAreas()))
	assert.Equal(t, 96000, sp.Flow(0).IPD(), "(300000 - 2*6000) / 3")
	all := mr.CreateSpan(true)
	assert.Equal(t, 1, len(all.ChildAreas()))
	assert.Equal(t, all, mr.CurrentSpan())
	f := sp.CurrentFlow()
	blk := NewBlock()
	blk.SetBPD(12000)
	f.AddBlock(blk)
	assert.Equal(t, 12000, f.BPD())
	assert.False(t, br.IsEmpty())
	assert.True(t, sp.HasMoreFlows())
	assert.Equal(t, sp.Flow(1), sp.MoveToNextFlow())
}

func TestBlockStacking(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	outer := NewBlock()
	in1 := NewBlock()
	in1.SetBPD(1000)
	abs := NewBlock()
	abs.SetBPD(5000)
	abs.SetPositioning(Absolute)
	outer.AddBlock(in1, true)
	outer.AddBlock(abs, true)
	l := NewLineArea()
	l.SetBPD(2000)
	outer.AddLineArea(l)
	if outer.BPD() != 3000 {
		t.Errorf("expected absolute blocks not to be stacked, bpd is %d", outer.BPD())
	}
	assert.Len(t, outer.LineAreas(), 1)
}

func TestLineExtents(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	l := NewLineArea()
	t1 := NewTextArea()
	t1.SetIPD(30000)
	t1.SetBPD(12000)
	t2 := NewTextArea()
	t2.SetIPD(50000)
	t2.SetBPD(10000)
	l.AddInlineArea(t1)
	l.AddInlineArea(t2)
	assert.Equal(t, 50000, l.IPD(), "line ipd is maximum of children")
	assert.Equal(t, 22000, l.BPD(), "line bpd is sum of children")
}

func TestJustifiedLineVariation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	l := NewAdjustedLineArea(AlignJustify, 100, 50, 50)
	l.HandleIPDVariation(-20)
	adj, ok := l.Adjusting().Value()
	require.True(t, ok)
	assert.InDelta(t, 1.2, adj.VariationFactor, 1e-9)
	assert.Equal(t, 120, adj.Difference)
	l.Finish()
	if !l.Adjusting().IsNothing() {
		t.Errorf("expected adjusting info to be dropped after finish")
	}
}

func TestJustifiedTextSpacing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	l := NewAdjustedLineArea(AlignJustify, 100, 50, 50)
	txt := NewTextArea()
	txt.AddWord("a", 900, 0)
	txt.AddSpace(" ", 100, 0, true)
	txt.SetIPD(1000)
	txt.SetInlineAdjustment(40, 40, 100)
	txt.SetSpaceAdjust(100, 500)
	l.AddInlineArea(txt)
	l.HandleIPDVariation(-20)
	l.Finish()
	assert.Equal(t, 120, txt.LetterSpaceAdjust())
	assert.Equal(t, 600, txt.WordSpaceAdjust())
	assert.Equal(t, 1020, txt.IPD())
	adj, ok := txt.InlineAdjustment().Value()
	require.True(t, ok)
	assert.Equal(t, 120, adj.Adjustment)
	//
	fixed := NewTextArea()
	fixed.SetInlineAdjustment(40, 40, 100)
	fixed.SetSpaceAdjust(0, 500)
	fixed.SetSpaceDifference(100)
	fixed.ApplyVariationFactor(1.2, 50, 50)
	assert.Equal(t, 580, fixed.WordSpaceAdjust(), "space difference is not scaled")
}

func TestTextSwitchingFromStretchToShrink(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	txt := NewTextArea()
	txt.SetIPD(1000)
	txt.SetInlineAdjustment(40, 10, 100)
	txt.SetSpaceAdjust(100, 500)
	txt.ApplyVariationFactor(-0.5, 50, 25)
	assert.Equal(t, -125, txt.WordSpaceAdjust(), "rebalanced by shrink/stretch ratios")
	assert.Equal(t, -50, txt.LetterSpaceAdjust())
	assert.Equal(t, 875, txt.IPD())
}

func TestAlignedLineVariation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	start := NewAdjustedLineArea(AlignStart, 0, 0, 0)
	start.HandleIPDVariation(400)
	assert.Equal(t, -400, start.EndIndent())
	center := NewAdjustedLineArea(AlignCenter, 0, 0, 0)
	center.HandleIPDVariation(400)
	assert.Equal(t, -200, center.StartIndent())
	assert.Equal(t, -200, center.EndIndent())
	end := NewAdjustedLineArea(AlignEnd, 0, 0, 0)
	end.HandleIPDVariation(400)
	assert.Equal(t, -400, end.StartIndent())
	assert.Equal(t, 0, end.EndIndent())
}

func TestInlineParentGrowsWithChildren(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	ip := NewInlineParent()
	txt := NewTextArea()
	txt.AddWord("hello", 25000, 0)
	txt.SetIPD(25000)
	txt.SetBPD(10000)
	ip.AddInlineArea(txt)
	sp := NewSpaceArea(" ", true)
	sp.SetIPD(3000)
	ip.AddInlineArea(sp)
	assert.Equal(t, 28000, ip.IPD())
	assert.Equal(t, 10000, ip.BPD())
	assert.Equal(t, "hello", txt.Text())
}

func TestBasicLinkResolution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	link := NewBasicLink("chapter2")
	require.False(t, link.IsResolved())
	assert.Equal(t, []string{"chapter2"}, link.IDRefs())
	p7 := NewPageViewport("P7", geom.R(0, 0, 10, 10), 7, "vii")
	link.ResolveIDRef("other", []*PageViewport{p7})
	require.False(t, link.IsResolved())
	link.ResolveIDRef("chapter2", []*PageViewport{p7})
	require.True(t, link.IsResolved())
	il := link.Traits().InternalLink()
	assert.Equal(t, trait.InternalLinkValue{PageKey: "P7", IDRef: "chapter2"}, il)
	//
	dangling := NewBasicLink("nowhere")
	dangling.ResolveIDRef("nowhere", nil)
	assert.True(t, dangling.IsResolved())
	assert.False(t, dangling.HasTrait(trait.InternalLink))
}

func TestCitationResolutionVariesLine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	measure := func(s string) int { return 500 * len(s) }
	l := NewAdjustedLineArea(AlignStart, 0, 0, 0)
	pnc := NewPageNumberCitation("fig1", false, 500, measure)
	l.AddInlineArea(pnc)
	assert.Equal(t, PlaceholderText, pnc.Text())
	p12 := NewPageViewport("P12", geom.R(0, 0, 10, 10), 12, "12")
	pnc.ResolveIDRef("fig1", []*PageViewport{p12})
	assert.True(t, pnc.IsResolved())
	assert.Equal(t, "12", pnc.Text())
	assert.Equal(t, 1000, pnc.IPD())
	assert.Equal(t, -500, l.EndIndent(), "line gets 500 narrower at the end")
}

func TestCitationInJustifiedLine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	l := NewAdjustedLineArea(AlignJustify, 3000, 2000, 500)
	pnc := NewPageNumberCitation("sec", true, 500, nil)
	l.AddInlineArea(pnc)
	l.Finish()
	adj, ok := l.Adjusting().Value()
	require.True(t, ok, "unresolved citation keeps the line adjustable")
	assert.True(t, adj.AddedToAreaTree)
	assert.InDelta(t, 1.0, adj.VariationFactor, 1e-9)
	//
	p3 := NewPageViewport("P3", geom.R(0, 0, 10, 10), 3, "3")
	p4 := NewPageViewport("P4", geom.R(0, 0, 10, 10), 4, "104")
	pnc.ResolveIDRef("sec", []*PageViewport{p3, p4})
	assert.Equal(t, "104", pnc.Text(), "citation of the last page")
	assert.Equal(t, 1500, pnc.IPD(), "estimated from the width of the placeholder")
	assert.True(t, l.Adjusting().IsNothing(), "line is finished again after resolution")
}

func TestUnresolvableCitationKeepsPlaceholder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	pnc := NewPageNumberCitation("lost", false, 500, nil)
	pnc.ResolveIDRef("lost", nil)
	assert.True(t, pnc.IsResolved())
	assert.Equal(t, PlaceholderText, pnc.Text())
	assert.Equal(t, 500, pnc.IPD())
}

func TestStoredVariationFlushedOnAttach(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	pnc := NewPageNumberCitation("x", false, 500, nil)
	pnc.ResolveIDRef("x", []*PageViewport{NewPageViewport("P1", geom.Rect{}, 1, "17")})
	require.Equal(t, 1000, pnc.IPD())
	l := NewAdjustedLineArea(AlignEnd, 0, 0, 0)
	l.AddChildArea(pnc)
	assert.Equal(t, -500, l.StartIndent())
}

func TestCloneDecouplesSubtrees(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	blk := NewBlock()
	blk.AddTrait(trait.StartIndent, 1000)
	l := NewAdjustedLineArea(AlignJustify, 10, 1, 1)
	txt := NewTextArea()
	txt.AddWord("a", 100, 0)
	l.AddInlineArea(txt)
	blk.AddLineArea(l)
	c := blk.Clone().(*Block)
	require.Nil(t, c.Parent())
	c.AddTrait(trait.StartIndent, 2000)
	assert.Equal(t, 1000, blk.StartIndent())
	cl := c.LineAreas()
	require.Len(t, cl, 1)
	assert.NotSame(t, l, cl[0])
	cl[0].HandleIPDVariation(5)
	adj, _ := l.Adjusting().Value()
	assert.Equal(t, 10, adj.Difference, "clone has its own adjusting info")
	ctxt := cl[0].InlineAreas()[0].(*TextArea)
	assert.Equal(t, "a", ctxt.Text())
	assert.Equal(t, Area(cl[0]), ctxt.Parent())
}

func TestPageMasterStampsFreshPages(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	tmpl := NewPage()
	rv := NewRegionViewport(geom.R(0, 0, 595000, 842000))
	rv.SetRegionReference(NewBodyRegion("xsl-region-body", 2, 12000))
	tmpl.SetRegionViewport(RegionBody, rv)
	pm := NewPageMaster("A4", geom.R(0, 0, 595000, 842000), tmpl)
	pv1 := pm.NewPage("P1", 1, "1", false)
	pv2 := pm.NewPage("P2", 2, "2", true)
	require.NotNil(t, pv1.Page().BodyRegion())
	assert.NotSame(t, pv1.Page().BodyRegion(), pv2.Page().BodyRegion())
	assert.Equal(t, 2, pv2.Page().BodyRegion().ColumnCount())
	assert.Equal(t, "A4", pv2.MasterName())
	assert.True(t, pv2.IsBlank())
	assert.Panics(t, func() {
		pv1.Page().SetRegionViewport(RegionBody, NewRegionViewport(geom.Rect{}))
	})
	assert.True(t, tmpl.IsEmpty())
}

func TestPageIndexIsStable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	pv := NewPageViewport("P1", geom.Rect{}, 1, "1")
	assert.Equal(t, -1, pv.PageIndex())
	pv.SetPageIndex(4)
	assert.NotPanics(t, func() { pv.SetPageIndex(4) })
	assert.Panics(t, func() { pv.SetPageIndex(5) })
}

// newPageWithLink builds a page carrying a basic link to id.
func newPageWithLink(key, id string) (*PageViewport, *InlineParent) {
	pm := NewPageMaster("m", geom.R(0, 0, 100000, 100000), nil)
	pv := pm.NewPage(key, 1, "1", false)
	rv := NewRegionViewport(geom.R(0, 0, 100000, 100000))
	br := NewBodyRegion("xsl-region-body", 1, 0)
	rv.SetRegionReference(br)
	pv.Page().SetRegionViewport(RegionBody, rv)
	blk := NewBlock()
	l := NewLineArea()
	link := NewBasicLink(id)
	l.AddInlineArea(link)
	blk.AddLineArea(l)
	br.MainReference().CreateSpan(false).CurrentFlow().AddBlock(blk)
	return pv, link
}

func TestPageViewportResolvesAreas(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	pv, link := newPageWithLink("P1", "x")
	ids := pv.RegisterResolvables()
	assert.Equal(t, []string{"x"}, ids)
	assert.Empty(t, pv.RegisterResolvables(), "second scan finds nothing new")
	require.False(t, pv.IsResolved())
	target := NewPageViewport("P2", geom.Rect{}, 2, "2")
	pv.ResolveIDRef("x", []*PageViewport{target})
	assert.True(t, pv.IsResolved())
	assert.True(t, link.IsResolved())
	assert.Equal(t, "P2", link.Traits().InternalLink().PageKey)
}

func TestPendingResolutionWhileDetached(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	pv, _ := newPageWithLink("P1", "x")
	pv.RegisterResolvables()
	page := pv.DetachPage()
	require.True(t, pv.IsCleared())
	// the content comes back as a copy, as if read from a cache
	reloaded := page.Clone()
	target := NewPageViewport("P9", geom.Rect{}, 9, "9")
	pv.ResolveIDRef("x", []*PageViewport{target})
	assert.True(t, pv.IsResolved(), "id no longer counts as unresolved")
	assert.True(t, pv.HasPendingResolutions())
	pv.AttachPage(reloaded)
	assert.False(t, pv.HasPendingResolutions())
	var found *InlineParent
	pv.Page().Walk(func(a Area, depth int) error {
		if ip, ok := a.(*InlineParent); ok {
			found = ip
		}
		return nil
	})
	require.NotNil(t, found)
	assert.True(t, found.IsResolved())
	assert.Equal(t, "P9", found.Traits().InternalLink().PageKey)
}

func TestUnresolvedIndexRebuiltOnAttach(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	pv, _ := newPageWithLink("P1", "x")
	pv.RegisterResolvables()
	reloaded := pv.DetachPage().Clone()
	pv.AttachPage(reloaded)
	require.False(t, pv.IsResolved())
	pv.ResolveIDRef("x", []*PageViewport{pv})
	var found *InlineParent
	pv.Page().Walk(func(a Area, depth int) error {
		if ip, ok := a.(*InlineParent); ok {
			found = ip
		}
		return nil
	})
	require.NotNil(t, found)
	assert.True(t, found.IsResolved(), "resolution reaches the reloaded area")
}

func TestMarkers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	pv := NewPageViewport("P1", geom.Rect{}, 1, "1")
	// a block carried over from the previous page
	pv.AddMarkers(map[string]any{"chapter": "carry"}, true, false)
	pv.AddMarkers(map[string]any{"chapter": "one"}, true, true)
	pv.AddMarkers(map[string]any{"chapter": "one"}, false, false)
	pv.AddMarkers(map[string]any{"chapter": "two"}, true, true)
	assert.Equal(t, "one", pv.Marker("chapter", FirstStartingWithinPage))
	assert.Equal(t, "carry", pv.Marker("chapter", FirstIncludingCarryover))
	assert.Equal(t, "two", pv.Marker("chapter", LastStartingWithinPage))
	assert.Equal(t, "one", pv.Marker("chapter", LastEndingWithinPage))
	assert.Nil(t, pv.Marker("section", FirstStartingWithinPage))
	//
	only := NewPageViewport("P2", geom.Rect{}, 2, "2")
	only.AddMarkers(map[string]any{"chapter": "cont"}, true, false)
	assert.Equal(t, "cont", only.Marker("chapter", FirstStartingWithinPage),
		"falls back to carried-over markers")
}

func TestMarkerPropertyNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	for _, pos := range []MarkerPosition{FirstStartingWithinPage, FirstIncludingCarryover,
		LastStartingWithinPage, LastEndingWithinPage} {
		p, ok := ParseMarkerPosition(pos.String())
		assert.True(t, ok)
		assert.Equal(t, pos, p)
	}
	for _, b := range []MarkerBoundary{BoundaryPage, BoundaryPageSequence, BoundaryDocument} {
		p, ok := ParseMarkerBoundary(b.String())
		assert.True(t, ok)
		assert.Equal(t, b, p)
	}
	mb, ok := ParseMarkerBoundary("page-sequence")
	assert.True(t, ok)
	assert.Equal(t, BoundaryPageSequence, mb)
	_, ok = ParseMarkerPosition("first")
	assert.False(t, ok)
	_, ok = ParseMarkerBoundary("")
	assert.False(t, ok)
}

func TestBookmarkTreeResolution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	bt := NewBookmarkTree()
	b1 := NewBookmark("Chapter 1", true, "ch1")
	b11 := NewBookmark("Section 1.1", false, "s11")
	b1.AddChild(b11)
	b2 := NewBookmark("Chapter 1 again", false, "ch1")
	bt.AddBookmark(b1)
	bt.AddBookmark(b2)
	assert.Equal(t, []string{"ch1", "s11"}, bt.IDRefs())
	p1 := NewPageViewport("P1", geom.Rect{}, 1, "1")
	bt.ResolveIDRef("ch1", []*PageViewport{p1})
	assert.Equal(t, "P1", b1.PageKey())
	assert.Equal(t, "P1", b2.PageKey())
	assert.False(t, bt.IsResolved())
	bt.ResolveIDRef("s11", nil)
	assert.True(t, bt.IsResolved())
	assert.Equal(t, "", b11.PageKey())
	assert.Equal(t, EndOfDocument, bt.WhenToProcess())
}

func TestPageSequence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.area")
	defer teardown()
	//
	ps := NewPageSequence(nil, language.German)
	p1 := NewPageViewport("P1", geom.Rect{}, 1, "1")
	p2 := NewPageViewport("P2", geom.Rect{}, 2, "2")
	ps.AddPage(p1)
	ps.AddPage(p2)
	assert.Equal(t, 2, ps.PageCount())
	assert.True(t, ps.IsFirstPage(p1))
	assert.False(t, ps.IsFirstPage(p2))
	assert.Equal(t, ps, p2.PageSequence())
	assert.Nil(t, ps.Page(2))
	other := NewPageSequence(nil, language.German)
	assert.Panics(t, func() { other.AddPage(p1) })
}
