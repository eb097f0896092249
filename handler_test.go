package areatree

import (
	"bytes"
	"strings"
	"testing"

	"github.com/npillmayer/areatree/area"
	"github.com/npillmayer/areatree/atxml"
	"github.com/npillmayer/areatree/config"
	"github.com/npillmayer/areatree/event"
	"github.com/npillmayer/areatree/geom"
	"github.com/npillmayer/areatree/model"
	"github.com/npillmayer/areatree/render"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var a4 = geom.R(0, 0, 595000, 842000)

func testMaster() *area.PageMaster {
	template := area.NewPage()
	rv := area.NewRegionViewport(a4)
	rv.SetRegionReference(area.NewBodyRegion("xsl-region-body", 1, 0))
	template.SetRegionViewport(area.RegionBody, rv)
	return area.NewPageMaster("A4", a4, template)
}

// addCitation adds a line with a page number citation to the body of pv.
func addCitation(pv *area.PageViewport, id string, last bool) *area.PageNumberCitation {
	body := pv.Page().RegionViewport(area.RegionBody).RegionReference().(*area.BodyRegion)
	c := area.NewPageNumberCitation(id, last, 5000, nil)
	line := area.NewLineArea()
	line.AddInlineArea(c)
	b := area.NewBlock()
	b.AddLineArea(line)
	body.MainReference().CreateSpan(true).Flow(0).AddBlock(b)
	return c
}

func newHandler(t *testing.T, r render.Renderer, l event.Listener) *Handler {
	m, err := model.NewRenderPagesModel(r, model.WithListener(l))
	require.NoError(t, err)
	h := New(m, WithListener(l))
	_, err = h.StartPageSequence(nil, language.English)
	require.NoError(t, err)
	return h
}

func TestForwardReference(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree")
	defer teardown()
	//
	r := &render.Recorder{}
	h := newHandler(t, r, nil)
	master := testMaster()
	p1 := h.NewPage(master, 1, "1", false)
	assert.Equal(t, "P1", p1.Key())
	cit := addCitation(p1, "fig", false)
	require.NoError(t, h.FinishPage(p1))
	assert.Empty(t, r.RenderedPages())
	assert.Equal(t, []string{"fig"}, h.Tracker().UnresolvedIDs())
	//
	p2 := h.NewPage(master, 2, "2", false)
	h.AssociateIDWithPage("fig", p2)
	assert.Equal(t, "2", cit.Text())
	require.NoError(t, h.FinishPage(p2))
	assert.Equal(t, []string{"P1", "P2"}, r.RenderedPages())
	assert.Empty(t, h.Tracker().UnresolvedIDs())
	require.NoError(t, h.EndDocument())
	assert.Equal(t, "stop", r.Calls()[len(r.Calls())-1])
}

func TestBackwardReference(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree")
	defer teardown()
	//
	r := &render.Recorder{}
	h := newHandler(t, r, nil)
	master := testMaster()
	p1 := h.NewPage(master, 1, "i", false)
	h.AssociateIDWithPage("preface", p1)
	require.NoError(t, h.FinishPage(p1))
	p2 := h.NewPage(master, 2, "ii", false)
	cit := addCitation(p2, "preface", false)
	require.NoError(t, h.FinishPage(p2))
	assert.Equal(t, "i", cit.Text())
	assert.Equal(t, []string{"P1", "P2"}, r.RenderedPages())
}

func TestDanglingReference(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree")
	defer teardown()
	//
	r := &render.Recorder{}
	events := &event.Recorder{}
	h := newHandler(t, r, events)
	p1 := h.NewPage(testMaster(), 1, "1", false)
	cit := addCitation(p1, "nowhere", false)
	addCitation(p1, "nowhere", true)
	require.NoError(t, h.FinishPage(p1))
	assert.Empty(t, r.RenderedPages())
	require.NoError(t, h.EndDocument())
	assert.Equal(t, []string{"P1"}, r.RenderedPages())
	assert.Equal(t, area.PlaceholderText, cit.Text())
	assert.Equal(t, 1, events.Count(event.UnresolvedIDReference))
	require.NoError(t, h.EndDocument(), "ending twice is harmless")
}

func TestCitationOfLastPage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree")
	defer teardown()
	//
	r := &render.Recorder{}
	h := newHandler(t, r, nil)
	master := testMaster()
	h.SignalPendingID("chapter")
	p1 := h.NewPage(master, 1, "1", false)
	h.AssociateIDWithPage("chapter", p1)
	cit := addCitation(p1, "chapter", true)
	require.NoError(t, h.FinishPage(p1))
	assert.Equal(t, area.PlaceholderText, cit.Text(), "chapter is still being generated")
	p2 := h.NewPage(master, 2, "2", false)
	h.AssociateIDWithPage("chapter", p2)
	require.NoError(t, h.FinishPage(p2))
	p3 := h.NewPage(master, 3, "3", false)
	h.AssociateIDWithPage("chapter", p3)
	h.SignalIDProcessed("chapter")
	assert.Equal(t, "3", cit.Text())
	require.NoError(t, h.FinishPage(p3))
	assert.Equal(t, []string{"P1", "P2", "P3"}, r.RenderedPages())
	assert.Len(t, h.Tracker().PageViewportsContainingID("chapter"), 3)
}

func TestOffDocumentItemsWaitForIDs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree")
	defer teardown()
	//
	r := &render.Recorder{}
	h := newHandler(t, r, nil)
	master := testMaster()
	dest := area.NewDestination("appendix")
	require.NoError(t, h.HandleOffDocumentItem(dest))
	bt := area.NewBookmarkTree()
	bt.AddBookmark(area.NewBookmark("Lost", false, "nowhere"))
	require.NoError(t, h.HandleOffDocumentItem(bt))
	assert.NotContains(t, r.Calls(), "extension destination")
	//
	p1 := h.NewPage(master, 1, "1", false)
	h.AssociateIDWithPage("appendix", p1)
	require.NoError(t, h.FinishPage(p1))
	assert.Equal(t, "P1", dest.PageKey())
	assert.Contains(t, r.Calls(), "extension destination")
	assert.NotContains(t, r.Calls(), "extension "+bt.Name())
	//
	require.NoError(t, h.EndDocument())
	assert.Contains(t, r.Calls(), "extension "+bt.Name())
	assert.True(t, bt.IsResolved())
	assert.Equal(t, "", bt.Bookmarks()[0].PageKey())
}

func TestResolvedItemsPassStraightThrough(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree")
	defer teardown()
	//
	r := &render.Recorder{}
	h := newHandler(t, r, nil)
	dest := area.NewDestination("x")
	dest.SetPageKey("P7")
	require.NoError(t, h.HandleOffDocumentItem(dest))
	assert.Contains(t, r.Calls(), "extension destination")
}

func TestHandlerFromConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree")
	defer teardown()
	//
	cfg := config.Default()
	cfg.Renderer.ConsistentOutput = true
	cfg.Cache.Enabled = true
	cfg.Cache.Dir = t.TempDir()
	reg := render.NewRegistry()
	atxml.Register(reg)
	var buf bytes.Buffer
	h, err := NewFromConfig(cfg, reg, &buf)
	require.NoError(t, err)
	_, err = h.StartPageSequence(nil, language.German)
	require.NoError(t, err)
	master := testMaster()
	p1 := h.NewPage(master, 1, "1", false)
	addCitation(p1, "end", false)
	require.NoError(t, h.FinishPage(p1))
	assert.True(t, p1.IsCleared(), "unresolved page is swapped out")
	p2 := h.NewPage(master, 2, "2", false)
	h.AssociateIDWithPage("end", p2)
	require.NoError(t, h.FinishPage(p2))
	require.NoError(t, h.EndDocument())
	//
	out := buf.String()
	assert.Contains(t, out, `">2</word>`)
	assert.Equal(t, 2, strings.Count(out, "<pageViewport "))
	parsed := model.NewAreaTreeModel()
	require.NoError(t, atxml.Parse(strings.NewReader(out), parsed))
	require.Equal(t, 2, parsed.TotalPageCount())
	assert.Equal(t, "P1", parsed.Page(1, 0).Key())
	assert.Equal(t, language.German, parsed.PageSequence(1).Language())
}

func TestUnknownRenderer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree")
	defer teardown()
	//
	cfg := config.Default()
	cfg.Renderer.Name = "pdf"
	_, err := NewFromConfig(cfg, render.NewRegistry(), &bytes.Buffer{})
	assert.ErrorIs(t, err, render.ErrUnknownRenderer)
}
