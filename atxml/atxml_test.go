package atxml

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/areatree/area"
	"github.com/npillmayer/areatree/geom"
	"github.com/npillmayer/areatree/model"
	"github.com/npillmayer/areatree/render"
	"github.com/npillmayer/areatree/trait"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const (
	svgNS = "http://www.w3.org/2000/svg"
	foxNS = "http://example.com/fox"
)

func textLine(word string, ipd int) *area.LineArea {
	line := area.NewLineArea()
	t := area.NewTextArea()
	t.AddWord(word, ipd, 0)
	t.SetIPD(ipd)
	line.AddInlineArea(t)
	return line
}

// testPage builds a page which exercises most kinds of areas. Its body
// holds a link and a citation of id "target".
func testPage(key string, n int) *area.PageViewport {
	pv := area.NewPageViewport(key, geom.R(0, 0, 595000, 842000), n, strconv.Itoa(n))
	pv.SetMasterName("A4")
	page := area.NewPage()
	// header region
	rv := area.NewRegionViewport(geom.R(0, 0, 595000, 36000))
	rv.SetClip(true)
	header := area.NewRegionReference(area.RegionBefore, "xsl-region-before")
	header.SetCTM(geom.Translation(0, 36000))
	hb := area.NewBlock()
	hb.AddTrait(trait.Color, trait.RGB(0x20, 0x40, 0x80))
	hb.AddLineArea(textLine("Header", 30000))
	header.AddBlock(hb)
	rv.SetRegionReference(header)
	page.SetRegionViewport(area.RegionBefore, rv)
	// body region with two columns
	rv = area.NewRegionViewport(geom.R(0, 36000, 595000, 770000))
	body := area.NewBodyRegion("xsl-region-body", 2, 12000)
	body.SetIPD(595000)
	rv.SetRegionReference(body)
	page.SetRegionViewport(area.RegionBody, rv)
	span := body.MainReference().CreateSpan(false)
	b := area.NewBlock()
	b.AddTrait(trait.SpaceBefore, 6000)
	b.SetForeignAttribute(area.QName{Space: foxNS, Local: "role"}, "para")
	line := area.NewAdjustedLineArea(area.AlignJustify, 7000, 9000, 3000)
	text := area.NewTextArea()
	text.SetBaseline(9000)
	text.SetBidiLevel(0)
	text.AddWord("See", 15000, 0)
	text.AddSpace(" ", 3000, 0, true)
	text.AddWord("page", 20000, 0)
	text.SetIPD(38000)
	line.AddInlineArea(text)
	link := area.NewBasicLink("target")
	lt := area.NewTextArea()
	lt.AddWord("here", 18000, 0)
	lt.SetIPD(18000)
	link.AddInlineArea(lt)
	line.AddInlineArea(link)
	line.AddInlineArea(area.NewPageNumberCitation("target", false, 5000, nil))
	b.AddLineArea(line)
	span.Flow(0).AddBlock(b)
	// second column: a positioned block viewport with a leader and graphics
	bv := area.NewBlockViewport(geom.Translation(1000, 2000))
	bv.SetPositioning(area.Absolute)
	bv.SetOffsets(1000, 2000)
	bv.SetClip(true)
	gl := area.NewLineArea()
	leader := area.NewLeader("dotted", 500)
	leader.SetIPD(40000)
	gl.AddInlineArea(leader)
	svg := etree.NewElement("svg")
	svg.CreateAttr("xmlns", svgNS)
	svg.CreateElement("rect").CreateAttr("width", "10")
	vp := area.NewViewport(area.NewForeignObject(svgNS, svg))
	vp.SetContentPosition(geom.FRect{W: 10.5, H: 10})
	vp.SetIPD(10000)
	gl.AddInlineArea(vp)
	gl.AddInlineArea(area.NewViewport(area.NewImage("logo.png")))
	bv.AddLineArea(gl)
	span.Flow(1).AddBlock(bv)
	// footnote with separator
	fn := body.Footnote()
	fn.SetSeparator(area.NewBlock())
	note := area.NewBlock()
	note.SetAreaClass(area.ClassFootnote)
	note.AddLineArea(textLine("Note", 12000))
	fn.AddChildArea(note)
	pv.SetPage(page)
	meta := etree.NewElement("meta")
	meta.CreateAttr("xmlns", "urn:x")
	meta.SetText("draft")
	pv.AddExtensionAttachment(area.NewExtensionAttachment("urn:x", meta, area.Immediately))
	return pv
}

func encode(t *testing.T, pv *area.PageViewport) string {
	var buf bytes.Buffer
	require.NoError(t, EncodePage(&buf, pv))
	return buf.String()
}

func findCitation(p *area.Page) *area.PageNumberCitation {
	var cit *area.PageNumberCitation
	p.Walk(func(a area.Area, depth int) error {
		if c, ok := a.(*area.PageNumberCitation); ok {
			cit = c
		}
		return nil
	})
	return cit
}

func TestEncodeDecodePage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.xml")
	defer teardown()
	//
	pv := testPage("P1", 1)
	s := encode(t, pv)
	assert.Contains(t, s, `<regionBefore `)
	assert.Contains(t, s, `ns1:role="para"`)
	assert.Contains(t, s, `<word ipd="15000" bpd="0">See</word>`)
	//
	pv2 := area.NewPageViewport("P1", pv.ViewArea(), 1, "1")
	require.NoError(t, DecodePage(strings.NewReader(s), pv2))
	require.False(t, pv2.IsCleared())
	if diff := cmp.Diff(s, encode(t, pv2)); diff != "" {
		t.Errorf("page changed by decoding (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"target"}, pv2.RegisterResolvables())
	body := pv2.Page().BodyRegion()
	require.NotNil(t, body)
	assert.Equal(t, 2, body.ColumnCount())
	assert.True(t, body.HasFootnote())
	assert.NotNil(t, body.Footnote().Separator())
}

func TestEncodeClearedPage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.xml")
	defer teardown()
	//
	pv := area.NewPageViewport("P1", geom.R(0, 0, 10, 10), 1, "1")
	err := EncodePage(&bytes.Buffer{}, pv)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestDecodeAppliesPendingResolution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.xml")
	defer teardown()
	//
	pv := testPage("P1", 1)
	require.Equal(t, []string{"target"}, pv.RegisterResolvables())
	s := encode(t, pv)
	pv.DetachPage()
	target := area.NewPageViewport("P7", pv.ViewArea(), 7, "vii")
	pv.ResolveIDRef("target", []*area.PageViewport{target})
	assert.True(t, pv.IsResolved())
	require.NoError(t, DecodePage(strings.NewReader(s), pv))
	assert.False(t, pv.HasPendingResolutions())
	cit := findCitation(pv.Page())
	require.NotNil(t, cit)
	assert.True(t, cit.IsResolved())
	assert.Equal(t, "vii", cit.Text())
}

func TestUnresolvedStateSurvives(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.xml")
	defer teardown()
	//
	pv := testPage("P1", 1)
	pv.RegisterResolvables()
	pv.ResolveIDRef("target", []*area.PageViewport{pv})
	s := encode(t, pv)
	assert.NotContains(t, s, `unresolved="true"`)
	assert.Contains(t, s, `internal-link="(P1,target)"`)
	//
	pv2 := area.NewPageViewport("P1", pv.ViewArea(), 1, "1")
	require.NoError(t, DecodePage(strings.NewReader(s), pv2))
	assert.Empty(t, pv2.RegisterResolvables(), "resolved areas have to stay resolved")
	assert.Equal(t, "1", findCitation(pv2.Page()).Text())
}

func writeDocument(t *testing.T) string {
	var buf bytes.Buffer
	r, err := NewRenderer(render.Options{Writer: &buf, Indent: 2, ConsistentOutput: true})
	require.NoError(t, err)
	m, err := model.NewRenderPagesModel(r)
	require.NoError(t, err)
	require.NoError(t, m.StartPageSequence(area.NewPageSequence(textLine("Title", 20000), language.German)))
	for i := 1; i <= 2; i++ {
		pv := testPage("P"+strconv.Itoa(i), i)
		pv.RegisterResolvables()
		pv.ResolveIDRef("target", []*area.PageViewport{pv})
		require.NoError(t, m.AddPage(pv))
	}
	bt := area.NewBookmarkTree()
	bm := area.NewBookmark("Chapter", true, "target")
	bm.AddChild(area.NewBookmark("Section", false, "nowhere"))
	bt.AddBookmark(bm)
	bm.SetPageKey("P1")
	require.NoError(t, m.HandleOffDocumentItem(bt))
	require.NoError(t, m.EndDocument())
	return buf.String()
}

func TestRendererOutputParsesBack(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.xml")
	defer teardown()
	//
	doc := writeDocument(t)
	assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`+"\n<areaTree>\n"))
	assert.True(t, strings.HasSuffix(doc, "  </pageSequence>\n</areaTree>\n"))
	assert.NotContains(t, doc, "<!--", "consistent output has no time stamp")
	//
	m := model.NewAreaTreeModel()
	require.NoError(t, Parse(strings.NewReader(doc), m))
	require.Equal(t, 1, m.PageSequenceCount())
	ps := m.PageSequence(1)
	require.NotNil(t, ps)
	assert.Equal(t, "de", ps.Language().String())
	require.NotNil(t, ps.Title())
	assert.Equal(t, 2, m.TotalPageCount())
	pv := m.Page(1, 1)
	require.NotNil(t, pv)
	assert.Equal(t, "P2", pv.Key())
	assert.Equal(t, "A4", pv.MasterName())
	require.Len(t, pv.ExtensionAttachments(), 1)
	assert.Equal(t, "draft", pv.ExtensionAttachments()[0].Element().Text())
	items := m.OffDocumentItems()
	require.Len(t, items, 1)
	bt, ok := items[0].(*area.BookmarkTree)
	require.True(t, ok)
	bm := bt.Bookmarks()[0]
	assert.Equal(t, "P1", bm.PageKey())
	assert.False(t, bm.Children()[0].TargetResolved())
	//
	var buf bytes.Buffer
	r, err := NewRenderer(render.Options{Writer: &buf, Indent: 2, ConsistentOutput: true})
	require.NoError(t, err)
	require.NoError(t, r.StartRenderer())
	require.NoError(t, r.StartPageSequence(ps))
	for _, pv := range ps.Pages() {
		require.NoError(t, r.RenderPage(pv))
	}
	require.NoError(t, r.RenderExtension(bt))
	require.NoError(t, r.StopRenderer())
	if diff := cmp.Diff(doc, buf.String()); diff != "" {
		t.Errorf("document changed by parsing (-want +got):\n%s", diff)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRendererWriteErrorsAbort(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.xml")
	defer teardown()
	//
	r, err := NewRenderer(render.Options{Writer: failingWriter{}})
	require.NoError(t, err)
	assert.ErrorIs(t, r.StartRenderer(), render.ErrAbort)
	_, err = NewRenderer(render.Options{})
	assert.Error(t, err)
}

func TestRegister(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.xml")
	defer teardown()
	//
	reg := render.NewRegistry()
	Register(reg)
	assert.Equal(t, []string{Name}, reg.Names())
	r, err := reg.Create(Name, render.Options{Writer: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.False(t, r.SupportsOutOfOrder())
}

func TestParseErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.xml")
	defer teardown()
	//
	page := func(content string) string {
		return `<areaTree><pageSequence><pageViewport key="P1" bounds="0 0 10 10" nr="1" formatted-nr="1">` +
			`<page><regionViewport rect="0 0 10 10">` + content +
			`</regionViewport></page></pageViewport></pageSequence></areaTree>`
	}
	for _, tc := range []struct {
		name string
		doc  string
		err  error
		path string
	}{
		{"root", `<pages/>`, ErrUnknownElement, "/"},
		{"element", `<areaTree><pageSequence><bogus/></pageSequence></areaTree>`, ErrUnknownElement,
			"/areaTree/pageSequence/bogus"},
		{"attribute", `<areaTree><pageSequence><pageViewport key="P1" bounds="a b"/></pageSequence></areaTree>`,
			ErrMalformed, "/areaTree/pageSequence/pageViewport"},
		{"nesting", page(`<regionBody><lineArea/></regionBody>`), ErrStructure, ""},
		{"trait", page(`<regionBefore color="nocolor"/>`), nil, ""},
	} {
		err := Parse(strings.NewReader(tc.doc), model.NewAreaTreeModel())
		require.Error(t, err, tc.name)
		var pe *ParseError
		require.True(t, errors.As(err, &pe), "%s: %v", tc.name, err)
		if tc.err != nil {
			assert.ErrorIs(t, err, tc.err, tc.name)
		}
		if tc.path != "" {
			assert.Equal(t, tc.path, pe.Path, tc.name)
		}
	}
}

func TestForeignElementsAreSkipped(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.xml")
	defer teardown()
	//
	doc := `<areaTree xmlns:x="urn:x"><x:meta/><pageSequence><x:note>ignored</x:note>` +
		`<pageViewport key="P1" bounds="0 0 10 10" nr="1" formatted-nr="i"><page/></pageViewport>` +
		`</pageSequence><destination idref="a" page-key="P1"/></areaTree>`
	m := model.NewAreaTreeModel()
	require.NoError(t, Parse(strings.NewReader(doc), m))
	assert.Equal(t, 1, m.TotalPageCount())
	assert.Equal(t, "i", m.Page(1, 0).PageNumberString())
	require.Len(t, m.OffDocumentItems(), 1)
	d := m.OffDocumentItems()[0].(*area.Destination)
	assert.True(t, d.IsResolved())
	assert.Equal(t, "P1", d.PageKey())
}

func TestTraitsOutsideSubsetAreDropped(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.xml")
	defer teardown()
	//
	doc := `<areaTree><pageSequence><pageViewport key="P1" bounds="0 0 10 10" nr="1" formatted-nr="1">` +
		`<page><regionViewport rect="0 0 10 10"><regionBefore>` +
		`<block space-before="10" internal-link="(P1,x)" font-size="12000" role="H1"/>` +
		`</regionBefore></regionViewport></page></pageViewport></pageSequence></areaTree>`
	m := model.NewAreaTreeModel()
	require.NoError(t, Parse(strings.NewReader(doc), m))
	rr := m.Page(1, 0).Page().RegionViewport(area.RegionBefore).RegionReference()
	require.Len(t, rr.ChildAreas(), 1)
	b := rr.ChildAreas()[0]
	assert.True(t, b.HasTrait(trait.SpaceBefore))
	assert.True(t, b.HasTrait(trait.Role))
	assert.False(t, b.HasTrait(trait.InternalLink), "links are not block traits")
	assert.False(t, b.HasTrait(trait.FontSize), "fonts are not block traits")
	//
	b.AddTrait(trait.InternalLink, trait.InternalLinkValue{PageKey: "P1", IDRef: "x"})
	w := area.NewWordArea("w")
	w.AddTrait(trait.Color, trait.Black)
	var buf bytes.Buffer
	pv := m.Page(1, 0)
	require.NoError(t, EncodePage(&buf, pv))
	out := buf.String()
	assert.NotContains(t, out, "internal-link")
	assert.Contains(t, out, `role="H1"`)
	assert.NotContains(t, encodeArea(w), "color=")
}

func encodeArea(a area.Area) string {
	root := etree.NewElement("test")
	writeArea(root, a)
	doc := etree.NewDocument()
	doc.SetRoot(root)
	s, _ := doc.WriteToString()
	return s
}
