package pagecache

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/npillmayer/areatree/area"
	"github.com/npillmayer/areatree/atxml"
	"github.com/npillmayer/areatree/geom"
	"github.com/npillmayer/areatree/model"
	"github.com/npillmayer/areatree/render"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// citingPage creates a page citing the page number of id, if id is set.
func citingPage(n int, id string) *area.PageViewport {
	pv := area.NewPageViewport(fmt.Sprintf("P%d", n), geom.R(0, 0, 595000, 842000), n, strconv.Itoa(n))
	p := area.NewPage()
	rv := area.NewRegionViewport(geom.R(0, 0, 595000, 842000))
	body := area.NewBodyRegion("xsl-region-body", 1, 0)
	rv.SetRegionReference(body)
	p.SetRegionViewport(area.RegionBody, rv)
	line := area.NewLineArea()
	if id != "" {
		line.AddInlineArea(area.NewPageNumberCitation(id, false, 5000, nil))
	}
	b := area.NewBlock()
	b.AddLineArea(line)
	body.MainReference().CreateSpan(true).Flow(0).AddBlock(b)
	pv.SetPage(p)
	pv.RegisterResolvables()
	return pv
}

func citation(pv *area.PageViewport) *area.PageNumberCitation {
	var cit *area.PageNumberCitation
	pv.Page().Walk(func(a area.Area, depth int) error {
		if c, ok := a.(*area.PageNumberCitation); ok {
			cit = c
		}
		return nil
	})
	return cit
}

func TestDiskStoreSaveLoad(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.cache")
	defer teardown()
	//
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()
	pv := citingPage(1, "x")
	require.NoError(t, store.Save(pv))
	assert.True(t, pv.IsCleared())
	assert.Equal(t, 1, store.Len())
	files, _ := filepath.Glob(filepath.Join(store.Dir(), "page-*.xml"))
	assert.Len(t, files, 1)
	assert.Error(t, store.Save(pv), "a page may be cached once")
	//
	pv.ResolveIDRef("x", []*area.PageViewport{area.NewPageViewport("P9", geom.R(0, 0, 1, 1), 9, "ix")})
	require.NoError(t, store.Load(pv))
	require.False(t, pv.IsCleared())
	assert.Equal(t, "ix", citation(pv).Text())
	assert.Equal(t, 0, store.Len())
	files, _ = filepath.Glob(filepath.Join(store.Dir(), "*"))
	assert.Empty(t, files, "loading has to remove the file")
	assert.ErrorIs(t, store.Load(pv), ErrNotStored)
}

func TestDiskStoreBrokenFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.cache")
	defer teardown()
	//
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()
	pv := citingPage(1, "")
	require.NoError(t, store.Save(pv))
	files, _ := filepath.Glob(filepath.Join(store.Dir(), "page-*.xml"))
	require.Len(t, files, 1)
	require.NoError(t, os.WriteFile(files[0], []byte("<page><bogus/></page>"), 0o600))
	err = store.Load(pv)
	var pe *atxml.ParseError
	assert.ErrorAs(t, err, &pe)
	assert.True(t, pv.IsCleared())
	_, err = os.Stat(files[0])
	assert.True(t, os.IsNotExist(err), "a failed load has to free the file")
}

func TestDiskStoreClose(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.cache")
	defer teardown()
	//
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save(citingPage(1, "")))
	pv := citingPage(2, "")
	require.NoError(t, store.Save(pv))
	store.Discard(pv)
	assert.Equal(t, 1, store.Len())
	require.NoError(t, store.Close())
	_, err = os.Stat(store.Dir())
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, store.Save(citingPage(3, "")), ErrClosed)
	assert.NoError(t, store.Close())
}

func TestMemStore(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.cache")
	defer teardown()
	//
	store := NewMemStore()
	pv := citingPage(1, "x")
	require.NoError(t, store.Save(pv))
	assert.True(t, pv.IsCleared())
	assert.ErrorIs(t, store.Save(pv), atxml.ErrNoContent)
	pv.ResolveIDRef("x", nil)
	require.NoError(t, store.Load(pv))
	assert.Equal(t, area.PlaceholderText, citation(pv).Text())
	assert.ErrorIs(t, store.Load(pv), ErrNotStored)
	require.NoError(t, store.Close())
	assert.ErrorIs(t, store.Save(pv), ErrClosed)
}

func TestModelSwapsPreparedPages(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "areatree.cache")
	defer teardown()
	//
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()
	var buf bytes.Buffer
	r, err := atxml.NewRenderer(render.Options{Writer: &buf, Indent: 2, ConsistentOutput: true})
	require.NoError(t, err)
	m, err := model.NewRenderPagesModel(r, model.WithPageStore(store))
	require.NoError(t, err)
	require.NoError(t, m.StartPageSequence(area.NewPageSequence(nil, language.English)))
	p1, p2 := citingPage(1, "x"), citingPage(2, "")
	require.NoError(t, m.AddPage(p1))
	require.NoError(t, m.AddPage(p2))
	assert.Equal(t, 2, store.Len())
	assert.True(t, p1.IsCleared())
	p1.ResolveIDRef("x", []*area.PageViewport{p2})
	require.NoError(t, m.AddPage(citingPage(3, "")))
	assert.Equal(t, 0, store.Len())
	require.NoError(t, m.EndDocument())
	assert.Contains(t, buf.String(), `">2</word>`)
	for _, pv := range m.PageSequence(1).Pages() {
		assert.Equal(t, area.PageRendered, pv.State())
	}
}
