/*
Package areadbg prints area trees for debugging.

Every area is printed on a line of its own, with its kind, its extents in
points and its traits:

	P1 [0 0 595000 842000]
	└── [regionViewport]  rect=0 0 595000 842000 ipd=0pt bpd=0pt
	    └── [region body]  ipd=595pt bpd=0pt
	        └── [mainReference]  ipd=595pt bpd=0pt

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package areadbg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/areatree/area"
	"github.com/npillmayer/areatree/geom"
	"github.com/npillmayer/schuko/tracing"
	"github.com/xlab/treeprint"
)

// Dump returns a print of the content of a page viewport.
func Dump(pv *area.PageViewport) string {
	t := treeprint.NewWithRoot(fmt.Sprintf("%s [%s]", pv.Key(), pv.ViewArea()))
	p := pv.Page()
	if p == nil {
		t.AddNode("(cleared)")
		return t.String()
	}
	for _, rc := range area.RegionClasses {
		if rv := p.RegionViewport(rc); rv != nil {
			add(t, rv)
		}
	}
	return t.String()
}

// DumpArea returns a print of an area and its descendants.
func DumpArea(a area.Area) string {
	t := treeprint.New()
	add(t, a)
	return t.String()
}

// Trace dumps the content of pv to a tracer at debug level.
func Trace(t tracing.Trace, pv *area.PageViewport) {
	if t.GetTraceLevel() < tracing.LevelDebug {
		return
	}
	t.Debugf("page %s:\n%s", pv.Key(), Dump(pv))
}

func add(t treeprint.Tree, a area.Area) {
	children := a.ChildAreas()
	if len(children) == 0 {
		t.AddMetaNode(name(a), label(a))
		return
	}
	branch := t.AddMetaBranch(name(a), label(a))
	for _, ch := range children {
		add(branch, ch)
	}
}

func name(a area.Area) string {
	if r, ok := a.(area.Region); ok {
		return "region " + r.RegionClass().String()
	}
	return a.Kind().String()
}

func label(a area.Area) string {
	var b strings.Builder
	switch x := a.(type) {
	case *area.RegionViewport:
		fmt.Fprintf(&b, "rect=%s ", x.ViewArea())
	case *area.WordArea:
		b.WriteString(strconv.Quote(x.Word()) + " ")
	case *area.SpaceArea:
		b.WriteString(strconv.Quote(x.Space()) + " ")
	case *area.PageNumberCitation:
		fmt.Fprintf(&b, "idref=%s resolved=%v ", x.IDRef(), x.IsResolved())
	case *area.InlineParent:
		if id := x.LinkIDRef(); id != "" {
			fmt.Fprintf(&b, "idref=%s resolved=%v ", id, x.IsResolved())
		}
	case *area.Image:
		fmt.Fprintf(&b, "url=%s ", x.URL())
	}
	fmt.Fprintf(&b, "ipd=%s bpd=%s", pt(a.IPD()), pt(a.BPD()))
	if a.Traits().Len() > 0 {
		b.WriteString(" " + a.Traits().String())
	}
	return b.String()
}

// pt formats a length in millipoints as points.
func pt(mpt int) string {
	return strconv.FormatFloat(geom.ToDU(mpt).Points(), 'f', -1, 64) + "pt"
}
