package area

import (
	"slices"

	"golang.org/x/text/language"
)

// PageSequence is an ordered list of pages with an optional title and
// locale.
type PageSequence struct {
	title *LineArea
	lang  language.Tag
	pages []*PageViewport
}

// NewPageSequence creates an empty page sequence. title may be nil.
func NewPageSequence(title *LineArea, lang language.Tag) *PageSequence {
	return &PageSequence{title: title, lang: lang}
}

// Title returns the title of the sequence, or nil.
func (ps *PageSequence) Title() *LineArea { return ps.title }

// SetTitle sets the title of the sequence.
func (ps *PageSequence) SetTitle(title *LineArea) { ps.title = title }

// Language returns the locale of the sequence. It is language.Und if unset.
func (ps *PageSequence) Language() language.Tag { return ps.lang }

// AddPage appends a page to the sequence.
func (ps *PageSequence) AddPage(pv *PageViewport) {
	assertThat(pv.sequence == nil || pv.sequence == ps, "page %s belongs to another page sequence", pv.key)
	pv.sequence = ps
	ps.pages = append(ps.pages, pv)
}

// PageCount returns the number of pages of the sequence.
func (ps *PageSequence) PageCount() int { return len(ps.pages) }

// Page returns the page at zero-based position i, or nil.
func (ps *PageSequence) Page(i int) *PageViewport {
	if i < 0 || i >= len(ps.pages) {
		return nil
	}
	return ps.pages[i]
}

// Pages returns the pages of the sequence.
func (ps *PageSequence) Pages() []*PageViewport {
	return slices.Clone(ps.pages)
}

// IsFirstPage is true if pv is the first page of the sequence.
func (ps *PageSequence) IsFirstPage(pv *PageViewport) bool {
	return len(ps.pages) > 0 && ps.pages[0] == pv
}
