package pdf

import "github.com/jung-kurt/gofpdf"

// cursor is the single source of truth for the vertical write position and
// the current page number during one render. It owns the page-break
// transition: close out the page being left with its footer, open a fresh
// page, reset below the header chrome and redraw it.
//
// After every advance or ensureSpace call the position sits inside
// [top margin, page height - bottom margin] and the page number has grown by
// at most one.
type cursor struct {
	doc    *gofpdf.Fpdf
	layout Layout
	deco   *decorator

	y    float64
	page int

	pageW      float64
	pageH      float64
	contentTop float64
	limit      float64
}

func newCursor(doc *gofpdf.Fpdf, layout Layout, deco *decorator) *cursor {
	c := &cursor{doc: doc, layout: layout, deco: deco}
	c.pageW, c.pageH = doc.GetPageSize()
	c.contentTop = layout.Margins.Top + layout.headerOffset()
	if layout.IncludeHeader {
		// Content never starts above the band, even with tiny margins.
		if min := headerBandHeight + headerRuleOffset + 8; c.contentTop < min {
			c.contentTop = min
		}
	}
	c.limit = c.pageH - layout.Margins.Bottom - layout.footerOffset()
	return c
}

// start opens the first page and draws its header. Page numbering begins
// at 1.
func (c *cursor) start() {
	c.doc.AddPage()
	c.page = 1
	c.y = c.contentTop
	if c.layout.IncludeHeader {
		c.deco.header(c.doc)
	}
}

// contentWidth is the wrap and fit width for all body content.
func (c *cursor) contentWidth() float64 {
	return c.pageW - c.layout.Margins.Left - c.layout.Margins.Right
}

// advance moves the cursor down by amount, breaking to a new page when the
// result would cross into the footer reserve. A break discards the remainder
// of the advance: the new page starts clean at the content top.
func (c *cursor) advance(amount float64) {
	if c.y+amount > c.limit {
		c.breakPage()
		return
	}
	c.y += amount
}

// ensureSpace breaks to a new page when required points would not fit on the
// remainder of this page. It never moves the cursor on the current page, and
// it stays put when the cursor is already at the top of a fresh page: content
// taller than a whole page draws with visual overflow rather than looping.
func (c *cursor) ensureSpace(required float64) {
	if c.y+required <= c.limit {
		return
	}
	if c.y <= c.contentTop {
		return
	}
	c.breakPage()
}

// breakPage closes out the current page and opens the next one: footer for
// the page being left, fresh page, cursor reset, header redrawn. The page
// number increases by exactly one.
func (c *cursor) breakPage() {
	if c.layout.IncludeFooter {
		c.deco.footer(c.doc, c.page)
	}
	c.doc.AddPage()
	c.page++
	c.y = c.contentTop
	if c.layout.IncludeHeader {
		c.deco.header(c.doc)
	}
}
