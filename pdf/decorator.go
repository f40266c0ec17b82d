package pdf

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// decorator draws the repeating page chrome. Header and footer depend only on
// the title, the generation date, the theme and the page number passed in, so
// redrawing them on any page produces identical output for identical inputs.
// Body content never influences the chrome.
type decorator struct {
	theme  Theme
	layout Layout
	title  string
	date   string
}

func newDecorator(theme Theme, layout Layout, title, date string) *decorator {
	return &decorator{theme: theme, layout: layout, title: title, date: date}
}

// header paints the full-bleed title band, the centered title and the accent
// rule under the band. No-op when headers are disabled.
func (d *decorator) header(doc *gofpdf.Fpdf) {
	if !d.layout.IncludeHeader {
		return
	}
	w, _ := doc.GetPageSize()

	if !d.theme.GradientStart.isZero() || !d.theme.GradientEnd.isZero() {
		doc.LinearGradient(0, 0, w, headerBandHeight,
			d.theme.GradientStart.R, d.theme.GradientStart.G, d.theme.GradientStart.B,
			d.theme.GradientEnd.R, d.theme.GradientEnd.G, d.theme.GradientEnd.B,
			0, 0, 1, 0)
	} else {
		doc.SetFillColor(d.theme.Primary.R, d.theme.Primary.G, d.theme.Primary.B)
		doc.Rect(0, 0, w, headerBandHeight, "F")
	}

	doc.SetFont(d.theme.HeadingFont, "B", headerTitleSize)
	doc.SetTextColor(d.theme.Background.R, d.theme.Background.G, d.theme.Background.B)
	tw := doc.GetStringWidth(d.title)
	doc.Text((w-tw)/2, headerBandHeight/2+headerTitleSize*0.35, d.title)

	doc.SetDrawColor(d.theme.Accent.R, d.theme.Accent.G, d.theme.Accent.B)
	doc.SetLineWidth(1.4)
	doc.Line(0, headerBandHeight+headerRuleOffset, w, headerBandHeight+headerRuleOffset)
}

// footer draws the rule above the footer zone, the generation date on the
// left and, when page numbers are enabled, "Page n" on the right. No-op when
// footers are disabled.
func (d *decorator) footer(doc *gofpdf.Fpdf, page int) {
	if !d.layout.IncludeFooter {
		return
	}
	w, h := doc.GetPageSize()
	ruleY := h - footerZoneHeight

	doc.SetDrawColor(d.theme.Accent.R, d.theme.Accent.G, d.theme.Accent.B)
	doc.SetLineWidth(0.8)
	doc.Line(d.layout.Margins.Left, ruleY, w-d.layout.Margins.Right, ruleY)

	doc.SetFont(d.theme.BodyFont, "", footerCaptionSize)
	doc.SetTextColor(d.theme.Secondary.R, d.theme.Secondary.G, d.theme.Secondary.B)
	baseline := ruleY + 14
	doc.Text(d.layout.Margins.Left, baseline, d.date)

	if d.layout.IncludePageNumbers {
		label := fmt.Sprintf("Page %d", page)
		doc.Text(w-d.layout.Margins.Right-doc.GetStringWidth(label), baseline, label)
	}
}
