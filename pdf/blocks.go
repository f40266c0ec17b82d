package pdf

import (
	"strings"

	"github.com/goliatone/go-docgen/markdown"
	"github.com/jung-kurt/gofpdf"
)

// Block geometry, in points.
const (
	h1BandHeight    = 30.0
	h2UnderlineLen  = 64.0
	headingGap      = 6.0
	bulletIndent    = 16.0
	bulletRadius    = 2.0
	listItemGap     = 3.0
	quotePad        = 8.0
	quoteStripW     = 3.0
	codePad         = 8.0
	codeCaptionSize = 7.0
	ruleZone        = 16.0
)

// blockRenderer draws one token at a time at the cursor position. Every
// variable-height block is measured before any ink goes down, so a block
// either fits the remaining page or triggers exactly one page break first.
// Content taller than a full page draws past the footer reserve instead of
// breaking again.
type blockRenderer struct {
	doc    *gofpdf.Fpdf
	cur    *cursor
	theme  Theme
	layout Layout

	// onHeading, when set, observes the page each heading lands on. The
	// callback fires after space is reserved, so the reported page is the
	// page the heading is drawn on.
	onHeading func(level, page int)
}

func newBlockRenderer(doc *gofpdf.Fpdf, cur *cursor, theme Theme, layout Layout) *blockRenderer {
	return &blockRenderer{doc: doc, cur: cur, theme: theme, layout: layout}
}

func (r *blockRenderer) render(tok markdown.Token) {
	switch tok.Kind {
	case markdown.KindHeading:
		r.heading(tok)
	case markdown.KindParagraph:
		r.paragraph(tok.Runs, tok.Text)
	case markdown.KindList:
		r.list(tok)
	case markdown.KindBlockquote:
		r.blockquote(tok)
	case markdown.KindCode:
		r.code(tok)
	case markdown.KindRule:
		r.rule()
	case markdown.KindSpace:
		r.cur.advance(blockSpacing)
	default:
		r.other(tok)
	}
}

func headingSize(level int) float64 {
	switch level {
	case 1:
		return 20
	case 2:
		return 16
	case 3:
		return 13
	case 4:
		return 12
	default:
		return 11
	}
}

// heading draws one heading line. Level 1 gets a full-bleed band in the
// theme gradient, level 2 a short accent underline, deeper levels accent
// colored text with no decoration. Heading text never wraps; overlong text
// is truncated to the available width.
func (r *blockRenderer) heading(tok markdown.Token) {
	level := tok.Level
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	text := tok.Text
	if text == "" {
		text = markdown.FlattenRuns(tok.Runs)
	}
	if strings.TrimSpace(text) == "" {
		return
	}

	if r.cur.y > r.cur.contentTop {
		r.cur.advance(headingGap)
	}

	switch level {
	case 1:
		r.headingBand(text)
	case 2:
		r.headingUnderlined(text)
	default:
		r.headingPlain(level, text)
	}
}

func (r *blockRenderer) headingBand(text string) {
	r.cur.ensureSpace(h1BandHeight + blockSpacing)
	if r.onHeading != nil {
		r.onHeading(1, r.cur.page)
	}
	y := r.cur.y

	if !r.theme.GradientStart.isZero() || !r.theme.GradientEnd.isZero() {
		r.doc.LinearGradient(0, y, r.cur.pageW, h1BandHeight,
			r.theme.GradientStart.R, r.theme.GradientStart.G, r.theme.GradientStart.B,
			r.theme.GradientEnd.R, r.theme.GradientEnd.G, r.theme.GradientEnd.B,
			0, 0, 1, 0)
	} else {
		r.doc.SetFillColor(r.theme.Primary.R, r.theme.Primary.G, r.theme.Primary.B)
		r.doc.Rect(0, y, r.cur.pageW, h1BandHeight, "F")
	}

	size := headingSize(1)
	r.doc.SetFont(r.theme.HeadingFont, "B", size)
	r.doc.SetTextColor(r.theme.Background.R, r.theme.Background.G, r.theme.Background.B)
	line := r.truncateToWidth(text, r.cur.contentWidth())
	r.doc.Text(r.layout.Margins.Left, y+h1BandHeight/2+size*0.35, line)

	r.cur.advance(h1BandHeight + blockSpacing)
}

func (r *blockRenderer) headingUnderlined(text string) {
	size := headingSize(2)
	need := size*lineHeightFactor + 6
	r.cur.ensureSpace(need + blockSpacing)
	if r.onHeading != nil {
		r.onHeading(2, r.cur.page)
	}

	r.doc.SetFont(r.theme.HeadingFont, "B", size)
	r.doc.SetTextColor(r.theme.Primary.R, r.theme.Primary.G, r.theme.Primary.B)
	baseline := r.cur.y + size
	line := r.truncateToWidth(text, r.cur.contentWidth())
	r.doc.Text(r.layout.Margins.Left, baseline, line)

	r.doc.SetDrawColor(r.theme.Accent.R, r.theme.Accent.G, r.theme.Accent.B)
	r.doc.SetLineWidth(1.2)
	r.doc.Line(r.layout.Margins.Left, baseline+4, r.layout.Margins.Left+h2UnderlineLen, baseline+4)

	r.cur.advance(need + blockSpacing)
}

func (r *blockRenderer) headingPlain(level int, text string) {
	size := headingSize(level)
	need := size * lineHeightFactor
	r.cur.ensureSpace(need + blockSpacing)
	if r.onHeading != nil {
		r.onHeading(level, r.cur.page)
	}

	r.doc.SetFont(r.theme.HeadingFont, "B", size)
	r.doc.SetTextColor(r.theme.Accent.R, r.theme.Accent.G, r.theme.Accent.B)
	line := r.truncateToWidth(text, r.cur.contentWidth())
	r.doc.Text(r.layout.Margins.Left, r.cur.y+size, line)

	r.cur.advance(need + blockSpacing)
}

// paragraph flows styled runs into justified-left lines. The flow pass packs
// words into lines using per-style widths; the draw pass walks the same
// lines, so measurement and ink always agree. Lines paginate independently,
// long paragraphs split across pages between lines.
func (r *blockRenderer) paragraph(runs []markdown.Run, fallback string) {
	if len(runs) == 0 {
		if strings.TrimSpace(fallback) == "" {
			return
		}
		runs = []markdown.Run{{Style: markdown.RunPlain, Text: fallback}}
	}
	lines := r.flowRuns(runs, r.cur.contentWidth())
	if len(lines) == 0 {
		return
	}
	lineH := r.layout.FontSize * lineHeightFactor
	if len(lines) > 1 {
		// Avoid stranding a single opening line at the page bottom.
		r.cur.ensureSpace(2 * lineH)
	}
	for _, line := range lines {
		r.cur.ensureSpace(lineH)
		r.drawRunLine(line, r.layout.Margins.Left, r.cur.y+r.layout.FontSize)
		r.cur.advance(lineH)
	}
	r.cur.advance(blockSpacing)
}

// list draws one bullet item at a time. Items are measured individually so a
// long list paginates between items, never inside the bullet gutter.
func (r *blockRenderer) list(tok markdown.Token) {
	lineH := r.layout.FontSize * lineHeightFactor
	avail := r.cur.contentWidth() - bulletIndent
	drew := false
	for _, item := range tok.Items {
		lines := r.flowRuns(item, avail)
		if len(lines) == 0 {
			continue
		}
		drew = true
		r.cur.ensureSpace(float64(len(lines))*lineH + listItemGap)

		r.doc.SetFillColor(r.theme.Accent.R, r.theme.Accent.G, r.theme.Accent.B)
		r.doc.Circle(r.layout.Margins.Left+bulletRadius+2, r.cur.y+r.layout.FontSize*0.6, bulletRadius, "F")

		for _, line := range lines {
			r.drawRunLine(line, r.layout.Margins.Left+bulletIndent, r.cur.y+r.layout.FontSize)
			r.cur.advance(lineH)
		}
		r.cur.advance(listItemGap)
	}
	if drew {
		r.cur.advance(blockSpacing - listItemGap)
	}
}

// blockquote draws a tinted box with an accent strip on the left edge and
// the quoted text in italics. The box height comes from the wrapped line
// count, measured before anything is drawn.
func (r *blockRenderer) blockquote(tok markdown.Token) {
	text := strings.TrimSpace(tok.Text)
	if text == "" {
		return
	}
	r.doc.SetFont(r.theme.BodyFont, "I", r.layout.FontSize)
	lines := r.doc.SplitText(text, r.cur.contentWidth()-quoteStripW-quotePad*2)
	if len(lines) == 0 {
		return
	}
	lineH := r.layout.FontSize * lineHeightFactor
	boxH := quotePad*2 + float64(len(lines))*lineH
	r.cur.ensureSpace(boxH + blockSpacing)
	y := r.cur.y

	fill := tint(r.theme.Accent, 0.92)
	r.doc.SetFillColor(fill.R, fill.G, fill.B)
	r.doc.Rect(r.layout.Margins.Left, y, r.cur.contentWidth(), boxH, "F")
	r.doc.SetFillColor(r.theme.Accent.R, r.theme.Accent.G, r.theme.Accent.B)
	r.doc.Rect(r.layout.Margins.Left, y, quoteStripW, boxH, "F")

	r.doc.SetFont(r.theme.BodyFont, "I", r.layout.FontSize)
	r.doc.SetTextColor(r.theme.Secondary.R, r.theme.Secondary.G, r.theme.Secondary.B)
	baseline := y + quotePad + r.layout.FontSize
	for _, line := range lines {
		r.doc.Text(r.layout.Margins.Left+quoteStripW+quotePad, baseline, line)
		baseline += lineH
	}

	r.cur.advance(boxH + blockSpacing)
}

// code draws verbatim lines in the code font inside a bordered box. Lines
// are never wrapped; anything wider than the box is truncated. A fenced
// language tag renders as a small caption in the top right corner.
func (r *blockRenderer) code(tok markdown.Token) {
	body := strings.TrimRight(tok.Text, "\n")
	if body == "" {
		return
	}
	lines := strings.Split(body, "\n")
	size := r.layout.FontSize - 1
	lineH := size * codeLineFactor
	boxH := codePad*2 + float64(len(lines))*lineH
	r.cur.ensureSpace(boxH + blockSpacing)
	y := r.cur.y
	width := r.cur.contentWidth()

	fill := tint(r.theme.Secondary, 0.92)
	border := tint(r.theme.Secondary, 0.55)
	r.doc.SetFillColor(fill.R, fill.G, fill.B)
	r.doc.SetDrawColor(border.R, border.G, border.B)
	r.doc.SetLineWidth(0.6)
	r.doc.Rect(r.layout.Margins.Left, y, width, boxH, "FD")

	if tok.Language != "" {
		r.doc.SetFont(r.theme.CodeFont, "", codeCaptionSize)
		r.doc.SetTextColor(r.theme.Secondary.R, r.theme.Secondary.G, r.theme.Secondary.B)
		label := strings.ToUpper(tok.Language)
		r.doc.Text(r.layout.Margins.Left+width-codePad-r.doc.GetStringWidth(label), y+codePad, label)
	}

	r.doc.SetFont(r.theme.CodeFont, "", size)
	r.doc.SetTextColor(r.theme.Text.R, r.theme.Text.G, r.theme.Text.B)
	baseline := y + codePad + size*0.9
	for _, line := range lines {
		r.doc.Text(r.layout.Margins.Left+codePad, baseline, r.truncateToWidth(line, width-codePad*2))
		baseline += lineH
	}

	r.cur.advance(boxH + blockSpacing)
}

// rule draws a thematic break: an accent line across the content width with
// three dots over its center.
func (r *blockRenderer) rule() {
	r.cur.ensureSpace(ruleZone + blockSpacing/2)
	y := r.cur.y + ruleZone/2
	left := r.layout.Margins.Left
	right := left + r.cur.contentWidth()
	center := (left + right) / 2

	r.doc.SetDrawColor(r.theme.Accent.R, r.theme.Accent.G, r.theme.Accent.B)
	r.doc.SetLineWidth(1)
	r.doc.Line(left, y, right, y)

	r.doc.SetFillColor(r.theme.Accent.R, r.theme.Accent.G, r.theme.Accent.B)
	r.doc.Circle(center, y, 2.2, "F")
	r.doc.Circle(center-12, y, 1.4, "F")
	r.doc.Circle(center+12, y, 1.4, "F")

	r.cur.advance(ruleZone + blockSpacing/2)
}

// other renders any recoverable text as a plain paragraph and skips silently
// otherwise. Unknown kinds must never fail a render.
func (r *blockRenderer) other(tok markdown.Token) {
	if strings.TrimSpace(tok.Text) == "" {
		return
	}
	r.paragraph(nil, tok.Text)
}

// runWord is one whitespace-delimited word tagged with its run style.
type runWord struct {
	style markdown.RunStyle
	text  string
}

// flowRuns packs styled words into lines no wider than width. Widths are
// measured with the font each word will draw in, and a word wider than the
// whole line is placed alone rather than dropped.
func (r *blockRenderer) flowRuns(runs []markdown.Run, width float64) [][]runWord {
	var lines [][]runWord
	var line []runWord
	x := 0.0
	for _, run := range runs {
		for _, word := range strings.Fields(run.Text) {
			r.setRunStyle(run.Style, r.layout.FontSize)
			wordW := r.doc.GetStringWidth(word)
			spaceW := r.doc.GetStringWidth(" ")
			if len(line) > 0 && x+spaceW+wordW > width {
				lines = append(lines, line)
				line = nil
				x = 0
			}
			if len(line) > 0 {
				x += spaceW
			}
			line = append(line, runWord{style: run.Style, text: word})
			x += wordW
		}
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

// drawRunLine draws one packed line at the shared baseline, switching font
// and color per word exactly as flowRuns measured it.
func (r *blockRenderer) drawRunLine(line []runWord, x, baseline float64) {
	for i, word := range line {
		r.setRunStyle(word.style, r.layout.FontSize)
		if i > 0 {
			x += r.doc.GetStringWidth(" ")
		}
		r.doc.Text(x, baseline, word.text)
		x += r.doc.GetStringWidth(word.text)
	}
}

func (r *blockRenderer) setRunStyle(style markdown.RunStyle, size float64) {
	switch style {
	case markdown.RunStrong:
		r.doc.SetFont(r.theme.HeadingFont, "B", size)
		r.doc.SetTextColor(r.theme.Primary.R, r.theme.Primary.G, r.theme.Primary.B)
	case markdown.RunEmphasis:
		r.doc.SetFont(r.theme.BodyFont, "I", size)
		r.doc.SetTextColor(r.theme.Secondary.R, r.theme.Secondary.G, r.theme.Secondary.B)
	default:
		r.doc.SetFont(r.theme.BodyFont, "", size)
		r.doc.SetTextColor(r.theme.Text.R, r.theme.Text.G, r.theme.Text.B)
	}
}

// truncateToWidth trims text until it fits width in the current font,
// appending an ellipsis when anything was dropped.
func (r *blockRenderer) truncateToWidth(text string, width float64) string {
	return truncateText(r.doc, text, width)
}
