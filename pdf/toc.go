package pdf

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-docgen/markdown"
	"github.com/jung-kurt/gofpdf"
)

const (
	tocTitle       = "Contents"
	tocTitleSize   = 16.0
	tocTitleGap    = 34.0
	tocLineHeight  = 20.0
	tocIndentStep  = 14.0
	tocMaxDepth    = 3
	tocLeaderInset = 6.0
)

// tocEntry is one line of the table of contents. The page number is the
// page the table itself is being rendered on at collection time, not the
// heading's eventual page: the collection pass runs before any body page
// breaks, so the numbers are best-effort locators. Making them exact would
// take a full second layout pass and is deliberately not done here.
type tocEntry struct {
	level int
	text  string
	page  int
}

// collectTOC pulls headings up to maxDepth out of the token stream in
// document order, stamping each entry with the page current at collection.
func collectTOC(tokens []markdown.Token, maxDepth, page int) []tocEntry {
	if maxDepth <= 0 {
		maxDepth = tocMaxDepth
	}
	var entries []tocEntry
	for _, tok := range tokens {
		if tok.Kind != markdown.KindHeading {
			continue
		}
		level := tok.Level
		if level < 1 {
			level = 1
		}
		if level > maxDepth {
			continue
		}
		text := tok.Text
		if text == "" {
			text = markdown.FlattenRuns(tok.Runs)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		entries = append(entries, tocEntry{level: level, text: text, page: page})
	}
	return entries
}

// tocBuilder renders the collected entries onto the pages before the body.
type tocBuilder struct {
	theme  Theme
	layout Layout
}

// render draws the table title and one line per entry, paginating on the
// shared cursor. Each line carries the heading text, a dotted leader and the
// right-aligned page number. The caller forces a page break afterwards so
// the body always starts on a fresh page.
func (b *tocBuilder) render(doc *gofpdf.Fpdf, cur *cursor, entries []tocEntry) {
	doc.SetFont(b.theme.HeadingFont, "B", tocTitleSize)
	doc.SetTextColor(b.theme.Primary.R, b.theme.Primary.G, b.theme.Primary.B)
	doc.Text(b.layout.Margins.Left, cur.y+tocTitleSize, tocTitle)
	cur.advance(tocTitleGap)

	left := b.layout.Margins.Left
	right := left + cur.contentWidth()

	for _, entry := range entries {
		cur.ensureSpace(tocLineHeight)
		baseline := cur.y + b.layout.FontSize

		indent := float64(entry.level-1) * tocIndentStep
		style := ""
		if entry.level == 1 {
			style = "B"
		}
		doc.SetFont(b.theme.BodyFont, style, b.layout.FontSize)
		doc.SetTextColor(b.theme.Text.R, b.theme.Text.G, b.theme.Text.B)

		label := pageLabel(entry.page)
		labelW := doc.GetStringWidth(label)
		textMax := right - left - indent - labelW - tocLeaderInset*2
		text := truncateText(doc, entry.text, textMax)
		doc.Text(left+indent, baseline, text)

		doc.SetTextColor(b.theme.Secondary.R, b.theme.Secondary.G, b.theme.Secondary.B)
		doc.Text(right-labelW, baseline, label)

		leaderStart := left + indent + doc.GetStringWidth(text) + tocLeaderInset
		leaderEnd := right - labelW - tocLeaderInset
		if leaderEnd > leaderStart {
			doc.SetDrawColor(b.theme.Secondary.R, b.theme.Secondary.G, b.theme.Secondary.B)
			doc.SetLineWidth(0.5)
			doc.SetDashPattern([]float64{1, 3}, 0)
			doc.Line(leaderStart, baseline-1, leaderEnd, baseline-1)
			doc.SetDashPattern([]float64{}, 0)
		}

		cur.advance(tocLineHeight)
	}
}

func pageLabel(page int) string {
	if page <= 0 {
		return "-"
	}
	return strconv.Itoa(page)
}

func truncateText(doc *gofpdf.Fpdf, text string, width float64) string {
	if width <= 0 || doc.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 1 && doc.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
