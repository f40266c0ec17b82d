package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// Parse converts Markdown source into an ordered token sequence. It never
// fails: constructs it cannot classify come back as KindOther carrying
// whatever text was recoverable, and empty input yields an empty slice.
func Parse(src []byte) []Token {
	if len(src) == 0 {
		return nil
	}
	doc := md.Parser().Parse(text.NewReader(src))
	tokens := make([]Token, 0, doc.ChildCount())
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		tokens = append(tokens, blockToken(node, src))
	}
	return tokens
}

func blockToken(node ast.Node, src []byte) Token {
	switch n := node.(type) {
	case *ast.Heading:
		runs := collectRuns(n, src)
		return Token{Kind: KindHeading, Level: n.Level, Text: FlattenRuns(runs), Runs: runs}
	case *ast.Paragraph:
		runs := collectRuns(n, src)
		return Token{Kind: KindParagraph, Text: FlattenRuns(runs), Runs: runs}
	case *ast.TextBlock:
		runs := collectRuns(n, src)
		return Token{Kind: KindParagraph, Text: FlattenRuns(runs), Runs: runs}
	case *ast.List:
		return Token{Kind: KindList, Items: collectListItems(n, src)}
	case *ast.Blockquote:
		return Token{Kind: KindBlockquote, Text: blockText(n, src)}
	case *ast.FencedCodeBlock:
		tok := Token{Kind: KindCode, Text: rawLines(n, src)}
		if lang := n.Language(src); len(lang) > 0 {
			tok.Language = string(lang)
		}
		return tok
	case *ast.CodeBlock:
		return Token{Kind: KindCode, Text: rawLines(n, src)}
	case *ast.ThematicBreak:
		return Token{Kind: KindRule}
	default:
		return Token{Kind: KindOther, Text: blockText(node, src)}
	}
}

// collectListItems flattens a list into one run sequence per item. Nested
// lists contribute their items after the parent item, keeping document order;
// the renderer draws a flat bullet per item regardless of depth.
func collectListItems(list *ast.List, src []byte) [][]Run {
	var items [][]Run
	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		var runs []Run
		var nested [][]Run
		for child := li.FirstChild(); child != nil; child = child.NextSibling() {
			switch c := child.(type) {
			case *ast.List:
				nested = append(nested, collectListItems(c, src)...)
			default:
				part := collectRuns(child, src)
				if len(runs) > 0 && len(part) > 0 {
					runs = appendRun(runs, Run{Style: RunPlain, Text: " "})
				}
				for _, r := range part {
					runs = appendRun(runs, r)
				}
			}
		}
		items = append(items, runs)
		items = append(items, nested...)
	}
	return items
}

// collectRuns walks the inline children of a block node and produces styled
// runs. Emphasis level 1 maps to RunEmphasis, level 2 to RunStrong; nested
// emphasis flattens to the outermost style. Code spans, links and images
// contribute their visible text as plain runs.
func collectRuns(node ast.Node, src []byte) []Run {
	var runs []Run
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		runs = appendInline(runs, child, src)
	}
	return runs
}

func appendInline(runs []Run, node ast.Node, src []byte) []Run {
	switch n := node.(type) {
	case *ast.Text:
		txt := string(n.Segment.Value(src))
		if n.SoftLineBreak() || n.HardLineBreak() {
			txt += " "
		}
		return appendRun(runs, Run{Style: RunPlain, Text: txt})
	case *ast.String:
		return appendRun(runs, Run{Style: RunPlain, Text: string(n.Value)})
	case *ast.Emphasis:
		style := RunEmphasis
		if n.Level >= 2 {
			style = RunStrong
		}
		if txt := inlineText(n, src); txt != "" {
			return appendRun(runs, Run{Style: style, Text: txt})
		}
		return runs
	case *ast.CodeSpan:
		if txt := inlineText(n, src); txt != "" {
			return appendRun(runs, Run{Style: RunPlain, Text: txt})
		}
		return runs
	case *ast.AutoLink:
		return appendRun(runs, Run{Style: RunPlain, Text: string(n.Label(src))})
	default:
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			runs = appendInline(runs, child, src)
		}
		return runs
	}
}

// appendRun merges adjacent runs of the same style so the renderer measures
// and draws the longest uniform spans possible.
func appendRun(runs []Run, r Run) []Run {
	if r.Text == "" {
		return runs
	}
	if n := len(runs); n > 0 && runs[n-1].Style == r.Style {
		runs[n-1].Text += r.Text
		return runs
	}
	return append(runs, r)
}

// inlineText flattens every text fragment under node, ignoring styling.
func inlineText(node ast.Node, src []byte) string {
	var sb strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		default:
			for child := n.FirstChild(); child != nil; child = child.NextSibling() {
				walk(child)
			}
		}
	}
	walk(node)
	return sb.String()
}

// rawLines returns the verbatim source lines of a block, trailing newline
// trimmed. Used for code blocks where layout must preserve line structure.
func rawLines(node ast.Node, src []byte) string {
	lines := node.Lines()
	if lines == nil || lines.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(src))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// blockText recovers readable text from an arbitrary block: its own source
// lines when present, otherwise the flattened text of its children joined as
// separate lines.
func blockText(node ast.Node, src []byte) string {
	if lines := node.Lines(); lines != nil && lines.Len() > 0 {
		return rawLines(node, src)
	}
	var parts []string
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		var txt string
		if child.Type() == ast.TypeBlock {
			txt = blockText(child, src)
		} else {
			txt = inlineText(child, src)
		}
		txt = strings.TrimSpace(txt)
		if txt != "" {
			parts = append(parts, txt)
		}
	}
	return strings.Join(parts, "\n")
}
