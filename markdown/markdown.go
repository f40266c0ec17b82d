// Package markdown converts Markdown source into the flat token sequence the
// document renderers consume. Parsing is delegated to goldmark; this package
// only flattens the AST into block-level tokens with styled inline runs.
package markdown

import "strings"

// Kind identifies the block-level type of a Token.
type Kind string

const (
	KindHeading    Kind = "heading"
	KindParagraph  Kind = "paragraph"
	KindList       Kind = "list"
	KindBlockquote Kind = "blockquote"
	KindCode       Kind = "code"
	KindRule       Kind = "rule"
	KindSpace      Kind = "space"
	KindOther      Kind = "other"
)

// RunStyle identifies the inline styling of a Run.
type RunStyle string

const (
	RunPlain    RunStyle = "plain"
	RunStrong   RunStyle = "strong"
	RunEmphasis RunStyle = "emphasis"
)

// Run is a styled sub-span of text within a paragraph or list item. Order
// within the owning token is significant and is preserved left to right.
type Run struct {
	Style RunStyle
	Text  string
}

// Token is one structural unit of parsed Markdown. Exactly one of the payload
// fields is meaningful for a given Kind:
//
//	KindHeading    Level (1..6), Text, Runs
//	KindParagraph  Runs (styled) and Text (flattened fallback)
//	KindList       Items, one inline-run sequence per list item
//	KindBlockquote Text
//	KindCode       Text (verbatim lines), Language when fenced with an info string
//	KindRule       no payload
//	KindSpace      no payload
//	KindOther      Text when any was recoverable
//
// Renderers must treat unknown kinds as KindOther: render Text if present,
// otherwise skip.
type Token struct {
	Kind     Kind
	Level    int
	Text     string
	Runs     []Run
	Items    [][]Run
	Language string
}

// FlattenRuns concatenates run texts in order, discarding styling.
func FlattenRuns(runs []Run) string {
	if len(runs) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}
