package docgen

import "strings"

// NormalizeFormat coerces format values into known aliases with defaults applied.
func NormalizeFormat(format Format) Format {
	normalized := strings.ToLower(strings.TrimSpace(string(format)))
	switch normalized {
	case "", string(FormatPDF):
		return FormatPDF
	case "md", "markdown":
		return FormatMarkdown
	case "html", "htm", "template":
		return FormatHTML
	default:
		return Format(normalized)
	}
}
