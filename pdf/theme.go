// Package pdf renders parsed Markdown tokens into a paginated, themed PDF
// document. It owns the layout cursor, page chrome, per-block drawing and the
// optional table of contents; parsing and delivery live elsewhere.
package pdf

import "sort"

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B int
}

// Theme is an immutable bundle of colors and font faces applied uniformly
// across one render. Background is also the title color on the header band.
// Gradient endpoints, when set, shade the H1 and header bands; a zero pair
// means solid primary fill.
type Theme struct {
	Name          string
	Primary       RGB
	Secondary     RGB
	Text          RGB
	Background    RGB
	Accent        RGB
	HeadingFont   string
	BodyFont      string
	CodeFont      string
	GradientStart RGB
	GradientEnd   RGB
}

// DefaultTheme is always present in the registry and is the fallback for
// unknown theme names.
const DefaultTheme = "default"

var themes = map[string]Theme{
	"default": {
		Name:          "default",
		Primary:       hexToRGB("#1F2937"),
		Secondary:     hexToRGB("#4B5563"),
		Text:          hexToRGB("#111827"),
		Background:    hexToRGB("#FFFFFF"),
		Accent:        hexToRGB("#2563EB"),
		HeadingFont:   "Helvetica",
		BodyFont:      "Helvetica",
		CodeFont:      "Courier",
		GradientStart: hexToRGB("#2563EB"),
		GradientEnd:   hexToRGB("#7C3AED"),
	},
	"midnight": {
		Name:        "midnight",
		Primary:     hexToRGB("#0F172A"),
		Secondary:   hexToRGB("#475569"),
		Text:        hexToRGB("#1E293B"),
		Background:  hexToRGB("#F8FAFC"),
		Accent:      hexToRGB("#22D3EE"),
		HeadingFont: "Helvetica",
		BodyFont:    "Helvetica",
		CodeFont:    "Courier",
	},
	"slate": {
		Name:          "slate",
		Primary:       hexToRGB("#334155"),
		Secondary:     hexToRGB("#64748B"),
		Text:          hexToRGB("#0F172A"),
		Background:    hexToRGB("#F1F5F9"),
		Accent:        hexToRGB("#0EA5E9"),
		HeadingFont:   "Helvetica",
		BodyFont:      "Helvetica",
		CodeFont:      "Courier",
		GradientStart: hexToRGB("#334155"),
		GradientEnd:   hexToRGB("#0EA5E9"),
	},
	"parchment": {
		Name:        "parchment",
		Primary:     hexToRGB("#92400E"),
		Secondary:   hexToRGB("#78716C"),
		Text:        hexToRGB("#292524"),
		Background:  hexToRGB("#FFFBEB"),
		Accent:      hexToRGB("#B45309"),
		HeadingFont: "Times",
		BodyFont:    "Times",
		CodeFont:    "Courier",
	},
}

// ResolveTheme returns the named theme, falling back to the default theme for
// empty or unknown names. Callers that want strict validation should check
// ThemeNames first; rendering never fails on theme selection.
func ResolveTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[DefaultTheme]
}

// ThemeNames lists registered theme names in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// hexToRGB parses "#RRGGBB" (leading # optional). Malformed input yields
// black rather than an error so theme tables stay declarative.
func hexToRGB(s string) RGB {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return RGB{}
	}
	return RGB{
		R: hexByte(s[0], s[1]),
		G: hexByte(s[2], s[3]),
		B: hexByte(s[4], s[5]),
	}
}

func hexByte(hi, lo byte) int {
	return hexNibble(hi)<<4 | hexNibble(lo)
}

func hexNibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return 0
	}
}

// tint mixes a color toward white. factor 0 keeps the color, 1 is white.
func tint(c RGB, factor float64) RGB {
	mix := func(v int) int {
		return v + int(float64(255-v)*factor)
	}
	return RGB{R: mix(c.R), G: mix(c.G), B: mix(c.B)}
}

func (c RGB) isZero() bool {
	return c.R == 0 && c.G == 0 && c.B == 0
}
