package pdf

// Geometry constants, in points. The header band bleeds to the page edge;
// body content starts at the top margin plus the header reserve so text never
// runs into the band. The footer reserve keeps the rule and caption clear of
// body content.
const (
	headerBandHeight  = 40.0
	headerRuleOffset  = 2.0
	headerReserve     = 18.0
	footerZoneHeight  = 36.0
	footerReserve     = 14.0
	defaultFontSize   = 11.0
	defaultMarginPt   = 72.0
	lineHeightFactor  = 1.5
	codeLineFactor    = 1.4
	blockSpacing      = 10.0
	headerTitleSize   = 14.0
	footerCaptionSize = 9.0
)

// Margins are the four page margins in points.
type Margins struct {
	Top, Bottom, Left, Right float64
}

func (m Margins) isZero() bool {
	return m.Top == 0 && m.Bottom == 0 && m.Left == 0 && m.Right == 0
}

// Layout is the immutable page configuration for one render. The zero value
// is not usable directly; callers go through Options which normalizes it.
type Layout struct {
	PageSize    string
	Orientation string
	Margins     Margins
	FontSize    float64

	IncludeHeader      bool
	IncludeFooter      bool
	IncludePageNumbers bool
	IncludeTOC         bool
}

// DefaultLayout is A4 portrait with one inch margins, 11pt body text and all
// chrome enabled.
func DefaultLayout() Layout {
	return Layout{
		PageSize:    "A4",
		Orientation: "P",
		Margins:     Margins{Top: defaultMarginPt, Bottom: defaultMarginPt, Left: defaultMarginPt, Right: defaultMarginPt},
		FontSize:    defaultFontSize,

		IncludeHeader:      true,
		IncludeFooter:      true,
		IncludePageNumbers: true,
	}
}

// normalized fills zero-valued geometry with defaults. Flags pass through
// unchanged: false means disabled, not unset.
func (l Layout) normalized() Layout {
	if l.PageSize == "" {
		l.PageSize = "A4"
	}
	if l.Orientation == "" {
		l.Orientation = "P"
	}
	if l.Margins.isZero() {
		l.Margins = Margins{Top: defaultMarginPt, Bottom: defaultMarginPt, Left: defaultMarginPt, Right: defaultMarginPt}
	}
	if l.FontSize <= 0 {
		l.FontSize = defaultFontSize
	}
	return l
}

// headerOffset is the extra space reserved below the top margin when running
// headers are enabled.
func (l Layout) headerOffset() float64 {
	if !l.IncludeHeader {
		return 0
	}
	return headerReserve
}

// footerOffset is the space kept clear above the bottom margin when running
// footers are enabled.
func (l Layout) footerOffset() float64 {
	if !l.IncludeFooter {
		return 0
	}
	return footerReserve
}
