package chart

import (
	"strings"
	"unicode"

	"github.com/charlie0129/acuity/pkg/calibration"
)

// StyleKind selects the optotypes printed on each line.
type StyleKind string

const (
	StyleSloan        StyleKind = "sloan"
	StyleClassic      StyleKind = "classic"
	StyleSingleLetter StyleKind = "single"
)

const (
	sloanLetters = "CDHKNORSVZ"

	minLineLetters = 2
	maxLineLetters = 10
)

var classicRows = []string{
	"E",
	"FP",
	"TOZ",
	"LPED",
	"PECFD",
	"EDFCZP",
	"FELOPZD",
	"DEFPOTEC",
}

// Style picks glyphs for a chart. It never affects letter sizes.
type Style struct {
	Kind StyleKind `json:"kind"`
	// Letter is only used by StyleSingleLetter.
	Letter string `json:"letter,omitempty"`
}

// ParseStyle accepts the style names used by the CLI and config
// ("sloan", "classic", "single"), case-insensitively. letter is only
// consulted for the single-letter style and defaults to 'A'.
func ParseStyle(name, letter string) (Style, error) {
	switch StyleKind(strings.ToLower(strings.TrimSpace(name))) {
	case StyleSloan, "":
		return Style{Kind: StyleSloan}, nil
	case StyleClassic:
		return Style{Kind: StyleClassic}, nil
	case StyleSingleLetter:
		r := 'A'
		if l := strings.TrimSpace(letter); l != "" {
			r = unicode.ToUpper([]rune(l)[0])
		}
		return Style{Kind: StyleSingleLetter, Letter: string(r)}, nil
	default:
		return Style{}, calibration.Errorf(calibration.KindInvalidChartSpec, "unknown chart style %q", name)
	}
}

// Lines returns n rows of glyphs, top (largest) row first.
func (s Style) Lines(n int) []string {
	if n <= 0 {
		return nil
	}
	lines := make([]string, n)

	switch s.Kind {
	case StyleClassic:
		for i := range lines {
			// Extra levels repeat the last row.
			lines[i] = classicRows[min(i, len(classicRows)-1)]
		}
	case StyleSingleLetter:
		letter := s.Letter
		if letter == "" {
			letter = "A"
		}
		for i := range lines {
			lines[i] = strings.Repeat(letter, lineLength(i))
		}
	default:
		for i := range lines {
			var b strings.Builder
			for j := 0; j < lineLength(i); j++ {
				b.WriteByte(sloanLetters[(i+j)%len(sloanLetters)])
			}
			lines[i] = b.String()
		}
	}

	return lines
}

func (s Style) String() string {
	if s.Kind == StyleSingleLetter && s.Letter != "" {
		return string(s.Kind) + ":" + s.Letter
	}
	return string(s.Kind)
}

func lineLength(i int) int {
	return max(minLineLetters, min(maxLineLetters, minLineLetters+i))
}
