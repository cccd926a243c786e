package pattern

import (
	"regexp"
	"sort"
	"strings"
)

// Display-only phrases. They are shown to the writer but never scored
// unless a scoring lexicon also lists them.
var highlightPhrases = []string{
	"Moreover",
	"However",
	"It's important to note",
	"As you can see",
	"Furthermore",
	"Nevertheless",
	"In conclusion",
	"To summarize",
	"In other words",
	"That being said",
	"On the other hand",
	"In fact",
	"Indeed",
	"Certainly",
	"Undoubtedly",
}

var highlightPattern = buildHighlightPattern(highlightPhrases)

// Span is a highlighted byte range of the input text.
type Span struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Phrase string `json:"phrase"`
}

// Highlights returns non-overlapping spans of display-only phrases in text
// order, matched case-insensitively on word boundaries.
func Highlights(text string) []Span {
	locs := highlightPattern.FindAllStringIndex(text, -1)
	spans := make([]Span, 0, len(locs))
	for _, loc := range locs {
		spans = append(spans, Span{Start: loc[0], End: loc[1], Phrase: text[loc[0]:loc[1]]})
	}
	return spans
}

func buildHighlightPattern(phrases []string) *regexp.Regexp {
	sorted := append([]string(nil), phrases...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	alts := make([]string, 0, len(sorted))
	for _, p := range sorted {
		q := regexp.QuoteMeta(p)
		q = strings.ReplaceAll(q, "'", "['’]")
		q = strings.ReplaceAll(q, " ", `\s+`)
		alts = append(alts, q)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
}

// Intensity buckets a cognitive score for display.
type Intensity string

// Intensity levels from worst to best.
const (
	IntensityCritical Intensity = "critical"
	IntensityWarning  Intensity = "warning"
	IntensityCaution  Intensity = "caution"
	IntensityGood     Intensity = "good"
)

// IntensityOf returns the display band of a cognitive score.
func IntensityOf(cognitive int) Intensity {
	switch {
	case cognitive < 30:
		return IntensityCritical
	case cognitive < 50:
		return IntensityWarning
	case cognitive < 70:
		return IntensityCaution
	default:
		return IntensityGood
	}
}

// Label names a cognitive score for the meter.
func Label(cognitive int) string {
	switch {
	case cognitive >= 70:
		return "Independent"
	case cognitive >= 40:
		return "Mixed"
	default:
		return "AI-Dependent"
	}
}
