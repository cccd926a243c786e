// Package pattern scores text for resemblance to machine-assisted prose.
//
// The score is a transparent sum of fixed-weight rules over lexicons and a
// few structural measures. It is a heuristic, not a classifier.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rossmatican/thoughtleaderai/internal/model"
	"github.com/rossmatican/thoughtleaderai/internal/textstat"
)

// MinChars is the shortest text that is scored at all.
const MinChars = 50

const (
	hedgeWeight      = 15
	parallelWeight   = 20
	corporateWeight  = 10
	transitionWeight = 12
	longSentences    = 10
	shortSentences   = -5
	repeatedStarters = 15
	lowVocabulary    = 10
)

var hedgePhrases = []string{
	"it's important to note",
	"it's worth noting",
	"it should be noted",
	"arguably",
	"essentially",
	"fundamentally",
	"ultimately",
	"it's crucial to understand",
	"it's essential to",
	"moreover",
	"furthermore",
	"additionally",
	"in conclusion",
	"to summarize",
}

var parallelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^(First|Second|Third|Finally),?\s`),
	regexp.MustCompile(`(?m)^(On one hand|On the other hand)`),
	regexp.MustCompile(`(?i)\b(not only.*but also)\b`),
	regexp.MustCompile(`(?i)\b(while.*simultaneously)\b`),
}

var parallelLabels = []string{
	"enumerated openers",
	"on one hand / on the other hand",
	"not only ... but also",
	"while ... simultaneously",
}

// Multi-word terms can never match a single whitespace token; they are kept
// so the lexicon stays recognisable.
var corporateTerms = []string{
	"leverage",
	"synergy",
	"paradigm",
	"utilize",
	"optimize",
	"streamline",
	"innovative solutions",
	"best practices",
	"cutting-edge",
	"state-of-the-art",
	"robust",
	"scalable",
}

var transitionPhrases = []string{
	"moving forward",
	"that being said",
	"with that in mind",
	"it's clear that",
	"this highlights",
	"this underscores",
	"this demonstrates",
	"as we can see",
}

// Contributions holds the points each rule added before clamping.
type Contributions struct {
	Hedge          int `json:"hedge"`
	Parallel       int `json:"parallel"`
	Corporate      int `json:"corporate"`
	Transition     int `json:"transition"`
	SentenceLength int `json:"sentenceLength"`
	Starters       int `json:"starters"`
	Vocabulary     int `json:"vocabulary"`
}

// Total returns the unclamped sum.
func (c Contributions) Total() int {
	return c.Hedge + c.Parallel + c.Corporate + c.Transition + c.SentenceLength + c.Starters + c.Vocabulary
}

// Match records one lexicon entry or structural rule that fired.
type Match struct {
	Rule   string `json:"rule"`
	Phrase string `json:"phrase"`
	Count  int    `json:"count"`
	Points int    `json:"points"`
}

// Result is a full scoring pass.
type Result struct {
	Score         int             `json:"score"`
	Scored        bool            `json:"scored"`
	Contributions Contributions   `json:"contributions"`
	Matches       []Match         `json:"matches"`
	Dimensions    model.Breakdown `json:"dimensions"`
}

// Score returns the AI-pattern score of text in [0,100]. Text shorter than
// MinChars returns 0, which means unscored rather than clean.
func Score(text string) int {
	return Analyze(text).Score
}

// Analyze scores text and reports how each rule contributed.
func Analyze(text string) Result {
	if utf8.RuneCountInString(text) < MinChars {
		return Result{Dimensions: model.Breakdown{Patterns: []string{}}}
	}
	sample := textstat.NewSample(textstat.Normalize(text))
	lower := strings.ToLower(sample.Text)

	var c Contributions
	var matches []Match

	for _, phrase := range hedgePhrases {
		if n := strings.Count(lower, phrase); n > 0 {
			c.Hedge += n * hedgeWeight
			matches = append(matches, Match{Rule: "hedge", Phrase: phrase, Count: n, Points: n * hedgeWeight})
		}
	}

	for i, re := range parallelPatterns {
		if n := len(re.FindAllStringIndex(sample.Text, -1)); n > 0 {
			c.Parallel += n * parallelWeight
			matches = append(matches, Match{Rule: "parallel", Phrase: parallelLabels[i], Count: n, Points: n * parallelWeight})
		}
	}

	lowerWords := strings.Fields(lower)
	for _, term := range corporateTerms {
		n := 0
		for _, w := range lowerWords {
			if strings.Contains(w, term) {
				n++
			}
		}
		if n > 0 {
			c.Corporate += n * corporateWeight
			matches = append(matches, Match{Rule: "corporate", Phrase: term, Count: n, Points: n * corporateWeight})
		}
	}

	for _, phrase := range transitionPhrases {
		if n := strings.Count(lower, phrase); n > 0 {
			c.Transition += n * transitionWeight
			matches = append(matches, Match{Rule: "transition", Phrase: phrase, Count: n, Points: n * transitionWeight})
		}
	}

	if len(sample.Sentences) > 0 {
		avg := textstat.AvgWordsPerSentence(sample.Sentences)
		switch {
		case avg > 25:
			c.SentenceLength = longSentences
			matches = append(matches, Match{Rule: "sentence-length", Phrase: fmt.Sprintf("long sentences (%.1f words)", avg), Count: 1, Points: longSentences})
		case avg < 8:
			c.SentenceLength = shortSentences
			matches = append(matches, Match{Rule: "sentence-length", Phrase: fmt.Sprintf("short sentences (%.1f words)", avg), Count: 1, Points: shortSentences})
		}

		if ratio := starterRatio(sample.Sentences); ratio < 0.7 {
			c.Starters = repeatedStarters
			matches = append(matches, Match{Rule: "starters", Phrase: fmt.Sprintf("repetitive sentence starters (%.2f unique)", ratio), Count: 1, Points: repeatedStarters})
		}
	}

	if len(lowerWords) > 0 {
		if ratio := diversityRatio(lowerWords); ratio < 0.4 {
			c.Vocabulary = lowVocabulary
			matches = append(matches, Match{Rule: "vocabulary", Phrase: fmt.Sprintf("low vocabulary diversity (%.2f)", ratio), Count: 1, Points: lowVocabulary})
		}
	}

	return Result{
		Score:         clamp(c.Total()),
		Scored:        true,
		Contributions: c,
		Matches:       matches,
		Dimensions:    breakdown(c, matches),
	}
}

// CognitiveScore maps an AI-pattern score to a cognitive-independence
// score. The result never drops below 10.
func CognitiveScore(aiScore int) int {
	score := 100 - clamp(aiScore)
	if score < 10 {
		return 10
	}
	return score
}

func breakdown(c Contributions, matches []Match) model.Breakdown {
	patterns := make([]string, 0, len(matches))
	for _, m := range matches {
		patterns = append(patterns, m.Rule+": "+m.Phrase)
	}
	return model.Breakdown{
		Ideation:   clamp(c.Hedge + c.Corporate),
		Structure:  clamp(c.Parallel + c.SentenceLength + c.Starters),
		Expression: clamp(c.Transition + c.Vocabulary),
		Patterns:   patterns,
	}
}

func starterRatio(sentences []string) float64 {
	seen := make(map[string]struct{}, len(sentences))
	for _, s := range sentences {
		fields := strings.Fields(s)
		if len(fields) > 2 {
			fields = fields[:2]
		}
		seen[strings.ToLower(strings.Join(fields, " "))] = struct{}{}
	}
	return float64(len(seen)) / float64(len(sentences))
}

func diversityRatio(words []string) float64 {
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) > 3 {
			seen[w] = struct{}{}
		}
	}
	return float64(len(seen)) / float64(len(words))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
