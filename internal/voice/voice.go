// Package voice extracts stylistic fingerprints and measures drift between them.
package voice

import (
	"errors"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rossmatican/thoughtleaderai/internal/model"
	"github.com/rossmatican/thoughtleaderai/internal/textstat"
)

// MinSampleChars is the shortest text accepted as a baseline sample.
const MinSampleChars = 200

// MaxBigrams caps the bigrams kept per fingerprint.
const MaxBigrams = 10

// ErrSampleTooShort is returned when a baseline sample is below MinSampleChars.
var ErrSampleTooShort = errors.New("baseline sample too short")

const (
	sentenceWeight    = 0.3
	vocabularyWeight  = 0.3
	punctuationWeight = 0.2
	phraseWeight      = 0.2
)

// Extract computes the stylistic fingerprint of text.
func Extract(text string) model.VoiceCharacteristics {
	sample := textstat.NewSample(textstat.Normalize(text))
	return model.VoiceCharacteristics{
		AvgSentenceLength:    textstat.AvgWordsPerSentence(sample.Sentences),
		VocabularyComplexity: avgWordLength(sample.Words),
		PunctuationMarks:     punctuation(sample.Text),
		CommonBigrams:        bigrams(sample.Words),
	}
}

// NewProfile builds a baseline profile from a writing sample.
func NewProfile(text string, now time.Time) (model.VoiceProfile, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinSampleChars {
		return model.VoiceProfile{}, ErrSampleTooShort
	}
	return model.VoiceProfile{
		SampleText:      text,
		CreatedAt:       now,
		Characteristics: Extract(text),
	}, nil
}

// Drift returns the baseline-anchored stylistic distance in [0,1]. It is 0
// when either side is missing. The punctuation component is 0 when the
// baseline has no punctuation.
func Drift(baseline, current *model.VoiceCharacteristics) float64 {
	if baseline == nil || current == nil {
		return 0
	}
	sentence := math.Abs(current.AvgSentenceLength-baseline.AvgSentenceLength) / math.Max(baseline.AvgSentenceLength, 1)
	vocabulary := math.Abs(current.VocabularyComplexity-baseline.VocabularyComplexity) / math.Max(baseline.VocabularyComplexity, 1)

	var punct float64
	if n := len(baseline.PunctuationMarks); n > 0 {
		punct = math.Abs(float64(len(current.PunctuationMarks)-n)) / math.Max(float64(n), 1)
	}

	have := make(map[string]struct{}, len(current.CommonBigrams))
	for _, b := range current.CommonBigrams {
		have[b] = struct{}{}
	}
	base := uniq(baseline.CommonBigrams)
	shared := 0
	for _, b := range base {
		if _, ok := have[b]; ok {
			shared++
		}
	}
	phrase := 1 - float64(shared)/math.Max(float64(len(base)), 1)

	d := sentenceWeight*sentence + vocabularyWeight*vocabulary + punctuationWeight*punct + phraseWeight*phrase
	return math.Min(1, math.Max(0, d))
}

func avgWordLength(words []string) float64 {
	total, counted := 0, 0
	for _, w := range words {
		n := 0
		for _, r := range w {
			if isWordRune(r) {
				n++
			}
		}
		if n == 0 {
			continue
		}
		total += n
		counted++
	}
	if counted == 0 {
		return 0
	}
	return float64(total) / float64(counted)
}

func punctuation(text string) []string {
	var marks []string
	for _, r := range text {
		if unicode.IsPunct(r) {
			marks = append(marks, string(r))
		}
	}
	return marks
}

func bigrams(words []string) []string {
	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimFunc(w, func(r rune) bool { return !isWordRune(r) }))
		if w != "" {
			cleaned = append(cleaned, w)
		}
	}
	seen := make(map[string]struct{}, MaxBigrams)
	out := make([]string, 0, MaxBigrams)
	for i := 0; i+1 < len(cleaned) && len(out) < MaxBigrams; i++ {
		a, b := cleaned[i], cleaned[i+1]
		if utf8.RuneCountInString(a)+utf8.RuneCountInString(b) <= 3 {
			continue
		}
		pair := a + " " + b
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}
		out = append(out, pair)
	}
	return out
}

func uniq(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
}
