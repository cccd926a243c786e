// Package textstat provides the tokenization shared by the scoring packages.
package textstat

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

// Sample is a text with its derived sentence and word lists.
type Sample struct {
	Text          string
	Words         []string
	Sentences     []string
	WordCount     int
	SentenceCount int
	CharCount     int
}

// NewSample tokenizes text once for every consumer.
func NewSample(text string) Sample {
	words := Words(text)
	sentences := Sentences(text)
	return Sample{
		Text:          text,
		Words:         words,
		Sentences:     sentences,
		WordCount:     len(words),
		SentenceCount: len(sentences),
		CharCount:     utf8.RuneCountInString(text),
	}
}

// Sentences splits on runs of '.', '!' and '?' and drops empty pieces.
func Sentences(text string) []string {
	parts := sentenceEnd.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Words splits on whitespace.
func Words(text string) []string {
	return strings.Fields(text)
}

// AvgWordsPerSentence returns the mean sentence length in words, 0 without sentences.
func AvgWordsPerSentence(sentences []string) float64 {
	if len(sentences) == 0 {
		return 0
	}
	total := 0
	for _, s := range sentences {
		total += len(strings.Fields(s))
	}
	return float64(total) / float64(len(sentences))
}

// Normalize folds typographic apostrophes so lexicon phrases like
// "it's" match text typed with curly quotes.
func Normalize(text string) string {
	return strings.NewReplacer("’", "'", "‘", "'").Replace(text)
}
