package voice

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rossmatican/thoughtleaderai/internal/model"
	"pgregory.net/rapid"
)

func TestExtract(t *testing.T) {
	vc := Extract("The cat sat. The dog ran, fast!")
	if vc.AvgSentenceLength != 3.5 {
		t.Fatalf("expected avg sentence length 3.5, got %v", vc.AvgSentenceLength)
	}
	if math.Abs(vc.VocabularyComplexity-22.0/7.0) > 1e-9 {
		t.Fatalf("unexpected vocabulary complexity %v", vc.VocabularyComplexity)
	}
	if strings.Join(vc.PunctuationMarks, "") != ".,!" {
		t.Fatalf("unexpected punctuation %q", vc.PunctuationMarks)
	}
	want := []string{"the cat", "cat sat", "sat the", "the dog", "dog ran", "ran fast"}
	if strings.Join(vc.CommonBigrams, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected bigrams %q", vc.CommonBigrams)
	}
}

func TestExtractBigramRules(t *testing.T) {
	if got := Extract("a b c d").CommonBigrams; len(got) != 0 {
		t.Fatalf("expected short pairs to be skipped, got %q", got)
	}
	if got := Extract("a bcd").CommonBigrams; len(got) != 1 || got[0] != "a bcd" {
		t.Fatalf("unexpected bigrams %q", got)
	}
	if got := Extract("go home go home go home").CommonBigrams; len(got) != 2 {
		t.Fatalf("expected de-duplicated bigrams, got %q", got)
	}
	long := strings.Repeat("alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu ", 3)
	if got := Extract(long).CommonBigrams; len(got) != MaxBigrams || got[0] != "alpha beta" {
		t.Fatalf("expected first %d bigrams in scan order, got %q", MaxBigrams, got)
	}
}

func TestDriftMissingSide(t *testing.T) {
	vc := Extract("Some text here.")
	if Drift(nil, &vc) != 0 || Drift(&vc, nil) != 0 {
		t.Fatalf("expected 0 when a side is missing")
	}
}

func TestDriftWeightedSum(t *testing.T) {
	baseline := model.VoiceCharacteristics{
		AvgSentenceLength:    10,
		VocabularyComplexity: 4,
		PunctuationMarks:     []string{".", ".", ",", "!"},
		CommonBigrams:        []string{"a b", "c d"},
	}
	current := model.VoiceCharacteristics{
		AvgSentenceLength:    20,
		VocabularyComplexity: 4,
		PunctuationMarks:     []string{".", "."},
		CommonBigrams:        []string{"a b"},
	}
	if got := Drift(&baseline, &current); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("expected 0.5, got %v", got)
	}
}

func TestDriftCapped(t *testing.T) {
	baseline := model.VoiceCharacteristics{AvgSentenceLength: 1, VocabularyComplexity: 1, PunctuationMarks: []string{"."}, CommonBigrams: []string{"x y"}}
	current := model.VoiceCharacteristics{AvgSentenceLength: 50, VocabularyComplexity: 9}
	if got := Drift(&baseline, &current); got != 1 {
		t.Fatalf("expected cap at 1, got %v", got)
	}
}

func TestDriftNoBaselinePunctuation(t *testing.T) {
	baseline := model.VoiceCharacteristics{AvgSentenceLength: 5, VocabularyComplexity: 4, CommonBigrams: []string{"hello there"}}
	current := model.VoiceCharacteristics{AvgSentenceLength: 5, VocabularyComplexity: 4, PunctuationMarks: []string{".", "!"}, CommonBigrams: []string{"hello there"}}
	if got := Drift(&baseline, &current); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestDriftEmptyBaselineBigrams(t *testing.T) {
	baseline := model.VoiceCharacteristics{AvgSentenceLength: 5, VocabularyComplexity: 4}
	current := model.VoiceCharacteristics{AvgSentenceLength: 5, VocabularyComplexity: 4, CommonBigrams: []string{"hello there"}}
	if got := Drift(&baseline, &current); math.Abs(got-0.2) > 1e-9 {
		t.Fatalf("expected 0.2 from the phrase term, got %v", got)
	}
}

func TestNewProfile(t *testing.T) {
	if _, err := NewProfile("too short", time.Now()); !errors.Is(err, ErrSampleTooShort) {
		t.Fatalf("expected ErrSampleTooShort, got %v", err)
	}
	text := strings.Repeat("I like to walk by the water in the morning. ", 6)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p, err := NewProfile(text, now)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if !p.CreatedAt.Equal(now) || p.SampleText != text {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.Characteristics.AvgSentenceLength != 10 {
		t.Fatalf("expected avg sentence length 10, got %v", p.Characteristics.AvgSentenceLength)
	}
}

func TestDriftProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gen := rapid.SliceOf(rapid.SampledFrom([]string{
			"I", "walked", "home", "quietly", ".", ",", "!", "we", "think", "it's", "a", "long", "road", "?", "honestly",
		}))
		a := Extract(strings.Join(gen.Draw(t, "a"), " "))
		b := Extract(strings.Join(gen.Draw(t, "b"), " "))
		got := Drift(&a, &a)
		if len(a.CommonBigrams) > 0 && got != 0 {
			t.Fatalf("self drift must be 0, got %v", got)
		}
		if len(a.CommonBigrams) == 0 && math.Abs(got-phraseWeight) > 1e-9 {
			t.Fatalf("self drift without bigrams must be the phrase weight, got %v", got)
		}
		got = Drift(&a, &b)
		if got < 0 || got > 1 {
			t.Fatalf("drift out of range: %v", got)
		}
	})
}
