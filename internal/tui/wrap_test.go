package tui

import (
	"testing"

	"github.com/rossmatican/thoughtleaderai/internal/pattern"
)

func TestStyleGlyphsMarksHighlights(t *testing.T) {
	text := "However, I disagree."
	runes := styleGlyphs(text, pattern.Highlights(text))
	if len(runes) != len([]rune(text)) {
		t.Fatalf("expected %d runes, got %d", len([]rune(text)), len(runes))
	}
	for i := 0; i < len("However"); i++ {
		if !runes[i].marked {
			t.Fatalf("expected rune %d highlighted", i)
		}
		if runes[i].text != highlightStyle.Render(string(text[i])) {
			t.Fatalf("expected highlight style for rune %d", i)
		}
	}
	if runes[len("However")].marked {
		t.Fatalf("comma must not be highlighted")
	}
	if runes[len(runes)-1].text != draftStyle.Render(".") {
		t.Fatalf("expected draft style for plain rune")
	}
}

func TestStyleGlyphsMultibyteOffsets(t *testing.T) {
	text := "Café. Indeed it is."
	runes := styleGlyphs(text, pattern.Highlights(text))
	start := len([]rune("Café. "))
	for i := start; i < start+len("Indeed"); i++ {
		if !runes[i].marked {
			t.Fatalf("expected rune %d highlighted", i)
		}
	}
	if runes[start-1].marked || runes[start+len("Indeed")].marked {
		t.Fatalf("highlight leaked outside the phrase")
	}
}

func TestWrapGlyphsBreaksAtSpaces(t *testing.T) {
	runes := styleGlyphs("one two three", nil)
	got := wrapGlyphs(runes, 8)
	if got != "one two\nthree" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestWrapGlyphsKeepsNewlines(t *testing.T) {
	runes := styleGlyphs("ab\ncd", nil)
	got := wrapGlyphs(runes, 10)
	if got != "ab\ncd" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestWrapGlyphsHardBreaksLongWords(t *testing.T) {
	runes := styleGlyphs("abcdefgh", nil)
	got := wrapGlyphs(runes, 3)
	if got != "abc\ndef\ngh" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestWrapGlyphsWideRunes(t *testing.T) {
	runes := styleGlyphs("日本 語", nil)
	if runes[0].width != 2 {
		t.Fatalf("expected wide rune width 2, got %d", runes[0].width)
	}
	got := wrapGlyphs(runes, 4)
	if got != "日本\n語" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestWrapGlyphsMovesLongWordToNextLine(t *testing.T) {
	got := wrapGlyphs(styleGlyphs("ab abcdefgh", nil), 4)
	if got != "ab\nabcd\nefgh" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestTokenizeGroupsWords(t *testing.T) {
	tokens := tokenize(styleGlyphs("hi  there\nx", nil))
	kinds := make([]tokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.kind
	}
	want := []tokenKind{tokenWord, tokenSpace, tokenSpace, tokenWord, tokenBreak, tokenWord}
	if len(kinds) != len(want) {
		t.Fatalf("unexpected tokens %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token %d: got %v want %v", i, kinds[i], want[i])
		}
	}
	if tokens[3].width != 5 {
		t.Fatalf("expected word width 5, got %d", tokens[3].width)
	}
}
