package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/rossmatican/thoughtleaderai/internal/pattern"
)

// glyph is one pre-rendered rune of the review draft.
type glyph struct {
	text    string
	width   int
	space   bool
	newline bool
	marked  bool
}

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenSpace
	tokenBreak
)

type token struct {
	kind   tokenKind
	glyphs []glyph
	width  int
}

// styleGlyphs renders text rune by rune, marking runes inside spans.
// Span offsets are byte offsets into text.
func styleGlyphs(text string, spans []pattern.Span) []glyph {
	out := make([]glyph, 0, len(text))
	next := 0
	for i, r := range text {
		for next < len(spans) && i >= spans[next].End {
			next++
		}
		if r == '\n' {
			out = append(out, glyph{newline: true})
			continue
		}
		if r == '\t' {
			r = ' '
		}
		marked := next < len(spans) && i >= spans[next].Start
		style := draftStyle
		if marked {
			style = highlightStyle
		}
		out = append(out, glyph{
			text:   style.Render(string(r)),
			width:  runewidth.RuneWidth(r),
			space:  r == ' ',
			marked: marked,
		})
	}
	return out
}

// tokenize groups glyphs into words, single spaces and line breaks.
func tokenize(glyphs []glyph) []token {
	var tokens []token
	for _, g := range glyphs {
		switch {
		case g.newline:
			tokens = append(tokens, token{kind: tokenBreak})
		case g.space:
			tokens = append(tokens, token{kind: tokenSpace, glyphs: []glyph{g}, width: g.width})
		default:
			if n := len(tokens); n > 0 && tokens[n-1].kind == tokenWord {
				tokens[n-1].glyphs = append(tokens[n-1].glyphs, g)
				tokens[n-1].width += g.width
				continue
			}
			tokens = append(tokens, token{kind: tokenWord, glyphs: []glyph{g}, width: g.width})
		}
	}
	return tokens
}

// wrapGlyphs lays glyphs out in lines of at most width cells. Words move to
// the next line whole unless they are wider than a line, in which case they
// break at the edge. Spaces at a wrap point are dropped.
func wrapGlyphs(glyphs []glyph, width int) string {
	var out strings.Builder
	col := 0
	var pending []glyph
	pendingWidth := 0
	breakLine := func() {
		out.WriteByte('\n')
		col = 0
		pending = pending[:0]
		pendingWidth = 0
	}

	for _, tok := range tokenize(glyphs) {
		switch tok.kind {
		case tokenBreak:
			breakLine()
		case tokenSpace:
			pending = append(pending, tok.glyphs...)
			pendingWidth += tok.width
		case tokenWord:
			if width > 0 && col > 0 && col+pendingWidth+tok.width > width {
				breakLine()
			}
			for _, g := range pending {
				out.WriteString(g.text)
			}
			col += pendingWidth
			pending = pending[:0]
			pendingWidth = 0
			for _, g := range tok.glyphs {
				if width > 0 && col > 0 && col+g.width > width {
					breakLine()
				}
				out.WriteString(g.text)
				col += g.width
			}
		}
	}
	return out.String()
}
