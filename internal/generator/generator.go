// Package generator selects reflective prompt text.
package generator

import (
	"math/rand"
	"time"

	"github.com/rossmatican/thoughtleaderai/internal/model"
)

var prompts = map[string][]string{
	model.CategoryHigh: {
		"What's YOUR unique perspective on this that others might miss?",
		"Can you share a specific example from your own experience?",
		"What would you tell a friend about this in your own words?",
		"What's the one thing you disagree with most people about on this topic?",
		"How would you explain this to someone who's never heard of it before?",
	},
	model.CategoryMedium: {
		"What personal insight can you add to strengthen this argument?",
		"Which part of this do you feel most confident about, and why?",
		"What questions does this raise for you?",
		"How does this connect to something you've experienced?",
		"What would you change about this approach?",
	},
	model.CategoryLow: {
		"This sounds authentic - can you elaborate on that insight?",
		"What led you to that conclusion?",
		"How might others challenge this perspective?",
		"What would strengthen this argument even more?",
	},
}

// Generator picks prompts uniformly from fixed per-category lists.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with seed, or with the current time when seed is 0.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// FromRand wraps an existing random source. A nil source falls back to a time seed.
func FromRand(rnd *rand.Rand) *Generator {
	if rnd == nil {
		return New(0)
	}
	return &Generator{rnd: rnd}
}

// Category returns the prompt category for a cognitive score.
func Category(score int) string {
	switch {
	case score < 40:
		return model.CategoryHigh
	case score < 70:
		return model.CategoryMedium
	default:
		return model.CategoryLow
	}
}

// Prompt picks one prompt from the category's list.
func (g *Generator) Prompt(category string) string {
	list := prompts[category]
	if len(list) == 0 {
		list = prompts[model.CategoryLow]
	}
	return list[g.rnd.Intn(len(list))]
}

// Prompts returns a copy of the category's list.
func Prompts(category string) []string {
	return append([]string(nil), prompts[category]...)
}
