package generator

import (
	"math/rand"
	"testing"

	"github.com/rossmatican/thoughtleaderai/internal/model"
)

func TestCategoryBands(t *testing.T) {
	cases := map[int]string{
		0:  model.CategoryHigh,
		39: model.CategoryHigh,
		40: model.CategoryMedium,
		69: model.CategoryMedium,
		70: model.CategoryLow,
		99: model.CategoryLow,
	}
	for score, want := range cases {
		if got := Category(score); got != want {
			t.Fatalf("Category(%d): expected %s, got %s", score, want, got)
		}
	}
}

func TestPromptListSizes(t *testing.T) {
	for _, c := range []string{model.CategoryHigh, model.CategoryMedium, model.CategoryLow} {
		n := len(Prompts(c))
		if n < 4 || n > 5 {
			t.Fatalf("%s: expected 4-5 prompts, got %d", c, n)
		}
	}
}

func TestPromptDeterministicWithSeed(t *testing.T) {
	a := FromRand(rand.New(rand.NewSource(42)))
	b := New(42)
	for i := 0; i < 20; i++ {
		pa := a.Prompt(model.CategoryMedium)
		pb := b.Prompt(model.CategoryMedium)
		if pa != pb {
			t.Fatalf("draw %d: %q != %q", i, pa, pb)
		}
	}
}

func TestPromptComesFromCategory(t *testing.T) {
	g := New(7)
	allowed := map[string]struct{}{}
	for _, p := range Prompts(model.CategoryHigh) {
		allowed[p] = struct{}{}
	}
	for i := 0; i < 50; i++ {
		if _, ok := allowed[g.Prompt(model.CategoryHigh)]; !ok {
			t.Fatalf("prompt outside the high_dependency list")
		}
	}
}
