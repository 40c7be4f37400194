package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefai/internal/corpus"
)

func newTestRetriever(t *testing.T) *Retriever {
	t.Helper()
	r := NewRetriever(&LocalEmbedder{})
	ctx := context.Background()

	recipes := []struct{ name, ingredients, steps string }{
		{"Chicken Fried Rice", "chicken, rice, soy sauce, egg", "1. Cook rice. 2. Fry chicken. 3. Combine."},
		{"Tomato Soup", "tomato, onion, cream", "1. Simmer tomatoes. 2. Blend."},
		{"Beef Stew", "beef, carrot, potato", "1. Brown beef. 2. Simmer with vegetables."},
	}
	for i, rec := range recipes {
		err := r.recipes.Add(ctx, Document{
			ID:   string(rune('a' + i)),
			Text: rec.name + "\n" + rec.ingredients,
			Meta: map[string]string{"name": rec.name, "ingredients": rec.ingredients, "steps": rec.steps},
		})
		require.NoError(t, err)
	}

	rules := []string{
		"Cook chicken to an internal temperature of 165F.",
		"Never refreeze thawed raw meat.",
	}
	for i, rule := range rules {
		err := r.safety.Add(ctx, Document{ID: string(rune('a' + i)), Text: rule})
		require.NoError(t, err)
	}

	r.SetConstants([]corpus.Constant{
		{ID: 1, Key: "1 cup flour", Value: "120 grams"},
		{ID: 2, Key: "1 cup sugar", Value: "200 grams"},
		{ID: 3, Key: "1 cup butter", Value: "227 grams"},
		{ID: 4, Key: "1 cup rice", Value: "185 grams"},
		{ID: 5, Key: "butter substitute", Value: "equal parts coconut oil"},
	})
	return r
}

func TestSearchRecipesFormatting(t *testing.T) {
	r := newTestRetriever(t)

	out, err := r.SearchRecipes(context.Background(), "chicken and rice", 3)
	require.NoError(t, err)

	assert.Contains(t, out, "--- RECIPE OPTION 1:")
	assert.Contains(t, out, "Ingredients:")
	assert.Contains(t, out, "Instructions:")
	// Best match should be the dish sharing the query vocabulary.
	assert.Contains(t, strings.SplitN(out, "\n", 2)[0], "Chicken Fried Rice")
}

func TestSearchRecipesEmptyIndex(t *testing.T) {
	r := NewRetriever(&LocalEmbedder{})

	out, err := r.SearchRecipes(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestSearchSafetyFormatting(t *testing.T) {
	r := newTestRetriever(t)

	out, err := r.SearchSafety(context.Background(), "chicken temperature", 2)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "RULE: "), "line %q should start with RULE:", line)
	}
}

func TestSearchConstants(t *testing.T) {
	r := newTestRetriever(t)

	t.Run("case insensitive substring", func(t *testing.T) {
		out := r.SearchConstants("BUTTER")
		assert.Contains(t, out, "1 cup butter: 227 grams")
		assert.Contains(t, out, "butter substitute: equal parts coconut oil")
	})

	t.Run("at most three matches in table order", func(t *testing.T) {
		out := r.SearchConstants("1 cup")
		lines := strings.Split(out, "\n")
		require.Len(t, lines, ConstantMatches)
		assert.Equal(t, "1 cup flour: 120 grams", lines[0])
		assert.Equal(t, "1 cup sugar: 200 grams", lines[1])
		assert.Equal(t, "1 cup butter: 227 grams", lines[2])
	})

	t.Run("no match", func(t *testing.T) {
		assert.Equal(t, "", r.SearchConstants("how do I braise leeks"))
	})
}

func TestLocalEmbedderDeterminism(t *testing.T) {
	e := &LocalEmbedder{}
	ctx := context.Background()

	a, err := e.Embed(ctx, "chicken rice")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "chicken rice")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, localEmbeddingDim)
}
