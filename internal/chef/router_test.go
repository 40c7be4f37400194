package chef

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefai/internal/config"
	"chefai/internal/intent"
	"chefai/internal/models"
	"chefai/internal/session"
)

// fakeGenerator scripts model output by inspecting the prompt, and records
// every call for assertions.
type genCall struct {
	role   string
	prompt string
	params models.SampleParams
}

type fakeGenerator struct {
	mu      sync.Mutex
	respond func(role, prompt string) (string, error)
	calls   []genCall
}

func (f *fakeGenerator) Generate(_ context.Context, role, prompt string, params models.SampleParams) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, genCall{role: role, prompt: prompt, params: params})
	f.mu.Unlock()
	return f.respond(role, prompt)
}

func (f *fakeGenerator) promptContaining(t *testing.T, marker string) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, call := range f.calls {
		if strings.Contains(call.prompt, marker) {
			return call.prompt
		}
	}
	t.Fatalf("no recorded prompt contains %q", marker)
	return ""
}

// fakeRetriever returns canned context, or nothing at all when empty.
type fakeRetriever struct {
	recipes   string
	safety    string
	constants string
	err       error
}

func (f *fakeRetriever) SearchRecipes(context.Context, string, int) (string, error) {
	return f.recipes, f.err
}

func (f *fakeRetriever) SearchSafety(context.Context, string, int) (string, error) {
	return f.safety, f.err
}

func (f *fakeRetriever) SearchConstants(string) string {
	return f.constants
}

func newTestChef(gen *fakeGenerator, ret Retriever) *Chef {
	classifier := intent.NewClassifier(gen, false)
	return New(gen, ret, session.NewStore(0), classifier, config.RouterConfig{})
}

// scriptedResponder routes by prompt landmarks, so one fake serves a whole
// multi-stage turn.
func scriptedResponder(overrides map[string]string) func(role, prompt string) (string, error) {
	return func(role, prompt string) (string, error) {
		for marker, response := range overrides {
			if strings.Contains(prompt, marker) {
				return response, nil
			}
		}
		return "fine, thanks for asking", nil
	}
}

func TestSubmitTurnChat(t *testing.T) {
	gen := &fakeGenerator{respond: scriptedResponder(map[string]string{
		"Classify the user's intent": "CHAT",
		"front-of-house voice":       "Hello! What would you like to cook today?",
	})}
	c := newTestChef(gen, &fakeRetriever{})

	reply, err := c.SubmitTurn(context.Background(), "s1", "hi there")
	require.NoError(t, err)
	assert.Equal(t, "Hello! What would you like to cook today?", reply)

	snap := c.Sessions().GetOrCreate("s1")
	require.Len(t, snap.History, 2)
	assert.Equal(t, "hi there", snap.History[0].Content)
	assert.Equal(t, reply, snap.History[1].Content)
}

func TestSubmitTurnEmptyInput(t *testing.T) {
	gen := &fakeGenerator{respond: scriptedResponder(nil)}
	c := newTestChef(gen, &fakeRetriever{})

	_, err := c.SubmitTurn(context.Background(), "s1", "")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, gen.calls, "no model call should happen for empty input")
}

func TestFailOpenToChat(t *testing.T) {
	gen := &fakeGenerator{respond: scriptedResponder(map[string]string{
		"Classify the user's intent": "UNSURE.",
	})}
	c := newTestChef(gen, &fakeRetriever{})

	_, err := c.SubmitTurn(context.Background(), "s1", "hmm")
	require.NoError(t, err)

	// Unrecognized classification must land on the chat handler.
	gen.promptContaining(t, "front-of-house voice")
}

func TestFailOpenToEscalation(t *testing.T) {
	gen := &fakeGenerator{respond: scriptedResponder(map[string]string{
		"Classify the user's intent":     "FOOD_RELATED",
		"Classify this food-related":     "NO CLUE",
		"backend brain":                  "Maillard reactions brown food above 140C.",
		"Explanation from the executive": "Browning happens above 140C.",
	})}
	c := newTestChef(gen, &fakeRetriever{})

	reply, err := c.SubmitTurn(context.Background(), "s1", "why does searing brown meat?")
	require.NoError(t, err)
	assert.Equal(t, "Browning happens above 140C.", reply)

	// Escalation always engages both models.
	foundChef := false
	for _, call := range gen.calls {
		if call.role == models.RoleChef {
			foundChef = true
		}
	}
	assert.True(t, foundChef, "escalation should call the chef model")
}

func TestSafetyUsesCurrentRecipe(t *testing.T) {
	gen := &fakeGenerator{respond: scriptedResponder(map[string]string{
		"Classify the user's intent": "FOOD_RELATED",
		"Classify this food-related": "SAFETY",
		"OFFICIAL SAFETY GUIDELINES": "⚠️ SAFETY FIRST: rest the chicken covered.",
	})}
	c := newTestChef(gen, &fakeRetriever{safety: "RULE: Cook chicken to 165F."})

	c.Sessions().SetDish("s1", "Chicken Fried Rice")
	c.Sessions().SetRecipeText("s1", "1. Cook rice.\n2. Fry chicken until done.")

	reply, err := c.SubmitTurn(context.Background(), "s1", "is step 2 safe?")
	require.NoError(t, err)
	assert.Contains(t, reply, "SAFETY FIRST")

	prompt := gen.promptContaining(t, "OFFICIAL SAFETY GUIDELINES")
	assert.Contains(t, prompt, "RULE: Cook chicken to 165F.")
	assert.Contains(t, prompt, "2. Fry chicken until done.", "stored recipe must ground step-specific questions")
}

func TestConstantsHandlerSettings(t *testing.T) {
	gen := &fakeGenerator{respond: scriptedResponder(map[string]string{
		"Classify the user's intent": "FOOD_RELATED",
		"Classify this food-related": "CONSTANTS",
		"DATA FOUND FOR YOUR USE":    "A cup of flour is 120 grams.",
	})}
	c := newTestChef(gen, &fakeRetriever{constants: "1 cup flour: 120 grams"})

	_, err := c.SubmitTurn(context.Background(), "s1", "how much is 1 cup flour in grams?")
	require.NoError(t, err)

	for _, call := range gen.calls {
		if strings.Contains(call.prompt, "DATA FOUND FOR YOUR USE") {
			assert.InDelta(t, 0.1, call.params.Temperature, 1e-9, "constants answers need near-deterministic sampling")
			assert.Contains(t, call.prompt, "1 cup flour: 120 grams")
		}
	}
}

func TestContextFallbackOnEmptyRetrieval(t *testing.T) {
	tests := []struct {
		name      string
		subIntent string
		marker    string
		fallback  string
	}{
		{"safety", "SAFETY", "OFFICIAL SAFETY GUIDELINES", safetyFallback},
		{"constants", "CONSTANTS", "DATA FOUND FOR YOUR USE", constantsFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{respond: scriptedResponder(map[string]string{
				"Classify the user's intent": "FOOD_RELATED",
				"Classify this food-related": tt.subIntent,
			})}
			c := newTestChef(gen, &fakeRetriever{})

			_, err := c.SubmitTurn(context.Background(), "s1", "question")
			require.NoError(t, err)

			prompt := gen.promptContaining(t, tt.marker)
			assert.Contains(t, prompt, tt.fallback)
		})
	}
}

func TestRetrievalErrorIsNonFatal(t *testing.T) {
	gen := &fakeGenerator{respond: scriptedResponder(map[string]string{
		"Classify the user's intent": "FOOD_RELATED",
		"Classify this food-related": "SAFETY",
	})}
	c := newTestChef(gen, &fakeRetriever{err: errors.New("vector store unreachable")})

	_, err := c.SubmitTurn(context.Background(), "s1", "can I eat raw chicken?")
	require.NoError(t, err, "retrieval failure must not abort the turn")

	prompt := gen.promptContaining(t, "OFFICIAL SAFETY GUIDELINES")
	assert.Contains(t, prompt, safetyFallback)
}

func TestInstructContextSelection(t *testing.T) {
	newInstructChef := func() (*fakeGenerator, *Chef) {
		gen := &fakeGenerator{respond: scriptedResponder(map[string]string{
			"Classify the user's intent": "FOOD_RELATED",
			"Classify this food-related": "INSTRUCT",
		})}
		return gen, newTestChef(gen, &fakeRetriever{})
	}

	t.Run("generic fallback", func(t *testing.T) {
		gen, c := newInstructChef()
		_, err := c.SubmitTurn(context.Background(), "s1", "how do I julienne?")
		require.NoError(t, err)
		prompt := gen.promptContaining(t, "CONTEXT:")
		assert.Contains(t, prompt, instructFallback)
	})

	t.Run("dish only", func(t *testing.T) {
		gen, c := newInstructChef()
		c.Sessions().SetDish("s1", "Beef Stew\n1. Brown the beef")
		_, err := c.SubmitTurn(context.Background(), "s1", "how long?")
		require.NoError(t, err)
		prompt := gen.promptContaining(t, "CONTEXT:")
		assert.Contains(t, prompt, `"Beef Stew"`, "dish name must be sanitized to its first line")
		assert.NotContains(t, prompt, "Brown the beef")
	})

	t.Run("full recipe", func(t *testing.T) {
		gen, c := newInstructChef()
		c.Sessions().SetDish("s1", "Beef Stew")
		c.Sessions().SetRecipeText("s1", "1. Brown the beef.\n2. Simmer 2 hours.")
		_, err := c.SubmitTurn(context.Background(), "s1", "explain step 2")
		require.NoError(t, err)
		prompt := gen.promptContaining(t, "OFFICIAL RECIPE STEPS")
		assert.Contains(t, prompt, "2. Simmer 2 hours.")
	})
}

func TestBackendErrorAbortsTurnWithoutCommit(t *testing.T) {
	backendErr := errors.New("model unavailable")
	gen := &fakeGenerator{respond: func(role, prompt string) (string, error) {
		if strings.Contains(prompt, "Classify the user's intent") {
			return "CHAT", nil
		}
		return "", backendErr
	}}
	c := newTestChef(gen, &fakeRetriever{})

	_, err := c.SubmitTurn(context.Background(), "s1", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)

	snap := c.Sessions().GetOrCreate("s1")
	assert.Empty(t, snap.History, "failed turns must not commit history")
}

// blockingGenerator stalls every call until the turn deadline fires.
type blockingGenerator struct{}

func (blockingGenerator) Generate(ctx context.Context, _, _ string, _ models.SampleParams) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestTurnTimeoutAbortsWithoutCommit(t *testing.T) {
	store := session.NewStore(0)
	classifier := intent.NewClassifier(blockingGenerator{}, false)
	c := New(blockingGenerator{}, &fakeRetriever{}, store, classifier,
		config.RouterConfig{TurnTimeoutSeconds: 1})

	_, err := c.SubmitTurn(context.Background(), "s1", "suggest a dish")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTurnTimeout)

	snap := store.GetOrCreate("s1")
	assert.Empty(t, snap.History, "timed-out turns must not commit history")
	assert.Empty(t, snap.CurrentDish)
	assert.Empty(t, snap.CurrentRecipeText)
}

func TestSessionIsolationAcrossTurns(t *testing.T) {
	gen := &fakeGenerator{respond: scriptedResponder(map[string]string{
		"Classify the user's intent": "CHAT",
	})}
	c := newTestChef(gen, &fakeRetriever{})

	for _, id := range []string{"a", "b"} {
		_, err := c.SubmitTurn(context.Background(), id, "hello from "+id)
		require.NoError(t, err)
	}

	a := c.Sessions().GetOrCreate("a")
	b := c.Sessions().GetOrCreate("b")
	require.Len(t, a.History, 2)
	require.Len(t, b.History, 2)
	assert.Equal(t, "hello from a", a.History[0].Content)
	assert.Equal(t, "hello from b", b.History[0].Content)
}
