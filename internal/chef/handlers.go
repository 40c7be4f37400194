package chef

import (
	"context"
	"fmt"
	"log"
	"strings"

	"chefai/internal/models"
	"chefai/internal/session"
)

// handleChat answers small talk from the waiter model, grounding it in
// the session's recent transcript.
func (c *Chef) handleChat(ctx context.Context, snap session.Snapshot, input string) (string, error) {
	historyBlock := ""
	if transcript := snap.Transcript(); transcript != "" {
		historyBlock = "\nRecent conversation:\n" + transcript
	}

	params := models.DefaultSampleParams()
	return c.gen.Generate(ctx, models.RoleWaiter, fmt.Sprintf(chatPrompt, input, historyBlock), params)
}

// handleSafety answers food-safety questions grounded in retrieved rules
// and, when present, the session's current recipe so step-specific
// questions can be answered.
func (c *Chef) handleSafety(ctx context.Context, snap session.Snapshot, input string) (string, error) {
	safetyContext, err := c.retriever.SearchSafety(ctx, input, c.safetyResults)
	if err != nil {
		log.Printf("Safety retrieval failed, using fallback: %v", err)
		safetyContext = ""
	}
	if safetyContext == "" {
		safetyContext = safetyFallback
	}

	recipeBlock := ""
	if snap.CurrentRecipeText != "" {
		recipeBlock = fmt.Sprintf("\nTHE USER IS COOKING %q. CURRENT RECIPE:\n%s\n", snap.CurrentDish, snap.CurrentRecipeText)
	}

	params := models.DefaultSampleParams()
	params.MaxTokens = 256
	return c.gen.Generate(ctx, models.RoleWaiter, fmt.Sprintf(safetyPrompt, input, safetyContext, recipeBlock), params)
}

// handleConstants answers conversion/substitution/nutrition questions from
// the lexical lookup table, near-deterministically to keep arithmetic
// stable.
func (c *Chef) handleConstants(ctx context.Context, snap session.Snapshot, input string) (string, error) {
	dataContext := c.retriever.SearchConstants(input)
	if dataContext == "" {
		dataContext = constantsFallback
	}

	recipeBlock := ""
	if snap.CurrentRecipeText != "" {
		recipeBlock = fmt.Sprintf("\nTHE USER IS COOKING %q. CURRENT RECIPE (for scaling questions):\n%s\n", snap.CurrentDish, snap.CurrentRecipeText)
	}

	params := models.DefaultSampleParams()
	params.MaxTokens = 256
	params.Temperature = 0.1 // strict logic for math
	return c.gen.Generate(ctx, models.RoleWaiter, fmt.Sprintf(constantsPrompt, input, dataContext, recipeBlock), params)
}

// handleInstruct explains recipe steps and techniques, strictly from the
// session's current recipe when one is loaded.
func (c *Chef) handleInstruct(ctx context.Context, snap session.Snapshot, input string) (string, error) {
	var contextStr string
	switch {
	case snap.CurrentRecipeText != "":
		contextStr = fmt.Sprintf("USER IS COOKING: %q\n\nOFFICIAL RECIPE STEPS:\n%s", firstLine(snap.CurrentDish), snap.CurrentRecipeText)
	case snap.CurrentDish != "":
		contextStr = fmt.Sprintf("USER IS COOKING: %q (no specific steps loaded).", firstLine(snap.CurrentDish))
	default:
		contextStr = instructFallback
	}

	params := models.DefaultSampleParams()
	params.MaxTokens = 256
	params.Temperature = 0.5
	return c.gen.Generate(ctx, models.RoleWaiter, fmt.Sprintf(instructPrompt, input, contextStr), params)
}

// handleEscalate is the catch-all for food questions no specialist covers:
// the chef model produces a detailed explanation, the waiter rephrases it.
func (c *Chef) handleEscalate(ctx context.Context, input string) (string, error) {
	params := models.DefaultSampleParams()
	params.Temperature = 0.3

	explanation, err := c.gen.Generate(ctx, models.RoleChef, fmt.Sprintf(brainPrompt, input), params)
	if err != nil {
		return "", err
	}

	params = models.DefaultSampleParams()
	params.MaxTokens = 256
	return c.gen.Generate(ctx, models.RoleWaiter, fmt.Sprintf(rephrasePrompt, input, explanation), params)
}

// firstLine guards against multi-line dish names leaking whole recipes
// into a prompt.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
