package chef

import (
	"context"
	"fmt"
	"log"
	"strings"

	"chefai/internal/models"
	"chefai/internal/session"
)

// MaxRecipeChars bounds a generated recipe body against runaway
// generation. Longer bodies are hard-truncated and marked.
const MaxRecipeChars = 2500

// TruncationMarker is appended to truncated recipe bodies.
const TruncationMarker = "... (truncated)"

// handleRecipe runs the five-step recipe pipeline: ideation, dish-name
// sanitization, reference retrieval, generation, plating. The session's
// dish and recipe text are committed only once the whole pipeline has
// succeeded, so a mid-pipeline failure leaves no partial state behind.
func (c *Chef) handleRecipe(ctx context.Context, snap session.Snapshot, input string) (string, error) {
	// Step 1: ideation. With a current dish on the session the prompt
	// demonstrates modification patterns so "make it spicy" works.
	idea, err := c.ideate(ctx, snap, input)
	if err != nil {
		return "", err
	}

	// Step 2: sanitization. The generator's freeform output gets passed
	// through the waiter to strip conversational filler.
	dish, err := c.sanitizeDish(ctx, idea)
	if err != nil {
		return "", err
	}

	// Step 3: reference retrieval on the sanitized dish name.
	references, err := c.retriever.SearchRecipes(ctx, dish, c.recipeResults)
	if err != nil {
		log.Printf("Recipe retrieval failed, using fallback: %v", err)
		references = ""
	}
	if references == "" {
		references = recipeFallback
	}

	// Step 4: generation, bounded against runaway output.
	params := models.DefaultSampleParams()
	params.MaxTokens = 1024
	recipe, err := c.gen.Generate(ctx, models.RoleChef, fmt.Sprintf(recipePrompt, input, dish, references), params)
	if err != nil {
		return "", err
	}
	recipe = TruncateRecipe(recipe)

	// Step 5: plating through the waiter.
	params = models.DefaultSampleParams()
	params.MaxTokens = 1024
	reply, err := c.gen.Generate(ctx, models.RoleWaiter, fmt.Sprintf(platingPrompt, input, recipe), params)
	if err != nil {
		return "", err
	}

	// Commit the scratch state. Deliberately unconditional on output
	// quality; only an aborted turn skips this.
	c.sessions.SetDish(snap.ID, dish)
	c.sessions.SetRecipeText(snap.ID, recipe)

	return reply, nil
}

func (c *Chef) ideate(ctx context.Context, snap session.Snapshot, input string) (string, error) {
	var prompt string
	if snap.CurrentDish != "" {
		prompt = fmt.Sprintf(ideationModifyPrompt, firstLine(snap.CurrentDish), input)
	} else {
		prompt = fmt.Sprintf(ideationColdPrompt, input)
	}

	params := models.DefaultSampleParams()
	params.MaxTokens = 20
	raw, err := c.gen.Generate(ctx, models.RoleChef, prompt, params)
	if err != nil {
		return "", err
	}

	idea := strings.Trim(firstLine(raw), `"'`)
	if len(strings.TrimSpace(idea)) < 2 {
		// Never leave the dish idea empty; the raw input is a usable
		// stand-in ("I want chicken soup" retrieves fine).
		idea = input
	}
	return idea, nil
}

func (c *Chef) sanitizeDish(ctx context.Context, idea string) (string, error) {
	params := models.DefaultSampleParams()
	params.MaxTokens = 20
	raw, err := c.gen.Generate(ctx, models.RoleWaiter, fmt.Sprintf(sanitizePrompt, idea), params)
	if err != nil {
		return "", err
	}

	dish := strings.Trim(firstLine(raw), `"'`)
	if strings.TrimSpace(dish) == "" {
		dish = idea
	}
	return dish, nil
}

// TruncateRecipe enforces the recipe size bound: bodies over
// MaxRecipeChars characters are cut there and marked, shorter bodies pass
// through untouched.
func TruncateRecipe(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxRecipeChars {
		return text
	}
	return string(runes[:MaxRecipeChars]) + TruncationMarker
}
