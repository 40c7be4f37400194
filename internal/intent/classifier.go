package intent

import (
	"context"
	"fmt"

	"chefai/internal/models"
)

const topPrompt = `User Input: %q
%s
Task: Classify the user's intent.
- "RECIPE": The user wants to eat, lists ingredients, asks for a recipe or a menu, does not know what to eat and wants a suggestion, or approves a food offer ("yes", "sure").
- "CHAT": The user is greeting, making small talk, or discussing non-food topics such as movies or weather.
- "FOOD_RELATED": The user is not asking for a recipe, but has a question about food safety, cooking instructions, nutrition, or measurements.

OUTPUT ONLY ONE CLASSIFICATION: "RECIPE", "CHAT" or "FOOD_RELATED".`

const subPrompt = `User Input: %q

Task: Classify this food-related question or request.
- "SAFETY": About food safety, hygiene, storage, dangerous items, or anything that could cause a safety hazard.
- "CONSTANTS": About unit conversion (imperial/metric), ingredient substitutions, nutrition macros, or specific ingredient weights.
- "INSTRUCT": Confused about a recipe step, needs more detail on a technique, or asks something like "how do I do step 5?".
- "ELSE": Anything that does not fit the above, such as food history, food science, or broader theory.

OUTPUT ONLY ONE: "SAFETY", "CONSTANTS", "INSTRUCT", or "ELSE".`

// Classifier runs the two-stage cascading intent classification, each
// stage a single constrained model call against the waiter model.
type Classifier struct {
	gen models.Generator

	// includeHistory adds the session transcript to the stage-1 prompt.
	includeHistory bool
}

// NewClassifier creates a classifier over the given generator.
func NewClassifier(gen models.Generator, includeHistory bool) *Classifier {
	return &Classifier{gen: gen, includeHistory: includeHistory}
}

// ClassifyTop resolves the top-level intent of a user turn. transcript is
// the session's recent history and is only consulted when the classifier
// was configured to use it. The second return reports whether the model
// output contained no recognized label and the result is the CHAT default.
func (c *Classifier) ClassifyTop(ctx context.Context, input, transcript string) (Intent, bool, error) {
	historyBlock := ""
	if c.includeHistory && transcript != "" {
		historyBlock = "\nRecent conversation:\n" + transcript
	}

	params := models.DefaultSampleParams()
	params.MaxTokens = 20

	raw, err := c.gen.Generate(ctx, models.RoleWaiter, fmt.Sprintf(topPrompt, input, historyBlock), params)
	if err != nil {
		return "", false, fmt.Errorf("intent classification failed: %w", err)
	}

	top, recognized := resolveTop(raw)
	return top, !recognized, nil
}

// ClassifySub resolves the food-related sub-intent of a user turn. The
// second return reports a fail-open resolution to ELSE.
func (c *Classifier) ClassifySub(ctx context.Context, input string) (SubIntent, bool, error) {
	params := models.DefaultSampleParams()
	params.MaxTokens = 10

	raw, err := c.gen.Generate(ctx, models.RoleWaiter, fmt.Sprintf(subPrompt, input), params)
	if err != nil {
		return "", false, fmt.Errorf("sub-intent classification failed: %w", err)
	}

	sub, recognized := resolveSub(raw)
	return sub, !recognized, nil
}
