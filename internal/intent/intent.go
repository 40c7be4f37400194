package intent

import "strings"

// Intent is the top-level classification of a user turn.
type Intent string

const (
	IntentRecipe      Intent = "RECIPE"
	IntentChat        Intent = "CHAT"
	IntentFoodRelated Intent = "FOOD_RELATED"
)

// SubIntent refines FOOD_RELATED turns to a specialist handler.
type SubIntent string

const (
	SubIntentSafety    SubIntent = "SAFETY"
	SubIntentConstants SubIntent = "CONSTANTS"
	SubIntentInstruct  SubIntent = "INSTRUCT"
	SubIntentElse      SubIntent = "ELSE"
)

// CleanLabel normalizes raw classifier output into a single comparable
// token: uppercase, "CATEGORY:" prefix dropped, first whitespace-delimited
// token, trailing punctuation stripped.
func CleanLabel(raw string) string {
	label := strings.ToUpper(strings.TrimSpace(raw))
	label = strings.TrimPrefix(label, "CATEGORY:")
	label = strings.TrimSpace(label)

	if fields := strings.Fields(label); len(fields) > 0 {
		label = fields[0]
	} else {
		return ""
	}

	return strings.TrimRight(label, ".,;:!?\"'")
}

// ResolveTop maps raw model output to a top-level intent. Matching is
// deliberately loose: the model is not guaranteed to emit a clean enum, so
// known labels are matched as substrings of the cleaned token. Anything
// unrecognized fails open to CHAT, the lowest-risk handler.
func ResolveTop(raw string) Intent {
	top, _ := resolveTop(raw)
	return top
}

func resolveTop(raw string) (Intent, bool) {
	token := CleanLabel(raw)

	switch {
	case strings.Contains(token, "RECIPE"):
		return IntentRecipe, true
	case strings.Contains(token, "CHAT"):
		return IntentChat, true
	// The model may spell it "FOOD RELATED", "FOOD-RELATED" or
	// "FOOD_RELATED"; after tokenization only "FOOD" is reliable.
	case strings.Contains(token, "FOOD"):
		return IntentFoodRelated, true
	default:
		return IntentChat, false
	}
}

// ResolveSub maps raw model output to a food-related sub-intent. No
// cleaning pass here: the uppercased raw output is substring-matched
// directly, and anything unrecognized escalates to ELSE.
func ResolveSub(raw string) SubIntent {
	sub, _ := resolveSub(raw)
	return sub
}

func resolveSub(raw string) (SubIntent, bool) {
	upper := strings.ToUpper(raw)

	switch {
	case strings.Contains(upper, string(SubIntentSafety)):
		return SubIntentSafety, true
	case strings.Contains(upper, string(SubIntentConstants)):
		return SubIntentConstants, true
	case strings.Contains(upper, string(SubIntentInstruct)):
		return SubIntentInstruct, true
	// An explicit ELSE is a valid classification, not a fallback.
	case strings.Contains(upper, string(SubIntentElse)):
		return SubIntentElse, true
	default:
		return SubIntentElse, false
	}
}
