package intent

import "testing"

func TestCleanLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already clean", "RECIPE", "RECIPE"},
		{"category prefix with trailing period", "CATEGORY: RECIPE.\n", "RECIPE"},
		{"lowercase padded", "   recipe  ", "RECIPE"},
		{"extra words", "RECIPE suggestion", "RECIPE"},
		{"quoted", `"CHAT"`, `"CHAT`},
		{"empty", "", ""},
		{"whitespace only", "  \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanLabel(tt.input); got != tt.want {
				t.Errorf("CleanLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveTop(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Intent
	}{
		{"recipe", "RECIPE", IntentRecipe},
		{"recipe with prefix and period", "CATEGORY: RECIPE.\n", IntentRecipe},
		{"recipe lowercase padded", "   recipe  ", IntentRecipe},
		{"recipe extra words", "RECIPE suggestion", IntentRecipe},
		{"chat", "CHAT", IntentChat},
		{"food underscore", "FOOD_RELATED", IntentFoodRelated},
		{"food spaced", "FOOD RELATED", IntentFoodRelated},
		{"food hyphen trailing period", "FOOD-RELATED.", IntentFoodRelated},
		{"unrecognized fails open to chat", "UNSURE.", IntentChat},
		{"empty fails open to chat", "", IntentChat},
		{"quoted recipe", `"RECIPE"`, IntentRecipe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveTop(tt.input); got != tt.want {
				t.Errorf("ResolveTop(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveSub(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		want       SubIntent
		recognized bool
	}{
		{"safety", "SAFETY", SubIntentSafety, true},
		{"safety lowercase sentence", "the answer is safety.", SubIntentSafety, true},
		{"constants", "CONSTANTS", SubIntentConstants, true},
		{"instruct trailing words", "INSTRUCT, because the user asks about a step", SubIntentInstruct, true},
		// An explicit ELSE and an unparseable label both land on ELSE,
		// but only the latter counts as a fallback.
		{"else", "ELSE", SubIntentElse, true},
		{"else lowercase sentence", "else, this is general.", SubIntentElse, true},
		{"unrecognized escalates", "NO IDEA", SubIntentElse, false},
		{"empty escalates", "", SubIntentElse, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, recognized := resolveSub(tt.input)
			if got != tt.want {
				t.Errorf("resolveSub(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if recognized != tt.recognized {
				t.Errorf("resolveSub(%q) recognized = %v, want %v", tt.input, recognized, tt.recognized)
			}
		})
	}
}
