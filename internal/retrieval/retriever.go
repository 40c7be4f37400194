package retrieval

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/jinzhu/gorm"

	"chefai/internal/corpus"
)

// ConstantMatches caps how many lookup-table rows a constants query returns.
const ConstantMatches = 3

// Retriever answers the three read-only context queries the turn handlers
// make: recipe search and safety search over vector indexes, constants
// lookup over a lexical table.
type Retriever struct {
	recipes   *Index
	safety    *Index
	constants []corpus.Constant
}

// NewRetriever creates a retriever with empty indexes over the embedder.
func NewRetriever(embedder Embedder) *Retriever {
	return &Retriever{
		recipes: NewIndex(embedder),
		safety:  NewIndex(embedder),
	}
}

// LoadFromCorpus embeds every corpus row into the in-memory indexes and
// loads the constants table. Called once at startup.
func (r *Retriever) LoadFromCorpus(ctx context.Context, db *gorm.DB) error {
	recipes, err := corpus.Recipes(db)
	if err != nil {
		return err
	}
	for _, rec := range recipes {
		doc := Document{
			ID:   strconv.Itoa(int(rec.ID)),
			Text: rec.Name + "\n" + rec.Ingredients,
			Meta: map[string]string{
				"name":        rec.Name,
				"ingredients": rec.Ingredients,
				"steps":       rec.Steps,
			},
		}
		if err := r.recipes.Add(ctx, doc); err != nil {
			return err
		}
	}

	rules, err := corpus.SafetyRules(db)
	if err != nil {
		return err
	}
	for _, rule := range rules {
		doc := Document{ID: strconv.Itoa(int(rule.ID)), Text: rule.Rule}
		if err := r.safety.Add(ctx, doc); err != nil {
			return err
		}
	}

	r.constants, err = corpus.Constants(db)
	if err != nil {
		return err
	}

	log.Printf("Retrieval index ready: %d recipes, %d safety rules, %d constants",
		r.recipes.Len(), r.safety.Len(), len(r.constants))
	return nil
}

// SearchRecipes returns the top-k matching recipes rendered as numbered
// reference blocks, or "" when nothing matches.
func (r *Retriever) SearchRecipes(ctx context.Context, query string, k int) (string, error) {
	docs, err := r.recipes.Search(ctx, query, k)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "", nil
	}

	var b strings.Builder
	for i, doc := range docs {
		name := doc.Meta["name"]
		if name == "" {
			name = "Unknown Dish"
		}
		fmt.Fprintf(&b, "--- RECIPE OPTION %d: %s ---\n", i+1, name)
		fmt.Fprintf(&b, "Ingredients: %s\n", doc.Meta["ingredients"])
		fmt.Fprintf(&b, "Instructions: %s\n", doc.Meta["steps"])
		b.WriteString("-----------------------------------\n")
	}
	return strings.TrimSpace(b.String()), nil
}

// SearchSafety returns the top-k matching safety rules as "RULE: ..."
// lines, or "" when nothing matches.
func (r *Retriever) SearchSafety(ctx context.Context, query string, k int) (string, error) {
	docs, err := r.safety.Search(ctx, query, k)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "", nil
	}

	lines := make([]string, len(docs))
	for i, doc := range docs {
		lines[i] = "RULE: " + doc.Text
	}
	return strings.Join(lines, "\n"), nil
}

// SearchConstants matches the query case-insensitively against the lookup
// table keys and returns at most ConstantMatches "key: value" lines in
// table order. Purely lexical; no embeddings on this path.
func (r *Retriever) SearchConstants(query string) string {
	queryLower := strings.ToLower(query)

	var found []string
	for _, c := range r.constants {
		if strings.Contains(strings.ToLower(c.Key), queryLower) {
			found = append(found, c.Key+": "+c.Value)
			if len(found) == ConstantMatches {
				break
			}
		}
	}
	return strings.Join(found, "\n")
}

// SetConstants replaces the lookup table. Exposed for tests and for
// callers that load constants without a database.
func (r *Retriever) SetConstants(constants []corpus.Constant) {
	r.constants = constants
}
