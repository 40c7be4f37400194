package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Document is one entry in a vector index.
type Document struct {
	ID   string
	Text string
	Meta map[string]string
}

// Index is an in-memory nearest-neighbor index over embedded documents.
// Reads may run concurrently; writes happen at load time.
type Index struct {
	embedder Embedder

	mu   sync.RWMutex
	docs []Document
	vecs [][]float32
}

// NewIndex creates an empty index over the given embedder.
func NewIndex(embedder Embedder) *Index {
	return &Index{embedder: embedder}
}

// Add embeds a document and inserts it into the index.
func (ix *Index) Add(ctx context.Context, doc Document) error {
	vec, err := ix.embedder.Embed(ctx, doc.Text)
	if err != nil {
		return fmt.Errorf("failed to embed document %s: %w", doc.ID, err)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.docs = append(ix.docs, doc)
	ix.vecs = append(ix.vecs, vec)
	return nil
}

// Len reports how many documents are indexed.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Search returns the k documents nearest to the query by cosine
// similarity. Returns an empty slice for an empty index.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Document, error) {
	queryVec, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	type scored struct {
		idx   int
		score float32
	}
	scores := make([]scored, len(ix.vecs))
	for i, vec := range ix.vecs {
		scores[i] = scored{idx: i, score: cosineSimilarity(queryVec, vec)}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if k > len(scores) {
		k = len(scores)
	}
	results := make([]Document, k)
	for i := 0; i < k; i++ {
		results[i] = ix.docs[scores[i].idx]
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float32
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / float32(math.Sqrt(float64(normA)*float64(normB)))
}
