package retrieval

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"chefai/internal/config"
)

// Embedder turns text into a vector for nearest-neighbor search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewEmbedder builds the configured embedding backend. "openai" uses the
// embeddings API; "local" is a deterministic hash-based embedding that
// needs no network and is good enough for small corpora and tests.
func NewEmbedder(cfg config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case "openai":
		apiKey := cfg.APIKey()
		if apiKey == "" {
			return nil, fmt.Errorf("%s environment variable not set", cfg.APIKeyEnv)
		}
		clientConfig := openai.DefaultConfig(apiKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
		return &OpenAIEmbedder{
			client: openai.NewClientWithConfig(clientConfig),
			model:  openai.EmbeddingModel(cfg.Model),
		}, nil
	case "local":
		return &LocalEmbedder{}, nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// OpenAIEmbedder generates embeddings through the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

const embedRetries = 3

// Embed generates an embedding vector for the given text, retrying
// transient failures with backoff.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < embedRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: e.model,
		})
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Data) == 0 {
			lastErr = fmt.Errorf("empty embedding response")
			continue
		}
		return resp.Data[0].Embedding, nil
	}
	return nil, fmt.Errorf("embedding failed after %d attempts: %w", embedRetries, lastErr)
}

const localEmbeddingDim = 100

// LocalEmbedder produces deterministic pseudo-embeddings by seeding a PRNG
// per word. Identical words always map to the identical contribution, so
// texts with shared vocabulary land near each other.
type LocalEmbedder struct{}

// Embed generates the deterministic local embedding for text.
func (e *LocalEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	words := strings.Fields(strings.ToLower(text))
	embedding := make([]float32, localEmbeddingDim)

	for _, word := range words {
		h := fnv.New32a()
		h.Write([]byte(word))
		rng := rand.New(rand.NewSource(int64(h.Sum32())))

		for i := range embedding {
			embedding[i] += rng.Float32()*2 - 1
		}
	}

	normalize(embedding)
	return embedding, nil
}

func normalize(v []float32) {
	var norm float32
	for _, x := range v {
		norm += x * x
	}
	norm = float32(math.Sqrt(float64(norm)))

	if norm != 0 {
		for i := range v {
			v[i] /= norm
		}
	}
}
