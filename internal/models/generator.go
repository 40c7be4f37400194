package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// ErrBackend marks inference backend failures. A turn that hits one is
// aborted without committing any session state.
var ErrBackend = errors.New("inference backend failure")

// SampleParams are the sampling settings for one generation call.
type SampleParams struct {
	MaxTokens         int
	Temperature       float64
	RepetitionPenalty float64
}

// DefaultSampleParams mirror the upstream model defaults.
func DefaultSampleParams() SampleParams {
	return SampleParams{
		MaxTokens:         512,
		Temperature:       0.7,
		RepetitionPenalty: 1.1,
	}
}

// Generator is the inference capability handed to the classifier and the
// turn handlers: plain text in, plain text out, end-of-sequence markers
// stripped.
type Generator interface {
	Generate(ctx context.Context, role string, prompt string, params SampleParams) (string, error)
}

// LLMGenerator runs prompts against the registry's models. When serialize
// is set every call goes through a single lock, for backends that are not
// safe to use concurrently.
type LLMGenerator struct {
	registry  *Registry
	serialize bool
	observe   func(role string, elapsed time.Duration)
	mu        sync.Mutex
}

// NewGenerator wraps a registry in the Generator capability.
func NewGenerator(registry *Registry, serialize bool) *LLMGenerator {
	return &LLMGenerator{registry: registry, serialize: serialize}
}

// SetInferenceObserver registers a callback that receives the role and
// wall-clock duration of every model call. Set before serving traffic.
func (g *LLMGenerator) SetInferenceObserver(fn func(role string, elapsed time.Duration)) {
	g.observe = fn
}

// Generate runs a single completion against the model behind role.
func (g *LLMGenerator) Generate(ctx context.Context, role string, prompt string, params SampleParams) (string, error) {
	model, err := g.registry.GetModel(role)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackend, err)
	}

	if g.serialize {
		g.mu.Lock()
		defer g.mu.Unlock()
	}

	opts := []llms.CallOption{
		llms.WithMaxTokens(params.MaxTokens),
		llms.WithTemperature(params.Temperature),
	}
	if params.RepetitionPenalty > 0 {
		opts = append(opts, llms.WithRepetitionPenalty(params.RepetitionPenalty))
	}

	start := time.Now()
	output, err := llms.GenerateFromSinglePrompt(ctx, model, prompt, opts...)
	if g.observe != nil {
		g.observe(role, time.Since(start))
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackend, err)
	}

	return StripEndMarkers(output), nil
}

// endMarkers are end-of-sequence tokens that local backends sometimes leak
// into decoded output.
var endMarkers = []string{
	"<|end|>",
	"<|endoftext|>",
	"<|eot_id|>",
	"</s>",
	"<|im_end|>",
}

// StripEndMarkers removes trailing end-of-sequence tokens and surrounding
// whitespace from model output.
func StripEndMarkers(text string) string {
	text = strings.TrimSpace(text)
	for changed := true; changed; {
		changed = false
		for _, marker := range endMarkers {
			if strings.HasSuffix(text, marker) {
				text = strings.TrimSpace(strings.TrimSuffix(text, marker))
				changed = true
			}
		}
	}
	return text
}
