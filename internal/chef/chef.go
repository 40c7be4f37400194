package chef

import (
	"context"
	"time"

	"chefai/internal/config"
	"chefai/internal/intent"
	"chefai/internal/models"
	"chefai/internal/monitoring"
	"chefai/internal/session"
)

// Retriever is the read-only context lookup consumed by the turn handlers.
// All three operations tolerate empty results; errors are downgraded to
// fallback context by the handlers, never fatal to a turn.
type Retriever interface {
	SearchRecipes(ctx context.Context, query string, k int) (string, error)
	SearchSafety(ctx context.Context, query string, k int) (string, error)
	SearchConstants(query string) string
}

// Fallback context substituted when retrieval returns nothing or fails.
const (
	safetyFallback    = "No specific strict rules found. Use your general food safety knowledge."
	constantsFallback = "No specific data found about the user input. Use your general culinary knowledge."
	recipeFallback    = "No specific recipes for reference. Use your own knowledge and training."
	instructFallback  = "User is asking a general cooking question."
)

// Chef orchestrates a conversation turn: classify the intent, dispatch to
// the matching specialist handler, commit session state on success.
type Chef struct {
	gen        models.Generator
	retriever  Retriever
	sessions   *session.Store
	classifier *intent.Classifier
	metrics    *monitoring.MetricsCollector
	monitor    *monitoring.Monitor

	turnTimeout   time.Duration
	recipeResults int
	safetyResults int
}

// Option configures optional Chef collaborators.
type Option func(*Chef)

// WithMetrics attaches the prometheus collector.
func WithMetrics(mc *monitoring.MetricsCollector) Option {
	return func(c *Chef) { c.metrics = mc }
}

// WithMonitor attaches the runtime status monitor.
func WithMonitor(m *monitoring.Monitor) Option {
	return func(c *Chef) { c.monitor = m }
}

// New wires up the orchestrator.
func New(gen models.Generator, retriever Retriever, sessions *session.Store, classifier *intent.Classifier, cfg config.RouterConfig, opts ...Option) *Chef {
	c := &Chef{
		gen:           gen,
		retriever:     retriever,
		sessions:      sessions,
		classifier:    classifier,
		turnTimeout:   time.Duration(cfg.TurnTimeoutSeconds) * time.Second,
		recipeResults: cfg.RecipeResults,
		safetyResults: cfg.SafetyResults,
	}
	if c.turnTimeout <= 0 {
		c.turnTimeout = 120 * time.Second
	}
	if c.recipeResults <= 0 {
		c.recipeResults = 3
	}
	if c.safetyResults <= 0 {
		c.safetyResults = 2
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sessions exposes the session store for API-level reads.
func (c *Chef) Sessions() *session.Store {
	return c.sessions
}

func (c *Chef) recordTurn(label string, start time.Time, err error) {
	if c.metrics != nil {
		c.metrics.RecordTurn(label, time.Since(start), err)
		c.metrics.SetActiveSessions(c.sessions.Len())
	}
	if c.monitor != nil {
		c.monitor.RecordTurn(label, err)
	}
}

func (c *Chef) recordFallback(stage string) {
	if c.metrics != nil {
		c.metrics.RecordClassifierFallback(stage)
	}
}
