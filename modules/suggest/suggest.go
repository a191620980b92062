// Package suggest serves AI meal suggestions, gated on the plan's
// ai_recommendations feature. The model call itself lives behind the
// Recommender interface; this module owns only the gating and transport.
package suggest

import (
	"context"
)

// Suggestion is one recommended meal.
type Suggestion struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
}

// Recommender produces meal suggestions for the given preferences. Backed by
// an external AI provider in production.
type Recommender interface {
	Suggest(ctx context.Context, preferences []string) ([]Suggestion, error)
}

// RecommenderFunc adapts a function to the Recommender interface.
type RecommenderFunc func(ctx context.Context, preferences []string) ([]Suggestion, error)

func (f RecommenderFunc) Suggest(ctx context.Context, preferences []string) ([]Suggestion, error) {
	return f(ctx, preferences)
}
