// Package llm talks to the text-generation backends and falls back across
// them in a fixed order.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrNoProviderConfigured is returned when no backend has credentials or
	// an endpoint.
	ErrNoProviderConfigured = errors.New("llm: no provider configured")
	// ErrAllProvidersFailed wraps the joined per-provider causes.
	ErrAllProvidersFailed = errors.New("llm: all providers failed")
)

// Prompt is the uniform call shape every backend accepts.
type Prompt struct {
	System      string
	User        string
	MaxTokens   int32
	Temperature float32
}

// Provider is one text-generation backend.
type Provider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, p Prompt) (string, error)
}

// GenerationResult is the output of whichever backend succeeded.
type GenerationResult struct {
	Text     string
	Provider string
	Model    string
}
