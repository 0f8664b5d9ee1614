// Package providers wraps the external generative image APIs. Each client
// owns its per-attempt timeout, retry policy, prompt sanitation, and error
// classification; it has no shared-state side effects.
package providers

import (
	"context"
)

// PromptSpec describes one generation request to a provider.
type PromptSpec struct {
	Prompt  string
	Style   string
	Size    string
	Quality string
}

// Result is a successful generation: a transient provider-hosted image URL
// and the provider-revised prompt, when the provider returns one.
type Result struct {
	URL           string
	RevisedPrompt string
}

// Client generates one image per call against a single external API.
type Client interface {
	Name() string
	Generate(ctx context.Context, spec PromptSpec) (*Result, error)
}
