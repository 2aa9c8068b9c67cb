// Package llm provides clients for the remote completion services used by
// the schema classifier, plus JSON extraction from free-text responses.
package llm

import "context"

// Client is a single configured completion model.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// Complete sends a system+user prompt pair and returns the raw response
	// text. The response carries no schema guarantee.
	Complete(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error)

	// Model returns the configured model name.
	Model() string
}
