package ai

import "context"

// Provider is a single language-model backend. Generate returns the model's
// reply text for one user message. Transport, auth, quota and parse failures
// all come back as errors; the chain decides what to do with them.
type Provider interface {
	Name() string
	Generate(ctx context.Context, message string) (string, error)
}
