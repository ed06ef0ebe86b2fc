package infra

import "context"

// GeneratorInterface sends one prompt to a generative model and returns the
// raw JSON text it produced.
type GeneratorInterface interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

var _ GeneratorInterface = (*GeminiClient)(nil)
