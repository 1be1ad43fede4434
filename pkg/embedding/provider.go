// Package embedding abstracts the external query-embedding provider.
// The index build tooling owns corpus embeddings; this package only
// produces query vectors of matching dimensionality.
package embedding

import "context"

// Provider produces a fixed-dimensionality embedding for a query.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, text string) ([]float32, error)

// Embed implements Provider.
func (f ProviderFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}
