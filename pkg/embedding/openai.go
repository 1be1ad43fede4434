package embedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Alliance-Chemical/order-management-sub004/pkg/config"
)

// OpenAIProvider embeds queries through the OpenAI embeddings API (or a
// compatible gateway via base_url).
type OpenAIProvider struct {
	client    openai.Client
	model     string
	dimension int
}

// NewOpenAIProvider builds a provider from the embedding config. The
// API key comes from the OPENAI_API_KEY environment variable as usual.
func NewOpenAIProvider(cfg config.EmbeddingConfig) *OpenAIProvider {
	var opts []option.RequestOption
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIProvider{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		dimension: cfg.Dimension,
	}
}

// Embed returns the query embedding. Network and provider failures are
// returned to the caller; the retrieval layer treats them like an
// unloadable index.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
	}
	if p.dimension > 0 {
		params.Dimensions = openai.Int(int64(p.dimension))
	}
	resp, err := p.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response carried no vectors")
	}
	raw := resp.Data[0].Embedding
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	if p.dimension > 0 && len(vec) != p.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vec), p.dimension)
	}
	return vec, nil
}
