package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/orendrasingh/video-transcription/internal/config"
)

// EmbeddingClient calls an OpenAI-compatible embeddings endpoint with a
// server-configured key. Used only by the search index, never by the
// transcription pipeline itself.
type EmbeddingClient struct {
	client *resty.Client
	model  string
	apiKey string
	dims   int
}

func NewEmbeddingClient(cfg config.EmbeddingConfig) *EmbeddingClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(30 * time.Second)

	return &EmbeddingClient{
		client: client,
		model:  cfg.Model,
		apiKey: cfg.APIKey,
		dims:   cfg.Dimensions,
	}
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for one text.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	var out embeddingResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(embeddingRequest{
			Model:      c.model,
			Input:      []string{text},
			Dimensions: c.dims,
		}).
		SetResult(&out).
		Post("/embeddings")
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("embedding request failed: status %d", resp.StatusCode())
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no vectors")
	}
	return out.Data[0].Embedding, nil
}
