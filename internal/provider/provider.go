// Package provider wraps the remote speech-to-text back ends behind one
// capability interface. The provider set is closed: a job picks gemini or
// openai at creation and the adapter normalizes request shape, response
// text, and error classification.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/orendrasingh/video-transcription/internal/domain"
)

// Limits caps a single transcription call. The segmenter sizes chunks to
// whichever of the two is tighter.
type Limits struct {
	MaxBytes         int64
	MaxChunkDuration time.Duration
}

// Transcriber is the capability every provider variant implements. wav is a
// standalone WAV payload; errors are classified into the domain error kinds
// so the chunk worker can decide whether to retry.
type Transcriber interface {
	Name() domain.Provider
	Limits() Limits
	Transcribe(ctx context.Context, wav []byte, apiKey string) (string, error)
}

// Options tunes adapter construction. BaseURL is overridable for tests.
type Options struct {
	Timeout time.Duration
	BaseURL string
}

// New returns the adapter for the named provider.
func New(p domain.Provider, opts Options) (Transcriber, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	switch p {
	case domain.ProviderGemini:
		return newGemini(opts), nil
	case domain.ProviderOpenAI:
		return newOpenAI(opts), nil
	}
	return nil, fmt.Errorf("unknown provider: %s", p)
}
