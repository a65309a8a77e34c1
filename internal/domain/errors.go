package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the pipeline. Retryable kinds never escape the
// chunk worker; everything else fails the owning job with a message the
// user can act on.
var (
	ErrUnsupportedMedia  = errors.New("unsupported media file")
	ErrSegmentation      = errors.New("audio could not be segmented")
	ErrMissingCredential = errors.New("no API key configured for provider")
	ErrRateLimited       = errors.New("provider rate limit hit")
	ErrTransientNetwork  = errors.New("transient network error")
	ErrInvalidKey        = errors.New("provider rejected the API key")
	ErrQuotaExceeded     = errors.New("provider quota exceeded")
	ErrCancelled         = errors.New("job cancelled")
	ErrJobNotActive      = errors.New("job is not active")
)

// Retryable reports whether the chunk worker may retry after err.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTransientNetwork)
}

// ProviderError attributes a transcription failure to a provider and a
// chunk so partial-file failures are explainable to the user.
type ProviderError struct {
	Provider   Provider
	ChunkIndex int
	Cause      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s transcription failed on chunk %d: %v", e.Provider, e.ChunkIndex, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}
