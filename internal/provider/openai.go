package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/orendrasingh/video-transcription/internal/domain"
)

const openAIDefaultBaseURL = "https://api.openai.com/v1"

const whisperModel = "whisper-1"

type openAITranscriber struct {
	client  *resty.Client
	baseURL string
}

func newOpenAI(opts Options) *openAITranscriber {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	client := resty.New()
	client.SetTimeout(opts.Timeout)
	return &openAITranscriber{client: client, baseURL: baseURL}
}

func (o *openAITranscriber) Name() domain.Provider {
	return domain.ProviderOpenAI
}

func (o *openAITranscriber) Limits() Limits {
	// the API rejects uploads over 25 MB
	return Limits{MaxBytes: 24 * 1024 * 1024, MaxChunkDuration: 10 * time.Minute}
}

type openAITranscription struct {
	Text string `json:"text"`
}

type openAIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (o *openAITranscriber) Transcribe(ctx context.Context, wav []byte, apiKey string) (string, error) {
	httpResp, err := o.client.R().
		SetContext(ctx).
		SetAuthToken(apiKey).
		SetFileReader("file", "chunk.wav", bytes.NewReader(wav)).
		SetFormData(map[string]string{
			"model":           whisperModel,
			"response_format": "json",
		}).
		Post(o.baseURL + "/audio/transcriptions")
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", domain.ErrTransientNetwork, err)
	}

	if code := httpResp.StatusCode(); code < 200 || code >= 300 {
		return "", o.classify(code, httpResp.Body())
	}

	var result openAITranscription
	if err := json.Unmarshal(httpResp.Body(), &result); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	return result.Text, nil
}

// classify maps an OpenAI error response to a domain error kind. A 429
// with the insufficient_quota code is terminal; any other 429 is a
// retryable rate limit.
func (o *openAITranscriber) classify(code int, body []byte) error {
	var apiErr openAIError
	_ = json.Unmarshal(body, &apiErr)
	msg := apiErr.Error.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	switch {
	case code == 401 || code == 403:
		return fmt.Errorf("%w: openai: HTTP %d %s", domain.ErrInvalidKey, code, msg)
	case code == 429 && apiErr.Error.Code == "insufficient_quota":
		return fmt.Errorf("%w: openai: %s", domain.ErrQuotaExceeded, msg)
	case code == 429:
		return fmt.Errorf("%w: openai: HTTP 429 %s", domain.ErrRateLimited, msg)
	case code >= 500:
		return fmt.Errorf("%w: openai: HTTP %d %s", domain.ErrTransientNetwork, code, msg)
	}
	return fmt.Errorf("openai: HTTP %d %s", code, msg)
}
