package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/orendrasingh/video-transcription/internal/domain"
)

const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com"

const geminiModel = "gemini-1.5-flash"

// geminiPrompt asks for a diarization-cued transcript so the enhancer can
// normalize speaker labels downstream.
const geminiPrompt = `Transcribe this audio. If multiple speakers are present, prefix each speaking turn with "Speaker 1:", "Speaker 2:", and so on. Use proper punctuation and capitalization. Provide only the transcription, no commentary.`

type geminiTranscriber struct {
	client  *resty.Client
	baseURL string
}

func newGemini(opts Options) *geminiTranscriber {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(opts.Timeout)
	return &geminiTranscriber{client: client, baseURL: baseURL}
}

func (g *geminiTranscriber) Name() domain.Provider {
	return domain.ProviderGemini
}

func (g *geminiTranscriber) Limits() Limits {
	// inline audio payloads are capped well below the documented request
	// ceiling to leave room for base64 expansion
	return Limits{MaxBytes: 14 * 1024 * 1024, MaxChunkDuration: 30 * time.Minute}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *geminiTranscriber) Transcribe(ctx context.Context, wav []byte, apiKey string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, geminiModel, apiKey)

	req := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: geminiPrompt},
				{InlineData: &geminiInlineData{
					MimeType: "audio/wav",
					Data:     base64.StdEncoding.EncodeToString(wav),
				}},
			},
		}},
	}

	var resp geminiResponse
	httpResp, err := g.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", domain.ErrTransientNetwork, err)
	}

	if code := httpResp.StatusCode(); code < 200 || code >= 300 {
		return "", g.classify(code, &resp)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// classify maps a Gemini error response to a domain error kind.
func (g *geminiTranscriber) classify(code int, resp *geminiResponse) error {
	status, msg := "", ""
	if resp.Error != nil {
		status = resp.Error.Status
		msg = resp.Error.Message
	}
	switch {
	case code == 400 && strings.Contains(msg, "API key"):
		return fmt.Errorf("%w: gemini: %s", domain.ErrInvalidKey, msg)
	case code == 401 || code == 403:
		return fmt.Errorf("%w: gemini: HTTP %d %s", domain.ErrInvalidKey, code, msg)
	case code == 429 && status == "RESOURCE_EXHAUSTED" && strings.Contains(strings.ToLower(msg), "quota"):
		return fmt.Errorf("%w: gemini: %s", domain.ErrQuotaExceeded, msg)
	case code == 429:
		return fmt.Errorf("%w: gemini: HTTP 429 %s", domain.ErrRateLimited, msg)
	case code >= 500:
		return fmt.Errorf("%w: gemini: HTTP %d %s", domain.ErrTransientNetwork, code, msg)
	}
	return fmt.Errorf("gemini: HTTP %d %s", code, msg)
}
