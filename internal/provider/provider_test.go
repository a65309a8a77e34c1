package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orendrasingh/video-transcription/internal/domain"
)

func TestNewRejectsUnknownProvider(t *testing.T) {
	if _, err := New(domain.Provider("deepgram"), Options{}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewKnownProviders(t *testing.T) {
	for _, p := range []domain.Provider{domain.ProviderGemini, domain.ProviderOpenAI} {
		tr, err := New(p, Options{Timeout: time.Second})
		if err != nil {
			t.Fatalf("New(%s): %v", p, err)
		}
		if tr.Name() != p {
			t.Errorf("Name() = %s, want %s", tr.Name(), p)
		}
		limits := tr.Limits()
		if limits.MaxBytes <= 0 || limits.MaxChunkDuration <= 0 {
			t.Errorf("%s limits not set: %+v", p, limits)
		}
	}
}

func TestGeminiTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("api key not passed as query param")
		}
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 2 {
			t.Errorf("unexpected request shape: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]string{{"text": "hello from gemini"}},
				},
			}},
		})
	}))
	defer srv.Close()

	g := newGemini(Options{Timeout: time.Second, BaseURL: srv.URL})
	text, err := g.Transcribe(context.Background(), []byte("RIFFwav"), "test-key")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello from gemini" {
		t.Errorf("text = %q", text)
	}
}

func TestGeminiClassification(t *testing.T) {
	testCases := []struct {
		name   string
		code   int
		status string
		msg    string
		want   error
	}{
		{name: "bad api key", code: 400, msg: "API key not valid", want: domain.ErrInvalidKey},
		{name: "forbidden", code: 403, msg: "permission denied", want: domain.ErrInvalidKey},
		{name: "quota", code: 429, status: "RESOURCE_EXHAUSTED", msg: "You exceeded your current quota", want: domain.ErrQuotaExceeded},
		{name: "rate limit", code: 429, status: "RESOURCE_EXHAUSTED", msg: "Requests per minute exceeded", want: domain.ErrRateLimited},
		{name: "server error", code: 503, msg: "backend unavailable", want: domain.ErrTransientNetwork},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"code": tc.code, "status": tc.status, "message": tc.msg},
				})
			}))
			defer srv.Close()

			g := newGemini(Options{Timeout: time.Second, BaseURL: srv.URL})
			_, err := g.Transcribe(context.Background(), []byte("wav"), "k")
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want kind %v", err, tc.want)
			}
		})
	}
}

func TestOpenAITranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not a multipart request: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q", got)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("file part missing: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "hello from whisper"})
	}))
	defer srv.Close()

	o := newOpenAI(Options{Timeout: time.Second, BaseURL: srv.URL})
	text, err := o.Transcribe(context.Background(), []byte("RIFFwav"), "test-key")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello from whisper" {
		t.Errorf("text = %q", text)
	}
}

func TestOpenAIClassification(t *testing.T) {
	testCases := []struct {
		name    string
		code    int
		errCode string
		want    error
	}{
		{name: "unauthorized", code: 401, want: domain.ErrInvalidKey},
		{name: "quota exhausted", code: 429, errCode: "insufficient_quota", want: domain.ErrQuotaExceeded},
		{name: "rate limit", code: 429, errCode: "rate_limit_exceeded", want: domain.ErrRateLimited},
		{name: "server error", code: 500, want: domain.ErrTransientNetwork},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"message": "nope", "code": tc.errCode},
				})
			}))
			defer srv.Close()

			o := newOpenAI(Options{Timeout: time.Second, BaseURL: srv.URL})
			_, err := o.Transcribe(context.Background(), []byte("wav"), "k")
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want kind %v", err, tc.want)
			}
		})
	}
}

func TestRetryableKinds(t *testing.T) {
	if !domain.Retryable(domain.ErrRateLimited) || !domain.Retryable(domain.ErrTransientNetwork) {
		t.Error("rate limit and transient network must be retryable")
	}
	for _, err := range []error{domain.ErrInvalidKey, domain.ErrQuotaExceeded, domain.ErrUnsupportedMedia} {
		if domain.Retryable(err) {
			t.Errorf("%v must not be retryable", err)
		}
	}
}
