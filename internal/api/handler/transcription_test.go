package handler

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/orendrasingh/video-transcription/internal/api/middleware"
	"github.com/orendrasingh/video-transcription/internal/broadcast"
	"github.com/orendrasingh/video-transcription/internal/config"
	"github.com/orendrasingh/video-transcription/internal/domain"
	"github.com/orendrasingh/video-transcription/internal/enhance"
	"github.com/orendrasingh/video-transcription/internal/provider"
	"github.com/orendrasingh/video-transcription/internal/service"
)

type emptyJobs struct{}

func (emptyJobs) Create(context.Context, *domain.TranscriptionJob) error { return nil }
func (emptyJobs) Update(context.Context, *domain.TranscriptionJob) error { return nil }
func (emptyJobs) GetByID(context.Context, string, string) (*domain.TranscriptionJob, error) {
	return nil, gorm.ErrRecordNotFound
}
func (emptyJobs) ListByOwner(context.Context, string) ([]domain.TranscriptionJob, error) {
	return nil, nil
}
func (emptyJobs) Delete(context.Context, string, string) error { return gorm.ErrRecordNotFound }

type noCreds struct{}

func (noCreds) Get(_ context.Context, _ string, p domain.Provider) (string, error) {
	return "", fmt.Errorf("%w: %s", domain.ErrMissingCredential, p)
}

func newUploadRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewTranscriptionService(service.Deps{
		Jobs:        emptyJobs{},
		Credentials: noCreds{},
		Transcriber: func(p domain.Provider) (provider.Transcriber, error) {
			return provider.New(p, provider.Options{Timeout: time.Second})
		},
		Enhancer: enhance.New(4),
		Events:   broadcast.New(),
		Pipeline: config.PipelineConfig{Workers: 1, MaxAttempts: 1},
	})
	h := NewTranscriptionHandler(svc, t.TempDir(), 1<<20)

	r := gin.New()
	r.Use(middleware.Owner())
	r.POST("/transcriptions", h.Create)
	r.GET("/transcriptions/:id", h.Get)
	return r
}

func multipartUpload(t *testing.T, filename, providerName string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if providerName != "" {
		if err := w.WriteField("provider", providerName); err != nil {
			t.Fatal(err)
		}
	}
	if filename != "" {
		part, err := w.CreateFormFile("video", filename)
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte("fake video bytes"))
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func postUpload(t *testing.T, r *gin.Engine, filename, providerName string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t, filename, providerName)
	req := httptest.NewRequest(http.MethodPost, "/transcriptions", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(middleware.OwnerHeader, "owner-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateRejections(t *testing.T) {
	r := newUploadRouter(t)

	testCases := []struct {
		name     string
		filename string
		provider string
		want     int
	}{
		{name: "unknown provider", filename: "talk.mp4", provider: "whisperx", want: http.StatusBadRequest},
		{name: "missing provider", filename: "talk.mp4", provider: "", want: http.StatusBadRequest},
		{name: "missing file", filename: "", provider: "gemini", want: http.StatusBadRequest},
		{name: "unsupported extension", filename: "notes.txt", provider: "gemini", want: http.StatusBadRequest},
		{name: "no credential stored", filename: "talk.mp4", provider: "gemini", want: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := postUpload(t, r, tc.filename, tc.provider)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestGetUnknownJob(t *testing.T) {
	r := newUploadRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/transcriptions/nope", nil)
	req.Header.Set(middleware.OwnerHeader, "owner-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
