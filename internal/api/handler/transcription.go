package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orendrasingh/video-transcription/internal/api/middleware"
	"github.com/orendrasingh/video-transcription/internal/domain"
	"github.com/orendrasingh/video-transcription/internal/media"
	"github.com/orendrasingh/video-transcription/internal/service"
)

// previewLen bounds the transcript preview in history listings.
const previewLen = 200

// TranscriptionHandler exposes the job lifecycle over HTTP.
type TranscriptionHandler struct {
	svc       *service.TranscriptionService
	uploadDir string
	maxBytes  int64
}

func NewTranscriptionHandler(svc *service.TranscriptionService, uploadDir string, maxBytes int64) *TranscriptionHandler {
	return &TranscriptionHandler{
		svc:       svc,
		uploadDir: uploadDir,
		maxBytes:  maxBytes,
	}
}

// Create accepts a multipart upload {video, provider} and starts an
// asynchronous job. All rejections happen before any pipeline work.
func (h *TranscriptionHandler) Create(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	p, ok := domain.ParseProvider(c.PostForm("provider"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider must be one of: gemini, openai"})
		return
	}

	file, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video file is required"})
		return
	}
	if !media.SupportedContainer(file.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported file type: %s", filepath.Ext(file.Filename))})
		return
	}
	if h.maxBytes > 0 && file.Size > h.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds the %d byte limit", h.maxBytes)})
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}
	sourcePath := filepath.Join(h.uploadDir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, sourcePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}

	job, err := h.svc.StartJob(c.Request.Context(), ownerID, file.Filename, sourcePath, p)
	if err != nil {
		os.Remove(sourcePath)
		if errors.Is(err, domain.ErrMissingCredential) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("no API key configured for %s", p)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start job"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"id": job.ID})
}

type jobSummary struct {
	ID          string     `json:"id"`
	Filename    string     `json:"filename"`
	Provider    string     `json:"provider"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	Preview     string     `json:"preview,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// List returns the owner's job history, newest first, with transcript
// previews instead of full texts.
func (h *TranscriptionHandler) List(c *gin.Context) {
	jobs, err := h.svc.ListJobs(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}

	out := make([]jobSummary, len(jobs))
	for i, job := range jobs {
		preview := job.ResultText
		if len(preview) > previewLen {
			preview = preview[:previewLen]
		}
		out[i] = jobSummary{
			ID:          job.ID,
			Filename:    job.Filename,
			Provider:    string(job.Provider),
			Status:      string(job.Status),
			Progress:    job.Progress,
			Preview:     preview,
			Error:       job.ErrorMessage,
			CreatedAt:   job.CreatedAt,
			CompletedAt: job.CompletedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"jobs": out})
}

// Get returns the current status snapshot of one job.
func (h *TranscriptionHandler) Get(c *gin.Context) {
	job, err := h.svc.GetJob(c.Request.Context(), c.Param("id"), middleware.OwnerID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       job.ID,
		"status":   job.Status,
		"progress": job.Progress,
		"message":  job.Message,
	})
}

// Result returns the final transcript. Only completed jobs have one.
func (h *TranscriptionHandler) Result(c *gin.Context) {
	job, err := h.svc.GetJob(c.Request.Context(), c.Param("id"), middleware.OwnerID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}
	if job.Status != domain.StatusCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("job is %s, not completed", job.Status)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filename": job.Filename,
		"text":     job.ResultText,
	})
}

// Delete cancels a running job or removes a finished one from history.
func (h *TranscriptionHandler) Delete(c *gin.Context) {
	cancelled, err := h.svc.CancelOrDelete(c.Request.Context(), c.Param("id"), middleware.OwnerID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete job"})
		return
	}

	if cancelled {
		c.JSON(http.StatusOK, gin.H{"cancelled": true})
		return
	}
	c.Status(http.StatusNoContent)
}
