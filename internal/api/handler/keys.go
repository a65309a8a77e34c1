package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/orendrasingh/video-transcription/internal/api/middleware"
	"github.com/orendrasingh/video-transcription/internal/domain"
	"github.com/orendrasingh/video-transcription/internal/secrets"
)

// KeyHandler manages provider API keys through the secret store. Key
// material is write-only: listings expose previews, never plaintext.
type KeyHandler struct {
	store *secrets.Store
}

func NewKeyHandler(store *secrets.Store) *KeyHandler {
	return &KeyHandler{store: store}
}

type putKeyRequest struct {
	Provider string `json:"provider" binding:"required"`
	Key      string `json:"key" binding:"required"`
}

// Put stores or replaces the owner's key for a provider.
func (h *KeyHandler) Put(c *gin.Context) {
	var req putKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider and key are required"})
		return
	}
	p, ok := domain.ParseProvider(req.Provider)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider must be one of: gemini, openai"})
		return
	}

	if err := h.store.Put(c.Request.Context(), middleware.OwnerID(c), p, req.Key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store key"})
		return
	}
	c.Status(http.StatusNoContent)
}

// List returns key previews for the owner.
func (h *KeyHandler) List(c *gin.Context) {
	previews, err := h.store.List(c.Request.Context(), middleware.OwnerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list keys"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": previews})
}

// Delete removes the owner's key for a provider.
func (h *KeyHandler) Delete(c *gin.Context) {
	p, ok := domain.ParseProvider(c.Param("provider"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider"})
		return
	}

	if err := h.store.Delete(c.Request.Context(), middleware.OwnerID(c), p); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no key stored for provider"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete key"})
		return
	}
	c.Status(http.StatusNoContent)
}
