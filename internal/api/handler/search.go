package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orendrasingh/video-transcription/internal/api/middleware"
	"github.com/orendrasingh/video-transcription/internal/service"
)

// SearchHandler answers semantic queries over completed transcripts.
// nil search service means the feature is disabled by configuration.
type SearchHandler struct {
	search *service.SearchService
}

func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

// Search returns the owner's transcripts closest to the query.
func (h *SearchHandler) Search(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is not enabled"})
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	hits, err := h.search.Search(c.Request.Context(), middleware.OwnerID(c), req.Query, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": hits})
}
