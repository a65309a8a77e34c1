package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/orendrasingh/video-transcription/internal/api/middleware"
	"github.com/orendrasingh/video-transcription/internal/logger"
	"github.com/orendrasingh/video-transcription/internal/service"
)

// EventHandler streams job progress events over a websocket.
type EventHandler struct {
	svc      *service.TranscriptionService
	upgrader websocket.Upgrader
}

func NewEventHandler(svc *service.TranscriptionService) *EventHandler {
	return &EventHandler{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser origin checks are handled by the CORS layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Stream upgrades the connection and forwards progress events until the
// job reaches a terminal state or the client disconnects. Late
// subscribers get the latest event immediately.
func (h *EventHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	job, err := h.svc.GetJob(ctx, c.Param("id"), middleware.OwnerID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWarn(ctx, "websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := h.svc.Subscribe(job.ID)
	defer cancel()

	// Drain client frames so we notice disconnects.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
			if ev.Status.Terminal() {
				return
			}
		case <-closed:
			return
		}
	}
}
