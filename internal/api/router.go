package api

import (
	"github.com/gin-gonic/gin"

	"github.com/orendrasingh/video-transcription/internal/api/handler"
	"github.com/orendrasingh/video-transcription/internal/api/middleware"
	"github.com/orendrasingh/video-transcription/internal/config"
	"github.com/orendrasingh/video-transcription/internal/secrets"
	"github.com/orendrasingh/video-transcription/internal/service"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(
	transcriptions *service.TranscriptionService,
	keys *secrets.Store,
	search *service.SearchService,
	cfg *config.Config,
) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))
	if cfg.Upload.MaxBytes > 0 {
		r.MaxMultipartMemory = cfg.Upload.MaxBytes
	}

	healthHandler := handler.NewHealthHandler()
	transcriptionHandler := handler.NewTranscriptionHandler(transcriptions, cfg.Upload.Dir, cfg.Upload.MaxBytes)
	eventHandler := handler.NewEventHandler(transcriptions)
	keyHandler := handler.NewKeyHandler(keys)
	searchHandler := handler.NewSearchHandler(search)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Owner())
	{
		v1.POST("/transcriptions", transcriptionHandler.Create)
		v1.GET("/transcriptions", transcriptionHandler.List)
		v1.GET("/transcriptions/:id", transcriptionHandler.Get)
		v1.GET("/transcriptions/:id/result", transcriptionHandler.Result)
		v1.GET("/transcriptions/:id/events", eventHandler.Stream)
		v1.DELETE("/transcriptions/:id", transcriptionHandler.Delete)

		v1.GET("/keys", keyHandler.List)
		v1.POST("/keys", keyHandler.Put)
		v1.DELETE("/keys/:provider", keyHandler.Delete)

		v1.POST("/search", searchHandler.Search)
	}

	return r
}
