package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orendrasingh/video-transcription/internal/api"
	"github.com/orendrasingh/video-transcription/internal/broadcast"
	"github.com/orendrasingh/video-transcription/internal/config"
	"github.com/orendrasingh/video-transcription/internal/domain"
	"github.com/orendrasingh/video-transcription/internal/enhance"
	"github.com/orendrasingh/video-transcription/internal/logger"
	"github.com/orendrasingh/video-transcription/internal/media"
	"github.com/orendrasingh/video-transcription/internal/provider"
	"github.com/orendrasingh/video-transcription/internal/repository"
	"github.com/orendrasingh/video-transcription/internal/secrets"
	"github.com/orendrasingh/video-transcription/internal/service"
	"github.com/orendrasingh/video-transcription/internal/storage"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      os.Stdout,
		ServiceName: "video-transcription",
		LogFile:     cfg.Log.File,
	})
	logger.SetDefaultLogger(appLogger)
	ctx := context.Background()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	jobRepo := repository.NewJobRepository(db)
	keyRepo := repository.NewAPIKeyRepository(db)

	secretStore, err := secrets.New(cfg.Secrets.MasterKey, keyRepo)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize secret store")
	}

	// Optional transcript archive
	var archiver *service.Archiver
	if cfg.Archive.Enabled {
		objectStorage, err := storage.NewStorage(&storage.Config{
			Type:      cfg.Archive.Type,
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			UseSSL:    cfg.Archive.UseSSL,
			Bucket:    cfg.Archive.Bucket,
			Region:    cfg.Archive.Region,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize archive storage")
		}
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure archive bucket")
		}
		archiver = service.NewArchiver(objectStorage)
	}

	// Optional semantic search over completed transcripts
	var searchService *service.SearchService
	if cfg.Search.Enabled {
		qdrantRepo, err := repository.NewQdrantRepository(&repository.QdrantConnectionConfig{
			Host:            cfg.Search.Qdrant.Host,
			Port:            cfg.Search.Qdrant.Port,
			Collection:      cfg.Search.Qdrant.Collection,
			APIKey:          cfg.Search.Qdrant.APIKey,
			UseTLS:          cfg.Search.Qdrant.UseTLS,
			VectorDimension: cfg.Search.Embedding.Dimensions,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize Qdrant repository")
		}
		defer qdrantRepo.Close()
		if err := qdrantRepo.EnsureCollection(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure Qdrant collection")
		}
		searchService = service.NewSearchService(qdrantRepo, service.NewEmbeddingClient(cfg.Search.Embedding))
	}

	tmpDir := cfg.Upload.TmpDir
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}

	transcriptionService := service.NewTranscriptionService(service.Deps{
		Jobs:        jobRepo,
		Credentials: secretStore,
		Extractor:   media.NewExtractor(tmpDir, cfg.Pipeline.ExtractTimeout),
		Transcriber: func(p domain.Provider) (provider.Transcriber, error) {
			return provider.New(p, provider.Options{Timeout: cfg.Pipeline.ProviderTimeout})
		},
		Enhancer: enhance.New(cfg.Enhance.SentencesPerParagraph),
		EnhanceOpts: enhance.Options{
			SkipSpeakers:  cfg.Enhance.SkipSpeakers,
			SkipFillers:   cfg.Enhance.SkipFillers,
			SkipProfanity: cfg.Enhance.SkipProfanity,
			SkipFormat:    cfg.Enhance.SkipFormat,
		},
		Events:   broadcast.New(),
		Archiver: archiver,
		Search:   searchService,
		Pipeline: cfg.Pipeline,
	})

	router := api.SetupRouter(transcriptionService, secretStore, searchService, cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithField("port", cfg.Server.Port).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}
	if err := transcriptionService.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Pipelines did not drain before deadline")
	}

	appLogger.Info("Server exited")
}
