package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/orendrasingh/video-transcription/internal/broadcast"
	"github.com/orendrasingh/video-transcription/internal/config"
	"github.com/orendrasingh/video-transcription/internal/domain"
	"github.com/orendrasingh/video-transcription/internal/enhance"
	"github.com/orendrasingh/video-transcription/internal/logger"
	"github.com/orendrasingh/video-transcription/internal/media"
	"github.com/orendrasingh/video-transcription/internal/provider"
)

// HistoryStore persists job records across transitions.
type HistoryStore interface {
	Create(ctx context.Context, job *domain.TranscriptionJob) error
	Update(ctx context.Context, job *domain.TranscriptionJob) error
	GetByID(ctx context.Context, id, ownerID string) (*domain.TranscriptionJob, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.TranscriptionJob, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// CredentialStore resolves a decrypted provider API key for an owner.
type CredentialStore interface {
	Get(ctx context.Context, ownerID string, p domain.Provider) (string, error)
}

// AudioExtractor converts an uploaded video into a mono WAV file.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath string) (string, error)
	Probe(ctx context.Context, audioPath string) (time.Duration, error)
}

// TranscriberFactory builds the adapter for a provider. Swappable so
// tests can run the pipeline against fakes.
type TranscriberFactory func(p domain.Provider) (provider.Transcriber, error)

// Deps collects the collaborators of the transcription service.
type Deps struct {
	Jobs        HistoryStore
	Credentials CredentialStore
	Extractor   AudioExtractor
	Transcriber TranscriberFactory
	Enhancer    *enhance.Enhancer
	EnhanceOpts enhance.Options
	Events      *broadcast.Broadcaster
	Archiver    *Archiver      // nil disables archiving
	Search      *SearchService // nil disables indexing
	Pipeline    config.PipelineConfig
}

// TranscriptionService drives the job lifecycle. Each accepted upload
// gets one goroutine that owns the job record from queued to a terminal
// state; everything the handlers read comes from the persisted snapshot.
type TranscriptionService struct {
	jobs        HistoryStore
	creds       CredentialStore
	extractor   AudioExtractor
	transcriber TranscriberFactory
	enhancer    *enhance.Enhancer
	enhanceOpts enhance.Options
	events      *broadcast.Broadcaster
	archiver    *Archiver
	search      *SearchService
	cfg         config.PipelineConfig

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func NewTranscriptionService(d Deps) *TranscriptionService {
	return &TranscriptionService{
		jobs:        d.Jobs,
		creds:       d.Credentials,
		extractor:   d.Extractor,
		transcriber: d.Transcriber,
		enhancer:    d.Enhancer,
		enhanceOpts: d.EnhanceOpts,
		events:      d.Events,
		archiver:    d.Archiver,
		search:      d.Search,
		cfg:         d.Pipeline,
		cancels:     make(map[string]context.CancelFunc),
	}
}

// StartJob validates that a credential exists for the provider, persists
// the queued job and launches its pipeline goroutine. The uploaded file
// at sourcePath is owned by the pipeline from here on and is removed on
// every terminal path.
func (s *TranscriptionService) StartJob(ctx context.Context, ownerID, filename, sourcePath string, p domain.Provider) (*domain.TranscriptionJob, error) {
	apiKey, err := s.creds.Get(ctx, ownerID, p)
	if err != nil {
		return nil, err
	}

	job := &domain.TranscriptionJob{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Filename:   filename,
		SourcePath: sourcePath,
		Provider:   p,
		Status:     domain.StatusQueued,
		Progress:   0,
		Message:    "queued",
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	base := logger.WithFields(context.Background(), logger.Fields{
		logger.FieldComponent: "pipeline",
		logger.FieldJobID:     job.ID,
		logger.FieldOwnerID:   ownerID,
		logger.FieldProvider:  string(p),
	})
	runCtx, cancel := context.WithCancel(base)

	s.mu.Lock()
	s.cancels[job.ID] = cancel
	s.mu.Unlock()

	s.events.Publish(job.ID, broadcast.Event{ID: job.ID, Status: job.Status, Progress: 0, Message: job.Message})

	s.wg.Add(1)
	go s.run(runCtx, job, apiKey)

	return job, nil
}

func (s *TranscriptionService) run(ctx context.Context, job *domain.TranscriptionJob, apiKey string) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.cancels, job.ID)
		s.mu.Unlock()
		s.events.Close(job.ID)
	}()
	defer os.Remove(job.SourcePath)

	start := time.Now()
	logger.CtxInfo(ctx, "job started: %s", job.Filename)

	if err := s.transition(ctx, job, domain.StatusExtracting, 10, "extracting audio"); err != nil {
		s.fail(ctx, job, err)
		return
	}
	audioPath, err := s.extractor.Extract(ctx, job.SourcePath)
	if err != nil {
		s.fail(ctx, job, err)
		return
	}
	defer os.Remove(audioPath)

	if dur, perr := s.extractor.Probe(ctx, audioPath); perr != nil {
		logger.CtxWarn(ctx, "probe failed: %v", perr)
	} else {
		logger.CtxInfo(ctx, "extracted %s of audio", dur.Round(time.Second))
	}

	if err := s.transition(ctx, job, domain.StatusSegmenting, 20, "segmenting audio"); err != nil {
		s.fail(ctx, job, err)
		return
	}
	t, err := s.transcriber(job.Provider)
	if err != nil {
		s.fail(ctx, job, err)
		return
	}
	info, err := media.ParseWAVFile(audioPath)
	if err != nil {
		s.fail(ctx, job, fmt.Errorf("%w: %v", domain.ErrSegmentation, err))
		return
	}
	limits := t.Limits()
	chunks, err := media.Segment(info, limits.MaxChunkDuration, limits.MaxBytes)
	if err != nil {
		s.fail(ctx, job, err)
		return
	}

	if err := s.transition(ctx, job, domain.StatusTranscribing, 25, fmt.Sprintf("transcribing %d chunks", len(chunks))); err != nil {
		s.fail(ctx, job, err)
		return
	}
	f, err := os.Open(audioPath)
	if err != nil {
		s.fail(ctx, job, fmt.Errorf("failed to reopen audio: %w", err))
		return
	}
	texts, err := s.transcribeChunks(ctx, job, t, apiKey, f, info, chunks)
	f.Close()
	if err != nil {
		s.fail(ctx, job, err)
		return
	}

	if err := s.transition(ctx, job, domain.StatusEnhancing, 90, "enhancing transcript"); err != nil {
		s.fail(ctx, job, err)
		return
	}
	job.ResultText = s.enhancer.Enhance(ctx, strings.Join(texts, " "), s.enhanceOpts)

	now := time.Now()
	job.CompletedAt = &now
	if err := s.transition(ctx, job, domain.StatusCompleted, 100, "completed"); err != nil {
		s.fail(ctx, job, err)
		return
	}
	elapsed := time.Since(start)
	logger.CtxInfo(logger.WithField(ctx, logger.FieldDurationMs, elapsed.Milliseconds()), "job completed in %s", elapsed.Round(time.Millisecond))

	s.afterCompleted(context.WithoutCancel(ctx), job)
}

// afterCompleted runs the optional side effects. Neither can change the
// job status; failures are logged and swallowed.
func (s *TranscriptionService) afterCompleted(ctx context.Context, job *domain.TranscriptionJob) {
	if s.archiver != nil {
		key, err := s.archiver.Archive(ctx, job)
		if err != nil {
			logger.CtxWarn(ctx, "failed to archive transcript: %v", err)
		} else {
			job.ArchiveKey = key
			if err := s.jobs.Update(ctx, job); err != nil {
				logger.CtxWarn(ctx, "failed to record archive key: %v", err)
			}
		}
	}
	if s.search != nil {
		if err := s.search.IndexJob(ctx, job); err != nil {
			logger.CtxWarn(ctx, "failed to index transcript: %v", err)
		}
	}
}

// transition advances the job, persists the snapshot and broadcasts the
// milestone. Progress never moves backwards.
func (s *TranscriptionService) transition(ctx context.Context, job *domain.TranscriptionJob, status domain.JobStatus, progress int, message string) error {
	if !isValidTransition(job.Status, status) {
		return fmt.Errorf("invalid transition %s -> %s", job.Status, status)
	}
	if progress < job.Progress {
		progress = job.Progress
	}
	job.Status = status
	job.Progress = progress
	job.Message = message

	if err := s.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to persist job state: %w", err)
	}
	s.events.Publish(job.ID, broadcast.Event{ID: job.ID, Status: status, Progress: progress, Message: message})
	logger.CtxDebug(ctx, "job %s -> %s (%d%%)", job.ID, status, progress)
	return nil
}

// fail moves the job to failed with a user-facing message. Uses a
// detached context so the terminal snapshot persists even when the job
// context was cancelled.
func (s *TranscriptionService) fail(ctx context.Context, job *domain.TranscriptionJob, cause error) {
	ctx = context.WithoutCancel(ctx)

	msg := cause.Error()
	if errors.Is(cause, context.Canceled) || errors.Is(cause, domain.ErrCancelled) {
		msg = domain.ErrCancelled.Error()
	}

	job.Status = domain.StatusFailed
	job.Message = msg
	job.ErrorMessage = msg
	now := time.Now()
	job.CompletedAt = &now

	if err := s.jobs.Update(ctx, job); err != nil {
		logger.CtxError(ctx, "failed to persist failed job: %v", err)
	}
	s.events.Publish(job.ID, broadcast.Event{ID: job.ID, Status: domain.StatusFailed, Progress: job.Progress, Message: msg})
	logger.CtxError(ctx, "job failed: %v", cause)
}

// transcribeChunks fans the chunks out over a bounded worker pool and
// collects transcripts into index-keyed slots. The first unrecoverable
// error cancels outstanding work. Only this goroutine touches the job
// record; workers report completions over a channel.
func (s *TranscriptionService) transcribeChunks(ctx context.Context, job *domain.TranscriptionJob, t provider.Transcriber, apiKey string, f *os.File, info media.WAVInfo, chunks []domain.Chunk) ([]string, error) {
	total := len(chunks)
	texts := make([]string, total)

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > total {
		workers = total
	}

	var (
		wg        sync.WaitGroup
		completed atomic.Int64
		errOnce   sync.Once
		firstErr  error
	)
	workCh := make(chan int)
	progressCh := make(chan int64, total)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				text, err := s.transcribeChunk(workCtx, t, apiKey, f, info, &chunks[idx])
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
				texts[idx] = text
				progressCh <- completed.Add(1)
			}
		}()
	}

	go func() {
		defer close(workCh)
		for i := 0; i < total; i++ {
			select {
			case workCh <- i:
			case <-workCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(progressCh)
	}()

	for done := range progressCh {
		progress := 25 + int(65*done/int64(total))
		msg := fmt.Sprintf("transcribed %d/%d chunks", done, total)
		if err := s.transition(ctx, job, domain.StatusTranscribing, progress, msg); err != nil {
			logger.CtxWarn(ctx, "failed to persist progress: %v", err)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return texts, nil
}

// transcribeChunk runs one chunk with retry. Retryable kinds back off
// exponentially up to the attempt cap; terminal kinds and exhaustion
// surface as a ProviderError naming the chunk.
func (s *TranscriptionService) transcribeChunk(ctx context.Context, t provider.Transcriber, apiKey string, f *os.File, info media.WAVInfo, c *domain.Chunk) (string, error) {
	ctx = logger.WithField(ctx, logger.FieldChunk, c.Index)
	payload, err := media.ReadChunkPayload(f, info, *c)
	if err != nil {
		return "", fmt.Errorf("failed to read chunk %d: %w", c.Index, err)
	}

	maxAttempts := s.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for c.Attempt < maxAttempts {
		c.Attempt++

		text, err := t.Transcribe(ctx, payload, apiKey)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !domain.Retryable(err) {
			break
		}
		if c.Attempt < maxAttempts {
			delay := s.cfg.RetryBaseDelay * time.Duration(1<<(c.Attempt-1))
			logger.CtxWarn(ctx, "chunk %d attempt %d failed, retrying in %s: %v", c.Index, c.Attempt, delay, err)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return "", &domain.ProviderError{Provider: t.Name(), ChunkIndex: c.Index, Cause: lastErr}
}

// GetJob returns the persisted snapshot of a job, scoped to its owner.
func (s *TranscriptionService) GetJob(ctx context.Context, id, ownerID string) (*domain.TranscriptionJob, error) {
	return s.jobs.GetByID(ctx, id, ownerID)
}

// ListJobs returns the owner's job history, newest first.
func (s *TranscriptionService) ListJobs(ctx context.Context, ownerID string) ([]domain.TranscriptionJob, error) {
	return s.jobs.ListByOwner(ctx, ownerID)
}

// Subscribe attaches to a job's progress stream.
func (s *TranscriptionService) Subscribe(jobID string) (<-chan broadcast.Event, func()) {
	return s.events.Subscribe(jobID)
}

// CancelOrDelete cancels the job when it is still active, otherwise
// removes it from history along with its archived transcript and search
// index entry. Returns true when the call cancelled a running job.
func (s *TranscriptionService) CancelOrDelete(ctx context.Context, id, ownerID string) (bool, error) {
	job, err := s.jobs.GetByID(ctx, id, ownerID)
	if err != nil {
		return false, err
	}

	if !job.Status.Terminal() {
		s.mu.Lock()
		cancel, ok := s.cancels[id]
		s.mu.Unlock()
		if ok {
			cancel()
			return true, nil
		}
		// Active in the database but no goroutine owns it, e.g. after a
		// restart. Mark it failed directly.
		job.Status = domain.StatusFailed
		job.Message = domain.ErrCancelled.Error()
		job.ErrorMessage = domain.ErrCancelled.Error()
		now := time.Now()
		job.CompletedAt = &now
		if err := s.jobs.Update(ctx, job); err != nil {
			return false, fmt.Errorf("failed to mark job cancelled: %w", err)
		}
		return true, nil
	}

	if s.archiver != nil && job.ArchiveKey != "" {
		if err := s.archiver.Delete(ctx, job.ArchiveKey); err != nil {
			logger.CtxWarn(ctx, "failed to delete archived transcript: %v", err)
		}
	}
	if s.search != nil {
		if err := s.search.RemoveJob(ctx, job.ID); err != nil {
			logger.CtxWarn(ctx, "failed to remove transcript from index: %v", err)
		}
	}
	return false, s.jobs.Delete(ctx, id, ownerID)
}

// Shutdown cancels all active jobs and waits for their goroutines, up
// to the context deadline.
func (s *TranscriptionService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
