package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/orendrasingh/video-transcription/internal/domain"
	"github.com/orendrasingh/video-transcription/internal/storage"
)

// Archiver writes completed transcripts to object storage so history
// rows stay small and transcripts survive database compaction.
type Archiver struct {
	store storage.ObjectStorage
}

func NewArchiver(store storage.ObjectStorage) *Archiver {
	return &Archiver{store: store}
}

// Archive uploads the job's transcript and returns the object key.
func (a *Archiver) Archive(ctx context.Context, job *domain.TranscriptionJob) (string, error) {
	key := fmt.Sprintf("transcripts/%s/%s.txt", job.OwnerID, job.ID)
	reader := strings.NewReader(job.ResultText)
	if err := a.store.Upload(ctx, key, reader, int64(reader.Len()), "text/plain; charset=utf-8"); err != nil {
		return "", fmt.Errorf("failed to upload transcript: %w", err)
	}
	return key, nil
}

// Delete removes an archived transcript.
func (a *Archiver) Delete(ctx context.Context, key string) error {
	return a.store.Delete(ctx, key)
}
