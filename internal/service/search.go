package service

import (
	"context"
	"fmt"

	"github.com/orendrasingh/video-transcription/internal/domain"
	"github.com/orendrasingh/video-transcription/internal/repository"
)

// snippetLen bounds the payload snippet stored next to each vector.
const snippetLen = 300

// SearchService indexes completed transcripts and answers semantic
// queries scoped to one owner.
type SearchService struct {
	vectors *repository.QdrantRepository
	embed   *EmbeddingClient
}

func NewSearchService(vectors *repository.QdrantRepository, embed *EmbeddingClient) *SearchService {
	return &SearchService{vectors: vectors, embed: embed}
}

// IndexJob embeds a completed job's transcript and upserts it keyed by
// job ID.
func (s *SearchService) IndexJob(ctx context.Context, job *domain.TranscriptionJob) error {
	if job.ResultText == "" {
		return nil
	}
	vector, err := s.embed.Embed(ctx, job.ResultText)
	if err != nil {
		return fmt.Errorf("failed to embed transcript: %w", err)
	}
	return s.vectors.Upsert(ctx, job.ID, vector, &repository.TranscriptPayload{
		JobID:    job.ID,
		OwnerID:  job.OwnerID,
		Filename: job.Filename,
		Snippet:  truncate(job.ResultText, snippetLen),
	})
}

// RemoveJob drops a job's vector from the index.
func (s *SearchService) RemoveJob(ctx context.Context, jobID string) error {
	return s.vectors.Delete(ctx, jobID)
}

// SearchHit is one result returned to the API layer.
type SearchHit struct {
	JobID    string  `json:"job_id"`
	Filename string  `json:"filename"`
	Snippet  string  `json:"snippet"`
	Score    float32 `json:"score"`
}

// Search embeds the query and returns the owner's closest transcripts.
func (s *SearchService) Search(ctx context.Context, ownerID, query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 10
	}
	vector, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	results, err := s.vectors.Search(ctx, ownerID, vector, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, len(results))
	for i, r := range results {
		hits[i] = SearchHit{
			JobID:    r.Payload.JobID,
			Filename: r.Payload.Filename,
			Snippet:  r.Payload.Snippet,
			Score:    r.Score,
		}
	}
	return hits, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
