package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/orendrasingh/video-transcription/internal/domain"
)

// JobRepository is the durable history store for transcription jobs. Every
// lifecycle transition is persisted here, which makes status queries plain
// reads that never contend with the pipeline goroutine.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *JobRepository: repository instance bound to db.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job record.
func (r *JobRepository) Create(ctx context.Context, job *domain.TranscriptionJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// Update persists the current snapshot of a job record.
func (r *JobRepository) Update(ctx context.Context, job *domain.TranscriptionJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// GetByID retrieves a job scoped to its owner.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
//   - ownerID: requesting owner; lookups never cross owners.
// Returns:
//   - *domain.TranscriptionJob: job record if found.
//   - error: gorm.ErrRecordNotFound if absent or owned by someone else.
func (r *JobRepository) GetByID(ctx context.Context, id, ownerID string) (*domain.TranscriptionJob, error) {
	var job domain.TranscriptionJob
	if err := r.db.WithContext(ctx).First(&job, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// ListByOwner retrieves an owner's jobs, newest first.
func (r *JobRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.TranscriptionJob, error) {
	var jobs []domain.TranscriptionJob
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// Delete removes a job scoped to its owner.
func (r *JobRepository) Delete(ctx context.Context, id, ownerID string) error {
	res := r.db.WithContext(ctx).Delete(&domain.TranscriptionJob{}, "id = ? AND owner_id = ?", id, ownerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
