package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orendrasingh/video-transcription/internal/domain"
)

// APIKeyRepository handles encrypted provider-credential records.
type APIKeyRepository struct {
	db *gorm.DB
}

// NewAPIKeyRepository creates a new APIKeyRepository.
func NewAPIKeyRepository(db *gorm.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Upsert creates or replaces the key record for (owner, provider).
func (r *APIKeyRepository) Upsert(ctx context.Context, key *domain.APIKey) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "provider"}},
		UpdateAll: true,
	}).Create(key).Error
}

// Get retrieves the key record for (owner, provider).
func (r *APIKeyRepository) Get(ctx context.Context, ownerID string, provider domain.Provider) (*domain.APIKey, error) {
	var key domain.APIKey
	if err := r.db.WithContext(ctx).First(&key, "owner_id = ? AND provider = ?", ownerID, provider).Error; err != nil {
		return nil, err
	}
	return &key, nil
}

// Delete removes the key record for (owner, provider).
func (r *APIKeyRepository) Delete(ctx context.Context, ownerID string, provider domain.Provider) error {
	res := r.db.WithContext(ctx).Delete(&domain.APIKey{}, "owner_id = ? AND provider = ?", ownerID, provider)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByOwner retrieves all key records for an owner.
func (r *APIKeyRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.APIKey, error) {
	var keys []domain.APIKey
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
