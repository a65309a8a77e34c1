// Package secrets is the provider API-key store. Keys are sealed with an
// XChaCha20-Poly1305 AEAD under a configured master key before they reach
// the database; plaintext exists only in memory, on its way to a provider
// call.
package secrets

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"gorm.io/gorm"

	"github.com/orendrasingh/video-transcription/internal/domain"
)

// KeyRecords is the persistence contract the store writes through.
type KeyRecords interface {
	Upsert(ctx context.Context, key *domain.APIKey) error
	Get(ctx context.Context, ownerID string, provider domain.Provider) (*domain.APIKey, error)
	Delete(ctx context.Context, ownerID string, provider domain.Provider) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.APIKey, error)
}

// KeyPreview is the redacted listing shape returned to clients.
type KeyPreview struct {
	Provider  domain.Provider `json:"provider"`
	Preview   string          `json:"key_preview"`
	CreatedAt string          `json:"created_at"`
}

// Store encrypts and persists per-owner provider credentials.
type Store struct {
	records KeyRecords
	aead    cipher.AEAD
}

// New derives the AEAD from masterKey and binds the store to its records.
func New(masterKey string, records KeyRecords) (*Store, error) {
	if masterKey == "" {
		return nil, fmt.Errorf("secrets: master key is empty")
	}
	sum := sha256.Sum256([]byte(masterKey))
	aead, err := chacha20poly1305.NewX(sum[:])
	if err != nil {
		return nil, fmt.Errorf("secrets: init aead: %w", err)
	}
	return &Store{records: records, aead: aead}, nil
}

// Put seals apiKey and stores it for (ownerID, provider), replacing any
// previous key.
func (s *Store) Put(ctx context.Context, ownerID string, provider domain.Provider, apiKey string) error {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("secrets: nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(apiKey), []byte(ownerID))
	return s.records.Upsert(ctx, &domain.APIKey{
		OwnerID:       ownerID,
		Provider:      provider,
		KeyCiphertext: base64.StdEncoding.EncodeToString(sealed),
	})
}

// Get returns the plaintext key for (ownerID, provider), or
// domain.ErrMissingCredential when none is stored.
func (s *Store) Get(ctx context.Context, ownerID string, provider domain.Provider) (string, error) {
	rec, err := s.records.Get(ctx, ownerID, provider)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s", domain.ErrMissingCredential, provider)
		}
		return "", fmt.Errorf("secrets: lookup: %w", err)
	}
	return s.open(rec)
}

// Delete removes the stored key for (ownerID, provider).
func (s *Store) Delete(ctx context.Context, ownerID string, provider domain.Provider) error {
	return s.records.Delete(ctx, ownerID, provider)
}

// List returns redacted previews of the owner's stored keys.
func (s *Store) List(ctx context.Context, ownerID string) ([]KeyPreview, error) {
	recs, err := s.records.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("secrets: list: %w", err)
	}
	previews := make([]KeyPreview, 0, len(recs))
	for i := range recs {
		plain, err := s.open(&recs[i])
		preview := ""
		if err == nil && len(plain) > 0 {
			if len(plain) > 8 {
				plain = plain[:8]
			}
			preview = plain + "..."
		}
		previews = append(previews, KeyPreview{
			Provider:  recs[i].Provider,
			Preview:   preview,
			CreatedAt: recs[i].CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return previews, nil
}

func (s *Store) open(rec *domain.APIKey) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(rec.KeyCiphertext)
	if err != nil {
		return "", fmt.Errorf("secrets: decode ciphertext: %w", err)
	}
	ns := s.aead.NonceSize()
	if len(sealed) < ns {
		return "", fmt.Errorf("secrets: ciphertext too short")
	}
	plain, err := s.aead.Open(nil, sealed[:ns], sealed[ns:], []byte(rec.OwnerID))
	if err != nil {
		return "", fmt.Errorf("secrets: decrypt: %w", err)
	}
	return string(plain), nil
}
