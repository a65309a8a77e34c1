package domain

import "time"

// APIKey stores one provider credential for one owner. KeyCiphertext is
// sealed by the secret store before it reaches the repository; plaintext
// never touches the database.
type APIKey struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OwnerID       string    `gorm:"type:text;not null;uniqueIndex:idx_owner_provider" json:"owner_id"`
	Provider      Provider  `gorm:"type:text;not null;uniqueIndex:idx_owner_provider" json:"provider"`
	KeyCiphertext string    `gorm:"type:text;not null" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for APIKey.
func (APIKey) TableName() string {
	return "api_keys"
}
