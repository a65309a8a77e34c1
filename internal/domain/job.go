package domain

import "time"

// Provider identifies a speech-to-text back end.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// ParseProvider validates a user-supplied provider name.
func ParseProvider(s string) (Provider, bool) {
	switch Provider(s) {
	case ProviderGemini, ProviderOpenAI:
		return Provider(s), true
	}
	return "", false
}

// JobStatus represents the lifecycle stage of a transcription job.
type JobStatus string

const (
	StatusQueued       JobStatus = "queued"
	StatusExtracting   JobStatus = "extracting"
	StatusSegmenting   JobStatus = "segmenting"
	StatusTranscribing JobStatus = "transcribing"
	StatusEnhancing    JobStatus = "enhancing"
	StatusCompleted    JobStatus = "completed"
	StatusFailed       JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// TranscriptionJob is the durable record of one transcription request.
// The background pipeline that created a job is its only writer until the
// job reaches a terminal status; everything else reads snapshots.
type TranscriptionJob struct {
	ID           string     `gorm:"type:text;primaryKey" json:"id"`
	OwnerID      string     `gorm:"type:text;not null;index" json:"owner_id"`
	Filename     string     `gorm:"type:text;not null" json:"filename"`
	SourcePath   string     `gorm:"type:text" json:"-"`
	Provider     Provider   `gorm:"type:text;not null" json:"provider"`
	Status       JobStatus  `gorm:"type:text;default:queued;index" json:"status"`
	Progress     int        `gorm:"default:0" json:"progress"`
	Message      string     `gorm:"type:text" json:"message,omitempty"`
	ResultText   string     `gorm:"type:text" json:"result_text,omitempty"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	ArchiveKey   string     `gorm:"type:text" json:"archive_key,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// TableName returns the database table name for TranscriptionJob.
func (TranscriptionJob) TableName() string {
	return "transcription_jobs"
}
