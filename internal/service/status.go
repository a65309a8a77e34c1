package service

import "github.com/orendrasingh/video-transcription/internal/domain"

// validTransitions encodes the job lifecycle. Every non-terminal state
// may fail; completed and failed accept nothing.
var validTransitions = map[domain.JobStatus][]domain.JobStatus{
	domain.StatusQueued:       {domain.StatusExtracting, domain.StatusFailed},
	domain.StatusExtracting:   {domain.StatusSegmenting, domain.StatusFailed},
	domain.StatusSegmenting:   {domain.StatusTranscribing, domain.StatusFailed},
	domain.StatusTranscribing: {domain.StatusEnhancing, domain.StatusFailed},
	domain.StatusEnhancing:    {domain.StatusCompleted, domain.StatusFailed},
	domain.StatusCompleted:    {},
	domain.StatusFailed:       {},
}

func isValidTransition(from, to domain.JobStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
