package service

import (
	"testing"

	"github.com/orendrasingh/video-transcription/internal/domain"
)

func TestValidTransitions(t *testing.T) {
	testCases := []struct {
		from domain.JobStatus
		to   domain.JobStatus
		want bool
	}{
		{domain.StatusQueued, domain.StatusExtracting, true},
		{domain.StatusExtracting, domain.StatusSegmenting, true},
		{domain.StatusSegmenting, domain.StatusTranscribing, true},
		{domain.StatusTranscribing, domain.StatusEnhancing, true},
		{domain.StatusEnhancing, domain.StatusCompleted, true},

		{domain.StatusQueued, domain.StatusFailed, true},
		{domain.StatusExtracting, domain.StatusFailed, true},
		{domain.StatusTranscribing, domain.StatusFailed, true},
		{domain.StatusEnhancing, domain.StatusFailed, true},

		// no skipping ahead
		{domain.StatusQueued, domain.StatusTranscribing, false},
		{domain.StatusExtracting, domain.StatusCompleted, false},

		// no going back
		{domain.StatusTranscribing, domain.StatusExtracting, false},
		{domain.StatusEnhancing, domain.StatusQueued, false},

		// terminal states accept nothing
		{domain.StatusCompleted, domain.StatusFailed, false},
		{domain.StatusCompleted, domain.StatusQueued, false},
		{domain.StatusFailed, domain.StatusExtracting, false},

		// self transition is a no-op, used for progress updates
		{domain.StatusTranscribing, domain.StatusTranscribing, true},
	}

	for _, tc := range testCases {
		if got := isValidTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("isValidTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []domain.JobStatus{domain.StatusCompleted, domain.StatusFailed} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []domain.JobStatus{domain.StatusQueued, domain.StatusExtracting, domain.StatusSegmenting, domain.StatusTranscribing, domain.StatusEnhancing} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
