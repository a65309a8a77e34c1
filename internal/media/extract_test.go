package media

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orendrasingh/video-transcription/internal/domain"
)

func TestSupportedContainer(t *testing.T) {
	testCases := []struct {
		path string
		want bool
	}{
		{"talk.mp4", true},
		{"TALK.MP4", true},
		{"clip.mov", true},
		{"lecture.mkv", true},
		{"recording.webm", true},
		{"audio.mp3", false},
		{"notes.txt", false},
		{"archive.zip", false},
		{"noextension", false},
	}

	for _, tc := range testCases {
		if got := SupportedContainer(tc.path); got != tc.want {
			t.Errorf("SupportedContainer(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestExtractRejectsUnsupportedContainer(t *testing.T) {
	// Must fail before any ffmpeg invocation, so no binary is needed.
	e := NewExtractor(t.TempDir(), time.Second)
	_, err := e.Extract(context.Background(), "/nowhere/podcast.mp3")
	if !errors.Is(err, domain.ErrUnsupportedMedia) {
		t.Fatalf("err = %v, want ErrUnsupportedMedia", err)
	}
}
