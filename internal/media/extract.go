// Package media handles audio extraction from uploaded video containers and
// frame-aligned segmentation of the extracted WAV stream.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/orendrasingh/video-transcription/internal/domain"
)

// supportedContainers is the upload allow-list. Containers are matched by
// extension only; content sniffing is deliberately not done.
var supportedContainers = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
	".m4v":  true,
	".flv":  true,
	".wmv":  true,
	".mpg":  true,
	".mpeg": true,
}

// SupportedContainer reports whether the file's extension is on the
// upload allow-list.
func SupportedContainer(path string) bool {
	return supportedContainers[strings.ToLower(filepath.Ext(path))]
}

// Extractor converts video containers into mono 16 kHz PCM WAV via ffmpeg.
type Extractor struct {
	tmpDir  string
	timeout time.Duration
}

// NewExtractor creates an extractor. An empty tmpDir falls back to the
// system temp directory; timeout bounds one ffmpeg invocation.
func NewExtractor(tmpDir string, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Extractor{tmpDir: tmpDir, timeout: timeout}
}

// Extract converts the video at videoPath into a mono 16 kHz WAV file and
// returns its path. The caller owns deletion of the artifact. Unsupported
// or corrupt input fails with domain.ErrUnsupportedMedia; extraction is
// never retried.
func (e *Extractor) Extract(ctx context.Context, videoPath string) (string, error) {
	if !SupportedContainer(videoPath) {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedMedia, filepath.Ext(videoPath))
	}

	tmpDir := e.tmpDir
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	out := filepath.Join(tmpDir, base+"_audio_16k.wav")

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// ffmpeg -y -i input -vn -ac 1 -ar 16000 -f wav output
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-i", videoPath,
		"-vn",
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		out,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(out)
		if ctx.Err() != nil {
			return "", fmt.Errorf("audio extraction timed out: %w", ctx.Err())
		}
		return "", fmt.Errorf("%w: ffmpeg: %s", domain.ErrUnsupportedMedia, tail(stderr.String(), 300))
	}
	return out, nil
}

// Probe returns the duration of an audio file via ffprobe.
func (e *Extractor) Probe(ctx context.Context, audioPath string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe output %q: %w", strings.TrimSpace(string(out)), err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
