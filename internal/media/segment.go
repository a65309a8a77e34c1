package media

import (
	"fmt"
	"os"
	"time"

	"github.com/orendrasingh/video-transcription/internal/domain"
)

// wavHeaderLen is the canonical PCM header each chunk payload carries.
const wavHeaderLen = 44

// Segment splits the PCM data described by info into ordered chunks, each
// respecting both maxDuration and maxBytes (whichever is tighter; maxBytes
// covers the full chunk payload including its WAV header). Boundaries never
// split a sample frame. A source that fits within both caps yields exactly
// one chunk. Zero-length audio fails with domain.ErrSegmentation.
func Segment(info WAVInfo, maxDuration time.Duration, maxBytes int64) ([]domain.Chunk, error) {
	if info.DataSize <= 0 {
		return nil, fmt.Errorf("%w: source audio is empty", domain.ErrSegmentation)
	}
	if maxBytes <= wavHeaderLen || maxDuration <= 0 {
		return nil, fmt.Errorf("%w: invalid chunk limits", domain.ErrSegmentation)
	}

	limit := maxBytes - wavHeaderLen
	if byDuration := int64(maxDuration.Seconds() * float64(info.ByteRate())); byDuration < limit {
		limit = byDuration
	}
	// align down to a whole sample frame
	limit -= limit % int64(info.BlockAlign)
	if limit < int64(info.BlockAlign) {
		return nil, fmt.Errorf("%w: chunk limit smaller than one sample frame", domain.ErrSegmentation)
	}

	var chunks []domain.Chunk
	for offset := int64(0); offset < info.DataSize; offset += limit {
		size := limit
		if rest := info.DataSize - offset; rest < size {
			size = rest
		}
		chunks = append(chunks, domain.Chunk{
			Index:    len(chunks),
			Offset:   offset,
			Size:     size,
			Start:    bytesToDuration(offset, info),
			Duration: bytesToDuration(size, info),
		})
	}
	return chunks, nil
}

func bytesToDuration(n int64, info WAVInfo) time.Duration {
	return time.Duration(float64(n) / float64(info.ByteRate()) * float64(time.Second))
}

// ReadChunkPayload reads one chunk's sample data from the audio file and
// wraps it in a standalone WAV so a provider can decode it without the
// rest of the stream.
func ReadChunkPayload(f *os.File, info WAVInfo, c domain.Chunk) ([]byte, error) {
	payload := make([]byte, wavHeaderLen+int(c.Size))
	if _, err := f.ReadAt(payload[wavHeaderLen:], info.DataOffset+c.Offset); err != nil {
		return nil, fmt.Errorf("read chunk %d: %w", c.Index, err)
	}
	copy(payload, EncodeWAVHeader(info, int(c.Size)))
	return payload, nil
}
