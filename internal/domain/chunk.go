package domain

import "time"

// Chunk is one bounded slice of extracted audio, submitted to a provider
// independently of its neighbors. Offset and Size address the PCM data
// section of the extracted WAV and are always frame-aligned. Chunks exist
// only while a job is between segmenting and enhancing; they are never
// persisted.
type Chunk struct {
	Index      int
	Offset     int64
	Size       int64
	Start      time.Duration
	Duration   time.Duration
	Transcript string
	Attempt    int
}
