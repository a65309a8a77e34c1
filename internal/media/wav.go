package media

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"
)

// WAVInfo describes the PCM layout of a RIFF/WAVE file. DataOffset and
// DataSize locate the sample data within the file; all chunk spans are
// expressed relative to DataOffset.
type WAVInfo struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	BlockAlign    int
	DataOffset    int64
	DataSize      int64
}

// ByteRate returns the number of PCM bytes per second.
func (i WAVInfo) ByteRate() int {
	return i.SampleRate * i.BlockAlign
}

// Duration returns the total audio duration.
func (i WAVInfo) Duration() time.Duration {
	if i.ByteRate() == 0 {
		return 0
	}
	return time.Duration(float64(i.DataSize) / float64(i.ByteRate()) * float64(time.Second))
}

// ParseWAV reads the RIFF header and chunk list from r and returns the PCM
// layout. Only uncompressed PCM (format tag 1) is accepted, which is what
// the extractor always produces.
func ParseWAV(r io.ReadSeeker) (WAVInfo, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return WAVInfo{}, fmt.Errorf("wav: short header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return WAVInfo{}, fmt.Errorf("wav: not a RIFF/WAVE file")
	}

	var info WAVInfo
	var haveFmt, haveData bool
	offset := int64(12)
	for !(haveFmt && haveData) {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return WAVInfo{}, fmt.Errorf("wav: truncated chunk list: %w", err)
		}
		id := string(hdr[0:4])
		size := int64(binary.LittleEndian.Uint32(hdr[4:8]))
		offset += 8

		switch id {
		case "fmt ":
			var fmtBuf [16]byte
			if size < 16 {
				return WAVInfo{}, fmt.Errorf("wav: fmt chunk too small")
			}
			if _, err := io.ReadFull(r, fmtBuf[:]); err != nil {
				return WAVInfo{}, fmt.Errorf("wav: truncated fmt chunk: %w", err)
			}
			if tag := binary.LittleEndian.Uint16(fmtBuf[0:2]); tag != 1 {
				return WAVInfo{}, fmt.Errorf("wav: unsupported format tag %d", tag)
			}
			info.Channels = int(binary.LittleEndian.Uint16(fmtBuf[2:4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(fmtBuf[4:8]))
			info.BlockAlign = int(binary.LittleEndian.Uint16(fmtBuf[12:14]))
			info.BitsPerSample = int(binary.LittleEndian.Uint16(fmtBuf[14:16]))
			haveFmt = true
			if rest := size - 16; rest > 0 {
				if _, err := r.Seek(rest, io.SeekCurrent); err != nil {
					return WAVInfo{}, err
				}
				offset += rest
			}
			offset += 16
		case "data":
			info.DataOffset = offset
			info.DataSize = size
			haveData = true
			// data may not be the last chunk; skip past it
			if _, err := r.Seek(size, io.SeekCurrent); err != nil {
				return WAVInfo{}, err
			}
			offset += size
		default:
			if _, err := r.Seek(size, io.SeekCurrent); err != nil {
				return WAVInfo{}, err
			}
			offset += size
		}
		// chunks are word-aligned
		if size%2 == 1 {
			if _, err := r.Seek(1, io.SeekCurrent); err != nil {
				return WAVInfo{}, err
			}
			offset++
		}
	}

	if info.BlockAlign <= 0 || info.SampleRate <= 0 {
		return WAVInfo{}, fmt.Errorf("wav: invalid fmt chunk")
	}
	return info, nil
}

// ParseWAVFile parses the header of the WAV file at path.
func ParseWAVFile(path string) (WAVInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return WAVInfo{}, err
	}
	defer f.Close()
	return ParseWAV(f)
}

// EncodeWAVHeader writes a canonical 44-byte PCM WAV header for dataLen
// bytes of sample data described by info.
func EncodeWAVHeader(info WAVInfo, dataLen int) []byte {
	buf := make([]byte, 44)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(info.Channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(info.SampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(info.ByteRate()))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(info.BlockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(info.BitsPerSample))
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))
	return buf
}
