// Package audio decodes audio files to mono PCM and extracts the beat,
// tempo and spectrum features that drive the visualization.
package audio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Sentinel errors for decode and analysis failures. IO errors (missing or
// unreadable files) are returned verbatim from the os layer.
var (
	// ErrUnsupportedFormat is returned for file extensions no decoder
	// handles.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrCorruptFile is returned when a file fails to parse or decode.
	ErrCorruptFile = errors.New("corrupt audio file")
	// ErrAnalysisFailed is returned when the input is too short to
	// analyze.
	ErrAnalysisFailed = errors.New("audio analysis failed")
)

// Decoder reads an audio file as mono float64 samples in [-1, 1].
// Multi-channel sources are downmixed by averaging.
type Decoder interface {
	// ReadChunk reads up to numSamples mono samples. Returns io.EOF
	// when the stream is exhausted.
	ReadChunk(numSamples int) ([]float64, error)

	// SampleRate returns the source sample rate in Hz.
	SampleRate() int

	// NumChannels returns the source channel count before downmix.
	NumChannels() int

	// Close releases decoder resources.
	Close() error
}

// Open picks a decoder by file extension. WAV, MP3 and FLAC use native
// decoders; everything else FFmpeg can read (AAC, M4A, OGG, Opus) goes
// through the FFmpeg decoder.
func Open(path string) (Decoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return NewWAVDecoder(path)
	case ".mp3":
		return NewMP3Decoder(path)
	case ".flac":
		return NewFLACDecoder(path)
	case ".aac", ".m4a", ".mp4", ".ogg", ".opus", ".wma":
		return NewFFmpegDecoder(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// PCM is a fully decoded mono track.
type PCM struct {
	Samples    []float64
	SampleRate int
	// Channels is the source channel count before downmix.
	Channels int
}

// Duration returns the track length in seconds.
func (p *PCM) Duration() float64 {
	if p.SampleRate == 0 {
		return 0
	}
	return float64(len(p.Samples)) / float64(p.SampleRate)
}

const readChunkSize = 8192

// ReadAll decodes an entire file into memory.
func ReadAll(path string) (*PCM, error) {
	dec, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	pcm := &PCM{
		SampleRate: dec.SampleRate(),
		Channels:   dec.NumChannels(),
	}

	for {
		chunk, err := dec.ReadChunk(readChunkSize)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
		}
		if len(chunk) == 0 {
			break
		}
		pcm.Samples = append(pcm.Samples, chunk...)
	}

	return pcm, nil
}
