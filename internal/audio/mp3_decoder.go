package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// MP3Decoder implements Decoder for MP3 files.
type MP3Decoder struct {
	decoder     *mp3.Decoder
	file        *os.File
	sampleRate  int
	numChannels int
}

// NewMP3Decoder opens an MP3 file for streaming decode.
func NewMP3Decoder(filename string) (*MP3Decoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}

	return &MP3Decoder{
		decoder:    decoder,
		file:       f,
		sampleRate: decoder.SampleRate(),
		// go-mp3 always outputs stereo
		numChannels: 2,
	}, nil
}

// ReadChunk reads the next chunk of mono samples.
func (d *MP3Decoder) ReadChunk(numSamples int) ([]float64, error) {
	// go-mp3 outputs interleaved 16-bit stereo: 4 bytes per time sample.
	buf := make([]byte, numSamples*4)

	n, err := d.decoder.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read MP3 data: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}

	stereoSamples := n / 4
	samples := make([]float64, stereoSamples)
	for i := 0; i < stereoSamples; i++ {
		left := int16(buf[i*4]) | int16(buf[i*4+1])<<8
		right := int16(buf[i*4+2]) | int16(buf[i*4+3])<<8
		samples[i] = (float64(left) + float64(right)) / (2 * 32768.0)
	}

	return samples, nil
}

// SampleRate returns the sample rate in Hz.
func (d *MP3Decoder) SampleRate() int {
	return d.sampleRate
}

// NumChannels returns the source channel count.
func (d *MP3Decoder) NumChannels() int {
	return d.numChannels
}

// Close closes the underlying file.
func (d *MP3Decoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
