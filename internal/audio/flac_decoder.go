package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
)

// FLACDecoder implements Decoder for FLAC files.
type FLACDecoder struct {
	stream      *flac.Stream
	file        *os.File
	sampleRate  int
	numSamples  int64
	numChannels int
	position    int64
}

// NewFLACDecoder opens a FLAC file for streaming decode. Metadata comes
// from FFmpeg, which reports duration more reliably than the StreamInfo
// block for some encoders.
func NewFLACDecoder(filename string) (*FLACDecoder, error) {
	metadata, err := GetMetadata(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio metadata: %w", err)
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}

	return &FLACDecoder{
		stream:      stream,
		file:        f,
		sampleRate:  metadata.SampleRate,
		numSamples:  metadata.NumSamples,
		numChannels: metadata.Channels,
	}, nil
}

// ReadChunk reads the next chunk of mono samples.
func (d *FLACDecoder) ReadChunk(numSamples int) ([]float64, error) {
	if d.position >= d.numSamples {
		return nil, io.EOF
	}
	if d.position+int64(numSamples) > d.numSamples {
		numSamples = int(d.numSamples - d.position)
	}

	samples := make([]float64, 0, numSamples)

	for len(samples) < numSamples {
		frame, err := d.stream.ParseNext()
		if err != nil {
			if err == io.EOF {
				if len(samples) == 0 {
					return nil, io.EOF
				}
				d.position += int64(len(samples))
				return samples, nil
			}
			return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
		}

		frameSamples := len(frame.Subframes[0].Samples)
		maxVal := float64(int64(1) << (frame.BitsPerSample - 1))

		for i := 0; i < frameSamples && len(samples) < numSamples; i++ {
			var sample float64
			if len(frame.Subframes) == 1 {
				sample = float64(frame.Subframes[0].Samples[i])
			} else {
				var sum int64
				for _, subframe := range frame.Subframes {
					sum += int64(subframe.Samples[i])
				}
				sample = float64(sum) / float64(len(frame.Subframes))
			}
			samples = append(samples, sample/maxVal)
		}
	}

	d.position += int64(len(samples))
	return samples, nil
}

// SampleRate returns the sample rate in Hz.
func (d *FLACDecoder) SampleRate() int {
	return d.sampleRate
}

// NumChannels returns the source channel count.
func (d *FLACDecoder) NumChannels() int {
	return d.numChannels
}

// Close closes the stream and the underlying file.
func (d *FLACDecoder) Close() error {
	if d.stream != nil {
		d.stream.Close()
	}
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
