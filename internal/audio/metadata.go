package audio

import (
	"fmt"

	ffmpeg "github.com/csnewman/ffmpeg-go"
)

// Metadata describes an audio file without decoding it.
type Metadata struct {
	SampleRate int
	Channels   int
	NumSamples int64
	Duration   float64 // seconds
}

// GetMetadata probes an audio file with FFmpeg and reports its stream
// parameters. The FLAC decoder uses this when the STREAMINFO block omits
// the total sample count.
func GetMetadata(filename string) (*Metadata, error) {
	var inputCtx *ffmpeg.AVFormatContext
	audioPath := ffmpeg.ToCStr(filename)
	defer audioPath.Free()

	ret, err := ffmpeg.AVFormatOpenInput(&inputCtx, audioPath, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	if ret < 0 {
		return nil, fmt.Errorf("%w: open returned %d", ErrCorruptFile, ret)
	}
	defer ffmpeg.AVFormatCloseInput(&inputCtx)

	ret, err = ffmpeg.AVFormatFindStreamInfo(inputCtx, nil)
	if err != nil || ret < 0 {
		return nil, fmt.Errorf("%w: no stream info (%v, %d)", ErrCorruptFile, err, ret)
	}

	audioStreamIdx := -1
	streams := inputCtx.Streams()
	for i := uintptr(0); i < uintptr(inputCtx.NbStreams()); i++ {
		if streams.Get(i).Codecpar().CodecType() == ffmpeg.AVMediaTypeAudio {
			audioStreamIdx = int(i)
			break
		}
	}
	if audioStreamIdx == -1 {
		return nil, fmt.Errorf("%w: no audio stream found", ErrCorruptFile)
	}

	audioStream := streams.Get(uintptr(audioStreamIdx))
	codecpar := audioStream.Codecpar()

	sampleRate := int(codecpar.SampleRate())
	channels := int(codecpar.Channels())

	// Duration is in stream time_base units.
	duration := float64(audioStream.Duration()) * float64(audioStream.TimeBase().Num()) / float64(audioStream.TimeBase().Den())
	numSamples := int64(duration * float64(sampleRate))

	return &Metadata{
		SampleRate: sampleRate,
		Channels:   channels,
		NumSamples: numSamples,
		Duration:   duration,
	}, nil
}
