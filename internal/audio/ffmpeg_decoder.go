package audio

import (
	"errors"
	"fmt"
	"io"
	"unsafe"

	ffmpeg "github.com/csnewman/ffmpeg-go"
)

// Sample format values from AVSampleFormat. Planar layouts start at the
// planar16 value.
const (
	sampleFmtS16  = 1
	sampleFmtS32  = 2
	sampleFmtFlt  = 3
	sampleFmtS16P = 6
	sampleFmtS32P = 7
	sampleFmtFltP = 8
)

// FFmpegDecoder implements Decoder through libavformat/libavcodec and
// handles every format FFmpeg can read. It backs the AAC/M4A/OGG path.
type FFmpegDecoder struct {
	formatCtx   *ffmpeg.AVFormatContext
	codecCtx    *ffmpeg.AVCodecContext
	streamIndex int
	packet      *ffmpeg.AVPacket
	frame       *ffmpeg.AVFrame
	sampleRate  int
	channels    int

	// Leftover samples from the previous decode call.
	sampleBuffer []float64
}

// NewFFmpegDecoder opens an audio file with FFmpeg.
func NewFFmpegDecoder(filename string) (*FFmpegDecoder, error) {
	d := &FFmpegDecoder{
		sampleBuffer: make([]float64, 0, 8192),
	}

	path := ffmpeg.ToCStr(filename)
	defer path.Free()

	ret, err := ffmpeg.AVFormatOpenInput(&d.formatCtx, path, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	if ret < 0 {
		return nil, fmt.Errorf("%w: open returned %d", ErrCorruptFile, ret)
	}

	ret, err = ffmpeg.AVFormatFindStreamInfo(d.formatCtx, nil)
	if err != nil || ret < 0 {
		d.Close()
		return nil, fmt.Errorf("%w: no stream info (%v, %d)", ErrCorruptFile, err, ret)
	}

	d.streamIndex = -1
	streams := d.formatCtx.Streams()
	for i := uintptr(0); i < uintptr(d.formatCtx.NbStreams()); i++ {
		if streams.Get(i).Codecpar().CodecType() == ffmpeg.AVMediaTypeAudio {
			d.streamIndex = int(i)
			break
		}
	}
	if d.streamIndex == -1 {
		d.Close()
		return nil, fmt.Errorf("%w: no audio stream found", ErrCorruptFile)
	}

	audioStream := streams.Get(uintptr(d.streamIndex))

	decoder := ffmpeg.AVCodecFindDecoder(audioStream.Codecpar().CodecId())
	if decoder == nil {
		d.Close()
		return nil, fmt.Errorf("%w: no decoder for codec ID %d", ErrUnsupportedFormat, audioStream.Codecpar().CodecId())
	}

	d.codecCtx = ffmpeg.AVCodecAllocContext3(decoder)
	if d.codecCtx == nil {
		d.Close()
		return nil, fmt.Errorf("failed to allocate codec context")
	}

	ret, err = ffmpeg.AVCodecParametersToContext(d.codecCtx, audioStream.Codecpar())
	if err != nil || ret < 0 {
		d.Close()
		return nil, fmt.Errorf("failed to copy codec parameters (%v, %d)", err, ret)
	}

	ret, err = ffmpeg.AVCodecOpen2(d.codecCtx, decoder, nil)
	if err != nil || ret < 0 {
		d.Close()
		return nil, fmt.Errorf("failed to open codec (%v, %d)", err, ret)
	}

	d.sampleRate = d.codecCtx.SampleRate()
	d.channels = d.codecCtx.ChLayout().NbChannels()

	switch int32(d.codecCtx.SampleFmt()) {
	case sampleFmtS16, sampleFmtS32, sampleFmtFlt, sampleFmtS16P, sampleFmtS32P, sampleFmtFltP:
	default:
		d.Close()
		return nil, fmt.Errorf("%w: sample format %d", ErrUnsupportedFormat, d.codecCtx.SampleFmt())
	}

	d.packet = ffmpeg.AVPacketAlloc()
	d.frame = ffmpeg.AVFrameAlloc()
	if d.packet == nil || d.frame == nil {
		d.Close()
		return nil, fmt.Errorf("failed to allocate packet or frame")
	}

	return d, nil
}

// ReadChunk reads the next chunk of mono samples. Multi-channel input is
// downmixed by averaging. Returns io.EOF at end of stream.
func (d *FFmpegDecoder) ReadChunk(numSamples int) ([]float64, error) {
	for len(d.sampleBuffer) < numSamples {
		ret, err := ffmpeg.AVReadFrame(d.formatCtx, d.packet)
		if err != nil {
			if errors.Is(err, ffmpeg.AVErrorEOF) {
				if len(d.sampleBuffer) > 0 {
					result := make([]float64, len(d.sampleBuffer))
					copy(result, d.sampleBuffer)
					d.sampleBuffer = d.sampleBuffer[:0]
					return result, nil
				}
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read packet: %w", err)
		}
		if ret < 0 {
			return nil, fmt.Errorf("failed to read packet: error code %d", ret)
		}

		if d.packet.StreamIndex() != d.streamIndex {
			ffmpeg.AVPacketUnref(d.packet)
			continue
		}

		_, err = ffmpeg.AVCodecSendPacket(d.codecCtx, d.packet)
		ffmpeg.AVPacketUnref(d.packet)
		if err != nil {
			return nil, fmt.Errorf("failed to send packet to decoder: %w", err)
		}

		for {
			_, err = ffmpeg.AVCodecReceiveFrame(d.codecCtx, d.frame)
			if err != nil {
				if errors.Is(err, ffmpeg.AVErrorEOF) || errors.Is(err, ffmpeg.EAgain) {
					break
				}
				return nil, fmt.Errorf("failed to receive frame: %w", err)
			}

			samples, err := d.extractSamples()
			if err != nil {
				return nil, fmt.Errorf("failed to extract samples: %w", err)
			}
			d.sampleBuffer = append(d.sampleBuffer, samples...)

			ffmpeg.AVFrameUnref(d.frame)
		}
	}

	result := make([]float64, numSamples)
	copy(result, d.sampleBuffer[:numSamples])
	d.sampleBuffer = d.sampleBuffer[numSamples:]
	return result, nil
}

// frameBytes exposes one data plane of the current frame as a byte slice.
func frameBytes(ptr unsafe.Pointer, n int) []byte {
	return unsafe.Slice((*byte)(ptr), n)
}

func s16At(b []byte, i int) float64 {
	v := int16(b[i*2]) | int16(b[i*2+1])<<8
	return float64(v) / 32768.0
}

func s32At(b []byte, i int) float64 {
	v := int32(b[i*4]) | int32(b[i*4+1])<<8 | int32(b[i*4+2])<<16 | int32(b[i*4+3])<<24
	return float64(v) / 2147483648.0
}

func fltAt(b []byte, i int) float64 {
	bits := uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
	return float64(*(*float32)(unsafe.Pointer(&bits)))
}

// extractSamples converts the current frame to mono float64.
func (d *FFmpegDecoder) extractSamples() ([]float64, error) {
	nbSamples := d.frame.NbSamples()
	format := d.frame.Format()
	channels := d.channels

	samples := make([]float64, nbSamples)
	planar := format >= sampleFmtS16P

	var sampleAt func(b []byte, i int) float64
	var bytesPer int
	switch format {
	case sampleFmtS16, sampleFmtS16P:
		sampleAt, bytesPer = s16At, 2
	case sampleFmtS32, sampleFmtS32P:
		sampleAt, bytesPer = s32At, 4
	case sampleFmtFlt, sampleFmtFltP:
		sampleAt, bytesPer = fltAt, 4
	default:
		return nil, fmt.Errorf("unsupported sample format: %d", format)
	}

	if planar {
		// One buffer per channel.
		planes := make([][]byte, channels)
		for ch := 0; ch < channels; ch++ {
			ptr := d.frame.Data().Get(uintptr(ch))
			if ptr == nil {
				return nil, fmt.Errorf("missing data for channel %d", ch)
			}
			planes[ch] = frameBytes(ptr, nbSamples*bytesPer)
		}
		for i := 0; i < nbSamples; i++ {
			var sum float64
			for ch := 0; ch < channels; ch++ {
				sum += sampleAt(planes[ch], i)
			}
			samples[i] = sum / float64(channels)
		}
		return samples, nil
	}

	// Interleaved: one buffer, channels side by side.
	ptr := d.frame.Data().Get(0)
	if ptr == nil {
		return nil, fmt.Errorf("no data in frame")
	}
	data := frameBytes(ptr, nbSamples*channels*bytesPer)
	for i := 0; i < nbSamples; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += sampleAt(data, i*channels+ch)
		}
		samples[i] = sum / float64(channels)
	}
	return samples, nil
}

// SampleRate returns the sample rate in Hz.
func (d *FFmpegDecoder) SampleRate() int {
	return d.sampleRate
}

// NumChannels returns the source channel count.
func (d *FFmpegDecoder) NumChannels() int {
	return d.channels
}

// Close releases all FFmpeg resources.
func (d *FFmpegDecoder) Close() error {
	if d.frame != nil {
		ffmpeg.AVFrameFree(&d.frame)
	}
	if d.packet != nil {
		ffmpeg.AVPacketFree(&d.packet)
	}
	if d.codecCtx != nil {
		ffmpeg.AVCodecFreeContext(&d.codecCtx)
	}
	if d.formatCtx != nil {
		ffmpeg.AVFormatCloseInput(&d.formatCtx)
	}
	return nil
}
