// Package encoder writes visualization frames and source audio into a
// video container through FFmpeg.
package encoder

import (
	"errors"
	"fmt"
	"math"
	"os"
	"unsafe"

	ffmpeg "github.com/csnewman/ffmpeg-go"
)

// Config holds the encoder configuration for one output file.
type Config struct {
	OutputPath string
	Width      int
	Height     int
	Framerate  int
	Bitrate    int64
	Codec      Codec
	AudioPath  string // source audio muxed as AAC; empty for video only
}

// Encoder muxes one video stream and optionally one AAC audio stream.
// Frames are written in presentation order; PTS is the frame index.
type Encoder struct {
	config Config

	formatCtx   *ffmpeg.AVFormatContext
	videoStream *ffmpeg.AVStream
	videoCodec  *ffmpeg.AVCodecContext
	videoFrame  *ffmpeg.AVFrame

	audioStream      *ffmpeg.AVStream
	audioCodec       *ffmpeg.AVCodecContext
	audioInputCtx    *ffmpeg.AVFormatContext
	audioDecoder     *ffmpeg.AVCodecContext
	audioStreamIndex int
	audioPacket      *ffmpeg.AVPacket
	audioDecFrame    *ffmpeg.AVFrame
	audioEncFrame    *ffmpeg.AVFrame
	audioFIFO        *AudioFIFO

	nextVideoPts int64
	nextAudioPts int64
	headerDone   bool
}

// Open creates the output file and sets up the video encoder and the
// audio pipeline when an audio path is given.
func Open(config Config) (*Encoder, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrEncodingFailed, config.Width, config.Height)
	}
	if config.Framerate <= 0 {
		return nil, fmt.Errorf("%w: invalid framerate %d", ErrEncodingFailed, config.Framerate)
	}
	if config.OutputPath == "" {
		return nil, fmt.Errorf("%w: output path cannot be empty", ErrEncodingFailed)
	}
	if !config.Codec.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedCodec, config.Codec)
	}

	e := &Encoder{config: config}
	if err := e.initialize(); err != nil {
		e.Abort()
		return nil, fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}
	return e, nil
}

func (e *Encoder) initialize() error {
	outputPath := ffmpeg.ToCStr(e.config.OutputPath)
	defer outputPath.Free()

	ret, err := ffmpeg.AVFormatAllocOutputContext2(&e.formatCtx, nil, nil, outputPath)
	if err != nil {
		return fmt.Errorf("failed to allocate output context: %w", err)
	}
	if ret < 0 {
		return fmt.Errorf("failed to allocate output context: %d", ret)
	}

	encoderName := ffmpeg.ToCStr(e.config.Codec.EncoderName())
	defer encoderName.Free()

	codec := ffmpeg.AVCodecFindEncoderByName(encoderName)
	if codec == nil {
		return fmt.Errorf("encoder %q not found", e.config.Codec.EncoderName())
	}

	e.videoStream = ffmpeg.AVFormatNewStream(e.formatCtx, nil)
	if e.videoStream == nil {
		return fmt.Errorf("failed to create video stream")
	}
	e.videoStream.SetId(0)

	e.videoCodec = ffmpeg.AVCodecAllocContext3(codec)
	if e.videoCodec == nil {
		return fmt.Errorf("failed to allocate codec context")
	}

	e.videoCodec.SetWidth(e.config.Width)
	e.videoCodec.SetHeight(e.config.Height)
	e.videoCodec.SetPixFmt(e.config.Codec.PixelFormat())

	timeBase := ffmpeg.AVMakeQ(1, e.config.Framerate)
	e.videoCodec.SetTimeBase(timeBase)
	e.videoCodec.SetFramerate(ffmpeg.AVMakeQ(e.config.Framerate, 1))
	e.videoCodec.SetGopSize(e.config.Framerate * 2)
	if e.config.Bitrate > 0 {
		e.videoCodec.SetBitRate(e.config.Bitrate)
	}
	if e.config.Codec == CodecProRes4444 {
		// prores_ks profile 4 is the 4444 variant.
		e.videoCodec.SetProfile(4)
	}

	e.videoStream.SetTimeBase(timeBase)

	ret, err = ffmpeg.AVCodecOpen2(e.videoCodec, codec, nil)
	if err != nil || ret < 0 {
		return fmt.Errorf("failed to open video codec (%v, %d)", err, ret)
	}

	ret, err = ffmpeg.AVCodecParametersFromContext(e.videoStream.Codecpar(), e.videoCodec)
	if err != nil || ret < 0 {
		return fmt.Errorf("failed to copy codec parameters (%v, %d)", err, ret)
	}

	if err := e.initializeVideoFrame(); err != nil {
		return err
	}

	var pb *ffmpeg.AVIOContext
	ret, err = ffmpeg.AVIOOpen(&pb, outputPath, ffmpeg.AVIOFlagWrite)
	if err != nil || ret < 0 {
		return fmt.Errorf("failed to open output file (%v, %d)", err, ret)
	}
	e.formatCtx.SetPb(pb)

	if e.config.AudioPath != "" {
		if err := e.initializeAudio(); err != nil {
			return fmt.Errorf("failed to initialize audio: %w", err)
		}
	}

	ret, err = ffmpeg.AVFormatWriteHeader(e.formatCtx, nil)
	if err != nil || ret < 0 {
		return fmt.Errorf("failed to write header (%v, %d)", err, ret)
	}
	e.headerDone = true

	return nil
}

// initializeVideoFrame allocates the encoder-side frame in the codec's
// pixel format. RGBA conversion happens on the CPU as each frame is
// written.
func (e *Encoder) initializeVideoFrame() error {
	e.videoFrame = ffmpeg.AVFrameAlloc()
	if e.videoFrame == nil {
		return fmt.Errorf("failed to allocate video frame")
	}
	e.videoFrame.SetWidth(e.config.Width)
	e.videoFrame.SetHeight(e.config.Height)
	e.videoFrame.SetFormat(int(e.config.Codec.PixelFormat()))

	ret, err := ffmpeg.AVFrameGetBuffer(e.videoFrame, 0)
	if err != nil || ret < 0 {
		return fmt.Errorf("failed to allocate video frame buffer (%v, %d)", err, ret)
	}
	return nil
}

// WriteFrameRGBA converts one RGBA frame to the codec's pixel format and
// encodes it at the next PTS.
func (e *Encoder) WriteFrameRGBA(rgbaData []byte) error {
	expectedSize := e.config.Width * e.config.Height * 4
	if len(rgbaData) != expectedSize {
		return fmt.Errorf("%w: invalid RGBA frame size: got %d, expected %d", ErrEncodingFailed, len(rgbaData), expectedSize)
	}

	if _, err := ffmpeg.AVFrameMakeWritable(e.videoFrame); err != nil {
		return fmt.Errorf("%w: video frame not writable: %v", ErrEncodingFailed, err)
	}
	e.convertFrame(rgbaData)

	e.videoFrame.SetPts(e.nextVideoPts)
	e.nextVideoPts++

	if _, err := ffmpeg.AVCodecSendFrame(e.videoCodec, e.videoFrame); err != nil {
		return fmt.Errorf("%w: send frame: %v", ErrEncodingFailed, err)
	}
	if err := e.drainVideoPackets(); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}
	return nil
}

// convertFrame writes RGBA pixels into the codec's planar layout,
// directly into the encoder frame's buffers.
func (e *Encoder) convertFrame(rgba []byte) {
	w, h := e.config.Width, e.config.Height
	switch e.config.Codec {
	case CodecProRes4444:
		rgbaToYUVA444P10(rgba, w, h, [4]framePlane{
			e.plane(0, h), e.plane(1, h), e.plane(2, h), e.plane(3, h),
		})
	case CodecVP9:
		rgbaToYUVA420(rgba, w, h,
			e.plane(0, h), e.plane(1, h/2), e.plane(2, h/2), e.plane(3, h))
	default:
		rgbaToYUV420(rgba, w, h,
			e.plane(0, h), e.plane(1, h/2), e.plane(2, h/2))
	}
}

// plane wraps one video frame plane as a rows*stride byte slice.
func (e *Encoder) plane(i, rows int) framePlane {
	stride := e.videoFrame.Linesize().Get(uintptr(i))
	data := unsafe.Slice((*byte)(e.videoFrame.Data().Get(uintptr(i))), rows*stride)
	return framePlane{data: data, stride: stride}
}

// receiveDone interprets an AVCodecReceive* result. EAgain and EOF end
// the drain loop; anything else negative is a genuine codec failure.
func receiveDone(ret int, err error) (bool, error) {
	if errors.Is(err, ffmpeg.EAgain) || errors.Is(err, ffmpeg.AVErrorEOF) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if ret < 0 {
		return false, fmt.Errorf("receive failed: %d", ret)
	}
	return false, nil
}

// drainVideoPackets writes all pending encoded video packets.
func (e *Encoder) drainVideoPackets() error {
	for {
		pkt := ffmpeg.AVPacketAlloc()

		ret, err := ffmpeg.AVCodecReceivePacket(e.videoCodec, pkt)
		if done, err := receiveDone(ret, err); done || err != nil {
			ffmpeg.AVPacketFree(&pkt)
			if err != nil {
				return fmt.Errorf("failed to receive packet: %w", err)
			}
			break
		}

		pkt.SetStreamIndex(e.videoStream.Index())
		ffmpeg.AVPacketRescaleTs(pkt, e.videoCodec.TimeBase(), e.videoStream.TimeBase())

		ret, err = ffmpeg.AVInterleavedWriteFrame(e.formatCtx, pkt)
		ffmpeg.AVPacketFree(&pkt)
		if err != nil || ret < 0 {
			return fmt.Errorf("failed to write packet (%v, %d)", err, ret)
		}
	}
	return nil
}

// Close flushes both encoders, writes the trailer, and frees resources.
// On error the partial output file is removed.
func (e *Encoder) Close() error {
	if e.videoCodec != nil {
		ffmpeg.AVCodecSendFrame(e.videoCodec, nil)
		if err := e.drainVideoPackets(); err != nil {
			e.Abort()
			return fmt.Errorf("%w: flush: %v", ErrEncodingFailed, err)
		}
	}

	if e.formatCtx != nil && e.headerDone {
		if _, err := ffmpeg.AVWriteTrailer(e.formatCtx); err != nil {
			e.Abort()
			return fmt.Errorf("%w: trailer: %v", ErrEncodingFailed, err)
		}
	}

	e.free()
	return nil
}

// Abort tears down the encoder and deletes the partial output file. A
// half-written container must never be left looking like a finished
// render.
func (e *Encoder) Abort() {
	e.free()
	if e.config.OutputPath != "" {
		os.Remove(e.config.OutputPath)
	}
}

func (e *Encoder) free() {
	if e.formatCtx != nil && e.formatCtx.Pb() != nil {
		ffmpeg.AVIOClose(e.formatCtx.Pb())
	}

	if e.videoFrame != nil {
		ffmpeg.AVFrameFree(&e.videoFrame)
	}

	if e.videoCodec != nil {
		ffmpeg.AVCodecFreeContext(&e.videoCodec)
	}
	if e.audioCodec != nil {
		ffmpeg.AVCodecFreeContext(&e.audioCodec)
	}
	if e.audioDecoder != nil {
		ffmpeg.AVCodecFreeContext(&e.audioDecoder)
	}
	if e.audioPacket != nil {
		ffmpeg.AVPacketFree(&e.audioPacket)
	}
	if e.audioDecFrame != nil {
		ffmpeg.AVFrameFree(&e.audioDecFrame)
	}
	if e.audioEncFrame != nil {
		ffmpeg.AVFrameFree(&e.audioEncFrame)
	}
	if e.audioInputCtx != nil {
		ffmpeg.AVFormatCloseInput(&e.audioInputCtx)
	}
	if e.formatCtx != nil {
		ffmpeg.AVFormatFreeContext(e.formatCtx)
		e.formatCtx = nil
	}
}

// monoToStereo duplicates a mono channel into stereo, clamping to the
// [-1, 1] sample range.
func monoToStereo(mono []float32) []float32 {
	stereo := make([]float32, len(mono)*2)
	for i, val := range mono {
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			val = 0
		} else if val > 1 {
			val = 1
		} else if val < -1 {
			val = -1
		}
		stereo[i*2] = val
		stereo[i*2+1] = val
	}
	return stereo
}
