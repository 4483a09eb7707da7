package encoder

import (
	"errors"
	"fmt"
	"unsafe"

	ffmpeg "github.com/csnewman/ffmpeg-go"
)

// AudioFIFO buffers interleaved stereo samples so decoder frame sizes can
// be repacked into the AAC encoder's fixed frame size.
type AudioFIFO struct {
	buffer []float32
}

// NewAudioFIFO creates an empty FIFO.
func NewAudioFIFO() *AudioFIFO {
	return &AudioFIFO{buffer: make([]float32, 0, 4096)}
}

// Push appends samples.
func (f *AudioFIFO) Push(samples []float32) {
	f.buffer = append(f.buffer, samples...)
}

// Pop removes and returns count samples, or nil if fewer are buffered.
func (f *AudioFIFO) Pop(count int) []float32 {
	if len(f.buffer) < count {
		return nil
	}
	result := make([]float32, count)
	copy(result, f.buffer[:count])
	copy(f.buffer, f.buffer[count:])
	f.buffer = f.buffer[:len(f.buffer)-count]
	return result
}

// Available returns the buffered sample count.
func (f *AudioFIFO) Available() int {
	return len(f.buffer)
}

// initializeAudio opens the source audio file for decoding and sets up
// the stereo AAC output stream.
func (e *Encoder) initializeAudio() error {
	audioPath := ffmpeg.ToCStr(e.config.AudioPath)
	defer audioPath.Free()

	ret, err := ffmpeg.AVFormatOpenInput(&e.audioInputCtx, audioPath, nil, nil)
	if err != nil || ret < 0 {
		return fmt.Errorf("failed to open audio input (%v, %d)", err, ret)
	}

	ret, err = ffmpeg.AVFormatFindStreamInfo(e.audioInputCtx, nil)
	if err != nil || ret < 0 {
		return fmt.Errorf("failed to find audio stream info (%v, %d)", err, ret)
	}

	e.audioStreamIndex = -1
	streams := e.audioInputCtx.Streams()
	for i := uintptr(0); i < uintptr(e.audioInputCtx.NbStreams()); i++ {
		if streams.Get(i).Codecpar().CodecType() == ffmpeg.AVMediaTypeAudio {
			e.audioStreamIndex = int(i)
			break
		}
	}
	if e.audioStreamIndex == -1 {
		return fmt.Errorf("no audio stream found in input file")
	}

	inputStream := streams.Get(uintptr(e.audioStreamIndex))

	decoder := ffmpeg.AVCodecFindDecoder(inputStream.Codecpar().CodecId())
	if decoder == nil {
		return fmt.Errorf("audio decoder not found")
	}

	e.audioDecoder = ffmpeg.AVCodecAllocContext3(decoder)
	if e.audioDecoder == nil {
		return fmt.Errorf("failed to allocate audio decoder context")
	}

	ret, err = ffmpeg.AVCodecParametersToContext(e.audioDecoder, inputStream.Codecpar())
	if err != nil || ret < 0 {
		return fmt.Errorf("failed to copy decoder parameters (%v, %d)", err, ret)
	}

	ret, err = ffmpeg.AVCodecOpen2(e.audioDecoder, decoder, nil)
	if err != nil || ret < 0 {
		return fmt.Errorf("failed to open audio decoder (%v, %d)", err, ret)
	}

	channels := e.audioDecoder.Channels()
	if channels != 1 && channels != 2 {
		return fmt.Errorf("unsupported channel count: %d", channels)
	}
	sampleRate := e.audioDecoder.SampleRate()
	if sampleRate < 8000 || sampleRate > 192000 {
		return fmt.Errorf("unsupported sample rate: %dHz", sampleRate)
	}

	audioEncoder := ffmpeg.AVCodecFindEncoder(ffmpeg.AVCodecIdAac)
	if audioEncoder == nil {
		return fmt.Errorf("AAC encoder not found")
	}

	e.audioStream = ffmpeg.AVFormatNewStream(e.formatCtx, nil)
	if e.audioStream == nil {
		return fmt.Errorf("failed to create audio stream")
	}
	e.audioStream.SetId(1)

	e.audioCodec = ffmpeg.AVCodecAllocContext3(audioEncoder)
	if e.audioCodec == nil {
		return fmt.Errorf("failed to allocate audio encoder context")
	}

	// AAC takes planar float stereo. 3 is AV_CH_LAYOUT_STEREO.
	e.audioCodec.SetSampleFmt(ffmpeg.AVSampleFmtFltp)
	e.audioCodec.SetSampleRate(sampleRate)
	e.audioCodec.SetChannelLayout(3)
	e.audioCodec.SetChannels(2)
	e.audioCodec.SetBitRate(192000)
	e.audioStream.SetTimeBase(ffmpeg.AVMakeQ(1, sampleRate))

	ret, err = ffmpeg.AVCodecOpen2(e.audioCodec, audioEncoder, nil)
	if err != nil || ret < 0 {
		return fmt.Errorf("failed to open audio encoder (%v, %d)", err, ret)
	}

	ret, err = ffmpeg.AVCodecParametersFromContext(e.audioStream.Codecpar(), e.audioCodec)
	if err != nil || ret < 0 {
		return fmt.Errorf("failed to copy audio encoder parameters (%v, %d)", err, ret)
	}

	e.audioPacket = ffmpeg.AVPacketAlloc()
	e.audioDecFrame = ffmpeg.AVFrameAlloc()
	e.audioEncFrame = ffmpeg.AVFrameAlloc()
	if e.audioPacket == nil || e.audioDecFrame == nil || e.audioEncFrame == nil {
		return fmt.Errorf("failed to allocate audio frames")
	}

	e.audioFIFO = NewAudioFIFO()

	e.audioEncFrame.SetNbSamples(e.audioCodec.FrameSize())
	e.audioEncFrame.SetFormat(int(ffmpeg.AVSampleFmtFltp))
	e.audioEncFrame.SetChannelLayout(3)
	e.audioEncFrame.SetChannels(2)
	e.audioEncFrame.SetSampleRate(sampleRate)

	ret, err = ffmpeg.AVFrameGetBuffer(e.audioEncFrame, 0)
	if err != nil || ret < 0 {
		return fmt.Errorf("failed to allocate encoder frame buffer (%v, %d)", err, ret)
	}

	return nil
}

// EncodeAudio decodes the entire source audio, downmixes to a clean
// stereo pair, and encodes it as AAC into the output.
func (e *Encoder) EncodeAudio() error {
	if e.audioInputCtx == nil {
		return errors.New("audio not initialized")
	}
	if err := e.encodeAudio(); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}
	return nil
}

func (e *Encoder) encodeAudio() error {
	for {
		ret, err := ffmpeg.AVReadFrame(e.audioInputCtx, e.audioPacket)
		if err != nil {
			if errors.Is(err, ffmpeg.AVErrorEOF) {
				break
			}
			return fmt.Errorf("failed to read audio frame: %w", err)
		}
		if ret < 0 {
			return fmt.Errorf("failed to read audio frame: %d", ret)
		}

		if e.audioPacket.StreamIndex() != e.audioStreamIndex {
			ffmpeg.AVPacketUnref(e.audioPacket)
			continue
		}

		_, err = ffmpeg.AVCodecSendPacket(e.audioDecoder, e.audioPacket)
		ffmpeg.AVPacketUnref(e.audioPacket)
		if err != nil {
			return fmt.Errorf("failed to send audio packet to decoder: %w", err)
		}

		if err := e.drainAudioDecoder(); err != nil {
			return err
		}
	}

	// Flush decoder.
	ffmpeg.AVCodecSendPacket(e.audioDecoder, nil)
	if err := e.drainAudioDecoder(); err != nil {
		return err
	}

	// Pad the tail with silence to fill the last encoder frame.
	if e.audioFIFO.Available() > 0 {
		needed := e.audioCodec.FrameSize() * 2
		partial := e.audioFIFO.Pop(e.audioFIFO.Available())
		padded := make([]float32, needed)
		copy(padded, partial)
		if err := e.encodeAudioFrame(padded); err != nil {
			return err
		}
	}

	// Flush encoder.
	ffmpeg.AVCodecSendFrame(e.audioCodec, nil)
	return e.drainAudioPackets()
}

// drainAudioDecoder pulls decoded frames, downmixes them, and encodes
// every complete FIFO frame.
func (e *Encoder) drainAudioDecoder() error {
	frameSize := e.audioCodec.FrameSize()

	for {
		_, err := ffmpeg.AVCodecReceiveFrame(e.audioDecoder, e.audioDecFrame)
		if err != nil {
			if errors.Is(err, ffmpeg.AVErrorEOF) || errors.Is(err, ffmpeg.EAgain) {
				return nil
			}
			return fmt.Errorf("failed to receive audio frame from decoder: %w", err)
		}

		mono, err := extractFloatsWithDownmix(e.audioDecFrame, e.audioDecoder.Channels())
		if err != nil {
			return fmt.Errorf("failed to extract samples: %w", err)
		}
		e.audioFIFO.Push(monoToStereo(mono))

		for e.audioFIFO.Available() >= frameSize*2 {
			if err := e.encodeAudioFrame(e.audioFIFO.Pop(frameSize * 2)); err != nil {
				return err
			}
		}
	}
}

// encodeAudioFrame writes one stereo sample block to the encoder and
// drains its packets.
func (e *Encoder) encodeAudioFrame(samples []float32) error {
	ffmpeg.AVFrameMakeWritable(e.audioEncFrame)
	if err := writeStereoFloats(e.audioEncFrame, samples); err != nil {
		return err
	}

	e.audioEncFrame.SetPts(e.nextAudioPts)
	e.nextAudioPts += int64(len(samples) / 2)

	if _, err := ffmpeg.AVCodecSendFrame(e.audioCodec, e.audioEncFrame); err != nil {
		return fmt.Errorf("failed to send audio frame to encoder: %w", err)
	}
	return e.drainAudioPackets()
}

// drainAudioPackets writes all pending encoded audio packets.
func (e *Encoder) drainAudioPackets() error {
	for {
		pkt := ffmpeg.AVPacketAlloc()

		ret, err := ffmpeg.AVCodecReceivePacket(e.audioCodec, pkt)
		if done, err := receiveDone(ret, err); done || err != nil {
			ffmpeg.AVPacketFree(&pkt)
			if err != nil {
				return fmt.Errorf("failed to receive audio packet from encoder: %w", err)
			}
			break
		}

		pkt.SetStreamIndex(e.audioStream.Index())
		ffmpeg.AVPacketRescaleTs(pkt, e.audioCodec.TimeBase(), e.audioStream.TimeBase())

		ret, err = ffmpeg.AVInterleavedWriteFrame(e.formatCtx, pkt)
		ffmpeg.AVPacketFree(&pkt)
		if err != nil || ret < 0 {
			return fmt.Errorf("failed to write audio packet (%v, %d)", err, ret)
		}
	}
	return nil
}

func f32At(b []byte, i int) float32 {
	bits := uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
	return *(*float32)(unsafe.Pointer(&bits))
}

func s16AtF32(b []byte, i int) float32 {
	v := int16(b[i*2]) | int16(b[i*2+1])<<8
	return float32(v) / 32768.0
}

func planeBytes(ptr unsafe.Pointer, n int) []byte {
	return unsafe.Slice((*byte)(ptr), n)
}

// extractFloatsWithDownmix reads a decoded frame as mono float32,
// averaging stereo input. Supports S16 and float, packed and planar.
func extractFloatsWithDownmix(frame *ffmpeg.AVFrame, channels int) ([]float32, error) {
	nbSamples := frame.NbSamples()
	format := frame.Format()
	samples := make([]float32, nbSamples)

	// Planar layouts start at AVSampleFmtU8P (5).
	planar := format >= 5

	var at func(b []byte, i int) float32
	var bytesPer int
	switch format {
	case 1, 6: // S16, S16P
		at, bytesPer = s16AtF32, 2
	case 3, 8: // FLT, FLTP
		at, bytesPer = f32At, 4
	default:
		return nil, fmt.Errorf("unsupported sample format: %d", format)
	}

	if planar && channels == 2 {
		leftPtr := frame.Data().Get(0)
		rightPtr := frame.Data().Get(1)
		if leftPtr == nil || rightPtr == nil {
			return nil, fmt.Errorf("missing channel data")
		}
		left := planeBytes(leftPtr, nbSamples*bytesPer)
		right := planeBytes(rightPtr, nbSamples*bytesPer)
		for i := 0; i < nbSamples; i++ {
			samples[i] = (at(left, i) + at(right, i)) / 2
		}
		return samples, nil
	}

	dataPtr := frame.Data().Get(0)
	if dataPtr == nil {
		return nil, fmt.Errorf("no data in first channel")
	}

	if planar || channels == 1 {
		data := planeBytes(dataPtr, nbSamples*bytesPer)
		for i := 0; i < nbSamples; i++ {
			samples[i] = at(data, i)
		}
		return samples, nil
	}

	// Packed stereo: L R L R ...
	data := planeBytes(dataPtr, nbSamples*2*bytesPer)
	for i := 0; i < nbSamples; i++ {
		samples[i] = (at(data, i*2) + at(data, i*2+1)) / 2
	}
	return samples, nil
}

// writeStereoFloats packs interleaved stereo samples into a planar float
// encoder frame.
func writeStereoFloats(frame *ffmpeg.AVFrame, samples []float32) error {
	nbSamples := len(samples) / 2

	leftPtr := frame.Data().Get(0)
	rightPtr := frame.Data().Get(1)
	if leftPtr == nil || rightPtr == nil {
		return fmt.Errorf("frame data pointers not allocated")
	}

	left := planeBytes(leftPtr, nbSamples*4)
	right := planeBytes(rightPtr, nbSamples*4)

	for i := 0; i < nbSamples; i++ {
		l := samples[i*2]
		r := samples[i*2+1]
		copy(left[i*4:(i+1)*4], (*[4]byte)(unsafe.Pointer(&l))[:])
		copy(right[i*4:(i+1)*4], (*[4]byte)(unsafe.Pointer(&r))[:])
	}
	return nil
}
