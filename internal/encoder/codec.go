package encoder

import (
	"errors"
	"fmt"
	"strings"

	ffmpeg "github.com/csnewman/ffmpeg-go"
)

// ErrUnsupportedCodec indicates an unknown codec name or a codec that
// cannot satisfy the requested output, such as alpha with H.264.
var ErrUnsupportedCodec = errors.New("unsupported codec")

// ErrEncodingFailed indicates the encoder could not produce the output
// file. The partial file is removed before this is returned.
var ErrEncodingFailed = errors.New("encoding failed")

// Codec selects the video encoder and container behavior.
type Codec int

const (
	CodecH264 Codec = iota
	CodecProRes4444
	CodecVP9
	numCodecs
)

// Valid reports whether c is a known codec.
func (c Codec) Valid() bool {
	return c >= 0 && c < numCodecs
}

func (c Codec) String() string {
	switch c {
	case CodecH264:
		return "h264"
	case CodecProRes4444:
		return "prores4444"
	case CodecVP9:
		return "vp9"
	}
	return fmt.Sprintf("Codec(%d)", int(c))
}

// EncoderName returns the libav encoder to request.
func (c Codec) EncoderName() string {
	switch c {
	case CodecH264:
		return "libx264"
	case CodecProRes4444:
		return "prores_ks"
	case CodecVP9:
		return "libvpx-vp9"
	}
	return ""
}

// PixelFormat returns the encoder's target pixel format.
func (c Codec) PixelFormat() ffmpeg.AVPixelFormat {
	switch c {
	case CodecH264:
		return ffmpeg.AVPixFmtYuv420P
	case CodecProRes4444:
		return ffmpeg.AVPixFmtYuva444P10Le
	case CodecVP9:
		return ffmpeg.AVPixFmtYuva420P
	}
	return ffmpeg.AVPixFmtYuv420P
}

// SupportsAlpha reports whether the codec can carry an alpha channel.
func (c Codec) SupportsAlpha() bool {
	return c == CodecProRes4444 || c == CodecVP9
}

// Extension returns the output container extension.
func (c Codec) Extension() string {
	switch c {
	case CodecH264:
		return ".mp4"
	case CodecProRes4444:
		return ".mov"
	case CodecVP9:
		return ".webm"
	}
	return ""
}

// ParseCodec resolves a codec name or container alias.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h264", "h.264", "mp4", "x264":
		return CodecH264, nil
	case "prores4444", "prores", "mov":
		return CodecProRes4444, nil
	case "vp9", "webm":
		return CodecVP9, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedCodec, s)
}

// Codecs returns all codecs in display order.
func Codecs() []Codec {
	return []Codec{CodecH264, CodecProRes4444, CodecVP9}
}
