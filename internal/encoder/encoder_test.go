package encoder

import (
	"errors"
	"testing"
)

func TestParseCodec(t *testing.T) {
	tests := []struct {
		input   string
		want    Codec
		wantErr bool
	}{
		{"h264", CodecH264, false},
		{"H264", CodecH264, false},
		{"h.264", CodecH264, false},
		{"mp4", CodecH264, false},
		{"x264", CodecH264, false},
		{"prores4444", CodecProRes4444, false},
		{"prores", CodecProRes4444, false},
		{"mov", CodecProRes4444, false},
		{"vp9", CodecVP9, false},
		{"webm", CodecVP9, false},
		{" vp9 ", CodecVP9, false},
		{"av1", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCodec(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedCodec) {
					t.Errorf("ParseCodec(%q): got err %v, want ErrUnsupportedCodec", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCodec(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseCodec(%q): got %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCodecProperties(t *testing.T) {
	tests := []struct {
		codec   Codec
		name    string
		encoder string
		ext     string
		alpha   bool
	}{
		{CodecH264, "h264", "libx264", ".mp4", false},
		{CodecProRes4444, "prores4444", "prores_ks", ".mov", true},
		{CodecVP9, "vp9", "libvpx-vp9", ".webm", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.codec.Valid() {
				t.Error("Codec should be valid")
			}
			if tt.codec.String() != tt.name {
				t.Errorf("String: got %q, want %q", tt.codec.String(), tt.name)
			}
			if tt.codec.EncoderName() != tt.encoder {
				t.Errorf("EncoderName: got %q, want %q", tt.codec.EncoderName(), tt.encoder)
			}
			if tt.codec.Extension() != tt.ext {
				t.Errorf("Extension: got %q, want %q", tt.codec.Extension(), tt.ext)
			}
			if tt.codec.SupportsAlpha() != tt.alpha {
				t.Errorf("SupportsAlpha: got %v, want %v", tt.codec.SupportsAlpha(), tt.alpha)
			}
		})
	}

	if Codec(99).Valid() {
		t.Error("Out-of-range codec should not be valid")
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"zero width", Config{OutputPath: "out.mp4", Width: 0, Height: 720, Framerate: 30, Codec: CodecH264}},
		{"zero framerate", Config{OutputPath: "out.mp4", Width: 1280, Height: 720, Framerate: 0, Codec: CodecH264}},
		{"empty path", Config{Width: 1280, Height: 720, Framerate: 30, Codec: CodecH264}},
		{"bad codec", Config{OutputPath: "out.mp4", Width: 1280, Height: 720, Framerate: 30, Codec: Codec(42)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(tt.config); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestAudioFIFO(t *testing.T) {
	fifo := NewAudioFIFO()

	if fifo.Available() != 0 {
		t.Errorf("New FIFO should be empty, got %d", fifo.Available())
	}
	if got := fifo.Pop(1); got != nil {
		t.Errorf("Pop from empty FIFO: got %v, want nil", got)
	}

	fifo.Push([]float32{1, 2, 3, 4, 5})
	if fifo.Available() != 5 {
		t.Errorf("Available: got %d, want 5", fifo.Available())
	}

	got := fifo.Pop(3)
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("Pop(3): got %v, want [1 2 3]", got)
	}
	if fifo.Available() != 2 {
		t.Errorf("Available after pop: got %d, want 2", fifo.Available())
	}

	if got := fifo.Pop(3); got != nil {
		t.Errorf("Pop beyond available: got %v, want nil", got)
	}

	fifo.Push([]float32{6})
	got = fifo.Pop(3)
	if len(got) != 3 || got[0] != 4 || got[1] != 5 || got[2] != 6 {
		t.Errorf("Pop across pushes: got %v, want [4 5 6]", got)
	}
}

func TestMonoToStereo(t *testing.T) {
	stereo := monoToStereo([]float32{0.5, -0.25, 2.0, -3.0})

	if len(stereo) != 8 {
		t.Fatalf("Length: got %d, want 8", len(stereo))
	}
	for i := 0; i < 4; i++ {
		if stereo[i*2] != stereo[i*2+1] {
			t.Errorf("Channel mismatch at sample %d: %f != %f", i, stereo[i*2], stereo[i*2+1])
		}
	}
	if stereo[0] != 0.5 || stereo[2] != -0.25 {
		t.Errorf("In-range samples altered: %v", stereo[:4])
	}
	if stereo[4] != 1 {
		t.Errorf("Over-range sample should clamp to 1, got %f", stereo[4])
	}
	if stereo[6] != -1 {
		t.Errorf("Under-range sample should clamp to -1, got %f", stereo[6])
	}
}
