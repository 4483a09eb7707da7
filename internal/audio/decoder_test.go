package audio

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV writes mono float64 samples as a 16-bit PCM WAV file.
func writeTestWAV(t *testing.T, path string, samples []float64, sampleRate int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test WAV: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, s := range samples {
		buf.Data[i] = int(s * 32767)
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("Failed to write WAV data: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Failed to finalize WAV: %v", err)
	}
}

// TestOpen_WAVRoundTrip writes a sine wave to a WAV file, decodes it back,
// and compares against the original signal.
func TestOpen_WAVRoundTrip(t *testing.T) {
	const sampleRate = 44100

	original := Sine(440, 0.5, 0.25, sampleRate)
	path := filepath.Join(t.TempDir(), "sine.wav")
	writeTestWAV(t, path, original, sampleRate)

	pcm, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if pcm.SampleRate != sampleRate {
		t.Errorf("Sample rate: got %d, want %d", pcm.SampleRate, sampleRate)
	}
	if len(pcm.Samples) != len(original) {
		t.Fatalf("Sample count: got %d, want %d", len(pcm.Samples), len(original))
	}

	// 16-bit quantization bounds the round trip error.
	for i := range original {
		if math.Abs(pcm.Samples[i]-original[i]) > 1.0/16384 {
			t.Errorf("Sample %d: got %.6f, want %.6f", i, pcm.Samples[i], original[i])
			break
		}
	}

	wantDuration := 0.25
	if math.Abs(pcm.Duration()-wantDuration) > 0.01 {
		t.Errorf("Duration: got %.3fs, want %.3fs", pcm.Duration(), wantDuration)
	}
}

// TestOpen_UnknownExtension verifies unsupported extensions are rejected
// with ErrUnsupportedFormat.
func TestOpen_UnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.xyz")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Got %v, want ErrUnsupportedFormat", err)
	}
}

// TestOpen_MissingFile verifies a nonexistent path surfaces the OS error.
func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.wav"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Got %v, want a not-exist error", err)
	}
}

// TestOpen_CorruptWAV verifies garbage bytes with a valid extension fail
// with ErrCorruptFile.
func TestOpen_CorruptWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(path, []byte("RIFFgarbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadAll(path)
	if !errors.Is(err, ErrCorruptFile) {
		t.Errorf("Got %v, want ErrCorruptFile", err)
	}
}

// TestReadChunk_EOF verifies chunked reads drain the file and then return
// io.EOF.
func TestReadChunk_EOF(t *testing.T) {
	const sampleRate = 44100

	original := Sine(440, 0.5, 0.1, sampleRate)
	path := filepath.Join(t.TempDir(), "short.wav")
	writeTestWAV(t, path, original, sampleRate)

	dec, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer dec.Close()

	if dec.SampleRate() != sampleRate {
		t.Errorf("Sample rate: got %d, want %d", dec.SampleRate(), sampleRate)
	}
	if dec.NumChannels() != 1 {
		t.Errorf("Channels: got %d, want 1", dec.NumChannels())
	}

	var total int
	for {
		chunk, err := dec.ReadChunk(1024)
		total += len(chunk)
		if err != nil {
			break
		}
		if len(chunk) == 0 {
			t.Fatal("ReadChunk returned empty chunk without error")
		}
	}

	if total != len(original) {
		t.Errorf("Total samples: got %d, want %d", total, len(original))
	}
}
