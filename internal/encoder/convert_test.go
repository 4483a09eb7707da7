package encoder

import (
	"testing"

	ffmpeg "github.com/csnewman/ffmpeg-go"
)

func newPlane(stride, rows int) framePlane {
	data := make([]byte, stride*rows)
	for i := range data {
		data[i] = 0xAA
	}
	return framePlane{data: data, stride: stride}
}

// solidRGBA builds a width*height frame of one color.
func solidRGBA(width, height int, r, g, b, a byte) []byte {
	rgba := make([]byte, width*height*4)
	for i := 0; i < len(rgba); i += 4 {
		rgba[i] = r
		rgba[i+1] = g
		rgba[i+2] = b
		rgba[i+3] = a
	}
	return rgba
}

func TestRGBAToYUV420_Colors(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b byte
		wantY   int
		wantU   int
		wantV   int
	}{
		{"white", 255, 255, 255, 255, 128, 128},
		{"black", 0, 0, 0, 0, 128, 128},
		{"red", 255, 0, 0, 76, 84, 255},
		{"green", 0, 255, 0, 149, 44, 21},
		{"blue", 0, 0, 255, 29, 255, 107},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const w, h = 4, 4
			yp, up, vp := newPlane(w, h), newPlane(w/2, h/2), newPlane(w/2, h/2)

			rgbaToYUV420(solidRGBA(w, h, tt.r, tt.g, tt.b, 255), w, h, yp, up, vp)

			gotY, gotU, gotV := int(yp.data[0]), int(up.data[0]), int(vp.data[0])
			t.Logf("%s: Y=%d U=%d V=%d", tt.name, gotY, gotU, gotV)
			if abs(gotY-tt.wantY) > 1 || abs(gotU-tt.wantU) > 1 || abs(gotV-tt.wantV) > 1 {
				t.Errorf("Got Y=%d U=%d V=%d, want Y=%d U=%d V=%d",
					gotY, gotU, gotV, tt.wantY, tt.wantU, tt.wantV)
			}
		})
	}
}

func TestRGBAToYUV420_ChromaSubsampling(t *testing.T) {
	// 4x4 frame, left half red and right half blue: each chroma sample
	// takes the top-left pixel of its 2x2 block.
	const w, h = 4, 4
	rgba := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			if x < 2 {
				rgba[i] = 255 // red
			} else {
				rgba[i+2] = 255 // blue
			}
			rgba[i+3] = 255
		}
	}

	yp, up, vp := newPlane(w, h), newPlane(w/2, h/2), newPlane(w/2, h/2)
	rgbaToYUV420(rgba, w, h, yp, up, vp)

	// Red chroma: V high. Blue chroma: U high.
	if vp.data[0] < 200 {
		t.Errorf("Left block V = %d, want red chroma (>200)", vp.data[0])
	}
	if up.data[1] < 200 {
		t.Errorf("Right block U = %d, want blue chroma (>200)", up.data[1])
	}
	if up.data[0] > 100 || vp.data[1] > 128 {
		t.Errorf("Chroma blocks bleed: U[0]=%d V[1]=%d", up.data[0], vp.data[1])
	}
}

func TestRGBAToYUV420_RespectsStride(t *testing.T) {
	// Strides wider than the image: padding bytes must stay untouched.
	const w, h, pad = 2, 2, 6
	yp, up, vp := newPlane(w+pad, h), newPlane(w/2+pad, h/2), newPlane(w/2+pad, h/2)

	rgbaToYUV420(solidRGBA(w, h, 255, 255, 255, 255), w, h, yp, up, vp)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if yp.data[y*yp.stride+x] != 255 {
				t.Errorf("Y[%d][%d] = %d, want 255", y, x, yp.data[y*yp.stride+x])
			}
		}
		if yp.data[y*yp.stride+w] != 0xAA {
			t.Errorf("Row %d padding overwritten: %#x", y, yp.data[y*yp.stride+w])
		}
	}
	if up.data[1] != 0xAA || vp.data[1] != 0xAA {
		t.Errorf("Chroma padding overwritten: U=%#x V=%#x", up.data[1], vp.data[1])
	}
}

func TestRGBAToYUVA420_AlphaPlane(t *testing.T) {
	const w, h = 2, 2
	rgba := solidRGBA(w, h, 0, 255, 136, 255)
	rgba[3] = 0   // top-left transparent
	rgba[7] = 128 // top-right half

	yp, up, vp := newPlane(w, h), newPlane(w/2, h/2), newPlane(w/2, h/2)
	ap := newPlane(w, h)
	rgbaToYUVA420(rgba, w, h, yp, up, vp, ap)

	want := []byte{0, 128, 255, 255}
	for i, a := range want {
		if ap.data[(i/w)*ap.stride+i%w] != a {
			t.Errorf("Alpha[%d] = %d, want %d", i, ap.data[(i/w)*ap.stride+i%w], a)
		}
	}
	if yp.data[0] == 0xAA {
		t.Error("Y plane not written")
	}
}

func TestRGBAToYUVA444P10_Range(t *testing.T) {
	const w, h = 2, 2
	var planes [4]framePlane
	for i := range planes {
		planes[i] = newPlane(w*2, h)
	}

	rgbaToYUVA444P10(solidRGBA(w, h, 255, 255, 255, 255), w, h, planes)

	// White: Y and A at the 10-bit maximum, chroma at mid-scale 512,
	// all little-endian.
	y10 := uint16(planes[0].data[0]) | uint16(planes[0].data[1])<<8
	u10 := uint16(planes[1].data[0]) | uint16(planes[1].data[1])<<8
	a10 := uint16(planes[3].data[0]) | uint16(planes[3].data[1])<<8
	t.Logf("White: Y=%d U=%d A=%d", y10, u10, a10)

	if y10 != 1023 || a10 != 1023 {
		t.Errorf("Y=%d A=%d, want 1023 for white", y10, a10)
	}
	if u10 < 510 || u10 > 516 {
		t.Errorf("U=%d, want mid-scale chroma (~512)", u10)
	}
	// Every pixel of every plane written, no sentinel bytes left.
	for p, plane := range planes {
		for i := 0; i < w*h*2; i++ {
			row, col := i/(w*2), i%(w*2)
			if plane.data[row*plane.stride+col] == 0xAA {
				t.Fatalf("Plane %d byte %d not written", p, i)
			}
		}
	}
}

func TestWiden10(t *testing.T) {
	tests := []struct {
		in   uint8
		want uint16
	}{
		{0, 0},
		{255, 1023},
		{128, 514},
	}
	for _, tt := range tests {
		if got := widen10(tt.in); got != tt.want {
			t.Errorf("widen10(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestReceiveDone(t *testing.T) {
	codecErr := ffmpeg.AVError{Code: -22}

	tests := []struct {
		name     string
		ret      int
		err      error
		wantDone bool
		wantErr  bool
	}{
		{"success", 0, nil, false, false},
		{"eagain ends drain", 0, ffmpeg.EAgain, true, false},
		{"eof ends drain", 0, ffmpeg.AVErrorEOF, true, false},
		{"codec error surfaces", -22, codecErr, false, true},
		{"negative return surfaces", -1, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done, err := receiveDone(tt.ret, tt.err)
			if done != tt.wantDone {
				t.Errorf("done = %v, want %v", done, tt.wantDone)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
