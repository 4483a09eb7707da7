package render

import (
	"testing"

	"github.com/phobz/visualizer-go/internal/config"
	"github.com/phobz/visualizer-go/internal/design"
)

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Width = 160
	cfg.Height = 120
	cfg.BarCount = 8
	return &cfg
}

// fullQuad covers the whole frame at full value with no glow skirt.
func fullQuad() []design.Vertex {
	v := func(x, y float32) design.Vertex {
		return design.Vertex{Position: [2]float32{x, y}, Value: 1}
	}
	return []design.Vertex{
		v(-1, 1), v(-1, -1), v(1, 1),
		v(1, 1), v(-1, -1), v(1, -1),
	}
}

func TestRenderFrame_BackgroundFill(t *testing.T) {
	cfg := testConfig()
	cfg.Background = config.Color{R: 1, G: 0, B: 0, A: 1}

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	img := r.RenderFrame(nil)
	defer r.ReleaseFrame(img)

	px := img.Pix[0:4]
	if px[0] != 255 || px[1] != 0 || px[2] != 0 || px[3] != 255 {
		t.Errorf("Background pixel: got %v, want [255 0 0 255]", px)
	}

	// Opposite corner too, the fill covers the whole frame.
	off := (cfg.Height-1)*img.Stride + (cfg.Width-1)*4
	px = img.Pix[off : off+4]
	if px[0] != 255 || px[1] != 0 || px[2] != 0 {
		t.Errorf("Far corner pixel: got %v, want red", px)
	}
}

func TestRenderFrame_DrawsBarColor(t *testing.T) {
	cfg := testConfig()
	cfg.Color = config.Color{R: 0, G: 1, B: 0, A: 1}
	cfg.Background = config.Color{R: 0, G: 0, B: 0, A: 1}

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	img := r.RenderFrame(fullQuad())
	defer r.ReleaseFrame(img)

	// Center of the quad renders the bar color at full value.
	off := (cfg.Height/2)*img.Stride + (cfg.Width/2)*4
	px := img.Pix[off : off+4]
	if px[1] < 200 {
		t.Errorf("Center pixel not bar-colored: %v", px)
	}
	if px[0] > 50 || px[2] > 50 {
		t.Errorf("Center pixel has unexpected channels: %v", px)
	}
}

func TestRenderFrame_ValueControlsBrightness(t *testing.T) {
	cfg := testConfig()
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	quiet := fullQuad()
	for i := range quiet {
		quiet[i].Value = 0.1
	}
	loud := fullQuad()

	center := func(img []byte, stride int) uint8 {
		return img[(cfg.Height/2)*stride+(cfg.Width/2)*4+1]
	}

	imgQuiet := r.RenderFrame(quiet)
	g1 := center(imgQuiet.Pix, imgQuiet.Stride)
	r.ReleaseFrame(imgQuiet)

	imgLoud := r.RenderFrame(loud)
	g2 := center(imgLoud.Pix, imgLoud.Stride)
	r.ReleaseFrame(imgLoud)

	if g1 >= g2 {
		t.Errorf("Quiet bar (%d) should render dimmer than loud bar (%d)", g1, g2)
	}
	if g1 == 0 {
		t.Errorf("Quiet bar should still be visible")
	}
}

func TestRenderFrame_TransparentBackground(t *testing.T) {
	cfg := testConfig()
	cfg.Transparent = true

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Quad covering only the left half of the frame.
	verts := []design.Vertex{
		{Position: [2]float32{-1, 1}, Value: 1},
		{Position: [2]float32{-1, -1}, Value: 1},
		{Position: [2]float32{0, 1}, Value: 1},
		{Position: [2]float32{0, 1}, Value: 1},
		{Position: [2]float32{-1, -1}, Value: 1},
		{Position: [2]float32{0, -1}, Value: 1},
	}

	img := r.RenderFrame(verts)
	defer r.ReleaseFrame(img)

	covered := (cfg.Height/2)*img.Stride + (cfg.Width/4)*4
	if img.Pix[covered+3] == 0 {
		t.Errorf("Covered pixel should have alpha, got 0")
	}

	clear := (cfg.Height/2)*img.Stride + (cfg.Width*3/4)*4
	if img.Pix[clear+3] != 0 {
		t.Errorf("Uncovered pixel alpha: got %d, want 0", img.Pix[clear+3])
	}
}

func TestRenderFrame_GlowSkirtFades(t *testing.T) {
	cfg := testConfig()
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Quad whose local coords reach the glow extent: the outer band draws
	// dimmer than the core.
	e := float32(1.3)
	verts := []design.Vertex{
		{Position: [2]float32{-0.8, 0.8}, Local: [2]float32{-e, -e}, Value: 1},
		{Position: [2]float32{-0.8, -0.8}, Local: [2]float32{-e, e}, Value: 1},
		{Position: [2]float32{0.8, 0.8}, Local: [2]float32{e, -e}, Value: 1},
		{Position: [2]float32{0.8, 0.8}, Local: [2]float32{e, -e}, Value: 1},
		{Position: [2]float32{-0.8, -0.8}, Local: [2]float32{-e, e}, Value: 1},
		{Position: [2]float32{0.8, -0.8}, Local: [2]float32{e, e}, Value: 1},
	}

	img := r.RenderFrame(verts)
	defer r.ReleaseFrame(img)

	core := img.Pix[(cfg.Height/2)*img.Stride+(cfg.Width/2)*4+1]
	// Near the quad edge, local magnitude is past 1 and inside the skirt.
	edgeX := int(float32(cfg.Width) * 0.87)
	skirt := img.Pix[(cfg.Height/2)*img.Stride+edgeX*4+1]

	if core == 0 {
		t.Fatal("Core did not render")
	}
	if skirt >= core {
		t.Errorf("Skirt (%d) should be dimmer than core (%d)", skirt, core)
	}
}

func TestNew_MissingAssets(t *testing.T) {
	cfg := testConfig()
	cfg.BackgroundImage = "/nonexistent/image.png"

	if _, err := New(cfg); err == nil {
		t.Error("Expected error for missing background image")
	}

	cfg = testConfig()
	cfg.Title = "Test"
	cfg.FontPath = "/nonexistent/font.ttf"

	if _, err := New(cfg); err == nil {
		t.Error("Expected error for missing font")
	}
}
