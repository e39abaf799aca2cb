package preview

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-splat/engine/camera"
	"github.com/Carmen-Shannon/oxy-splat/engine/splat"
	"golang.org/x/image/webp"
)

// The default camera sits at eye looking at focus.
var (
	eye   = [3]float64{6, 0, 0.5}
	focus = [3]float64{0, 0, -1.25}
)

func lerp(a, b [3]float64, t float64) [3]float64 {
	return [3]float64{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t, a[2] + (b[2]-a[2])*t}
}

func record(pos [3]float64, rgb [3]float64, opacity float64) splat.Record {
	return splat.Record{
		Position: pos,
		Rotation: [4]float64{0, 0, 0, 1},
		LogScale: [3]float64{math.Log(0.05), math.Log(0.05), math.Log(0.05)},
		SHDC:     rgb,
		Opacity:  opacity,
	}
}

var (
	red   = [3]float64{10, -10, -10}
	green = [3]float64{-10, 10, -10}
)

func pack(t *testing.T, records ...splat.Record) *splat.PackedBuffer {
	t.Helper()
	var buf bytes.Buffer
	if err := splat.Encode(&buf, records); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	_, packed, err := splat.Decode(buf.Bytes(), nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return packed
}

func TestRenderCenterSplat(t *testing.T) {
	buf := pack(t, record(focus, red, 10))
	img, err := NewRasterizer(WithSize(128, 72)).Render(buf, camera.NewCamera())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(128, 72) {
		t.Fatalf("size = %v, want 128x72", got)
	}
	if got := img.NRGBAAt(64, 36); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("center = %v, want opaque red", got)
	}
	if got := img.NRGBAAt(0, 0); got.A != 0 {
		t.Errorf("corner = %v, want transparent", got)
	}
}

func TestRenderDepthTest(t *testing.T) {
	near := record(lerp(eye, focus, 0.5), green, 10)
	far := record(focus, red, 10)

	orders := map[string][]splat.Record{
		"near first": {near, far},
		"far first":  {far, near},
	}
	for name, records := range orders {
		t.Run(name, func(t *testing.T) {
			img, err := NewRasterizer(WithSize(128, 72)).Render(pack(t, records...), camera.NewCamera())
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got := img.NRGBAAt(64, 36); got != (color.NRGBA{0, 255, 0, 255}) {
				t.Errorf("center = %v, want opaque green", got)
			}
		})
	}
}

func TestRenderSkipsInvisible(t *testing.T) {
	tests := []struct {
		name string
		rec  splat.Record
	}{
		{"below alpha cutoff", record(focus, red, -1)},
		{"behind camera", record(lerp(eye, focus, -1), red, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := NewRasterizer(WithSize(64, 36)).Render(pack(t, tt.rec), camera.NewCamera())
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			for i := 3; i < len(img.Pix); i += 4 {
				if img.Pix[i] != 0 {
					t.Fatalf("pixel %d drawn, want empty frame", i/4)
				}
			}
		})
	}
}

func TestRenderSupersample(t *testing.T) {
	buf := pack(t, record(focus, red, 10))
	img, err := NewRasterizer(WithSize(64, 36), WithSupersample(2), WithMinRadius(3)).Render(buf, camera.NewCamera())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(64, 36) {
		t.Fatalf("size = %v, want 64x36", got)
	}
	c := img.NRGBAAt(32, 18)
	if c.A < 200 || c.R < 200 || c.G > 50 {
		t.Errorf("center = %v, want mostly opaque red", c)
	}
}

func TestRenderErrors(t *testing.T) {
	r := NewRasterizer()
	if _, err := r.Render(nil, camera.NewCamera()); err == nil {
		t.Error("Render(nil) error = nil")
	}
	if _, err := r.Render(&splat.PackedBuffer{}, camera.NewCamera()); err == nil {
		t.Error("Render(empty) error = nil")
	}
}

func TestVisibleSigmas(t *testing.T) {
	tests := []struct {
		alpha float32
		want  float32
	}{
		{0.5, 0},
		{0.25, 0},
		{1, float32(math.Sqrt(2 * math.Ln2))},
	}
	for _, tt := range tests {
		if got := visibleSigmas(tt.alpha, DefaultAlphaCutoff); math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("visibleSigmas(%v) = %v, want %v", tt.alpha, got, tt.want)
		}
	}
}

func TestDownsample(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 4 {
			src.SetNRGBA(x, y, color.NRGBA{0, 0, 255, 255})
		}
	}

	dst := Downsample(src, 4, 4)
	if got := dst.Bounds().Size(); got != image.Pt(4, 4) {
		t.Fatalf("size = %v, want 4x4", got)
	}
	if got := dst.NRGBAAt(0, 2); got != (color.NRGBA{0, 0, 255, 255}) {
		t.Errorf("left = %v, want opaque blue", got)
	}
	if got := dst.NRGBAAt(3, 2); got.A != 0 {
		t.Errorf("right = %v, want transparent", got)
	}
	// Premultiplication keeps the edge from darkening.
	if got := dst.NRGBAAt(1, 2); got.A > 0 && got.B < 250 {
		t.Errorf("edge = %v, want unpremultiplied blue", got)
	}

	if same := Downsample(src, 8, 8); same != src {
		t.Error("Downsample() to the same size returned a copy")
	}
}

func TestWriteWebP(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	img.SetNRGBA(2, 1, color.NRGBA{10, 200, 30, 255})

	path := filepath.Join(t.TempDir(), "frame.webp")
	if err := WriteWebP(path, img); err != nil {
		t.Fatalf("WriteWebP() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(data) < 12 || string(data[:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		t.Fatalf("file header = %q, want RIFF....WEBP", data[:min(12, len(data))])
	}

	decoded, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("webp.Decode() error = %v", err)
	}
	if got := decoded.Bounds().Size(); got != image.Pt(5, 3) {
		t.Errorf("decoded size = %v, want 5x3", got)
	}
	r, g, b, a := decoded.At(2, 1).RGBA()
	if r>>8 != 10 || g>>8 != 200 || b>>8 != 30 || a>>8 != 255 {
		t.Errorf("decoded pixel = (%d %d %d %d), want (10 200 30 255)", r>>8, g>>8, b>>8, a>>8)
	}
}
