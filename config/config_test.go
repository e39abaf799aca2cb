package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-splat/engine/splat"
	"github.com/go-gl/mathgl/mgl32"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"ply_path": "garden.ply",
		"world_up": -1,
		"camera": {"width": 1920, "height": 1080, "focal_x": 1500, "focal_y": 1500, "near_plane": 0.2, "far_plane": 1000},
		"update_camera_wh": false
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PLYPath != "garden.ply" {
		t.Errorf("PLYPath = %q, want %q", cfg.PLYPath, "garden.ply")
	}
	if cfg.WorldUp != -1 {
		t.Errorf("WorldUp = %d, want -1", cfg.WorldUp)
	}
	if cfg.UpdateCameraWH {
		t.Error("UpdateCameraWH = true, want false")
	}
	if cfg.Camera.Width != 1920 || cfg.Camera.FocalX != 1500 {
		t.Errorf("Camera = %+v, want width 1920 and focal 1500", cfg.Camera)
	}
	def := Default()
	if cfg.Eye != def.Eye || cfg.Focus != def.Focus {
		t.Errorf("Eye, Focus = %v, %v, want defaults %v, %v", cfg.Eye, cfg.Focus, def.Eye, def.Focus)
	}
	if cfg.SplatsPerRow != def.SplatsPerRow || !cfg.VSync {
		t.Errorf("SplatsPerRow, VSync = %d, %v, want %d, true", cfg.SplatsPerRow, cfg.VSync, def.SplatsPerRow)
	}
}

func TestHeaderOptionsLegacyLayout(t *testing.T) {
	data := []byte("ply\nformat binary_little_endian 1.0\nelement vertex 1\nproperty float x\n" +
		"element face 1\nproperty int count\nend_header\n")

	cfg, err := Load(writeConfig(t, `{"legacy_layout": true}`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	h, err := splat.ParseHeader(data, cfg.HeaderOptions()...)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	if h.Stride != 8 {
		t.Errorf("legacy Stride = %d, want 8", h.Stride)
	}

	def := Default()
	if h, err = splat.ParseHeader(data, def.HeaderOptions()...); err != nil || h.Stride != 4 {
		t.Errorf("default ParseHeader() stride, error = %v, %v, want 4, nil", h, err)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want os.ErrNotExist", err)
	}
	if _, err := Load(writeConfig(t, `{"workers": "many"}`)); err == nil {
		t.Error("Load(bad json) error = nil")
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		flags Flags
		check func(t *testing.T, c Config)
	}{
		{
			name:  "flags override",
			cfg:   Default(),
			flags: Flags{PLYPath: "a.ply", Workers: 3, Size: 256, LogLevel: "debug", Surfels: true, NoVSync: true},
			check: func(t *testing.T, c Config) {
				if c.PLYPath != "a.ply" || c.Workers != 3 || c.PreviewSize != 256 {
					t.Errorf("Resolve() = %+v", c)
				}
				if !c.ConvertToSurfels || c.VSync {
					t.Errorf("ConvertToSurfels, VSync = %v, %v, want true, false", c.ConvertToSurfels, c.VSync)
				}
				if c.Level() != slog.LevelDebug {
					t.Errorf("Level() = %v, want debug", c.Level())
				}
			},
		},
		{
			name: "repairs invalid values",
			cfg: Config{
				WorldUp: 5,
				Camera:  CameraConfig{Width: -1, NearPlane: 10, FarPlane: 1},
			},
			check: func(t *testing.T, c Config) {
				def := Default()
				if c.WorldUp != 1 {
					t.Errorf("WorldUp = %d, want 1", c.WorldUp)
				}
				if c.Camera.Width != def.Camera.Width || c.Camera.Height != def.Camera.Height {
					t.Errorf("Camera size = %dx%d, want defaults", c.Camera.Width, c.Camera.Height)
				}
				if c.Camera.NearPlane != def.Camera.NearPlane || c.Camera.FarPlane != def.Camera.FarPlane {
					t.Errorf("planes = %v, %v, want defaults", c.Camera.NearPlane, c.Camera.FarPlane)
				}
				if c.SplatsPerRow <= 0 || c.Workers <= 0 || c.MaxHeaderBytes <= 0 || c.Title == "" {
					t.Errorf("Resolve() left zero values: %+v", c)
				}
			},
		},
		{
			name: "negative world up",
			cfg:  Config{WorldUp: -3},
			check: func(t *testing.T, c Config) {
				if c.WorldUp != -1 {
					t.Errorf("WorldUp = %d, want -1", c.WorldUp)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.cfg
			c.Resolve(tt.flags)
			tt.check(t, c)
		})
	}
}

func TestNewCamera(t *testing.T) {
	cfg := Default()
	cfg.WorldUp = -1
	cfg.UpdateCameraWH = false
	cfg.Resolve(Flags{})

	cam := cfg.NewCamera()
	ctrl := cam.Controller()
	if got := ctrl.GlobalUp(); got != (mgl32.Vec3{0, 0, -1}) {
		t.Errorf("GlobalUp() = %v, want [0 0 -1]", got)
	}
	if got := ctrl.Focus(); got != mgl32.Vec3(cfg.Focus) {
		t.Errorf("Focus() = %v, want %v", got, cfg.Focus)
	}
	if cam.SetViewport(1920, 1080) {
		t.Error("SetViewport() changed the projection with resolution tracking disabled")
	}
}

func TestLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for name, want := range tests {
		c := Config{LogLevel: name}
		if got := c.Level(); got != want {
			t.Errorf("Level(%q) = %v, want %v", name, got, want)
		}
	}
}
