package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/Carmen-Shannon/oxy-splat/engine/camera"
	"github.com/Carmen-Shannon/oxy-splat/engine/splat"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraConfig holds the pinhole intrinsics in pixel units.
type CameraConfig struct {
	Width                 int     `json:"width"`
	Height                int     `json:"height"`
	FocalX                float32 `json:"focal_x"`
	FocalY                float32 `json:"focal_y"`
	PrincipalPointOffsetX float32 `json:"principal_point_offset_x"` // positive value -> right
	PrincipalPointOffsetY float32 `json:"principal_point_offset_y"` // positive value -> up
	NearPlane             float32 `json:"near_plane"`
	FarPlane              float32 `json:"far_plane"`
}

// Config holds all viewer settings.
type Config struct {
	// Scene
	PLYPath          string `json:"ply_path"`
	WorldUp          int    `json:"world_up"` // 1 or -1 depending on the scene
	ConvertToSurfels bool   `json:"convert_to_surfels"`
	LenientHeader    bool   `json:"lenient_header"`
	LegacyLayout     bool   `json:"legacy_layout"` // every element's properties add to the stride
	MaxHeaderBytes   int    `json:"max_header_bytes"`

	// Camera
	UpdateCameraWH bool         `json:"update_camera_wh"` // resolution follows the window
	Camera         CameraConfig `json:"camera"`
	Eye            [3]float32   `json:"eye"`
	Focus          [3]float32   `json:"focus"`

	// Packing
	SplatsPerRow int `json:"splats_per_row"`
	Workers      int `json:"workers"`

	// Window
	Title     string `json:"title"`
	VSync     bool   `json:"vsync"`
	Profiling bool   `json:"profiling"`
	LogLevel  string `json:"log_level"`

	// Preview settings
	PreviewSize int `json:"preview_size"`
	Supersample int `json:"supersample"`
}

// Default returns the settings of the reference viewer: a 1280x720 camera with a 1280 pixel
// focal length at (6, 0, 0.5) looking at (0, 0, -1.25) with +Z up.
func Default() Config {
	in := camera.DefaultIntrinsics()
	return Config{
		WorldUp:        1,
		MaxHeaderBytes: splat.DefaultMaxHeaderSize,
		UpdateCameraWH: true,
		Camera: CameraConfig{
			Width:     in.Width,
			Height:    in.Height,
			FocalX:    in.FocalX,
			FocalY:    in.FocalY,
			NearPlane: in.Near,
			FarPlane:  in.Far,
		},
		Eye:          [3]float32{6, 0, 0.5},
		Focus:        [3]float32{0, 0, -1.25},
		SplatsPerRow: splat.DefaultSplatsPerRow,
		Workers:      runtime.NumCPU(),
		Title:        "oxy-splat",
		VSync:        true,
		LogLevel:     "info",
		PreviewSize:  512,
		Supersample:  2,
	}
}

// Load reads a JSON config file over Default.
// Fields not set in the file keep their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	PLYPath  string
	Workers  int
	Size     int
	LogLevel string
	Surfels  bool
	Lenient  bool
	NoVSync  bool
	Profile  bool
}

// Resolve applies CLI overrides and repairs out of range values.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.PLYPath != "" {
		c.PLYPath = flags.PLYPath
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Size > 0 {
		c.PreviewSize = flags.Size
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	c.ConvertToSurfels = c.ConvertToSurfels || flags.Surfels
	c.LenientHeader = c.LenientHeader || flags.Lenient
	c.Profiling = c.Profiling || flags.Profile
	if flags.NoVSync {
		c.VSync = false
	}

	def := Default()
	if c.WorldUp >= 0 {
		c.WorldUp = 1
	} else {
		c.WorldUp = -1
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		c.Camera.Width, c.Camera.Height = def.Camera.Width, def.Camera.Height
	}
	if c.Camera.FocalX <= 0 {
		c.Camera.FocalX = def.Camera.FocalX
	}
	if c.Camera.FocalY <= 0 {
		c.Camera.FocalY = def.Camera.FocalY
	}
	if c.Camera.NearPlane <= 0 || c.Camera.FarPlane <= c.Camera.NearPlane {
		c.Camera.NearPlane, c.Camera.FarPlane = def.Camera.NearPlane, def.Camera.FarPlane
	}
	if c.MaxHeaderBytes <= 0 {
		c.MaxHeaderBytes = def.MaxHeaderBytes
	}
	if c.SplatsPerRow <= 0 {
		c.SplatsPerRow = def.SplatsPerRow
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.Title == "" {
		c.Title = def.Title
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = def.PreviewSize
	}
	if c.Supersample <= 0 {
		c.Supersample = def.Supersample
	}
}

// Intrinsics converts the camera section.
func (c *Config) Intrinsics() camera.Intrinsics {
	return camera.Intrinsics{
		Width:      c.Camera.Width,
		Height:     c.Camera.Height,
		FocalX:     c.Camera.FocalX,
		FocalY:     c.Camera.FocalY,
		PrincipalX: c.Camera.PrincipalPointOffsetX,
		PrincipalY: c.Camera.PrincipalPointOffsetY,
		Near:       c.Camera.NearPlane,
		Far:        c.Camera.FarPlane,
	}
}

// CameraOptions returns the controller options for the configured eye, focus and world up.
func (c *Config) CameraOptions() []camera.OrbitControllerOption {
	return []camera.OrbitControllerOption{
		camera.WithEye(mgl32.Vec3(c.Eye)),
		camera.WithFocus(mgl32.Vec3(c.Focus)),
		camera.WithGlobalUp(mgl32.Vec3{0, 0, float32(c.WorldUp)}),
	}
}

// HeaderOptions returns the header parser options.
func (c *Config) HeaderOptions() []splat.HeaderOption {
	return []splat.HeaderOption{
		splat.WithLenientTypes(c.LenientHeader),
		splat.WithLegacyLayout(c.LegacyLayout),
		splat.WithMaxHeaderSize(c.MaxHeaderBytes),
	}
}

// BuilderOptions returns the packed buffer builder options.
func (c *Config) BuilderOptions() []splat.BuilderOption {
	return []splat.BuilderOption{
		splat.WithSplatsPerRow(c.SplatsPerRow),
		splat.WithSurfels(c.ConvertToSurfels),
		splat.WithWorkers(c.Workers),
	}
}

// Level parses LogLevel, defaulting to info for unknown names.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewCamera builds the camera described by the config.
func (c *Config) NewCamera() camera.Camera {
	return camera.NewCamera(
		camera.WithIntrinsics(c.Intrinsics()),
		camera.WithResolutionTracking(c.UpdateCameraWH),
		camera.WithController(camera.NewOrbitController(c.CameraOptions()...)),
	)
}
