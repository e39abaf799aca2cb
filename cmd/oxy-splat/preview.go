package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/Carmen-Shannon/oxy-splat/config"
	"github.com/Carmen-Shannon/oxy-splat/engine/preview"
)

func runPreview(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	var shared sharedFlags
	shared.register(fs)
	out := fs.String("o", "", "Output file (default: <scene>.webp)")
	size := fs.Int("size", 0, "Output width in pixels; height follows the camera aspect (default: 512)")
	supersample := fs.Int("supersample", 0, "Supersampling factor (default: 2)")
	orbit := fs.Float64("orbit", 0, "Yaw the camera by this many radians before rendering")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := shared.resolve(fs, config.Flags{Size: *size})
	if err != nil {
		return err
	}
	if *supersample > 0 {
		cfg.Supersample = *supersample
	}
	if err := requireLocation(fs, cfg); err != nil {
		return err
	}

	scene, err := newLoader(cfg, nil).Load(ctx, cfg.PLYPath)
	if err != nil {
		return err
	}

	cam := cfg.NewCamera()
	if *orbit != 0 {
		ctrl := cam.Controller()
		ctrl.Orbit(float32(*orbit), 0)
		ctrl.UpdateViewMatrix()
	}
	in := cam.Intrinsics()
	width := cfg.PreviewSize
	height := max(1, width*in.Height/in.Width)

	img, err := preview.NewRasterizer(
		preview.WithSize(width, height),
		preview.WithSupersample(cfg.Supersample),
	).Render(scene.Buffer, cam)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = outputName(scene.Name)
	}
	if err := preview.WriteWebP(path, img); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%dx%d, %d splats)\n", path, width, height, scene.Buffer.Count)
	return nil
}

// outputName derives "<base>.webp" from a path or URL.
func outputName(location string) string {
	base := location[strings.LastIndexAny(location, `/\`)+1:]
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	if base == "" {
		base = "preview"
	}
	return base + ".webp"
}
