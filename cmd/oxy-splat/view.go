package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-splat/config"
	"github.com/Carmen-Shannon/oxy-splat/engine"
	"github.com/Carmen-Shannon/oxy-splat/engine/renderer"
	"github.com/Carmen-Shannon/oxy-splat/engine/window"
)

const controls = `controls:
  left drag / wheel         orbit
  right drag / shift+wheel  pan
  ctrl+wheel                zoom
  R                         reset camera
  P                         toggle profiler
  Esc                       quit
`

func runView(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	var shared sharedFlags
	shared.register(fs)
	noVSync := fs.Bool("no-vsync", false, "Present without waiting for vertical blank")
	profile := fs.Bool("profile", false, "Log frame times")
	msaa := fs.Bool("msaa", false, "Enable 4x MSAA")
	software := fs.Bool("software", false, "Force the fallback (software) adapter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := shared.resolve(fs, config.Flags{NoVSync: *noVSync, Profile: *profile})
	if err != nil {
		return err
	}
	if err := requireLocation(fs, cfg); err != nil {
		return err
	}

	scene, err := newLoader(cfg, progressLogger(cfg.PLYPath)).Load(ctx, cfg.PLYPath)
	if err != nil {
		return err
	}

	win := window.NewWindow(
		window.WithTitle(cfg.Title),
		window.WithSize(cfg.Camera.Width, cfg.Camera.Height),
	)
	defer win.Close()

	present := renderer.PresentModeVSync
	if !cfg.VSync {
		present = renderer.PresentModeUncapped
	}
	options := []renderer.RendererBuilderOption{
		renderer.WithPresentMode(present),
		renderer.WithForceSoftwareRenderer(*software),
	}
	if *msaa {
		options = append(options, renderer.WithMSAA(renderer.MSAA4x))
	}
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win, options...)
	if err != nil {
		return err
	}
	defer r.Release()

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithCamera(cfg.NewCamera()),
		engine.WithProfiling(cfg.Profiling),
		engine.WithTitle(cfg.Title),
	)
	if err := eng.SetScene(scene); err != nil {
		return err
	}

	// The message loop does not watch ctx, so an interrupt asks the engine to quit instead.
	stop := context.AfterFunc(ctx, eng.Quit)
	defer stop()

	fmt.Fprint(stdout, controls)
	eng.Run()
	return nil
}
