package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/Carmen-Shannon/oxy-splat/common"
	"github.com/Carmen-Shannon/oxy-splat/config"
	"github.com/Carmen-Shannon/oxy-splat/engine/loader"
	"github.com/Carmen-Shannon/oxy-splat/engine/splat"
)

// GLFW and the wgpu surface must stay on the main thread.
func init() {
	runtime.LockOSThread()
}

const usage = `usage: oxy-splat <command> [flags] [location]

commands:
  view      open a window and orbit the scene
  info      print the parsed header and texture layout
  preview   render the scene on the CPU and write a WebP image
  serve     serve a scene file over HTTP and WebSocket
  generate  write a synthetic sphere scene

locations are .ply paths, file://, http(s):// or ws(s):// URLs.
run "oxy-splat <command> -h" for command flags.
`

type command func(ctx context.Context, args []string, stdout io.Writer) error

var commands = map[string]command{
	"view":     runView,
	"info":     runInfo,
	"preview":  runPreview,
	"serve":    runServe,
	"generate": runGenerate,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
	if err := cmd(ctx, args[1:], stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// sharedFlags are accepted by every command that reads a scene.
type sharedFlags struct {
	configFile string
	logLevel   string
	workers    int
	surfels    bool
	lenient    bool
}

func (s *sharedFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.configFile, "config", "", "Path to config.json file")
	fs.StringVar(&s.logLevel, "log-level", "", "debug, info, warn or error (default: info)")
	fs.IntVar(&s.workers, "workers", 0, "Decode workers (default: NumCPU)")
	fs.BoolVar(&s.surfels, "surfels", false, "Flatten the smallest axis of every splat")
	fs.BoolVar(&s.lenient, "lenient", false, "Read unknown property types as int8 instead of failing")
}

// resolve loads the config file, applies the flags and installs the logger.
func (s *sharedFlags) resolve(fs *flag.FlagSet, extra config.Flags) (config.Config, error) {
	cfg := config.Default()
	if s.configFile != "" {
		var err error
		if cfg, err = config.Load(s.configFile); err != nil {
			return config.Config{}, err
		}
	}

	extra.PLYPath = fs.Arg(0)
	extra.LogLevel = s.logLevel
	extra.Workers = s.workers
	extra.Surfels = s.surfels
	extra.Lenient = s.lenient
	cfg.Resolve(extra)

	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))
	return cfg, nil
}

func newLoader(cfg config.Config, progress loader.ProgressFunc) loader.Loader {
	return loader.NewLoader(
		loader.WithProgress(progress),
		loader.WithHeaderOptions(cfg.HeaderOptions()...),
		loader.WithBuilder(splat.NewBuilder(cfg.BuilderOptions()...)),
	)
}

// progressLogger logs every tenth percent.
func progressLogger(name string) loader.ProgressFunc {
	last := -10
	return func(percent int) {
		if percent < 100 && percent-last < 10 {
			return
		}
		last = percent
		common.Logger().Info("loading", "source", name, "percent", percent)
	}
}

func requireLocation(fs *flag.FlagSet, cfg config.Config) error {
	if cfg.PLYPath == "" {
		return fmt.Errorf("%s: no scene location given and ply_path is not set", fs.Name())
	}
	return nil
}
