package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Carmen-Shannon/oxy-splat/config"
	"github.com/Carmen-Shannon/oxy-splat/engine/loader"
	"github.com/Carmen-Shannon/oxy-splat/engine/splat"
)

func runInfo(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	var shared sharedFlags
	shared.register(fs)
	decode := fs.Bool("decode", false, "Also decode the body and report degenerate rotations")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := shared.resolve(fs, config.Flags{})
	if err != nil {
		return err
	}
	if err := requireLocation(fs, cfg); err != nil {
		return err
	}

	src, err := loader.ResolveSource(cfg.PLYPath)
	if err != nil {
		return err
	}
	data, err := loader.Fetch(ctx, src, nil)
	if err != nil {
		return err
	}
	h, err := splat.ParseHeader(data, cfg.HeaderOptions()...)
	if err != nil {
		return err
	}

	spr, width, height := splat.TextureLayout(h.Count, cfg.SplatsPerRow)
	fmt.Fprintf(stdout, "source:      %s\n", src.Name())
	fmt.Fprintf(stdout, "format:      %s\n", h.Format)
	fmt.Fprintf(stdout, "splats:      %d\n", h.Count)
	fmt.Fprintf(stdout, "stride:      %d bytes\n", h.Stride)
	fmt.Fprintf(stdout, "body:        %d of %d bytes\n", len(data)-h.DataOffset, h.BodySize())
	fmt.Fprintf(stdout, "texture:     %dx%d RGBA32Float (%d splats per row)\n", width, height, spr)
	if len(h.Fallbacks) > 0 {
		fmt.Fprintf(stdout, "fallbacks:   %v read as int8\n", h.Fallbacks)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nOFFSET\tTYPE\tNAME")
	for _, p := range h.Table.Properties() {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", p.Offset, p.Type, p.Name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if *decode {
		buf, err := splat.NewBuilder(cfg.BuilderOptions()...).Build(h, data[h.DataOffset:])
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\ndecoded:     %d splats, %d degenerate rotations\n", buf.Count, buf.Degenerate)
	}
	return nil
}
