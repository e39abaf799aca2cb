package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-splat/engine/splat"
)

func runGenerate(_ context.Context, args []string, stdout io.Writer) (err error) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	n := fs.Int("n", 10000, "Number of splats")
	radius := fs.Float64("radius", 1, "Sphere radius")
	out := fs.String("o", "sphere.ply", "Output file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *n <= 0 {
		return fmt.Errorf("generate: -n must be positive, got %d", *n)
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if err := splat.Encode(w, splat.FibonacciSphere(*n, *radius)); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%d splats)\n", *out, *n)
	return nil
}
