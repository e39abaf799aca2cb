package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Carmen-Shannon/oxy-splat/common"
	"github.com/Carmen-Shannon/oxy-splat/engine/loader"
)

func runServe(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "localhost:8080", "Listen address")
	chunk := fs.Int("chunk", 64<<10, "WebSocket message size in bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("serve: no scene file given")
	}

	mux := http.NewServeMux()
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name := filepath.Base(path)
		h := loader.NewStreamHandler(name, data)
		h.ChunkSize = *chunk
		mux.Handle("/"+name, h)
		fmt.Fprintf(stdout, "serving %s (%d bytes) at http://%s/%s and ws://%s/%s\n", path, len(data), *addr, name, *addr, name)
	}

	srv := &http.Server{Addr: *addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	common.Logger().Info("serve: shutting down")
	return srv.Shutdown(shutdownCtx)
}
