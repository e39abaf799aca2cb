package loader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

var (
	// ErrMissingLength is returned when a source cannot declare its total length up front.
	ErrMissingLength = errors.New("loader: source did not declare a length")
	// ErrLengthMismatch is returned when a source delivers more or fewer bytes than it declared.
	ErrLengthMismatch = errors.New("loader: received length does not match declared length")
	// ErrUnsupportedFormat is returned for locations that no source can read.
	ErrUnsupportedFormat = errors.New("loader: unsupported scene location")
)

// LengthMismatchError reports the declared and received byte counts of a fetch.
type LengthMismatchError struct {
	Want int64
	Got  int64
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("loader: declared %d bytes, received %d", e.Want, e.Got)
}

func (e *LengthMismatchError) Is(target error) bool {
	return target == ErrLengthMismatch
}

// Source opens a byte stream for a scene file.
type Source interface {
	// Open starts reading the source.
	//
	// Parameters:
	//   - ctx: cancels the open and every subsequent read
	//
	// Returns:
	//   - Stream: the opened stream, which must be closed by the caller
	//   - error: error if the source cannot be opened
	Open(ctx context.Context) (Stream, error)

	// Name identifies the source in logs and the scene cache.
	Name() string
}

// Stream delivers the bytes of an opened Source in chunks.
type Stream interface {
	// Len returns the declared total length in bytes, or -1 when unknown.
	Len() int64

	// Next returns the next chunk. It returns io.EOF once the stream is exhausted.
	// The returned slice is owned by the caller.
	Next(ctx context.Context) ([]byte, error)

	// Close releases the underlying file or connection.
	Close() error
}

// ResolveSource picks a Source for a scene location. Plain paths and file:// URLs read from disk,
// http(s):// URLs use HTTPSource, ws(s):// URLs use WebSocketSource.
//
// Parameters:
//   - location: a path or URL
//
// Returns:
//   - Source: the matching source
//   - error: ErrUnsupportedFormat for unknown schemes or file extensions
func ResolveSource(location string) (Source, error) {
	if !strings.Contains(location, "://") {
		return resolveFile(location)
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, location, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "file":
		return resolveFile(u.Path)
	case "http", "https":
		return NewHTTPSource(location), nil
	case "ws", "wss":
		return NewWebSocketSource(location), nil
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedFormat, u.Scheme)
	}
}

func resolveFile(path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".ply":
		return NewFileSource(path), nil
	default:
		return nil, fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
	}
}
