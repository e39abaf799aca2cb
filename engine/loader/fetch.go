package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// maxPrealloc bounds the up-front allocation made from an untrusted declared length.
const maxPrealloc = 256 << 20

// ProgressFunc receives the integer percentage of a fetch. Values are non-decreasing and the
// last call of a successful fetch reports 100.
type ProgressFunc func(percent int)

// Fetch reads a source to completion.
// The source must declare its length so progress can be reported. Cancellation is checked
// between chunks; a cancelled fetch returns ctx.Err() and no data.
//
// Parameters:
//   - ctx: cancels the fetch
//   - src: the byte source
//   - progress: optional progress callback, may be nil
//
// Returns:
//   - []byte: the complete payload
//   - error: ErrMissingLength, a LengthMismatchError, ctx.Err(), or a wrapped I/O error
func Fetch(ctx context.Context, src Source, progress ProgressFunc) ([]byte, error) {
	stream, err := src.Open(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	defer stream.Close()

	total := stream.Len()
	if total < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingLength, src.Name())
	}

	buf := make([]byte, 0, min(total, maxPrealloc))
	last := -1
	report := func(pct int) {
		if progress != nil && pct > last {
			progress(pct)
		}
		last = max(last, pct)
	}
	report(0)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunk, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("loader: read %s: %w", src.Name(), err)
		}
		if int64(len(buf))+int64(len(chunk)) > total {
			return nil, &LengthMismatchError{Want: total, Got: int64(len(buf)) + int64(len(chunk))}
		}
		buf = append(buf, chunk...)
		if total > 0 {
			report(int(int64(len(buf)) * 100 / total))
		}
	}

	if int64(len(buf)) != total {
		return nil, &LengthMismatchError{Want: total, Got: int64(len(buf))}
	}
	report(100)
	return buf, nil
}
