package loader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-splat/engine/splat"
)

type countingUploader struct {
	uploads int
	last    *splat.PackedBuffer
	err     error
}

func (u *countingUploader) UploadSplats(buf *splat.PackedBuffer) error {
	u.uploads++
	u.last = buf
	return u.err
}

func writeScene(t *testing.T, n int) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if err := splat.Encode(&buf, splat.FibonacciSphere(n, 1)); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "sphere.ply")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path, buf.Bytes()
}

func TestLoaderLoad(t *testing.T) {
	path, data := writeScene(t, 50)
	up := &countingUploader{}
	var progress []int
	l := NewLoader(
		WithUploader(up),
		WithProgress(func(p int) { progress = append(progress, p) }),
		WithBuilder(splat.NewBuilder(splat.WithSplatsPerRow(8))),
	)

	scene, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if scene.Header.Count != 50 {
		t.Errorf("Header.Count = %d, want 50", scene.Header.Count)
	}
	if scene.Buffer.Width != 32 || scene.Buffer.Height != 7 {
		t.Errorf("texture = %dx%d, want 32x7", scene.Buffer.Width, scene.Buffer.Height)
	}
	if scene.Size != len(data) {
		t.Errorf("Size = %d, want %d", scene.Size, len(data))
	}
	if up.uploads != 1 || up.last != scene.Buffer {
		t.Errorf("uploads = %d, want 1 with the scene buffer", up.uploads)
	}
	if len(progress) == 0 || progress[len(progress)-1] != 100 {
		t.Errorf("progress = %v, want to end at 100", progress)
	}

	again, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if again != scene || up.uploads != 1 {
		t.Errorf("second Load() did not return the cached scene")
	}
	if l.Get(path) != scene {
		t.Errorf("Get(%q) did not return the cached scene", path)
	}

	l.Evict(path)
	if l.Get(path) != nil {
		t.Errorf("Get() after Evict() returned a scene")
	}
}

func TestLoaderLoadBytesErrors(t *testing.T) {
	_, data := writeScene(t, 4)

	tests := []struct {
		name    string
		data    []byte
		up      *countingUploader
		wantErr error
	}{
		{"truncated body", data[:len(data)-10], &countingUploader{}, splat.ErrTruncatedBody},
		{"bad header", []byte("not a ply file"), &countingUploader{}, splat.ErrMalformedHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader(WithUploader(tt.up))
			scene, err := l.LoadBytes("scene", tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadBytes() error = %v, want %v", err, tt.wantErr)
			}
			if scene != nil || tt.up.uploads != 0 {
				t.Errorf("LoadBytes() produced a scene or upload on error")
			}
			if len(l.Scenes()) != 0 {
				t.Errorf("Scenes() = %d entries after failure, want 0", len(l.Scenes()))
			}
		})
	}
}

func TestLoaderUploadError(t *testing.T) {
	_, data := writeScene(t, 4)
	boom := errors.New("boom")
	l := NewLoader(WithUploader(&countingUploader{err: boom}))
	if _, err := l.LoadBytes("scene", data); !errors.Is(err, boom) {
		t.Errorf("LoadBytes() error = %v, want %v", err, boom)
	}
	if l.Get("scene") != nil {
		t.Error("scene cached after upload failure")
	}
}

func TestLoaderWithScene(t *testing.T) {
	pre := &Scene{Name: "cached"}
	l := NewLoader(WithScene("cached", pre))
	got, err := l.Load(context.Background(), "cached")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != pre {
		t.Errorf("Load() = %v, want the pre-populated scene", got)
	}
}
