package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"
)

// DefaultChunkSize is the read size used by file and HTTP streams.
const DefaultChunkSize = 1 << 20

// --- file ---

// FileSource reads a scene from the local filesystem.
type FileSource struct {
	Path      string
	ChunkSize int
}

var _ Source = &FileSource{}

// NewFileSource creates a FileSource reading path in DefaultChunkSize chunks.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path, ChunkSize: DefaultChunkSize}
}

func (s *FileSource) Name() string { return s.Path }

func (s *FileSource) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", s.Path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("loader: stat %s: %w", s.Path, err)
	}
	return &readerStream{r: f, closer: f, length: info.Size(), chunk: chunkSize(s.ChunkSize)}, nil
}

// --- http ---

// HTTPSource downloads a scene with a GET request. The response must carry a Content-Length.
type HTTPSource struct {
	URL       string
	Client    *http.Client
	ChunkSize int
}

var _ Source = &HTTPSource{}

// NewHTTPSource creates an HTTPSource using http.DefaultClient.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{URL: url, Client: http.DefaultClient, ChunkSize: DefaultChunkSize}
}

func (s *HTTPSource) Name() string { return s.URL }

func (s *HTTPSource) Open(ctx context.Context) (Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("loader: request %s: %w", s.URL, err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loader: get %s: %w", s.URL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("loader: get %s: unexpected status %s", s.URL, resp.Status)
	}
	return &readerStream{r: resp.Body, closer: resp.Body, length: resp.ContentLength, chunk: chunkSize(s.ChunkSize)}, nil
}

// readerStream chunks any io.Reader with a known length.
type readerStream struct {
	r      io.Reader
	closer io.Closer
	length int64
	chunk  int
}

func (s *readerStream) Len() int64 { return s.length }

func (s *readerStream) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf := make([]byte, s.chunk)
	n, err := io.ReadFull(s.r, buf)
	if n > 0 {
		return buf[:n], nil
	}
	return nil, err
}

func (s *readerStream) Close() error {
	return s.closer.Close()
}

func chunkSize(n int) int {
	if n <= 0 {
		return DefaultChunkSize
	}
	return n
}

// --- websocket ---

// StreamPreamble is the first text message of a WebSocket scene stream. Binary messages
// carrying the scene bytes follow it.
type StreamPreamble struct {
	Length *int64 `json:"length"`
	Name   string `json:"name,omitempty"`
}

// WebSocketSource receives a scene over a WebSocket: a StreamPreamble JSON message declaring the
// length, then binary messages until that many bytes have arrived.
type WebSocketSource struct {
	URL    string
	Dialer *websocket.Dialer
}

var _ Source = &WebSocketSource{}

// NewWebSocketSource creates a WebSocketSource using websocket.DefaultDialer.
func NewWebSocketSource(url string) *WebSocketSource {
	return &WebSocketSource{URL: url, Dialer: websocket.DefaultDialer}
}

func (s *WebSocketSource) Name() string { return s.URL }

func (s *WebSocketSource) Open(ctx context.Context) (Stream, error) {
	dialer := s.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, s.URL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("loader: dial %s: %w", s.URL, err)
	}

	// Unblock pending reads when the caller gives up.
	stop := context.AfterFunc(ctx, func() { conn.Close() })

	var pre StreamPreamble
	if err := conn.ReadJSON(&pre); err != nil {
		stop()
		conn.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("loader: read preamble from %s: %w", s.URL, err)
	}
	length := int64(-1)
	if pre.Length != nil && *pre.Length >= 0 {
		length = *pre.Length
	}
	return &wsStream{conn: conn, stop: stop, length: length}, nil
}

type wsStream struct {
	conn     *websocket.Conn
	stop     func() bool
	once     sync.Once
	length   int64
	received int64
}

func (s *wsStream) Len() int64 { return s.length }

func (s *wsStream) Next(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.length >= 0 && s.received >= s.length {
			return nil, io.EOF
		}
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, io.EOF
			}
			return nil, err
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		s.received += int64(len(data))
		return data, nil
	}
}

func (s *wsStream) Close() error {
	var err error
	s.once.Do(func() {
		s.stop()
		_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = s.conn.Close()
	})
	return err
}
