package loader

import (
	"bytes"
	"net/http"
	"time"

	"github.com/Carmen-Shannon/oxy-splat/common"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamHandler serves one scene file to HTTPSource and WebSocketSource clients. Plain GET
// requests receive the bytes with a Content-Length. WebSocket upgrades receive a StreamPreamble
// followed by binary messages of ChunkSize bytes and a normal close.
type StreamHandler struct {
	Name      string
	Data      []byte
	ChunkSize int
	ModTime   time.Time
}

var _ http.Handler = &StreamHandler{}

// NewStreamHandler creates a StreamHandler for data.
//
// Parameters:
//   - name: the file name reported to clients
//   - data: the complete scene file
//
// Returns:
//   - *StreamHandler: the handler
func NewStreamHandler(name string, data []byte) *StreamHandler {
	return &StreamHandler{Name: name, Data: data, ChunkSize: 64 << 10, ModTime: time.Now()}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		h.serveWebSocket(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeContent(w, r, h.Name, h.ModTime, bytes.NewReader(h.Data))
}

func (h *StreamHandler) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		common.Logger().Warn("loader: websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	length := int64(len(h.Data))
	if err := conn.WriteJSON(StreamPreamble{Length: &length, Name: h.Name}); err != nil {
		common.Logger().Warn("loader: websocket preamble failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	chunk := chunkSize(h.ChunkSize)
	for off := 0; off < len(h.Data); off += chunk {
		end := min(off+chunk, len(h.Data))
		if err := conn.WriteMessage(websocket.BinaryMessage, h.Data[off:end]); err != nil {
			common.Logger().Warn("loader: websocket send failed", "remote", r.RemoteAddr, "offset", off, "error", err)
			return
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	// Wait for the client's close reply so the last frames are not cut off by a reset.
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	common.Logger().Info("loader: streamed scene", "remote", r.RemoteAddr, "bytes", length)
}
