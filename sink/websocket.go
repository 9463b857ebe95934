package sink

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/corvus-systems/birdtrack"
)

// WebSocket streams envelopes over an upgraded websocket connection —
// used when the consumer is a browser-based dashboard rather than a
// pipe-connected process.
type WebSocket struct {
	conn *websocket.Conn
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// UpgradeWebSocket upgrades an inbound HTTP request to a websocket
// connection and wraps it as a Sink.
func UpgradeWebSocket(w http.ResponseWriter, r *http.Request) (*WebSocket, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return &WebSocket{conn: conn}, nil
}

func (s *WebSocket) EmitFrame(rec birdtrack.FrameRecord) error {
	return s.conn.WriteJSON(Envelope{Type: "frame_data", Data: &rec})
}

func (s *WebSocket) EmitCompletion(rec birdtrack.CompletionRecord) error {
	return s.conn.WriteJSON(Envelope{Type: "completed", Results: &rec})
}

func (s *WebSocket) EmitError(err error) error {
	return s.conn.WriteJSON(Envelope{Type: "error", Message: err.Error()})
}

func (s *WebSocket) Close() error {
	return s.conn.Close()
}
