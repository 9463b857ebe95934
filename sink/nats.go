package sink

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/corvus-systems/birdtrack"
)

// NATS publishes every envelope to a per-run subject, letting any number
// of subscribers (a dashboard, a metrics collector, a recorder) observe
// the same run without birdtrack knowing about them.
type NATS struct {
	conn    *nats.Conn
	subject string
}

// NewNATS connects to url and returns a Sink publishing to
// "birdtrack.frames.<runID>".
func NewNATS(url, runID string) (*NATS, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("sink: connect nats: %w", err)
	}
	return &NATS{conn: conn, subject: "birdtrack.frames." + runID}, nil
}

func (s *NATS) publish(env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.conn.Publish(s.subject, payload)
}

func (s *NATS) EmitFrame(rec birdtrack.FrameRecord) error {
	return s.publish(Envelope{Type: "frame_data", Data: &rec})
}

func (s *NATS) EmitCompletion(rec birdtrack.CompletionRecord) error {
	return s.publish(Envelope{Type: "completed", Results: &rec})
}

func (s *NATS) EmitError(err error) error {
	return s.publish(Envelope{Type: "error", Message: err.Error()})
}

func (s *NATS) Close() error {
	return s.conn.Drain()
}
