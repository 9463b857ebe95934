package sink

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/corvus-systems/birdtrack"
)

// Stdout streams newline-delimited JSON envelopes to a writer (ordinarily
// os.Stdout). It is the spec-mandated streaming sink used by IPC mode:
// every command that starts a run begins with a "started" envelope, is
// followed by one "frame_data" envelope per processed frame, and ends with
// either "completed" or "error".
type Stdout struct {
	w       io.Writer
	enc     *json.Encoder
	started bool
}

// NewStdout wraps w as a streaming Sink.
func NewStdout(w io.Writer) *Stdout {
	return &Stdout{w: w, enc: json.NewEncoder(w)}
}

func (s *Stdout) EmitFrame(rec birdtrack.FrameRecord) error {
	if !s.started {
		if err := s.enc.Encode(Envelope{Type: "started"}); err != nil {
			return err
		}
		s.started = true
	}
	return s.enc.Encode(Envelope{Type: "frame_data", Data: &rec})
}

func (s *Stdout) EmitCompletion(rec birdtrack.CompletionRecord) error {
	return s.enc.Encode(Envelope{Type: "completed", Results: &rec})
}

func (s *Stdout) EmitError(err error) error {
	return s.enc.Encode(Envelope{Type: "error", Message: fmt.Sprint(err)})
}

func (s *Stdout) Close() error { return nil }
