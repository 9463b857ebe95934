package sink

import (
	"encoding/json"
	"io"

	"github.com/corvus-systems/birdtrack"
)

// Batch emits a single completion record and nothing else, matching the
// CLI batch-processing mode of the original script: per-frame data is
// only meaningful to a live consumer, so it is discarded here.
type Batch struct {
	w io.Writer
}

// NewBatch wraps w as a batch-mode Sink.
func NewBatch(w io.Writer) *Batch {
	return &Batch{w: w}
}

func (b *Batch) EmitFrame(birdtrack.FrameRecord) error { return nil }

func (b *Batch) EmitCompletion(rec birdtrack.CompletionRecord) error {
	return json.NewEncoder(b.w).Encode(rec)
}

func (b *Batch) EmitError(err error) error {
	return json.NewEncoder(b.w).Encode(map[string]string{"error": err.Error()})
}

func (b *Batch) Close() error { return nil }
