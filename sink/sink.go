// Package sink provides Sink implementations for the streaming and batch
// emission modes: newline-delimited JSON to stdout, a websocket, a NATS
// subject, and a Postgres completion-record store.
package sink

import "github.com/corvus-systems/birdtrack"

// Envelope is the streaming-mode wire format: every line written to a
// streaming sink is one Envelope. Type is one of "started", "frame_data",
// "completed", or "error".
type Envelope struct {
	Type    string                    `json:"type"`
	Data    *birdtrack.FrameRecord      `json:"data,omitempty"`
	Results *birdtrack.CompletionRecord `json:"results,omitempty"`
	Message string                    `json:"message,omitempty"`
}
