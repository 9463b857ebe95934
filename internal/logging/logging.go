// Package logging builds the zap logger shared by every birdtrack
// entrypoint, so CLI commands, the worker, and the metrics server all log
// in the same structured format.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production zap logger writing JSON to stderr, or a more
// readable console logger when debug is true.
func New(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// WithRun returns a logger annotated with the run's correlation id, so
// every log line for a video can be grepped out of a shared log stream.
func WithRun(log *zap.Logger, runID string) *zap.Logger {
	return log.With(zap.String("run_id", runID))
}
