package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/corvus-systems/birdtrack"
	"github.com/corvus-systems/birdtrack/internal/config"
	"github.com/corvus-systems/birdtrack/sink"
)

func buildDetector(rec config.Record, log *zap.Logger) (*birdtrack.Detector, error) {
	cfg := birdtrack.DetectorConfig{
		MinContourArea:       rec.Detection.MinContourArea,
		MaxContourArea:       rec.Detection.MaxContourArea,
		BlurKernelSize:       rec.Detection.BlurKernelSize,
		MorphKernelSize:      rec.Detection.MorphKernelSize,
		MorphIterations:      rec.Detection.MorphIterations,
		MOG2History:          rec.Detection.MOG2History,
		MOG2VarThreshold:     rec.Detection.MOG2VarThreshold,
		SpatialFilterEnabled: rec.SpatialFilter.Enabled,
		HorizonLinePercent:   rec.SpatialFilter.HorizonLinePercent,
	}
	det, err := birdtrack.NewDetector(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("build detector: %w", err)
	}
	return det, nil
}

func buildTracker(rec config.Record) *birdtrack.Tracker {
	cfg := birdtrack.TrackerConfig{
		MaxDisappeared:        rec.Tracking.MaxDisappeared,
		MaxDistance:           rec.Tracking.MaxDistance,
		TemporalFilterEnabled: rec.TemporalFilter.Enabled,
		MinConfirmFrames:      rec.TemporalFilter.MinConfirmFrames,
		MinMoveDistance:       rec.TemporalFilter.MinMoveDistance,
	}
	return birdtrack.NewTracker(cfg)
}

// buildSink picks the Sink implementation named by rec.Output.Mode,
// falling back to w for the modes that only need an io.Writer. websocket
// is deliberately excluded: it needs a live http.ResponseWriter/*http.Request
// pair to upgrade, so it is only reachable from the serve command's
// streaming route, never from a mode selected here.
func buildSink(rec config.Record, runID string, w io.Writer) (birdtrack.Sink, error) {
	switch rec.Output.Mode {
	case "", "batch":
		return sink.NewBatch(w), nil
	case "stdout":
		return sink.NewStdout(w), nil
	case "nats":
		s, err := sink.NewNATS(rec.Output.NATSURL, runID)
		if err != nil {
			return nil, fmt.Errorf("build sink: %w", err)
		}
		return s, nil
	case "postgres":
		s, err := sink.NewPostgres(rec.Output.DSN, runID)
		if err != nil {
			return nil, fmt.Errorf("build sink: %w", err)
		}
		if err := s.EnsureSchema(); err != nil {
			s.Close()
			return nil, fmt.Errorf("build sink: %w", err)
		}
		return s, nil
	case "websocket":
		return nil, fmt.Errorf("build sink: output.mode=websocket requires an HTTP connection; use the serve command's streaming route instead")
	default:
		return nil, fmt.Errorf("build sink: unknown output.mode %q", rec.Output.Mode)
	}
}

func loadConfig(path string, log *zap.Logger) (config.Record, error) {
	rec, err := config.Load(path, nil)
	if err != nil {
		return config.Record{}, err
	}
	if err := config.Validate(&rec, log); err != nil {
		return config.Record{}, err
	}
	return rec, nil
}
