package birdtrack

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// ObjectRecord is one tracked bird reported for a single frame. Only
// tracks matched or promoted on this frame carry a bounding box — a
// confirmed track merely aging through a miss is not reported until it is
// matched again, mirroring the original streaming callback's behavior.
type ObjectRecord struct {
	ID int `json:"id"`
	X  int `json:"x"`
	Y  int `json:"y"`
	W  int `json:"w"`
	H  int `json:"h"`
	CX int `json:"cx"`
	CY int `json:"cy"`
}

// FrameStats is the running current/total bird counts attached to every
// frame record and folded into the completion record.
type FrameStats struct {
	CurrentBirds int `json:"current_birds"`
	TotalBirds   int `json:"total_birds"`
}

// FrameRecord is the per-frame unit emitted to a Sink.
type FrameRecord struct {
	Frame   int          `json:"frame"`
	Objects []ObjectRecord `json:"objects"`
	Stats   FrameStats   `json:"stats"`
}

// CompletionRecord summarizes an entire run, emitted once at the end of
// batch processing (and as the terminal message of a streaming run).
type CompletionRecord struct {
	TotalFrames          int     `json:"total_frames"`
	ProcessedFrames      int     `json:"processed_frames"`
	MaxSimultaneousBirds int     `json:"max_simultaneous_birds"`
	TotalUniqueBirds     int     `json:"total_unique_birds"`
	FPS                  float64 `json:"fps"`
	Width                int     `json:"width"`
	Height               int     `json:"height"`
}

// Sink is the emission boundary: where per-frame records, the final
// completion record, and fatal errors go. Implementations may be a
// one-shot batch writer or a long-lived streaming transport.
type Sink interface {
	EmitFrame(FrameRecord) error
	EmitCompletion(CompletionRecord) error
	EmitError(error) error
	Close() error
}

// Pipeline binds a FrameSource to a Detector and Tracker and drives one
// video end to end, emitting results to a Sink. A Pipeline is exclusively
// owned by the goroutine that calls Run; nothing about it is safe to share
// across videos.
type Pipeline struct {
	source   FrameSource
	detector *Detector
	tracker  *Tracker
	sink     Sink
	log      *zap.Logger
}

// NewPipeline constructs a Pipeline from its already-built collaborators.
func NewPipeline(source FrameSource, detector *Detector, tracker *Tracker, sink Sink, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{source: source, detector: detector, tracker: tracker, sink: sink, log: log}
}

// Run drives the pipeline to completion or until ctx is cancelled. Frame
// boundaries are the only cancellation checkpoints, matching the single
// suspension point the frame source represents; a cancelled run returns
// the completion record gathered so far with a nil error, since a stop
// request is an orderly shutdown, not a failure. It does not emit that
// record (or an error) to the sink.
func (p *Pipeline) Run(ctx context.Context) (CompletionRecord, error) {
	result := CompletionRecord{
		TotalFrames: p.source.FrameCount(),
		FPS:         p.source.FPS(),
		Width:       p.source.Width(),
		Height:      p.source.Height(),
	}

	mask := gocv.NewMat()
	defer mask.Close()

	frameNum := 0
	for {
		select {
		case <-ctx.Done():
			return result, nil
		default:
		}

		frame, ok := p.source.Next()
		if !ok {
			break
		}

		objects, stats, err := p.processFrame(frame, &mask)
		frame.Close()
		if err != nil {
			_ = p.sink.EmitError(err)
			return result, fmt.Errorf("birdtrack: process frame %d: %w", frameNum+1, err)
		}

		frameNum++
		result.ProcessedFrames = frameNum
		if stats.CurrentBirds > result.MaxSimultaneousBirds {
			result.MaxSimultaneousBirds = stats.CurrentBirds
		}
		result.TotalUniqueBirds = stats.TotalBirds

		record := FrameRecord{Frame: frameNum, Objects: objects, Stats: stats}
		if err := p.sink.EmitFrame(record); err != nil {
			return result, fmt.Errorf("birdtrack: emit frame %d: %w", frameNum, err)
		}
	}

	if err := p.sink.EmitCompletion(result); err != nil {
		return result, fmt.Errorf("birdtrack: emit completion: %w", err)
	}
	return result, nil
}

// processFrame runs detection, centroid extraction, and tracker update for
// one frame and joins tracker output back to bounding-box geometry through
// the detection-index map.
func (p *Pipeline) processFrame(frame gocv.Mat, mask *gocv.Mat) ([]ObjectRecord, FrameStats, error) {
	boxes, err := p.detector.Detect(frame, mask)
	if err != nil {
		return nil, FrameStats{}, err
	}
	centroids := Centroids(boxes)

	update := p.tracker.Update(centroids)

	objects := make([]ObjectRecord, 0, len(update.DetectionIndex))
	for _, track := range update.Confirmed {
		detIdx, ok := update.DetectionIndex[track.ID]
		if !ok || detIdx >= len(boxes) {
			continue
		}
		box := boxes[detIdx]
		objects = append(objects, ObjectRecord{
			ID: track.ID,
			X:  box.X, Y: box.Y, W: box.W, H: box.H,
			CX: track.Position.X, CY: track.Position.Y,
		})
	}

	stats := FrameStats{CurrentBirds: update.CurrentBirds, TotalBirds: update.TotalBirds}
	return objects, stats, nil
}
