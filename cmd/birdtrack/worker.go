package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corvus-systems/birdtrack"
	"github.com/corvus-systems/birdtrack/internal/config"
	"github.com/corvus-systems/birdtrack/internal/logging"
	"github.com/corvus-systems/birdtrack/queue"
)

func newWorkerCmd() *cobra.Command {
	var redisAddr string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Drain a Redis-backed queue of videos, one Pipeline per job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(redisAddr, concurrency)
		},
	}
	cmd.Flags().StringVar(&redisAddr, "redis", "127.0.0.1:6379", "redis address backing the job queue")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of videos to process concurrently")
	return cmd
}

func runWorker(redisAddr string, concurrency int) error {
	log, err := logging.New(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	server := queue.NewServer(redisAddr, concurrency)
	server.Handle(func(ctx context.Context, payload queue.ProcessVideoPayload) error {
		return processQueuedVideo(ctx, payload, log)
	})

	log.Info("worker starting", zap.String("redis", redisAddr), zap.Int("concurrency", concurrency))
	return server.Run()
}

// processQueuedVideo builds a fresh Detector, Tracker, and Pipeline for
// one job — the same no-cross-instance-sharing rule a single `run`
// invocation follows, just driven from a queue instead of a CLI flag.
func processQueuedVideo(ctx context.Context, payload queue.ProcessVideoPayload, log *zap.Logger) error {
	runLog := logging.WithRun(log, payload.RunID)

	rec, err := loadConfig(payload.ConfigPath, runLog)
	if err != nil {
		return err
	}

	source, err := birdtrack.OpenVideoFile(payload.InputPath, payload.RunID)
	if err != nil {
		return err
	}
	defer source.Close()

	detector, err := buildDetector(rec, runLog)
	if err != nil {
		return err
	}
	defer detector.Close()

	tracker := buildTracker(rec)

	jobSink, err := buildQueueSink(payload, rec)
	if err != nil {
		return err
	}
	defer jobSink.Close()

	pipeline := birdtrack.NewPipeline(source, detector, tracker, jobSink, runLog)
	_, err = pipeline.Run(ctx)
	return err
}

// buildQueueSink picks the sink a queued job writes its results to, via
// the same output.mode switch (buildSink) the run command uses. payload.OutputMode is a
// per-job override (set by whoever enqueued the video); when present it
// takes precedence over the mode baked into the job's own config file,
// letting a caller route a specific job to Postgres or NATS without
// maintaining a separate config per destination.
func buildQueueSink(payload queue.ProcessVideoPayload, rec config.Record) (birdtrack.Sink, error) {
	if payload.OutputMode != "" {
		rec.Output.Mode = payload.OutputMode
	}
	return buildSink(rec, payload.RunID, os.Stdout)
}
