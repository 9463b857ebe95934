package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corvus-systems/birdtrack"
	"github.com/corvus-systems/birdtrack/internal/logging"
	"github.com/corvus-systems/birdtrack/metrics"
)

func newRunCmd() *cobra.Command {
	var input, output, configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process one video to completion, batch mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(input, output, configPath)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input video file path (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file for the completion record (default: stdout)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.json", "path to the configuration file")
	cmd.MarkFlagRequired("input")
	return cmd
}

func runBatch(input, output, configPath string) error {
	log, err := logging.New(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	runID := uuid.NewString()
	log = logging.WithRun(log, runID)

	rec, err := loadConfig(configPath, log)
	if err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return err
	}

	source, err := birdtrack.OpenVideoFile(input, "")
	if err != nil {
		log.Error("frame source unavailable", zap.Error(err))
		return err
	}
	defer source.Close()

	detector, err := buildDetector(rec, log)
	if err != nil {
		log.Error("detector init failed", zap.Error(err))
		return err
	}
	defer detector.Close()

	tracker := buildTracker(rec)

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("run: create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	rawSink, err := buildSink(rec, runID, out)
	if err != nil {
		log.Error("sink init failed", zap.Error(err))
		return err
	}
	defer rawSink.Close()
	runSink := metrics.Wrap(rawSink, runID)

	pipeline := birdtrack.NewPipeline(source, detector, tracker, runSink, log)

	log.Info("run starting", zap.String("input", input))
	if _, err := pipeline.Run(context.Background()); err != nil {
		log.Error("run failed", zap.Error(err))
		return err
	}
	log.Info("run completed")
	return nil
}
