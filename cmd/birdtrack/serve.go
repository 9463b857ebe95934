package main

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corvus-systems/birdtrack"
	"github.com/corvus-systems/birdtrack/internal/logging"
	"github.com/corvus-systems/birdtrack/metrics"
	"github.com/corvus-systems/birdtrack/sink"
)

func newServeCmd() *cobra.Command {
	var addr, configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the Prometheus metrics endpoint and a websocket streaming route",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, configPath)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":9090", "address to serve /metrics and /stream on")
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.json", "path to the configuration file used for streamed runs")
	return cmd
}

func runServe(addr, configPath string) error {
	log, err := logging.New(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/stream", streamHandler(configPath, log))

	log.Info("metrics server starting", zap.String("addr", addr))
	return http.ListenAndServe(addr, mux)
}

// streamHandler upgrades the request to a websocket connection and runs
// one Pipeline against the input named by the "input" query parameter,
// pushing frame_data/completed/error envelopes to the connected client.
// It is the browser-dashboard counterpart to ipc mode's stdio protocol,
// for consumers that can't attach to the process's stdin/stdout.
func streamHandler(configPath string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input := r.URL.Query().Get("input")
		if input == "" {
			http.Error(w, "stream: missing input query parameter", http.StatusBadRequest)
			return
		}

		conn, err := sink.UpgradeWebSocket(w, r)
		if err != nil {
			log.Error("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		runID := uuid.NewString()
		runLog := logging.WithRun(log, runID)

		rec, err := loadConfig(configPath, runLog)
		if err != nil {
			_ = conn.EmitError(fmt.Errorf("stream: invalid configuration: %w", err))
			return
		}

		source, err := birdtrack.OpenVideoFile(input, runID)
		if err != nil {
			_ = conn.EmitError(fmt.Errorf("stream: frame source unavailable: %w", err))
			return
		}
		defer source.Close()

		detector, err := buildDetector(rec, runLog)
		if err != nil {
			_ = conn.EmitError(fmt.Errorf("stream: detector init failed: %w", err))
			return
		}
		defer detector.Close()

		tracker := buildTracker(rec)
		pipeline := birdtrack.NewPipeline(source, detector, tracker, metrics.Wrap(conn, runID), runLog)

		runLog.Info("stream run starting", zap.String("input", input))
		if _, err := pipeline.Run(r.Context()); err != nil {
			runLog.Error("stream run failed", zap.Error(err))
		}
	}
}
