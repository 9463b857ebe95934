package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corvus-systems/birdtrack"
	"github.com/corvus-systems/birdtrack/internal/config"
	"github.com/corvus-systems/birdtrack/internal/logging"
	"github.com/corvus-systems/birdtrack/sink"
)

// command is one line of the stdin command channel.
type command struct {
	Action string `json:"action"`
	Input  string `json:"input"`
}

func newIPCCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "ipc",
		Short: "Run a persistent stdin/stdout command loop for embedding",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIPC(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.json", "path to the configuration file")
	return cmd
}

// runIPC reads one JSON command per line from stdin. "start" launches a
// run against the given input on its own goroutine and streams frame data
// to stdout while the command loop keeps reading; "stop" cancels whichever
// run is currently in flight at its next frame boundary. The original
// script's stop command was a no-op placeholder ("would need threading
// for proper implementation") because it read and processed commands on
// one thread; here "start" runs concurrently with the command loop so a
// "stop" line sent mid-run actually takes effect.
func runIPC(configPath string) error {
	log, err := logging.New(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	out := sink.NewStdout(os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		mu     sync.Mutex
		cancel context.CancelFunc
		active bool
	)

	for scanner.Scan() {
		var cmd command
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
			_ = out.EmitError(fmt.Errorf("ipc: malformed command: %w", err))
			continue
		}

		switch cmd.Action {
		case "start":
			mu.Lock()
			if active {
				mu.Unlock()
				_ = out.EmitError(fmt.Errorf("ipc: a run is already in progress"))
				continue
			}
			ctx, c := context.WithCancel(context.Background())
			cancel = c
			active = true
			mu.Unlock()

			go func(input string) {
				if err := runStreaming(ctx, input, configPath, log, out); err != nil {
					_ = out.EmitError(err)
				}
				mu.Lock()
				active = false
				cancel = nil
				mu.Unlock()
			}(cmd.Input)

		case "stop":
			mu.Lock()
			if cancel != nil {
				cancel()
			}
			mu.Unlock()

		default:
			_ = out.EmitError(fmt.Errorf("ipc: unknown action %q", cmd.Action))
		}
	}

	return scanner.Err()
}

func runStreaming(ctx context.Context, input, configPath string, log *zap.Logger, out *sink.Stdout) error {
	runID := uuid.NewString()
	runLog := logging.WithRun(log, runID)

	rec, err := loadConfig(configPath, runLog)
	if err != nil {
		return fmt.Errorf("ipc: invalid configuration: %w", err)
	}

	source, err := birdtrack.OpenVideoFile(input, "")
	if err != nil {
		return fmt.Errorf("ipc: frame source unavailable: %w", err)
	}
	defer source.Close()

	detector, err := buildDetector(rec, runLog)
	if err != nil {
		return fmt.Errorf("ipc: detector init failed: %w", err)
	}
	defer detector.Close()

	tracker := buildTracker(rec)

	runSink, err := buildStreamingSink(rec, runID, out)
	if err != nil {
		return err
	}
	defer runSink.Close()

	pipeline := birdtrack.NewPipeline(source, detector, tracker, runSink, runLog)

	runLog.Info("ipc run starting", zap.String("input", input))
	_, err = pipeline.Run(ctx)
	return err
}

// buildStreamingSink picks where this run's frame-by-frame data goes. The
// stdin/stdout command channel in runIPC always stays on out regardless of
// this choice — it is the wire protocol the embedding parent talks to, not
// a data sink. output.mode only redirects where the run's own frame and
// completion records land; nats generalizes the same streaming envelope to
// any number of subscribers instead of the one parent process reading
// stdout.
func buildStreamingSink(rec config.Record, runID string, out *sink.Stdout) (birdtrack.Sink, error) {
	switch rec.Output.Mode {
	case "", "batch", "stdout":
		return out, nil
	case "nats":
		s, err := sink.NewNATS(rec.Output.NATSURL, runID)
		if err != nil {
			return nil, fmt.Errorf("ipc: %w", err)
		}
		return s, nil
	case "websocket":
		return nil, fmt.Errorf("ipc: output.mode=websocket requires an HTTP connection; use the serve command's streaming route instead")
	case "postgres":
		return nil, fmt.Errorf("ipc: output.mode=postgres only applies to the run and worker commands")
	default:
		return nil, fmt.Errorf("ipc: unknown output.mode %q", rec.Output.Mode)
	}
}
