// Command birdtrack runs the bird detection and tracking pipeline: as a
// one-shot batch job over a video file, as a long-lived IPC process
// streaming frame data over stdio, as an asynq worker draining a queue of
// videos, or as an HTTP server exposing Prometheus metrics and a
// websocket streaming route. The run, ipc, and worker modes pick the Sink
// their run results land on (batch, stdout, NATS, or Postgres) from the
// output.mode configuration; serve always streams to the websocket client.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "birdtrack",
		Short: "Bird detection and tracking over video",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newIPCCmd())
	root.AddCommand(newWorkerCmd())
	root.AddCommand(newServeCmd())
	return root
}
