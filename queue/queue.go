// Package queue lets the worker CLI command process many videos
// concurrently without sharing any tracking state between them: each
// queued job spins up its own Pipeline, Detector, and Tracker, satisfying
// the same no-cross-instance-sharing rule a single-video run follows.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TaskTypeProcessVideo is the asynq task type for one video-processing
// job.
const TaskTypeProcessVideo = "birdtrack:process_video"

// ProcessVideoPayload is the task payload: everything a worker needs to
// build an independent Pipeline for one video.
type ProcessVideoPayload struct {
	RunID      string `json:"run_id"`
	InputPath  string `json:"input_path"`
	ConfigPath string `json:"config_path"`
	OutputMode string `json:"output_mode"`
}

// NewProcessVideoTask builds an asynq.Task for one video job.
func NewProcessVideoTask(payload ProcessVideoPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("queue: marshal payload: %w", err)
	}
	return asynq.NewTask(TaskTypeProcessVideo, data), nil
}

// Client enqueues video-processing jobs against a Redis-backed asynq
// queue.
type Client struct {
	client *asynq.Client
}

// NewClient connects to the given Redis address.
func NewClient(redisAddr string) *Client {
	return &Client{client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})}
}

// Enqueue submits one video for processing and returns its task id.
func (c *Client) Enqueue(payload ProcessVideoPayload) (string, error) {
	task, err := NewProcessVideoTask(payload)
	if err != nil {
		return "", err
	}
	info, err := c.client.Enqueue(task)
	if err != nil {
		return "", fmt.Errorf("queue: enqueue: %w", err)
	}
	return info.ID, nil
}

// Close releases the underlying Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Handler processes one video-processing task. It is supplied by the
// caller (the cmd/birdtrack worker command) so this package stays free of
// any dependency on gocv or the rest of birdtrack's core packages.
type Handler func(ctx context.Context, payload ProcessVideoPayload) error

// Server runs a pool of asynq workers against a Redis-backed queue.
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewServer builds a worker pool with the given concurrency.
func NewServer(redisAddr string, concurrency int) *Server {
	return &Server{
		server: asynq.NewServer(
			asynq.RedisClientOpt{Addr: redisAddr},
			asynq.Config{Concurrency: concurrency},
		),
		mux: asynq.NewServeMux(),
	}
}

// Handle registers fn as the handler for process-video tasks.
func (s *Server) Handle(fn Handler) {
	s.mux.HandleFunc(TaskTypeProcessVideo, func(ctx context.Context, t *asynq.Task) error {
		var payload ProcessVideoPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("queue: unmarshal payload: %w", err)
		}
		return fn(ctx, payload)
	})
}

// Run blocks serving tasks until the process receives a shutdown signal.
func (s *Server) Run() error {
	return s.server.Run(s.mux)
}
