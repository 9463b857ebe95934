package sink

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/corvus-systems/birdtrack"
)

// Postgres persists the completion record of a batch run, keyed by its
// run id, into a run_results table. It never sees per-frame data — that
// volume belongs in a streaming sink, not a row store. Selected by the
// `run` and `worker` CLI commands; never on the per-frame hot path.
type Postgres struct {
	db    *sql.DB
	runID string
}

// NewPostgres opens dsn and wraps it as a completion-record Sink.
func NewPostgres(dsn, runID string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sink: open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sink: ping postgres: %w", err)
	}
	return &Postgres{db: db, runID: runID}, nil
}

// EnsureSchema creates the run_results table if it does not already exist.
func (s *Postgres) EnsureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS run_results (
			run_id TEXT PRIMARY KEY,
			total_frames INTEGER NOT NULL,
			processed_frames INTEGER NOT NULL,
			max_simultaneous_birds INTEGER NOT NULL,
			total_unique_birds INTEGER NOT NULL,
			fps DOUBLE PRECISION NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			error TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

func (s *Postgres) EmitFrame(birdtrack.FrameRecord) error { return nil }

func (s *Postgres) EmitCompletion(rec birdtrack.CompletionRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO run_results (run_id, total_frames, processed_frames, max_simultaneous_birds, total_unique_birds, fps, width, height)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO UPDATE SET
			processed_frames = EXCLUDED.processed_frames,
			max_simultaneous_birds = EXCLUDED.max_simultaneous_birds,
			total_unique_birds = EXCLUDED.total_unique_birds`,
		s.runID, rec.TotalFrames, rec.ProcessedFrames, rec.MaxSimultaneousBirds, rec.TotalUniqueBirds, rec.FPS, rec.Width, rec.Height)
	return err
}

func (s *Postgres) EmitError(runErr error) error {
	payload, _ := json.Marshal(runErr.Error())
	_, err := s.db.Exec(`
		INSERT INTO run_results (run_id, total_frames, processed_frames, max_simultaneous_birds, total_unique_birds, fps, width, height, error)
		VALUES ($1, 0, 0, 0, 0, 0, 0, 0, $2)
		ON CONFLICT (run_id) DO UPDATE SET error = EXCLUDED.error`,
		s.runID, string(payload))
	return err
}

func (s *Postgres) Close() error {
	return s.db.Close()
}
