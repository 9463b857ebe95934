// Package metrics exposes the Prometheus gauges and counters that mirror
// a running pipeline's own emitted statistics. It never computes tracking
// state itself — it only republishes the numbers the Frame Pipeline
// already produced, per run id.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/corvus-systems/birdtrack"
)

var (
	currentBirds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "birdtrack_current_birds",
		Help: "Number of confirmed bird tracks in the current frame.",
	}, []string{"run_id"})

	totalBirdsSeen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "birdtrack_total_birds_seen",
		Help: "Cumulative count of unique confirmed bird tracks.",
	}, []string{"run_id"})

	framesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "birdtrack_frames_processed_total",
		Help: "Number of frames processed, labeled by run id.",
	}, []string{"run_id"})
)

// Observe updates the gauges/counters for runID from one frame's
// statistics. Call it once per emitted FrameRecord.
func Observe(runID string, stats birdtrack.FrameStats) {
	currentBirds.WithLabelValues(runID).Set(float64(stats.CurrentBirds))
	totalBirdsSeen.WithLabelValues(runID).Set(float64(stats.TotalBirds))
	framesProcessed.WithLabelValues(runID).Inc()
}

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Sink decorates another Sink, republishing every frame's statistics to
// Prometheus before forwarding the call. It holds no tracking state of
// its own.
type Sink struct {
	inner birdtrack.Sink
	runID string
}

// Wrap returns a Sink that observes metrics for runID and forwards every
// call to inner.
func Wrap(inner birdtrack.Sink, runID string) *Sink {
	return &Sink{inner: inner, runID: runID}
}

func (s *Sink) EmitFrame(rec birdtrack.FrameRecord) error {
	Observe(s.runID, rec.Stats)
	return s.inner.EmitFrame(rec)
}

func (s *Sink) EmitCompletion(rec birdtrack.CompletionRecord) error {
	return s.inner.EmitCompletion(rec)
}

func (s *Sink) EmitError(err error) error {
	return s.inner.EmitError(err)
}

func (s *Sink) Close() error {
	return s.inner.Close()
}
