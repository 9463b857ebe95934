package birdtrack

import (
	"testing"

	"github.com/corvus-systems/birdtrack/internal/motmetrics"
	"github.com/corvus-systems/birdtrack/internal/scipy"
)

// toIoUBox turns a centroid into a small axis-aligned box so that centroid
// tracks can be scored with the IoU-based MOT accumulator, which expects
// [x_min, y_min, x_max, y_max] boxes rather than points.
func toIoUBox(p Point) []float64 {
	return []float64{
		float64(p.X - 1), float64(p.Y - 1),
		float64(p.X + 1), float64(p.Y + 1),
	}
}

// hungarianIoU adapts the module's own linear-sum-assignment solver to the
// accumulator's expected hungarianFn shape.
func hungarianIoU(distMatrix [][]float64, threshold float64) ([][2]int, []int, []int) {
	assigned, unmatchedRows, unmatchedCols := scipy.LinearSumAssignment(distMatrix, threshold)
	matches := make([][2]int, len(assigned))
	for i, a := range assigned {
		matches[i] = [2]int{a.RowIdx, a.ColIdx}
	}
	return matches, unmatchedRows, unmatchedCols
}

// TestTracker_CrossingTracksProduceNoIDSwitch replays the same parallel
// crossing scenario as TestTracker_CrossingTracksDoNotSwitchIDs, but scores
// the run with the IoU-based MOT accumulator instead of comparing positions
// by hand, exercising it as a genuine consumer rather than leaving it
// reachable only from its own package tests.
func TestTracker_CrossingTracksProduceNoIDSwitch(t *testing.T) {
	tr := NewTracker(legacyConfig())
	acc := motmetrics.NewMOTAccumulator("crossing")

	framesA := []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}, {X: 30, Y: 0}, {X: 40, Y: 0}}
	framesB := []Point{{X: 40, Y: 30}, {X: 30, Y: 30}, {X: 20, Y: 30}, {X: 10, Y: 30}, {X: 0, Y: 30}}

	const gtA, gtB = 0, 1

	for i := range framesA {
		result := tr.Update([]Point{framesA[i], framesB[i]})
		if len(result.Confirmed) != 2 {
			t.Fatalf("frame %d: len(Confirmed) = %d, want 2", i, len(result.Confirmed))
		}

		gtBoxes := [][]float64{toIoUBox(framesA[i]), toIoUBox(framesB[i])}
		gtIDs := []int{gtA, gtB}

		predBoxes := make([][]float64, len(result.Confirmed))
		predIDs := make([]int, len(result.Confirmed))
		for j, track := range result.Confirmed {
			predBoxes[j] = toIoUBox(track.Position)
			predIDs[j] = track.ID
		}

		acc.Update(gtBoxes, gtIDs, predBoxes, predIDs, 0.5, hungarianIoU)
	}

	if acc.NumSwitches != 0 {
		t.Errorf("NumSwitches = %d, want 0 (crossing tracks must not trade IDs)", acc.NumSwitches)
	}
	if acc.NumMatches == 0 {
		t.Errorf("expected at least one IoU match across the run")
	}
}
