package birdtrack

import "testing"

func TestSolveAssignment_SimpleMatch(t *testing.T) {
	positions := []Point{{X: 0, Y: 0}, {X: 100, Y: 100}}
	centroids := []Point{{X: 2, Y: 1}, {X: 98, Y: 101}}

	assigned, unmatchedTracks, unmatchedDetections := solveAssignment(positions, centroids, 50)

	if len(assigned) != 2 {
		t.Fatalf("len(assigned) = %d, want 2", len(assigned))
	}
	if len(unmatchedTracks) != 0 || len(unmatchedDetections) != 0 {
		t.Fatalf("expected no unmatched, got tracks=%v detections=%v", unmatchedTracks, unmatchedDetections)
	}

	for _, a := range assigned {
		if a.TrackIdx != a.DetectionIdx {
			t.Errorf("expected identity matching, got track %d -> detection %d", a.TrackIdx, a.DetectionIdx)
		}
	}
}

func TestSolveAssignment_RejectsAtThreshold(t *testing.T) {
	// Distance is exactly 50; max_distance must be a strict upper bound.
	positions := []Point{{X: 0, Y: 0}}
	centroids := []Point{{X: 50, Y: 0}}

	assigned, unmatchedTracks, unmatchedDetections := solveAssignment(positions, centroids, 50)

	if len(assigned) != 0 {
		t.Fatalf("expected no assignment at exactly max_distance, got %v", assigned)
	}
	if len(unmatchedTracks) != 1 || len(unmatchedDetections) != 1 {
		t.Fatalf("expected both sides unmatched, got tracks=%v detections=%v", unmatchedTracks, unmatchedDetections)
	}
}

func TestSolveAssignment_AcceptsJustBelowThreshold(t *testing.T) {
	positions := []Point{{X: 0, Y: 0}}
	centroids := []Point{{X: 49, Y: 0}}

	assigned, _, _ := solveAssignment(positions, centroids, 50)
	if len(assigned) != 1 {
		t.Fatalf("expected one assignment just below max_distance, got %v", assigned)
	}
}

func TestSolveAssignment_PreventsTeleport(t *testing.T) {
	// A track near the origin must not grab a detection far outside
	// max_distance just because no closer candidate exists.
	positions := []Point{{X: 0, Y: 0}}
	centroids := []Point{{X: 1000, Y: 1000}}

	assigned, unmatchedTracks, unmatchedDetections := solveAssignment(positions, centroids, 50)
	if len(assigned) != 0 {
		t.Fatalf("expected no assignment beyond max_distance, got %v", assigned)
	}
	if len(unmatchedTracks) != 1 || len(unmatchedDetections) != 1 {
		t.Fatalf("expected both sides unmatched")
	}
}

func TestSolveAssignment_EmptyInputs(t *testing.T) {
	assigned, unmatchedTracks, unmatchedDetections := solveAssignment(nil, nil, 50)
	if len(assigned) != 0 || len(unmatchedTracks) != 0 || len(unmatchedDetections) != 0 {
		t.Fatalf("expected all empty for empty inputs")
	}

	_, unmatchedTracks, _ = solveAssignment([]Point{{X: 0, Y: 0}}, nil, 50)
	if len(unmatchedTracks) != 1 {
		t.Fatalf("expected one unmatched track when there are no detections")
	}
}

func TestSolveAssignment_GloballyOptimal(t *testing.T) {
	// Track 0 (A) sits distance 1 from detection 0 (X) — the single
	// globally nearest pair. A greedy nearest-first matcher would grab
	// that pair immediately, leaving track 1 (B) only detection 1 (Y) at
	// distance ~4.24, which exceeds max_distance and goes unmatched. The
	// lower-total-cost matching — A to Y (distance 2), B to X (distance
	// 3) — keeps both pairs under the threshold and must be preferred.
	positions := []Point{{X: 0, Y: 0}, {X: 1, Y: 3}}   // A, B
	centroids := []Point{{X: 1, Y: 0}, {X: -2, Y: 0}} // X, Y

	assigned, unmatchedTracks, unmatchedDetections := solveAssignment(positions, centroids, 4)
	if len(assigned) != 2 {
		t.Fatalf("expected a full optimal matching, got %v (unmatched tracks %v, detections %v)",
			assigned, unmatchedTracks, unmatchedDetections)
	}
	for _, a := range assigned {
		if a.TrackIdx == 0 && a.DetectionIdx != 1 {
			t.Errorf("expected A to match Y (index 1), got detection %d", a.DetectionIdx)
		}
		if a.TrackIdx == 1 && a.DetectionIdx != 0 {
			t.Errorf("expected B to match X (index 0), got detection %d", a.DetectionIdx)
		}
	}
}
