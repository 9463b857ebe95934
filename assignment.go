package birdtrack

import (
	"sort"

	"github.com/corvus-systems/birdtrack/internal/scipy"
	"gonum.org/v1/gonum/mat"
)

// Assignment is one accepted (track, detection) pair produced by the
// assignment solver.
type Assignment struct {
	TrackIdx     int
	DetectionIdx int
}

// solveAssignment builds the MxN Euclidean cost matrix between existing
// positions and new centroids and runs a minimum-cost one-to-one matching.
// Only pairs with cost strictly below maxDistance are accepted; everything
// else is reported unmatched on both sides. This is what prevents
// "teleport" assignments when a real object disappears and an unrelated
// one appears far away.
//
// Ties among equal-cost assignments are broken deterministically: the
// underlying solver is deterministic given the same input ordering, and
// its output is taken as is. No further tie-break is applied.
func solveAssignment(positions, centroids []Point, maxDistance float64) (assigned []Assignment, unmatchedTracks, unmatchedDetections []int) {
	m := len(positions)
	n := len(centroids)

	if m == 0 || n == 0 {
		unmatchedTracks = rangeSlice(m)
		unmatchedDetections = rangeSlice(n)
		return nil, unmatchedTracks, unmatchedDetections
	}

	costMatrix := buildCostMatrix(positions, centroids)

	// maxCost is an exclusive threshold here, but LinearSumAssignment
	// accepts cost <= maxCost; re-check strictly afterward so boundary-
	// equal-cost pairs land in the unmatched sets instead of accepted.
	assignments, unmatchedRows, unmatchedCols := scipy.LinearSumAssignment(costMatrix, maxDistance)

	accepted := make([]Assignment, 0, len(assignments))
	rejectedRows := map[int]bool{}
	rejectedCols := map[int]bool{}
	for _, a := range assignments {
		if costMatrix[a.RowIdx][a.ColIdx] < maxDistance {
			accepted = append(accepted, Assignment{TrackIdx: a.RowIdx, DetectionIdx: a.ColIdx})
		} else {
			rejectedRows[a.RowIdx] = true
			rejectedCols[a.ColIdx] = true
		}
	}

	unmatchedTracks = append(unmatchedRows, keysSorted(rejectedRows)...)
	unmatchedDetections = append(unmatchedCols, keysSorted(rejectedCols)...)

	sortInts(unmatchedTracks)
	sortInts(unmatchedDetections)

	return accepted, unmatchedTracks, unmatchedDetections
}

// buildCostMatrix computes the MxN matrix of Euclidean distances between
// positions (rows) and centroids (columns) using the shared scipy.Cdist
// port, keeping the geometry math identical to the assignment solver used
// elsewhere in this module.
func buildCostMatrix(positions, centroids []Point) [][]float64 {
	xa := mat.NewDense(len(positions), 2, nil)
	for i, p := range positions {
		xa.Set(i, 0, float64(p.X))
		xa.Set(i, 1, float64(p.Y))
	}
	xb := mat.NewDense(len(centroids), 2, nil)
	for i, p := range centroids {
		xb.Set(i, 0, float64(p.X))
		xb.Set(i, 1, float64(p.Y))
	}

	dense := scipy.Cdist(xa, xb, "euclidean")

	rows, cols := dense.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			out[i][j] = dense.At(i, j)
		}
	}
	return out
}

func rangeSlice(n int) []int {
	if n == 0 {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func keysSorted(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sortInts(out)
	return out
}

func sortInts(s []int) {
	sort.Ints(s)
}
