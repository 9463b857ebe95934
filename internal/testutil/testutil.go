// Package testutil provides small numeric assertion helpers shared by the
// package-level tests in this module.
package testutil

import (
	"math"
	"testing"
)

// AlmostEqual reports whether actual and expected differ by no more than
// tolerance.
func AlmostEqual(actual, expected, tolerance float64) bool {
	return math.Abs(actual-expected) <= tolerance
}

// AssertAlmostEqual fails the test if actual and expected differ by more
// than tolerance.
func AssertAlmostEqual(t *testing.T, actual, expected, tolerance float64, msg string) {
	t.Helper()
	if !AlmostEqual(actual, expected, tolerance) {
		t.Errorf("%s: expected %.15f, got %.15f (diff: %.15e)", msg, expected, actual, math.Abs(actual-expected))
	}
}
