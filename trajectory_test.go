package birdtrack

import "testing"

func TestTrajectoryRing_FIFOCapacity(t *testing.T) {
	ring := newTrajectoryRing(3)
	for i := 0; i < 5; i++ {
		ring.Push(Point{X: i, Y: 0})
	}

	if ring.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", ring.Len())
	}

	got := ring.Slice()
	want := []Point{{X: 2}, {X: 3}, {X: 4}}
	for i, p := range want {
		if got[i] != p {
			t.Errorf("Slice()[%d] = %v, want %v", i, got[i], p)
		}
	}
}

func TestTrajectoryRing_ZeroCapacity(t *testing.T) {
	ring := newTrajectoryRing(0)
	ring.Push(Point{X: 1, Y: 1})
	if ring.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", ring.Len())
	}
}

func TestTrajectoryRing_CumulativePathLength(t *testing.T) {
	ring := newTrajectoryRing(10)
	ring.Push(Point{X: 0, Y: 0})
	ring.Push(Point{X: 3, Y: 0})
	ring.Push(Point{X: 3, Y: 4})

	got := ring.cumulativePathLength()
	want := 7.0 // 3 + 4
	if got != want {
		t.Errorf("cumulativePathLength() = %v, want %v", got, want)
	}
}

func TestTrajectoryRing_CumulativePathLengthSingle(t *testing.T) {
	ring := newTrajectoryRing(10)
	ring.Push(Point{X: 5, Y: 5})
	if got := ring.cumulativePathLength(); got != 0 {
		t.Errorf("cumulativePathLength() = %v, want 0", got)
	}
}
