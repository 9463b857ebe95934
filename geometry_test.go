package birdtrack

import "testing"

func TestBoundingBox_Centroid(t *testing.T) {
	b := BoundingBox{X: 10, Y: 20, W: 6, H: 4}
	got := b.Centroid()
	want := Point{X: 13, Y: 22}
	if got != want {
		t.Errorf("Centroid() = %v, want %v", got, want)
	}
}

func TestPoint_Dist(t *testing.T) {
	a := Point{X: 0, Y: 0}
	b := Point{X: 3, Y: 4}
	if got := a.Dist(b); got != 5 {
		t.Errorf("Dist() = %v, want 5", got)
	}
}
