package birdtrack

// maxTrajectoryLength is the fixed capacity of a confirmed track's
// trajectory FIFO.
const maxTrajectoryLength = 30

// probationaryMaxDisappeared is the small internal miss-count threshold
// past which a probationary track is dropped silently. This is
// intentionally not configurable: it is a small internal threshold by
// design, not a tuning knob exposed through the Configuration record.
const probationaryMaxDisappeared = 5

// Track is a confirmed object identity, the only kind of track ever
// visible outside the tracker.
type Track struct {
	// ID is monotonically increasing and never reused within a run.
	ID int
	// Position is the current centroid.
	Position Point
	// MissCount is the number of consecutive frames since the last
	// successful match.
	MissCount int
}

// TrackerConfig mirrors the `tracking` and `temporal_filter` sections of
// the Configuration record.
type TrackerConfig struct {
	MaxDisappeared int
	MaxDistance    float64

	TemporalFilterEnabled bool
	MinConfirmFrames      int
	MinMoveDistance       float64
}

// confirmedSet is the struct-of-arrays backing store for confirmed tracks.
// Hot paths (confirmed matching, aging) iterate every track every frame, so
// parallel slices keep that iteration cache-friendly instead of chasing
// pointers through a map[int]*Track.
type confirmedSet struct {
	id   []int
	pos  []Point
	miss []int
	traj []*trajectoryRing
}

func (s *confirmedSet) len() int { return len(s.id) }

func (s *confirmedSet) add(id int, pos Point) {
	s.id = append(s.id, id)
	s.pos = append(s.pos, pos)
	s.miss = append(s.miss, 0)
	ring := newTrajectoryRing(maxTrajectoryLength)
	ring.Push(pos)
	s.traj = append(s.traj, ring)
}

// removeAt deletes the track at index i, preserving the relative order of
// the remaining tracks. First-confirmation order is a guarantee callers
// rely on, so this cannot be a swap-remove.
func (s *confirmedSet) removeAt(i int) {
	s.id = append(s.id[:i], s.id[i+1:]...)
	s.pos = append(s.pos[:i], s.pos[i+1:]...)
	s.miss = append(s.miss[:i], s.miss[i+1:]...)
	s.traj = append(s.traj[:i], s.traj[i+1:]...)
}

// probationarySet is the struct-of-arrays backing store for probationary
// candidates, invisible externally.
type probationarySet struct {
	pid            []int
	pos            []Point
	initial        []Point
	framesObserved []int
	miss           []int
	path           []*trajectoryRing
	minConfirm     int
}

func (s *probationarySet) len() int { return len(s.pid) }

func (s *probationarySet) add(pid int, pos Point) {
	s.pid = append(s.pid, pid)
	s.pos = append(s.pos, pos)
	s.initial = append(s.initial, pos)
	s.framesObserved = append(s.framesObserved, 1)
	s.miss = append(s.miss, 0)
	ring := newTrajectoryRing(s.minConfirm)
	ring.Push(pos)
	s.path = append(s.path, ring)
}

func (s *probationarySet) removeAt(i int) {
	s.pid = append(s.pid[:i], s.pid[i+1:]...)
	s.pos = append(s.pos[:i], s.pos[i+1:]...)
	s.initial = append(s.initial[:i], s.initial[i+1:]...)
	s.framesObserved = append(s.framesObserved[:i], s.framesObserved[i+1:]...)
	s.miss = append(s.miss[:i], s.miss[i+1:]...)
	s.path = append(s.path[:i], s.path[i+1:]...)
}

// readyForPromotion reports whether candidate i has satisfied the
// promotion rule: observed at least MinConfirmFrames frames, and either
// cumulative path length or net displacement has reached MinMoveDistance.
func (s *probationarySet) readyForPromotion(i int, minMoveDistance float64) bool {
	if s.framesObserved[i] < s.minConfirm {
		return false
	}
	cumulative := s.path[i].cumulativePathLength()
	net := float64(0)
	net = distFloat(float64(s.pos[i].X), float64(s.pos[i].Y), float64(s.initial[i].X), float64(s.initial[i].Y))
	return cumulative >= minMoveDistance || net >= minMoveDistance
}

// longEnoughToFail reports whether candidate i has been observed long
// enough that, having failed readyForPromotion, it must now be dropped
// silently rather than continuing as probationary.
func (s *probationarySet) longEnoughToFail(i int) bool {
	return s.framesObserved[i] >= s.minConfirm
}
