package birdtrack

// UpdateResult is the output of one Tracker.Update call: the current
// confirmed tracks in first-confirmation order, the mapping from
// confirmed track ID back to the detection index it matched or was
// promoted from this frame, and the running statistics for the frame.
type UpdateResult struct {
	Confirmed      []Track
	DetectionIndex map[int]int // track ID -> index into this frame's detections; absent if carried over disappeared
	CurrentBirds   int
	TotalBirds     int
}

// Tracker implements a two-phase centroid tracker: a probationary phase
// that suppresses transient false positives, and a confirmed phase whose
// IDs are monotonic and never reused. Association uses a minimum-cost
// assignment solver — the tracker is intentionally appearance-blind,
// matching on centroid geometry alone.
//
// A Tracker is process-local mutable state exclusively owned by one
// Pipeline instance; it must never be shared across videos.
type Tracker struct {
	cfg TrackerConfig

	confirmed    confirmedSet
	probationary probationarySet

	ids            idSequence
	nextPID        int
	totalBirdsSeen int
}

// NewTracker constructs a Tracker from its configuration.
func NewTracker(cfg TrackerConfig) *Tracker {
	return &Tracker{
		cfg:          cfg,
		probationary: probationarySet{minConfirm: cfg.MinConfirmFrames},
	}
}

// Update advances the tracker by one frame given this frame's detection
// centroids (in detection-index order): confirmed tracks are matched
// first, then probationary candidates are matched against what's left,
// every unmatched probationary candidate ages unconditionally, and any
// detection still unclaimed spawns a new probationary candidate. Update
// always returns a fully consistent result; a degenerate empty detection
// set simply contributes no matches for this frame.
func (t *Tracker) Update(centroids []Point) UpdateResult {
	detectionIndex := make(map[int]int)

	usedDetections := make(map[int]bool, len(centroids))

	// Phase A: confirmed tracks vs the full detection set.
	if t.confirmed.len() > 0 {
		assigned, unmatchedTracks, _ := solveAssignment(t.confirmed.pos, centroids, t.cfg.MaxDistance)

		for _, a := range assigned {
			t.confirmed.pos[a.TrackIdx] = centroids[a.DetectionIdx]
			t.confirmed.miss[a.TrackIdx] = 0
			t.confirmed.traj[a.TrackIdx].Push(centroids[a.DetectionIdx])
			detectionIndex[t.confirmed.id[a.TrackIdx]] = a.DetectionIdx
			usedDetections[a.DetectionIdx] = true
		}

		removeIdx := make([]int, 0)
		for _, row := range unmatchedTracks {
			t.confirmed.miss[row]++
			if t.confirmed.miss[row] > t.cfg.MaxDisappeared {
				removeIdx = append(removeIdx, row)
			}
		}
		t.removeConfirmedDescending(removeIdx)
	}

	remaining := make([]int, 0, len(centroids))
	for i := range centroids {
		if !usedDetections[i] {
			remaining = append(remaining, i)
		}
	}

	if !t.cfg.TemporalFilterEnabled {
		// Legacy behavior: unmatched detections immediately become
		// confirmed tracks with freshly issued ids, skipping probation
		// entirely.
		for _, idx := range remaining {
			t.registerConfirmed(centroids[idx], idx, detectionIndex)
		}
		return t.result(detectionIndex)
	}

	// Phase B: probationary tracks vs the remaining detections.
	matchedProb := make(map[int]bool)
	usedRemaining := make(map[int]bool)

	if t.probationary.len() > 0 && len(remaining) > 0 {
		remainingCentroids := make([]Point, len(remaining))
		for i, idx := range remaining {
			remainingCentroids[i] = centroids[idx]
		}

		assigned, _, _ := solveAssignment(t.probationary.pos, remainingCentroids, t.cfg.MaxDistance)

		promoteIdx := make([]int, 0)
		dropIdx := make([]int, 0)

		for _, a := range assigned {
			actualDetIdx := remaining[a.DetectionIdx]
			pid := t.probationary.pid[a.TrackIdx]

			t.probationary.pos[a.TrackIdx] = centroids[actualDetIdx]
			t.probationary.miss[a.TrackIdx] = 0
			t.probationary.framesObserved[a.TrackIdx]++
			t.probationary.path[a.TrackIdx].Push(centroids[actualDetIdx])

			// matchedProb is keyed by the candidate's stable pid, not its
			// current slice index: removeProbationaryDescending below
			// reshuffles indices, and Phase C reads this map against the
			// post-removal index space.
			matchedProb[pid] = true
			// usedRemaining is keyed by actual detection index (a value
			// drawn from centroids), not by position within remaining —
			// Phase D below checks it against actual detection indices.
			usedRemaining[actualDetIdx] = true

			switch {
			case t.probationary.readyForPromotion(a.TrackIdx, t.cfg.MinMoveDistance):
				newID := t.ids.nextID()
				t.confirmed.add(newID, t.probationary.pos[a.TrackIdx])
				t.totalBirdsSeen++
				detectionIndex[newID] = actualDetIdx
				promoteIdx = append(promoteIdx, a.TrackIdx)
			case t.probationary.longEnoughToFail(a.TrackIdx):
				dropIdx = append(dropIdx, a.TrackIdx)
			}
		}

		removeIdx := append(promoteIdx, dropIdx...)
		t.removeProbationaryDescending(removeIdx)
	}

	// Phase C: age every probationary track not matched this frame. This
	// runs unconditionally — independent of whether Phase B ran at all —
	// otherwise stale probationary entries leak forever. matchedProb is
	// keyed by pid, so this check remains correct even though the Phase-B
	// removal above already shifted everyone's slice index.
	removeAged := make([]int, 0)
	for i := 0; i < t.probationary.len(); i++ {
		if matchedProb[t.probationary.pid[i]] {
			continue
		}
		t.probationary.miss[i]++
		if t.probationary.miss[i] > probationaryMaxDisappeared {
			removeAged = append(removeAged, i)
		}
	}
	t.removeProbationaryDescending(removeAged)

	// Phase D: any detection still unclaimed spawns a new probationary
	// track.
	for _, idx := range remaining {
		if usedRemaining[idx] {
			continue
		}
		t.probationary.add(t.nextPID, centroids[idx])
		t.nextPID++
	}

	return t.result(detectionIndex)
}

func (t *Tracker) registerConfirmed(pos Point, detIdx int, detectionIndex map[int]int) {
	newID := t.ids.nextID()
	t.confirmed.add(newID, pos)
	t.totalBirdsSeen++
	detectionIndex[newID] = detIdx
}

func (t *Tracker) result(detectionIndex map[int]int) UpdateResult {
	confirmed := make([]Track, t.confirmed.len())
	for i := range confirmed {
		confirmed[i] = Track{ID: t.confirmed.id[i], Position: t.confirmed.pos[i], MissCount: t.confirmed.miss[i]}
	}
	return UpdateResult{
		Confirmed:      confirmed,
		DetectionIndex: detectionIndex,
		CurrentBirds:   t.confirmed.len(),
		TotalBirds:     t.totalBirdsSeen,
	}
}

// Trajectory returns the stored centroid history (oldest first) for a
// confirmed track, or nil if the id is unknown.
func (t *Tracker) Trajectory(id int) []Point {
	for i, tid := range t.confirmed.id {
		if tid == id {
			return t.confirmed.traj[i].Slice()
		}
	}
	return nil
}

// removeConfirmedDescending removes the given indices (any order) from the
// confirmed set, applying them highest-index-first so earlier indices
// stay valid across the sequence of removals.
func (t *Tracker) removeConfirmedDescending(idx []int) {
	sortInts(idx)
	for i := len(idx) - 1; i >= 0; i-- {
		t.confirmed.removeAt(idx[i])
	}
}

func (t *Tracker) removeProbationaryDescending(idx []int) {
	sortInts(idx)
	for i := len(idx) - 1; i >= 0; i-- {
		// Guard against (harmless) duplicate indices landing in the same
		// removal batch.
		if i > 0 && idx[i] == idx[i-1] {
			continue
		}
		t.probationary.removeAt(idx[i])
	}
}
