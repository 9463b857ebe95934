package birdtrack

// idSequence issues monotonically increasing, never-reused integer IDs for
// one tracker instance. There is deliberately no package-level global
// counter here: tracker state, including ID issuance, is process-local and
// exclusively owned by one pipeline instance, so a cross-instance global
// would let two pipelines running concurrently perturb each other's ID
// sequence.
type idSequence struct {
	next int
}

// nextID returns the next confirmed track ID and advances the sequence.
func (s *idSequence) nextID() int {
	id := s.next
	s.next++
	return id
}
