/*
Package birdtrack provides a real-time, CPU-only video analytics core for
detecting small moving objects against a mostly uniform background and
tracking them across frames with stable identities.

The package is organized around a per-frame pipeline:

	frame -> blur -> foreground mask -> morphology -> contours ->
	    filtered boxes -> centroids -> tracker update -> frame record

# Detection

Detector wraps Gaussian blur, MOG2-style adaptive background subtraction,
open-then-close morphology, external contour extraction, and area/horizon
region gating (see detection.go).

# Tracking

Tracker implements a two-phase centroid tracker: a probationary phase that
suppresses transient false positives and a confirmed phase whose IDs are
monotonic and never reused (see tracker.go, track.go). Association between
existing tracks and new detections uses a minimum-cost bipartite matching
(internal/scipy), not nearest-neighbor greedy matching.

# Pipeline

Pipeline binds a Detector and a Tracker together, pulls frames from a
FrameSource, and emits one FrameRecord per frame carrying confirmed track
state and the mapping back to originating detection indices (see
pipeline.go, frame_source.go).

The detector and tracker hold process-local mutable state owned exclusively
by one Pipeline instance; nothing here is safe to share across videos.
Multiple Pipeline instances may run concurrently on disjoint videos without
any synchronization between them.
*/
package birdtrack
