package birdtrack

import (
	"fmt"
	"image"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// DetectorConfig mirrors the `detection` and `spatial_filter` sections of
// the Configuration record; it is produced by the config package and
// treated here as an opaque, pre-validated value.
type DetectorConfig struct {
	MinContourArea  float64
	MaxContourArea  float64
	BlurKernelSize  int // odd, >= 1
	MorphKernelSize int
	MorphIterations int
	MOG2History     int
	MOG2VarThreshold float64

	SpatialFilterEnabled bool
	HorizonLinePercent   float64 // clamped to [0,1] by the config loader
}

// Detector runs the per-frame detection stage: Gaussian blur, adaptive
// background subtraction, open-then-close morphology, external contour
// extraction, and area/horizon region gating.
//
// A Detector owns a stateful MOG2 background model; it must never be
// shared across videos or goroutines.
type Detector struct {
	cfg DetectorConfig
	log *zap.Logger

	bg   gocv.BackgroundSubtractorMOG2
	kernel gocv.Mat
}

// NewDetector constructs a Detector and its background model and
// morphological structuring element (built once, reused every frame).
func NewDetector(cfg DetectorConfig, log *zap.Logger) (*Detector, error) {
	if cfg.BlurKernelSize < 1 || cfg.BlurKernelSize%2 == 0 {
		return nil, fmt.Errorf("birdtrack: blur_kernel_size must be odd and positive, got %d", cfg.BlurKernelSize)
	}
	if cfg.MorphKernelSize < 1 {
		return nil, fmt.Errorf("birdtrack: morph_kernel_size must be positive, got %d", cfg.MorphKernelSize)
	}
	if cfg.MinContourArea < 0 || cfg.MaxContourArea < cfg.MinContourArea {
		return nil, fmt.Errorf("birdtrack: invalid contour area range [%v,%v]", cfg.MinContourArea, cfg.MaxContourArea)
	}
	if log == nil {
		log = zap.NewNop()
	}

	if cfg.HorizonLinePercent < 0.0 || cfg.HorizonLinePercent > 1.0 {
		log.Warn("horizon_line_percent out of range, clamping to [0,1]",
			zap.Float64("configured", cfg.HorizonLinePercent))
		cfg.HorizonLinePercent = clamp01(cfg.HorizonLinePercent)
	}

	bg := gocv.NewBackgroundSubtractorMOG2WithParams(cfg.MOG2History, cfg.MOG2VarThreshold, false)
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(cfg.MorphKernelSize, cfg.MorphKernelSize))

	return &Detector{cfg: cfg, log: log, bg: bg, kernel: kernel}, nil
}

// Close releases the OpenCV resources owned by the Detector.
func (d *Detector) Close() error {
	if err := d.bg.Close(); err != nil {
		return err
	}
	return d.kernel.Close()
}

func clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// Detect runs the full detection pipeline on one frame: blur, background
// subtraction, morphology, contour extraction, and region filtering.
// It returns the filtered bounding boxes in contour-traversal order — this
// order is the detection index that the Frame Pipeline later joins tracker
// output back to — and writes the cleaned binary mask into dst, which the
// caller owns and must Close.
//
// Internal arithmetic anomalies (degenerate contours) are absorbed locally;
// they simply contribute no detection.
func (d *Detector) Detect(frame gocv.Mat, dst *gocv.Mat) ([]BoundingBox, error) {
	if frame.Empty() {
		return nil, fmt.Errorf("birdtrack: empty frame")
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	ksize := image.Pt(d.cfg.BlurKernelSize, d.cfg.BlurKernelSize)
	gocv.GaussianBlur(frame, &blurred, ksize, 0, 0, gocv.BorderDefault)

	fgMask := gocv.NewMat()
	defer fgMask.Close()
	d.bg.Apply(blurred, &fgMask)

	d.applyMorphology(fgMask, dst)

	boxes := d.filterContours(*dst, frame.Rows())
	return boxes, nil
}

// applyMorphology performs opening (erode, dilate) followed by closing
// (dilate, erode), each repeated MorphIterations times.
func (d *Detector) applyMorphology(mask gocv.Mat, dst *gocv.Mat) {
	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyExWithParams(mask, &opened, gocv.MorphOpen, d.kernel, d.cfg.MorphIterations, gocv.BorderConstant)
	gocv.MorphologyExWithParams(opened, dst, gocv.MorphClose, d.kernel, d.cfg.MorphIterations, gocv.BorderConstant)
}

// filterContours finds external contours on the binary mask and applies
// the area and horizon gates, returning boxes in the extractor's traversal
// order.
func (d *Detector) filterContours(mask gocv.Mat, frameHeight int) []BoundingBox {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	horizonY := frameHeight
	if d.cfg.SpatialFilterEnabled {
		horizonY = int(float64(frameHeight) * d.cfg.HorizonLinePercent)
	}

	boxes := make([]BoundingBox, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)

		area := gocv.ContourArea(contour)
		if area < d.cfg.MinContourArea || area > d.cfg.MaxContourArea {
			continue
		}

		rect := gocv.BoundingRect(contour)
		box := BoundingBox{X: rect.Min.X, Y: rect.Min.Y, W: rect.Dx(), H: rect.Dy()}
		if box.W <= 0 || box.H <= 0 {
			continue
		}

		if d.cfg.SpatialFilterEnabled {
			cy := box.Y + box.H/2
			if cy >= horizonY {
				continue
			}
		}

		boxes = append(boxes, box)
	}

	return boxes
}

// Centroids computes integer centroids for a detection set, preserving
// order — this order is the detection index used to join tracker output
// back to geometry.
func Centroids(boxes []BoundingBox) []Point {
	pts := make([]Point, len(boxes))
	for i, b := range boxes {
		pts[i] = b.Centroid()
	}
	return pts
}
