package birdtrack

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"gocv.io/x/gocv"
	"golang.org/x/term"
	"gopkg.in/ini.v1"
)

// FrameSource is the abstract decoded-frame provider the Pipeline pulls
// from. The demuxer/decoder it wraps is treated as an external
// collaborator: FrameSource only promises dimensions, frame rate, a
// (possibly unknown) total frame count, and a pull operation.
type FrameSource interface {
	// Width and Height report frame dimensions in pixels.
	Width() int
	Height() int
	// FPS reports the source's frame rate.
	FPS() float64
	// FrameCount reports the total number of frames, or 0 if unknown
	// (e.g. a live camera).
	FrameCount() int
	// Next returns the next BGR frame. ok is false at end-of-stream; the
	// caller must not call Next again afterward. The returned Mat is
	// owned by the caller, who must Close it.
	Next() (frame gocv.Mat, ok bool)
	// Close releases the underlying capture device or file handles.
	Close() error
}

// VideoFileSource reads frames from a video file or camera device via
// gocv.VideoCapture, reporting progress on stderr through a progress bar
// sized to the current terminal.
type VideoFileSource struct {
	capture *gocv.VideoCapture

	width, height int
	fps           float64
	frameCount    int

	label       string
	frameCursor int
	bar         *progressbar.ProgressBar
}

// OpenVideoFile opens a video file as a FrameSource. path is expanded for a
// leading "~".
func OpenVideoFile(path, label string) (*VideoFileSource, error) {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	capture, err := gocv.OpenVideoCapture(path)
	if err != nil {
		return nil, fmt.Errorf("birdtrack: open video file %s: %w", path, err)
	}

	src := &VideoFileSource{
		capture: capture,
		width:   int(capture.Get(gocv.VideoCaptureFrameWidth)),
		height:  int(capture.Get(gocv.VideoCaptureFrameHeight)),
		fps:     capture.Get(gocv.VideoCaptureFPS),

		frameCount: int(capture.Get(gocv.VideoCaptureFrameCount)),
		label:      label,
	}
	src.bar = newProgressBar(src.frameCount, describeSource(label, filepath.Base(path)))
	return src, nil
}

// OpenCamera opens a live camera device as a FrameSource. The frame count
// is unknown, so the progress bar reports elapsed frames without an ETA.
func OpenCamera(deviceID int, label string) (*VideoFileSource, error) {
	capture, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("birdtrack: open camera %d: %w", deviceID, err)
	}

	src := &VideoFileSource{
		capture: capture,
		width:   int(capture.Get(gocv.VideoCaptureFrameWidth)),
		height:  int(capture.Get(gocv.VideoCaptureFrameHeight)),
		fps:     capture.Get(gocv.VideoCaptureFPS),
		label:   label,
	}
	src.bar = newProgressBar(0, describeSource(label, fmt.Sprintf("camera %d", deviceID)))
	return src, nil
}

func (s *VideoFileSource) Width() int        { return s.width }
func (s *VideoFileSource) Height() int       { return s.height }
func (s *VideoFileSource) FPS() float64      { return s.fps }
func (s *VideoFileSource) FrameCount() int   { return s.frameCount }

func (s *VideoFileSource) Next() (gocv.Mat, bool) {
	frame := gocv.NewMat()
	if ok := s.capture.Read(&frame); !ok || frame.Empty() {
		frame.Close()
		return gocv.NewMat(), false
	}
	s.frameCursor++
	if s.bar != nil {
		_ = s.bar.Add(1)
	}
	return frame, true
}

func (s *VideoFileSource) Close() error {
	if s.bar != nil {
		_ = s.bar.Close()
	}
	return s.capture.Close()
}

// ImageSequenceSource reads a directory of numbered frame images described
// by an MOT-Challenge-style seqinfo.ini file — a frame source the original
// detection/tracking scripts never supported, useful for replaying the
// annotated evaluation sequences used in testing.
type ImageSequenceSource struct {
	dir   string
	imDir string
	imExt string

	length int
	width  int
	height int
	fps    float64

	cursor int
}

// OpenImageSequence reads seqinfo.ini from dir and prepares to stream its
// frames in order.
func OpenImageSequence(dir string) (*ImageSequenceSource, error) {
	cfg, err := ini.Load(filepath.Join(dir, "seqinfo.ini"))
	if err != nil {
		return nil, fmt.Errorf("birdtrack: load seqinfo.ini in %s: %w", dir, err)
	}

	section := cfg.Section("Sequence")
	src := &ImageSequenceSource{
		dir:    dir,
		length: section.Key("seqLength").MustInt(0),
		width:  section.Key("imWidth").MustInt(0),
		height: section.Key("imHeight").MustInt(0),
		fps:    float64(section.Key("frameRate").MustInt(30)),
		imExt:  section.Key("imExt").MustString(".jpg"),
		imDir:  section.Key("imDir").MustString("img1"),
	}
	if src.length == 0 || src.width == 0 || src.height == 0 {
		return nil, fmt.Errorf("birdtrack: seqinfo.ini in %s missing required fields", dir)
	}
	return src, nil
}

func (s *ImageSequenceSource) Width() int      { return s.width }
func (s *ImageSequenceSource) Height() int     { return s.height }
func (s *ImageSequenceSource) FPS() float64    { return s.fps }
func (s *ImageSequenceSource) FrameCount() int { return s.length }

func (s *ImageSequenceSource) Next() (gocv.Mat, bool) {
	for {
		if s.cursor >= s.length {
			return gocv.NewMat(), false
		}
		s.cursor++
		path := filepath.Join(s.dir, s.imDir, fmt.Sprintf("%06d%s", s.cursor, s.imExt))
		frame := gocv.IMRead(path, gocv.IMReadColor)
		if frame.Empty() {
			frame.Close()
			continue // a missing/corrupt frame is skipped, not fatal
		}
		return frame, true
	}
}

func (s *ImageSequenceSource) Close() error { return nil }

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	length := total
	if length == 0 {
		length = -1
	}
	return progressbar.NewOptions(length,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("fps"),
		progressbar.OptionSetPredictTime(total != 0),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func describeSource(label, name string) string {
	desc := name
	if label != "" {
		desc = fmt.Sprintf("%s - %s", name, label)
	}
	cols, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || cols <= 0 {
		cols = 80
	}
	maxLen := cols - 25
	if len(desc) > maxLen && maxLen > 10 {
		desc = desc[:maxLen/2-2] + " ... " + desc[len(desc)-(maxLen/2-3):]
	}
	return desc
}
