// Package pipeline sequences the per-frame meter reading stages.
//
// For each frame, Process runs:
//
//	Detect -> (no meters: done) -> for each meter {Crop -> Letterbox -> Segment} -> Read
//
// Meters are processed independently. A meter whose crop, resize or
// segmentation fails is kept in the result with its error set; the remaining
// meters are still processed. Results are always in detector order so crops,
// masks and readings stay index aligned.
//
// A Pipeline holds its detector, segmenter and reader by reference. It is
// built once by the caller, used for every frame, and is not safe for
// concurrent Process calls unless its collaborators are.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/meter-reader/internal/detection"
	"github.com/ironsheep/meter-reader/internal/imaging"
	"github.com/ironsheep/meter-reader/internal/reading"
	"github.com/ironsheep/meter-reader/internal/segment"
)

// ErrReading wraps failures of the reading computation.
var ErrReading = errors.New("reading computation failed")

// Segmenter decodes a letterboxed crop into a categorical mask.
type Segmenter interface {
	Segment(ctx context.Context, img image.Image) (*segment.Mask, error)
}

// Default pipeline parameters.
const (
	DefaultDetectorInputSize = 320
	DefaultConfThreshold     = 0.4
	DefaultNMSThreshold      = 0.3
)

// Option configures a Pipeline.
type Option func(*Pipeline) error

// Pipeline runs detection, segmentation and reading for one frame at a time.
type Pipeline struct {
	detector  detection.Detector
	segmenter Segmenter
	reader    reading.Reader
	log       logrus.FieldLogger

	detectorSize  int
	confThreshold float64
	nmsThreshold  float64
	targetSize    int
	padColor      color.Color
}

// New creates a pipeline. The detector and segmenter are required.
func New(detector detection.Detector, segmenter Segmenter, options ...Option) (*Pipeline, error) {
	if detector == nil {
		return nil, fmt.Errorf("detector is required")
	}
	if segmenter == nil {
		return nil, fmt.Errorf("segmenter is required")
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	p := &Pipeline{
		detector:      detector,
		segmenter:     segmenter,
		log:           discard,
		detectorSize:  DefaultDetectorInputSize,
		confThreshold: DefaultConfThreshold,
		nmsThreshold:  DefaultNMSThreshold,
		targetSize:    segment.DefaultTargetSize,
		padColor:      imaging.DefaultPadColor,
	}
	for _, option := range options {
		if err := option(p); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return p, nil
}

// WithReader sets the reading computation. Without one, meters get no reading.
func WithReader(r reading.Reader) Option {
	return func(p *Pipeline) error {
		p.reader = r
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Pipeline) error {
		if log == nil {
			return fmt.Errorf("logger is nil")
		}
		p.log = log
		return nil
	}
}

// WithDetectorInputSize sets the square size frames are resized to for detection.
func WithDetectorInputSize(size int) Option {
	return func(p *Pipeline) error {
		if size <= 0 {
			return fmt.Errorf("detector input size must be positive, got %d", size)
		}
		p.detectorSize = size
		return nil
	}
}

// WithThresholds sets the detector confidence and NMS thresholds.
func WithThresholds(conf, nms float64) Option {
	return func(p *Pipeline) error {
		if conf < 0 || conf > 1 || nms < 0 || nms > 1 {
			return fmt.Errorf("thresholds must be in [0,1], got conf=%v nms=%v", conf, nms)
		}
		p.confThreshold = conf
		p.nmsThreshold = nms
		return nil
	}
}

// WithTargetSize sets the letterbox size for segmentation.
func WithTargetSize(size int) Option {
	return func(p *Pipeline) error {
		if size <= 0 {
			return fmt.Errorf("target size must be positive, got %d", size)
		}
		p.targetSize = size
		return nil
	}
}

// WithPadColor sets the letterbox fill color.
func WithPadColor(c color.Color) Option {
	return func(p *Pipeline) error {
		p.padColor = c
		return nil
	}
}

// Process runs every stage for one frame.
//
// A frame with no detected meters yields an empty result and no error. A
// detector failure is returned as an error. Per-meter failures are recorded
// on the corresponding MeterResult. If the reading computation fails, the
// result is still returned together with an error wrapping ErrReading.
func (p *Pipeline) Process(ctx context.Context, frame image.Image) (*Result, error) {
	start := time.Now()
	res := &Result{FrameID: uuid.New()}
	log := p.log.WithField("frame_id", res.FrameID.String())

	if frame == nil || frame.Bounds().Empty() {
		return nil, fmt.Errorf("process: %w", imaging.ErrInvalidInput)
	}

	objs, err := p.detect(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	log.WithField("objects", len(objs)).Info("detection complete")

	if len(objs) == 0 {
		res.Elapsed = time.Since(start)
		log.Info("no meters found")
		return res, nil
	}

	res.Meters = make([]MeterResult, len(objs))
	for i, obj := range objs {
		res.Meters[i] = p.processMeter(ctx, frame, i, obj, log)
	}

	err = p.read(ctx, res, log)
	res.Elapsed = time.Since(start)
	return res, err
}

// detect resizes the frame for the detector and maps the detections back.
func (p *Pipeline) detect(ctx context.Context, frame image.Image) ([]detection.Object, error) {
	resized, roi := detection.ResizeUniform(frame, p.detectorSize)
	objs, err := p.detector.Detect(ctx, resized, p.confThreshold, p.nmsThreshold)
	if err != nil {
		return nil, err
	}
	b := frame.Bounds()
	mapped := detection.ConvertBoxes(objs, roi, b.Dx(), b.Dy())
	for i := range mapped {
		mapped[i].Rect = mapped[i].Rect.Add(b.Min)
	}
	return mapped, nil
}

func (p *Pipeline) processMeter(ctx context.Context, frame image.Image, index int, obj detection.Object, log logrus.FieldLogger) MeterResult {
	m := MeterResult{Index: index, Object: obj}
	mlog := log.WithField("meter", index)

	crop, err := imaging.CropBox(frame, index, obj.Box(), mlog)
	if err != nil {
		return m.fail(mlog, "crop", err)
	}

	lb, err := imaging.Letterbox(crop, p.targetSize, p.padColor)
	if err != nil {
		return m.fail(mlog, "resize", err)
	}
	m.Resized = lb.Image
	m.Scale = lb.Scale
	m.Offset = lb.Offset
	mlog.WithField("scale", lb.Scale).Debug("letterboxed")

	mask, err := p.segmenter.Segment(ctx, lb.Image)
	if err != nil {
		return m.fail(mlog, "segment", err)
	}
	m.Mask = mask
	mlog.WithFields(logrus.Fields{
		"pointer_px": mask.Count(segment.Pointer),
		"scale_px":   mask.Count(segment.Scale),
	}).Debug("segmented")
	return m
}

// read runs the reading computation over the successful meters and scatters
// the values back by index.
func (p *Pipeline) read(ctx context.Context, res *Result, log logrus.FieldLogger) error {
	if p.reader == nil {
		return nil
	}
	idx := res.okIndices()
	if len(idx) == 0 {
		return nil
	}

	values, err := p.reader.Read(ctx, res.Crops(), res.Masks())
	if err != nil {
		log.WithError(err).Error("reading computation failed")
		return fmt.Errorf("%w: %w", ErrReading, err)
	}
	if len(values) != len(idx) {
		return fmt.Errorf("%w: got %d readings for %d meters", ErrReading, len(values), len(idx))
	}

	for k, i := range idx {
		res.Meters[i].Reading = values[k]
		res.Meters[i].HasReading = true
		log.WithFields(logrus.Fields{"meter": i, "reading": values[k]}).Info("meter read")
	}
	return nil
}
