package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/meter-reader/internal/config"
	"github.com/ironsheep/meter-reader/internal/detection"
	"github.com/ironsheep/meter-reader/internal/imaging"
	"github.com/ironsheep/meter-reader/internal/logging"
	"github.com/ironsheep/meter-reader/internal/pipeline"
	"github.com/ironsheep/meter-reader/internal/reading"
	"github.com/ironsheep/meter-reader/internal/segment"
	"github.com/ironsheep/meter-reader/internal/transport"
	"github.com/ironsheep/meter-reader/internal/visualize"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("meter-reader %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage(os.Stdout)
			return
		}
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "meter-reader - read analog pressure gauges from images")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: meter-reader <mode> <path>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Modes:")
	fmt.Fprintln(w, "  single    Process a single image")
	fmt.Fprintln(w, "  folder    Process all *.jpg images in a folder")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables (also read from ./.env):")
	fmt.Fprintln(w, "  DETECTOR_URL, SEGMENTER_URL, READER_URL    Inference service base URLs")
	fmt.Fprintln(w, "  SEG_PARAM, SEG_BIN                         Segmentation model files")
	fmt.Fprintln(w, "  TRANSPORT_ADDR, TRANSPORT_PORT             Stream results to a TCP peer")
	fmt.Fprintln(w, "  OUTPUT_DIR                                 Save annotated images")
	fmt.Fprintln(w, "  LOG_LEVEL=debug, LOG_FILE                  Logging")
}

// app is the process-wide state, built once in run and torn down at exit.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	pipeline *pipeline.Pipeline
	client   *transport.Client
	stdout   io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return 1
	}
	mode, path := args[0], args[1]
	if mode != "single" && mode != "folder" {
		fmt.Fprintln(stderr, "Invalid mode. Use 'single' or 'folder'.")
		return 1
	}

	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}

	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Output: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "Logging error: %v\n", err)
		return 1
	}
	defer closer.Close()
	logger.WithFields(logrus.Fields{"version": Version, "commit": GitCommit}).Debug("meter-reader starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx, cfg, logger, stdout)
	if err != nil {
		logger.WithError(err).Error("startup failed")
		return 1
	}
	defer a.close()

	switch mode {
	case "single":
		img, err := imaging.Load(path)
		if err != nil {
			fmt.Fprintf(stderr, "Could not open or find the image at %s\n", path)
			logger.WithError(err).Debug("load failed")
			return 1
		}
		a.processFrame(ctx, img, 0)

	case "folder":
		paths, err := imaging.Glob(path)
		if err != nil || len(paths) == 0 {
			fmt.Fprintf(stderr, "No images found in the folder %s\n", path)
			return 1
		}
		for i, p := range paths {
			if ctx.Err() != nil {
				logger.Warn("interrupted")
				break
			}
			img, err := imaging.Load(p)
			if err != nil {
				logger.WithError(err).WithField("path", p).Warn("skipping unreadable image")
				continue
			}
			a.processFrame(ctx, img, i)
		}
	}

	fmt.Fprintln(stdout, "Processing complete")
	return 0
}

func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger, stdout io.Writer) (*app, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	rt, err := segment.NewRemoteRuntime(ctx, cfg.SegmenterURL, cfg.SegParam, cfg.SegBin, httpClient)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{"param": cfg.SegParam, "bin": cfg.SegBin}).Info("segmentation model loaded")

	det, err := detection.NewRemoteDetector(cfg.DetectorURL, httpClient)
	if err != nil {
		return nil, err
	}

	pad, err := imaging.ParsePadColor(cfg.PadColor)
	if err != nil {
		return nil, err
	}

	options := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithDetectorInputSize(cfg.DetectorInputSize),
		pipeline.WithThresholds(cfg.ConfThreshold, cfg.NMSThreshold),
		pipeline.WithTargetSize(cfg.SegTargetSize),
		pipeline.WithPadColor(pad),
	}
	if cfg.ReaderURL != "" {
		rd, err := reading.NewRemoteReader(cfg.ReaderURL, httpClient)
		if err != nil {
			return nil, err
		}
		options = append(options, pipeline.WithReader(rd))
	}

	p, err := pipeline.New(det, segment.NewDecoder(rt, cfg.SegTargetSize), options...)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: logger, pipeline: p, stdout: stdout}

	if cfg.TransportEnabled() {
		client, err := transport.NewClient(transport.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := client.Connect(cfg.TransportAddr, cfg.TransportPort); err != nil {
			return nil, err
		}
		a.client = client
	}
	return a, nil
}

func (a *app) close() {
	if a.client != nil && a.client.Connected() {
		if err := a.client.Disconnect(); err != nil {
			a.log.WithError(err).Warn("transport disconnect failed")
		}
	}
}

// processFrame runs the pipeline on one image and reports the outcome.
// Failures are logged; they never stop a folder run.
func (a *app) processFrame(ctx context.Context, img image.Image, index int) {
	start := time.Now()
	defer func() {
		elapsed := float64(time.Since(start).Microseconds()) / 1000
		fmt.Fprintf(a.stdout, "Processing time: %.3f ms\n", elapsed)
	}()

	res, err := a.pipeline.Process(ctx, img)
	if err != nil && !errors.Is(err, pipeline.ErrReading) {
		a.log.WithError(err).WithField("index", index).Error("frame failed")
		return
	}
	if err != nil {
		a.log.WithError(err).WithField("frame_id", res.FrameID.String()).Warn("readings unavailable")
	}

	fmt.Fprintf(a.stdout, "Object size: %d\n", len(res.Meters))
	if res.NoMeters() {
		fmt.Fprintln(a.stdout, "No objects detected.")
	} else {
		for _, v := range res.Readings() {
			fmt.Fprintf(a.stdout, "scale_value: %s\n", visualize.FormatReading(v))
		}
		if a.cfg.OutputDir != "" {
			path, err := visualize.Save(a.cfg.OutputDir, index, img, res)
			if err != nil {
				a.log.WithError(err).Warn("result image not saved")
			} else {
				fmt.Fprintf(a.stdout, "Saved processed image to %s\n", path)
			}
		}
	}

	a.transmit(img, res)
}

// transmit streams the annotated frame with its first reading. A failed
// send drops the connection; there is no reconnect.
func (a *app) transmit(img image.Image, res *pipeline.Result) {
	if a.client == nil || !a.client.Connected() {
		return
	}
	var value float32
	if readings := res.Readings(); len(readings) > 0 {
		value = float32(readings[0])
	}
	frame := imaging.FitFrame(visualize.Render(img, res), transport.Width, transport.Height)

	err := a.client.Transmit(frame, value)
	if err == nil {
		return
	}
	a.log.WithError(err).Error("transmit failed")
	if errors.Is(err, transport.ErrSend) {
		if err := a.client.Disconnect(); err != nil {
			a.log.WithError(err).Warn("transport disconnect failed")
		}
	}
}
