// Package config loads runtime settings from the environment.
//
// Values come from process environment variables, optionally seeded from a
// .env file. Variables already set in the environment take precedence over
// the file. Every field has a default except where noted.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the settings for one meter-reader process.
type Config struct {
	// DetectorURL is the base URL of the meter detection service.
	DetectorURL string `validate:"required,url"`

	// SegmenterURL is the base URL of the segmentation model server.
	SegmenterURL string `validate:"required,url"`

	// ReaderURL is the base URL of the reading computation service.
	// Empty disables reading.
	ReaderURL string `validate:"omitempty,url"`

	// SegParam and SegBin are the segmentation model definition and
	// weights, registered with the model server at start-up.
	SegParam string `validate:"required"`
	SegBin   string `validate:"required"`

	DetectorInputSize int     `validate:"gt=0"`
	SegTargetSize     int     `validate:"gt=0"`
	ConfThreshold     float64 `validate:"gte=0,lte=1"`
	NMSThreshold      float64 `validate:"gte=0,lte=1"`
	PadColor          string  `validate:"hexcolor"`

	// TransportAddr is the IPv4 address frames are streamed to.
	// Empty disables the transport.
	TransportAddr string `validate:"omitempty,ipv4"`
	TransportPort int    `validate:"gt=0,lte=65535"`

	// OutputDir receives annotated result images. Empty disables saving.
	OutputDir string

	LogLevel    string        `validate:"oneof=trace debug info warn warning error"`
	LogFile     string
	HTTPTimeout time.Duration `validate:"gt=0"`
}

// Load reads the configuration.
//
// If envFile is non-empty it is loaded first; a missing file is not an error.
// Malformed numbers or durations and values that fail validation are.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	p := &parser{}
	cfg := &Config{
		DetectorURL:       getEnv("DETECTOR_URL", "http://localhost:5000"),
		SegmenterURL:      getEnv("SEGMENTER_URL", "http://localhost:5001"),
		ReaderURL:         getEnv("READER_URL", ""),
		SegParam:          getEnv("SEG_PARAM", "./weights/fastseg.param"),
		SegBin:            getEnv("SEG_BIN", "./weights/fastseg.bin"),
		DetectorInputSize: p.int("DETECTOR_INPUT_SIZE", 320),
		SegTargetSize:     p.int("SEG_TARGET_SIZE", 320),
		ConfThreshold:     p.float("CONF_THRESHOLD", 0.4),
		NMSThreshold:      p.float("NMS_THRESHOLD", 0.3),
		PadColor:          getEnv("PAD_COLOR", "#808080"),
		TransportAddr:     getEnv("TRANSPORT_ADDR", ""),
		TransportPort:     p.int("TRANSPORT_PORT", 8888),
		OutputDir:         getEnv("OUTPUT_DIR", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           getEnv("LOG_FILE", ""),
		HTTPTimeout:       p.duration("HTTP_TIMEOUT", 30*time.Second),
	}
	if p.err != nil {
		return nil, p.err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// TransportEnabled reports whether frames should be streamed.
func (c *Config) TransportEnabled() bool {
	return c.TransportAddr != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// parser reads typed variables and keeps the first parse error.
type parser struct {
	err error
}

func (p *parser) int(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		p.fail(key, val, err)
		return defaultVal
	}
	return n
}

func (p *parser) float(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		p.fail(key, val, err)
		return defaultVal
	}
	return f
}

func (p *parser) duration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		p.fail(key, val, err)
		return defaultVal
	}
	return d
}

func (p *parser) fail(key, val string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s=%q: %w", key, val, err)
	}
}
