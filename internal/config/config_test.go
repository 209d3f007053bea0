package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var keys = []string{
	"DETECTOR_URL", "SEGMENTER_URL", "READER_URL", "SEG_PARAM", "SEG_BIN",
	"DETECTOR_INPUT_SIZE", "SEG_TARGET_SIZE", "CONF_THRESHOLD", "NMS_THRESHOLD",
	"PAD_COLOR", "TRANSPORT_ADDR", "TRANSPORT_PORT", "OUTPUT_DIR", "LOG_LEVEL", "LOG_FILE", "HTTP_TIMEOUT",
}

// clearEnv blanks every key for the duration of the test. getEnv treats an
// empty value as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DetectorInputSize != 320 || cfg.SegTargetSize != 320 {
		t.Errorf("sizes: got %d/%d", cfg.DetectorInputSize, cfg.SegTargetSize)
	}
	if cfg.ConfThreshold != 0.4 || cfg.NMSThreshold != 0.3 {
		t.Errorf("thresholds: got %v/%v", cfg.ConfThreshold, cfg.NMSThreshold)
	}
	if cfg.PadColor != "#808080" || cfg.TransportPort != 8888 || cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("got %+v", cfg)
	}
	if cfg.TransportEnabled() {
		t.Error("transport should be disabled by default")
	}
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DETECTOR_URL", "http://det:9000")
	t.Setenv("SEG_TARGET_SIZE", "256")
	t.Setenv("CONF_THRESHOLD", "0.55")
	t.Setenv("TRANSPORT_ADDR", "192.168.1.20")
	t.Setenv("HTTP_TIMEOUT", "5s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DetectorURL != "http://det:9000" || cfg.SegTargetSize != 256 || cfg.ConfThreshold != 0.55 {
		t.Errorf("got %+v", cfg)
	}
	if !cfg.TransportEnabled() || cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("LOG_LEVEL=debug\nTRANSPORT_PORT=9999\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override set variables; unset the blanks it should fill.
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("TRANSPORT_PORT")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.TransportPort != 9999 {
		t.Errorf("got level %q port %d", cfg.LogLevel, cfg.TransportPort)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"non-numeric size", "SEG_TARGET_SIZE", "big"},
		{"zero size", "DETECTOR_INPUT_SIZE", "0"},
		{"threshold above one", "CONF_THRESHOLD", "1.5"},
		{"bad duration", "HTTP_TIMEOUT", "soon"},
		{"hostname transport", "TRANSPORT_ADDR", "example.com"},
		{"bad pad color", "PAD_COLOR", "gray"},
		{"bad level", "LOG_LEVEL", "loud"},
		{"bad url", "DETECTOR_URL", "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(""); err == nil {
				t.Errorf("%s=%q should be rejected", tt.key, tt.value)
			}
		})
	}
}
