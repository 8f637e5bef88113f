// Package config loads engine configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/oculab/go-ocular/internal/log"
	"github.com/oculab/go-ocular/pkg/pipeline"
	"github.com/oculab/go-ocular/pkg/session"
	"github.com/oculab/go-ocular/pkg/visual"
)

// Config is the process-level configuration. Pipeline tuning beyond what
// is listed here stays at compiled defaults; the environment covers the
// knobs an operator actually turns.
type Config struct {
	// Port the web server listens on.
	Port string `validate:"required,numeric"`

	// LogLevel is debug, info, warn, or error.
	LogLevel string `validate:"oneof=debug info warn error"`

	// LogFile enables rotating file output when non-empty.
	LogFile string

	// DetectorURL is the external landmark detector stream. Empty means
	// frames arrive only over the ingest websocket.
	DetectorURL string `validate:"omitempty,uri"`

	// SessionDir is where recordings are stored.
	SessionDir string `validate:"required"`

	// Mode is the initial visualization mode.
	Mode string `validate:"oneof=rectangles rounded amplitudeWave"`

	// RecordFPS paces session capture.
	RecordFPS float64 `validate:"gt=0,lte=240"`

	// RecordCap bounds a single recording.
	RecordCap time.Duration `validate:"gt=0"`

	// QueueSize bounds the inbound frame queue.
	QueueSize int `validate:"gt=0,lte=4096"`

	// QueuePolicy is dropOldest or block.
	QueuePolicy string `validate:"oneof=dropOldest block"`
}

// Load reads .env if present, then the environment, then validates.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	} else {
		log.Debug("loaded .env file")
	}

	cfg := &Config{
		Port:        getEnv("OCULAR_PORT", "8080"),
		LogLevel:    getEnv("OCULAR_LOG_LEVEL", "info"),
		LogFile:     getEnv("OCULAR_LOG_FILE", ""),
		DetectorURL: getEnv("OCULAR_DETECTOR_URL", ""),
		SessionDir:  getEnv("OCULAR_SESSION_DIR", "./sessions"),
		Mode:        getEnv("OCULAR_MODE", "rectangles"),
		RecordFPS:   getEnvFloat("OCULAR_RECORD_FPS", 30),
		RecordCap:   getEnvDuration("OCULAR_RECORD_CAP", 60*time.Second),
		QueueSize:   getEnvInt("OCULAR_QUEUE_SIZE", 8),
		QueuePolicy: getEnv("OCULAR_QUEUE_POLICY", "dropOldest"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Pipeline translates the process config into pipeline tuning.
func (c *Config) Pipeline() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Mode = visual.Mode(c.Mode)
	cfg.QueueSize = c.QueueSize
	cfg.QueuePolicy = pipeline.OverflowPolicy(c.QueuePolicy)
	cfg.Recording = session.Config{
		TargetFPS:        c.RecordFPS,
		MaxRecordingTime: c.RecordCap,
		Resolution:       session.DefaultConfig().Resolution,
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn("ignoring invalid integer env", "key", key, "value", v)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn("ignoring invalid float env", "key", key, "value", v)
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn("ignoring invalid duration env", "key", key, "value", v)
		return fallback
	}
	return d
}
