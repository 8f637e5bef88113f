package pipeline

import (
	"github.com/oculab/go-ocular/pkg/classify"
	"github.com/oculab/go-ocular/pkg/session"
	"github.com/oculab/go-ocular/pkg/visual"
)

// Config bundles the tuning for every pipeline stage.
type Config struct {
	Classifier classify.Config
	Visual     visual.Config
	Recording  session.Config

	// Mode is the initial visualization mode.
	Mode visual.Mode

	// QueueSize bounds the inbound frame queue.
	QueueSize int

	// QueuePolicy decides what happens when the queue is full.
	QueuePolicy OverflowPolicy
}

// DefaultConfig is the live-preview profile: fresh frames beat complete
// frames, so overflow drops the oldest.
func DefaultConfig() Config {
	return Config{
		Classifier:  classify.DefaultConfig(),
		Visual:      visual.DefaultConfig(),
		Recording:   session.DefaultConfig(),
		Mode:        visual.Rectangles,
		QueueSize:   8,
		QueuePolicy: DropOldest,
	}
}

// OfflineConfig is the batch profile: every frame matters, so producers
// block instead of dropping.
func OfflineConfig() Config {
	cfg := DefaultConfig()
	cfg.QueuePolicy = Block
	cfg.QueueSize = 64
	return cfg
}
