package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Mode != "rectangles" {
		t.Errorf("Mode = %q, want rectangles", cfg.Mode)
	}
	if cfg.RecordFPS != 30 {
		t.Errorf("RecordFPS = %v, want 30", cfg.RecordFPS)
	}
	if cfg.RecordCap != 60*time.Second {
		t.Errorf("RecordCap = %v, want 60s", cfg.RecordCap)
	}
	if cfg.QueuePolicy != "dropOldest" {
		t.Errorf("QueuePolicy = %q, want dropOldest", cfg.QueuePolicy)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OCULAR_PORT", "9090")
	t.Setenv("OCULAR_MODE", "amplitudeWave")
	t.Setenv("OCULAR_RECORD_FPS", "60")
	t.Setenv("OCULAR_RECORD_CAP", "30s")
	t.Setenv("OCULAR_QUEUE_POLICY", "block")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.Mode != "amplitudeWave" {
		t.Errorf("Mode = %q, want amplitudeWave", cfg.Mode)
	}
	if cfg.RecordFPS != 60 {
		t.Errorf("RecordFPS = %v, want 60", cfg.RecordFPS)
	}
	if cfg.RecordCap != 30*time.Second {
		t.Errorf("RecordCap = %v, want 30s", cfg.RecordCap)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("OCULAR_MODE", "triangles")
	if _, err := Load(); err == nil {
		t.Error("Load should reject unknown mode")
	}
}

func TestLoad_IgnoresUnparseableNumbers(t *testing.T) {
	t.Setenv("OCULAR_RECORD_FPS", "fast")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.RecordFPS != 30 {
		t.Errorf("RecordFPS = %v, want fallback 30", cfg.RecordFPS)
	}
}

func TestPipelineTranslation(t *testing.T) {
	t.Setenv("OCULAR_QUEUE_SIZE", "32")
	t.Setenv("OCULAR_QUEUE_POLICY", "block")
	t.Setenv("OCULAR_MODE", "rounded")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	p := cfg.Pipeline()
	if p.QueueSize != 32 {
		t.Errorf("QueueSize = %d, want 32", p.QueueSize)
	}
	if string(p.QueuePolicy) != "block" {
		t.Errorf("QueuePolicy = %v, want block", p.QueuePolicy)
	}
	if string(p.Mode) != "rounded" {
		t.Errorf("Mode = %v, want rounded", p.Mode)
	}
	if p.Recording.TargetFPS != 30 {
		t.Errorf("Recording.TargetFPS = %v, want 30", p.Recording.TargetFPS)
	}
}
