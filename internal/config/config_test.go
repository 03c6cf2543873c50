package config

import (
	"strings"
	"testing"

	"github.com/kartoza/kartoza-chromakey/internal/models"
)

// useTempConfigDir redirects the config directory for one test.
func useTempConfigDir(t *testing.T) {
	t.Helper()
	configDirOverride = t.TempDir()
	t.Cleanup(func() { configDirOverride = "" })
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.OutputDir == "" {
		t.Error("expected OutputDir to be set")
	}
	if cfg.FFmpegPath != "ffmpeg" {
		t.Errorf("expected ffmpeg path default, got %s", cfg.FFmpegPath)
	}
	if cfg.AudioBitrate != "192k" {
		t.Errorf("expected 192k audio bitrate, got %s", cfg.AudioBitrate)
	}
	if !cfg.Notifications {
		t.Error("expected notifications on by default")
	}

	// Check compositing defaults
	if cfg.DefaultOptions.Scale != 1.0 {
		t.Errorf("expected default scale 1.0, got %f", cfg.DefaultOptions.Scale)
	}
	if cfg.DefaultOptions.Key.Preset != models.KeyPresetGreen {
		t.Errorf("expected green preset by default, got %s", cfg.DefaultOptions.Key.Preset)
	}
	if cfg.DefaultOptions.AudioMode != models.AudioSynced {
		t.Errorf("expected synced audio mode by default, got %s", cfg.DefaultOptions.AudioMode)
	}
}

func TestGetConfigDir(t *testing.T) {
	dir := GetConfigDir()

	if dir == "" {
		t.Error("expected non-empty config directory")
	}
	if !strings.Contains(dir, "kartoza-chromakey") {
		t.Errorf("expected config dir to contain application name, got %q", dir)
	}
}

func TestLoad_NoFile(t *testing.T) {
	useTempConfigDir(t)

	// Loading without a config file should return defaults, not an error
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config to be returned")
	}
	if cfg.OutputDir == "" {
		t.Error("expected OutputDir to be set to default")
	}
}

func TestSaveAndLoad(t *testing.T) {
	useTempConfigDir(t)

	cfg := DefaultConfig()
	cfg.OutputDir = "/test/output"
	cfg.AudioBitrate = "256k"
	cfg.DefaultOptions.EdgeBlurRadius = 9
	cfg.DefaultOptions.Key = models.KeyColor{Preset: models.KeyPresetBlue}

	if err := Save(&cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.OutputDir != "/test/output" {
		t.Errorf("OutputDir = %s, want /test/output", loaded.OutputDir)
	}
	if loaded.AudioBitrate != "256k" {
		t.Errorf("AudioBitrate = %s, want 256k", loaded.AudioBitrate)
	}
	if loaded.DefaultOptions.EdgeBlurRadius != 9 {
		t.Errorf("EdgeBlurRadius = %d, want 9", loaded.DefaultOptions.EdgeBlurRadius)
	}
	if loaded.DefaultOptions.Key.Preset != models.KeyPresetBlue {
		t.Errorf("Key.Preset = %s, want blue", loaded.DefaultOptions.Key.Preset)
	}
}

func TestGetNextJobNumber(t *testing.T) {
	useTempConfigDir(t)

	n1, err := GetNextJobNumber()
	if err != nil {
		t.Fatalf("GetNextJobNumber: %v", err)
	}
	if n1 != 1 {
		t.Errorf("first job number = %d, want 1", n1)
	}

	n2, err := GetNextJobNumber()
	if err != nil {
		t.Fatalf("GetNextJobNumber: %v", err)
	}
	if n2 != 2 {
		t.Errorf("second job number = %d, want 2", n2)
	}

	// The counter persists across loads
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JobCounter != 2 {
		t.Errorf("persisted counter = %d, want 2", cfg.JobCounter)
	}
}
