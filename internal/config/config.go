package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/kartoza/kartoza-chromakey/internal/models"
)

const (
	// DefaultConfigDir is the default configuration directory
	DefaultConfigDir = ".config/kartoza-chromakey"
	// DefaultOutputDir is the default output directory for composites
	DefaultOutputDir = "Videos/Composites"
	// ConfigFileName is the name of the configuration file
	ConfigFileName = "config.json"
)

// Config holds the application configuration
type Config struct {
	OutputDir      string                  `json:"output_dir"`
	FFmpegPath     string                  `json:"ffmpeg_path"`
	FFprobePath    string                  `json:"ffprobe_path"`
	AudioBitrate   string                  `json:"audio_bitrate"`
	WorkDir        string                  `json:"work_dir,omitempty"`
	Notifications  bool                    `json:"notifications"`
	DefaultOptions models.CompositeOptions `json:"default_options"`
	JobCounter     int                     `json:"job_counter"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		OutputDir:      GetDefaultOutputDir(),
		FFmpegPath:     "ffmpeg",
		FFprobePath:    "ffprobe",
		AudioBitrate:   "192k",
		Notifications:  true,
		DefaultOptions: models.DefaultCompositeOptions(),
	}
}

// configDirOverride replaces the configuration directory when non-empty.
// Tests point it at a temp dir so they never touch the real home.
var configDirOverride string

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	if configDirOverride != "" {
		return configDirOverride
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfigDir
	}
	return filepath.Join(home, DefaultConfigDir)
}

// GetDefaultOutputDir returns the default output directory path
func GetDefaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultOutputDir
	}
	return filepath.Join(home, DefaultOutputDir)
}

// EnsureDirectories creates the configuration directory. Output
// directories are created per job, next to the file being written.
func EnsureDirectories() error {
	return os.MkdirAll(GetConfigDir(), 0755)
}

// Load loads the configuration from disk
func Load() (*Config, error) {
	configPath := filepath.Join(GetConfigDir(), ConfigFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if file doesn't exist
			cfg := DefaultConfig()
			return &cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save saves the configuration to disk
func Save(cfg *Config) error {
	if err := EnsureDirectories(); err != nil {
		return err
	}

	configPath := filepath.Join(GetConfigDir(), ConfigFileName)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// GetNextJobNumber returns the next job number and increments the counter
func GetNextJobNumber() (int, error) {
	cfg, err := Load()
	if err != nil {
		return 1, err
	}

	cfg.JobCounter++
	if err := Save(cfg); err != nil {
		return cfg.JobCounter, err
	}

	return cfg.JobCounter, nil
}
