package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kartoza/kartoza-chromakey/internal/models"
)

// logoJob mirrors the logo block with pointer fields so an absent field is
// distinguishable from an explicit zero. Absent fields pick up watermark
// defaults; explicit values, including 0, are always honored.
type logoJob struct {
	Path      string   `yaml:"path"`
	Position  string   `yaml:"position"`
	CustomX   *int     `yaml:"custom_x"`
	CustomY   *int     `yaml:"custom_y"`
	Margin    *int     `yaml:"margin"`
	Scale     *float64 `yaml:"scale"`
	Opacity   *float64 `yaml:"opacity"`
	StartTime *float64 `yaml:"start_time"`
	EndTime   *float64 `yaml:"end_time"`
}

func (l *logoJob) options() *models.LogoOptions {
	opts := models.DefaultLogoOptions(l.Path)
	if l.Position != "" {
		opts.Position = models.LogoPosition(l.Position)
	}
	if l.CustomX != nil {
		opts.CustomX = *l.CustomX
	}
	if l.CustomY != nil {
		opts.CustomY = *l.CustomY
	}
	if l.Margin != nil {
		opts.Margin = *l.Margin
	}
	if l.Scale != nil {
		opts.Scale = *l.Scale
	}
	if l.Opacity != nil {
		opts.Opacity = *l.Opacity
	}
	if l.StartTime != nil {
		opts.StartTime = *l.StartTime
	}
	opts.EndTime = l.EndTime
	return &opts
}

// LoadJob reads a YAML job file describing one compositing job. Fields not
// present in the file keep their defaults, so a minimal job file only needs
// the three paths. Relative media paths are resolved against the job file's
// directory.
func LoadJob(path string) (models.CompositeOptions, error) {
	opts := models.DefaultCompositeOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("reading job file: %w", err)
	}

	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parsing job file %s: %w", path, err)
	}

	// The logo block is re-read through the pointer shadow so explicit
	// zeros (opacity 0, margin 0) are not mistaken for absent fields.
	var shadow struct {
		Logo *logoJob `yaml:"logo"`
	}
	if err := yaml.Unmarshal(data, &shadow); err != nil {
		return opts, fmt.Errorf("parsing job file %s: %w", path, err)
	}
	if shadow.Logo != nil {
		opts.Logo = shadow.Logo.options()
	}

	base := filepath.Dir(path)
	opts.ForegroundPath = resolvePath(base, opts.ForegroundPath)
	opts.BackgroundPath = resolvePath(base, opts.BackgroundPath)
	opts.OutputPath = resolvePath(base, opts.OutputPath)
	if opts.Logo != nil {
		opts.Logo.Path = resolvePath(base, opts.Logo.Path)
	}

	return opts, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
