package models

import (
	"fmt"
)

// ParamError describes a rejected job parameter. The engine fails closed:
// invalid values are never silently replaced with defaults.
type ParamError struct {
	Field  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

// LogoPosition names a placement for the logo overlay.
type LogoPosition string

// Supported logo positions.
const (
	LogoTopLeft     LogoPosition = "top-left"
	LogoTopRight    LogoPosition = "top-right"
	LogoBottomLeft  LogoPosition = "bottom-left"
	LogoBottomRight LogoPosition = "bottom-right"
	LogoCenter      LogoPosition = "center"
	LogoCustom      LogoPosition = "custom"
)

// LogoOptions configures the optional watermark overlay.
type LogoOptions struct {
	Path     string       `json:"path" yaml:"path"`
	Position LogoPosition `json:"position,omitempty" yaml:"position,omitempty"`
	CustomX  int          `json:"custom_x,omitempty" yaml:"custom_x,omitempty"`
	CustomY  int          `json:"custom_y,omitempty" yaml:"custom_y,omitempty"`
	Margin   int          `json:"margin" yaml:"margin"`
	// Scale is the logo width as a fraction of the output video width.
	Scale   float64 `json:"scale" yaml:"scale"`
	Opacity float64 `json:"opacity" yaml:"opacity"`
	// Optional display window. Zero StartTime and nil EndTime means the
	// logo is shown for the whole video.
	StartTime float64  `json:"start_time,omitempty" yaml:"start_time,omitempty"`
	EndTime   *float64 `json:"end_time,omitempty" yaml:"end_time,omitempty"`
}

// DefaultLogoOptions returns logo settings matching the common watermark
// case: bottom-right corner, 20px margin, 15% of video width, fully opaque.
func DefaultLogoOptions(path string) LogoOptions {
	return LogoOptions{
		Path:     path,
		Position: LogoBottomRight,
		Margin:   20,
		Scale:    0.15,
		Opacity:  1.0,
	}
}

// CompositeOptions is the full, immutable parameter set for one compositing
// job. Build it once, validate it, then hand it to the engine.
type CompositeOptions struct {
	ForegroundPath string `json:"foreground" yaml:"foreground"`
	BackgroundPath string `json:"background" yaml:"background"`
	OutputPath     string `json:"output" yaml:"output"`

	// StartTime is the output timestamp at which the composite becomes
	// active. EndTime is exclusive; nil means active until the end.
	StartTime float64  `json:"start_time" yaml:"start_time"`
	EndTime   *float64 `json:"end_time,omitempty" yaml:"end_time,omitempty"`

	// PositionX/Y are signed pixel offsets from the background center.
	PositionX int     `json:"position_x" yaml:"position_x"`
	PositionY int     `json:"position_y" yaml:"position_y"`
	Scale     float64 `json:"scale" yaml:"scale"`
	Opacity   float64 `json:"opacity" yaml:"opacity"`

	Key KeyColor `json:"key_color" yaml:"key_color"`
	// EdgeBlurRadius is the mask blur kernel size in pixels. Zero disables
	// edge smoothing; otherwise it must be odd.
	EdgeBlurRadius int `json:"edge_blur_radius" yaml:"edge_blur_radius"`
	// SpillReduction desaturates key-tinted edge pixels, 0 (off) to 1.
	SpillReduction float64 `json:"spill_reduction" yaml:"spill_reduction"`

	AudioMode AudioMode    `json:"audio_mode" yaml:"audio_mode"`
	Logo      *LogoOptions `json:"logo,omitempty" yaml:"logo,omitempty"`

	// FastMode trades quality for speed: nearest-neighbor scaling and no
	// spill reduction. GPUAccel requests hardware decode/encode, falling
	// back to the software path if no accelerator is available.
	FastMode bool `json:"fast_mode" yaml:"fast_mode"`
	GPUAccel bool `json:"gpu_accel" yaml:"gpu_accel"`
}

// DefaultCompositeOptions returns the common-case defaults: green key,
// centered, full scale and opacity, synced audio, 5px edge blur.
func DefaultCompositeOptions() CompositeOptions {
	return CompositeOptions{
		Scale:          1.0,
		Opacity:        1.0,
		Key:            KeyColor{Preset: KeyPresetGreen},
		EdgeBlurRadius: 5,
		SpillReduction: 0,
		AudioMode:      AudioSynced,
		FastMode:       true,
	}
}

// Validate checks every invariant and returns a field-identified error for
// the first violation. It is called before any frame is processed.
func (o *CompositeOptions) Validate() error {
	if o.ForegroundPath == "" {
		return &ParamError{Field: "foreground", Reason: "path is required"}
	}
	if o.BackgroundPath == "" {
		return &ParamError{Field: "background", Reason: "path is required"}
	}
	if o.OutputPath == "" {
		return &ParamError{Field: "output", Reason: "path is required"}
	}
	if o.StartTime < 0 {
		return &ParamError{Field: "start_time", Reason: "must not be negative"}
	}
	if o.EndTime != nil && *o.EndTime <= o.StartTime {
		return &ParamError{Field: "end_time", Reason: "must be greater than start_time"}
	}
	if o.Scale <= 0 {
		return &ParamError{Field: "scale", Reason: "must be greater than 0"}
	}
	if o.Opacity < 0 || o.Opacity > 1 {
		return &ParamError{Field: "opacity", Reason: "must be between 0.0 and 1.0"}
	}
	if o.EdgeBlurRadius < 0 {
		return &ParamError{Field: "edge_blur_radius", Reason: "must not be negative"}
	}
	if o.EdgeBlurRadius > 0 && o.EdgeBlurRadius%2 == 0 {
		return &ParamError{Field: "edge_blur_radius", Reason: "must be odd (or 0 to disable)"}
	}
	if o.SpillReduction < 0 || o.SpillReduction > 1 {
		return &ParamError{Field: "spill_reduction", Reason: "must be between 0.0 and 1.0"}
	}
	if err := o.Key.validate(); err != nil {
		return err
	}
	if !o.AudioMode.Valid() {
		return &ParamError{Field: "audio_mode", Reason: fmt.Sprintf("unknown mode %q", o.AudioMode)}
	}
	if o.Logo != nil {
		if err := o.Logo.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (l *LogoOptions) validate() *ParamError {
	if l.Path == "" {
		return &ParamError{Field: "logo.path", Reason: "path is required"}
	}
	switch l.Position {
	case LogoTopLeft, LogoTopRight, LogoBottomLeft, LogoBottomRight, LogoCenter:
	case LogoCustom:
		// CustomX/Y of zero is a legal top-left placement, nothing to check.
	default:
		return &ParamError{Field: "logo.position", Reason: fmt.Sprintf("unknown position %q", l.Position)}
	}
	if l.Margin < 0 {
		return &ParamError{Field: "logo.margin", Reason: "must not be negative"}
	}
	if l.Scale <= 0 || l.Scale > 1 {
		return &ParamError{Field: "logo.scale", Reason: "must be between 0.0 (exclusive) and 1.0"}
	}
	if l.Opacity < 0 || l.Opacity > 1 {
		return &ParamError{Field: "logo.opacity", Reason: "must be between 0.0 and 1.0"}
	}
	if l.EndTime != nil && *l.EndTime <= l.StartTime {
		return &ParamError{Field: "logo.end_time", Reason: "must be greater than logo.start_time"}
	}
	return nil
}
