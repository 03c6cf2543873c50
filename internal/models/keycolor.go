package models

import "fmt"

// HSV is a color in the hue/saturation/value space used for keying.
// Hue is in the half-degree scale [0, 180), saturation and value in [0, 255],
// matching what ffmpeg and most keying tools expect.
type HSV struct {
	H uint8 `json:"h" yaml:"h"`
	S uint8 `json:"s" yaml:"s"`
	V uint8 `json:"v" yaml:"v"`
}

// Key color presets. The green range is deliberately wide (hue 35-85) to
// tolerate uneven studio lighting; blue screens key on hue 100-130.
const (
	KeyPresetGreen = "green"
	KeyPresetBlue  = "blue"
)

// KeyColor selects the backdrop color to remove. Either a preset name or
// explicit lower/upper HSV bounds. Hue bounds may wrap around the hue origin
// (lower > upper means the range crosses 0, e.g. for red backdrops);
// saturation and value bounds must be non-empty intervals.
type KeyColor struct {
	Preset string `json:"preset,omitempty" yaml:"preset,omitempty"`
	Lower  *HSV   `json:"lower,omitempty" yaml:"lower,omitempty"`
	Upper  *HSV   `json:"upper,omitempty" yaml:"upper,omitempty"`
}

// presetBounds maps preset names to their HSV ranges. Saturation and value
// floors sit at 40 so near-gray and near-black pixels never key out.
var presetBounds = map[string][2]HSV{
	KeyPresetGreen: {{H: 35, S: 40, V: 40}, {H: 85, S: 255, V: 255}},
	KeyPresetBlue:  {{H: 100, S: 40, V: 40}, {H: 130, S: 255, V: 255}},
}

// Bounds resolves the key color to concrete lower/upper HSV bounds.
func (k KeyColor) Bounds() (HSV, HSV, error) {
	if k.Preset != "" {
		b, ok := presetBounds[k.Preset]
		if !ok {
			return HSV{}, HSV{}, fmt.Errorf("unknown key color preset %q", k.Preset)
		}
		return b[0], b[1], nil
	}
	if k.Lower == nil || k.Upper == nil {
		return HSV{}, HSV{}, fmt.Errorf("key color requires a preset or explicit lower and upper bounds")
	}
	return *k.Lower, *k.Upper, nil
}

// Wraps reports whether the resolved hue range crosses the hue origin.
func (k KeyColor) Wraps() bool {
	lo, hi, err := k.Bounds()
	if err != nil {
		return false
	}
	return lo.H > hi.H
}

func (k KeyColor) validate() *ParamError {
	if k.Preset != "" {
		if _, ok := presetBounds[k.Preset]; !ok {
			return &ParamError{Field: "key_color.preset", Reason: fmt.Sprintf("unknown preset %q (supported: green, blue)", k.Preset)}
		}
		return nil
	}
	if k.Lower == nil || k.Upper == nil {
		return &ParamError{Field: "key_color", Reason: "requires a preset or both lower and upper bounds"}
	}
	if k.Lower.H >= 180 || k.Upper.H >= 180 {
		return &ParamError{Field: "key_color.hue", Reason: "hue must be below 180"}
	}
	// Hue is circular, lower > upper is a legal wrap-around range.
	// Saturation and value are linear and must form non-empty intervals.
	if k.Lower.S > k.Upper.S {
		return &ParamError{Field: "key_color.saturation", Reason: "lower bound exceeds upper bound"}
	}
	if k.Lower.V > k.Upper.V {
		return &ParamError{Field: "key_color.value", Reason: "lower bound exceeds upper bound"}
	}
	return nil
}
