package engine

// activeWindow is the stateless timing gate: it decides per output
// timestamp whether the composite is shown. Recomputed for every frame so
// seeking or fps conforming can never make it drift.
type activeWindow struct {
	start float64
	// end is exclusive; nil means active until the end of the video.
	end *float64
}

// active reports whether the composite is shown at timestamp t.
func (w activeWindow) active(t float64) bool {
	if t < w.start {
		return false
	}
	if w.end != nil && t >= *w.end {
		return false
	}
	return true
}

// endOrZero returns the window end, or 0 when the window runs to the end
// of the video. Matches the audio mixer's convention.
func (w activeWindow) endOrZero() float64 {
	if w.end == nil {
		return 0
	}
	return *w.end
}
