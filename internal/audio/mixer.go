// Package audio builds the output audio track for a compositing job from
// the decoded foreground and background tracks. All mixing happens on
// interleaved 16-bit stereo PCM at a fixed sample rate; encoding to the
// final container is the muxer's job.
package audio

import (
	"fmt"

	"github.com/kartoza/kartoza-chromakey/internal/models"
)

// PCM stream parameters shared by the decoder, mixer and muxer.
const (
	SampleRate = 44100
	Channels   = 2
)

// Track is interleaved stereo PCM.
type Track []int16

// Samples returns the interleaved sample count for a duration in seconds.
func Samples(duration float64) int {
	return int(duration*SampleRate+0.5) * Channels
}

// MixParams describes one mixing run.
type MixParams struct {
	Mode models.AudioMode
	// Duration is the final video duration in seconds; the output track
	// always matches it exactly regardless of input lengths.
	Duration float64
	// WindowStart/WindowEnd bound the active window in seconds.
	// WindowEnd <= 0 means the window runs to the end.
	WindowStart float64
	WindowEnd   float64
}

// Mix produces the output track. Inputs may be empty (a source without an
// audio stream) or of mismatched length; they are trimmed or zero-padded,
// never an error. Summing modes are peak-normalized: the mix is scaled
// down when it would clip, never hard-clipped.
func Mix(fg, bg Track, p MixParams) (Track, error) {
	total := Samples(p.Duration)
	startIdx := clampIndex(Samples(p.WindowStart), total)
	endIdx := total
	if p.WindowEnd > 0 {
		endIdx = clampIndex(Samples(p.WindowEnd), total)
	}
	if endIdx < startIdx {
		endIdx = startIdx
	}

	switch p.Mode {
	case models.AudioNone:
		return make(Track, total), nil

	case models.AudioBackgroundOnly:
		return trimPad(bg, total), nil

	case models.AudioForegroundOnly:
		return trimPad(fg, total), nil

	case models.AudioBoth:
		sum := make([]int32, total)
		accumulate(sum, bg, 0, total)
		accumulate(sum, fg, 0, total)
		return normalize(sum), nil

	case models.AudioSynced:
		// Background for the full duration, foreground added inside the
		// active window. Foreground sample 0 lines up with window start.
		sum := make([]int32, total)
		accumulate(sum, bg, 0, total)
		accumulateWindow(sum, fg, startIdx, endIdx)
		return normalize(sum), nil

	case models.AudioTimedForeground:
		// Background (or silence, if the background is mute) outside the
		// window, foreground alone inside it.
		out := trimPad(bg, total)
		for i := startIdx; i < endIdx; i++ {
			fi := i - startIdx
			if fi < len(fg) {
				out[i] = fg[fi]
			} else {
				out[i] = 0
			}
		}
		return out, nil
	}

	return nil, fmt.Errorf("unknown audio mode %q", p.Mode)
}

func clampIndex(i, total int) int {
	if i < 0 {
		return 0
	}
	if i > total {
		return total
	}
	// Keep sample pairs aligned to channel boundaries.
	return i - i%Channels
}

// trimPad copies t into a track of exactly total samples.
func trimPad(t Track, total int) Track {
	out := make(Track, total)
	copy(out, t)
	return out
}

// accumulate adds src samples into sum[from:to], stopping at src's end.
func accumulate(sum []int32, src Track, from, to int) {
	n := to
	if from+len(src) < n {
		n = from + len(src)
	}
	for i := from; i < n; i++ {
		sum[i] += int32(src[i-from])
	}
}

// accumulateWindow adds src into sum[start:end] with src sample 0 at start.
func accumulateWindow(sum []int32, src Track, start, end int) {
	accumulate(sum, src, start, end)
}

// normalize converts the 32-bit sum to int16 output, scaling the whole
// track down uniformly if its peak exceeds full scale.
func normalize(sum []int32) Track {
	var peak int32
	for _, s := range sum {
		if s > peak {
			peak = s
		} else if -s > peak {
			peak = -s
		}
	}

	out := make(Track, len(sum))
	if peak <= 32767 {
		for i, s := range sum {
			out[i] = int16(s)
		}
		return out
	}

	scale := 32767.0 / float64(peak)
	for i, s := range sum {
		out[i] = int16(float64(s) * scale)
	}
	return out
}
